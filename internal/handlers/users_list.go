package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-image-share/internal/logger"
	"github.com/sbilibin2017/gw-image-share/internal/models"
)

// UserLister defines the interface that the user directory service must implement.
type UserLister interface {
	ListUsers(ctx context.Context) ([]models.UserDB, error)
}

// NewListUsersHandler returns an HTTP handler for the public user directory.
// @Summary List users
// @Description Lists all registered users. Password hashes are never serialized.
// @Tags users
// @Produce json
// @Success 200 {array} models.UserDB "Users"
// @Failure 500 {object} handlers.ProfileErrorResponse "Internal server error"
// @Router /users [get]
func NewListUsersHandler(svc UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.ListUsers(r.Context())
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ProfileErrorResponse{
				Error: "Internal server error",
			})
			return
		}

		if users == nil {
			users = []models.UserDB{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(users)
	}
}
