package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-image-share/internal/logger"
	"github.com/sbilibin2017/gw-image-share/internal/middlewares"
	"github.com/sbilibin2017/gw-image-share/internal/models"
	"github.com/sbilibin2017/gw-image-share/internal/services"
)

// ProfileUpdater defines the interface that the profile update service must implement.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, userID uuid.UUID, username, email *string) (*models.UserDB, error)
}

// UpdateProfileRequest represents the JSON body for a profile patch
// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	// Username, omit to keep current
	// default: john_doe
	Username *string `json:"username"`

	// Email, omit to keep current
	// default: john@example.com
	Email *string `json:"email"`
}

// NewUpdateProfileHandler returns an HTTP handler for patching the caller's profile.
// @Summary Update own profile
// @Description Patches username and email. Omitted fields keep current values.
// @Tags users
// @Accept json
// @Produce json
// @Param updateProfileRequest body handlers.UpdateProfileRequest true "Profile patch"
// @Success 200 {object} models.UserDB "Updated profile"
// @Failure 400 {object} handlers.ProfileErrorResponse "Invalid request body"
// @Failure 401 {object} handlers.ProfileErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ProfileErrorResponse "User not found"
// @Router /me [patch]
// @Security CookieAuth
func NewUpdateProfileHandler(svc ProfileUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserIDFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ProfileErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		user, err := svc.UpdateProfile(r.Context(), userID, req.Username, req.Email)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(ProfileErrorResponse{
					Error: "User not found",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ProfileErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(user)
	}
}
