package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-image-share/internal/logger"
	"github.com/sbilibin2017/gw-image-share/internal/services"
)

// Refresher defines the interface that the refresh service must implement.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// TokenGetter reads a token cookie from the request.
type TokenGetter interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
}

// RefreshErrorResponse represents an error response for token refresh
// swagger:model RefreshErrorResponse
type RefreshErrorResponse struct {
	// Error message
	// default: Invalid refresh token
	Error string `json:"error"`
}

// NewRefreshHandler returns an HTTP handler for access token refresh.
// @Summary Refresh access token
// @Description Verifies the refresh token cookie and sets a fresh access token cookie. The refresh token itself is not rotated.
// @Tags auth
// @Success 204 "Access token cookie set"
// @Failure 401 {object} handlers.RefreshErrorResponse "Missing or invalid refresh token"
// @Router /auth/refresh [post]
func NewRefreshHandler(svc Refresher, refreshGetter TokenGetter, accessSetter TokenSetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refreshToken, err := refreshGetter.GetTokenFromRequest(r.Context(), r)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(RefreshErrorResponse{
				Error: "Invalid refresh token",
			})
			return
		}

		accessToken, err := svc.Refresh(r.Context(), refreshToken)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidRefreshToken):
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(RefreshErrorResponse{
					Error: "Invalid refresh token",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(RefreshErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		accessSetter.SetTokenToResponse(w, accessToken)
		w.WriteHeader(http.StatusNoContent)
	}
}
