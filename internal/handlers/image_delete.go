package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-image-share/internal/logger"
	"github.com/sbilibin2017/gw-image-share/internal/middlewares"
	"github.com/sbilibin2017/gw-image-share/internal/services"
)

// ImageRemover defines the interface that the image delete service must implement.
type ImageRemover interface {
	Remove(ctx context.Context, imageID, authorID uuid.UUID) error
}

// NewDeleteImageHandler returns an HTTP handler for image deletion.
// @Summary Delete own image
// @Description Deletes the image metadata and, best effort, its stored binary. Only the owner may delete.
// @Tags images
// @Param id path string true "Image id"
// @Success 204 "Image deleted"
// @Failure 400 {object} handlers.ImageErrorResponse "Invalid image id"
// @Failure 401 {object} handlers.ImageErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ImageErrorResponse "Not the owner"
// @Failure 404 {object} handlers.ImageErrorResponse "Image not found"
// @Router /me/images/{id} [delete]
// @Security CookieAuth
func NewDeleteImageHandler(svc ImageRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserIDFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		imageID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ImageErrorResponse{
				Error: "invalid image id",
			})
			return
		}

		if err := svc.Remove(r.Context(), imageID, userID); err != nil {
			switch {
			case errors.Is(err, services.ErrImageNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(ImageErrorResponse{
					Error: "Image not found",
				})
			case errors.Is(err, services.ErrForbidden):
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(ImageErrorResponse{
					Error: "Not the owner of this image",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ImageErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
