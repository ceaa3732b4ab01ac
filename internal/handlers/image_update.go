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
	"github.com/sbilibin2017/gw-image-share/internal/models"
	"github.com/sbilibin2017/gw-image-share/internal/services"
)

// ImageUpdater defines the interface that the image update service must implement.
type ImageUpdater interface {
	Update(ctx context.Context, imageID, authorID uuid.UUID, title, description *string, tags []string, isPublic *bool) (*models.ImageWithURL, error)
}

// UpdateImageRequest represents the JSON body for an image metadata patch
// swagger:model UpdateImageRequest
type UpdateImageRequest struct {
	// Title, omit to keep current
	// default: Sunset at the pier
	Title *string `json:"title"`

	// Description, omit to keep current
	Description *string `json:"description"`

	// Tags, omit to keep current
	Tags []string `json:"tags"`

	// Visibility flag, omit to keep current
	IsPublic *bool `json:"is_public"`
}

// NewUpdateImageHandler returns an HTTP handler for patching image metadata.
// The binary content is immutable; replacing an image is delete plus upload.
// @Summary Update own image
// @Description Patches image metadata. Omitted fields keep current values. Only the owner may update.
// @Tags images
// @Accept json
// @Produce json
// @Param id path string true "Image id"
// @Param updateImageRequest body handlers.UpdateImageRequest true "Image patch"
// @Success 200 {object} models.ImageWithURL "Updated image"
// @Failure 400 {object} handlers.ImageErrorResponse "Invalid request"
// @Failure 401 {object} handlers.ImageErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ImageErrorResponse "Not the owner"
// @Failure 404 {object} handlers.ImageErrorResponse "Image not found"
// @Router /me/images/{id} [patch]
// @Security CookieAuth
func NewUpdateImageHandler(svc ImageUpdater) http.HandlerFunc {
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

		var req UpdateImageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ImageErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		image, err := svc.Update(r.Context(), imageID, userID, req.Title, req.Description, req.Tags, req.IsPublic)
		if err != nil {
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

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(image)
	}
}
