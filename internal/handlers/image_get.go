package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-image-share/internal/logger"
	"github.com/sbilibin2017/gw-image-share/internal/models"
	"github.com/sbilibin2017/gw-image-share/internal/services"
)

// ImageGetter defines the interface that the image read service must implement.
type ImageGetter interface {
	Get(ctx context.Context, imageID uuid.UUID) (*models.ImageWithURL, error)
}

// NewGetImageHandler returns an HTTP handler for fetching a single image.
// @Summary Get image by id
// @Description Returns one image with a presigned download URL.
// @Tags images
// @Produce json
// @Param id path string true "Image id"
// @Success 200 {object} models.ImageWithURL "Image"
// @Failure 400 {object} handlers.ImageErrorResponse "Invalid image id"
// @Failure 404 {object} handlers.ImageErrorResponse "Image not found"
// @Router /images/{id} [get]
func NewGetImageHandler(svc ImageGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		imageID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ImageErrorResponse{
				Error: "invalid image id",
			})
			return
		}

		image, err := svc.Get(r.Context(), imageID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrImageNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(ImageErrorResponse{
					Error: "Image not found",
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
