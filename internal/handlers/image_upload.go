package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-image-share/internal/logger"
	"github.com/sbilibin2017/gw-image-share/internal/middlewares"
	"github.com/sbilibin2017/gw-image-share/internal/models"
	"github.com/sbilibin2017/gw-image-share/internal/services"
)

// maxImageSize caps the multipart upload body.
const maxImageSize = 500 << 20

// ImageUploader defines the interface that the upload service must implement.
type ImageUploader interface {
	Upload(ctx context.Context, authorID uuid.UUID, title string, description *string, tags []string, isPublic bool, data []byte, contentType string) (*models.ImageWithURL, error)
}

// NewUploadImageHandler returns an HTTP handler for image upload.
// @Summary Upload a new image
// @Description Accepts a multipart form with the binary under "image" plus title, description, tags, and is_public fields. Only JPEG and PNG are accepted.
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file, jpeg or png"
// @Param title formData string true "Image title"
// @Param description formData string false "Image description"
// @Param tags formData string false "Comma-separated tags"
// @Param is_public formData bool false "Visibility flag"
// @Success 201 {object} models.ImageWithURL "Uploaded image with presigned URL"
// @Failure 400 {object} handlers.ImageErrorResponse "Invalid form, unsupported type, or file too large"
// @Failure 401 {object} handlers.ImageErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.ImageErrorResponse "Failed to save image"
// @Router /me/images [post]
// @Security CookieAuth
func NewUploadImageHandler(svc ImageUploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserIDFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ImageErrorResponse{
				Error: "invalid multipart form",
			})
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ImageErrorResponse{
				Error: "image file is required",
			})
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if contentType != "image/jpeg" && contentType != "image/png" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ImageErrorResponse{
				Error: "only jpeg and png images are accepted",
			})
			return
		}

		data, err := io.ReadAll(file)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ImageErrorResponse{
				Error: "failed to read image file",
			})
			return
		}

		title := r.FormValue("title")
		if title == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ImageErrorResponse{
				Error: "title is required",
			})
			return
		}

		var description *string
		if d := r.FormValue("description"); d != "" {
			description = &d
		}

		var tags []string
		for _, tag := range strings.Split(r.FormValue("tags"), ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}

		isPublic := r.FormValue("is_public") == "true"

		image, err := svc.Upload(r.Context(), userID, title, description, tags, isPublic, data, contentType)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrStorage):
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ImageErrorResponse{
					Error: "Failed to save image",
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
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(image)
	}
}
