package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-image-share/internal/logger"
	"github.com/sbilibin2017/gw-image-share/internal/models"
)

// NewListUserImagesHandler returns an HTTP handler listing one user's images.
// Same search surface as the public listing, scoped to the author in the
// path. An unknown author yields an empty list rather than a 404.
// @Summary Search a user's images
// @Description Lists the given user's images with optional filtering, sorting, and offset pagination.
// @Tags users
// @Produce json
// @Param id path string true "User id"
// @Param filter.title query string false "Case-insensitive title substring"
// @Param filter.tags query string false "Comma-separated tags, matches any"
// @Param sort.field query string false "title, createdAt, or updatedAt"
// @Param sort.order query string false "asc or desc"
// @Param paginate.page query int false "Page number, >= 1"
// @Param paginate.pageSize query int false "Rows per page, >= 1"
// @Success 200 {array} models.ImageWithURL "User's images"
// @Failure 400 {object} handlers.ImageErrorResponse "Invalid user id or search parameters"
// @Router /users/{id}/images [get]
func NewListUserImagesHandler(svc ImageSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ImageErrorResponse{
				Error: "invalid user id",
			})
			return
		}

		opts, err := parseSearchOptions(r.URL.Query())
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ImageErrorResponse{
				Error: err.Error(),
			})
			return
		}

		images, err := svc.Search(r.Context(), opts, &authorID)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ImageErrorResponse{
				Error: "Internal server error",
			})
			return
		}

		if images == nil {
			images = []models.ImageWithURL{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(images)
	}
}
