package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-image-share/internal/logger"
	"github.com/sbilibin2017/gw-image-share/internal/middlewares"
	"github.com/sbilibin2017/gw-image-share/internal/models"
)

// NewListMyImagesHandler returns an HTTP handler listing the caller's images.
// Same search surface as the public listing, scoped to the authenticated
// author.
// @Summary Search own images
// @Description Lists the authenticated user's images with optional filtering, sorting, and offset pagination.
// @Tags images
// @Produce json
// @Param filter.title query string false "Case-insensitive title substring"
// @Param filter.tags query string false "Comma-separated tags, matches any"
// @Param sort.field query string false "title, createdAt, or updatedAt"
// @Param sort.order query string false "asc or desc"
// @Param paginate.page query int false "Page number, >= 1"
// @Param paginate.pageSize query int false "Rows per page, >= 1"
// @Success 200 {array} models.ImageWithURL "Caller's images"
// @Failure 400 {object} handlers.ImageErrorResponse "Invalid search parameters"
// @Failure 401 {object} handlers.ImageErrorResponse "Unauthorized"
// @Router /me/images [get]
// @Security CookieAuth
func NewListMyImagesHandler(svc ImageSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserIDFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
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

		images, err := svc.Search(r.Context(), opts, &userID)
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
