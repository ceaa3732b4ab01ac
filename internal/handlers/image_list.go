package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-image-share/internal/logger"
	"github.com/sbilibin2017/gw-image-share/internal/models"
)

// ImageSearcher defines the interface that the image search service must implement.
type ImageSearcher interface {
	Search(ctx context.Context, opts models.ImageSearchOptions, authorID *uuid.UUID) ([]models.ImageWithURL, error)
}

// ImageErrorResponse represents an error response for image operations
// swagger:model ImageErrorResponse
type ImageErrorResponse struct {
	// Error message
	// default: Image not found
	Error string `json:"error"`
}

// parseSearchOptions builds ImageSearchOptions from dotted query
// parameters: filter.title, filter.tags (comma-separated), sort.field,
// sort.order, paginate.page, paginate.pageSize. Sort and paginate groups
// are all-or-nothing; a group with an invalid member is an error rather
// than silently ignored.
func parseSearchOptions(query url.Values) (models.ImageSearchOptions, error) {
	var opts models.ImageSearchOptions

	title := query.Get("filter.title")
	tagsRaw := query.Get("filter.tags")
	if title != "" || tagsRaw != "" {
		filter := &models.ImageFilter{Title: title}
		if tagsRaw != "" {
			for _, tag := range strings.Split(tagsRaw, ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					filter.Tags = append(filter.Tags, tag)
				}
			}
		}
		opts.Filter = filter
	}

	field := query.Get("sort.field")
	order := query.Get("sort.order")
	if field != "" || order != "" {
		switch field {
		case models.SortFieldTitle, models.SortFieldCreatedAt, models.SortFieldUpdatedAt:
		default:
			return opts, fmt.Errorf("invalid sort.field %q", field)
		}
		switch order {
		case models.SortOrderAsc, models.SortOrderDesc:
		default:
			return opts, fmt.Errorf("invalid sort.order %q", order)
		}
		opts.Sort = &models.ImageSort{Field: field, Order: order}
	}

	pageRaw := query.Get("paginate.page")
	pageSizeRaw := query.Get("paginate.pageSize")
	if pageRaw != "" || pageSizeRaw != "" {
		page, err := strconv.Atoi(pageRaw)
		if err != nil || page < 1 {
			return opts, fmt.Errorf("invalid paginate.page %q", pageRaw)
		}
		pageSize, err := strconv.Atoi(pageSizeRaw)
		if err != nil || pageSize < 1 {
			return opts, fmt.Errorf("invalid paginate.pageSize %q", pageSizeRaw)
		}
		opts.Paginate = &models.ImagePaginate{Page: page, PageSize: pageSize}
	}

	return opts, nil
}

// NewListImagesHandler returns an HTTP handler for the public image listing.
// @Summary Search images
// @Description Lists images with optional filtering, sorting, and offset pagination. Each result carries a presigned download URL.
// @Tags images
// @Produce json
// @Param filter.title query string false "Case-insensitive title substring"
// @Param filter.tags query string false "Comma-separated tags, matches any"
// @Param sort.field query string false "title, createdAt, or updatedAt"
// @Param sort.order query string false "asc or desc"
// @Param paginate.page query int false "Page number, >= 1"
// @Param paginate.pageSize query int false "Rows per page, >= 1"
// @Success 200 {array} models.ImageWithURL "Matching images"
// @Failure 400 {object} handlers.ImageErrorResponse "Invalid search parameters"
// @Router /images [get]
func NewListImagesHandler(svc ImageSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := parseSearchOptions(r.URL.Query())
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ImageErrorResponse{
				Error: err.Error(),
			})
			return
		}

		images, err := svc.Search(r.Context(), opts, nil)
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
