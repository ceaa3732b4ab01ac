package models

// Sortable image columns.
const (
	SortFieldTitle     = "title"
	SortFieldCreatedAt = "createdAt"
	SortFieldUpdatedAt = "updatedAt"

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// ImageFilter narrows an image search. All fields are optional and
// combined with AND; Tags matches images having at least one of the
// requested tags.
type ImageFilter struct {
	Title string   `json:"title"` // Case-insensitive substring match on title
	Tags  []string `json:"tags"`  // Tag overlap (OR within the list)
}

// ImageSort selects a single sort column and direction. The image id is
// always appended as a tiebreaker in the same direction so that pagination
// stays stable when the primary field has duplicates.
type ImageSort struct {
	Field string `json:"field"` // One of title, createdAt, updatedAt
	Order string `json:"order"` // asc or desc
}

// ImagePaginate is offset pagination, 1-indexed.
type ImagePaginate struct {
	Page     int `json:"page"`     // Page number, >= 1
	PageSize int `json:"pageSize"` // Rows per page, >= 1
}

// ImageSearchOptions bundles the optional filter, sort, and pagination of
// an image listing query.
type ImageSearchOptions struct {
	Filter   *ImageFilter   `json:"filter"`
	Sort     *ImageSort     `json:"sort"`
	Paginate *ImagePaginate `json:"paginate"`
}
