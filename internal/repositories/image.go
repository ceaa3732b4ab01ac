package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-image-share/internal/logger"
	"github.com/sbilibin2017/gw-image-share/internal/models"
)

const imageColumns = `image_id, author_id, unique_name, title, description, tags, is_public, created_at, updated_at`

// sortColumns whitelists the sortable fields and maps them onto columns.
var sortColumns = map[string]string{
	models.SortFieldTitle:     "title",
	models.SortFieldCreatedAt: "created_at",
	models.SortFieldUpdatedAt: "updated_at",
}

// ImageWriteRepository handles image metadata mutations.
type ImageWriteRepository struct {
	db *sqlx.DB
}

func NewImageWriteRepository(db *sqlx.DB) *ImageWriteRepository {
	return &ImageWriteRepository{db: db}
}

// Save inserts a new image metadata row and returns it.
func (r *ImageWriteRepository) Save(ctx context.Context, authorID uuid.UUID, uniqueName, title string, description *string, tags []string, isPublic bool) (*models.ImageDB, error) {
	query := `
		INSERT INTO images (image_id, author_id, unique_name, title, description, tags, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::text[], $7, NOW(), NOW())
		RETURNING ` + imageColumns
	args := []any{uuid.New(), authorID, uniqueName, title, description, models.StringArray(tags), isPublic}

	var image models.ImageDB
	err := r.db.GetContext(ctx, &image, query, args...)

	// Log with query in single line
	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{authorID, title},
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return &image, nil
}

// Update patches metadata fields of the image owned by authorID and
// returns the updated row. The ownership check is the mutation's own
// predicate, not a separate read: a row is updated only when both id and
// author match. Returns nil when no such row was updated.
func (r *ImageWriteRepository) Update(ctx context.Context, imageID, authorID uuid.UUID, title, description *string, tags []string, isPublic *bool) (*models.ImageDB, error) {
	query := `
		UPDATE images
		SET title = COALESCE($3, title),
		    description = COALESCE($4, description),
		    tags = COALESCE($5::text[], tags),
		    is_public = COALESCE($6, is_public),
		    updated_at = NOW()
		WHERE image_id = $1 AND author_id = $2
		RETURNING ` + imageColumns

	var tagsArg any
	if tags != nil {
		tagsArg = models.StringArray(tags)
	}
	args := []any{imageID, authorID, title, description, tagsArg, isPublic}

	var image models.ImageDB
	err := r.db.GetContext(ctx, &image, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{imageID, authorID},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &image, nil
}

// Delete removes the image owned by authorID and returns the deleted row,
// which carries the blob key for subsequent cleanup. Same conditional
// predicate as Update; returns nil when nothing was deleted.
func (r *ImageWriteRepository) Delete(ctx context.Context, imageID, authorID uuid.UUID) (*models.ImageDB, error) {
	query := `
		DELETE FROM images
		WHERE image_id = $1 AND author_id = $2
		RETURNING ` + imageColumns
	args := []any{imageID, authorID}

	var image models.ImageDB
	err := r.db.GetContext(ctx, &image, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &image, nil
}

// DeleteByID removes an image row unconditionally. Used only as the
// compensating action when a blob upload fails after the metadata insert.
func (r *ImageWriteRepository) DeleteByID(ctx context.Context, imageID uuid.UUID) error {
	query := `DELETE FROM images WHERE image_id = $1`

	res, err := r.db.ExecContext(ctx, query, imageID)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{imageID},
		"result", rowsAffected,
		"error", err,
	)

	return err
}

// ImageReadRepository handles image metadata queries.
type ImageReadRepository struct {
	db *sqlx.DB
}

func NewImageReadRepository(db *sqlx.DB) *ImageReadRepository {
	return &ImageReadRepository{db: db}
}

// GetByID returns the image with the given id, or nil if none exists.
func (r *ImageReadRepository) GetByID(ctx context.Context, imageID uuid.UUID) (*models.ImageDB, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE image_id = $1`

	var image models.ImageDB
	err := r.db.GetContext(ctx, &image, query, imageID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{imageID},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &image, nil
}

// GetAuthorID returns the owner of the image, or uuid.Nil if the image
// does not exist. Used to tell "not found" apart from "wrong owner" after
// a conditional mutation matched no row.
func (r *ImageReadRepository) GetAuthorID(ctx context.Context, imageID uuid.UUID) (uuid.UUID, error) {
	query := `SELECT author_id FROM images WHERE image_id = $1`

	var authorID uuid.UUID
	err := r.db.GetContext(ctx, &authorID, query, imageID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{imageID},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}

	return authorID, nil
}

// Find executes the filtered, sorted, paginated image listing using a
// deferred join: a thin subquery resolves only the matching ids under the
// filter/sort/limit/offset, then joins back against the full row. The sort
// is re-applied on the outer query because the join does not preserve the
// subquery's ordering.
func (r *ImageReadRepository) Find(ctx context.Context, opts models.ImageSearchOptions, authorID *uuid.UUID) ([]models.ImageDB, error) {
	var (
		conds []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if opts.Filter != nil {
		if opts.Filter.Title != "" {
			conds = append(conds, fmt.Sprintf("title ILIKE '%%' || %s || '%%'", arg(opts.Filter.Title)))
		}
		// Images that have ANY of the requested tags
		if len(opts.Filter.Tags) > 0 {
			conds = append(conds, fmt.Sprintf("tags && %s::text[]", arg(models.StringArray(opts.Filter.Tags))))
		}
	}
	if authorID != nil {
		conds = append(conds, fmt.Sprintf("author_id = %s", arg(*authorID)))
	}

	sub := `SELECT image_id FROM images`
	if len(conds) > 0 {
		sub += ` WHERE ` + strings.Join(conds, " AND ")
	}

	orderBy := ""
	if opts.Sort != nil {
		column, ok := sortColumns[opts.Sort.Field]
		if !ok {
			return nil, fmt.Errorf("unknown sort field %q", opts.Sort.Field)
		}
		dir := "ASC"
		if opts.Sort.Order == models.SortOrderDesc {
			dir = "DESC"
		}
		// image_id tiebreak keeps the ordering deterministic and pages stable
		orderBy = fmt.Sprintf(" ORDER BY %s %s, image_id %s", column, dir, dir)
		sub += orderBy
	}

	if opts.Paginate != nil {
		sub += fmt.Sprintf(" LIMIT %s OFFSET %s",
			arg(opts.Paginate.PageSize),
			arg((opts.Paginate.Page-1)*opts.Paginate.PageSize),
		)
	}

	query := `
		SELECT i.image_id, i.author_id, i.unique_name, i.title, i.description, i.tags, i.is_public, i.created_at, i.updated_at
		FROM images i
		INNER JOIN (` + sub + `) sq ON i.image_id = sq.image_id`
	if orderBy != "" {
		query += strings.ReplaceAll(orderBy, "image_id", "i.image_id")
	}

	var images []models.ImageDB
	err := r.db.SelectContext(ctx, &images, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", len(images),
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return images, nil
}
