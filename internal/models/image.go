package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImageDB represents an image metadata row in the database.
// UniqueName is the blob-store key and is never serialized to clients;
// callers receive a presigned URL instead.
type ImageDB struct {
	ImageID     uuid.UUID   `json:"id" db:"image_id"`           // Primary key
	AuthorID    uuid.UUID   `json:"author_id" db:"author_id"`   // Owner of the image
	UniqueName  string      `json:"-" db:"unique_name"`         // Blob-store key, system generated
	Title       string      `json:"title" db:"title"`           // Image title
	Description *string     `json:"description" db:"description"` // Optional description
	Tags        StringArray `json:"tags" db:"tags"`             // Image tags, may be empty
	IsPublic    bool        `json:"is_public" db:"is_public"`   // Visibility flag
	CreatedAt   time.Time   `json:"created_at" db:"created_at"` // Creation timestamp
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"` // Last update timestamp
}

// ImageWithURL is an image enriched with a time-limited read URL.
type ImageWithURL struct {
	ImageDB
	URL string `json:"url"` // Presigned read URL
}

// StringArray maps a postgres text[] column onto []string for database/sql scanning.
type StringArray []string

// Scan implements sql.Scanner for postgres array literals like {a,b,"c d"}.
func (a *StringArray) Scan(src any) error {
	var literal string
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case string:
		literal = v
	case []byte:
		literal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into StringArray", src)
	}

	literal = strings.TrimPrefix(literal, "{")
	literal = strings.TrimSuffix(literal, "}")
	if literal == "" {
		*a = StringArray{}
		return nil
	}

	var (
		elems    []string
		current  strings.Builder
		inQuotes bool
		escaped  bool
	)
	for _, r := range literal {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			elems = append(elems, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	elems = append(elems, current.String())

	*a = elems
	return nil
}

// Value implements driver.Valuer, producing a postgres array literal.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	quoted := make([]string, len(a))
	for i, s := range a {
		s = strings.ReplaceAll(s, `\`, `\\`)
		s = strings.ReplaceAll(s, `"`, `\"`)
		quoted[i] = `"` + s + `"`
	}
	return "{" + strings.Join(quoted, ",") + "}", nil
}
