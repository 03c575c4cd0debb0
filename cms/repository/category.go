package repository

import (
	"context"

	"github.com/slatecms/slate/cms"
)

// CategoryRepository defines persistence operations on the category tree.
// "Not found" surfaces as sql.ErrNoRows (possibly wrapped); the services
// translate it into domain errors.
type CategoryRepository interface {
	// GetCategory retrieves one category by id and language.
	GetCategory(ctx context.Context, id, clang int64) (*cms.Category, error)

	// InsertCategory inserts a category and returns the generated id.
	// When c.ID is non-zero that id is used instead, so language
	// variants of one category can share an identity.
	InsertCategory(ctx context.Context, c *cms.Category) (int64, error)

	// UpdateCategory writes all mutable columns of the row identified
	// by (c.ID, c.Clang).
	UpdateCategory(ctx context.Context, c *cms.Category) error

	// DeleteCategory removes one category row.
	DeleteCategory(ctx context.Context, id, clang int64) error

	// FindChildCategories lists the direct children of a parent,
	// ordered by position.
	FindChildCategories(ctx context.Context, parentID, clang int64) ([]*cms.Category, error)

	// CountChildCategories counts the direct children of a parent.
	CountChildCategories(ctx context.Context, parentID, clang int64) (int, error)

	// ShiftCategories adds delta to the position of every child of
	// parentID whose position lies in [lo, hi]. hi < 0 means no upper
	// bound.
	ShiftCategories(ctx context.Context, parentID, clang int64, lo, hi, delta int) error

	// SetCategoryPosition moves one category to an absolute position.
	SetCategoryPosition(ctx context.Context, id, clang int64, pos int) error

	// SetCategoryPath rewrites the materialized path of one category.
	SetCategoryPath(ctx context.Context, id, clang int64, path string) error
}
