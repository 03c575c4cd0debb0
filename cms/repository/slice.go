package repository

import (
	"context"

	"github.com/slatecms/slate/cms"
)

// SliceRepository defines persistence operations on slices and their
// placements. The AllSlots constant selects every slot of a revision
// where a method takes a slot argument.
const AllSlots = ""

type SliceRepository interface {
	// GetSlice retrieves one slice payload.
	GetSlice(ctx context.Context, id int64) (*cms.Slice, error)

	// InsertSlice inserts a slice and returns the generated id.
	InsertSlice(ctx context.Context, s *cms.Slice) (int64, error)

	// UpdateSliceValues replaces the payload of an existing slice in
	// place. Placements referencing the slice, current or historic,
	// all observe the new payload.
	UpdateSliceValues(ctx context.Context, id int64, values cms.SliceValues) error

	// GetArticleSliceAt retrieves the placement at one position of a
	// slot within a specific article revision.
	GetArticleSliceAt(ctx context.Context, articleID, clang int64, revision int, slot string, pos int) (*cms.ArticleSlice, error)

	// FindArticleSlices lists the placements of one slot (or all
	// slots) of an article revision, ordered by slot, then position.
	FindArticleSlices(ctx context.Context, articleID, clang int64, revision int, slot string) ([]*cms.ArticleSlice, error)

	// CountArticleSlices counts the placements in one slot of an
	// article revision.
	CountArticleSlices(ctx context.Context, articleID, clang int64, revision int, slot string) (int, error)

	// InsertArticleSlice inserts a placement and returns the generated id.
	InsertArticleSlice(ctx context.Context, as *cms.ArticleSlice) (int64, error)

	// ShiftArticleSlices adds delta to the position of every placement
	// in the slot whose position lies in [lo, hi]. hi < 0 means no
	// upper bound.
	ShiftArticleSlices(ctx context.Context, articleID, clang int64, revision int, slot string, lo, hi, delta int) error

	// SetArticleSlicePosition moves one placement to an absolute position.
	SetArticleSlicePosition(ctx context.Context, id int64, pos int) error

	// DeleteArticleSlice removes a single placement row.
	DeleteArticleSlice(ctx context.Context, id int64) error

	// DeleteArticleSlices removes all placements of one slot (or all
	// slots) of an article revision.
	DeleteArticleSlices(ctx context.Context, articleID, clang int64, revision int, slot string) error

	// DeleteArticleSlicesByArticle removes every placement of every
	// revision of an article in one language. Used by forced category
	// deletion only.
	DeleteArticleSlicesByArticle(ctx context.Context, articleID, clang int64) error

	// CopyArticleSlices duplicates every placement of fromRevision
	// into toRevision, keeping slots, positions and slice references.
	// The slice payloads themselves are shared, not copied.
	CopyArticleSlices(ctx context.Context, articleID, clang int64, fromRevision, toRevision int, actor string) error
}
