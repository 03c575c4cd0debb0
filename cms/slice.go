package cms

import "time"

// DefaultSlot is the slot used when a caller does not name one.
const DefaultSlot = "main"

// Slice is a standalone content unit: a module name plus the key/value
// payload that module renders. Slices live independently of articles;
// an ArticleSlice binds one into an article revision.
type Slice struct {
	ID     int64       `db:"id"`
	Module string      `db:"module"`
	Values SliceValues `db:"serialized_values"`
}

// ArticleSlice places a Slice at a 0-based position inside one slot of
// one specific article revision. Within (article, clang, revision, slot)
// the positions form a gap-free 0..N-1 run.
type ArticleSlice struct {
	ID        int64  `db:"id"`
	ArticleID int64  `db:"article_id"`
	Clang     int64  `db:"clang"`
	Revision  int    `db:"revision"`
	Slot      string `db:"slot"`
	Position  int    `db:"pos"`
	SliceID   int64  `db:"slice_id"`

	CreateUser string    `db:"createuser"`
	CreateDate time.Time `db:"createdate"`
	UpdateUser string    `db:"updateuser"`
	UpdateDate time.Time `db:"updatedate"`
}
