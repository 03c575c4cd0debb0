package cms

import "time"

// Article is one revision of an article in one language variant.
// The tuple (id, clang) names the logical article; the highest revision
// is the current one. Revision rows are append-only: once written they
// are never structurally modified again.
type Article struct {
	ID       int64 `db:"id"`
	Clang    int64 `db:"clang"`
	Revision int   `db:"revision"`

	Name     string `db:"name"`
	Catname  string `db:"catname"`
	ParentID int64  `db:"re_id"`
	Position int    `db:"pos"`
	Catpos   int    `db:"catpos"`
	Path     string `db:"path"`
	Type     string `db:"type"`

	Startpage bool `db:"startpage"`
	Online    bool `db:"online"`
	Deleted   bool `db:"deleted"`

	Attributes Attributes `db:"attributes"`

	CreateUser string    `db:"createuser"`
	CreateDate time.Time `db:"createdate"`
	UpdateUser string    `db:"updateuser"`
	UpdateDate time.Time `db:"updatedate"`
}

// IsStartArticle reports whether the article is the start article of
// its category.
func (a *Article) IsStartArticle() bool {
	return a.Startpage
}

// CategoryID returns the id of the owning category, 0 for root-level
// articles.
func (a *Article) CategoryID() int64 {
	return a.ParentID
}
