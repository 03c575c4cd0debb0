package repository

import (
	"context"

	"github.com/slatecms/slate/cms"
)

// ArticleRepository defines persistence operations on articles. Unless
// a method says otherwise, it operates on current revisions only: the
// row with the highest revision per (id, clang). Older revisions are
// history and are never modified.
type ArticleRepository interface {
	// GetArticle retrieves the current revision of an article.
	GetArticle(ctx context.Context, id, clang int64) (*cms.Article, error)

	// GetArticleRevision retrieves one specific revision.
	GetArticleRevision(ctx context.Context, id, clang int64, revision int) (*cms.Article, error)

	// InsertArticle inserts the revision-0 row of a brand new article
	// and returns the generated id. When a.ID is non-zero that id is
	// used, so language variants share an identity.
	InsertArticle(ctx context.Context, a *cms.Article) (int64, error)

	// InsertArticleRevision appends a revision row with the exact
	// (ID, Clang, Revision) carried by a.
	InsertArticleRevision(ctx context.Context, a *cms.Article) error

	// UpdateArticle writes the mutable metadata columns of the row
	// identified by (a.ID, a.Clang, a.Revision).
	UpdateArticle(ctx context.Context, a *cms.Article) error

	// FindArticlesByCategory lists the current, non-deleted articles
	// of a category, ordered by position.
	FindArticlesByCategory(ctx context.Context, parentID, clang int64) ([]*cms.Article, error)

	// CountArticlesByCategory counts current, non-deleted articles of
	// a category.
	CountArticlesByCategory(ctx context.Context, parentID, clang int64) (int, error)

	// ShiftArticles adds delta to the position of every current,
	// non-deleted article of parentID whose position lies in [lo, hi].
	// hi < 0 means no upper bound.
	ShiftArticles(ctx context.Context, parentID, clang int64, lo, hi, delta int) error

	// ArticleClangs lists the languages an article exists in.
	ArticleClangs(ctx context.Context, id int64) ([]int64, error)

	// ListRevisions lists every revision of an article, newest first.
	ListRevisions(ctx context.Context, id, clang int64) ([]*cms.Article, error)

	// SetArticlePathByCategory rewrites the cached path on all revisions
	// of all articles directly inside a category. Revision history keeps
	// pointing at the article's current location.
	SetArticlePathByCategory(ctx context.Context, categoryID, clang int64, path string) error

	// SetArticleCatnameByCategory rewrites the cached category name on
	// all revisions of all articles directly inside a category.
	SetArticleCatnameByCategory(ctx context.Context, categoryID, clang int64, catname string) error

	// SetArticleDeleted flips the deleted flag on the current revision
	// of one article.
	SetArticleDeleted(ctx context.Context, id, clang int64, deleted bool) error

	// FindDeletedArticles lists the current revision of every
	// soft-deleted article in a language.
	FindDeletedArticles(ctx context.Context, clang int64) ([]*cms.Article, error)

	// ArticleIDsByCategory lists the distinct ids of every article
	// directly inside a category, soft-deleted ones included.
	ArticleIDsByCategory(ctx context.Context, categoryID, clang int64) ([]int64, error)

	// DeleteArticlesByCategory hard-deletes all revisions of all
	// articles directly inside a category. Used by forced category
	// deletion only.
	DeleteArticlesByCategory(ctx context.Context, categoryID, clang int64) error
}
