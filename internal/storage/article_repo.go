package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"

	"github.com/slatecms/slate/cms"
)

// Article repository methods for Store.
//
// "Current revision" is the row with the highest revision per
// (id, clang). Most queries carry the correlated subquery below; older
// revisions are read-only history and only ListRevisions and the
// forced-delete cascade ever look at them.

const articleColumns = `id, clang, revision, name, catname, re_id, pos, catpos,
	path, type, startpage, online, deleted, attributes,
	createuser, createdate, updateuser, updatedate`

const currentRevision = `revision = (SELECT MAX(b.revision) FROM article b
	WHERE b.id = article.id AND b.clang = article.clang)`

func (s *Store) GetArticle(ctx context.Context, id, clang int64) (*cms.Article, error) {
	a := &cms.Article{}
	err := sqlx.GetContext(ctx, s.ext, a,
		`SELECT `+articleColumns+` FROM article
		 WHERE id = ? AND clang = ?
		 ORDER BY revision DESC LIMIT 1`, id, clang)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "selecting article")
	}
	return a, nil
}

func (s *Store) GetArticleRevision(ctx context.Context, id, clang int64, revision int) (*cms.Article, error) {
	a := &cms.Article{}
	err := sqlx.GetContext(ctx, s.ext, a,
		`SELECT `+articleColumns+` FROM article
		 WHERE id = ? AND clang = ? AND revision = ?`, id, clang, revision)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "selecting article revision")
	}
	return a, nil
}

func (s *Store) InsertArticle(ctx context.Context, a *cms.Article) (int64, error) {
	if a.ID == 0 {
		id, err := s.nextID(ctx, "article_id_seq")
		if err != nil {
			return 0, err
		}
		a.ID = id
	}
	if err := s.InsertArticleRevision(ctx, a); err != nil {
		return 0, err
	}
	return a.ID, nil
}

func (s *Store) InsertArticleRevision(ctx context.Context, a *cms.Article) error {
	_, err := sqlx.NamedExecContext(ctx, s.ext, `
		INSERT INTO article (id, clang, revision, name, catname, re_id, pos, catpos,
			path, type, startpage, online, deleted, attributes,
			createuser, createdate, updateuser, updatedate)
		VALUES (:id, :clang, :revision, :name, :catname, :re_id, :pos, :catpos,
			:path, :type, :startpage, :online, :deleted, :attributes,
			:createuser, :createdate, :updateuser, :updatedate)`, a)
	return pkgerrors.Wrap(err, "inserting article revision")
}

func (s *Store) UpdateArticle(ctx context.Context, a *cms.Article) error {
	_, err := sqlx.NamedExecContext(ctx, s.ext, `
		UPDATE article
		SET name = :name, catname = :catname, re_id = :re_id, pos = :pos,
			catpos = :catpos, path = :path, type = :type, startpage = :startpage,
			online = :online, deleted = :deleted, attributes = :attributes,
			updateuser = :updateuser, updatedate = :updatedate
		WHERE id = :id AND clang = :clang AND revision = :revision`, a)
	return pkgerrors.Wrap(err, "updating article")
}

func (s *Store) FindArticlesByCategory(ctx context.Context, parentID, clang int64) ([]*cms.Article, error) {
	var arts []*cms.Article
	err := sqlx.SelectContext(ctx, s.ext, &arts,
		`SELECT `+articleColumns+` FROM article
		 WHERE re_id = ? AND clang = ? AND deleted = 0 AND `+currentRevision+`
		 ORDER BY pos ASC`, parentID, clang)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "selecting articles by category")
	}
	return arts, nil
}

func (s *Store) CountArticlesByCategory(ctx context.Context, parentID, clang int64) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, s.ext, &n,
		`SELECT COUNT(*) FROM article
		 WHERE re_id = ? AND clang = ? AND deleted = 0 AND `+currentRevision, parentID, clang)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "counting articles by category")
	}
	return n, nil
}

func (s *Store) ShiftArticles(ctx context.Context, parentID, clang int64, lo, hi, delta int) error {
	var err error
	if hi < 0 {
		_, err = s.ext.ExecContext(ctx, `
			UPDATE article SET pos = pos + ?
			WHERE re_id = ? AND clang = ? AND deleted = 0 AND pos >= ?
			AND `+currentRevision,
			delta, parentID, clang, lo)
	} else {
		_, err = s.ext.ExecContext(ctx, `
			UPDATE article SET pos = pos + ?
			WHERE re_id = ? AND clang = ? AND deleted = 0 AND pos BETWEEN ? AND ?
			AND `+currentRevision,
			delta, parentID, clang, lo, hi)
	}
	return pkgerrors.Wrap(err, "shifting article positions")
}

func (s *Store) ArticleClangs(ctx context.Context, id int64) ([]int64, error) {
	var clangs []int64
	err := sqlx.SelectContext(ctx, s.ext, &clangs,
		`SELECT DISTINCT clang FROM article WHERE id = ? ORDER BY clang ASC`, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "selecting article languages")
	}
	return clangs, nil
}

func (s *Store) ListRevisions(ctx context.Context, id, clang int64) ([]*cms.Article, error) {
	var revs []*cms.Article
	err := sqlx.SelectContext(ctx, s.ext, &revs,
		`SELECT `+articleColumns+` FROM article
		 WHERE id = ? AND clang = ? ORDER BY revision DESC`, id, clang)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "selecting revision history")
	}
	return revs, nil
}

func (s *Store) SetArticlePathByCategory(ctx context.Context, categoryID, clang int64, path string) error {
	_, err := s.ext.ExecContext(ctx,
		`UPDATE article SET path = ? WHERE re_id = ? AND clang = ?`, path, categoryID, clang)
	return pkgerrors.Wrap(err, "setting article paths")
}

func (s *Store) SetArticleCatnameByCategory(ctx context.Context, categoryID, clang int64, catname string) error {
	_, err := s.ext.ExecContext(ctx,
		`UPDATE article SET catname = ? WHERE re_id = ? AND clang = ?`, catname, categoryID, clang)
	return pkgerrors.Wrap(err, "setting article catnames")
}

func (s *Store) SetArticleDeleted(ctx context.Context, id, clang int64, deleted bool) error {
	_, err := s.ext.ExecContext(ctx,
		`UPDATE article SET deleted = ?
		 WHERE id = ? AND clang = ? AND `+currentRevision, deleted, id, clang)
	return pkgerrors.Wrap(err, "setting article deleted flag")
}

func (s *Store) FindDeletedArticles(ctx context.Context, clang int64) ([]*cms.Article, error) {
	var arts []*cms.Article
	err := sqlx.SelectContext(ctx, s.ext, &arts,
		`SELECT `+articleColumns+` FROM article
		 WHERE clang = ? AND deleted = 1 AND `+currentRevision+`
		 ORDER BY updatedate DESC, id ASC`, clang)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "selecting deleted articles")
	}
	return arts, nil
}

func (s *Store) ArticleIDsByCategory(ctx context.Context, categoryID, clang int64) ([]int64, error) {
	var ids []int64
	err := sqlx.SelectContext(ctx, s.ext, &ids,
		`SELECT DISTINCT id FROM article WHERE re_id = ? AND clang = ? ORDER BY id ASC`,
		categoryID, clang)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "selecting article ids by category")
	}
	return ids, nil
}

func (s *Store) DeleteArticlesByCategory(ctx context.Context, categoryID, clang int64) error {
	_, err := s.ext.ExecContext(ctx,
		`DELETE FROM article WHERE re_id = ? AND clang = ?`, categoryID, clang)
	return pkgerrors.Wrap(err, "deleting articles by category")
}
