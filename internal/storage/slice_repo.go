package storage

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"

	"github.com/slatecms/slate/cms"
	"github.com/slatecms/slate/cms/repository"
)

// Slice and placement repository methods for Store.

const articleSliceColumns = `id, article_id, clang, revision, slot, pos, slice_id,
	createuser, createdate, updateuser, updatedate`

func (s *Store) GetSlice(ctx context.Context, id int64) (*cms.Slice, error) {
	sl := &cms.Slice{}
	err := sqlx.GetContext(ctx, s.ext, sl,
		`SELECT id, module, serialized_values FROM slice WHERE id = ?`, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "selecting slice")
	}
	return sl, nil
}

func (s *Store) InsertSlice(ctx context.Context, sl *cms.Slice) (int64, error) {
	res, err := sqlx.NamedExecContext(ctx, s.ext, `
		INSERT INTO slice (module, serialized_values)
		VALUES (:module, :serialized_values)`, sl)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "inserting slice")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, pkgerrors.Wrap(err, "reading slice id")
	}
	sl.ID = id
	return id, nil
}

func (s *Store) UpdateSliceValues(ctx context.Context, id int64, values cms.SliceValues) error {
	_, err := s.ext.ExecContext(ctx,
		`UPDATE slice SET serialized_values = ? WHERE id = ?`, values, id)
	return pkgerrors.Wrap(err, "updating slice values")
}

func (s *Store) GetArticleSliceAt(ctx context.Context, articleID, clang int64, revision int, slot string, pos int) (*cms.ArticleSlice, error) {
	as := &cms.ArticleSlice{}
	err := sqlx.GetContext(ctx, s.ext, as,
		`SELECT `+articleSliceColumns+` FROM article_slice
		 WHERE article_id = ? AND clang = ? AND revision = ? AND slot = ? AND pos = ?`,
		articleID, clang, revision, slot, pos)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "selecting article slice")
	}
	return as, nil
}

func (s *Store) FindArticleSlices(ctx context.Context, articleID, clang int64, revision int, slot string) ([]*cms.ArticleSlice, error) {
	var slices []*cms.ArticleSlice
	var err error
	if slot == repository.AllSlots {
		err = sqlx.SelectContext(ctx, s.ext, &slices,
			`SELECT `+articleSliceColumns+` FROM article_slice
			 WHERE article_id = ? AND clang = ? AND revision = ?
			 ORDER BY slot ASC, pos ASC`, articleID, clang, revision)
	} else {
		err = sqlx.SelectContext(ctx, s.ext, &slices,
			`SELECT `+articleSliceColumns+` FROM article_slice
			 WHERE article_id = ? AND clang = ? AND revision = ? AND slot = ?
			 ORDER BY pos ASC`, articleID, clang, revision, slot)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "selecting article slices")
	}
	return slices, nil
}

func (s *Store) CountArticleSlices(ctx context.Context, articleID, clang int64, revision int, slot string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, s.ext, &n,
		`SELECT COUNT(*) FROM article_slice
		 WHERE article_id = ? AND clang = ? AND revision = ? AND slot = ?`,
		articleID, clang, revision, slot)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "counting article slices")
	}
	return n, nil
}

func (s *Store) InsertArticleSlice(ctx context.Context, as *cms.ArticleSlice) (int64, error) {
	res, err := sqlx.NamedExecContext(ctx, s.ext, `
		INSERT INTO article_slice (article_id, clang, revision, slot, pos, slice_id,
			createuser, createdate, updateuser, updatedate)
		VALUES (:article_id, :clang, :revision, :slot, :pos, :slice_id,
			:createuser, :createdate, :updateuser, :updatedate)`, as)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "inserting article slice")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, pkgerrors.Wrap(err, "reading article slice id")
	}
	as.ID = id
	return id, nil
}

func (s *Store) ShiftArticleSlices(ctx context.Context, articleID, clang int64, revision int, slot string, lo, hi, delta int) error {
	var err error
	if hi < 0 {
		_, err = s.ext.ExecContext(ctx, `
			UPDATE article_slice SET pos = pos + ?
			WHERE article_id = ? AND clang = ? AND revision = ? AND slot = ? AND pos >= ?`,
			delta, articleID, clang, revision, slot, lo)
	} else {
		_, err = s.ext.ExecContext(ctx, `
			UPDATE article_slice SET pos = pos + ?
			WHERE article_id = ? AND clang = ? AND revision = ? AND slot = ? AND pos BETWEEN ? AND ?`,
			delta, articleID, clang, revision, slot, lo, hi)
	}
	return pkgerrors.Wrap(err, "shifting slice positions")
}

func (s *Store) SetArticleSlicePosition(ctx context.Context, id int64, pos int) error {
	_, err := s.ext.ExecContext(ctx,
		`UPDATE article_slice SET pos = ? WHERE id = ?`, pos, id)
	return pkgerrors.Wrap(err, "setting slice position")
}

func (s *Store) DeleteArticleSlice(ctx context.Context, id int64) error {
	_, err := s.ext.ExecContext(ctx, `DELETE FROM article_slice WHERE id = ?`, id)
	return pkgerrors.Wrap(err, "deleting article slice")
}

func (s *Store) DeleteArticleSlices(ctx context.Context, articleID, clang int64, revision int, slot string) error {
	var err error
	if slot == repository.AllSlots {
		_, err = s.ext.ExecContext(ctx,
			`DELETE FROM article_slice WHERE article_id = ? AND clang = ? AND revision = ?`,
			articleID, clang, revision)
	} else {
		_, err = s.ext.ExecContext(ctx,
			`DELETE FROM article_slice WHERE article_id = ? AND clang = ? AND revision = ? AND slot = ?`,
			articleID, clang, revision, slot)
	}
	return pkgerrors.Wrap(err, "deleting article slices")
}

func (s *Store) DeleteArticleSlicesByArticle(ctx context.Context, articleID, clang int64) error {
	_, err := s.ext.ExecContext(ctx,
		`DELETE FROM article_slice WHERE article_id = ? AND clang = ?`, articleID, clang)
	return pkgerrors.Wrap(err, "deleting article slices by article")
}

func (s *Store) CopyArticleSlices(ctx context.Context, articleID, clang int64, fromRevision, toRevision int, actor string) error {
	now := time.Now()
	_, err := s.ext.ExecContext(ctx, `
		INSERT INTO article_slice (article_id, clang, revision, slot, pos, slice_id,
			createuser, createdate, updateuser, updatedate)
		SELECT article_id, clang, ?, slot, pos, slice_id, createuser, createdate, ?, ?
		FROM article_slice
		WHERE article_id = ? AND clang = ? AND revision = ?`,
		toRevision, actor, now, articleID, clang, fromRevision)
	return pkgerrors.Wrap(err, "copying article slices")
}
