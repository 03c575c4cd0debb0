package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"

	"github.com/slatecms/slate/cms"
)

// Category repository methods for Store.

const categoryColumns = `id, clang, name, catname, re_id, pos, path, online,
	createuser, createdate, updateuser, updatedate`

func (s *Store) GetCategory(ctx context.Context, id, clang int64) (*cms.Category, error) {
	c := &cms.Category{}
	err := sqlx.GetContext(ctx, s.ext, c,
		`SELECT `+categoryColumns+` FROM category WHERE id = ? AND clang = ?`, id, clang)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "selecting category")
	}
	return c, nil
}

func (s *Store) InsertCategory(ctx context.Context, c *cms.Category) (int64, error) {
	if c.ID == 0 {
		id, err := s.nextID(ctx, "category_id_seq")
		if err != nil {
			return 0, err
		}
		c.ID = id
	}

	_, err := sqlx.NamedExecContext(ctx, s.ext, `
		INSERT INTO category (id, clang, name, catname, re_id, pos, path, online,
			createuser, createdate, updateuser, updatedate)
		VALUES (:id, :clang, :name, :catname, :re_id, :pos, :path, :online,
			:createuser, :createdate, :updateuser, :updatedate)`, c)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "inserting category")
	}
	return c.ID, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *cms.Category) error {
	_, err := sqlx.NamedExecContext(ctx, s.ext, `
		UPDATE category
		SET name = :name, catname = :catname, re_id = :re_id, pos = :pos,
			path = :path, online = :online,
			updateuser = :updateuser, updatedate = :updatedate
		WHERE id = :id AND clang = :clang`, c)
	return pkgerrors.Wrap(err, "updating category")
}

func (s *Store) DeleteCategory(ctx context.Context, id, clang int64) error {
	_, err := s.ext.ExecContext(ctx,
		`DELETE FROM category WHERE id = ? AND clang = ?`, id, clang)
	return pkgerrors.Wrap(err, "deleting category")
}

func (s *Store) FindChildCategories(ctx context.Context, parentID, clang int64) ([]*cms.Category, error) {
	var cats []*cms.Category
	err := sqlx.SelectContext(ctx, s.ext, &cats,
		`SELECT `+categoryColumns+` FROM category
		 WHERE re_id = ? AND clang = ? ORDER BY pos ASC`, parentID, clang)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "selecting child categories")
	}
	return cats, nil
}

func (s *Store) CountChildCategories(ctx context.Context, parentID, clang int64) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, s.ext, &n,
		`SELECT COUNT(*) FROM category WHERE re_id = ? AND clang = ?`, parentID, clang)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "counting child categories")
	}
	return n, nil
}

func (s *Store) ShiftCategories(ctx context.Context, parentID, clang int64, lo, hi, delta int) error {
	var err error
	if hi < 0 {
		_, err = s.ext.ExecContext(ctx, `
			UPDATE category SET pos = pos + ?
			WHERE re_id = ? AND clang = ? AND pos >= ?`,
			delta, parentID, clang, lo)
	} else {
		_, err = s.ext.ExecContext(ctx, `
			UPDATE category SET pos = pos + ?
			WHERE re_id = ? AND clang = ? AND pos BETWEEN ? AND ?`,
			delta, parentID, clang, lo, hi)
	}
	return pkgerrors.Wrap(err, "shifting category positions")
}

func (s *Store) SetCategoryPosition(ctx context.Context, id, clang int64, pos int) error {
	_, err := s.ext.ExecContext(ctx,
		`UPDATE category SET pos = ? WHERE id = ? AND clang = ?`, pos, id, clang)
	return pkgerrors.Wrap(err, "setting category position")
}

func (s *Store) SetCategoryPath(ctx context.Context, id, clang int64, path string) error {
	_, err := s.ext.ExecContext(ctx,
		`UPDATE category SET path = ? WHERE id = ? AND clang = ?`, path, id, clang)
	return pkgerrors.Wrap(err, "setting category path")
}
