package storage

import (
	_ "embed"

	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// RunMigrations executes the database schema and any necessary
// follow-up migrations. Idempotent and safe to run multiple times.
func RunMigrations(db *sqlx.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return pkgerrors.Wrap(err, "executing schema")
	}

	// Migration: the catname cache on categories arrived after the
	// initial schema. Add the column to databases created before it.
	var colExists int
	err := db.Get(&colExists, `SELECT COUNT(*) FROM pragma_table_info('category') WHERE name = 'catname'`)
	if err != nil {
		return pkgerrors.Wrap(err, "inspecting category table")
	}
	if colExists == 0 {
		if _, err := db.Exec(`ALTER TABLE category ADD COLUMN catname TEXT NOT NULL DEFAULT ''`); err != nil {
			return pkgerrors.Wrap(err, "adding category.catname")
		}
	}

	// Migration: articles gained the opaque attributes blob later.
	err = db.Get(&colExists, `SELECT COUNT(*) FROM pragma_table_info('article') WHERE name = 'attributes'`)
	if err != nil {
		return pkgerrors.Wrap(err, "inspecting article table")
	}
	if colExists == 0 {
		if _, err := db.Exec(`ALTER TABLE article ADD COLUMN attributes BLOB`); err != nil {
			return pkgerrors.Wrap(err, "adding article.attributes")
		}
	}

	return nil
}
