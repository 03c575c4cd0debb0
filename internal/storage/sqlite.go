// Package storage implements cms/repository on SQLite via sqlx.
// Repository methods are spread over category_repo.go, article_repo.go
// and slice_repo.go; this file owns the connection, the transaction
// boundary and id allocation.
package storage

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/slatecms/slate/cms/repository"
)

// Store is the SQLite-backed repository.Store. A Store is either bound
// to the connection pool or, inside Transactional, to one open
// transaction.
type Store struct {
	db  *sqlx.DB
	tx  *sqlx.Tx
	ext sqlx.ExtContext
}

var _ repository.Store = (*Store)(nil)

// Open connects to the SQLite database at dsn and applies migrations.
func Open(dsn string) (*Store, error) {
	conn, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "connecting to database")
	}

	// SQLite locks aggressively on concurrent writers; the core is
	// single-writer per operation anyway.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		conn.Close()
		return nil, pkgerrors.Wrap(err, "enabling foreign keys")
	}

	if err := RunMigrations(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return New(conn), nil
}

// New wraps an existing connection. Migrations must already have run.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, ext: db}
}

// DB exposes the underlying connection, mainly for test fixtures.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Transactional runs fn inside a transaction. When the Store is
// already transaction-bound the open transaction is reused and the
// outermost caller stays in charge of commit and rollback.
func (s *Store) Transactional(ctx context.Context, fn func(repository.Store) error) (err error) {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return pkgerrors.Wrap(err, "beginning transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("transaction rollback failed", "error", rbErr)
			}
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("transaction rollback failed", "error", rbErr)
			}
			return
		}
		err = pkgerrors.Wrap(tx.Commit(), "committing transaction")
	}()

	bound := &Store{db: s.db, tx: tx, ext: tx}
	err = fn(bound)
	return err
}

// nextID pulls a fresh id from one of the sequence tables. Categories
// and articles key on (id, clang), so the usual autoincrement rowid
// cannot hand out identities shared across language variants.
func (s *Store) nextID(ctx context.Context, seqTable string) (int64, error) {
	res, err := s.ext.ExecContext(ctx, `INSERT INTO `+seqTable+` DEFAULT VALUES`)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "allocating id from %s", seqTable)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, pkgerrors.Wrap(err, "reading allocated id")
	}
	return id, nil
}
