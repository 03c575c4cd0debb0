package repository

import "context"

// Store aggregates every repository plus the transaction boundary the
// services run their mutations in.
type Store interface {
	CategoryRepository
	ArticleRepository
	SliceRepository

	// Transactional runs fn against a Store bound to a transaction.
	// The outermost call begins and commits (or rolls back on error);
	// nested calls reuse the already-open transaction, so a multi-step
	// mutation composed of smaller operations stays atomic.
	Transactional(ctx context.Context, fn func(Store) error) error
}
