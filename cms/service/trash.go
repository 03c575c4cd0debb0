package service

import (
	"context"

	"github.com/slatecms/slate/cms"
	"github.com/slatecms/slate/cms/repository"
)

// TrashService lists soft-deleted articles and brings them back.
type TrashService struct {
	store  repository.Store
	notify Notifier
}

// NewTrashService creates a TrashService. notifier may be nil.
func NewTrashService(store repository.Store, notifier Notifier) *TrashService {
	return &TrashService{store: store, notify: orNop(notifier)}
}

// FindLatest lists the current revision of every deleted article in a
// language, most recently deleted first.
func (s *TrashService) FindLatest(ctx context.Context, clang int64) ([]*cms.Article, error) {
	return s.store.FindDeletedArticles(ctx, clang)
}

// Restore undoes a soft delete in every language the article exists
// in. The owning category must still exist; restoring into a vanished
// parent fails with ErrMissingParent rather than silently reparenting
// to the root. Restoration appends a fresh revision stamped with the
// actor, so the pre-deletion state stays in the history.
func (s *TrashService) Restore(ctx context.Context, id int64, actor *cms.User) (*cms.Article, error) {
	var restored *cms.Article
	err := s.store.Transactional(ctx, func(tx repository.Store) error {
		clangs, err := tx.ArticleClangs(ctx, id)
		if err != nil {
			return err
		}

		anyDeleted := false
		for _, clang := range clangs {
			a, err := tx.GetArticle(ctx, id, clang)
			if err != nil {
				return asDomainErr(err, cms.ErrArticleNotFound)
			}
			if !a.Deleted {
				continue
			}
			anyDeleted = true

			if a.ParentID != cms.RootParentID {
				if _, err := tx.GetCategory(ctx, a.ParentID, clang); err != nil {
					return asDomainErr(err, cms.ErrMissingParent)
				}
			}

			a.Deleted = false
			fresh, err := touchArticle(ctx, tx, a, actor)
			if err != nil {
				return err
			}

			s.notify.Notify(cms.EventArticleRestored, fresh, nil)
			if restored == nil {
				restored = fresh
			}
		}

		if !anyDeleted {
			return cms.ErrArticleNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}
