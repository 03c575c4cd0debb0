package service

import (
	"context"
	"time"

	"github.com/slatecms/slate/cms"
	"github.com/slatecms/slate/cms/repository"
)

// ArticleService maintains article identity, language variants and
// structural metadata. Content-affecting mutations go through Touch,
// which appends a new revision instead of rewriting the current one;
// pure metadata edits (rename, reposition) modify the current revision
// in place and do not bump it.
type ArticleService struct {
	store  repository.Store
	notify Notifier
}

// NewArticleService creates an ArticleService. notifier may be nil.
func NewArticleService(store repository.Store, notifier Notifier) *ArticleService {
	return &ArticleService{store: store, notify: orNop(notifier)}
}

// Get retrieves the current revision of an article.
func (s *ArticleService) Get(ctx context.Context, id, clang int64) (*cms.Article, error) {
	a, err := s.store.GetArticle(ctx, id, clang)
	if err != nil {
		return nil, asDomainErr(err, cms.ErrArticleNotFound)
	}
	return a, nil
}

// GetRevision retrieves one specific revision of an article.
func (s *ArticleService) GetRevision(ctx context.Context, id, clang int64, revision int) (*cms.Article, error) {
	a, err := s.store.GetArticleRevision(ctx, id, clang, revision)
	if err != nil {
		return nil, asDomainErr(err, cms.ErrArticleNotFound)
	}
	return a, nil
}

// FindByCategory lists the current articles of a category, ordered by
// position.
func (s *ArticleService) FindByCategory(ctx context.Context, parentID, clang int64) ([]*cms.Article, error) {
	return s.store.FindArticlesByCategory(ctx, parentID, clang)
}

// ListRevisions lists every revision of an article, newest first.
func (s *ArticleService) ListRevisions(ctx context.Context, id, clang int64) ([]*cms.Article, error) {
	revs, err := s.store.ListRevisions(ctx, id, clang)
	if err != nil {
		return nil, err
	}
	if len(revs) == 0 {
		return nil, cms.ErrArticleNotFound
	}
	return revs, nil
}

// Add creates a new article at revision 0 inside the given category
// (0 for root level). position is 1-based; zero, negative or
// past-the-end inserts at the end, anything else shifts the siblings
// at and above it up by one.
func (s *ArticleService) Add(ctx context.Context, parentID int64, name string, clang int64, position int, actor *cms.User) (*cms.Article, error) {
	name = cleanName(name)
	now := time.Now()
	login := actorLogin(actor)

	var created *cms.Article
	err := s.store.Transactional(ctx, func(tx repository.Store) error {
		path := cms.RootPath
		catname := ""
		if parentID != cms.RootParentID {
			parent, err := tx.GetCategory(ctx, parentID, clang)
			if err != nil {
				return asDomainErr(err, cms.ErrCategoryNotFound)
			}
			path = parent.ChildPath()
			catname = parent.Name
		}

		count, err := tx.CountArticlesByCategory(ctx, parentID, clang)
		if err != nil {
			return err
		}

		pos := position
		if pos < 1 || pos > count+1 {
			pos = count + 1
		} else {
			if err := tx.ShiftArticles(ctx, parentID, clang, pos, -1, +1); err != nil {
				return err
			}
		}

		a := &cms.Article{
			Clang:      clang,
			Revision:   0,
			Name:       name,
			Catname:    catname,
			ParentID:   parentID,
			Position:   pos,
			Path:       path,
			Type:       "default",
			Online:     true,
			CreateUser: login,
			CreateDate: now,
			UpdateUser: login,
			UpdateDate: now,
		}

		s.notify.Notify(cms.EventArticleBeforeAdd, a, nil)

		if _, err := tx.InsertArticle(ctx, a); err != nil {
			return err
		}

		s.notify.Notify(cms.EventArticleAdded, a, nil)
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Edit changes name and/or position of an article. This is a pure
// metadata edit: the current revision is modified in place and the
// revision counter stays put. newPosition <= 0 leaves the order alone.
func (s *ArticleService) Edit(ctx context.Context, id, clang int64, newName string, newPosition int, actor *cms.User) (*cms.Article, error) {
	newName = cleanName(newName)

	var edited *cms.Article
	err := s.store.Transactional(ctx, func(tx repository.Store) error {
		a, err := tx.GetArticle(ctx, id, clang)
		if err != nil {
			return asDomainErr(err, cms.ErrArticleNotFound)
		}

		s.notify.Notify(cms.EventArticleBeforeEdit, a, nil)

		if newName != "" {
			a.Name = newName
		}

		if newPosition > 0 {
			count, err := tx.CountArticlesByCategory(ctx, a.ParentID, clang)
			if err != nil {
				return err
			}
			target := clampPosition(newPosition, count)
			if target != a.Position {
				old := a.Position
				if target > old {
					err = tx.ShiftArticles(ctx, a.ParentID, clang, old+1, target, -1)
				} else {
					err = tx.ShiftArticles(ctx, a.ParentID, clang, target, old-1, +1)
				}
				if err != nil {
					return err
				}
				a.Position = target
			}
		}

		a.UpdateUser = actorLogin(actor)
		a.UpdateDate = time.Now()
		if err := tx.UpdateArticle(ctx, a); err != nil {
			return err
		}

		s.notify.Notify(cms.EventArticleEdited, a, nil)
		edited = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edited, nil
}

// Touch appends a fresh revision of the article: the current row is
// cloned at revision+1 and every slice placement is duplicated into
// it, still pointing at the same slice payloads. Every content
// mutation must touch first and work on the returned revision.
func (s *ArticleService) Touch(ctx context.Context, id, clang int64, actor *cms.User) (*cms.Article, error) {
	var touched *cms.Article
	err := s.store.Transactional(ctx, func(tx repository.Store) error {
		a, err := tx.GetArticle(ctx, id, clang)
		if err != nil {
			return asDomainErr(err, cms.ErrArticleNotFound)
		}

		touched, err = touchArticle(ctx, tx, a, actor)
		if err != nil {
			return err
		}

		s.notify.Notify(cms.EventArticleTouched, touched, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return touched, nil
}

// touchArticle clones a (already loaded, current) article row into the
// next revision and copies its slice placements. Callers must hold the
// transaction.
func touchArticle(ctx context.Context, tx repository.Store, a *cms.Article, actor *cms.User) (*cms.Article, error) {
	clone := *a
	clone.Revision = a.Revision + 1
	clone.Attributes = a.Attributes.Clone()
	clone.UpdateUser = actorLogin(actor)
	clone.UpdateDate = time.Now()

	if err := tx.InsertArticleRevision(ctx, &clone); err != nil {
		return nil, err
	}
	if err := tx.CopyArticleSlices(ctx, a.ID, a.Clang, a.Revision, clone.Revision, clone.UpdateUser); err != nil {
		return nil, err
	}
	return &clone, nil
}

// Move puts an article into another category (0 for root level),
// keeping every language variant in sync. The article is appended at
// the end of the target's list per language; paths and catname caches
// follow. Moving a start article below its own category or one of its
// descendants fails with ErrCycle.
func (s *ArticleService) Move(ctx context.Context, id, newParentID int64, actor *cms.User) error {
	return s.store.Transactional(ctx, func(tx repository.Store) error {
		clangs, err := tx.ArticleClangs(ctx, id)
		if err != nil {
			return err
		}
		if len(clangs) == 0 {
			return cms.ErrArticleNotFound
		}

		login := actorLogin(actor)
		now := time.Now()

		for _, clang := range clangs {
			a, err := tx.GetArticle(ctx, id, clang)
			if err != nil {
				return asDomainErr(err, cms.ErrArticleNotFound)
			}

			newPath := cms.RootPath
			catname := ""
			catpos := 0
			if newParentID != cms.RootParentID {
				parent, err := tx.GetCategory(ctx, newParentID, clang)
				if err != nil {
					return asDomainErr(err, cms.ErrCategoryNotFound)
				}
				// A start article anchors its category; hanging it
				// below that category's own subtree is a cycle.
				if a.Startpage && a.ParentID != cms.RootParentID {
					if parent.ID == a.ParentID || cms.PathContains(parent.Path, a.ParentID) {
						return cms.ErrCycle
					}
				}
				newPath = parent.ChildPath()
				catname = parent.Name
				if a.Startpage {
					catpos = parent.Position
				}
			}

			s.notify.Notify(cms.EventArticleBeforeMove, a, map[string]interface{}{"target": newParentID})

			// Detach: close the gap in the old sibling list.
			if err := tx.ShiftArticles(ctx, a.ParentID, clang, a.Position+1, -1, -1); err != nil {
				return err
			}

			count, err := tx.CountArticlesByCategory(ctx, newParentID, clang)
			if err != nil {
				return err
			}

			a.ParentID = newParentID
			a.Position = count + 1
			a.Path = newPath
			a.Catname = catname
			a.Catpos = catpos
			a.UpdateUser = login
			a.UpdateDate = now
			if err := tx.UpdateArticle(ctx, a); err != nil {
				return err
			}

			s.notify.Notify(cms.EventArticleMoved, a, map[string]interface{}{"target": newParentID})
		}
		return nil
	})
}

// Copy deep-copies an article into a target category and returns the
// new article id. The copy starts over at revision 0 per language, its
// slice payloads are duplicated so the copy and the source never share
// mutable content, and start-article status is not inherited.
func (s *ArticleService) Copy(ctx context.Context, id, targetParentID int64, actor *cms.User) (int64, error) {
	var newID int64
	err := s.store.Transactional(ctx, func(tx repository.Store) error {
		clangs, err := tx.ArticleClangs(ctx, id)
		if err != nil {
			return err
		}
		if len(clangs) == 0 {
			return cms.ErrArticleNotFound
		}

		login := actorLogin(actor)
		now := time.Now()

		for _, clang := range clangs {
			src, err := tx.GetArticle(ctx, id, clang)
			if err != nil {
				return asDomainErr(err, cms.ErrArticleNotFound)
			}

			path := cms.RootPath
			catname := ""
			if targetParentID != cms.RootParentID {
				parent, err := tx.GetCategory(ctx, targetParentID, clang)
				if err != nil {
					return asDomainErr(err, cms.ErrCategoryNotFound)
				}
				path = parent.ChildPath()
				catname = parent.Name
			}

			s.notify.Notify(cms.EventArticleBeforeCopy, src, map[string]interface{}{"target": targetParentID})

			count, err := tx.CountArticlesByCategory(ctx, targetParentID, clang)
			if err != nil {
				return err
			}

			dst := *src
			dst.ID = newID // 0 on the first language allocates
			dst.Revision = 0
			dst.ParentID = targetParentID
			dst.Position = count + 1
			dst.Path = path
			dst.Catname = catname
			dst.Startpage = false
			dst.Catpos = 0
			dst.Deleted = false
			dst.Attributes = src.Attributes.Clone()
			dst.CreateUser = login
			dst.CreateDate = now
			dst.UpdateUser = login
			dst.UpdateDate = now

			insertedID, err := tx.InsertArticle(ctx, &dst)
			if err != nil {
				return err
			}
			newID = insertedID

			if err := copySlices(ctx, tx, src, &dst, login, now); err != nil {
				return err
			}

			s.notify.Notify(cms.EventArticleCopied, &dst, map[string]interface{}{"source": id})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newID, nil
}

// copySlices duplicates the slice placements of src's revision into
// dst, cloning the slice payloads themselves.
func copySlices(ctx context.Context, tx repository.Store, src, dst *cms.Article, login string, now time.Time) error {
	placements, err := tx.FindArticleSlices(ctx, src.ID, src.Clang, src.Revision, repository.AllSlots)
	if err != nil {
		return err
	}
	for _, p := range placements {
		sl, err := tx.GetSlice(ctx, p.SliceID)
		if err != nil {
			return asDomainErr(err, cms.ErrSliceNotFound)
		}

		dup := &cms.Slice{Module: sl.Module, Values: sl.Values.Clone()}
		if _, err := tx.InsertSlice(ctx, dup); err != nil {
			return err
		}

		placed := &cms.ArticleSlice{
			ArticleID:  dst.ID,
			Clang:      dst.Clang,
			Revision:   dst.Revision,
			Slot:       p.Slot,
			Position:   p.Position,
			SliceID:    dup.ID,
			CreateUser: login,
			CreateDate: now,
			UpdateUser: login,
			UpdateDate: now,
		}
		if _, err := tx.InsertArticleSlice(ctx, placed); err != nil {
			return err
		}
	}
	return nil
}

// DeleteByID soft-deletes an article in every language. Sibling
// positions are left untouched; the resulting gap persists until the
// next explicit reposition.
func (s *ArticleService) DeleteByID(ctx context.Context, id int64, actor *cms.User) error {
	return s.store.Transactional(ctx, func(tx repository.Store) error {
		clangs, err := tx.ArticleClangs(ctx, id)
		if err != nil {
			return err
		}
		if len(clangs) == 0 {
			return cms.ErrArticleNotFound
		}

		for _, clang := range clangs {
			a, err := tx.GetArticle(ctx, id, clang)
			if err != nil {
				return asDomainErr(err, cms.ErrArticleNotFound)
			}

			s.notify.Notify(cms.EventArticleBeforeDelete, a, nil)

			if err := tx.SetArticleDeleted(ctx, id, clang, true); err != nil {
				return err
			}

			s.notify.Notify(cms.EventArticleDeleted, a, nil)
		}
		return nil
	})
}
