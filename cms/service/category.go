package service

import (
	"context"
	"time"

	"github.com/slatecms/slate/cms"
	"github.com/slatecms/slate/cms/repository"
)

// CategoryService maintains the category forest of each language
// variant: parent linkage, gap-free 1-based sibling positions and the
// materialized ancestor path.
type CategoryService struct {
	store  repository.Store
	notify Notifier
}

// NewCategoryService creates a CategoryService. notifier may be nil.
func NewCategoryService(store repository.Store, notifier Notifier) *CategoryService {
	return &CategoryService{store: store, notify: orNop(notifier)}
}

// Get retrieves one category.
func (s *CategoryService) Get(ctx context.Context, id, clang int64) (*cms.Category, error) {
	c, err := s.store.GetCategory(ctx, id, clang)
	if err != nil {
		return nil, asDomainErr(err, cms.ErrCategoryNotFound)
	}
	return c, nil
}

// FindChildren lists the direct children of a parent, ordered by
// position. parentID 0 lists the top level.
func (s *CategoryService) FindChildren(ctx context.Context, parentID, clang int64) ([]*cms.Category, error) {
	return s.store.FindChildCategories(ctx, parentID, clang)
}

// Add creates a category at the end of the parent's sibling list.
func (s *CategoryService) Add(ctx context.Context, parentID int64, name string, clang int64, actor *cms.User) (*cms.Category, error) {
	name = cleanName(name)
	now := time.Now()
	login := actorLogin(actor)

	var created *cms.Category
	err := s.store.Transactional(ctx, func(tx repository.Store) error {
		path := cms.RootPath
		if parentID != cms.RootParentID {
			parent, err := tx.GetCategory(ctx, parentID, clang)
			if err != nil {
				return asDomainErr(err, cms.ErrCategoryNotFound)
			}
			path = parent.ChildPath()
		}

		count, err := tx.CountChildCategories(ctx, parentID, clang)
		if err != nil {
			return err
		}

		c := &cms.Category{
			Clang:      clang,
			Name:       name,
			Catname:    name,
			ParentID:   parentID,
			Position:   count + 1,
			Path:       path,
			CreateUser: login,
			CreateDate: now,
			UpdateUser: login,
			UpdateDate: now,
		}

		s.notify.Notify(cms.EventCategoryBeforeAdd, c, nil)

		if _, err := tx.InsertCategory(ctx, c); err != nil {
			return err
		}

		s.notify.Notify(cms.EventCategoryAdded, c, nil)
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Edit renames and/or repositions a category among its siblings. A new
// name is propagated into the catname cache of every article directly
// inside the category. newPosition is clamped into [1, siblingCount];
// zero or negative leaves the order alone.
func (s *CategoryService) Edit(ctx context.Context, id, clang int64, newName string, newPosition int, actor *cms.User) (*cms.Category, error) {
	newName = cleanName(newName)

	var edited *cms.Category
	err := s.store.Transactional(ctx, func(tx repository.Store) error {
		c, err := tx.GetCategory(ctx, id, clang)
		if err != nil {
			return asDomainErr(err, cms.ErrCategoryNotFound)
		}

		s.notify.Notify(cms.EventCategoryBeforeEdit, c, nil)

		renamed := newName != "" && newName != c.Name
		if renamed {
			c.Name = newName
			c.Catname = newName
			if err := tx.SetArticleCatnameByCategory(ctx, id, clang, newName); err != nil {
				return err
			}
		}

		if newPosition > 0 {
			count, err := tx.CountChildCategories(ctx, c.ParentID, clang)
			if err != nil {
				return err
			}

			target := clampPosition(newPosition, count)
			if target != c.Position {
				if err := repositionCategory(ctx, tx, c, target); err != nil {
					return err
				}
			}
		}

		c.UpdateUser = actorLogin(actor)
		c.UpdateDate = time.Now()
		if err := tx.UpdateCategory(ctx, c); err != nil {
			return err
		}

		s.notify.Notify(cms.EventCategoryEdited, c, nil)
		edited = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edited, nil
}

// Move relinks a category below a new parent. The node is appended at
// the end of the new sibling list and the materialized path of the
// node and every descendant is rewritten. Moving a category below
// itself or one of its descendants fails with ErrCycle.
func (s *CategoryService) Move(ctx context.Context, id, newParentID, clang int64, actor *cms.User) error {
	return s.store.Transactional(ctx, func(tx repository.Store) error {
		c, err := tx.GetCategory(ctx, id, clang)
		if err != nil {
			return asDomainErr(err, cms.ErrCategoryNotFound)
		}

		if newParentID == id {
			return cms.ErrCycle
		}

		newPath := cms.RootPath
		if newParentID != cms.RootParentID {
			parent, err := tx.GetCategory(ctx, newParentID, clang)
			if err != nil {
				return asDomainErr(err, cms.ErrCategoryNotFound)
			}
			if parent.ID == id || cms.PathContains(parent.Path, id) {
				return cms.ErrCycle
			}
			newPath = parent.ChildPath()
		}

		s.notify.Notify(cms.EventCategoryBeforeMove, c, map[string]interface{}{"target": newParentID})

		// Detach: close the gap in the old sibling list.
		if err := tx.ShiftCategories(ctx, c.ParentID, clang, c.Position+1, -1, -1); err != nil {
			return err
		}

		count, err := tx.CountChildCategories(ctx, newParentID, clang)
		if err != nil {
			return err
		}

		c.ParentID = newParentID
		c.Position = count + 1
		c.Path = newPath
		c.UpdateUser = actorLogin(actor)
		c.UpdateDate = time.Now()
		if err := tx.UpdateCategory(ctx, c); err != nil {
			return err
		}

		if err := rewriteSubtreePaths(ctx, tx, c, clang); err != nil {
			return err
		}

		s.notify.Notify(cms.EventCategoryMoved, c, map[string]interface{}{"target": newParentID})
		return nil
	})
}

// DeleteByID removes a category. Without force the category must be
// empty: no child categories, no articles. With force the whole
// subtree, articles and slice placements included, is removed.
func (s *CategoryService) DeleteByID(ctx context.Context, id, clang int64, force bool, actor *cms.User) error {
	return s.store.Transactional(ctx, func(tx repository.Store) error {
		c, err := tx.GetCategory(ctx, id, clang)
		if err != nil {
			return asDomainErr(err, cms.ErrCategoryNotFound)
		}

		childCats, err := tx.CountChildCategories(ctx, id, clang)
		if err != nil {
			return err
		}
		childArts, err := tx.CountArticlesByCategory(ctx, id, clang)
		if err != nil {
			return err
		}

		if (childCats > 0 || childArts > 0) && !force {
			return cms.ErrHasChildren
		}

		s.notify.Notify(cms.EventCategoryBeforeDelete, c, map[string]interface{}{"force": force})

		if force {
			ids, err := s.collectTree(ctx, tx, id, clang, true)
			if err != nil {
				return err
			}
			for _, catID := range ids {
				artIDs, err := tx.ArticleIDsByCategory(ctx, catID, clang)
				if err != nil {
					return err
				}
				for _, artID := range artIDs {
					if err := tx.DeleteArticleSlicesByArticle(ctx, artID, clang); err != nil {
						return err
					}
				}
				if err := tx.DeleteArticlesByCategory(ctx, catID, clang); err != nil {
					return err
				}
				if err := tx.DeleteCategory(ctx, catID, clang); err != nil {
					return err
				}
			}
		} else {
			// Soft-deleted articles inside the category survive in the
			// trash; restoring them later fails with ErrMissingParent.
			if err := tx.DeleteCategory(ctx, id, clang); err != nil {
				return err
			}
		}

		// Close the gap in the former sibling list.
		if err := tx.ShiftCategories(ctx, c.ParentID, clang, c.Position+1, -1, -1); err != nil {
			return err
		}

		s.notify.Notify(cms.EventCategoryDeleted, c, map[string]interface{}{"force": force})
		return nil
	})
}

// FindTree returns the ids of the subtree below id in pre-order,
// siblings by position. A pure query; repeated calls restart the walk.
func (s *CategoryService) FindTree(ctx context.Context, id, clang int64, includeSelf bool) ([]int64, error) {
	var ids []int64
	err := s.store.Transactional(ctx, func(tx repository.Store) error {
		var err error
		ids, err = s.collectTree(ctx, tx, id, clang, includeSelf)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// collectTree walks the subtree depth-first with an explicit stack so
// deep trees cannot exhaust the goroutine stack.
func (s *CategoryService) collectTree(ctx context.Context, tx repository.Store, id, clang int64, includeSelf bool) ([]int64, error) {
	var ids []int64

	stack := []int64{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur != id || includeSelf {
			ids = append(ids, cur)
		}

		children, err := tx.FindChildCategories(ctx, cur, clang)
		if err != nil {
			return nil, err
		}
		// Push in reverse so the first sibling is visited first.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i].ID)
		}
	}
	return ids, nil
}

// clampPosition forces a requested 1-based position into [1, count].
func clampPosition(pos, count int) int {
	if count < 1 {
		return 1
	}
	if pos < 1 {
		return 1
	}
	if pos > count {
		return count
	}
	return pos
}

// repositionCategory moves c from its current position to target,
// shifting the siblings in between by one.
func repositionCategory(ctx context.Context, tx repository.Store, c *cms.Category, target int) error {
	old := c.Position
	if target == old {
		return nil
	}
	if target > old {
		if err := tx.ShiftCategories(ctx, c.ParentID, c.Clang, old+1, target, -1); err != nil {
			return err
		}
	} else {
		if err := tx.ShiftCategories(ctx, c.ParentID, c.Clang, target, old-1, +1); err != nil {
			return err
		}
	}
	c.Position = target
	return nil
}

// rewriteSubtreePaths recomputes the materialized path of every
// descendant of c (whose own path must already be correct) and of the
// articles inside each affected category. Iterative, stack-based.
func rewriteSubtreePaths(ctx context.Context, tx repository.Store, c *cms.Category, clang int64) error {
	type node struct {
		id        int64
		childPath string
	}

	stack := []node{{id: c.ID, childPath: c.ChildPath()}}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := tx.SetArticlePathByCategory(ctx, n.id, clang, n.childPath); err != nil {
			return err
		}

		children, err := tx.FindChildCategories(ctx, n.id, clang)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := tx.SetCategoryPath(ctx, child.ID, clang, n.childPath); err != nil {
				return err
			}
			stack = append(stack, node{id: child.ID, childPath: cms.ChildPath(n.childPath, child.ID)})
		}
	}
	return nil
}
