package service

import (
	"context"
	"time"

	"github.com/slatecms/slate/cms"
	"github.com/slatecms/slate/cms/repository"
)

// SliceService maintains the ordered slice placements inside the slots
// of an article. Placements are versioned: every mutation touches the
// article first and rewrites the new revision only, so older revisions
// keep their order. Slice payloads are not versioned: Edit mutates
// them in place and all revisions referencing the slice see the
// change.
type SliceService struct {
	store  repository.Store
	notify Notifier
}

// NewSliceService creates a SliceService. notifier may be nil.
func NewSliceService(store repository.Store, notifier Notifier) *SliceService {
	return &SliceService{store: store, notify: orNop(notifier)}
}

// PlacedSlice pairs a placement with the slice it references.
type PlacedSlice struct {
	Placement *cms.ArticleSlice
	Slice     *cms.Slice
}

// FindByArticle lists the placements of the current article revision,
// ordered by position, together with their slices. slot may be
// repository.AllSlots.
func (s *SliceService) FindByArticle(ctx context.Context, articleID, clang int64, slot string) ([]PlacedSlice, error) {
	var out []PlacedSlice
	err := s.store.Transactional(ctx, func(tx repository.Store) error {
		a, err := tx.GetArticle(ctx, articleID, clang)
		if err != nil {
			return asDomainErr(err, cms.ErrArticleNotFound)
		}

		placements, err := tx.FindArticleSlices(ctx, a.ID, a.Clang, a.Revision, slot)
		if err != nil {
			return err
		}

		out = make([]PlacedSlice, 0, len(placements))
		for _, p := range placements {
			sl, err := tx.GetSlice(ctx, p.SliceID)
			if err != nil {
				return asDomainErr(err, cms.ErrSliceNotFound)
			}
			out = append(out, PlacedSlice{Placement: p, Slice: sl})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Add creates a slice and places it in the slot. position is 0-based;
// negative or past-the-end appends, anything else shifts the existing
// placements at and above it up by one. The returned slice is bound to
// the fresh revision the operation created.
func (s *SliceService) Add(ctx context.Context, articleID, clang int64, slot, module string, values cms.SliceValues, position int, actor *cms.User) (*cms.Slice, error) {
	now := time.Now()
	login := actorLogin(actor)

	var created *cms.Slice
	err := s.store.Transactional(ctx, func(tx repository.Store) error {
		a, err := tx.GetArticle(ctx, articleID, clang)
		if err != nil {
			return asDomainErr(err, cms.ErrArticleNotFound)
		}

		s.notify.Notify(cms.EventSliceBeforeAdd, a, map[string]interface{}{"slot": slot, "module": module})

		touched, err := touchArticle(ctx, tx, a, actor)
		if err != nil {
			return err
		}

		sl := &cms.Slice{Module: module, Values: values.Clone()}
		if _, err := tx.InsertSlice(ctx, sl); err != nil {
			return err
		}

		count, err := tx.CountArticleSlices(ctx, touched.ID, touched.Clang, touched.Revision, slot)
		if err != nil {
			return err
		}

		pos := position
		if pos < 0 || pos > count {
			pos = count
		} else {
			if err := tx.ShiftArticleSlices(ctx, touched.ID, touched.Clang, touched.Revision, slot, pos, -1, +1); err != nil {
				return err
			}
		}

		placed := &cms.ArticleSlice{
			ArticleID:  touched.ID,
			Clang:      touched.Clang,
			Revision:   touched.Revision,
			Slot:       slot,
			Position:   pos,
			SliceID:    sl.ID,
			CreateUser: login,
			CreateDate: now,
			UpdateUser: login,
			UpdateDate: now,
		}
		if _, err := tx.InsertArticleSlice(ctx, placed); err != nil {
			return err
		}

		s.notify.Notify(cms.EventSliceAdded, sl, map[string]interface{}{"slot": slot, "pos": pos})
		created = sl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Edit replaces the payload of the slice placed at slot+position. The
// article is touched so the placement history gets a new revision, but
// the payload itself is shared storage: older revisions referencing
// the same slice observe the new values too.
func (s *SliceService) Edit(ctx context.Context, articleID, clang int64, slot string, position int, newValues cms.SliceValues, actor *cms.User) (*cms.Slice, error) {
	var edited *cms.Slice
	err := s.store.Transactional(ctx, func(tx repository.Store) error {
		a, err := tx.GetArticle(ctx, articleID, clang)
		if err != nil {
			return asDomainErr(err, cms.ErrArticleNotFound)
		}

		placed, err := tx.GetArticleSliceAt(ctx, a.ID, a.Clang, a.Revision, slot, position)
		if err != nil {
			return asDomainErr(err, cms.ErrArticleSliceNotFound)
		}

		s.notify.Notify(cms.EventSliceBeforeEdit, placed, nil)

		if _, err := touchArticle(ctx, tx, a, actor); err != nil {
			return err
		}

		values := newValues.Clone()
		if err := tx.UpdateSliceValues(ctx, placed.SliceID, values); err != nil {
			return err
		}

		sl, err := tx.GetSlice(ctx, placed.SliceID)
		if err != nil {
			return asDomainErr(err, cms.ErrSliceNotFound)
		}

		s.notify.Notify(cms.EventSliceEdited, sl, map[string]interface{}{"slot": slot, "pos": position})
		edited = sl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edited, nil
}

// MoveTo reorders a slot: the placement at oldPosition is lifted out,
// the positions above it close ranks, and it is reinserted at
// newPosition. oldPosition must address an existing placement and must
// differ from newPosition, otherwise ErrPositionOutOfBounds; a
// newPosition beyond either end is normalized to the nearest valid
// index instead.
func (s *SliceService) MoveTo(ctx context.Context, articleID, clang int64, slot string, oldPosition, newPosition int, actor *cms.User) error {
	return s.store.Transactional(ctx, func(tx repository.Store) error {
		a, err := tx.GetArticle(ctx, articleID, clang)
		if err != nil {
			return asDomainErr(err, cms.ErrArticleNotFound)
		}

		count, err := tx.CountArticleSlices(ctx, a.ID, a.Clang, a.Revision, slot)
		if err != nil {
			return err
		}

		if oldPosition < 0 || oldPosition > count-1 {
			return cms.ErrPositionOutOfBounds
		}
		if oldPosition == newPosition {
			return cms.ErrPositionOutOfBounds
		}
		if newPosition < 0 {
			newPosition = 0
		}
		if newPosition > count-1 {
			newPosition = count - 1
		}

		s.notify.Notify(cms.EventSliceBeforeMove, a, map[string]interface{}{
			"slot": slot, "from": oldPosition, "to": newPosition,
		})

		touched, err := touchArticle(ctx, tx, a, actor)
		if err != nil {
			return err
		}

		moved, err := tx.GetArticleSliceAt(ctx, touched.ID, touched.Clang, touched.Revision, slot, oldPosition)
		if err != nil {
			return asDomainErr(err, cms.ErrArticleSliceNotFound)
		}

		// Park the moved placement outside the slot, close the gap,
		// make room at the target, drop it back in.
		if err := tx.SetArticleSlicePosition(ctx, moved.ID, -1); err != nil {
			return err
		}
		if err := tx.ShiftArticleSlices(ctx, touched.ID, touched.Clang, touched.Revision, slot, oldPosition+1, -1, -1); err != nil {
			return err
		}
		if err := tx.ShiftArticleSlices(ctx, touched.ID, touched.Clang, touched.Revision, slot, newPosition, -1, +1); err != nil {
			return err
		}
		if err := tx.SetArticleSlicePosition(ctx, moved.ID, newPosition); err != nil {
			return err
		}

		s.notify.Notify(cms.EventSliceMoved, moved, map[string]interface{}{
			"slot": slot, "from": oldPosition, "to": newPosition,
		})
		return nil
	})
}

// Delete removes every placement of one slot from a fresh revision.
// Passing repository.AllSlots clears the whole article. Older
// revisions keep their placements.
func (s *SliceService) Delete(ctx context.Context, articleID, clang int64, slot string, actor *cms.User) error {
	return s.store.Transactional(ctx, func(tx repository.Store) error {
		a, err := tx.GetArticle(ctx, articleID, clang)
		if err != nil {
			return asDomainErr(err, cms.ErrArticleNotFound)
		}

		s.notify.Notify(cms.EventSliceBeforeDelete, a, map[string]interface{}{"slot": slot})

		touched, err := touchArticle(ctx, tx, a, actor)
		if err != nil {
			return err
		}

		if err := tx.DeleteArticleSlices(ctx, touched.ID, touched.Clang, touched.Revision, slot); err != nil {
			return err
		}

		s.notify.Notify(cms.EventSliceDeleted, a, map[string]interface{}{"slot": slot})
		return nil
	})
}

// DeleteByArticleSlice removes the single placement the argument
// addresses (by slot and position, at the current revision) and
// compacts the positions above it.
func (s *SliceService) DeleteByArticleSlice(ctx context.Context, placed *cms.ArticleSlice, actor *cms.User) error {
	return s.store.Transactional(ctx, func(tx repository.Store) error {
		a, err := tx.GetArticle(ctx, placed.ArticleID, placed.Clang)
		if err != nil {
			return asDomainErr(err, cms.ErrArticleNotFound)
		}

		if _, err := tx.GetArticleSliceAt(ctx, a.ID, a.Clang, a.Revision, placed.Slot, placed.Position); err != nil {
			return asDomainErr(err, cms.ErrArticleSliceNotFound)
		}

		s.notify.Notify(cms.EventSliceBeforeDelete, placed, map[string]interface{}{"slot": placed.Slot})

		touched, err := touchArticle(ctx, tx, a, actor)
		if err != nil {
			return err
		}

		target, err := tx.GetArticleSliceAt(ctx, touched.ID, touched.Clang, touched.Revision, placed.Slot, placed.Position)
		if err != nil {
			return asDomainErr(err, cms.ErrArticleSliceNotFound)
		}

		if err := tx.DeleteArticleSlice(ctx, target.ID); err != nil {
			return err
		}
		if err := tx.ShiftArticleSlices(ctx, touched.ID, touched.Clang, touched.Revision, placed.Slot, placed.Position+1, -1, -1); err != nil {
			return err
		}

		s.notify.Notify(cms.EventSliceDeleted, placed, map[string]interface{}{"slot": placed.Slot})
		return nil
	})
}
