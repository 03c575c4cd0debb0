package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"

	"github.com/slatecms/slate/cms"
	"github.com/slatecms/slate/testutil"
)

func TestSliceAdd(t *testing.T) {
	app, cleanup := testutil.SetupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	user := testutil.TestUser()

	cat := testutil.CreateTestCategory(t, app, 0, "SliceCat", clang)
	a := testutil.CreateTestArticle(t, app, cat.ID, "SliceArt", clang)

	t.Run("every add creates a fresh revision", func(t *testing.T) {
		before, _ := app.Articles.Get(ctx, a.ID, clang)

		testutil.AddTestSlice(t, app, a.ID, clang, "one", cms.SliceValues{"n": "1"})

		after, _ := app.Articles.Get(ctx, a.ID, clang)
		if after.Revision != before.Revision+1 {
			t.Errorf("revision = %d, want %d", after.Revision, before.Revision+1)
		}
	})

	t.Run("appends at the end by default", func(t *testing.T) {
		testutil.AddTestSlice(t, app, a.ID, clang, "two", cms.SliceValues{"n": "2"})

		modules := testutil.SlotModules(t, app, a.ID, clang, cms.DefaultSlot)
		want := []string{"one", "two"}
		requireModules(t, modules, want)
	})

	t.Run("inserting mid-slot shifts the rest up", func(t *testing.T) {
		_, err := app.Slices.Add(ctx, a.ID, clang, cms.DefaultSlot, "zero", cms.SliceValues{"n": "0"}, 0, user)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		modules := testutil.SlotModules(t, app, a.ID, clang, cms.DefaultSlot)
		requireModules(t, modules, []string{"zero", "one", "two"})
	})

	t.Run("slots are ordered independently", func(t *testing.T) {
		_, err := app.Slices.Add(ctx, a.ID, clang, "sidebar", "widget", nil, -1, user)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		placed, err := app.Slices.FindByArticle(ctx, a.ID, clang, "sidebar")
		if err != nil {
			t.Fatalf("FindByArticle failed: %v", err)
		}
		if len(placed) != 1 {
			t.Fatalf("expected 1 sidebar placement, got %d", len(placed))
		}
		if placed[0].Placement.Position != 0 {
			t.Errorf("sidebar position = %d, want 0", placed[0].Placement.Position)
		}
	})

	t.Run("missing article", func(t *testing.T) {
		_, err := app.Slices.Add(ctx, 9999, clang, cms.DefaultSlot, "x", nil, -1, user)
		if !errors.Is(err, cms.ErrArticleNotFound) {
			t.Errorf("expected ErrArticleNotFound, got: %v", err)
		}
	})
}

func TestSliceEdit(t *testing.T) {
	app, cleanup := testutil.SetupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	user := testutil.TestUser()

	cat := testutil.CreateTestCategory(t, app, 0, "EditSliceCat", clang)
	a := testutil.CreateTestArticle(t, app, cat.ID, "EditSliceArt", clang)
	testutil.AddTestSlice(t, app, a.ID, clang, "text", cms.SliceValues{"body": "v1"})

	t.Run("replaces the payload and bumps the revision", func(t *testing.T) {
		before, _ := app.Articles.Get(ctx, a.ID, clang)

		edited, err := app.Slices.Edit(ctx, a.ID, clang, cms.DefaultSlot, 0, cms.SliceValues{"body": "v2"}, user)
		if err != nil {
			t.Fatalf("Edit failed: %v", err)
		}
		if edited.Values["body"] != "v2" {
			t.Errorf("body = %q, want v2", edited.Values["body"])
		}

		after, _ := app.Articles.Get(ctx, a.ID, clang)
		if after.Revision != before.Revision+1 {
			t.Errorf("revision = %d, want %d", after.Revision, before.Revision+1)
		}
	})

	t.Run("payload is shared storage, history sees the edit", func(t *testing.T) {
		// The placement of the previous revision points at the same
		// slice row, so its values follow.
		revs, err := app.Articles.ListRevisions(ctx, a.ID, clang)
		if err != nil {
			t.Fatalf("ListRevisions failed: %v", err)
		}
		prev := revs[1]

		placed, err := app.Store.FindArticleSlices(ctx, a.ID, clang, prev.Revision, cms.DefaultSlot)
		if err != nil {
			t.Fatalf("FindArticleSlices failed: %v", err)
		}
		if len(placed) != 1 {
			t.Fatalf("expected 1 placement at revision %d, got %d", prev.Revision, len(placed))
		}
		sl, err := app.Store.GetSlice(ctx, placed[0].SliceID)
		if err != nil {
			t.Fatalf("GetSlice failed: %v", err)
		}
		if sl.Values["body"] != "v2" {
			t.Errorf("historic body = %q, want v2", sl.Values["body"])
		}
	})

	t.Run("missing placement", func(t *testing.T) {
		before, _ := app.Articles.Get(ctx, a.ID, clang)

		_, err := app.Slices.Edit(ctx, a.ID, clang, cms.DefaultSlot, 42, cms.SliceValues{"x": "y"}, user)
		if !errors.Is(err, cms.ErrArticleSliceNotFound) {
			t.Errorf("expected ErrArticleSliceNotFound, got: %v", err)
		}

		// A failed edit must not leave a stray revision behind.
		after, _ := app.Articles.Get(ctx, a.ID, clang)
		if after.Revision != before.Revision {
			t.Errorf("revision = %d, want %d", after.Revision, before.Revision)
		}
	})
}

func TestSliceMoveTo(t *testing.T) {
	// Remove then reinsert with compaction, never a swap.
	tests := []struct {
		from, to int
		want     []string
	}{
		{from: 0, to: 1, want: []string{"b", "a", "c", "d"}},
		{from: 1, to: 0, want: []string{"b", "a", "c", "d"}},
		{from: 0, to: 2, want: []string{"b", "c", "a", "d"}},
		{from: 0, to: 3, want: []string{"b", "c", "d", "a"}},
		{from: 0, to: 4, want: []string{"b", "c", "d", "a"}}, // clamped to the end
		{from: 3, to: 0, want: []string{"d", "a", "b", "c"}},
		{from: 3, to: 2, want: []string{"a", "b", "d", "c"}},
		{from: 3, to: -1, want: []string{"d", "a", "b", "c"}}, // clamped to the front
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("move %d to %d", tt.from, tt.to), func(t *testing.T) {
			app, cleanup := testutil.SetupTestApp(t)
			defer cleanup()

			ctx := context.Background()
			user := testutil.TestUser()

			cat := testutil.CreateTestCategory(t, app, 0, "MoveCat", clang)
			art := testutil.CreateTestArticle(t, app, cat.ID, "MoveArt", clang)
			for _, m := range []string{"a", "b", "c", "d"} {
				testutil.AddTestSlice(t, app, art.ID, clang, m, nil)
			}

			if err := app.Slices.MoveTo(ctx, art.ID, clang, cms.DefaultSlot, tt.from, tt.to, user); err != nil {
				t.Fatalf("MoveTo failed: %v", err)
			}

			modules := testutil.SlotModules(t, app, art.ID, clang, cms.DefaultSlot)
			requireModules(t, modules, tt.want)
		})
	}
}

func TestSliceMoveToRejections(t *testing.T) {
	app, cleanup := testutil.SetupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	user := testutil.TestUser()

	cat := testutil.CreateTestCategory(t, app, 0, "RejectCat", clang)
	art := testutil.CreateTestArticle(t, app, cat.ID, "RejectArt", clang)
	for _, m := range []string{"a", "b", "c"} {
		testutil.AddTestSlice(t, app, art.ID, clang, m, nil)
	}

	before, _ := app.Articles.Get(ctx, art.ID, clang)

	tests := []struct {
		name     string
		from, to int
	}{
		{name: "negative source", from: -1, to: 1},
		{name: "source past the end", from: 3, to: 0},
		{name: "source equals target", from: 1, to: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := app.Slices.MoveTo(ctx, art.ID, clang, cms.DefaultSlot, tt.from, tt.to, user)
			if !errors.Is(err, cms.ErrPositionOutOfBounds) {
				t.Errorf("expected ErrPositionOutOfBounds, got: %v", err)
			}
		})
	}

	t.Run("rejected moves leave order and revision alone", func(t *testing.T) {
		after, _ := app.Articles.Get(ctx, art.ID, clang)
		if after.Revision != before.Revision {
			t.Errorf("revision = %d, want %d", after.Revision, before.Revision)
		}
		modules := testutil.SlotModules(t, app, art.ID, clang, cms.DefaultSlot)
		requireModules(t, modules, []string{"a", "b", "c"})
	})
}

func TestSliceDelete(t *testing.T) {
	app, cleanup := testutil.SetupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	user := testutil.TestUser()

	t.Run("clears one slot, older revisions keep theirs", func(t *testing.T) {
		cat := testutil.CreateTestCategory(t, app, 0, "DelSlotCat", clang)
		art := testutil.CreateTestArticle(t, app, cat.ID, "DelSlotArt", clang)
		testutil.AddTestSlice(t, app, art.ID, clang, "text", nil)
		_, err := app.Slices.Add(ctx, art.ID, clang, "sidebar", "widget", nil, -1, user)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		beforeDelete, _ := app.Articles.Get(ctx, art.ID, clang)

		if err := app.Slices.Delete(ctx, art.ID, clang, cms.DefaultSlot, user); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		if got := testutil.SlotModules(t, app, art.ID, clang, cms.DefaultSlot); len(got) != 0 {
			t.Errorf("main slot not empty: %v", got)
		}
		if got := testutil.SlotModules(t, app, art.ID, clang, "sidebar"); len(got) != 1 {
			t.Errorf("sidebar slot lost placements: %v", got)
		}

		// The pre-delete revision still holds the placement.
		old, err := app.Store.FindArticleSlices(ctx, art.ID, clang, beforeDelete.Revision, cms.DefaultSlot)
		if err != nil {
			t.Fatalf("FindArticleSlices failed: %v", err)
		}
		if len(old) != 1 {
			t.Errorf("expected 1 historic placement, got %d", len(old))
		}
	})

	t.Run("single placement delete compacts the slot", func(t *testing.T) {
		cat := testutil.CreateTestCategory(t, app, 0, "DelOneCat", clang)
		art := testutil.CreateTestArticle(t, app, cat.ID, "DelOneArt", clang)
		for _, m := range []string{"a", "b", "c"} {
			testutil.AddTestSlice(t, app, art.ID, clang, m, nil)
		}

		target := &cms.ArticleSlice{ArticleID: art.ID, Clang: clang, Slot: cms.DefaultSlot, Position: 1}
		if err := app.Slices.DeleteByArticleSlice(ctx, target, user); err != nil {
			t.Fatalf("DeleteByArticleSlice failed: %v", err)
		}

		modules := testutil.SlotModules(t, app, art.ID, clang, cms.DefaultSlot)
		requireModules(t, modules, []string{"a", "c"})

		placed, _ := app.Slices.FindByArticle(ctx, art.ID, clang, cms.DefaultSlot)
		for i, p := range placed {
			if p.Placement.Position != i {
				t.Errorf("index %d position = %d, want %d", i, p.Placement.Position, i)
			}
		}
	})

	t.Run("missing placement", func(t *testing.T) {
		cat := testutil.CreateTestCategory(t, app, 0, "DelMissCat", clang)
		art := testutil.CreateTestArticle(t, app, cat.ID, "DelMissArt", clang)

		target := &cms.ArticleSlice{ArticleID: art.ID, Clang: clang, Slot: cms.DefaultSlot, Position: 0}
		err := app.Slices.DeleteByArticleSlice(ctx, target, user)
		if !errors.Is(err, cms.ErrArticleSliceNotFound) {
			t.Errorf("expected ErrArticleSliceNotFound, got: %v", err)
		}
	})
}

func requireModules(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("modules = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("modules = %v, want %v", got, want)
		}
	}
}
