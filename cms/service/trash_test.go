package service_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/slatecms/slate/cms"
	"github.com/slatecms/slate/testutil"
)

func TestTrashFindLatest(t *testing.T) {
	app, cleanup := testutil.SetupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	user := testutil.TestUser()

	cat := testutil.CreateTestCategory(t, app, 0, "TrashCat", clang)
	keep := testutil.CreateTestArticle(t, app, cat.ID, "Kept", clang)
	gone := testutil.CreateTestArticle(t, app, cat.ID, "Binned", clang)

	if err := app.Articles.DeleteByID(ctx, gone.ID, user); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}

	deleted, err := app.Trash.FindLatest(ctx, clang)
	if err != nil {
		t.Fatalf("FindLatest failed: %v", err)
	}
	if len(deleted) != 1 {
		t.Fatalf("expected 1 deleted article, got %d", len(deleted))
	}
	if deleted[0].ID != gone.ID {
		t.Errorf("deleted id = %d, want %d", deleted[0].ID, gone.ID)
	}
	if deleted[0].ID == keep.ID {
		t.Errorf("live article %d listed in trash", keep.ID)
	}
}

func TestTrashRestore(t *testing.T) {
	app, cleanup := testutil.SetupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	user := testutil.TestUser()

	t.Run("round trip", func(t *testing.T) {
		cat := testutil.CreateTestCategory(t, app, 0, "RestoreCat", clang)
		a := testutil.CreateTestArticle(t, app, cat.ID, "Phoenix", clang)
		testutil.AddTestSlice(t, app, a.ID, clang, "text", cms.SliceValues{"body": "content"})

		beforeDelete, _ := app.Articles.Get(ctx, a.ID, clang)

		if err := app.Articles.DeleteByID(ctx, a.ID, user); err != nil {
			t.Fatalf("DeleteByID failed: %v", err)
		}

		restored, err := app.Trash.Restore(ctx, a.ID, user)
		if err != nil {
			t.Fatalf("Restore failed: %v", err)
		}
		if restored.Deleted {
			t.Error("restored article still flagged deleted")
		}
		// Restoration appends a revision, it does not rewrite history.
		if restored.Revision != beforeDelete.Revision+1 {
			t.Errorf("revision = %d, want %d", restored.Revision, beforeDelete.Revision+1)
		}

		// Back in the category listing, placements intact.
		arts, _ := app.Articles.FindByCategory(ctx, cat.ID, clang)
		if len(arts) != 1 || arts[0].ID != a.ID {
			t.Errorf("restored article missing from category listing: %v", arts)
		}
		placed, err := app.Slices.FindByArticle(ctx, a.ID, clang, cms.DefaultSlot)
		if err != nil {
			t.Fatalf("FindByArticle failed: %v", err)
		}
		if len(placed) != 1 || placed[0].Slice.Values["body"] != "content" {
			t.Errorf("restored placements wrong: %v", placed)
		}

		// Trash is empty again.
		deleted, _ := app.Trash.FindLatest(ctx, clang)
		if len(deleted) != 0 {
			t.Errorf("expected empty trash, got %d entries", len(deleted))
		}
	})

	t.Run("restoring into a vanished category fails", func(t *testing.T) {
		cat := testutil.CreateTestCategory(t, app, 0, "DoomedCat", clang)
		a := testutil.CreateTestArticle(t, app, cat.ID, "Stranded", clang)

		if err := app.Articles.DeleteByID(ctx, a.ID, user); err != nil {
			t.Fatalf("DeleteByID failed: %v", err)
		}
		// The category is empty now (the article is soft-deleted), so a
		// plain delete goes through.
		if err := app.Categories.DeleteByID(ctx, cat.ID, clang, false, user); err != nil {
			t.Fatalf("category DeleteByID failed: %v", err)
		}

		_, err := app.Trash.Restore(ctx, a.ID, user)
		if !errors.Is(err, cms.ErrMissingParent) {
			t.Errorf("expected ErrMissingParent, got: %v", err)
		}

		// Still in the trash.
		deleted, _ := app.Trash.FindLatest(ctx, clang)
		found := false
		for _, d := range deleted {
			if d.ID == a.ID {
				found = true
			}
		}
		if !found {
			t.Error("article vanished from trash after failed restore")
		}
	})

	t.Run("restoring a live article", func(t *testing.T) {
		cat := testutil.CreateTestCategory(t, app, 0, "LiveCat", clang)
		a := testutil.CreateTestArticle(t, app, cat.ID, "Alive", clang)

		_, err := app.Trash.Restore(ctx, a.ID, user)
		if !errors.Is(err, cms.ErrArticleNotFound) {
			t.Errorf("expected ErrArticleNotFound, got: %v", err)
		}
	})

	t.Run("restoring a nonexistent article", func(t *testing.T) {
		_, err := app.Trash.Restore(ctx, 9999, user)
		if !errors.Is(err, cms.ErrArticleNotFound) {
			t.Errorf("expected ErrArticleNotFound, got: %v", err)
		}
	})
}
