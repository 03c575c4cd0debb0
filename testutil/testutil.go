// Package testutil provides test fixtures for slate integration tests.
package testutil

import (
	"context"
	"testing"

	"github.com/slatecms/slate/cms"
	"github.com/slatecms/slate/cms/service"
	"github.com/slatecms/slate/dispatcher"
	"github.com/slatecms/slate/internal/storage"
)

// TestApp wraps the wired services for integration tests.
type TestApp struct {
	Categories *service.CategoryService
	Articles   *service.ArticleService
	Slices     *service.SliceService
	Trash      *service.TrashService
	Events     *dispatcher.Dispatcher
	Store      *storage.Store
}

// SetupTestStore creates an in-memory SQLite store with migrations applied.
func SetupTestStore(t *testing.T) (*storage.Store, func()) {
	t.Helper()

	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	cleanup := func() {
		store.Close()
	}

	return store, cleanup
}

// SetupTestApp creates a full application instance for integration tests.
func SetupTestApp(t *testing.T) (*TestApp, func()) {
	t.Helper()

	store, storeCleanup := SetupTestStore(t)
	events := dispatcher.New()

	app := &TestApp{
		Categories: service.NewCategoryService(store, events),
		Articles:   service.NewArticleService(store, events),
		Slices:     service.NewSliceService(store, events),
		Trash:      service.NewTrashService(store, events),
		Events:     events,
		Store:      store,
	}

	return app, storeCleanup
}

// TestUser returns the editor used by the fixture helpers.
func TestUser() *cms.User {
	return &cms.User{ID: 1, Login: "tester"}
}

// CreateTestCategory creates a category and returns it.
func CreateTestCategory(t *testing.T, app *TestApp, parentID int64, name string, clang int64) *cms.Category {
	t.Helper()

	c, err := app.Categories.Add(context.Background(), parentID, name, clang, TestUser())
	if err != nil {
		t.Fatalf("failed to create test category %q: %v", name, err)
	}
	return c
}

// CreateTestArticle creates an article at the end of its category and
// returns it.
func CreateTestArticle(t *testing.T, app *TestApp, parentID int64, name string, clang int64) *cms.Article {
	t.Helper()

	a, err := app.Articles.Add(context.Background(), parentID, name, clang, 0, TestUser())
	if err != nil {
		t.Fatalf("failed to create test article %q: %v", name, err)
	}
	return a
}

// AddTestSlice places a slice at the end of the article's main slot and
// returns it.
func AddTestSlice(t *testing.T, app *TestApp, articleID, clang int64, module string, values cms.SliceValues) *cms.Slice {
	t.Helper()

	sl, err := app.Slices.Add(context.Background(), articleID, clang, cms.DefaultSlot, module, values, -1, TestUser())
	if err != nil {
		t.Fatalf("failed to add test slice: %v", err)
	}
	return sl
}

// SlotModules lists the module names of a slot's placements, ordered by
// position. Tests use it to assert placement order.
func SlotModules(t *testing.T, app *TestApp, articleID, clang int64, slot string) []string {
	t.Helper()

	placed, err := app.Slices.FindByArticle(context.Background(), articleID, clang, slot)
	if err != nil {
		t.Fatalf("failed to list slices: %v", err)
	}
	modules := make([]string, 0, len(placed))
	for _, p := range placed {
		modules = append(modules, p.Slice.Module)
	}
	return modules
}
