package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/slatecms/slate/cms"
	"github.com/slatecms/slate/internal/server"
	"github.com/slatecms/slate/testutil"
)

func setupTestServer(t *testing.T) (*httptest.Server, *testutil.TestApp, func()) {
	t.Helper()

	app, cleanup := testutil.SetupTestApp(t)

	srv := &server.App{
		Categories: app.Categories,
		Articles:   app.Articles,
		Slices:     app.Slices,
		Trash:      app.Trash,
		Events:     app.Events,
		Store:      app.Store,
	}

	router := mux.NewRouter().StrictSlash(true)
	srv.Routes(router)

	ts := httptest.NewServer(router)
	return ts, app, func() {
		ts.Close()
		cleanup()
	}
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, into interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	ts, _, cleanup := setupTestServer(t)
	defer cleanup()

	t.Run("create and list", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/categories", map[string]interface{}{
			"parent_id": 0, "name": "News", "clang": 1,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want 201", resp.StatusCode)
		}
		var created cms.Category
		decodeJSON(t, resp, &created)
		if created.ID == 0 || created.Position != 1 {
			t.Errorf("created = %+v", created)
		}

		listResp, err := http.Get(ts.URL + "/categories?parent=0&clang=1")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		var cats []cms.Category
		decodeJSON(t, listResp, &cats)
		if len(cats) != 1 || cats[0].Name != "News" {
			t.Errorf("listing = %+v", cats)
		}
	})

	t.Run("cycle move returns conflict", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/categories", map[string]interface{}{
			"parent_id": 0, "name": "Loop", "clang": 1,
		})
		var c cms.Category
		decodeJSON(t, resp, &c)

		moveResp := postJSON(t, fmt.Sprintf("%s/categories/%d/move", ts.URL, c.ID), map[string]interface{}{
			"parent_id": c.ID, "clang": 1,
		})
		defer moveResp.Body.Close()
		if moveResp.StatusCode != http.StatusConflict {
			t.Errorf("status = %d, want 409", moveResp.StatusCode)
		}
	})

	t.Run("missing category returns 404", func(t *testing.T) {
		req, _ := http.NewRequest("PATCH", ts.URL+"/categories/9999", bytes.NewReader([]byte(`{"clang":1,"name":"X"}`)))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("PATCH: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})
}

func TestArticleEndpoints(t *testing.T) {
	ts, _, cleanup := setupTestServer(t)
	defer cleanup()

	var art cms.Article

	t.Run("create", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/articles", map[string]interface{}{
			"parent_id": 0, "name": "Hello", "clang": 1,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want 201", resp.StatusCode)
		}
		decodeJSON(t, resp, &art)
		if art.Revision != 0 {
			t.Errorf("revision = %d, want 0", art.Revision)
		}
	})

	t.Run("audit trail records the request header", func(t *testing.T) {
		req, _ := http.NewRequest("POST", fmt.Sprintf("%s/articles/%d/touch?clang=1", ts.URL, art.ID), nil)
		req.Header.Set("X-Slate-User", "edith")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST touch: %v", err)
		}
		var touched cms.Article
		decodeJSON(t, resp, &touched)
		if touched.Revision != 1 {
			t.Errorf("revision = %d, want 1", touched.Revision)
		}
		if touched.UpdateUser != "edith" {
			t.Errorf("updateuser = %q, want edith", touched.UpdateUser)
		}
	})

	t.Run("slice lifecycle over the wire", func(t *testing.T) {
		addResp := postJSON(t, fmt.Sprintf("%s/articles/%d/slices", ts.URL, art.ID), map[string]interface{}{
			"module": "text", "values": map[string]string{"body": "hi"}, "position": -1, "clang": 1,
		})
		if addResp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want 201", addResp.StatusCode)
		}
		addResp.Body.Close()

		listResp, err := http.Get(fmt.Sprintf("%s/articles/%d/slices?clang=1", ts.URL, art.ID))
		if err != nil {
			t.Fatalf("GET slices: %v", err)
		}
		var placed []struct {
			Slice cms.Slice `json:"Slice"`
		}
		decodeJSON(t, listResp, &placed)
		if len(placed) != 1 || placed[0].Slice.Values["body"] != "hi" {
			t.Errorf("placements = %+v", placed)
		}
	})

	t.Run("delete and restore via trash", func(t *testing.T) {
		req, _ := http.NewRequest("DELETE", fmt.Sprintf("%s/articles/%d", ts.URL, art.ID), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("DELETE: %v", err)
		}
		resp.Body.Close()

		trashResp, err := http.Get(ts.URL + "/trash?clang=1")
		if err != nil {
			t.Fatalf("GET trash: %v", err)
		}
		var binned []cms.Article
		decodeJSON(t, trashResp, &binned)
		if len(binned) != 1 || binned[0].ID != art.ID {
			t.Fatalf("trash = %+v", binned)
		}

		restoreResp := postJSON(t, fmt.Sprintf("%s/trash/%d/restore", ts.URL, art.ID), nil)
		var restored cms.Article
		decodeJSON(t, restoreResp, &restored)
		if restored.Deleted {
			t.Error("restored article still flagged deleted")
		}
	})

	t.Run("out of bounds slice move returns 400", func(t *testing.T) {
		resp := postJSON(t, fmt.Sprintf("%s/articles/%d/slices/move", ts.URL, art.ID), map[string]interface{}{
			"from": 42, "to": 0, "clang": 1,
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})
}
