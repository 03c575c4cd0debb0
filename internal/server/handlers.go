package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	pkgerrors "github.com/pkg/errors"

	"github.com/slatecms/slate/cms"
	"github.com/slatecms/slate/cms/repository"
)

// Routes registers every admin API route on the router.
func (a *App) Routes(router *mux.Router) {
	router.HandleFunc("/categories", a.ListCategoriesHandler).Methods("GET")
	router.HandleFunc("/categories", a.AddCategoryHandler).Methods("POST")
	router.HandleFunc("/categories/{id}", a.EditCategoryHandler).Methods("PATCH")
	router.HandleFunc("/categories/{id}", a.DeleteCategoryHandler).Methods("DELETE")
	router.HandleFunc("/categories/{id}/move", a.MoveCategoryHandler).Methods("POST")
	router.HandleFunc("/categories/{id}/tree", a.CategoryTreeHandler).Methods("GET")

	router.HandleFunc("/articles", a.AddArticleHandler).Methods("POST")
	router.HandleFunc("/articles/{id}", a.GetArticleHandler).Methods("GET")
	router.HandleFunc("/articles/{id}", a.EditArticleHandler).Methods("PATCH")
	router.HandleFunc("/articles/{id}", a.DeleteArticleHandler).Methods("DELETE")
	router.HandleFunc("/articles/{id}/move", a.MoveArticleHandler).Methods("POST")
	router.HandleFunc("/articles/{id}/copy", a.CopyArticleHandler).Methods("POST")
	router.HandleFunc("/articles/{id}/touch", a.TouchArticleHandler).Methods("POST")
	router.HandleFunc("/articles/{id}/revisions", a.ListRevisionsHandler).Methods("GET")
	router.HandleFunc("/articles/{id}/diff", a.DiffRevisionsHandler).Methods("GET")

	router.HandleFunc("/articles/{id}/slices", a.ListSlicesHandler).Methods("GET")
	router.HandleFunc("/articles/{id}/slices", a.AddSliceHandler).Methods("POST")
	router.HandleFunc("/articles/{id}/slices/edit", a.EditSliceHandler).Methods("POST")
	router.HandleFunc("/articles/{id}/slices/move", a.MoveSliceHandler).Methods("POST")
	router.HandleFunc("/articles/{id}/slices", a.DeleteSlicesHandler).Methods("DELETE")

	router.HandleFunc("/trash", a.ListTrashHandler).Methods("GET")
	router.HandleFunc("/trash/{id}/restore", a.RestoreArticleHandler).Methods("POST")
}

// actor extracts the acting user from the request. Authentication is
// someone else's job; the header value only feeds the audit columns.
func actor(r *http.Request) *cms.User {
	login := r.Header.Get("X-Slate-User")
	if login == "" {
		return cms.SystemUser()
	}
	return &cms.User{Login: login}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func queryInt64(r *http.Request, key string, fallback int64) int64 {
	v, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func queryInt(r *http.Request, key string, fallback int) int {
	return int(queryInt64(r, key, int64(fallback)))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case pkgerrors.Is(err, cms.ErrCategoryNotFound),
		pkgerrors.Is(err, cms.ErrArticleNotFound),
		pkgerrors.Is(err, cms.ErrSliceNotFound),
		pkgerrors.Is(err, cms.ErrArticleSliceNotFound):
		status = http.StatusNotFound
	case pkgerrors.Is(err, cms.ErrCycle),
		pkgerrors.Is(err, cms.ErrHasChildren),
		pkgerrors.Is(err, cms.ErrMissingParent):
		status = http.StatusConflict
	case pkgerrors.Is(err, cms.ErrPositionOutOfBounds):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (a *App) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	cats, err := a.Categories.FindChildren(r.Context(),
		queryInt64(r, "parent", 0), queryInt64(r, "clang", 1))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (a *App) AddCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParentID int64  `json:"parent_id"`
		Name     string `json:"name"`
		Clang    int64  `json:"clang"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	cat, err := a.Categories.Add(r.Context(), req.ParentID, req.Name, req.Clang, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

func (a *App) EditCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req struct {
		Name     string `json:"name"`
		Position int    `json:"position"`
		Clang    int64  `json:"clang"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	cat, err := a.Categories.Edit(r.Context(), id, req.Clang, req.Name, req.Position, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (a *App) MoveCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req struct {
		ParentID int64 `json:"parent_id"`
		Clang    int64 `json:"clang"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := a.Categories.Move(r.Context(), id, req.ParentID, req.Clang, actor(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"moved": true})
}

func (a *App) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	force := r.URL.Query().Get("force") == "true"
	if err := a.Categories.DeleteByID(r.Context(), id, queryInt64(r, "clang", 1), force, actor(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (a *App) CategoryTreeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	ids, err := a.Categories.FindTree(r.Context(), id, queryInt64(r, "clang", 1),
		r.URL.Query().Get("self") == "true")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (a *App) AddArticleHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParentID int64  `json:"parent_id"`
		Name     string `json:"name"`
		Clang    int64  `json:"clang"`
		Position int    `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	art, err := a.Articles.Add(r.Context(), req.ParentID, req.Name, req.Clang, req.Position, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, art)
}

func (a *App) GetArticleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	art, err := a.Articles.Get(r.Context(), id, queryInt64(r, "clang", 1))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, art)
}

func (a *App) EditArticleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req struct {
		Name     string `json:"name"`
		Position int    `json:"position"`
		Clang    int64  `json:"clang"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	art, err := a.Articles.Edit(r.Context(), id, req.Clang, req.Name, req.Position, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, art)
}

func (a *App) MoveArticleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req struct {
		ParentID int64 `json:"parent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := a.Articles.Move(r.Context(), id, req.ParentID, actor(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"moved": true})
}

func (a *App) CopyArticleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req struct {
		ParentID int64 `json:"parent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	newID, err := a.Articles.Copy(r.Context(), id, req.ParentID, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": newID})
}

func (a *App) TouchArticleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	art, err := a.Articles.Touch(r.Context(), id, queryInt64(r, "clang", 1), actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, art)
}

func (a *App) DeleteArticleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := a.Articles.DeleteByID(r.Context(), id, actor(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (a *App) ListRevisionsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	revs, err := a.Articles.ListRevisions(r.Context(), id, queryInt64(r, "clang", 1))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, revs)
}

func (a *App) DiffRevisionsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	diff, err := a.Slices.DiffRevisions(r.Context(), id, queryInt64(r, "clang", 1),
		queryInt(r, "from", 0), queryInt(r, "to", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(diff)); err != nil {
		slog.Error("failed to write diff", "error", err)
	}
}

func (a *App) ListSlicesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	slices, err := a.Slices.FindByArticle(r.Context(), id, queryInt64(r, "clang", 1),
		r.URL.Query().Get("slot"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slices)
}

func (a *App) AddSliceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req struct {
		Slot     string          `json:"slot"`
		Module   string          `json:"module"`
		Values   cms.SliceValues `json:"values"`
		Position int             `json:"position"`
		Clang    int64           `json:"clang"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if req.Slot == "" {
		req.Slot = cms.DefaultSlot
	}
	sl, err := a.Slices.Add(r.Context(), id, req.Clang, req.Slot, req.Module, req.Values, req.Position, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sl)
}

func (a *App) EditSliceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req struct {
		Slot     string          `json:"slot"`
		Position int             `json:"position"`
		Values   cms.SliceValues `json:"values"`
		Clang    int64           `json:"clang"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if req.Slot == "" {
		req.Slot = cms.DefaultSlot
	}
	sl, err := a.Slices.Edit(r.Context(), id, req.Clang, req.Slot, req.Position, req.Values, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sl)
}

func (a *App) MoveSliceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req struct {
		Slot  string `json:"slot"`
		From  int    `json:"from"`
		To    int    `json:"to"`
		Clang int64  `json:"clang"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if req.Slot == "" {
		req.Slot = cms.DefaultSlot
	}
	if err := a.Slices.MoveTo(r.Context(), id, req.Clang, req.Slot, req.From, req.To, actor(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"moved": true})
}

func (a *App) DeleteSlicesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	slot := r.URL.Query().Get("slot")
	if slot == "" {
		slot = repository.AllSlots
	}
	if err := a.Slices.Delete(r.Context(), id, queryInt64(r, "clang", 1), slot, actor(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (a *App) ListTrashHandler(w http.ResponseWriter, r *http.Request) {
	arts, err := a.Trash.FindLatest(r.Context(), queryInt64(r, "clang", 1))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, arts)
}

func (a *App) RestoreArticleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	art, err := a.Trash.Restore(r.Context(), id, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, art)
}
