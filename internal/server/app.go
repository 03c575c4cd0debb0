// Package server exposes the content services over a thin JSON admin
// API. No business logic lives here; every handler parses a request,
// calls one service operation and encodes the result.
package server

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/slatecms/slate/cms/service"
	"github.com/slatecms/slate/dispatcher"
	"github.com/slatecms/slate/internal/config"
	"github.com/slatecms/slate/internal/storage"
)

// App holds all application dependencies and services.
type App struct {
	Categories *service.CategoryService
	Articles   *service.ArticleService
	Slices     *service.SliceService
	Trash      *service.TrashService
	Events     *dispatcher.Dispatcher
	Config     *config.Config
	Store      *storage.Store
}

// Setup loads configuration, opens the database and wires the services.
func Setup() *App {
	cfg := config.Setup()

	store, err := storage.Open(cfg.DatabaseFile)
	if err != nil {
		slog.Error("failed to open database", "error", err, "dbfile", cfg.DatabaseFile)
		os.Exit(1)
	}

	events := dispatcher.New()

	return &App{
		Categories: service.NewCategoryService(store, events),
		Articles:   service.NewArticleService(store, events),
		Slices:     service.NewSliceService(store, events),
		Trash:      service.NewTrashService(store, events),
		Events:     events,
		Config:     cfg,
		Store:      store,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// SlogLoggingMiddleware logs HTTP requests using slog.
func SlogLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"size", wrapped.size,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}
