// Package api exposes the lookup pipeline over HTTP: synchronous JSON
// lookups, server-sent event and WebSocket progress streams, and CSV exports.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sternrassler/glp-lookup/pkg/logging"
	"github.com/Sternrassler/glp-lookup/pkg/lookup"
	"github.com/Sternrassler/glp-lookup/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// LookupService runs lookups. *lookup.Service implements it.
type LookupService interface {
	StreamDevices(ctx context.Context, req lookup.DeviceRequest) (<-chan lookup.Event, error)
	LookupDevices(ctx context.Context, req lookup.DeviceRequest) (*lookup.DeviceResult, error)
	StreamSubscriptions(ctx context.Context, req lookup.SubscriptionRequest) (<-chan lookup.Event, error)
	LookupSubscriptions(ctx context.Context, req lookup.SubscriptionRequest) (*lookup.SubscriptionResult, error)
}

// API groups HTTP handlers and dependencies.
type API struct {
	service   LookupService
	logger    zerolog.Logger
	staticDir string
}

// New creates HTTP handlers with explicit dependencies.
func New(service LookupService, logger zerolog.Logger, staticDir string) *API {
	return &API{service: service, logger: logger, staticDir: staticDir}
}

// Handler builds the routing tree. There is no request timeout middleware:
// streams last as long as their run.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(logging.Middleware(a.logger))

	r.Get("/health", a.health)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Post("/lookup", a.deviceLookup)
		api.Post("/lookup-stream", a.deviceStream)
		api.Post("/export", a.deviceExport)

		api.Post("/subscription-lookup", a.subscriptionLookup)
		api.Post("/subscription-stream", a.subscriptionStream)
		api.Post("/subscription-export", a.subscriptionExport)

		api.Get("/ws/lookup", a.websocketStream)
	})

	r.Get("/*", a.static)
	r.Get("/", a.static)
	return r
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (a *API) static(w http.ResponseWriter, r *http.Request) {
	if a.staticDir == "" {
		writeError(w, http.StatusNotFound, "frontend_missing", "Frontend not configured")
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/")
	if path == "" {
		path = "index.html"
	}
	cleanPath := strings.TrimPrefix(filepath.Clean("/"+path), "/")
	fullPath := filepath.Join(a.staticDir, cleanPath)
	if info, err := os.Stat(fullPath); err == nil && !info.IsDir() {
		http.ServeFile(w, r, fullPath)
		return
	}
	http.ServeFile(w, r, filepath.Join(a.staticDir, "index.html"))
}

// writeLookupError maps pipeline errors to HTTP responses. A cancelled
// request gets no body.
func (a *API) writeLookupError(w http.ResponseWriter, r *http.Request, err error, emptyMessage string) {
	if authErr, ok := lookup.IsAuthError(err); ok {
		writeError(w, authErr.Status, "auth_error", authErr.Message)
		return
	}
	switch {
	case errors.Is(err, lookup.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, "empty_input", emptyMessage)
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		a.logger.Debug().Str("path", r.URL.Path).Msg("Client went away before the lookup finished")
	default:
		a.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Lookup failed")
		writeError(w, http.StatusInternalServerError, "lookup_failed", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
