// Package server exposes the layout pipeline over HTTP.
//
// The API mirrors the CLI: one endpoint computes layouts, and a small set
// of override endpoints commits and clears drag adjustments. All handlers
// return JSON.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/cfaller/planweave/pkg/errors"
	"github.com/cfaller/planweave/pkg/pipeline"
	"github.com/cfaller/planweave/pkg/source"
)

// Server handles layout API requests.
type Server struct {
	runner *pipeline.Runner
	loader source.Loader
	logger *log.Logger
}

// New creates a server over a shared runner and document loader.
func New(runner *pipeline.Runner, loader source.Loader, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner: runner,
		loader: loader,
		logger: logger,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)

		r.Route("/datasets/{dataset}/overrides", func(r chi.Router) {
			r.Get("/", s.handleOverridesList)
			r.Delete("/", s.handleOverridesReset)
			r.Put("/workstreams/{workstream}", s.handleWorkstreamCommit)
			r.Delete("/workstreams/{workstream}", s.handleWorkstreamRemove)
			r.Put("/placements/{placement}", s.handlePlacementCommit)
			r.Delete("/placements/{placement}", s.handlePlacementRemove)
		})
	})

	return r
}

// logRequests logs method, path, status, and duration for each request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the JSON shape of all error replies.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps application error codes onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidDataset,
		apperrors.ErrCodeInvalidDocument, apperrors.ErrCodeInvalidFormat,
		apperrors.ErrCodeInvalidPath:
		status = http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeDatasetNotFound,
		apperrors.ErrCodeFileNotFound, apperrors.ErrCodeWorkstreamNotFound,
		apperrors.ErrCodePlacementNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeStore, apperrors.ErrCodeStoreRead, apperrors.ErrCodeStoreWrite:
		status = http.StatusBadGateway
	}

	writeJSON(w, status, errorResponse{
		Error: apperrors.UserMessage(err),
		Code:  string(apperrors.GetCode(err)),
	})
}
