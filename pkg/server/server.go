// Package server exposes boards over a JSON HTTP API.
//
// Every mutation loads the stored document, rebuilds its board, applies
// the operation and writes the document back only if the operation
// succeeded. A placement the grid rejects is answered with 409 Conflict
// and the stored board is left unchanged.
//
// Routes:
//
//	GET    /healthz
//	GET    /boards
//	POST   /boards
//	GET    /boards/{id}
//	DELETE /boards/{id}
//	POST   /boards/{id}/targets/{key}/widgets
//	PATCH  /boards/{id}/targets/{key}/widgets/{wid}
//	DELETE /boards/{id}/targets/{key}/widgets/{wid}
//	GET    /boards/{id}/render?format=text&target=key
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/dashgrid/pkg/buildinfo"
	"github.com/matzehuels/dashgrid/pkg/observability"
	"github.com/matzehuels/dashgrid/pkg/pipeline"
	"github.com/matzehuels/dashgrid/pkg/store"
)

// Server serves the board API.
type Server struct {
	store  store.Store
	runner *pipeline.Runner
	logger *log.Logger

	// mu serializes read-modify-write cycles on stored documents.
	mu     sync.Mutex
	router chi.Router
}

// New creates a server on s. A nil runner renders without caching; a nil
// logger uses log.Default().
func New(s store.Store, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	srv := &Server{store: s, runner: runner, logger: logger}
	srv.router = srv.routes()
	return srv
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/boards", func(r chi.Router) {
		r.Get("/", s.handleListBoards)
		r.Post("/", s.handleCreateBoard)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetBoard)
			r.Delete("/", s.handleDeleteBoard)
			r.Get("/render", s.handleRender)
			r.Route("/targets/{key}/widgets", func(r chi.Router) {
				r.Post("/", s.handleAddWidget)
				r.Patch("/{wid}", s.handleUpdateWidget)
				r.Delete("/{wid}", s.handleDeleteWidget)
			})
		})
	})
	return r
}

// requestLogger logs each request and reports it to the HTTP hooks.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		w.Header().Set("Server", buildinfo.UserAgent())
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return hs.Shutdown(shutdownCtx)
	}
}
