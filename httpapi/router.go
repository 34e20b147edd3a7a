// Package httpapi exposes the grid queries over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/viant/phoenixgrid/source"
)

func badRequest(msg string) error { return fmt.Errorf("%w: %s", ErrBadRequest, msg) }

// New returns the API router. parallel bounds concurrent spectrum loads per
// request.
func New(registry *source.Registry, parallel int, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := NewHandler(registry, parallel, logger)
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Get("/sources", h.listSources)
		v1.Route("/sources/{name}", func(s chi.Router) {
			s.Get("/axes", h.axes)
			s.Get("/nearest", h.nearest)
			s.Get("/weights", h.weights)
			s.Get("/neighbors", h.neighbors)
			s.Get("/spectrum", h.spectrum)
		})
	})
	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start))
		})
	}
}

type Server struct {
	httpServer *http.Server
}

func NewServer(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  time.Minute,
		},
	}
}

// Run serves until Stop is called.
func (s *Server) Run() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
