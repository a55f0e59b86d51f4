// Package api serves impact networks over HTTP.
//
// The server is a thin JSON front on [pipeline.Runner]: every artifact
// endpoint builds pipeline options from the URL and hands the work to the
// runner, so HTTP requests share the same memoization as CLI renders.
//
// # Endpoints
//
//	GET /healthz                     liveness probe
//	GET /api/networks                all networks with grant metadata
//	GET /api/networks/{id}/scene     composed scene JSON
//	GET /api/networks/{id}/figure    plotly figure JSON
//	GET /api/networks/{id}/svg       rendered SVG document
//	GET /api/networks/{id}/summary   counts and pathway status
//	GET /api/report                  portfolio metrics across all networks
//
// Errors come back as a JSON envelope carrying the error code, the message,
// and the request id, with the HTTP status derived from the code. Artifact
// endpoints accept ?refresh=true to bypass cache reads; the SVG endpoint
// additionally accepts scale, labels, background, and title.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/impactgraph/impactgraph/pkg/pipeline"
)

// =============================================================================
// Server
// =============================================================================

// Server exposes a runner's pipeline over HTTP.
type Server struct {
	// ThemePath styles every rendered response when set. Empty means
	// the built-in theme.
	ThemePath string

	runner  *pipeline.Runner
	logger  *log.Logger
	started time.Time

	httpServer *http.Server
}

// NewServer wires a server around a runner. A nil logger falls back to the
// default logger.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:  runner,
		logger:  logger,
		started: time.Now(),
	}
}

// Router builds the chi mux with all routes and middleware attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/networks", s.handleNetworks)
		r.Route("/networks/{id}", func(r chi.Router) {
			r.Get("/scene", s.artifactHandler(pipeline.FormatScene, "application/json"))
			r.Get("/figure", s.artifactHandler(pipeline.FormatFigure, "application/json"))
			r.Get("/svg", s.artifactHandler(pipeline.FormatSVG, "image/svg+xml"))
			r.Get("/summary", s.handleSummary)
		})
		r.Get("/report", s.handleReport)
	})

	return r
}

// ListenAndServe runs the server on addr until ctx is canceled, then shuts
// down gracefully with a 10 second drain window.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving impact networks", "addr", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
