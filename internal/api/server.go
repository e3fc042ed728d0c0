// Package api is the ops HTTP server: health, Prometheus metrics, the latest
// ranking and manual job triggers.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/quantengine/pkg/logger"
)

// Server represents the ops HTTP server
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

// New creates a new ops server listening on addr (":9090").
func New(addr string, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Minute, // manual job runs block the request
			IdleTimeout:       60 * time.Second,
		},
		logger: log.WithComponent("api"),
	}
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting ops server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down ops server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
