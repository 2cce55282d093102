// Package server exposes the registry over HTTP under the /registryx prefix.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/autonomax/registryx/internal/registry"

	"go.uber.org/zap"
)

// ShutdownTimeout bounds how long in-flight requests may run after the
// serve context is cancelled.
const ShutdownTimeout = 5 * time.Second

const routePrefix = "/registryx"

// Server routes HTTP requests to a Registry.
type Server struct {
	registry *registry.Registry
	logger   *zap.Logger
	handler  http.Handler
}

// New returns a Server for reg. A nil logger discards logs.
func New(reg *registry.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{registry: reg, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+routePrefix+"/projects", s.handleProjects)
	mux.HandleFunc("GET "+routePrefix+"/projects/summary", s.handleSummary)
	mux.HandleFunc("GET "+routePrefix+"/projects/{id}", s.handleProject)
	mux.HandleFunc("POST "+routePrefix+"/projects/patch", s.handlePatch)
	mux.HandleFunc("GET "+routePrefix+"/wbs", s.handleWBS)
	mux.HandleFunc("GET "+routePrefix+"/index/build", s.handleBuildIndex)
	mux.HandleFunc("GET "+routePrefix+"/index", s.handleIndex)
	mux.HandleFunc("GET "+routePrefix+"/index/search", s.handleSearch)
	mux.HandleFunc("GET "+routePrefix+"/team", s.handleTeam)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.handler = s.logRequests(mux)

	return s
}

// Handler returns the root handler, request logging included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled, then shuts
// down gracefully. The listener is closed on return.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- httpServer.Serve(listener)
	}()

	s.logger.Info("server listening", zap.String("addr", listener.Addr().String()))

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	s.logger.Info("server shutting down")

	err := httpServer.Shutdown(shutdownCtx)

	serveResult := <-serveErr
	if serveResult != nil && !errors.Is(serveResult, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", serveResult)
	}

	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
