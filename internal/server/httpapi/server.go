// Package httpapi exposes the record service over HTTP with a chi router.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/truthchain/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP front of the record service.
type Server struct {
	httpServer      *http.Server
	logger          logging.Logger
	shutdownTimeout time.Duration
}

// NewRouter builds the route table. Middlewares are applied in order.
func NewRouter(h *Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health/live", h.HealthLive)
	r.Get("/health/ready", h.HealthReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/records", h.ListRecords)
		r.Post("/prepare-upload", h.PrepareUpload)
		r.Post("/save-record", h.SaveRecord)
		r.Post("/dev/relay", h.Relay)
		r.Get("/contract-address", h.ContractAddress)
		r.Get("/status", h.Status)
	})

	r.Get("/uploads/{cid}", h.ServeUpload)

	return r
}

// New returns a server for addr with the full middleware chain.
func New(addr string, h *Handler, logger logging.Logger, shutdownTimeout time.Duration) *Server {
	log := logger.With("module", "http_server")

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(h, Metrics(), RequestLogger(log)),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:          log,
		shutdownTimeout: shutdownTimeout,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())
		err := s.httpServer.Serve(lis)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	sctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "Stopping HTTP server...")
	if err := s.httpServer.Shutdown(sctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
