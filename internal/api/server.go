// Package api exposes extraction and processing over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/rupee-flow/internal/config"
	"github.com/Veraticus/rupee-flow/internal/extract"
	"github.com/Veraticus/rupee-flow/internal/metrics"
	"github.com/Veraticus/rupee-flow/internal/processing"
	"github.com/Veraticus/rupee-flow/internal/service"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request limits.
const (
	DefaultBatchLimit = 500
	AutoProcessLimit  = 1000
	MaxExtractBatch   = 1000
	maxBodyBytes      = 4 << 20
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Extractor      *extract.Extractor
	Store          service.Storage
	Runner         *processing.Runner
	Metrics        metrics.Collector
	MetricsHandler http.Handler // defaults to promhttp.Handler()
	BatchLimit     int
}

// Server routes HTTP requests to the extractor, storage and runner.
type Server struct {
	router     *mux.Router
	extractor  *extract.Extractor
	store      service.Storage
	runner     *processing.Runner
	metrics    metrics.Collector
	batchLimit int
}

// NewServer builds the router.
func NewServer(deps Deps) *Server {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NoOpCollector{}
	}
	if deps.MetricsHandler == nil {
		deps.MetricsHandler = promhttp.Handler()
	}
	if deps.BatchLimit <= 0 {
		deps.BatchLimit = DefaultBatchLimit
	}

	s := &Server{
		router:     mux.NewRouter(),
		extractor:  deps.Extractor,
		store:      deps.Store,
		runner:     deps.Runner,
		metrics:    deps.Metrics,
		batchLimit: deps.BatchLimit,
	}

	r := s.router
	r.Use(s.metricsMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", deps.MetricsHandler).Methods(http.MethodGet)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/extract", s.handleExtract).Methods(http.MethodPost)
	apiRouter.HandleFunc("/extract/batch", s.handleExtractBatch).Methods(http.MethodPost)
	apiRouter.HandleFunc("/messages", s.handleSaveMessages).Methods(http.MethodPost)
	apiRouter.HandleFunc("/process-batch", s.handleProcessBatch).Methods(http.MethodPost)
	apiRouter.HandleFunc("/auto-process", s.handleAutoProcess).Methods(http.MethodPost)
	apiRouter.HandleFunc("/process-message", s.handleProcessMessage).Methods(http.MethodPost)
	apiRouter.HandleFunc("/processing/status", s.handleStatus).Methods(http.MethodGet)
	apiRouter.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	apiRouter.HandleFunc("/balances/{user_id}", s.handleGetBalance).Methods(http.MethodGet)

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerSettings) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}
