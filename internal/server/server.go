// Package server exposes the analysis pipeline over HTTP: POST /parse
// guarded by a shared-secret header, plus /health and /metrics.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/joseph-ayodele/invoice-sentinel/internal/common"
	"github.com/joseph-ayodele/invoice-sentinel/internal/metrics"
	"github.com/joseph-ayodele/invoice-sentinel/internal/pipeline"
)

type Server struct {
	cfg       common.ServerConfig
	processor *pipeline.Processor
	collector *metrics.Collector
	logger    *slog.Logger

	httpServer *http.Server
}

func New(cfg common.ServerConfig, processor *pipeline.Processor, collector *metrics.Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:       cfg,
		processor: processor,
		collector: collector,
		logger:    logger,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /parse", s.requireAPIKey(s.handleParse))
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.collector != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}
	return mux
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.listen", "addr", s.cfg.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server.shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
