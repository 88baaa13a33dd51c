package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zeusync/offscreen/internal/config"
	"github.com/zeusync/offscreen/internal/core/observability/log"
)

const shutdownTimeout = 5 * time.Second

// NewHandler routes the feed, prometheus metrics and a health probe.
func NewHandler(feed *Feed, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", feed)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "ok",
			"clients": feed.Clients(),
		})
	})
	return mux
}

type HTTPServer struct {
	server  *http.Server
	running atomic.Bool
	stopped atomic.Bool

	mu   sync.Mutex
	addr net.Addr
	errs chan error

	logger log.Log
}

// NewHTTPServer serves the feed on cfg.Addr. Stopping the server disconnects
// the feed subscribers.
func NewHTTPServer(cfg config.ServerConfig, feed *Feed, gatherer prometheus.Gatherer, logger log.Log) *HTTPServer {
	if logger == nil {
		logger = log.NewNop()
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewHandler(feed, gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv.RegisterOnShutdown(feed.Close)
	return &HTTPServer{
		server: srv,
		logger: logger.With(log.String("component", "http")),
	}
}

// Start binds the listener and serves in the background.
func (s *HTTPServer) Start(ctx context.Context) error {
	if s.stopped.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.server.Addr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}

	errs := make(chan error, 1)
	s.mu.Lock()
	s.addr = ln.Addr()
	s.errs = errs
	s.mu.Unlock()

	go func() {
		defer close(errs)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", log.Error(err))
			errs <- err
		}
	}()

	s.logger.Info("http server listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Stop shuts the server down gracefully. A stopped server cannot be started again.
func (s *HTTPServer) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}
	s.stopped.Store(true)
	s.logger.Info("http server stopping")
	return s.server.Shutdown(ctx)
}

// Run serves until ctx is done or the listener fails.
func (s *HTTPServer) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	errs := s.errs
	s.mu.Unlock()

	select {
	case <-ctx.Done():
	case err, ok := <-errs:
		if ok {
			s.running.Store(false)
			return fmt.Errorf("%w: %w", ErrTransportFailed, err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Addr returns the bound listener address, or nil before Start.
func (s *HTTPServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}
