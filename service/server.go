package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"

	"system_exporter/internal/collector"
	"system_exporter/internal/config"
)

const handshakeHeader = "X-Agent-Handshake-Key"

// exporter serves the registry built for the current config. Reloads build
// a complete registry first and swap it in, so scrapes always see a fully
// registered collector set.
type exporter struct {
	base   *prometheus.Registry
	logger *zap.Logger
	build  func(*config.Config) collector.Interface

	// mu serializes apply; scrapes only load current.
	mu      sync.Mutex
	current atomic.Pointer[prometheus.Registry]
}

func newExporter(logger *zap.Logger) *exporter {
	e := &exporter{
		base:   prometheus.NewRegistry(),
		logger: logger,
		build: func(cfg *config.Config) collector.Interface {
			return collector.New(cfg, logger)
		},
	}
	e.current.Store(prometheus.NewRegistry())
	return e
}

// apply registers a collector set built from cfg into a fresh registry and
// makes it current. On failure the previous registry keeps serving.
func (e *exporter) apply(cfg *config.Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.build(cfg)
	reg := prometheus.NewRegistry()
	if err := next.RegisterMetrics(reg); err != nil {
		return err
	}
	e.current.Store(reg)

	if !next.Available() {
		e.logger.Warn("system statistics unavailable, system metrics disabled",
			zap.String("proc_dir", cfg.ProcDir))
	}
	e.logger.Info("collectors registered",
		zap.String("namespace", cfg.Namespace),
		zap.String("proc_dir", cfg.ProcDir))
	return nil
}

// gatherer merges the handler's own metrics with the current registry.
func (e *exporter) gatherer() prometheus.Gatherer {
	return prometheus.GathererFunc(func() ([]*dto.MetricFamily, error) {
		return prometheus.Gatherers{e.base, e.current.Load()}.Gather()
	})
}

func (e *exporter) handler(cfg *config.Config) http.Handler {
	metricsHandler := promhttp.InstrumentMetricHandler(e.base, promhttp.HandlerFor(e.gatherer(), promhttp.HandlerOpts{
		ErrorLog:      zap.NewStdLog(e.logger),
		ErrorHandling: promhttp.HTTPErrorOnError,
	}))

	mux := http.NewServeMux()
	mux.Handle(cfg.MetricsPath, requireHandshake(cfg.HandshakeKey, metricsHandler, e.logger))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// requireHandshake rejects requests whose handshake header does not match
// key. An empty key disables the check.
func requireHandshake(key string, next http.Handler, logger *zap.Logger) http.Handler {
	if key == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(handshakeHeader) != key {
			logger.Warn("unauthorized metrics request", zap.String("remote_addr", r.RemoteAddr))
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// startHTTPServer serves until ctx is cancelled, then shuts down with a
// five second grace period.
func startHTTPServer(ctx context.Context, cfg *config.Config, exp *exporter) error {
	server := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           exp.handler(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		exp.logger.Info("starting metrics server",
			zap.String("listen_address", cfg.ListenAddress),
			zap.String("metrics_path", cfg.MetricsPath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("metrics server: %w", err)
			return
		}
		serveErr <- nil
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	return <-serveErr
}
