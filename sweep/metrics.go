package sweep

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds the sweep's Prometheus collectors.
type Metrics struct {
	SeedsScanned      prometheus.Counter
	FailingSeeds      prometheus.Counter
	Runs              *prometheus.CounterVec
	RunDuration       *prometheus.HistogramVec
	GeneratorFailures *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{registry: reg}

	m.SeedsScanned = promauto.With(reg).NewCounter(
		prometheus.CounterOpts{
			Name: "dyncast_seeds_scanned_total",
			Help: "Seeds fully processed",
		},
	)
	m.FailingSeeds = promauto.With(reg).NewCounter(
		prometheus.CounterOpts{
			Name: "dyncast_failing_seeds_total",
			Help: "Seeds at least one toolchain failed",
		},
	)
	m.Runs = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "dyncast_toolchain_runs_total",
			Help: "Toolchain runs by outcome (pass, fail, error)",
		},
		[]string{"toolchain", "outcome"},
	)
	m.RunDuration = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dyncast_toolchain_run_duration_seconds",
			Help:    "Wall time of one compile-and-run",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"toolchain"},
	)
	m.GeneratorFailures = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "dyncast_generator_failures_total",
			Help: "Seeds whose model or sources could not be produced",
		},
		[]string{"abi"},
	)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeRun(toolchain, outcome string, d time.Duration) {
	m.Runs.WithLabelValues(toolchain, outcome).Inc()
	m.RunDuration.WithLabelValues(toolchain).Observe(d.Seconds())
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	Logger().Info("metrics listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
