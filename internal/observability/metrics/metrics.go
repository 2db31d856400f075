package metrics

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

// Config configures the ingest metrics registry.
type Config struct {
	ServiceName    string
	Environment    string
	PushgatewayURL string
}

const (
	FileStatusCompleted = "completed"
	FileStatusSkipped   = "skipped"
	FileStatusFailed    = "failed"

	RowOutcomeLoaded   = "loaded"
	RowOutcomeRejected = "rejected"
)

// Metrics exposes ingestion instruments on a private registry. A batch job has
// no scrape endpoint, so the registry is pushed to a Pushgateway after each run
// when one is configured.
type Metrics struct {
	registry *prometheus.Registry
	pusher   *push.Pusher
	log      *zap.Logger

	files         *prometheus.CounterVec
	rows          *prometheus.CounterVec
	stageFallback prometheus.Counter
	runDuration   prometheus.Histogram
}

// New registers the ingest instruments.
func New(cfg Config, log *zap.Logger) (*Metrics, error) {
	if log == nil {
		log = zap.NewNop()
	}
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		log:      log.Named("metrics"),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewvault_ingest_files_total",
			Help: "Source files seen by the ingestion pipeline, by terminal status.",
		}, []string{"status"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewvault_ingest_rows_total",
			Help: "Data rows processed, by outcome.",
		}, []string{"outcome"}),
		stageFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reviewvault_stage_fallback_total",
			Help: "Stage exports that fell back to delimited text.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reviewvault_ingest_run_duration_seconds",
			Help:    "Wall time of a full ingestion run.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}

	for _, c := range []prometheus.Collector{m.files, m.rows, m.stageFallback, m.runDuration} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	if url := strings.TrimSpace(cfg.PushgatewayURL); url != "" {
		job := strings.TrimSpace(cfg.ServiceName)
		if job == "" {
			job = "reviewvault"
		}
		pusher := push.New(url, job).Gatherer(registry)
		if env := strings.TrimSpace(cfg.Environment); env != "" {
			pusher = pusher.Grouping("environment", env)
		}
		m.pusher = pusher
	}

	return m, nil
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordFile counts one file reaching a terminal status.
func (m *Metrics) RecordFile(status string) {
	if m == nil {
		return
	}
	m.files.WithLabelValues(status).Inc()
}

// RecordRows adds loaded and rejected row counts.
func (m *Metrics) RecordRows(loaded, rejected int) {
	if m == nil {
		return
	}
	if loaded > 0 {
		m.rows.WithLabelValues(RowOutcomeLoaded).Add(float64(loaded))
	}
	if rejected > 0 {
		m.rows.WithLabelValues(RowOutcomeRejected).Add(float64(rejected))
	}
}

// RecordStageFallback counts a degraded stage export.
func (m *Metrics) RecordStageFallback() {
	if m == nil {
		return
	}
	m.stageFallback.Inc()
}

// ObserveRun records the duration of a run.
func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Observe(d.Seconds())
}

// Push sends the registry to the Pushgateway. Failures are logged, never returned:
// metrics delivery must not fail an ingestion run.
func (m *Metrics) Push(ctx context.Context) {
	if m == nil || m.pusher == nil {
		return
	}
	if err := m.pusher.PushContext(ctx); err != nil {
		m.log.Warn("failed to push ingest metrics", zap.Error(err))
	}
}
