package services

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const metricsJob = "journal_seeder"

// Metrics mirrors the run counters in Prometheus so batch runs can be pushed
// to a Pushgateway.
type Metrics struct {
	Registry *prometheus.Registry

	RowsWritten  *prometheus.CounterVec
	Skipped      prometheus.Counter
	Errors       prometheus.Counter
	LastRun      prometheus.Gauge
	LastDuration prometheus.Gauge
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		RowsWritten: f.NewCounterVec(prometheus.CounterOpts{
			Name: "seed_rows_written_total",
			Help: "Rows written (or simulated in dry-run) per entity.",
		}, []string{"entity", "dry_run"}),
		Skipped: f.NewCounter(prometheus.CounterOpts{
			Name: "seed_records_skipped_total",
			Help: "Records not written because a required reference was missing.",
		}),
		Errors: f.NewCounter(prometheus.CounterOpts{
			Name: "seed_record_errors_total",
			Help: "Records whose normalization or write failed.",
		}),
		LastRun: f.NewGauge(prometheus.GaugeOpts{
			Name: "seed_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
		LastDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "seed_last_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
	}
}

// Observe adds the final counters of a run.
func (m *Metrics) Observe(s Stats, dryRun bool, took time.Duration) {
	mode := fmt.Sprintf("%t", dryRun)
	m.RowsWritten.WithLabelValues("journal", mode).Add(float64(s.JournalsCreated))
	m.RowsWritten.WithLabelValues("user", mode).Add(float64(s.UsersCreated))
	m.RowsWritten.WithLabelValues("article", mode).Add(float64(s.ArticlesCreated))
	m.RowsWritten.WithLabelValues("dissertation", mode).Add(float64(s.DissertationsCreated))
	m.Skipped.Add(float64(s.Skipped))
	m.Errors.Add(float64(s.Errors))
	m.LastRun.SetToCurrentTime()
	m.LastDuration.Set(took.Seconds())
}

// Push sends the registry to a Pushgateway.
func (m *Metrics) Push(url string) error {
	return push.New(url, metricsJob).Gatherer(m.Registry).Push()
}
