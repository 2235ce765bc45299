// Package metrics records per-run ingestion counters and writes them in the
// Prometheus textfile format for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded per evaluated post.
const (
	OutcomeSkippedExisting = "skipped_existing"
	OutcomeSkippedFiltered = "skipped_filtered"
	OutcomeFiltered        = "filtered"
	OutcomeDuplicate       = "duplicate"
	OutcomeError           = "error"
	OutcomeSaved           = "saved"
)

// Run holds the collectors for one ingestion run.
type Run struct {
	registry    *prometheus.Registry
	posts       *prometheus.CounterVec
	filtered    *prometheus.CounterVec
	duration    *prometheus.GaugeVec
	lastSuccess *prometheus.GaugeVec
}

// NewRun creates collectors on a private registry.
func NewRun() *Run {
	r := &Run{
		registry: prometheus.NewRegistry(),
		posts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reelscribe",
			Name:      "posts_total",
			Help:      "Posts evaluated during the last run by outcome.",
		}, []string{"agent", "outcome"}),
		filtered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reelscribe",
			Name:      "filtered_total",
			Help:      "Posts newly filtered during the last run by reason kind.",
		}, []string{"agent", "reason"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "reelscribe",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}, []string{"agent"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "reelscribe",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}, []string{"agent"}),
	}
	r.registry.MustRegister(r.posts, r.filtered, r.duration, r.lastSuccess)
	return r
}

// Registry exposes the underlying registry.
func (r *Run) Registry() *prometheus.Registry { return r.registry }

// Observe counts one post outcome.
func (r *Run) Observe(agent, outcome string) {
	if r == nil {
		return
	}
	r.posts.WithLabelValues(agent, outcome).Inc()
}

// ObserveFiltered counts one newly filtered post.
func (r *Run) ObserveFiltered(agent, reasonKind string) {
	if r == nil {
		return
	}
	r.filtered.WithLabelValues(agent, reasonKind).Inc()
}

// Finish records run timing.
func (r *Run) Finish(agent string, elapsed time.Duration, at time.Time) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(agent).Set(elapsed.Seconds())
	r.lastSuccess.WithLabelValues(agent).Set(float64(at.Unix()))
}

// WriteTextfile writes the registry to path. An empty path is a no-op.
func (r *Run) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
