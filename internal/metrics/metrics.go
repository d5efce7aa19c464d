// Package metrics exposes Prometheus instrumentation for the scan funnel.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all pairscan metrics.
type Registry struct {
	// PairsProcessed counts pairs leaving each pipeline stage by result.
	PairsProcessed *prometheus.CounterVec

	// Exclusions counts excluded pairs by reason.
	Exclusions *prometheus.CounterVec

	// ChunkDuration observes wall time per completed chunk.
	ChunkDuration prometheus.Histogram

	// CheckpointWrites counts checkpoint persistence operations.
	CheckpointWrites prometheus.Counter

	// ActiveScan is 1 while a scan is running.
	ActiveScan prometheus.Gauge
}

// NewRegistry creates the metric set and registers it with reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		PairsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairscan_pairs_processed_total",
				Help: "Pairs leaving each pipeline stage, by stage and result",
			},
			[]string{"stage", "result"},
		),
		Exclusions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairscan_exclusions_total",
				Help: "Pairs excluded from scoring, by reason",
			},
			[]string{"reason"},
		),
		ChunkDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pairscan_chunk_duration_seconds",
				Help:    "Wall time per completed chunk",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		CheckpointWrites: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pairscan_checkpoint_writes_total",
				Help: "Checkpoint persistence operations",
			},
		),
		ActiveScan: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pairscan_active_scan",
				Help: "1 while a scan is running",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			r.PairsProcessed,
			r.Exclusions,
			r.ChunkDuration,
			r.CheckpointWrites,
			r.ActiveScan,
		)
	}
	return r
}
