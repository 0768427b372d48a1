package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionsTotal counts bridge submissions by outcome
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_submissions_total",
			Help: "Total number of migration submissions",
		},
		[]string{"outcome"},
	)

	// TokensEnqueued counts tokens accepted into the migration queue
	TokensEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_tokens_enqueued_total",
			Help: "Total number of tokens enqueued for migration",
		},
	)

	// MintsTotal counts destination-chain mint attempts by status
	MintsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_mints_total",
			Help: "Total number of Starknet mint attempts",
		},
		[]string{"status"},
	)

	// MintDuration tracks mint submission plus confirmation time
	MintDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bridge_mint_duration_seconds",
			Help:    "Mint processing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ClaimedBatchSize tracks how many items each worker cycle claims
	ClaimedBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bridge_claimed_batch_size",
			Help:    "Number of queue items claimed per worker cycle",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	// PendingItems tracks the current number of pending queue items
	PendingItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bridge_pending_items",
			Help: "Number of migration queue items in pending state",
		},
	)

	// ReclaimedItems counts stale processing items returned to pending
	ReclaimedItems = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_reclaimed_items_total",
			Help: "Total number of stale processing items reclaimed",
		},
	)

	// ErrorsTotal counts errors by component and type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)
