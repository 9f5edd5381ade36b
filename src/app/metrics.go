package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_transactions_total",
			Help: "Total number of executed transactions",
		},
		[]string{"program", "status"},
	)

	BlocksCommitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tally_blocks_committed_total",
			Help: "Total number of blocks committed to the application",
		},
	)

	BlockTransactions = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tally_block_transactions",
			Help:    "Number of transactions per committed block",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512
		},
	)

	CommitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tally_commit_duration_seconds",
			Help:    "Duration of block commits in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	LastBlockIndex = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tally_last_block_index",
			Help: "Index of the last block committed to the application",
		},
	)
)

func programLabel(name string) string {
	if name == "" {
		return "none"
	}
	return name
}
