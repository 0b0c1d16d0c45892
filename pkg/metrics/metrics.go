// Package metrics exposes the node's Prometheus instrumentation,
// registered against the default registry and served at GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MempoolSize tracks the current number of queued transactions.
	MempoolSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dytallix",
		Name:      "mempool_size",
		Help:      "Number of transactions currently queued in the mempool.",
	})

	// ChainHeight tracks the most recently committed block height.
	ChainHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dytallix",
		Name:      "chain_height",
		Help:      "Height of the most recently committed block.",
	})

	// TransactionsTotal counts admitted transactions by terminal outcome.
	TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dytallix",
		Name:      "transactions_total",
		Help:      "Total transactions included in a block, by receipt status.",
	}, []string{"status"})

	// BlocksProducedTotal counts committed blocks.
	BlocksProducedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dytallix",
		Name:      "blocks_produced_total",
		Help:      "Total blocks committed by this node.",
	})

	// EventBusLagTotal counts subscriber backpressure drops.
	EventBusLagTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dytallix",
		Name:      "eventbus_lag_total",
		Help:      "Total events dropped across all subscribers due to a full buffer.",
	})

	// BridgeIngestTotal counts bridge ingest attempts by outcome.
	BridgeIngestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dytallix",
		Name:      "bridge_ingest_total",
		Help:      "Total bridge ingest requests, by outcome.",
	}, []string{"outcome"})
)
