// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchTotal counts reference-data reads by entity and the tier that served them.
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linetrack_fetch_total",
			Help: "Reference data reads by entity and source (fresh, cached, default)",
		},
		[]string{"entity", "source"},
	)

	// EntriesQueued counts hourly entries stored offline.
	EntriesQueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linetrack_offline_entries_queued_total",
			Help: "Hourly entries stored offline after a failed submission",
		},
	)

	// EntriesReplayed counts offline entries accepted by the backend during a drain.
	EntriesReplayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linetrack_offline_entries_replayed_total",
			Help: "Offline entries accepted by the backend on replay",
		},
	)

	// EntriesDiscarded counts offline entries dropped after failing replay in a clear-all drain.
	EntriesDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linetrack_offline_entries_discarded_total",
			Help: "Offline entries removed by a drain without being accepted",
		},
	)

	// QueueDepth is the number of entries waiting in the offline queue.
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linetrack_offline_queue_depth",
			Help: "Hourly entries waiting for replay",
		},
	)

	// SyncRuns counts sync attempts by result.
	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linetrack_sync_runs_total",
			Help: "Sync attempts by result (synced, empty, busy, offline, failed)",
		},
		[]string{"result"},
	)
)
