package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSourceMetrics() {
	r.SnapshotsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "topoview_snapshots_total",
			Help: "Snapshots received from the producer, by source and outcome",
		},
		[]string{"source", "status"},
	)

	r.SnapshotDevices = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "topoview_snapshot_devices",
			Help: "Device count of the most recently delivered snapshot",
		},
	)

	r.PollRetriesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "topoview_poll_retries_total",
			Help: "HTTP poll attempts that failed and were retried",
		},
	)
}
