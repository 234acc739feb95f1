package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initEngineMetrics() {
	r.FramesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "topoview_frames_total",
			Help: "Total number of rendered frames",
		},
	)

	r.FrameDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "topoview_frame_duration_seconds",
			Help:    "Frame step duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.016, 0.033, 0.1},
		},
	)

	r.LiveBundles = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "topoview_live_bundles",
			Help: "Number of device bundles currently in the scene",
		},
	)

	r.TrackedResources = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "topoview_tracked_resources",
			Help: "Live render resources by kind",
		},
		[]string{"kind"},
	)

	r.SyncsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "topoview_syncs_total",
			Help: "Total number of device snapshot syncs",
		},
	)

	r.SyncDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "topoview_sync_duration_seconds",
			Help:    "Snapshot sync duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	r.LinkRebuildsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "topoview_link_rebuilds_total",
			Help: "Total number of connection batch rebuilds",
		},
	)

	r.LinkEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "topoview_link_edges",
			Help: "Edges in the currently installed connection batch",
		},
	)

	r.DroppedEdgesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "topoview_dropped_edges_total",
			Help: "Connections dropped for referencing unknown device ids",
		},
	)

	r.PicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "topoview_picks_total",
			Help: "Successful click picks resolved to a device",
		},
	)

	r.SelectionChangesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "topoview_selection_changes_total",
			Help: "Externally applied selection changes",
		},
	)
}
