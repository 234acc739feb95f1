package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the topology viewer.
type Registry struct {
	// Engine Metrics
	FramesTotal      prometheus.Counter
	FrameDuration    prometheus.Histogram
	LiveBundles      prometheus.Gauge
	TrackedResources *prometheus.GaugeVec

	// Sync / Link Batch Metrics
	SyncsTotal        prometheus.Counter
	SyncDuration      prometheus.Histogram
	LinkRebuildsTotal prometheus.Counter
	LinkEdges         prometheus.Gauge
	DroppedEdgesTotal prometheus.Counter

	// Interaction Metrics
	PicksTotal            prometheus.Counter
	SelectionChangesTotal prometheus.Counter

	// Source Metrics
	SnapshotsTotal   *prometheus.CounterVec
	SnapshotDevices  prometheus.Gauge
	PollRetriesTotal prometheus.Counter

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initEngineMetrics()
	r.initSourceMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
