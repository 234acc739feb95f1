// Package metrics exposes Prometheus metrics for the topology viewer:
// frame timing, live scene resources, snapshot sync activity and producer
// health. All metrics live in a private registry so multiple engine
// instances (and tests) do not collide on the global default.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RecordFrame records one engine frame step.
func (r *Registry) RecordFrame(duration time.Duration) {
	r.FramesTotal.Inc()
	r.FrameDuration.Observe(duration.Seconds())
}

// RecordSync records a device snapshot sync and the resulting bundle count.
func (r *Registry) RecordSync(duration time.Duration, liveBundles int) {
	r.SyncsTotal.Inc()
	r.SyncDuration.Observe(duration.Seconds())
	r.LiveBundles.Set(float64(liveBundles))
}

// RecordRebuild records a connection batch rebuild.
func (r *Registry) RecordRebuild(edges, dropped int) {
	r.LinkRebuildsTotal.Inc()
	r.LinkEdges.Set(float64(edges))
	r.DroppedEdgesTotal.Add(float64(dropped))
}

// RecordPick records a successful click pick.
func (r *Registry) RecordPick() {
	r.PicksTotal.Inc()
}

// RecordSelectionChange records an externally applied selection change.
func (r *Registry) RecordSelectionChange() {
	r.SelectionChangesTotal.Inc()
}

// UpdateResources updates the live-resource gauges.
func (r *Registry) UpdateResources(geometries, materials, textures int64) {
	r.TrackedResources.WithLabelValues("geometry").Set(float64(geometries))
	r.TrackedResources.WithLabelValues("material").Set(float64(materials))
	r.TrackedResources.WithLabelValues("texture").Set(float64(textures))
}

// RecordSnapshot records a snapshot received from a producer. status is
// "ok", "invalid" or "decode_error".
func (r *Registry) RecordSnapshot(source, status string, devices int) {
	r.SnapshotsTotal.WithLabelValues(source, status).Inc()
	if status == "ok" {
		r.SnapshotDevices.Set(float64(devices))
	}
}

// Handler returns an http.Handler serving the registry in the Prometheus
// exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
