// Package source produces topology snapshots for the engine: a synthetic
// fleet simulator, a nanomsg subscriber for pushed snapshots and an HTTP
// poller. Sources run their own goroutines and deliver complete snapshot
// replacements over a channel; the host applies them on the engine's
// event loop. Every snapshot is validated at this boundary so the engine
// never sees a malformed producer.
package source

import (
	"context"

	"github.com/dd0wney/cluso-topoview/pkg/topology"
)

// Source is a snapshot producer.
type Source interface {
	// Snapshots returns the delivery channel. The channel is closed when
	// Run returns.
	Snapshots() <-chan topology.Snapshot

	// Run produces snapshots until ctx is cancelled. It returns the
	// cancellation cause or the first fatal producer error.
	Run(ctx context.Context) error

	// Close releases any transport resources. Idempotent.
	Close() error
}

// deliver sends snap without blocking forever: if the host is not
// draining, the oldest pending snapshot is replaced, matching the
// full-replacement semantics of the data model.
func deliver(ctx context.Context, ch chan topology.Snapshot, snap topology.Snapshot) {
	select {
	case ch <- snap:
		return
	case <-ctx.Done():
		return
	default:
	}
	// Channel full: drop the stale snapshot and retry once.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	case <-ctx.Done():
	default:
	}
}
