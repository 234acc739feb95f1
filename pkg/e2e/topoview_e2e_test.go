package e2e

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-topoview/pkg/config"
	"github.com/dd0wney/cluso-topoview/pkg/engine"
	"github.com/dd0wney/cluso-topoview/pkg/metrics"
	"github.com/dd0wney/cluso-topoview/pkg/render"
	"github.com/dd0wney/cluso-topoview/pkg/topology"
	"github.com/dd0wney/cluso-topoview/pkg/topology/source"
)

// TestCompleteViewerWorkflow runs the full pipeline a real session
// exercises: a simulated fleet producing snapshots, validation at the
// boundary, scene reconciliation, a selection round-trip, frame stepping
// and a clean teardown with zero leaked resources.
func TestCompleteViewerWorkflow(t *testing.T) {
	t.Log("=== E2E Test: Complete Viewer Workflow ===")

	// Step 1: Stand up the engine over a recording surface.
	t.Log("Step 1: Creating engine...")
	ctx := render.NewNullContext(800, 600)
	met := metrics.NewRegistry()

	var picked string
	eng, err := engine.New(ctx, config.DefaultEngine(),
		engine.WithMetrics(met),
		engine.WithSelectionCallback(func(id string) { picked = id }),
	)
	require.NoError(t, err)
	t.Log("✓ Engine ready")

	// Step 2: Generate a snapshot from the demo fleet.
	t.Log("Step 2: Generating snapshot...")
	sim := source.NewSimulator(source.SimulatorConfig{Seed: 42})
	snap := sim.Generate()
	require.NoError(t, topology.ValidateSnapshot(&snap))
	require.NotEmpty(t, snap.Devices)
	t.Logf("✓ Snapshot %s: %d devices, %d connections",
		snap.ID, len(snap.Devices), len(snap.Connections))

	// Step 3: Apply it to the scene.
	t.Log("Step 3: Applying snapshot...")
	require.NoError(t, eng.Apply(snap))
	online := 0
	for _, d := range snap.Devices {
		_, ok := eng.Registry().Get(d.ID)
		assert.True(t, ok, "device %s missing from scene", d.ID)
		online++
	}
	t.Logf("✓ %d devices in scene, %d link edges", online, eng.Links().EdgeCount())

	// Step 4: Run a few frames.
	t.Log("Step 4: Stepping frames...")
	now := time.Now()
	for i := 0; i < 10; i++ {
		eng.Step(now.Add(time.Duration(i) * 33 * time.Millisecond))
	}
	assert.Equal(t, 10, ctx.FrameCount, "every step should render")
	assert.Len(t, ctx.LastFrame.Points, online, "one point per device")
	t.Logf("✓ Rendered %d frames", ctx.FrameCount)

	// Step 5: Select a device and verify the highlight lands.
	t.Log("Step 5: Selecting a device...")
	target := snap.Devices[0].ID
	eng.Select(target)
	assert.Equal(t, target, eng.Selected())
	eng.Step(now.Add(time.Second))
	t.Logf("✓ Selected %s", target)

	// Step 6: Apply a later snapshot; the scene reconciles in place.
	t.Log("Step 6: Applying follow-up snapshot...")
	next := sim.Generate()
	next.SelectedID = target
	require.NoError(t, eng.Apply(next))
	t.Logf("✓ Reconciled to %d devices", eng.Registry().Len())

	// Step 7: Tear down and verify nothing leaked.
	t.Log("Step 7: Closing engine...")
	require.NoError(t, eng.Close())
	assert.True(t, ctx.Released(), "render context should be released")
	assert.EqualValues(t, 0, ctx.Tracker().Counts().Total(), "no leaked resources")
	assert.Equal(t, "", picked, "no pick should have fired without clicks")
	t.Log("✓ Clean teardown")
}

// TestSnapshotTransportRoundtrip pushes a snapshot through the wire
// codec the way the pub/sub transport does and confirms the consumer
// sees the producer's exact topology.
func TestSnapshotTransportRoundtrip(t *testing.T) {
	sim := source.NewSimulator(source.SimulatorConfig{Seed: 7})
	snap := sim.Generate()

	payload, err := source.Encode(&snap)
	require.NoError(t, err)

	decoded, err := source.Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, decoded.ID)
	assert.Equal(t, snap.Devices, decoded.Devices)
	assert.Equal(t, snap.Connections, decoded.Connections)
}

// TestMetricsEndToEnd verifies a driven engine is observable over the
// Prometheus exposition endpoint.
func TestMetricsEndToEnd(t *testing.T) {
	ctx := render.NewNullContext(800, 600)
	met := metrics.NewRegistry()
	eng, err := engine.New(ctx, config.DefaultEngine(), engine.WithMetrics(met))
	require.NoError(t, err)
	defer eng.Close()

	sim := source.NewSimulator(source.SimulatorConfig{Seed: 3})
	require.NoError(t, eng.Apply(sim.Generate()))
	eng.Step(time.Now())

	srv := httptest.NewServer(met.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	exposition := string(body)
	for _, name := range []string{
		"topoview_frames_total",
		"topoview_syncs_total",
		"topoview_live_bundles",
		"topoview_link_edges",
	} {
		assert.Contains(t, exposition, name)
	}
}

// TestSimulatedSessionOverChannel drives the engine from a running
// simulator source, the way the terminal host consumes it.
func TestSimulatedSessionOverChannel(t *testing.T) {
	sim := source.NewSimulator(source.SimulatorConfig{
		Interval: 10 * time.Millisecond,
		Seed:     11,
	})

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sim.Run(runCtx) }()

	ctx := render.NewNullContext(800, 600)
	eng, err := engine.New(ctx, config.DefaultEngine())
	require.NoError(t, err)
	defer eng.Close()

	applied := 0
	deadline := time.After(3 * time.Second)
	for applied < 3 {
		select {
		case snap, ok := <-sim.Snapshots():
			require.True(t, ok, "source closed early")
			require.NoError(t, topology.ValidateSnapshot(&snap))
			require.NoError(t, eng.Apply(snap))
			eng.Step(time.Now())
			applied++
		case <-deadline:
			t.Fatal("timed out waiting for snapshots")
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
	assert.GreaterOrEqual(t, eng.Registry().Len(), 1)
}
