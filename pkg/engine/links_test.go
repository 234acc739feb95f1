package engine

import (
	"testing"

	"github.com/dd0wney/cluso-topoview/pkg/logging"
	"github.com/dd0wney/cluso-topoview/pkg/render"
	"github.com/dd0wney/cluso-topoview/pkg/scene"
	"github.com/dd0wney/cluso-topoview/pkg/topology"
)

func newTestLinkBatch() (*LinkBatch, *render.NullContext, *scene.Node) {
	ctx := render.NewNullContext(800, 600)
	root := scene.NewGroup()
	return NewLinkBatch(ctx, root, logging.NewNopLogger()), ctx, root
}

func linkTestDevices() []topology.Device {
	return []topology.Device{
		{ID: "a", Position: &topology.Position{X: -1}},
		{ID: "b", Position: &topology.Position{X: 1}},
		{ID: "c", Position: &topology.Position{Y: 2}},
	}
}

func TestLinkBatch_RebuildBuffers(t *testing.T) {
	l, _, root := newTestLinkBatch()

	stats := l.Rebuild([]topology.Connection{
		{From: "a", To: "b", Strength: 0.9},
		{From: "b", To: "c", Strength: 0.2},
	}, linkTestDevices())

	if stats.Edges != 2 || stats.Dropped != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if l.EdgeCount() != 2 {
		t.Errorf("EdgeCount = %d, want 2", l.EdgeCount())
	}

	node := l.Node()
	if node == nil {
		t.Fatal("no batch installed")
	}
	if !node.Lines {
		t.Error("batch node must be marked as a line list")
	}
	// Two vertices per edge, three floats per vertex.
	if len(node.Geometry.Positions) != 2*2*3 {
		t.Errorf("positions = %d floats, want 12", len(node.Geometry.Positions))
	}
	if len(node.Geometry.Colors) != len(node.Geometry.Positions) {
		t.Error("colors buffer must parallel positions")
	}
	if len(root.Children()) != 1 {
		t.Errorf("root has %d children, want 1", len(root.Children()))
	}

	// First edge runs from a to b.
	if node.Geometry.Positions[0] != -1 || node.Geometry.Positions[3] != 1 {
		t.Errorf("first edge endpoints = %v", node.Geometry.Positions[:6])
	}
}

// TestLinkBatch_DropsDanglingEdges pins the contract for connections
// whose endpoints are missing from the device set.
func TestLinkBatch_DropsDanglingEdges(t *testing.T) {
	l, _, _ := newTestLinkBatch()

	stats := l.Rebuild([]topology.Connection{
		{From: "a", To: "b", Strength: 0.5},
		{From: "a", To: "ghost", Strength: 0.5},
		{From: "ghost", To: "b", Strength: 0.5},
	}, linkTestDevices())

	if stats.Edges != 1 {
		t.Errorf("Edges = %d, want 1", stats.Edges)
	}
	if stats.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", stats.Dropped)
	}
	if l.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", l.EdgeCount())
	}
}

// TestLinkBatch_EmptyInstallsNothing pins the zero-connection edge case:
// no geometry, no material, no node.
func TestLinkBatch_EmptyInstallsNothing(t *testing.T) {
	l, ctx, root := newTestLinkBatch()

	stats := l.Rebuild(nil, linkTestDevices())
	if stats.Edges != 0 {
		t.Errorf("Edges = %d", stats.Edges)
	}
	if l.Node() != nil {
		t.Error("empty rebuild should not install a node")
	}
	if ctx.Tracker().Counts().Total() != 0 {
		t.Error("empty rebuild should allocate nothing")
	}
	if len(root.Children()) != 0 {
		t.Error("root should stay empty")
	}
}

// TestLinkBatch_RebuildDisposesPrevious verifies wholesale replacement:
// the old geometry and material are disposed before the new batch lands.
func TestLinkBatch_RebuildDisposesPrevious(t *testing.T) {
	l, ctx, root := newTestLinkBatch()
	devices := linkTestDevices()

	l.Rebuild([]topology.Connection{{From: "a", To: "b", Strength: 0.5}}, devices)
	oldNode := l.Node()

	l.Rebuild([]topology.Connection{
		{From: "a", To: "c", Strength: 0.5},
		{From: "b", To: "c", Strength: 0.5},
	}, devices)

	if !oldNode.Geometry.Disposed() || !oldNode.Material.Disposed() {
		t.Error("previous batch resources leaked")
	}
	counts := ctx.Tracker().Counts()
	if counts.Geometries != 1 || counts.Materials != 1 {
		t.Errorf("live resources = %+v, want exactly the new batch", counts)
	}
	if len(root.Children()) != 1 {
		t.Errorf("root has %d children, want 1", len(root.Children()))
	}
	if l.EdgeCount() != 2 {
		t.Errorf("EdgeCount = %d, want 2", l.EdgeCount())
	}
}

// TestLinkBatch_RebuildToEmptyUninstalls verifies a topology that loses
// all its connections removes the previous batch entirely.
func TestLinkBatch_RebuildToEmptyUninstalls(t *testing.T) {
	l, ctx, _ := newTestLinkBatch()
	devices := linkTestDevices()

	l.Rebuild([]topology.Connection{{From: "a", To: "b", Strength: 0.5}}, devices)
	l.Rebuild(nil, devices)

	if l.Node() != nil {
		t.Error("batch should be uninstalled")
	}
	if ctx.Tracker().Counts().Total() != 0 {
		t.Error("previous batch resources leaked")
	}
}

// TestLinkColor_StrengthBrightness verifies stronger connections are
// lighter, and out-of-range strengths clamp to the endpoints.
func TestLinkColor_StrengthBrightness(t *testing.T) {
	lum := func(c render.Color) float64 { return c.R + c.G + c.B }

	weak := linkColor(0)
	strong := linkColor(1)
	if lum(weak) >= lum(strong) {
		t.Errorf("weak %v should be darker than strong %v", weak, strong)
	}

	l, _, _ := newTestLinkBatch()
	devices := linkTestDevices()
	l.Rebuild([]topology.Connection{{From: "a", To: "b", Strength: 7.5}}, devices)
	node := l.Node()
	over := render.Color{
		R: float64(node.Geometry.Colors[0]),
		G: float64(node.Geometry.Colors[1]),
		B: float64(node.Geometry.Colors[2]),
	}
	want := linkColor(1)
	const tol = 1e-6
	if diff := (over.R - want.R) + (over.G - want.G) + (over.B - want.B); diff > tol || diff < -tol {
		t.Errorf("strength above 1 should clamp to the bright endpoint: got %v, want %v", over, want)
	}
}

func TestHSLToRGB(t *testing.T) {
	tests := []struct {
		name    string
		h, s, l float64
		want    render.Color
	}{
		{"black", 0, 0, 0, render.Color{}},
		{"white", 0, 0, 1, render.Color{R: 1, G: 1, B: 1}},
		{"red", 0, 1, 0.5, render.Color{R: 1}},
		{"green", 1.0 / 3.0, 1, 0.5, render.Color{G: 1}},
		{"blue", 2.0 / 3.0, 1, 0.5, render.Color{B: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hslToRGB(tt.h, tt.s, tt.l)
			const tol = 1e-9
			if d := got.R - tt.want.R; d > tol || d < -tol {
				t.Errorf("R = %v, want %v", got.R, tt.want.R)
			}
			if d := got.G - tt.want.G; d > tol || d < -tol {
				t.Errorf("G = %v, want %v", got.G, tt.want.G)
			}
			if d := got.B - tt.want.B; d > tol || d < -tol {
				t.Errorf("B = %v, want %v", got.B, tt.want.B)
			}
		})
	}
}

func TestLinkBatch_Clear(t *testing.T) {
	l, ctx, _ := newTestLinkBatch()
	l.Rebuild([]topology.Connection{{From: "a", To: "b", Strength: 0.5}}, linkTestDevices())

	l.Clear()
	if l.Node() != nil {
		t.Error("Clear should uninstall the batch")
	}
	if ctx.Tracker().Counts().Total() != 0 {
		t.Error("Clear should dispose batch resources")
	}
	// Idempotent.
	l.Clear()
}
