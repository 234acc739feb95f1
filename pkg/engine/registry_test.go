package engine

import (
	"testing"

	"github.com/dd0wney/cluso-topoview/pkg/logging"
	"github.com/dd0wney/cluso-topoview/pkg/render"
	"github.com/dd0wney/cluso-topoview/pkg/scene"
	"github.com/dd0wney/cluso-topoview/pkg/topology"
)

func newTestRegistry() (*Registry, *render.NullContext, *scene.Node) {
	ctx := render.NewNullContext(800, 600)
	root := scene.NewGroup()
	pools := NewPools(ctx)
	return NewRegistry(ctx, pools, root, logging.NewNopLogger()), ctx, root
}

func testDevice(id string, status topology.Status) topology.Device {
	return topology.Device{
		ID:       id,
		Name:     id,
		Type:     topology.TypeServer,
		Status:   status,
		Position: &topology.Position{X: 1, Y: 2, Z: 3},
		Metrics:  &topology.Metrics{CPU: 50, Memory: 50, Workload: 80},
	}
}

func TestRegistry_SyncCreates(t *testing.T) {
	r, _, root := newTestRegistry()

	r.Sync([]topology.Device{testDevice("a", topology.StatusHealthy)})

	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
	b, ok := r.Get("a")
	if !ok {
		t.Fatal("bundle missing")
	}
	// Body at the device position, label floating above it.
	if b.Body.Position != (scene.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("body position = %+v", b.Body.Position)
	}
	if b.Label.Position.Y != 2+labelOffset {
		t.Errorf("label y = %v, want %v", b.Label.Position.Y, 2+labelOffset)
	}
	if len(root.Children()) != 2 {
		t.Errorf("root has %d children, want body+label", len(root.Children()))
	}
	if b.HighlightScale() != 1 {
		t.Errorf("initial highlight scale = %v, want 1", b.HighlightScale())
	}
}

// TestRegistry_SyncSharesPoolResources verifies bundles share the pooled
// body geometry and status material while owning their label resources.
func TestRegistry_SyncSharesPoolResources(t *testing.T) {
	r, ctx, _ := newTestRegistry()

	r.Sync([]topology.Device{
		testDevice("a", topology.StatusHealthy),
		testDevice("b", topology.StatusHealthy),
		testDevice("c", topology.StatusWarning),
	})

	counts := ctx.Tracker().Counts()
	if counts.Geometries != 1 {
		t.Errorf("geometries = %d, want 1 shared body", counts.Geometries)
	}
	// Two status materials plus one label material per bundle.
	if counts.Materials != 2+3 {
		t.Errorf("materials = %d, want 5", counts.Materials)
	}
	if counts.Textures != 3 {
		t.Errorf("textures = %d, want one label each", counts.Textures)
	}

	a, _ := r.Get("a")
	b, _ := r.Get("b")
	if a.Body.Geometry != b.Body.Geometry {
		t.Error("bodies should share the pool geometry")
	}
	if a.Body.Material != b.Body.Material {
		t.Error("same-status bodies should share the pool material")
	}
}

func TestRegistry_SyncUpdatesInPlace(t *testing.T) {
	r, _, _ := newTestRegistry()
	r.Sync([]topology.Device{testDevice("a", topology.StatusHealthy)})
	before, _ := r.Get("a")

	moved := testDevice("a", topology.StatusHealthy)
	moved.Position = &topology.Position{X: 9}
	moved.Metrics = &topology.Metrics{Workload: 10}
	r.Sync([]topology.Device{moved})

	after, _ := r.Get("a")
	if after != before {
		t.Error("update should mutate the existing bundle, not recreate it")
	}
	if after.Body.Position.X != 9 {
		t.Errorf("body x = %v, want 9", after.Body.Position.X)
	}
	if after.Workload != 10 {
		t.Errorf("workload = %v, want 10", after.Workload)
	}
}

// TestRegistry_StatusChangeSwapsMaterial verifies a status change swaps
// to the other pool material without disposing either.
func TestRegistry_StatusChangeSwapsMaterial(t *testing.T) {
	r, ctx, _ := newTestRegistry()
	r.Sync([]topology.Device{testDevice("a", topology.StatusHealthy)})
	b, _ := r.Get("a")
	healthyMat := b.Body.Material

	r.Sync([]topology.Device{testDevice("a", topology.StatusCritical)})
	if b.Body.Material == healthyMat {
		t.Error("material should have been swapped")
	}
	if healthyMat.Disposed() || b.Body.Material.Disposed() {
		t.Error("pool materials must never be disposed on a status change")
	}
	if ctx.Tracker().Counts().Materials != 2+1 {
		t.Errorf("materials = %d, want healthy+critical+label", ctx.Tracker().Counts().Materials)
	}
}

// TestRegistry_RenameReplacesLabelTexture verifies only a name change
// re-renders the label, and the old texture is disposed.
func TestRegistry_RenameReplacesLabelTexture(t *testing.T) {
	r, ctx, _ := newTestRegistry()
	r.Sync([]topology.Device{testDevice("a", topology.StatusHealthy)})
	b, _ := r.Get("a")
	oldTex := b.Label.Texture

	// Same name: texture untouched.
	r.Sync([]topology.Device{testDevice("a", topology.StatusHealthy)})
	if b.Label.Texture != oldTex {
		t.Fatal("unchanged name must not re-render the label")
	}

	renamed := testDevice("a", topology.StatusHealthy)
	renamed.Name = "a-renamed"
	r.Sync([]topology.Device{renamed})

	if b.Label.Texture == oldTex {
		t.Fatal("renamed device should get a fresh label texture")
	}
	if !oldTex.Disposed() {
		t.Error("old label texture leaked")
	}
	if b.Label.Texture.Text != "a-renamed" {
		t.Errorf("label text = %q", b.Label.Texture.Text)
	}
	if ctx.Tracker().Counts().Textures != 1 {
		t.Errorf("textures = %d, want 1", ctx.Tracker().Counts().Textures)
	}
}

func TestRegistry_SyncDestroysAbsent(t *testing.T) {
	r, ctx, root := newTestRegistry()
	r.Sync([]topology.Device{
		testDevice("a", topology.StatusHealthy),
		testDevice("b", topology.StatusHealthy),
	})
	b, _ := r.Get("b")
	labelTex, labelMat := b.Label.Texture, b.Label.Material

	r.Sync([]topology.Device{testDevice("a", topology.StatusHealthy)})

	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
	if _, ok := r.Get("b"); ok {
		t.Error("destroyed bundle still resolvable")
	}
	if !labelTex.Disposed() || !labelMat.Disposed() {
		t.Error("label resources must be disposed with their bundle")
	}
	if len(root.Children()) != 2 {
		t.Errorf("root has %d children, want 2", len(root.Children()))
	}
	// Pool resources survive the destroy.
	if ctx.Tracker().Counts().Geometries != 1 {
		t.Error("pool geometry must survive bundle destruction")
	}
}

// TestRegistry_EmptySyncClearsAll pins the edge case: an empty device
// list is a valid snapshot meaning "no devices".
func TestRegistry_EmptySyncClearsAll(t *testing.T) {
	r, _, root := newTestRegistry()
	r.Sync([]topology.Device{
		testDevice("a", topology.StatusHealthy),
		testDevice("b", topology.StatusWarning),
	})

	r.Sync(nil)

	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
	if len(root.Children()) != 0 {
		t.Errorf("root has %d children, want 0", len(root.Children()))
	}
}

// TestRegistry_DuplicateIDsLastWins pins duplicate handling: the last
// occurrence in the list is the one rendered.
func TestRegistry_DuplicateIDsLastWins(t *testing.T) {
	r, _, _ := newTestRegistry()

	first := testDevice("a", topology.StatusHealthy)
	second := testDevice("a", topology.StatusCritical)
	second.Position = &topology.Position{X: 42}
	r.Sync([]topology.Device{first, second})

	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
	b, _ := r.Get("a")
	if b.Status != topology.StatusCritical {
		t.Errorf("status = %s, want the last occurrence's critical", b.Status)
	}
	if b.Body.Position.X != 42 {
		t.Errorf("x = %v, want 42", b.Body.Position.X)
	}
}

// TestRegistry_MissingOptionalFieldsDefault verifies devices without
// position or metrics render at the origin with zero workload.
func TestRegistry_MissingOptionalFieldsDefault(t *testing.T) {
	r, _, _ := newTestRegistry()

	r.Sync([]topology.Device{{ID: "bare", Name: "bare", Type: topology.TypeSensor, Status: topology.StatusHealthy}})

	b, ok := r.Get("bare")
	if !ok {
		t.Fatal("bundle missing")
	}
	if b.Body.Position != (scene.Vec3{}) {
		t.Errorf("body position = %+v, want origin", b.Body.Position)
	}
	if b.Workload != 0 {
		t.Errorf("workload = %v, want 0", b.Workload)
	}
}

func TestRegistry_Clear(t *testing.T) {
	r, ctx, _ := newTestRegistry()
	r.Sync([]topology.Device{
		testDevice("a", topology.StatusHealthy),
		testDevice("b", topology.StatusHealthy),
	})

	r.Clear()
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
	// Only pool resources remain live.
	counts := ctx.Tracker().Counts()
	if counts.Textures != 0 {
		t.Errorf("textures = %d, want 0", counts.Textures)
	}
	if counts.Geometries != 1 || counts.Materials != 1 {
		t.Errorf("pool resources = %+v, want geometry and status material", counts)
	}
}
