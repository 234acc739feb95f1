package engine

import (
	"math"
	"testing"

	"github.com/dd0wney/cluso-topoview/pkg/config"
	"github.com/dd0wney/cluso-topoview/pkg/scene"
)

func newTestController() (*Controller, *scene.Node, *scene.Camera) {
	cfg := config.DefaultEngine()
	root := scene.NewGroup()
	cam := scene.NewCamera(cfg.FOVDegrees, 1, 0.1, 200, cfg.Distance)
	return NewController(cfg, root, cam), root, cam
}

func TestController_DragRotates(t *testing.T) {
	c, root, _ := newTestController()
	cfg := config.DefaultEngine()

	c.PointerDown(100, 100)
	if !c.Dragging() {
		t.Fatal("not dragging after pointer down")
	}
	c.PointerMove(150, 120)
	c.PointerUp(150, 120)

	wantYaw := 50 * cfg.DragSensitivity
	wantPitch := 20 * cfg.DragSensitivity
	if math.Abs(root.Rotation.Y-wantYaw) > 1e-9 {
		t.Errorf("yaw = %v, want %v", root.Rotation.Y, wantYaw)
	}
	if math.Abs(root.Rotation.X-wantPitch) > 1e-9 {
		t.Errorf("pitch = %v, want %v", root.Rotation.X, wantPitch)
	}
	if c.Dragging() {
		t.Error("still dragging after pointer up")
	}
}

// TestController_PitchClamped verifies the scene can never flip upside
// down no matter how far the pointer travels.
func TestController_PitchClamped(t *testing.T) {
	c, root, _ := newTestController()

	c.PointerDown(0, 0)
	for i := 0; i < 100; i++ {
		c.PointerMove(0, float64((i+1)*500))
	}
	if root.Rotation.X > math.Pi/2+1e-9 {
		t.Errorf("pitch = %v exceeds +pi/2", root.Rotation.X)
	}

	for i := 0; i < 200; i++ {
		c.PointerMove(0, -float64(i*500))
	}
	if root.Rotation.X < -math.Pi/2-1e-9 {
		t.Errorf("pitch = %v below -pi/2", root.Rotation.X)
	}
}

func TestController_MoveWhileIdleIgnored(t *testing.T) {
	c, root, _ := newTestController()

	c.PointerMove(500, 500)
	if root.Rotation.Y != 0 || root.Rotation.X != 0 {
		t.Error("pointer move without a drag must not rotate")
	}
}

// TestController_ClickAfterDragSwallowed pins click/drag discrimination:
// a click whose preceding pointer travel exceeds the threshold is not a
// pick.
func TestController_ClickAfterDragSwallowed(t *testing.T) {
	c, _, _ := newTestController()

	picked := ""
	c.SetPickHandlers(
		func(x, y float64) (string, bool) { return "device-1", true },
		func(id string) { picked = id },
	)

	c.PointerDown(100, 100)
	c.PointerMove(160, 100) // 60px, above the 5px threshold
	c.PointerUp(160, 100)
	c.Click(160, 100)

	if picked != "" {
		t.Errorf("drag-tail click picked %q", picked)
	}

	// A stationary click right after must pick again: the swallow resets
	// the accumulated distance.
	c.PointerDown(160, 100)
	c.PointerUp(160, 100)
	c.Click(160, 100)
	if picked != "device-1" {
		t.Errorf("stationary click picked %q, want device-1", picked)
	}
}

func TestController_ClickWithinThresholdPicks(t *testing.T) {
	c, _, _ := newTestController()

	picked := ""
	c.SetPickHandlers(
		func(x, y float64) (string, bool) { return "device-2", true },
		func(id string) { picked = id },
	)

	c.PointerDown(100, 100)
	c.PointerMove(102, 101) // tiny wobble under the threshold
	c.PointerUp(102, 101)
	c.Click(102, 101)

	if picked != "device-2" {
		t.Errorf("picked %q, want device-2", picked)
	}
}

func TestController_ClickMissNoCallback(t *testing.T) {
	c, _, _ := newTestController()

	called := false
	c.SetPickHandlers(
		func(x, y float64) (string, bool) { return "", false },
		func(id string) { called = true },
	)

	c.PointerDown(10, 10)
	c.PointerUp(10, 10)
	c.Click(10, 10)
	if called {
		t.Error("missed pick must not invoke the callback")
	}
}

// TestController_WheelZoomClamped verifies zoom is multiplicative and
// converges to the distance bounds instead of passing them.
func TestController_WheelZoomClamped(t *testing.T) {
	c, _, cam := newTestController()
	cfg := config.DefaultEngine()

	start := cam.Distance
	c.Wheel(1)
	if math.Abs(cam.Distance-start*cfg.ZoomStep) > 1e-9 {
		t.Errorf("distance after zoom out = %v, want %v", cam.Distance, start*cfg.ZoomStep)
	}

	for i := 0; i < 100; i++ {
		c.Wheel(1)
	}
	if cam.Distance != cfg.MaxDistance {
		t.Errorf("distance = %v, want clamped to max %v", cam.Distance, cfg.MaxDistance)
	}

	for i := 0; i < 200; i++ {
		c.Wheel(-1)
	}
	if cam.Distance != cfg.MinDistance {
		t.Errorf("distance = %v, want clamped to min %v", cam.Distance, cfg.MinDistance)
	}

	c.Wheel(0)
	if cam.Distance != cfg.MinDistance {
		t.Error("zero delta must not zoom")
	}
}

// TestController_InertiaDecays verifies residual spin continues after
// release and damps to exactly zero.
func TestController_InertiaDecays(t *testing.T) {
	c, root, _ := newTestController()

	c.PointerDown(0, 0)
	c.PointerMove(80, 0)
	c.PointerUp(80, 0)

	yawAfterDrag := root.Rotation.Y
	c.StepIdle(0)
	if root.Rotation.Y <= yawAfterDrag {
		t.Error("inertia should keep rotating after release")
	}

	for i := 0; i < 1000; i++ {
		c.StepIdle(0)
	}
	if c.velYaw != 0 || c.velPitch != 0 {
		t.Errorf("velocity = (%v, %v), want damped to exactly zero", c.velYaw, c.velPitch)
	}
}

// TestController_IdleRotation verifies the slow automatic yaw advances
// with dt while idle.
func TestController_IdleRotation(t *testing.T) {
	c, root, _ := newTestController()
	cfg := config.DefaultEngine()

	c.StepIdle(0.5)
	want := cfg.IdleRotation * 0.5
	if math.Abs(root.Rotation.Y-want) > 1e-9 {
		t.Errorf("idle yaw = %v, want %v", root.Rotation.Y, want)
	}
}

func TestController_Detach(t *testing.T) {
	c, _, _ := newTestController()

	picked := false
	c.SetPickHandlers(
		func(x, y float64) (string, bool) { return "x", true },
		func(id string) { picked = true },
	)
	c.Detach()

	c.PointerDown(1, 1)
	c.PointerUp(1, 1)
	c.Click(1, 1)
	if picked {
		t.Error("detached controller must not pick")
	}
	if c.Dragging() {
		t.Error("detach should clear the drag state")
	}
}
