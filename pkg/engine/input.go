package engine

import (
	"math"

	"github.com/dd0wney/cluso-topoview/pkg/config"
	"github.com/dd0wney/cluso-topoview/pkg/scene"
)

// negligibleVelocity is the residual inertia magnitude below which the
// velocity is zeroed instead of decayed forever.
const negligibleVelocity = 1e-5

// Controller interprets pointer and wheel input as camera orbit, zoom and
// object picking. It is a two-state machine (idle or dragging) and
// distinguishes an intentional click from the click event fired at the
// end of a drag by the distance the pointer traveled since pointerdown.
type Controller struct {
	cfg    config.Engine
	root   *scene.Node
	camera *scene.Camera

	dragging     bool
	lastX, lastY float64
	dragDistance float64

	// velYaw/velPitch carry post-release inertia, in radians per frame.
	velYaw, velPitch float64

	// pick resolves surface coordinates to a device id. Installed by the
	// engine; nil disables picking.
	pick func(x, y float64) (string, bool)
	// onPick receives the picked device id.
	onPick func(id string)
}

// NewController creates a controller mutating root rotation and camera
// distance.
func NewController(cfg config.Engine, root *scene.Node, camera *scene.Camera) *Controller {
	return &Controller{cfg: cfg, root: root, camera: camera}
}

// SetPickHandlers installs the pick resolver and the selection callback.
func (c *Controller) SetPickHandlers(pick func(x, y float64) (string, bool), onPick func(id string)) {
	c.pick = pick
	c.onPick = onPick
}

// Detach removes the pick handlers so no callback fires after teardown.
func (c *Controller) Detach() {
	c.pick = nil
	c.onPick = nil
	c.dragging = false
	c.velYaw, c.velPitch = 0, 0
}

// Dragging reports whether a pointer drag is in progress.
func (c *Controller) Dragging() bool {
	return c.dragging
}

// DragDistance returns the accumulated pointer travel since the last
// pointerdown, in pixels.
func (c *Controller) DragDistance() float64 {
	return c.dragDistance
}

// PointerDown begins a drag.
func (c *Controller) PointerDown(x, y float64) {
	c.dragging = true
	c.lastX, c.lastY = x, y
	c.dragDistance = 0
}

// PointerMove rotates the root group while dragging and accumulates the
// inertia velocity and drag distance. Moves while idle are ignored.
func (c *Controller) PointerMove(x, y float64) {
	if !c.dragging {
		return
	}
	dx := x - c.lastX
	dy := y - c.lastY
	c.lastX, c.lastY = x, y

	yawDelta := dx * c.cfg.DragSensitivity
	pitchDelta := dy * c.cfg.DragSensitivity

	c.root.Rotation.Y += yawDelta
	c.root.Rotation.X = scene.Clamp(c.root.Rotation.X+pitchDelta, -math.Pi/2, math.Pi/2)

	// Blend rather than overwrite so a jittery final sample does not
	// erase the gesture's momentum.
	c.velYaw = c.velYaw*0.6 + yawDelta*0.4
	c.velPitch = c.velPitch*0.6 + pitchDelta*0.4

	c.dragDistance += math.Hypot(dx, dy)
}

// PointerUp ends the drag; inertia keeps applying in the idle frame step
// until it decays to nothing.
func (c *Controller) PointerUp(x, y float64) {
	c.dragging = false
}

// Wheel zooms the camera multiplicatively by the delta sign, clamped to
// the configured distance range.
func (c *Controller) Wheel(deltaY float64) {
	if deltaY == 0 {
		return
	}
	d := c.camera.Distance
	if deltaY > 0 {
		d *= c.cfg.ZoomStep
	} else {
		d /= c.cfg.ZoomStep
	}
	c.camera.Distance = scene.Clamp(d, c.cfg.MinDistance, c.cfg.MaxDistance)
}

// Click resolves a click to a pick unless the pointer traveled farther
// than the click threshold since pointerdown, in which case the click is
// the tail of a drag and is swallowed.
func (c *Controller) Click(x, y float64) {
	if c.dragDistance > c.cfg.ClickThreshold {
		c.dragDistance = 0
		return
	}
	if c.pick == nil || c.onPick == nil {
		return
	}
	if id, ok := c.pick(x, y); ok {
		c.onPick(id)
	}
}

// StepIdle applies the per-frame idle behavior: slow automatic yaw plus
// damped residual drag inertia. The engine calls this only while no drag
// is in progress.
func (c *Controller) StepIdle(dt float64) {
	c.root.Rotation.Y += c.cfg.IdleRotation*dt + c.velYaw
	c.root.Rotation.X = scene.Clamp(c.root.Rotation.X+c.velPitch, -math.Pi/2, math.Pi/2)

	c.velYaw *= c.cfg.InertiaDamping
	c.velPitch *= c.cfg.InertiaDamping
	if math.Abs(c.velYaw) < negligibleVelocity {
		c.velYaw = 0
	}
	if math.Abs(c.velPitch) < negligibleVelocity {
		c.velPitch = 0
	}
}
