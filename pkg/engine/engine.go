// Package engine implements the interactive 3D topology renderer: a
// long-lived scene reconciled against externally produced device
// snapshots, an independent per-frame animation loop, pointer-driven
// orbit/zoom and click picking, and explicit disposal of every render
// resource at teardown.
package engine

import (
	"context"
	"math"
	"time"

	"github.com/dd0wney/cluso-topoview/pkg/config"
	"github.com/dd0wney/cluso-topoview/pkg/logging"
	"github.com/dd0wney/cluso-topoview/pkg/metrics"
	"github.com/dd0wney/cluso-topoview/pkg/render"
	"github.com/dd0wney/cluso-topoview/pkg/scene"
	"github.com/dd0wney/cluso-topoview/pkg/topology"
)

// Engine owns the camera, lighting and render loop for one drawable
// surface, and composes the entity registry, connection batch, input
// controller and selection highlighter.
//
// An Engine is single-goroutine by contract: Step, the input handlers,
// Sync/RebuildLinks/Select and Close must all run on the host's event
// loop. Mutation and read therefore never interleave and no locking is
// needed.
type Engine struct {
	ctx render.Context
	cfg config.Engine
	log logging.Logger
	met *metrics.Registry

	camera    *scene.Camera
	sceneRoot *scene.Node // fixed scene root
	root      *scene.Node // rotating topology group

	pools     *Pools
	registry  *Registry
	links     *LinkBatch
	tweens    *Tweens
	highlight *Highlighter
	input     *Controller

	// ambient and headlight shape the depth-based shading applied when
	// frames are built.
	ambient float64

	aspectScale float64
	onSelect    func(id string)

	start    time.Time
	lastStep time.Time
	closed   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger installs a structured logger. The default discards output.
func WithLogger(log logging.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMetrics installs a metrics registry. The default records nothing.
func WithMetrics(m *metrics.Registry) Option {
	return func(e *Engine) { e.met = m }
}

// WithSelectionCallback installs the callback invoked with a device id
// when a click pick succeeds.
func WithSelectionCallback(fn func(id string)) Option {
	return func(e *Engine) { e.onSelect = fn }
}

// WithAspectScale corrects the camera aspect for non-square pixels:
// terminal hosts pass ~0.5 because cells are about twice as tall as wide.
func WithAspectScale(s float64) Option {
	return func(e *Engine) {
		if s > 0 {
			e.aspectScale = s
		}
	}
}

// New creates an engine over a drawable surface. A nil context is fatal;
// there is no retry.
func New(ctx render.Context, cfg config.Engine, opts ...Option) (*Engine, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	e := &Engine{
		ctx:         ctx,
		cfg:         cfg,
		log:         logging.NewNopLogger(),
		ambient:     0.55,
		aspectScale: 1,
	}
	for _, opt := range opts {
		opt(e)
	}

	w, h := ctx.Size()
	aspect := 1.0
	if w > 0 && h > 0 {
		aspect = float64(w) / float64(h) * e.aspectScale
	}
	e.camera = scene.NewCamera(cfg.FOVDegrees, aspect, 0.1, 200, cfg.Distance)

	e.sceneRoot = scene.NewGroup()
	e.root = scene.NewGroup()
	e.sceneRoot.Add(e.root)

	e.pools = NewPools(ctx)
	e.registry = NewRegistry(ctx, e.pools, e.root, e.log)
	e.links = NewLinkBatch(ctx, e.root, e.log)
	e.tweens = NewTweens()
	e.highlight = NewHighlighter(cfg, e.tweens, e.registry)
	e.input = NewController(cfg, e.root, e.camera)
	e.input.SetPickHandlers(e.pickAt, func(id string) {
		if e.met != nil {
			e.met.RecordPick()
		}
		e.log.Debug("pick", logging.DeviceID(id))
		if e.onSelect != nil {
			e.onSelect(id)
		}
	})

	e.log.Info("engine initialized",
		logging.Component("engine"),
		logging.Int("width", w),
		logging.Int("height", h),
	)
	return e, nil
}

// Camera returns the engine's camera.
func (e *Engine) Camera() *scene.Camera {
	return e.camera
}

// Root returns the rotating topology group.
func (e *Engine) Root() *scene.Node {
	return e.root
}

// Registry returns the entity registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Links returns the connection batch builder.
func (e *Engine) Links() *LinkBatch {
	return e.links
}

// Input returns the interaction controller.
func (e *Engine) Input() *Controller {
	return e.input
}

// Selected returns the currently highlighted device id, or "".
func (e *Engine) Selected() string {
	return e.highlight.Selected()
}

// now returns the engine's frame clock: the last Step time, or the wall
// clock before the first frame.
func (e *Engine) now() time.Time {
	if e.lastStep.IsZero() {
		return time.Now()
	}
	return e.lastStep
}

// Sync reconciles the scene against the complete device list.
func (e *Engine) Sync(devices []topology.Device) {
	if e.closed {
		return
	}
	started := time.Now()
	e.registry.Sync(devices)

	// The selection is externally owned, but a highlight must not
	// linger on (or resurrect with) a removed device.
	if sel := e.highlight.Selected(); sel != "" {
		if _, ok := e.registry.Get(sel); !ok {
			e.highlight.DropSelection(sel)
		}
	}
	e.highlight.Refresh(e.now())

	if e.met != nil {
		e.met.RecordSync(time.Since(started), e.registry.Len())
		c := e.ctx.Tracker().Counts()
		e.met.UpdateResources(c.Geometries, c.Materials, c.Textures)
	}
	e.log.Debug("sync", logging.Count(e.registry.Len()))
}

// RebuildLinks replaces the batched connection representation.
func (e *Engine) RebuildLinks(connections []topology.Connection, devices []topology.Device) {
	if e.closed {
		return
	}
	stats := e.links.Rebuild(connections, devices)
	if e.met != nil {
		e.met.RecordRebuild(stats.Edges, stats.Dropped)
	}
	if stats.Dropped > 0 {
		e.log.Debug("dropped dangling connections", logging.Count(stats.Dropped))
	}
}

// Select applies the externally-owned selection. An empty id clears the
// highlight; an id absent from the current device set is a no-op.
func (e *Engine) Select(id string) {
	if e.closed {
		return
	}
	before := e.highlight.Selected()
	e.highlight.Select(e.now(), id)
	if e.met != nil && e.highlight.Selected() != before {
		e.met.RecordSelectionChange()
	}
}

// Apply is the convenience composition for one complete snapshot.
func (e *Engine) Apply(snap topology.Snapshot) error {
	if e.closed {
		return ErrEngineClosed
	}
	e.Sync(snap.Devices)
	e.RebuildLinks(snap.Connections, snap.Devices)
	e.Select(snap.SelectedID)
	return nil
}

// Resize updates the camera projection and drawable size. A zero-area
// size is not an error; rendering is skipped until a usable size arrives.
func (e *Engine) Resize(width, height int) {
	if e.closed {
		return
	}
	e.ctx.SetSize(width, height)
	if width > 0 && height > 0 {
		e.camera.SetAspect(float64(width) / float64(height) * e.aspectScale)
	}
}

// Input pass-throughs, so hosts talk to one object.

func (e *Engine) PointerDown(x, y float64) {
	if !e.closed {
		e.input.PointerDown(x, y)
	}
}

func (e *Engine) PointerMove(x, y float64) {
	if !e.closed {
		e.input.PointerMove(x, y)
	}
}

func (e *Engine) PointerUp(x, y float64) {
	if !e.closed {
		e.input.PointerUp(x, y)
	}
}

func (e *Engine) Wheel(deltaY float64) {
	if !e.closed {
		e.input.Wheel(deltaY)
	}
}

func (e *Engine) Click(x, y float64) {
	if !e.closed {
		e.input.Click(x, y)
	}
}

// Step advances exactly one frame: idle rotation and inertia decay (while
// not dragging), tween interpolation, per-bundle pulsation, then render.
// Hosts with their own frame callback call Step directly; headless hosts
// use Run.
func (e *Engine) Step(now time.Time) {
	if e.closed {
		return
	}
	started := time.Now()

	if e.start.IsZero() {
		e.start = now
		e.lastStep = now
	}
	dt := now.Sub(e.lastStep).Seconds()
	if dt < 0 {
		dt = 0
	}
	if dt > 0.25 {
		dt = 0.25
	}
	e.lastStep = now

	if !e.input.Dragging() {
		e.input.StepIdle(dt)
	}

	e.tweens.Update(now)

	elapsed := now.Sub(e.start).Seconds()
	e.registry.Each(func(b *Bundle) {
		pulse := 1 + math.Sin(elapsed*2)*0.1*(b.Workload/100)
		b.Body.Scale = pulse * b.highlightScale
	})

	e.renderFrame()

	if e.met != nil {
		e.met.RecordFrame(time.Since(started))
	}
}

// Run drives Step on a ticker at the configured frame rate until ctx is
// cancelled or the engine is closed.
func (e *Engine) Run(ctx context.Context) error {
	if e.closed {
		return ErrEngineClosed
	}
	interval := time.Second / time.Duration(e.cfg.FrameRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if e.closed {
				return ErrEngineClosed
			}
			e.Step(now)
		}
	}
}

// renderFrame projects the scene through the camera and hands the draw
// list to the context. Skipped entirely while the drawable has zero area.
func (e *Engine) renderFrame() {
	w, h := e.ctx.Size()
	if w <= 0 || h <= 0 {
		return
	}

	frame := &render.Frame{}

	if batch := e.links.Node(); batch != nil && batch.WorldVisible() {
		e.appendLines(frame, batch, w, h)
	}

	e.registry.Each(func(b *Bundle) {
		e.appendBundle(frame, b, w, h)
	})

	e.ctx.Render(frame)
}

func (e *Engine) appendLines(frame *render.Frame, batch *scene.Node, w, h int) {
	geom := batch.Geometry
	for i := 0; i+5 < len(geom.Positions); i += 6 {
		a := batch.TransformPoint(scene.Vec3{
			X: float64(geom.Positions[i]),
			Y: float64(geom.Positions[i+1]),
			Z: float64(geom.Positions[i+2]),
		})
		bpt := batch.TransformPoint(scene.Vec3{
			X: float64(geom.Positions[i+3]),
			Y: float64(geom.Positions[i+4]),
			Z: float64(geom.Positions[i+5]),
		})
		x1, y1, d1, ok1 := e.camera.Project(a, w, h)
		x2, y2, d2, ok2 := e.camera.Project(bpt, w, h)
		if !ok1 || !ok2 {
			continue
		}
		c1 := render.Color{
			R: float64(geom.Colors[i]),
			G: float64(geom.Colors[i+1]),
			B: float64(geom.Colors[i+2]),
		}
		c2 := render.Color{
			R: float64(geom.Colors[i+3]),
			G: float64(geom.Colors[i+4]),
			B: float64(geom.Colors[i+5]),
		}
		frame.Lines = append(frame.Lines, render.Line{
			X1: x1, Y1: y1, X2: x2, Y2: y2,
			Depth: (d1 + d2) / 2,
			C1:    c1, C2: c2,
		})
	}
}

func (e *Engine) appendBundle(frame *render.Frame, b *Bundle, w, h int) {
	if !b.Body.WorldVisible() {
		return
	}
	pos := b.Body.WorldPosition()
	x, y, depth, ok := e.camera.Project(pos, w, h)
	if !ok {
		return
	}
	shade := e.shade(depth)
	mat := b.Body.Material
	frame.Points = append(frame.Points, render.Point{
		X: x, Y: y,
		Depth:   depth,
		Radius:  e.camera.ProjectRadius(b.Body.Radius*b.Body.WorldScale(), depth, h),
		Color:   render.Color{R: mat.Color.R * shade, G: mat.Color.G * shade, B: mat.Color.B * shade},
		Opacity: mat.Opacity * b.Body.Opacity,
	})

	lp := b.Label.WorldPosition()
	lx, ly, ldepth, lok := e.camera.Project(lp, w, h)
	if !lok {
		return
	}
	frame.Labels = append(frame.Labels, render.Label{
		X: lx, Y: ly,
		Depth:   ldepth,
		Texture: b.Label.Texture,
		Color:   b.Label.Material.Color,
		Opacity: b.Label.Material.Opacity * b.Body.Opacity,
	})
}

// shade is the fixed lighting model: an ambient floor plus a headlight
// term that falls off with camera distance.
func (e *Engine) shade(depth float64) float64 {
	if depth <= 0 {
		return e.ambient
	}
	falloff := 1 - (depth-e.camera.Near)/(e.camera.Far-e.camera.Near)
	return scene.Clamp(e.ambient+(1-e.ambient)*falloff, 0, 1)
}

// pickAt casts a ray through surface coordinates against every bundle
// body; the nearest hit wins.
func (e *Engine) pickAt(x, y float64) (string, bool) {
	w, h := e.ctx.Size()
	if w <= 0 || h <= 0 {
		return "", false
	}
	nx := (x/float64(w))*2 - 1
	ny := 1 - (y/float64(h))*2
	ray := e.camera.Ray(nx, ny)

	bestID := ""
	bestT := math.Inf(1)
	e.registry.Each(func(b *Bundle) {
		if !b.Body.WorldVisible() {
			return
		}
		center := b.Body.WorldPosition()
		radius := b.Body.Radius * b.Body.WorldScale()
		if t, ok := ray.IntersectSphere(center, radius); ok && t < bestT {
			bestT = t
			bestID = b.ID
		}
	})
	return bestID, bestID != ""
}

// Close tears the engine down: the frame loop stops, input handlers are
// detached, every geometry, material and texture in the scene is disposed
// exactly once, pool entries included, and the render context is
// released. Idempotent.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	e.input.Detach()
	e.tweens.CancelAll()

	e.sceneRoot.Traverse(func(n *scene.Node) {
		n.Geometry.Dispose()
		n.Material.Dispose()
		n.Texture.Dispose()
	})
	e.pools.Dispose()
	e.registry.Clear()
	e.links.Clear()

	err := e.ctx.Release()

	counts := e.ctx.Tracker().Counts()
	if e.met != nil {
		e.met.UpdateResources(counts.Geometries, counts.Materials, counts.Textures)
	}
	if counts.Total() != 0 {
		e.log.Warn("resources leaked at teardown",
			logging.Int64("geometries", counts.Geometries),
			logging.Int64("materials", counts.Materials),
			logging.Int64("textures", counts.Textures),
		)
	} else {
		e.log.Info("engine closed", logging.Component("engine"))
	}
	return err
}
