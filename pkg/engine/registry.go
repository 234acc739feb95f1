package engine

import (
	"github.com/dd0wney/cluso-topoview/pkg/logging"
	"github.com/dd0wney/cluso-topoview/pkg/render"
	"github.com/dd0wney/cluso-topoview/pkg/scene"
	"github.com/dd0wney/cluso-topoview/pkg/topology"
)

// labelOffset is how far above the body center a device label floats, in
// world units.
const labelOffset = 1.8

// Bundle is the renderable pair representing one device: a body mesh
// referencing pooled resources and a uniquely owned label sprite. The
// label's texture and material are disposed when the bundle is destroyed;
// the body's geometry and material belong to the pools and are not.
type Bundle struct {
	ID   string
	Name string

	Body  *scene.Node
	Label *scene.Node

	// Status selects the pooled body material.
	Status topology.Status
	// Workload is the cached percentage that drives pulsation.
	Workload float64

	// highlightScale is animated by the selection highlighter and
	// multiplied into the body scale on top of pulsation.
	highlightScale float64
}

// HighlightScale returns the current selection enlargement factor.
func (b *Bundle) HighlightScale() float64 {
	return b.highlightScale
}

// Registry owns one bundle per device id and reconciles them against each
// new device snapshot.
type Registry struct {
	ctx   render.Context
	pools *Pools
	root  *scene.Node
	log   logging.Logger

	bundles map[string]*Bundle
}

// NewRegistry creates an empty registry attaching bundles under root.
func NewRegistry(ctx render.Context, pools *Pools, root *scene.Node, log logging.Logger) *Registry {
	return &Registry{
		ctx:     ctx,
		pools:   pools,
		root:    root,
		log:     log,
		bundles: make(map[string]*Bundle),
	}
}

// Sync reconciles the bundle set against the complete device list.
// Duplicate ids collapse to the last occurrence. An empty list clears
// every bundle. Devices with missing metrics or position default to zero
// values rather than failing.
func (r *Registry) Sync(devices []topology.Device) {
	desired := topology.DeviceIndex(devices)

	// Destroy pass: ids no longer present.
	for id, b := range r.bundles {
		if _, ok := desired[id]; !ok {
			r.destroy(b)
			delete(r.bundles, id)
		}
	}

	// Create/update pass.
	for id, dev := range desired {
		if b, ok := r.bundles[id]; ok {
			r.update(b, dev)
		} else {
			r.bundles[id] = r.create(dev)
		}
	}
}

func (r *Registry) create(dev topology.Device) *Bundle {
	pos := dev.Pos()

	body := scene.NewMesh(r.pools.BodyGeometry(), r.pools.StatusMaterial(dev.Status), bodyRadius)
	body.Position = scene.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z}

	labelMat := r.ctx.CreateMaterial(render.Color{R: 0.9, G: 0.92, B: 0.95}, 1)
	label := scene.NewSprite(r.ctx.CreateTexture(dev.Name), labelMat)
	label.Position = scene.Vec3{X: pos.X, Y: pos.Y + labelOffset, Z: pos.Z}

	r.root.Add(body)
	r.root.Add(label)

	r.log.Debug("bundle created", logging.DeviceID(dev.ID))
	return &Bundle{
		ID:             dev.ID,
		Name:           dev.Name,
		Body:           body,
		Label:          label,
		Status:         dev.Status,
		Workload:       dev.Load().Workload,
		highlightScale: 1,
	}
}

func (r *Registry) update(b *Bundle, dev topology.Device) {
	pos := dev.Pos()
	b.Body.Position = scene.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z}
	b.Label.Position = scene.Vec3{X: pos.X, Y: pos.Y + labelOffset, Z: pos.Z}
	b.Workload = dev.Load().Workload

	if dev.Status != b.Status {
		// Material swap only; pool entries are shared and never disposed here.
		b.Body.Material = r.pools.StatusMaterial(dev.Status)
		b.Status = dev.Status
	}

	if dev.Name != b.Name {
		b.Label.Texture.Dispose()
		b.Label.Texture = r.ctx.CreateTexture(dev.Name)
		b.Name = dev.Name
	}
}

func (r *Registry) destroy(b *Bundle) {
	r.root.Remove(b.Body)
	r.root.Remove(b.Label)
	// The label's texture and material are uniquely owned. The body's
	// geometry and material are pool entries and stay live.
	b.Label.Texture.Dispose()
	b.Label.Material.Dispose()
	r.log.Debug("bundle destroyed", logging.DeviceID(b.ID))
}

// Get returns the bundle for a device id.
func (r *Registry) Get(id string) (*Bundle, bool) {
	b, ok := r.bundles[id]
	return b, ok
}

// Len returns the number of live bundles.
func (r *Registry) Len() int {
	return len(r.bundles)
}

// Each calls fn for every live bundle. Iteration order is unspecified.
func (r *Registry) Each(fn func(*Bundle)) {
	for _, b := range r.bundles {
		fn(b)
	}
}

// Clear destroys every bundle, as if an empty snapshot had been synced.
func (r *Registry) Clear() {
	for id, b := range r.bundles {
		r.destroy(b)
		delete(r.bundles, id)
	}
}
