package engine

import (
	"github.com/dd0wney/cluso-topoview/pkg/render"
	"github.com/dd0wney/cluso-topoview/pkg/topology"
)

// Status display colors. Unknown statuses fall back to gray.
var statusColors = map[topology.Status]render.Color{
	topology.StatusHealthy:  {R: 0.18, G: 0.80, B: 0.44},
	topology.StatusWarning:  {R: 0.95, G: 0.61, B: 0.07},
	topology.StatusCritical: {R: 0.91, G: 0.30, B: 0.24},
}

var unknownStatusColor = render.Color{R: 0.55, G: 0.55, B: 0.58}

// bodyRadius is the device body radius in world units; every body shares
// the same pool geometry regardless of status.
const bodyRadius = 1.0

// Pools owns the render resources shared across all device bundles: one
// body geometry and one material per distinct status value, created
// lazily. Pool entries are never disposed while bundles exist; Dispose is
// called exactly once, at engine teardown.
type Pools struct {
	ctx render.Context

	bodyGeometry *render.Geometry
	materials    map[topology.Status]*render.Material
}

// NewPools creates an empty pool registry over ctx.
func NewPools(ctx render.Context) *Pools {
	return &Pools{
		ctx:       ctx,
		materials: make(map[topology.Status]*render.Material),
	}
}

// BodyGeometry returns the shared body geometry, creating it on first use.
func (p *Pools) BodyGeometry() *render.Geometry {
	if p.bodyGeometry == nil {
		p.bodyGeometry = p.ctx.CreateGeometry([]float32{0, 0, 0}, nil)
	}
	return p.bodyGeometry
}

// StatusMaterial returns the shared material for a status, creating and
// caching it on first use.
func (p *Pools) StatusMaterial(status topology.Status) *render.Material {
	if m, ok := p.materials[status]; ok {
		return m
	}
	color, ok := statusColors[status]
	if !ok {
		color = unknownStatusColor
	}
	m := p.ctx.CreateMaterial(color, 1)
	p.materials[status] = m
	return m
}

// MaterialCount returns the number of distinct status materials created
// so far.
func (p *Pools) MaterialCount() int {
	return len(p.materials)
}

// Dispose releases every pool resource. Only the engine's teardown path
// calls this; per-handle guards make a repeated call harmless.
func (p *Pools) Dispose() {
	p.bodyGeometry.Dispose()
	p.bodyGeometry = nil
	for _, m := range p.materials {
		m.Dispose()
	}
	p.materials = make(map[topology.Status]*render.Material)
}
