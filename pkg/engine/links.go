package engine

import (
	"math"

	"github.com/dd0wney/cluso-topoview/pkg/logging"
	"github.com/dd0wney/cluso-topoview/pkg/render"
	"github.com/dd0wney/cluso-topoview/pkg/scene"
	"github.com/dd0wney/cluso-topoview/pkg/topology"
)

// Connection edges share one hue; strength only moves the lightness
// between a dim and a bright bound.
const (
	linkHue         = 197.0 / 360.0
	linkSaturation  = 0.75
	linkDimLight    = 0.22
	linkBrightLight = 0.72
)

// RebuildStats summarizes one connection batch rebuild.
type RebuildStats struct {
	Edges   int
	Dropped int
}

// LinkBatch owns the single batched edge representation. Each topology
// change rebuilds it wholesale: the previous geometry and material are
// disposed before the new batch is installed, and an empty edge set
// installs nothing at all.
type LinkBatch struct {
	ctx  render.Context
	root *scene.Node
	log  logging.Logger

	node *scene.Node // nil when no batch is installed
}

// NewLinkBatch creates an empty batch builder attaching under root.
func NewLinkBatch(ctx render.Context, root *scene.Node, log logging.Logger) *LinkBatch {
	return &LinkBatch{ctx: ctx, root: root, log: log}
}

// Node returns the currently installed batch node, or nil.
func (l *LinkBatch) Node() *scene.Node {
	return l.node
}

// EdgeCount returns the number of edges in the installed batch.
func (l *LinkBatch) EdgeCount() int {
	if l.node == nil {
		return 0
	}
	return l.node.Geometry.VertexCount() / 2
}

// Rebuild replaces the batch from the connection list. Connections whose
// endpoints are absent from the device set are dropped silently. Strength
// is clamped to [0,1] before coloring; latency is not rendered.
func (l *LinkBatch) Rebuild(connections []topology.Connection, devices []topology.Device) RebuildStats {
	index := topology.DeviceIndex(devices)

	positions := make([]float32, 0, len(connections)*6)
	colors := make([]float32, 0, len(connections)*6)
	stats := RebuildStats{}

	for _, conn := range connections {
		from, okFrom := index[conn.From]
		to, okTo := index[conn.To]
		if !okFrom || !okTo {
			stats.Dropped++
			continue
		}

		fp, tp := from.Pos(), to.Pos()
		positions = append(positions,
			float32(fp.X), float32(fp.Y), float32(fp.Z),
			float32(tp.X), float32(tp.Y), float32(tp.Z),
		)

		c := linkColor(topology.Clamp01(conn.Strength))
		colors = append(colors,
			float32(c.R), float32(c.G), float32(c.B),
			float32(c.R), float32(c.G), float32(c.B),
		)
		stats.Edges++
	}

	l.uninstall()

	if stats.Edges == 0 {
		return stats
	}

	geom := l.ctx.CreateGeometry(positions, colors)
	mat := l.ctx.CreateMaterial(render.Color{R: 1, G: 1, B: 1}, 1)
	node := scene.NewMesh(geom, mat, 0)
	node.Lines = true
	l.root.Add(node)
	l.node = node

	return stats
}

// uninstall removes and disposes the current batch, if any.
func (l *LinkBatch) uninstall() {
	if l.node == nil {
		return
	}
	l.root.Remove(l.node)
	l.node.Geometry.Dispose()
	l.node.Material.Dispose()
	l.node = nil
}

// Clear drops the installed batch. Used at teardown after the scene
// traversal has already disposed the resources.
func (l *LinkBatch) Clear() {
	l.uninstall()
}

// linkColor derives the edge color for a clamped strength value.
func linkColor(strength float64) render.Color {
	light := linkDimLight + (linkBrightLight-linkDimLight)*strength
	return hslToRGB(linkHue, linkSaturation, light)
}

// hslToRGB converts HSL (all components in [0,1]) to RGB.
func hslToRGB(h, s, l float64) render.Color {
	if s == 0 {
		return render.Color{R: l, G: l, B: l}
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return render.Color{
		R: hueToRGB(p, q, h+1.0/3.0),
		G: hueToRGB(p, q, h),
		B: hueToRGB(p, q, h-1.0/3.0),
	}
}

func hueToRGB(p, q, t float64) float64 {
	t = t - math.Floor(t)
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
