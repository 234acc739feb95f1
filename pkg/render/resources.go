package render

// Color is an RGB triple with components in [0,1].
type Color struct {
	R, G, B float64
}

// Lerp interpolates linearly between c and o by t in [0,1].
func (c Color) Lerp(o Color, t float64) Color {
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
	}
}

// Geometry is a vertex buffer created through a Context. Positions holds
// packed xyz triples; Colors, when non-nil, holds a parallel buffer of rgb
// triples (per-vertex color, used by line batches).
type Geometry struct {
	Positions []float32
	Colors    []float32

	tracker  *Tracker
	disposed bool
}

// VertexCount returns the number of vertices in the buffer.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// Dispose releases the geometry. Safe to call more than once; only the
// first call is counted.
func (g *Geometry) Dispose() {
	if g == nil || g.disposed {
		return
	}
	g.disposed = true
	g.tracker.untrackGeometry()
}

// Disposed reports whether Dispose has been called.
func (g *Geometry) Disposed() bool {
	return g != nil && g.disposed
}

// Material describes how a surface is shaded. Pool materials are shared
// across many meshes and must only be disposed at full teardown; label
// materials are uniquely owned by their bundle.
type Material struct {
	Color   Color
	Opacity float64

	tracker  *Tracker
	disposed bool
}

// Dispose releases the material. Safe to call more than once.
func (m *Material) Dispose() {
	if m == nil || m.disposed {
		return
	}
	m.disposed = true
	m.tracker.untrackMaterial()
}

// Disposed reports whether Dispose has been called.
func (m *Material) Disposed() bool {
	return m != nil && m.disposed
}

// Texture is a rasterized label. In this renderer a texture is the text it
// was generated from plus its cell dimensions; a GPU driver would hold the
// pixel upload instead. Width is derived from the rendered text so labels
// fit their device name.
type Texture struct {
	Text   string
	Width  int
	Height int

	tracker  *Tracker
	disposed bool
}

// Dispose releases the texture. Safe to call more than once.
func (t *Texture) Dispose() {
	if t == nil || t.disposed {
		return
	}
	t.disposed = true
	t.tracker.untrackTexture()
}

// Disposed reports whether Dispose has been called.
func (t *Texture) Disposed() bool {
	return t != nil && t.disposed
}
