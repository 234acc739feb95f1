package render

import "sync/atomic"

// Counts is a point-in-time census of live (created and not yet disposed)
// resources.
type Counts struct {
	Geometries int64
	Materials  int64
	Textures   int64
}

// Total returns the sum across all resource kinds.
func (c Counts) Total() int64 {
	return c.Geometries + c.Materials + c.Textures
}

// Tracker counts live resources per kind. Every resource created through a
// Context registers itself here and deregisters exactly once on Dispose,
// making disposal contracts auditable: after a full engine teardown the
// tracker must read zero across the board.
type Tracker struct {
	geometries atomic.Int64
	materials  atomic.Int64
	textures   atomic.Int64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Counts returns the current live-resource census.
func (t *Tracker) Counts() Counts {
	return Counts{
		Geometries: t.geometries.Load(),
		Materials:  t.materials.Load(),
		Textures:   t.textures.Load(),
	}
}

func (t *Tracker) trackGeometry()   { t.geometries.Add(1) }
func (t *Tracker) untrackGeometry() { t.geometries.Add(-1) }
func (t *Tracker) trackMaterial()   { t.materials.Add(1) }
func (t *Tracker) untrackMaterial() { t.materials.Add(-1) }
func (t *Tracker) trackTexture()    { t.textures.Add(1) }
func (t *Tracker) untrackTexture()  { t.textures.Add(-1) }
