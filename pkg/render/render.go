// Package render abstracts the drawing surface behind a Context interface
// so the engine can target a terminal cell buffer in production and a
// recording null driver in tests. Resources (geometries, materials,
// textures) are created through the Context and tracked, giving the engine
// an auditable disposal contract instead of relying on garbage collection.
package render

import "errors"

// ErrContextReleased is returned by operations on a released context.
var ErrContextReleased = errors.New("render context has been released")

// Point is one screen-space sprite in a frame: a projected device body.
type Point struct {
	X, Y    float64 // screen coordinates in pixels/cells
	Depth   float64 // camera-space distance, for occlusion ordering
	Radius  float64 // projected radius in pixels/cells
	Color   Color
	Opacity float64
}

// Line is one screen-space segment with per-endpoint colors.
type Line struct {
	X1, Y1, X2, Y2 float64
	Depth          float64
	C1, C2         Color
}

// Label is one screen-space text sprite.
type Label struct {
	X, Y    float64
	Depth   float64
	Texture *Texture
	Color   Color
	Opacity float64
}

// Frame is the complete draw list for one rendered frame, already
// projected to screen space by the camera.
type Frame struct {
	Lines  []Line
	Points []Point
	Labels []Label
}

// Context is a drawing surface plus a resource allocator. Implementations
// are not safe for concurrent use; the engine drives a context from a
// single goroutine.
type Context interface {
	// CreateGeometry allocates a vertex buffer. colors may be nil.
	CreateGeometry(positions, colors []float32) *Geometry

	// CreateMaterial allocates a material.
	CreateMaterial(color Color, opacity float64) *Material

	// CreateTexture rasterizes text into a label texture sized to fit it.
	CreateTexture(text string) *Texture

	// Size returns the drawable dimensions in pixels/cells.
	Size() (width, height int)

	// SetSize resizes the drawable. A zero-area size is recorded but not
	// an error; the engine skips rendering until a usable size arrives.
	SetSize(width, height int)

	// Render draws one frame, replacing the previous one.
	Render(frame *Frame)

	// Tracker returns the live-resource tracker for this context.
	Tracker() *Tracker

	// Release frees the context itself. Idempotent. Resources must be
	// disposed by their owners before Release; the context does not
	// cascade.
	Release() error
}
