package scene

import "math"

// Camera is a perspective camera fixed on the world origin. Orbit is
// implemented by rotating the scene's root group, not the camera, so the
// camera only ever moves along its own Z axis (zoom).
type Camera struct {
	FOV      float64 // vertical field of view in radians
	Aspect   float64 // width / height
	Near     float64
	Far      float64
	Distance float64 // distance from the origin along +Z
}

// NewCamera creates a camera with a vertical field of view in degrees.
func NewCamera(fovDegrees, aspect, near, far, distance float64) *Camera {
	return &Camera{
		FOV:      fovDegrees * math.Pi / 180,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
		Distance: distance,
	}
}

// SetAspect updates the projection for a resized viewport.
func (c *Camera) SetAspect(aspect float64) {
	if aspect > 0 {
		c.Aspect = aspect
	}
}

// Position returns the camera's world position.
func (c *Camera) Position() Vec3 {
	return Vec3{Z: c.Distance}
}

// Project maps a world-space point to screen coordinates for a viewport of
// width×height. The returned depth is the camera-space distance along the
// view axis; ok is false when the point is outside the near/far range.
func (c *Camera) Project(world Vec3, width, height int) (x, y, depth float64, ok bool) {
	depth = c.Distance - world.Z
	if depth < c.Near || depth > c.Far {
		return 0, 0, depth, false
	}
	halfH := math.Tan(c.FOV / 2)
	ndcX := (world.X / depth) / (halfH * c.Aspect)
	ndcY := (world.Y / depth) / halfH
	x = (ndcX + 1) / 2 * float64(width)
	y = (1 - ndcY) / 2 * float64(height)
	return x, y, depth, true
}

// ProjectRadius returns the projected screen radius of a world-space
// radius at the given depth.
func (c *Camera) ProjectRadius(radius, depth float64, height int) float64 {
	if depth <= 0 {
		return 0
	}
	return radius / (depth * math.Tan(c.FOV/2)) * float64(height) / 2
}

// Ray casts a ray from the camera through normalized device coordinates
// (nx, ny in [-1,1], y up).
func (c *Camera) Ray(nx, ny float64) Ray {
	halfH := math.Tan(c.FOV / 2)
	dir := Vec3{
		X: nx * halfH * c.Aspect,
		Y: ny * halfH,
		Z: -1,
	}.Normalize()
	return Ray{Origin: c.Position(), Dir: dir}
}
