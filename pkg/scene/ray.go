package scene

import "math"

// Ray is a half-line used for picking.
type Ray struct {
	Origin Vec3
	Dir    Vec3 // unit length
}

// IntersectSphere returns the distance along the ray to the nearest
// intersection with the sphere, or ok=false when the ray misses or the
// sphere is entirely behind the origin.
func (r Ray) IntersectSphere(center Vec3, radius float64) (t float64, ok bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t = -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}
