package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PickNone is returned by Pick when the ray hits no object.
const PickNone = -1

// raySphere returns the nearest positive distance along a unit ray to a
// sphere, or false when the sphere is missed or behind the origin.
func raySphere(origin, dir, center mgl64.Vec3, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc <= 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	if t := -b - sq; t > 0 {
		return t, true
	}
	if t := -b + sq; t > 0 {
		return t, true
	}
	return 0, false
}

// Pick finds the object nearest along the ray. When the event horizon is
// closer than every object, index is PickNone and hole is true.
func Pick(origin, dir mgl64.Vec3, objects []CelestialObject, bh *BlackHole) (index int, hole bool) {
	index = PickNone
	best := math.Inf(1)
	if bh != nil {
		if t, ok := raySphere(origin, dir, bh.Position, bh.SchwarzschildRadius()); ok {
			best, hole = t, true
		}
	}
	for i := range objects {
		c := objects[i].Center()
		center := mgl64.Vec3{float64(c[0]), float64(c[1]), float64(c[2])}
		if t, ok := raySphere(origin, dir, center, float64(objects[i].Radius())); ok && t < best {
			best, index, hole = t, i, false
		}
	}
	return index, hole
}

// PlacementRadius fits a sphere at center that stays clear of both the event
// horizon and the eye, capped at want. It reports false when no positive
// radius fits.
func PlacementRadius(center, eye mgl64.Vec3, bh *BlackHole, want float64) (float64, bool) {
	r := min(want, 0.5*center.Sub(eye).Len())
	if bh != nil {
		r = min(r, 0.5*(center.Sub(bh.Position).Len()-bh.SchwarzschildRadius()))
	}
	if r <= 0 || math.IsNaN(r) {
		return 0, false
	}
	return r, true
}
