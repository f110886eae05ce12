package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// StepGravity advances the objects by one naive Newtonian step. Every ordered
// pair contributes G·m_j/d² along the displacement, the black hole acts as a
// fixed extra attractor, and positions move by the new velocity without a
// timestep factor. Accelerations are taken from a snapshot of the positions so
// the update order does not matter. Coincident bodies are skipped.
func StepGravity(objects []CelestialObject, hole *BlackHole, enabled bool) {
	n := len(objects)
	if !enabled || n == 0 {
		return
	}

	pos := make([]mgl64.Vec3, n)
	for i := range objects {
		c := objects[i].Center()
		pos[i] = mgl64.Vec3{float64(c[0]), float64(c[1]), float64(c[2])}
	}

	acc := make([]mgl64.Vec3, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			acc[i] = acc[i].Add(pull(pos[i], pos[j], float64(objects[j].Mass)))
		}
		if hole != nil {
			acc[i] = acc[i].Add(pull(pos[i], hole.Position, hole.Mass()))
		}
	}

	for i := range objects {
		o := &objects[i]
		v := mgl64.Vec3{float64(o.Velocity[0]), float64(o.Velocity[1]), float64(o.Velocity[2])}.Add(acc[i])
		p := pos[i].Add(v)
		o.Velocity = mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
		o.PosRadius = mgl32.Vec4{float32(p[0]), float32(p[1]), float32(p[2]), o.PosRadius[3]}
	}
}

// pull is the acceleration on a body at from caused by mass at to.
func pull(from, to mgl64.Vec3, mass float64) mgl64.Vec3 {
	d := to.Sub(from)
	dist := d.Len()
	if dist <= 0 {
		return mgl64.Vec3{}
	}
	a := GravitationalConstant * mass / (dist * dist)
	return d.Mul(a / dist)
}
