package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// The spacetime grid is a square of GridCells×GridCells cells centred on the
// origin in the xz plane, sunk GridDepth below the orbital plane.
const (
	GridCells   = 25
	GridSpacing = 1e10
	GridDepth   = 3e10
)

// GridVertexCount is the number of points GridVertices returns.
const GridVertexCount = (GridCells + 1) * (GridCells + 1)

// GridLineVertexCount is the number of segment endpoints GridLines returns.
const GridLineVertexCount = GridCells * GridCells * 4

// flamm is the height of Flamm's paraboloid at horizontal distance dist from
// a mass with Schwarzschild radius rs. Inside rs the surface is flat at 2·rs.
func flamm(rs, dist float64) float64 {
	if dist > rs {
		return 2 * math.Sqrt(rs*(dist-rs))
	}
	return 2 * rs
}

// GridVertices returns the grid points row by row along z. Each point is
// lifted by the embedding of every mass: the black hole and each object.
func GridVertices(objects []CelestialObject, hole *BlackHole) []mgl32.Vec3 {
	type mass struct {
		x, z, rs float64
	}
	masses := make([]mass, 0, len(objects)+1)
	if hole != nil {
		masses = append(masses, mass{hole.Position[0], hole.Position[2], hole.SchwarzschildRadius()})
	}
	for i := range objects {
		c := objects[i].Center()
		masses = append(masses, mass{float64(c[0]), float64(c[2]), SchwarzschildRadius(float64(objects[i].Mass))})
	}

	half := float64(GridCells) / 2
	out := make([]mgl32.Vec3, 0, GridVertexCount)
	for z := 0; z <= GridCells; z++ {
		for x := 0; x <= GridCells; x++ {
			p := mgl64.Vec3{(float64(x) - half) * GridSpacing, -GridDepth, (float64(z) - half) * GridSpacing}
			for _, m := range masses {
				p[1] += flamm(m.rs, math.Hypot(p[0]-m.x, p[2]-m.z))
			}
			out = append(out, mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])})
		}
	}
	return out
}

// GridLines expands grid points into a flat xyz line list: for every cell,
// the edge along x then the edge along z from its first corner.
func GridLines(vertices []mgl32.Vec3) []float32 {
	if len(vertices) != GridVertexCount {
		return nil
	}
	out := make([]float32, 0, GridLineVertexCount*3)
	emit := func(v mgl32.Vec3) { out = append(out, v[0], v[1], v[2]) }
	row := GridCells + 1
	for z := 0; z < GridCells; z++ {
		for x := 0; x < GridCells; x++ {
			i := z*row + x
			emit(vertices[i])
			emit(vertices[i+1])
			emit(vertices[i])
			emit(vertices[i+row])
		}
	}
	return out
}
