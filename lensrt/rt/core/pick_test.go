package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestPick(t *testing.T) {
	hole := NewDefaultBlackHole()
	objects := []CelestialObject{
		{PosRadius: mgl32.Vec4{4e11, 0, 0, 4e10}},
		{PosRadius: mgl32.Vec4{2e11, 0, 0, 4e10}},
		{PosRadius: mgl32.Vec4{0, 0, 4e11, 4e10}},
	}
	origin := mgl64.Vec3{1e12, 0, 0}

	tests := []struct {
		name      string
		dir       mgl64.Vec3
		wantIndex int
		wantHole  bool
	}{
		{"nearest of two in line", mgl64.Vec3{-1, 0, 0}, 0, false},
		{"miss", mgl64.Vec3{0, 1, 0}, PickNone, false},
		{"behind the origin", mgl64.Vec3{1, 0, 0}, PickNone, false},
		{"off-axis object", mgl64.Vec3{-1e12, 0, 4e11}.Normalize(), 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, h := Pick(origin, tt.dir, objects, hole)
			assert.Equal(t, tt.wantIndex, idx)
			assert.Equal(t, tt.wantHole, h)
		})
	}

	t.Run("horizon in front of objects", func(t *testing.T) {
		idx, h := Pick(origin, mgl64.Vec3{-1, 0, 0}, objects[2:], hole)
		assert.Equal(t, PickNone, idx)
		assert.True(t, h)
	})
}

func TestPlacementRadius(t *testing.T) {
	hole := NewDefaultBlackHole()
	rs := hole.SchwarzschildRadius()

	tests := []struct {
		name   string
		center mgl64.Vec3
		eye    mgl64.Vec3
		want   float64
		ok     bool
		expect float64
	}{
		{"far from both keeps the request", mgl64.Vec3{1e12, 0, 0}, mgl64.Vec3{2e12, 0, 0}, 4e10, true, 4e10},
		{"close to the hole shrinks", mgl64.Vec3{3 * rs, 0, 0}, mgl64.Vec3{1e13, 0, 0}, 4e10, true, rs},
		{"close to the eye shrinks", mgl64.Vec3{1e12, 0, 0}, mgl64.Vec3{1e12 + 2e10, 0, 0}, 4e10, true, 1e10},
		{"inside the horizon", mgl64.Vec3{rs / 2, 0, 0}, mgl64.Vec3{1e12, 0, 0}, 4e10, false, 0},
		{"at the eye", mgl64.Vec3{1e12, 0, 0}, mgl64.Vec3{1e12, 0, 0}, 4e10, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := PlacementRadius(tt.center, tt.eye, hole, tt.want)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InEpsilon(t, tt.expect, r, 1e-9)
				assert.GreaterOrEqual(t, tt.center.Sub(hole.Position).Len(), r+rs)
				assert.GreaterOrEqual(t, tt.center.Sub(tt.eye).Len(), r)
			}
		})
	}
}
