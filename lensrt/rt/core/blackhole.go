package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultBlackHoleMass is roughly the mass of a supermassive black hole, in kg.
const DefaultBlackHoleMass = 8.54e36

var ErrNonPhysicalMass = errors.New("mass must be positive and finite")

// BlackHole is a non-rotating black hole. Its Schwarzschild radius is always
// derived from the mass.
type BlackHole struct {
	Position mgl64.Vec3

	mass float64
	rs   float64
}

func NewBlackHole(position mgl64.Vec3, mass float64) (*BlackHole, error) {
	bh := &BlackHole{Position: position}
	if err := bh.SetMass(mass); err != nil {
		return nil, err
	}
	return bh, nil
}

// NewDefaultBlackHole returns the black hole the simulation starts with.
func NewDefaultBlackHole() *BlackHole {
	bh, _ := NewBlackHole(mgl64.Vec3{}, DefaultBlackHoleMass)
	return bh
}

func validMass(mass float64) bool {
	return mass > 0 && !math.IsInf(mass, 0) && !math.IsNaN(mass)
}

// SetMass updates the mass and re-derives the Schwarzschild radius. An invalid
// mass is rejected and the previous value kept.
func (b *BlackHole) SetMass(mass float64) error {
	if !validMass(mass) {
		return fmt.Errorf("black hole mass %g: %w", mass, ErrNonPhysicalMass)
	}
	b.mass = mass
	b.rs = SchwarzschildRadius(mass)
	return nil
}

func (b *BlackHole) Mass() float64 { return b.mass }

func (b *BlackHole) SchwarzschildRadius() float64 { return b.rs }

// Intercept reports whether p lies strictly inside the event horizon.
func (b *BlackHole) Intercept(p mgl64.Vec3) bool {
	d := p.Sub(b.Position)
	return d.Dot(d) < b.rs*b.rs
}
