package core

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// MaxObjects is the size of the object arrays declared by the compute shader.
const MaxObjects = 16

var ErrObjectLimit = errors.New("object limit reached")

// CelestialObject is an auxiliary gravitating sphere. PosRadius packs the
// center in xyz and the radius in w.
type CelestialObject struct {
	ID        uuid.UUID
	PosRadius mgl32.Vec4
	Color     mgl32.Vec4
	Mass      float32
	Velocity  mgl32.Vec3
}

func (o *CelestialObject) Center() mgl32.Vec3 { return o.PosRadius.Vec3() }
func (o *CelestialObject) Radius() float32    { return o.PosRadius.W() }

// ObjectSet holds at most MaxObjects bodies. The black hole is never part of it.
type ObjectSet struct {
	objects []CelestialObject
}

func NewObjectSet() *ObjectSet {
	return &ObjectSet{objects: make([]CelestialObject, 0, MaxObjects)}
}

// DefaultObjects returns the two solar-mass bodies the simulation starts with.
func DefaultObjects() *ObjectSet {
	set := NewObjectSet()
	const solarMass = 1.98892e30
	_, _ = set.Add(CelestialObject{
		PosRadius: mgl32.Vec4{4e11, 0, 0, 4e10},
		Color:     mgl32.Vec4{1, 1, 0, 1},
		Mass:      solarMass,
	})
	_, _ = set.Add(CelestialObject{
		PosRadius: mgl32.Vec4{0, 0, 4e11, 4e10},
		Color:     mgl32.Vec4{1, 0, 0, 1},
		Mass:      solarMass,
	})
	return set
}

// Add appends obj and returns its id. A zero id is replaced by a fresh one.
// When the set is full the object is refused and the set left untouched.
func (s *ObjectSet) Add(obj CelestialObject) (uuid.UUID, error) {
	if len(s.objects) >= MaxObjects {
		return uuid.Nil, fmt.Errorf("cannot add object (%d max): %w", MaxObjects, ErrObjectLimit)
	}
	if obj.ID == uuid.Nil {
		obj.ID = uuid.New()
	}
	s.objects = append(s.objects, obj)
	return obj.ID, nil
}

func (s *ObjectSet) Remove(id uuid.UUID) bool {
	for i := range s.objects {
		if s.objects[i].ID == id {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			return true
		}
	}
	return false
}

func (s *ObjectSet) Clear() { s.objects = s.objects[:0] }

func (s *ObjectSet) Len() int { return len(s.objects) }

// Find returns a pointer into the set, valid until the next Add or Remove.
func (s *ObjectSet) Find(id uuid.UUID) *CelestialObject {
	for i := range s.objects {
		if s.objects[i].ID == id {
			return &s.objects[i]
		}
	}
	return nil
}

// Objects exposes the backing slice so the gravity step can update it in place.
func (s *ObjectSet) Objects() []CelestialObject { return s.objects }
