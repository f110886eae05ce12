package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectSetCapacity(t *testing.T) {
	set := NewObjectSet()
	for i := 0; i < MaxObjects; i++ {
		_, err := set.Add(CelestialObject{PosRadius: mgl32.Vec4{float32(i), 0, 0, 1}, Mass: 1})
		require.NoError(t, err)
	}

	before := append([]CelestialObject(nil), set.Objects()...)
	id, err := set.Add(CelestialObject{Mass: 1})
	assert.ErrorIs(t, err, ErrObjectLimit)
	assert.Equal(t, uuid.Nil, id)
	assert.Equal(t, MaxObjects, set.Len())
	assert.Equal(t, before, set.Objects(), "existing objects are untouched")
}

func TestObjectSetAddRemove(t *testing.T) {
	set := DefaultObjects()
	id, err := set.Add(CelestialObject{Mass: 5})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, 3, set.Len())

	o := set.Find(id)
	require.NotNil(t, o)
	assert.Equal(t, float32(5), o.Mass)

	assert.True(t, set.Remove(id))
	assert.False(t, set.Remove(id))
	assert.Nil(t, set.Find(id))
	assert.Equal(t, 2, set.Len())

	set.Clear()
	assert.Zero(t, set.Len())
}

func TestObjectSetKeepsGivenID(t *testing.T) {
	set := NewObjectSet()
	want := uuid.New()
	got, err := set.Add(CelestialObject{ID: want})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
