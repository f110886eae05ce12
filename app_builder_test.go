package lensing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppBuilder_Build(t *testing.T) {
	e, _, _ := newTestEngine(t)

	t.Run("default states", func(t *testing.T) {
		a, err := NewAppBuilder().UseEngine(e).UsePlatform(&fakePlatform{}).UseDefaultStates().Build()
		require.NoError(t, err)
		assert.Len(t, a.states, 3)
		assert.Equal(t, StateConfig, a.initialState)
		assert.Same(t, e.Log, a.Logger())
	})

	t.Run("missing engine", func(t *testing.T) {
		_, err := NewAppBuilder().UsePlatform(&fakePlatform{}).UseDefaultStates().Build()
		assert.Error(t, err)
	})

	t.Run("missing platform", func(t *testing.T) {
		_, err := NewAppBuilder().UseEngine(e).UseDefaultStates().Build()
		assert.Error(t, err)
	})

	t.Run("duplicate state", func(t *testing.T) {
		_, err := NewAppBuilder().UseEngine(e).UsePlatform(&fakePlatform{}).
			UseState(StateConfig, &ConfigState{}).
			UseState(StateConfig, &ConfigState{}).
			Build()
		assert.ErrorContains(t, err, "registered twice")
	})

	t.Run("unregistered initial state", func(t *testing.T) {
		_, err := NewAppBuilder().UseEngine(e).UsePlatform(&fakePlatform{}).
			UseState(StateConfig, &ConfigState{}).
			InitialState(StateSimulation).
			Build()
		assert.ErrorContains(t, err, "not registered")
	})
}
