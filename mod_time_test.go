package lensing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTime_Tick(t *testing.T) {
	start := time.Unix(100, 0)
	clock := NewTime(start)

	assert.InDelta(t, 0.25, clock.Tick(start.Add(250*time.Millisecond)), 1e-9)
	assert.InDelta(t, 0.5, clock.Tick(start.Add(750*time.Millisecond)), 1e-9)
	assert.InDelta(t, 0.75, clock.Elapsed(), 1e-9)

	assert.Zero(t, clock.Tick(start), "time never runs backwards")
}

func TestPaceDelay(t *testing.T) {
	start := time.Unix(0, 0)
	tests := []struct {
		name  string
		spent time.Duration
		fps   int
		want  time.Duration
	}{
		{"fast frame sleeps the rest", 5 * time.Millisecond, 100, 5 * time.Millisecond},
		{"slow frame never sleeps", 40 * time.Millisecond, 60, 0},
		{"pacing disabled", time.Millisecond, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PaceDelay(start, start.Add(tt.spent), tt.fps))
		})
	}
	assert.Equal(t, 16666666*time.Nanosecond, FrameBudget(60))
}
