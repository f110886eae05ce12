package lensing

import (
	"time"
)

// Time tracks wall-clock progress between frames.
type Time struct {
	Start time.Time
	Time  time.Time
	Dt    time.Duration
}

func NewTime(now time.Time) *Time {
	return &Time{Start: now, Time: now}
}

// Tick advances to now and returns the frame delta in seconds.
func (t *Time) Tick(now time.Time) float64 {
	t.Dt = now.Sub(t.Time)
	if t.Dt < 0 {
		t.Dt = 0
	}
	t.Time = now
	return t.Dt.Seconds()
}

// Elapsed is the number of seconds since Start.
func (t *Time) Elapsed() float64 {
	return t.Time.Sub(t.Start).Seconds()
}

// FrameBudget is the frame duration for a target rate. Non-positive rates
// disable pacing.
func FrameBudget(fps int) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Second / time.Duration(fps)
}

// PaceDelay is how long to sleep so a frame that began at start and ends at
// now lasts the budget of fps.
func PaceDelay(start, now time.Time, fps int) time.Duration {
	budget := FrameBudget(fps)
	if budget == 0 {
		return 0
	}
	if spent := now.Sub(start); spent < budget {
		return budget - spent
	}
	return 0
}
