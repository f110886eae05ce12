package app

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profiler keeps the last CPU duration of named scopes plus a few counters,
// and derives frames per second from Tick.
type Profiler struct {
	Scopes     map[string]time.Duration
	StartTimes map[string]time.Time
	Counts     map[string]int
	Order      []string

	frames     int
	frameStart time.Time
	fps        float64
	now        func() time.Time
}

func NewProfiler() *Profiler {
	return &Profiler{
		Scopes:     make(map[string]time.Duration),
		StartTimes: make(map[string]time.Time),
		Counts:     make(map[string]int),
		now:        time.Now,
	}
}

// SetClock replaces the time source used for scopes and Tick.
func (p *Profiler) SetClock(now func() time.Time) { p.now = now }

func (p *Profiler) BeginScope(name string) {
	p.StartTimes[name] = p.now()
	if _, seen := p.Scopes[name]; !seen {
		p.Scopes[name] = 0
		p.Order = append(p.Order, name)
	}
}

func (p *Profiler) EndScope(name string) {
	if start, ok := p.StartTimes[name]; ok {
		p.Scopes[name] = p.now().Sub(start)
		delete(p.StartTimes, name)
	}
}

func (p *Profiler) SetCount(name string, count int) {
	p.Counts[name] = count
}

// Tick counts a presented frame. It returns true once per elapsed second,
// when FPS has just been refreshed.
func (p *Profiler) Tick() bool {
	now := p.now()
	if p.frameStart.IsZero() {
		p.frameStart = now
		return false
	}
	p.frames++
	elapsed := now.Sub(p.frameStart)
	if elapsed < time.Second {
		return false
	}
	p.fps = float64(p.frames) / elapsed.Seconds()
	p.frames = 0
	p.frameStart = now
	return true
}

func (p *Profiler) FPS() float64 { return p.fps }

func (p *Profiler) Reset() {
	for k := range p.Scopes {
		p.Scopes[k] = 0
	}
	p.frames = 0
	p.frameStart = time.Time{}
}

// Summary is a single log line: fps followed by scope timings in first-seen order.
func (p *Profiler) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "fps=%.1f", p.fps)
	for _, name := range p.Order {
		fmt.Fprintf(&sb, " %s=%.2fms", strings.ToLower(name), float64(p.Scopes[name].Microseconds())/1000.0)
	}
	return sb.String()
}

func (p *Profiler) GetStatsString() string {
	var sb strings.Builder

	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.Order {
		ms := float64(p.Scopes[name].Microseconds()) / 1000.0
		sb.WriteString(fmt.Sprintf("  %-15s: %.2f ms\n", name, ms))
	}

	sb.WriteString("\nStats:\n")
	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %-15s: %d\n", k, p.Counts[k]))
	}
	return sb.String()
}
