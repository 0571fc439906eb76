// Package signal conditions per-side measurement streams before they reach the
// repetition state machine: a trailing moving average for smoothing and a
// windowed velocity gate that rejects physically implausible jumps.
package signal

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Params holds the buffer sizes and time windows shared by every conditioner.
type Params struct {
	// SmoothingSamples is the moving-average history length.
	SmoothingSamples int
	// WindowSamples caps the number of samples kept for velocity estimation.
	WindowSamples int
	// Window is the maximum age of a velocity sample relative to the newest one.
	Window time.Duration
	// MinInterval is the shortest span over which a velocity is judged; shorter
	// spans are accepted without a check.
	MinInterval time.Duration
}

// DefaultParams returns the tuning used by the counting engine.
func DefaultParams() Params {
	return Params{
		SmoothingSamples: 5,
		WindowSamples:    10,
		Window:           400 * time.Millisecond,
		MinInterval:      50 * time.Millisecond,
	}
}

// Smoother is a fixed-capacity trailing moving average.
type Smoother struct {
	history  []float64
	dev      []float64
	capacity int
}

// NewSmoother creates a Smoother averaging over the last capacity values.
func NewSmoother(capacity int) *Smoother {
	if capacity < 1 {
		capacity = 1
	}
	return &Smoother{
		history:  make([]float64, 0, capacity),
		dev:      make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// Add appends v, evicting the oldest value when over capacity, and returns the
// unweighted mean of the current history. The mean is taken over deviations
// from the oldest value, so a history of identical values returns that value
// exactly.
func (s *Smoother) Add(v float64) float64 {
	if len(s.history) >= s.capacity {
		copy(s.history, s.history[1:])
		s.history = s.history[:s.capacity-1]
	}
	s.history = append(s.history, v)

	base := s.history[0]
	s.dev = s.dev[:0]
	for _, x := range s.history {
		s.dev = append(s.dev, x-base)
	}
	return base + stat.Mean(s.dev, nil)
}

// Len returns the number of values currently averaged.
func (s *Smoother) Len() int {
	return len(s.history)
}

// Reset clears the history.
func (s *Smoother) Reset() {
	s.history = s.history[:0]
}

type sample struct {
	at    time.Time
	value float64
}

// VelocityGate rejects values whose rate of change over a short trailing time
// window exceeds a ceiling.
type VelocityGate struct {
	samples     []sample
	capacity    int
	window      time.Duration
	minInterval time.Duration
}

// NewVelocityGate creates a gate using the window settings in p.
func NewVelocityGate(p Params) *VelocityGate {
	capacity := p.WindowSamples
	if capacity < 2 {
		capacity = 2
	}
	return &VelocityGate{
		samples:     make([]sample, 0, capacity),
		capacity:    capacity,
		window:      p.Window,
		minInterval: p.MinInterval,
	}
}

// Check records value at time at and reports whether it is plausible.
//
// The sample is always recorded, even when rejected, so later checks keep a
// well-formed history. Samples older than the window relative to at are
// evicted, but the newest one is always kept. With fewer than two samples, or
// when the retained span is shorter than the minimum interval, the value is
// accepted. Otherwise |newest - oldest| / span must not exceed maxVelocity
// (units per second).
func (g *VelocityGate) Check(value float64, at time.Time, maxVelocity float64) bool {
	if len(g.samples) >= g.capacity {
		copy(g.samples, g.samples[1:])
		g.samples = g.samples[:g.capacity-1]
	}
	g.samples = append(g.samples, sample{at: at, value: value})

	drop := 0
	for drop < len(g.samples)-1 && at.Sub(g.samples[drop].at) > g.window {
		drop++
	}
	if drop > 0 {
		n := copy(g.samples, g.samples[drop:])
		g.samples = g.samples[:n]
	}

	if len(g.samples) < 2 {
		return true
	}

	oldest, newest := g.samples[0], g.samples[len(g.samples)-1]
	dt := newest.at.Sub(oldest.at)
	if dt < g.minInterval {
		return true
	}

	velocity := math.Abs(newest.value-oldest.value) / dt.Seconds()
	return velocity <= maxVelocity
}

// Len returns the number of samples currently retained.
func (g *VelocityGate) Len() int {
	return len(g.samples)
}

// Reset clears the retained samples.
func (g *VelocityGate) Reset() {
	g.samples = g.samples[:0]
}

// Conditioner bundles the smoother and velocity gate for one tracked side.
type Conditioner struct {
	smoother *Smoother
	gate     *VelocityGate
}

// NewConditioner creates a Conditioner with the given parameters.
func NewConditioner(p Params) *Conditioner {
	return &Conditioner{
		smoother: NewSmoother(p.SmoothingSamples),
		gate:     NewVelocityGate(p),
	}
}

// Sample smooths raw and runs the smoothed value through the velocity gate.
// It returns the smoothed value and whether it may drive a state transition.
func (c *Conditioner) Sample(raw float64, at time.Time, maxVelocity float64) (float64, bool) {
	smoothed := c.smoother.Add(raw)
	return smoothed, c.gate.Check(smoothed, at, maxVelocity)
}

// Len returns the number of values in the smoothing history.
func (c *Conditioner) Len() int {
	return c.smoother.Len()
}

// Reset clears both buffers.
func (c *Conditioner) Reset() {
	c.smoother.Reset()
	c.gate.Reset()
}
