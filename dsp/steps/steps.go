package steps

import (
	"errors"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/interp"
	"github.com/cwbudde/algo-grain/dsp/trigger"
)

// Rand is the random source used by the step units.
type Rand interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// Intn returns a uniform value in [0, n). n > 0.
	Intn(n int) int
}

var errNilRand = errors.New("steps random source must not be nil")

// fsum3 approximates a normal distribution on [-1, 1] from three uniforms.
func fsum3(r Rand) float64 {
	return (r.Float64() + r.Float64() + r.Float64() - 1.5) * (2.0 / 3.0)
}

func glide(phase, from, to float64, smooth bool) float64 {
	if !smooth {
		return from
	}
	return interp.CosineStep(from, to, phase)
}

// Step draws a new uniform value in [0, 1) on every wrap of its clock ramp.
type Step struct {
	rng    Rand
	detect trigger.RampWrap

	current float64
	next    float64
	started bool
}

// NewStep returns a step unit drawing from rng.
func NewStep(rng Rand) (*Step, error) {
	if rng == nil {
		return nil, errNilRand
	}

	s := &Step{rng: rng}
	s.Reset()

	return s, nil
}

// Process feeds one clock phase sample. With smooth set the output glides
// from the current to the next value across the period.
func (s *Step) Process(phase float64, smooth bool) float64 {
	if !s.started {
		s.current = s.rng.Float64()
		s.next = s.current
		s.started = true
	}

	if s.detect.Process(phase) {
		s.current = s.next
		s.next = s.rng.Float64()
	}

	return glide(phase, s.current, s.next, smooth)
}

// Reset forgets the drawn values and re-primes the clock detector.
func (s *Step) Reset() {
	s.current, s.next = 0, 0
	s.started = false
	s.detect.Reset()
}

// Walk is a bounded random walk: each clock wrap adds a roughly normal step
// scaled by the step size, folded back into [0, 1].
type Walk struct {
	rng    Rand
	detect trigger.RampWrap

	current float64
	next    float64
	started bool
}

// NewWalk returns a random walk drawing from rng.
func NewWalk(rng Rand) (*Walk, error) {
	if rng == nil {
		return nil, errNilRand
	}

	w := &Walk{rng: rng}
	w.Reset()

	return w, nil
}

// Process feeds one clock phase sample. step is clamped to [0, 1].
func (w *Walk) Process(phase, step float64, smooth bool) float64 {
	if !w.started {
		w.current = w.rng.Float64()
		w.next = w.current
		w.started = true
	}

	if w.detect.Process(phase) {
		w.current = w.next
		w.next = core.Fold(w.next+fsum3(w.rng)*core.Clamp(step, 0, 1), 0, 1)
	}

	return glide(phase, w.current, w.next, smooth)
}

// Reset forgets the walk position and re-primes the clock detector.
func (w *Walk) Reset() {
	w.current, w.next = 0, 0
	w.started = false
	w.detect.Reset()
}
