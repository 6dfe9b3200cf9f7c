package trigger

import "math"

// Level detects a rising edge through zero.
type Level struct {
	prev float64
}

// NewLevel returns a reset level trigger.
func NewLevel() *Level {
	return &Level{}
}

// Process returns true when x > 0 and the previous input was <= 0.
func (l *Level) Process(x float64) bool {
	trig := x > 0 && l.prev <= 0
	l.prev = x
	return trig
}

// Reset clears the previous input.
func (l *Level) Reset() {
	l.prev = 0
}

// RampWrap detects wraps of a phase ramp.
//
// A raw wrap is declared when the change between two samples is large
// relative to their sum (|delta/sum| > 0.5). Only the rising edge of the raw
// flag fires, so the large proportional change on the sample right after a
// wrap (from ~0 to one slope) does not double-trigger.
type RampWrap struct {
	prev     float64
	prevWrap bool
}

// NewRampWrap returns a detector primed to fire on its first sample.
func NewRampWrap() *RampWrap {
	r := &RampWrap{}
	r.Reset()
	return r
}

// Process feeds one phase sample and reports a wrap trigger.
func (r *RampWrap) Process(phase float64) bool {
	delta := phase - r.prev
	sum := phase + r.prev
	wrap := sum != 0 && math.Abs(delta/sum) > 0.5

	trig := wrap && !r.prevWrap

	r.prev = phase
	r.prevWrap = wrap

	return trig
}

// Reset primes the detector so an immediate wrap at start-up is reported.
func (r *RampWrap) Reset() {
	r.prev = 1
	r.prevWrap = false
}

// Step detects increases of ceil(phaseScaled).
type Step struct {
	prevCeil float64
	prevStep bool
}

// NewStep returns a detector primed to fire on its first sample.
func NewStep() *Step {
	s := &Step{}
	s.Reset()
	return s
}

// Process feeds one scaled phase sample and reports a step trigger.
func (s *Step) Process(phaseScaled float64) bool {
	ceil := math.Ceil(phaseScaled)
	step := ceil-s.prevCeil > 0

	trig := step && !s.prevStep

	s.prevCeil = ceil
	s.prevStep = step

	return trig
}

// Reset primes the detector with a ceiling of -1.
func (s *Step) Reset() {
	s.prevCeil = -1
	s.prevStep = false
}

// Slope recovers the per-sample increment of a [0,1) ramp.
type Slope struct {
	prev float64
}

// NewSlope returns a reset slope tracker.
func NewSlope() *Slope {
	return &Slope{}
}

// Process returns phase - previous, recentred into [-0.5, 0.5] so the sample
// across a wrap reports the true increment instead of a jump of ~1.
func (s *Slope) Process(phase float64) float64 {
	delta := phase - s.prev
	if delta > 0.5 {
		delta--
	} else if delta < -0.5 {
		delta++
	}

	s.prev = phase

	return delta
}

// Reset clears the previous phase.
func (s *Slope) Reset() {
	s.prev = 0
}
