package event

import "github.com/cwbudde/algo-grain/dsp/core"

// Integrator is a single re-triggerable phase ramp in [0, 1).
//
// On a trigger the phase is reseeded to slope*subSampleOffset. Between
// triggers it keeps running and wraps, so it behaves like an oscillator
// that can be hard-synced with sub-sample precision. Output is 0 until the
// first trigger.
type Integrator struct {
	sampleRate float64
	phase      float64
	started    bool
}

// NewIntegrator creates an idle integrator.
func NewIntegrator(sampleRate float64) (*Integrator, error) {
	if err := validateSampleRate("ramp integrator", sampleRate); err != nil {
		return nil, err
	}
	return &Integrator{sampleRate: sampleRate}, nil
}

// Process advances the ramp by one sample at rate Hz.
func (r *Integrator) Process(trigger bool, rate, subSampleOffset float64) float64 {
	slope := rate / r.sampleRate

	if trigger {
		r.phase = slope * subSampleOffset
		r.started = true
	}

	out := 0.0
	if r.started {
		out = core.Frac(r.phase)
	}

	r.phase += slope

	return out
}

// Reset returns the integrator to its idle state.
func (r *Integrator) Reset() {
	r.phase = 0
	r.started = false
}

// Accumulator is a single re-triggerable sample counter. It drives
// per-grain sample indices directly instead of a normalized phase.
type Accumulator struct {
	count   float64
	started bool
}

// NewAccumulator creates an idle accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Process returns the sample count since the last trigger, offset by the
// trigger's sub-sample offset. Output is 0 until the first trigger.
func (r *Accumulator) Process(trigger bool, subSampleOffset float64) float64 {
	if trigger {
		r.count = subSampleOffset
		r.started = true
	}

	out := 0.0
	if r.started {
		out = r.count
	}

	r.count++

	return out
}

// Reset returns the accumulator to its idle state.
func (r *Accumulator) Reset() {
	r.count = 0
	r.started = false
}
