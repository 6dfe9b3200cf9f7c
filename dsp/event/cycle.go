package event

import (
	"math"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/trigger"
)

// Cycle is a free-running periodic event source.
//
// It emits one trigger per period of the requested rate. A rate change only
// takes effect at the next period boundary, so a period is never stretched
// or compressed half way through. The wrap itself is applied one sample
// after the phase crosses the boundary; detection runs on the wrapped,
// pre-increment phase, which is what makes Phase/slope the exact sub-sample
// distance to the ideal boundary.
type Cycle struct {
	sampleRate float64
	detect     trigger.RampWrap

	phase       float64
	slope       float64
	wrapPending bool
}

// NewCycle creates a reset cycle scheduler. The first processed sample
// triggers.
func NewCycle(sampleRate float64) (*Cycle, error) {
	if err := validateSampleRate("cycle scheduler", sampleRate); err != nil {
		return nil, err
	}

	c := &Cycle{sampleRate: sampleRate}
	c.Reset()

	return c, nil
}

// SampleRate returns sample rate in Hz.
func (c *Cycle) SampleRate() float64 { return c.sampleRate }

// Process advances the scheduler by one sample. rate is in Hz and should
// already be limited with ClampRate; negative rates run the ramp backwards.
// reset synchronously reinitializes all state before the sample is
// processed.
func (c *Cycle) Process(rate float64, reset bool) Event {
	if reset {
		c.Reset()
	}

	// A zero slope has never been latched (or was latched at rate 0).
	if c.slope == 0 {
		c.slope = rate / c.sampleRate
	}

	// carry is the slope that moved the phase onto this sample. After a
	// wrap it still points in the direction the boundary was crossed, even
	// when the newly latched rate has the opposite sign.
	carry := c.slope

	if c.wrapPending {
		if c.phase >= 1 {
			c.phase--
		} else {
			c.phase++
		}
		c.slope = rate / c.sampleRate
		c.wrapPending = false
	}

	ramp := forwardPhase(c.phase, carry)
	trig := c.detect.Process(ramp)

	offset := 0.0
	if trig && carry != 0 {
		// Rounding in the wrap can land exactly one slope past the boundary.
		offset = math.Min(ramp/math.Abs(carry), maxOffset)
	}

	ev := Event{
		Trigger:         trig,
		Phase:           c.phase,
		Rate:            c.slope * c.sampleRate,
		SubSampleOffset: offset,
	}

	c.phase += c.slope
	if c.phase >= 1 || c.phase < 0 {
		c.wrapPending = true
	}

	return ev
}

// ProcessBlock fills dst with consecutive events at a constant rate.
func (c *Cycle) ProcessBlock(dst []Event, rate float64) {
	for i := range dst {
		dst[i] = c.Process(rate, false)
	}
}

// Phase returns the current, not yet reported, phase.
func (c *Cycle) Phase() float64 { return c.phase }

// Reset clears phase, slope and the pending wrap, and primes the wrap
// detector so the next sample triggers.
func (c *Cycle) Reset() {
	c.phase = 0
	c.slope = 0
	c.wrapPending = false
	c.detect.Reset()
}

// maxOffset is the largest sub-sample offset below 1.
var maxOffset = math.Nextafter(1, 0)

// forwardPhase mirrors a backwards ramp so wrap detection and the offset
// always see a rising ramp. Backwards, the boundary sits at 1.0 and the
// phase moves down from it.
func forwardPhase(phase, slope float64) float64 {
	if slope < 0 {
		return core.Frac(1 - phase)
	}
	return phase
}
