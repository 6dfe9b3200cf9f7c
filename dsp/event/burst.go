package event

import (
	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/trigger"
)

// MinBurstDuration is the shortest event duration in seconds callers should
// pass to Burst.
const MinBurstDuration = 0.001

// Burst is a bounded event source: after an init trigger it emits up to
// cycles periodic triggers and then holds its final state until the next
// init trigger. It never restarts on its own.
type Burst struct {
	sampleRate float64
	detect     trigger.Step

	phaseScaled float64
	slope       float64
	started     bool
}

// NewBurst creates an idle burst scheduler.
func NewBurst(sampleRate float64) (*Burst, error) {
	if err := validateSampleRate("burst scheduler", sampleRate); err != nil {
		return nil, err
	}

	b := &Burst{sampleRate: sampleRate}
	b.Reset()

	return b, nil
}

// SampleRate returns sample rate in Hz.
func (b *Burst) SampleRate() float64 { return b.sampleRate }

// Process advances the burst by one sample. init starts a new burst;
// duration is the length of one event in seconds and may change every
// sample; cycles is the number of events per burst (values < 1 count as 1).
func (b *Burst) Process(init bool, duration float64, cycles int) Event {
	if init {
		b.Reset()
		b.started = true
	}

	if duration > 0 {
		b.slope = 1 / (duration * b.sampleRate)
	} else {
		b.slope = 1 / b.sampleRate
	}

	if !b.started {
		return Event{}
	}

	if cycles < 1 {
		cycles = 1
	}

	trig := b.detect.Process(b.phaseScaled)
	phase := core.Frac(b.phaseScaled)

	offset := 0.0
	if trig {
		offset = phase / b.slope
	}

	ev := Event{
		Trigger:         trig,
		Phase:           phase,
		Rate:            b.slope * b.sampleRate,
		SubSampleOffset: offset,
	}

	b.phaseScaled += b.slope
	if limit := float64(cycles); b.phaseScaled > limit {
		b.phaseScaled = limit
	}

	return ev
}

// Progress returns the unwrapped burst position in [0, cycles].
func (b *Burst) Progress() float64 { return b.phaseScaled }

// Running reports whether an init trigger has been received since the last
// Reset.
func (b *Burst) Running() bool { return b.started }

// Reset returns the burst to its idle state.
func (b *Burst) Reset() {
	b.phaseScaled = 0
	b.slope = 0
	b.started = false
	b.detect.Reset()
}
