package event

import (
	"math"

	"github.com/cwbudde/algo-grain/dsp/core"
)

// MaxVoices is the largest number of slots an Allocator can manage.
const MaxVoices = 64

// Allocator assigns incoming triggers to one of N independently phased
// voice slots.
//
// Each sample it first releases every voice whose phase reached 1, then
// assigns a trigger to the lowest free slot, so a voice finishing on the
// same sample as a new trigger is immediately reusable. When every slot is
// busy the trigger is dropped: no voice is stolen and nothing is queued.
//
// Slot storage is allocated once in NewAllocator. Process never allocates.
type Allocator struct {
	sampleRate float64

	localPhases []float64
	localSlopes []float64
	active      []bool

	phases   []float64
	triggers []bool

	dropped uint64
}

// NewAllocator creates an allocator with voices slots, clamped to
// [1, MaxVoices].
func NewAllocator(voices int, sampleRate float64) (*Allocator, error) {
	if err := validateSampleRate("voice allocator", sampleRate); err != nil {
		return nil, err
	}

	n := core.ClampInt(voices, 1, MaxVoices)

	return &Allocator{
		sampleRate:  sampleRate,
		localPhases: make([]float64, n),
		localSlopes: make([]float64, n),
		active:      make([]bool, n),
		phases:      make([]float64, n),
		triggers:    make([]bool, n),
	}, nil
}

// Voices returns the number of slots.
func (a *Allocator) Voices() int { return len(a.active) }

// SampleRate returns sample rate in Hz.
func (a *Allocator) SampleRate() float64 { return a.sampleRate }

// Process advances all voices by one sample and returns the slot assigned
// on this sample, or -1 when there was no trigger or it was dropped.
//
// rate is the voice rate in Hz (one voice lasts 1/rate seconds). The
// magnitude is used, a voice always runs forwards, and it is floored at
// core.SafeDenomEpsilon Hz so a voice started at rate 0 still ends.
// subSampleOffset seeds the new voice at rate/sampleRate*subSampleOffset.
func (a *Allocator) Process(trigger bool, rate, subSampleOffset float64) int {
	core.ZeroBools(a.triggers)

	for i := range a.active {
		if a.active[i] && a.localPhases[i] >= 1 {
			a.active[i] = false
			a.localPhases[i] = 0
		}
	}

	slot := -1
	if trigger {
		slot = a.assign(rate, subSampleOffset)
	}

	for i := range a.active {
		if a.active[i] && a.localPhases[i] < 1 {
			a.phases[i] = a.localPhases[i]
		} else {
			a.phases[i] = 0
		}
	}

	for i := range a.active {
		if a.active[i] {
			a.localPhases[i] += a.localSlopes[i]
		}
	}

	return slot
}

// ProcessEvent feeds a scheduler event using rate instead of ev.Rate, so
// callers can scale the voice length (for example ev.Rate/overlap).
func (a *Allocator) ProcessEvent(ev Event, rate float64) int {
	return a.Process(ev.Trigger, rate, ev.SubSampleOffset)
}

func (a *Allocator) assign(rate, subSampleOffset float64) int {
	for i := range a.active {
		if a.active[i] {
			continue
		}

		// A zero rate would hold the slot forever.
		slope := math.Max(math.Abs(rate), core.SafeDenomEpsilon) / a.sampleRate
		a.localSlopes[i] = slope
		a.localPhases[i] = slope * subSampleOffset
		a.active[i] = true
		a.triggers[i] = true

		return i
	}

	a.dropped++

	return -1
}

// Phase returns the phase reported for slot i on the last Process call,
// 0 for idle slots.
func (a *Allocator) Phase(i int) float64 { return a.phases[i] }

// Triggered reports whether slot i was assigned on the last Process call.
func (a *Allocator) Triggered(i int) bool { return a.triggers[i] }

// Active reports whether slot i currently holds a voice.
func (a *Allocator) Active(i int) bool { return a.active[i] }

// Phases returns the per-slot output phases. The slice is owned by the
// allocator and overwritten by the next Process call.
func (a *Allocator) Phases() []float64 { return a.phases }

// Triggers returns the per-slot trigger flags. The slice is owned by the
// allocator and overwritten by the next Process call.
func (a *Allocator) Triggers() []bool { return a.triggers }

// ActiveCount returns the number of slots holding a voice.
func (a *Allocator) ActiveCount() int {
	n := 0
	for _, on := range a.active {
		if on {
			n++
		}
	}
	return n
}

// Dropped returns how many triggers found no free slot since the last
// Reset. It is a diagnostic counter only.
func (a *Allocator) Dropped() uint64 { return a.dropped }

// Reset releases every voice.
func (a *Allocator) Reset() {
	core.Zero(a.localPhases)
	core.Zero(a.localSlopes)
	core.ZeroBools(a.active)
	core.Zero(a.phases)
	core.ZeroBools(a.triggers)
	a.dropped = 0
}
