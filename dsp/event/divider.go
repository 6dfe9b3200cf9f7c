package event

import (
	"math"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/trigger"
)

// Divider derives a ramp running ratio times slower than an input ramp
// (ratio < 1 runs faster).
//
// It integrates the input's per-sample slope divided by ratio. With autosync
// enabled, a proportional ratio change larger than threshold requests a
// resync, which is applied on the next input wrap by snapping the divided
// phase back onto the input's grid. A reset snaps immediately.
type Divider struct {
	wrap  trigger.RampWrap
	slope trigger.Slope

	phase       float64
	lastRatio   float64
	syncPending bool
}

// NewDivider creates a reset divider.
func NewDivider() *Divider {
	d := &Divider{}
	d.Reset()
	return d
}

// Process feeds one sample of the input ramp and returns the divided ramp
// in [0, 1).
func (d *Divider) Process(phase, ratio float64, reset, autosync bool, threshold float64) float64 {
	safeRatio := math.Max(math.Abs(ratio), core.SafeDenomEpsilon)
	scaledSlope := d.slope.Process(phase) / safeRatio

	wrapped := d.wrap.Process(phase)

	delta := safeRatio - d.lastRatio
	sum := safeRatio + d.lastRatio
	if autosync && sum != 0 && math.Abs(delta/sum) > threshold {
		d.syncPending = true
	}

	sync := false
	if wrapped {
		sync = d.syncPending
		d.syncPending = false
	}

	if sync || reset {
		scaledPhase := phase / safeRatio
		next := d.phase + scaledSlope
		offset := next - scaledPhase
		d.phase = math.Trunc(offset*safeRatio)/safeRatio + scaledPhase
	} else {
		d.phase += scaledSlope
	}

	d.lastRatio = safeRatio

	return core.Frac(d.phase)
}

// Reset clears phase and sync state.
func (d *Divider) Reset() {
	d.wrap.Reset()
	d.slope.Reset()
	d.phase = 0
	d.lastRatio = 1
	d.syncPending = false
}
