// Package onepole implements a one-pole recursive smoother usable as a
// lowpass or, by subtraction, a highpass.
//
// The coefficient c is the pole position in [0,1]: 0 passes the input
// through unchanged, values near 1 smooth heavily.
package onepole

import (
	"math"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/internal/fastmath"
)

// maxSlope bounds hz/sampleRate when deriving a coefficient.
const maxSlope = 0.5

// OnePole holds the state of one filter instance. The zero value is ready
// to use.
type OnePole struct {
	state float64
}

// Lowpass filters x with pole coeff: y = x*(1-coeff) + y[n-1]*coeff.
// The stored state is flushed with core.Zap, so a non-finite input
// affects only the sample it arrives on.
func (f *OnePole) Lowpass(x, coeff float64) float64 {
	y := x*(1-coeff) + f.state*coeff
	f.state = core.Zap(y)
	return y
}

// Highpass returns x minus its lowpassed version.
func (f *OnePole) Highpass(x, coeff float64) float64 {
	return x - f.Lowpass(x, coeff)
}

// LowpassHz is Lowpass with the pole derived from a cutoff in Hz.
func (f *OnePole) LowpassHz(x, hz, sampleRate float64) float64 {
	return f.Lowpass(x, Coefficient(hz, sampleRate))
}

// HighpassHz is Highpass with the pole derived from a cutoff in Hz.
func (f *OnePole) HighpassHz(x, hz, sampleRate float64) float64 {
	return f.Highpass(x, Coefficient(hz, sampleRate))
}

// State returns the last lowpass output.
func (f *OnePole) State() float64 { return f.state }

// Reset clears the filter state.
func (f *OnePole) Reset() {
	f.state = 0
}

// Coefficient returns exp(-2π|hz/sampleRate|) with the normalized
// frequency clipped to 0.5. It returns 0 for an invalid sample rate.
func Coefficient(hz, sampleRate float64) float64 {
	if !core.ValidSampleRate(sampleRate) {
		return 0
	}

	slope := core.Clamp(hz/sampleRate, -maxSlope, maxSlope)

	return fastmath.Exp(-2 * math.Pi * math.Abs(slope))
}
