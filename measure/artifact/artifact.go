// Package artifact measures click and discontinuity artifacts in rendered
// audio: high-frequency energy share and the largest sample step.
package artifact

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

var errEmptySignal = errors.New("artifact signal must not be empty")

// Spectrum returns the one-sided Hann-windowed power spectrum of signal,
// zero-padded to the next power of two. Bin k covers k*sampleRate/N Hz.
func Spectrum(signal []float64) ([]float64, error) {
	if len(signal) == 0 {
		return nil, errEmptySignal
	}

	n := core.NextPowerOfTwo(max(len(signal), 2))

	windowed := make([]float64, len(signal))
	copy(windowed, signal)
	window.Apply(window.TypeHann, windowed)

	in := make([]complex128, n)
	for i, v := range windowed {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("artifact fft plan: %w", err)
	}

	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("artifact fft: %w", err)
	}

	bins := n/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for i := range bins {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	power := make([]float64, bins)
	vecmath.Power(power, re, im)

	return power, nil
}

// HighBandRatio returns the share of spectral energy above cutoffHz, in
// [0, 1]. A silent signal returns 0.
func HighBandRatio(signal []float64, sampleRate, cutoffHz float64) (float64, error) {
	if !core.ValidSampleRate(sampleRate) {
		return 0, fmt.Errorf("artifact sample rate must be > 0: %f", sampleRate)
	}

	power, err := Spectrum(signal)
	if err != nil {
		return 0, err
	}

	n := 2 * (len(power) - 1)
	binHz := sampleRate / float64(n)

	total, high := 0.0, 0.0
	for k, p := range power {
		total += p
		if float64(k)*binHz >= cutoffHz {
			high += p
		}
	}

	if total == 0 {
		return 0, nil
	}

	return high / total, nil
}

// MaxStep returns the largest absolute difference between neighboring
// samples and its index (the later sample). It returns -1 for signals
// shorter than two samples.
func MaxStep(signal []float64) (float64, int) {
	if len(signal) < 2 {
		return 0, -1
	}

	best, at := 0.0, 1
	for i := 1; i < len(signal); i++ {
		if d := math.Abs(signal[i] - signal[i-1]); d > best {
			best, at = d, i
		}
	}

	return best, at
}
