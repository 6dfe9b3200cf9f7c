// Package testutil holds deterministic signals and assertions shared by the
// package tests.
package testutil

import (
	"math"
	"math/rand"
)

// Sine generates a deterministic sine wave starting at phase 0.
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Noise generates white noise in [-amplitude, amplitude) with a fixed seed.
func Noise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Phasor generates a wrapping ramp in [0, 1) that advances by slope per
// sample. It is the clock signal ramp-driven processors expect.
func Phasor(slope float64, length int) []float64 {
	out := make([]float64, length)
	phase := 0.0
	for i := range out {
		out[i] = phase
		phase += slope
		phase -= math.Floor(phase)
	}
	return out
}

// Gate returns a signal that is 1 on [start, stop) and 0 elsewhere.
func Gate(length, start, stop int) []float64 {
	out := make([]float64, length)
	for i := max(start, 0); i < min(stop, length); i++ {
		out[i] = 1
	}
	return out
}

// Peak returns the largest absolute value in buf.
func Peak(buf []float64) float64 {
	m := 0.0
	for _, v := range buf {
		m = math.Max(m, math.Abs(v))
	}
	return m
}
