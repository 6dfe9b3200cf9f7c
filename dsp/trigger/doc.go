// Package trigger provides stateful edge detectors that turn a continuous
// control or phase signal into single-sample boolean triggers.
//
//   - [Level]:    rising zero crossing (x > 0 after x <= 0)
//   - [RampWrap]: phase wrap detection by proportional change, robust at
//     near-Nyquist rates where a ramp can wrap without ever strictly
//     decreasing between two observed samples
//   - [Step]:     ceiling increase of a scaled phase, used by bounded bursts
//   - [Slope]:    per-sample phase increment of a ramp with wrap correction
//
// The New* constructors return primed detectors: RampWrap and Step fire on
// the very first sample after construction or Reset. Zero values are usable
// but unprimed.
package trigger
