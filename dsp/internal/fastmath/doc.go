// Package fastmath selects between exact and approximated transcendental
// functions for the render path.
//
// The default build uses the standard library. Building with the fastmath
// tag routes [Exp] and [Sqrt] through algo-approx, trading a small relative
// error for speed:
//
// Exp: <0.1% relative error for x ∈ [-10, 10]
//
// Sqrt: <0.01% relative error for x ∈ [0, 1000]
package fastmath
