//go:build fastmath

package fastmath

import "github.com/meko-christian/algo-approx"

// Exp computes e^x using fast approximation.
func Exp(x float64) float64 {
	return approx.FastExp(x)
}

// Sqrt computes sqrt(x) using fast approximation.
func Sqrt(x float64) float64 {
	return approx.FastSqrt(x)
}
