//go:build !fastmath

package fastmath

import "math"

// Exp computes e^x using standard library math.
func Exp(x float64) float64 {
	return math.Exp(x)
}

// Sqrt computes sqrt(x) using standard library math.
func Sqrt(x float64) float64 {
	return math.Sqrt(x)
}
