package interp

import "math"

// Linear2 interpolates between x0 and x1 at t in [0,1].
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// CosineStep crossfades from a to b along a half cosine at t in [0,1].
func CosineStep(a, b, t float64) float64 {
	w := 0.5 - 0.5*math.Cos(math.Pi*t)
	return a + w*(b-a)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}

// PeekLinear reads buf at fractional index pos with linear interpolation.
// len(buf) must be a power of two and mask must be len(buf)-1. Negative
// positions wrap.
func PeekLinear(buf []float64, pos float64, mask int) float64 {
	i, t := split(pos)
	return Linear2(t, buf[i&mask], buf[(i+1)&mask])
}

// PeekCubic reads buf at fractional index pos with 4-point Hermite
// interpolation. len(buf) must be a power of two and mask must be
// len(buf)-1. Negative positions wrap.
func PeekCubic(buf []float64, pos float64, mask int) float64 {
	i, t := split(pos)
	return Hermite4(t,
		buf[(i-1)&mask],
		buf[i&mask],
		buf[(i+1)&mask],
		buf[(i+2)&mask],
	)
}

func split(pos float64) (int, float64) {
	if math.IsNaN(pos) || math.IsInf(pos, 0) {
		return 0, 0
	}

	fl := math.Floor(pos)

	return int(fl), pos - fl
}
