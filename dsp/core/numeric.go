package core

import "math"

const defaultEpsilon = 1e-12

// SafeDenomEpsilon is the floor applied to ratios and durations before they
// are used as divisors on the render path.
const SafeDenomEpsilon = 1e-6

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// ClampInt limits value to the inclusive range [min, max].
func ClampInt(value, min, max int) int {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// Frac returns the fractional part of x in [0, 1), also for negative x.
func Frac(x float64) float64 {
	f := x - math.Floor(x)
	if f >= 1 {
		return 0
	}

	return f
}

// Fold reflects x back into [lo, hi].
func Fold(x, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	span := hi - lo
	if span == 0 {
		return lo
	}

	if x >= lo && x <= hi {
		return x
	}

	period := 2 * span
	m := math.Mod(x-lo, period)
	if m < 0 {
		m += period
	}

	if m > span {
		m = period - m
	}

	return lo + m
}

// Lerp blends a towards b by t.
func Lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

// Zap flushes NaN, Inf and denormal-range values to exact zero. Feedback
// paths call it so a non-finite value cannot latch indefinitely.
func Zap(x float64) float64 {
	const epsilon = 1e-15
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}

	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// NextPowerOfTwo returns the smallest power of two >= n (1 for n <= 1).
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}

// ValidSampleRate reports whether sampleRate is positive and finite.
func ValidSampleRate(sampleRate float64) bool {
	return sampleRate > 0 && !math.IsNaN(sampleRate) && !math.IsInf(sampleRate, 0)
}
