package fastmath

import (
	"math"
	"testing"
)

func TestExpAccuracy(t *testing.T) {
	for _, x := range []float64{-10, -2.5, -0.001, 0, 0.5, 3} {
		want := math.Exp(x)
		if got := Exp(x); math.Abs(got-want) > 1e-3*want {
			t.Fatalf("Exp(%v) = %v, want %v", x, got, want)
		}
	}
}

func TestSqrtAccuracy(t *testing.T) {
	for _, x := range []float64{0.001, 0.5, 1, 4, 16, 900} {
		want := math.Sqrt(x)
		if got := Sqrt(x); math.Abs(got-want) > 1e-4*want {
			t.Fatalf("Sqrt(%v) = %v, want %v", x, got, want)
		}
	}
}
