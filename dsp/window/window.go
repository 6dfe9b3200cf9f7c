// Package window evaluates grain amplitude windows by phase.
//
// Grains carry a phase in [0,1) from the voice allocator, so windows are
// keyed by phase instead of by sample index. Every window is 0 outside
// [0,1].
package window

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeHann Type = iota
	TypeTriangle
	TypeWelch
	TypeTukey
	TypeRectangular
)

// tukeyAlpha is the tapered fraction of the Tukey window.
const tukeyAlpha = 0.5

var typeNames = map[Type]string{
	TypeHann:        "hann",
	TypeTriangle:    "triangle",
	TypeWelch:       "welch",
	TypeTukey:       "tukey",
	TypeRectangular: "rectangular",
}

// String returns the lower-case window name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("window(%d)", int(t))
}

// Parse maps a window name to its Type. Matching is case-insensitive.
func Parse(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return TypeHann, fmt.Errorf("unknown window %q", name)
}

// At evaluates window t at phase. Unknown types fall back to Hann.
func At(t Type, phase float64) float64 {
	if phase < 0 || phase > 1 {
		return 0
	}

	switch t {
	case TypeTriangle:
		if phase <= 0.5 {
			return 2 * phase
		}
		return 2 * (1 - phase)
	case TypeWelch:
		r := 2*phase - 1
		return 1 - r*r
	case TypeTukey:
		return tukeyAt(phase, tukeyAlpha)
	case TypeRectangular:
		return 1
	default:
		return 0.5 - 0.5*math.Cos(2*math.Pi*phase)
	}
}

// Table returns n symmetric samples of window t, endpoints included.
func Table(t Type, n int) []float64 {
	if n <= 0 {
		return nil
	}

	out := make([]float64, n)
	if n == 1 {
		out[0] = At(t, 0.5)
		return out
	}

	den := float64(n - 1)
	for i := range out {
		out[i] = At(t, float64(i)/den)
	}

	return out
}

// Apply multiplies buf in-place by the selected window.
func Apply(t Type, buf []float64) {
	if len(buf) == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf, Table(t, len(buf)))
}

// Gain returns the mean of window t over one grain, the factor by which a
// constant input is attenuated.
func Gain(t Type) float64 {
	switch t {
	case TypeTriangle, TypeHann:
		return 0.5
	case TypeWelch:
		return 2.0 / 3.0
	case TypeTukey:
		return 1 - tukeyAlpha/2
	default:
		return 1
	}
}

func tukeyAt(x, alpha float64) float64 {
	a := alpha / 2
	switch {
	case x < a:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-1)))
	case x <= 1-a:
		return 1
	default:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-2/alpha+1)))
	}
}
