package event

import (
	"math"
	"testing"
)

func TestDividerHalvesRamp(t *testing.T) {
	c := newTestCycle(t, 1000)
	d := NewDivider()

	var prev float64
	for n := range 400 {
		in := c.Process(10, false).Phase
		out := d.Process(in, 2, false, false, 0.1)
		if out < 0 || out >= 1 {
			t.Fatalf("sample %d: output %v out of range", n, out)
		}

		if n > 1 {
			step := out - prev
			if step < 0 {
				step++
			}
			if math.Abs(step-0.005) > 1e-9 {
				t.Fatalf("sample %d: step %v, want 0.005", n, step)
			}
		}
		prev = out
	}
}

func TestDividerFasterRatio(t *testing.T) {
	c := newTestCycle(t, 1000)
	d := NewDivider()

	wraps := 0
	var prev float64
	for n := range 1000 {
		out := d.Process(c.Process(10, false).Phase, 0.5, false, false, 0.1)
		if n > 0 && out < prev {
			wraps++
		}
		prev = out
	}

	// Input wraps ten times per second, ratio 0.5 doubles that.
	if wraps < 19 || wraps > 21 {
		t.Fatalf("wraps = %d, want about 20", wraps)
	}
}

func TestDividerResetSnapsToInput(t *testing.T) {
	c := newTestCycle(t, 1000)
	d := NewDivider()

	for range 250 {
		d.Process(c.Process(10, false).Phase, 3, false, false, 0.1)
	}

	in := c.Process(10, false).Phase
	out := d.Process(in, 1, true, false, 0.1)

	// With ratio 1 a resync lands exactly on the input grid.
	if math.Abs(out-in) > 1e-9 {
		t.Fatalf("after reset output %v, want %v", out, in)
	}
}
