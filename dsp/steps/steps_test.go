package steps

import (
	"math"
	"math/rand"
	"testing"
)

// clock returns the phase of a ramp with the given period in samples.
func clock(n, period int) float64 {
	return float64(n%period) / float64(period)
}

type fixedRand struct {
	f float64
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) Intn(int) int     { return 0 }

func TestConstructorsRejectNilRand(t *testing.T) {
	if _, err := NewStep(nil); err == nil {
		t.Fatal("NewStep(nil) expected error")
	}
	if _, err := NewWalk(nil); err == nil {
		t.Fatal("NewWalk(nil) expected error")
	}
	if _, err := NewRegister(nil); err == nil {
		t.Fatal("NewRegister(nil) expected error")
	}
	if _, err := NewShiftRegister(nil); err == nil {
		t.Fatal("NewShiftRegister(nil) expected error")
	}
	if _, err := NewUrn(nil); err == nil {
		t.Fatal("NewUrn(nil) expected error")
	}
}

func TestStepChangesOnlyOnWrap(t *testing.T) {
	s, err := NewStep(rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewStep() error = %v", err)
	}

	var prev float64
	for n := range 200 {
		v := s.Process(clock(n, 20), false)
		if v < 0 || v >= 1 {
			t.Fatalf("sample %d: value %v out of range", n, v)
		}
		if n%20 != 0 && v != prev {
			t.Fatalf("sample %d: value changed between wraps", n)
		}
		prev = v
	}
}

func TestStepDeterministicWithSeed(t *testing.T) {
	a, _ := NewStep(rand.New(rand.NewSource(42)))
	b, _ := NewStep(rand.New(rand.NewSource(42)))

	for n := range 500 {
		phase := clock(n, 16)
		if va, vb := a.Process(phase, true), b.Process(phase, true); va != vb {
			t.Fatalf("sample %d: %v != %v", n, va, vb)
		}
	}
}

func TestStepSmoothIsContinuous(t *testing.T) {
	s, _ := NewStep(rand.New(rand.NewSource(3)))

	prev := s.Process(clock(0, 100), true)
	for n := 1; n < 1000; n++ {
		v := s.Process(clock(n, 100), true)
		if math.Abs(v-prev) > 0.05 {
			t.Fatalf("sample %d: jump %v", n, v-prev)
		}
		prev = v
	}
}

func TestWalkStaysInUnitRange(t *testing.T) {
	w, _ := NewWalk(rand.New(rand.NewSource(5)))

	for n := range 5000 {
		v := w.Process(clock(n, 4), 1, false)
		if v < 0 || v > 1 {
			t.Fatalf("sample %d: walk %v out of range", n, v)
		}
	}
}

func TestWalkZeroStepHolds(t *testing.T) {
	w, _ := NewWalk(rand.New(rand.NewSource(9)))

	first := w.Process(0, 0, false)
	for n := 1; n < 100; n++ {
		if v := w.Process(clock(n, 10), 0, false); v != first {
			t.Fatalf("sample %d: %v, want held %v", n, v, first)
		}
	}
}

func TestUrnDrawsPermutations(t *testing.T) {
	const size = 8

	for _, chance := range []float64{0, 0.5, 1} {
		u, _ := NewUrn(rand.New(rand.NewSource(11)))

		var cards []int
		for n := range 10 * size * 10 {
			v := u.Process(clock(n, 10), chance, size, false)
			if n%10 == 0 {
				cards = append(cards, int(math.Round(v*(size-1))))
			}
		}

		for pass := 0; pass+size <= len(cards); pass += size {
			seen := map[int]bool{}
			for _, c := range cards[pass : pass+size] {
				seen[c] = true
			}
			if len(seen) != size {
				t.Fatalf("chance %v pass %d not a permutation: %v", chance, pass/size, cards[pass:pass+size])
			}
		}

		for i := 1; i < len(cards); i++ {
			if cards[i] == cards[i-1] {
				t.Fatalf("chance %v: repeated card %d at draw %d", chance, cards[i], i)
			}
		}
	}
}

func TestUrnResetReshuffles(t *testing.T) {
	u, _ := NewUrn(rand.New(rand.NewSource(2)))

	u.Process(0, 0, 4, false)
	if u.Process(0.5, 0, 4, true) != 0 {
		t.Fatal("output after reset without draw should be 0")
	}
	if u.size != 4 || !u.ready {
		t.Fatalf("deck not rebuilt after reset: size %d", u.size)
	}
}
