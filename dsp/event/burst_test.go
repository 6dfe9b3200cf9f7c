package event

import (
	"math"
	"testing"
)

func newTestBurst(t *testing.T, sampleRate float64) *Burst {
	t.Helper()
	b, err := NewBurst(sampleRate)
	if err != nil {
		t.Fatalf("NewBurst() error = %v", err)
	}
	return b
}

func TestNewBurstRejectsInvalidSampleRate(t *testing.T) {
	if _, err := NewBurst(0); err == nil {
		t.Fatal("NewBurst(0) expected error")
	}
}

func TestBurstIdleUntilInit(t *testing.T) {
	b := newTestBurst(t, 1000)

	for range 50 {
		if ev := b.Process(false, 0.01, 3); ev != (Event{}) {
			t.Fatalf("idle burst emitted %+v", ev)
		}
	}
	if b.Running() {
		t.Fatal("Running() = true before init")
	}
}

func TestBurstEmitsExactCycleCount(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		cycles   int
	}{
		{name: "three", duration: 0.01, cycles: 3},
		{name: "one", duration: 0.007, cycles: 1},
		{name: "zero counts as one", duration: 0.005, cycles: 0},
		{name: "eight", duration: 0.0033, cycles: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBurst(t, 1000)

			want := max(tt.cycles, 1)
			got := 0
			for n := range 1000 {
				ev := b.Process(n == 0, tt.duration, tt.cycles)
				if ev.Trigger {
					got++
					if ev.SubSampleOffset < 0 || ev.SubSampleOffset > 1 {
						t.Fatalf("offset %v out of range", ev.SubSampleOffset)
					}
				}
				if ev.Phase < 0 || ev.Phase >= 1 {
					t.Fatalf("phase %v out of range", ev.Phase)
				}
			}

			if got != want {
				t.Fatalf("triggers = %d, want %d", got, want)
			}
			if b.Progress() != float64(want) {
				t.Fatalf("Progress() = %v, want %d", b.Progress(), want)
			}
		})
	}
}

func TestBurstTriggerSpacing(t *testing.T) {
	b := newTestBurst(t, 1000)

	var idx []int
	for n := range 200 {
		if b.Process(n == 0, 0.0125, 4).Trigger {
			idx = append(idx, n)
		}
	}

	if len(idx) != 4 {
		t.Fatalf("triggers at %v, want 4", idx)
	}
	for i := 1; i < len(idx); i++ {
		if d := idx[i] - idx[i-1]; d < 12 || d > 13 {
			t.Fatalf("interval %d = %d samples, want about 12.5", i, d)
		}
	}
}

func TestBurstReinitRepeats(t *testing.T) {
	b := newTestBurst(t, 1000)

	count := func(init bool) int {
		n := 0
		for i := range 100 {
			if b.Process(init && i == 0, 0.01, 2).Trigger {
				n++
			}
		}
		return n
	}

	if got := count(true); got != 2 {
		t.Fatalf("first burst triggers = %d, want 2", got)
	}
	if got := count(false); got != 0 {
		t.Fatalf("finished burst triggers = %d, want 0", got)
	}
	if got := count(true); got != 2 {
		t.Fatalf("second burst triggers = %d, want 2", got)
	}
}

func TestBurstRateFollowsDuration(t *testing.T) {
	b := newTestBurst(t, 48000)

	ev := b.Process(true, 0.02, 4)
	if math.Abs(ev.Rate-50) > 1e-9 {
		t.Fatalf("rate = %v, want 50", ev.Rate)
	}

	b.Reset()
	if b.Running() || b.Progress() != 0 {
		t.Fatal("Reset() did not return to idle")
	}
}
