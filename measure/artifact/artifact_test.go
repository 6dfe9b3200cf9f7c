package artifact

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-grain/dsp/window"
	"github.com/cwbudde/algo-grain/internal/testutil"
)

func TestSpectrumPeakBin(t *testing.T) {
	const (
		n          = 1024
		sampleRate = 1024.0
	)

	power, err := Spectrum(testutil.Sine(64, sampleRate, 1, n))
	if err != nil {
		t.Fatalf("Spectrum() error = %v", err)
	}
	if len(power) != n/2+1 {
		t.Fatalf("len = %d, want %d", len(power), n/2+1)
	}

	peak := 0
	for k := range power {
		if power[k] > power[peak] {
			peak = k
		}
	}
	if peak != 64 {
		t.Fatalf("peak bin = %d, want 64", peak)
	}
}

func TestSpectrumRejectsEmpty(t *testing.T) {
	if _, err := Spectrum(nil); err == nil {
		t.Fatal("Spectrum(nil) expected error")
	}
}

func TestHighBandRatioSeparatesClicks(t *testing.T) {
	const sampleRate = 48000.0

	smooth := testutil.Sine(200, sampleRate, 1, 4096)
	window.Apply(window.TypeHann, smooth)

	clicky := testutil.Sine(200, sampleRate, 1, 4096)
	for i := range clicky {
		// Hard gating every 512 samples.
		if (i/256)%2 == 1 {
			clicky[i] = 0
		}
	}

	rs, err := HighBandRatio(smooth, sampleRate, 4000)
	if err != nil {
		t.Fatalf("HighBandRatio() error = %v", err)
	}
	rc, err := HighBandRatio(clicky, sampleRate, 4000)
	if err != nil {
		t.Fatalf("HighBandRatio() error = %v", err)
	}

	if rs > 1e-4 {
		t.Fatalf("smooth high-band ratio = %v", rs)
	}
	if rc <= 10*rs {
		t.Fatalf("gated high-band ratio %v not above smooth %v", rc, rs)
	}
}

func TestHighBandRatioSilence(t *testing.T) {
	r, err := HighBandRatio(make([]float64, 64), 48000, 1000)
	if err != nil || r != 0 {
		t.Fatalf("HighBandRatio(silence) = %v, %v", r, err)
	}

	if _, err := HighBandRatio([]float64{1}, 0, 1000); err == nil {
		t.Fatal("expected sample rate error")
	}
}

func TestMaxStep(t *testing.T) {
	step, at := MaxStep([]float64{0, 0.1, 0.2, 0.9, 1})
	if math.Abs(step-0.7) > 1e-12 || at != 3 {
		t.Fatalf("MaxStep = %v at %d, want 0.7 at 3", step, at)
	}

	if _, at := MaxStep([]float64{1}); at != -1 {
		t.Fatalf("MaxStep(short) index = %d, want -1", at)
	}
}
