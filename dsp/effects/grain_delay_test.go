package effects

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/window"
	"github.com/cwbudde/algo-grain/internal/testutil"
	"github.com/cwbudde/algo-grain/measure/artifact"
)

func newTestGrainDelay(t *testing.T, opts ...core.ProcessorOption) *GrainDelay {
	t.Helper()
	g, err := NewGrainDelay(48000, opts...)
	if err != nil {
		t.Fatalf("NewGrainDelay() error = %v", err)
	}
	return g
}

func TestNewGrainDelayRejectsInvalidSampleRate(t *testing.T) {
	invalid := []float64{0, -1, math.NaN(), math.Inf(1)}
	for _, sampleRate := range invalid {
		if _, err := NewGrainDelay(sampleRate); err == nil {
			t.Fatalf("NewGrainDelay(%v) expected error", sampleRate)
		}
	}
}

func TestGrainDelayBufferSize(t *testing.T) {
	g := newTestGrainDelay(t)
	if g.ring.Frames() != 131072 {
		t.Fatalf("frames = %d, want 131072", g.ring.Frames())
	}
}

func TestGrainDelaySetterValidation(t *testing.T) {
	g := newTestGrainDelay(t)

	tests := []struct {
		name string
		set  func(float64) error
		good float64
		bad  []float64
	}{
		{"trigger rate", g.SetTriggerRate, 50, []float64{0.05, 501, math.NaN()}},
		{"overlap", g.SetOverlap, 4, []float64{0, 17, math.Inf(1)}},
		{"delay", g.SetDelayTime, 0.5, []float64{0, 2.5}},
		{"grain rate", g.SetGrainRate, 2, []float64{0.1, 5}},
		{"mix", g.SetMix, 0.3, []float64{-0.1, 1.1}},
		{"feedback", g.SetFeedback, 0.5, []float64{-0.1, 1}},
		{"damping", g.SetDamping, 0.9, []float64{-0.1, 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.set(tt.good); err != nil {
				t.Fatalf("set(%v) error = %v", tt.good, err)
			}
			for _, v := range tt.bad {
				if err := tt.set(v); err == nil {
					t.Fatalf("set(%v) expected error", v)
				}
			}
		})
	}

	p := g.Params()
	if p.TriggerRate != 50 || p.Overlap != 4 || p.Feedback != 0.5 {
		t.Fatalf("params after setters = %+v", p)
	}
}

func TestGrainDelayParamsClamp(t *testing.T) {
	p := GrainDelayParams{
		TriggerRate: 1e6,
		Overlap:     math.NaN(),
		DelayTime:   0,
		GrainRate:   100,
		Mix:         -3,
		Feedback:    2,
		Damping:     5,
	}.clamp(48000)

	want := GrainDelayParams{
		TriggerRate: 500,
		Overlap:     0.001,
		DelayTime:   1.0 / 48000,
		GrainRate:   4,
		Mix:         0,
		Feedback:    0.99,
		Damping:     1,
	}
	if p != want {
		t.Fatalf("clamp() = %+v, want %+v", p, want)
	}
}

func TestGrainDelayDryWhenMixZero(t *testing.T) {
	g := newTestGrainDelay(t)
	if err := g.SetMix(0); err != nil {
		t.Fatal(err)
	}

	in := testutil.Sine(440, 48000, 1, 2048)
	for i, x := range in {
		if got := g.ProcessSample(x); got != x {
			t.Fatalf("sample %d: got %v, want dry %v", i, got, x)
		}
	}
}

func TestGrainDelayOverlapGainCompensation(t *testing.T) {
	const sampleRate = 48000.0

	// Hann grains at overlap k sum to k/2 (k >= 2), 1/sqrt(k) scales that
	// to sqrt(k)/2. A single grain peaks at 1.
	tests := []struct {
		overlap float64
		want    float64
	}{
		{overlap: 1, want: 1},
		{overlap: 2, want: math.Sqrt2 / 2},
		{overlap: 4, want: 1},
	}

	for _, tt := range tests {
		g := newTestGrainDelay(t)
		g.SetParams(GrainDelayParams{
			TriggerRate: 50,
			Overlap:     tt.overlap,
			DelayTime:   0.1,
			GrainRate:   1,
			Mix:         1,
			Window:      window.TypeHann,
		})

		out := testutil.Sine(1000, sampleRate, 1, int(sampleRate))
		g.ProcessInPlace(out)

		steady := testutil.Peak(out[len(out)/2:])
		if math.Abs(steady-tt.want) > 0.1*tt.want {
			t.Fatalf("overlap %v: steady peak %v, want about %v", tt.overlap, steady, tt.want)
		}
		if g.DroppedGrains() != 0 {
			t.Fatalf("overlap %v: DroppedGrains() = %d, want 0", tt.overlap, g.DroppedGrains())
		}
	}
}

func TestGrainDelayHannGrainsAreClickFree(t *testing.T) {
	const sampleRate = 48000.0

	g := newTestGrainDelay(t)
	g.SetParams(GrainDelayParams{
		TriggerRate: 37,
		Overlap:     2,
		DelayTime:   0.1,
		GrainRate:   1,
		Mix:         1,
		Window:      window.TypeHann,
	})

	out := testutil.Sine(100, sampleRate, 1, int(sampleRate))
	g.ProcessInPlace(out)
	steady := out[len(out)/2:]

	// Phase-aligned Hann grains at overlap 2 sum to a constant envelope.
	if step, at := artifact.MaxStep(steady); step > 0.02 {
		t.Fatalf("max step %v at %d, want a smooth sine", step, at)
	}

	ratio, err := artifact.HighBandRatio(steady, sampleRate, 1000)
	if err != nil {
		t.Fatalf("HighBandRatio() error = %v", err)
	}
	if ratio > 1e-4 {
		t.Fatalf("energy above 1 kHz = %v, want < 1e-4", ratio)
	}
}

func TestGrainDelayActiveGrainsBounded(t *testing.T) {
	g := newTestGrainDelay(t)
	g.SetParams(GrainDelayParams{
		TriggerRate: 400,
		Overlap:     16,
		DelayTime:   0.05,
		GrainRate:   2,
		Mix:         1,
		Feedback:    0.9,
	})

	in := testutil.Sine(220, 48000, 1, 24000)
	out := make([]float64, len(in))
	for i, x := range in {
		out[i] = g.ProcessSample(x)
		if n := g.ActiveGrains(); n > maxGrainDelayVoices {
			t.Fatalf("ActiveGrains() = %d exceeds voices", n)
		}
	}
	testutil.RequireFinite(t, out)
}

func TestGrainDelayFreezeHoldsHistory(t *testing.T) {
	newRunner := func() *GrainDelay {
		g := newTestGrainDelay(t)
		g.SetParams(GrainDelayParams{
			TriggerRate: 40,
			Overlap:     2,
			DelayTime:   0.1,
			GrainRate:   1,
			Mix:         1,
		})
		return g
	}

	frozen := newRunner()
	live := newRunner()

	in := testutil.Sine(500, 48000, 1, 24000)
	for _, x := range in {
		frozen.ProcessSample(x)
		live.ProcessSample(x)
	}

	frozen.SetFreeze(true)
	cursor := frozen.ring.WritePos()

	var frozenTail, liveTail []float64
	for range 48000 {
		frozenTail = append(frozenTail, frozen.ProcessSample(0))
		liveTail = append(liveTail, live.ProcessSample(0))
	}

	if frozen.ring.WritePos() != cursor {
		t.Fatalf("write cursor moved while frozen: %d -> %d", cursor, frozen.ring.WritePos())
	}
	if got := testutil.Peak(frozenTail[24000:]); got < 0.1 {
		t.Fatalf("frozen tail peak = %v, want sustained output", got)
	}
	if got := testutil.Peak(liveTail[24000:]); got > 1e-3 {
		t.Fatalf("live tail peak = %v, want silence", got)
	}
}

func TestGrainDelayResetRestoresState(t *testing.T) {
	g := newTestGrainDelay(t)
	if err := g.SetFeedback(0.6); err != nil {
		t.Fatal(err)
	}

	in := testutil.Sine(330, 48000, 1, 8192)

	out1 := make([]float64, len(in))
	for i := range in {
		out1[i] = g.ProcessSample(in[i])
	}

	g.Reset()

	out2 := make([]float64, len(in))
	for i := range in {
		out2[i] = g.ProcessSample(in[i])
	}

	for i := range out1 {
		if out1[i] != out2[i] {
			t.Fatalf("sample %d after Reset: got %v want %v", i, out2[i], out1[i])
		}
	}
}

func TestGrainDelayResetGateRestartsScheduler(t *testing.T) {
	g := newTestGrainDelay(t)

	p := DefaultGrainDelayParams()
	p.TriggerRate = 1
	p.Overlap = 0.5

	// The first grain lasts half a second.
	for range 30000 {
		g.ProcessSampleParams(0, p)
	}
	if g.ActiveGrains() != 0 {
		t.Fatalf("ActiveGrains() = %d before gate, want 0", g.ActiveGrains())
	}

	p.Reset = 1
	g.ProcessSampleParams(0, p)
	if g.ActiveGrains() != 1 {
		t.Fatalf("ActiveGrains() = %d after gate, want 1", g.ActiveGrains())
	}

	// A held gate does not retrigger.
	for range 100 {
		g.ProcessSampleParams(0, p)
	}
	if g.ActiveGrains() != 1 {
		t.Fatalf("ActiveGrains() = %d with held gate, want 1", g.ActiveGrains())
	}
}

func TestGrainDelayResetGateReleasesGrains(t *testing.T) {
	g := newTestGrainDelay(t)

	p := DefaultGrainDelayParams()
	p.TriggerRate = 1
	p.Overlap = 4

	// Four second grains, one per second.
	for range 120000 {
		g.ProcessSampleParams(0, p)
	}
	if g.ActiveGrains() != 3 {
		t.Fatalf("ActiveGrains() = %d before gate, want 3", g.ActiveGrains())
	}

	p.Reset = 1
	g.ProcessSampleParams(0, p)
	if g.ActiveGrains() != 1 {
		t.Fatalf("ActiveGrains() = %d after gate, want 1", g.ActiveGrains())
	}
}

func TestGrainDelayRecoversFromNonFiniteInput(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1)} {
		g := newTestGrainDelay(t)
		g.SetParams(GrainDelayParams{
			TriggerRate: 40,
			Overlap:     2,
			DelayTime:   0.1,
			GrainRate:   1,
			Mix:         1,
			Feedback:    0.5,
			Damping:     0.2,
		})

		in := testutil.Sine(440, 48000, 0.5, 48000)
		for _, x := range in[:4800] {
			g.ProcessSample(x)
		}

		g.ProcessSample(bad)

		out := make([]float64, len(in)-4800)
		for i, x := range in[4800:] {
			out[i] = g.ProcessSample(x)
		}

		testutil.RequireFinite(t, out)
		if got := testutil.Peak(out[len(out)/2:]); got < 0.05 {
			t.Fatalf("input %v: output peak = %v, want grains to keep playing", bad, got)
		}
		if s := g.damping.State(); math.IsNaN(s) || math.IsInf(s, 0) {
			t.Fatalf("input %v: damping state = %v", bad, s)
		}
		if s := g.dcBlock.State(); math.IsNaN(s) || math.IsInf(s, 0) {
			t.Fatalf("input %v: dc blocker state = %v", bad, s)
		}
	}
}

func TestGrainDelayProcessBlockMatchesSample(t *testing.T) {
	for _, blockSize := range []int{1, 64, 100} {
		g1 := newTestGrainDelay(t)
		g2 := newTestGrainDelay(t, core.WithBlockSize(blockSize))

		in := testutil.Sine(220, 48000, 1, 3000)

		want := make([]float64, len(in))
		for i := range in {
			want[i] = g1.ProcessSample(in[i])
		}

		got := make([]float64, len(in))
		g2.ProcessBlock(got, in)

		testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
	}
}

func TestGrainDelayProcessBlockRampsParameters(t *testing.T) {
	g := newTestGrainDelay(t, core.WithBlockSize(8))
	if err := g.SetMix(0); err != nil {
		t.Fatal(err)
	}

	in := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	out := make([]float64, len(in))
	g.ProcessBlock(out, in)

	// With mix ramping 0 -> 1 the dry share falls over the block.
	if err := g.SetMix(1); err != nil {
		t.Fatal(err)
	}
	g.ProcessBlock(out, in)

	if math.Abs(out[len(out)-1]-g.wet[len(out)-1]) > 1e-12 {
		t.Fatalf("last sample %v, want fully wet %v", out[len(out)-1], g.wet[len(out)-1])
	}
	if out[0] == g.wet[0] {
		t.Fatalf("first sample already fully wet: %v", out[0])
	}
}

func BenchmarkGrainDelayProcessBlock(b *testing.B) {
	g, err := NewGrainDelay(48000, core.WithBlockSize(256))
	if err != nil {
		b.Fatal(err)
	}
	g.SetParams(GrainDelayParams{TriggerRate: 100, Overlap: 8, DelayTime: 0.2, GrainRate: 1.5, Mix: 0.5, Feedback: 0.5})

	buf := testutil.Sine(440, 48000, 1, 256)

	b.ReportAllocs()
	for b.Loop() {
		g.ProcessInPlace(buf)
	}
}
