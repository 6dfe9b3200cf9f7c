package effects

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/delay"
	"github.com/cwbudde/algo-grain/dsp/event"
	"github.com/cwbudde/algo-grain/dsp/filter/onepole"
	"github.com/cwbudde/algo-grain/dsp/internal/fastmath"
	"github.com/cwbudde/algo-grain/dsp/trigger"
	"github.com/cwbudde/algo-grain/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

const (
	maxGrainDelayVoices = 16

	// MaxGrainDelaySeconds is the longest delay time the history buffer holds.
	MaxGrainDelaySeconds = 2.0

	grainDelayDCBlockHz = 3.0

	defaultGrainDelayTriggerRate = 20.0
	defaultGrainDelayOverlap     = 2.0
	defaultGrainDelayTime        = 0.25
	defaultGrainDelayGrainRate   = 1.0
	defaultGrainDelayMix         = 0.5
	defaultGrainDelayFeedback    = 0.3
	defaultGrainDelayDamping     = 0.2

	minGrainDelayTriggerRate = 0.1
	maxGrainDelayTriggerRate = 500.0
	minGrainDelayOverlap     = 0.001
	maxGrainDelayOverlap     = float64(maxGrainDelayVoices)
	minGrainDelayGrainRate   = 0.125
	maxGrainDelayGrainRate   = 4.0
	maxGrainDelayFeedback    = 0.99
)

// GrainDelayParams is the full per-sample parameter set of a GrainDelay.
//
// Values outside their range are clamped when the record enters the
// processor; NaN falls to the lower bound.
type GrainDelayParams struct {
	// TriggerRate is the grain onset rate in Hz, [0.1, 500].
	TriggerRate float64
	// Overlap is the number of simultaneously sounding grains, [0.001, 16].
	Overlap float64
	// DelayTime is the read offset behind the write head in seconds,
	// [1/sampleRate, 2].
	DelayTime float64
	// GrainRate is the playback speed inside a grain, [0.125, 4].
	GrainRate float64
	// Mix blends dry (0) and wet (1).
	Mix float64
	// Feedback is the damped wet level written back, [0, 0.99].
	Feedback float64
	// Damping is the one-pole coefficient of the feedback lowpass, [0, 1].
	Damping float64
	// Freeze stops writing so grains keep cycling over frozen history.
	Freeze bool
	// Reset releases every grain and restarts scheduling on a rising edge
	// through zero. The history buffer and filters keep their state.
	Reset float64
	// Window shapes each grain.
	Window window.Type
}

// DefaultGrainDelayParams returns the parameters a new GrainDelay starts with.
func DefaultGrainDelayParams() GrainDelayParams {
	return GrainDelayParams{
		TriggerRate: defaultGrainDelayTriggerRate,
		Overlap:     defaultGrainDelayOverlap,
		DelayTime:   defaultGrainDelayTime,
		GrainRate:   defaultGrainDelayGrainRate,
		Mix:         defaultGrainDelayMix,
		Feedback:    defaultGrainDelayFeedback,
		Damping:     defaultGrainDelayDamping,
		Window:      window.TypeHann,
	}
}

func (p GrainDelayParams) clamp(sampleRate float64) GrainDelayParams {
	p.TriggerRate = clampParam(p.TriggerRate, minGrainDelayTriggerRate, maxGrainDelayTriggerRate)
	p.Overlap = clampParam(p.Overlap, minGrainDelayOverlap, maxGrainDelayOverlap)
	p.DelayTime = clampParam(p.DelayTime, 1/sampleRate, MaxGrainDelaySeconds)
	p.GrainRate = clampParam(p.GrainRate, minGrainDelayGrainRate, maxGrainDelayGrainRate)
	p.Mix = clampParam(p.Mix, 0, 1)
	p.Feedback = clampParam(p.Feedback, 0, maxGrainDelayFeedback)
	p.Damping = clampParam(p.Damping, 0, 1)

	return p
}

// towards blends the continuous parameters of p into q by t. Discrete
// fields are taken from q.
func (p GrainDelayParams) towards(q GrainDelayParams, t float64) GrainDelayParams {
	q.TriggerRate = core.Lerp(t, p.TriggerRate, q.TriggerRate)
	q.Overlap = core.Lerp(t, p.Overlap, q.Overlap)
	q.DelayTime = core.Lerp(t, p.DelayTime, q.DelayTime)
	q.GrainRate = core.Lerp(t, p.GrainRate, q.GrainRate)
	q.Mix = core.Lerp(t, p.Mix, q.Mix)
	q.Feedback = core.Lerp(t, p.Feedback, q.Feedback)
	q.Damping = core.Lerp(t, p.Damping, q.Damping)

	return q
}

func clampParam(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return core.Clamp(v, lo, hi)
}

type grainVoice struct {
	readPos float64
	rate    float64
	count   float64
}

// GrainDelay is a granular delay: a periodic scheduler spawns grains that
// read the recent input history at a fixed delay behind the write head and
// play it back at their own speed under a window, with damped feedback into
// the history.
//
// Grain onsets come from an event.Cycle and are distributed over 16 voices by
// an event.Allocator, both with sub-sample accurate phases. Triggers that
// find no free voice are dropped.
//
// This processor is real-time safe (no per-sample allocations) and not
// thread-safe.
type GrainDelay struct {
	sampleRate float64
	blockSize  int
	logger     *slog.Logger

	params GrainDelayParams
	last   GrainDelayParams

	cycle     *event.Cycle
	alloc     *event.Allocator
	resetGate trigger.Level
	voices    [maxGrainDelayVoices]grainVoice

	ring    *delay.Ring
	damping onepole.OnePole
	dcBlock onepole.OnePole
	dcCoeff float64

	wet  []float64
	diff []float64
	mix  []float64
}

// NewGrainDelay creates a grain delay with practical defaults. The options
// supply the block size used by ProcessBlock and the logger.
func NewGrainDelay(sampleRate float64, opts ...core.ProcessorOption) (*GrainDelay, error) {
	if !core.ValidSampleRate(sampleRate) {
		return nil, fmt.Errorf("grain delay sample rate must be > 0: %f", sampleRate)
	}

	cfg := core.ApplyProcessorOptions(opts...)

	cycle, err := event.NewCycle(sampleRate)
	if err != nil {
		return nil, err
	}

	alloc, err := event.NewAllocator(maxGrainDelayVoices, sampleRate)
	if err != nil {
		return nil, err
	}

	ring, err := delay.NewRing(int(math.Ceil(MaxGrainDelaySeconds * sampleRate)))
	if err != nil {
		return nil, err
	}

	g := &GrainDelay{
		sampleRate: sampleRate,
		blockSize:  cfg.BlockSize,
		logger:     cfg.Logger,
		params:     DefaultGrainDelayParams().clamp(sampleRate),
		cycle:      cycle,
		alloc:      alloc,
		ring:       ring,
		dcCoeff:    onepole.Coefficient(grainDelayDCBlockHz, sampleRate),
		wet:        make([]float64, cfg.BlockSize),
		diff:       make([]float64, cfg.BlockSize),
		mix:        make([]float64, cfg.BlockSize),
	}
	g.last = g.params

	g.logger.Debug("grain delay ready",
		"sample_rate", sampleRate,
		"frames", ring.Frames(),
		"voices", maxGrainDelayVoices,
		"block_size", cfg.BlockSize)

	return g, nil
}

// SampleRate returns sample rate in Hz.
func (g *GrainDelay) SampleRate() float64 { return g.sampleRate }

// Params returns the current parameter set.
func (g *GrainDelay) Params() GrainDelayParams { return g.params }

// SetParams replaces the whole parameter set. Out-of-range values are clamped.
func (g *GrainDelay) SetParams(p GrainDelayParams) {
	g.params = p.clamp(g.sampleRate)
}

// SetTriggerRate sets the grain onset rate in [0.1, 500] Hz.
func (g *GrainDelay) SetTriggerRate(hz float64) error {
	if err := checkRange("grain delay trigger rate", hz, minGrainDelayTriggerRate, maxGrainDelayTriggerRate); err != nil {
		return err
	}

	g.params.TriggerRate = hz

	return nil
}

// SetOverlap sets the number of overlapping grains in [0.001, 16].
func (g *GrainDelay) SetOverlap(overlap float64) error {
	if err := checkRange("grain delay overlap", overlap, minGrainDelayOverlap, maxGrainDelayOverlap); err != nil {
		return err
	}

	g.params.Overlap = overlap

	return nil
}

// SetDelayTime sets the read delay in [1/sampleRate, 2] seconds.
func (g *GrainDelay) SetDelayTime(seconds float64) error {
	if err := checkRange("grain delay time", seconds, 1/g.sampleRate, MaxGrainDelaySeconds); err != nil {
		return err
	}

	g.params.DelayTime = seconds

	return nil
}

// SetGrainRate sets the in-grain playback speed in [0.125, 4].
func (g *GrainDelay) SetGrainRate(rate float64) error {
	if err := checkRange("grain delay grain rate", rate, minGrainDelayGrainRate, maxGrainDelayGrainRate); err != nil {
		return err
	}

	g.params.GrainRate = rate

	return nil
}

// SetMix sets wet/dry mix in [0, 1].
func (g *GrainDelay) SetMix(mix float64) error {
	if err := checkRange("grain delay mix", mix, 0, 1); err != nil {
		return err
	}

	g.params.Mix = mix

	return nil
}

// SetFeedback sets the feedback amount in [0, 0.99].
func (g *GrainDelay) SetFeedback(feedback float64) error {
	if err := checkRange("grain delay feedback", feedback, 0, maxGrainDelayFeedback); err != nil {
		return err
	}

	g.params.Feedback = feedback

	return nil
}

// SetDamping sets the feedback lowpass coefficient in [0, 1].
func (g *GrainDelay) SetDamping(damping float64) error {
	if err := checkRange("grain delay damping", damping, 0, 1); err != nil {
		return err
	}

	g.params.Damping = damping

	return nil
}

// SetFreeze stops or resumes writing to the history buffer.
func (g *GrainDelay) SetFreeze(freeze bool) { g.params.Freeze = freeze }

// SetWindow selects the grain window.
func (g *GrainDelay) SetWindow(t window.Type) { g.params.Window = t }

// ActiveGrains returns the number of sounding grains.
func (g *GrainDelay) ActiveGrains() int { return g.alloc.ActiveCount() }

// DroppedGrains returns how many grain onsets found no free voice since the
// last Reset or reset gate edge.
func (g *GrainDelay) DroppedGrains() uint64 { return g.alloc.Dropped() }

// Reset clears scheduler, voices, filters and the history buffer.
func (g *GrainDelay) Reset() {
	g.cycle.Reset()
	g.alloc.Reset()
	g.resetGate.Reset()

	for i := range g.voices {
		g.voices[i] = grainVoice{}
	}

	g.ring.Reset()
	g.damping.Reset()
	g.dcBlock.Reset()
	g.last = g.params
}

// ProcessSample processes one sample with the current parameters.
func (g *GrainDelay) ProcessSample(input float64) float64 {
	return g.ProcessSampleParams(input, g.params)
}

// ProcessSampleParams processes one sample with p instead of the stored
// parameters, for per-sample modulation.
func (g *GrainDelay) ProcessSampleParams(input float64, p GrainDelayParams) float64 {
	p = p.clamp(g.sampleRate)
	g.last = p

	return core.Lerp(p.Mix, input, g.tick(input, p))
}

// ProcessInPlace applies the grain delay to buf in place.
func (g *GrainDelay) ProcessInPlace(buf []float64) {
	g.ProcessBlock(buf, buf)
}

// ProcessBlock processes src into dst, which may alias. Parameter changes
// made since the previous block are ramped linearly across the block.
func (g *GrainDelay) ProcessBlock(dst, src []float64) {
	n := min(len(dst), len(src))

	for start := 0; start < n; start += g.blockSize {
		end := min(start+g.blockSize, n)
		g.processChunk(dst[start:end], src[start:end])
	}
}

func (g *GrainDelay) processChunk(dst, src []float64) {
	n := len(src)
	wet := g.wet[:n]
	diff := g.diff[:n]
	mix := g.mix[:n]

	from := g.last
	to := g.params.clamp(g.sampleRate)

	for i, x := range src {
		p := from.towards(to, float64(i+1)/float64(n))
		wet[i] = g.tick(x, p)
		mix[i] = p.Mix
	}

	g.last = to

	// dst = src + mix*(wet-src)
	vecmath.ScaleBlock(diff, src, -1)
	vecmath.AddBlockInPlace(diff, wet)
	vecmath.MulBlockInPlace(diff, mix)
	copy(dst, src)
	vecmath.AddBlockInPlace(dst, diff)
}

// tick advances scheduler, voices and history by one sample and returns the
// wet signal.
func (g *GrainDelay) tick(input float64, p GrainDelayParams) float64 {
	reset := g.resetGate.Process(p.Reset)
	if reset {
		g.alloc.Reset()
	}

	ev := g.cycle.Process(p.TriggerRate, reset)
	g.alloc.ProcessEvent(ev, ev.Rate/p.Overlap)

	frames := float64(g.ring.Frames())
	wet := 0.0

	for i := range g.voices {
		v := &g.voices[i]

		if g.alloc.Triggered(i) {
			delaySamples := math.Max(1, p.DelayTime*g.sampleRate)
			v.readPos = core.Frac((float64(g.ring.WritePos())-delaySamples)/frames) * frames
			v.rate = p.GrainRate
			v.count = ev.SubSampleOffset
		}

		if !g.alloc.Active(i) {
			continue
		}

		s := g.ring.ReadCubic(v.readPos + v.count*v.rate)
		wet += s * window.At(p.Window, g.alloc.Phase(i))
		v.count++
	}

	wet /= fastmath.Sqrt(math.Max(1, p.Overlap))

	damped := core.Zap(g.damping.Lowpass(wet, p.Damping))
	dc := core.Zap(g.dcBlock.Highpass(input, g.dcCoeff))

	if !p.Freeze {
		g.ring.Write(dc + damped*p.Feedback)
	}

	return wet
}

func checkRange(name string, v, lo, hi float64) error {
	if v < lo || v > hi || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be in [%g, %g]: %f", name, lo, hi, v)
	}
	return nil
}
