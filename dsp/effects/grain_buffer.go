package effects

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/event"
	"github.com/cwbudde/algo-grain/dsp/internal/fastmath"
	"github.com/cwbudde/algo-grain/dsp/interp"
	"github.com/cwbudde/algo-grain/dsp/window"
)

// ErrBufferNotFound reports that the sample table a GrainBuffer points at
// could not be resolved on the last block.
var ErrBufferNotFound = errors.New("grain buffer not found")

// BufferSource resolves sample tables owned outside the processor. Lookup
// must not block; ok is false when id is unknown or not ready.
type BufferSource interface {
	Lookup(id int) (samples []float64, ok bool)
}

// MapSource is a BufferSource backed by a map. It is not safe for mutation
// while a processor renders from it.
type MapSource map[int][]float64

// Lookup implements BufferSource.
func (m MapSource) Lookup(id int) ([]float64, bool) {
	buf, ok := m[id]
	return buf, ok && len(buf) > 0
}

const (
	maxGrainBufferVoices = 16

	defaultGrainBufferTriggerRate = 20.0
	defaultGrainBufferOverlap     = 2.0
	defaultGrainBufferGrainRate   = 1.0
)

// GrainBufferParams controls buffer-driven grain playback.
type GrainBufferParams struct {
	// TriggerRate is the grain onset rate in Hz, [0.1, 500].
	TriggerRate float64
	// Overlap is the number of simultaneously sounding grains, [0.001, 16].
	Overlap float64
	// Position is the grain start inside the table, [0, 1].
	Position float64
	// GrainRate is the playback speed inside a grain, [0.125, 4].
	GrainRate float64
	// BufferID selects the table from the BufferSource.
	BufferID int
	// Window shapes each grain.
	Window window.Type
}

// DefaultGrainBufferParams returns the parameters a new GrainBuffer starts with.
func DefaultGrainBufferParams() GrainBufferParams {
	return GrainBufferParams{
		TriggerRate: defaultGrainBufferTriggerRate,
		Overlap:     defaultGrainBufferOverlap,
		GrainRate:   defaultGrainBufferGrainRate,
		Window:      window.TypeHann,
	}
}

func (p GrainBufferParams) clamp() GrainBufferParams {
	p.TriggerRate = clampParam(p.TriggerRate, minGrainDelayTriggerRate, maxGrainDelayTriggerRate)
	p.Overlap = clampParam(p.Overlap, minGrainDelayOverlap, float64(maxGrainBufferVoices))
	p.Position = clampParam(p.Position, 0, 1)
	p.GrainRate = clampParam(p.GrainRate, minGrainDelayGrainRate, maxGrainDelayGrainRate)

	return p
}

type bufferVoice struct {
	start float64
	rate  float64
	count float64
}

// GrainBuffer plays grains from an externally owned sample table.
//
// The table is resolved once per block. When the lookup fails the block is
// silent, grain timing keeps running and the failure is logged once until
// the table resolves again.
//
// This processor is real-time safe (no per-sample allocations) and not
// thread-safe.
type GrainBuffer struct {
	sampleRate float64
	logger     *slog.Logger
	source     BufferSource
	params     GrainBufferParams

	cycle  *event.Cycle
	alloc  *event.Allocator
	voices [maxGrainBufferVoices]bufferVoice
	latch  *core.FailureLatch
}

// NewGrainBuffer creates a grain player reading tables from source.
func NewGrainBuffer(sampleRate float64, source BufferSource, opts ...core.ProcessorOption) (*GrainBuffer, error) {
	if !core.ValidSampleRate(sampleRate) {
		return nil, fmt.Errorf("grain buffer sample rate must be > 0: %f", sampleRate)
	}

	if source == nil {
		return nil, errors.New("grain buffer source must not be nil")
	}

	cfg := core.ApplyProcessorOptions(opts...)

	cycle, err := event.NewCycle(sampleRate)
	if err != nil {
		return nil, err
	}

	alloc, err := event.NewAllocator(maxGrainBufferVoices, sampleRate)
	if err != nil {
		return nil, err
	}

	g := &GrainBuffer{
		sampleRate: sampleRate,
		logger:     cfg.Logger,
		source:     source,
		params:     DefaultGrainBufferParams(),
		cycle:      cycle,
		alloc:      alloc,
	}
	g.latch = g.newLatch()

	return g, nil
}

func (g *GrainBuffer) newLatch() *core.FailureLatch {
	return core.NewFailureLatch(g.logger, "grain buffer lookup failed", "buffer", g.params.BufferID)
}

// SampleRate returns sample rate in Hz.
func (g *GrainBuffer) SampleRate() float64 { return g.sampleRate }

// Params returns the current parameter set.
func (g *GrainBuffer) Params() GrainBufferParams { return g.params }

// SetParams replaces the parameter set. Out-of-range values are clamped.
// Switching to another buffer id re-arms failure logging.
func (g *GrainBuffer) SetParams(p GrainBufferParams) {
	p = p.clamp()
	changed := p.BufferID != g.params.BufferID
	g.params = p

	if changed {
		g.latch = g.newLatch()
	}
}

// Err returns ErrBufferNotFound while the current table cannot be resolved.
func (g *GrainBuffer) Err() error {
	if g.latch.Failed() {
		return fmt.Errorf("%w: id %d", ErrBufferNotFound, g.params.BufferID)
	}
	return nil
}

// ActiveGrains returns the number of sounding grains.
func (g *GrainBuffer) ActiveGrains() int { return g.alloc.ActiveCount() }

// Reset clears scheduler and voice state.
func (g *GrainBuffer) Reset() {
	g.cycle.Reset()
	g.alloc.Reset()

	for i := range g.voices {
		g.voices[i] = bufferVoice{}
	}

	g.latch.Reset()
}

// ProcessBlock renders len(dst) samples of grain output.
func (g *GrainBuffer) ProcessBlock(dst []float64) {
	table, ok := g.source.Lookup(g.params.BufferID)
	ok = ok && len(table) > 0
	g.latch.Report(ok)

	if !ok {
		table = nil
	}

	gain := 1 / fastmath.Sqrt(math.Max(1, g.params.Overlap))
	for i := range dst {
		dst[i] = g.tick(table) * gain
	}
}

func (g *GrainBuffer) tick(table []float64) float64 {
	p := g.params
	ev := g.cycle.Process(p.TriggerRate, false)
	g.alloc.ProcessEvent(ev, ev.Rate/p.Overlap)

	out := 0.0

	for i := range g.voices {
		v := &g.voices[i]

		if g.alloc.Triggered(i) {
			v.start = p.Position * float64(max(len(table)-1, 0))
			v.rate = p.GrainRate
			v.count = ev.SubSampleOffset
		}

		if !g.alloc.Active(i) {
			continue
		}

		if table != nil {
			s := readWrapped(table, v.start+v.count*v.rate)
			out += s * window.At(p.Window, g.alloc.Phase(i))
		}

		v.count++
	}

	return out
}

// readWrapped reads table at fractional pos, wrapping at both ends.
func readWrapped(table []float64, pos float64) float64 {
	n := len(table)
	fl := math.Floor(pos)
	i := int(fl) % n
	if i < 0 {
		i += n
	}

	return interp.Linear2(pos-fl, table[i], table[(i+1)%n])
}
