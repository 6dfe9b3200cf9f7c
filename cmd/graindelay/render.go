package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/effects"
	"github.com/cwbudde/algo-grain/dsp/signal"
	"github.com/cwbudde/algo-grain/internal/automation"
	"github.com/cwbudde/algo-grain/internal/wavio"
	"golang.org/x/term"
)

const normalizePeak = 0.9886 // -0.1 dBFS

func run(opts options) error {
	in, sampleRate, err := loadInput(opts)
	if err != nil {
		return err
	}

	var script *automation.Script
	if opts.automation != "" {
		script, err = automation.Load(opts.automation)
		if err != nil {
			return err
		}
		defer script.Close()
	}

	n := len(in) + sampleRate
	if opts.seconds > 0 {
		n = int(opts.seconds * float64(sampleRate))
	}

	g, err := effects.NewGrainDelay(float64(sampleRate),
		core.WithBlockSize(opts.blockSize),
		core.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	var progress io.Writer
	if term.IsTerminal(int(os.Stderr.Fd())) {
		progress = os.Stderr
	}

	out, err := render(g, in, n, opts, script, progress)
	if err != nil {
		return err
	}

	logger.Info("rendered",
		"samples", len(out),
		"sample_rate", sampleRate,
		"dropped_grains", g.DroppedGrains(),
	)

	if opts.normalize {
		out, err = signal.Normalize(out, normalizePeak)
		if err != nil {
			return err
		}
	}

	if opts.out != "" {
		if err := wavio.WriteMono(opts.out, out, sampleRate); err != nil {
			return err
		}
		logger.Debug("wrote output", "path", opts.out)
	}

	if opts.play {
		return play(out, sampleRate)
	}
	return nil
}

// loadInput reads -in or generates a test signal: a short tone followed by
// a click train, which makes grain timing audible.
func loadInput(opts options) ([]float64, int, error) {
	if opts.in != "" {
		data, sampleRate, err := wavio.ReadMono(opts.in)
		if err != nil {
			return nil, 0, err
		}
		logger.Debug("read input", "path", opts.in, "samples", len(data), "sample_rate", sampleRate)
		return data, sampleRate, nil
	}

	if opts.sampleRate <= 0 {
		return nil, 0, fmt.Errorf("sample rate must be > 0: %d", opts.sampleRate)
	}

	gen := signal.NewGenerator(core.WithSampleRate(float64(opts.sampleRate)))
	n := 2 * opts.sampleRate

	tone, err := gen.Sine(330, 0.5, n/4)
	if err != nil {
		return nil, 0, err
	}
	clicks, err := gen.Clicks(3, 0.8, n)
	if err != nil {
		return nil, 0, err
	}
	for i, x := range tone {
		clicks[i] += x
	}

	return clicks, opts.sampleRate, nil
}

// render processes n samples of in (zero-padded) in blocks. Automation and
// the freeze time are evaluated at each block start; GrainDelay ramps the
// parameters across the block.
func render(g *effects.GrainDelay, in []float64, n int, opts options, script *automation.Script, progress io.Writer) ([]float64, error) {
	src := make([]float64, n)
	copy(src, in)
	out := make([]float64, n)

	sampleRate := g.SampleRate()
	blocks := (n + opts.blockSize - 1) / opts.blockSize
	lastPct := -1

	for b := range blocks {
		start := b * opts.blockSize
		end := min(start+opts.blockSize, n)
		t := float64(start) / sampleRate

		p := opts.params
		if script != nil {
			var err error
			p, err = script.At(t, p)
			if err != nil {
				return nil, err
			}
		}
		if opts.freezeAt >= 0 && t >= opts.freezeAt {
			p.Freeze = true
		}

		g.SetParams(p)
		g.ProcessBlock(out[start:end], src[start:end])

		if progress != nil {
			if pct := 100 * (b + 1) / blocks; pct != lastPct {
				fmt.Fprintf(progress, "\rrendering %3d%%", pct)
				lastPct = pct
			}
		}
	}

	if progress != nil {
		fmt.Fprintln(progress)
	}

	return out, nil
}
