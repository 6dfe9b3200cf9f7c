// Command graindelay renders a WAV file (or a generated test signal) through
// the grain delay.
//
// Usage:
//
//	graindelay [flags]
//
// Examples:
//
//	graindelay -out grains.wav
//	graindelay -in voice.wav -out voice-grains.wav -rate 40 -overlap 4
//	graindelay -in loop.wav -freeze-at 2.5 -play
//	graindelay -preset cloud.json -automation sweep.lua -out cloud.wav
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cwbudde/algo-grain/dsp/effects"
	"github.com/cwbudde/algo-grain/dsp/window"
)

// logger is the package-wide structured logger. It is safe to use before
// initLogger runs.
var logger = slog.Default()

// initLogger installs a text handler on stderr and makes it the default.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

type options struct {
	in         string
	out        string
	sampleRate int
	seconds    float64
	blockSize  int
	freezeAt   float64
	preset     string
	automation string
	normalize  bool
	play       bool
	debug      bool

	params effects.GrainDelayParams
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	opts := options{params: effects.DefaultGrainDelayParams()}

	fs := flag.NewFlagSet("graindelay", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.in, "in", "", "input WAV file (default: generated test signal)")
	fs.StringVar(&opts.out, "out", "", "output WAV file")
	fs.IntVar(&opts.sampleRate, "sr", 48000, "sample rate for the generated test signal")
	fs.Float64Var(&opts.seconds, "seconds", 0, "render length in seconds (0: input length plus one second)")
	fs.IntVar(&opts.blockSize, "block", 256, "render block size in samples")
	fs.Float64Var(&opts.freezeAt, "freeze-at", -1, "engage freeze at this time in seconds (negative: never)")
	fs.StringVar(&opts.preset, "preset", "", "JSON preset applied before the parameter flags")
	fs.StringVar(&opts.automation, "automation", "", "Lua script evaluated once per block")
	fs.BoolVar(&opts.normalize, "normalize", false, "normalize the output peak to -0.1 dBFS")
	fs.BoolVar(&opts.play, "play", false, "play the result on the default audio device")
	fs.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	p := &opts.params
	rate := fs.Float64("rate", p.TriggerRate, "grain trigger rate in Hz")
	overlap := fs.Float64("overlap", p.Overlap, "grain overlap")
	delay := fs.Float64("delay", p.DelayTime, "delay time in seconds")
	grainRate := fs.Float64("grain-rate", p.GrainRate, "playback rate inside a grain")
	mix := fs.Float64("mix", p.Mix, "dry/wet mix")
	feedback := fs.Float64("feedback", p.Feedback, "feedback amount")
	damping := fs.Float64("damping", p.Damping, "feedback damping")
	win := fs.String("window", p.Window.String(), "grain window (hann, triangle, welch, tukey, rectangular)")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: graindelay [flags]\n\n")
		fmt.Fprintf(fs.Output(), "Renders audio through a grain delay.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if opts.preset != "" {
		preset, err := loadPreset(opts.preset, opts.params)
		if err != nil {
			return opts, err
		}
		opts.params = preset
	}

	// Explicit flags win over the preset.
	var werr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "rate":
			p.TriggerRate = *rate
		case "overlap":
			p.Overlap = *overlap
		case "delay":
			p.DelayTime = *delay
		case "grain-rate":
			p.GrainRate = *grainRate
		case "mix":
			p.Mix = *mix
		case "feedback":
			p.Feedback = *feedback
		case "damping":
			p.Damping = *damping
		case "window":
			p.Window, werr = window.Parse(*win)
		}
	})
	if werr != nil {
		return opts, werr
	}

	if opts.out == "" && !opts.play {
		return opts, errors.New("nothing to do: set -out or -play")
	}
	if opts.blockSize <= 0 {
		return opts, fmt.Errorf("block size must be > 0: %d", opts.blockSize)
	}

	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "graindelay: %v\n", err)
		os.Exit(2)
	}

	initLogger(opts.debug)

	if err := run(opts); err != nil {
		logger.Error("render failed", "err", err)
		os.Exit(1)
	}
}
