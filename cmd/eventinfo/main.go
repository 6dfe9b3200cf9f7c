// Command eventinfo prints the trigger timeline of an event scheduler and
// the voice slots an allocator assigns to it.
//
// Usage:
//
//	eventinfo [flags] [cycle|burst]
//
// Without arguments it prints a cycle timeline.
//
// Examples:
//
//	eventinfo -rate 1234.5
//	eventinfo -sr 44100 -rate 20 -overlap 4 -voices 2
//	eventinfo -cycles 5 -duration 0.01 burst
//	eventinfo -all -samples 32 -rate 3000
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-grain/dsp/event"
	"github.com/cwbudde/algo-grain/measure/timing"
)

type config struct {
	source     string
	sampleRate float64
	rate       float64
	duration   float64
	cycles     int
	voices     int
	overlap    float64
	samples    int
	all        bool
}

// row is one printed sample of the timeline.
type row struct {
	index int
	ev    event.Event
	slot  int
	busy  int
}

func main() {
	var cfg config
	flag.Float64Var(&cfg.sampleRate, "sr", 48000, "sample rate in Hz")
	flag.Float64Var(&cfg.rate, "rate", 1000, "cycle trigger rate in Hz")
	flag.Float64Var(&cfg.duration, "duration", 0.001, "burst event duration in seconds")
	flag.IntVar(&cfg.cycles, "cycles", 4, "burst event count")
	flag.IntVar(&cfg.voices, "voices", 4, "allocator voice count")
	flag.Float64Var(&cfg.overlap, "overlap", 2, "voice length in trigger periods")
	flag.IntVar(&cfg.samples, "samples", 480, "number of samples to simulate")
	flag.BoolVar(&cfg.all, "all", false, "print every sample, not only triggers")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: eventinfo [flags] [cycle|burst]\n\n")
		fmt.Fprintf(os.Stderr, "Prints scheduler triggers, sub-sample offsets and voice slots.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  eventinfo -rate 1234.5\n")
		fmt.Fprintf(os.Stderr, "  eventinfo -cycles 5 -duration 0.01 burst\n")
	}
	flag.Parse()

	cfg.source = "cycle"
	switch flag.NArg() {
	case 0:
	case 1:
		cfg.source = flag.Arg(0)
	default:
		flag.Usage()
		os.Exit(2)
	}

	rows, dropped, stats, err := simulate(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := printTimeline(os.Stdout, rows, cfg.all); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to write timeline: %v\n", err)
		os.Exit(1)
	}
	printSummary(os.Stdout, stats, dropped)
}

// simulate runs the configured scheduler and allocator for cfg.samples
// samples.
func simulate(cfg config) ([]row, uint64, timing.Stats, error) {
	if cfg.samples <= 0 {
		return nil, 0, timing.Stats{}, fmt.Errorf("samples must be > 0: %d", cfg.samples)
	}
	if cfg.overlap <= 0 {
		return nil, 0, timing.Stats{}, fmt.Errorf("overlap must be > 0: %f", cfg.overlap)
	}

	next, err := newSource(cfg)
	if err != nil {
		return nil, 0, timing.Stats{}, err
	}

	alloc, err := event.NewAllocator(cfg.voices, cfg.sampleRate)
	if err != nil {
		return nil, 0, timing.Stats{}, err
	}

	events := make([]event.Event, cfg.samples)
	rows := make([]row, cfg.samples)
	for n := range events {
		ev := next(n)
		events[n] = ev
		rows[n] = row{
			index: n,
			ev:    ev,
			slot:  alloc.ProcessEvent(ev, ev.Rate/cfg.overlap),
			busy:  alloc.ActiveCount(),
		}
	}

	return rows, alloc.Dropped(), timing.Analyze(events), nil
}

func newSource(cfg config) (func(n int) event.Event, error) {
	switch cfg.source {
	case "cycle":
		c, err := event.NewCycle(cfg.sampleRate)
		if err != nil {
			return nil, err
		}
		rate := event.ClampRate(cfg.rate, cfg.sampleRate)
		return func(int) event.Event { return c.Process(rate, false) }, nil
	case "burst":
		b, err := event.NewBurst(cfg.sampleRate)
		if err != nil {
			return nil, err
		}
		duration := max(cfg.duration, event.MinBurstDuration)
		return func(n int) event.Event { return b.Process(n == 0, duration, cfg.cycles) }, nil
	default:
		return nil, fmt.Errorf("unknown source %q (use cycle or burst)", cfg.source)
	}
}

func printTimeline(w io.Writer, rows []row, all bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Sample\tTrigger\tPhase\tRate [Hz]\tOffset\tSlot\tActive\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "------\t-------\t-----\t---------\t------\t----\t------\n"); err != nil {
		return err
	}

	for _, r := range rows {
		if !all && !r.ev.Trigger {
			continue
		}

		trig, offset, slot := "", "", ""
		if r.ev.Trigger {
			trig = "*"
			offset = fmt.Sprintf("%.4f", r.ev.SubSampleOffset)
			slot = "drop"
			if r.slot >= 0 {
				slot = fmt.Sprintf("%d", r.slot)
			}
		}

		if _, err := fmt.Fprintf(tw, "%d\t%s\t%.4f\t%.2f\t%s\t%s\t%d\n",
			r.index, trig, r.ev.Phase, r.ev.Rate, offset, slot, r.busy); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func printSummary(w io.Writer, st timing.Stats, dropped uint64) {
	fmt.Fprintf(w, "\ntriggers: %d  dropped: %d\n", st.Count, dropped)
	if st.Count > 1 {
		fmt.Fprintf(w, "interval: mean %.4f  min %.4f  max %.4f  jitter %.2e samples\n",
			st.MeanInterval, st.MinInterval, st.MaxInterval, st.Jitter)
	}
}
