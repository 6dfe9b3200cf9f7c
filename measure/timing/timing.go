// Package timing analyzes trigger trains produced by event schedulers:
// trigger positions, intervals and their jitter after sub-sample
// correction.
package timing

import (
	"math"

	"github.com/cwbudde/algo-grain/dsp/event"
)

// Stats summarizes the spacing of a trigger train. Intervals are measured
// between idealized trigger times (index minus sub-sample offset), in
// samples.
type Stats struct {
	Count        int
	MeanInterval float64
	MinInterval  float64
	MaxInterval  float64
	// Jitter is the standard deviation of the intervals.
	Jitter float64
}

// TriggerIndices returns the indices of all true entries.
func TriggerIndices(triggers []bool) []int {
	var idx []int
	for i, on := range triggers {
		if on {
			idx = append(idx, i)
		}
	}
	return idx
}

// Intervals returns the differences between consecutive positions.
func Intervals(positions []float64) []float64 {
	if len(positions) < 2 {
		return nil
	}

	out := make([]float64, len(positions)-1)
	for i := range out {
		out[i] = positions[i+1] - positions[i]
	}

	return out
}

// OffsetCorrected returns the idealized fractional time of every trigger in
// events: its sample index minus its sub-sample offset.
func OffsetCorrected(events []event.Event) []float64 {
	var out []float64
	for i, ev := range events {
		if ev.Trigger {
			out = append(out, float64(i)-ev.SubSampleOffset)
		}
	}
	return out
}

// Analyze computes interval statistics over the offset-corrected trigger
// times of events. Interval fields are zero with fewer than two triggers.
func Analyze(events []event.Event) Stats {
	times := OffsetCorrected(events)
	st := Stats{Count: len(times)}

	iv := Intervals(times)
	if len(iv) == 0 {
		return st
	}

	st.MinInterval = math.Inf(1)
	st.MaxInterval = math.Inf(-1)

	sum := 0.0
	for _, d := range iv {
		sum += d
		st.MinInterval = math.Min(st.MinInterval, d)
		st.MaxInterval = math.Max(st.MaxInterval, d)
	}

	st.MeanInterval = sum / float64(len(iv))

	ss := 0.0
	for _, d := range iv {
		e := d - st.MeanInterval
		ss += e * e
	}

	st.Jitter = math.Sqrt(ss / float64(len(iv)))

	return st
}
