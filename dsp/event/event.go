package event

import (
	"fmt"

	"github.com/cwbudde/algo-grain/dsp/core"
)

// MaxRateRatio bounds scheduler rates to ±0.49*sampleRate.
const MaxRateRatio = 0.49

// Event is the per-sample output of a scheduler.
type Event struct {
	// Trigger is true exactly on the sample where a new period or burst
	// step begins.
	Trigger bool
	// Phase is the position inside the current period in [0, 1).
	Phase float64
	// Rate is the rate in Hz latched at the most recent trigger.
	Rate float64
	// SubSampleOffset is the number of samples (fractional) between the
	// idealized boundary and the sample that reported Trigger. Only
	// meaningful when Trigger is true.
	SubSampleOffset float64
}

// ClampRate limits rate to the scheduler-safe range for sampleRate.
func ClampRate(rate, sampleRate float64) float64 {
	limit := MaxRateRatio * sampleRate
	return core.Clamp(rate, -limit, limit)
}

func validateSampleRate(kind string, sampleRate float64) error {
	if !core.ValidSampleRate(sampleRate) {
		return fmt.Errorf("%s sample rate must be > 0: %f", kind, sampleRate)
	}
	return nil
}
