package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cwbudde/algo-grain/dsp/effects"
	"github.com/cwbudde/algo-grain/dsp/window"
)

// preset is the JSON form of a GrainDelay parameter set. Absent fields keep
// the value they override.
type preset struct {
	Rate      *float64 `json:"rate"`
	Overlap   *float64 `json:"overlap"`
	Delay     *float64 `json:"delay"`
	GrainRate *float64 `json:"grain_rate"`
	Mix       *float64 `json:"mix"`
	Feedback  *float64 `json:"feedback"`
	Damping   *float64 `json:"damping"`
	Freeze    *bool    `json:"freeze"`
	Window    *string  `json:"window"`
}

func loadPreset(path string, base effects.GrainDelayParams) (effects.GrainDelayParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read preset: %w", err)
	}

	var pr preset
	if err := json.Unmarshal(data, &pr); err != nil {
		return base, fmt.Errorf("parse preset %s: %w", path, err)
	}

	return pr.apply(base)
}

func (pr preset) apply(p effects.GrainDelayParams) (effects.GrainDelayParams, error) {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}

	set(&p.TriggerRate, pr.Rate)
	set(&p.Overlap, pr.Overlap)
	set(&p.DelayTime, pr.Delay)
	set(&p.GrainRate, pr.GrainRate)
	set(&p.Mix, pr.Mix)
	set(&p.Feedback, pr.Feedback)
	set(&p.Damping, pr.Damping)

	if pr.Freeze != nil {
		p.Freeze = *pr.Freeze
	}

	if pr.Window != nil {
		w, err := window.Parse(*pr.Window)
		if err != nil {
			return p, fmt.Errorf("preset window: %w", err)
		}
		p.Window = w
	}

	return p, nil
}
