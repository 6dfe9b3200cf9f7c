package effects_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/effects"
)

func ExampleGrainDelay_ProcessInPlace() {
	delay, err := effects.NewGrainDelay(48000, core.WithBlockSize(128))
	if err != nil {
		fmt.Println("error")
		return
	}

	_ = delay.SetTriggerRate(40)
	_ = delay.SetOverlap(4)
	_ = delay.SetDelayTime(0.05)
	_ = delay.SetGrainRate(1.5)
	_ = delay.SetFeedback(0.4)
	_ = delay.SetMix(0.5)

	buf := make([]float64, 4800)
	for i := range 1024 {
		buf[i] = math.Sin(2 * math.Pi * 330 * float64(i) / 48000)
	}

	delay.ProcessInPlace(buf)
	fmt.Printf("len=%d dropped=%d\n", len(buf), delay.DroppedGrains())
	// Output:
	// len=4800 dropped=0
}
