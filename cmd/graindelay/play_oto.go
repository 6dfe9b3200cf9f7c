//go:build !headless

package main

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
)

// play blocks until samples have been played on the default device.
func play(samples []float64, sampleRate int) error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return err
	}
	<-ready

	p := ctx.NewPlayer(bytes.NewReader(float32LE(samples)))
	defer p.Close()

	logger.Debug("playing", "seconds", float64(len(samples))/float64(sampleRate))
	p.Play()
	for p.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	return p.Err()
}

func float32LE(samples []float64) []byte {
	buf := make([]byte, 4*len(samples))
	for i, x := range samples {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(float32(x)))
	}
	return buf
}
