// Package wavio reads and writes mono PCM WAV files for the command line
// tools.
package wavio

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// BitDepth is the sample depth WriteMono encodes with.
const BitDepth = 16

// ErrInvalidFile reports input that is not a decodable PCM WAV file.
var ErrInvalidFile = errors.New("invalid WAV file")

// ReadMono decodes the WAV file at path and returns its samples in
// [-1, 1] together with the file sample rate. Multichannel files are
// downmixed by averaging the channels of each frame.
func ReadMono(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidFile, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}

	bitDepth := int(dec.SampleBitDepth())
	if bitDepth == 0 || buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, 0, fmt.Errorf("%w: unknown format in %s", ErrInvalidFile, path)
	}

	return downmix(buf.Data, buf.Format.NumChannels, bitDepth), buf.Format.SampleRate, nil
}

// WriteMono encodes data as a 16-bit mono WAV file at path. Samples outside
// [-1, 1] are clipped.
func WriteMono(path string, data []float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("wav sample rate must be > 0: %d", sampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(f, sampleRate, BitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           quantize(data),
		SourceBitDepth: BitDepth,
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}

	return f.Close()
}

func downmix(data []int, channels, bitDepth int) []float64 {
	scale := 1 / (math.Pow(2, float64(bitDepth-1)) * float64(channels))
	frames := len(data) / channels

	out := make([]float64, frames)
	for i := range out {
		sum := 0
		for _, v := range data[i*channels : (i+1)*channels] {
			sum += v
		}
		out[i] = float64(sum) * scale
	}
	return out
}

func quantize(data []float64) []int {
	const full = 1<<(BitDepth-1) - 1

	out := make([]int, len(data))
	for i, v := range data {
		if math.IsNaN(v) {
			continue
		}
		v = math.Max(-1, math.Min(1, v))
		out[i] = int(math.Round(v * full))
	}
	return out
}
