package delay

import (
	"fmt"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/interp"
)

// Ring is a circular buffer with a power-of-two capacity, read with a bit
// mask at fractional positions.
//
// The write cursor points at the slot the next Write fills. Storage is
// allocated once by NewRing.
type Ring struct {
	buffer   []float64
	mask     int
	writePos int
}

// NewRing returns a ring holding at least minFrames samples, rounded up to
// the next power of two.
func NewRing(minFrames int) (*Ring, error) {
	if minFrames <= 0 {
		return nil, fmt.Errorf("ring size must be > 0: %d", minFrames)
	}

	n := core.NextPowerOfTwo(minFrames)

	return &Ring{buffer: make([]float64, n), mask: n - 1}, nil
}

// Frames returns the capacity.
func (r *Ring) Frames() int { return len(r.buffer) }

// Mask returns Frames()-1.
func (r *Ring) Mask() int { return r.mask }

// WritePos returns the index the next Write fills.
func (r *Ring) WritePos() int { return r.writePos }

// Write stores x at the cursor and advances it.
func (r *Ring) Write(x float64) {
	r.buffer[r.writePos] = x
	r.writePos = (r.writePos + 1) & r.mask
}

// ReadCubic reads at absolute fractional index pos with Hermite
// interpolation. Positions wrap.
func (r *Ring) ReadCubic(pos float64) float64 {
	return interp.PeekCubic(r.buffer, pos, r.mask)
}

// ReadLinear reads at absolute fractional index pos with linear
// interpolation. Positions wrap.
func (r *Ring) ReadLinear(pos float64) float64 {
	return interp.PeekLinear(r.buffer, pos, r.mask)
}

// Read returns the sample written delay writes ago (1 = most recent).
func (r *Ring) Read(delay int) float64 {
	return r.buffer[(r.writePos-delay)&r.mask]
}

// Reset clears the buffer and rewinds the cursor.
func (r *Ring) Reset() {
	core.Zero(r.buffer)
	r.writePos = 0
}
