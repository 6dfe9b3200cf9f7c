package steps

import (
	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/trigger"
)

const (
	// MaxRegisterLength bounds the rotated section of a shift register.
	MaxRegisterLength = 16

	registerBits = 8
)

// RegisterOutput holds the two views of a shift register state.
type RegisterOutput struct {
	// Bits3 is the top three bits of the low byte, read LSB-first and
	// normalized to [0, 1].
	Bits3 float64
	// Bits8 is one minus the low byte read LSB-first as the most
	// significant bit, normalized to [0, 1].
	Bits8 float64
}

func registerOutput(reg int) RegisterOutput {
	return RegisterOutput{
		Bits3: msbBits(reg, 3, registerBits),
		Bits8: 1 - lsbBits(reg, registerBits),
	}
}

// rotateBits rotates the low length bits of value left by rotation.
// Negative rotations rotate right.
func rotateBits(value, rotation, length int) int {
	r := rotation % length
	if r < 0 {
		r += length
	}

	left := (value << r) % (1 << length)
	right := value >> (length - r)

	return left + right
}

// msbBits reads the top numBits of a totalBits word with LSB-first weights.
func msbBits(value, numBits, totalBits int) float64 {
	start := totalBits - numBits
	result := 0
	for i := range numBits {
		bit := (value >> (start + i)) & 1
		result += bit << i
	}

	return float64(result) / float64(int(1)<<numBits-1)
}

// lsbBits reads the low numBits reversed, bit 0 weighted highest.
func lsbBits(value, numBits int) float64 {
	result := 0
	for i := range numBits {
		bit := (value >> i) & 1
		result += bit << (numBits - 1 - i)
	}

	return float64(result) / float64(int(1)<<numBits-1)
}

// advance rotates reg and flips the new LSB with probability chance.
func advance(reg int, chance float64, length, rotation int, rng Rand) int {
	rotated := rotateBits(reg, rotation, length)
	bit := rotated & 1

	flip := 0
	if rng.Float64() < chance {
		flip = 1
	}

	return rotated - bit + (bit ^ flip)
}

func clampRegisterArgs(chance float64, length, rotation int) (float64, int, int) {
	return core.Clamp(chance, 0, 1),
		core.ClampInt(length, 1, MaxRegisterLength),
		core.ClampInt(rotation, -MaxRegisterLength, MaxRegisterLength)
}

// Register is a ramp-clocked rotating shift register. Every clock wrap the
// register is rotated within length bits and its new LSB is inverted with
// probability chance. Chance 0 loops the current pattern.
type Register struct {
	rng    Rand
	detect trigger.RampWrap

	reg     int
	current RegisterOutput
	next    RegisterOutput
	started bool
}

// NewRegister returns a register drawing from rng.
func NewRegister(rng Rand) (*Register, error) {
	if rng == nil {
		return nil, errNilRand
	}

	r := &Register{rng: rng}
	r.Reset()

	return r, nil
}

// Process feeds one clock phase sample. length is clamped to [1, 16] and
// rotation to [-16, 16]. reset reseeds the register before processing.
func (r *Register) Process(phase, chance float64, length, rotation int, smooth, reset bool) RegisterOutput {
	if reset {
		r.Reset()
	}

	chance, length, rotation = clampRegisterArgs(chance, length, rotation)

	if !r.started {
		r.reg = int(r.rng.Float64() * 255)
		r.current = registerOutput(r.reg)
		r.next = r.current
		r.started = true
	}

	if r.detect.Process(phase) {
		r.current = r.next
		r.reg = advance(r.reg, chance, length, rotation, r.rng)
		r.next = registerOutput(r.reg)
	}

	return RegisterOutput{
		Bits3: glide(phase, r.current.Bits3, r.next.Bits3, smooth),
		Bits8: glide(phase, r.current.Bits8, r.next.Bits8, smooth),
	}
}

// Reset clears the register and re-primes the clock detector.
func (r *Register) Reset() {
	r.reg = 0
	r.current, r.next = RegisterOutput{}, RegisterOutput{}
	r.started = false
	r.detect.Reset()
}

// ShiftRegister is the trigger-clocked variant of Register. The first
// trigger initializes the register to zero; later triggers advance it.
// Output is zero until the first trigger.
type ShiftRegister struct {
	rng     Rand
	reg     int
	started bool
}

// NewShiftRegister returns a shift register drawing from rng.
func NewShiftRegister(rng Rand) (*ShiftRegister, error) {
	if rng == nil {
		return nil, errNilRand
	}
	return &ShiftRegister{rng: rng}, nil
}

// Process advances the register on trigger and returns its state.
func (s *ShiftRegister) Process(trig, reset bool, chance float64, length, rotation int) RegisterOutput {
	if reset {
		s.Reset()
	}

	chance, length, rotation = clampRegisterArgs(chance, length, rotation)

	if trig {
		if s.started {
			s.reg = advance(s.reg, chance, length, rotation, s.rng)
		} else {
			s.reg = 0
			s.started = true
		}
	}

	if !s.started {
		return RegisterOutput{}
	}

	return registerOutput(s.reg)
}

// Reset returns the register to its uninitialized state.
func (s *ShiftRegister) Reset() {
	s.reg = 0
	s.started = false
}
