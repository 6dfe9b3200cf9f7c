package steps

import (
	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/trigger"
)

// MaxUrnSize is the largest deck an Urn can draw from.
const MaxUrnSize = 64

// Urn draws without replacement from a shuffled deck of size cards, one per
// clock wrap, and reshuffles when the deck is exhausted. The first card of a
// new pass never repeats the last card of the previous pass.
type Urn struct {
	rng    Rand
	detect trigger.RampWrap

	deck     [MaxUrnSize]int
	size     int
	position int
	last     int
	output   float64
	ready    bool
}

// NewUrn returns an urn drawing from rng.
func NewUrn(rng Rand) (*Urn, error) {
	if rng == nil {
		return nil, errNilRand
	}

	u := &Urn{rng: rng}
	u.Reset()

	return u, nil
}

// Process feeds one clock phase sample and returns the last drawn card
// normalized to [0, 1]. size is clamped to [2, 64]; changing it rebuilds the
// deck. chance is the probability of swapping the next card with a random
// remaining one, so 0 replays the first shuffle in order.
func (u *Urn) Process(phase, chance float64, size int, reset bool) float64 {
	if reset {
		u.Reset()
	}

	size = core.ClampInt(size, 2, MaxUrnSize)
	if size != u.size {
		u.ready = false
	}

	if !u.ready {
		u.build(size)
		u.ready = true
	}

	if u.detect.Process(phase) {
		u.draw(core.Clamp(chance, 0, 1))
	}

	return u.output
}

func (u *Urn) build(size int) {
	for i := range size {
		u.deck[i] = i
	}
	u.size = size
	u.position = 0

	for i := size - 1; i > 0; i-- {
		j := u.rng.Intn(i + 1)
		u.deck[i], u.deck[j] = u.deck[j], u.deck[i]
	}
}

func (u *Urn) draw(chance float64) {
	if u.position >= u.size {
		u.position = 0
	}

	if u.rng.Float64() < chance {
		j := u.position + u.rng.Intn(u.size-u.position)
		u.deck[u.position], u.deck[j] = u.deck[j], u.deck[u.position]
	}

	if u.position == 0 && u.deck[0] == u.last {
		j := 1 + u.rng.Intn(u.size-1)
		u.deck[0], u.deck[j] = u.deck[j], u.deck[0]
	}

	u.last = u.deck[u.position]
	u.position++
	u.output = float64(u.last) / float64(u.size-1)
}

// Reset empties the deck and re-primes the clock detector.
func (u *Urn) Reset() {
	u.size = 0
	u.position = 0
	u.last = -1
	u.output = 0
	u.ready = false
	u.detect.Reset()
}
