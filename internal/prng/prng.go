// Package prng is a small deterministic generator for reproducible test
// inputs across platforms.
package prng

// PRNG is a linear congruential generator.
type PRNG struct {
	state uint64
}

// New creates a PRNG with the given seed.
func New(seed uint64) *PRNG {
	return &PRNG{state: seed}
}

// Next returns the next value using the Numerical Recipes constants.
func (p *PRNG) Next() uint64 {
	p.state = p.state*6364136223846793005 + 1442695040888963407
	return p.state
}

// Uint64N returns a value in [0, n).
func (p *PRNG) Uint64N(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return (p.Next() >> 11) % n
}

// Bytes returns n bytes drawn from an alphabet of the given size starting
// at byte 0. Lower symbols are drawn more often so the frequencies are
// skewed.
func (p *PRNG) Bytes(n, alphabet int) []byte {
	if alphabet < 1 || alphabet > 256 {
		alphabet = 256
	}
	out := make([]byte, n)
	for i := range out {
		a := p.Uint64N(uint64(alphabet))
		b := p.Uint64N(uint64(alphabet))
		out[i] = byte(min(a, b))
	}
	return out
}
