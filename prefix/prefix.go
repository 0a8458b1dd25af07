// Package prefix provides an inverse lookup from bit codes to symbols for
// decoding prefix-free code streams without the tree that produced them.
package prefix

import (
	"errors"
	"fmt"
)

// MaxLen is the longest code the matcher accepts.
const MaxLen = 64

var (
	// ErrConflict indicates a code that is a prefix of, or has as a prefix,
	// a code already in the matcher.
	ErrConflict = errors.New("prefix: conflicting code")
	// ErrInvalidCode indicates an empty or oversized code.
	ErrInvalidCode = errors.New("prefix: invalid code")
)

// key is a composite (code, length) key; the same bits at different
// lengths are different codes.
type key struct {
	bits   uint64
	length uint8
}

// Matcher maps prefix-free codes to symbols.
//
// Decoding reads one bit at a time and probes the matcher after each bit.
// Because the code set is prefix-free the first hit is the only hit. The
// matcher also records every proper prefix of every code so a decoder can
// tell a dead path (no code starts with these bits) from an unfinished one.
type Matcher struct {
	codes    map[key]byte
	interior map[key]struct{}
	maxLen   int
}

// NewMatcher creates an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{
		codes:    make(map[key]byte),
		interior: make(map[key]struct{}),
	}
}

// Insert adds the code (bits, length) for symbol.
func (m *Matcher) Insert(bits uint64, length uint8, symbol byte) error {
	if length == 0 || length > MaxLen {
		return fmt.Errorf("%w: length %d", ErrInvalidCode, length)
	}
	if length < MaxLen && bits>>length != 0 {
		return fmt.Errorf("%w: bits exceed length %d", ErrInvalidCode, length)
	}
	k := key{bits: bits, length: length}
	if _, ok := m.codes[k]; ok {
		return fmt.Errorf("%w: duplicate code for symbol %#02x", ErrConflict, symbol)
	}
	if _, ok := m.interior[k]; ok {
		return fmt.Errorf("%w: code for symbol %#02x is a prefix of another code", ErrConflict, symbol)
	}
	for l := uint8(1); l < length; l++ {
		if _, ok := m.codes[key{bits: bits >> (length - l), length: l}]; ok {
			return fmt.Errorf("%w: code for symbol %#02x extends another code", ErrConflict, symbol)
		}
	}

	m.codes[k] = symbol
	for l := uint8(1); l < length; l++ {
		m.interior[key{bits: bits >> (length - l), length: l}] = struct{}{}
	}
	m.maxLen = max(m.maxLen, int(length))
	return nil
}

// Find returns the symbol whose code is exactly (bits, length).
func (m *Matcher) Find(bits uint64, length uint8) (byte, bool) {
	s, ok := m.codes[key{bits: bits, length: length}]
	return s, ok
}

// Viable reports whether (bits, length) is a proper prefix of some code.
func (m *Matcher) Viable(bits uint64, length uint8) bool {
	_, ok := m.interior[key{bits: bits, length: length}]
	return ok
}

// Len returns the number of codes.
func (m *Matcher) Len() int { return len(m.codes) }

// MaxLen returns the length of the longest code.
func (m *Matcher) MaxLen() int { return m.maxLen }
