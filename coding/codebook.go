package coding

import (
	"fmt"
	"strings"
)

// MaxCodeLen is the longest code a Codebook can hold.
const MaxCodeLen = 64

// Code is a bit code of Len digits held in the low bits of Bits, first digit
// most significant.
type Code struct {
	Bits uint64
	Len  uint8
}

// String renders the code as binary digits, e.g. "0110".
func (c Code) String() string {
	var sb strings.Builder
	sb.Grow(int(c.Len))
	for i := int(c.Len) - 1; i >= 0; i-- {
		if c.Bits>>uint(i)&1 == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// HasPrefix reports whether p is a prefix of c. Every code is a prefix of
// itself.
func (c Code) HasPrefix(p Code) bool {
	if p.Len > c.Len {
		return false
	}
	return c.Bits>>(c.Len-p.Len) == p.Bits
}

// ParseCode parses a string of '0' and '1' digits.
func ParseCode(s string) (Code, error) {
	if len(s) == 0 || len(s) > MaxCodeLen {
		return Code{}, fmt.Errorf("coding: invalid code length %d", len(s))
	}
	var c Code
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			c.Bits <<= 1
		case '1':
			c.Bits = c.Bits<<1 | 1
		default:
			return Code{}, fmt.Errorf("coding: invalid code digit %q", s[i])
		}
	}
	c.Len = uint8(len(s))
	return c, nil
}

// Codebook maps each symbol to its code. The zero value is empty.
type Codebook struct {
	codes [256]Code
	n     int
}

// Set assigns code c to symbol s. Empty codes are rejected.
func (cb *Codebook) Set(s byte, c Code) error {
	if c.Len == 0 || c.Len > MaxCodeLen {
		return fmt.Errorf("coding: invalid code length %d for symbol %#02x", c.Len, s)
	}
	if c.Len < MaxCodeLen && c.Bits>>c.Len != 0 {
		return fmt.Errorf("coding: code bits exceed length %d for symbol %#02x", c.Len, s)
	}
	if cb.codes[s].Len == 0 {
		cb.n++
	}
	cb.codes[s] = c
	return nil
}

// Lookup returns the code for s.
func (cb *Codebook) Lookup(s byte) (Code, bool) {
	c := cb.codes[s]
	return c, c.Len != 0
}

// Len returns the number of symbols in the codebook.
func (cb *Codebook) Len() int { return cb.n }

// Symbols returns the symbols present in ascending order.
func (cb *Codebook) Symbols() []byte {
	syms := make([]byte, 0, cb.n)
	for s := range cb.codes {
		if cb.codes[s].Len != 0 {
			syms = append(syms, byte(s))
		}
	}
	return syms
}

// MaxLen returns the length of the longest code.
func (cb *Codebook) MaxLen() int {
	m := 0
	for _, c := range cb.codes {
		m = max(m, int(c.Len))
	}
	return m
}

// IsPrefixFree reports whether no code is a prefix of another.
func (cb *Codebook) IsPrefixFree() bool {
	syms := cb.Symbols()
	for i, a := range syms {
		for _, b := range syms[i+1:] {
			x, y := cb.codes[a], cb.codes[b]
			if x.HasPrefix(y) || y.HasPrefix(x) {
				return false
			}
		}
	}
	return true
}

// EncodedBits returns the number of bits needed to encode data, or
// ErrUnknownSymbol if a byte has no code.
func (cb *Codebook) EncodedBits(data []byte) (uint64, error) {
	var n uint64
	for i, b := range data {
		c := cb.codes[b]
		if c.Len == 0 {
			return 0, fmt.Errorf("%w: %#02x at offset %d", ErrUnknownSymbol, b, i)
		}
		n += uint64(c.Len)
	}
	return n, nil
}

// AssignCodes walks t depth-first, appending 0 for each left edge and 1 for
// each right edge; the path to a leaf is that leaf's code. When the root is
// itself a leaf the lone symbol gets the 1-bit code "0".
func AssignCodes(t *Tree) (Codebook, error) {
	var cb Codebook
	if t == nil || len(t.nodes) == 0 {
		return cb, ErrEmptyInput
	}
	if t.IsLeaf(t.root) {
		err := cb.Set(t.Symbol(t.root), Code{Bits: 0, Len: 1})
		return cb, err
	}

	type frame struct {
		h    Handle
		code Code
	}
	stack := make([]frame, 0, t.Leaves())
	stack = append(stack, frame{h: t.root})
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.IsLeaf(f.h) {
			if err := cb.Set(t.Symbol(f.h), f.code); err != nil {
				return Codebook{}, err
			}
			continue
		}
		if f.code.Len == MaxCodeLen {
			return Codebook{}, fmt.Errorf("%w: subtree below depth %d", ErrCodeTooLong, MaxCodeLen)
		}
		left, right := t.Children(f.h)
		next := f.code.Len + 1
		// right is pushed first so the left subtree is visited first
		stack = append(stack,
			frame{h: right, code: Code{Bits: f.code.Bits<<1 | 1, Len: next}},
			frame{h: left, code: Code{Bits: f.code.Bits << 1, Len: next}},
		)
	}
	return cb, nil
}
