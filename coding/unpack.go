package coding

import (
	"bytes"
	"fmt"

	"github.com/dgryski/go-bitstream"

	"github.com/seiflotfy/huffpack/prefix"
)

func (p Payload) reader() (*bitstream.BitReader, error) {
	if p.BitLen > p.Capacity() {
		return nil, fmt.Errorf("%w: bit length %d exceeds capacity %d", ErrMalformedStream, p.BitLen, p.Capacity())
	}
	return bitstream.NewReader(bytes.NewReader(p.Bytes)), nil
}

// Unpack decodes the first p.BitLen bits of p by walking t from the root,
// going left on 0 and right on 1, and emitting a symbol at every leaf.
// Bits past BitLen are ignored.
func Unpack(p Payload, t *Tree) ([]byte, error) {
	r, err := p.reader()
	if err != nil {
		return nil, err
	}
	if p.BitLen == 0 {
		return []byte{}, nil
	}
	if t == nil || len(t.nodes) == 0 {
		return nil, fmt.Errorf("%w: %d bits but no tree", ErrMalformedStream, p.BitLen)
	}

	out := make([]byte, 0, min(t.Freq(t.root), p.BitLen))
	root := t.root
	if t.IsLeaf(root) {
		sym := t.Symbol(root)
		for i := uint64(0); i < p.BitLen; i++ {
			bit, err := r.ReadBit()
			if err != nil {
				return nil, fmt.Errorf("%w: bit %d: %v", ErrMalformedStream, i, err)
			}
			if bit == bitstream.One {
				return nil, fmt.Errorf("%w: unexpected 1 bit at %d in single-symbol stream", ErrMalformedStream, i)
			}
			out = append(out, sym)
		}
		return out, nil
	}

	h := root
	for i := uint64(0); i < p.BitLen; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return nil, fmt.Errorf("%w: bit %d: %v", ErrMalformedStream, i, err)
		}
		left, right := t.Children(h)
		if bit == bitstream.One {
			h = right
		} else {
			h = left
		}
		if t.IsLeaf(h) {
			out = append(out, t.Symbol(h))
			h = root
		}
	}
	if h != root {
		return nil, fmt.Errorf("%w: stream ends mid-code", ErrMalformedStream)
	}
	return out, nil
}

// NewMatcher builds the inverse lookup of cb.
func NewMatcher(cb *Codebook) (*prefix.Matcher, error) {
	m := prefix.NewMatcher()
	for _, s := range cb.Symbols() {
		c := cb.codes[s]
		if err := m.Insert(c.Bits, c.Len, s); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// UnpackCodebook decodes p using only a codebook. It reads one bit at a
// time and emits a symbol as soon as the accumulated bits equal a code.
func UnpackCodebook(p Payload, cb *Codebook) ([]byte, error) {
	m, err := NewMatcher(cb)
	if err != nil {
		return nil, err
	}
	return UnpackMatcher(p, m)
}

// UnpackMatcher is UnpackCodebook with a prebuilt matcher.
func UnpackMatcher(p Payload, m *prefix.Matcher) ([]byte, error) {
	r, err := p.reader()
	if err != nil {
		return nil, err
	}
	if p.BitLen == 0 {
		return []byte{}, nil
	}
	if m.Len() == 0 {
		return nil, fmt.Errorf("%w: %d bits but empty codebook", ErrMalformedStream, p.BitLen)
	}

	out := make([]byte, 0, p.BitLen/uint64(m.MaxLen()))
	var bits uint64
	var length uint8
	for i := uint64(0); i < p.BitLen; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return nil, fmt.Errorf("%w: bit %d: %v", ErrMalformedStream, i, err)
		}
		bits <<= 1
		if bit == bitstream.One {
			bits |= 1
		}
		length++
		if s, ok := m.Find(bits, length); ok {
			out = append(out, s)
			bits, length = 0, 0
			continue
		}
		if !m.Viable(bits, length) {
			return nil, fmt.Errorf("%w: no code matches %d bits ending at bit %d", ErrMalformedStream, length, i)
		}
	}
	if length != 0 {
		return nil, fmt.Errorf("%w: stream ends mid-code", ErrMalformedStream)
	}
	return out, nil
}
