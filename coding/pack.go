package coding

import (
	"bytes"
	"fmt"

	"github.com/dgryski/go-bitstream"
	"golang.org/x/sync/errgroup"
)

// Payload is a packed bit sequence. BitLen counts the meaningful bits; the
// remaining bits of the final byte are zero padding. The first bit of the
// sequence is the most significant bit of Bytes[0].
type Payload struct {
	Bytes  []byte
	BitLen uint64
}

// byteLen returns the number of bytes needed to hold nbits.
func byteLen(nbits uint64) uint64 {
	return (nbits + 7) / 8
}

// Capacity returns the number of bits Bytes can hold.
func (p Payload) Capacity() uint64 {
	return uint64(len(p.Bytes)) * 8
}

// Validate checks that Bytes is exactly as long as BitLen requires and that
// every padding bit is zero.
func (p Payload) Validate() error {
	if p.BitLen > p.Capacity() {
		return fmt.Errorf("%w: bit length %d exceeds capacity %d", ErrMalformedStream, p.BitLen, p.Capacity())
	}
	if want := byteLen(p.BitLen); uint64(len(p.Bytes)) != want {
		return fmt.Errorf("%w: %d bytes for bit length %d, want %d", ErrMalformedStream, len(p.Bytes), p.BitLen, want)
	}
	if rem := p.BitLen % 8; rem != 0 {
		mask := byte(0xFF) >> rem
		if p.Bytes[len(p.Bytes)-1]&mask != 0 {
			return fmt.Errorf("%w: non-zero padding bits", ErrMalformedStream)
		}
	}
	return nil
}

// Pack concatenates the code of every byte of data, in order, and packs the
// result MSB-first into bytes, zero-padding the final byte. Empty data
// yields an empty payload.
func Pack(data []byte, cb *Codebook) (Payload, error) {
	if len(data) == 0 {
		return Payload{Bytes: []byte{}}, nil
	}
	nbits, err := cb.EncodedBits(data)
	if err != nil {
		return Payload{}, err
	}

	buf := bytes.NewBuffer(make([]byte, 0, byteLen(nbits)))
	if err := writeCodes(bitstream.NewWriter(buf), data, cb, 0); err != nil {
		return Payload{}, err
	}
	return Payload{Bytes: buf.Bytes(), BitLen: nbits}, nil
}

// writeCodes writes lead zero bits, then the codes for data, then pads the
// last byte with zeros.
func writeCodes(w *bitstream.BitWriter, data []byte, cb *Codebook, lead int) error {
	if lead > 0 {
		if err := w.WriteBits(0, lead); err != nil {
			return err
		}
	}
	for _, b := range data {
		c := cb.codes[b]
		if err := w.WriteBits(c.Bits, int(c.Len)); err != nil {
			return err
		}
	}
	return w.Flush(bitstream.Zero)
}

// PackParallel produces the same payload as Pack using up to workers
// goroutines. Each worker encodes a contiguous chunk of data starting at
// its precomputed bit offset. Output bytes lying wholly inside one chunk are
// written by that chunk's worker; the byte at each chunk edge may be shared
// with a neighbour and is merged after all workers have finished.
func PackParallel(data []byte, cb *Codebook, workers int) (Payload, error) {
	chunks := splitRanges(len(data), workers)
	if len(chunks) <= 1 {
		return Pack(data, cb)
	}

	counts := make([]uint64, len(chunks))
	var measure errgroup.Group
	for i, r := range chunks {
		i, r := i, r
		measure.Go(func() error {
			n, err := cb.EncodedBits(data[r.start:r.end])
			if err != nil {
				return fmt.Errorf("chunk at offset %d: %w", r.start, err)
			}
			counts[i] = n
			return nil
		})
	}
	if err := measure.Wait(); err != nil {
		return Payload{}, err
	}

	offsets := make([]uint64, len(chunks)+1)
	for i, n := range counts {
		offsets[i+1] = offsets[i] + n
	}
	nbits := offsets[len(chunks)]
	out := make([]byte, byteLen(nbits))

	edges := make([][]byte, len(chunks))
	var encode errgroup.Group
	for i, r := range chunks {
		i, r := i, r
		encode.Go(func() error {
			start := offsets[i]
			first := start / 8
			last := (offsets[i+1] - 1) / 8

			buf := bytes.NewBuffer(make([]byte, 0, last-first+1))
			if err := writeCodes(bitstream.NewWriter(buf), data[r.start:r.end], cb, int(start%8)); err != nil {
				return err
			}
			local := buf.Bytes()
			if len(local) > 2 {
				copy(out[first+1:last], local[1:len(local)-1])
			}
			edges[i] = local
			return nil
		})
	}
	if err := encode.Wait(); err != nil {
		return Payload{}, err
	}

	for i, local := range edges {
		first := offsets[i] / 8
		out[first] |= local[0]
		if len(local) > 1 {
			out[first+uint64(len(local))-1] |= local[len(local)-1]
		}
	}
	return Payload{Bytes: out, BitLen: nbits}, nil
}
