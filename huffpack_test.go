package huffpack

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seiflotfy/huffpack/coding"
	"github.com/seiflotfy/huffpack/internal/prng"
)

func TestEncodeRoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"text":          []byte("the quick brown fox jumps over the lazy dog"),
		"single symbol": bytes.Repeat([]byte{0x41}, 100),
		"delimiters":    []byte(" \n \n\t\r\x00 "),
		"skewed":        prng.New(1).Bytes(50_000, 12),
		"all bytes":     prng.New(2).Bytes(100_000, 256),
	}
	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			a, err := Compress(data)
			require.NoError(t, err)
			got, err := Decode(a)
			require.NoError(t, err)
			require.Equal(t, data, got)
		})
	}
}

func TestEncodeEmpty(t *testing.T) {
	a, err := NewEncoder().Encode(nil)
	require.NoError(t, err)
	require.True(t, a.Empty())
	require.Zero(t, a.Symbols())
	require.Zero(t, a.Payload.BitLen)
	require.Empty(t, a.Payload.Bytes)

	got, err := a.Decompress()
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestEncodeSingleSymbol(t *testing.T) {
	data := bytes.Repeat([]byte{0x41}, 100)
	a, err := Compress(data)
	require.NoError(t, err)
	require.Equal(t, 1, a.Symbols())
	c, ok := a.Codebook.Lookup(0x41)
	require.True(t, ok)
	require.Equal(t, uint8(1), c.Len)
	require.Equal(t, uint64(100), a.Payload.BitLen)
}

func TestEncodeParallelMatchesSerial(t *testing.T) {
	data := prng.New(5).Bytes(200_000, 256)
	serial, err := Compress(data, WithParallelThreshold(-1))
	require.NoError(t, err)
	want, err := serial.MarshalBinary()
	require.NoError(t, err)

	for _, workers := range []int{0, 2, 5, 1000} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			a, err := Compress(data, WithWorkers(workers), WithParallelThreshold(1))
			require.NoError(t, err)
			got, err := a.MarshalBinary()
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestWorkersFor(t *testing.T) {
	require.Equal(t, 1, workersFor(Config{Workers: 8}, 100))
	require.Equal(t, 8, workersFor(Config{Workers: 8}, defaultParallelThreshold))
	require.Equal(t, 1, workersFor(Config{Workers: 8, ParallelThreshold: -1}, 1<<30))
	require.Equal(t, 3, workersFor(Config{Workers: 3, ParallelThreshold: 10}, 10))
	require.Equal(t, maxWorkers, workersFor(Config{Workers: 1 << 20, ParallelThreshold: 1}, 10))
	require.Positive(t, workersFor(Config{ParallelThreshold: 1}, 10))
}

func TestModelCache(t *testing.T) {
	e := NewEncoder(WithModelCache(4))

	a1, err := e.Encode([]byte("aabbbc"))
	require.NoError(t, err)
	// same histogram, different order
	a2, err := e.Encode([]byte("cbabab"))
	require.NoError(t, err)
	require.Same(t, a1.tree, a2.tree)
	require.Equal(t, 1, e.cache.len())

	a3, err := e.Encode([]byte("aabbbcc"))
	require.NoError(t, err)
	require.NotSame(t, a1.tree, a3.tree)
	require.Equal(t, 2, e.cache.len())

	got, err := a2.Decompress()
	require.NoError(t, err)
	require.Equal(t, []byte("cbabab"), got)
}

func TestModelCacheEviction(t *testing.T) {
	e := NewEncoder(WithModelCache(2))
	for i := 1; i <= 5; i++ {
		_, err := e.Encode(bytes.Repeat([]byte{'x'}, i))
		require.NoError(t, err)
	}
	require.Equal(t, 2, e.cache.len())
}

func TestModel(t *testing.T) {
	m := NewModel()
	require.False(t, m.Trained())
	_, err := m.Encode([]byte("abc"))
	require.ErrorIs(t, err, ErrUntrainedModel)
	_, err = m.Decode(&Archive{})
	require.ErrorIs(t, err, ErrUntrainedModel)

	require.ErrorIs(t, m.Train(nil), ErrEmptyInput)
	require.False(t, m.Trained())

	m, err = TrainModel([]byte("the rain in spain stays mainly in the plain"))
	require.NoError(t, err)
	require.True(t, m.Trained())
	require.NotNil(t, m.Tree())
	cb := m.Codebook()
	require.True(t, cb.IsPrefixFree())

	msg := []byte("in spain the plain rain stays")
	a, err := m.Encode(msg)
	require.NoError(t, err)
	got, err := m.Decode(a)
	require.NoError(t, err)
	require.Equal(t, msg, got)

	_, err = m.Encode([]byte("zebra"))
	require.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestModelSharesCodebookAcrossMessages(t *testing.T) {
	m, err := TrainModel(prng.New(8).Bytes(10_000, 256))
	require.NoError(t, err)

	for i := uint64(0); i < 5; i++ {
		msg := prng.New(100 + i).Bytes(1000, 256)
		a, err := m.Encode(msg)
		if err != nil {
			// the sample may lack a rare symbol
			require.ErrorIs(t, err, ErrUnknownSymbol)
			continue
		}
		var buf bytes.Buffer
		_, err = a.WriteTo(&buf)
		require.NoError(t, err)

		var b Archive
		_, err = b.ReadFrom(&buf)
		require.NoError(t, err)
		require.Equal(t, m.Codebook(), b.Codebook)
		got, err := b.Decompress()
		require.NoError(t, err)
		require.Equal(t, msg, got)
	}
}

func TestEncodeKeepsFrequencies(t *testing.T) {
	enc := NewEncoder(WithModelCache(4))
	a, err := enc.Encode([]byte("abracadabra"))
	require.NoError(t, err)
	want := coding.FrequencyMap{'a': 5, 'b': 2, 'r': 2, 'c': 1, 'd': 1}
	require.Equal(t, want, a.Frequencies())

	// A cache hit carries the same counts.
	a, err = enc.Encode([]byte("aaaaabbrrcd"))
	require.NoError(t, err)
	require.Equal(t, want, a.Frequencies())

	// Callers get a copy.
	a.Frequencies()['a'] = 99
	require.Equal(t, want, a.Frequencies())

	raw, err := a.MarshalBinary()
	require.NoError(t, err)
	var read Archive
	require.NoError(t, read.UnmarshalBinary(raw))
	require.Nil(t, read.Frequencies())

	m, err := TrainModel([]byte("aab"))
	require.NoError(t, err)
	require.Equal(t, coding.FrequencyMap{'a': 2, 'b': 1}, m.Frequencies())
	require.Nil(t, NewModel().Frequencies())
}
