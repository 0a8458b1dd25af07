package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seiflotfy/huffpack"
)

func TestCompressDecompress(t *testing.T) {
	svc := NewCompressionService(huffpack.NewEncoder())
	data := []byte("mississippi river\n")

	container, err := svc.Compress(data)
	require.NoError(t, err)
	got, err := svc.Decompress(container)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestDecompressInvalid(t *testing.T) {
	svc := NewCompressionService(huffpack.NewEncoder())
	_, err := svc.Decompress([]byte("not a container"))
	require.ErrorIs(t, err, ErrInvalidContainer)
}

func TestCodebook(t *testing.T) {
	svc := NewCompressionService(huffpack.NewEncoder())
	report, err := svc.Codebook([]byte("aab "))
	require.NoError(t, err)
	require.Equal(t, 4, report.InputBytes)
	require.Equal(t, uint64(6), report.BitLength)
	require.Equal(t, []CodeEntry{
		{Symbol: ' ', Count: 1, Code: "10"},
		{Symbol: 'a', Count: 2, Code: "0"},
		{Symbol: 'b', Count: 1, Code: "11"},
	}, report.Entries)
}

func TestCodebookEmpty(t *testing.T) {
	svc := NewCompressionService(huffpack.NewEncoder())
	report, err := svc.Codebook(nil)
	require.NoError(t, err)
	require.Empty(t, report.Entries)
	require.Zero(t, report.BitLength)
}
