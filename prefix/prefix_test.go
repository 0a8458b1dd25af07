package prefix

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatcherFind(t *testing.T) {
	m := NewMatcher()
	require.NoError(t, m.Insert(0b0, 1, 'a'))
	require.NoError(t, m.Insert(0b10, 2, 'b'))
	require.NoError(t, m.Insert(0b11, 2, 'c'))
	require.Equal(t, 3, m.Len())
	require.Equal(t, 2, m.MaxLen())

	s, ok := m.Find(0b10, 2)
	require.True(t, ok)
	require.Equal(t, byte('b'), s)

	// same bits, different length
	_, ok = m.Find(0b0, 2)
	require.False(t, ok)

	require.True(t, m.Viable(0b1, 1))
	require.False(t, m.Viable(0b0, 1), "a complete code is not a proper prefix")
}

type code struct {
	bits uint64
	n    uint8
}

func TestMatcherConflicts(t *testing.T) {
	tests := []struct {
		name          string
		first, second code
	}{
		{"duplicate", code{0b01, 2}, code{0b01, 2}},
		{"new code extends existing", code{0b1, 1}, code{0b10, 2}},
		{"new code prefixes existing", code{0b101, 3}, code{0b10, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher()
			require.NoError(t, m.Insert(tt.first.bits, tt.first.n, 'x'))
			err := m.Insert(tt.second.bits, tt.second.n, 'y')
			require.ErrorIs(t, err, ErrConflict)
			require.Equal(t, 1, m.Len())
		})
	}
}

func TestMatcherInvalid(t *testing.T) {
	m := NewMatcher()
	require.ErrorIs(t, m.Insert(0, 0, 'a'), ErrInvalidCode)
	require.ErrorIs(t, m.Insert(0, MaxLen+1, 'a'), ErrInvalidCode)
	require.ErrorIs(t, m.Insert(0b100, 2, 'a'), ErrInvalidCode)
	require.NoError(t, m.Insert(^uint64(0), MaxLen, 'a'))
}
