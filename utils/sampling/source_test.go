package sampling

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSource(t *testing.T) {

	t.Run("Deterministic", func(t *testing.T) {
		seed := [32]byte{1, 2, 3}
		a, b := NewSource(seed), NewSource(seed)
		for range 4096 {
			require.Equal(t, a.Uint64(), b.Uint64())
		}
		require.Equal(t, seed, a.Seed())
	})

	t.Run("DistinctSeeds", func(t *testing.T) {
		a, b := NewSource([32]byte{}), NewSource([32]byte{1})
		require.NotEqual(t, a.Uint64(), b.Uint64())
	})

	t.Run("ReadAcrossBuffer", func(t *testing.T) {
		a, b := NewSource([32]byte{}), NewSource([32]byte{})
		buf0 := make([]byte, 3*bufferSize+5)
		_, err := a.Read(buf0)
		require.NoError(t, err)
		buf1 := make([]byte, len(buf0))
		for i := 0; i < len(buf1); i += 7 {
			_, err = b.Read(buf1[i:min(i+7, len(buf1))])
			require.NoError(t, err)
		}
		require.Equal(t, buf0, buf1)
	})

	t.Run("Uint64N", func(t *testing.T) {
		s := NewSource([32]byte{})
		for _, n := range []uint64{1, 2, 3, 1000, 1<<61 - 1} {
			for range 256 {
				require.Less(t, s.Uint64N(n), n)
			}
		}
	})

	t.Run("Float64", func(t *testing.T) {
		s := NewSource([32]byte{})
		for range 256 {
			f := s.Float64()
			require.GreaterOrEqual(t, f, 0.0)
			require.Less(t, f, 1.0)
		}
	})

	t.Run("ChildSource", func(t *testing.T) {
		a, b := NewSource([32]byte{}), NewSource([32]byte{})
		require.Equal(t, a.NewSource().Uint64(), b.NewSource().Uint64())
		require.NotEqual(t, NewSeed(), NewSeed())
	})
}
