package factorization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetFactors(t *testing.T) {

	t.Run("Small", func(t *testing.T) {
		require.Nil(t, GetFactors(1))
		require.Equal(t, []uint64{2}, GetFactors(64))
		require.Equal(t, []uint64{2, 3, 5}, GetFactors(360))
		require.Equal(t, []uint64{65537}, GetFactors(65537))
	})

	t.Run("NTTFriendly", func(t *testing.T) {
		q := uint64(0x1fffffffffe00001)
		factors := GetFactors(q - 1)
		m := q - 1
		for _, f := range factors {
			require.True(t, IsPrime(f))
			for m%f == 0 {
				m /= f
			}
		}
		require.Equal(t, uint64(1), m)
	})

	t.Run("SemiPrime", func(t *testing.T) {
		p, q := uint64(4294967291), uint64(4294967279)
		require.Equal(t, []uint64{q, p}, GetFactors(p*q))
	})

	t.Run("PollardRho", func(t *testing.T) {
		m := uint64(1000003) * uint64(999983)
		d := GetFactorPollardRho(m)
		require.NotEqual(t, uint64(1), d)
		require.NotEqual(t, m, d)
		require.Zero(t, m%d)
	})
}

func TestIsPrime(t *testing.T) {
	require.False(t, IsPrime(0))
	require.False(t, IsPrime(1))
	require.True(t, IsPrime(2))
	require.True(t, IsPrime(0x1fffffffffe00001))
	require.False(t, IsPrime(561))
	require.False(t, IsPrime(4294967291*3))
}
