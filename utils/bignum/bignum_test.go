package bignum

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLog2(t *testing.T) {

	t.Run("Float", func(t *testing.T) {
		f, _ := Log2(NewFloat(1024.0, 128)).Float64()
		require.InDelta(t, 10.0, f, 1e-12)
	})

	t.Run("Int", func(t *testing.T) {
		x := new(big.Int).Lsh(big.NewInt(3), 2000)
		require.InDelta(t, 2000+math.Log2(3), Log2Int(x), 1e-9)
		require.InDelta(t, 4.0, Log2Int(big.NewInt(-16)), 1e-12)
		require.True(t, math.IsInf(Log2Int(new(big.Int)), -1))
	})
}

func TestStats(t *testing.T) {

	t.Run("Constant", func(t *testing.T) {
		values := make([]big.Int, 8)
		for i := range values {
			values[i].SetInt64(5)
		}
		stats := Stats(values, 128)
		require.True(t, math.IsInf(stats[0], -1))
		require.InDelta(t, 5.0, stats[1], 1e-12)
	})

	t.Run("Symmetric", func(t *testing.T) {
		// {-4, 4}: mean 0, sample variance 32
		values := []big.Int{*big.NewInt(-4), *big.NewInt(4)}
		stats := Stats(values, 128)
		require.InDelta(t, 2.5, stats[0], 1e-9)
		require.InDelta(t, 0.0, stats[1], 1e-12)
	})
}

func TestCenter(t *testing.T) {
	m := big.NewInt(17)
	require.Equal(t, int64(8), Center(big.NewInt(8), m).Int64())
	require.Equal(t, int64(-8), Center(big.NewInt(9), m).Int64())
	require.Equal(t, int64(-1), Center(big.NewInt(16), m).Int64())
	require.Equal(t, "123", NewInt("123").String())
	require.Equal(t, uint64(7), NewInt(uint64(7)).Uint64())
}
