// Package bignum implements arbitrary precision helpers used to measure
// the noise of decrypted RNS polynomials.
package bignum

import (
	"fmt"
	"math"
	"math/big"
)

// NegInf is the value returned by the log functions for a zero input.
var NegInf = math.Inf(-1)

// NewInt allocates a new *big.Int.
// Accepted types are: string, uint, uint64, int64, int, *big.Float or *big.Int.
func NewInt(x interface{}) (y *big.Int) {

	y = new(big.Int)

	if x == nil {
		return
	}

	switch x := x.(type) {
	case string:
		y.SetString(x, 0)
	case uint:
		y.SetUint64(uint64(x))
	case uint64:
		y.SetUint64(x)
	case int64:
		y.SetInt64(x)
	case int:
		y.SetInt64(int64(x))
	case *big.Float:
		x.Int(y)
	case *big.Int:
		y.Set(x)
	default:
		panic(fmt.Sprintf("cannot Newint: accepted types are string, uint, uint64, int, int64, *big.Float, *big.Int, but is %T", x))
	}

	return
}

// Center maps x in [0, m) to the symmetric interval (-m/2, m/2].
func Center(x, m *big.Int) *big.Int {
	half := new(big.Int).Rsh(m, 1)
	if x.Cmp(half) > 0 {
		x.Sub(x, m)
	}
	return x
}

// Stats returns the base 2 logarithm of the standard deviation
// and the mean of the values.
// The logarithm is -Inf if all values are equal.
func Stats(values []big.Int, prec uint) [2]float64 {

	N := len(values)

	mean := NewFloat(0.0, prec)
	tmp := NewFloat(0.0, prec)

	for i := 0; i < N; i++ {
		mean.Add(mean, tmp.SetInt(&values[i]))
	}

	mean.Quo(mean, NewFloat(N, prec))

	variance := NewFloat(0.0, prec)

	for i := 0; i < N; i++ {
		tmp.SetInt(&values[i])
		tmp.Sub(tmp, mean)
		tmp.Mul(tmp, tmp)
		variance.Add(variance, tmp)
	}

	meanF64, _ := mean.Float64()

	if variance.Sign() == 0 || N < 2 {
		return [2]float64{NegInf, meanF64}
	}

	variance.Quo(variance, NewFloat(N-1, prec))

	// log2(std) = log2(variance)/2
	logStd, _ := Log2(variance).Float64()

	return [2]float64{logStd / 2, meanF64}
}
