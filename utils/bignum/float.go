package bignum

import (
	"fmt"
	"math/big"

	"github.com/ALTree/bigfloat"
)

// NewFloat allocates a new *big.Float with the given precision.
// Accepted types are: float64, int, int64, uint64, *big.Int and *big.Float.
func NewFloat(x interface{}, prec uint) (y *big.Float) {

	y = new(big.Float).SetPrec(prec)

	if x == nil {
		return
	}

	switch x := x.(type) {
	case float64:
		y.SetFloat64(x)
	case int:
		y.SetInt64(int64(x))
	case int64:
		y.SetInt64(x)
	case uint64:
		y.SetUint64(x)
	case *big.Int:
		y.SetInt(x)
	case *big.Float:
		y.Set(x)
	default:
		panic(fmt.Sprintf("cannot NewFloat: accepted types are float64, int, int64, uint64, *big.Int, *big.Float, but is %T", x))
	}

	return
}

// Log2 returns log2(x) at the precision of x.
// x must be strictly positive.
func Log2(x *big.Float) (y *big.Float) {
	prec := x.Prec()
	y = bigfloat.Log(x)
	return y.Quo(y, bigfloat.Log(NewFloat(2.0, prec)))
}

// Log2Int returns log2(|x|) as a float64, or -Inf if x is zero.
// It remains accurate for integers that overflow a float64.
func Log2Int(x *big.Int) float64 {
	if x.Sign() == 0 {
		return NegInf
	}
	f, _ := Log2(NewFloat(new(big.Int).Abs(x), uint(x.BitLen())+64)).Float64()
	return f
}
