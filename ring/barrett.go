package ring

import (
	"fmt"
	"math/big"
	"math/bits"
)

// MaxBarrettModulusBitLength is the largest modulus bit length
// for which the Barrett constants fit on 64 bits and the
// intermediate product fits on 128 bits.
const MaxBarrettModulusBitLength = 62

// GetBarrettConstant returns mu = floor(2^(2*qbit+1)/q),
// where qbit is the bit length of q.
func GetBarrettConstant(q uint64) (mu uint64, qbit int) {

	qbit = bits.Len64(q)

	// Sanity check
	if qbit < 2 || qbit > MaxBarrettModulusBitLength {
		panic(fmt.Errorf("cannot GetBarrettConstant: invalid modulus bit length %d (must be in [2, %d])", qbit, MaxBarrettModulusBitLength))
	}

	x := new(big.Int).Lsh(big.NewInt(1), uint(2*qbit+1))
	x.Quo(x, new(big.Int).SetUint64(q))

	return x.Uint64(), qbit
}

// BRedWide returns (hi * 2^64 + lo) mod q for an input smaller than 2^(2*qbit).
func BRedWide(hi, lo, q, mu uint64, qbit int) uint64 {

	// rx = z >> (qbit-2), at most qbit+2 bits
	rx := rsh128(hi, lo, uint(qbit-2))

	// rx = (rx * mu) >> (qbit+3)
	mhi, mlo := bits.Mul64(rx, mu)
	rx = rsh128(mhi, mlo, uint(qbit+3))

	// z - rx*q < 3q fits on the low word
	r := lo - rx*q

	for r >= q {
		r -= q
	}

	return r
}

// BRed returns x * y mod q for x, y in [0, q).
func BRed(x, y, q, mu uint64, qbit int) uint64 {
	hi, lo := bits.Mul64(x, y)
	return BRedWide(hi, lo, q, mu, qbit)
}

// BRedAdd returns x mod q for any 64-bit x.
func BRedAdd(x, q, mu uint64, qbit int) uint64 {
	if bits.Len64(x) <= 2*qbit {
		return BRedWide(0, x, q, mu, qbit)
	}
	return x % q
}

func rsh128(hi, lo uint64, s uint) uint64 {
	switch {
	case s == 0:
		return lo
	case s < 64:
		return lo>>s | hi<<(64-s)
	default:
		return hi >> (s - 64)
	}
}
