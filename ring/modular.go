package ring

import (
	"math/bits"

	"github.com/Pro7ech/gpuntt/utils"
	"github.com/Pro7ech/gpuntt/utils/factorization"
)

// AddMod returns a + b mod q for a, b in [0, q).
func AddMod(a, b, q uint64) uint64 {
	return CRed(a+b, q)
}

// SubMod returns a - b mod q for a, b in [0, q).
func SubMod(a, b, q uint64) uint64 {
	return CRed(a+q-b, q)
}

// CRed returns a mod q for a in [0, 2q).
func CRed(a, q uint64) uint64 {
	if a >= q {
		return a - q
	}
	return a
}

// MulModNaive returns a * b mod q.
// The product is computed on 128 bits and reduced by division,
// it is only meant for precomputations.
func MulModNaive(a, b, q uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return bits.Rem64(hi, lo, q)
}

// ExpModNaive returns base^exp mod q by square-and-multiply.
func ExpModNaive(base, exp, q uint64) (y uint64) {

	y = 1 % q
	base %= q

	for e := exp; e > 0; e >>= 1 {
		if e&1 == 1 {
			y = MulModNaive(y, base, q)
		}
		base = MulModNaive(base, base, q)
	}

	return
}

// InverseModNaive returns x^-1 mod q for q prime, computed as x^(q-2).
// The result is 0 if x = 0 mod q.
func InverseModNaive(x, q uint64) uint64 {
	return ExpModNaive(x, q-2, q)
}

// IsPrime returns true if x is prime.
func IsPrime(x uint64) bool {
	return factorization.IsPrime(x)
}

// IsPrimitive returns true if x is a primitive n-th root of unity mod q,
// that is x^n = 1 and x^(n/2) != 1 mod q. n must be a power of two.
func IsPrimitive(x, n, q uint64) bool {
	return ExpModNaive(x, n, q) == 1 && ExpModNaive(x, n>>1, q) != 1
}

// BitReverse reverses the low width bits of x.
func BitReverse(x uint64, width int) uint64 {
	return utils.BitReverse64(x, width)
}
