// Package factorization implements the factorization of 64-bit integers,
// used to certify primitive roots of unity.
package factorization

import (
	"math/big"
	"math/bits"
	"slices"
)

const trialDivisionBound = 1 << 12

// IsPrime returns true if m is prime.
// The test is Baillie-PSW, which is exact for 64-bit integers.
func IsPrime(m uint64) bool {
	return new(big.Int).SetUint64(m).ProbablyPrime(0)
}

// GetFactors returns the distinct prime factors of m in increasing order.
func GetFactors(m uint64) (factors []uint64) {

	if m < 2 {
		return nil
	}

	for p := uint64(2); p < trialDivisionBound && p*p <= m; p++ {
		if m%p == 0 {
			factors = append(factors, p)
			for m%p == 0 {
				m /= p
			}
		}
	}

	var split func(n uint64)
	split = func(n uint64) {

		if n == 1 {
			return
		}

		if IsPrime(n) {
			factors = append(factors, n)
			return
		}

		d := GetFactorPollardRho(n)
		split(d)
		split(n / d)
	}

	split(m)

	slices.Sort(factors)

	return slices.Compact(factors)
}

// GetFactorPollardRho returns a non-trivial factor of the composite m
// using Pollard's rho with Floyd's cycle detection.
func GetFactorPollardRho(m uint64) (d uint64) {

	if m&1 == 0 {
		return 2
	}

	for c := uint64(1); ; c++ {

		f := func(x uint64) uint64 {
			return addMod(mulMod(x, x, m), c, m)
		}

		x, y := uint64(2), uint64(2)
		d = 1

		for d == 1 {
			x = f(x)
			y = f(f(y))
			d = gcd(diff(x, y), m)
		}

		if d != m {
			return
		}
	}
}

func mulMod(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return bits.Rem64(hi, lo, m)
}

func addMod(a, b, m uint64) uint64 {
	s, carry := bits.Add64(a, b, 0)
	if carry != 0 || s >= m {
		s -= m
	}
	return s
}

func diff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
