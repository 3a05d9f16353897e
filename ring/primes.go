package ring

import (
	"errors"
	"fmt"
	"math/bits"
)

// DefaultPrimeMultiplier is the multiplier k used to search NTT-friendly
// primes of the form k*2n*j + 1.
const DefaultPrimeMultiplier = 2

// ErrPrimeNotFound is returned when the search for an NTT-friendly prime
// leaves the requested bit width without finding enough primes.
var ErrPrimeNotFound = errors.New("no NTT-friendly prime found")

// GenGoodPrime returns the smallest prime q of exactly bitWidth bits of
// the form q = k*2n*j + 1, searching j upward.
// An exhausted search is a configuration error and must be treated as fatal.
func GenGoodPrime(n, k uint64, bitWidth int) (q uint64, err error) {
	var primes []uint64
	if primes, err = GenNTTPrimes(n, k, bitWidth, 1); err != nil {
		return
	}
	return primes[0], nil
}

// GenNTTPrimes returns the count smallest distinct primes of exactly
// bitWidth bits of the form k*2n*j + 1, in increasing order.
func GenNTTPrimes(n, k uint64, bitWidth, count int) (primes []uint64, err error) {

	if bitWidth < 2 || bitWidth > MaxBarrettModulusBitLength {
		return nil, fmt.Errorf("invalid bit width: %d must be in [2, %d]", bitWidth, MaxBarrettModulusBitLength)
	}

	if n == 0 || k == 0 {
		return nil, fmt.Errorf("invalid prime progression: n=%d and k=%d must be non-zero", n, k)
	}

	step := k * 2 * n

	if bits.Len64(step) >= bitWidth {
		return nil, fmt.Errorf("%w: step k*2n=%d leaves no candidate of %d bits", ErrPrimeNotFound, step, bitWidth)
	}

	// Smallest j such that step*j + 1 >= 2^(bitWidth-1)
	lower := uint64(1) << (bitWidth - 1)
	j := (lower - 1 + step - 1) / step

	for candidate := step*j + 1; bits.Len64(candidate) == bitWidth; candidate += step {
		if IsPrime(candidate) {
			if primes = append(primes, candidate); len(primes) == count {
				return
			}
		}
	}

	return nil, fmt.Errorf("%w: found %d out of %d primes of %d bits equal to 1 mod %d", ErrPrimeNotFound, len(primes), count, bitWidth, step)
}

// GenModuli returns one distinct NTT-friendly prime per entry of logQ, of the
// form k*2n*j + 1 with k = [DefaultPrimeMultiplier]. Entries with equal bit
// widths receive consecutive primes of that width.
func GenModuli(n uint64, logQ []int) (moduli []uint64, err error) {

	count := map[int]int{}
	for _, bw := range logQ {
		count[bw]++
	}

	primes := map[int][]uint64{}
	for bw, c := range count {
		if primes[bw], err = GenNTTPrimes(n, DefaultPrimeMultiplier, bw, c); err != nil {
			return nil, err
		}
	}

	moduli = make([]uint64, len(logQ))
	for i, bw := range logQ {
		moduli[i] = primes[bw][0]
		primes[bw] = primes[bw][1:]
	}

	return
}
