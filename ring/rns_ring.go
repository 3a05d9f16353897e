// Package ring implements RNS-accelerated modular arithmetic operations for polynomials, including:
// NTT-friendly prime and primitive root generation; twiddle tables; the merged, cyclic and
// twisted number theoretic transforms (NTT) with Barrett reduction; uniform sampling.
// It is the sequential reference of the device kernels.
package ring

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"

	"github.com/Pro7ech/gpuntt/utils"
	"github.com/Pro7ech/gpuntt/utils/bignum"
)

// RNSRing is a struct regrouping a set of [Ring] of the same degree,
// one per prime of the RNS basis.
type RNSRing []*Ring

// NewRNSRing creates a new [RNSRing] with degree N and coefficient moduli Moduli with the [Merged] NTT.
// N must be a power of two. Moduli should be a non-empty []uint64 with distinct prime elements.
// All moduli must also be equal to 1 modulo 2*N.
// An error is returned with a nil RNSRing in the case of non NTT-enabling parameters.
func NewRNSRing(N int, Moduli []uint64) (r RNSRing, err error) {
	return NewRNSRingWithVariant(N, Moduli, Merged)
}

// NewRNSRingWithVariant creates a new [RNSRing] with degree N, coefficient moduli ModuliChain
// and the NTT of the given [NTTVariant].
func NewRNSRingWithVariant(N int, ModuliChain []uint64, v NTTVariant) (r RNSRing, err error) {

	if len(ModuliChain) == 0 {
		return nil, fmt.Errorf("invalid ModuliChain (must be a non-empty []uint64)")
	}

	if !utils.AllDistinct(ModuliChain) {
		return nil, fmt.Errorf("invalid ModuliChain (moduli are not distinct)")
	}

	r = make([]*Ring, len(ModuliChain))

	for i := range r {
		if r[i], err = NewRingWithVariant(N, ModuliChain[i], v); err != nil {
			return nil, err
		}
	}

	return
}

// NewRNSRingFromRings returns a new [RNSRing] instantiated with the provided Rings.
// All Rings must have the same ring degree.
func NewRNSRingFromRings(rings []*Ring) (r RNSRing, err error) {

	if len(rings) == 0 {
		return nil, fmt.Errorf("invalid Rings: must be non-empty")
	}

	N := rings[0].N
	for i := range rings {
		if rings[i].N != N {
			return nil, fmt.Errorf("invalid Rings: all Rings must have the same ring degree")
		}
	}

	return RNSRing(rings), nil
}

// N returns the ring degree.
func (r RNSRing) N() int {
	return r[0].N
}

// LogN returns log2(ring degree).
func (r RNSRing) LogN() int {
	return bits.Len64(uint64(r.N() - 1))
}

// LogModuli returns the size of the modulus in bits.
func (r RNSRing) LogModuli() (logmod float64) {
	for _, qi := range r.ModuliChain() {
		logmod += math.Log2(float64(qi))
	}
	return
}

// ModuliChainLength returns the number of primes in the RNS basis of the ring.
func (r RNSRing) ModuliChainLength() int {
	return len(r)
}

// Level returns the level of the current ring.
func (r RNSRing) Level() int {
	return len(r) - 1
}

// AtLevel returns an instance of the target ring that operates at the target level.
// This instance is thread safe and can be use concurrently with the base ring.
func (r RNSRing) AtLevel(level int) RNSRing {

	// Sanity check
	if level < 0 {
		panic("level cannot be negative")
	}

	// Sanity check
	if level > r.Level() {
		panic("level cannot be larger than max level")
	}

	return r[:level+1]
}

// ModuliChain returns the list of primes in the modulus chain.
func (r RNSRing) ModuliChain() (moduli []uint64) {
	moduli = make([]uint64, len(r))
	for i := range r {
		moduli[i] = r[i].Modulus
	}
	return
}

// Variant returns the [NTTVariant] of the ring.
func (r RNSRing) Variant() NTTVariant {
	return r[0].Variant()
}

// NewRNSPoly creates a new polynomial with all coefficients set to 0.
func (r RNSRing) NewRNSPoly() RNSPoly {
	return NewRNSPoly(r.N(), r.Level())
}

// Modulus returns the product of the moduli.
func (r RNSRing) Modulus() (Q *big.Int) {
	Q = big.NewInt(1)
	for _, s := range r {
		Q.Mul(Q, new(big.Int).SetUint64(s.Modulus))
	}
	return
}

// PolyToBigintCentered reconstructs p modulo the product Q of the moduli
// with the CRT and writes the coefficients, centered in (-Q/2, Q/2], on values.
func (r RNSRing) PolyToBigintCentered(p RNSPoly, values []big.Int) {

	Q := r.Modulus()

	crt := make([]big.Int, len(r))
	tmp := new(big.Int)

	for i, s := range r {
		qi := new(big.Int).SetUint64(s.Modulus)
		QoverQi := new(big.Int).Quo(Q, qi)
		// (Q/qi) * ((Q/qi)^-1 mod qi)
		tmp.Mod(QoverQi, qi)
		crt[i].Mul(QoverQi, tmp.ModInverse(tmp, qi))
	}

	for j := range values[:r.N()] {
		values[j].SetUint64(0)
		for i := range r {
			tmp.SetUint64(p.At(i)[j])
			tmp.Mul(tmp, &crt[i])
			values[j].Add(&values[j], tmp)
		}
		bignum.Center(values[j].Mod(&values[j], Q), Q)
	}
}

// Stats returns the base 2 logarithm of the standard deviation and the mean
// of the coefficients of p reconstructed and centered modulo Q.
func (r RNSRing) Stats(p RNSPoly) [2]float64 {
	values := make([]big.Int, r.N())
	r.PolyToBigintCentered(p, values)
	return bignum.Stats(values, uint(r.LogModuli())+128)
}

// CountMismatches returns the number of coefficients that differ between p1 and p2.
func CountMismatches(p1, p2 RNSPoly) (count int) {
	for i := 0; i < min(len(p1), len(p2)); i++ {
		count += CountMismatchesVec(p1[i], p2[i])
	}
	for i := min(len(p1), len(p2)); i < max(len(p1), len(p2)); i++ {
		if i < len(p1) {
			count += len(p1[i])
		} else {
			count += len(p2[i])
		}
	}
	return
}
