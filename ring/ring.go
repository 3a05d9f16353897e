package ring

import (
	"fmt"
	"math/big"

	"github.com/Pro7ech/gpuntt/utils/bignum"
)

// Ring is a struct storing the precomputations for
// fast modular reduction and NTT for a given modulus.
type Ring struct {
	Transformer
	*RootParameters
}

// NewRing creates a new [Ring] of degree N and modulus Modulus
// with the [Merged] negacyclic NTT.
// An error is returned with a nil *Ring in the case of non NTT-enabling parameters.
func NewRing(N int, Modulus uint64) (r *Ring, err error) {
	return NewRingWithVariant(N, Modulus, Merged)
}

// NewRingWithVariant creates a new [Ring] of degree N and modulus Modulus
// with the NTT of the given [NTTVariant].
// An error is returned with a nil *Ring in the case of non NTT-enabling parameters.
func NewRingWithVariant(N int, Modulus uint64, v NTTVariant) (r *Ring, err error) {

	// Checks if N is a power of 2
	if N < 2 || N&(N-1) != 0 {
		return nil, fmt.Errorf("invalid ring degree: %d must be a power of 2 greater than 1", N)
	}

	var rp *RootParameters
	if rp, err = NewRootParameters(log2(N), Modulus); err != nil {
		return nil, err
	}

	return NewRingFromRootParameters(rp, v), nil
}

// NewRingFromRootParameters creates a new [Ring] from precomputed [RootParameters].
func NewRingFromRootParameters(rp *RootParameters, v NTTVariant) *Ring {
	return &Ring{
		Transformer:    NewTransformer(rp, v),
		RootParameters: rp,
	}
}

// NewPoly allocates a new [Poly] of N coefficients.
func (r Ring) NewPoly() Poly {
	return NewPoly(r.N)
}

// NTT evaluates p2 = NTT(p1).
func (r Ring) NTT(p1, p2 []uint64) {
	r.Forward(p1, p2)
}

// INTT evaluates p2 = INTT(p1).
func (r Ring) INTT(p1, p2 []uint64) {
	r.Backward(p1, p2)
}

// Add evaluates p3 = p1 + p2 (mod modulus).
func (r Ring) Add(p1, p2, p3 []uint64) {
	AddVec(p1, p2, p3, r.Modulus)
}

// Sub evaluates p3 = p1 - p2 (mod modulus).
func (r Ring) Sub(p1, p2, p3 []uint64) {
	SubVec(p1, p2, p3, r.Modulus)
}

// Neg evaluates p2 = -p1 (mod modulus).
func (r Ring) Neg(p1, p2 []uint64) {
	NegVec(p1, p2, r.Modulus)
}

// Reduce evaluates p2 = p1 (mod modulus).
func (r Ring) Reduce(p1, p2 []uint64) {
	ReduceVec(p1, p2, r.Modulus, r.Mu, r.QBit)
}

// MulCoeffs evaluates p3 = p1 * p2 (mod modulus) coefficient-wise.
func (r Ring) MulCoeffs(p1, p2, p3 []uint64) {
	MulCoeffsBarrettVec(p1, p2, p3, r.Modulus, r.Mu, r.QBit)
}

// MulCoeffsThenAdd evaluates p3 = p3 + p1 * p2 (mod modulus) coefficient-wise.
func (r Ring) MulCoeffsThenAdd(p1, p2, p3 []uint64) {
	MulCoeffsBarrettThenAddVec(p1, p2, p3, r.Modulus, r.Mu, r.QBit)
}

// MulScalar evaluates p2 = p1 * scalar (mod modulus).
func (r Ring) MulScalar(p1 []uint64, scalar uint64, p2 []uint64) {
	MulScalarBarrettVec(p1, scalar%r.Modulus, p2, r.Modulus, r.Mu, r.QBit)
}

// Stats returns base 2 logarithm of the standard deviation
// and the mean of the coefficients of the polynomial,
// centered around zero modulo the modulus.
func (r Ring) Stats(poly Poly) [2]float64 {
	Q := new(big.Int).SetUint64(r.Modulus)
	values := make([]big.Int, len(poly))
	for i := range values {
		bignum.Center(values[i].SetUint64(poly[i]), Q)
	}
	return bignum.Stats(values, 128)
}

func log2(N int) (logN int) {
	for N > 1 {
		N >>= 1
		logN++
	}
	return
}
