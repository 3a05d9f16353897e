package ring

import (
	"fmt"
	"math/bits"

	"github.com/google/go-cmp/cmp"

	"github.com/Pro7ech/gpuntt/utils/factorization"
)

const (
	// MinLogN is the minimum supported log2 of the transform length.
	MinLogN = 1
	// MaxLogN is the maximum supported log2 of the transform length.
	MaxLogN = 30
)

// RootParameters stores the constants of the NTT of size N modulo a prime.
// It is immutable once created.
type RootParameters struct {
	LogN    int
	N       int
	Modulus uint64

	// Barrett constant mu = floor(2^(2*QBit+1)/Modulus)
	QBit int
	Mu   uint64

	// Unique factors of Modulus-1 and the smallest generator of Z_Modulus^*
	Factors   []uint64
	Generator uint64

	Psi      uint64 // primitive 2N-th root of unity
	PsiInv   uint64
	Omega    uint64 // Psi^2, primitive N-th root of unity
	OmegaInv uint64
	NInv     uint64 // N^-1 mod Modulus
}

// NewRootParameters computes the [RootParameters] of the NTT of size 2^logN modulo q.
// An error is returned if q is not a prime equal to 1 mod 2^(logN+1).
func NewRootParameters(logN int, q uint64) (rp *RootParameters, err error) {
	return NewRootParametersWithFactors(logN, q, nil)
}

// NewRootParametersWithFactors is identical to [NewRootParameters] but uses
// the given unique factors of q-1 instead of factoring q-1.
func NewRootParametersWithFactors(logN int, q uint64, factors []uint64) (rp *RootParameters, err error) {

	if logN < MinLogN || logN > MaxLogN {
		return nil, fmt.Errorf("invalid logN: %d must be in [%d, %d]", logN, MinLogN, MaxLogN)
	}

	if qbit := bits.Len64(q); qbit < 2 || qbit > MaxBarrettModulusBitLength {
		return nil, fmt.Errorf("invalid modulus: %d has %d bits but must have at most %d", q, qbit, MaxBarrettModulusBitLength)
	}

	if !IsPrime(q) {
		return nil, fmt.Errorf("invalid modulus: %d is not prime", q)
	}

	N := uint64(1) << logN

	if q&(2*N-1) != 1 {
		return nil, fmt.Errorf("invalid modulus: %d != 1 mod 2N=%d", q, 2*N)
	}

	rp = &RootParameters{LogN: logN, N: int(N), Modulus: q}

	rp.Mu, rp.QBit = GetBarrettConstant(q)

	if rp.Generator, rp.Factors, err = PrimitiveRoot(q, factors); err != nil {
		return nil, err
	}

	rp.Psi = ExpModNaive(rp.Generator, (q-1)/(2*N), q)

	if !IsPrimitive(rp.Psi, 2*N, q) {
		return nil, fmt.Errorf("invalid 2N-th primitive root: psi=%d does not have order %d mod %d", rp.Psi, 2*N, q)
	}

	rp.PsiInv = InverseModNaive(rp.Psi, q)
	rp.Omega = MulModNaive(rp.Psi, rp.Psi, q)
	rp.OmegaInv = MulModNaive(rp.PsiInv, rp.PsiInv, q)
	rp.NInv = InverseModNaive(N, q)

	return
}

// NewRootParametersFromBitWidth generates the smallest NTT-friendly prime of
// bitWidth bits with [GenGoodPrime] and returns its [RootParameters].
func NewRootParametersFromBitWidth(logN, bitWidth int) (rp *RootParameters, err error) {

	if logN < MinLogN || logN > MaxLogN {
		return nil, fmt.Errorf("invalid logN: %d must be in [%d, %d]", logN, MinLogN, MaxLogN)
	}

	var q uint64
	if q, err = GenGoodPrime(1<<logN, DefaultPrimeMultiplier, bitWidth); err != nil {
		return nil, err
	}

	return NewRootParameters(logN, q)
}

// Equal returns true if the receiver and other hold the same constants.
func (rp RootParameters) Equal(other *RootParameters) bool {
	return other != nil && cmp.Equal(rp, *other)
}

// GenPrimitiveRoot returns an element of order exactly n modulo the prime q.
// n must be a power of two dividing q-1.
func GenPrimitiveRoot(n, q uint64) (root uint64, err error) {

	if n == 0 || n&(n-1) != 0 || (q-1)%n != 0 {
		return 0, fmt.Errorf("invalid order: %d must be a power of two dividing q-1=%d", n, q-1)
	}

	var g uint64
	if g, _, err = PrimitiveRoot(q, nil); err != nil {
		return
	}

	root = ExpModNaive(g, (q-1)/n, q)

	if n > 1 && !IsPrimitive(root, n, q) {
		return 0, fmt.Errorf("invalid primitive root: %d does not have order %d mod %d", root, n, q)
	}

	return
}

// PrimitiveRoot computes the smallest primitive root of the given prime q.
// The unique factors of q-1 can be given to speed up the search for the root.
func PrimitiveRoot(q uint64, factors []uint64) (uint64, []uint64, error) {

	if factors != nil {
		if err := CheckFactors(q-1, factors); err != nil {
			return 0, factors, err
		}
	} else {
		factors = factorization.GetFactors(q - 1) //Factor q-1, might be slow
	}

	if q == 2 {
		return 1, factors, nil
	}

	for g := uint64(2); g < q; g++ {
		if CheckPrimitiveRoot(g, q, factors) == nil {
			return g, factors, nil
		}
	}

	return 0, factors, fmt.Errorf("no primitive root found mod %d", q)
}

// CheckFactors checks that the given list of factors contains
// all the unique primes of m.
func CheckFactors(m uint64, factors []uint64) (err error) {

	for _, factor := range factors {

		if !IsPrime(factor) {
			return fmt.Errorf("composite factor")
		}

		for m%factor == 0 {
			m /= factor
		}
	}

	if m != 1 {
		return fmt.Errorf("incomplete factor list")
	}

	return
}

// CheckPrimitiveRoot checks that g is a valid primitive root mod q,
// given the unique factors of q-1.
func CheckPrimitiveRoot(g, q uint64, factors []uint64) (err error) {
	for _, factor := range factors {
		if ExpModNaive(g, (q-1)/factor, q) == 1 {
			return fmt.Errorf("invalid primitive root")
		}
	}
	return
}

// GetOmega returns baseOmega^(k * 2^stage) mod q, the twiddle of
// group k at a butterfly stage whose root has order n/2^stage.
func GetOmega(stage int, k, baseOmega, q uint64) uint64 {
	return ExpModNaive(ExpModNaive(baseOmega, uint64(1)<<stage, q), k, q)
}
