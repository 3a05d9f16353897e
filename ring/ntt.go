package ring

import (
	"fmt"
)

// NTTVariant enumerates the transform variants.
type NTTVariant int

const (
	// Merged is the negacyclic transform in Z_q[X]/(X^N+1) with the
	// multiplication by the powers of psi folded into the butterflies.
	Merged = NTTVariant(0)
	// Cyclic is the plain transform in Z_q[X]/(X^N-1) using only
	// the powers of omega.
	Cyclic = NTTVariant(1)
	// Twisted is the negacyclic transform evaluated as an explicit
	// multiplication by the powers of psi followed by the [Cyclic] transform.
	Twisted = NTTVariant(2)
)

func (v NTTVariant) String() string {
	switch v {
	case Merged:
		return "Merged"
	case Cyclic:
		return "Cyclic"
	case Twisted:
		return "Twisted"
	default:
		return fmt.Sprintf("NTTVariant(%d)", int(v))
	}
}

// MarshalText encodes the variant by its name.
func (v NTTVariant) MarshalText() ([]byte, error) {
	switch v {
	case Merged, Cyclic, Twisted:
		return []byte(v.String()), nil
	default:
		return nil, fmt.Errorf("invalid NTTVariant: %d", int(v))
	}
}

// UnmarshalText decodes a variant from its name.
func (v *NTTVariant) UnmarshalText(text []byte) error {
	for _, w := range []NTTVariant{Merged, Cyclic, Twisted} {
		if string(text) == w.String() {
			*v = w
			return nil
		}
	}
	return fmt.Errorf("invalid NTTVariant: %q", text)
}

// TwiddleLayout returns the kind and order of the twiddle table
// indexed by the butterflies of the variant.
// For [Twisted], this is the table of the explicit twist, the butterflies
// being the ones of [Cyclic].
func (v NTTVariant) TwiddleLayout() (TwiddleKind, TwiddleOrder) {
	switch v {
	case Merged:
		return Psi, BitReversed
	case Cyclic:
		return Omega, BitReversed
	case Twisted:
		return Psi, Natural
	default:
		// Sanity check
		panic(fmt.Errorf("invalid NTTVariant: %d", int(v)))
	}
}

// Transformer is an interface to provide flexibility on
// what type of NTT is used by the struct [Ring].
type Transformer interface {
	Forward(p1, p2 []uint64)
	Backward(p1, p2 []uint64)
	Variant() NTTVariant
}

type transformerBase struct {
	N       int
	Modulus uint64
	Mu      uint64
	QBit    int
	NInv    uint64
}

// TransformerMerged computes the negacyclic NTT with merged twiddles.
// Forward maps natural order to bit-reversed order and Backward the converse.
type TransformerMerged struct {
	transformerBase
	Psi *TwiddleTable
}

// TransformerCyclic computes the cyclic NTT.
// Forward maps natural order to bit-reversed order and Backward the converse.
type TransformerCyclic struct {
	transformerBase
	Omega *TwiddleTable
}

// TransformerTwisted computes the negacyclic NTT with an explicit twist.
// Its output is identical to the one of [TransformerMerged].
type TransformerTwisted struct {
	transformerBase
	Psi   *TwiddleTable
	Omega *TwiddleTable
}

// NewTransformer returns the [Transformer] of the given variant for rp.
func NewTransformer(rp *RootParameters, v NTTVariant) Transformer {

	base := transformerBase{
		N:       rp.N,
		Modulus: rp.Modulus,
		Mu:      rp.Mu,
		QBit:    rp.QBit,
		NInv:    rp.NInv,
	}

	switch v {
	case Merged:
		return TransformerMerged{transformerBase: base, Psi: NewTwiddleTable(rp, Psi, BitReversed)}
	case Cyclic:
		return TransformerCyclic{transformerBase: base, Omega: NewTwiddleTable(rp, Omega, BitReversed)}
	case Twisted:
		return TransformerTwisted{
			transformerBase: base,
			Psi:             NewTwiddleTable(rp, Psi, Natural),
			Omega:           NewTwiddleTable(rp, Omega, BitReversed),
		}
	default:
		// Sanity check
		panic(fmt.Errorf("invalid NTTVariant: %d", int(v)))
	}
}

func (t transformerBase) copy(p1, p2 []uint64) {

	// Sanity check
	if len(p1) < t.N || len(p2) < t.N {
		panic(fmt.Sprintf("cannot NTT: ensure that len(p1)=%d and len(p2)=%d >= N=%d", len(p1), len(p2), t.N))
	}

	if &p1[0] != &p2[0] {
		copy(p2[:t.N], p1[:t.N])
	}
}

func (t TransformerMerged) Forward(p1, p2 []uint64) {
	t.copy(p1, p2)
	NTTMerged(p2[:t.N], t.Psi.Forward, t.Modulus, t.Mu, t.QBit)
}

func (t TransformerMerged) Backward(p1, p2 []uint64) {
	t.copy(p1, p2)
	INTTMerged(p2[:t.N], t.Psi.Backward, t.NInv, t.Modulus, t.Mu, t.QBit)
}

func (t TransformerMerged) Variant() NTTVariant {
	return Merged
}

func (t TransformerCyclic) Forward(p1, p2 []uint64) {
	t.copy(p1, p2)
	NTTNoBitReverse(p2[:t.N], t.Omega.Forward, t.Modulus, t.Mu, t.QBit)
}

func (t TransformerCyclic) Backward(p1, p2 []uint64) {
	t.copy(p1, p2)
	INTTBitReverse(p2[:t.N], t.Omega.Backward, t.NInv, t.Modulus, t.Mu, t.QBit)
}

func (t TransformerCyclic) Variant() NTTVariant {
	return Cyclic
}

func (t TransformerTwisted) Forward(p1, p2 []uint64) {
	t.copy(p1, p2)
	NTTTwisted(p2[:t.N], t.Psi.Forward, t.Omega.Forward, t.Modulus, t.Mu, t.QBit)
}

func (t TransformerTwisted) Backward(p1, p2 []uint64) {
	t.copy(p1, p2)
	INTTTwisted(p2[:t.N], t.Psi.Backward, t.Omega.Backward, t.NInv, t.Modulus, t.Mu, t.QBit)
}

func (t TransformerTwisted) Variant() NTTVariant {
	return Twisted
}

// NTTNoBitReverse computes in place the cyclic forward NTT of a, with
// a in natural order and the result in bit-reversed order.
// table must be an [Omega] table in [BitReversed] order.
func NTTNoBitReverse(a, table []uint64, q, mu uint64, qbit int) {
	nttCore(a, table, q, mu, qbit)
}

// NTTMerged computes in place the negacyclic forward NTT of a, with
// a in natural order and the result in bit-reversed order.
// table must be a [Psi] table in [BitReversed] order.
func NTTMerged(a, table []uint64, q, mu uint64, qbit int) {
	nttCore(a, table, q, mu, qbit)
}

// INTTBitReverse computes in place the cyclic inverse NTT of a, with
// a in bit-reversed order and the result in natural order.
// table must be the backward [Omega] table in [BitReversed] order.
func INTTBitReverse(a, table []uint64, nInv, q, mu uint64, qbit int) {
	inttCore(a, table, nInv, q, mu, qbit)
}

// INTTMerged computes in place the negacyclic inverse NTT of a, with
// a in bit-reversed order and the result in natural order.
// table must be the backward [Psi] table in [BitReversed] order.
func INTTMerged(a, table []uint64, nInv, q, mu uint64, qbit int) {
	inttCore(a, table, nInv, q, mu, qbit)
}

// NTTTwisted computes the negacyclic forward NTT of a as a[i] *= psi^i
// followed by [NTTNoBitReverse]. psi is a [Psi] table in [Natural] order.
func NTTTwisted(a, psi, omega []uint64, q, mu uint64, qbit int) {
	MulCoeffsBarrettVec(a, psi[:len(a)], a, q, mu, qbit)
	NTTNoBitReverse(a, omega, q, mu, qbit)
}

// INTTTwisted computes the negacyclic inverse NTT of a as [INTTBitReverse]
// followed by a[i] *= psi^-i. psiInv is a backward [Psi] table in [Natural] order.
func INTTTwisted(a, psiInv, omegaInv []uint64, nInv, q, mu uint64, qbit int) {
	INTTBitReverse(a, omegaInv, nInv, q, mu, qbit)
	MulCoeffsBarrettVec(a, psiInv[:len(a)], a, q, mu, qbit)
}

// nttCore is the Cooley-Tukey butterfly network: at stage s, the group i
// of the 2^s groups uses the twiddle table[2^s+i].
func nttCore(a, table []uint64, q, mu uint64, qbit int) {

	n := len(a)

	// Sanity check
	if len(table) < n {
		panic(fmt.Sprintf("cannot nttCore: len(table)=%d < N=%d", len(table), n))
	}

	var U, V, S uint64

	t := n
	for m := 1; m < n; m <<= 1 {

		t >>= 1

		for i := 0; i < m; i++ {

			j1 := 2 * i * t
			j2 := j1 + t

			S = table[m+i]

			for j := j1; j < j2; j++ {
				U = a[j]
				V = BRed(a[j+t], S, q, mu, qbit)
				a[j] = AddMod(U, V, q)
				a[j+t] = SubMod(U, V, q)
			}
		}
	}
}

// inttCore is the Gentleman-Sande butterfly network, inverse of [nttCore]
// for the table of inverse twiddles, followed by the scaling by nInv.
func inttCore(a, table []uint64, nInv, q, mu uint64, qbit int) {

	n := len(a)

	// Sanity check
	if len(table) < n {
		panic(fmt.Sprintf("cannot inttCore: len(table)=%d < N=%d", len(table), n))
	}

	var U, V, S uint64

	t := 1
	for m := n; m > 1; m >>= 1 {

		h := m >> 1
		j1 := 0

		for i := 0; i < h; i++ {

			j2 := j1 + t

			S = table[h+i]

			for j := j1; j < j2; j++ {
				U = a[j]
				V = a[j+t]
				a[j] = AddMod(U, V, q)
				a[j+t] = BRed(SubMod(U, V, q), S, q, mu, qbit)
			}

			j1 += t << 1
		}

		t <<= 1
	}

	MulScalarBarrettVec(a, nInv, a, q, mu, qbit)
}
