package ring

import (
	"errors"
	"fmt"
)

// TwiddleOrder is the index order of a twiddle table.
type TwiddleOrder int

const (
	// Natural stores the i-th power at index i.
	Natural = TwiddleOrder(0)
	// BitReversed stores the twiddle of group i of stage s at index 2^s + i,
	// which for the psi tables is the i-th power at index bitrev(i).
	BitReversed = TwiddleOrder(1)
)

func (o TwiddleOrder) String() string {
	switch o {
	case Natural:
		return "Natural"
	case BitReversed:
		return "BitReversed"
	default:
		return fmt.Sprintf("TwiddleOrder(%d)", int(o))
	}
}

// TwiddleKind is the root of unity a twiddle table is built from.
type TwiddleKind int

const (
	// Psi tables hold powers of the 2N-th root of unity.
	Psi = TwiddleKind(0)
	// Omega tables hold powers of the N-th root of unity.
	Omega = TwiddleKind(1)
)

func (k TwiddleKind) String() string {
	switch k {
	case Psi:
		return "Psi"
	case Omega:
		return "Omega"
	default:
		return fmt.Sprintf("TwiddleKind(%d)", int(k))
	}
}

// ErrTwiddleLayout is returned when a twiddle table does not match
// the layout expected by an NTT variant.
var ErrTwiddleLayout = errors.New("twiddle table layout mismatch")

// TwiddleTable is a pair of forward and backward tables of N twiddles modulo Modulus.
type TwiddleTable struct {
	Kind     TwiddleKind
	Order    TwiddleOrder
	Modulus  uint64
	Forward  []uint64
	Backward []uint64
}

// NewTwiddleTable builds the [TwiddleTable] of the given kind and order from rp.
func NewTwiddleTable(rp *RootParameters, kind TwiddleKind, order TwiddleOrder) (t *TwiddleTable) {

	t = &TwiddleTable{
		Kind:     kind,
		Order:    order,
		Modulus:  rp.Modulus,
		Forward:  make([]uint64, rp.N),
		Backward: make([]uint64, rp.N),
	}

	q, logN := rp.Modulus, rp.LogN

	switch {
	case kind == Psi && order == BitReversed:
		GeneratePsiArray(t.Forward, rp.Psi, q, logN)
		GenerateInvPsiArray(t.Backward, rp.Psi, q, logN)
	case kind == Psi && order == Natural:
		GeneratePsiArrayNatural(t.Forward, rp.Psi, q, logN)
		GenerateInvPsiArrayNatural(t.Backward, rp.Psi, q, logN)
	case kind == Omega && order == BitReversed:
		GenerateOmegaArray(t.Forward, rp.Omega, q, logN)
		GenerateOmegaArray(t.Backward, rp.OmegaInv, q, logN)
	case kind == Omega && order == Natural:
		GeneratePsiArrayNatural(t.Forward, rp.Omega, q, logN)
		GeneratePsiArrayNatural(t.Backward, rp.OmegaInv, q, logN)
	default:
		// Sanity check
		panic(fmt.Errorf("invalid twiddle table: kind=%s order=%s", kind, order))
	}

	return
}

// N returns the size of the table.
func (t TwiddleTable) N() int {
	return len(t.Forward)
}

// Validate checks that the table can feed the given [NTTVariant]:
// its declared kind and order must be the ones the variant indexes,
// and its content must be consistent with the declared order.
func (t TwiddleTable) Validate(v NTTVariant) (err error) {

	kind, order := v.TwiddleLayout()

	if t.Kind != kind || t.Order != order {
		return fmt.Errorf("%w: %s expects %s/%s but table is %s/%s", ErrTwiddleLayout, v, kind, order, t.Kind, t.Order)
	}

	N := len(t.Forward)

	if N < 2 || N&(N-1) != 0 || len(t.Backward) != N {
		return fmt.Errorf("%w: invalid table sizes len(forward)=%d len(backward)=%d", ErrTwiddleLayout, N, len(t.Backward))
	}

	q := t.Modulus

	if t.Forward[0] != 1 || t.Backward[0] != 1 {
		return fmt.Errorf("%w: table must start with 1", ErrTwiddleLayout)
	}

	if N < 4 {
		return
	}

	// Spot checks on the first indexes, which differ between layouts:
	//  - psi, bit-reversed: [1, psi^(N/2), psi^(N/4), ...] with psi^(N/2) a square root of -1
	//  - psi, natural:      [1, psi, psi^2, ...]
	//  - omega, staged:     [1, 1, 1, omega^(N/4), ...]
	t1, t2, t3 := t.Forward[1], t.Forward[2], t.Forward[3]

	switch {
	case t.Kind == Psi && t.Order == BitReversed:
		if MulModNaive(t1, t1, q) != q-1 || MulModNaive(t2, t2, q) != t1 || MulModNaive(t1, t.Backward[1], q) != 1 {
			return fmt.Errorf("%w: psi table content is not in bit-reversed order", ErrTwiddleLayout)
		}
	case t.Kind == Psi && t.Order == Natural:
		if MulModNaive(t1, t1, q) != t2 || t2 == q-1 || MulModNaive(t1, t.Backward[1], q) != 1 {
			return fmt.Errorf("%w: psi table content is not in natural order", ErrTwiddleLayout)
		}
	case t.Kind == Omega && t.Order == BitReversed:
		if t1 != 1 || t2 != 1 || MulModNaive(t3, t3, q) != q-1 {
			return fmt.Errorf("%w: omega table content is not in stage order", ErrTwiddleLayout)
		}
	}

	return
}

// GeneratePsiArray writes out[bitrev(i)] = psi^i mod q for i in [0, 2^logn).
func GeneratePsiArray(out []uint64, psi, q uint64, logn int) {
	n := uint64(1) << logn
	var x uint64 = 1
	for i := uint64(0); i < n; i++ {
		out[BitReverse(i, logn)] = x
		x = MulModNaive(x, psi, q)
	}
}

// GenerateInvPsiArray writes out[bitrev(i)] = psi^-i mod q for i in [0, 2^logn).
func GenerateInvPsiArray(out []uint64, psi, q uint64, logn int) {
	GeneratePsiArray(out, InverseModNaive(psi, q), q, logn)
}

// GeneratePsiArrayNatural writes out[i] = psi^i mod q for i in [0, 2^logn).
func GeneratePsiArrayNatural(out []uint64, psi, q uint64, logn int) {
	n := 1 << logn
	var x uint64 = 1
	for i := 0; i < n; i++ {
		out[i] = x
		x = MulModNaive(x, psi, q)
	}
}

// GenerateInvPsiArrayNatural writes out[i] = psi^-i mod q for i in [0, 2^logn).
func GenerateInvPsiArrayNatural(out []uint64, psi, q uint64, logn int) {
	GeneratePsiArrayNatural(out, InverseModNaive(psi, q), q, logn)
}

// GenerateOmegaArray writes the stage twiddles of the cyclic transform
// of size 2^logn: out[2^s + i] = omega^(bitrev_s(i) * 2^(logn-1-s)) for
// each stage s and group i < 2^s. out[0] is set to 1.
func GenerateOmegaArray(out []uint64, omega, q uint64, logn int) {
	out[0] = 1
	for s := 0; s < logn; s++ {
		m := 1 << s
		for i := 0; i < m; i++ {
			out[m+i] = GetOmega(logn-1-s, BitReverse(uint64(i), s), omega, q)
		}
	}
}
