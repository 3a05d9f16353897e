package ring

import (
	"slices"
)

// Poly is the coefficients of a polynomial modulo a single prime.
type Poly []uint64

// NewPoly allocates a new [Poly] of N coefficients set to zero.
func NewPoly(N int) Poly {
	return make([]uint64, N)
}

// N returns the number of coefficients of the polynomial.
func (p Poly) N() int {
	return len(p)
}

// Zero sets all coefficients to zero.
func (p Poly) Zero() {
	ZeroVec(p)
}

// Equal returns true if the receiver and other have the same coefficients.
func (p Poly) Equal(other *Poly) bool {
	return other != nil && slices.Equal(p, *other)
}

// Clone returns a deep copy of the receiver.
func (p Poly) Clone() *Poly {
	pCpy := Poly(slices.Clone(p))
	return &pCpy
}

// Copy copies the coefficients of other on the receiver,
// up to the size of the smallest of the two.
func (p *Poly) Copy(other *Poly) {
	copy(*p, *other)
}
