package ring

import (
	"fmt"
	"math/bits"

	"github.com/Pro7ech/gpuntt/utils"
)

// RNSPoly is the structure that contains the coefficients of an RNS polynomial.
// Coefficients are stored as a matrix backed by an 1D array in limb-major
// order: limb i occupies [i*N, (i+1)*N) of the backing array.
type RNSPoly []Poly

// BufferSize returns the minimum buffer size
// to instantiate the receiver through [FromBuffer].
func (p *RNSPoly) BufferSize(N, Level int) int {
	return N * (Level + 1)
}

// FromBuffer assigns new backing array to the receiver.
func (p *RNSPoly) FromBuffer(N, Level int, buf []uint64) {

	if len(buf) < p.BufferSize(N, Level) {
		panic(fmt.Errorf("invalid buffer size: N=%d x (Level+1)=%d < len(p)=%d", N, Level+1, len(buf)))
	}

	*p = make([]Poly, Level+1)
	for i := range Level + 1 {
		(*p)[i] = buf[i*N : (i+1)*N : (i+1)*N]
	}
}

// NewRNSPoly creates a new polynomial with N coefficients set to zero and Level+1 moduli.
func NewRNSPoly(N, Level int) (p RNSPoly) {
	p.FromBuffer(N, Level, make([]uint64, p.BufferSize(N, Level)))
	return
}

// At returns the i-th row of the receiver.
func (p RNSPoly) At(i int) Poly {
	if i > p.Level() {
		panic(fmt.Errorf("i > p.Level()"))
	}
	return p[i]
}

// N returns the number of coefficients of the polynomial, which equals the degree of the Ring cyclotomic polynomial.
func (p RNSPoly) N() int {
	if len(p) == 0 {
		return 0
	}
	return p.At(0).N()
}

// LogN returns the base two logarithm of the number of coefficients of the polynomial.
func (p RNSPoly) LogN() int {
	return bits.Len64(uint64(p.N()) - 1)
}

// Level returns the current number of moduli minus 1.
func (p RNSPoly) Level() int {
	return len(p) - 1
}

// Zero sets all coefficients of the target polynomial to 0.
func (p RNSPoly) Zero() {
	for i := range p {
		ZeroVec(p.At(i))
	}
}

// Equal returns true if both polynomials have the same coefficients.
func (p RNSPoly) Equal(other *RNSPoly) bool {

	if other == nil || len(p) != len(*other) {
		return false
	}

	for i := range p {
		if !p[i].Equal(&(*other)[i]) {
			return false
		}
	}

	return true
}

// Clone returns a deep copy of the receiver backed by a new limb-major array.
func (p RNSPoly) Clone() *RNSPoly {
	pCpy := NewRNSPoly(p.N(), p.Level())
	pCpy.Copy(&p)
	return &pCpy
}

// Copy copies the coefficients of p1 on the target polynomial,
// up to the smallest level of the two.
// This method does nothing if the underlying arrays are the same.
func (p *RNSPoly) Copy(p1 *RNSPoly) {
	for i := 0; i < min(len(*p), len(*p1)); i++ {
		if !utils.Alias1D((*p)[i], (*p1)[i]) {
			copy((*p)[i], (*p1)[i])
		}
	}
}

// Flatten writes the coefficients of the receiver in limb-major order on buf.
func (p RNSPoly) Flatten(buf []uint64) {

	N := p.N()

	if len(buf) < N*len(p) {
		panic(fmt.Errorf("invalid buffer size: N=%d x limbs=%d > len(buf)=%d", N, len(p), len(buf)))
	}

	for i := range p {
		copy(buf[i*N:(i+1)*N], p[i])
	}
}

// SetFlat sets the coefficients of the receiver from the limb-major array buf.
func (p RNSPoly) SetFlat(buf []uint64) {

	N := p.N()

	if len(buf) < N*len(p) {
		panic(fmt.Errorf("invalid buffer size: N=%d x limbs=%d > len(buf)=%d", N, len(p), len(buf)))
	}

	for i := range p {
		copy(p[i], buf[i*N:(i+1)*N])
	}
}
