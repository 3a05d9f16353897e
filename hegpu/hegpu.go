// Package hegpu implements the device side homomorphic operations on raw RNS
// ciphertexts: import and export of limb-major coefficient arrays, residency
// transfers between the host and a [device.Device], domain changes through the
// number theoretic transform, addition, and multiplication without
// relinearization.
//
// Key generation, encoding, encryption, decryption, relinearization and
// rescaling are left to the host library that produces the ciphertexts.
package hegpu

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidLogN    = errors.New("invalid ring degree")
	ErrShapeMismatch  = errors.New("ciphertext shapes do not match")
	ErrFormatMismatch = errors.New("ciphertext formats do not match")
	ErrDegree         = errors.New("invalid ciphertext degree")
	ErrResidency      = errors.New("ciphertext is not resident where required")
)

// Format is the domain in which the coefficients of a ciphertext are represented.
type Format int

const (
	// Coefficient is the representation by the coefficients of the polynomials.
	Coefficient = Format(0)
	// Evaluation is the representation by the evaluations of the polynomials
	// at the roots of the cyclotomic polynomial, in bit-reversed order.
	Evaluation = Format(1)
)

func (f Format) String() string {
	switch f {
	case Coefficient:
		return "Coefficient"
	case Evaluation:
		return "Evaluation"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Residency is the memory in which the arrays of a ciphertext reside.
type Residency int

const (
	Host   = Residency(0)
	Device = Residency(1)
)

func (r Residency) String() string {
	switch r {
	case Host:
		return "Host"
	case Device:
		return "Device"
	default:
		return fmt.Sprintf("Residency(%d)", int(r))
	}
}
