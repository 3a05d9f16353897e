package hegpu

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Pro7ech/gpuntt/ring"
)

const (
	// MinLogN is the minimum supported log2 of the ring degree.
	MinLogN = 11
	// MaxLogN is the maximum supported log2 of the ring degree.
	MaxLogN = 18
)

// ParametersLiteral is a literal representation of the parameters of the
// device operations. It has public fields and is used to express unchecked
// user-defined parameters literally into Go programs or configuration files.
// The [NewParametersFromLiteral] function is used to generate the actual
// checked parameters from the literal representation.
//
// Users must set the ring degree (LogN) and the coefficient modulus, by either
// setting Q to the desired moduli chain, or by setting LogQ to the desired
// moduli sizes, in which case NTT-friendly primes are generated.
type ParametersLiteral struct {
	LogN    int             `yaml:"logN" json:"LogN"`
	Q       []uint64        `yaml:"q,omitempty" json:"Q,omitempty"`
	LogQ    []int           `yaml:"logQ,omitempty" json:"LogQ,omitempty"`
	Variant ring.NTTVariant `yaml:"variant,omitempty" json:"Variant,omitempty"`
}

// Parameters are checked parameters: a ring degree within bounds and a
// chain of distinct NTT-friendly primes. Parameters are immutable.
type Parameters struct {
	ringQ ring.RNSRing
}

// NewParametersFromLiteral validates pl and returns the corresponding [Parameters].
func NewParametersFromLiteral(pl ParametersLiteral) (p Parameters, err error) {

	if pl.LogN < MinLogN || pl.LogN > MaxLogN {
		return Parameters{}, errors.Wrapf(ErrInvalidLogN, "logN=%d must be in [%d, %d]", pl.LogN, MinLogN, MaxLogN)
	}

	N := 1 << pl.LogN

	moduli := pl.Q

	switch {
	case len(pl.Q) != 0 && len(pl.LogQ) != 0:
		return Parameters{}, errors.New("invalid parameters literal: Q and LogQ are mutually exclusive")
	case len(pl.LogQ) != 0:
		if moduli, err = ring.GenModuli(uint64(N), pl.LogQ); err != nil {
			return Parameters{}, errors.Wrap(err, "cannot generate moduli")
		}
	case len(pl.Q) == 0:
		return Parameters{}, errors.New("invalid parameters literal: one of Q or LogQ must be set")
	}

	if p.ringQ, err = ring.NewRNSRingWithVariant(N, moduli, pl.Variant); err != nil {
		return Parameters{}, errors.Wrap(err, "invalid parameters literal")
	}

	return
}

// ParametersLiteral returns the [ParametersLiteral] of the target [Parameters].
func (p Parameters) ParametersLiteral() ParametersLiteral {
	return ParametersLiteral{
		LogN:    p.LogN(),
		Q:       p.Q(),
		Variant: p.Variant(),
	}
}

// RingQ returns the host ring of the parameters.
func (p Parameters) RingQ() ring.RNSRing {
	return p.ringQ
}

// N returns the ring degree.
func (p Parameters) N() int {
	return p.ringQ.N()
}

// LogN returns the log2 of the ring degree.
func (p Parameters) LogN() int {
	return p.ringQ.LogN()
}

// Q returns a copy of the moduli chain.
func (p Parameters) Q() []uint64 {
	return p.ringQ.ModuliChain()
}

// QCount returns the number of limbs.
func (p Parameters) QCount() int {
	return p.ringQ.ModuliChainLength()
}

// LogQ returns the size of the coefficient modulus in bits.
func (p Parameters) LogQ() float64 {
	return p.ringQ.LogModuli()
}

// Variant returns the NTT variant of the parameters.
func (p Parameters) Variant() ring.NTTVariant {
	return p.ringQ.Variant()
}

// Equal returns true if both parameters have the same ring degree, moduli and variant.
func (p Parameters) Equal(other *Parameters) bool {
	if other == nil || p.LogN() != other.LogN() || p.Variant() != other.Variant() {
		return false
	}
	q0, q1 := p.Q(), other.Q()
	if len(q0) != len(q1) {
		return false
	}
	for i := range q0 {
		if q0[i] != q1[i] {
			return false
		}
	}
	return true
}

// MarshalJSON returns a JSON representation of the parameters.
func (p Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ParametersLiteral())
}

// UnmarshalJSON reads a JSON representation of a parameter set into the receiver.
func (p *Parameters) UnmarshalJSON(data []byte) (err error) {
	var pl ParametersLiteral
	if err = json.Unmarshal(data, &pl); err != nil {
		return
	}
	*p, err = NewParametersFromLiteral(pl)
	return
}

// ReadParametersLiteral reads a [ParametersLiteral] from a YAML file.
func ReadParametersLiteral(path string) (pl ParametersLiteral, err error) {

	data, err := os.ReadFile(path)
	if err != nil {
		return pl, errors.Wrapf(err, "cannot read parameters file %s", path)
	}

	if err = yaml.Unmarshal(data, &pl); err != nil {
		return pl, errors.Wrapf(err, "cannot parse parameters file %s", path)
	}

	return
}
