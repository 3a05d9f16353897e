package ring

import (
	"fmt"
	"math/bits"

	"github.com/Pro7ech/gpuntt/utils/sampling"
)

// Sampler is an interface for random polynomial samplers.
type Sampler interface {
	GetSource() *sampling.Source
	Read(pol RNSPoly)
	ReadNew(N int) (pol RNSPoly)
	ReadAndAdd(pol RNSPoly)
	AtLevel(level int) Sampler
	WithSource(source *sampling.Source) Sampler
}

// UniformSampler samples polynomials with coefficients
// uniform in [0, Qi-1] for each modulus Qi.
type UniformSampler struct {
	Moduli []uint64
	*sampling.Source
}

// NewUniformSampler creates a new instance of [UniformSampler] from a
// [sampling.Source] and a list of moduli.
func NewUniformSampler(source *sampling.Source, moduli []uint64) (u *UniformSampler) {
	return &UniformSampler{Moduli: moduli, Source: source}
}

// GetSource returns the underlying [sampling.Source] used by the sampler.
func (u UniformSampler) GetSource() *sampling.Source {
	return u.Source
}

// WithSource returns an instance of the underlying sampler with
// a new [sampling.Source].
// It can be used concurrently with the original sampler.
func (u UniformSampler) WithSource(source *sampling.Source) Sampler {
	return &UniformSampler{Moduli: u.Moduli, Source: source}
}

// AtLevel returns an instance of the target sampler to sample at the given level.
// The returned sampler cannot be used concurrently to the original sampler.
func (u UniformSampler) AtLevel(level int) Sampler {
	return &UniformSampler{Moduli: u.Moduli[:level+1], Source: u.Source}
}

func (u *UniformSampler) Read(pol RNSPoly) {
	u.read(pol, func(a, c, q uint64) uint64 {
		return c
	})
}

func (u *UniformSampler) ReadAndAdd(pol RNSPoly) {
	u.read(pol, func(a, c, q uint64) uint64 {
		return AddMod(a, c, q)
	})
}

// ReadNew generates a new polynomial with coefficients following a uniform distribution over [0, Qi-1].
// Polynomial is created at the max level.
func (u *UniformSampler) ReadNew(N int) (pol RNSPoly) {
	pol = NewRNSPoly(N, len(u.Moduli)-1)
	u.Read(pol)
	return
}

func (u *UniformSampler) read(pol RNSPoly, f func(a, c, q uint64) uint64) {
	for i, qi := range u.Moduli {

		// Rejection sampling on the bit length of qi
		mask := uint64(1)<<bits.Len64(qi-1) - 1

		coeffs := pol.At(i)
		for j := range coeffs {
			c := u.Uint64() & mask
			for c >= qi {
				c = u.Uint64() & mask
			}
			coeffs[j] = f(coeffs[j], c, qi)
		}
	}
}

// BoundedSampler samples polynomials with coefficients uniform in [-Bound, Bound],
// represented modulo each of the moduli.
type BoundedSampler struct {
	Moduli []uint64
	Bound  uint64
	*sampling.Source
}

// NewBoundedSampler creates a new [BoundedSampler] from a [sampling.Source],
// a list of moduli and a bound. The bound must be smaller than all moduli.
func NewBoundedSampler(source *sampling.Source, moduli []uint64, bound uint64) (b *BoundedSampler, err error) {
	for _, qi := range moduli {
		if bound >= qi {
			return nil, fmt.Errorf("invalid bound: %d >= modulus %d", bound, qi)
		}
	}
	return &BoundedSampler{Moduli: moduli, Bound: bound, Source: source}, nil
}

// GetSource returns the underlying [sampling.Source] used by the sampler.
func (b BoundedSampler) GetSource() *sampling.Source {
	return b.Source
}

// WithSource returns an instance of the underlying sampler with
// a new [sampling.Source].
// It can be used concurrently with the original sampler.
func (b BoundedSampler) WithSource(source *sampling.Source) Sampler {
	return &BoundedSampler{Moduli: b.Moduli, Bound: b.Bound, Source: source}
}

// AtLevel returns an instance of the target sampler to sample at the given level.
// The returned sampler cannot be used concurrently to the original sampler.
func (b BoundedSampler) AtLevel(level int) Sampler {
	return &BoundedSampler{Moduli: b.Moduli[:level+1], Bound: b.Bound, Source: b.Source}
}

func (b *BoundedSampler) Read(pol RNSPoly) {
	b.read(pol, func(a, c, q uint64) uint64 {
		return c
	})
}

func (b *BoundedSampler) ReadAndAdd(pol RNSPoly) {
	b.read(pol, func(a, c, q uint64) uint64 {
		return AddMod(a, c, q)
	})
}

// ReadNew generates a new polynomial with coefficients in [-Bound, Bound].
// Polynomial is created at the max level.
func (b *BoundedSampler) ReadNew(N int) (pol RNSPoly) {
	pol = NewRNSPoly(N, len(b.Moduli)-1)
	b.Read(pol)
	return
}

func (b *BoundedSampler) read(pol RNSPoly, f func(a, c, q uint64) uint64) {

	N := pol.N()

	// The same signed value is written on every limb
	for j := 0; j < N; j++ {

		c := b.Uint64N(2*b.Bound + 1)

		for i, qi := range b.Moduli {
			coeffs := pol.At(i)
			// c - Bound mod qi
			coeffs[j] = f(coeffs[j], SubMod(c%qi, b.Bound, qi), qi)
		}
	}
}
