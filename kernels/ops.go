package kernels

import (
	"github.com/pkg/errors"

	"github.com/Pro7ech/gpuntt/device"
	"github.com/Pro7ech/gpuntt/ring"
)

// Add enqueues a = a + b mod q_r on every limb.
func Add(p *Params, a, b *device.DeviceArray) error {
	return binary(p, "add", a, b, func(x, y, q, _ uint64, _ int) uint64 {
		return ring.AddMod(x, y, q)
	})
}

// Sub enqueues a = a - b mod q_r on every limb.
func Sub(p *Params, a, b *device.DeviceArray) error {
	return binary(p, "sub", a, b, func(x, y, q, _ uint64, _ int) uint64 {
		return ring.SubMod(x, y, q)
	})
}

// MulCoeffs enqueues a = a * b mod q_r on every limb.
// Operands must be in the evaluation domain for this to be a polynomial product.
func MulCoeffs(p *Params, a, b *device.DeviceArray) error {
	return binary(p, "mul_coeffs", a, b, ring.BRed)
}

func binary(p *Params, name string, a, b *device.DeviceArray, f func(x, y, q, mu uint64, qbit int) uint64) (err error) {

	if err = p.check(a, b); err != nil {
		return errors.Wrapf(err, "cannot %s", name)
	}

	x, _ := a.Ptr()
	y, _ := b.Ptr()

	moduli, mus, qbits, _, err := p.constants()
	if err != nil {
		return
	}

	N := p.N

	return p.dev.Launch(name, device.Grid{Stages: 1, Limbs: p.Limbs, Elements: N}, func(_, r, k int) {
		i := r*N + k
		x[i] = f(x[i], y[i], moduli[r], mus[r], int(qbits[r]))
	})
}

// MulTensor enqueues the tensor product of the degree one elements
// (a0, a1) and (b0, b1) in the evaluation domain:
//
//	a0 = a0*b0
//	a1 = a0*b1 + a1*b0
//	d2 = a1*b1
//
// The previous content of d2 is overwritten.
func MulTensor(p *Params, a0, a1, b0, b1, d2 *device.DeviceArray) (err error) {

	if err = p.check(a0, a1, b0, b1, d2); err != nil {
		return errors.Wrap(err, "cannot MulTensor")
	}

	x0, _ := a0.Ptr()
	x1, _ := a1.Ptr()
	y0, _ := b0.Ptr()
	y1, _ := b1.Ptr()
	z2, _ := d2.Ptr()

	moduli, mus, qbits, _, err := p.constants()
	if err != nil {
		return
	}

	N := p.N

	return p.dev.Launch("mul_tensor", device.Grid{Stages: 1, Limbs: p.Limbs, Elements: N}, func(_, r, k int) {

		q, mu, qbit := moduli[r], mus[r], int(qbits[r])

		i := r*N + k

		u0, u1, v0, v1 := x0[i], x1[i], y0[i], y1[i]

		x0[i] = ring.BRed(u0, v0, q, mu, qbit)
		x1[i] = ring.AddMod(ring.BRed(u0, v1, q, mu, qbit), ring.BRed(u1, v0, q, mu, qbit), q)
		z2[i] = ring.BRed(u1, v1, q, mu, qbit)
	})
}
