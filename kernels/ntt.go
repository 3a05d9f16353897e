package kernels

import (
	"github.com/pkg/errors"

	"github.com/Pro7ech/gpuntt/device"
	"github.com/Pro7ech/gpuntt/ring"
)

// NTT enqueues the forward transform of the variant of p on every limb of a.
// a is in natural order and the result in bit-reversed order.
func NTT(p *Params, a *device.DeviceArray) error {
	switch p.Variant {
	case ring.Merged:
		return NTTMerged(p, a)
	case ring.Cyclic:
		return NTTNoBitReverse(p, a)
	case ring.Twisted:
		if err := twist(p, a, p.TwistForward, "ntt_twist"); err != nil {
			return err
		}
		return forward(p, a, "ntt_twisted")
	default:
		return errors.Wrapf(ErrVariant, "cannot NTT: %s", p.Variant)
	}
}

// INTT enqueues the inverse transform of the variant of p on every limb of a.
// a is in bit-reversed order and the result in natural order.
func INTT(p *Params, a *device.DeviceArray) error {
	switch p.Variant {
	case ring.Merged:
		return INTTMerged(p, a)
	case ring.Cyclic:
		return INTTBitReverse(p, a)
	case ring.Twisted:
		if err := backward(p, a, "intt_twisted"); err != nil {
			return err
		}
		return twist(p, a, p.TwistBackward, "intt_twist")
	default:
		return errors.Wrapf(ErrVariant, "cannot INTT: %s", p.Variant)
	}
}

// NTTNoBitReverse enqueues the cyclic forward transform of a.
// p must carry staged omega twiddles.
func NTTNoBitReverse(p *Params, a *device.DeviceArray) error {
	if p.Variant == ring.Merged {
		return errors.Wrapf(ErrVariant, "cannot NTTNoBitReverse: %s", p.Variant)
	}
	return forward(p, a, "ntt_no_bit_reverse")
}

// NTTMerged enqueues the negacyclic forward transform of a.
// p must carry bit-reversed psi twiddles.
func NTTMerged(p *Params, a *device.DeviceArray) error {
	if p.Variant != ring.Merged {
		return errors.Wrapf(ErrVariant, "cannot NTTMerged: %s", p.Variant)
	}
	return forward(p, a, "ntt_merged")
}

// INTTBitReverse enqueues the cyclic inverse transform of a.
func INTTBitReverse(p *Params, a *device.DeviceArray) error {
	if p.Variant == ring.Merged {
		return errors.Wrapf(ErrVariant, "cannot INTTBitReverse: %s", p.Variant)
	}
	return backward(p, a, "intt_bit_reverse")
}

// INTTMerged enqueues the negacyclic inverse transform of a.
func INTTMerged(p *Params, a *device.DeviceArray) error {
	if p.Variant != ring.Merged {
		return errors.Wrapf(ErrVariant, "cannot INTTMerged: %s", p.Variant)
	}
	return backward(p, a, "intt_merged")
}

// forward enqueues the Cooley-Tukey network: one stage per level and
// one work-item per butterfly.
func forward(p *Params, a *device.DeviceArray, name string) (err error) {

	if err = p.check(a); err != nil {
		return errors.Wrapf(err, "cannot %s", name)
	}

	data, _ := a.Ptr()

	moduli, mus, qbits, _, err := p.constants()
	if err != nil {
		return
	}

	table, err := p.Forward.Ptr()
	if err != nil {
		return
	}

	N := p.N

	return p.dev.Launch(name, device.Grid{Stages: p.LogN, Limbs: p.Limbs, Elements: N >> 1}, func(stage, r, k int) {

		q, mu, qbit := moduli[r], mus[r], int(qbits[r])

		m := 1 << stage
		t := N >> (stage + 1)
		i := k / t
		j := 2*i*t + k%t

		x := data[r*N : (r+1)*N]

		U := x[j]
		V := ring.BRed(x[j+t], table[r*N+m+i], q, mu, qbit)
		x[j] = ring.AddMod(U, V, q)
		x[j+t] = ring.SubMod(U, V, q)
	})
}

// backward enqueues the Gentleman-Sande network followed by the scaling by N^-1.
func backward(p *Params, a *device.DeviceArray, name string) (err error) {

	if err = p.check(a); err != nil {
		return errors.Wrapf(err, "cannot %s", name)
	}

	data, _ := a.Ptr()

	moduli, mus, qbits, nInvs, err := p.constants()
	if err != nil {
		return
	}

	table, err := p.Backward.Ptr()
	if err != nil {
		return
	}

	N := p.N

	if err = p.dev.Launch(name, device.Grid{Stages: p.LogN, Limbs: p.Limbs, Elements: N >> 1}, func(stage, r, k int) {

		q, mu, qbit := moduli[r], mus[r], int(qbits[r])

		t := 1 << stage
		h := N >> (stage + 1)
		i := k / t
		j := 2*i*t + k%t

		x := data[r*N : (r+1)*N]

		U := x[j]
		V := x[j+t]
		x[j] = ring.AddMod(U, V, q)
		x[j+t] = ring.BRed(ring.SubMod(U, V, q), table[r*N+h+i], q, mu, qbit)
	}); err != nil {
		return
	}

	return p.dev.Launch(name+"_scale", device.Grid{Stages: 1, Limbs: p.Limbs, Elements: N}, func(_, r, k int) {
		data[r*N+k] = ring.BRed(data[r*N+k], nInvs[r], moduli[r], mus[r], int(qbits[r]))
	})
}

// twist enqueues a[i] = a[i] * table[i] on every limb.
func twist(p *Params, a, table *device.DeviceArray, name string) (err error) {

	if err = p.check(a, table); err != nil {
		return errors.Wrapf(err, "cannot %s", name)
	}

	data, _ := a.Ptr()
	psi, _ := table.Ptr()

	moduli, mus, qbits, _, err := p.constants()
	if err != nil {
		return
	}

	N := p.N

	return p.dev.Launch(name, device.Grid{Stages: 1, Limbs: p.Limbs, Elements: N}, func(_, r, k int) {
		data[r*N+k] = ring.BRed(data[r*N+k], psi[r*N+k], moduli[r], mus[r], int(qbits[r]))
	})
}
