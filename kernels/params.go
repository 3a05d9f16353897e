// Package kernels implements the device form of the RNS number theoretic
// transforms and of the coefficient-wise RNS arithmetic.
//
// Every kernel operates on a limb-major [device.DeviceArray] of Limbs x N
// coefficients, limb r being reduced modulo the r-th modulus with the r-th
// row of the twiddle tables. The butterflies and reductions are the ones of
// the ring package, so the device and host forms agree bit for bit.
package kernels

import (
	"github.com/pkg/errors"

	"github.com/Pro7ech/gpuntt/device"
	"github.com/Pro7ech/gpuntt/ring"
)

var (
	ErrArrayShape = errors.New("array does not match the kernel parameters")
	ErrVariant    = errors.New("kernel is not available for the NTT variant")
)

// Params are the device resident constants of the kernels for a given
// ring degree, moduli chain and NTT variant. They are read-only once
// uploaded and can be shared by any number of callers.
type Params struct {
	N       int
	LogN    int
	Limbs   int
	Variant ring.NTTVariant

	// Per limb constants, Limbs elements each.
	Moduli *device.DeviceArray
	Mus    *device.DeviceArray
	QBits  *device.DeviceArray
	NInvs  *device.DeviceArray

	// Butterfly twiddles, Limbs x N elements.
	// Bit-reversed psi powers for [ring.Merged] and staged omega
	// powers for [ring.Cyclic] and [ring.Twisted].
	Forward  *device.DeviceArray
	Backward *device.DeviceArray

	// Natural order psi powers of the explicit twist of [ring.Twisted], nil otherwise.
	TwistForward  *device.DeviceArray
	TwistBackward *device.DeviceArray

	dev *device.Device
}

// NewParams uploads the constants of r on dev.
// The twiddle tables of each limb are validated against the variant of r.
func NewParams(dev *device.Device, r ring.RNSRing) (p *Params, err error) {

	if len(r) == 0 {
		return nil, errors.New("cannot NewParams: empty RNSRing")
	}

	N, L, v := r.N(), len(r), r.Variant()

	moduli := make([]uint64, L)
	mus := make([]uint64, L)
	qbits := make([]uint64, L)
	nInvs := make([]uint64, L)

	fwd := make([]uint64, L*N)
	bwd := make([]uint64, L*N)

	var twistFwd, twistBwd []uint64
	if v == ring.Twisted {
		twistFwd = make([]uint64, L*N)
		twistBwd = make([]uint64, L*N)
	}

	for i, s := range r {

		moduli[i] = s.Modulus
		mus[i] = s.Mu
		qbits[i] = uint64(s.QBit)
		nInvs[i] = s.NInv

		var butterflies, twist *ring.TwiddleTable

		switch t := s.Transformer.(type) {
		case ring.TransformerMerged:
			butterflies = t.Psi
		case ring.TransformerCyclic:
			butterflies = t.Omega
		case ring.TransformerTwisted:
			butterflies, twist = t.Omega, t.Psi
			if err = twist.Validate(ring.Twisted); err != nil {
				return nil, errors.Wrapf(err, "limb %d", i)
			}
			copy(twistFwd[i*N:(i+1)*N], twist.Forward)
			copy(twistBwd[i*N:(i+1)*N], twist.Backward)
		default:
			return nil, errors.Wrapf(ErrVariant, "limb %d: unsupported transformer %T", i, s.Transformer)
		}

		butterfliesVariant := v
		if v == ring.Twisted {
			butterfliesVariant = ring.Cyclic
		}

		if err = butterflies.Validate(butterfliesVariant); err != nil {
			return nil, errors.Wrapf(err, "limb %d", i)
		}

		copy(fwd[i*N:(i+1)*N], butterflies.Forward)
		copy(bwd[i*N:(i+1)*N], butterflies.Backward)
	}

	p = &Params{N: N, LogN: r.LogN(), Limbs: L, Variant: v, dev: dev}

	uploads := []struct {
		dst  **device.DeviceArray
		data []uint64
	}{
		{&p.Moduli, moduli},
		{&p.Mus, mus},
		{&p.QBits, qbits},
		{&p.NInvs, nInvs},
		{&p.Forward, fwd},
		{&p.Backward, bwd},
	}

	if v == ring.Twisted {
		uploads = append(uploads, []struct {
			dst  **device.DeviceArray
			data []uint64
		}{
			{&p.TwistForward, twistFwd},
			{&p.TwistBackward, twistBwd},
		}...)
	}

	var bytes uint64
	for _, u := range uploads {
		bytes += uint64(len(u.data)) * device.WordSize
		if *u.dst, err = device.MoveArrayToDevice(dev, device.WrapHostArray(u.data)); err != nil {
			_ = p.Free()
			return nil, err
		}
	}

	dev.Logger().Debug().
		Int("n", N).
		Int("limbs", L).
		Str("variant", v.String()).
		Uint64("bytes", bytes).
		Msg("Uploaded NTT parameters")

	return p, nil
}

// Device returns the device on which the parameters reside.
func (p *Params) Device() *device.Device {
	return p.dev
}

// Free releases the device memory of the parameters.
func (p *Params) Free() (err error) {
	for _, a := range []*device.DeviceArray{p.Moduli, p.Mus, p.QBits, p.NInvs, p.Forward, p.Backward, p.TwistForward, p.TwistBackward} {
		if a.Valid() {
			if e := a.Free(); e != nil && err == nil {
				err = e
			}
		}
	}
	return
}

// check returns an error if a is not a Limbs x N array on the device of the parameters.
func (p *Params) check(arrays ...*device.DeviceArray) error {
	for i, a := range arrays {
		if !a.Valid() {
			return errors.Wrapf(device.ErrStaleArray, "operand %d", i)
		}
		if a.Device() != p.dev {
			return errors.Wrapf(ErrArrayShape, "operand %d resides on device %s but parameters on device %s", i, a.Device().ID(), p.dev.ID())
		}
		if a.Len() != p.Limbs*p.N {
			return errors.Wrapf(ErrArrayShape, "operand %d has %d elements but Limbs x N = %d x %d", i, a.Len(), p.Limbs, p.N)
		}
	}
	return nil
}

// constants returns the device memory of the per limb constants.
func (p *Params) constants() (moduli, mus, qbits, nInvs []uint64, err error) {
	if moduli, err = p.Moduli.Ptr(); err != nil {
		return
	}
	if mus, err = p.Mus.Ptr(); err != nil {
		return
	}
	if qbits, err = p.QBits.Ptr(); err != nil {
		return
	}
	nInvs, err = p.NInvs.Ptr()
	return
}
