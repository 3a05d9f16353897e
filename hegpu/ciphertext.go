package hegpu

import (
	"github.com/pkg/errors"

	"github.com/Pro7ech/gpuntt/device"
	"github.com/Pro7ech/gpuntt/ring"
)

// MaxDegree is the maximum degree of a [RawCiphertext]: the degree of the
// un-relinearized product of two degree one ciphertexts.
const MaxDegree = 2

// RawCiphertext is an RNS ciphertext of degree one or two stored as
// limb-major arrays of NumRes x N coefficients, one per component.
// The arrays reside either on the host or on a device, and the coefficients
// are either in the [Coefficient] or the [Evaluation] format.
// A RawCiphertext is not safe for concurrent use. Once freed, its
// methods return an error wrapping [device.ErrStaleArray].
type RawCiphertext struct {
	N      int
	NumRes int

	moduli    []uint64
	format    Format
	degree    int
	residency Residency
	freed     bool

	host [MaxDegree + 1]*device.HostArray
	dev  [MaxDegree + 1]*device.DeviceArray
}

// NewRawCiphertext imports the components polys of a ciphertext of the
// given format defined modulo moduli. It takes two polynomials for a
// ciphertext of degree one and three for a ciphertext of degree two.
// The coefficients are copied in host arrays, and must be reduced.
func NewRawCiphertext(moduli []uint64, format Format, polys ...ring.RNSPoly) (ct *RawCiphertext, err error) {

	if len(polys) < 2 || len(polys) > MaxDegree+1 {
		return nil, errors.Wrapf(ErrDegree, "cannot NewRawCiphertext: %d components", len(polys))
	}

	if format != Coefficient && format != Evaluation {
		return nil, errors.Errorf("cannot NewRawCiphertext: invalid format %s", format)
	}

	if len(moduli) == 0 {
		return nil, errors.Wrap(ErrShapeMismatch, "cannot NewRawCiphertext: empty moduli")
	}

	N := polys[0].N()

	if N < 2 || N&(N-1) != 0 {
		return nil, errors.Wrapf(ErrInvalidLogN, "cannot NewRawCiphertext: N=%d is not a power of two", N)
	}

	ct = &RawCiphertext{
		N:         N,
		NumRes:    len(moduli),
		moduli:    append([]uint64{}, moduli...),
		format:    format,
		degree:    len(polys) - 1,
		residency: Host,
	}

	for i, p := range polys {

		if len(p) != ct.NumRes || p.N() != N {
			return nil, errors.Wrapf(ErrShapeMismatch, "cannot NewRawCiphertext: component %d has %d limbs of %d coefficients but %d limbs of %d are expected", i, len(p), p.N(), ct.NumRes, N)
		}

		for r := range p {
			if len(p[r]) != N {
				return nil, errors.Wrapf(ErrShapeMismatch, "cannot NewRawCiphertext: component %d, limb %d has %d coefficients but %d are expected", i, r, len(p[r]), N)
			}
		}

		for r, q := range moduli {
			for k, c := range p[r] {
				if c >= q {
					return nil, errors.Errorf("cannot NewRawCiphertext: component %d, limb %d, index %d: coefficient %d is not reduced modulo %d", i, r, k, c, q)
				}
			}
		}

		buf := make([]uint64, ct.NumRes*N)
		p.Flatten(buf)
		ct.host[i] = device.WrapHostArray(buf)
	}

	return
}

// Export copies the components of the ciphertext on polys and returns their format.
// The ciphertext must reside on the host and polys must have the shape of the ciphertext,
// with one polynomial per component.
func (ct *RawCiphertext) Export(polys ...ring.RNSPoly) (Format, error) {

	if err := ct.valid(); err != nil {
		return ct.format, errors.Wrap(err, "cannot Export")
	}

	if ct.residency != Host {
		return ct.format, errors.Wrap(ErrResidency, "cannot Export: ciphertext is on the device")
	}

	if len(polys) != ct.degree+1 {
		return ct.format, errors.Wrapf(ErrDegree, "cannot Export: %d polynomials for a ciphertext of degree %d", len(polys), ct.degree)
	}

	for i, p := range polys {

		if len(p) != ct.NumRes || p.N() != ct.N {
			return ct.format, errors.Wrapf(ErrShapeMismatch, "cannot Export: polynomial %d has %d limbs of %d coefficients", i, len(p), p.N())
		}

		for r := range p {
			if len(p[r]) != ct.N {
				return ct.format, errors.Wrapf(ErrShapeMismatch, "cannot Export: polynomial %d, limb %d has %d coefficients", i, r, len(p[r]))
			}
		}

		buf, err := ct.host[i].Data()
		if err != nil {
			return ct.format, err
		}

		p.SetFlat(buf)
	}

	return ct.format, nil
}

// Degree returns the degree of the ciphertext.
func (ct *RawCiphertext) Degree() int {
	return ct.degree
}

// Format returns the format of the coefficients.
func (ct *RawCiphertext) Format() Format {
	return ct.format
}

// Residency returns where the arrays of the ciphertext reside.
func (ct *RawCiphertext) Residency() Residency {
	return ct.residency
}

// Moduli returns a copy of the moduli of the ciphertext.
func (ct *RawCiphertext) Moduli() []uint64 {
	return append([]uint64{}, ct.moduli...)
}

// Device returns the device on which the ciphertext resides, or nil.
func (ct *RawCiphertext) Device() *device.Device {
	if ct.freed || ct.residency != Device {
		return nil
	}
	return ct.dev[0].Device()
}

// MoveToGPU moves every component of the ciphertext on dev.
// The copies are asynchronous with respect to the host.
// If a component cannot be moved, the components already moved are brought
// back to the host. If that fails as well, the ciphertext is freed.
func (ct *RawCiphertext) MoveToGPU(dev *device.Device) (err error) {

	if err = ct.valid(); err != nil {
		return errors.Wrap(err, "cannot MoveToGPU")
	}

	if ct.residency != Host {
		return errors.Wrap(ErrResidency, "cannot MoveToGPU: ciphertext is already on the device")
	}

	var moved [MaxDegree + 1]*device.DeviceArray

	for i := 0; i <= ct.degree; i++ {
		if moved[i], err = device.MoveArrayToDevice(dev, ct.host[i]); err != nil {

			for j := 0; j < i; j++ {
				var e error
				if ct.host[j], e = device.MoveArrayToHost(moved[j]); e != nil {
					ct.dev = moved
					_ = ct.Free()
					return errors.Wrapf(err, "cannot MoveToGPU: component %d: ciphertext freed", i)
				}
			}

			return errors.Wrapf(err, "cannot MoveToGPU: component %d", i)
		}
	}

	ct.dev = moved
	ct.host = [MaxDegree + 1]*device.HostArray{}
	ct.residency = Device

	return
}

// MoveToHost waits for the work queued on the device of the ciphertext
// and moves every component back to the host.
// If a component cannot be moved, the ciphertext is freed.
func (ct *RawCiphertext) MoveToHost() (err error) {

	if err = ct.valid(); err != nil {
		return errors.Wrap(err, "cannot MoveToHost")
	}

	if ct.residency != Device {
		return errors.Wrap(ErrResidency, "cannot MoveToHost: ciphertext is already on the host")
	}

	var moved [MaxDegree + 1]*device.HostArray

	for i := 0; i <= ct.degree; i++ {
		if moved[i], err = device.MoveArrayToHost(ct.dev[i]); err != nil {
			_ = ct.Free()
			return errors.Wrapf(err, "cannot MoveToHost: component %d: ciphertext freed", i)
		}
	}

	ct.host = moved
	ct.dev = [MaxDegree + 1]*device.DeviceArray{}
	ct.residency = Host

	return
}

// Free releases the device memory of the ciphertext, if any.
// The ciphertext must not be used afterward.
func (ct *RawCiphertext) Free() (err error) {
	for i := range ct.dev {
		if ct.dev[i].Valid() {
			if e := ct.dev[i].Free(); e != nil && err == nil {
				err = e
			}
		}
		ct.dev[i] = nil
		ct.host[i] = nil
	}
	ct.freed = true
	return
}

// valid returns an error if the ciphertext has been freed.
func (ct *RawCiphertext) valid() error {
	if ct.freed {
		return errors.Wrap(device.ErrStaleArray, "ciphertext has been freed")
	}
	return nil
}

// AsEvaluation returns the ciphertext as an [EvaluationCiphertext].
// It returns an error wrapping [ErrFormatMismatch] if the ciphertext
// is in the [Coefficient] format.
func (ct *RawCiphertext) AsEvaluation() (EvaluationCiphertext, error) {
	if err := ct.valid(); err != nil {
		return EvaluationCiphertext{}, err
	}
	if ct.format != Evaluation {
		return EvaluationCiphertext{}, errors.Wrapf(ErrFormatMismatch, "ciphertext is in the %s format", ct.format)
	}
	return EvaluationCiphertext{ct}, nil
}

// EvaluationCiphertext is a [RawCiphertext] certified to be in the [Evaluation] format
// when it was obtained, through [RawCiphertext.AsEvaluation] or [Evaluator.NTT].
type EvaluationCiphertext struct {
	*RawCiphertext
}

// CountMismatches returns the number of coefficients at which two ciphertexts
// residing on the host differ. Components present in only one of them count
// as entirely mismatching.
func CountMismatches(ct0, ct1 *RawCiphertext) (count int, err error) {

	for _, ct := range []*RawCiphertext{ct0, ct1} {
		if err = ct.valid(); err != nil {
			return 0, errors.Wrap(err, "cannot CountMismatches")
		}
	}

	if ct0.residency != Host || ct1.residency != Host {
		return 0, errors.Wrap(ErrResidency, "cannot CountMismatches: both ciphertexts must be on the host")
	}

	if ct0.N != ct1.N || ct0.NumRes != ct1.NumRes {
		return 0, errors.Wrapf(ErrShapeMismatch, "cannot CountMismatches: %dx%d and %dx%d", ct0.NumRes, ct0.N, ct1.NumRes, ct1.N)
	}

	for i := 0; i <= max(ct0.degree, ct1.degree); i++ {

		switch {
		case i > ct0.degree || i > ct1.degree:
			count += ct0.NumRes * ct0.N
		default:
			var a, b []uint64
			if a, err = ct0.host[i].Data(); err != nil {
				return
			}
			if b, err = ct1.host[i].Data(); err != nil {
				return
			}
			count += ring.CountMismatchesVec(a, b)
		}
	}

	return
}

// checkShape returns an error if ct does not have the shape of the parameters.
func (ct *RawCiphertext) checkShape(params Parameters) error {

	if ct.N != params.N() || ct.NumRes != params.QCount() {
		return errors.Wrapf(ErrShapeMismatch, "ciphertext is %dx%d but parameters are %dx%d", ct.NumRes, ct.N, params.QCount(), params.N())
	}

	Q := params.Q()
	for i := range Q {
		if ct.moduli[i] != Q[i] {
			return errors.Wrapf(ErrShapeMismatch, "modulus %d of the ciphertext is %d but %d in the parameters", i, ct.moduli[i], Q[i])
		}
	}

	return nil
}
