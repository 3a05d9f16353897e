package hegpu

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/Pro7ech/gpuntt/device"
	"github.com/Pro7ech/gpuntt/kernels"
	"github.com/Pro7ech/gpuntt/utils/concurrency"
)

// Evaluator enqueues homomorphic operations on ciphertexts resident on the
// device of its [NTTParams]. Its methods return once the operation is
// enqueued; results are observed by moving the ciphertext back to the host.
type Evaluator struct {
	params *NTTParams
	log    zerolog.Logger
}

// NewEvaluator instantiates a new [Evaluator] sharing the given [NTTParams].
// A nil logger disables logging.
func NewEvaluator(params *NTTParams, log *zerolog.Logger) *Evaluator {
	eval := &Evaluator{params: params, log: zerolog.Nop()}
	if log != nil {
		eval.log = log.With().Str("component", "evaluator").Logger()
	}
	return eval
}

// ShallowCopy creates a shallow copy of the receiver sharing its read-only
// [NTTParams]. The receiver and the returned Evaluator can be used concurrently
// on distinct ciphertexts.
func (eval Evaluator) ShallowCopy() *Evaluator {
	return &Evaluator{
		params: eval.params,
		log:    eval.log,
	}
}

// NTTParams returns the [NTTParams] of the evaluator.
func (eval Evaluator) NTTParams() *NTTParams {
	return eval.params
}

// Parameters returns the [Parameters] of the evaluator.
func (eval Evaluator) Parameters() Parameters {
	return eval.params.Parameters
}

// NTT switches every component of ct from the [Coefficient] to the [Evaluation] format.
// A ciphertext already in the [Evaluation] format is left unchanged.
func (eval Evaluator) NTT(ct *RawCiphertext) (EvaluationCiphertext, error) {

	if err := eval.check(ct); err != nil {
		return EvaluationCiphertext{}, errors.Wrap(err, "cannot NTT")
	}

	if ct.format == Evaluation {
		eval.log.Info().Msg("NTT skipped: ciphertext is already in the Evaluation format")
		return EvaluationCiphertext{ct}, nil
	}

	for i := 0; i <= ct.degree; i++ {
		if err := kernels.NTT(eval.params.Params, ct.dev[i]); err != nil {
			return EvaluationCiphertext{}, errors.Wrapf(err, "cannot NTT: component %d", i)
		}
	}

	ct.format = Evaluation

	return EvaluationCiphertext{ct}, nil
}

// INTT switches every component of ct from the [Evaluation] to the [Coefficient] format.
// A ciphertext already in the [Coefficient] format is left unchanged.
func (eval Evaluator) INTT(ct *RawCiphertext) error {

	if err := eval.check(ct); err != nil {
		return errors.Wrap(err, "cannot INTT")
	}

	if ct.format == Coefficient {
		eval.log.Info().Msg("INTT skipped: ciphertext is already in the Coefficient format")
		return nil
	}

	for i := 0; i <= ct.degree; i++ {
		if err := kernels.INTT(eval.params.Params, ct.dev[i]); err != nil {
			return errors.Wrapf(err, "cannot INTT: component %d", i)
		}
	}

	ct.format = Coefficient

	return nil
}

// EvalAdd evaluates ct0 = ct0 + ct1 component-wise, limb by limb.
// Both ciphertexts must have the same shape, format and degree.
func (eval Evaluator) EvalAdd(ct0, ct1 *RawCiphertext) error {

	if err := eval.check(ct0, ct1); err != nil {
		return errors.Wrap(err, "cannot EvalAdd")
	}

	if ct0.format != ct1.format {
		return errors.Wrapf(ErrFormatMismatch, "cannot EvalAdd: %s + %s", ct0.format, ct1.format)
	}

	if ct0.degree != ct1.degree {
		return errors.Wrapf(ErrDegree, "cannot EvalAdd: degree %d + degree %d", ct0.degree, ct1.degree)
	}

	for i := 0; i <= ct0.degree; i++ {
		if err := kernels.Add(eval.params.Params, ct0.dev[i], ct1.dev[i]); err != nil {
			return errors.Wrapf(err, "cannot EvalAdd: component %d", i)
		}
	}

	return nil
}

// EvalMultNoRelin evaluates the tensor product of two degree one ciphertexts
// in the [Evaluation] format and stores the three components of the result in
// ct0, whose degree becomes two. The result is not relinearized.
func (eval Evaluator) EvalMultNoRelin(ct0, ct1 EvaluationCiphertext) (err error) {

	if err = eval.check(ct0.RawCiphertext, ct1.RawCiphertext); err != nil {
		return errors.Wrap(err, "cannot EvalMultNoRelin")
	}

	// The typed view may predate a call to INTT on the same ciphertext.
	if ct0.format != Evaluation || ct1.format != Evaluation {
		return errors.Wrapf(ErrFormatMismatch, "cannot EvalMultNoRelin: %s x %s", ct0.format, ct1.format)
	}

	if ct0.degree != 1 || ct1.degree != 1 {
		return errors.Wrapf(ErrDegree, "cannot EvalMultNoRelin: degree %d x degree %d", ct0.degree, ct1.degree)
	}

	dev := eval.params.Device()

	var d2 *device.DeviceArray
	if d2, err = dev.Alloc(ct0.NumRes * ct0.N); err != nil {
		return errors.Wrap(err, "cannot EvalMultNoRelin")
	}

	if err = kernels.MulTensor(eval.params.Params, ct0.dev[0], ct0.dev[1], ct1.dev[0], ct1.dev[1], d2); err != nil {
		_ = d2.Free()
		return errors.Wrap(err, "cannot EvalMultNoRelin")
	}

	ct0.dev[2] = d2
	ct0.degree = 2

	return nil
}

// RunConcurrent applies f to every ciphertext of cts, at most workers at a
// time, each call receiving its own shallow copy of the evaluator.
// It returns the first error encountered.
func (eval Evaluator) RunConcurrent(workers int, cts []*RawCiphertext, f func(eval *Evaluator, ct *RawCiphertext) error) error {

	if workers < 1 {
		return errors.Errorf("cannot RunConcurrent: invalid number of workers %d", workers)
	}

	evaluators := make([]*Evaluator, workers)
	for i := range evaluators {
		evaluators[i] = eval.ShallowCopy()
	}

	rm := concurrency.NewResourceManager(evaluators)

	for _, ct := range cts {
		rm.Run(func(e *Evaluator) error {
			return f(e, ct)
		})
	}

	return rm.Wait()
}

// check returns an error if a ciphertext does not match the parameters
// of the evaluator or does not reside on its device.
func (eval Evaluator) check(cts ...*RawCiphertext) error {

	for i, ct := range cts {

		if ct == nil {
			return errors.Errorf("operand %d is nil", i)
		}

		if err := ct.valid(); err != nil {
			return errors.Wrapf(err, "operand %d", i)
		}

		if err := ct.checkShape(eval.params.Parameters); err != nil {
			return errors.Wrapf(err, "operand %d", i)
		}

		if ct.residency != Device || ct.dev[0].Device() != eval.params.Device() {
			return errors.Wrapf(ErrResidency, "operand %d must reside on device %s", i, eval.params.Device().ID())
		}
	}

	return nil
}
