package device

import (
	"github.com/pkg/errors"
)

// WordSize is the size in bytes of an array element.
const WordSize = 8

// HostArray is a move-only handle on an array of uint64 in host memory.
// Moving it to a device invalidates the handle.
// A HostArray is not safe for concurrent use.
type HostArray struct {
	data  []uint64
	stale bool
}

// NewHostArray allocates a zeroed [HostArray] of n elements.
func NewHostArray(n int) *HostArray {
	return &HostArray{data: make([]uint64, n)}
}

// WrapHostArray returns a [HostArray] owning data.
// The caller must not use data after the array has been moved.
func WrapHostArray(data []uint64) *HostArray {
	return &HostArray{data: data}
}

// Len returns the number of elements of the array.
func (h *HostArray) Len() int {
	return len(h.data)
}

// Valid returns false if the handle has been moved.
func (h *HostArray) Valid() bool {
	return h != nil && !h.stale
}

// Data returns the host memory of the array.
func (h *HostArray) Data() ([]uint64, error) {
	if !h.Valid() {
		return nil, errors.Wrap(ErrStaleArray, "cannot access host array")
	}
	return h.data, nil
}

func (h *HostArray) invalidate() {
	h.data = nil
	h.stale = true
}

// DeviceArray is a move-only handle on an array of uint64 in device memory.
// Moving it back to the host or freeing it invalidates the handle.
// A DeviceArray is not safe for concurrent use, but its memory can be
// read and written concurrently by the work-items of a kernel.
type DeviceArray struct {
	dev   *Device
	data  []uint64
	stale bool
}

// Alloc allocates a zeroed [DeviceArray] of n elements.
// Allocating beyond the capacity of the device is an unrecoverable error.
func (d *Device) Alloc(n int) (*DeviceArray, error) {

	if n < 0 {
		return nil, errors.Errorf("cannot allocate device array: invalid length %d", n)
	}

	if d.isClosed() {
		return nil, d.fail(errors.Wrapf(ErrDeviceClosed, "cannot allocate on device %s", d.id))
	}

	if err := d.reserve(uint64(n) * WordSize); err != nil {
		return nil, err
	}

	return &DeviceArray{dev: d, data: make([]uint64, n)}, nil
}

// Len returns the number of elements of the array.
func (a *DeviceArray) Len() int {
	return len(a.data)
}

// Device returns the device on which the array resides.
func (a *DeviceArray) Device() *Device {
	return a.dev
}

// Valid returns false if the handle has been moved or freed.
func (a *DeviceArray) Valid() bool {
	return a != nil && !a.stale
}

// Ptr returns the device memory of the array.
// It must only be dereferenced inside a [Kernel] launched on the device
// that owns the array, the content being undefined until the queue is synchronized.
func (a *DeviceArray) Ptr() ([]uint64, error) {
	if !a.Valid() {
		return nil, errors.Wrap(ErrStaleArray, "cannot access device array")
	}
	return a.data, nil
}

// Free releases the device memory of the array and invalidates the handle.
// Kernels already queued on the array are unaffected.
func (a *DeviceArray) Free() error {

	if !a.Valid() {
		return errors.Wrap(ErrStaleArray, "cannot free device array")
	}

	a.dev.release(uint64(len(a.data)) * WordSize)
	a.data = nil
	a.stale = true

	return nil
}

// MoveArrayToDevice allocates an array on dev and enqueues the copy of h into it.
// On success h is invalidated and its memory belongs to the device until the
// copy completes. On failure h is left untouched.
func MoveArrayToDevice(dev *Device, h *HostArray) (*DeviceArray, error) {

	src, err := h.Data()
	if err != nil {
		return nil, err
	}

	a, err := dev.Alloc(len(src))
	if err != nil {
		return nil, err
	}

	if len(src) != 0 {

		dst := a.data

		if err = dev.Launch("memcpy_htod", Grid{Stages: 1, Limbs: 1, Elements: len(src)}, func(_, _, i int) {
			dst[i] = src[i]
		}); err != nil {
			_ = a.Free()
			return nil, err
		}
	}

	h.invalidate()

	dev.metrics.bytesMoved.WithLabelValues(HostToDevice).Add(float64(len(src) * WordSize))

	return a, nil
}

// MoveArrayToHost waits for the work queued on the device of a, copies a
// into a new host array, releases the device memory and invalidates a.
func MoveArrayToHost(a *DeviceArray) (*HostArray, error) {

	if !a.Valid() {
		return nil, errors.Wrap(ErrStaleArray, "cannot move device array to host")
	}

	dev := a.dev

	if err := dev.Sync(); err != nil {
		return nil, err
	}

	h := NewHostArray(len(a.data))
	copy(h.data, a.data)

	dev.metrics.bytesMoved.WithLabelValues(DeviceToHost).Add(float64(len(a.data) * WordSize))

	if err := a.Free(); err != nil {
		return nil, err
	}

	return h, nil
}

// CopyArray enqueues the copy of src into dst, both residing on the same device.
func CopyArray(dst, src *DeviceArray) error {

	out, err := dst.Ptr()
	if err != nil {
		return err
	}

	in, err := src.Ptr()
	if err != nil {
		return err
	}

	if dst.dev != src.dev {
		return errors.New("cannot copy device array: arrays reside on different devices")
	}

	if len(in) != len(out) {
		return errors.Wrapf(ErrArrayLength, "cannot copy device array: len(dst)=%d != len(src)=%d", len(out), len(in))
	}

	if len(in) == 0 {
		return nil
	}

	return src.dev.Launch("memcpy_dtod", Grid{Stages: 1, Limbs: 1, Elements: len(in)}, func(_, _, i int) {
		out[i] = in[i]
	})
}
