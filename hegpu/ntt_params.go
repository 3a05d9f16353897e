package hegpu

import (
	"encoding/binary"
	"encoding/hex"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/Pro7ech/gpuntt/device"
	"github.com/Pro7ech/gpuntt/kernels"
)

// NTTParams are the device resident constants of a [Parameters] set:
// moduli, Barrett constants, N^-1 and twiddle tables of every limb.
// They are built once per shape and are read-only afterward, so a single
// instance can be shared by any number of evaluators.
type NTTParams struct {
	*kernels.Params
	Parameters  Parameters
	fingerprint [blake2b.Size256]byte
}

// NewNTTParams builds the twiddle tables of params and uploads them on dev.
func NewNTTParams(dev *device.Device, params Parameters) (p *NTTParams, err error) {

	kp, err := kernels.NewParams(dev, params.RingQ())
	if err != nil {
		return nil, errors.Wrap(err, "cannot NewNTTParams")
	}

	return &NTTParams{
		Params:      kp,
		Parameters:  params,
		fingerprint: Fingerprint(params),
	}, nil
}

// Fingerprint returns the identifier of the shape of the parameters.
func (p NTTParams) Fingerprint() [blake2b.Size256]byte {
	return p.fingerprint
}

// Fingerprint returns a BLAKE2b-256 digest of the ring degree, the NTT
// variant and the moduli chain of params.
func Fingerprint(params Parameters) [blake2b.Size256]byte {

	Q := params.Q()

	buf := make([]byte, 0, 16+8*len(Q))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(params.LogN()))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(params.Variant()))
	for _, q := range Q {
		buf = binary.LittleEndian.AppendUint64(buf, q)
	}

	return blake2b.Sum256(buf)
}

// ParamsCache is a cache of [NTTParams] on a device keyed by their [Fingerprint].
// It is safe for concurrent use.
type ParamsCache struct {
	dev     *device.Device
	mu      sync.Mutex
	entries map[[blake2b.Size256]byte]*NTTParams
}

// NewParamsCache returns an empty [ParamsCache] for dev.
func NewParamsCache(dev *device.Device) *ParamsCache {
	return &ParamsCache{
		dev:     dev,
		entries: map[[blake2b.Size256]byte]*NTTParams{},
	}
}

// Get returns the [NTTParams] of params, building and uploading them on a miss.
func (c *ParamsCache) Get(params Parameters) (p *NTTParams, err error) {

	key := Fingerprint(params)

	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.entries[key]; ok {
		return p, nil
	}

	if p, err = NewNTTParams(c.dev, params); err != nil {
		return nil, err
	}

	c.entries[key] = p

	c.dev.Logger().Debug().
		Str("fingerprint", hex.EncodeToString(key[:8])).
		Int("n", params.N()).
		Int("limbs", params.QCount()).
		Msg("Cached NTT parameters")

	return p, nil
}

// Len returns the number of cached entries.
func (c *ParamsCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Free releases the device memory of every cached entry and empties the cache.
// Evaluators holding entries of the cache must not be used afterward.
func (c *ParamsCache) Free() (err error) {

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, p := range c.entries {
		if e := p.Free(); e != nil && err == nil {
			err = e
		}
		delete(c.entries, key)
	}

	return
}
