// Package device implements a simulated parallel accelerator: a device memory
// with a capacity, move-only host and device array handles, and a single
// in-order launch queue executing kernels over flat grids of work-items.
//
// Device errors (allocation beyond capacity, kernel panics, use of a closed
// device) are unrecoverable. They are logged and handed to [Config.OnFatal],
// which by default terminates the process.
package device

import (
	"os"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	// DefaultBlockSize is the number of work-items executed by a worker
	// before it goes back to the scheduler.
	DefaultBlockSize = 256
	// DefaultQueueDepth is the number of launches that can be pending
	// before [Device.Launch] blocks.
	DefaultQueueDepth = 64
)

var (
	ErrDeviceClosed = errors.New("device is closed")
	ErrOutOfMemory  = errors.New("device memory capacity exceeded")
	ErrKernelPanic  = errors.New("kernel panicked")
	ErrInvalidGrid  = errors.New("invalid launch grid")
	ErrStaleArray   = errors.New("array handle is stale")
	ErrArrayLength  = errors.New("array length mismatch")
)

// Config is the configuration of a [Device].
type Config struct {
	// Workers is the number of work-items executed concurrently.
	// Defaults to GOMAXPROCS.
	Workers int `yaml:"workers" json:"workers"`
	// BlockSize is the number of consecutive work-items assigned to a worker.
	// Defaults to [DefaultBlockSize].
	BlockSize int `yaml:"block_size" json:"block_size"`
	// MemoryCapacity is the device memory in bytes, 0 meaning unbounded.
	MemoryCapacity uint64 `yaml:"memory_capacity" json:"memory_capacity"`
	// QueueDepth defaults to [DefaultQueueDepth].
	QueueDepth int `yaml:"queue_depth" json:"queue_depth"`

	Logger     *zerolog.Logger       `yaml:"-" json:"-"`
	Registerer prometheus.Registerer `yaml:"-" json:"-"`
	// OnFatal is called with every unrecoverable device error after it has been logged.
	// If nil, the error is logged at fatal level, which exits the process.
	OnFatal func(err error) `yaml:"-" json:"-"`
}

// DefaultConfig returns a configuration with one worker per usable CPU.
func DefaultConfig() Config {
	return Config{
		Workers:    runtime.GOMAXPROCS(0),
		BlockSize:  DefaultBlockSize,
		QueueDepth: DefaultQueueDepth,
	}
}

// Device is a handle on an opened device.
// All its methods are safe for concurrent use.
type Device struct {
	id        uuid.UUID
	workers   int
	blockSize int
	capacity  uint64

	log        zerolog.Logger
	onFatal    func(err error)
	registerer prometheus.Registerer
	metrics    *deviceMetrics

	// qmu guards the send side of queue against Close.
	qmu    sync.RWMutex
	queue  chan command
	done   chan struct{}
	closed bool

	mu       sync.Mutex
	resident uint64
	err      error
}

// Open opens a new [Device] and starts its launch queue.
func Open(cfg Config) (*Device, error) {

	def := DefaultConfig()

	if cfg.Workers < 0 || cfg.BlockSize < 0 || cfg.QueueDepth < 0 {
		return nil, errors.Errorf("invalid device config: workers=%d, block size=%d, queue depth=%d must be non-negative", cfg.Workers, cfg.BlockSize, cfg.QueueDepth)
	}

	if cfg.Workers == 0 {
		cfg.Workers = def.Workers
	}

	if cfg.BlockSize == 0 {
		cfg.BlockSize = def.BlockSize
	}

	if cfg.QueueDepth == 0 {
		cfg.QueueDepth = def.QueueDepth
	}

	id := uuid.New()

	var log zerolog.Logger
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("device", id.String()).Logger()
	} else {
		log = zerolog.Nop()
	}

	d := &Device{
		id:         id,
		workers:    cfg.Workers,
		blockSize:  cfg.BlockSize,
		capacity:   cfg.MemoryCapacity,
		log:        log,
		onFatal:    cfg.OnFatal,
		registerer: cfg.Registerer,
		metrics:    newDeviceMetrics(id.String()),
		queue:      make(chan command, cfg.QueueDepth),
		done:       make(chan struct{}),
	}

	if d.registerer != nil {
		if err := d.metrics.register(d.registerer); err != nil {
			d.metrics.unregister(d.registerer)
			return nil, err
		}
	}

	go d.run()

	d.log.Info().
		Int("workers", d.workers).
		Int("blockSize", d.blockSize).
		Uint64("capacity", d.capacity).
		Msg("Device opened")

	return d, nil
}

// ID returns the instance identifier of the device.
func (d *Device) ID() uuid.UUID {
	return d.id
}

// Workers returns the number of concurrent work-items.
func (d *Device) Workers() int {
	return d.workers
}

// BlockSize returns the number of consecutive work-items assigned to a worker.
func (d *Device) BlockSize() int {
	return d.blockSize
}

// Capacity returns the device memory capacity in bytes, 0 meaning unbounded.
func (d *Device) Capacity() uint64 {
	return d.capacity
}

// Resident returns the number of bytes currently allocated on the device.
func (d *Device) Resident() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resident
}

// Logger returns the logger of the device.
func (d *Device) Logger() *zerolog.Logger {
	return &d.log
}

// Err returns the first unrecoverable error encountered by the device, if any.
func (d *Device) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Sync blocks until every launch queued before the call has completed
// and returns the first unrecoverable error of the device, if any.
func (d *Device) Sync() error {

	fence := make(chan struct{})

	if err := d.enqueue(command{fence: fence}); err != nil {
		return err
	}

	<-fence

	return d.Err()
}

// Close waits for the queued launches, stops the queue and unregisters
// the metrics of the device. Closing a closed device does nothing.
func (d *Device) Close() error {

	d.qmu.Lock()
	if d.closed {
		d.qmu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.qmu.Unlock()

	<-d.done

	if d.registerer != nil {
		d.metrics.unregister(d.registerer)
	}

	if resident := d.Resident(); resident != 0 {
		d.log.Warn().Uint64("bytes", resident).Msg("Device closed with resident arrays")
	} else {
		d.log.Info().Msg("Device closed")
	}

	return d.Err()
}

func (d *Device) isClosed() bool {
	d.qmu.RLock()
	defer d.qmu.RUnlock()
	return d.closed
}

func (d *Device) enqueue(cmd command) error {

	d.qmu.RLock()
	defer d.qmu.RUnlock()

	if d.closed {
		return d.fail(errors.Wrapf(ErrDeviceClosed, "cannot enqueue on device %s", d.id))
	}

	d.queue <- cmd

	return nil
}

// reserve accounts for an allocation of the given size.
func (d *Device) reserve(bytes uint64) error {

	d.mu.Lock()

	if d.capacity != 0 && d.resident+bytes > d.capacity {
		resident := d.resident
		d.mu.Unlock()
		return d.fail(errors.Wrapf(ErrOutOfMemory, "cannot allocate %d bytes: %d of %d bytes resident", bytes, resident, d.capacity))
	}

	d.resident += bytes
	d.metrics.bytesResident.Set(float64(d.resident))
	d.mu.Unlock()

	return nil
}

func (d *Device) release(bytes uint64) {
	d.mu.Lock()
	d.resident -= bytes
	d.metrics.bytesResident.Set(float64(d.resident))
	d.mu.Unlock()
}

// fail reports err as fatal and returns it.
func (d *Device) fail(err error) error {
	d.fatal(err)
	return err
}

func (d *Device) fatal(err error) {

	d.mu.Lock()
	if d.err == nil {
		d.err = err
	}
	d.mu.Unlock()

	d.metrics.fatalErrors.Inc()

	if d.onFatal == nil {
		d.log.Fatal().Err(err).Msg("Unrecoverable device error")
		// Fatal does not exit when the logger is disabled.
		os.Exit(1)
	}

	d.log.Error().Err(err).Msg("Unrecoverable device error")
	d.onFatal(err)
}
