package device

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricsNamespace = "gpuntt"
	DeviceSubsystem  = "device"
)

// Directions of a memory transfer, used as label values of the bytes moved counter.
const (
	HostToDevice = "host_to_device"
	DeviceToHost = "device_to_host"
)

type deviceMetrics struct {
	launches      *prometheus.CounterVec
	kernelSeconds *prometheus.HistogramVec
	bytesMoved    *prometheus.CounterVec
	bytesResident prometheus.Gauge
	fatalErrors   prometheus.Counter
}

func newDeviceMetrics(id string) *deviceMetrics {

	labels := prometheus.Labels{"device": id}

	launches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   MetricsNamespace,
			Subsystem:   DeviceSubsystem,
			Name:        "kernel_launches_total",
			Help:        "Count of kernel launches by kernel name",
			ConstLabels: labels,
		},
		[]string{"kernel"},
	)

	kernelSeconds := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   MetricsNamespace,
			Subsystem:   DeviceSubsystem,
			Name:        "kernel_duration_seconds",
			Help:        "Execution time of a kernel from the moment it leaves the queue",
			Buckets:     prometheus.ExponentialBuckets(1e-6, 4, 12),
			ConstLabels: labels,
		},
		[]string{"kernel"},
	)

	bytesMoved := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   MetricsNamespace,
			Subsystem:   DeviceSubsystem,
			Name:        "bytes_moved_total",
			Help:        "Bytes transferred between host and device memory",
			ConstLabels: labels,
		},
		[]string{"direction"},
	)

	bytesResident := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   MetricsNamespace,
			Subsystem:   DeviceSubsystem,
			Name:        "bytes_resident",
			Help:        "Bytes currently allocated in device memory",
			ConstLabels: labels,
		},
	)

	fatalErrors := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   MetricsNamespace,
			Subsystem:   DeviceSubsystem,
			Name:        "fatal_errors_total",
			Help:        "Count of unrecoverable device errors",
			ConstLabels: labels,
		},
	)

	return &deviceMetrics{
		launches:      launches,
		kernelSeconds: kernelSeconds,
		bytesMoved:    bytesMoved,
		bytesResident: bytesResident,
		fatalErrors:   fatalErrors,
	}
}

func (m *deviceMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.launches, m.kernelSeconds, m.bytesMoved, m.bytesResident, m.fatalErrors}
}

func (m *deviceMetrics) register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return errors.Wrap(err, "failed to register device metrics")
		}
	}
	return nil
}

func (m *deviceMetrics) unregister(reg prometheus.Registerer) {
	for _, c := range m.collectors() {
		reg.Unregister(c)
	}
}

// kernelTimer measures a kernel and reports it on the launch histogram.
type kernelTimer struct {
	start   time.Time
	metrics *prometheus.HistogramVec
	kernel  string
}

func (m *deviceMetrics) startTimer(kernel string) kernelTimer {
	return kernelTimer{start: time.Now(), metrics: m.kernelSeconds, kernel: kernel}
}

func (t kernelTimer) EndAndObserve() time.Duration {
	elapsed := time.Since(t.start)
	t.metrics.With(prometheus.Labels{"kernel": t.kernel}).Observe(elapsed.Seconds())
	return elapsed
}
