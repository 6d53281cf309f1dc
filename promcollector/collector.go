package promcollector

import (
	"time"

	"github.com/hupe1980/blockstore"
	"github.com/prometheus/client_golang/prometheus"
)

var _ blockstore.MetricsCollector = (*Collector)(nil)

// Collector implements blockstore.MetricsCollector with Prometheus metrics.
type Collector struct {
	ops        *prometheus.CounterVec
	bytes      *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	usedBlocks prometheus.Gauge
	freeBlocks prometheus.Gauge
}

// New creates a Collector and registers its metrics with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Device operations by kind and outcome",
		}, []string{"op", "status"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_total",
			Help:      "Bytes moved by successful operations",
		}, []string{"op"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_transfer_seconds",
			Help:      "Latency of image saves and loads",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		usedBlocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "used_blocks",
			Help:      "Allocated block ids",
		}),
		freeBlocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "free_blocks",
			Help:      "Free block ids",
		}),
	}

	for _, m := range []prometheus.Collector{c.ops, c.bytes, c.latency, c.usedBlocks, c.freeBlocks} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordAllocate implements blockstore.MetricsCollector.
func (c *Collector) RecordAllocate(err error) {
	c.ops.WithLabelValues("allocate", status(err)).Inc()
}

// RecordRelease implements blockstore.MetricsCollector.
func (c *Collector) RecordRelease() {
	c.ops.WithLabelValues("release", "success").Inc()
}

// RecordRead implements blockstore.MetricsCollector.
func (c *Collector) RecordRead(n int, err error) {
	c.ops.WithLabelValues("read", status(err)).Inc()
	c.bytes.WithLabelValues("read").Add(float64(n))
}

// RecordWrite implements blockstore.MetricsCollector.
func (c *Collector) RecordWrite(n int, err error) {
	c.ops.WithLabelValues("write", status(err)).Inc()
	c.bytes.WithLabelValues("write").Add(float64(n))
}

// RecordSave implements blockstore.MetricsCollector.
func (c *Collector) RecordSave(n int, d time.Duration, err error) {
	c.recordTransfer("save", n, d, err)
}

// RecordLoad implements blockstore.MetricsCollector.
func (c *Collector) RecordLoad(n int, d time.Duration, err error) {
	c.recordTransfer("load", n, d, err)
}

func (c *Collector) recordTransfer(op string, n int, d time.Duration, err error) {
	c.ops.WithLabelValues(op, status(err)).Inc()
	c.latency.WithLabelValues(op, status(err)).Observe(d.Seconds())
	if err == nil {
		c.bytes.WithLabelValues(op).Add(float64(n))
	}
}

// RecordUsage implements blockstore.MetricsCollector.
func (c *Collector) RecordUsage(used, total int) {
	c.usedBlocks.Set(float64(used))
	c.freeBlocks.Set(float64(total - used))
}
