package metric

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pinger is implemented by the storage engine.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RecordCounter is implemented by storage that can count its records
// cheaply. ok is false when it cannot.
type RecordCounter interface {
	RecordCounts() (sessions, timers int, ok bool)
}

// StorageCollector pings storage on every scrape and reports whether it
// answered and how long it took. Storage that is also a RecordCounter
// gets a record gauge per kind.
type StorageCollector struct {
	pinger  Pinger
	counter RecordCounter
	timeout time.Duration

	up      *prometheus.Desc
	latency *prometheus.Desc
	records *prometheus.Desc
}

// NewStorageCollector creates a collector for p. backend is attached as a
// constant label.
func NewStorageCollector(p Pinger, backend string) *StorageCollector {
	labels := prometheus.Labels{"backend": backend}
	counter, _ := p.(RecordCounter)
	return &StorageCollector{
		pinger:  p,
		counter: counter,
		timeout: 2 * time.Second,
		up: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "storage", "up"),
			"Whether the last storage ping succeeded (1) or not (0)",
			nil, labels),
		latency: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "storage", "ping_seconds"),
			"Duration of the last storage ping",
			nil, labels),
		records: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "storage", "records"),
			"Number of stored records by kind",
			[]string{"kind"}, labels),
	}
}

// Describe implements prometheus.Collector.
func (c *StorageCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.up
	ch <- c.latency
	ch <- c.records
}

// Collect implements prometheus.Collector.
func (c *StorageCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	start := time.Now()
	err := c.pinger.Ping(ctx)
	elapsed := time.Since(start)

	up := 1.0
	if err != nil {
		up = 0
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, up)
	ch <- prometheus.MustNewConstMetric(c.latency, prometheus.GaugeValue, elapsed.Seconds())

	if c.counter == nil {
		return
	}
	if sessions, timers, ok := c.counter.RecordCounts(); ok {
		ch <- prometheus.MustNewConstMetric(c.records, prometheus.GaugeValue, float64(sessions), "sessions")
		ch <- prometheus.MustNewConstMetric(c.records, prometheus.GaugeValue, float64(timers), "timers")
	}
}
