// Package metrics counts and times the contract round-trips issued by the
// clients. A nil *Collector is valid and records nothing.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// call kinds
const (
	KindCall     = "call"
	KindTransact = "transact"
	KindLogs     = "logs"
	KindReceipt  = "receipt"
)

// Collector holds the prometheus vectors of the contract round-trips
type Collector struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewCollector makes a Collector and registers it to reg
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stoclient",
			Subsystem: "contract",
			Name:      "calls_total",
			Help:      "Contract round-trips by kind, method and status.",
		}, []string{"kind", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stoclient",
			Subsystem: "contract",
			Name:      "call_seconds",
			Help:      "Latency of contract round-trips.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "method"}),
	}
	if reg != nil {
		if err := reg.Register(c); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	return c, nil
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.calls.Describe(ch)
	c.latency.Describe(ch)
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.calls.Collect(ch)
	c.latency.Collect(ch)
}

// Observe records one round-trip that started at start
func (c *Collector) Observe(kind, method string, start time.Time, err error) {
	if c == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.calls.WithLabelValues(kind, method, status).Inc()
	c.latency.WithLabelValues(kind, method).Observe(time.Since(start).Seconds())
}
