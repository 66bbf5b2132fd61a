// Package metrics exposes buffer pool I/O and occupancy counters as
// Prometheus collectors, in the shape the pack's operational repos use
// for their own runtime counters.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector wires a buffer pool's read/write/hit/miss/pin activity into
// Prometheus counters and gauges. The zero value is not usable; build one
// with NewCollector.
type Collector struct {
	ReadIO    prometheus.Counter
	WriteIO   prometheus.Counter
	Hits      prometheus.Counter
	Misses    prometheus.Counter
	Evictions prometheus.Counter
	PinnedNow prometheus.Gauge
}

// NewCollector builds a Collector labeled with poolName and registers it
// against reg. Pass prometheus.NewRegistry() in tests to avoid polluting
// the default registry.
func NewCollector(reg prometheus.Registerer, poolName string) *Collector {
	c := &Collector{
		ReadIO: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "relbuf_page_reads_total",
			Help:        "Physical page reads performed by the buffer pool.",
			ConstLabels: prometheus.Labels{"pool": poolName},
		}),
		WriteIO: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "relbuf_page_writes_total",
			Help:        "Physical page writes performed by the buffer pool.",
			ConstLabels: prometheus.Labels{"pool": poolName},
		}),
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "relbuf_pin_hits_total",
			Help:        "Pin requests served from a resident frame.",
			ConstLabels: prometheus.Labels{"pool": poolName},
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "relbuf_pin_misses_total",
			Help:        "Pin requests that required a frame load.",
			ConstLabels: prometheus.Labels{"pool": poolName},
		}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "relbuf_evictions_total",
			Help:        "Frames evicted to satisfy a pin miss.",
			ConstLabels: prometheus.Labels{"pool": poolName},
		}),
		PinnedNow: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "relbuf_frames_pinned",
			Help:        "Frames currently holding at least one pin.",
			ConstLabels: prometheus.Labels{"pool": poolName},
		}),
	}
	if reg != nil {
		reg.MustRegister(c.ReadIO, c.WriteIO, c.Hits, c.Misses, c.Evictions, c.PinnedNow)
	}
	return c
}
