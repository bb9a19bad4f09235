// Package metrics exposes store activity as Prometheus collectors.
//
// Each Collector owns its own registry, so several stores in one process
// (or in parallel tests) never collide on metric registration.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Mutation outcomes.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeNotFound = "not_found"
	OutcomeFailed   = "failed"
)

// Collector records mutation counts, persist latency and entity gauges.
type Collector struct {
	registry  *prometheus.Registry
	mutations *prometheus.CounterVec
	persist   prometheus.Histogram
	entities  *prometheus.GaugeVec
}

// New creates a Collector with a private registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskdeck",
			Subsystem: "store",
			Name:      "mutations_total",
			Help:      "Store mutations by operation and outcome.",
		}, []string{"op", "outcome"}),
		persist: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "taskdeck",
			Subsystem: "store",
			Name:      "persist_seconds",
			Help:      "Time spent writing the state snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "taskdeck",
			Subsystem: "store",
			Name:      "entities",
			Help:      "Entities held by the store.",
		}, []string{"kind"}),
	}
	c.registry.MustRegister(c.mutations, c.persist, c.entities)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveMutation counts one mutation.
func (c *Collector) ObserveMutation(op, outcome string) {
	c.mutations.WithLabelValues(op, outcome).Inc()
}

// ObservePersist records one snapshot write.
func (c *Collector) ObservePersist(d time.Duration) {
	c.persist.Observe(d.Seconds())
}

// SetEntities updates the entity gauges.
func (c *Collector) SetEntities(projects, tasks int) {
	c.entities.WithLabelValues("project").Set(float64(projects))
	c.entities.WithLabelValues("task").Set(float64(tasks))
}

// WriteText writes every gathered metric in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
