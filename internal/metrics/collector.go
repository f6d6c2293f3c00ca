// Package metrics exposes unit-of-work counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "bankclients"

// Collector is a prometheus.Collector for unit-of-work activity. A nil
// *Collector is valid and records nothing.
type Collector struct {
	commits        prometheus.Counter
	commitFailures prometheus.Counter
	rowsAffected   prometheus.Counter
	evictions      prometheus.Counter
}

// NewCollector returns a new Collector.
func NewCollector() *Collector {
	return &Collector{
		commits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "uow",
				Name:      "commits_total",
				Help:      "The number of successful unit-of-work commits.",
			},
		),
		commitFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "uow",
				Name:      "commit_failures_total",
				Help:      "The number of unit-of-work commits rolled back.",
			},
		),
		rowsAffected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "uow",
				Name:      "rows_affected_total",
				Help:      "The number of rows written by committed units of work.",
			},
		),
		evictions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "uow",
				Name:      "evictions_total",
				Help:      "The number of stale tracked instances detached to keep one instance per identity.",
			},
		),
	}
}

// Committed records a successful commit that wrote rows.
func (c *Collector) Committed(rows int64) {
	if c == nil {
		return
	}
	c.commits.Inc()
	if rows > 0 {
		c.rowsAffected.Add(float64(rows))
	}
}

// CommitFailed records a rolled back commit.
func (c *Collector) CommitFailed() {
	if c == nil {
		return
	}
	c.commitFailures.Inc()
}

// Evicted records a tracked instance detached in favour of another one.
func (c *Collector) Evicted() {
	if c == nil {
		return
	}
	c.evictions.Inc()
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.commits.Describe(ch)
	c.commitFailures.Describe(ch)
	c.rowsAffected.Describe(ch)
	c.evictions.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.commits.Collect(ch)
	c.commitFailures.Collect(ch)
	c.rowsAffected.Collect(ch)
	c.evictions.Collect(ch)
}
