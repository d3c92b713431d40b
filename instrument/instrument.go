// Package instrument wires github.com/prometheus/client_golang into
// the runtime as internal, per-flowgraph counters — never a
// process-global registry, and never exposed over HTTP (exposition is
// the excluded "non-core" surface of spec §1/§6; the Non-goal on
// "metrics backends" excludes an exporter, not the ambient habit of
// counting). Nothing in this module reads the counters back; Gather
// hands them to a hosting process.
package instrument

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Registry owns one flowgraph's counters. Constructing a fresh
// *prometheus.Registry per flowgraph (rather than using the global
// default registry) is what keeps multiple independent flowgraphs in
// one process from contending on shared metric state, mirroring the
// per-runtime logger requirement in the ambient stack.
type Registry struct {
	reg        *prometheus.Registry
	enabled    bool
	workCalls  *prometheus.CounterVec
	wakeups    *prometheus.CounterVec
	terminated *prometheus.CounterVec
}

func NewRegistry(enabled bool) *Registry {
	r := &Registry{reg: prometheus.NewRegistry(), enabled: enabled}
	r.workCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flowcore_block_work_calls_total",
		Help: "Number of Work invocations per block instance.",
	}, []string{"block"})
	r.wakeups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flowcore_block_wakeups_total",
		Help: "Number of scheduling wakeups observed per block instance.",
	}, []string{"block"})
	r.terminated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flowcore_block_terminated_total",
		Help: "Number of terminal block transitions, labeled by outcome.",
	}, []string{"block", "outcome"})
	if enabled {
		r.reg.MustRegister(r.workCalls, r.wakeups, r.terminated)
	}
	return r
}

// ForBlock returns the counters scoped to one block instance name.
func (r *Registry) ForBlock(name string) *BlockCounters {
	return &BlockCounters{
		enabled:    r.enabled,
		work:       r.workCalls.WithLabelValues(name),
		wake:       r.wakeups.WithLabelValues(name),
		terminated: r.terminated,
		name:       name,
	}
}

// Gather exposes the underlying prometheus registry's Gather for a
// hosting process that wants to scrape it; the core itself never does.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	return r.reg.Gather()
}

// BlockCounters is the narrow handle a block.Meta holds; it never
// exposes the shared registry itself.
type BlockCounters struct {
	enabled    bool
	work       prometheus.Counter
	wake       prometheus.Counter
	terminated *prometheus.CounterVec
	name       string
}

func (c *BlockCounters) WorkCalled() {
	if c.enabled {
		c.work.Inc()
	}
}

func (c *BlockCounters) WokeUp() {
	if c.enabled {
		c.wake.Inc()
	}
}

func (c *BlockCounters) Terminated(outcome string) {
	if c.enabled {
		c.terminated.WithLabelValues(c.name, outcome).Inc()
	}
}
