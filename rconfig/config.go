// Package rconfig holds the programmatic, per-flowgraph construction
// options named in the ambient stack expansion: buffer default sizes,
// scheduler worker count, inbox capacity, and instrumentation on/off.
// There is no file- or env-based config source in this core; the
// hosting application constructs a Config value directly, the same
// way the teacher's own leaf components (e.g. a queue runner's Config
// struct) are built by their caller rather than parsed from disk.
package rconfig

import "time"

// Config carries the knobs a Flowgraph needs at Start time.
type Config struct {
	// DefaultRingItems is the item capacity used for a stream edge
	// whose buffer hint is "default-ring" (a power of two; rounded up
	// if not).
	DefaultRingItems int

	// DefaultSlabChunks and DefaultSlabChunkItems size a "slab" edge
	// when the hint does not specify exact numbers.
	DefaultSlabChunks     int
	DefaultSlabChunkItems int

	// InboxCapacity bounds each block's control-message inbox.
	InboxCapacity int

	// Workers is the worker count for work-stealing / flow-oriented
	// strategies. Nothing in this module reads it: the strategy
	// constructors take their counts as arguments, and
	// scheduler.NewWorkStealing treats a count below 1 as 1.
	Workers int

	// BlockingWorkers bounds the secondary pool used for blocks tagged
	// "blocking". Like Workers it is not read inside this module;
	// scheduler.NewWorkStealing treats a count below 1 as 1.
	BlockingWorkers int

	// HousekeepInterval controls how often the control loop reaps
	// terminated block bookkeeping and flushes the logger.
	HousekeepInterval time.Duration

	// Instrument turns on the per-flowgraph prometheus registry; when
	// false, no counters are registered and Gather reports none.
	Instrument bool
}

// Default returns sane values mirroring the teacher's own defaults
// (power-of-two ring, small slab pools, generous inbox).
func Default() Config {
	return Config{
		DefaultRingItems:      4096,
		DefaultSlabChunks:     8,
		DefaultSlabChunkItems: 1024,
		InboxCapacity:         64,
		Workers:               0,
		BlockingWorkers:       0,
		HousekeepInterval:     2 * time.Second,
		Instrument:            true,
	}
}
