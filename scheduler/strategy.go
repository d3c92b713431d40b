// Package scheduler implements the four strategies of spec §4.3. A
// Strategy is deliberately narrow: the control plane (package ctrl)
// drives every block's own actor loop; a Strategy only decides (a) how
// that loop's goroutine is spawned and tracked, and (b) how many Work
// calls may run concurrently, via a simple acquire/release budget.
// This is the `spawn(future)` primitive named in spec §4.3 ("Scheduler
// and flowgraph interact only through a spawn(future) call and the
// block inbox"), generalized so idle blocks parked in select never
// consume a worker slot — only an active Work() call does.
package scheduler

import "context"

// Strategy is implemented by WorkStealing, SingleThreaded,
// ThreadPerBlock, and FlowOriented.
type Strategy interface {
	Name() string

	// Go spawns the long-lived driver goroutine for one block actor's
	// loop. It returns immediately; Wait blocks until every goroutine
	// spawned this way has returned.
	Go(fn func())

	// AcquireWork blocks until the caller may run one Work() call,
	// respecting the strategy's concurrency budget; blocking requests
	// the budget reserved for kernels tagged `blocking` (spec §4.2).
	AcquireWork(ctx context.Context, blocking bool) error
	// ReleaseWork returns the budget acquired by AcquireWork.
	ReleaseWork(blocking bool)

	// Wait blocks until every goroutine spawned via Go has returned.
	Wait() error
}

// Prioritizer is implemented by strategies that can reorder the
// initial spawn sequence (currently only FlowOriented). flowgraph.Start
// type-asserts for it rather than widening Strategy itself, since it's an
// optional capability.
type Prioritizer interface {
	// Priority reorders ids, a flowgraph's block ids in construction
	// order, preferring sources (blocks with no stream-input edges)
	// first.
	Priority(ids []uint64, isSource func(uint64) bool) []uint64
}
