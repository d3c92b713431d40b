package scheduler

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// SingleThreaded is the cooperative strategy of spec §4.3: every block
// actor's loop goroutine exists (so idle selects don't block one
// another), but only one Work() call runs at a time across the whole
// flowgraph, making execution order deterministic enough for tests and
// WASM-style single-thread hosts.
type SingleThreaded struct {
	wg   sync.WaitGroup
	work *semaphore.Weighted
}

func NewSingleThreaded() *SingleThreaded {
	return &SingleThreaded{work: semaphore.NewWeighted(1)}
}

func (s *SingleThreaded) Name() string { return "single-threaded" }

func (s *SingleThreaded) Go(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

func (s *SingleThreaded) AcquireWork(ctx context.Context, _ bool) error {
	return s.work.Acquire(ctx, 1)
}

func (s *SingleThreaded) ReleaseWork(_ bool) { s.work.Release(1) }

func (s *SingleThreaded) Wait() error {
	s.wg.Wait()
	return nil
}
