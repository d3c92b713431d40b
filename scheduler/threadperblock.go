package scheduler

import (
	"context"
	"sync"
)

// ThreadPerBlock pins every block to its own goroutine with no
// work-stealing and no concurrency bound; the baseline named in spec
// §4.3 for comparison against WorkStealing.
type ThreadPerBlock struct {
	wg sync.WaitGroup
}

func NewThreadPerBlock() *ThreadPerBlock { return &ThreadPerBlock{} }

func (t *ThreadPerBlock) Name() string { return "thread-per-block" }

func (t *ThreadPerBlock) Go(fn func()) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		fn()
	}()
}

func (t *ThreadPerBlock) AcquireWork(context.Context, bool) error { return nil }
func (t *ThreadPerBlock) ReleaseWork(bool)                        {}

func (t *ThreadPerBlock) Wait() error {
	t.wg.Wait()
	return nil
}
