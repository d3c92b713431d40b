package scheduler

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// WorkStealing is the default strategy of spec §4.3: N workers plus a
// separately sized pool for blocks tagged `blocking`. Each
// block-actor's own loop goroutine is cheap and always spawned; what's
// bounded is the number of Work() calls in flight at once, via two
// independent weighted semaphores — this is the work-stealing
// injection-queue idea generalized from the teacher's single-queue
// goroutine pool (`internal/queue` reference material) to two
// independently sized pools.
type WorkStealing struct {
	g    *errgroup.Group
	gctx context.Context

	workers         *semaphore.Weighted
	blockingWorkers *semaphore.Weighted
}

func NewWorkStealing(ctx context.Context, workers, blockingWorkers int) *WorkStealing {
	if workers < 1 {
		workers = 1
	}
	if blockingWorkers < 1 {
		blockingWorkers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	return &WorkStealing{
		g:               g,
		gctx:            gctx,
		workers:         semaphore.NewWeighted(int64(workers)),
		blockingWorkers: semaphore.NewWeighted(int64(blockingWorkers)),
	}
}

func (w *WorkStealing) Name() string { return "work-stealing" }

func (w *WorkStealing) Go(fn func()) {
	w.g.Go(func() error {
		fn()
		return nil
	})
}

func (w *WorkStealing) AcquireWork(ctx context.Context, blocking bool) error {
	if blocking {
		return w.blockingWorkers.Acquire(ctx, 1)
	}
	return w.workers.Acquire(ctx, 1)
}

func (w *WorkStealing) ReleaseWork(blocking bool) {
	if blocking {
		w.blockingWorkers.Release(1)
		return
	}
	w.workers.Release(1)
}

func (w *WorkStealing) Wait() error { return w.g.Wait() }

// Context returns the errgroup-derived context, cancelled as soon as
// any spawned goroutine returns a non-nil error (none currently do,
// since block actor errors are reported through the control plane
// instead; exposed for callers that want first-failure cancellation).
func (w *WorkStealing) Context() context.Context { return w.gctx }
