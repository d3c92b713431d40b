package scheduler_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nats-radio/flowcore/scheduler"
)

func TestSingleThreadedSerializesWork(t *testing.T) {
	s := scheduler.NewSingleThreaded()
	ctx := context.Background()

	var inFlight, maxInFlight int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		s.Go(func() {
			defer wg.Done()
			require.NoError(t, s.AcquireWork(ctx, false))
			n := atomic.AddInt32(&inFlight, 1)
			for {
				m := atomic.LoadInt32(&maxInFlight)
				if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			s.ReleaseWork(false)
		})
	}
	wg.Wait()
	require.NoError(t, s.Wait())
	require.Equal(t, int32(1), maxInFlight)
}

func TestWorkStealingBoundsConcurrency(t *testing.T) {
	s := scheduler.NewWorkStealing(context.Background(), 2, 1)
	ctx := context.Background()

	require.NoError(t, s.AcquireWork(ctx, false))
	require.NoError(t, s.AcquireWork(ctx, false))

	// budget exhausted: the third acquire parks until a release
	tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	require.Error(t, s.AcquireWork(tctx, false))

	// the blocking pool is sized independently
	require.NoError(t, s.AcquireWork(ctx, true))
	s.ReleaseWork(true)

	s.ReleaseWork(false)
	require.NoError(t, s.AcquireWork(ctx, false))
	s.ReleaseWork(false)
	s.ReleaseWork(false)
	require.NoError(t, s.Wait())
}

func TestThreadPerBlockIsUnbounded(t *testing.T) {
	s := scheduler.NewThreadPerBlock()
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		require.NoError(t, s.AcquireWork(ctx, false))
	}
	done := make(chan struct{})
	s.Go(func() { close(done) })
	<-done
	require.NoError(t, s.Wait())
}

func TestFlowOrientedPriorityPutsSourcesFirst(t *testing.T) {
	s := scheduler.NewFlowOriented(context.Background(), 1, 1)
	isSource := func(id uint64) bool { return id == 2 || id == 4 }

	got := s.Priority([]uint64{0, 1, 2, 3, 4}, isSource)
	require.Equal(t, []uint64{2, 4, 0, 1, 3}, got)
	require.Equal(t, "flow-oriented", s.Name())
}
