package ctrl

import (
	"time"

	"github.com/nats-radio/flowcore/rlog"
)

// Housekeeper is a small periodic ticker owned by a FlowgraphActor,
// grounded on the teacher's `hk` package concept: it reaps terminated
// block-actor bookkeeping and flushes the per-flowgraph logger. It
// holds no persistent state and performs no I/O beyond the logger it's
// given.
type Housekeeper struct {
	interval time.Duration
	log      *rlog.Logger

	stop    chan struct{}
	stopped chan struct{}
}

func NewHousekeeper(interval time.Duration, log *rlog.Logger) *Housekeeper {
	return &Housekeeper{
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start begins the ticker against one flowgraph's actor; a
// non-positive interval disables housekeeping entirely.
func (h *Housekeeper) Start(fa *FlowgraphActor) {
	if h.interval <= 0 {
		close(h.stopped)
		return
	}
	go h.run(fa)
}

func (h *Housekeeper) run(fa *FlowgraphActor) {
	defer close(h.stopped)
	t := time.NewTicker(h.interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			fa.reapTerminated()
			if h.log != nil {
				h.log.Flush()
			}
		case <-h.stop:
			return
		}
	}
}

// Stop halts the ticker and waits for its goroutine to exit.
func (h *Housekeeper) Stop() {
	select {
	case <-h.stopped:
		return
	default:
	}
	close(h.stop)
	<-h.stopped
}
