package ctrl

import (
	"context"

	"github.com/nats-radio/flowcore/block"
	"github.com/nats-radio/flowcore/buffer"
	"github.com/nats-radio/flowcore/introspect"
	"github.com/nats-radio/flowcore/pmt"
	"github.com/nats-radio/flowcore/port"
	"github.com/nats-radio/flowcore/rerr"
	"github.com/nats-radio/flowcore/scheduler"
)

// wakeupable is satisfied by port.StreamIn[T]/StreamOut[T].
type wakeupable interface {
	RegisterWakeup(*buffer.Waker)
}

// BlockActor drives exactly one block.Block's loop of spec §4.5: drain
// the inbox, then run one Work() call whenever an edge is ready or the
// kernel asked to be called again, until the kernel reports finished.
type BlockActor struct {
	blk      *block.Block
	rt       *block.Runtime
	strategy scheduler.Strategy

	inbox  chan Message
	wakeCh chan struct{}
	done   chan struct{}

	callAgain      bool
	finished       bool
	err            error
	currentBlockOn block.Future

	// totalOutEdges is how many stream edges leave this block; once
	// StreamOutputDone has arrived for every one of them, producing
	// further items is pointless and the block terminates.
	totalOutEdges int
	outEdgesDone  int
}

// NewBlockActor wires a wakeup token into every stream port so that
// new data or backpressure relief pings this actor's readiness
// channel; it must be called once all of the block's ports are bound.
func NewBlockActor(blk *block.Block, strategy scheduler.Strategy, inboxCapacity int) *BlockActor {
	if inboxCapacity < 1 {
		inboxCapacity = 1
	}
	a := &BlockActor{
		blk:      blk,
		rt:       block.NewRuntime(blk),
		strategy: strategy,
		inbox:    make(chan Message, inboxCapacity),
		wakeCh:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	// Every block starts work-ready: at spawn time its writers have
	// space and its readers may already hold data, both of which count
	// as edge readiness. One primed token gets the first Work call
	// dispatched; everything after that is commit-driven.
	a.wakeCh <- struct{}{}

	waker := buffer.NewWaker(func() {
		select {
		case a.wakeCh <- struct{}{}:
		default:
		}
	})
	for _, p := range blk.Ports.All() {
		if w, ok := p.(wakeupable); ok {
			w.RegisterWakeup(waker)
		}
	}
	// A message edge from another block (as opposed to a handle
	// Call/Callback) delivers through the target's MessageIn channel
	// directly; wiring the same waker in keeps that arrival waking the
	// actor's readiness select, just like a stream edge would.
	for _, p := range blk.Messages.All() {
		if in, ok := p.(*port.MessageIn); ok {
			in.SetNotify(func() {
				select {
				case a.wakeCh <- struct{}{}:
				default:
				}
			})
		}
	}
	return a
}

// Inbox is the control channel other actors send Message values to.
func (a *BlockActor) Inbox() chan<- Message { return a.inbox }

// Done closes once the actor loop has returned from Run.
func (a *BlockActor) Done() <-chan struct{} { return a.done }

// Err is the first error the kernel reported, valid after Done closes.
func (a *BlockActor) Err() error { return a.err }

// Run is the function handed to a scheduler.Strategy's Go method.
func (a *BlockActor) Run(ctx context.Context) {
	defer close(a.done)
	if err := a.rt.RunInit(ctx); err != nil {
		a.err = rerr.NewRuntimeError(a.blk.Meta.InstanceName, "init", err)
		return
	}
	for !a.finished {
		a.drainInbox(ctx)
		if a.finished {
			break
		}
		a.rt.DrainMessages(ctx)
		if !a.callAgain {
			handledMsg, alive := a.awaitReady(ctx)
			if !alive {
				break
			}
			// A dispatched control message (e.g. Terminate) must be
			// fully applied before the next Work() call (spec §5's
			// ordering guarantee (c)), so loop back and re-evaluate
			// rather than falling through to step() in this same
			// iteration.
			if handledMsg {
				continue
			}
		}
		if a.finished {
			break
		}
		// A wakeup may have been raised by a message-port notify rather
		// than stream readiness, so drain message ports once more right
		// before the Work call they may be unrelated to.
		a.rt.DrainMessages(ctx)
		a.callAgain = false
		if err := a.step(ctx); err != nil {
			a.err = err
			a.finished = true
		}
	}
	a.releasePorts()
	// A Deinit failure is logged, never surfaced as the block's terminal
	// error: spec §4.2 "deinit fails -> logged, does not block shutdown".
	if err := a.rt.RunDeinit(ctx); err != nil {
		a.blk.Meta.Log.Errorf("block %s: deinit: %v", a.blk.Meta.InstanceName, err)
	}
}

// releasePorts flushes every output edge and detaches every input
// reader once the loop has broken, whether or not the kernel flushed
// on its own: downstream peers must observe end-of-stream after the
// in-flight tail, and upstream writers must stop being gated by a
// cursor nobody will ever advance again. Remaining buffered output
// beyond what peers drain is dropped, not flushed by Deinit.
func (a *BlockActor) releasePorts() {
	type flusher interface{ FlushFinished() }
	type closer interface{ Close() }
	for _, p := range a.blk.Ports.All() {
		switch q := p.(type) {
		case flusher:
			q.FlushFinished()
		case closer:
			q.Close()
		}
	}
}

// drainInbox processes every message currently queued without
// blocking, so a Terminate (or any other control message) is always
// applied before the next Work() call (spec §5's ordering guarantee
// (c)).
func (a *BlockActor) drainInbox(ctx context.Context) {
	for {
		select {
		case msg := <-a.inbox:
			a.dispatch(ctx, msg)
		default:
			return
		}
		if a.finished {
			return
		}
	}
}

// awaitReady blocks until a control message, a port wakeup, the
// kernel's requested BlockOn future, or ctx cancellation occurs.
// handledMsg reports whether a control message was the reason it
// returned; alive is false only when the loop should stop entirely
// (context cancelled).
func (a *BlockActor) awaitReady(ctx context.Context) (handledMsg, alive bool) {
	// a.currentBlockOn is nil unless the previous step set
	// io.BlockOn; a nil channel disables that select case forever, so
	// there's no need to special-case "no future".
	select {
	case msg := <-a.inbox:
		a.dispatch(ctx, msg)
		return true, true
	case <-a.wakeCh:
		a.blk.Meta.Counters.WokeUp()
		return false, true
	case <-a.currentBlockOn:
		a.blk.Meta.Counters.WokeUp()
		return false, true
	case <-ctx.Done():
		a.finished = true
		return false, false
	}
}

func (a *BlockActor) step(ctx context.Context) error {
	blocking := a.blk.Meta.Blocking
	if err := a.strategy.AcquireWork(ctx, blocking); err != nil {
		return err
	}
	defer a.strategy.ReleaseWork(blocking)

	io, err := a.rt.RunWorkOnce(ctx)
	if err != nil {
		return rerr.NewRuntimeError(a.blk.Meta.InstanceName, "work", err)
	}
	a.callAgain = io.CallAgain
	a.currentBlockOn = io.BlockOn
	if io.Finished {
		a.finished = true
		a.blk.Meta.Counters.Terminated("finished")
	}
	return nil
}

func (a *BlockActor) dispatch(ctx context.Context, msg Message) {
	switch msg.Kind {
	case Call:
		// Call errors never reach the caller: the message is dropped,
		// logged, and the reply is InvalidValue (spec §7).
		v, err := a.blk.Kernel.HandleMessage(ctx, msg.Port, msg.Pmt)
		if err != nil {
			a.blk.Meta.Log.Errorf("block %s: call %q: %v", a.blk.Meta.InstanceName, msg.Port, err)
			v = pmt.InvalidValue()
		}
		sendReply(msg.Reply, Reply{Value: v})
	case Callback:
		// Callback wraps the handler error back to the caller (spec §7).
		v, err := a.blk.Kernel.HandleMessage(ctx, msg.Port, msg.Pmt)
		sendReply(msg.Reply, Reply{Value: v, Err: err})
	case Describe:
		d := introspect.Describe(a.blk.Meta.InstanceName, a.blk.Meta.DisplayName, a.blk)
		sendReply(msg.Reply, Reply{Value: d})
	case Terminate:
		a.finished = true
		a.blk.Meta.Counters.Terminated("terminated")
		sendReply(msg.Reply, Reply{Value: pmt.Ok()})
	case StreamInputDone:
		// An upstream producer finished; wake so the kernel can
		// observe Finished() on its reader and drain the tail.
		select {
		case a.wakeCh <- struct{}{}:
		default:
		}
	case StreamOutputDone:
		// A downstream consumer finished. Once every consumer on
		// every output edge is gone, nothing can ever read what this
		// block produces, so it terminates too.
		a.outEdgesDone++
		if !a.finished && a.totalOutEdges > 0 && a.outEdgesDone >= a.totalOutEdges {
			a.finished = true
			a.blk.Meta.Counters.Terminated("finished")
		}
		select {
		case a.wakeCh <- struct{}{}:
		default:
		}
	}
}

func sendReply(ch chan Reply, r Reply) {
	if ch == nil {
		return
	}
	select {
	case ch <- r:
	default:
	}
}
