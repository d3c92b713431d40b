package block

import (
	"context"

	"github.com/nats-radio/flowcore/port"
	"github.com/nats-radio/flowcore/rdebug"
)

// Runtime drives one Block's fixed-point work loop (spec §4: message
// drain, then Work, until neither produces forward progress). The
// owning actor (ctrl.BlockActor) is the only caller; a Runtime has no
// concurrency of its own.
type Runtime struct {
	b *Block
}

func NewRuntime(b *Block) *Runtime { return &Runtime{b: b} }

// RunInit runs the kernel's one-time setup. Every stream port on the
// block must already be bound; RunInit checks this via
// rdebug.Assert rather than a runtime error, since an unbound port at
// Init time is a construction bug, not a recoverable condition.
func (r *Runtime) RunInit(ctx context.Context) error {
	for _, p := range r.b.Ports.All() {
		if bp, ok := p.(bound); ok {
			rdebug.Assert(bp.Bound(), "unbound port at Init", r.b.Meta.InstanceName, p.Descriptor().Name)
		}
	}
	if err := r.b.Kernel.Init(ctx); err != nil {
		return err
	}
	r.b.Meta.Log.Infof("block %s: initialized", r.b.Meta.InstanceName)
	return nil
}

// bound is satisfied by port.StreamIn[T]/StreamOut[T]; it lets
// RunInit assert bind state without knowing T.
type bound interface {
	Bound() bool
}

// DrainMessages dispatches every currently-queued Pmt on each message
// input port to the kernel, preserving each port's own FIFO order
// (spec §3). It never blocks: an empty port simply yields no calls.
// A handler error is logged and the message dropped, never propagated
// as a block failure (spec §4.2: "message handler fails -> message is
// dropped, error logged; block continues unless it sets io.finished").
func (r *Runtime) DrainMessages(ctx context.Context) {
	for _, p := range r.b.Messages.All() {
		in, ok := p.(*port.MessageIn)
		if !ok {
			continue
		}
		name := in.Descriptor().Name
		for {
			select {
			case msg := <-in.Chan():
				if _, err := r.b.Kernel.HandleMessage(ctx, name, msg); err != nil {
					r.b.Meta.Log.Errorf("block %s: message port %q handler: %v", r.b.Meta.InstanceName, name, err)
				}
			default:
				goto nextPort
			}
		}
	nextPort:
	}
}

// RunWorkOnce invokes the kernel's Work exactly once and returns the
// IO record it populated. The caller (BlockActor) interprets
// CallAgain/Finished/BlockOn to decide whether to loop immediately,
// go idle awaiting a wakeup, or tear the block down.
func (r *Runtime) RunWorkOnce(ctx context.Context) (IO, error) {
	r.b.io.Reset()
	r.b.Meta.Counters.WorkCalled()
	err := r.b.Kernel.Work(ctx, &r.b.io)
	return r.b.io, err
}

// RunDeinit runs the kernel's teardown hook exactly once, regardless
// of whether the block finished normally or was cancelled.
func (r *Runtime) RunDeinit(ctx context.Context) error {
	err := r.b.Kernel.Deinit(ctx)
	r.b.Meta.Log.Infof("block %s: deinitialized", r.b.Meta.InstanceName)
	return err
}
