package ctrl

import (
	"context"
	"sync"

	"github.com/nats-radio/flowcore/block"
	"github.com/nats-radio/flowcore/introspect"
	"github.com/nats-radio/flowcore/pmt"
	"github.com/nats-radio/flowcore/rerr"
	"github.com/nats-radio/flowcore/scheduler"
)

// FlowgraphActor is spec §4.5's flowgraph-level actor: it multiplexes
// BlockCall/BlockCallback/FlowgraphDescription/BlockDescription/
// Terminate onto the targeted block's own inbox and owns the top-level
// result, resolving once every block actor has terminated. Live-actor
// bookkeeping is grounded on the teacher's xaction registry
// (`xact/xreg`), adapted to track running block actors instead of
// finished-but-retained xactions; terminated entries are dropped by
// Housekeeper rather than kept forever.
type FlowgraphActor struct {
	strategy scheduler.Strategy

	mu     sync.Mutex
	actors map[block.Id]*BlockActor // live lookup, reaped once terminated
	all    []*BlockActor            // stable, insertion order, never reaped
	ids    []block.Id
	edges  []streamEdgeRef

	errs rerr.Errs
	done chan struct{}
}

// streamEdgeRef is the minimal topology the control plane needs for
// §4.5's StreamInputDone/StreamOutputDone peer notifications.
type streamEdgeRef struct {
	from, to block.Id
}

func NewFlowgraphActor(strategy scheduler.Strategy) *FlowgraphActor {
	return &FlowgraphActor{
		strategy: strategy,
		actors:   make(map[block.Id]*BlockActor),
		done:     make(chan struct{}),
	}
}

// Spawn registers a block actor but does not yet run its loop; Start
// does that for every registered actor at once so construction and
// execution stay separate steps, per §4.4's "hands every block to the
// scheduler's spawn" happening only at run/start.
func (fa *FlowgraphActor) Spawn(blk *block.Block, inboxCapacity int) *BlockActor {
	a := NewBlockActor(blk, fa.strategy, inboxCapacity)
	fa.mu.Lock()
	fa.actors[blk.Id] = a
	fa.all = append(fa.all, a)
	fa.ids = append(fa.ids, blk.Id)
	fa.mu.Unlock()
	return a
}

// AddStreamEdge records one resolved stream edge so actor termination
// can be propagated to its peers; called by the flowgraph between
// Spawn and Start.
func (fa *FlowgraphActor) AddStreamEdge(from, to block.Id) {
	fa.mu.Lock()
	fa.edges = append(fa.edges, streamEdgeRef{from: from, to: to})
	fa.mu.Unlock()
}

// Start hands every registered block actor's loop to the scheduler and
// begins waiting for all of them to terminate.
func (fa *FlowgraphActor) Start(ctx context.Context) {
	for _, e := range fa.edges {
		if a, ok := fa.actors[e.from]; ok {
			a.totalOutEdges++
		}
	}
	for _, a := range fa.all {
		a := a
		fa.strategy.Go(func() { a.Run(ctx) })
	}
	go fa.awaitAll()
}

// awaitAll watches every actor; the first one to report an error
// triggers a Terminate broadcast to the rest (spec §7: "the flowgraph
// actor records the first such error, broadcasts Terminate to the
// remaining blocks, waits for drain"), and the flowgraph resolves once
// all actors have exited.
func (fa *FlowgraphActor) awaitAll() {
	var wg sync.WaitGroup
	var failOnce sync.Once
	for _, a := range fa.all {
		a := a
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-a.Done()
			fa.notifyPeers(a.blk.Id)
			if err := a.Err(); err != nil {
				fa.errs.Add(err)
				failOnce.Do(func() {
					_ = fa.TerminateAll(context.Background())
				})
			}
		}()
	}
	wg.Wait()
	close(fa.done)
}

// Done resolves once every block actor has Terminated.
func (fa *FlowgraphActor) Done() <-chan struct{} { return fa.done }

// Err is the first block actor error, per §7's "the flowgraph future
// resolves with either Ok or the first block's error".
func (fa *FlowgraphActor) Err() error { return fa.errs.First() }

// notifyPeers propagates one actor's termination along its stream
// edges, per §4.5: each downstream consumer learns its input is done
// (StreamInputDone), each upstream producer learns one consumer is
// gone (StreamOutputDone).
func (fa *FlowgraphActor) notifyPeers(id block.Id) {
	fa.mu.Lock()
	edges := fa.edges
	fa.mu.Unlock()
	for _, e := range edges {
		if e.from == id {
			fa.notifyPeer(e.to, StreamInputDone)
		}
		if e.to == id {
			fa.notifyPeer(e.from, StreamOutputDone)
		}
	}
}

// notifyPeer is a fire-and-forget inbox enqueue: peer-done
// notifications carry no reply channel and must never hang on an
// actor that has itself already exited.
func (fa *FlowgraphActor) notifyPeer(id block.Id, kind Kind) {
	a, ok := fa.lookup(id)
	if !ok {
		return
	}
	select {
	case a.Inbox() <- Message{Kind: kind}:
	case <-a.Done():
	}
}

func (fa *FlowgraphActor) lookup(id block.Id) (*BlockActor, bool) {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	a, ok := fa.actors[id]
	return a, ok
}

func (fa *FlowgraphActor) send(ctx context.Context, id block.Id, msg Message) (Reply, error) {
	a, ok := fa.lookup(id)
	if !ok {
		return Reply{}, rerr.ErrUnknownBlock
	}
	select {
	case a.Inbox() <- msg:
	case <-a.Done():
		// The actor exited before accepting; nothing will ever drain
		// this inbox again.
		return Reply{}, rerr.ErrFlowgraphStopped
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
	// Prefer an already-buffered reply over racing the actor's exit:
	// dispatch replies through a 1-slot channel before the loop breaks.
	select {
	case r := <-msg.Reply:
		return r, nil
	default:
	}
	select {
	case r := <-msg.Reply:
		return r, nil
	case <-a.Done():
		return Reply{}, rerr.ErrFlowgraphStopped
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

// Call invokes the named message handler on the target block and
// waits for its reply.
func (fa *FlowgraphActor) Call(ctx context.Context, id block.Id, port string, v pmt.Pmt) (pmt.Pmt, error) {
	r, err := fa.send(ctx, id, Message{Kind: Call, Port: port, Pmt: v, Reply: make(chan Reply, 1)})
	if err != nil {
		return pmt.Pmt{}, err
	}
	if r.Err != nil {
		return pmt.Pmt{}, r.Err
	}
	p, _ := r.Value.(pmt.Pmt)
	return p, nil
}

// Callback invokes the named message handler and, unlike Call, hands
// the handler's own error back to the caller instead of swallowing it
// into an InvalidValue reply (spec §7: "the error is wrapped back to
// the caller (for callback)").
func (fa *FlowgraphActor) Callback(ctx context.Context, id block.Id, port string, v pmt.Pmt) (pmt.Pmt, error) {
	r, err := fa.send(ctx, id, Message{Kind: Callback, Port: port, Pmt: v, Reply: make(chan Reply, 1)})
	if err != nil {
		return pmt.Pmt{}, err
	}
	if r.Err != nil {
		return pmt.Pmt{}, r.Err
	}
	p, _ := r.Value.(pmt.Pmt)
	return p, nil
}

// BlockDescription requests the target block's current introspection
// snapshot.
func (fa *FlowgraphActor) BlockDescription(ctx context.Context, id block.Id) (introspect.BlockDescription, error) {
	r, err := fa.send(ctx, id, Message{Kind: Describe, Reply: make(chan Reply, 1)})
	if err != nil {
		return introspect.BlockDescription{}, err
	}
	d, _ := r.Value.(introspect.BlockDescription)
	return d, nil
}

// Terminate asks one block to finish after its current opportunity,
// per §4.5's `Terminate` control message.
func (fa *FlowgraphActor) Terminate(ctx context.Context, id block.Id) error {
	_, err := fa.send(ctx, id, Message{Kind: Terminate, Reply: make(chan Reply, 1)})
	return err
}

// TerminateAll requests every block terminate, aggregating the first
// error encountered while doing so.
func (fa *FlowgraphActor) TerminateAll(ctx context.Context) error {
	var errs rerr.Errs
	fa.mu.Lock()
	ids := append([]block.Id(nil), fa.ids...)
	fa.mu.Unlock()
	for _, id := range ids {
		if err := fa.Terminate(ctx, id); err != nil {
			errs.Add(err)
		}
	}
	return errs.First()
}

// reapTerminated drops bookkeeping for actors that have already
// exited their loop, keeping the live lookup table from growing
// without bound across a long-lived flowgraph's lifetime.
func (fa *FlowgraphActor) reapTerminated() {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	for id, a := range fa.actors {
		select {
		case <-a.Done():
			delete(fa.actors, id)
		default:
		}
	}
}
