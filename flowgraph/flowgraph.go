package flowgraph

import (
	"context"
	"time"

	"github.com/nats-radio/flowcore/block"
	"github.com/nats-radio/flowcore/ctrl"
	"github.com/nats-radio/flowcore/instrument"
	"github.com/nats-radio/flowcore/introspect"
	"github.com/nats-radio/flowcore/pmt"
	"github.com/nats-radio/flowcore/rconfig"
	"github.com/nats-radio/flowcore/rerr"
	"github.com/nats-radio/flowcore/rlog"
	"github.com/nats-radio/flowcore/scheduler"
	"github.com/teris-io/shortid"
)

// Id identifies one flowgraph instance, generated at Build time so
// multiple independent flowgraphs can coexist in one process (spec §9;
// the original spec.md is silent on how flowgraphs are told apart,
// resolved here using the wire surface's `{id}` path parameter named
// in §6 as the intended identity).
type Id string

// Flowgraph is the validated, buildable topology returned by
// Builder.Build. It holds no running state; Start produces the
// running control-plane objects.
type Flowgraph struct {
	Id  Id
	cfg rconfig.Config

	blocks      map[block.Id]*block.Block
	order       []block.Id
	streamEdges []*streamEdge
	msgEdges    []messageEdge

	log *rlog.Logger
}

// Build validates the topology (type match and fan-in are enforced by
// ConnectStream at call time; this checks only the cycle invariant)
// and assigns a FlowgraphId.
func (b *Builder) Build() (*Flowgraph, error) {
	if err := detectCycle(b.order, b.streamEdges); err != nil {
		return nil, err
	}
	id, err := shortid.Generate()
	if err != nil {
		return nil, rerr.NewConstructionError("build", "flowgraph id: %v", err)
	}
	return &Flowgraph{
		Id:          Id(id),
		cfg:         b.cfg,
		blocks:      b.blocks,
		order:       append([]block.Id(nil), b.order...),
		streamEdges: b.streamEdges,
		msgEdges:    b.msgEdges,
		log:         rlog.New(string(id), nil, time.Second),
	}, nil
}

// wireBuffers instantiates the concrete buffer for each stream edge
// and binds both of its port halves, per §4.4 step 1. Edges are
// grouped by producer (block, port) so a fanned-out StreamOut binds
// its single Writer once and each consumer gets its own fan-out
// Reader off the same core.
func (fg *Flowgraph) wireBuffers() {
	type groupKey struct {
		id   block.Id
		name string
	}
	groups := make(map[groupKey][]*streamEdge)
	var groupOrder []groupKey
	for _, e := range fg.streamEdges {
		k := groupKey{e.fromID, e.outName}
		if _, ok := groups[k]; !ok {
			groupOrder = append(groupOrder, k)
		}
		groups[k] = append(groups[k], e)
	}
	for _, k := range groupOrder {
		edges := groups[k]
		core := edges[0].makeCore(fg.cfg)
		edges[0].attachWriter(core)
		for _, e := range edges {
			e.attachReader(core)
		}
	}
}

// isSource reports whether id has no stream-input edges, used by the
// flow-oriented strategy's spawn-priority heuristic.
func (fg *Flowgraph) isSource(id block.Id) bool {
	for _, e := range fg.streamEdges {
		if e.toID == id {
			return false
		}
	}
	return true
}

// Handle is spec §6's FlowgraphHandle: the programmatic external
// interface over a running flowgraph.
type Handle struct {
	fg       *Flowgraph
	actor    *ctrl.FlowgraphActor
	hk       *ctrl.Housekeeper
	strategy scheduler.Strategy
}

// Start instantiates every stream buffer, assigns each block an
// inbox-bearing actor, and hands every block to the chosen scheduling
// strategy, per §4.4 steps 1-3.
func (fg *Flowgraph) Start(ctx context.Context, strategy scheduler.Strategy) *Handle {
	fg.wireBuffers()

	actor := ctrl.NewFlowgraphActor(strategy)
	ids := append([]block.Id(nil), fg.order...)
	if p, ok := strategy.(scheduler.Prioritizer); ok {
		raw := make([]uint64, len(ids))
		for i, id := range ids {
			raw[i] = uint64(id)
		}
		raw = p.Priority(raw, func(u uint64) bool { return fg.isSource(block.Id(u)) })
		for i, u := range raw {
			ids[i] = block.Id(u)
		}
	}
	for _, id := range ids {
		actor.Spawn(fg.blocks[id], fg.cfg.InboxCapacity)
	}
	for _, e := range fg.streamEdges {
		actor.AddStreamEdge(e.fromID, e.toID)
	}

	hk := ctrl.NewHousekeeper(fg.cfg.HousekeepInterval, fg.log)
	actor.Start(ctx)
	hk.Start(actor)
	go func() {
		<-actor.Done()
		hk.Stop()
		fg.log.Flush()
	}()

	return &Handle{fg: fg, actor: actor, hk: hk, strategy: strategy}
}

// Call invokes a message handler on the named block and waits for its
// reply (spec §6).
func (h *Handle) Call(ctx context.Context, id block.Id, port string, v pmt.Pmt) (pmt.Pmt, error) {
	return h.actor.Call(ctx, id, port, v)
}

// Callback invokes a message handler like Call, but a handler error
// is returned to the caller rather than dropped (spec §6, §7).
func (h *Handle) Callback(ctx context.Context, id block.Id, port string, v pmt.Pmt) (pmt.Pmt, error) {
	return h.actor.Callback(ctx, id, port, v)
}

// BlockDescription requests one block's introspection snapshot.
func (h *Handle) BlockDescription(ctx context.Context, id block.Id) (introspect.BlockDescription, error) {
	return h.actor.BlockDescription(ctx, id)
}

// Description assembles the whole flowgraph's introspection snapshot
// (spec §4.6), including both edge lists.
func (h *Handle) Description(ctx context.Context) (introspect.FlowgraphDescription, error) {
	fd := introspect.FlowgraphDescription{Id: string(h.fg.Id)}
	for _, id := range h.fg.order {
		d, err := h.actor.BlockDescription(ctx, id)
		if err != nil {
			return introspect.FlowgraphDescription{}, err
		}
		fd.Blocks = append(fd.Blocks, d)
	}
	for _, e := range h.fg.streamEdges {
		fd.StreamEdges = append(fd.StreamEdges, introspect.StreamEdgeDescription{
			FromBlock: h.fg.blocks[e.fromID].Meta.InstanceName,
			FromPort:  e.outName,
			ToBlock:   h.fg.blocks[e.toID].Meta.InstanceName,
			ToPort:    e.inName,
		})
	}
	for _, e := range h.fg.msgEdges {
		fd.MessageEdges = append(fd.MessageEdges, introspect.MessageEdgeDescription{
			FromBlock: h.fg.blocks[e.fromID].Meta.InstanceName,
			FromPort:  e.outName,
			ToBlock:   h.fg.blocks[e.toID].Meta.InstanceName,
			ToPort:    e.inName,
		})
	}
	return fd, nil
}

// Terminate asks every block to finish. It returns once each block has
// acknowledged the request (or has already exited); it does not wait
// for the blocks to exit, so a block busy inside Work delays its return
// until that Work call ends.
func (h *Handle) Terminate(ctx context.Context) error {
	return h.actor.TerminateAll(ctx)
}

// TerminateAndWait requests termination and polls until every block
// actor has exited.
func (h *Handle) TerminateAndWait(ctx context.Context) error {
	if err := h.Terminate(ctx); err != nil {
		return err
	}
	return h.Wait(ctx)
}

// Wait blocks until the flowgraph resolves, returning the first
// block's error if any reported one.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.actor.Done():
		return h.actor.Err()
	case <-ctx.Done():
		return rerr.NewCancelled(ctx.Err())
	}
}

// Run starts fg on the given strategy and blocks until every block
// has terminated: it returns nil after a fully voluntary shutdown, or
// the first block's runtime error (spec §7's `run(fg)` surface).
func Run(ctx context.Context, fg *Flowgraph, strategy scheduler.Strategy) error {
	return fg.Start(ctx, strategy).Wait(ctx)
}

// NewInstrumentRegistry is a convenience constructor callers use to build
// a *instrument.Registry from a flowgraph's config before wiring any
// block's Meta.Counters.
func NewInstrumentRegistry(cfg rconfig.Config) *instrument.Registry {
	return instrument.NewRegistry(cfg.Instrument)
}
