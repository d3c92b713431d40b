// Package flowgraph implements spec §4.4's Builder/Flowgraph: the
// topology construction API, its pre-start invariants, and the buffer
// wiring performed at Start time.
package flowgraph

import (
	"reflect"

	"github.com/nats-radio/flowcore/block"
	"github.com/nats-radio/flowcore/buffer"
	"github.com/nats-radio/flowcore/port"
	"github.com/nats-radio/flowcore/rconfig"
	"github.com/nats-radio/flowcore/rerr"
)

// coreIface is satisfied by both the ring and slab core types
// returned from buffer.NewRing[T]/buffer.NewSlab[T]; naming it here
// lets Builder hold a producer-group's core as `any` and recover a
// typed Writer/Reader from it without the buffer package needing to
// export its core types.
type coreIface[T any] interface {
	Writer() buffer.Writer[T]
	NewReader() buffer.Reader[T]
}

type streamEdge struct {
	fromID, toID     block.Id
	outName, inName  string
	elemType         reflect.Type
	hint             BufferHint
	makeCore         func(cfg rconfig.Config) any
	attachWriter     func(core any)
	attachReader     func(core any)
}

type messageEdge struct {
	fromID, toID    block.Id
	outName, inName string
}

// Builder accumulates blocks and edges; Build validates the topology
// and hands back an immutable Flowgraph.
type Builder struct {
	cfg rconfig.Config

	blocks map[block.Id]*block.Block
	order  []block.Id

	streamEdges []*streamEdge
	msgEdges    []messageEdge
}

func NewBuilder(cfg rconfig.Config) *Builder {
	return &Builder{cfg: cfg, blocks: make(map[block.Id]*block.Block)}
}

// AddBlock registers blk, freezing its port registries, and returns
// its id. BlockId is "a dense non-negative integer assigned in
// insertion order" (spec §6), so AddBlock — not the block's own
// constructor — is the sole assigner; any id set on blk before this
// call is overwritten.
func (b *Builder) AddBlock(blk *block.Block) block.Id {
	id := block.Id(len(b.order))
	blk.Id = id
	blk.Freeze()
	b.blocks[id] = blk
	b.order = append(b.order, id)
	return id
}

// SetInstanceName renames a previously added block.
func (b *Builder) SetInstanceName(id block.Id, name string) error {
	blk, ok := b.blocks[id]
	if !ok {
		return rerr.ErrUnknownBlock
	}
	blk.Meta.InstanceName = name
	return nil
}

// ConnectStream wires one producer's out-port to one consumer's
// in-port with the given buffer hint. It is a package-level function
// rather than a Builder method because Go methods cannot introduce
// their own type parameters (spec §4.4: "connect_stream(producer_id,
// out_port, consumer_id, in_port, buffer_hint)").
func ConnectStream[T any](b *Builder, from block.Id, outPort string, to block.Id, inPort string, hint BufferHint) error {
	fromBlk, ok := b.blocks[from]
	if !ok {
		return rerr.NewConstructionError("connect_stream", "unknown producer block")
	}
	toBlk, ok := b.blocks[to]
	if !ok {
		return rerr.NewConstructionError("connect_stream", "unknown consumer block")
	}
	outErased, ok := fromBlk.Ports.Get(outPort)
	if !ok {
		return rerr.NewConstructionError("connect_stream", "unknown out port %q", outPort)
	}
	inErased, ok := toBlk.Ports.Get(inPort)
	if !ok {
		return rerr.NewConstructionError("connect_stream", "unknown in port %q", inPort)
	}
	out, ok := outErased.(*port.StreamOut[T])
	if !ok {
		return rerr.ErrStreamTypeMismatch
	}
	in, ok := inErased.(*port.StreamIn[T])
	if !ok {
		return rerr.ErrStreamTypeMismatch
	}
	for _, e := range b.streamEdges {
		if e.toID == to && e.inName == inPort {
			return rerr.ErrFanInConflict
		}
	}

	edge := &streamEdge{
		fromID: from, toID: to,
		outName: outPort, inName: inPort,
		elemType: out.Descriptor().ElemType,
		hint:     hint,
	}
	edge.makeCore = func(cfg rconfig.Config) any {
		if hint.Kind == Slab {
			chunks, chunkItems := hint.Chunks, hint.ChunkItems
			if chunks <= 0 {
				chunks = cfg.DefaultSlabChunks
			}
			if chunkItems <= 0 {
				chunkItems = cfg.DefaultSlabChunkItems
			}
			return buffer.NewSlab[T](chunks, chunkItems)
		}
		items := cfg.DefaultRingItems
		if hint.Kind == RingMinItems && hint.MinItems > items {
			items = hint.MinItems
		}
		return buffer.NewRing[T](items)
	}
	edge.attachWriter = func(core any) { out.Bind(core.(coreIface[T]).Writer()) }
	edge.attachReader = func(core any) { in.Bind(core.(coreIface[T]).NewReader()) }

	b.streamEdges = append(b.streamEdges, edge)
	return nil
}

// ConnectMessage wires a message out-port to a message in-port. Unlike
// stream edges, message ports support fan-out from a single
// MessageOut with no buffer to resolve later, so the connection is
// made immediately.
func (b *Builder) ConnectMessage(from block.Id, outPort string, to block.Id, inPort string) error {
	fromBlk, ok := b.blocks[from]
	if !ok {
		return rerr.NewConstructionError("connect_message", "unknown producer block")
	}
	toBlk, ok := b.blocks[to]
	if !ok {
		return rerr.NewConstructionError("connect_message", "unknown consumer block")
	}
	outErased, ok := fromBlk.Messages.Get(outPort)
	if !ok {
		return rerr.NewConstructionError("connect_message", "unknown out port %q", outPort)
	}
	inErased, ok := toBlk.Messages.Get(inPort)
	if !ok {
		return rerr.NewConstructionError("connect_message", "unknown in port %q", inPort)
	}
	out, ok := outErased.(*port.MessageOut)
	if !ok {
		return rerr.NewConstructionError("connect_message", "%q is not a message output", outPort)
	}
	in, ok := inErased.(*port.MessageIn)
	if !ok {
		return rerr.ErrWrongPortKind
	}
	out.Connect(in)
	b.msgEdges = append(b.msgEdges, messageEdge{fromID: from, toID: to, outName: outPort, inName: inPort})
	return nil
}
