package block

import (
	"github.com/nats-radio/flowcore/instrument"
	"github.com/nats-radio/flowcore/port"
	"github.com/nats-radio/flowcore/rlog"
)

// Id uniquely names a block instance within one flowgraph.
type Id uint64

// Block ties a Kernel to its Meta, its port registry, and the Work I/O
// record its Runtime mutates each call. Flowgraph construction builds
// one Block per AddBlock call; the registry's ports are bound to
// concrete buffers only once the topology is resolved at Start.
type Block struct {
	Id   Id
	Meta Meta

	Kernel   Kernel
	Ports    *port.Registry
	Messages *port.Registry

	io IO
}

// New wires a kernel into a fresh, unbound Block. Stream and message
// ports are registered by the caller (typically the kernel
// constructor) before the block is handed to a flowgraph.Builder.
func New(id Id, meta Meta, k Kernel) *Block {
	return &Block{
		Id:       id,
		Meta:     meta,
		Kernel:   k,
		Ports:    port.NewRegistry(),
		Messages: port.NewRegistry(),
	}
}

// NewSimple is the common-case constructor used by kernel
// implementations: a display/instance name pair, the per-flowgraph
// logger and counters, the `blocking` hint, and the kernel itself.
func NewSimple(id Id, displayName, instanceName string, log *rlog.Logger, reg *instrument.Registry, blocking bool, k Kernel) *Block {
	return New(id, Meta{
		DisplayName:  displayName,
		InstanceName: instanceName,
		Blocking:     blocking,
		Log:          log,
		Counters:     reg.ForBlock(instanceName),
	}, k)
}

// AddStreamPort registers a typed stream port descriptor so the
// flowgraph can find and bind it by name.
func (b *Block) AddStreamPort(p port.Erased) error { return b.Ports.Add(p) }

// AddMessagePort registers a message port descriptor.
func (b *Block) AddMessagePort(p port.Erased) error { return b.Messages.Add(p) }

// Freeze locks both registries against further additions; the
// flowgraph Builder calls this when the block is added, so that
// introspection's port listing is stable for the life of the block.
func (b *Block) Freeze() {
	b.Ports.Freeze()
	b.Messages.Freeze()
}

func (b *Block) String() string { return b.Meta.InstanceName }

// StreamPorts and MessagePorts satisfy introspect's describable
// interface without that package importing block directly.
func (b *Block) StreamPorts() []port.Erased   { return b.Ports.All() }
func (b *Block) MessagePorts() []port.Erased  { return b.Messages.All() }
