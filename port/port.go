// Package port implements the stream and message port model of spec
// §3/§4.2: typed stream port halves backed by a buffer.Reader/Writer,
// named message ports carrying Pmt, and a per-block port registry
// that freezes identity at construction time ("ports created at
// construction never change identity").
package port

import (
	"reflect"

	"github.com/OneOfOne/xxhash"
)

type Kind int

const (
	KindStreamIn Kind = iota
	KindStreamOut
	KindMessageIn
	KindMessageOut
)

func (k Kind) String() string {
	switch k {
	case KindStreamIn:
		return "stream-in"
	case KindStreamOut:
		return "stream-out"
	case KindMessageIn:
		return "message-in"
	case KindMessageOut:
		return "message-out"
	}
	return "unknown"
}

// Descriptor is the type-erased identity of a port, used by the
// flowgraph to validate connections and by Introspection to describe
// a block, per the "Block polymorphism" design note: "the flowgraph
// stores type-erased block handles plus a per-port runtime type tag
// used only at connect_stream to validate match."
type Descriptor struct {
	Name     string
	Kind     Kind
	ElemType reflect.Type // nil for message ports
}

// Erased is implemented by every concrete port handle (StreamIn[T],
// StreamOut[T], MessageIn, MessageOut).
type Erased interface {
	Descriptor() Descriptor
}

// Registry is a block's frozen, ordered list of ports, looked up by
// name through an xxhash-keyed index the way the teacher keys its own
// registries (xact/xreg) for dense, fast lookup rather than relying on
// Go's built-in string-map hashing alone.
type Registry struct {
	ports []Erased
	index map[uint64]int
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[uint64]int)}
}

func nameHash(name string) uint64 {
	return xxhash.ChecksumString64(name)
}

// Add registers a port. It returns a plain error if called after
// Freeze or if the name is a duplicate; Block.AddStreamPort and
// Block.AddMessagePort pass that error through unchanged.
func (r *Registry) Add(p Erased) error {
	if r.frozen {
		return errAlreadyFrozen
	}
	d := p.Descriptor()
	h := nameHash(d.Name)
	if _, ok := r.lookup(d.Name, h); ok {
		return errDuplicateName(d.Name)
	}
	r.index[h] = len(r.ports)
	r.ports = append(r.ports, p)
	return nil
}

// Freeze locks the port list; called once the block finishes
// declaring its ports at construction.
func (r *Registry) Freeze() { r.frozen = true }

func (r *Registry) lookup(name string, h uint64) (Erased, bool) {
	i, ok := r.index[h]
	if !ok {
		return nil, false
	}
	if r.ports[i].Descriptor().Name != name {
		// hash collision: fall back to a linear scan.
		for _, p := range r.ports {
			if p.Descriptor().Name == name {
				return p, true
			}
		}
		return nil, false
	}
	return r.ports[i], true
}

// Get resolves a port by name (the PortId string form of spec §6).
func (r *Registry) Get(name string) (Erased, bool) {
	return r.lookup(name, nameHash(name))
}

// At resolves a port by dense insertion-order index (the PortId
// integer form of spec §6).
func (r *Registry) At(i int) (Erased, bool) {
	if i < 0 || i >= len(r.ports) {
		return nil, false
	}
	return r.ports[i], true
}

func (r *Registry) All() []Erased {
	out := make([]Erased, len(r.ports))
	copy(out, r.ports)
	return out
}
