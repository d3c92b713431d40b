// Package buffer implements the four transport classes of spec §4.1
// (ring, slab, device-resident, inline) behind the common reader and
// writer contracts. The flowgraph picks a concrete variant per edge at
// connect time; kernels only ever see the narrow Reader[T]/Writer[T]
// interfaces, per the "Buffer polymorphism" design note.
package buffer

import "github.com/nats-radio/flowcore/tag"

// Reader is the consumer-side half of a stream edge.
type Reader[T any] interface {
	// Slice returns the currently readable contiguous run and the
	// tags whose index lies within it. The slice is valid only until
	// the next Consume call on this reader.
	Slice() ([]T, []tag.Tag)
	// Consume commits that n items (n <= len(last Slice())) have been
	// processed and may be reused by the writer.
	Consume(n int)
	// Finished reports whether the peer writer has flushed and all
	// items have drained from this reader's view.
	Finished() bool
	// RegisterWakeup arranges for tok to be notified when this edge
	// becomes newly readable.
	RegisterWakeup(tok *Waker)
	// Close detaches this reader from the edge: its cursor no longer
	// gates the writer's high-water mark and any chunks it held are
	// released. Called once when the owning block terminates.
	Close()
}

// Writer is the producer-side half of a stream edge.
type Writer[T any] interface {
	// Slice returns currently writable space and a tag accumulator
	// that Produce's tags are relative to.
	Slice() ([]T, *tag.List)
	// Produce commits that n items (n <= len(last Slice())) have been
	// written, with tags whose Index is relative to the start of that
	// slice.
	Produce(n int, tags []tag.Tag)
	// FlushFinished marks the writer side permanently closed; no
	// further Produce calls are valid.
	FlushFinished()
	// RegisterWakeup arranges for tok to be notified when this edge
	// gains free space.
	RegisterWakeup(tok *Waker)
}

// Transport identifies which of the four classes backs an edge.
type Transport int

const (
	TransportRing Transport = iota
	TransportSlab
	TransportDevice
	TransportInline
)

func (t Transport) String() string {
	switch t {
	case TransportRing:
		return "ring"
	case TransportSlab:
		return "slab"
	case TransportDevice:
		return "device"
	case TransportInline:
		return "inline"
	}
	return "unknown"
}
