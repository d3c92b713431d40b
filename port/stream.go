package port

import (
	"reflect"

	"github.com/nats-radio/flowcore/buffer"
	"github.com/nats-radio/flowcore/tag"
)

// StreamIn is the consumer-side half of a typed stream port. The
// kernel interacts with it directly (Slice/Consume); the flowgraph
// binds the underlying buffer.Reader[T] once the edge is resolved.
type StreamIn[T any] struct {
	name   string
	reader buffer.Reader[T]
}

func NewStreamIn[T any](name string) *StreamIn[T] { return &StreamIn[T]{name: name} }

func (p *StreamIn[T]) Descriptor() Descriptor {
	var zero T
	return Descriptor{Name: p.name, Kind: KindStreamIn, ElemType: reflect.TypeOf(zero)}
}

// Bind attaches the concrete buffer reader; called once by the
// flowgraph at Start time.
func (p *StreamIn[T]) Bind(r buffer.Reader[T]) { p.reader = r }

func (p *StreamIn[T]) Bound() bool { return p.reader != nil }

func (p *StreamIn[T]) Slice() ([]T, []tag.Tag) {
	if p.reader == nil {
		return nil, nil
	}
	return p.reader.Slice()
}

func (p *StreamIn[T]) Consume(n int) {
	if p.reader != nil {
		p.reader.Consume(n)
	}
}

func (p *StreamIn[T]) Finished() bool {
	return p.reader == nil || p.reader.Finished()
}

func (p *StreamIn[T]) RegisterWakeup(tok *buffer.Waker) {
	if p.reader != nil {
		p.reader.RegisterWakeup(tok)
	}
}

// Close detaches the underlying reader from its edge; called once by
// the runtime when the owning block terminates.
func (p *StreamIn[T]) Close() {
	if p.reader != nil {
		p.reader.Close()
	}
}

// StreamOut is the producer-side half of a typed stream port. It binds
// to a single core.Writer(); fan-out to several readers lives inside
// that buffer's own bookkeeping (ring and slab both track readers).
type StreamOut[T any] struct {
	name   string
	writer buffer.Writer[T]
}

func NewStreamOut[T any](name string) *StreamOut[T] { return &StreamOut[T]{name: name} }

func (p *StreamOut[T]) Descriptor() Descriptor {
	var zero T
	return Descriptor{Name: p.name, Kind: KindStreamOut, ElemType: reflect.TypeOf(zero)}
}

func (p *StreamOut[T]) Bind(w buffer.Writer[T]) { p.writer = w }

func (p *StreamOut[T]) Bound() bool { return p.writer != nil }

func (p *StreamOut[T]) Slice() ([]T, *tag.List) {
	if p.writer == nil {
		return nil, nil
	}
	return p.writer.Slice()
}

func (p *StreamOut[T]) Produce(n int, tags []tag.Tag) {
	if p.writer != nil {
		p.writer.Produce(n, tags)
	}
}

func (p *StreamOut[T]) FlushFinished() {
	if p.writer != nil {
		p.writer.FlushFinished()
	}
}

func (p *StreamOut[T]) RegisterWakeup(tok *buffer.Waker) {
	if p.writer != nil {
		p.writer.RegisterWakeup(tok)
	}
}
