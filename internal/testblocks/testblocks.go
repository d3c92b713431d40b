// Package testblocks holds small fixture kernels used by the scenario
// tests in package flowgraph_test (spec §8's S1-S6): a source, a
// passthrough, a sink, and a few variations used to exercise
// head-termination, tag preservation across a delay, and failure
// propagation.
package testblocks

import (
	"context"

	"github.com/nats-radio/flowcore/block"
	"github.com/nats-radio/flowcore/pmt"
	"github.com/nats-radio/flowcore/port"
	"github.com/nats-radio/flowcore/tag"
)

func filterTags(tags []tag.Tag, n int) []tag.Tag {
	out := tags[:0:0]
	for _, t := range tags {
		if t.Index < int64(n) {
			out = append(out, t)
		}
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// VectorSource emits a fixed slice of items once, then finishes.
type VectorSource[T any] struct {
	block.Base
	Out  *port.StreamOut[T]
	Data []T
	pos  int
}

func (s *VectorSource[T]) Work(_ context.Context, io *block.IO) error {
	if s.pos >= len(s.Data) {
		s.Out.FlushFinished()
		io.Finished = true
		return nil
	}
	slice, _ := s.Out.Slice()
	if len(slice) == 0 {
		return nil
	}
	n := min(len(slice), len(s.Data)-s.pos)
	copy(slice[:n], s.Data[s.pos:s.pos+n])
	s.Out.Produce(n, nil)
	s.pos += n
	if s.pos < len(s.Data) {
		io.CallAgain = true
	}
	return nil
}

// NullSource emits an unbounded stream of zero-valued items.
type NullSource[T any] struct {
	block.Base
	Out *port.StreamOut[T]
}

func (s *NullSource[T]) Work(_ context.Context, io *block.IO) error {
	slice, _ := s.Out.Slice()
	if len(slice) == 0 {
		return nil
	}
	s.Out.Produce(len(slice), nil)
	io.CallAgain = true
	return nil
}

// copyThrough implements the shared passthrough loop used by Copy,
// Head, and Delay: copy up to *budget items (unlimited when budget is
// nil) from in to out, carrying tags across unchanged.
func copyThrough[T any](in *port.StreamIn[T], out *port.StreamOut[T], io *block.IO, budget *int) error {
	inSlice, tags := in.Slice()
	outSlice, _ := out.Slice()
	n := min(len(inSlice), len(outSlice))
	if budget != nil && n > *budget {
		n = *budget
	}
	if n == 0 {
		if in.Finished() || (budget != nil && *budget == 0) {
			out.FlushFinished()
			io.Finished = true
		}
		return nil
	}
	copy(outSlice[:n], inSlice[:n])
	out.Produce(n, filterTags(tags, n))
	in.Consume(n)
	if budget != nil {
		*budget -= n
	}
	io.CallAgain = true
	return nil
}

// Copy passes every item and tag from In to Out unchanged.
type Copy[T any] struct {
	block.Base
	In  *port.StreamIn[T]
	Out *port.StreamOut[T]
}

func (c *Copy[T]) Work(_ context.Context, io *block.IO) error {
	return copyThrough(c.In, c.Out, io, nil)
}

// Head passes through at most N items, then finishes.
type Head[T any] struct {
	block.Base
	In        *port.StreamIn[T]
	Out       *port.StreamOut[T]
	N         int
	remaining int
	init      bool
}

func (h *Head[T]) Work(_ context.Context, io *block.IO) error {
	if !h.init {
		h.remaining = h.N
		h.init = true
	}
	return copyThrough(h.In, h.Out, io, &h.remaining)
}

// Delay prepends N zero-valued items ahead of the input stream, then
// behaves like Copy, preserving every tag's identity (spec §8 S6: a
// tag written at item 40 must be observed at item 40+N downstream).
type Delay[T any] struct {
	block.Base
	In        *port.StreamIn[T]
	Out       *port.StreamOut[T]
	N         int
	remaining int
	init      bool
}

func (d *Delay[T]) Work(_ context.Context, io *block.IO) error {
	if !d.init {
		d.remaining = d.N
		d.init = true
	}
	if d.remaining > 0 {
		outSlice, _ := d.Out.Slice()
		if len(outSlice) == 0 {
			return nil
		}
		n := min(len(outSlice), d.remaining)
		d.Out.Produce(n, nil)
		d.remaining -= n
		io.CallAgain = true
		return nil
	}
	return copyThrough(d.In, d.Out, io, nil)
}

// VectorSink collects every item it receives, in order, for test
// assertions.
type VectorSink[T any] struct {
	block.Base
	In        *port.StreamIn[T]
	Collected []T
}

func (s *VectorSink[T]) Work(_ context.Context, io *block.IO) error {
	slice, _ := s.In.Slice()
	if len(slice) == 0 {
		if s.In.Finished() {
			io.Finished = true
		}
		return nil
	}
	s.Collected = append(s.Collected, slice...)
	s.In.Consume(len(slice))
	io.CallAgain = true
	return nil
}

// FreqStore exposes a `freq` message input that stores the last
// received Pmt, a `freq?` input that returns it, and a `fault` input
// that always fails with Fault, for call/callback scenarios. It
// carries no stream ports, so Work never has anything to do.
type FreqStore struct {
	block.Base
	Fault error
	last  pmt.Pmt
}

func (f *FreqStore) HandleMessage(_ context.Context, port string, msg pmt.Pmt) (pmt.Pmt, error) {
	switch port {
	case "freq":
		f.last = msg
		return pmt.Ok(), nil
	case "freq?":
		return f.last, nil
	case "fault":
		return pmt.Pmt{}, f.Fault
	}
	return pmt.Pmt{}, nil
}

func (f *FreqStore) Work(context.Context, *block.IO) error { return nil }

// FailAfter returns Err from Work after N successful calls, for
// S5-style failure-propagation scenarios.
type FailAfter struct {
	block.Base
	N     int
	Err   error
	calls int
}

func (f *FailAfter) Work(_ context.Context, io *block.IO) error {
	f.calls++
	if f.calls > f.N {
		return f.Err
	}
	io.CallAgain = true
	return nil
}
