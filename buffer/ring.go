package buffer

import (
	"sync"

	"github.com/nats-radio/flowcore/tag"
)

// ringCore is the shared state behind a RingWriter[T] and its (one or
// more, for fan-out) RingReader[T] peers: a power-of-two-sized backing
// array, one absolute write cursor, and one absolute cursor per reader.
// Locking is a single mutex rather than a lock-free SPSC/MPMC design,
// per the "Buffer polymorphism" design note's fallback: a
// straightforward mutex-guarded implementation is preferred over
// lock-free complexity that is not worth the performance here.
type ringCore[T any] struct {
	mu       sync.Mutex
	buf      []T
	capacity int // power of two
	mask     int
	produced int64 // absolute items produced so far
	tags     *tag.List
	closed   bool // writer called FlushFinished
	readers  []*ringReaderState

	writerWake wakeSet
}

type ringReaderState struct {
	consumed int64
	wake     wakeSet
}

// NewRing constructs a ring buffer edge with the given item capacity,
// rounded up to the next power of two (spec §4.1: "power-of-two-element
// ring in shared memory").
func NewRing[T any](capacity int) *ringCore[T] {
	capacity = nextPow2(capacity)
	return &ringCore[T]{
		buf:      make([]T, capacity),
		capacity: capacity,
		mask:     capacity - 1,
		tags:     tag.NewList(),
	}
}

func nextPow2(n int) int {
	if n < 1 {
		n = 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// GrowTo raises capacity to at least n items, implementing
// `connect_with_min`/buffer "grown once at startup ... never shrunk"
// (spec §3, §4.1). It is only safe before the edge starts carrying
// data (no concurrent producer/consumer yet).
func (r *ringCore[T]) GrowTo(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= r.capacity {
		return
	}
	newCap := nextPow2(n)
	newBuf := make([]T, newCap)
	// move every item still unconsumed by some reader to the slot its
	// absolute position maps to under the new mask, so the writer and
	// reader cursors stay valid unchanged.
	minPos := r.produced
	for _, rs := range r.readers {
		if rs.consumed < minPos {
			minPos = rs.consumed
		}
	}
	for i := minPos; i < r.produced; i++ {
		newBuf[i&(int64(newCap)-1)] = r.buf[i&int64(r.mask)]
	}
	r.buf = newBuf
	r.capacity = newCap
	r.mask = newCap - 1
}

func (r *ringCore[T]) minReaderPos() int64 {
	if len(r.readers) == 0 {
		return r.produced
	}
	m := r.readers[0].consumed
	for _, rs := range r.readers[1:] {
		if rs.consumed < m {
			m = rs.consumed
		}
	}
	return m
}

// Writer returns the single writer half of this ring.
func (r *ringCore[T]) Writer() Writer[T] { return &RingWriter[T]{core: r} }

// NewReader registers and returns a new fan-out reader half. All
// readers registered before the edge starts running observe the full
// stream from position 0.
func (r *ringCore[T]) NewReader() Reader[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	rs := &ringReaderState{}
	r.readers = append(r.readers, rs)
	return &RingReader[T]{core: r, state: rs}
}

// RingWriter is the producer-side half of a ring edge.
type RingWriter[T any] struct{ core *ringCore[T] }

func (w *RingWriter[T]) Slice() ([]T, *tag.List) {
	c := w.core
	c.mu.Lock()
	defer c.mu.Unlock()
	lowWater := c.minReaderPos()
	avail := c.capacity - int(c.produced-lowWater)
	if avail <= 0 {
		return nil, c.tags
	}
	start := int(c.produced & int64(c.mask))
	contig := c.capacity - start
	if contig > avail {
		contig = avail
	}
	return c.buf[start : start+contig], c.tags
}

func (w *RingWriter[T]) Produce(n int, tags []tag.Tag) {
	if n <= 0 {
		return
	}
	c := w.core
	c.mu.Lock()
	base := c.produced
	for _, t := range tags {
		c.tags.AddAbsolute(base+t.Index, t.Payload)
	}
	c.produced += int64(n)
	c.mu.Unlock()
	for _, rs := range c.readers {
		rs.wake.notifyAll()
	}
}

func (w *RingWriter[T]) FlushFinished() {
	c := w.core
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	for _, rs := range c.readers {
		rs.wake.notifyAll()
	}
}

func (w *RingWriter[T]) RegisterWakeup(tok *Waker) { w.core.writerWake.register(tok) }

// RingReader is one fan-out consumer-side half of a ring edge.
type RingReader[T any] struct {
	core  *ringCore[T]
	state *ringReaderState
}

func (rd *RingReader[T]) Slice() ([]T, []tag.Tag) {
	c := rd.core
	c.mu.Lock()
	defer c.mu.Unlock()
	avail := int(c.produced - rd.state.consumed)
	if avail <= 0 {
		return nil, nil
	}
	start := int(rd.state.consumed & int64(c.mask))
	contig := c.capacity - start
	if contig > avail {
		contig = avail
	}
	tags := c.tags.Window(rd.state.consumed, rd.state.consumed+int64(contig))
	return c.buf[start : start+contig], tags
}

func (rd *RingReader[T]) Consume(n int) {
	if n <= 0 {
		return
	}
	c := rd.core
	c.mu.Lock()
	rd.state.consumed += int64(n)
	// prune tags no longer reachable by any reader
	minPos := c.minReaderPos()
	c.tags.PruneBefore(minPos)
	c.mu.Unlock()
	c.writerWake.notifyAll()
}

func (rd *RingReader[T]) Finished() bool {
	c := rd.core
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed && rd.state.consumed >= c.produced
}

func (rd *RingReader[T]) RegisterWakeup(tok *Waker) { rd.state.wake.register(tok) }

// Close removes this reader's cursor from the ring so a terminated
// consumer no longer throttles the writer or its sibling readers.
func (rd *RingReader[T]) Close() {
	c := rd.core
	c.mu.Lock()
	for i, rs := range c.readers {
		if rs == rd.state {
			c.readers = append(c.readers[:i], c.readers[i+1:]...)
			break
		}
	}
	c.tags.PruneBefore(c.minReaderPos())
	c.mu.Unlock()
	c.writerWake.notifyAll()
}
