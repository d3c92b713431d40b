package buffer

import (
	"sync"

	"github.com/nats-radio/flowcore/rdebug"
	"github.com/nats-radio/flowcore/tag"
)

// chunk is one fixed-capacity unit circulated between a slab's writer
// and its fan-out readers by ownership transfer (spec §4.1 "Slab").
type chunk[T any] struct {
	buf      []T
	validLen int
	tags     *tag.List
	refcount int
	// payloadLen is meaningful only for device chunks, whose buf holds
	// a single opaque handle: it records how many items live inside the
	// device-resident memory the handle points at.
	payloadLen int
}

// slabCore holds the chunk pool and the FIFO of produced-but-not-fully-
// drained chunks. Like ringCore, it is a single mutex-guarded
// structure rather than a lock-free queue, matching the teacher's
// conservative concurrency style.
type slabCore[T any] struct {
	mu         sync.Mutex
	chunkItems int
	free       []*chunk[T]
	queue      []*chunk[T] // chunks currently in flight, oldest first
	queueBase  int64       // absolute chunk-index of queue[0]
	produced   int64       // absolute count of chunks ever produced
	closed     bool
	readers    []*slabReaderState[T]
	writerWake wakeSet
}

type slabReaderState[T any] struct {
	consumed int64
	wake     wakeSet
}

// NewSlab constructs a slab with `chunks` pre-allocated, equally sized
// chunks of `chunkItems` capacity each, matching spec §4.1's "fixed
// number of equally sized chunks circulated by ownership transfer".
func NewSlab[T any](chunks, chunkItems int) *slabCore[T] {
	if chunks < 1 {
		chunks = 1
	}
	c := &slabCore[T]{chunkItems: chunkItems}
	for i := 0; i < chunks; i++ {
		c.free = append(c.free, &chunk[T]{buf: make([]T, chunkItems), tags: tag.NewList()})
	}
	return c
}

// InjectChunks allows the producer to pre-size the pool ahead of time,
// per spec §4.1 "Chunks may be injected by the producer ahead of time
// to pre-size the pool."
func (c *slabCore[T]) InjectChunks(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := 0; i < n; i++ {
		c.free = append(c.free, &chunk[T]{buf: make([]T, c.chunkItems), tags: tag.NewList()})
	}
}

func (c *slabCore[T]) Writer() Writer[T] { return &SlabWriter[T]{core: c} }

func (c *slabCore[T]) NewReader() Reader[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	rs := &slabReaderState[T]{}
	c.readers = append(c.readers, rs)
	return &SlabReader[T]{core: c, state: rs}
}

// SlabWriter is the producer-side half of a slab edge. It holds at
// most one partially-filled chunk ("pending") between a Slice() call
// and the matching Produce() commit.
type SlabWriter[T any] struct {
	core    *slabCore[T]
	pending *chunk[T]
}

func (w *SlabWriter[T]) Slice() ([]T, *tag.List) {
	c := w.core
	if w.pending == nil {
		c.mu.Lock()
		if len(c.free) == 0 {
			c.mu.Unlock()
			return nil, nil
		}
		ch := c.free[len(c.free)-1]
		c.free = c.free[:len(c.free)-1]
		c.mu.Unlock()
		ch.validLen = 0
		ch.tags = tag.NewList()
		w.pending = ch
	}
	return w.pending.buf, w.pending.tags
}

func (w *SlabWriter[T]) Produce(n int, tags []tag.Tag) {
	rdebug.Assertf(n >= 0 && n <= w.core.chunkItems, "slab produce count %d out of range", n)
	if w.pending == nil || n == 0 {
		return
	}
	ch := w.pending
	ch.validLen = n
	for _, t := range tags {
		ch.tags.Add(t)
	}
	w.pending = nil

	c := w.core
	c.mu.Lock()
	ch.refcount = len(c.readers)
	c.queue = append(c.queue, ch)
	c.produced++
	readers := c.readers
	c.mu.Unlock()
	for _, rs := range readers {
		rs.wake.notifyAll()
	}
}

func (w *SlabWriter[T]) FlushFinished() {
	c := w.core
	c.mu.Lock()
	c.closed = true
	readers := c.readers
	c.mu.Unlock()
	for _, rs := range readers {
		rs.wake.notifyAll()
	}
}

func (w *SlabWriter[T]) RegisterWakeup(tok *Waker) { w.core.writerWake.register(tok) }

// SlabReader is one fan-out consumer-side half of a slab edge.
type SlabReader[T any] struct {
	core  *slabCore[T]
	state *slabReaderState[T]
}

func (rd *SlabReader[T]) Slice() ([]T, []tag.Tag) {
	c := rd.core
	c.mu.Lock()
	defer c.mu.Unlock()
	if rd.state.consumed >= c.produced {
		return nil, nil
	}
	pos := rd.state.consumed - c.queueBase
	ch := c.queue[pos]
	return ch.buf[:ch.validLen], ch.tags.All()
}

func (rd *SlabReader[T]) Consume(n int) {
	c := rd.core
	c.mu.Lock()
	if rd.state.consumed >= c.produced {
		c.mu.Unlock()
		return
	}
	pos := rd.state.consumed - c.queueBase
	ch := c.queue[pos]
	rdebug.Assertf(n == ch.validLen, "slab reader must consume the whole chunk at once (%d != %d)", n, ch.validLen)
	rd.state.consumed++
	ch.refcount--
	for len(c.queue) > 0 && c.queue[0].refcount == 0 {
		released := c.queue[0]
		c.queue = c.queue[1:]
		c.queueBase++
		released.validLen = 0
		c.free = append(c.free, released)
	}
	c.mu.Unlock()
	c.writerWake.notifyAll()
}

func (rd *SlabReader[T]) Finished() bool {
	c := rd.core
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed && rd.state.consumed >= c.produced
}

func (rd *SlabReader[T]) RegisterWakeup(tok *Waker) { rd.state.wake.register(tok) }

// Close drops this reader's claim on every chunk it had not yet
// consumed and removes it from the fan-out set, so a terminated
// consumer cannot strand chunks in the in-flight queue.
func (rd *SlabReader[T]) Close() {
	c := rd.core
	c.mu.Lock()
	for i, rs := range c.readers {
		if rs == rd.state {
			c.readers = append(c.readers[:i], c.readers[i+1:]...)
			break
		}
	}
	for i := rd.state.consumed - c.queueBase; i >= 0 && i < int64(len(c.queue)); i++ {
		c.queue[i].refcount--
	}
	for len(c.queue) > 0 && c.queue[0].refcount == 0 {
		released := c.queue[0]
		c.queue = c.queue[1:]
		c.queueBase++
		released.validLen = 0
		c.free = append(c.free, released)
	}
	c.mu.Unlock()
	c.writerWake.notifyAll()
}

// currentChunk returns the chunk at the reader's cursor without
// consuming it, or nil if none is queued. Used by the device reader,
// which needs the chunk's payloadLen rather than a CPU slice.
func (rd *SlabReader[T]) currentChunk() *chunk[T] {
	c := rd.core
	c.mu.Lock()
	defer c.mu.Unlock()
	if rd.state.consumed >= c.produced {
		return nil
	}
	return c.queue[rd.state.consumed-c.queueBase]
}
