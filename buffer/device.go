package buffer

import "github.com/nats-radio/flowcore/tag"

// ChunkReader and ChunkWriter are the narrower contract a
// device-resident buffer exposes: handle-level chunk passing with no
// CPU-visible Slice method, per spec §4.1 ("only the slice() method is
// not available in CPU address space"). A device buffer is internally
// a slab whose chunks carry exactly one opaque handle each.
type ChunkReader interface {
	NextChunk() (handle any, validLen int, tags []tag.Tag, ok bool)
	Release(n int)
	Finished() bool
	RegisterWakeup(tok *Waker)
}

type ChunkWriter interface {
	AcquireChunk() (handle any, ok bool)
	CommitChunk(validLen int, tags []tag.Tag)
	FlushFinished()
	RegisterWakeup(tok *Waker)
}

// DeviceBuffer wraps a slab of one-handle chunks (accelerator memory,
// a DMA buffer, a tensor handle — anything that lives off-CPU). The
// core treats it identically to a slab buffer from a scheduling point
// of view; only CPU kernels lose the Slice method, matching the
// "Buffer polymorphism" design note.
type DeviceBuffer struct {
	core *slabCore[any]
}

// NewDeviceBuffer pre-populates n device-chunk handles, each produced
// by alloc (e.g. a CUDA/accelerator allocator call, or in tests, a
// plain placeholder value).
func NewDeviceBuffer(n int, alloc func() any) *DeviceBuffer {
	d := &DeviceBuffer{core: NewSlab[any](n, 1)}
	for _, ch := range d.core.free {
		ch.buf[0] = alloc()
	}
	return d
}

func (d *DeviceBuffer) Writer() ChunkWriter { return &deviceWriter{w: d.core.Writer().(*SlabWriter[any])} }
func (d *DeviceBuffer) NewReader() ChunkReader {
	return &deviceReader{r: d.core.NewReader().(*SlabReader[any])}
}

type deviceWriter struct{ w *SlabWriter[any] }

func (dw *deviceWriter) AcquireChunk() (any, bool) {
	s, _ := dw.w.Slice()
	if len(s) == 0 {
		return nil, false
	}
	return s[0], true
}

// CommitChunk records validLen (the item count inside the device
// memory, which the slab cannot see) on the pending chunk and hands
// the single-handle chunk downstream.
func (dw *deviceWriter) CommitChunk(validLen int, tags []tag.Tag) {
	if dw.w.pending != nil {
		dw.w.pending.payloadLen = validLen
	}
	dw.w.Produce(1, tags)
}
func (dw *deviceWriter) FlushFinished()            { dw.w.FlushFinished() }
func (dw *deviceWriter) RegisterWakeup(tok *Waker) { dw.w.RegisterWakeup(tok) }

type deviceReader struct{ r *SlabReader[any] }

func (dr *deviceReader) NextChunk() (any, int, []tag.Tag, bool) {
	ch := dr.r.currentChunk()
	if ch == nil {
		return nil, 0, nil, false
	}
	return ch.buf[0], ch.payloadLen, ch.tags.All(), true
}

// Release returns the current chunk's handle to the pool; n is the
// validLen previously observed via NextChunk and is accepted for
// symmetry with the CPU reader contract.
func (dr *deviceReader) Release(_ int)             { dr.r.Consume(1) }
func (dr *deviceReader) Finished() bool            { return dr.r.Finished() }
func (dr *deviceReader) RegisterWakeup(tok *Waker) { dr.r.RegisterWakeup(tok) }

// Bridge is a reference CPU→device copy adapter: it reads CPU items and
// writes device chunks, bridging the boundary named in spec §4.1 ("a
// bridging block copies between CPU and device when a boundary is
// crossed"). Grounded on the teacher's backend-provider bridging
// pattern (core/backend.go copies between a remote backend and local
// disk); here the two sides are a typed CPU Reader and a handle-level
// ChunkWriter. It copies in that one direction only; there is no
// device→CPU counterpart.
type Bridge[T any] struct {
	CPU    Reader[T]
	Device ChunkWriter
	ToCPU  func(handle any) []T
}

// Step performs one bounded unit of bridging work: drain what's
// currently available on the CPU side into one device chunk. It
// returns the number of items copied, or 0 if either side has no
// capacity right now.
func (b *Bridge[T]) Step() int {
	items, _ := b.CPU.Slice()
	if len(items) == 0 {
		return 0
	}
	handle, ok := b.Device.AcquireChunk()
	if !ok {
		return 0
	}
	dst := b.ToCPU(handle)
	n := len(items)
	if len(dst) < n {
		n = len(dst)
	}
	copy(dst[:n], items[:n])
	b.CPU.Consume(n)
	b.Device.CommitChunk(n, nil)
	return n
}
