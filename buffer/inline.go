package buffer

// NewInline constructs the degenerate single-buffer transport of spec
// §4.1: a slab of exactly one chunk, used when producer and consumer
// run in lock-step within the same worker and need no synchronization
// beyond the scheduling wakeup. It is implemented by reusing the slab
// machinery with chunks=1; the single chunk forces the writer to wait
// for the reader to release it before producing again, which is
// exactly the lock-step behavior the transport is meant to model.
func NewInline[T any](itemsPerStep int) *slabCore[T] {
	return NewSlab[T](1, itemsPerStep)
}
