package scheduler

import "context"

// FlowOriented wraps WorkStealing, adding a topology-aware spawn order
// that prefers driving source blocks first (spec §4.3: "prefers to
// drive a source block repeatedly while its downstream slab has empty
// chunks, minimising migrations; falls back to multi-thread
// otherwise"). The fallback is literal: FlowOriented delegates every
// scheduling decision to the embedded WorkStealing strategy and only
// changes the order flowgraph.Start spawns block actors in.
type FlowOriented struct {
	*WorkStealing
}

func NewFlowOriented(ctx context.Context, workers, blockingWorkers int) *FlowOriented {
	return &FlowOriented{WorkStealing: NewWorkStealing(ctx, workers, blockingWorkers)}
}

func (f *FlowOriented) Name() string { return "flow-oriented" }

// Priority moves source ids (no stream-input edges) to the front,
// preserving relative order otherwise. This is the "prefer to drive a
// source block" heuristic applied once, at spawn time, rather than as
// continuous runtime re-ranking: a cheap approximation that still
// gives sources first access to a freshly started flowgraph's worker
// budget.
func (f *FlowOriented) Priority(ids []uint64, isSource func(uint64) bool) []uint64 {
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if isSource(id) {
			out = append(out, id)
		}
	}
	for _, id := range ids {
		if !isSource(id) {
			out = append(out, id)
		}
	}
	return out
}
