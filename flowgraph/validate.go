package flowgraph

import (
	"github.com/nats-radio/flowcore/block"
	"github.com/nats-radio/flowcore/rerr"
)

// detectCycle checks the pre-start invariant of spec §3: "no cycle
// exists among stream edges unless every cycle contains at least one
// buffer edge marked circular." Removing every circular-marked edge
// and finding the remaining graph acyclic is equivalent to that
// statement, so this walks only the non-circular subgraph with a
// standard three-color DFS (grounded on the teacher's dependency-graph
// walks in its xaction registry bookkeeping).
func detectCycle(order []block.Id, edges []*streamEdge) error {
	adj := make(map[block.Id][]block.Id, len(order))
	for _, e := range edges {
		if e.hint.isCircular() {
			continue
		}
		adj[e.fromID] = append(adj[e.fromID], e.toID)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[block.Id]int, len(order))

	var visit func(id block.Id) error
	visit = func(id block.Id) error {
		color[id] = gray
		for _, next := range adj[id] {
			switch color[next] {
			case gray:
				return rerr.ErrCycleNoCircular
			case white:
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		color[id] = black
		return nil
	}

	for _, id := range order {
		if color[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}
