package analyze

import (
	"github.com/flowsmith/flowsmith/pkg/ir"
)

// SortResult is the outcome of a topological sort.
type SortResult struct {
	// Sorted holds every node id in dependency order. Empty when the
	// graph is cyclic: a partial order over a cyclic graph is not
	// meaningful for code generation.
	Sorted []string `json:"sorted"`

	// Cycles lists the cycles that prevented ordering, if any.
	Cycles [][]string `json:"cycles,omitempty"`

	// IsAcyclic reports whether a complete order exists.
	IsAcyclic bool `json:"isAcyclic"`
}

// TopologicalSort orders the graph's nodes so that every connection goes
// from an earlier node to a later one, using Kahn's algorithm (repeated
// removal of zero-in-degree nodes).
//
// When two or more nodes are ready at the same time, the one that was
// inserted into the graph first is taken, making the order deterministic
// and stable across runs. Connections with unresolved endpoints do not
// contribute to in-degrees of known nodes beyond what the graph recorded;
// run Validate first if strict structural soundness matters.
//
// If the graph is cyclic, Sorted is empty and Cycles carries the detected
// cycles - no partial order is attempted.
func TopologicalSort(g *ir.Graph) SortResult {
	if cycles := FindCycles(g); len(cycles) > 0 {
		return SortResult{Cycles: cycles}
	}

	ids := g.NodeIDs()
	pos := make(map[string]int, len(ids)) // insertion index, the tie-break
	inDegree := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
		inDegree[id] = 0
	}
	for _, c := range g.Connections() {
		if _, ok := g.Node(c.Source); !ok {
			continue
		}
		if _, ok := g.Node(c.Target); !ok {
			continue
		}
		inDegree[c.Target]++
	}

	var ready []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	sorted := make([]string, 0, len(ids))
	for len(ready) > 0 {
		// Pick the ready node with the smallest insertion index.
		best := 0
		for i := 1; i < len(ready); i++ {
			if pos[ready[i]] < pos[ready[best]] {
				best = i
			}
		}
		curr := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		sorted = append(sorted, curr)

		for _, child := range g.Successors(curr) {
			if _, ok := g.Node(child); !ok {
				continue
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				ready = append(ready, child)
			}
		}
	}

	return SortResult{Sorted: sorted, IsAcyclic: true}
}
