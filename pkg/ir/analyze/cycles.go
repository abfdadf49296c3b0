package analyze

import (
	"github.com/flowsmith/flowsmith/pkg/ir"
)

// FindCycles returns every directed cycle in the graph, each reported as
// the node sequence from the cycle's first occurrence back to (but not
// repeating) the node that closes it. Multiple disjoint cycles are all
// reported; nodes already claimed by one cycle are not reported again.
//
// The traversal is an iterative depth-first search with white/gray/black
// coloring and an explicit stack, so it is bounded by node count in both
// time and memory regardless of graph depth. A back-edge to a gray node
// (one currently on the traversal path) closes a cycle.
func FindCycles(g *ir.Graph) [][]string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, g.NodeCount())
	var cycles [][]string
	inCycle := make(map[string]bool)

	// frame tracks a node and how many of its successors were visited.
	type frame struct {
		id   string
		next int
	}

	for _, start := range g.NodeIDs() {
		if color[start] != white {
			continue
		}

		stack := []frame{{id: start}}
		path := []string{start}
		color[start] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succ := g.Successors(top.id)

			if top.next >= len(succ) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				path = path[:len(path)-1]
				continue
			}

			child := succ[top.next]
			top.next++

			switch color[child] {
			case white:
				color[child] = gray
				stack = append(stack, frame{id: child})
				path = append(path, child)
			case gray:
				if cycle := extractCycle(path, child); cycle != nil && !claimed(cycle, inCycle) {
					cycles = append(cycles, cycle)
					for _, id := range cycle {
						inCycle[id] = true
					}
				}
			}
		}
	}

	return cycles
}

// extractCycle slices the current path from the first occurrence of
// closing down to the path tip.
func extractCycle(path []string, closing string) []string {
	for i, id := range path {
		if id == closing {
			cycle := make([]string, len(path)-i)
			copy(cycle, path[i:])
			return cycle
		}
	}
	return nil
}

// claimed reports whether any node of the cycle was already reported as
// part of an earlier cycle.
func claimed(cycle []string, inCycle map[string]bool) bool {
	for _, id := range cycle {
		if inCycle[id] {
			return true
		}
	}
	return false
}
