package analyze

import (
	"github.com/flowsmith/flowsmith/pkg/ir"
)

// EntryPoints returns the ids of nodes with no incoming connections, in
// insertion order. These are the starting points of sequential execution
// and the source set for critical-path search. Connections from
// unresolved source nodes do not count, matching TopologicalSort.
func EntryPoints(g *ir.Graph) []string {
	var entries []string
	for _, id := range g.NodeIDs() {
		if resolvedInDegree(g, id) == 0 {
			entries = append(entries, id)
		}
	}
	return entries
}

// ExitPoints returns the ids of nodes with no outgoing connections, in
// insertion order. These are the terminal results of the flow and the
// sink set for critical-path search. Connections to unresolved target
// nodes do not count, matching TopologicalSort.
func ExitPoints(g *ir.Graph) []string {
	var exits []string
	for _, id := range g.NodeIDs() {
		if resolvedOutDegree(g, id) == 0 {
			exits = append(exits, id)
		}
	}
	return exits
}

// IsolatedNodes returns the ids of nodes with neither incoming nor
// outgoing resolved connections, in insertion order. A node touched only
// by dangling connections is isolated for analysis purposes; the dangling
// connections themselves are Validate's to report.
func IsolatedNodes(g *ir.Graph) []string {
	var isolated []string
	for _, id := range g.NodeIDs() {
		if resolvedInDegree(g, id) == 0 && resolvedOutDegree(g, id) == 0 {
			isolated = append(isolated, id)
		}
	}
	return isolated
}

// resolvedInDegree counts incoming connections whose source is a known
// node.
func resolvedInDegree(g *ir.Graph, id string) int {
	n := 0
	for _, src := range g.Predecessors(id) {
		if _, ok := g.Node(src); ok {
			n++
		}
	}
	return n
}

// resolvedOutDegree counts outgoing connections whose target is a known
// node.
func resolvedOutDegree(g *ir.Graph, id string) int {
	n := 0
	for _, dst := range g.Successors(id) {
		if _, ok := g.Node(dst); ok {
			n++
		}
	}
	return n
}

// CriticalPath returns the longest hop-count path found between any
// (entry, exit) pair, as a heuristic "most sequential work" indicator.
//
// For each pair the path is found by breadth-first search (shortest by
// hop count); the longest such path across all pairs wins. This is not a
// weighted critical path - no per-node cost model exists. When several
// paths share the maximal length, the first one found wins, with pairs
// visited in insertion order of entries then exits, so the result is
// deterministic.
func CriticalPath(g *ir.Graph) []string {
	entries := EntryPoints(g)
	exits := ExitPoints(g)

	var longest []string
	for _, from := range entries {
		for _, to := range exits {
			if path := shortestPath(g, from, to); len(path) > len(longest) {
				longest = path
			}
		}
	}
	return longest
}

// shortestPath finds the fewest-hops path from one node to another via
// breadth-first search. Returns nil when no path exists. A single node is
// its own path of length one.
func shortestPath(g *ir.Graph, from, to string) []string {
	if _, ok := g.Node(from); !ok {
		return nil
	}
	if from == to {
		return []string{from}
	}

	parent := map[string]string{from: ""}
	queue := []string{from}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, next := range g.Successors(curr) {
			if _, seen := parent[next]; seen {
				continue
			}
			if _, ok := g.Node(next); !ok {
				continue
			}
			parent[next] = curr
			if next == to {
				return reconstruct(parent, from, to)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func reconstruct(parent map[string]string, from, to string) []string {
	var rev []string
	for at := to; at != ""; at = parent[at] {
		rev = append(rev, at)
		if at == from {
			break
		}
	}
	path := make([]string, len(rev))
	for i, id := range rev {
		path[len(rev)-1-i] = id
	}
	return path
}

// ExtractSubgraph returns the induced subgraph on the given node set:
// the named nodes plus every connection whose both endpoints lie in the
// set. Unknown ids are ignored.
//
// When includeDependencies is true, upstream nodes reachable via incoming
// connections are pulled in recursively until closure, so the subgraph is
// self-contained and can be converted on its own.
func ExtractSubgraph(g *ir.Graph, nodeIDs []string, includeDependencies bool) *ir.Graph {
	keep := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		if _, ok := g.Node(id); ok {
			keep[id] = true
		}
	}

	if includeDependencies {
		// Iterative upstream closure over incoming connections.
		queue := make([]string, 0, len(keep))
		for id := range keep {
			queue = append(queue, id)
		}
		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]
			for _, dep := range g.Predecessors(curr) {
				if keep[dep] {
					continue
				}
				if _, ok := g.Node(dep); !ok {
					continue
				}
				keep[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	sub := ir.New(g.Meta())
	for _, n := range g.Nodes() {
		if keep[n.ID] {
			_ = sub.AddNode(*n)
		}
	}
	for _, c := range g.Connections() {
		if keep[c.Source] && keep[c.Target] {
			sub.AddConnection(c)
		}
	}
	return sub
}
