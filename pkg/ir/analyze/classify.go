package analyze

import (
	"github.com/flowsmith/flowsmith/pkg/ir"
)

// Complexity grades how involved a flow is, as a coarse signal for
// progress reporting and diagnostics.
type Complexity string

// Complexity classes, from trivial single-node flows to heavily branched
// multi-path graphs.
const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Report is the full analysis summary for one graph.
type Report struct {
	NodeCount       int        `json:"nodeCount"`
	ConnectionCount int        `json:"connectionCount"`
	EntryPoints     []string   `json:"entryPoints,omitempty"`
	ExitPoints      []string   `json:"exitPoints,omitempty"`
	IsolatedNodes   []string   `json:"isolatedNodes,omitempty"`
	CriticalPath    []string   `json:"criticalPath,omitempty"`
	Cycles          [][]string `json:"cycles,omitempty"`
	MaxFanOut       int        `json:"maxFanOut"`
	Complexity      Complexity `json:"complexity"`
}

// Classify grades the graph by node count, branching factor, and
// critical-path length. Cyclic graphs always classify as complex.
func Classify(g *ir.Graph) Complexity {
	nodes := g.NodeCount()
	if nodes <= 3 && maxFanOut(g) <= 1 {
		return ComplexitySimple
	}
	if len(FindCycles(g)) > 0 {
		return ComplexityComplex
	}
	if nodes > 15 || maxFanOut(g) > 3 || len(CriticalPath(g)) > 8 {
		return ComplexityComplex
	}
	return ComplexityModerate
}

// Summarize runs the full analysis over the graph and collects the
// results into one report.
func Summarize(g *ir.Graph) Report {
	return Report{
		NodeCount:       g.NodeCount(),
		ConnectionCount: g.ConnectionCount(),
		EntryPoints:     EntryPoints(g),
		ExitPoints:      ExitPoints(g),
		IsolatedNodes:   IsolatedNodes(g),
		CriticalPath:    CriticalPath(g),
		Cycles:          FindCycles(g),
		MaxFanOut:       maxFanOut(g),
		Complexity:      Classify(g),
	}
}

func maxFanOut(g *ir.Graph) int {
	max := 0
	for _, id := range g.NodeIDs() {
		if d := g.OutDegree(id); d > max {
			max = d
		}
	}
	return max
}
