package analyze

import (
	"slices"
	"strconv"
	"testing"

	"github.com/flowsmith/flowsmith/pkg/ir"
)

// buildGraph constructs a graph from node ids and "a>b" edge specs.
func buildGraph(t *testing.T, nodes []string, edges [][2]string) *ir.Graph {
	t.Helper()
	g := ir.New(nil)
	for _, id := range nodes {
		if err := g.AddNode(ir.Node{ID: id, Type: "test"}); err != nil {
			t.Fatal(err)
		}
	}
	for i, e := range edges {
		g.AddConnection(ir.Connection{
			ID:     "e" + strconv.Itoa(i),
			Source: e[0],
			Target: e[1],
		})
	}
	return g
}

func TestTopologicalOrderRespectsEdges(t *testing.T) {
	g := buildGraph(t,
		[]string{"d", "c", "b", "a"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"a", "d"}, {"d", "c"}},
	)

	res := TopologicalSort(g)
	if !res.IsAcyclic {
		t.Fatal("IsAcyclic = false for acyclic graph")
	}
	if len(res.Sorted) != 4 {
		t.Fatalf("len(Sorted) = %d, want 4", len(res.Sorted))
	}

	pos := make(map[string]int)
	for i, id := range res.Sorted {
		pos[id] = i
	}
	for _, e := range [][2]string{{"a", "b"}, {"b", "c"}, {"a", "d"}, {"d", "c"}} {
		if pos[e[0]] >= pos[e[1]] {
			t.Errorf("edge %s->%s violated: positions %d, %d", e[0], e[1], pos[e[0]], pos[e[1]])
		}
	}
}

func TestTopologicalSortTieBreakIsInsertionOrder(t *testing.T) {
	// All three nodes are ready immediately; the order must follow node
	// insertion order, not map iteration order.
	g := buildGraph(t, []string{"z", "m", "a"}, nil)
	res := TopologicalSort(g)
	want := []string{"z", "m", "a"}
	if !slices.Equal(res.Sorted, want) {
		t.Errorf("Sorted = %v, want %v", res.Sorted, want)
	}
}

func TestCycleDetectionRoundTrip(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}},
	)

	cycles := FindCycles(g)
	if len(cycles) != 1 {
		t.Fatalf("len(cycles) = %d, want 1: %v", len(cycles), cycles)
	}
	if len(cycles[0]) != 3 {
		t.Errorf("cycle = %v, want all of a, b, c", cycles[0])
	}
	for _, id := range []string{"a", "b", "c"} {
		if !slices.Contains(cycles[0], id) {
			t.Errorf("cycle %v missing node %s", cycles[0], id)
		}
	}

	res := TopologicalSort(g)
	if res.IsAcyclic {
		t.Error("IsAcyclic = true for cyclic graph")
	}
	if len(res.Sorted) != 0 {
		t.Errorf("Sorted = %v, want empty for cyclic graph", res.Sorted)
	}
	if len(res.Cycles) == 0 {
		t.Error("Cycles should carry the detected cycles")
	}
}

func TestMultipleDisjointCycles(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c", "d"},
		[][2]string{{"a", "b"}, {"b", "a"}, {"c", "d"}, {"d", "c"}},
	)
	cycles := FindCycles(g)
	if len(cycles) != 2 {
		t.Fatalf("len(cycles) = %d, want 2: %v", len(cycles), cycles)
	}
}

func TestDeepChainDoesNotOverflow(t *testing.T) {
	// A 50k-node linear chain would blow the stack with naive recursion.
	const n = 50000
	g := ir.New(nil)
	prev := ""
	for i := 0; i < n; i++ {
		id := "n" + strconv.Itoa(i)
		if err := g.AddNode(ir.Node{ID: id}); err != nil {
			t.Fatal(err)
		}
		if prev != "" {
			g.AddConnection(ir.Connection{Source: prev, Target: id})
		}
		prev = id
	}

	if cycles := FindCycles(g); len(cycles) != 0 {
		t.Fatalf("unexpected cycles: %d", len(cycles))
	}
	res := TopologicalSort(g)
	if !res.IsAcyclic || len(res.Sorted) != n {
		t.Fatalf("sort failed on deep chain: acyclic=%v len=%d", res.IsAcyclic, len(res.Sorted))
	}
}

func TestValidateMissingNode(t *testing.T) {
	g := buildGraph(t, []string{"a"}, nil)
	g.AddConnection(ir.Connection{ID: "edge-1", Source: "a", Target: "ghost"})

	res := Validate(g)
	if res.IsValid {
		t.Fatal("IsValid = true with dangling connection")
	}
	found := false
	for _, e := range res.Errors {
		if e.Type == ErrTypeMissingNode && e.ConnectionID == "edge-1" && e.NodeID == "ghost" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing_node error naming edge-1 not found: %+v", res.Errors)
	}
	if !res.HasFatal() {
		t.Error("missing_node should be fatal for conversion")
	}
}

func TestValidateMissingParameter(t *testing.T) {
	g := ir.New(nil)
	_ = g.AddNode(ir.Node{
		ID:   "llm_0",
		Type: "chatOpenAI",
		Parameters: []ir.Parameter{
			{Name: "modelName", Required: true},
		},
	})

	res := Validate(g)
	if res.IsValid {
		t.Fatal("IsValid = true with unset required parameter")
	}
	var got *ValidationError
	for i, e := range res.Errors {
		if e.Type == ErrTypeMissingParameter {
			got = &res.Errors[i]
		}
	}
	if got == nil {
		t.Fatalf("no missing_parameter error: %+v", res.Errors)
	}
	if got.NodeID != "llm_0" || got.ParameterName != "modelName" {
		t.Errorf("error = %+v, want node llm_0 / parameter modelName", got)
	}
	if res.HasFatal() {
		t.Error("missing_parameter alone should not be fatal")
	}
}

func TestValidateCycleAndIsolated(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "lonely"},
		[][2]string{{"a", "b"}, {"b", "a"}},
	)

	res := Validate(g)
	if res.IsValid {
		t.Fatal("IsValid = true for cyclic graph")
	}

	hasCycleErr := false
	for _, e := range res.Errors {
		if e.Type == ErrTypeCircularDependency && len(e.Cycle) == 2 {
			hasCycleErr = true
		}
	}
	if !hasCycleErr {
		t.Errorf("no circular_dependency error with cycle sequence: %+v", res.Errors)
	}

	hasIsolatedWarn := false
	for _, w := range res.Warnings {
		if w.Type == WarnTypeIsolatedNode && w.NodeID == "lonely" && w.Severity == SeverityWarning {
			hasIsolatedWarn = true
		}
	}
	if !hasIsolatedWarn {
		t.Errorf("isolated node should be a warning: %+v", res.Warnings)
	}
}

func TestValidateDuplicateNode(t *testing.T) {
	g := ir.New(nil)
	_ = g.AddNode(ir.Node{ID: "a", Type: "first"})
	_ = g.AddNode(ir.Node{ID: "a", Type: "second"})

	res := Validate(g)
	if res.IsValid || !res.HasFatal() {
		t.Fatal("duplicate node ids must be fatal errors")
	}
	if res.Errors[0].Type != ErrTypeDuplicateNode {
		t.Errorf("error type = %s, want duplicate_node", res.Errors[0].Type)
	}
}

func TestEntryExitIsolated(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c", "x"},
		[][2]string{{"a", "b"}, {"b", "c"}},
	)

	if got := EntryPoints(g); !slices.Equal(got, []string{"a", "x"}) {
		t.Errorf("EntryPoints() = %v, want [a x]", got)
	}
	if got := ExitPoints(g); !slices.Equal(got, []string{"c", "x"}) {
		t.Errorf("ExitPoints() = %v, want [c x]", got)
	}
	if got := IsolatedNodes(g); !slices.Equal(got, []string{"x"}) {
		t.Errorf("IsolatedNodes() = %v, want [x]", got)
	}
}

func TestEntryExitIgnoreDanglingConnections(t *testing.T) {
	// b is fed only by a connection from a node that does not exist, and
	// a points only at a missing node. Dangling connections must not mask
	// entry, exit, or isolated status.
	g := buildGraph(t,
		[]string{"a", "b"},
		[][2]string{{"ghost", "b"}, {"a", "phantom"}},
	)

	if got := EntryPoints(g); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("EntryPoints() = %v, want [a b]", got)
	}
	if got := ExitPoints(g); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("ExitPoints() = %v, want [a b]", got)
	}
	if got := IsolatedNodes(g); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("IsolatedNodes() = %v, want [a b]", got)
	}
}

func TestCriticalPath(t *testing.T) {
	// Two entry-exit routes: a->b->c->e (4 hops) and d->e (2 hops).
	g := buildGraph(t,
		[]string{"a", "b", "c", "d", "e"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "e"}, {"d", "e"}},
	)

	got := CriticalPath(g)
	want := []string{"a", "b", "c", "e"}
	if !slices.Equal(got, want) {
		t.Errorf("CriticalPath() = %v, want %v", got, want)
	}
}

func TestCriticalPathSingleNode(t *testing.T) {
	g := buildGraph(t, []string{"only"}, nil)
	if got := CriticalPath(g); !slices.Equal(got, []string{"only"}) {
		t.Errorf("CriticalPath() = %v, want [only]", got)
	}
}

func TestExtractSubgraphClosure(t *testing.T) {
	// A->B->C, D->B. Requesting {B} with dependencies pulls in A and D.
	g := buildGraph(t,
		[]string{"A", "B", "C", "D"},
		[][2]string{{"A", "B"}, {"B", "C"}, {"D", "B"}},
	)

	sub := ExtractSubgraph(g, []string{"B"}, true)
	want := []string{"A", "B", "D"}
	got := sub.NodeIDs()
	slices.Sort(got)
	if !slices.Equal(got, want) {
		t.Errorf("subgraph nodes = %v, want %v", got, want)
	}

	// Only induced connections: A->B and D->B, not B->C.
	for _, c := range sub.Connections() {
		if c.Target == "C" || c.Source == "C" {
			t.Errorf("connection %v should not be in the induced subgraph", c)
		}
	}
	if sub.ConnectionCount() != 2 {
		t.Errorf("ConnectionCount() = %d, want 2", sub.ConnectionCount())
	}
}

func TestExtractSubgraphInducedOnly(t *testing.T) {
	g := buildGraph(t,
		[]string{"A", "B", "C"},
		[][2]string{{"A", "B"}, {"B", "C"}},
	)
	sub := ExtractSubgraph(g, []string{"A", "B"}, false)
	if sub.NodeCount() != 2 || sub.ConnectionCount() != 1 {
		t.Errorf("induced subgraph = %d nodes, %d connections; want 2, 1",
			sub.NodeCount(), sub.ConnectionCount())
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		edges [][2]string
		want  Complexity
	}{
		{
			name:  "single node",
			nodes: []string{"a"},
			want:  ComplexitySimple,
		},
		{
			name:  "short chain",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
			want:  ComplexitySimple,
		},
		{
			name:  "branched flow",
			nodes: []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}},
			want:  ComplexityModerate,
		},
		{
			name:  "cyclic is always complex",
			nodes: []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"c", "d"}},
			want:  ComplexityComplex,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t, tt.nodes, tt.edges)
			if got := Classify(g); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}},
	)
	rep := Summarize(g)
	if rep.NodeCount != 3 || rep.ConnectionCount != 2 {
		t.Errorf("counts = %d, %d", rep.NodeCount, rep.ConnectionCount)
	}
	if !slices.Equal(rep.CriticalPath, []string{"a", "b", "c"}) {
		t.Errorf("CriticalPath = %v", rep.CriticalPath)
	}
	if rep.MaxFanOut != 1 {
		t.Errorf("MaxFanOut = %d, want 1", rep.MaxFanOut)
	}
}
