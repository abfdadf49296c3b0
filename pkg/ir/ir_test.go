package ir

import (
	"bytes"
	"testing"

	"github.com/flowsmith/flowsmith/pkg/flow"
)

func TestAddNode(t *testing.T) {
	g := New(nil)

	if err := g.AddNode(Node{}); err != ErrInvalidNodeID {
		t.Errorf("AddNode(empty id) = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "a", Type: "first"}); err != nil {
		t.Fatalf("AddNode() error: %v", err)
	}

	// Duplicate ids keep the first occurrence and are recorded.
	if err := g.AddNode(Node{ID: "a", Type: "second"}); err != nil {
		t.Fatalf("AddNode(duplicate) error: %v", err)
	}
	n, ok := g.Node("a")
	if !ok || n.Type != "first" {
		t.Errorf("Node(a) = %+v, want first occurrence", n)
	}
	if dups := g.Duplicates(); len(dups) != 1 || dups[0] != "a" {
		t.Errorf("Duplicates() = %v, want [a]", dups)
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", g.NodeCount())
	}
}

func TestInsertionOrderPreserved(t *testing.T) {
	g := New(nil)
	ids := []string{"c", "a", "b"}
	for _, id := range ids {
		if err := g.AddNode(Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	got := g.NodeIDs()
	for i, id := range ids {
		if got[i] != id {
			t.Fatalf("NodeIDs() = %v, want insertion order %v", got, ids)
		}
	}
}

func TestAdjacency(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"a", "b", "c"} {
		_ = g.AddNode(Node{ID: id})
	}
	g.AddConnection(Connection{ID: "e1", Source: "a", Target: "b"})
	g.AddConnection(Connection{ID: "e2", Source: "a", Target: "c"})

	if got := g.Successors("a"); len(got) != 2 {
		t.Errorf("Successors(a) = %v", got)
	}
	if got := g.Predecessors("b"); len(got) != 1 || got[0] != "a" {
		t.Errorf("Predecessors(b) = %v", got)
	}
	if g.OutDegree("a") != 2 || g.InDegree("c") != 1 {
		t.Error("degree counts wrong")
	}

	// Dangling endpoints are stored, not rejected.
	g.AddConnection(Connection{ID: "e3", Source: "a", Target: "ghost"})
	if g.ConnectionCount() != 3 {
		t.Errorf("ConnectionCount() = %d, want 3", g.ConnectionCount())
	}
}

func TestParameterIsSet(t *testing.T) {
	tests := []struct {
		name string
		p    Parameter
		want bool
	}{
		{"value set", Parameter{Value: "gpt-4"}, true},
		{"nothing set", Parameter{}, false},
		{"empty string no default", Parameter{Value: ""}, false},
		{"empty string with default", Parameter{Value: "", Default: "x"}, true},
		{"default only", Parameter{Default: 0.7}, true},
		{"zero number counts", Parameter{Value: 0.0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.IsSet(); got != tt.want {
				t.Errorf("IsSet() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParameterResolve(t *testing.T) {
	p := Parameter{Value: "", Default: "fallback"}
	if got := p.Resolve(); got != "fallback" {
		t.Errorf("Resolve() = %v, want fallback", got)
	}
	p = Parameter{Value: "set", Default: "fallback"}
	if got := p.Resolve(); got != "set" {
		t.Errorf("Resolve() = %v, want set", got)
	}
}

func TestBuildFromFlow(t *testing.T) {
	f := &flow.Flow{
		Name: "demo",
		Nodes: []flow.Node{
			{
				ID:   "llm_0",
				Type: "chatOpenAI",
				Data: flow.NodeData{
					Category: "Chat Models",
					Label:    "ChatOpenAI",
					InputParams: []flow.InputParam{
						{Name: "modelName", Type: "string", Required: true},
						{Name: "temperature", Type: "number", Default: 0.7},
					},
					OutputAnchors: []flow.Anchor{{ID: "llm_0-out", Name: "chatOpenAI", Type: "ChatOpenAI"}},
					Inputs:        map[string]any{"modelName": "gpt-4", "customHeader": "x"},
				},
			},
			{
				ID:   "chain_0",
				Type: "llmChain",
				Data: flow.NodeData{
					Category:     "Chains",
					InputAnchors: []flow.Anchor{{ID: "chain_0-in", Name: "model", Type: "BaseLanguageModel"}},
					Inputs:       map[string]any{"model": "{{llm_0.data.instance}}"},
				},
			},
		},
		Edges: []flow.Edge{
			{ID: "e1", Source: "llm_0", Target: "chain_0", SourceHandle: "llm_0-out", TargetHandle: "chain_0-in"},
		},
	}

	g := Build(f)

	if g.NodeCount() != 2 || g.ConnectionCount() != 1 {
		t.Fatalf("counts = %d nodes, %d connections", g.NodeCount(), g.ConnectionCount())
	}
	if g.Meta()["name"] != "demo" {
		t.Errorf("metadata name = %v", g.Meta()["name"])
	}

	n, _ := g.Node("llm_0")
	if p := n.Param("modelName"); p == nil || p.Value != "gpt-4" || !p.Required {
		t.Errorf("modelName param = %+v", p)
	}
	if p := n.Param("temperature"); p == nil || p.Default != 0.7 || p.IsSet() != true {
		t.Errorf("temperature param = %+v", p)
	}
	// Undeclared non-anchor input is carried as an untyped parameter.
	if p := n.Param("customHeader"); p == nil || p.Value != "x" {
		t.Errorf("customHeader param = %+v", p)
	}
	if len(n.OutputPorts) != 1 || n.OutputPorts[0].Name != "chatOpenAI" {
		t.Errorf("OutputPorts = %+v", n.OutputPorts)
	}

	// Anchor-bound inputs must not become parameters.
	c, _ := g.Node("chain_0")
	if c.Param("model") != nil {
		t.Error("anchor-bound input should not become a parameter")
	}
	if c.Label != "chain_0" {
		t.Errorf("Label fallback = %q, want node id", c.Label)
	}
}

func TestMissingParameters(t *testing.T) {
	n := Node{Parameters: []Parameter{
		{Name: "apiKey", Required: true},
		{Name: "model", Required: true, Value: "gpt-4"},
		{Name: "temp", Required: false},
	}}
	got := n.MissingParameters()
	if len(got) != 1 || got[0] != "apiKey" {
		t.Errorf("MissingParameters() = %v, want [apiKey]", got)
	}
}

func TestGraphRoundTrip(t *testing.T) {
	g := New(Metadata{"name": "rt"})
	_ = g.AddNode(Node{ID: "a", Type: "t1", Parameters: []Parameter{{Name: "p", Value: "v", Required: true}}})
	_ = g.AddNode(Node{ID: "b", Type: "t2"})
	g.AddConnection(Connection{ID: "e1", Source: "a", Target: "b", SourceHandle: "out", TargetHandle: "in"})

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph() error: %v", err)
	}
	got, err := ReadGraph(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadGraph() error: %v", err)
	}

	if got.NodeCount() != 2 || got.ConnectionCount() != 1 {
		t.Fatalf("round-trip counts = %d, %d", got.NodeCount(), got.ConnectionCount())
	}
	n, ok := got.Node("a")
	if !ok || n.Type != "t1" || len(n.Parameters) != 1 || !n.Parameters[0].Required {
		t.Errorf("round-trip node = %+v", n)
	}
	if got.Meta()["name"] != "rt" {
		t.Errorf("round-trip metadata = %v", got.Meta())
	}

	// Re-marshal must be byte-identical (deterministic output).
	data2, err := MarshalGraph(got)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, data2) {
		t.Error("serialization is not deterministic across round-trips")
	}
}

func TestGraphRoundTripKeepsDuplicates(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a", Type: "first"})
	_ = g.AddNode(Node{ID: "a", Type: "second"})

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph() error: %v", err)
	}
	got, err := ReadGraph(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadGraph() error: %v", err)
	}

	// A decoded graph must carry the dropped-duplicate record so it still
	// fails validation with duplicate_node, same as the original.
	if dups := got.Duplicates(); len(dups) != 1 || dups[0] != "a" {
		t.Errorf("Duplicates() after round-trip = %v, want [a]", dups)
	}
}
