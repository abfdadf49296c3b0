package viz

import (
	"strings"
	"testing"

	"github.com/flowsmith/flowsmith/pkg/ir"
)

func testGraph(t *testing.T) *ir.Graph {
	t.Helper()
	g := ir.New(nil)
	nodes := []ir.Node{
		{ID: "model", Type: "chatOpenAI", Label: "ChatOpenAI", Category: "Chat Models"},
		{ID: "chain", Type: "llmChain", Label: "LLM Chain"},
		{ID: "orphan", Type: "calculator", Label: "Calculator"},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	g.AddConnection(ir.Connection{ID: "e1", Source: "model", Target: "chain"})
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{})

	for _, want := range []string{
		`"model" [label="ChatOpenAI"]`,
		`"chain" [label="LLM Chain"]`,
		`"model" -> "chain";`,
		"digraph G {",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// Isolated node gets the dashed treatment
	if !strings.Contains(dot, `"orphan" [label="Calculator", style="rounded,filled,dashed"`) {
		t.Errorf("isolated node not marked:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{Detailed: true})

	if !strings.Contains(dot, "type: chatOpenAI") {
		t.Errorf("detailed label missing type:\n%s", dot)
	}
	if !strings.Contains(dot, "category: Chat Models") {
		t.Errorf("detailed label missing category:\n%s", dot)
	}
}

func TestToDOTMarkEntryExit(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{MarkEntryExit: true})

	if !strings.Contains(dot, `"model" [label="ChatOpenAI", fillcolor=palegreen]`) {
		t.Errorf("entry node not marked:\n%s", dot)
	}
	if !strings.Contains(dot, `"chain" [label="LLM Chain", fillcolor=lightblue]`) {
		t.Errorf("exit node not marked:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	svg := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00">`)
	out := string(normalizeViewBox(svg))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `xmlns="http://www.w3.org/2000/svg"`) {
		t.Errorf("xmlns not injected: %s", out)
	}

	// SVG without a viewBox passes through untouched
	plain := []byte(`<svg>`)
	if string(normalizeViewBox(plain)) != `<svg>` {
		t.Error("svg without viewBox should pass through")
	}
}
