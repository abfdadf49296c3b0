package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// graphJSON is the canonical serialization format for IR graphs, used for
// cache keys, the analyze --json output, and cross-tool compatibility.
// Nodes are emitted in insertion order, which keeps the encoding
// deterministic and stable under re-import.
type graphJSON struct {
	Nodes       []Node         `json:"nodes" bson:"nodes"`
	Connections []Connection   `json:"connections" bson:"connections"`
	Metadata    map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Duplicates  []string       `json:"duplicates,omitempty" bson:"duplicates,omitempty"`
}

// MarshalGraph converts an IR graph to indented JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes an IR graph as JSON to w.
func WriteGraph(g *Graph, w io.Writer) error {
	out := graphJSON{
		Nodes:       make([]Node, 0, g.NodeCount()),
		Connections: g.Connections(),
		Metadata:    g.Meta(),
		Duplicates:  g.Duplicates(),
	}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, *n)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}

// ReadGraph decodes a JSON graph produced by WriteGraph.
func ReadGraph(r io.Reader) (*Graph, error) {
	var data graphJSON
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	g := New(data.Metadata)
	for _, n := range data.Nodes {
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", n.ID, err)
		}
	}
	for _, c := range data.Connections {
		g.AddConnection(c)
	}
	// Carry over dropped-duplicate ids so a decoded graph fails validation
	// the same way the originally built one did.
	g.duplicates = append(g.duplicates, data.Duplicates...)
	return g, nil
}
