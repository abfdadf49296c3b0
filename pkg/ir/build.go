package ir

import (
	"maps"
	"slices"

	"github.com/flowsmith/flowsmith/pkg/flow"
)

// Build lifts a parsed flow into the IR graph.
//
// Every domain node's declared parameter list becomes IR Parameters with
// the configured value joined in and required flags preserved; every edge
// becomes a Connection. Build does not reject dangling edge endpoints -
// that is delegated to analyze.Validate so that validation is a single
// authoritative pass. Duplicate node ids keep the first occurrence (see
// Graph.AddNode).
func Build(f *flow.Flow) *Graph {
	meta := Metadata{}
	if f.Name != "" {
		meta["name"] = f.Name
	}
	g := New(meta)

	for _, fn := range f.Nodes {
		_ = g.AddNode(buildNode(fn))
	}
	for _, e := range f.Edges {
		g.AddConnection(Connection{
			ID:           e.ID,
			Source:       e.Source,
			Target:       e.Target,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
		})
	}
	return g
}

func buildNode(fn flow.Node) Node {
	n := Node{
		ID:       fn.ID,
		Type:     fn.Type,
		Category: fn.Data.Category,
		Label:    fn.Data.Label,
	}
	if n.Label == "" {
		n.Label = fn.ID
	}

	for _, p := range fn.Data.InputParams {
		param := Parameter{
			Name:     p.Name,
			Type:     p.Type,
			Required: p.Required,
			Default:  p.Default,
		}
		if v, ok := fn.Data.Input(p.Name); ok {
			param.Value = v
		}
		n.Parameters = append(n.Parameters, param)
	}

	// Inputs configured without a matching declaration are carried as
	// untyped parameters. Anchor-bound inputs arrive via connections, not
	// values, so they are excluded.
	anchors := make(map[string]bool, len(fn.Data.InputAnchors))
	for _, a := range fn.Data.InputAnchors {
		anchors[a.Name] = true
	}
	for _, name := range slices.Sorted(maps.Keys(fn.Data.Inputs)) {
		if fn.Data.Param(name) != nil || anchors[name] {
			continue
		}
		v := fn.Data.Inputs[name]
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		if v == nil {
			continue
		}
		n.Parameters = append(n.Parameters, Parameter{Name: name, Value: v})
	}

	for _, a := range fn.Data.InputAnchors {
		n.InputPorts = append(n.InputPorts, Port{ID: a.ID, Name: a.Name, Type: a.Type})
	}
	for _, a := range fn.Data.OutputAnchors {
		n.OutputPorts = append(n.OutputPorts, Port{ID: a.ID, Name: a.Name, Type: a.Type})
	}
	return n
}
