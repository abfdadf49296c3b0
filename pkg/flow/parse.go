package flow

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError aggregates every structural violation found in one export so
// callers can report all problems at once instead of fixing them one by one.
type ParseError struct {
	Problems []Problem
}

// Problem is a single structural violation, located by a JSON-path-like
// string (e.g. "nodes[3].id").
type Problem struct {
	Path    string
	Message string
}

// Error joins all problems into one message.
func (e *ParseError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("invalid flow: %s: %s", e.Problems[0].Path, e.Problems[0].Message)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "invalid flow: %d problems:", len(e.Problems))
	for _, p := range e.Problems {
		fmt.Fprintf(&b, "\n  %s: %s", p.Path, p.Message)
	}
	return b.String()
}

func (e *ParseError) add(path, format string, args ...any) {
	e.Problems = append(e.Problems, Problem{Path: path, Message: fmt.Sprintf(format, args...)})
}

// knownTopLevel and knownNodeLevel are the fields the parser consumes;
// everything else is preserved in Extra.
var (
	knownTopLevel  = map[string]bool{"nodes": true, "edges": true, "name": true}
	knownNodeLevel = map[string]bool{"id": true, "type": true, "data": true}
)

// Parse decodes a raw flow export and checks its structure.
//
// The input must be syntactically valid JSON carrying top-level "nodes"
// and "edges" arrays; the absence of either is a structural error, not a
// crash. Every node must carry "id", "type", and a "data" object; every
// edge must carry "source" and "target". All violations are collected and
// returned together as a *ParseError.
//
// Parse is a pure transform with no side effects. Unknown fields at the
// top level and node level are kept in the Extra maps.
func Parse(raw []byte) (*Flow, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("decode flow export: %w", err)
	}

	perr := &ParseError{}
	f := &Flow{Extra: make(map[string]json.RawMessage)}

	if nameRaw, ok := top["name"]; ok {
		// A non-string name is tolerated; it simply stays in Extra.
		if json.Unmarshal(nameRaw, &f.Name) != nil {
			f.Extra["name"] = nameRaw
		}
	}
	for k, v := range top {
		if !knownTopLevel[k] {
			f.Extra[k] = v
		}
	}

	nodesRaw, ok := top["nodes"]
	if !ok {
		perr.add("nodes", "required array is missing")
	} else {
		f.Nodes = parseNodes(nodesRaw, perr)
	}

	edgesRaw, ok := top["edges"]
	if !ok {
		perr.add("edges", "required array is missing")
	} else {
		f.Edges = parseEdges(edgesRaw, perr)
	}

	if len(perr.Problems) > 0 {
		return nil, perr
	}
	return f, nil
}

func parseNodes(raw json.RawMessage, perr *ParseError) []Node {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		perr.add("nodes", "must be an array of objects: %v", err)
		return nil
	}

	nodes := make([]Node, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("nodes[%d]", i)
		var n Node
		n.Extra = make(map[string]json.RawMessage)

		if !unmarshalField(item, "id", &n.ID) || n.ID == "" {
			perr.add(path+".id", "required string is missing or empty")
		}
		if !unmarshalField(item, "type", &n.Type) || n.Type == "" {
			perr.add(path+".type", "required string is missing or empty")
		}
		if dataRaw, ok := item["data"]; !ok {
			perr.add(path+".data", "required object is missing")
		} else if err := json.Unmarshal(dataRaw, &n.Data); err != nil {
			perr.add(path+".data", "malformed data object: %v", err)
		}

		for k, v := range item {
			if !knownNodeLevel[k] {
				n.Extra[k] = v
			}
		}
		nodes = append(nodes, n)
	}
	return nodes
}

func parseEdges(raw json.RawMessage, perr *ParseError) []Edge {
	var edges []Edge
	if err := json.Unmarshal(raw, &edges); err != nil {
		perr.add("edges", "must be an array of objects: %v", err)
		return nil
	}
	for i, e := range edges {
		path := fmt.Sprintf("edges[%d]", i)
		if e.Source == "" {
			perr.add(path+".source", "required string is missing or empty")
		}
		if e.Target == "" {
			perr.add(path+".target", "required string is missing or empty")
		}
	}
	return edges
}

// unmarshalField decodes item[key] into dst, returning false if the key is
// absent or the value has the wrong type.
func unmarshalField(item map[string]json.RawMessage, key string, dst *string) bool {
	raw, ok := item[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}
