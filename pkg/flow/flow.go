// Package flow parses visual flow-builder JSON exports into a validated
// domain model.
//
// A flow export is a JSON document with top-level "nodes" and "edges"
// arrays. Each node carries an id, a type identifier, and a data object
// describing its parameters and anchors; each edge connects two node ids
// through named handles. The parser is a pure transform: it rejects
// structurally malformed input with an aggregated error and performs no
// graph-level validation (dangling edge endpoints, cycles, and missing
// parameters are the analyzer's job, see pkg/ir/analyze).
//
// Unknown fields are preserved rather than rejected so that exports from
// newer builder versions keep round-tripping through the pipeline.
package flow

import (
	"encoding/json"
)

// Flow is the decoded domain object for one flow export.
type Flow struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	// Name is the flow display name, taken from the optional top-level
	// "name" field when present.
	Name string `json:"name,omitempty"`

	// Extra holds unrecognized top-level fields, preserved verbatim.
	Extra map[string]json.RawMessage `json:"-"`
}

// Node is one unit of computation in the flow.
type Node struct {
	ID   string   `json:"id"`
	Type string   `json:"type"`
	Data NodeData `json:"data"`

	// Extra holds unrecognized node-level fields, preserved verbatim.
	Extra map[string]json.RawMessage `json:"-"`
}

// NodeData describes a node's category, parameters, and anchors.
type NodeData struct {
	Category      string         `json:"category"`
	Label         string         `json:"label"`
	InputParams   []InputParam   `json:"inputParams"`
	InputAnchors  []Anchor       `json:"inputAnchors"`
	OutputAnchors []Anchor       `json:"outputAnchors"`
	Inputs        map[string]any `json:"inputs"`
}

// InputParam declares one configurable parameter of a node.
// Required parameters without a value and without a default are reported
// by the analyzer as missing_parameter errors.
type InputParam struct {
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Type     string `json:"type"`
	Required bool   `json:"required,omitempty"`
	Default  any    `json:"default,omitempty"`
}

// Anchor is a named connection port on a node. Incoming edges attach to
// input anchors, outgoing edges to output anchors.
type Anchor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
	Type  string `json:"type"`
}

// Edge is a directed link between two nodes' anchors.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// NodeByID returns the node with the given id, or nil if absent.
func (f *Flow) NodeByID(id string) *Node {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return &f.Nodes[i]
		}
	}
	return nil
}

// Param returns the declared input parameter with the given name, or nil.
func (d *NodeData) Param(name string) *InputParam {
	for i := range d.InputParams {
		if d.InputParams[i].Name == name {
			return &d.InputParams[i]
		}
	}
	return nil
}

// Input returns the configured value for the named input and whether it
// was set. Empty-string values count as unset, matching builder exports
// that emit "" for untouched fields.
func (d *NodeData) Input(name string) (any, bool) {
	v, ok := d.Inputs[name]
	if !ok {
		return nil, false
	}
	if s, isStr := v.(string); isStr && s == "" {
		return nil, false
	}
	return v, true
}
