// Package ir defines the intermediate representation the conversion
// pipeline operates on: a directed graph of typed nodes joined by
// connections with named ports, independent of the input JSON shape.
//
// A Graph is built once per conversion run (see Build) and treated as
// immutable afterwards: the analyzer and the orchestrator only read it.
// The Graph itself is deliberately permissive - connections whose
// endpoints do not resolve to known nodes are stored as-is so that
// validation stays a single authoritative pass in pkg/ir/analyze.
//
// Graph is not safe for concurrent mutation; concurrent reads of a built
// graph are safe.
package ir

import (
	"errors"
	"slices"
)

// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
var ErrInvalidNodeID = errors.New("node ID must not be empty")

// Metadata stores arbitrary key-value pairs attached to the graph,
// typically the flow name and builder-version fields carried through from
// the export. Metadata maps are never nil after New.
type Metadata map[string]any

// Parameter is one typed, possibly required configuration entry on a node.
type Parameter struct {
	Name     string `json:"name"`
	Value    any    `json:"value,omitempty"`
	Type     string `json:"type"`
	Required bool   `json:"required,omitempty"`
	Default  any    `json:"default,omitempty"`
}

// IsSet reports whether the parameter carries a usable value, counting a
// declared default as a value. Empty strings do not count: flow builders
// emit "" for untouched fields.
func (p Parameter) IsSet() bool {
	if s, ok := p.Value.(string); ok && s == "" {
		return p.Default != nil
	}
	return p.Value != nil || p.Default != nil
}

// Resolve returns the effective value: the configured value when set,
// otherwise the declared default.
func (p Parameter) Resolve() any {
	if s, ok := p.Value.(string); (ok && s != "") || (!ok && p.Value != nil) {
		return p.Value
	}
	return p.Default
}

// Port is a named attachment point for connections.
type Port struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Node is a unit of computation in the IR graph.
// Nodes are owned by the graph and immutable once built; conversion never
// mutates them.
type Node struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Category    string      `json:"category,omitempty"`
	Label       string      `json:"label,omitempty"`
	Parameters  []Parameter `json:"parameters,omitempty"`
	InputPorts  []Port      `json:"inputPorts,omitempty"`
	OutputPorts []Port      `json:"outputPorts,omitempty"`
}

// Param returns the parameter with the given name, or nil.
func (n *Node) Param(name string) *Parameter {
	for i := range n.Parameters {
		if n.Parameters[i].Name == name {
			return &n.Parameters[i]
		}
	}
	return nil
}

// MissingParameters returns the names of required parameters left unset.
func (n *Node) MissingParameters() []string {
	var missing []string
	for _, p := range n.Parameters {
		if p.Required && !p.IsSet() {
			missing = append(missing, p.Name)
		}
	}
	return missing
}

// Connection is a directed link between two nodes' named ports.
// Source and Target should reference existing node ids in the same graph;
// a violation is a structural error reported by analyze.Validate, not a
// crash.
type Connection struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Graph is the IR node/connection model. It preserves node insertion
// order, which downstream ordering algorithms use as their deterministic
// tie-break.
type Graph struct {
	nodes       map[string]*Node
	order       []string // node ids in insertion order
	connections []Connection
	outgoing    map[string][]string // node id -> successor ids
	incoming    map[string][]string // node id -> predecessor ids
	duplicates  []string            // ids of nodes dropped as duplicates
	meta        Metadata
}

// New creates an empty graph with optional graph-level metadata.
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map. Never nil.
func (g *Graph) Meta() Metadata { return g.meta }

// AddNode adds a node to the graph. An empty ID is rejected. A node whose
// ID is already present is not added: the first occurrence wins and the
// duplicate is recorded so that validation can surface it as a
// duplicate_node error.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		g.duplicates = append(g.duplicates, n.ID)
		return nil
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	return nil
}

// AddConnection records a directed connection. Endpoints are not checked
// against the node set here - unresolved endpoints are detected by
// analyze.Validate so that validation is one authoritative pass.
func (g *Graph) AddConnection(c Connection) {
	g.connections = append(g.connections, c)
	g.outgoing[c.Source] = append(g.outgoing[c.Source], c.Target)
	g.incoming[c.Target] = append(g.incoming[c.Target], c.Source)
}

// Node returns the node with the given ID and whether it exists.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// NodeIDs returns all node ids in insertion order.
func (g *Graph) NodeIDs() []string { return slices.Clone(g.order) }

// Connections returns a copy of all connections in insertion order.
func (g *Graph) Connections() []Connection { return slices.Clone(g.connections) }

// NodeCount returns the number of distinct nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// ConnectionCount returns the number of connections.
func (g *Graph) ConnectionCount() int { return len(g.connections) }

// Successors returns the ids of nodes this node connects to.
// The returned slice is a read-only view.
func (g *Graph) Successors(id string) []string { return g.outgoing[id] }

// Predecessors returns the ids of nodes connecting to this node.
// The returned slice is a read-only view.
func (g *Graph) Predecessors(id string) []string { return g.incoming[id] }

// OutDegree returns the number of outgoing connections from the node.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming connections to the node.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Duplicates returns the ids of nodes that were dropped by AddNode because
// an earlier node already used the same id. Ids appear once per dropped
// occurrence.
func (g *Graph) Duplicates() []string { return slices.Clone(g.duplicates) }

// IncomingConnections returns the connections targeting the given node,
// in insertion order.
func (g *Graph) IncomingConnections(id string) []Connection {
	var in []Connection
	for _, c := range g.connections {
		if c.Target == id {
			in = append(in, c)
		}
	}
	return in
}
