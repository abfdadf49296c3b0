// Package analyze provides pure, stateless functions over an IR graph:
// structural validation, cycle detection, topological ordering, entry and
// exit point discovery, critical-path search, subgraph extraction, and
// complexity classification.
//
// Every function takes the graph as input and returns fresh values; no
// function mutates the graph, so concurrent analysis of the same built
// graph is safe. Traversals use explicit stacks rather than recursion so
// that pathologically deep (but valid) graphs cannot exhaust call-stack
// space.
package analyze

import (
	"fmt"

	"github.com/flowsmith/flowsmith/pkg/ir"
)

// Severity grades a validation finding.
type Severity string

// Severities for validation findings.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Error types for validation findings.
const (
	ErrTypeMissingNode        = "missing_node"
	ErrTypeDuplicateNode      = "duplicate_node"
	ErrTypeMissingParameter   = "missing_parameter"
	ErrTypeCircularDependency = "circular_dependency"
	WarnTypeIsolatedNode      = "isolated_node"
)

// ValidationError is one validation finding, locatable by node or
// connection id where applicable.
type ValidationError struct {
	Type          string   `json:"type"`
	Message       string   `json:"message"`
	NodeID        string   `json:"nodeId,omitempty"`
	ConnectionID  string   `json:"connectionId,omitempty"`
	ParameterName string   `json:"parameterName,omitempty"`
	Cycle         []string `json:"cycle,omitempty"`
	Severity      Severity `json:"severity"`
}

// ValidationResult aggregates all findings for one graph. It is produced
// fresh per Validate call and never mutates the graph.
type ValidationResult struct {
	IsValid     bool              `json:"isValid"`
	Errors      []ValidationError `json:"errors,omitempty"`
	Warnings    []ValidationError `json:"warnings,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

// HasFatal reports whether any error makes the graph unconvertible:
// unresolved references, duplicate ids, or cycles. Missing parameters are
// reported but only skip the affected node during conversion.
func (r *ValidationResult) HasFatal() bool {
	for _, e := range r.Errors {
		switch e.Type {
		case ErrTypeMissingNode, ErrTypeDuplicateNode, ErrTypeCircularDependency:
			return true
		}
	}
	return false
}

// Validate checks a graph for structural soundness.
//
// Checks run in a fixed order: (1) every connection endpoint must resolve
// to an existing node (missing_node errors), (2) duplicate node ids
// recorded by the builder (duplicate_node errors), (3) no required
// parameter may be left unset (missing_parameter errors carrying node id
// and parameter name), (4) cycle detection - every detected cycle becomes
// one circular_dependency error listing the full node sequence, and
// (5) isolated nodes become warnings, not errors, since they are often
// intentional stubs.
func Validate(g *ir.Graph) *ValidationResult {
	res := &ValidationResult{IsValid: true}

	for _, c := range g.Connections() {
		if _, ok := g.Node(c.Source); !ok {
			res.addError(ValidationError{
				Type:         ErrTypeMissingNode,
				Message:      fmt.Sprintf("connection %s references unknown source node %q", c.ID, c.Source),
				NodeID:       c.Source,
				ConnectionID: c.ID,
			})
		}
		if _, ok := g.Node(c.Target); !ok {
			res.addError(ValidationError{
				Type:         ErrTypeMissingNode,
				Message:      fmt.Sprintf("connection %s references unknown target node %q", c.ID, c.Target),
				NodeID:       c.Target,
				ConnectionID: c.ID,
			})
		}
	}

	for _, id := range g.Duplicates() {
		res.addError(ValidationError{
			Type:    ErrTypeDuplicateNode,
			Message: fmt.Sprintf("node id %q is used more than once; only the first occurrence is kept", id),
			NodeID:  id,
		})
	}

	for _, n := range g.Nodes() {
		for _, name := range n.MissingParameters() {
			res.addError(ValidationError{
				Type:          ErrTypeMissingParameter,
				Message:       fmt.Sprintf("node %s: required parameter %q is not set", n.ID, name),
				NodeID:        n.ID,
				ParameterName: name,
			})
		}
	}

	for _, cycle := range FindCycles(g) {
		res.addError(ValidationError{
			Type:    ErrTypeCircularDependency,
			Message: fmt.Sprintf("circular dependency: %s", joinCycle(cycle)),
			Cycle:   cycle,
		})
	}

	for _, id := range IsolatedNodes(g) {
		res.Warnings = append(res.Warnings, ValidationError{
			Type:     WarnTypeIsolatedNode,
			Message:  fmt.Sprintf("node %s has no connections", id),
			NodeID:   id,
			Severity: SeverityWarning,
		})
	}
	if len(res.Warnings) > 0 {
		res.Suggestions = append(res.Suggestions,
			"connect or remove isolated nodes before generating code")
	}

	return res
}

func (r *ValidationResult) addError(e ValidationError) {
	e.Severity = SeverityError
	r.Errors = append(r.Errors, e)
	r.IsValid = false
}

func joinCycle(cycle []string) string {
	s := ""
	for i, id := range cycle {
		if i > 0 {
			s += " -> "
		}
		s += id
	}
	if len(cycle) > 0 {
		s += " -> " + cycle[0]
	}
	return s
}
