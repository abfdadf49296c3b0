// Package convert turns an ordered IR graph into emittable code
// fragments.
//
// The package hosts the three pieces of the conversion machine: the
// Converter contract implemented by the per-node-type catalog, the
// read-only Registry that maps node types to converters, and the
// Orchestrator that walks a validated graph in topological order,
// dispatches each node, resolves cross-node variable references, and
// aggregates dependencies.
package convert

import (
	"strings"
	"unicode"
)

// Target languages for generated code.
const (
	LangPython     = "python"
	LangTypeScript = "typescript"
)

// Kind classifies a fragment for emission ordering.
type Kind string

// Fragment kinds, in emission order: imports precede declarations precede
// initializations precede executions.
const (
	KindImport         Kind = "import"
	KindDeclaration    Kind = "declaration"
	KindInitialization Kind = "initialization"
	KindExecution      Kind = "execution"
)

// kindPriority resolves a Kind to its emission rank. Unknown kinds sort
// last so that malformed fragments never break declared ordering.
func kindPriority(k Kind) int {
	switch k {
	case KindImport:
		return 0
	case KindDeclaration:
		return 1
	case KindInitialization:
		return 2
	case KindExecution:
		return 3
	default:
		return 4
	}
}

// Fragment is one named, ordered, language-tagged chunk of generated
// source text. Fragments are owned by the orchestrator for the duration
// of one conversion run and consumed once by the emitter.
type Fragment struct {
	ID           string   `json:"id"`
	Kind         Kind     `json:"kind"`
	Content      string   `json:"content"`
	Dependencies []string `json:"dependencies,omitempty"`
	Language     string   `json:"language"`

	// Order is the converter-declared ordering within a kind; lower
	// emits earlier.
	Order int `json:"order"`

	// NodeID names the producing node; set by the orchestrator.
	NodeID string `json:"nodeId,omitempty"`

	// Exports lists the variable names this fragment defines, available
	// to downstream nodes via input placeholders.
	Exports []string `json:"exports,omitempty"`

	// Position is the producing node's index in the topological order;
	// set by the orchestrator and used as the final sort key so that a
	// generated variable is never referenced before its declaration.
	Position int `json:"position"`
}

// VarName derives a stable identifier from a node id, usable in both
// target languages: non-identifier runes become underscores and a
// leading digit gets prefixed.
func VarName(nodeID string) string {
	var b strings.Builder
	for _, r := range nodeID {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteByte('_')
		}
	}
	s := b.String()
	if s == "" {
		return "node"
	}
	if unicode.IsDigit(rune(s[0])) {
		return "n" + s
	}
	return s
}

// InputRef renders the placeholder a converter embeds where an upstream
// node's exported variable belongs. The orchestrator substitutes it using
// the connection graph.
func InputRef(handle string) string {
	return "{{input:" + handle + "}}"
}

// NullLiteral returns the target language's null value, used when an
// input reference cannot be resolved.
func NullLiteral(language string) string {
	if language == LangTypeScript {
		return "null"
	}
	return "None"
}
