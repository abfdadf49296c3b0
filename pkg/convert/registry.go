package convert

import (
	"fmt"
	"slices"

	"github.com/flowsmith/flowsmith/pkg/ir"
)

// Converter maps one IR node type to code fragments plus its declared
// external dependencies. Implementations must be pure: Convert must not
// mutate the node or the context, and must not perform I/O.
type Converter interface {
	// Type returns the primary node-type identifier this converter binds.
	Type() string

	// Aliases returns additional type identifiers accepted by this
	// converter (legacy names, versioned variants). May be empty.
	Aliases() []string

	// CanConvert is a node-type/version guard, checked after registry
	// lookup. A false return downgrades the node to an unsupported_type
	// warning.
	CanConvert(n *ir.Node) bool

	// Convert produces the fragments for one node. Upstream variables
	// are referenced through InputRef placeholders which the
	// orchestrator resolves via the connection graph.
	Convert(n *ir.Node, gctx Context) ([]Fragment, error)

	// Dependencies declares the external package names the generated
	// code needs for this node in the given context.
	Dependencies(n *ir.Node, gctx Context) []string
}

// Registry is a frozen, startup-built map from node-type identifier to
// Converter. It is populated once before any conversion begins and never
// mutated afterwards, which makes unsynchronized concurrent reads safe.
type Registry struct {
	byType map[string]Converter
}

// NewRegistry builds a registry from the given converters, binding each
// converter's primary type and all of its aliases. Re-registering an
// already-bound type identifier is a configuration error surfaced at
// construction, not at conversion time.
func NewRegistry(converters ...Converter) (*Registry, error) {
	byType := make(map[string]Converter)
	bind := func(id string, c Converter) error {
		if prev, exists := byType[id]; exists {
			return fmt.Errorf("node type %q already registered by %q", id, prev.Type())
		}
		byType[id] = c
		return nil
	}

	for _, c := range converters {
		if err := bind(c.Type(), c); err != nil {
			return nil, err
		}
		for _, alias := range c.Aliases() {
			if err := bind(alias, c); err != nil {
				return nil, err
			}
		}
	}
	return &Registry{byType: byType}, nil
}

// Lookup returns the converter bound to the given node type.
func (r *Registry) Lookup(nodeType string) (Converter, bool) {
	c, ok := r.byType[nodeType]
	return c, ok
}

// Types returns all bound type identifiers in sorted order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Len returns the number of bound type identifiers.
func (r *Registry) Len() int { return len(r.byType) }
