package convert

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/flowsmith/flowsmith/pkg/errors"
	"github.com/flowsmith/flowsmith/pkg/ir"
	"github.com/flowsmith/flowsmith/pkg/ir/analyze"
)

// Warning types emitted during conversion.
const (
	WarnUnsupportedType     = "unsupported_type"
	WarnSkippedNode         = "skipped_node"
	WarnUnresolvedReference = "unresolved_reference"
)

// Warning is a non-fatal conversion finding.
type Warning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	NodeID  string `json:"nodeId,omitempty"`
}

// Result is the outcome of one conversion run: the ordered fragment
// stream, the deduplicated dependency manifest, and all findings.
// Conversion is best-effort: partial, warned output is preferred over
// total failure whenever the remaining graph is still sound.
type Result struct {
	Fragments    []Fragment                `json:"fragments"`
	Dependencies []string                  `json:"dependencies,omitempty"`
	Warnings     []Warning                 `json:"warnings,omitempty"`
	Errors       []analyze.ValidationError `json:"errors,omitempty"`

	// Converted counts the nodes that produced fragments; Skipped counts
	// nodes dropped for missing parameters or unsupported types.
	Converted int `json:"converted"`
	Skipped   int `json:"skipped"`
}

// Orchestrator consumes a validated, ordered IR graph and drives the
// converter dispatch. It holds only the read-only registry, so one
// orchestrator can serve concurrent conversions.
type Orchestrator struct {
	registry *Registry
}

// NewOrchestrator creates an orchestrator over the given registry.
func NewOrchestrator(registry *Registry) *Orchestrator {
	return &Orchestrator{registry: registry}
}

// Validate runs graph validation only, for callers that want diagnostics
// without generating code.
func (o *Orchestrator) Validate(g *ir.Graph) *analyze.ValidationResult {
	return analyze.Validate(g)
}

// Convert runs the full conversion over the graph.
//
// The algorithm: validate (unresolved references, duplicate ids, and
// cycles abort; missing parameters only skip their node), order the
// nodes topologically, dispatch each node to its converter, resolve
// cross-node variable references via the connection graph, deduplicate
// dependencies, and sort fragments by (kind priority, declared order,
// topological position) so a generated variable is never referenced
// before its declaration.
//
// Nodes without a registered converter are recorded as unsupported_type
// warnings and excluded; conversion proceeds for the remaining nodes.
func (o *Orchestrator) Convert(g *ir.Graph, gctx Context) (*Result, error) {
	if err := gctx.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidLanguage, err, "invalid generation context")
	}

	res := &Result{}

	vr := analyze.Validate(g)
	res.Errors = vr.Errors
	res.Warnings = importWarnings(vr)
	if vr.HasFatal() {
		return res, apperrors.New(apperrors.ErrCodeInvalidFlow,
			"graph has %d structural error(s); conversion aborted", len(vr.Errors))
	}

	// Cycles are fatal for conversion even though pure validation only
	// reports them; HasFatal covers them, so reaching this point means
	// the sort below cannot fail.
	order := analyze.TopologicalSort(g)
	if !order.IsAcyclic {
		return res, apperrors.New(apperrors.ErrCodeCircularDependency,
			"graph is cyclic; conversion aborted")
	}

	skipped := skippedNodes(vr)
	exports := make(map[string]string, len(order.Sorted))

	for pos, id := range order.Sorted {
		node, _ := g.Node(id)

		if reason, skip := skipped[id]; skip {
			res.Skipped++
			res.Warnings = append(res.Warnings, Warning{
				Type:    WarnSkippedNode,
				Message: fmt.Sprintf("node %s skipped: %s", id, reason),
				NodeID:  id,
			})
			continue
		}

		conv, ok := o.registry.Lookup(node.Type)
		if ok {
			ok = conv.CanConvert(node)
		}
		if !ok {
			res.Skipped++
			res.Warnings = append(res.Warnings, Warning{
				Type:    WarnUnsupportedType,
				Message: fmt.Sprintf("no converter registered for node type %q", node.Type),
				NodeID:  id,
			})
			continue
		}

		frags, err := conv.Convert(node, gctx)
		if err != nil {
			return res, apperrors.Wrap(apperrors.ErrCodeInternal, err, "convert node %s (%s)", id, node.Type)
		}
		for i := range frags {
			if frags[i].ID == "" {
				frags[i].ID = uuid.NewString()
			}
			frags[i].NodeID = id
			frags[i].Position = pos
			if frags[i].Language == "" {
				frags[i].Language = gctx.Language
			}
		}
		res.Fragments = append(res.Fragments, frags...)
		res.Dependencies = append(res.Dependencies, conv.Dependencies(node, gctx)...)
		res.Converted++

		if v := primaryExport(frags); v != "" {
			exports[id] = v
		}
	}

	o.resolveReferences(g, gctx, res, exports)
	res.Dependencies = dedupe(res.Dependencies)
	sortFragments(res.Fragments)
	return res, nil
}

// resolveReferences replaces InputRef placeholders in fragment contents
// with the variables exported by upstream nodes, looked up through the
// connection graph. Placeholders whose upstream node produced nothing
// (skipped or unsupported) resolve to the language's null literal with an
// unresolved_reference warning.
func (o *Orchestrator) resolveReferences(g *ir.Graph, gctx Context, res *Result, exports map[string]string) {
	for i := range res.Fragments {
		frag := &res.Fragments[i]
		if !strings.Contains(frag.Content, "{{input:") {
			continue
		}

		bindings := inputBindings(g, frag.NodeID, exports)
		frag.Content = placeholderRE.ReplaceAllStringFunc(frag.Content, func(m string) string {
			handle := placeholderRE.FindStringSubmatch(m)[1]
			if v, ok := bindings[handle]; ok {
				return v
			}
			res.Warnings = append(res.Warnings, Warning{
				Type:    WarnUnresolvedReference,
				Message: fmt.Sprintf("node %s: input %q has no resolvable upstream value", frag.NodeID, handle),
				NodeID:  frag.NodeID,
			})
			return NullLiteral(gctx.Language)
		})
	}
}

var placeholderRE = regexp.MustCompile(`\{\{input:([^}]+)\}\}`)

// inputBindings maps each input handle of the node to the variable
// exported by the connected upstream node. Handles are matched both by
// raw connection handle and by the port name the handle resolves to.
func inputBindings(g *ir.Graph, nodeID string, exports map[string]string) map[string]string {
	node, ok := g.Node(nodeID)
	if !ok {
		return nil
	}

	bindings := make(map[string]string)
	for _, c := range g.IncomingConnections(nodeID) {
		v, ok := exports[c.Source]
		if !ok {
			continue
		}
		if c.TargetHandle != "" {
			bindings[c.TargetHandle] = v
		}
		for _, p := range node.InputPorts {
			if p.ID == c.TargetHandle {
				bindings[p.Name] = v
			}
		}
	}
	return bindings
}

// primaryExport returns the first exported variable of a fragment list.
func primaryExport(frags []Fragment) string {
	for _, f := range frags {
		if len(f.Exports) > 0 {
			return f.Exports[0]
		}
	}
	return ""
}

// importWarnings carries validation warnings into conversion warnings.
func importWarnings(vr *analyze.ValidationResult) []Warning {
	var ws []Warning
	for _, w := range vr.Warnings {
		ws = append(ws, Warning{Type: w.Type, Message: w.Message, NodeID: w.NodeID})
	}
	return ws
}

// skippedNodes collects nodes that validation flagged with missing
// required parameters; they are excluded from dispatch but do not abort
// the run.
func skippedNodes(vr *analyze.ValidationResult) map[string]string {
	skipped := make(map[string]string)
	for _, e := range vr.Errors {
		if e.Type == analyze.ErrTypeMissingParameter {
			if _, seen := skipped[e.NodeID]; !seen {
				skipped[e.NodeID] = fmt.Sprintf("required parameter %q is not set", e.ParameterName)
			}
		}
	}
	return skipped
}

// dedupe removes duplicate dependency names (case-sensitive exact match)
// preserving first-seen order.
func dedupe(deps []string) []string {
	seen := make(map[string]bool, len(deps))
	out := deps[:0]
	for _, d := range deps {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// sortFragments orders fragments for emission: imports, declarations,
// initializations, then executions; within a kind by declared order,
// then by topological position of the producing node.
func sortFragments(frags []Fragment) {
	slices.SortStableFunc(frags, func(a, b Fragment) int {
		if d := kindPriority(a.Kind) - kindPriority(b.Kind); d != 0 {
			return d
		}
		if d := a.Order - b.Order; d != 0 {
			return d
		}
		return a.Position - b.Position
	})
}
