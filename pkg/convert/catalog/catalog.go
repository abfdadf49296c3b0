// Package catalog provides the built-in node-type converters.
//
// Each converter maps one flow-builder node type to the code fragments
// that instantiate the equivalent LangChain object in the target
// language. The catalog registers through convert.NewRegistry; adding a
// node type means adding one file here and one entry in Default.
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flowsmith/flowsmith/pkg/convert"
	"github.com/flowsmith/flowsmith/pkg/ir"
)

// Default builds the registry with every built-in converter bound.
func Default() (*convert.Registry, error) {
	return convert.NewRegistry(
		ChatModel{},
		PromptTemplate{},
		LLMChain{},
		BufferMemory{},
		Calculator{},
		SerpAPI{},
		OutputParser{},
	)
}

// pick returns the generic or language-specific variant of a value.
func pick(gctx convert.Context, py, ts string) string {
	if gctx.Language == convert.LangTypeScript {
		return ts
	}
	return py
}

// importFragment builds the import fragment for a node in the target
// language.
func importFragment(gctx convert.Context, py, ts string) convert.Fragment {
	return convert.Fragment{
		Kind:     convert.KindImport,
		Content:  pick(gctx, py, ts),
		Language: gctx.Language,
	}
}

// stringParam resolves a node parameter to its string form, falling back
// to def when the parameter is absent or unset.
func stringParam(n *ir.Node, name, def string) string {
	p := n.Param(name)
	if p == nil || !p.IsSet() {
		return def
	}
	switch v := p.Resolve().(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// floatParam resolves a node parameter to a float, falling back to def.
func floatParam(n *ir.Node, name string, def float64) float64 {
	p := n.Param(name)
	if p == nil || !p.IsSet() {
		return def
	}
	switch v := p.Resolve().(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// boolParam resolves a node parameter to a bool, falling back to def.
func boolParam(n *ir.Node, name string, def bool) bool {
	p := n.Param(name)
	if p == nil || !p.IsSet() {
		return def
	}
	switch v := p.Resolve().(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// quote renders a string literal for the target language. Both targets
// accept double-quoted strings with the same escapes for the characters
// that can appear in flow parameters.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// boolLiteral renders a bool for the target language.
func boolLiteral(gctx convert.Context, v bool) string {
	if gctx.Language == convert.LangTypeScript {
		return strconv.FormatBool(v)
	}
	if v {
		return "True"
	}
	return "False"
}

// nodeComment renders the optional per-node comment line.
func nodeComment(gctx convert.Context, n *ir.Node) string {
	if !gctx.IncludeComments {
		return ""
	}
	label := n.Label
	if label == "" {
		label = n.ID
	}
	return pick(gctx, "# ", "// ") + label + "\n"
}
