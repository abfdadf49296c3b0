// Package viz renders IR graphs as node-link diagrams using Graphviz.
//
// The converter pipeline never needs a picture, but flow authors do:
// `flowsmith analyze --render` turns the IR graph into an SVG or PNG so a
// flow can be reviewed without opening the visual builder.
package viz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/flowsmith/flowsmith/pkg/ir"
	"github.com/flowsmith/flowsmith/pkg/ir/analyze"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes node categories and parameter counts in labels.
	// When false, only the node label is shown.
	Detailed bool

	// MarkEntryExit fills entry nodes green and exit nodes blue.
	MarkEntryExit bool
}

// ToDOT converts an IR graph to Graphviz DOT format for node-link
// visualization. The resulting DOT string can be rendered using
// [RenderSVG] or [RenderPNG].
//
// Isolated nodes are rendered with dashed outlines and grey fill to make
// dead flow branches visible.
func ToDOT(g *ir.Graph, opts Options) string {
	entries := make(map[string]bool)
	exits := make(map[string]bool)
	isolated := make(map[string]bool)
	if opts.MarkEntryExit {
		for _, id := range analyze.EntryPoints(g) {
			entries[id] = true
		}
		for _, id := range analyze.ExitPoints(g) {
			exits[id] = true
		}
	}
	for _, id := range analyze.IsolatedNodes(g) {
		isolated[id] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label, entries[n.ID], exits[n.ID], isolated[n.ID])
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range g.Connections() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", c.Source, c.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *ir.Node, detailed bool) string {
	if !detailed {
		return n.Label
	}

	parts := []string{fmt.Sprintf("type: %s", n.Type)}
	if n.Category != "" {
		parts = append(parts, fmt.Sprintf("category: %s", n.Category))
	}
	if len(n.Parameters) > 0 {
		parts = append(parts, fmt.Sprintf("params: %d", len(n.Parameters)))
	}

	return n.Label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *ir.Node, label string, entry, exit, isolated bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case isolated:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	case entry:
		attrs = append(attrs, "fillcolor=palegreen")
	case exit:
		attrs = append(attrs, "fillcolor=lightblue")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
