package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowsmith/flowsmith/pkg/ir"
	"github.com/flowsmith/flowsmith/pkg/ir/analyze"
	"github.com/flowsmith/flowsmith/pkg/pipeline"
	"github.com/flowsmith/flowsmith/pkg/viz"
)

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	render      string // diagram output path ("" disables rendering)
	format      string // diagram format: svg, png, dot
	detailed    bool   // include type/category/parameter detail in diagram labels
	markEntries bool   // highlight entry and exit nodes in the diagram
	asJSON      bool   // print the report as JSON instead of formatted text
	subgraph    string // comma-separated node ids to restrict the analysis to
	includeDeps bool   // include transitive dependencies of the subgraph nodes
	noCache     bool
}

// validDiagramFormats is the set of supported diagram formats.
var validDiagramFormats = map[string]bool{"svg": true, "png": true, "dot": true}

// analyzeCommand creates the analyze command for structural flow reports.
func (c *CLI) analyzeCommand() *cobra.Command {
	opts := analyzeOpts{format: "svg"}

	cmd := &cobra.Command{
		Use:   "analyze [flow.json]",
		Short: "Analyze the structure of a flow export",
		Long: `Analyze the structure of a flow-builder JSON export.

The report covers entry and exit points, isolated nodes, cycles, the
critical path, maximum fan-out, and a coarse complexity grade.

With --render, the flow is additionally drawn as a node-link diagram
using Graphviz (SVG, PNG, or raw DOT).

Examples:
  flowsmith analyze support-bot.json
  flowsmith analyze support-bot.json --json
  flowsmith analyze support-bot.json --render flow.svg --mark-entry-exit
  flowsmith analyze support-bot.json --subgraph llmChain_0 --include-deps`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validDiagramFormats[opts.format] {
				return fmt.Errorf("invalid format: %s (must be 'svg', 'png', or 'dot')", opts.format)
			}
			return c.runAnalyze(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the report as JSON")
	cmd.Flags().StringVar(&opts.subgraph, "subgraph", "", "restrict analysis to these node ids (comma-separated)")
	cmd.Flags().BoolVar(&opts.includeDeps, "include-deps", false, "include transitive dependencies of --subgraph nodes")
	cmd.Flags().StringVar(&opts.render, "render", "", "write a node-link diagram to this path")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "diagram format: svg (default), png, dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node types and parameters in diagram labels")
	cmd.Flags().BoolVar(&opts.markEntries, "mark-entry-exit", false, "highlight entry and exit nodes in the diagram")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runAnalyze parses the flow, summarizes its structure, and optionally
// renders a diagram.
func (c *CLI) runAnalyze(ctx context.Context, input string, opts *analyzeOpts) error {
	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read flow %s: %w", input, err)
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, err := runner.Parse(ctx, raw, pipeline.Options{Logger: c.Logger})
	if err != nil {
		return fmt.Errorf("parse flow: %w", err)
	}

	if opts.subgraph != "" {
		ids := strings.Split(opts.subgraph, ",")
		for i := range ids {
			ids[i] = strings.TrimSpace(ids[i])
		}
		g = analyze.ExtractSubgraph(g, ids, opts.includeDeps)
	}

	report := runner.Analyze(ctx, g)

	if opts.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(report)
	}

	if opts.render != "" {
		return c.renderDiagram(g, opts)
	}
	return nil
}

// printReport prints the analysis report in a compact key-value layout.
func printReport(report *analyze.Report) {
	printKeyValue("Nodes", fmt.Sprintf("%d", report.NodeCount))
	printKeyValue("Connections", fmt.Sprintf("%d", report.ConnectionCount))
	printKeyValue("Complexity", string(report.Complexity))
	printKeyValue("Max fan-out", fmt.Sprintf("%d", report.MaxFanOut))
	if len(report.EntryPoints) > 0 {
		printKeyValue("Entries", strings.Join(report.EntryPoints, ", "))
	}
	if len(report.ExitPoints) > 0 {
		printKeyValue("Exits", strings.Join(report.ExitPoints, ", "))
	}
	if len(report.CriticalPath) > 0 {
		printKeyValue("Critical", strings.Join(report.CriticalPath, " "+iconArrow+" "))
	}
	if len(report.IsolatedNodes) > 0 {
		printWarning("%d isolated node(s): %s", len(report.IsolatedNodes), strings.Join(report.IsolatedNodes, ", "))
	}
	for _, cycle := range report.Cycles {
		printError("cycle: %s", strings.Join(cycle, " "+iconArrow+" "))
	}
}

// renderDiagram draws the graph as a node-link diagram in the requested format.
func (c *CLI) renderDiagram(g *ir.Graph, opts *analyzeOpts) error {
	dot := viz.ToDOT(g, viz.Options{Detailed: opts.detailed, MarkEntryExit: opts.markEntries})

	var data []byte
	var err error
	switch opts.format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = viz.RenderSVG(dot)
	case "png":
		data, err = viz.RenderPNG(dot)
	}
	if err != nil {
		return fmt.Errorf("render diagram: %w", err)
	}

	if err := os.WriteFile(opts.render, data, 0o644); err != nil {
		return fmt.Errorf("write diagram %s: %w", opts.render, err)
	}
	printSuccess("Diagram written")
	printFile(opts.render)
	return nil
}
