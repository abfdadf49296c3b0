package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/flowsmith/flowsmith/pkg/convert"
	"github.com/flowsmith/flowsmith/pkg/convert/catalog"
	"github.com/flowsmith/flowsmith/pkg/ir"
)

// converterInfo describes one registered converter for display.
type converterInfo struct {
	Type    string   // primary node-type identifier
	Aliases []string // additional accepted identifiers
	PyDeps  []string // Python package dependencies
	TSDeps  []string // TypeScript package dependencies
}

// convertersCommand creates the converters command for listing supported
// node types.
func (c *CLI) convertersCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "converters",
		Short: "List the node types the converter registry supports",
		Long: `List the node types the converter registry supports.

Each entry shows the primary node-type identifier, accepted aliases,
and the packages the generated code will depend on per language.

Use --interactive for a browsable list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := registryInfos()
			if err != nil {
				return err
			}
			if interactive {
				model := NewConverterListModel(infos)
				_, err := tea.NewProgram(model).Run()
				return err
			}
			printConverters(infos)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse converters interactively")

	return cmd
}

// registryInfos collects display info for every converter in the default
// registry, in sorted primary-type order.
func registryInfos() ([]converterInfo, error) {
	registry, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	probe := &ir.Node{}
	py := convert.Context{Language: convert.LangPython}
	ts := convert.Context{Language: convert.LangTypeScript}

	var infos []converterInfo
	for _, t := range registry.Types() {
		conv, ok := registry.Lookup(t)
		if !ok || conv.Type() != t {
			continue // aliases are listed under their primary type
		}
		infos = append(infos, converterInfo{
			Type:    conv.Type(),
			Aliases: conv.Aliases(),
			PyDeps:  conv.Dependencies(probe, py),
			TSDeps:  conv.Dependencies(probe, ts),
		})
	}
	return infos, nil
}

// printConverters prints the registry contents as a static list.
func printConverters(infos []converterInfo) {
	fmt.Println(StyleTitle.Render("Supported node types"))
	printNewline()
	for _, info := range infos {
		fmt.Println("  " + StyleHighlight.Render(info.Type))
		if len(info.Aliases) > 0 {
			printDetail("  aliases: %s", strings.Join(info.Aliases, ", "))
		}
		printDetail("  python: %s", joinOrDash(info.PyDeps))
		printDetail("  typescript: %s", joinOrDash(info.TSDeps))
	}
	printNewline()
	printDetail("%d node types total", len(infos))
}

// joinOrDash joins items with commas, or returns a dash when empty.
func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "—"
	}
	return strings.Join(items, ", ")
}
