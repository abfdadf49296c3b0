package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/flowsmith/flowsmith/pkg/convert"
	"github.com/flowsmith/flowsmith/pkg/emit"
	"github.com/flowsmith/flowsmith/pkg/errors"
	"github.com/flowsmith/flowsmith/pkg/pipeline"
)

// convertCommand creates the convert command for generating code from a flow export.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		stdout  bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "convert [flow.json|dir]",
		Short: "Convert a flow export to runnable code",
		Long: `Convert a flow-builder JSON export to runnable code.

Passing a directory opens an interactive picker over the *.json exports
it contains.

The convert command parses the export, validates the flow structure,
converts each node through the converter registry, and writes the
generated program plus a dependency manifest.

Targets:
  python      flow.py + requirements.txt (default)
  typescript  flow.ts + package.json

Results are cached locally for faster subsequent runs.

Examples:
  flowsmith convert support-bot.json
  flowsmith convert support-bot.json -l typescript -o ./generated
  flowsmith convert support-bot.json --comments --tracing`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyConfig(cmd, cfg, &opts, &output)
			if err := pipeline.ValidateLanguage(languageOrDefault(opts.Language)); err != nil {
				return err
			}
			if output != "" {
				if err := errors.ValidateOutputPath(output); err != nil {
					return err
				}
			}
			return c.runConvert(cmd.Context(), args[0], opts, output, noCache, stdout)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default: current directory)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "print generated code instead of writing files")

	// Generation flags
	cmd.Flags().StringVarP(&opts.Language, "lang", "l", "", "target language: python (default), typescript")
	cmd.Flags().StringVar(&opts.ProjectName, "project-name", "", "project name for headers and manifests (default: flow name)")
	cmd.Flags().BoolVar(&opts.IncludeComments, "comments", false, "add per-node comments to generated code")
	cmd.Flags().BoolVar(&opts.IncludeTracing, "tracing", false, "wire tracing callbacks into generated chains")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cache and recompute every stage")

	return cmd
}

// runConvert executes the full pipeline and writes the artifacts.
// Directory inputs open an interactive picker over the contained exports.
func (c *CLI) runConvert(ctx context.Context, input string, opts pipeline.Options, output string, noCache, stdout bool) error {
	if info, err := os.Stat(input); err == nil && info.IsDir() {
		picked, err := pickFlow(input)
		if err != nil {
			return err
		}
		if picked == "" {
			return nil // user cancelled
		}
		input = picked
	}

	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read flow %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Converting to %s...", languageOrDefault(opts.Language)))
	spinner.Start()

	result, err := runner.Execute(ctx, raw, opts)
	if err != nil {
		spinner.StopWithError("Conversion failed")
		return convertError(err, result)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printConversionWarnings(result.Conversion)

	if stdout {
		for _, a := range result.Artifacts {
			fmt.Println(a.Content)
		}
		return nil
	}

	paths, err := writeArtifacts(result.Artifacts, output)
	if err != nil {
		return err
	}

	printSuccess("Conversion complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.ConnectionCount, result.CacheInfo.ConvertHit)
	if result.Conversion != nil && result.Conversion.Skipped > 0 {
		printDetail("%d node(s) skipped", result.Conversion.Skipped)
	}
	printNewline()
	printNextStep("Inspect the flow", "flowsmith analyze "+input)

	return nil
}

// convertError surfaces validation findings alongside the pipeline error
// so a broken flow reports every problem, not just the first.
func convertError(err error, result *pipeline.Result) error {
	if result != nil && result.Conversion != nil {
		for _, e := range result.Conversion.Errors {
			printError("%s: %s", e.Type, e.Message)
		}
	}
	return err
}

// printConversionWarnings prints non-fatal findings from the conversion.
func printConversionWarnings(res *convert.Result) {
	if res == nil {
		return
	}
	for _, w := range res.Warnings {
		if w.NodeID != "" {
			printWarning("%s (%s): %s", w.Type, w.NodeID, w.Message)
		} else {
			printWarning("%s: %s", w.Type, w.Message)
		}
	}
}

// languageOrDefault returns lang or the pipeline default when empty.
func languageOrDefault(lang string) string {
	if lang == "" {
		return pipeline.DefaultLanguage
	}
	return lang
}

// pickFlow lists the JSON exports in dir and lets the user choose one
// interactively. An empty return means the user cancelled.
func pickFlow(dir string) (string, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("no flow exports (*.json) in %s", dir)
	}
	if len(entries) == 1 {
		return entries[0], nil
	}

	model, err := tea.NewProgram(NewFlowPickerModel(entries)).Run()
	if err != nil {
		return "", err
	}
	return model.(FlowPickerModel).Selected, nil
}

// writeArtifacts writes each artifact under dir (current directory when
// empty), creating intermediate directories as needed. It returns the
// written paths in artifact order.
func writeArtifacts(artifacts []emit.Artifact, dir string) ([]string, error) {
	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		path := a.Path
		if dir != "" {
			path = filepath.Join(dir, a.Path)
		}
		if parent := filepath.Dir(path); parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, fmt.Errorf("create output directory %s: %w", parent, err)
			}
		}
		if err := os.WriteFile(path, []byte(a.Content), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
