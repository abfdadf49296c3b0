package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowsmith/flowsmith/pkg/ir/analyze"
	"github.com/flowsmith/flowsmith/pkg/pipeline"
)

// validateCommand creates the validate command for structural flow checks.
func (c *CLI) validateCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "validate [flow.json]",
		Short: "Validate a flow export without generating code",
		Long: `Validate a flow-builder JSON export without generating code.

Validation checks that every connection endpoint resolves to a node,
that node ids are unique, that required parameters are set, and that
the flow contains no cycles. Isolated nodes are reported as warnings.

The command exits non-zero when any error is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args[0], noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runValidate parses the flow and prints every validation finding.
func (c *CLI) runValidate(ctx context.Context, input string, noCache bool) error {
	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read flow %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, err := runner.Parse(ctx, raw, pipeline.Options{Logger: c.Logger})
	if err != nil {
		return fmt.Errorf("parse flow: %w", err)
	}

	result := runner.Validate(g)
	printValidation(result)

	if len(result.Errors) > 0 {
		return fmt.Errorf("flow is invalid: %d error(s)", len(result.Errors))
	}
	printSuccess("Flow is valid")
	printStats(g.NodeCount(), g.ConnectionCount(), false)
	return nil
}

// printValidation prints errors, warnings, and suggestions from a
// validation result.
func printValidation(result *analyze.ValidationResult) {
	for _, e := range result.Errors {
		printError("%s", findingMessage(e))
	}
	for _, w := range result.Warnings {
		printWarning("%s", findingMessage(w))
	}
	for _, s := range result.Suggestions {
		printDetail("hint: %s", s)
	}
}

// findingMessage formats one finding with its locating detail.
func findingMessage(e analyze.ValidationError) string {
	switch {
	case e.ParameterName != "":
		return fmt.Sprintf("%s: %s (node %s, parameter %q)", e.Type, e.Message, e.NodeID, e.ParameterName)
	case e.NodeID != "":
		return fmt.Sprintf("%s: %s (node %s)", e.Type, e.Message, e.NodeID)
	case e.ConnectionID != "":
		return fmt.Sprintf("%s: %s (connection %s)", e.Type, e.Message, e.ConnectionID)
	default:
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
}
