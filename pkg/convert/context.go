package convert

import (
	"fmt"
)

// Context is the per-run generation configuration, passed by value into
// every Converter call and never mutated by converters. A fresh Context
// is created per conversion invocation.
type Context struct {
	// Language selects the target language (LangPython or LangTypeScript).
	Language string `json:"language"`

	// ProjectName labels the generated artifacts (file headers, manifest
	// name). Defaults to the flow name when empty.
	ProjectName string `json:"project_name,omitempty"`

	// IncludeComments adds per-node comments to generated code.
	IncludeComments bool `json:"include_comments,omitempty"`

	// IncludeTracing wires tracing callbacks into the generated
	// orchestration objects.
	IncludeTracing bool `json:"include_tracing,omitempty"`
}

// Validate checks the context and applies defaults.
func (c *Context) Validate() error {
	switch c.Language {
	case "":
		c.Language = LangPython
	case LangPython, LangTypeScript:
	default:
		return fmt.Errorf("invalid language: %q (must be one of: %s, %s)", c.Language, LangPython, LangTypeScript)
	}
	if c.ProjectName == "" {
		c.ProjectName = "flow"
	}
	return nil
}
