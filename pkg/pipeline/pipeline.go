// Package pipeline provides the core conversion pipeline for Flowsmith.
//
// This package implements the complete parse → analyze → convert → emit
// pipeline that can be used by CLI, API, and worker components. By
// centralizing this logic, we ensure consistent behavior across all entry
// points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Parse: Decode the flow export and build the IR graph
//  2. Analyze: Validate structure and classify complexity
//  3. Convert: Dispatch nodes to converters and assemble fragments
//  4. Emit: Serialize fragments into source files and a manifest
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner, err := pipeline.NewRunner(cache, nil, nil, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	opts := pipeline.Options{
//	    Language:    "python",
//	    ProjectName: "support-bot",
//	}
//	result, err := runner.Execute(ctx, raw, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, a := range result.Artifacts {
//	    // write a.Path / a.Content
//	}
//
// Run individual stages:
//
//	// Parse only
//	g, err := runner.Parse(ctx, raw, opts)
//
//	// Convert an existing graph
//	res, err := runner.Convert(ctx, g, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowsmith/flowsmith/pkg/cache"
	"github.com/flowsmith/flowsmith/pkg/convert"
	"github.com/flowsmith/flowsmith/pkg/emit"
	"github.com/flowsmith/flowsmith/pkg/ir"
	"github.com/flowsmith/flowsmith/pkg/ir/analyze"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Worker
// =============================================================================

const (
	// DefaultLanguage is the default target language.
	DefaultLanguage = convert.LangPython

	// GraphSchemaVersion invalidates cached graphs when the IR
	// serialization changes shape.
	GraphSchemaVersion = 1
)

// ValidLanguages is the set of supported target languages.
var ValidLanguages = map[string]bool{
	convert.LangPython:     true,
	convert.LangTypeScript: true,
}

// ValidateLanguage checks that a target language is valid.
func ValidateLanguage(language string) error {
	if !ValidLanguages[language] {
		return fmt.Errorf("invalid language: %q (must be one of: python, typescript)", language)
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the conversion pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Generation options
	Language        string `json:"language"`
	ProjectName     string `json:"project_name,omitempty"`
	IncludeComments bool   `json:"include_comments,omitempty"`
	IncludeTracing  bool   `json:"include_tracing,omitempty"`

	// Refresh bypasses cached results and recomputes every stage.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Language == "" {
		o.Language = DefaultLanguage
	}
	if err := ValidateLanguage(o.Language); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// GenerationContext builds the per-run converter context from the
// options. ProjectName falls back to the flow's own name when set.
func (o *Options) GenerationContext(flowName string) convert.Context {
	name := o.ProjectName
	if name == "" {
		name = flowName
	}
	return convert.Context{
		Language:        o.Language,
		ProjectName:     name,
		IncludeComments: o.IncludeComments,
		IncludeTracing:  o.IncludeTracing,
	}
}

// GraphKeyOpts returns cache key options for parsed-graph caching.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{SchemaVersion: GraphSchemaVersion}
}

// FragmentsKeyOpts returns cache key options for conversion results.
func (o *Options) FragmentsKeyOpts() cache.FragmentsKeyOpts {
	return cache.FragmentsKeyOpts{
		Language:        o.Language,
		IncludeComments: o.IncludeComments,
		IncludeTracing:  o.IncludeTracing,
	}
}

// ArtifactKeyOpts returns cache key options for emitted artifacts.
func (o *Options) ArtifactKeyOpts(projectName string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Language:    o.Language,
		ProjectName: projectName,
	}
}

// =============================================================================
// Result - Pipeline Outputs
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the parsed IR graph.
	Graph *ir.Graph

	// GraphHash is the content hash of the serialized graph.
	GraphHash string

	// Analysis is the structural report for the graph.
	Analysis *analyze.Report

	// Conversion carries fragments, dependencies, warnings, and errors.
	Conversion *convert.Result

	// Artifacts are the emitted output files.
	Artifacts []emit.Artifact

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount       int
	ConnectionCount int
	ParseTime       time.Duration
	AnalyzeTime     time.Duration
	ConvertTime     time.Duration
	EmitTime        time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ParseHit   bool // Whether the parsed graph came from cache
	ConvertHit bool // Whether the conversion result came from cache
	EmitHit    bool // Whether the emitted artifacts came from cache
}
