package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowsmith/flowsmith/pkg/cache"
	"github.com/flowsmith/flowsmith/pkg/convert"
	"github.com/flowsmith/flowsmith/pkg/convert/catalog"
	"github.com/flowsmith/flowsmith/pkg/emit"
	"github.com/flowsmith/flowsmith/pkg/flow"
	"github.com/flowsmith/flowsmith/pkg/ir"
	"github.com/flowsmith/flowsmith/pkg/ir/analyze"
	"github.com/flowsmith/flowsmith/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, registry, and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Registry *convert.Registry
	Logger   *log.Logger
}

// NewRunner creates a runner with the given cache, keyer, and converter
// registry.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If registry is nil, the built-in converter catalog is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, registry *convert.Registry, logger *log.Logger) (*Runner, error) {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if registry == nil {
		var err error
		registry, err = catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("build converter catalog: %w", err)
		}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Registry: registry,
		Logger:   logger,
	}, nil
}

// Execute runs the complete parse → analyze → convert → emit pipeline
// with caching. The raw argument is the flow-builder JSON export.
func (r *Runner) Execute(ctx context.Context, raw []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Parse
	parseStart := time.Now()
	g, parseHit, err := r.ParseWithCacheInfo(ctx, raw, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Graph = g
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.ConnectionCount = g.ConnectionCount()
	result.CacheInfo.ParseHit = parseHit

	// Compute graph hash for cache keys and API responses
	if graphData, err := ir.MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(graphData)
	}

	r.Logger.Info("parsed flow",
		"nodes", g.NodeCount(),
		"connections", g.ConnectionCount(),
		"duration", result.Stats.ParseTime)

	// Stage 2: Analyze
	analyzeStart := time.Now()
	report := r.Analyze(ctx, g)
	result.Analysis = report
	result.Stats.AnalyzeTime = time.Since(analyzeStart)

	r.Logger.Info("analyzed graph",
		"complexity", report.Complexity,
		"entry_points", len(report.EntryPoints),
		"duration", result.Stats.AnalyzeTime)

	// Stage 3: Convert
	convertStart := time.Now()
	conv, convertHit, err := r.ConvertWithCacheInfo(ctx, g, result.GraphHash, opts)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	result.Conversion = conv
	result.Stats.ConvertTime = time.Since(convertStart)
	result.CacheInfo.ConvertHit = convertHit

	r.Logger.Info("converted nodes",
		"fragments", len(conv.Fragments),
		"skipped", conv.Skipped,
		"warnings", len(conv.Warnings),
		"duration", result.Stats.ConvertTime)

	// Stage 4: Emit
	emitStart := time.Now()
	artifacts, emitHit, err := r.EmitWithCacheInfo(ctx, conv, opts.GenerationContext(flowName(g)), result.GraphHash, opts)
	if err != nil {
		return nil, fmt.Errorf("emit: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.EmitTime = time.Since(emitStart)
	result.CacheInfo.EmitHit = emitHit

	r.Logger.Info("emitted artifacts",
		"files", len(artifacts),
		"duration", result.Stats.EmitTime)

	return result, nil
}

// ParseWithCacheInfo parses the flow export with caching and returns
// cache hit info.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, raw []byte, opts Options) (*ir.Graph, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	flowHash := cache.Hash(raw)
	cacheKey := r.Keyer.GraphKey(flowHash, opts.GraphKeyOpts())

	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, flowHash)
	start := time.Now()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "graph")
			if g, err := ir.ReadGraph(bytes.NewReader(data)); err == nil {
				hooks.OnParseComplete(ctx, flowHash, g.NodeCount(), time.Since(start), nil)
				return g, true, nil // Cache hit
			}
		} else {
			observability.Cache().OnCacheMiss(ctx, "graph")
		}
	}

	f, err := flow.Parse(raw)
	if err != nil {
		hooks.OnParseComplete(ctx, flowHash, 0, time.Since(start), err)
		return nil, false, err
	}
	g := ir.Build(f)

	// Cache the result
	if data, err := ir.MarshalGraph(g); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph); err == nil {
			observability.Cache().OnCacheSet(ctx, "graph", len(data))
		}
	}

	hooks.OnParseComplete(ctx, flowHash, g.NodeCount(), time.Since(start), nil)
	return g, false, nil // Cache miss
}

// Parse is a convenience wrapper that calls ParseWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Parse(ctx context.Context, raw []byte, opts Options) (*ir.Graph, error) {
	g, _, err := r.ParseWithCacheInfo(ctx, raw, opts)
	return g, err
}

// Analyze runs validation-free structural analysis over a graph. It is
// cheap enough to run uncached on every invocation.
func (r *Runner) Analyze(ctx context.Context, g *ir.Graph) *analyze.Report {
	hooks := observability.Pipeline()
	hooks.OnAnalyzeStart(ctx, g.NodeCount())
	start := time.Now()

	report := analyze.Summarize(g)

	hooks.OnAnalyzeComplete(ctx, len(report.Cycles), len(report.IsolatedNodes), time.Since(start), nil)
	return &report
}

// Validate runs full structural validation over a graph.
func (r *Runner) Validate(g *ir.Graph) *analyze.ValidationResult {
	return analyze.Validate(g)
}

// ConvertWithCacheInfo converts a graph with caching and returns cache
// hit info. The graphHash parameter keys the cache; pass the hash of the
// serialized graph (Execute computes it once and reuses it).
func (r *Runner) ConvertWithCacheInfo(ctx context.Context, g *ir.Graph, graphHash string, opts Options) (*convert.Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	if graphHash == "" {
		data, err := ir.MarshalGraph(g)
		if err != nil {
			return nil, false, fmt.Errorf("serialize graph for cache key: %w", err)
		}
		graphHash = cache.Hash(data)
	}
	cacheKey := r.Keyer.FragmentsKey(graphHash, opts.FragmentsKeyOpts())

	hooks := observability.Pipeline()
	hooks.OnConvertStart(ctx, opts.Language, g.NodeCount())
	start := time.Now()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "fragments")
			var cached convert.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				hooks.OnConvertComplete(ctx, opts.Language, len(cached.Fragments), time.Since(start), nil)
				return &cached, true, nil // Cache hit
			}
		} else {
			observability.Cache().OnCacheMiss(ctx, "fragments")
		}
	}

	orchestrator := convert.NewOrchestrator(r.Registry)
	res, err := orchestrator.Convert(g, opts.GenerationContext(flowName(g)))
	if err != nil {
		hooks.OnConvertComplete(ctx, opts.Language, 0, time.Since(start), err)
		return res, false, err
	}

	// Cache the result
	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLFragments); err == nil {
			observability.Cache().OnCacheSet(ctx, "fragments", len(data))
		}
	}

	hooks.OnConvertComplete(ctx, opts.Language, len(res.Fragments), time.Since(start), nil)
	return res, false, nil // Cache miss
}

// Convert is a convenience wrapper that calls ConvertWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Convert(ctx context.Context, g *ir.Graph, opts Options) (*convert.Result, error) {
	res, _, err := r.ConvertWithCacheInfo(ctx, g, "", opts)
	return res, err
}

// EmitWithCacheInfo serializes a conversion result into output artifacts
// with caching and returns cache hit info. The artifact cache is keyed by
// the graph hash plus emit options; an empty graphHash disables caching
// for this stage.
func (r *Runner) EmitWithCacheInfo(ctx context.Context, res *convert.Result, gctx convert.Context, graphHash string, opts Options) ([]emit.Artifact, bool, error) {
	if graphHash == "" {
		artifacts, err := r.Emit(ctx, res, gctx)
		return artifacts, false, err
	}
	cacheKey := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(gctx.ProjectName))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			var cached []emit.Artifact
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, true, nil
			}
		} else {
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
	}

	artifacts, err := r.Emit(ctx, res, gctx)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(artifacts); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, false, nil
}

// Emit serializes a conversion result into output artifacts.
func (r *Runner) Emit(ctx context.Context, res *convert.Result, gctx convert.Context) ([]emit.Artifact, error) {
	hooks := observability.Pipeline()
	hooks.OnEmitStart(ctx, gctx.Language)
	start := time.Now()

	emitter, err := emit.ForLanguage(gctx.Language)
	if err != nil {
		hooks.OnEmitComplete(ctx, gctx.Language, 0, time.Since(start), err)
		return nil, err
	}

	artifacts, err := emitter.Emit(res, gctx)
	hooks.OnEmitComplete(ctx, gctx.Language, len(artifacts), time.Since(start), err)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// flowName reads the flow's display name from graph metadata.
func flowName(g *ir.Graph) string {
	if name, ok := g.Meta()["name"].(string); ok {
		return name
	}
	return ""
}
