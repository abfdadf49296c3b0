// Package pkg provides the core libraries for Flowsmith flow-to-code conversion.
//
// # Overview
//
// Flowsmith transforms visual flow-builder JSON exports into standalone,
// runnable programs. The pkg directory is organized into five main areas:
//
//  1. [flow] / [ir] - Parsing exports and the intermediate graph representation
//  2. [ir/analyze] - Structural analysis (validation, cycles, critical path)
//  3. [convert] - Node-to-code conversion through the converter registry
//  4. [emit] - Artifact assembly (program files plus dependency manifests)
//  5. [pipeline] - Orchestration with caching (parse → analyze → convert → emit)
//
// # Architecture
//
// The typical data flow through Flowsmith:
//
//	Flow-builder JSON export
//	         ↓
//	    [flow] package (parse raw export)
//	         ↓
//	    [ir] package (graph structure + adjacency)
//	         ↓
//	    [ir/analyze] package (validation + structure report)
//	         ↓
//	    [convert] package (registry-driven code fragments)
//	         ↓
//	    [emit] package (flow.py + requirements.txt, flow.ts + package.json)
//
// # Quick Start
//
// Convert a flow export to Python:
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/flowsmith/flowsmith/pkg/cache"
//	    "github.com/flowsmith/flowsmith/pkg/pipeline"
//	)
//
//	raw, _ := os.ReadFile("support-bot.json")
//	runner, _ := pipeline.NewRunner(cache.NewNullCache(), nil, nil, nil)
//	defer runner.Close()
//
//	result, err := runner.Execute(context.Background(), raw, pipeline.Options{
//	    Language: pipeline.DefaultLanguage,
//	})
//
// Supporting packages: [cache] (file, Redis, MongoDB, and null backends),
// [errors] (coded domain errors), [observability] (pipeline, cache, and
// server hooks), [viz] (Graphviz node-link diagrams), and [buildinfo]
// (version metadata).
package pkg
