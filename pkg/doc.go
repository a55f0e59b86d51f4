// Package pkg provides the core libraries for Impactgraph research-impact
// visualization.
//
// # Overview
//
// Impactgraph renders funding-to-treatment networks: how a research grant's
// publications ripple through the literature and end in an approved
// treatment. The pkg directory is organized into five main areas:
//
//  1. [graph] - Domain model (tables, network loading, integrity checks)
//  2. [layout] / [scene] - Geometry and trace assembly
//  3. [render] - Output formats (figure JSON, SVG, Graphviz DOT, PDF/PNG)
//  4. [store] / [cache] - Persistence backends and artifact caching
//  5. [pipeline] - Orchestration (load → compose → render)
//
// # Architecture
//
// The typical data flow through Impactgraph:
//
//	Store (memory, CSV, SQLite, MongoDB)
//	         ↓
//	    [graph] package (filter one network, validate integrity)
//	         ↓
//	    [layout] package (role bands, symmetric spread)
//	         ↓
//	    [scene] package (node and edge traces, styling, summary)
//	         ↓
//	    [render] packages (figure JSON, SVG, DOT, PDF, PNG)
//
// Every stage result is cached content-addressed: cache keys derive from
// table fingerprints and option digests, so edits to the data invalidate
// exactly the artifacts they affect. The [pipeline] package wires the
// stages and the caching together; both the CLI and the HTTP API drive
// that one runner.
//
// # Quick Start
//
// Load a network and render a scene with the built-in theme:
//
//	import (
//	    "context"
//	    "github.com/impactgraph/impactgraph/pkg/gen"
//	    "github.com/impactgraph/impactgraph/pkg/pipeline"
//	    "github.com/impactgraph/impactgraph/pkg/store"
//	)
//
//	tables, _ := gen.Generate(gen.Options{Seed: gen.DefaultSeed})
//	runner := pipeline.NewRunner(store.NewMemory(tables), nil, nil, nil)
//	defer runner.Close()
//
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    NetworkID: 1,
//	    Formats:   []string{pipeline.FormatSVG},
//	})
//	if err != nil {
//	    // handle error
//	}
//	svg := result.Artifacts[pipeline.FormatSVG]
//
// # Supporting Packages
//
//   - [errors]: coded errors shared by every layer
//   - [style]: marker and stroke tables, TOML theme loading
//   - [gen]: deterministic demo data generation
//   - [report]: portfolio metrics across all networks
//   - [watch]: filesystem watching for CSV stores
//   - [observability]: optional instrumentation hooks
//   - [buildinfo]: version metadata injected at build time
package pkg
