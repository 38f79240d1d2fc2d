// Package pkg provides the core libraries for Moldraw molecule depiction.
//
// # Overview
//
// Moldraw turns SMILES notation into deterministic 2-D structure diagrams in
// the style of chemistry textbooks. The pkg directory is organized into four
// main areas:
//
//  1. Chemistry model - SMILES parsing, molecular graphs, ring perception
//  2. Geometry - coordinate generation and snapshot serialization
//  3. Rendering - SVG, PNG, and Graphviz DOT output with themes
//  4. Infrastructure - pipeline orchestration, caching, gallery, regression
//
// # Architecture
//
// The typical data flow through Moldraw:
//
//	SMILES string
//	         ↓
//	    [smiles] package (parse into a molecular graph)
//	         ↓
//	    [ring] package (perceive the smallest set of smallest rings)
//	         ↓
//	    [layout] package (assign 2-D coordinates, wedges, cis/trans)
//	         ↓
//	    [render] / [dot] packages (draw the positioned snapshot)
//	         ↓
//	    SVG/PNG/JSON output
//
// # Quick Start
//
// Parse a molecule and render it to SVG:
//
//	import (
//	    "context"
//	    "github.com/moldraw/moldraw/pkg/layout"
//	    "github.com/moldraw/moldraw/pkg/render"
//	    "github.com/moldraw/moldraw/pkg/smiles"
//	)
//
//	// 1. Parse SMILES into a molecular graph
//	g, _ := smiles.Parse("CC(=O)Oc1ccccc1C(=O)O")
//
//	// 2. Compute 2-D coordinates
//	eng, _ := layout.New(g, layout.DefaultOptions())
//	snap, _ := eng.Run(context.Background())
//
//	// 3. Render to SVG
//	svg := render.RenderSVG(snap)
//
// # Main Packages
//
// ## Chemistry Model
//
// [smiles] - SMILES parser covering organic-subset and bracket atoms, ring
// closures, branches, aromatic notation, charges, isotopes, and tetrahedral
// and directional (cis/trans) stereo markers.
//
// [mol] - Molecular graph shared by every stage: vertices with element,
// charge, isotope, and hydrogen count, edges with bond order and wedge
// direction, plus implicit-hydrogen and formula computation.
//
// [ring] - Ring perception. Finds the smallest set of smallest rings and
// groups fused and bridged systems for the layout engine.
//
// ## Geometry
//
// [geom] - Small 2-D vector and polyline helpers used by layout and
// rendering.
//
// [layout] - Coordinate generation. Rings are placed as regular polygons
// (bridged systems through Kamada-Kawai refinement), chains by tree walk,
// then overlap resolution, finetuning, and stereo annotation produce a
// deterministic [layout.Snapshot].
//
// ## Rendering
//
// [render] - SVG and PNG renderers for positioned snapshots with TOML-based
// themes, optional scaling, and ring-center debug markers.
//
// [dot] - Graphviz DOT export of molecular graphs and snapshots for
// debugging connectivity and coordinates, with optional SVG/PNG rendering.
//
// [fonts] - Typography defaults shared by the renderers.
//
// ## Infrastructure
//
// [pipeline] - Complete depiction pipeline (parse → perceive → layout →
// render) used by CLI, API, and TUI. Layout snapshots and rendered artifacts
// are cached independently.
//
// [cache] - Cache backends: filesystem for the CLI, Redis for servers, and
// a null cache for tests and --no-cache runs.
//
// [gallery] - Saved-drawing store with MongoDB and in-memory
// implementations.
//
// [regress] - Geometry regression harness. Runs a corpus of molecules
// against SQLite baselines and reports position and overlap drift.
//
// [observability] - Process-wide hook points the API server uses to publish
// Prometheus metrics without coupling the pipeline to a metrics registry.
//
// [buildinfo] - Build-time version information set via ldflags.
//
// # Common Workflows
//
// Run the full pipeline with caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	defer runner.Close()
//	res, _ := runner.Execute(ctx, pipeline.Options{
//	    Source:  "c1ccccc1",
//	    Formats: []string{pipeline.FormatSVG},
//	})
//
// Render with a custom theme:
//
//	theme, _ := render.LoadTheme("dark.toml")
//	svg := render.RenderSVG(snap, render.WithTheme(theme))
//
// Check layout geometry against baselines:
//
//	store, _ := regress.OpenBaselines("baselines.db")
//	h := regress.NewHarness(store, logger)
//	sum, _ := h.Run(ctx, regress.DefaultCases(), regress.RunOptions{})
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/layout/...     # Specific package
//	go test -run Example         # Examples only
//
// [smiles]: https://pkg.go.dev/github.com/moldraw/moldraw/pkg/smiles
// [mol]: https://pkg.go.dev/github.com/moldraw/moldraw/pkg/mol
// [ring]: https://pkg.go.dev/github.com/moldraw/moldraw/pkg/ring
// [geom]: https://pkg.go.dev/github.com/moldraw/moldraw/pkg/geom
// [layout]: https://pkg.go.dev/github.com/moldraw/moldraw/pkg/layout
// [layout.Snapshot]: https://pkg.go.dev/github.com/moldraw/moldraw/pkg/layout#Snapshot
// [render]: https://pkg.go.dev/github.com/moldraw/moldraw/pkg/render
// [dot]: https://pkg.go.dev/github.com/moldraw/moldraw/pkg/dot
// [fonts]: https://pkg.go.dev/github.com/moldraw/moldraw/pkg/fonts
// [pipeline]: https://pkg.go.dev/github.com/moldraw/moldraw/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/moldraw/moldraw/pkg/cache
// [gallery]: https://pkg.go.dev/github.com/moldraw/moldraw/pkg/gallery
// [regress]: https://pkg.go.dev/github.com/moldraw/moldraw/pkg/regress
// [observability]: https://pkg.go.dev/github.com/moldraw/moldraw/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/moldraw/moldraw/pkg/buildinfo
package pkg
