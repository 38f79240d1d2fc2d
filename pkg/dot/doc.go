// Package dot renders molecular graphs as Graphviz diagrams.
//
// # Overview
//
// This package exists for layout debugging: it shows the connectivity the
// layout engine works from, independent of the geometry the engine
// produces. Ring membership is coloured and bond orders appear as parallel
// edges, so a wrong drawing can quickly be split into "bad perception" and
// "bad placement".
//
// # Usage
//
// Convert a snapshot (or a bare graph, before layout) to DOT, then render:
//
//	src := dot.FromSnapshot(s, dot.Options{})
//	svg, err := dot.RenderSVG(src)
//
// # DOT Format
//
// The generated DOT is an undirected graph that can be:
//
//   - Rendered directly via [RenderSVG] or [RenderPNG]
//   - Saved and processed with external Graphviz tools
//   - Customized before rendering
//
// With [Options.Positions] set, nodes carry pos attributes holding the
// drawing coordinates; external `neato -n2` honours them, so the diagram
// reproduces the actual drawing geometry.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process
// rendering.
package dot
