// Package render turns layout snapshots into images.
//
// # Overview
//
// Renderers consume only the immutable [layout.Snapshot], never the live
// molecular graph, so a cached snapshot renders byte-identically to a
// fresh one. Two sinks exist:
//
//   - [RenderSVG]: the reference output. Vector bonds, wedge polygons,
//     hashed wedges, subscripted labels and per-element colours.
//   - [RenderPNG]: a raster preview drawn with fogleman/gg. Labels are
//     plain text; pass a font file for scalable type.
//
// # Themes
//
// Colours and proportions come from a [Theme]. [Default] and [Dark] are
// built in; [LoadTheme] reads a TOML file whose absent fields inherit
// the defaults:
//
//	background = "#FFF8E7"
//	[elements]
//	N = "#0000CC"
//
// # Usage
//
//	svg := render.RenderSVG(snap, render.WithTheme(render.Dark()))
//	png, err := render.RenderPNG(snap, render.WithMaxSize(512))
//
// Bond lines stop at the edge of label clearance boxes, double bonds in
// rings draw their shortened inner line toward the ring center, and
// aromatic bonds dash it. All geometry derives from the snapshot's bond
// length, spacing and short-bond metadata, so renders track the layout
// options that produced the drawing.
//
// [layout.Snapshot]: github.com/moldraw/moldraw/pkg/layout#Snapshot
package render
