// Package mol defines the molecular graph model shared by the reader, the
// ring perception service, the layout engine, and the renderers.
//
// # Overview
//
// A molecule is a [Graph] of [Vertex] values (atoms) connected by [Edge]
// values (bonds). Vertices and edges carry dense integer IDs assigned in
// input order; all algorithms that walk the graph iterate slices in ID or
// input order, never map order, so results are reproducible run to run.
//
// Ring perception decorates the graph with [Ring] and [RingConnection]
// values. The layout engine then mutates vertex positions, ring centers and
// stereo annotations in place. Rings can be temporarily consolidated into
// synthetic bridged rings during layout; the original ring system is restored
// before the result is published.
//
// # Hydrogens
//
// Hydrogen counts on bare organic-subset atoms are implicit and derived from
// the element valence table via [Graph.ImplicitHydrogens]. Bracket atoms
// carry their hydrogen count explicitly and are never derived.
package mol
