// Package layout computes 2D coordinates for molecular graphs.
//
// The entry point is [Engine]: construct one per molecule with [New] and call
// [Engine.Run]. The engine owns every piece of per-run mutable state, so
// engines are single-use but independent engines can run concurrently.
//
// # Stages
//
// Run executes a fixed stage order:
//
//  1. Consolidate bridged ring systems into synthetic rings (the original
//     rings are snapshotted first).
//  2. Position all vertices with an explicit work stack: chains zig-zag,
//     rings are placed as regular polygons, bridged systems relax under a
//     Kamada-Kawai model.
//  3. Restore the snapshotted rings and propagate the freshly computed
//     centers.
//  4. Resolve overlaps in four passes of increasing precision: primary ring
//     substituent rotation, iterative bond rotation, terminal nudges, and a
//     bounded fine-tune search. No accepted move may increase the total
//     overlap score.
//  5. Assign stereo wedges and correct cis/trans double-bond geometry.
//  6. Compact terminal substituent groups and rotate the drawing into its
//     widest orientation.
//
// The result is an immutable [Snapshot] that rendering, caching, and storage
// consume. The engine never rejects a parseable molecule: constraints that
// cannot be satisfied are logged and the best available geometry is kept.
package layout
