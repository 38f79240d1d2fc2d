package mol

import "github.com/moldraw/moldraw/pkg/geom"

// Vertex is an atom placed in the drawing plane. Neighbour and edge lists
// keep input order; code that needs a different order sorts a copy.
type Vertex struct {
	ID   int
	Atom Atom

	// Position is the current 2D placement. Meaningless until Positioned.
	Position geom.Vec
	// PreviousPosition remembers where the vertex was placed from. The
	// overlap resolver pivots terminal nudges around it.
	PreviousPosition geom.Vec
	// Angle is the direction of the incoming bond at placement time, in
	// radians. Chain alternation continues from it.
	Angle float64
	// Parent is the vertex this one was placed from, -1 for the start.
	Parent int
	// Positioned is set once the layout engine has assigned Position.
	Positioned bool
	// Drawn marks vertices that participate in overlap scoring and
	// rendering. Concealed explicit hydrogens are positioned but not drawn.
	Drawn bool

	// Neighbours lists adjacent vertex IDs in input order.
	Neighbours []int
	// Edges lists incident edge IDs in input order.
	Edges []int

	// Rings lists the IDs of the rings the vertex is a member of.
	Rings []int
	// BridgedRing is the consolidated ring the vertex belongs to while the
	// bridged ring system is collapsed, -1 otherwise.
	BridgedRing int
	// AnchoredRings lists rings whose centers follow this vertex when a
	// subtree rotation moves it.
	AnchoredRings []int

	// SubtreeDepth is scratch space for branch ordering.
	SubtreeDepth int

	// HydrogenDir points from the vertex toward a drawn stereo hydrogen
	// when the wedge was moved onto an implicit hydrogen. Zero otherwise.
	HydrogenDir geom.Vec
	// HydrogenWedge is the wedge orientation of that hydrogen.
	HydrogenWedge Wedge

	// PseudoLabel replaces the element symbol when the vertex stands in for
	// a collapsed substituent group, e.g. "OH" or "COOH".
	PseudoLabel string
	// PseudoMirror is the label read from the far end, e.g. "HOOC", for
	// groups attached on their right.
	PseudoMirror string
}

// IsTerminal reports whether the vertex has at most one neighbour.
func (v *Vertex) IsTerminal() bool {
	return len(v.Neighbours) <= 1
}

// InRing reports whether the vertex is a member of any ring.
func (v *Vertex) InRing() bool {
	return len(v.Rings) > 0 || v.BridgedRing >= 0
}

// InRingWith reports whether both vertices share at least one ring.
func (v *Vertex) InRingWith(w *Vertex) bool {
	for _, a := range v.Rings {
		for _, b := range w.Rings {
			if a == b {
				return true
			}
		}
	}
	return v.BridgedRing >= 0 && v.BridgedRing == w.BridgedRing
}

// SetPosition assigns a placement and records the previous one.
func (v *Vertex) SetPosition(p geom.Vec) {
	v.PreviousPosition = v.Position
	v.Position = p
	v.Positioned = true
}

// NeighboursWithout returns the neighbour IDs with one vertex excluded,
// preserving order.
func (v *Vertex) NeighboursWithout(exclude int) []int {
	out := make([]int, 0, len(v.Neighbours))
	for _, n := range v.Neighbours {
		if n != exclude {
			out = append(out, n)
		}
	}
	return out
}

// AnchorRing records that ring id should follow this vertex's subtree.
// Duplicate anchors are ignored.
func (v *Vertex) AnchorRing(id int) {
	for _, r := range v.AnchoredRings {
		if r == id {
			return
		}
	}
	v.AnchoredRings = append(v.AnchoredRings, id)
}
