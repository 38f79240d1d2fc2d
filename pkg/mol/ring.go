package mol

import (
	"slices"

	"github.com/moldraw/moldraw/pkg/geom"
)

// Ring is a perceived cycle. Members are stored in cycle-adjacent order, so
// walking the slice (wrapping at the end) follows the ring perimeter.
type Ring struct {
	ID int
	// Members lists the member vertex IDs in cycle order.
	Members []int
	// Neighbours lists the IDs of rings sharing at least one vertex.
	Neighbours []int

	// Center is the centroid of the positioned members.
	Center geom.Vec
	// Positioned is set once the ring polygon has been placed.
	Positioned bool

	// IsFused is set when the ring shares exactly one edge with another.
	IsFused bool
	// IsSpiro is set when the ring shares exactly one vertex with another.
	IsSpiro bool
	// IsBridged marks a synthetic ring standing in for a bridged system.
	IsBridged bool
	// IsPartOfBridged marks a source ring consumed by a bridged ring. Such
	// rings are detached from layout until the system is restored.
	IsPartOfBridged bool

	// Subrings holds clones of the source rings a bridged ring replaced,
	// used to propagate centers back on restore.
	Subrings []*Ring
	// BridgeNodes lists bridgehead members that still anchor substituents
	// outside the system. Only set on bridged rings.
	BridgeNodes []int
	// InnerMembers lists bridgehead members with no outside neighbour; the
	// force layout seeds them near the ring center. Only set on bridged
	// rings.
	InnerMembers []int
}

// Size returns the member count.
func (r *Ring) Size() int {
	return len(r.Members)
}

// Contains reports whether v is a member.
func (r *Ring) Contains(v int) bool {
	return slices.Contains(r.Members, v)
}

// First returns the lowest member ID. It is the deterministic anchor choice
// when no neighbour constrains the ring.
func (r *Ring) First() int {
	return slices.Min(r.Members)
}

// MembersFrom returns the members rotated so the cycle starts at start,
// preserving cycle direction. When start is not a member the original order
// is returned.
func (r *Ring) MembersFrom(start int) []int {
	i := slices.Index(r.Members, start)
	if i < 0 {
		return slices.Clone(r.Members)
	}
	out := make([]int, 0, len(r.Members))
	out = append(out, r.Members[i:]...)
	out = append(out, r.Members[:i]...)
	return out
}

// UpdateCenter recomputes the centroid from the positioned members.
func (r *Ring) UpdateCenter(g *Graph) {
	pts := make([]geom.Vec, 0, len(r.Members))
	for _, m := range r.Members {
		if v := g.Vertices[m]; v.Positioned {
			pts = append(pts, v.Position)
		}
	}
	r.Center = geom.Centroid(pts)
}

// Clone returns a deep copy. Subrings are cloned recursively.
func (r *Ring) Clone() *Ring {
	c := *r
	c.Members = slices.Clone(r.Members)
	c.Neighbours = slices.Clone(r.Neighbours)
	c.BridgeNodes = slices.Clone(r.BridgeNodes)
	c.InnerMembers = slices.Clone(r.InnerMembers)
	c.Subrings = make([]*Ring, len(r.Subrings))
	for i, s := range r.Subrings {
		c.Subrings[i] = s.Clone()
	}
	return &c
}

// RingConnection records the shared vertices of two rings. Shared is kept
// sorted.
type RingConnection struct {
	A, B   int
	Shared []int
}

// IsBridge reports whether the two rings share more than two vertices, the
// signature of a bridged system.
func (rc *RingConnection) IsBridge() bool {
	return len(rc.Shared) > 2
}

// Involves reports whether the connection touches ring id.
func (rc *RingConnection) Involves(id int) bool {
	return rc.A == id || rc.B == id
}

// Other returns the connected ring that is not id, or -1.
func (rc *RingConnection) Other(id int) int {
	switch id {
	case rc.A:
		return rc.B
	case rc.B:
		return rc.A
	default:
		return -1
	}
}

// Clone returns a copy with its own Shared slice.
func (rc *RingConnection) Clone() *RingConnection {
	return &RingConnection{A: rc.A, B: rc.B, Shared: slices.Clone(rc.Shared)}
}
