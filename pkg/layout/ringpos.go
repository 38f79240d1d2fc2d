package layout

import (
	"cmp"
	"math"
	"slices"

	"github.com/moldraw/moldraw/pkg/geom"
	"github.com/moldraw/moldraw/pkg/mol"
)

// placeRingSystem lays out the ring system reachable from a freshly placed
// ring vertex. The first ring center sits one circumradius beyond the vertex
// along the incoming bond; connected rings follow by junction recursion and
// exocyclic branches are handed back to the chain walk.
func (e *Engine) placeRingSystem(v, prev *mol.Vertex, stack *[]frame) {
	r := e.ringToPlace(v)
	if r == nil {
		return
	}
	var incoming geom.Vec
	if prev != nil {
		incoming = v.Position.Sub(prev.Position).Normalize()
	}
	if incoming.LengthSq() == 0 {
		incoming = geom.Unit(v.Angle)
	}
	center := v.Position.Add(incoming.Mul(geom.Circumradius(e.opts.BondLength, r.Size())))
	e.placeRing(r, center, v, stack)
}

// ringToPlace picks the ring to lay out from v: its bridged ring when it has
// one, otherwise its lowest-ID unpositioned ring.
func (e *Engine) ringToPlace(v *mol.Vertex) *mol.Ring {
	if v.BridgedRing >= 0 {
		if r := e.g.Ring(v.BridgedRing); r != nil && !r.Positioned {
			return r
		}
	}
	var pick *mol.Ring
	for _, rid := range v.Rings {
		r := e.g.Ring(rid)
		if r == nil || r.Positioned {
			continue
		}
		if pick == nil || r.ID < pick.ID {
			pick = r
		}
	}
	return pick
}

// placeRing positions a ring around center starting at an already placed
// member, then recurses into its unpositioned neighbour rings and pushes
// frames for exocyclic branches.
func (e *Engine) placeRing(r *mol.Ring, center geom.Vec, start *mol.Vertex, stack *[]frame) {
	if r.Positioned {
		return
	}
	r.Center = center
	r.Positioned = true
	start.AnchorRing(r.ID)

	if r.IsBridged {
		e.layoutBridged(r, center, start)
	} else {
		e.walkPolygon(r, center, start)
	}

	// Fused junctions first (two shared vertices), then spiro, then anything
	// left, each ordered by neighbour ring ID.
	conns := e.g.ConnectionsOf(r.ID)
	slices.SortStableFunc(conns, func(a, b *mol.RingConnection) int {
		if c := cmp.Compare(len(b.Shared), len(a.Shared)); c != 0 {
			return c
		}
		return cmp.Compare(a.Other(r.ID), b.Other(r.ID))
	})
	for _, rc := range conns {
		other := e.g.Ring(rc.Other(r.ID))
		if other == nil || other.Positioned {
			continue
		}
		e.placeNeighbourRing(r, other, rc, stack)
	}

	// Unpositioned non-ring neighbours become new branch roots.
	var pending []frame
	for _, m := range r.MembersFrom(start.ID) {
		v := e.g.Vertices[m]
		for _, n := range v.Neighbours {
			w := e.g.Vertices[n]
			if w.Positioned || w.InRingWith(v) {
				continue
			}
			pending = append(pending, frame{
				vertex:   n,
				previous: m,
				angle:    math.NaN(),
				sign:     1,
			})
		}
	}
	for i := len(pending) - 1; i >= 0; i-- {
		*stack = append(*stack, pending[i])
	}
}

// walkPolygon places the ring members on a regular polygon, walking the
// cycle from start and skipping members another ring already placed. The
// walk direction follows the first positioned member it meets, so fused
// rings continue the existing geometry instead of folding back onto it.
func (e *Engine) walkPolygon(r *mol.Ring, center geom.Vec, start *mol.Vertex) {
	radius := geom.Circumradius(e.opts.BondLength, r.Size())
	step := geom.CentralAngle(r.Size())
	members := r.MembersFrom(start.ID)
	base := start.Position.Sub(center).Angle()

	dir := 1.0
	for k := 1; k < len(members); k++ {
		v := e.g.Vertices[members[k]]
		if !v.Positioned {
			continue
		}
		plus := center.Add(geom.Unit(base + float64(k)*step).Mul(radius))
		minus := center.Add(geom.Unit(base - float64(k)*step).Mul(radius))
		if minus.DistanceSq(v.Position) < plus.DistanceSq(v.Position) {
			dir = -1
		}
		break
	}

	for k, m := range members {
		v := e.g.Vertices[m]
		if v.Positioned {
			continue
		}
		ang := base + dir*float64(k)*step
		v.SetPosition(center.Add(geom.Unit(ang).Mul(radius)))
		v.Angle = ang
	}
}

// placeNeighbourRing lays out a ring joined to an already placed one. Fused
// rings reflect across the shared edge away from the placed center; spiro
// rings extend along the ray from the placed center through the shared
// vertex. Larger junctions only remain when consolidation was impossible and
// fall back to the spiro rule.
func (e *Engine) placeNeighbourRing(placed, next *mol.Ring, rc *mol.RingConnection, stack *[]frame) {
	switch len(rc.Shared) {
	case 2:
		u := e.g.Vertices[rc.Shared[0]]
		w := e.g.Vertices[rc.Shared[1]]
		mid := u.Position.Lerp(w.Position, 0.5)
		n1, n2 := geom.Normals(u.Position, w.Position)
		apo := geom.Apothem(geom.Circumradius(e.opts.BondLength, next.Size()), next.Size())
		c1 := mid.Add(n1.Mul(apo))
		c2 := mid.Add(n2.Mul(apo))
		center := c1
		if c2.DistanceSq(placed.Center) > c1.DistanceSq(placed.Center) {
			center = c2
		}
		e.placeRing(next, center, u, stack)
	case 1:
		s := e.g.Vertices[rc.Shared[0]]
		dir := s.Position.Sub(placed.Center).Normalize()
		if dir.LengthSq() == 0 {
			dir = geom.Unit(s.Angle)
		}
		center := s.Position.Add(dir.Mul(geom.Circumradius(e.opts.BondLength, next.Size())))
		e.placeRing(next, center, s, stack)
	default:
		e.log.Warn("unconsolidated bridge junction", "rings", []int{placed.ID, next.ID})
		s := e.g.Vertices[rc.Shared[0]]
		dir := s.Position.Sub(placed.Center).Normalize()
		if dir.LengthSq() == 0 {
			dir = geom.Unit(s.Angle)
		}
		center := s.Position.Add(dir.Mul(geom.Circumradius(e.opts.BondLength, next.Size())))
		e.placeRing(next, center, s, stack)
	}
}
