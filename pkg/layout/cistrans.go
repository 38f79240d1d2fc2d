package layout

import (
	"maps"
	"slices"

	"github.com/moldraw/moldraw/pkg/geom"
	"github.com/moldraw/moldraw/pkg/mol"
)

// sidedSub is a double bond substituent together with its encoded side:
// -1 below the bond axis, +1 above.
type sidedSub struct {
	vertex int
	side   int
}

// flipPlan mirrors the branch entered at root from exclude across the
// double bond axis.
type flipPlan struct {
	root    int
	exclude int
}

// correctCisTrans verifies every constrained double bond against the drawn
// geometry and mirrors substituent branches until the drawing honours the
// directional single bonds recorded during parsing. Bonds that cannot be
// satisfied are logged and left best-effort.
func (e *Engine) correctCisTrans() {
	marked := e.buildOrientationMaps()
	if len(marked) == 0 {
		return
	}
	for _, group := range e.stereoGroups(marked) {
		e.resolveStereoGroup(group)
	}
}

// buildOrientationMaps derives the substituent pair relations of every
// double bond flanked by directional single bonds on both termini and
// returns the IDs of the bonds that ended up constrained, ascending.
func (e *Engine) buildOrientationMaps() []int {
	var marked []int
	for _, ed := range e.g.Edges {
		if ed.Bond != mol.BondDouble {
			continue
		}
		sourceSides := e.terminusSides(ed.Source, ed.Target)
		targetSides := e.terminusSides(ed.Target, ed.Source)
		if len(sourceSides) == 0 || len(targetSides) == 0 {
			continue
		}
		for _, a := range sourceSides {
			for _, b := range targetSides {
				rel := mol.RelationTrans
				if a.side == b.side {
					rel = mol.RelationCis
				}
				if !ed.CisTrans.SetRelation(a.vertex, b.vertex, rel) {
					e.log.Warn("conflicting cis/trans constraint",
						"edge", ed.ID, "a", a.vertex, "b", b.vertex)
					e.stats.StereoWarnings++
				}
			}
		}
		if ed.CisTrans.Marked {
			marked = append(marked, ed.ID)
		}
	}
	return marked
}

// terminusSides returns the substituents of terminus t, excluding the other
// double bond terminus, with their encoded side. A plain-bonded substituent
// is inferred opposite to its marked sibling, unless its bond continues a
// ring: a constraint on a ring-perimeter atom could only be satisfied by
// moving the ring itself, which the flip planner never does. A terminus
// without any directional bond returns nil.
func (e *Engine) terminusSides(t, other int) []sidedSub {
	var subs []sidedSub
	plain := -1
	for _, n := range e.g.Vertices[t].Neighbours {
		if n == other {
			continue
		}
		ed := e.g.EdgeBetween(t, n)
		if ed == nil {
			continue
		}
		if !ed.Bond.IsDirectional() {
			if plain < 0 && !ed.InRing {
				plain = n
			}
			continue
		}
		subs = append(subs, sidedSub{vertex: n, side: directionalSide(ed, t)})
	}
	if len(subs) == 0 {
		return nil
	}
	if len(subs) == 2 && subs[0].side == subs[1].side {
		e.log.Warn("directional bonds claim the same side", "vertex", t)
		e.stats.StereoWarnings++
		subs = subs[:1]
	}
	if len(subs) == 1 && plain >= 0 {
		subs = append(subs, sidedSub{vertex: plain, side: -subs[0].side})
	}
	return subs
}

// directionalSide resolves the side encoded by a directional bond for the
// substituent opposite terminus t. The fragment "a/t" reads a below the
// double bond and "t/a" reads a above, with "\" mirrored.
func directionalSide(ed *mol.Edge, t int) int {
	below := ed.Target == t
	if ed.Bond == mol.BondDown {
		below = !below
	}
	if below {
		return -1
	}
	return 1
}

// stereoGroups partitions the constrained bonds into maximal runs joined by
// a shared single bond, so conjugated chains are settled together. Groups
// and their members come out in ascending edge ID order.
func (e *Engine) stereoGroups(marked []int) [][]int {
	parent := make(map[int]int, len(marked))
	for _, id := range marked {
		parent[id] = id
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if rb < ra {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}

	isMarked := make(map[int]bool, len(marked))
	for _, id := range marked {
		isMarked[id] = true
	}
	for _, id := range marked {
		ed := e.g.Edges[id]
		for _, t := range [2]int{ed.Source, ed.Target} {
			for _, se := range e.g.Vertices[t].Edges {
				spine := e.g.Edges[se]
				if spine.Weight() != 1 {
					continue
				}
				w := spine.Other(t)
				for _, de := range e.g.Vertices[w].Edges {
					if de != id && isMarked[de] {
						union(id, de)
					}
				}
			}
		}
	}

	byRoot := make(map[int][]int)
	for _, id := range marked {
		r := find(id)
		byRoot[r] = append(byRoot[r], id)
	}
	groups := make([][]int, 0, len(byRoot))
	for _, r := range slices.Sorted(maps.Keys(byRoot)) {
		ids := byRoot[r]
		slices.Sort(ids)
		groups = append(groups, ids)
	}
	return groups
}

// resolveStereoGroup walks a conjugated run in ascending order, fixing each
// bond that verifies and flipping branches on the ones that do not.
func (e *Engine) resolveStereoGroup(group []int) {
	var fixed []int
	for _, id := range group {
		ed := e.g.Edges[id]
		if e.stereoOK(ed, e.livePosition) {
			ed.CisTrans.Fixed = true
			fixed = append(fixed, id)
			continue
		}
		if e.flipStereo(ed, fixed) {
			ed.CisTrans.Fixed = true
			fixed = append(fixed, id)
			e.stats.FlippedBonds++
			continue
		}
		e.log.Warn("cis/trans constraint left unsatisfied", "edge", id)
		e.stats.StereoWarnings++
	}
}

func (e *Engine) livePosition(id int) geom.Vec {
	return e.g.Vertices[id].Position
}

// stereoOK verifies the drawn substituent sides of a constrained double
// bond using the positions reported by at. Substituents collinear with the
// bond axis are skipped.
func (e *Engine) stereoOK(ed *mol.Edge, at func(int) geom.Vec) bool {
	x, y := at(ed.Source), at(ed.Target)
	axis := y.Sub(x)
	if axis.LengthSq() == 0 {
		return true
	}
	for _, a := range slices.Sorted(maps.Keys(ed.CisTrans.Pairs)) {
		if e.g.EdgeBetween(ed.Source, a) == nil {
			continue
		}
		inner := ed.CisTrans.Pairs[a]
		sa := axis.Cross(at(a).Sub(x))
		for _, b := range slices.Sorted(maps.Keys(inner)) {
			sb := axis.Cross(at(b).Sub(y))
			if sa == 0 || sb == 0 {
				continue
			}
			if (sa > 0) == (sb > 0) != (inner[b] == mol.RelationCis) {
				return false
			}
		}
	}
	return true
}

// flipStereo tries the ranked branch-flip plans of a mismatched bond and
// commits the first candidate geometry that satisfies the bond without
// breaking a previously verified one. It reports whether a plan succeeded.
func (e *Engine) flipStereo(ed *mol.Edge, fixed []int) bool {
	for _, p := range e.flipPlans(ed, fixed) {
		moved := e.mirrorCandidate(p, ed)
		if moved == nil {
			continue
		}
		at := func(id int) geom.Vec {
			if pos, ok := moved[id]; ok {
				return pos
			}
			return e.g.Vertices[id].Position
		}
		if !e.stereoOK(ed, at) {
			continue
		}
		broken := false
		for _, fid := range fixed {
			if !e.stereoOK(e.g.Edges[fid], at) {
				broken = true
				break
			}
		}
		if broken {
			continue
		}
		a := e.g.Vertices[ed.Source].Position
		b := e.g.Vertices[ed.Target].Position
		e.commitMirror(moved, a, b)
		return true
	}
	return false
}

// flipPlans ranks the candidate branch flips of a mismatched bond. Outside
// a ring the whole smaller side goes first; inside a ring only exocyclic
// branches qualify, with branches touching already verified bonds ahead of
// the rest.
func (e *Engine) flipPlans(ed *mol.Edge, fixed []int) []flipPlan {
	if !ed.InRing {
		plans := []flipPlan{
			{root: ed.Target, exclude: ed.Source},
			{root: ed.Source, exclude: ed.Target},
		}
		srcSide := len(e.g.SubtreeVertices(ed.Source, ed.Target))
		dstSide := len(e.g.SubtreeVertices(ed.Target, ed.Source))
		if srcSide < dstSide {
			plans[0], plans[1] = plans[1], plans[0]
		}
		return plans
	}
	var preferred, rest []flipPlan
	for _, t := range [2]int{ed.Source, ed.Target} {
		for _, n := range e.g.Vertices[t].Neighbours {
			if n == ed.Other(t) {
				continue
			}
			branch := e.g.EdgeBetween(t, n)
			if branch == nil || branch.InRing {
				continue
			}
			p := flipPlan{root: n, exclude: t}
			if e.branchTouchesFixed(p, fixed) {
				preferred = append(preferred, p)
			} else {
				rest = append(rest, p)
			}
		}
	}
	return append(preferred, rest...)
}

// branchTouchesFixed reports whether the plan's branch contains a terminus
// of an already verified bond.
func (e *Engine) branchTouchesFixed(p flipPlan, fixed []int) bool {
	if len(fixed) == 0 {
		return false
	}
	members := make(map[int]bool)
	for _, id := range e.g.SubtreeVertices(p.root, p.exclude) {
		members[id] = true
	}
	for _, fid := range fixed {
		f := e.g.Edges[fid]
		if members[f.Source] || members[f.Target] {
			return true
		}
	}
	return false
}

// mirrorCandidate mirrors the plan's branch across the bond axis and
// returns the moved positions. It returns nil when an exocyclic branch
// wraps back onto the bond itself.
func (e *Engine) mirrorCandidate(p flipPlan, ed *mol.Edge) map[int]geom.Vec {
	a := e.g.Vertices[ed.Source].Position
	b := e.g.Vertices[ed.Target].Position
	wholeSide := p.root == ed.Source || p.root == ed.Target
	moved := make(map[int]geom.Vec)
	for _, id := range e.g.SubtreeVertices(p.root, p.exclude) {
		if !wholeSide && (id == ed.Source || id == ed.Target) {
			return nil
		}
		moved[id] = geom.MirrorAbout(e.g.Vertices[id].Position, a, b)
	}
	return moved
}

// commitMirror applies a verified candidate and mirrors the ring centers
// anchored on moved vertices across the same axis.
func (e *Engine) commitMirror(moved map[int]geom.Vec, a, b geom.Vec) {
	for id, pos := range moved {
		v := e.g.Vertices[id]
		v.Position = pos
		for _, rid := range v.AnchoredRings {
			if r := e.g.Ring(rid); r != nil {
				r.Center = geom.MirrorAbout(r.Center, a, b)
			}
		}
	}
}
