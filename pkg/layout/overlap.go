package layout

import (
	"context"
	"math"
	"time"

	"github.com/moldraw/moldraw/pkg/geom"
	"github.com/moldraw/moldraw/pkg/mol"
)

// scoreBoard is the overlap score of a drawing: every drawn vertex pair
// closer than a bond length contributes (L-d)/L, accumulated in total and
// charged to both vertices.
type scoreBoard struct {
	total float64
	per   []float64
}

func (e *Engine) overlapScore() scoreBoard {
	vs := e.g.Vertices
	sb := scoreBoard{per: make([]float64, len(vs))}
	L := e.opts.BondLength
	for i := 0; i < len(vs); i++ {
		a := vs[i]
		if !a.Positioned || !a.Drawn {
			continue
		}
		for j := i + 1; j < len(vs); j++ {
			b := vs[j]
			if !b.Positioned || !b.Drawn {
				continue
			}
			d := a.Position.Distance(b.Position)
			if d >= L {
				continue
			}
			s := (L - d) / L
			sb.total += s
			sb.per[i] += s
			sb.per[j] += s
		}
	}
	return sb
}

// resolvePrimary spreads crowded ring substituents. A ring vertex qualifies
// with two exocyclic branches, or one when it sits on two rings. The branch
// subtrees rotate apart by a ring-derived angle; whichever sign lowers the
// score is kept, ties revert.
func (e *Engine) resolvePrimary() {
	type cand struct {
		vertex int
		exo    []int
	}
	var cands []cand
	seen := make(map[int]bool)
	for _, r := range e.g.Rings {
		for _, m := range r.Members {
			if seen[m] {
				continue
			}
			v := e.g.Vertices[m]
			var exo []int
			for _, n := range v.Neighbours {
				w := e.g.Vertices[n]
				if w.Positioned && !w.InRingWith(v) {
					exo = append(exo, n)
				}
			}
			if len(exo) >= 2 || (len(exo) == 1 && len(v.Rings) == 2) {
				seen[m] = true
				cands = append(cands, cand{vertex: m, exo: exo})
			}
		}
	}

	for _, c := range cands {
		v := e.g.Vertices[c.vertex]
		size := 6
		if len(v.Rings) > 0 {
			if r := e.g.Ring(v.Rings[0]); r != nil {
				size = r.Size()
			}
		}
		a := (2*math.Pi - geom.CentralAngle(size)) / 6

		if len(c.exo) == 1 {
			e.rotateBest(c.exo[0], v.ID, v.Position, a)
			continue
		}
		e.rotatePairBest(c.exo[0], c.exo[1], v.ID, v.Position, a)
	}
}

// rotateBest tries rotating one subtree by ±a around pivot and keeps the
// sign that strictly lowers the total score. Ties keep the original.
func (e *Engine) rotateBest(root, pivotVertex int, pivot geom.Vec, a float64) {
	before := e.overlapScore().total
	e.rotateSubtree(root, pivotVertex, a, pivot)
	plus := e.overlapScore().total
	e.rotateSubtree(root, pivotVertex, -2*a, pivot)
	minus := e.overlapScore().total
	switch {
	case plus < before && plus <= minus:
		e.rotateSubtree(root, pivotVertex, 2*a, pivot)
	case minus < before:
		// Stay.
	default:
		e.rotateSubtree(root, pivotVertex, a, pivot)
	}
}

// rotatePairBest rotates two subtrees apart with opposite signs, keeping the
// assignment that strictly lowers the total score.
func (e *Engine) rotatePairBest(r1, r2, pivotVertex int, pivot geom.Vec, a float64) {
	apply := func(sign float64) {
		e.rotateSubtree(r1, pivotVertex, sign*a, pivot)
		e.rotateSubtree(r2, pivotVertex, -sign*a, pivot)
	}
	before := e.overlapScore().total
	apply(1)
	plus := e.overlapScore().total
	apply(-1)
	apply(-1)
	minus := e.overlapScore().total
	switch {
	case plus < before && plus <= minus:
		apply(1)
		apply(1)
	case minus < before:
		// Stay.
	default:
		apply(1)
	}
}

// resolveIterative walks every rotatable bond and swings the shallower side
// away from the drawing when its subtree is crowded. Rotations are kept only
// when the total score does not increase. Vertices with exactly two
// neighbours additionally try mirroring across them.
func (e *Engine) resolveIterative(ctx context.Context) {
	for pass := 0; pass < e.opts.OverlapResolutionIterations; pass++ {
		if e.overlapScore().total < e.opts.OverlapSensitivity {
			return
		}
		for _, ed := range e.g.Edges {
			if ctx.Err() != nil {
				return
			}
			if !e.rotatable(ed) {
				continue
			}
			root, pivotVertex := ed.Target, ed.Source
			if e.g.TreeDepth(ed.Source, ed.Target) < e.g.TreeDepth(ed.Target, ed.Source) {
				root, pivotVertex = ed.Source, ed.Target
			}

			sb := e.overlapScore()
			var treeScore float64
			sub := e.g.SubtreeVertices(root, pivotVertex)
			for _, id := range sub {
				treeScore += sb.per[id]
			}
			if treeScore <= e.opts.OverlapSensitivity {
				continue
			}

			pivot := e.g.Vertices[pivotVertex].Position
			com := e.centerOfMass()
			rootPos := e.g.Vertices[root].Position
			angle := geom.ToRad(120)
			if rootPos.RotateAround(-angle, pivot).DistanceSq(com) >
				rootPos.RotateAround(angle, pivot).DistanceSq(com) {
				angle = -angle
			}
			e.rotateSubtree(root, pivotVertex, angle, pivot)
			if e.overlapScore().total > sb.total {
				e.rotateSubtree(root, pivotVertex, -angle, pivot)
			}
		}
		e.swapCrowdedSides()
	}
}

// swapCrowdedSides mirrors crowded two-neighbour chain vertices across the
// line through their neighbours.
func (e *Engine) swapCrowdedSides() {
	sb := e.overlapScore()
	for _, v := range e.g.Vertices {
		if !v.Positioned || !v.Drawn || v.InRing() || len(v.Neighbours) != 2 {
			continue
		}
		if sb.per[v.ID] <= e.opts.OverlapSensitivity {
			continue
		}
		a := e.g.Vertices[v.Neighbours[0]]
		b := e.g.Vertices[v.Neighbours[1]]
		if !a.Positioned || !b.Positioned {
			continue
		}
		old := v.Position
		v.Position = geom.MirrorAbout(v.Position, a.Position, b.Position)
		after := e.overlapScore()
		if after.total > sb.total {
			v.Position = old
			continue
		}
		sb = after
	}
}

// rotatable reports whether the drawing may rotate freely around an edge:
// a single bond outside rings with a continuation on both ends.
func (e *Engine) rotatable(ed *mol.Edge) bool {
	if ed.Weight() != 1 || ed.InRing {
		return false
	}
	return len(e.g.Vertices[ed.Source].Neighbours) > 1 &&
		len(e.g.Vertices[ed.Target].Neighbours) > 1
}

// resolveTerminals nudges crowded terminal vertices 20° away from their
// nearest drawn vertex, pivoting around their only neighbour.
func (e *Engine) resolveTerminals() {
	sb := e.overlapScore()
	for _, v := range e.g.Vertices {
		if !v.Positioned || !v.Drawn || len(v.Neighbours) != 1 {
			continue
		}
		if sb.per[v.ID] <= e.opts.OverlapSensitivity {
			continue
		}
		parent := e.g.Vertices[v.Neighbours[0]]
		nearest := e.nearestDrawn(v.ID, parent.ID)
		if nearest < 0 {
			continue
		}
		old := v.Position
		v.Position = v.Position.RotateAwayFrom(
			e.g.Vertices[nearest].Position, parent.Position, geom.ToRad(20))
		after := e.overlapScore()
		if after.total > sb.total {
			v.Position = old
			continue
		}
		sb = after
	}
}

func (e *Engine) nearestDrawn(self, exclude int) int {
	best := -1
	bestD := math.MaxFloat64
	p := e.g.Vertices[self].Position
	for _, w := range e.g.Vertices {
		if w.ID == self || w.ID == exclude || !w.Positioned || !w.Drawn {
			continue
		}
		if d := w.Position.DistanceSq(p); d < bestD {
			best, bestD = w.ID, d
		}
	}
	return best
}

// finetune grid-searches rotations around the rotatable bond closest to the
// midpoint of each clashing pair's shortest path. The search is bounded by a
// step budget and a wall clock, and only the best non-increasing angle is
// kept.
func (e *Engine) finetune(ctx context.Context) {
	L := e.opts.BondLength
	threshold := e.opts.FinetuneThresholdFraction * L
	angleStep := geom.ToRad(e.opts.FinetuneAngleStep)
	deadline := time.Now().Add(e.opts.FinetuneTimeout)
	tried := make(map[[2]int]bool)
	steps := 0

	for steps < e.opts.FinetuneSteps {
		if ctx.Err() != nil || time.Now().After(deadline) {
			break
		}
		sb := e.overlapScore()
		if sb.total < e.opts.OverlapSensitivity {
			break
		}
		a, b := e.worstClash(threshold, tried)
		if a < 0 {
			break
		}
		tried[[2]int{a, b}] = true

		path := e.g.ShortestPath(a, b)
		root, pivotVertex := e.midRotatable(path)
		if root < 0 {
			continue
		}
		pivot := e.g.Vertices[pivotVertex].Position

		bestK, bestScore := 0, sb.total
		k := 0
		for float64(k+1)*angleStep < 2*math.Pi && steps < e.opts.FinetuneSteps {
			if time.Now().After(deadline) {
				break
			}
			k++
			steps++
			e.rotateSubtree(root, pivotVertex, angleStep, pivot)
			if sc := e.overlapScore().total; sc < bestScore {
				bestK, bestScore = k, sc
			}
		}
		// Wind back to the best angle seen, which may be the original.
		e.rotateSubtree(root, pivotVertex, float64(bestK-k)*angleStep, pivot)
	}
	e.stats.FinetuneSteps += steps
}

// worstClash returns the closest unbonded drawn pair under the threshold
// that has not been tried yet, ordered (low, high).
func (e *Engine) worstClash(threshold float64, tried map[[2]int]bool) (int, int) {
	bestA, bestB := -1, -1
	bestD := threshold
	vs := e.g.Vertices
	for i := 0; i < len(vs); i++ {
		a := vs[i]
		if !a.Positioned || !a.Drawn {
			continue
		}
		for j := i + 1; j < len(vs); j++ {
			b := vs[j]
			if !b.Positioned || !b.Drawn || tried[[2]int{i, j}] {
				continue
			}
			if e.g.EdgeBetween(i, j) != nil {
				continue
			}
			if d := a.Position.Distance(b.Position); d < bestD {
				bestA, bestB, bestD = i, j, d
			}
		}
	}
	return bestA, bestB
}

// midRotatable picks the rotatable bond on the path nearest its midpoint and
// returns the subtree root on the far end plus the pivot vertex.
func (e *Engine) midRotatable(path []int) (root, pivotVertex int) {
	root, pivotVertex = -1, -1
	if len(path) < 2 {
		return root, pivotVertex
	}
	mid := float64(len(path)-1) / 2
	bestDist := math.MaxFloat64
	for i := 0; i+1 < len(path); i++ {
		ed := e.g.EdgeBetween(path[i], path[i+1])
		if ed == nil || !e.rotatable(ed) {
			continue
		}
		if d := math.Abs(float64(i) + 0.5 - mid); d < bestDist {
			bestDist = d
			pivotVertex, root = path[i], path[i+1]
		}
	}
	return root, pivotVertex
}
