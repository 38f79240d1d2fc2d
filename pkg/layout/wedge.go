package layout

import (
	"cmp"
	"math"
	"slices"
	"sort"

	"github.com/moldraw/moldraw/pkg/geom"
	"github.com/moldraw/moldraw/pkg/mol"
)

// rankDepth bounds the neighbour walk that orders stereocenter branches.
const rankDepth = 6

// assignWedges draws tetrahedral chirality: for every marked stereocenter
// one bond becomes a wedge, or an explicit hydrogen is drawn when every
// incident bond lies in a ring.
func (e *Engine) assignWedges() {
	for _, v := range e.g.Vertices {
		if v.Atom.Chirality == mol.ChiralityNone || !v.Positioned {
			continue
		}
		e.assignWedge(v)
	}
}

func (e *Engine) assignWedge(v *mol.Vertex) {
	implicit := e.g.ImplicitHydrogens(v)
	if implicit > 1 || len(v.Neighbours) < 3 || len(v.Neighbours)+implicit > 4 {
		e.stats.StereoWarnings++
		e.log.Warn("stereocenter with unusable valence", "vertex", v.ID)
		return
	}

	// Slots follow text order; a virtual placeholder (the implicit hydrogen
	// or a lone pair) sits right after the preceding atom, or first when the
	// stereocenter opens the string.
	slots := slices.Clone(v.Neighbours)
	if len(slots) == 3 {
		hSlot := 0
		for _, n := range v.Neighbours {
			if n < v.ID {
				hSlot = 1
				break
			}
		}
		slots = slices.Insert(slots, hSlot, -1)
	}
	if len(slots) != 4 {
		e.stats.StereoWarnings++
		return
	}

	ranks := make(map[int][][]int, len(v.Neighbours))
	for _, n := range v.Neighbours {
		ranks[n] = e.branchRank(v.ID, n)
	}
	ranked := slices.Clone(slots)
	slices.SortStableFunc(ranked, func(a, b int) int {
		switch {
		case a == -1:
			return 1
		case b == -1:
			return -1
		}
		return compareRank(ranks[b], ranks[a])
	})

	parity := permutationParity(slots, ranked)

	// Rotational sense of the two highest-priority neighbours as drawn.
	var top []geom.Vec
	for _, n := range ranked {
		if n == -1 {
			continue
		}
		if w := e.g.Vertices[n]; w.Positioned {
			top = append(top, w.Position.Sub(v.Position))
		}
		if len(top) == 2 {
			break
		}
	}
	if len(top) < 2 {
		e.stats.StereoWarnings++
		return
	}
	cross := top[0].Cross(top[1])
	if math.Abs(cross) < 1e-9 {
		e.stats.StereoWarnings++
		e.log.Warn("collinear stereocenter neighbours", "vertex", v.ID)
		return
	}
	sense := 1.0
	if cross < 0 {
		sense = -1
	}

	chir := 1.0
	if v.Atom.Chirality == mol.ChiralityCCW {
		chir = -1
	}
	w := mol.WedgeUp
	if float64(parity)*chir*sense < 0 {
		w = mol.WedgeDown
	}

	best, bestScore := -1, math.MaxInt
	for _, n := range v.Neighbours {
		ed := e.g.EdgeBetween(v.ID, n)
		if ed == nil || ed.Wedge != mol.WedgeNone {
			continue
		}
		nb := e.g.Vertices[n]
		score := e.g.TreeDepth(n, v.ID)
		if nb.Atom.Chirality != mol.ChiralityNone {
			score += 100000
		}
		if ed.InRing {
			score += 10000
		}
		if nb.Atom.IsHeteroatom() {
			score += 1000
		}
		if score < bestScore {
			best, bestScore = n, score
		}
	}

	allRing := true
	for _, eid := range v.Edges {
		if !e.g.Edges[eid].InRing {
			allRing = false
			break
		}
	}
	if allRing || best < 0 {
		// Nothing can carry the wedge without distorting a ring; draw the
		// hydrogen into the widest free direction instead.
		v.HydrogenDir = e.widestGap(v)
		v.HydrogenWedge = invertWedge(w)
		return
	}

	ed := e.g.EdgeBetween(v.ID, best)
	ed.Wedge = w
	ed.WedgePivot = v.ID
}

func invertWedge(w mol.Wedge) mol.Wedge {
	if w == mol.WedgeUp {
		return mol.WedgeDown
	}
	return mol.WedgeUp
}

// widestGap returns the unit direction bisecting the largest angular gap
// between the positioned neighbours of v.
func (e *Engine) widestGap(v *mol.Vertex) geom.Vec {
	var angles []float64
	for _, n := range v.Neighbours {
		w := e.g.Vertices[n]
		if w.Positioned {
			angles = append(angles, w.Position.Sub(v.Position).Angle())
		}
	}
	if len(angles) == 0 {
		return geom.Unit(0)
	}
	sort.Float64s(angles)
	bestAt := angles[0] + math.Pi
	bestGap := 0.0
	for i := range angles {
		next := angles[(i+1)%len(angles)]
		gap := next - angles[i]
		if i == len(angles)-1 {
			gap += 2 * math.Pi
		}
		if gap > bestGap {
			bestGap = gap
			bestAt = angles[i] + gap/2
		}
	}
	return geom.Unit(bestAt)
}

// branchRank builds the priority vector of the branch entered through start:
// per depth, the sorted descending list of 1000·Z(from)+Z(to) entries, one
// per bond order unit, with implicit hydrogens padding each atom's valence.
func (e *Engine) branchRank(center, start int) [][]int {
	entryValue := func(from, to *mol.Vertex) int {
		return 1000*from.Atom.Number() + to.Atom.Number()
	}

	visited := make(map[int]bool, len(e.g.Vertices))
	visited[center] = true
	visited[start] = true

	cv := e.g.Vertices[center]
	sv := e.g.Vertices[start]
	level0 := make([]int, 0, 4)
	if ed := e.g.EdgeBetween(center, start); ed != nil {
		for k := 0; k < ed.Weight(); k++ {
			level0 = append(level0, entryValue(cv, sv))
		}
	}
	levels := [][]int{level0}

	frontier := []int{start}
	for depth := 1; depth <= rankDepth && len(frontier) > 0; depth++ {
		var lvl []int
		var next []int
		for _, u := range frontier {
			uv := e.g.Vertices[u]
			for _, n := range uv.Neighbours {
				if visited[n] {
					continue
				}
				visited[n] = true
				ed := e.g.EdgeBetween(u, n)
				nv := e.g.Vertices[n]
				for k := 0; k < ed.Weight(); k++ {
					lvl = append(lvl, entryValue(uv, nv))
				}
				next = append(next, n)
			}
			hv := 1000*uv.Atom.Number() + 1
			for k := 0; k < e.g.ImplicitHydrogens(uv); k++ {
				lvl = append(lvl, hv)
			}
		}
		slices.SortFunc(lvl, func(a, b int) int { return cmp.Compare(b, a) })
		levels = append(levels, lvl)
		frontier = next
	}
	return levels
}

// compareRank orders two priority vectors lexicographically, level by level
// and entry by entry. Missing entries lose against present ones.
func compareRank(a, b [][]int) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		var la, lb []int
		if i < len(a) {
			la = a[i]
		}
		if i < len(b) {
			lb = b[i]
		}
		for j := 0; j < len(la) || j < len(lb); j++ {
			va, vb := -1, -1
			if j < len(la) {
				va = la[j]
			}
			if j < len(lb) {
				vb = lb[j]
			}
			if c := cmp.Compare(va, vb); c != 0 {
				return c
			}
		}
	}
	return 0
}

// permutationParity returns +1 when to is an even permutation of from, -1
// when odd.
func permutationParity(from, to []int) int {
	posInTo := make(map[int]int, len(to))
	for i, id := range to {
		posInTo[id] = i
	}
	perm := make([]int, len(from))
	for i, id := range from {
		perm[i] = posInTo[id]
	}
	parity := 1
	for i := 0; i < len(perm); i++ {
		for j := i + 1; j < len(perm); j++ {
			if perm[i] > perm[j] {
				parity = -parity
			}
		}
	}
	return parity
}
