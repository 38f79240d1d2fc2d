// Package ring perceives the ring system of a molecular graph: it computes
// a smallest set of smallest rings (SSSR), records which rings share
// vertices, and inventories aromatic cycles.
//
// # Method
//
// The cyclomatic number E - V + components fixes how many independent rings
// exist. Candidate cycles are generated per edge of the graph's 2-core as
// the shortest cycle through that edge, sorted by size and member IDs, and
// accepted greedily while linearly independent over GF(2) edge sets. The
// result is deterministic for a given input order.
//
// Aromatic cycles are basis rings whose atoms are all aromatic, plus
// perimeter unions of fused aromatic pairs, covering the common fused
// aromatics without a full electron count.
package ring

import (
	"math/bits"
	"slices"
	"sort"

	"github.com/moldraw/moldraw/pkg/mol"
)

// Info summarizes what perception found.
type Info struct {
	// Rings is the number of SSSR rings stored on the graph.
	Rings int
	// AromaticCycles counts aromatic cycles, including fused-pair unions.
	AromaticCycles int
}

// Perceive decorates g with rings, ring connections and aromatic markings.
// It is a no-op on acyclic graphs. Calling it twice would duplicate rings;
// the pipeline calls it exactly once per molecule.
func Perceive(g *mol.Graph) Info {
	want := cyclomatic(g)
	if want <= 0 {
		return Info{}
	}

	core := twoCore(g)
	candidates := collectCandidates(g, core)
	accepted := acceptIndependent(g, candidates, want)
	connectRings(g)
	aromatic := markAromatic(g)

	return Info{Rings: accepted, AromaticCycles: aromatic}
}

// cyclomatic returns E - V + C, the size of any cycle basis.
func cyclomatic(g *mol.Graph) int {
	n := len(g.Vertices)
	if n == 0 {
		return 0
	}
	seen := make([]bool, n)
	components := 0
	for start := range g.Vertices {
		if seen[start] {
			continue
		}
		components++
		queue := []int{start}
		seen[start] = true
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			for _, nb := range g.Vertices[id].Neighbours {
				if !seen[nb] {
					seen[nb] = true
					queue = append(queue, nb)
				}
			}
		}
	}
	return len(g.Edges) - n + components
}

// twoCore flags the vertices that survive iterative leaf pruning. Every
// cycle lies in the 2-core, so candidate search can stay inside it.
func twoCore(g *mol.Graph) []bool {
	alive := make([]bool, len(g.Vertices))
	degree := make([]int, len(g.Vertices))
	var queue []int
	for i, v := range g.Vertices {
		alive[i] = true
		degree[i] = len(v.Neighbours)
		if degree[i] < 2 {
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if !alive[id] {
			continue
		}
		alive[id] = false
		for _, nb := range g.Vertices[id].Neighbours {
			if alive[nb] {
				degree[nb]--
				if degree[nb] < 2 {
					queue = append(queue, nb)
				}
			}
		}
	}
	return alive
}

type candidate struct {
	members []int // cycle order
	key     []int // sorted members for the tiebreak
}

// collectCandidates returns the shortest cycle through each 2-core edge,
// ordered by size then by member IDs.
func collectCandidates(g *mol.Graph, core []bool) []candidate {
	var out []candidate
	for _, e := range g.Edges {
		if !core[e.Source] || !core[e.Target] {
			continue
		}
		path := shortestPathAvoiding(g, e.Source, e.Target, e.ID, core)
		if path == nil {
			continue
		}
		key := slices.Clone(path)
		sort.Ints(key)
		out = append(out, candidate{members: path, key: key})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].members) != len(out[j].members) {
			return len(out[i].members) < len(out[j].members)
		}
		return slices.Compare(out[i].key, out[j].key) < 0
	})
	return out
}

// shortestPathAvoiding runs a BFS from a to b inside the 2-core that may not
// use edge skip. The returned path includes both endpoints; closing it over
// the skipped edge yields the cycle.
func shortestPathAvoiding(g *mol.Graph, a, b, skip int, core []bool) []int {
	parent := make([]int, len(g.Vertices))
	for i := range parent {
		parent[i] = -1
	}
	parent[a] = a
	queue := []int{a}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, eid := range g.Vertices[id].Edges {
			if eid == skip {
				continue
			}
			nb := g.Edges[eid].Other(id)
			if !core[nb] || parent[nb] >= 0 {
				continue
			}
			parent[nb] = id
			if nb == b {
				var rev []int
				for v := b; ; v = parent[v] {
					rev = append(rev, v)
					if v == a {
						break
					}
				}
				slices.Reverse(rev)
				return rev
			}
			queue = append(queue, nb)
		}
	}
	return nil
}

// bitset is a little GF(2) vector over edge IDs.
type bitset []uint64

func newBitset(edges int) bitset {
	return make(bitset, (edges+63)/64)
}

func (b bitset) set(i int) {
	b[i/64] |= 1 << (i % 64)
}

func (b bitset) xor(o bitset) {
	for i := range b {
		b[i] ^= o[i]
	}
}

// leading returns the index of the highest set bit, -1 when empty.
func (b bitset) leading() int {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0 {
			return i*64 + 63 - bits.LeadingZeros64(b[i])
		}
	}
	return -1
}

// acceptIndependent adds candidates to the graph while their edge sets are
// linearly independent, stopping at the basis size.
func acceptIndependent(g *mol.Graph, candidates []candidate, want int) int {
	basis := make(map[int]bitset) // pivot bit -> reduced row
	accepted := 0
	for _, c := range candidates {
		if accepted == want {
			break
		}
		row := newBitset(len(g.Edges))
		for i, m := range c.members {
			next := c.members[(i+1)%len(c.members)]
			if e := g.EdgeBetween(m, next); e != nil {
				row.set(e.ID)
			}
		}
		for {
			lead := row.leading()
			if lead < 0 {
				break
			}
			pivot, ok := basis[lead]
			if !ok {
				basis[lead] = row
				installRing(g, c.members)
				accepted++
				break
			}
			row.xor(pivot)
		}
	}
	return accepted
}

// installRing stores a perceived ring and back-references it from members
// and perimeter edges.
func installRing(g *mol.Graph, members []int) {
	r := g.AddRing(&mol.Ring{Members: slices.Clone(members)})
	for _, m := range members {
		g.Vertices[m].Rings = append(g.Vertices[m].Rings, r.ID)
	}
	for i, m := range members {
		next := members[(i+1)%len(members)]
		if e := g.EdgeBetween(m, next); e != nil {
			e.InRing = true
		}
	}
}

// connectRings records the shared vertices of every ring pair and flags
// fused and spiro rings. Bridged classification happens later, during
// consolidation, from the shared counts recorded here.
func connectRings(g *mol.Graph) {
	for i := 0; i < len(g.Rings); i++ {
		for j := i + 1; j < len(g.Rings); j++ {
			a, b := g.Rings[i], g.Rings[j]
			shared := intersectSorted(a.Members, b.Members)
			if len(shared) == 0 {
				continue
			}
			g.RingConnections = append(g.RingConnections, &mol.RingConnection{
				A: a.ID, B: b.ID, Shared: shared,
			})
			a.Neighbours = append(a.Neighbours, b.ID)
			b.Neighbours = append(b.Neighbours, a.ID)
			switch len(shared) {
			case 1:
				a.IsSpiro, b.IsSpiro = true, true
			case 2:
				a.IsFused, b.IsFused = true, true
			}
		}
	}
}

func intersectSorted(a, b []int) []int {
	var out []int
	for _, x := range a {
		if slices.Contains(b, x) {
			out = append(out, x)
		}
	}
	sort.Ints(out)
	return out
}

// markAromatic counts aromatic cycles and flags their perimeter edges.
func markAromatic(g *mol.Graph) int {
	count := 0
	for _, r := range g.Rings {
		if isAromaticCycle(g, r.Members) {
			count++
			flagCycle(g, r.Members)
		}
	}
	// Perimeter unions of fused pairs catch aromatics that span two rings.
	for _, rc := range g.RingConnections {
		if len(rc.Shared) != 2 {
			continue
		}
		union := fusedPerimeter(g, rc)
		if union != nil && isAromaticCycle(g, union) {
			count++
			flagCycle(g, union)
		}
	}
	return count
}

func isAromaticCycle(g *mol.Graph, members []int) bool {
	if len(members) < 3 {
		return false
	}
	for _, m := range members {
		if !g.Vertices[m].Atom.Aromatic {
			return false
		}
	}
	for i, m := range members {
		next := members[(i+1)%len(members)]
		if g.EdgeBetween(m, next) == nil {
			return false
		}
	}
	return true
}

func flagCycle(g *mol.Graph, members []int) {
	for i, m := range members {
		next := members[(i+1)%len(members)]
		if e := g.EdgeBetween(m, next); e != nil {
			e.InAromaticRing = true
		}
	}
}

// fusedPerimeter walks the outer boundary of two rings fused along one edge.
// It returns nil when the shared vertices are not adjacent in either ring.
func fusedPerimeter(g *mol.Graph, rc *mol.RingConnection) []int {
	a, b := g.Ring(rc.A), g.Ring(rc.B)
	if a == nil || b == nil {
		return nil
	}
	s1, s2 := rc.Shared[0], rc.Shared[1]
	longA := longWay(a, s1, s2)
	longB := longWay(b, s2, s1)
	if longA == nil || longB == nil {
		return nil
	}
	// longA runs s1..s2, longB runs s2..s1; drop both duplicated endpoints.
	return append(longA, longB[1:len(longB)-1]...)
}

// longWay returns the members from s1 to s2 the long way around, excluding
// the direct shared edge. It returns nil when s1 and s2 are not adjacent.
func longWay(r *mol.Ring, s1, s2 int) []int {
	rot := r.MembersFrom(s1)
	if len(rot) < 3 || rot[0] != s1 {
		return nil
	}
	switch {
	case rot[1] == s2:
		// Cycle direction hits s2 immediately; the long way is backwards.
		out := []int{s1}
		for i := len(rot) - 1; i >= 1; i-- {
			out = append(out, rot[i])
		}
		return out
	case rot[len(rot)-1] == s2:
		return rot
	default:
		return nil
	}
}
