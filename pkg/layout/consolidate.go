package layout

import (
	"slices"

	"github.com/moldraw/moldraw/pkg/mol"
)

// ringBackup is the pre-consolidation snapshot of the ring inventory. The
// positioning stage works on synthetic bridged rings; afterwards the backup
// is swapped back in and centers are recomputed from the final geometry.
type ringBackup struct {
	rings       []*mol.Ring
	connections []*mol.RingConnection
	vertexRings [][]int
}

func captureRings(g *mol.Graph) *ringBackup {
	b := &ringBackup{
		rings:       make([]*mol.Ring, len(g.Rings)),
		connections: make([]*mol.RingConnection, len(g.RingConnections)),
		vertexRings: make([][]int, len(g.Vertices)),
	}
	for i, r := range g.Rings {
		b.rings[i] = r.Clone()
	}
	for i, rc := range g.RingConnections {
		b.connections[i] = rc.Clone()
	}
	for i, v := range g.Vertices {
		b.vertexRings[i] = slices.Clone(v.Rings)
	}
	return b
}

func (b *ringBackup) ring(id int) *mol.Ring {
	for _, r := range b.rings {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// consolidateBridged repeatedly collapses every group of rings joined by
// bridge connections into one synthetic ring, until none remain. The first
// detection triggers the backup snapshot.
func (e *Engine) consolidateBridged() {
	groups := e.bridgedGroups()
	if len(groups) == 0 {
		return
	}
	e.backup = captureRings(e.g)
	for len(groups) > 0 {
		e.consolidate(groups[0])
		e.stats.BridgedSystems++
		groups = e.bridgedGroups()
	}
}

// bridgedGroups returns the connected components of the ring adjacency
// restricted to bridge connections, each sorted, ordered by smallest member.
func (e *Engine) bridgedGroups() [][]int {
	adj := make(map[int][]int)
	for _, rc := range e.g.RingConnections {
		if rc.IsBridge() {
			adj[rc.A] = append(adj[rc.A], rc.B)
			adj[rc.B] = append(adj[rc.B], rc.A)
		}
	}
	if len(adj) == 0 {
		return nil
	}

	seen := make(map[int]bool)
	var groups [][]int
	for _, r := range e.g.Rings {
		if len(adj[r.ID]) == 0 || seen[r.ID] {
			continue
		}
		comp := []int{r.ID}
		seen[r.ID] = true
		for i := 0; i < len(comp); i++ {
			for _, n := range adj[comp[i]] {
				if !seen[n] {
					seen[n] = true
					comp = append(comp, n)
				}
			}
		}
		slices.Sort(comp)
		groups = append(groups, comp)
	}
	return groups
}

// consolidate replaces the rings of one bridged group with a single
// synthetic ring holding the member union. External ring connections are
// re-pointed at the new ring, with shared vertex sets merged.
func (e *Engine) consolidate(group []int) {
	inGroup := make(map[int]bool, len(group))
	memberSet := make(map[int]bool)
	var sources []*mol.Ring
	for _, rid := range group {
		inGroup[rid] = true
		r := e.g.Ring(rid)
		if r == nil {
			continue
		}
		sources = append(sources, r)
		for _, m := range r.Members {
			memberSet[m] = true
		}
	}
	members := make([]int, 0, len(memberSet))
	for m := range memberSet {
		members = append(members, m)
	}
	slices.Sort(members)

	bridged := &mol.Ring{
		Members:   members,
		IsBridged: true,
	}
	for _, src := range sources {
		src.IsPartOfBridged = true
		if br := e.backup.ring(src.ID); br != nil {
			br.IsPartOfBridged = true
		}
		bridged.Subrings = append(bridged.Subrings, src.Clone())
	}
	e.g.AddRing(bridged)

	// Classify members: vertices on a single source ring form the perimeter,
	// vertices on several are bridgeheads. A bridgehead with a neighbour
	// outside the system still anchors substituents (a bridge node); one
	// without is interior and relaxes toward the middle.
	for _, m := range members {
		count := 0
		for _, src := range sources {
			if src.Contains(m) {
				count++
			}
		}
		if count < 2 {
			continue
		}
		v := e.g.Vertices[m]
		external := false
		for _, n := range v.Neighbours {
			if !memberSet[n] {
				external = true
				break
			}
		}
		if external {
			bridged.BridgeNodes = append(bridged.BridgeNodes, m)
		} else {
			bridged.InnerMembers = append(bridged.InnerMembers, m)
		}
	}

	// Retarget member vertices.
	for _, m := range members {
		v := e.g.Vertices[m]
		kept := v.Rings[:0]
		for _, rid := range v.Rings {
			if !inGroup[rid] {
				kept = append(kept, rid)
			}
		}
		v.Rings = append(kept, bridged.ID)
		v.BridgedRing = bridged.ID
	}

	// Re-point connections crossing the group boundary; drop internal ones.
	var kept []*mol.RingConnection
	merged := make(map[int]*mol.RingConnection)
	for _, rc := range e.g.RingConnections {
		aIn, bIn := inGroup[rc.A], inGroup[rc.B]
		switch {
		case aIn && bIn:
			// Consumed by the synthetic ring.
		case !aIn && !bIn:
			kept = append(kept, rc)
		default:
			other := rc.A
			if aIn {
				other = rc.B
			}
			mc := merged[other]
			if mc == nil {
				mc = &mol.RingConnection{A: bridged.ID, B: other}
				merged[other] = mc
				kept = append(kept, mc)
			}
			mc.Shared = mergeSorted(mc.Shared, rc.Shared)
		}
	}
	e.g.RingConnections = kept

	// Neighbour lists: external rings now neighbour the synthetic ring.
	for _, r := range e.g.Rings {
		if r.ID == bridged.ID || inGroup[r.ID] {
			continue
		}
		touched := false
		nb := r.Neighbours[:0]
		for _, id := range r.Neighbours {
			if inGroup[id] {
				touched = true
				continue
			}
			nb = append(nb, id)
		}
		r.Neighbours = nb
		if touched {
			r.Neighbours = append(r.Neighbours, bridged.ID)
			bridged.Neighbours = append(bridged.Neighbours, r.ID)
		}
	}

	for _, rid := range group {
		e.g.RemoveRing(rid)
	}
}

// restoreRings swaps the pre-consolidation ring inventory back in and
// recomputes every ring center from the laid-out members. Ring anchors are
// re-derived so each ring follows exactly one vertex in later rotations.
func (e *Engine) restoreRings() {
	if e.backup == nil {
		return
	}
	e.g.Rings = e.backup.rings
	e.g.RingConnections = e.backup.connections
	for i, v := range e.g.Vertices {
		v.Rings = slices.Clone(e.backup.vertexRings[i])
		v.BridgedRing = -1
		v.AnchoredRings = v.AnchoredRings[:0]
	}
	for _, r := range e.g.Rings {
		r.UpdateCenter(e.g)
		r.Positioned = true
		anchor := -1
		for _, m := range r.Members {
			if e.g.Vertices[m].Positioned && (anchor < 0 || m < anchor) {
				anchor = m
			}
			if !e.g.Vertices[m].Positioned {
				r.Positioned = false
			}
		}
		if anchor >= 0 {
			e.g.Vertices[anchor].AnchorRing(r.ID)
		}
	}
	e.backup = nil
}

// mergeSorted unions two sorted int slices into a sorted result.
func mergeSorted(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
