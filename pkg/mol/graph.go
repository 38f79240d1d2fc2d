package mol

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

var (
	// ErrUnknownVertex is returned by [Graph.AddEdge] when an endpoint ID
	// has not been added to the graph.
	ErrUnknownVertex = errors.New("unknown vertex")

	// ErrSelfLoop is returned by [Graph.AddEdge] when both endpoints are the
	// same vertex. Molecular graphs have no self bonds.
	ErrSelfLoop = errors.New("self loop")

	// ErrDuplicateEdge is returned by [Graph.AddEdge] when the endpoints are
	// already bonded. A vertex pair carries at most one bond.
	ErrDuplicateEdge = errors.New("duplicate edge")
)

// Graph is a molecular graph. Vertices and edges are indexed by their dense
// IDs; rings are looked up by ID through [Graph.Ring] because consolidation
// removes and inserts rings mid-layout.
type Graph struct {
	Vertices        []*Vertex
	Edges           []*Edge
	Rings           []*Ring
	RingConnections []*RingConnection

	adjacency  map[[2]int]int
	nextRingID int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{adjacency: make(map[[2]int]int)}
}

// AddVertex appends a vertex carrying atom and returns it. IDs are assigned
// in insertion order.
func (g *Graph) AddVertex(atom Atom) *Vertex {
	v := &Vertex{
		ID:          len(g.Vertices),
		Atom:        atom,
		Parent:      -1,
		BridgedRing: -1,
		Drawn:       true,
	}
	g.Vertices = append(g.Vertices, v)
	return v
}

// AddEdge bonds two vertices. The endpoints keep their neighbour and edge
// lists in insertion order.
func (g *Graph) AddEdge(source, target int, kind BondKind) (*Edge, error) {
	if source < 0 || source >= len(g.Vertices) {
		return nil, fmt.Errorf("source %d: %w", source, ErrUnknownVertex)
	}
	if target < 0 || target >= len(g.Vertices) {
		return nil, fmt.Errorf("target %d: %w", target, ErrUnknownVertex)
	}
	if source == target {
		return nil, fmt.Errorf("vertex %d: %w", source, ErrSelfLoop)
	}
	if _, ok := g.adjacency[edgeKey(source, target)]; ok {
		return nil, fmt.Errorf("%d-%d: %w", source, target, ErrDuplicateEdge)
	}

	e := &Edge{
		ID:         len(g.Edges),
		Source:     source,
		Target:     target,
		Bond:       kind,
		WedgePivot: -1,
	}
	g.Edges = append(g.Edges, e)
	g.adjacency[edgeKey(source, target)] = e.ID

	s, t := g.Vertices[source], g.Vertices[target]
	s.Neighbours = append(s.Neighbours, target)
	s.Edges = append(s.Edges, e.ID)
	t.Neighbours = append(t.Neighbours, source)
	t.Edges = append(t.Edges, e.ID)
	return e, nil
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// EdgeBetween returns the bond between two vertices, nil when they are not
// bonded.
func (g *Graph) EdgeBetween(a, b int) *Edge {
	id, ok := g.adjacency[edgeKey(a, b)]
	if !ok {
		return nil
	}
	return g.Edges[id]
}

// Ring returns the ring with the given ID, nil when absent. Ring IDs are
// not slice indices: consolidation removes rings and mints new IDs.
func (g *Graph) Ring(id int) *Ring {
	for _, r := range g.Rings {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// AddRing appends a ring, assigning the next free ring ID.
func (g *Graph) AddRing(r *Ring) *Ring {
	r.ID = g.nextRingID
	g.nextRingID++
	g.Rings = append(g.Rings, r)
	return r
}

// RemoveRing deletes the ring with the given ID, keeping slice order.
func (g *Graph) RemoveRing(id int) {
	for i, r := range g.Rings {
		if r.ID == id {
			g.Rings = append(g.Rings[:i], g.Rings[i+1:]...)
			return
		}
	}
}

// ConnectionsOf returns the ring connections touching ring id, in stored
// order.
func (g *Graph) ConnectionsOf(id int) []*RingConnection {
	var out []*RingConnection
	for _, rc := range g.RingConnections {
		if rc.Involves(id) {
			out = append(out, rc)
		}
	}
	return out
}

// SharedVertices returns the sorted vertex IDs two rings have in common.
func (g *Graph) SharedVertices(a, b int) []int {
	for _, rc := range g.RingConnections {
		if (rc.A == a && rc.B == b) || (rc.A == b && rc.B == a) {
			return slices.Clone(rc.Shared)
		}
	}
	return nil
}

// TreeDepth returns the longest BFS distance, in bonds, reachable from
// start without stepping onto exclude. Cycles are walked once. It is the
// subtree weight used to order branches.
func (g *Graph) TreeDepth(start, exclude int) int {
	if start < 0 || start >= len(g.Vertices) {
		return 0
	}
	visited := make([]bool, len(g.Vertices))
	if exclude >= 0 && exclude < len(g.Vertices) {
		visited[exclude] = true
	}
	visited[start] = true

	depth := 0
	frontier := []int{start}
	for len(frontier) > 0 {
		var next []int
		for _, id := range frontier {
			for _, n := range g.Vertices[id].Neighbours {
				if !visited[n] {
					visited[n] = true
					next = append(next, n)
				}
			}
		}
		if len(next) > 0 {
			depth++
		}
		frontier = next
	}
	return depth
}

// SubtreeVertices returns start plus every vertex reachable from it without
// stepping onto exclude, in BFS order.
func (g *Graph) SubtreeVertices(start, exclude int) []int {
	if start < 0 || start >= len(g.Vertices) {
		return nil
	}
	visited := make([]bool, len(g.Vertices))
	if exclude >= 0 && exclude < len(g.Vertices) {
		visited[exclude] = true
	}
	visited[start] = true

	out := []int{start}
	for i := 0; i < len(out); i++ {
		for _, n := range g.Vertices[out[i]].Neighbours {
			if !visited[n] {
				visited[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

// ShortestPath returns the vertex IDs of a shortest path from a to b,
// inclusive. It returns nil when b is unreachable.
func (g *Graph) ShortestPath(a, b int) []int {
	if a < 0 || a >= len(g.Vertices) || b < 0 || b >= len(g.Vertices) {
		return nil
	}
	if a == b {
		return []int{a}
	}
	parent := make([]int, len(g.Vertices))
	for i := range parent {
		parent[i] = -1
	}
	parent[a] = a
	frontier := []int{a}
	for len(frontier) > 0 {
		var next []int
		for _, id := range frontier {
			for _, n := range g.Vertices[id].Neighbours {
				if parent[n] >= 0 {
					continue
				}
				parent[n] = id
				if n == b {
					return unwindPath(parent, a, b)
				}
				next = append(next, n)
			}
		}
		frontier = next
	}
	return nil
}

func unwindPath(parent []int, a, b int) []int {
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

// BondOrderSum returns the total bond order at a vertex.
func (g *Graph) BondOrderSum(v *Vertex) int {
	sum := 0
	for _, eid := range v.Edges {
		sum += g.Edges[eid].Weight()
	}
	return sum
}

// ImplicitHydrogens derives the hydrogen count of a vertex. Bracket atoms
// report their explicit count; bare atoms fill up to the smallest normal
// valence that covers their bond order sum, with aromatic atoms reserving
// one unit for the ring system.
func (g *Graph) ImplicitHydrogens(v *Vertex) int {
	if v.Atom.Bracket {
		return v.Atom.HCount
	}
	el, ok := LookupElement(v.Atom.Symbol)
	if !ok {
		return 0
	}
	sum := g.BondOrderSum(v)
	if v.Atom.Aromatic {
		sum++
	}
	for _, valence := range el.Valences {
		if valence >= sum {
			return valence - sum
		}
	}
	return 0
}

// Formula returns the molecular formula in Hill order: carbon, hydrogen,
// then the remaining symbols alphabetically. Implicit hydrogens count.
func (g *Graph) Formula() string {
	counts := make(map[string]int)
	hydrogens := 0
	for _, v := range g.Vertices {
		sym := v.Atom.Symbol
		if sym == "*" {
			continue
		}
		counts[sym]++
		hydrogens += g.ImplicitHydrogens(v)
	}
	hydrogens += counts["H"]
	delete(counts, "H")

	var rest []string
	for sym := range counts {
		if sym != "C" {
			rest = append(rest, sym)
		}
	}
	sort.Strings(rest)

	var b strings.Builder
	writeTerm := func(sym string, n int) {
		if n == 0 {
			return
		}
		b.WriteString(sym)
		if n > 1 {
			fmt.Fprintf(&b, "%d", n)
		}
	}
	writeTerm("C", counts["C"])
	writeTerm("H", hydrogens)
	for _, sym := range rest {
		writeTerm(sym, counts[sym])
	}
	return b.String()
}
