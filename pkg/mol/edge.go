package mol

// Relation is the geometric relationship of two substituents across a
// double bond.
type Relation int

const (
	// RelationNone means the pair is unconstrained.
	RelationNone Relation = iota
	// RelationCis places both substituents on the same side of the bond
	// axis.
	RelationCis
	// RelationTrans places them on opposite sides.
	RelationTrans
)

func (r Relation) String() string {
	switch r {
	case RelationCis:
		return "cis"
	case RelationTrans:
		return "trans"
	default:
		return "none"
	}
}

// CisTrans is the geometry constraint attached to a double bond whose
// neighbourhood carries directional single bonds. Pairs maps a substituent
// at one terminus to a substituent at the other; the map is symmetric, the
// entry for (a, b) always equals the entry for (b, a).
type CisTrans struct {
	// Marked is set once at least one substituent pair is constrained.
	Marked bool
	// Pairs holds the substituent pair relations.
	Pairs map[int]map[int]Relation
	// Fixed is set once the drawn geometry has been verified against Pairs.
	// Fixed bonds are never flipped again.
	Fixed bool
}

// SetRelation records the relation of the substituent pair (a, b), writing
// both directions. A conflicting earlier entry wins and the call reports
// false.
func (ct *CisTrans) SetRelation(a, b int, rel Relation) bool {
	if rel == RelationNone {
		return false
	}
	if prev := ct.RelationOf(a, b); prev != RelationNone && prev != rel {
		return false
	}
	if ct.Pairs == nil {
		ct.Pairs = make(map[int]map[int]Relation)
	}
	ct.set(a, b, rel)
	ct.set(b, a, rel)
	ct.Marked = true
	return true
}

// RelationOf returns the recorded relation of a substituent pair,
// RelationNone when unconstrained.
func (ct *CisTrans) RelationOf(a, b int) Relation {
	if ct.Pairs == nil {
		return RelationNone
	}
	return ct.Pairs[a][b]
}

func (ct *CisTrans) set(a, b int, rel Relation) {
	m := ct.Pairs[a]
	if m == nil {
		m = make(map[int]Relation)
		ct.Pairs[a] = m
	}
	m[b] = rel
}

// Edge is a bond between two vertices. Source and Target reflect input
// order; the geometric algorithms treat edges as undirected except where
// directional bonds and wedges say otherwise.
type Edge struct {
	ID     int
	Source int
	Target int
	Bond   BondKind

	// Wedge is assigned by the stereochemistry stage; WedgePivot is the
	// vertex at the narrow end (the stereocenter), -1 while unset.
	Wedge      Wedge
	WedgePivot int

	// Center is set when a double bond should be drawn as two symmetric
	// lines about the axis instead of a main line with an offset line.
	Center bool

	// InAromaticRing is set by ring perception when the edge lies on an
	// aromatic cycle; renderers then draw the inner line pattern.
	InAromaticRing bool

	// InRing is set when the edge lies on any perceived ring.
	InRing bool

	// CisTrans holds the double-bond geometry constraint, if any.
	CisTrans CisTrans
}

// Weight returns the bond order of the edge.
func (e *Edge) Weight() int {
	return e.Bond.Weight()
}

// Other returns the endpoint of the edge that is not v. It returns -1 when
// v is not an endpoint.
func (e *Edge) Other(v int) int {
	switch v {
	case e.Source:
		return e.Target
	case e.Target:
		return e.Source
	default:
		return -1
	}
}
