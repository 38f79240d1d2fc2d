package mol

// Chirality records the tetrahedral order parameter written in a bracket
// atom. The neighbour permutation it refers to is the input order of the
// neighbours around the stereocenter.
type Chirality int

const (
	// ChiralityNone marks an atom without a chiral annotation.
	ChiralityNone Chirality = iota
	// ChiralityCCW is the @ annotation (looking from the first neighbour,
	// the remaining neighbours are listed counter-clockwise).
	ChiralityCCW
	// ChiralityCW is the @@ annotation.
	ChiralityCW
)

func (c Chirality) String() string {
	switch c {
	case ChiralityCCW:
		return "@"
	case ChiralityCW:
		return "@@"
	default:
		return ""
	}
}

// Atom is the chemical payload of a vertex. The zero value is not usable;
// atoms are created by the reader with at least Symbol set.
type Atom struct {
	// Symbol is the element symbol with its canonical capitalization ("Cl"),
	// or "*" for the wildcard atom.
	Symbol string
	// Aromatic is set for atoms written in lowercase.
	Aromatic bool
	// Bracket is set for atoms written in square brackets. Bracket atoms
	// carry their hydrogen count explicitly in HCount.
	Bracket bool
	// Isotope is the isotope number, 0 when unspecified.
	Isotope int
	// Charge is the formal charge.
	Charge int
	// HCount is the explicit hydrogen count of a bracket atom. It is
	// meaningless when Bracket is false.
	HCount int
	// Chirality is the tetrahedral annotation, if any.
	Chirality Chirality
	// Class is the atom class (the :n suffix), 0 when unspecified.
	Class int
}

// IsHeteroatom reports whether the atom is neither carbon nor hydrogen.
// Wildcards do not count as heteroatoms.
func (a Atom) IsHeteroatom() bool {
	return a.Symbol != "C" && a.Symbol != "H" && a.Symbol != "*"
}

// Number returns the atomic number, 0 for unknown symbols and wildcards.
func (a Atom) Number() int {
	return AtomicNumber(a.Symbol)
}
