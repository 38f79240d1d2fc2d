package mol

// BondKind enumerates the bond symbols the reader understands. Directional
// bonds ("/" and "\") are single bonds that additionally constrain the
// geometry of an adjacent double bond.
type BondKind int

const (
	// BondSingle is a plain single bond, written "-" or implied.
	BondSingle BondKind = iota
	// BondDouble is a double bond, written "=".
	BondDouble
	// BondTriple is a triple bond, written "#".
	BondTriple
	// BondQuadruple is a quadruple bond, written "$".
	BondQuadruple
	// BondAromatic is an explicit aromatic bond, written ":".
	BondAromatic
	// BondUp is the "/" directional single bond: reading source to target,
	// the target sits on the upper side of the following double bond.
	BondUp
	// BondDown is the "\" directional single bond.
	BondDown
	// BondNone is the "." non-bond separating disconnected fragments.
	BondNone
)

// Weight returns the bond order used for valence sums, subtree-depth
// weighting and the straight-chain rule. Aromatic and directional bonds
// weigh like single bonds; the non-bond weighs nothing.
func (b BondKind) Weight() int {
	switch b {
	case BondDouble:
		return 2
	case BondTriple:
		return 3
	case BondQuadruple:
		return 4
	case BondNone:
		return 0
	default:
		return 1
	}
}

// IsDirectional reports whether the bond carries a cis/trans marker.
func (b BondKind) IsDirectional() bool {
	return b == BondUp || b == BondDown
}

func (b BondKind) String() string {
	switch b {
	case BondSingle:
		return "-"
	case BondDouble:
		return "="
	case BondTriple:
		return "#"
	case BondQuadruple:
		return "$"
	case BondAromatic:
		return ":"
	case BondUp:
		return "/"
	case BondDown:
		return "\\"
	case BondNone:
		return "."
	default:
		return "?"
	}
}

// Wedge is the depiction of a stereo bond at a tetrahedral center.
type Wedge int

const (
	// WedgeNone draws a plain line.
	WedgeNone Wedge = iota
	// WedgeUp draws a solid wedge: the target points toward the viewer.
	WedgeUp
	// WedgeDown draws a hashed wedge: the target points away.
	WedgeDown
)

func (w Wedge) String() string {
	switch w {
	case WedgeUp:
		return "up"
	case WedgeDown:
		return "down"
	default:
		return "none"
	}
}
