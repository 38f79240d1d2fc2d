// Package smiles reads SMILES strings into molecular graphs.
//
// The reader covers the subset the depiction pipeline consumes: the organic
// subset and aromatic lowercase atoms, bracket atoms with isotope, chirality,
// hydrogen count, charge and atom class, bond symbols including the
// directional "/" and "\", branches, dot-separated fragments, and ring-bond
// digits including the %nn form. Ring-bond markers are resolved into plain
// edges before the graph is returned.
//
// The reader never panics on malformed input; every failure wraps one of the
// package sentinel errors together with the byte position.
package smiles

import (
	"errors"
	"fmt"
	"sort"

	"github.com/moldraw/moldraw/pkg/mol"
)

var (
	// ErrUnclosedRing is returned when a ring-bond digit is opened but never
	// closed again.
	ErrUnclosedRing = errors.New("unclosed ring bond")

	// ErrUnbalancedBranch is returned for a ')' without a matching '(' and
	// for branches still open at the end of the input.
	ErrUnbalancedBranch = errors.New("unbalanced branch")

	// ErrBadBracket is returned for a malformed bracket atom.
	ErrBadBracket = errors.New("malformed bracket atom")

	// ErrUnknownSymbol is returned for characters that fit no production.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrRingBondConflict is returned when both mentions of a ring bond
	// carry bond symbols that disagree.
	ErrRingBondConflict = errors.New("ring bond symbols disagree")
)

// Parse reads a SMILES string and returns the molecular graph. Parsing stops
// at the first whitespace, so inputs carrying a trailing title are accepted.
// An empty string yields an empty graph.
func Parse(src string) (*mol.Graph, error) {
	p := &parser{
		src:  src,
		g:    mol.NewGraph(),
		prev: -1,
		ring: make(map[int]ringRef),
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.g, nil
}

// ringRef remembers the first mention of a ring-bond digit. slot is the
// neighbour index the digit occupies at the opening atom; chirality parity
// reads neighbours in text order, so the closure partner must end up there
// rather than at the end of the list.
type ringRef struct {
	vertex  int
	bond    mol.BondKind
	hasBond bool
	pos     int
	slot    int
}

type parser struct {
	src string
	i   int
	g   *mol.Graph

	prev     int
	bond     mol.BondKind
	hasBond  bool
	dot      bool
	branches []int
	ring     map[int]ringRef
}

func (p *parser) run() error {
	for p.i < len(p.src) {
		c := p.src[p.i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			return p.finish()

		case c == '(':
			if p.prev < 0 {
				return p.errAt(p.i, "branch before first atom", ErrUnbalancedBranch)
			}
			p.branches = append(p.branches, p.prev)
			p.i++

		case c == ')':
			if len(p.branches) == 0 {
				return p.errAt(p.i, "no open branch", ErrUnbalancedBranch)
			}
			p.prev = p.branches[len(p.branches)-1]
			p.branches = p.branches[:len(p.branches)-1]
			p.i++

		case c == '.':
			if p.hasBond {
				return p.errAt(p.i, "bond before fragment separator", ErrUnknownSymbol)
			}
			p.dot = true
			p.i++

		case bondKinds[c] != 0 || c == '-':
			if p.hasBond {
				return p.errAt(p.i, "duplicate bond symbol", ErrUnknownSymbol)
			}
			if p.dot {
				return p.errAt(p.i, "bond after fragment separator", ErrUnknownSymbol)
			}
			p.bond = bondKind(c)
			p.hasBond = true
			p.i++

		case c >= '0' && c <= '9':
			if err := p.closeRing(int(c-'0'), p.i); err != nil {
				return err
			}
			p.i++

		case c == '%':
			n, err := p.twoDigitRing()
			if err != nil {
				return err
			}
			if err := p.closeRing(n, p.i - 3); err != nil {
				return err
			}

		case c == '[':
			a, err := p.parseBracket()
			if err != nil {
				return err
			}
			if err := p.addAtom(a); err != nil {
				return err
			}

		default:
			a, err := p.parseBareAtom()
			if err != nil {
				return err
			}
			if err := p.addAtom(a); err != nil {
				return err
			}
		}
	}
	return p.finish()
}

func (p *parser) finish() error {
	if len(p.branches) > 0 {
		return p.errAt(len(p.src), fmt.Sprintf("%d branch(es) left open", len(p.branches)), ErrUnbalancedBranch)
	}
	if p.hasBond {
		return p.errAt(len(p.src), "dangling bond", ErrUnknownSymbol)
	}
	if len(p.ring) > 0 {
		nums := make([]int, 0, len(p.ring))
		for n := range p.ring {
			nums = append(nums, n)
		}
		sort.Ints(nums)
		return p.errAt(p.ring[nums[0]].pos, fmt.Sprintf("ring bond %d", nums[0]), ErrUnclosedRing)
	}
	return nil
}

// bondKinds maps bond characters to kind+1 so the zero value means "not a
// bond character". '-' is handled separately because index 0 is BondSingle.
var bondKinds = map[byte]mol.BondKind{
	'=':  mol.BondDouble + 1,
	'#':  mol.BondTriple + 1,
	'$':  mol.BondQuadruple + 1,
	':':  mol.BondAromatic + 1,
	'/':  mol.BondUp + 1,
	'\\': mol.BondDown + 1,
}

func bondKind(c byte) mol.BondKind {
	if c == '-' {
		return mol.BondSingle
	}
	return bondKinds[c] - 1
}

// addAtom appends a vertex and bonds it to the running attachment point.
func (p *parser) addAtom(a mol.Atom) error {
	v := p.g.AddVertex(a)
	switch {
	case p.dot:
		p.dot = false
	case p.prev >= 0:
		if _, err := p.g.AddEdge(p.prev, v.ID, p.impliedBond(p.prev, v.ID)); err != nil {
			return p.errAt(p.i, "bond", err)
		}
	}
	p.prev = v.ID
	p.bond = mol.BondSingle
	p.hasBond = false
	return nil
}

// impliedBond resolves the pending bond symbol, defaulting to aromatic
// between two aromatic atoms and single otherwise.
func (p *parser) impliedBond(a, b int) mol.BondKind {
	if p.hasBond {
		return p.bond
	}
	if p.g.Vertices[a].Atom.Aromatic && p.g.Vertices[b].Atom.Aromatic {
		return mol.BondAromatic
	}
	return mol.BondSingle
}

// closeRing records the first mention of a ring number or resolves the
// second one into an edge. The edge runs from the first mention to the
// second; a bond symbol written at the second mention is read from that
// side, so directional kinds are flipped before the edge is created.
func (p *parser) closeRing(n, pos int) error {
	if p.prev < 0 {
		return p.errAt(pos, "ring bond before first atom", ErrUnknownSymbol)
	}
	ref, open := p.ring[n]
	if !open {
		p.ring[n] = ringRef{
			vertex:  p.prev,
			bond:    p.bond,
			hasBond: p.hasBond,
			pos:     pos,
			slot:    len(p.g.Vertices[p.prev].Neighbours),
		}
		p.bond = mol.BondSingle
		p.hasBond = false
		return nil
	}
	delete(p.ring, n)

	var kind mol.BondKind
	switch {
	case ref.hasBond && p.hasBond:
		want := flipDirectional(p.bond)
		if ref.bond != want {
			return p.errAt(pos, fmt.Sprintf("ring bond %d", n), ErrRingBondConflict)
		}
		kind = ref.bond
	case ref.hasBond:
		kind = ref.bond
	case p.hasBond:
		kind = flipDirectional(p.bond)
	default:
		if p.g.Vertices[ref.vertex].Atom.Aromatic && p.g.Vertices[p.prev].Atom.Aromatic {
			kind = mol.BondAromatic
		} else {
			kind = mol.BondSingle
		}
	}

	if _, err := p.g.AddEdge(ref.vertex, p.prev, kind); err != nil {
		return p.errAt(pos, fmt.Sprintf("ring bond %d", n), err)
	}
	// The edge was appended at the opening atom; move it back to the slot
	// where the digit was written.
	opener := p.g.Vertices[ref.vertex]
	moveLastTo(opener.Neighbours, ref.slot)
	moveLastTo(opener.Edges, ref.slot)
	p.bond = mol.BondSingle
	p.hasBond = false
	return nil
}

// moveLastTo shifts the final element of s into index idx, sliding the rest
// up by one.
func moveLastTo(s []int, idx int) {
	if idx < 0 || idx >= len(s)-1 {
		return
	}
	last := s[len(s)-1]
	copy(s[idx+1:], s[idx:len(s)-1])
	s[idx] = last
}

func flipDirectional(k mol.BondKind) mol.BondKind {
	switch k {
	case mol.BondUp:
		return mol.BondDown
	case mol.BondDown:
		return mol.BondUp
	default:
		return k
	}
}

// twoDigitRing consumes "%nn" and returns the ring number.
func (p *parser) twoDigitRing() (int, error) {
	start := p.i
	if p.i+2 >= len(p.src) || !isDigit(p.src[p.i+1]) || !isDigit(p.src[p.i+2]) {
		return 0, p.errAt(start, "%% needs two digits", ErrUnknownSymbol)
	}
	n := int(p.src[p.i+1]-'0')*10 + int(p.src[p.i+2]-'0')
	p.i += 3
	return n, nil
}

// parseBareAtom reads an atom written without brackets: the organic subset,
// its aromatic lowercase forms, and the wildcard.
func (p *parser) parseBareAtom() (mol.Atom, error) {
	start := p.i
	c := p.src[p.i]

	if c == '*' {
		p.i++
		return mol.Atom{Symbol: "*"}, nil
	}

	// Two-letter organic subset first.
	if p.i+1 < len(p.src) {
		two := p.src[p.i : p.i+2]
		if two == "Cl" || two == "Br" {
			p.i += 2
			return mol.Atom{Symbol: two}, nil
		}
	}

	switch c {
	case 'B', 'C', 'N', 'O', 'P', 'S', 'F', 'I':
		p.i++
		return mol.Atom{Symbol: string(c)}, nil
	case 'b', 'c', 'n', 'o', 'p', 's':
		p.i++
		return mol.Atom{Symbol: string(c - 'a' + 'A'), Aromatic: true}, nil
	}
	return mol.Atom{}, p.errAt(start, fmt.Sprintf("%q", string(c)), ErrUnknownSymbol)
}

// parseBracket reads a bracket atom starting at '['.
func (p *parser) parseBracket() (mol.Atom, error) {
	start := p.i
	p.i++ // consume '['
	a := mol.Atom{Bracket: true}

	// Isotope.
	for p.i < len(p.src) && isDigit(p.src[p.i]) {
		a.Isotope = a.Isotope*10 + int(p.src[p.i]-'0')
		p.i++
	}

	// Symbol.
	if p.i >= len(p.src) {
		return a, p.errAt(start, "truncated", ErrBadBracket)
	}
	switch c := p.src[p.i]; {
	case c == '*':
		a.Symbol = "*"
		p.i++
	case c >= 'A' && c <= 'Z':
		a.Symbol = string(c)
		p.i++
		// Take a second lowercase letter only when the element table knows
		// the two-letter symbol, so [CH4] stays C followed by an H count.
		if p.i < len(p.src) && p.src[p.i] >= 'a' && p.src[p.i] <= 'z' {
			if two := a.Symbol + string(p.src[p.i]); elementKnown(two) {
				a.Symbol = two
				p.i++
			}
		}
	case c >= 'a' && c <= 'z':
		sym, ok := aromaticBracket(p.src[p.i:])
		if !ok {
			return a, p.errAt(p.i, fmt.Sprintf("aromatic %q", string(c)), ErrBadBracket)
		}
		a.Symbol = sym
		a.Aromatic = true
		p.i += len(sym)
	default:
		return a, p.errAt(p.i, "missing element symbol", ErrBadBracket)
	}

	// Chirality.
	if p.i < len(p.src) && p.src[p.i] == '@' {
		p.i++
		if p.i < len(p.src) && p.src[p.i] == '@' {
			a.Chirality = mol.ChiralityCW
			p.i++
		} else {
			a.Chirality = mol.ChiralityCCW
		}
	}

	// Hydrogen count.
	if p.i < len(p.src) && p.src[p.i] == 'H' {
		p.i++
		a.HCount = 1
		if p.i < len(p.src) && isDigit(p.src[p.i]) {
			a.HCount = 0
			for p.i < len(p.src) && isDigit(p.src[p.i]) {
				a.HCount = a.HCount*10 + int(p.src[p.i]-'0')
				p.i++
			}
		}
	}

	// Charge.
	if p.i < len(p.src) && (p.src[p.i] == '+' || p.src[p.i] == '-') {
		sign := 1
		if p.src[p.i] == '-' {
			sign = -1
		}
		mark := p.src[p.i]
		count := 0
		for p.i < len(p.src) && p.src[p.i] == mark {
			count++
			p.i++
		}
		if count == 1 && p.i < len(p.src) && isDigit(p.src[p.i]) {
			count = 0
			for p.i < len(p.src) && isDigit(p.src[p.i]) {
				count = count*10 + int(p.src[p.i]-'0')
				p.i++
			}
		}
		a.Charge = sign * count
	}

	// Atom class.
	if p.i < len(p.src) && p.src[p.i] == ':' {
		p.i++
		if p.i >= len(p.src) || !isDigit(p.src[p.i]) {
			return a, p.errAt(p.i, "atom class needs digits", ErrBadBracket)
		}
		for p.i < len(p.src) && isDigit(p.src[p.i]) {
			a.Class = a.Class*10 + int(p.src[p.i]-'0')
			p.i++
		}
	}

	if p.i >= len(p.src) || p.src[p.i] != ']' {
		return a, p.errAt(start, "missing ']'", ErrBadBracket)
	}
	p.i++
	return a, nil
}

// aromaticBracket matches the lowercase symbols allowed inside brackets.
func aromaticBracket(rest string) (string, bool) {
	if len(rest) >= 2 {
		switch rest[:2] {
		case "se":
			return "Se", true
		case "as":
			return "As", true
		}
	}
	switch rest[0] {
	case 'b', 'c', 'n', 'o', 'p', 's':
		return string(rest[0] - 'a' + 'A'), true
	}
	return "", false
}

func elementKnown(symbol string) bool {
	_, ok := mol.LookupElement(symbol)
	return ok
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (p *parser) errAt(pos int, msg string, err error) error {
	return fmt.Errorf("position %d: %s: %w", pos, msg, err)
}
