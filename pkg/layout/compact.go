package layout

import (
	"strconv"
	"strings"

	"github.com/moldraw/moldraw/pkg/mol"
)

// pseudoGroup is one kind of collapsed terminal substituent: count atoms of
// the same symbol carrying the same hydrogen count each.
type pseudoGroup struct {
	symbol    string
	hydrogens int
	count     int
}

func (p pseudoGroup) text() string {
	var b strings.Builder
	b.WriteString(p.symbol)
	if p.count > 1 {
		b.WriteString(strconv.Itoa(p.count))
	}
	if p.hydrogens > 0 {
		b.WriteString("H")
		if p.hydrogens > 1 {
			b.WriteString(strconv.Itoa(p.hydrogens))
		}
	}
	return b.String()
}

func (p pseudoGroup) mirrorText() string {
	var b strings.Builder
	if p.hydrogens > 0 {
		b.WriteString("H")
		if p.hydrogens > 1 {
			b.WriteString(strconv.Itoa(p.hydrogens))
		}
	}
	b.WriteString(p.symbol)
	if p.count > 1 {
		b.WriteString(strconv.Itoa(p.count))
	}
	return b.String()
}

// compactGroups collapses terminal heteroatoms clustered on a shared host
// into one pseudo label, so a carboxyl carbon draws as "COOH" instead of
// three spread-out atoms. Hosts and substituents carrying stereo, charge or
// isotope annotations are left alone.
func (e *Engine) compactGroups() {
	for _, v := range e.g.Vertices {
		if !v.Drawn || v.InRing() || len(v.Neighbours) < 3 {
			continue
		}
		if v.Atom.Chirality != mol.ChiralityNone || v.Atom.Charge != 0 || v.Atom.Isotope != 0 {
			continue
		}
		if e.hasWedge(v) {
			continue
		}
		terms := e.collapsibleTerminals(v)
		if len(terms) < 2 {
			continue
		}
		groups, ok := e.groupTerminals(terms)
		if !ok {
			continue
		}
		var fwd, rev strings.Builder
		fwd.WriteString(v.Atom.Symbol)
		for _, gp := range groups {
			fwd.WriteString(gp.text())
		}
		for i := len(groups) - 1; i >= 0; i-- {
			rev.WriteString(groups[i].mirrorText())
		}
		rev.WriteString(v.Atom.Symbol)
		v.PseudoLabel = fwd.String()
		v.PseudoMirror = rev.String()
		for _, t := range terms {
			t.Drawn = false
		}
		e.log.Debug("compacted group", "vertex", v.ID, "label", v.PseudoLabel)
	}
}

// hasWedge reports whether any bond at v carries a stereo wedge.
func (e *Engine) hasWedge(v *mol.Vertex) bool {
	if v.HydrogenWedge != mol.WedgeNone {
		return true
	}
	for _, id := range v.Edges {
		if e.g.Edges[id].Wedge != mol.WedgeNone {
			return true
		}
	}
	return false
}

// collapsibleTerminals returns the plain terminal heteroatom neighbours of
// a host, in neighbour order.
func (e *Engine) collapsibleTerminals(v *mol.Vertex) []*mol.Vertex {
	var terms []*mol.Vertex
	for _, n := range v.Neighbours {
		w := e.g.Vertices[n]
		if !w.Drawn || !w.IsTerminal() || !w.Atom.IsHeteroatom() {
			continue
		}
		if w.Atom.Charge != 0 || w.Atom.Isotope != 0 || w.Atom.Chirality != mol.ChiralityNone {
			continue
		}
		terms = append(terms, w)
	}
	return terms
}

// groupTerminals merges terminals by symbol and hydrogen count, ordered by
// hydrogen count then symbol. It refuses shapes that would need bracketed
// labels, like two hydroxyls on one host.
func (e *Engine) groupTerminals(terms []*mol.Vertex) ([]pseudoGroup, bool) {
	var groups []pseudoGroup
	for _, t := range terms {
		h := e.g.ImplicitHydrogens(t)
		found := false
		for i := range groups {
			if groups[i].symbol == t.Atom.Symbol && groups[i].hydrogens == h {
				groups[i].count++
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, pseudoGroup{symbol: t.Atom.Symbol, hydrogens: h, count: 1})
		}
	}
	for _, gp := range groups {
		if gp.hydrogens > 0 && gp.count > 1 {
			return nil, false
		}
	}
	for i := 1; i < len(groups); i++ {
		for j := i; j > 0; j-- {
			a, b := groups[j-1], groups[j]
			if a.hydrogens > b.hydrogens || (a.hydrogens == b.hydrogens && a.symbol > b.symbol) {
				groups[j-1], groups[j] = b, a
			}
		}
	}
	return groups, true
}
