package layout

import (
	"context"
	"testing"

	"github.com/moldraw/moldraw/pkg/geom"
	"github.com/moldraw/moldraw/pkg/mol"
)

// drawnSide is the cross product sign of the bond axis x->y with the arm
// from terminus to sub: positive above the axis, negative below.
func drawnSide(g *mol.Graph, x, y, terminus, sub int) float64 {
	axis := g.Vertices[y].Position.Sub(g.Vertices[x].Position)
	arm := g.Vertices[sub].Position.Sub(g.Vertices[terminus].Position)
	return axis.Cross(arm)
}

func TestDirectionalSide(t *testing.T) {
	tests := []struct {
		name string
		bond mol.BondKind
		src  int
		t    int
		want int
	}{
		{"up written sub first", mol.BondUp, 0, 1, -1},
		{"up written terminus first", mol.BondUp, 1, 1, 1},
		{"down written sub first", mol.BondDown, 0, 1, 1},
		{"down written terminus first", mol.BondDown, 1, 1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := &mol.Edge{Source: tt.src, Target: 1 - tt.src, Bond: tt.bond}
			if got := directionalSide(ed, tt.t); got != tt.want {
				t.Errorf("directionalSide() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTerminusSidesPlainInference(t *testing.T) {
	// Terminus 0 of the double bond 0=1 carries a directional substituent
	// and a plain one. The plain side is inferred for a chain substituent
	// but not for a ring continuation, which no flip plan could move.
	build := func(t *testing.T, ringBond bool) *Engine {
		t.Helper()
		g := mol.NewGraph()
		for i := 0; i < 4; i++ {
			g.AddVertex(mol.Atom{Symbol: "C"})
		}
		if _, err := g.AddEdge(0, 1, mol.BondDouble); err != nil {
			t.Fatal(err)
		}
		if _, err := g.AddEdge(0, 2, mol.BondUp); err != nil {
			t.Fatal(err)
		}
		plain, err := g.AddEdge(0, 3, mol.BondSingle)
		if err != nil {
			t.Fatal(err)
		}
		plain.InRing = ringBond
		e, err := New(g, DefaultOptions())
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		return e
	}

	chain := build(t, false)
	subs := chain.terminusSides(0, 1)
	if len(subs) != 2 {
		t.Fatalf("chain substituents = %d, want 2", len(subs))
	}
	if subs[1].vertex != 3 || subs[1].side != -subs[0].side {
		t.Errorf("plain substituent = %+v, want vertex 3 opposite %+v", subs[1], subs[0])
	}

	ring := build(t, true)
	subs = ring.terminusSides(0, 1)
	if len(subs) != 1 || subs[0].vertex != 2 {
		t.Errorf("ring-side substituents = %+v, want only the marked vertex 2", subs)
	}
}

func TestTransDoubleBond(t *testing.T) {
	g, _ := draw(t, "F/C=C/F", DefaultOptions())
	sa := drawnSide(g, 1, 2, 1, 0)
	sb := drawnSide(g, 1, 2, 2, 3)
	if sa*sb >= 0 {
		t.Errorf("fluorines drawn on the same side, want opposite: %g, %g", sa, sb)
	}
	ed := g.EdgeBetween(1, 2)
	if !ed.CisTrans.Marked {
		t.Error("double bond not marked")
	}
	if rel := ed.CisTrans.RelationOf(0, 3); rel != mol.RelationTrans {
		t.Errorf("RelationOf(0, 3) = %v, want trans", rel)
	}
	if !ed.CisTrans.Fixed {
		t.Error("double bond not fixed after correction")
	}
}

func TestCisDoubleBond(t *testing.T) {
	g, _ := draw(t, "F/C=C\\F", DefaultOptions())
	sa := drawnSide(g, 1, 2, 1, 0)
	sb := drawnSide(g, 1, 2, 2, 3)
	if sa*sb <= 0 {
		t.Errorf("fluorines drawn on opposite sides, want same: %g, %g", sa, sb)
	}
	if rel := g.EdgeBetween(1, 2).CisTrans.RelationOf(0, 3); rel != mol.RelationCis {
		t.Errorf("RelationOf(0, 3) = %v, want cis", rel)
	}
}

func TestConjugatedChain(t *testing.T) {
	g, _ := draw(t, "F/C=C/C=C/F", DefaultOptions())
	first := g.EdgeBetween(1, 2)
	second := g.EdgeBetween(3, 4)
	if !first.CisTrans.Marked || !second.CisTrans.Marked {
		t.Fatal("conjugated bonds not marked")
	}
	if rel := first.CisTrans.RelationOf(0, 3); rel != mol.RelationTrans {
		t.Errorf("first RelationOf(0, 3) = %v, want trans", rel)
	}
	if rel := second.CisTrans.RelationOf(2, 5); rel != mol.RelationTrans {
		t.Errorf("second RelationOf(2, 5) = %v, want trans", rel)
	}
	if sa, sb := drawnSide(g, 1, 2, 1, 0), drawnSide(g, 1, 2, 2, 3); sa*sb >= 0 {
		t.Errorf("first bond drawn cis, want trans: %g, %g", sa, sb)
	}
	if sa, sb := drawnSide(g, 3, 4, 3, 2), drawnSide(g, 3, 4, 4, 5); sa*sb >= 0 {
		t.Errorf("second bond drawn cis, want trans: %g, %g", sa, sb)
	}
	if !first.CisTrans.Fixed || !second.CisTrans.Fixed {
		t.Error("conjugated bonds not fixed")
	}
}

func TestRingClosureStereoPreserved(t *testing.T) {
	g, _ := draw(t, "C1/C=C/CC=C\\1", DefaultOptions())
	marked := g.EdgeBetween(1, 2)
	if !marked.CisTrans.Marked {
		t.Fatal("flanked ring bond not marked")
	}
	if rel := marked.CisTrans.RelationOf(0, 3); rel != mol.RelationTrans {
		t.Errorf("RelationOf(0, 3) = %v, want trans", rel)
	}
	// The far double bond has a directional marker on one terminus only.
	if g.EdgeBetween(4, 5).CisTrans.Marked {
		t.Error("half-marked bond should stay unconstrained")
	}
}

func TestStereoGroups(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		groups int
	}{
		{"conjugated", "F/C=C/C=C/F", 1},
		{"insulated", "F/C=C/CC/C=C/F", 2},
		{"single", "F/C=C/F", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := prepare(t, tt.src)
			e, err := New(g, DefaultOptions())
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			marked := e.buildOrientationMaps()
			if got := len(e.stereoGroups(marked)); got != tt.groups {
				t.Errorf("groups = %d, want %d", got, tt.groups)
			}
		})
	}
}

// TestFlipStereoInRing rebuilds the situation the overlap passes can leave
// behind: an exocyclic substituent rotated onto the wrong side of a ring
// double bond.
func TestFlipStereoInRing(t *testing.T) {
	g := mol.NewGraph()
	for i := 0; i < 6; i++ {
		g.AddVertex(mol.Atom{Symbol: "C"})
	}
	double, err := g.AddEdge(0, 1, mol.BondDouble)
	if err != nil {
		t.Fatal(err)
	}
	double.InRing = true
	if _, err := g.AddEdge(0, 2, mol.BondUp); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddEdge(1, 3, mol.BondUp); err != nil {
		t.Fatal(err)
	}
	ringLeft, err := g.AddEdge(0, 4, mol.BondSingle)
	if err != nil {
		t.Fatal(err)
	}
	ringLeft.InRing = true
	ringRight, err := g.AddEdge(1, 5, mol.BondSingle)
	if err != nil {
		t.Fatal(err)
	}
	ringRight.InRing = true

	positions := []geom.Vec{
		geom.V(0, 0),    // double bond source
		geom.V(15, 0),   // double bond target
		geom.V(-7, -13), // exocyclic, drawn on the wrong side
		geom.V(22, 13),  // exocyclic, correct
		geom.V(-7, 13),  // ring continuation
		geom.V(22, -13), // ring continuation
	}
	for i, p := range positions {
		g.Vertices[i].SetPosition(p)
	}

	e, err := New(g, DefaultOptions())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	e.correctCisTrans()

	if g.Vertices[2].Position.Y <= 0 {
		t.Errorf("substituent stayed at %v, want mirrored above the axis", g.Vertices[2].Position)
	}
	if !double.CisTrans.Fixed {
		t.Error("bond not fixed after flip")
	}
	if e.stats.FlippedBonds != 1 {
		t.Errorf("FlippedBonds = %d, want 1", e.stats.FlippedBonds)
	}
}

func TestCorrectCisTransUnsatisfiable(t *testing.T) {
	// Trans across an unsubstituted six-ring bond cannot be drawn; the
	// run must finish with a warning instead of looping.
	g := prepare(t, "C1/C=C/CC=C\\1")
	e, err := New(g, DefaultOptions())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if e.stats.StereoWarnings == 0 {
		t.Error("StereoWarnings = 0, want at least one")
	}
}
