package layout

import (
	"context"
	"math"
	"testing"

	"github.com/moldraw/moldraw/pkg/geom"
	"github.com/moldraw/moldraw/pkg/mol"
)

func TestOverlapScore(t *testing.T) {
	g := mol.NewGraph()
	for i := 0; i < 3; i++ {
		g.AddVertex(mol.Atom{Symbol: "C"})
	}
	g.Vertices[0].SetPosition(geom.V(0, 0))
	g.Vertices[1].SetPosition(geom.V(7.5, 0))
	g.Vertices[2].SetPosition(geom.V(100, 100))

	e, err := New(g, DefaultOptions())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	sb := e.overlapScore()
	if math.Abs(sb.total-0.5) > 1e-12 {
		t.Errorf("total = %g, want 0.5", sb.total)
	}
	if sb.per[0] != sb.per[1] || math.Abs(sb.per[0]-0.5) > 1e-12 {
		t.Errorf("per = %v, want 0.5 on the close pair", sb.per)
	}
	if sb.per[2] != 0 {
		t.Errorf("per[2] = %g, want 0", sb.per[2])
	}
}

func TestOverlapScoreSkipsHidden(t *testing.T) {
	g := mol.NewGraph()
	g.AddVertex(mol.Atom{Symbol: "C"})
	g.AddVertex(mol.Atom{Symbol: "H"})
	g.Vertices[0].SetPosition(geom.V(0, 0))
	g.Vertices[1].SetPosition(geom.V(1, 0))
	g.Vertices[1].Drawn = false

	e, err := New(g, DefaultOptions())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sb := e.overlapScore(); sb.total != 0 {
		t.Errorf("total = %g, want 0 with a hidden vertex", sb.total)
	}
}

func TestResolveTerminalsKeepsScore(t *testing.T) {
	g := prepare(t, "CC(C)(C)C(C)(C)C(C)(C)C")
	e, err := New(g, DefaultOptions())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	e.consolidateBridged()
	e.position()
	before := e.overlapScore().total
	e.resolveTerminals()
	if after := e.overlapScore().total; after > before+1e-9 {
		t.Errorf("resolveTerminals raised score from %g to %g", before, after)
	}
}

func TestFinetuneRespectsStepBudget(t *testing.T) {
	g := prepare(t, "CC(C)(C)C(C)(C)C(C)(C)C(C)(C)C")
	opts := DefaultOptions()
	opts.FinetuneSteps = 7
	e, err := New(g, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	e.consolidateBridged()
	e.position()
	e.finetune(context.Background())
	if e.stats.FinetuneSteps > 7 {
		t.Errorf("FinetuneSteps = %d, want at most 7", e.stats.FinetuneSteps)
	}
}

func TestRotatable(t *testing.T) {
	g := prepare(t, "CC=CCc1ccccc1")
	e, err := New(g, DefaultOptions())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	tests := []struct {
		name string
		a, b int
		want bool
	}{
		{"terminal single", 0, 1, false},
		{"double bond", 1, 2, false},
		{"chain single", 2, 3, true},
		{"ring attachment", 3, 4, true},
		{"aromatic ring bond", 4, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := g.EdgeBetween(tt.a, tt.b)
			if ed == nil {
				t.Fatalf("no edge %d-%d", tt.a, tt.b)
			}
			if got := e.rotatable(ed); got != tt.want {
				t.Errorf("rotatable(%d-%d) = %t, want %t", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
