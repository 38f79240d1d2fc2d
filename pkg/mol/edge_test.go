package mol

import "testing"

func TestCisTransSetRelation(t *testing.T) {
	var ct CisTrans

	if !ct.SetRelation(0, 3, RelationTrans) {
		t.Fatal("SetRelation(0, 3, trans) = false, want true")
	}
	if got := ct.RelationOf(0, 3); got != RelationTrans {
		t.Errorf("RelationOf(0, 3) = %v, want trans", got)
	}
	// The map is symmetric.
	if got := ct.RelationOf(3, 0); got != RelationTrans {
		t.Errorf("RelationOf(3, 0) = %v, want trans", got)
	}
	if !ct.Marked {
		t.Error("Marked = false after SetRelation")
	}
}

func TestCisTransConflict(t *testing.T) {
	var ct CisTrans
	if !ct.SetRelation(0, 3, RelationCis) {
		t.Fatal("first SetRelation failed")
	}
	if ct.SetRelation(3, 0, RelationTrans) {
		t.Error("conflicting SetRelation = true, want false")
	}
	// The original entry survives.
	if got := ct.RelationOf(0, 3); got != RelationCis {
		t.Errorf("RelationOf(0, 3) = %v, want cis", got)
	}
	// Re-asserting the same relation is fine.
	if !ct.SetRelation(0, 3, RelationCis) {
		t.Error("re-asserting same relation = false, want true")
	}
}

func TestCisTransNone(t *testing.T) {
	var ct CisTrans
	if ct.SetRelation(0, 3, RelationNone) {
		t.Error("SetRelation(none) = true, want false")
	}
	if ct.Marked {
		t.Error("Marked = true after rejected SetRelation")
	}
	if got := ct.RelationOf(0, 3); got != RelationNone {
		t.Errorf("RelationOf on empty map = %v, want none", got)
	}
}

func TestEdgeOther(t *testing.T) {
	e := &Edge{Source: 3, Target: 7}
	if got := e.Other(3); got != 7 {
		t.Errorf("Other(3) = %d, want 7", got)
	}
	if got := e.Other(7); got != 3 {
		t.Errorf("Other(7) = %d, want 3", got)
	}
	if got := e.Other(5); got != -1 {
		t.Errorf("Other(5) = %d, want -1", got)
	}
}

func TestBondWeight(t *testing.T) {
	tests := []struct {
		kind BondKind
		want int
	}{
		{BondSingle, 1},
		{BondDouble, 2},
		{BondTriple, 3},
		{BondQuadruple, 4},
		{BondAromatic, 1},
		{BondUp, 1},
		{BondDown, 1},
		{BondNone, 0},
	}
	for _, tt := range tests {
		if got := tt.kind.Weight(); got != tt.want {
			t.Errorf("%v.Weight() = %d, want %d", tt.kind, got, tt.want)
		}
	}
}
