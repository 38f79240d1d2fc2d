package geom

import (
	"math"
	"testing"
)

func TestCircumradius(t *testing.T) {
	tests := []struct {
		name string
		side float64
		n    int
		want float64
	}{
		{"hexagon", 1, 6, 1},
		{"square", math.Sqrt2, 4, 1},
		{"triangle", math.Sqrt(3), 3, 1},
		{"clamped below 3", math.Sqrt(3), 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Circumradius(tt.side, tt.n); !approxEq(got, tt.want) {
				t.Errorf("Circumradius(%v, %d) = %v, want %v", tt.side, tt.n, got, tt.want)
			}
		})
	}
}

func TestApothem(t *testing.T) {
	// For a hexagon with circumradius 1 the apothem is √3/2.
	if got := Apothem(1, 6); !approxEq(got, math.Sqrt(3)/2) {
		t.Errorf("Apothem(1, 6) = %v, want √3/2", got)
	}
}

func TestCentralAngle(t *testing.T) {
	if got := CentralAngle(6); !approxEq(got, math.Pi/3) {
		t.Errorf("CentralAngle(6) = %v, want π/3", got)
	}
	if got := CentralAngle(4); !approxEq(got, math.Pi/2) {
		t.Errorf("CentralAngle(4) = %v, want π/2", got)
	}
}

func TestAngleConversion(t *testing.T) {
	if got := ToRad(180); !approxEq(got, math.Pi) {
		t.Errorf("ToRad(180) = %v, want π", got)
	}
	if got := ToDeg(math.Pi / 2); !approxEq(got, 90) {
		t.Errorf("ToDeg(π/2) = %v, want 90", got)
	}
}
