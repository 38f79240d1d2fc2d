package cli

import (
	"strings"
	"testing"
)

const testDOT = `graph mol {
  0 [label="C"]
  1 [label="O"]
  0 -- 1
}
`

func TestDotBytesPassthrough(t *testing.T) {
	data, err := dotBytes(testDOT, "")
	if err != nil {
		t.Fatalf("dotBytes() error: %v", err)
	}
	if string(data) != testDOT {
		t.Errorf("dotBytes() altered the source:\n%s", data)
	}
}

func TestDotBytesRenderSVG(t *testing.T) {
	data, err := dotBytes(testDOT, "svg")
	if err != nil {
		t.Fatalf("dotBytes(svg) error: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Errorf("rendered output is not SVG:\n%.200s", data)
	}
}

func TestDotBytesInvalidRender(t *testing.T) {
	if _, err := dotBytes(testDOT, "pdf"); err == nil {
		t.Error("dotBytes(pdf) should fail")
	}
}
