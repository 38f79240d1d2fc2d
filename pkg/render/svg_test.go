package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/moldraw/moldraw/pkg/layout"
	"github.com/moldraw/moldraw/pkg/ring"
	"github.com/moldraw/moldraw/pkg/smiles"
)

// snap lays out src and returns its snapshot.
func snap(t *testing.T, src string) *layout.Snapshot {
	t.Helper()
	g, err := smiles.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}
	ring.Perceive(g)
	e, err := layout.New(g, layout.DefaultOptions())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run(%q) error = %v", src, err)
	}
	return s
}

func TestRenderSVGBenzene(t *testing.T) {
	out := string(RenderSVG(snap(t, "c1ccccc1")))

	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Error("output does not start with an svg element")
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("output does not end with </svg>")
	}
	if !strings.Contains(out, "<title>C6H6</title>") {
		t.Error("missing formula title")
	}
	if got := strings.Count(out, "<line"); got != 12 {
		t.Errorf("line count = %d, want 12 (6 bonds with inner lines)", got)
	}
	if !strings.Contains(out, "stroke-dasharray") {
		t.Error("aromatic inner lines should be dashed")
	}
	if strings.Contains(out, "<text") {
		t.Error("plain ring carbons should not be labelled")
	}
}

func TestRenderSVGLabels(t *testing.T) {
	out := string(RenderSVG(snap(t, "CCO")))

	if !strings.Contains(out, ">O</tspan>") {
		t.Error("missing oxygen label")
	}
	if !strings.Contains(out, ">H</tspan>") {
		t.Error("missing hydroxyl hydrogen annotation")
	}
	if !strings.Contains(out, Default().Elements["O"]) {
		t.Error("oxygen label should use the element colour")
	}
}

func TestRenderSVGCharge(t *testing.T) {
	out := string(RenderSVG(snap(t, "C[N+](C)(C)C")))
	if !strings.Contains(out, ">+</tspan>") {
		t.Error("missing charge superscript")
	}
}

func TestRenderSVGStereoBond(t *testing.T) {
	out := string(RenderSVG(snap(t, "N[C@@H](C)C(=O)O")))

	solid := strings.Contains(out, "<polygon")
	hashed := strings.Contains(out, `<line x1`) && strings.Contains(out, `stroke-width="`)
	wedgeLines := 0
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, "<line") && strings.Contains(l, "stroke-width") {
			wedgeLines++
		}
	}
	if !solid && wedgeLines == 0 {
		t.Errorf("no wedge drawn (polygon %v, hashed %v)", solid, hashed)
	}
}

func TestRenderSVGDoubleBondAcyclic(t *testing.T) {
	out := string(RenderSVG(snap(t, "C=C")))
	if got := strings.Count(out, "<line"); got != 2 {
		t.Errorf("line count = %d, want 2 parallel lines", got)
	}
}

func TestRenderSVGTransparent(t *testing.T) {
	th := Default()
	th.Transparent = true
	out := string(RenderSVG(snap(t, "CC"), WithTheme(th)))
	if strings.Contains(out, "<rect") {
		t.Error("transparent theme should not paint a background")
	}
}

func TestRenderSVGScale(t *testing.T) {
	s := snap(t, "CCC")
	small := RenderSVG(s, WithScale(2))
	large := RenderSVG(s, WithScale(8))
	if bytes.Equal(small, large) {
		t.Fatal("scale change did not affect output")
	}

	viewBox := func(b []byte) string {
		i := bytes.Index(b, []byte("viewBox="))
		j := bytes.IndexByte(b[i+9:], '"')
		return string(b[i : i+9+j])
	}
	if viewBox(small) != viewBox(large) {
		t.Errorf("viewBox changed with scale: %q vs %q", viewBox(small), viewBox(large))
	}
}

func TestRenderSVGCenters(t *testing.T) {
	s := snap(t, "c1ccccc1")
	plain := string(RenderSVG(s))
	debug := string(RenderSVG(s, WithCenters()))
	if strings.Contains(plain, "<circle") {
		t.Error("ring centers drawn without the debug option")
	}
	if !strings.Contains(debug, "<circle") {
		t.Error("debug option did not draw ring centers")
	}
}

func TestRenderSVGDeterministic(t *testing.T) {
	a := RenderSVG(snap(t, "CC(C)Cc1ccccc1"))
	b := RenderSVG(snap(t, "CC(C)Cc1ccccc1"))
	if !bytes.Equal(a, b) {
		t.Error("two renders of the same molecule differ")
	}
}

func TestRenderSVGEmptySnapshot(t *testing.T) {
	s := &layout.Snapshot{Version: layout.SnapshotVersion}
	out := string(RenderSVG(s))
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Error("empty snapshot should still produce a document")
	}
}

func TestRenderSVGDarkTheme(t *testing.T) {
	out := string(RenderSVG(snap(t, "CCO"), WithTheme(Dark())))
	if !strings.Contains(out, Dark().Background) {
		t.Error("dark background missing")
	}
	if !strings.Contains(out, Dark().Elements["O"]) {
		t.Error("dark oxygen colour missing")
	}
}
