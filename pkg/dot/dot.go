package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/moldraw/moldraw/pkg/layout"
	"github.com/moldraw/moldraw/pkg/mol"
)

// Options configures diagram generation.
type Options struct {
	// Detailed includes atom IDs, hydrogen counts, charges and isotopes in
	// node labels. When false, only the atom label is shown.
	Detailed bool
	// Positions pins nodes to the drawing coordinates via pos attributes.
	// The built-in renderer ignores them; external `neato -n2` honours them.
	Positions bool
}

// ringPalette fills ring-member nodes. Rings cycle through it by ID, so
// fused systems come out in distinct colours.
var ringPalette = []string{
	"#dbeafe", "#dcfce7", "#fee2e2", "#fef9c3", "#f3e8ff", "#cffafe",
}

// posScale converts bond-length coordinates to points. One bond per inch
// keeps default-sized circle nodes clear of each other under neato -n2.
const posScale = 72.0

// FromSnapshot converts a finished drawing to Graphviz DOT. Hidden
// vertices and their bonds are skipped, matching what a renderer shows.
func FromSnapshot(s *layout.Snapshot, opts Options) string {
	var buf bytes.Buffer
	writeHeader(&buf)

	ringOf := make(map[int]int)
	for _, r := range s.Rings {
		for _, m := range r.Members {
			if _, ok := ringOf[m]; !ok {
				ringOf[m] = r.ID
			}
		}
	}

	drawn := make(map[int]bool, len(s.Vertices))
	for _, v := range s.Vertices {
		if !v.Drawn {
			continue
		}
		drawn[v.ID] = true

		attrs := []string{fmt.Sprintf("label=%q", snapshotLabel(v, opts.Detailed))}
		if ringID, ok := ringOf[v.ID]; ok {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", ringPalette[ringID%len(ringPalette)]))
		}
		if opts.Positions {
			attrs = append(attrs, fmt.Sprintf("pos=\"%.2f,%.2f!\"", v.X*posScale, v.Y*posScale))
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", v.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range s.Edges {
		if !drawn[e.Source] || !drawn[e.Target] {
			continue
		}
		writeBond(&buf, e.Source, e.Target, e.Weight, e.Aromatic, e.Wedge)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// FromGraph converts a bare molecular graph to DOT, typically before any
// layout has run. Every vertex is shown, concealed hydrogens included.
func FromGraph(g *mol.Graph, opts Options) string {
	var buf bytes.Buffer
	writeHeader(&buf)

	for _, v := range g.Vertices {
		attrs := []string{fmt.Sprintf("label=%q", graphLabel(v, opts.Detailed))}
		if len(v.Rings) > 0 {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", ringPalette[v.Rings[0]%len(ringPalette)]))
		}
		if opts.Positions && v.Positioned {
			attrs = append(attrs, fmt.Sprintf("pos=\"%.2f,%.2f!\"", v.Position.X*posScale, v.Position.Y*posScale))
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", v.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		writeBond(&buf, e.Source, e.Target, e.Weight(), e.InAromaticRing, e.Wedge.String())
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeHeader(buf *bytes.Buffer) {
	buf.WriteString("graph mol {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [penwidth=1.5];\n")
	buf.WriteString("\n")
}

// writeBond emits one bond. Bond order shows as parallel edges; aromatic
// bonds get a dashed companion; wedges mark the single line they decorate.
func writeBond(buf *bytes.Buffer, a, b, weight int, aromatic bool, wedge string) {
	if aromatic {
		fmt.Fprintf(buf, "  %d -- %d;\n", a, b)
		fmt.Fprintf(buf, "  %d -- %d [style=dashed];\n", a, b)
		return
	}
	if weight < 1 {
		weight = 1
	}
	for i := 0; i < weight; i++ {
		attrs := ""
		if i == 0 {
			switch wedge {
			case "up":
				attrs = " [penwidth=3]"
			case "down":
				attrs = " [style=dotted]"
			}
		}
		fmt.Fprintf(buf, "  %d -- %d%s;\n", a, b, attrs)
	}
}

func snapshotLabel(v layout.SnapshotVertex, detailed bool) string {
	if !detailed {
		return v.Label
	}

	parts := []string{fmt.Sprintf("id: %d", v.ID)}
	if v.Hydrogens > 0 {
		parts = append(parts, fmt.Sprintf("h: %d", v.Hydrogens))
	}
	if v.Charge != 0 {
		parts = append(parts, fmt.Sprintf("charge: %+d", v.Charge))
	}
	if v.Isotope != 0 {
		parts = append(parts, fmt.Sprintf("isotope: %d", v.Isotope))
	}
	return v.Label + "\n" + strings.Join(parts, "\n")
}

func graphLabel(v *mol.Vertex, detailed bool) string {
	if !detailed {
		return v.Atom.Symbol
	}

	parts := []string{fmt.Sprintf("id: %d", v.ID)}
	if v.Atom.Charge != 0 {
		parts = append(parts, fmt.Sprintf("charge: %+d", v.Atom.Charge))
	}
	if v.Atom.Isotope != 0 {
		parts = append(parts, fmt.Sprintf("isotope: %d", v.Atom.Isotope))
	}
	if len(v.Rings) > 0 {
		ids := make([]string, len(v.Rings))
		for i, r := range v.Rings {
			ids[i] = strconv.Itoa(r)
		}
		parts = append(parts, "rings: "+strings.Join(ids, ","))
	}
	return v.Atom.Symbol + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(src string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(src string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the diagram scales to its
// container instead of carrying Graphviz's point-based size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
