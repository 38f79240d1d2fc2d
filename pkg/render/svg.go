package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/moldraw/moldraw/pkg/geom"
	"github.com/moldraw/moldraw/pkg/layout"
)

// DefaultSVGScale is the pixel size of one drawing unit. The default
// bond length comes out near 60px.
const DefaultSVGScale = 4.0

// Length of a stereo hydrogen stub relative to the bond length.
const hydrogenStub = 0.66

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	theme   Theme
	scale   float64
	centers bool
}

// WithTheme sets the colour theme.
func WithTheme(t Theme) SVGOption {
	return func(r *svgRenderer) { r.theme = t }
}

// WithScale sets the pixel size of one drawing unit.
func WithScale(s float64) SVGOption {
	return func(r *svgRenderer) { r.scale = s }
}

// WithCenters overlays perceived ring centers for debugging layouts.
func WithCenters() SVGOption {
	return func(r *svgRenderer) { r.centers = true }
}

// canvas maps drawing coordinates onto the SVG plane. Drawings grow
// upward, SVG grows downward, so y flips.
type canvas struct {
	min  geom.Vec
	maxY float64
	pad  float64
}

func (c canvas) at(x, y float64) geom.Vec {
	return geom.V(x-c.min.X+c.pad, c.maxY-y+c.pad)
}

// RenderSVG renders a snapshot as a standalone SVG document.
func RenderSVG(s *layout.Snapshot, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	bond := s.Meta.BondLength
	if bond <= 0 {
		bond = layout.DefaultBondLength
	}
	font := bond * r.theme.FontFraction
	stroke := bond * r.theme.StrokeFraction
	pad := bond * r.theme.PaddingFraction

	min, max := s.Bounds()
	c := canvas{min: min, maxY: max.Y, pad: pad}
	width := max.X - min.X + 2*pad
	height := max.Y - min.Y + 2*pad

	mirrored, degree := labelDirections(s)
	labels := make([][]labelPart, len(s.Vertices))
	anchors := make([]anchor, len(s.Vertices))
	boxes := make([]box, len(s.Vertices))
	for i := range s.Vertices {
		labels[i], anchors[i] = vertexLabel(&s.Vertices[i], degree[i], mirrored[i])
		boxes[i] = labelBox(labels[i], anchors[i], font)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, math.Ceil(width*r.scale), math.Ceil(height*r.scale))
	if s.Meta.Formula != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(s.Meta.Formula))
	}
	if !r.theme.Transparent {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.theme.Background)
	}

	fmt.Fprintf(&buf, `  <g stroke="%s" stroke-width="%.2f" stroke-linecap="round" fill="none">`+"\n",
		r.theme.Bond, stroke)
	rings := newRingLookup(s, c.at)
	for i := range s.Edges {
		r.renderBond(&buf, s, &s.Edges[i], c, boxes, rings, stroke)
	}
	for i := range s.Vertices {
		r.renderHydrogenStub(&buf, &s.Vertices[i], c, boxes[i], bond)
	}
	buf.WriteString("  </g>\n")

	if r.centers {
		renderCenters(&buf, s, c, font)
	}

	r.renderLabels(&buf, s, c, labels, anchors, font, bond)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{theme: Default(), scale: DefaultSVGScale}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r *svgRenderer) renderBond(buf *bytes.Buffer, s *layout.Snapshot, e *layout.SnapshotEdge,
	c canvas, boxes []box, rings ringLookup, stroke float64) {
	vs, vt := &s.Vertices[e.Source], &s.Vertices[e.Target]
	if !vs.Drawn || !vt.Drawn {
		return
	}
	p1 := c.at(vs.X, vs.Y)
	p2 := c.at(vt.X, vt.Y)
	a := trimToBox(p1, p2, boxes[e.Source])
	b := trimToBox(p2, p1, boxes[e.Target])
	if a.DistanceSq(b) < 1e-6 {
		return
	}

	spacing := s.Meta.BondSpacing
	short := s.Meta.ShortBond

	switch {
	case e.Wedge == "up":
		renderWedge(buf, a, b, e, r.theme.Bond, spacing)
	case e.Wedge == "down":
		renderHash(buf, a, b, e, spacing, stroke)
	case e.Kind == "=":
		if center, ok := rings.sideCenter(e.Source, e.Target); ok {
			line(buf, a, b)
			ia, ib := innerLine(a, b, center, spacing, short)
			line(buf, ia, ib)
		} else {
			n, _ := geom.Normals(a, b)
			off := n.Mul(spacing / 2)
			line(buf, a.Add(off), b.Add(off))
			line(buf, a.Sub(off), b.Sub(off))
		}
	case e.Kind == ":":
		line(buf, a, b)
		if center, ok := rings.sideCenter(e.Source, e.Target); ok {
			ia, ib := innerLine(a, b, center, spacing, short)
			dashedLine(buf, ia, ib, spacing)
		}
	case e.Kind == "#":
		line(buf, a, b)
		n, _ := geom.Normals(a, b)
		off := n.Mul(spacing)
		line(buf, a.Add(off), b.Add(off))
		line(buf, a.Sub(off), b.Sub(off))
	case e.Kind == "$":
		n, _ := geom.Normals(a, b)
		for _, k := range []float64{-1.5, -0.5, 0.5, 1.5} {
			off := n.Mul(k * spacing)
			line(buf, a.Add(off), b.Add(off))
		}
	default:
		line(buf, a, b)
	}
}

// renderHydrogenStub draws the short wedge of a stereo hydrogen kept
// implicit by the layout, with its H label past the wide end.
func (r *svgRenderer) renderHydrogenStub(buf *bytes.Buffer, v *layout.SnapshotVertex,
	c canvas, b box, bond float64) {
	if v.HydrogenWedge == "" || !v.Drawn {
		return
	}
	dir := geom.V(v.HydrogenDirX, -v.HydrogenDirY)
	p := c.at(v.X, v.Y)
	end := p.Add(dir.Mul(bond * hydrogenStub))
	start := trimToBox(p, end, b)

	spacing := bond * 0.18
	stub := layout.SnapshotEdge{Wedge: v.HydrogenWedge, WedgePivot: 0, Source: 0, Target: 1}
	if v.HydrogenWedge == "up" {
		renderWedge(buf, start, end, &stub, r.theme.Bond, spacing)
	} else {
		renderHash(buf, start, end, &stub, spacing, bond*r.theme.StrokeFraction)
	}
}

func (r *svgRenderer) renderLabels(buf *bytes.Buffer, s *layout.Snapshot, c canvas,
	labels [][]labelPart, anchors []anchor, font, bond float64) {
	fmt.Fprintf(buf, `  <g font-family="%s" font-size="%.2f">`+"\n", escapeXML(r.theme.FontFamily), font)
	for i := range s.Vertices {
		v := &s.Vertices[i]
		p := c.at(v.X, v.Y)

		if v.HydrogenWedge != "" && v.Drawn {
			dir := geom.V(v.HydrogenDirX, -v.HydrogenDirY)
			h := p.Add(dir.Mul(bond*hydrogenStub + font*0.6))
			fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="central" fill="%s">H</text>`+"\n",
				h.X, h.Y, r.theme.ElementColor("H"))
		}

		if len(labels[i]) == 0 {
			continue
		}
		x := p.X
		name := "middle"
		switch anchors[i] {
		case anchorStart:
			x -= glyphAdvance * font / 2
			name = "start"
		case anchorEnd:
			x += glyphAdvance * font / 2
			name = "end"
		}
		color := r.theme.Label
		if v.MirrorLabel == "" {
			color = r.theme.ElementColor(v.Label)
		}
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" text-anchor="%s" dominant-baseline="central" fill="%s">`,
			x, p.Y, name, color)
		writeParts(buf, labels[i], font)
		buf.WriteString("</text>\n")
	}
	buf.WriteString("  </g>\n")
}

func writeParts(buf *bytes.Buffer, parts []labelPart, font float64) {
	cur := 0.0
	for _, p := range parts {
		target := 0.0
		size := font
		switch p.Script {
		case scriptSub:
			target = subShift * font
			size = scriptSize * font
		case scriptSup:
			target = supShift * font
			size = scriptSize * font
		}
		fmt.Fprintf(buf, `<tspan font-size="%.2f" dy="%.2f">%s</tspan>`,
			size, target-cur, escapeXML(p.Text))
		cur = target
	}
}

func renderWedge(buf *bytes.Buffer, a, b geom.Vec, e *layout.SnapshotEdge, fill string, spacing float64) {
	narrow, wide := wedgeEnds(a, b, e)
	w1, w2 := wedgeFlare(narrow, wide, spacing)
	fmt.Fprintf(buf, `  <polygon points="%.2f,%.2f %.2f,%.2f %.2f,%.2f" fill="%s" stroke="none"/>`+"\n",
		narrow.X, narrow.Y, w1.X, w1.Y, w2.X, w2.Y, fill)
}

func renderHash(buf *bytes.Buffer, a, b geom.Vec, e *layout.SnapshotEdge, spacing, stroke float64) {
	narrow, wide := wedgeEnds(a, b, e)
	for _, seg := range hashSegments(narrow, wide, spacing) {
		fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="%.2f"/>`+"\n",
			seg[0].X, seg[0].Y, seg[1].X, seg[1].Y, stroke*0.8)
	}
}

// wedgeEnds orders a bond's trimmed endpoints narrow-first. The narrow
// end sits on the stereocenter named by the pivot.
func wedgeEnds(a, b geom.Vec, e *layout.SnapshotEdge) (narrow, wide geom.Vec) {
	if e.WedgePivot == e.Target {
		return b, a
	}
	return a, b
}

// wedgeFlare returns the two wide-end corners of a solid wedge.
func wedgeFlare(narrow, wide geom.Vec, spacing float64) (geom.Vec, geom.Vec) {
	n, _ := geom.Normals(narrow, wide)
	half := n.Mul(spacing * 0.8)
	return wide.Add(half), wide.Sub(half)
}

// hashSegments lays out the rungs of a hashed wedge, widening from the
// narrow end.
func hashSegments(narrow, wide geom.Vec, spacing float64) [][2]geom.Vec {
	n, _ := geom.Normals(narrow, wide)
	count := int(narrow.Distance(wide) / (spacing * 1.1))
	if count < 4 {
		count = 4
	}
	segs := make([][2]geom.Vec, 0, count)
	for i := 1; i <= count; i++ {
		t := float64(i) / float64(count)
		m := narrow.Lerp(wide, t)
		half := n.Mul(spacing * 0.8 * t)
		segs = append(segs, [2]geom.Vec{m.Add(half), m.Sub(half)})
	}
	return segs
}

func renderCenters(buf *bytes.Buffer, s *layout.Snapshot, c canvas, font float64) {
	buf.WriteString(`  <g stroke="#E64980" fill="none">` + "\n")
	for _, rg := range s.Rings {
		p := c.at(rg.X, rg.Y)
		fmt.Fprintf(buf, `    <circle cx="%.2f" cy="%.2f" r="%.2f"/>`+"\n", p.X, p.Y, font*0.25)
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%.2f" fill="#E64980" stroke="none">%d</text>`+"\n",
			p.X+font*0.35, p.Y, font*0.5, rg.ID)
	}
	buf.WriteString("  </g>\n")
}

func line(buf *bytes.Buffer, a, b geom.Vec) {
	fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n", a.X, a.Y, b.X, b.Y)
}

func dashedLine(buf *bytes.Buffer, a, b geom.Vec, spacing float64) {
	fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-dasharray="%.2f %.2f"/>`+"\n",
		a.X, a.Y, b.X, b.Y, spacing, spacing*0.7)
}

// innerLine computes the second line of a ring double bond: offset
// toward the ring center and shortened to the configured fraction.
func innerLine(a, b, center geom.Vec, spacing, short float64) (geom.Vec, geom.Vec) {
	n1, n2 := geom.Normals(a, b)
	mid := a.Lerp(b, 0.5)
	n := n1
	if center.Sub(mid).Dot(n2) > center.Sub(mid).Dot(n1) {
		n = n2
	}
	off := n.Mul(spacing)
	t := (1 - short) / 2
	return a.Lerp(b, t).Add(off), a.Lerp(b, 1-t).Add(off)
}

// ringLookup resolves which side of a bond faces a ring interior.
type ringLookup struct {
	members []map[int]bool
	centers []geom.Vec
	sizes   []int
}

func newRingLookup(s *layout.Snapshot, at func(x, y float64) geom.Vec) ringLookup {
	rl := ringLookup{}
	for _, rg := range s.Rings {
		set := make(map[int]bool, len(rg.Members))
		for _, m := range rg.Members {
			set[m] = true
		}
		rl.members = append(rl.members, set)
		rl.centers = append(rl.centers, at(rg.X, rg.Y))
		rl.sizes = append(rl.sizes, len(rg.Members))
	}
	return rl
}

// sideCenter returns the center of the smallest ring containing both
// endpoints. Fused bonds belong to two rings; the smaller one wins so
// the inner line lands deterministically.
func (rl ringLookup) sideCenter(a, b int) (geom.Vec, bool) {
	best := -1
	for i, set := range rl.members {
		if !set[a] || !set[b] {
			continue
		}
		if best == -1 || rl.sizes[i] < rl.sizes[best] {
			best = i
		}
	}
	if best == -1 {
		return geom.Vec{}, false
	}
	return rl.centers[best], true
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
