package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fogleman/gg"

	"github.com/moldraw/moldraw/pkg/fonts"
	"github.com/moldraw/moldraw/pkg/geom"
	"github.com/moldraw/moldraw/pkg/layout"
)

// DefaultMaxSize bounds the longer raster edge in pixels.
const DefaultMaxSize = 1024

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	theme    Theme
	maxSize  int
	fontPath string
}

// WithPNGTheme sets the colour theme.
func WithPNGTheme(t Theme) PNGOption {
	return func(r *pngRenderer) { r.theme = t }
}

// WithMaxSize bounds the longer canvas edge in pixels.
func WithMaxSize(px int) PNGOption {
	return func(r *pngRenderer) { r.maxSize = px }
}

// WithFontFile loads atom label text from a TTF file. Without it the
// built-in fixed face draws the labels.
func WithFontFile(path string) PNGOption {
	return func(r *pngRenderer) { r.fontPath = path }
}

// RenderPNG rasterizes a snapshot. The drawing scales to fit the
// configured maximum edge with the label font tracking the bond length.
func RenderPNG(s *layout.Snapshot, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{theme: Default(), maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(&r)
	}
	if r.maxSize < 16 {
		return nil, fmt.Errorf("render png: max size %d too small", r.maxSize)
	}

	bond := s.Meta.BondLength
	if bond <= 0 {
		bond = layout.DefaultBondLength
	}
	min, max := s.Bounds()
	rx := math.Max(max.X-min.X, bond)
	ry := math.Max(max.Y-min.Y, bond)
	scale := math.Min(float64(r.maxSize)/rx, float64(r.maxSize)/ry)

	fontSize := bond * r.theme.FontFraction * scale
	if limit := float64(r.maxSize) / 16; fontSize > limit {
		fontSize = limit
	}
	pad := fontSize * 1.5
	width := int(rx*scale + 2*pad)
	height := int(ry*scale + 2*pad)

	// Center drawings narrower than the range floor.
	offX := (rx - (max.X - min.X)) * scale / 2
	offY := (ry - (max.Y - min.Y)) * scale / 2
	at := func(x, y float64) geom.Vec {
		return geom.V(
			pad+offX+scale*(x-min.X),
			float64(height)-pad-offY-scale*(y-min.Y),
		)
	}

	dc := gg.NewContext(width, height)
	if !r.theme.Transparent {
		dc.SetHexColor(r.theme.Background)
		dc.Clear()
	}
	if r.fontPath != "" {
		if err := dc.LoadFontFace(r.fontPath, fontSize); err != nil {
			return nil, fmt.Errorf("render png: load font %s: %w", r.fontPath, err)
		}
	} else {
		dc.SetFontFace(fonts.Face())
	}

	boxes := r.drawLabels(dc, s, at, fontSize, bond, scale)
	r.drawBonds(dc, s, at, boxes, bond, scale)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("render png: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// drawLabels paints atom text and measures the clearance boxes bonds
// trim against. Text draws first so boxes come from real metrics.
func (r *pngRenderer) drawLabels(dc *gg.Context, s *layout.Snapshot,
	at func(x, y float64) geom.Vec, fontSize, bond, scale float64) []box {
	mirrored, degree := labelDirections(s)
	boxes := make([]box, len(s.Vertices))
	for i := range s.Vertices {
		v := &s.Vertices[i]
		if !v.Drawn {
			continue
		}
		p := at(v.X, v.Y)

		if v.HydrogenWedge != "" {
			dir := geom.V(v.HydrogenDirX, -v.HydrogenDirY)
			h := p.Add(dir.Mul(scale*bond*hydrogenStub + fontSize*0.6))
			dc.SetHexColor(r.theme.ElementColor("H"))
			dc.DrawStringAnchored("H", h.X, h.Y, 0.5, 0.5)
		}

		parts, _ := vertexLabel(v, degree[i], mirrored[i])
		text := plainText(parts)
		if text == "" {
			continue
		}
		w, _ := dc.MeasureString(text)
		boxes[i] = box{
			L: w/2 + fontSize*labelMargin,
			R: w/2 + fontSize*labelMargin,
			T: fontSize * labelHalfH,
			B: fontSize * labelHalfH,
		}
		color := r.theme.Label
		if v.MirrorLabel == "" {
			color = r.theme.ElementColor(v.Label)
		}
		dc.SetHexColor(color)
		dc.DrawStringAnchored(text, p.X, p.Y, 0.5, 0.5)
	}
	return boxes
}

func (r *pngRenderer) drawBonds(dc *gg.Context, s *layout.Snapshot,
	at func(x, y float64) geom.Vec, boxes []box, bond, scale float64) {
	stroke := bond * r.theme.StrokeFraction * scale
	spacing := s.Meta.BondSpacing * scale
	short := s.Meta.ShortBond
	rings := newRingLookup(s, at)

	dc.SetHexColor(r.theme.Bond)
	dc.SetLineWidth(stroke)

	stroked := func(a, b geom.Vec) {
		dc.DrawLine(a.X, a.Y, b.X, b.Y)
		dc.Stroke()
	}

	for i := range s.Edges {
		e := &s.Edges[i]
		vs, vt := &s.Vertices[e.Source], &s.Vertices[e.Target]
		if !vs.Drawn || !vt.Drawn {
			continue
		}
		a := trimToBox(at(vs.X, vs.Y), at(vt.X, vt.Y), boxes[e.Source])
		b := trimToBox(at(vt.X, vt.Y), at(vs.X, vs.Y), boxes[e.Target])
		if a.DistanceSq(b) < 1e-6 {
			continue
		}

		switch {
		case e.Wedge == "up":
			fillWedge(dc, a, b, e, spacing)
		case e.Wedge == "down":
			hashWedge(dc, a, b, e, spacing, stroke)
		case e.Kind == "=":
			if center, ok := rings.sideCenter(e.Source, e.Target); ok {
				stroked(a, b)
				ia, ib := innerLine(a, b, center, spacing, short)
				stroked(ia, ib)
			} else {
				n, _ := geom.Normals(a, b)
				off := n.Mul(spacing / 2)
				stroked(a.Add(off), b.Add(off))
				stroked(a.Sub(off), b.Sub(off))
			}
		case e.Kind == ":":
			stroked(a, b)
			if center, ok := rings.sideCenter(e.Source, e.Target); ok {
				ia, ib := innerLine(a, b, center, spacing, short)
				dc.SetDash(spacing, spacing*0.7)
				stroked(ia, ib)
				dc.SetDash()
			}
		case e.Kind == "#":
			stroked(a, b)
			n, _ := geom.Normals(a, b)
			off := n.Mul(spacing)
			stroked(a.Add(off), b.Add(off))
			stroked(a.Sub(off), b.Sub(off))
		case e.Kind == "$":
			n, _ := geom.Normals(a, b)
			for _, k := range []float64{-1.5, -0.5, 0.5, 1.5} {
				off := n.Mul(k * spacing)
				stroked(a.Add(off), b.Add(off))
			}
		default:
			stroked(a, b)
		}
	}

	for i := range s.Vertices {
		v := &s.Vertices[i]
		if v.HydrogenWedge == "" || !v.Drawn {
			continue
		}
		dir := geom.V(v.HydrogenDirX, -v.HydrogenDirY)
		p := at(v.X, v.Y)
		end := p.Add(dir.Mul(scale * bond * hydrogenStub))
		start := trimToBox(p, end, boxes[i])
		stub := layout.SnapshotEdge{Wedge: v.HydrogenWedge, Source: 0, Target: 1}
		if v.HydrogenWedge == "up" {
			fillWedge(dc, start, end, &stub, spacing)
		} else {
			hashWedge(dc, start, end, &stub, spacing, stroke)
		}
	}
}

func fillWedge(dc *gg.Context, a, b geom.Vec, e *layout.SnapshotEdge, spacing float64) {
	narrow, wide := wedgeEnds(a, b, e)
	w1, w2 := wedgeFlare(narrow, wide, spacing)
	dc.MoveTo(narrow.X, narrow.Y)
	dc.LineTo(w1.X, w1.Y)
	dc.LineTo(w2.X, w2.Y)
	dc.ClosePath()
	dc.Fill()
}

func hashWedge(dc *gg.Context, a, b geom.Vec, e *layout.SnapshotEdge, spacing, stroke float64) {
	narrow, wide := wedgeEnds(a, b, e)
	dc.SetLineWidth(stroke * 0.8)
	for _, seg := range hashSegments(narrow, wide, spacing) {
		dc.DrawLine(seg[0].X, seg[0].Y, seg[1].X, seg[1].Y)
		dc.Stroke()
	}
	dc.SetLineWidth(stroke)
}
