package render

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/moldraw/moldraw/pkg/geom"
	"github.com/moldraw/moldraw/pkg/layout"
)

// Glyph advance estimates in units of the label font size. SVG cannot
// measure text, so both sinks budget label boxes from these.
const (
	glyphAdvance  = 0.60
	scriptAdvance = 0.45
	scriptSize    = 0.70
	subShift      = 0.25
	supShift      = -0.40
	labelHalfH    = 0.55
	labelMargin   = 0.12
)

type scriptKind int

const (
	scriptNormal scriptKind = iota
	scriptSub
	scriptSup
)

// labelPart is one run of label text at a single script level.
type labelPart struct {
	Text   string
	Script scriptKind
}

func (p labelPart) advance() float64 {
	n := float64(len([]rune(p.Text)))
	if p.Script == scriptNormal {
		return n * glyphAdvance
	}
	return n * scriptAdvance
}

type anchor int

const (
	anchorMiddle anchor = iota
	anchorStart
	anchorEnd
)

// vertexLabel composes the text for one atom. The mirrored form reads
// from the far end, e.g. "HO" instead of "OH", for atoms whose bonds
// approach from the right. Hidden atoms and plain chain carbons come
// back empty.
func vertexLabel(v *layout.SnapshotVertex, degree int, mirrored bool) ([]labelPart, anchor) {
	if !v.Drawn || !labelVisible(v, degree) {
		return nil, anchorMiddle
	}
	if v.MirrorLabel != "" {
		text := v.Label
		if mirrored {
			text = v.MirrorLabel
		}
		return subscriptDigits(text), labelAnchor(degree, mirrored)
	}

	var parts []labelPart
	hydrogen := func() {
		if v.Hydrogens <= 0 {
			return
		}
		parts = append(parts, labelPart{Text: "H"})
		if v.Hydrogens > 1 {
			parts = append(parts, labelPart{Text: fmt.Sprint(v.Hydrogens), Script: scriptSub})
		}
	}

	if mirrored {
		hydrogen()
	}
	if v.Isotope > 0 {
		parts = append(parts, labelPart{Text: fmt.Sprint(v.Isotope), Script: scriptSup})
	}
	parts = append(parts, labelPart{Text: v.Label})
	if !mirrored {
		hydrogen()
	}
	if v.Charge != 0 {
		parts = append(parts, labelPart{Text: chargeText(v.Charge), Script: scriptSup})
	}

	if len(parts) == 1 {
		return parts, anchorMiddle
	}
	return parts, labelAnchor(degree, mirrored)
}

// labelVisible reports whether the atom draws any text. Chain carbons
// stay implicit; everything decorated or isolated shows.
func labelVisible(v *layout.SnapshotVertex, degree int) bool {
	if v.MirrorLabel != "" || v.Label != "C" {
		return true
	}
	return v.Charge != 0 || v.Isotope != 0 || degree == 0
}

func labelAnchor(degree int, mirrored bool) anchor {
	if degree == 0 {
		return anchorMiddle
	}
	if mirrored {
		return anchorEnd
	}
	return anchorStart
}

func chargeText(c int) string {
	sign := "+"
	if c < 0 {
		sign = "-"
		c = -c
	}
	if c == 1 {
		return sign
	}
	return fmt.Sprintf("%d%s", c, sign)
}

// subscriptDigits splits a compacted group label into runs, turning
// digit runs into subscripts: "NO2" reads N, O, subscript 2.
func subscriptDigits(s string) []labelPart {
	var parts []labelPart
	var run strings.Builder
	digits := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		kind := scriptNormal
		if digits {
			kind = scriptSub
		}
		parts = append(parts, labelPart{Text: run.String(), Script: kind})
		run.Reset()
	}
	for _, r := range s {
		d := unicode.IsDigit(r)
		if d != digits {
			flush()
			digits = d
		}
		run.WriteRune(r)
	}
	flush()
	return parts
}

// plainText flattens label parts for sinks without script support.
func plainText(parts []labelPart) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// box is the clearance a label claims around its atom, per side.
type box struct {
	L, R, T, B float64
}

func (b box) empty() bool {
	return b.L == 0 && b.R == 0 && b.T == 0 && b.B == 0
}

// labelBox budgets the clearance box for a label. The anchor glyph sits
// on the atom position, so start and end anchored labels claim uneven
// widths.
func labelBox(parts []labelPart, a anchor, font float64) box {
	if len(parts) == 0 {
		return box{}
	}
	total := 0.0
	for _, p := range parts {
		total += p.advance()
	}
	total *= font
	half := glyphAdvance * font / 2
	margin := labelMargin * font
	b := box{T: labelHalfH * font, B: labelHalfH * font}
	switch a {
	case anchorStart:
		b.L = half + margin
		b.R = total - half + margin
	case anchorEnd:
		b.L = total - half + margin
		b.R = half + margin
	default:
		b.L = total/2 + margin
		b.R = total/2 + margin
	}
	return b
}

// trimToBox moves p along the segment p-q until it exits p's label box.
// Bonds stop at the box edge instead of running under the text.
func trimToBox(p, q geom.Vec, b box) geom.Vec {
	if b.empty() {
		return p
	}
	w := b.R
	if q.X <= p.X {
		w = b.L
	}
	h := b.T
	if q.Y < p.Y {
		h = b.B
	}
	k := math.Atan2(h, w)
	sx := math.Copysign(1, q.X-p.X)
	sy := math.Copysign(1, q.Y-p.Y)
	abs := math.Atan2(math.Abs(q.Y-p.Y), math.Abs(q.X-p.X))
	if abs > k {
		return geom.V(p.X+sx*h/math.Tan(abs), p.Y+sy*h)
	}
	return geom.V(p.X+sx*w, p.Y+sy*w*math.Tan(abs))
}

// labelDirections sweeps the drawn edges once and reports, per vertex,
// whether its label should read from the far end and how many drawn
// neighbours it has. A label mirrors when its drawn neighbours sit to
// the right, so the text grows away from the bond.
func labelDirections(s *layout.Snapshot) (mirrored []bool, degree []int) {
	pos := make([]geom.Vec, len(s.Vertices))
	for i, v := range s.Vertices {
		pos[i] = geom.V(v.X, v.Y)
	}
	sum := make([]geom.Vec, len(s.Vertices))
	degree = make([]int, len(s.Vertices))
	for _, e := range s.Edges {
		if !s.Vertices[e.Source].Drawn || !s.Vertices[e.Target].Drawn {
			continue
		}
		d := pos[e.Target].Sub(pos[e.Source]).Normalize()
		sum[e.Source] = sum[e.Source].Add(d)
		sum[e.Target] = sum[e.Target].Sub(d)
		degree[e.Source]++
		degree[e.Target]++
	}
	mirrored = make([]bool, len(s.Vertices))
	for i := range s.Vertices {
		mirrored[i] = degree[i] > 0 && sum[i].X > 0.05
	}
	return mirrored, degree
}
