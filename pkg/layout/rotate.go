package layout

import (
	"math"

	"github.com/moldraw/moldraw/pkg/geom"
)

// rotateDrawing turns the finished drawing around its centroid so the
// widest principal extent runs horizontally. Ring centers and stereo
// hydrogen directions follow.
func (e *Engine) rotateDrawing() {
	var pts []geom.Vec
	for _, v := range e.g.Vertices {
		if v.Positioned && v.Drawn {
			pts = append(pts, v.Position)
		}
	}
	if len(pts) < 2 {
		return
	}
	c := geom.Centroid(pts)
	var sxx, sxy, syy float64
	for _, p := range pts {
		dx, dy := p.X-c.X, p.Y-c.Y
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	theta := 0.5 * math.Atan2(2*sxy, sxx-syy)
	if theta == 0 {
		return
	}
	for _, v := range e.g.Vertices {
		v.Position = v.Position.RotateAround(-theta, c)
		if v.HydrogenDir != (geom.Vec{}) {
			v.HydrogenDir = v.HydrogenDir.Rotate(-theta)
		}
	}
	for _, r := range e.g.Rings {
		r.Center = r.Center.RotateAround(-theta, c)
	}
}
