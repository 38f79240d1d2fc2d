package layout

import (
	"math"

	"github.com/moldraw/moldraw/pkg/geom"
	"github.com/moldraw/moldraw/pkg/mol"
)

// layoutBridged places the members of a consolidated bridged ring by spring
// relaxation: target distances come from graph distances inside the system,
// scaled to bond length. Members positioned before the call (the anchor and
// anything shared with placed rings) stay pinned.
func (e *Engine) layoutBridged(r *mol.Ring, center geom.Vec, start *mol.Vertex) {
	members := r.Members
	n := len(members)
	if n == 0 {
		return
	}
	index := make(map[int]int, n)
	for i, m := range members {
		index[m] = i
	}
	pinned := make([]bool, n)
	for i, m := range members {
		pinned[i] = e.g.Vertices[m].Positioned
	}

	e.seedBridged(r, center, start, index)

	dist := e.memberDistances(members, index)
	L := e.opts.BondLength
	pos := make([]geom.Vec, n)
	for i, m := range members {
		pos[i] = e.g.Vertices[m].Position
	}

	// Spring constants k_ij = 1/d², rest lengths l_ij = L·d.
	spring := func(i, j int) (k, l float64) {
		d := dist[i][j]
		if d <= 0 {
			d = float64(n) // disconnected within the system; keep weak
		}
		return 1 / (d * d), L * d
	}

	gradient := func(m int) (gx, gy float64) {
		for i := 0; i < n; i++ {
			if i == m {
				continue
			}
			k, l := spring(m, i)
			dx := pos[m].X - pos[i].X
			dy := pos[m].Y - pos[i].Y
			dd := math.Hypot(dx, dy)
			if dd < 1e-9 {
				dd = 1e-9
			}
			gx += k * dx * (1 - l/dd)
			gy += k * dy * (1 - l/dd)
		}
		return gx, gy
	}

	energy := func() float64 {
		var sum float64
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				k, l := spring(i, j)
				d := pos[i].Distance(pos[j]) - l
				sum += 0.5 * k * d * d
			}
		}
		return sum
	}

	steps := 0
	for ; steps < e.opts.KKMaxIteration; steps++ {
		// Move the vertex under the largest force.
		worst, worstDelta := -1, 0.0
		for i := 0; i < n; i++ {
			if pinned[i] {
				continue
			}
			gx, gy := gradient(i)
			if d := math.Hypot(gx, gy); d > worstDelta {
				worst, worstDelta = i, d
			}
		}
		if worst < 0 || worstDelta < e.opts.KKThreshold {
			break
		}

		for inner := 0; inner < e.opts.KKMaxInnerIteration; inner++ {
			gx, gy := gradient(worst)
			if math.Hypot(gx, gy) < e.opts.KKInnerThreshold {
				break
			}
			// Newton step on the local 2x2 Hessian.
			var hxx, hxy, hyy float64
			for i := 0; i < n; i++ {
				if i == worst {
					continue
				}
				k, l := spring(worst, i)
				dx := pos[worst].X - pos[i].X
				dy := pos[worst].Y - pos[i].Y
				dd := math.Hypot(dx, dy)
				if dd < 1e-9 {
					dd = 1e-9
				}
				d3 := dd * dd * dd
				hxx += k * (1 - l*dy*dy/d3)
				hxy += k * l * dx * dy / d3
				hyy += k * (1 - l*dx*dx/d3)
			}
			det := hxx*hyy - hxy*hxy
			var sx, sy float64
			if math.Abs(det) < 1e-12 {
				// Degenerate curvature: fall back to a damped gradient step.
				sx, sy = -gx*0.1, -gy*0.1
			} else {
				sx = (-gx*hyy + gy*hxy) / det
				sy = (-gy*hxx + gx*hxy) / det
			}
			pos[worst] = pos[worst].Add(geom.V(sx, sy))
		}

		if energy() > e.opts.KKMaxEnergy {
			e.log.Warn("bridged ring layout diverged", "ring", r.ID, "steps", steps)
			break
		}
	}
	e.stats.ForceSteps += steps

	for i, m := range members {
		v := e.g.Vertices[m]
		if pinned[i] {
			continue
		}
		v.SetPosition(pos[i])
	}
	r.UpdateCenter(e.g)
	for _, sub := range r.Subrings {
		sub.UpdateCenter(e.g)
	}
}

// seedBridged gives every unpositioned member a deterministic starting
// point: perimeter members on the circumcircle, interior bridge atoms on a
// half-radius circle.
func (e *Engine) seedBridged(r *mol.Ring, center geom.Vec, start *mol.Vertex, index map[int]int) {
	inner := make(map[int]bool, len(r.InnerMembers))
	for _, m := range r.InnerMembers {
		inner[m] = true
	}
	radius := geom.Circumradius(e.opts.BondLength, r.Size())
	base := start.Position.Sub(center).Angle()
	step := geom.CentralAngle(r.Size())

	for _, m := range r.Members {
		v := e.g.Vertices[m]
		if v.Positioned {
			continue
		}
		rad := radius
		if inner[m] {
			rad = radius / 2
		}
		ang := base + float64(index[m])*step
		v.SetPosition(center.Add(geom.Unit(ang).Mul(rad)))
		v.Angle = ang
	}
}

// memberDistances returns pairwise BFS distances within the subgraph induced
// by the members. Unreachable pairs are marked -1.
func (e *Engine) memberDistances(members []int, index map[int]int) [][]float64 {
	n := len(members)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			dist[i][j] = -1
		}
		dist[i][i] = 0
	}
	for i, m := range members {
		frontier := []int{m}
		depth := 0.0
		seen := map[int]bool{m: true}
		for len(frontier) > 0 {
			depth++
			var next []int
			for _, id := range frontier {
				for _, nb := range e.g.Vertices[id].Neighbours {
					j, ok := index[nb]
					if !ok || seen[nb] {
						continue
					}
					seen[nb] = true
					dist[i][j] = depth
					next = append(next, nb)
				}
			}
			frontier = next
		}
	}
	return dist
}
