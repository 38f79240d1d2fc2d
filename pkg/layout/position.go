package layout

import (
	"cmp"
	"math"
	"slices"

	"github.com/moldraw/moldraw/pkg/geom"
	"github.com/moldraw/moldraw/pkg/mol"
)

// frame is one pending placement on the work stack. angle is the global
// direction the vertex extends along from previous; it is NaN when the
// direction must be derived from ring geometry at placement time. at seeds
// root frames.
type frame struct {
	vertex   int
	previous int
	angle    float64
	sign     float64
	shortcut bool
	at       geom.Vec
}

// position places every vertex. Each connected fragment is walked with an
// explicit stack; additional fragments start to the right of the drawing so
// far.
func (e *Engine) position() {
	origin := geom.Vec{}
	for {
		start := e.startVertex()
		if start < 0 {
			return
		}
		e.placeTree(start, origin)
		origin = geom.V(e.maxX()+2*e.opts.BondLength, 0)
	}
}

// startVertex picks the next placement root among unpositioned vertices:
// a bridged-ring member first, then any ring member, then the lowest ID.
func (e *Engine) startVertex() int {
	ring := -1
	plain := -1
	for _, v := range e.g.Vertices {
		if v.Positioned {
			continue
		}
		if v.BridgedRing >= 0 {
			return v.ID
		}
		if ring < 0 && len(v.Rings) > 0 {
			ring = v.ID
		}
		if plain < 0 {
			plain = v.ID
		}
	}
	if ring >= 0 {
		return ring
	}
	return plain
}

func (e *Engine) maxX() float64 {
	m := 0.0
	for _, v := range e.g.Vertices {
		if v.Positioned && v.Position.X > m {
			m = v.Position.X
		}
	}
	return m
}

func (e *Engine) placeTree(root int, origin geom.Vec) {
	stack := []frame{{
		vertex:   root,
		previous: -1,
		angle:    math.NaN(),
		sign:     1,
		at:       origin,
	}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		e.processFrame(f, &stack)
	}
}

func (e *Engine) processFrame(f frame, stack *[]frame) {
	v := e.g.Vertices[f.vertex]
	if v.Positioned {
		return
	}
	var prev *mol.Vertex
	if f.previous >= 0 {
		prev = e.g.Vertices[f.previous]
	}
	v.Parent = f.previous

	switch {
	case prev == nil:
		v.SetPosition(f.at)
		v.Angle = initialAngle
	case prev.InRing():
		dir := e.ringExitDirection(prev)
		v.SetPosition(prev.Position.Add(dir.Mul(e.opts.BondLength)))
		v.Angle = dir.Angle()
	default:
		v.SetPosition(prev.Position.Add(geom.Unit(f.angle).Mul(e.opts.BondLength)))
		v.Angle = f.angle
	}

	if v.InRing() {
		e.placeRingSystem(v, prev, stack)
		return
	}
	e.branchOut(v, prev, f, stack)
}

// ringExitDirection points away from the ring neighbourhood of a positioned
// ring vertex: away from its ring centers when it joins several rings, away
// from the centroid of its in-ring neighbours otherwise.
func (e *Engine) ringExitDirection(prev *mol.Vertex) geom.Vec {
	var refs []geom.Vec
	if len(prev.Rings) >= 2 {
		for _, rid := range prev.Rings {
			if r := e.g.Ring(rid); r != nil && r.Positioned {
				refs = append(refs, r.Center)
			}
		}
	}
	if len(refs) < 2 {
		refs = refs[:0]
		for _, n := range prev.Neighbours {
			w := e.g.Vertices[n]
			if w.Positioned && w.InRingWith(prev) {
				refs = append(refs, w.Position)
			}
		}
	}
	if len(refs) == 0 {
		for _, n := range prev.Neighbours {
			if w := e.g.Vertices[n]; w.Positioned {
				refs = append(refs, w.Position)
			}
		}
	}
	if len(refs) == 0 {
		return geom.Unit(prev.Angle)
	}
	dir := prev.Position.Sub(geom.Centroid(refs)).Normalize()
	if dir.LengthSq() == 0 {
		return geom.Unit(prev.Angle)
	}
	return dir
}

// branchOut decides directions for the unpositioned neighbours of a placed
// chain vertex and pushes their frames. Frames are pushed in reverse so the
// stack pops them in decision order.
func (e *Engine) branchOut(v, prev *mol.Vertex, f frame, stack *[]frame) {
	exclude := -1
	if prev != nil {
		exclude = prev.ID
	}
	var children []int
	for _, n := range v.NeighboursWithout(exclude) {
		if !e.g.Vertices[n].Positioned {
			children = append(children, n)
		}
	}

	var pending []frame
	switch len(children) {
	case 0:
		return
	case 1:
		pending = []frame{e.chainStep(v, prev, f, children[0])}
	case 2:
		pending = e.splitStep(v, prev, f, children)
	default:
		pending = e.fanStep(v, f, children)
	}

	for i := len(pending) - 1; i >= 0; i-- {
		*stack = append(*stack, pending[i])
	}
}

// chainStep continues a chain through its single undrawn neighbour. High
// combined bond order forces a straight step; otherwise the chain zig-zags,
// with directional bonds biasing the side and a center-of-mass bias applied
// right after a ring exit.
func (e *Engine) chainStep(v, prev *mol.Vertex, f frame, next int) frame {
	inWeight := 0
	if prev != nil {
		if ed := e.g.EdgeBetween(prev.ID, v.ID); ed != nil {
			inWeight = ed.Weight()
		}
	}
	out := e.g.EdgeBetween(v.ID, next)
	if inWeight+out.Weight() >= 4 {
		return frame{vertex: next, previous: v.ID, angle: v.Angle, sign: f.sign}
	}

	sign := -f.sign
	if f.shortcut {
		// A short branch behind keeps the long chain on its side once.
		sign = f.sign
	}
	switch out.Bond {
	case mol.BondUp:
		sign = 1
	case mol.BondDown:
		sign = -1
	}
	if prev != nil && prev.InRing() {
		// Exiting a ring: pick the side leading away from the bulk of the
		// drawing.
		com := e.centerOfMass()
		plus := v.Position.Add(geom.Unit(v.Angle + geom.ToRad(60)).Mul(e.opts.BondLength))
		minus := v.Position.Add(geom.Unit(v.Angle - geom.ToRad(60)).Mul(e.opts.BondLength))
		if minus.DistanceSq(com) > plus.DistanceSq(com) {
			sign = -1
		} else {
			sign = 1
		}
	}
	return frame{
		vertex:   next,
		previous: v.ID,
		angle:    v.Angle + sign*geom.ToRad(60),
		sign:     sign,
	}
}

// splitStep handles a two-way branch: the deeper subtree keeps the zig-zag
// side (cis), the shallower one takes the opposite side (trans). Equal
// depths send a heteroatom trans so carbon chains read straight through.
func (e *Engine) splitStep(v, prev *mol.Vertex, f frame, children []int) []frame {
	a, b := children[0], children[1]
	da := e.g.TreeDepth(a, v.ID)
	db := e.g.TreeDepth(b, v.ID)

	cis, trans := a, b
	switch {
	case db > da:
		cis, trans = b, a
	case db == da:
		ha := e.g.Vertices[a].Atom.IsHeteroatom()
		hb := e.g.Vertices[b].Atom.IsHeteroatom()
		if ha && !hb {
			cis, trans = b, a
		}
	}

	shortcut := false
	if prev != nil {
		dPrev := e.g.TreeDepth(prev.ID, v.ID)
		shortcut = dPrev > 0 && dPrev < da && dPrev < db
	}

	sign := -f.sign
	cisFrame := frame{
		vertex:   cis,
		previous: v.ID,
		angle:    v.Angle + sign*geom.ToRad(60),
		sign:     sign,
		shortcut: shortcut,
	}
	transFrame := frame{
		vertex:   trans,
		previous: v.ID,
		angle:    v.Angle - sign*geom.ToRad(60),
		sign:     -sign,
		shortcut: shortcut,
	}
	return []frame{cisFrame, transFrame}
}

// fanStep spreads three or more branches over the directions left free by
// the incoming bond, deepest subtree closest to straight ahead. Two leaves
// beside one deep branch form the pinched cross with the leaves at right
// angles, or tucked at 30° when the chain behind is short.
func (e *Engine) fanStep(v *mol.Vertex, f frame, children []int) []frame {
	type branch struct {
		id    int
		depth int
	}
	bs := make([]branch, len(children))
	for i, c := range children {
		bs[i] = branch{id: c, depth: e.g.TreeDepth(c, v.ID)}
	}
	slices.SortStableFunc(bs, func(x, y branch) int {
		return cmp.Compare(y.depth, x.depth)
	})

	if len(bs) == 3 && bs[0].depth > 1 && bs[1].depth == 1 && bs[2].depth == 1 {
		leafTurn := geom.ToRad(90)
		if f.shortcut {
			leafTurn = geom.ToRad(30)
		}
		return []frame{
			{vertex: bs[0].id, previous: v.ID, angle: v.Angle, sign: f.sign},
			{vertex: bs[1].id, previous: v.ID, angle: v.Angle + leafTurn, sign: 1},
			{vertex: bs[2].id, previous: v.ID, angle: v.Angle - leafTurn, sign: -1},
		}
	}

	n := len(bs)
	step := 2 * math.Pi / float64(n+1)
	turns := make([]float64, 0, n)
	for k := 1; k <= n; k++ {
		turns = append(turns, -math.Pi+float64(k)*step)
	}
	// Smallest turns go to the deepest branches.
	slices.SortStableFunc(turns, func(x, y float64) int {
		return cmp.Compare(math.Abs(x), math.Abs(y))
	})

	out := make([]frame, n)
	for i, b := range bs {
		turn := turns[i]
		sign := f.sign
		if turn > 1e-9 {
			sign = 1
		} else if turn < -1e-9 {
			sign = -1
		}
		out[i] = frame{
			vertex:   b.id,
			previous: v.ID,
			angle:    v.Angle + turn,
			sign:     sign,
		}
	}
	return out
}
