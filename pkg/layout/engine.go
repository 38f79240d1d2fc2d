package layout

import (
	"context"
	"errors"
	"math"

	"github.com/charmbracelet/log"

	"github.com/moldraw/moldraw/pkg/geom"
	"github.com/moldraw/moldraw/pkg/mol"
)

// ErrNilGraph is returned by [New] when no graph is supplied.
var ErrNilGraph = errors.New("nil graph")

// initialAngle is the direction of the first bond drawn from the start
// vertex. A fixed value keeps runs reproducible.
const initialAngle = -math.Pi / 3

// Engine computes coordinates for one molecule. All mutable state lives on
// the engine, so a single engine must not be shared, but separate engines
// are independent.
type Engine struct {
	g    *mol.Graph
	opts Options
	log  *log.Logger

	backup *ringBackup
	stats  Stats
}

// Stats describes what a layout run did. It travels with the snapshot.
type Stats struct {
	Atoms          int     `json:"atoms" bson:"atoms"`
	Bonds          int     `json:"bonds" bson:"bonds"`
	Rings          int     `json:"rings" bson:"rings"`
	BridgedSystems int     `json:"bridged_systems,omitempty" bson:"bridged_systems,omitempty"`
	ForceSteps     int     `json:"force_steps,omitempty" bson:"force_steps,omitempty"`
	FinetuneSteps  int     `json:"finetune_steps,omitempty" bson:"finetune_steps,omitempty"`
	FlippedBonds   int     `json:"flipped_bonds,omitempty" bson:"flipped_bonds,omitempty"`
	StereoWarnings int     `json:"stereo_warnings,omitempty" bson:"stereo_warnings,omitempty"`
	InitialOverlap float64 `json:"initial_overlap" bson:"initial_overlap"`
	FinalOverlap   float64 `json:"final_overlap" bson:"final_overlap"`
}

// New returns an engine for the given graph. The graph is mutated by Run;
// callers who need it afterwards should work on a copy.
func New(g *mol.Graph, opts Options) (*Engine, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{g: g, opts: opts, log: opts.logger()}, nil
}

// Run executes the full stage sequence and returns the drawing snapshot.
// It fails only on context cancellation; molecular trouble is logged and
// drawn best-effort.
func (e *Engine) Run(ctx context.Context) (*Snapshot, error) {
	e.stats = Stats{
		Atoms: len(e.g.Vertices),
		Bonds: len(e.g.Edges),
		Rings: len(e.g.Rings),
	}
	if len(e.g.Vertices) == 0 {
		return e.buildSnapshot(), nil
	}

	e.concealHydrogens()
	e.consolidateBridged()
	e.position()
	e.restoreRings()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.stats.InitialOverlap = e.overlapScore().total
	e.resolvePrimary()
	e.resolveIterative(ctx)
	e.resolveTerminals()
	if e.opts.Finetune {
		e.finetune(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.opts.Isomeric {
		e.assignWedges()
		e.correctCisTrans()
	}
	if e.opts.CompactDrawing {
		e.compactGroups()
	}
	if e.opts.RotateDrawing {
		e.rotateDrawing()
	}

	e.stats.FinalOverlap = e.overlapScore().total
	e.log.Debug("layout finished",
		"atoms", e.stats.Atoms,
		"rings", e.stats.Rings,
		"overlap", e.stats.FinalOverlap)
	return e.buildSnapshot(), nil
}

// Stats returns the run statistics. Meaningful after Run.
func (e *Engine) Stats() Stats {
	return e.stats
}

// concealHydrogens hides terminal explicit hydrogens bonded to a heavier
// atom that has other neighbours. They stay in the graph, keeping chirality
// parity intact, but are positioned without being drawn.
func (e *Engine) concealHydrogens() {
	for _, v := range e.g.Vertices {
		if v.Atom.Symbol != "H" || v.Atom.Isotope != 0 || v.Atom.Charge != 0 {
			continue
		}
		if len(v.Neighbours) != 1 {
			continue
		}
		host := e.g.Vertices[v.Neighbours[0]]
		if host.Atom.Symbol == "H" || len(host.Neighbours) < 2 {
			continue
		}
		v.Drawn = false
	}
}

// centerOfMass returns the centroid of the drawn, positioned vertices.
func (e *Engine) centerOfMass() geom.Vec {
	var pts []geom.Vec
	for _, v := range e.g.Vertices {
		if v.Positioned && v.Drawn {
			pts = append(pts, v.Position)
		}
	}
	return geom.Centroid(pts)
}

// rotateSubtree rotates the subtree reachable from start without crossing
// exclude, together with any ring centers anchored to the moved vertices.
func (e *Engine) rotateSubtree(start, exclude int, angle float64, pivot geom.Vec) {
	for _, id := range e.g.SubtreeVertices(start, exclude) {
		v := e.g.Vertices[id]
		v.Position = v.Position.RotateAround(angle, pivot)
		for _, rid := range v.AnchoredRings {
			if r := e.g.Ring(rid); r != nil {
				r.Center = r.Center.RotateAround(angle, pivot)
			}
		}
	}
}
