package layout

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"github.com/moldraw/moldraw/pkg/geom"
	"github.com/moldraw/moldraw/pkg/mol"
)

// SnapshotVersion identifies the snapshot schema. Bump on breaking field
// changes so stored drawings can be told apart.
const SnapshotVersion = 1

// Snapshot is the serializable result of a layout run: everything a
// renderer or store needs, nothing of the working graph.
type Snapshot struct {
	ID       string           `json:"id" bson:"_id"`
	Version  int              `json:"version" bson:"version"`
	Vertices []SnapshotVertex `json:"vertices" bson:"vertices"`
	Edges    []SnapshotEdge   `json:"edges" bson:"edges"`
	Rings    []SnapshotRing   `json:"rings,omitempty" bson:"rings,omitempty"`
	Meta     Metadata         `json:"meta" bson:"meta"`
}

// SnapshotVertex is one atom of a finished drawing.
type SnapshotVertex struct {
	ID          int     `json:"id" bson:"id"`
	Label       string  `json:"label" bson:"label"`
	MirrorLabel string  `json:"mirrorLabel,omitempty" bson:"mirrorLabel,omitempty"`
	X           float64 `json:"x" bson:"x"`
	Y           float64 `json:"y" bson:"y"`
	Drawn       bool    `json:"drawn" bson:"drawn"`
	Hydrogens   int     `json:"hydrogens,omitempty" bson:"hydrogens,omitempty"`
	Charge      int     `json:"charge,omitempty" bson:"charge,omitempty"`
	Isotope     int     `json:"isotope,omitempty" bson:"isotope,omitempty"`
	Aromatic    bool    `json:"aromatic,omitempty" bson:"aromatic,omitempty"`
	InRing      bool    `json:"inRing,omitempty" bson:"inRing,omitempty"`
	Terminal    bool    `json:"terminal,omitempty" bson:"terminal,omitempty"`
	// HydrogenWedge and HydrogenDir describe a stereo hydrogen drawn on an
	// otherwise implicit position. HydrogenDir is a unit direction from the
	// vertex.
	HydrogenWedge string  `json:"hydrogenWedge,omitempty" bson:"hydrogenWedge,omitempty"`
	HydrogenDirX  float64 `json:"hydrogenDirX,omitempty" bson:"hydrogenDirX,omitempty"`
	HydrogenDirY  float64 `json:"hydrogenDirY,omitempty" bson:"hydrogenDirY,omitempty"`
}

// SnapshotEdge is one bond of a finished drawing.
type SnapshotEdge struct {
	ID     int    `json:"id" bson:"id"`
	Source int    `json:"source" bson:"source"`
	Target int    `json:"target" bson:"target"`
	Kind   string `json:"kind" bson:"kind"`
	Weight int    `json:"weight" bson:"weight"`
	// Wedge is "up" or "down" when the bond carries a stereo wedge, with
	// WedgePivot naming the narrow end.
	Wedge      string `json:"wedge,omitempty" bson:"wedge,omitempty"`
	WedgePivot int    `json:"wedgePivot,omitempty" bson:"wedgePivot,omitempty"`
	Aromatic   bool   `json:"aromatic,omitempty" bson:"aromatic,omitempty"`
	InRing     bool   `json:"inRing,omitempty" bson:"inRing,omitempty"`
}

// SnapshotRing is one perceived ring with its drawn center.
type SnapshotRing struct {
	ID      int     `json:"id" bson:"id"`
	Members []int   `json:"members" bson:"members"`
	X       float64 `json:"x" bson:"x"`
	Y       float64 `json:"y" bson:"y"`
}

// Metadata carries the run context a consumer needs to interpret the
// coordinates.
type Metadata struct {
	// Source is the input notation, filled by the caller.
	Source      string  `json:"source,omitempty" bson:"source,omitempty"`
	Formula     string  `json:"formula" bson:"formula"`
	BondLength  float64 `json:"bondLength" bson:"bondLength"`
	BondSpacing float64 `json:"bondSpacing" bson:"bondSpacing"`
	ShortBond   float64 `json:"shortBond" bson:"shortBond"`
	Stats       Stats   `json:"stats" bson:"stats"`
}

// buildSnapshot freezes the working graph into a snapshot. Vertices, edges
// and rings come out in ID order.
func (e *Engine) buildSnapshot() *Snapshot {
	s := &Snapshot{
		ID:      uuid.NewString(),
		Version: SnapshotVersion,
		Meta: Metadata{
			Formula:     e.g.Formula(),
			BondLength:  e.opts.BondLength,
			BondSpacing: e.opts.BondSpacing,
			ShortBond:   e.opts.ShortBondFraction,
			Stats:       e.stats,
		},
	}
	for _, v := range e.g.Vertices {
		label := v.Atom.Symbol
		mirror := ""
		if v.PseudoLabel != "" {
			label = v.PseudoLabel
			mirror = v.PseudoMirror
		}
		hydrogens := e.g.ImplicitHydrogens(v)
		for _, n := range v.Neighbours {
			if w := e.g.Vertices[n]; !w.Drawn && w.Atom.Symbol == "H" {
				hydrogens++
			}
		}
		sv := SnapshotVertex{
			ID:          v.ID,
			Label:       label,
			MirrorLabel: mirror,
			X:           v.Position.X,
			Y:           v.Position.Y,
			Drawn:       v.Drawn,
			Hydrogens:   hydrogens,
			Charge:      v.Atom.Charge,
			Isotope:     v.Atom.Isotope,
			Aromatic:    v.Atom.Aromatic,
			InRing:      v.InRing(),
			Terminal:    v.IsTerminal(),
		}
		if v.HydrogenWedge != mol.WedgeNone {
			sv.HydrogenWedge = v.HydrogenWedge.String()
			sv.HydrogenDirX = v.HydrogenDir.X
			sv.HydrogenDirY = v.HydrogenDir.Y
		}
		s.Vertices = append(s.Vertices, sv)
	}
	for _, ed := range e.g.Edges {
		se := SnapshotEdge{
			ID:       ed.ID,
			Source:   ed.Source,
			Target:   ed.Target,
			Kind:     ed.Bond.String(),
			Weight:   ed.Bond.Weight(),
			Aromatic: ed.InAromaticRing,
			InRing:   ed.InRing,
		}
		if ed.Wedge != mol.WedgeNone {
			se.Wedge = ed.Wedge.String()
			se.WedgePivot = ed.WedgePivot
		}
		s.Edges = append(s.Edges, se)
	}
	for _, r := range e.g.Rings {
		s.Rings = append(s.Rings, SnapshotRing{
			ID:      r.ID,
			Members: append([]int(nil), r.Members...),
			X:       r.Center.X,
			Y:       r.Center.Y,
		})
	}
	return s
}

// PositionHash digests the drawn geometry, labels and wedges. The snapshot
// ID does not participate, so two runs over the same input hash equal.
func (s *Snapshot) PositionHash() string {
	h := sha256.New()
	for _, v := range s.Vertices {
		fmt.Fprintf(h, "v%d|%s|%.4f|%.4f|%t\n", v.ID, v.Label, v.X, v.Y, v.Drawn)
	}
	for _, ed := range s.Edges {
		fmt.Fprintf(h, "e%d|%d|%d|%s|%s|%d\n",
			ed.ID, ed.Source, ed.Target, ed.Kind, ed.Wedge, ed.WedgePivot)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Bounds returns the axis-aligned box around the drawn vertices. Hidden
// vertices do not count. The zero box comes back for an empty drawing.
func (s *Snapshot) Bounds() (min, max geom.Vec) {
	first := true
	for _, v := range s.Vertices {
		if !v.Drawn {
			continue
		}
		if first {
			min = geom.V(v.X, v.Y)
			max = min
			first = false
			continue
		}
		if v.X < min.X {
			min.X = v.X
		}
		if v.Y < min.Y {
			min.Y = v.Y
		}
		if v.X > max.X {
			max.X = v.X
		}
		if v.Y > max.Y {
			max.Y = v.Y
		}
	}
	return min, max
}
