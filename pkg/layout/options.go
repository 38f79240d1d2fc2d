package layout

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Pipeline
// =============================================================================

const (
	// DefaultBondLength is the target bond length in drawing units. Every
	// other geometric knob scales against it.
	DefaultBondLength = 15.0

	// DefaultBondSpacing is the gap between the two lines of a double bond.
	DefaultBondSpacing = 2.7

	// DefaultShortBondFraction is the length of the inner double-bond line
	// relative to the main line.
	DefaultShortBondFraction = 0.85

	// DefaultOverlapSensitivity is the score above which the overlap
	// resolver considers a vertex or subtree crowded.
	DefaultOverlapSensitivity = 0.42

	// DefaultOverlapResolutionIterations is the number of iterative
	// bond-rotation passes.
	DefaultOverlapResolutionIterations = 1

	// DefaultKKThreshold stops the force layout once the worst gradient
	// falls below it.
	DefaultKKThreshold = 0.1

	// DefaultKKInnerThreshold stops the per-vertex Newton refinement.
	DefaultKKInnerThreshold = 0.1

	// DefaultKKMaxIteration caps outer force-layout iterations.
	DefaultKKMaxIteration = 2000

	// DefaultKKMaxInnerIteration caps Newton steps per outer iteration.
	DefaultKKMaxInnerIteration = 50

	// DefaultKKMaxEnergy aborts the force layout when the spring energy
	// diverges.
	DefaultKKMaxEnergy = 1e9

	// DefaultFinetuneSteps caps the number of trial rotations in the
	// fine-tune pass.
	DefaultFinetuneSteps = 128

	// DefaultFinetuneTimeout caps the wall-clock time of the fine-tune pass.
	DefaultFinetuneTimeout = 250 * time.Millisecond

	// DefaultFinetuneThresholdFraction marks vertex pairs closer than this
	// fraction of a bond length as clashing.
	DefaultFinetuneThresholdFraction = 0.8

	// DefaultFinetuneAngleStep is the grid step, in degrees, of the
	// fine-tune rotation search.
	DefaultFinetuneAngleStep = 15.0
)

// Options configures a layout run. The zero value is not usable; start from
// [DefaultOptions]. The struct serializes for API requests and cache keys.
type Options struct {
	// BondLength is the target bond length in drawing units.
	BondLength float64 `json:"bond_length,omitempty"`
	// BondSpacing is the double-bond line gap, carried through to renderers.
	BondSpacing float64 `json:"bond_spacing,omitempty"`
	// ShortBondFraction is the inner double-bond line length fraction.
	ShortBondFraction float64 `json:"short_bond_fraction,omitempty"`

	// OverlapSensitivity is the crowding threshold of the overlap resolver.
	OverlapSensitivity float64 `json:"overlap_sensitivity,omitempty"`
	// OverlapResolutionIterations is the iterative pass count.
	OverlapResolutionIterations int `json:"overlap_resolution_iterations,omitempty"`

	// KKThreshold, KKInnerThreshold, KKMaxIteration, KKMaxInnerIteration and
	// KKMaxEnergy bound the Kamada-Kawai layout of bridged ring systems.
	KKThreshold         float64 `json:"kk_threshold,omitempty"`
	KKInnerThreshold    float64 `json:"kk_inner_threshold,omitempty"`
	KKMaxIteration      int     `json:"kk_max_iteration,omitempty"`
	KKMaxInnerIteration int     `json:"kk_max_inner_iteration,omitempty"`
	KKMaxEnergy         float64 `json:"kk_max_energy,omitempty"`

	// Finetune enables the bounded clash-pair rotation search.
	Finetune bool `json:"finetune"`
	// FinetuneSteps caps trial rotations across the whole pass.
	FinetuneSteps int `json:"finetune_steps,omitempty"`
	// FinetuneTimeout caps the wall-clock time of the pass.
	FinetuneTimeout time.Duration `json:"finetune_timeout,omitempty"`
	// FinetuneThresholdFraction defines a clash, as a fraction of BondLength.
	FinetuneThresholdFraction float64 `json:"finetune_threshold_fraction,omitempty"`
	// FinetuneAngleStep is the rotation grid step in degrees.
	FinetuneAngleStep float64 `json:"finetune_angle_step,omitempty"`

	// Isomeric enables wedge assignment and cis/trans correction.
	Isomeric bool `json:"isomeric"`
	// CompactDrawing collapses terminal heteroatom groups into text labels.
	CompactDrawing bool `json:"compact_drawing"`
	// RotateDrawing aligns the drawing's principal axis horizontally.
	RotateDrawing bool `json:"rotate_drawing"`

	// Logger receives stage diagnostics. Nil discards them.
	Logger *log.Logger `json:"-"`
}

// DefaultOptions returns the options used when callers have no opinion.
func DefaultOptions() Options {
	return Options{
		BondLength:                  DefaultBondLength,
		BondSpacing:                 DefaultBondSpacing,
		ShortBondFraction:           DefaultShortBondFraction,
		OverlapSensitivity:          DefaultOverlapSensitivity,
		OverlapResolutionIterations: DefaultOverlapResolutionIterations,
		KKThreshold:                 DefaultKKThreshold,
		KKInnerThreshold:            DefaultKKInnerThreshold,
		KKMaxIteration:              DefaultKKMaxIteration,
		KKMaxInnerIteration:         DefaultKKMaxInnerIteration,
		KKMaxEnergy:                 DefaultKKMaxEnergy,
		Finetune:                    true,
		FinetuneSteps:               DefaultFinetuneSteps,
		FinetuneTimeout:             DefaultFinetuneTimeout,
		FinetuneThresholdFraction:   DefaultFinetuneThresholdFraction,
		FinetuneAngleStep:           DefaultFinetuneAngleStep,
		Isomeric:                    true,
		CompactDrawing:              true,
		RotateDrawing:               true,
	}
}

// Validate checks that every knob is inside its working range.
func (o *Options) Validate() error {
	if o.BondLength <= 0 {
		return fmt.Errorf("bond_length must be positive, got %g", o.BondLength)
	}
	if o.BondSpacing < 0 {
		return fmt.Errorf("bond_spacing must not be negative, got %g", o.BondSpacing)
	}
	if o.ShortBondFraction <= 0 || o.ShortBondFraction > 1 {
		return fmt.Errorf("short_bond_fraction must be in (0, 1], got %g", o.ShortBondFraction)
	}
	if o.OverlapSensitivity < 0 {
		return fmt.Errorf("overlap_sensitivity must not be negative, got %g", o.OverlapSensitivity)
	}
	if o.OverlapResolutionIterations < 0 {
		return fmt.Errorf("overlap_resolution_iterations must not be negative, got %d", o.OverlapResolutionIterations)
	}
	if o.KKMaxIteration <= 0 || o.KKMaxInnerIteration <= 0 {
		return fmt.Errorf("kk iteration caps must be positive, got %d/%d", o.KKMaxIteration, o.KKMaxInnerIteration)
	}
	if o.KKMaxEnergy <= 0 {
		return fmt.Errorf("kk_max_energy must be positive, got %g", o.KKMaxEnergy)
	}
	if o.Finetune {
		if o.FinetuneSteps <= 0 {
			return fmt.Errorf("finetune_steps must be positive, got %d", o.FinetuneSteps)
		}
		if o.FinetuneTimeout <= 0 {
			return fmt.Errorf("finetune_timeout must be positive, got %v", o.FinetuneTimeout)
		}
		if o.FinetuneThresholdFraction <= 0 || o.FinetuneThresholdFraction > 1 {
			return fmt.Errorf("finetune_threshold_fraction must be in (0, 1], got %g", o.FinetuneThresholdFraction)
		}
		if o.FinetuneAngleStep <= 0 || o.FinetuneAngleStep >= 360 {
			return fmt.Errorf("finetune_angle_step must be in (0, 360), got %g", o.FinetuneAngleStep)
		}
	}
	return nil
}

// logger returns the configured logger, or one that discards everything.
func (o *Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}
