// Package regress guards drawing geometry against unintended change.
//
// A corpus of named SMILES cases is laid out and fingerprinted with the
// snapshot position hash; fingerprints persist in a SQLite baseline store.
// Later runs compare fresh fingerprints against the stored ones: a changed
// hash means the geometry moved, which is either a bug or an intentional
// improvement to re-baseline with update mode.
//
// The harness runs the real pipeline with caching disabled, so a clean
// pass certifies the code path users exercise, not a parallel one.
package regress

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/stat"

	"github.com/moldraw/moldraw/pkg/pipeline"
)

// Status classifies one corpus case after a run.
type Status string

const (
	// StatusOK means the position hash matches the baseline.
	StatusOK Status = "ok"
	// StatusChanged means the geometry moved.
	StatusChanged Status = "changed"
	// StatusNew means no baseline exists yet.
	StatusNew Status = "new"
	// StatusError means the case failed to parse or lay out.
	StatusError Status = "error"
)

// DefaultTolerance separates real overlap regressions from float noise.
const DefaultTolerance = 1e-6

// RunOptions configures a harness run.
type RunOptions struct {
	// Update writes current results as the new baselines.
	Update bool
	// Tags filters the corpus; empty means every case.
	Tags []string
	// Tolerance is the overlap increase treated as a regression.
	// Zero means [DefaultTolerance].
	Tolerance float64
}

// CaseResult is the outcome of one corpus case.
type CaseResult struct {
	Case         Case
	Status       Status
	PositionHash string
	Overlap      float64
	// OverlapDelta is current minus baseline overlap. Zero for new cases.
	OverlapDelta float64
	// Worse marks a changed case whose overlap regressed beyond tolerance.
	Worse bool
	Err   error
}

// Summary aggregates a run.
type Summary struct {
	Results []CaseResult

	OK      int
	Changed int
	New     int
	Errors  int
	// WorseOverlaps counts changed cases whose overlap regressed.
	WorseOverlaps int

	// Overlap statistics across the successfully laid out cases.
	MeanOverlap float64
	P90Overlap  float64
	MaxOverlap  float64
}

// Clean reports whether the run matched its baselines. New cases do not
// fail a run; changed or errored ones do.
func (s *Summary) Clean() bool {
	return s.Changed == 0 && s.Errors == 0
}

// Harness runs the corpus against a baseline store.
type Harness struct {
	store  *BaselineStore
	runner *pipeline.Runner
	logger *log.Logger
}

// NewHarness creates a harness over the given baseline store. Caching is
// disabled so every case exercises the full pipeline.
func NewHarness(store *BaselineStore, logger *log.Logger) *Harness {
	if logger == nil {
		logger = log.Default()
	}
	return &Harness{
		store:  store,
		runner: pipeline.NewRunner(nil, nil, logger),
		logger: logger,
	}
}

// Run lays out every corpus case and compares against the stored
// baselines.
func (h *Harness) Run(ctx context.Context, cases []Case, opts RunOptions) (*Summary, error) {
	if opts.Tolerance == 0 {
		opts.Tolerance = DefaultTolerance
	}
	cases = FilterCases(cases, opts.Tags)

	summary := &Summary{}
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r := h.runCase(ctx, c, opts)
		summary.Results = append(summary.Results, r)

		switch r.Status {
		case StatusOK:
			summary.OK++
		case StatusChanged:
			summary.Changed++
			if r.Worse {
				summary.WorseOverlaps++
			}
		case StatusNew:
			summary.New++
		case StatusError:
			summary.Errors++
		}
	}

	summary.fillStats()
	h.logger.Info("regression run finished",
		"cases", len(summary.Results),
		"ok", summary.OK,
		"changed", summary.Changed,
		"new", summary.New,
		"errors", summary.Errors)
	return summary, nil
}

// runCase lays out one case and classifies it against its baseline.
func (h *Harness) runCase(ctx context.Context, c Case, opts RunOptions) CaseResult {
	result := CaseResult{Case: c}

	snapshot, err := h.runner.Snapshot(ctx, pipeline.Options{
		Source: c.SMILES,
		Logger: h.logger,
	})
	if err != nil {
		result.Status = StatusError
		result.Err = fmt.Errorf("case %s: %w", c.Name, err)
		return result
	}

	result.PositionHash = snapshot.PositionHash()
	result.Overlap = snapshot.Meta.Stats.FinalOverlap

	base, err := h.store.Get(ctx, c.Name)
	switch {
	case errors.Is(err, ErrNoBaseline):
		result.Status = StatusNew
	case err != nil:
		result.Status = StatusError
		result.Err = fmt.Errorf("case %s: %w", c.Name, err)
		return result
	case base.PositionHash == result.PositionHash:
		result.Status = StatusOK
	default:
		result.Status = StatusChanged
		result.OverlapDelta = result.Overlap - base.Overlap
		result.Worse = result.OverlapDelta > opts.Tolerance
	}

	if opts.Update {
		err := h.store.Put(ctx, Baseline{
			Name:         c.Name,
			PositionHash: result.PositionHash,
			Overlap:      result.Overlap,
			Atoms:        snapshot.Meta.Stats.Atoms,
			UpdatedAt:    time.Now().UTC(),
		})
		if err != nil {
			result.Status = StatusError
			result.Err = fmt.Errorf("case %s: update baseline: %w", c.Name, err)
		}
	}

	return result
}

// fillStats computes overlap statistics across the laid-out cases.
func (s *Summary) fillStats() {
	var overlaps []float64
	for _, r := range s.Results {
		if r.Status == StatusError {
			continue
		}
		overlaps = append(overlaps, r.Overlap)
	}
	if len(overlaps) == 0 {
		return
	}

	sort.Float64s(overlaps)
	s.MeanOverlap = stat.Mean(overlaps, nil)
	s.P90Overlap = stat.Quantile(0.9, stat.Empirical, overlaps, nil)
	s.MaxOverlap = overlaps[len(overlaps)-1]
}
