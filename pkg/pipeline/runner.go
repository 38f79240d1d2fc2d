package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/moldraw/moldraw/pkg/cache"
	"github.com/moldraw/moldraw/pkg/layout"
	"github.com/moldraw/moldraw/pkg/mol"
	"github.com/moldraw/moldraw/pkg/observability"
	"github.com/moldraw/moldraw/pkg/ring"
	"github.com/moldraw/moldraw/pkg/smiles"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → perceive → layout → render pipeline
// with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		GraphHash: cache.Hash([]byte(strings.TrimSpace(opts.Source))),
	}

	// Front half: parse, perceive, layout
	layoutStart := time.Now()
	snapshot, layoutHit, err := r.SnapshotWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Snapshot = snapshot
	result.CacheInfo.LayoutHit = layoutHit
	result.Stats = Stats{
		Atoms:   snapshot.Meta.Stats.Atoms,
		Bonds:   snapshot.Meta.Stats.Bonds,
		Rings:   snapshot.Meta.Stats.Rings,
		Overlap: snapshot.Meta.Stats.FinalOverlap,
	}
	result.Stats.LayoutTime = time.Since(layoutStart)

	r.Logger.Info("laid out molecule",
		"formula", snapshot.Meta.Formula,
		"atoms", result.Stats.Atoms,
		"rings", result.Stats.Rings,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Back half: render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, snapshot, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SnapshotWithCacheInfo runs the front half of the pipeline with caching
// and returns cache hit info. A cache hit skips parsing entirely; the
// stored snapshot carries everything the back half needs.
func (r *Runner) SnapshotWithCacheInfo(ctx context.Context, opts Options) (*layout.Snapshot, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.LayoutKey(r.Keyer.GraphKey(opts.Source), opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var s layout.Snapshot
			if err := json.Unmarshal(data, &s); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return &s, true, nil
			}
			// Corrupt entries fall through to recompute.
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	s, err := r.compute(ctx, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := json.Marshal(s); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout) == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return s, false, nil
}

// Snapshot is a convenience wrapper that calls SnapshotWithCacheInfo and discards the cache hit info.
func (r *Runner) Snapshot(ctx context.Context, opts Options) (*layout.Snapshot, error) {
	s, _, err := r.SnapshotWithCacheInfo(ctx, opts)
	return s, err
}

// compute runs the uncached front half: parse, ring perception, layout.
// Observability hooks fire around each stage.
func (r *Runner) compute(ctx context.Context, opts Options) (*layout.Snapshot, error) {
	hooks := observability.Pipeline()

	parseStart := time.Now()
	hooks.OnParseStart(ctx, opts.Source)
	g, err := smiles.Parse(opts.Source)
	hooks.OnParseComplete(ctx, opts.Source, atomCount(g), time.Since(parseStart), err)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	perceiveStart := time.Now()
	hooks.OnPerceiveStart(ctx, atomCount(g))
	info := ring.Perceive(g)
	hooks.OnPerceiveComplete(ctx, info.Rings, time.Since(perceiveStart), nil)

	lopts := opts.Layout
	if lopts.Logger == nil {
		lopts.Logger = opts.Logger
	}
	engine, err := layout.New(g, lopts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	layoutStart := time.Now()
	hooks.OnLayoutStart(ctx, atomCount(g))
	s, err := engine.Run(ctx)
	var overlap float64
	if s != nil {
		overlap = s.Meta.Stats.FinalOverlap
	}
	hooks.OnLayoutComplete(ctx, overlap, time.Since(layoutStart), err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	s.Meta.Source = strings.TrimSpace(opts.Source)
	return s, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s *layout.Snapshot, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	positionHash := s.PositionHash()

	// Try to get all formats from cache
	if !opts.Refresh {
		allCached := true
		artifacts := make(map[string][]byte)

		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(positionHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
			} else {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				allCached = false
				break
			}
		}

		if allCached && len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil // All artifacts from cache
		}
	}

	// Render all formats
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	rendered, err := Render(s, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(positionHash, opts.ArtifactKeyOpts(format))
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact) == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, s *layout.Snapshot, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, s, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func atomCount(g *mol.Graph) int {
	if g == nil {
		return 0
	}
	return len(g.Vertices)
}
