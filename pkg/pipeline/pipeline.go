// Package pipeline provides the core drawing pipeline for moldraw.
//
// This package implements the complete parse → perceive → layout → render
// pipeline shared by the CLI, API, and regression harness. By centralizing
// this logic, every entry point caches, reports, and draws the same way.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Parse: read SMILES notation into a molecular graph
//  2. Perceive: find rings, ring fusions, and aromatic cycles
//  3. Layout: compute 2D coordinates and produce the snapshot
//  4. Render: generate output in various formats (SVG, PNG, JSON)
//
// The front half (parse through layout) caches as one unit keyed by the
// notation text plus the layout options; artifacts cache per format keyed
// by the drawing's position hash. Every stage is deterministic, so cached
// and freshly computed bytes are identical.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  "CC(=O)Oc1ccccc1C(=O)O",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual halves:
//
//	// Parse, perceive, and lay out only
//	snapshot, err := runner.Snapshot(ctx, opts)
//
//	// Render an existing snapshot
//	artifacts, err := runner.Render(ctx, snapshot, opts)
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/moldraw/moldraw/pkg/cache"
	"github.com/moldraw/moldraw/pkg/layout"
	"github.com/moldraw/moldraw/pkg/render"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// Built-in theme names.
const (
	ThemeDefault = "default"
	ThemeDark    = "dark"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the drawing pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Source is the SMILES notation to draw.
	Source string `json:"source"`

	// Layout configures the geometry passes. The zero value means
	// [layout.DefaultOptions]; partial configurations should start from
	// there.
	Layout layout.Options `json:"layout"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Theme       string   `json:"theme,omitempty"`        // built-in name: default, dark
	ThemePath   string   `json:"theme_path,omitempty"`   // TOML theme file, overrides Theme
	Scale       float64  `json:"scale,omitempty"`        // SVG pixel scale
	MaxSize     int      `json:"max_size,omitempty"`     // PNG maximum edge in pixels
	ShowCenters bool     `json:"show_centers,omitempty"` // ring-center debug overlay (SVG)

	// Refresh bypasses cache reads. Results still write back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool

	// theme and themeKey hold the resolved theme and its content
	// fingerprint once resolveTheme has run.
	theme    render.Theme
	themeKey string
	themeSet bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the finished drawing.
	Snapshot *layout.Snapshot

	// GraphHash is the content hash of the trimmed source notation.
	GraphHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains molecule numbers and timing information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics. Atom, bond, and ring counts
// come from the snapshot, so they are filled on cache hits too. Per-stage
// durations flow through the observability hooks.
type Stats struct {
	Atoms      int
	Bonds      int
	Rings      int
	Overlap    float64
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline half.
type CacheInfo struct {
	LayoutHit bool // Whether the snapshot came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLayout checks required fields for the front half of the
// pipeline and applies layout defaults.
func (o *Options) ValidateForLayout() error {
	if strings.TrimSpace(o.Source) == "" {
		return fmt.Errorf("source is required")
	}

	if o.Layout == (layout.Options{}) {
		o.Layout = layout.DefaultOptions()
	}
	if err := o.Layout.Validate(); err != nil {
		return fmt.Errorf("layout options: %w", err)
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = render.DefaultSVGScale
	}
	if o.MaxSize == 0 {
		o.MaxSize = render.DefaultMaxSize
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering, resolving
// the theme along the way.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %g", o.Scale)
	}
	if o.MaxSize < 16 {
		return fmt.Errorf("max_size must be at least 16, got %d", o.MaxSize)
	}
	return o.resolveTheme()
}

// resolveTheme loads the configured theme once and fingerprints it for
// cache keys. Two renders share artifact bytes only when the full theme
// content matches, not just its name.
func (o *Options) resolveTheme() error {
	if o.themeSet {
		return nil
	}

	var t render.Theme
	switch {
	case o.ThemePath != "":
		loaded, err := render.LoadTheme(o.ThemePath)
		if err != nil {
			return err
		}
		t = loaded
	case o.Theme == "" || o.Theme == ThemeDefault:
		t = render.Default()
	case o.Theme == ThemeDark:
		t = render.Dark()
	default:
		return fmt.Errorf("unknown theme: %q (built-ins: default, dark)", o.Theme)
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("fingerprint theme: %w", err)
	}
	o.theme = t
	o.themeKey = cache.Hash(data)
	o.themeSet = true
	return nil
}

// ResolvedTheme returns the theme the pipeline will render with.
// Meaningful after validation.
func (o *Options) ResolvedTheme() render.Theme {
	if !o.themeSet {
		return render.Default()
	}
	return o.theme
}

// LayoutKeyOpts returns cache key options for the layout half.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	data, _ := json.Marshal(o.Layout)
	return cache.LayoutKeyOpts{
		Options: string(data),
		Version: layout.SnapshotVersion,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format. The
// JSON artifact depends only on the snapshot, so theme and scale stay out
// of its key.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	switch format {
	case FormatJSON:
		return cache.ArtifactKeyOpts{Format: format}
	case FormatPNG:
		return cache.ArtifactKeyOpts{
			Format: format,
			Theme:  o.themeKey,
			Scale:  float64(o.MaxSize),
		}
	default:
		return cache.ArtifactKeyOpts{
			Format:  format,
			Theme:   o.themeKey,
			Scale:   o.Scale,
			Centers: o.ShowCenters,
		}
	}
}
