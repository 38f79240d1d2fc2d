// Package cache provides caching for pipeline stages.
//
// The pipeline caches at three levels, each keyed by content:
//
//   - graph: parsed input, keyed by the notation text
//   - layout: finished snapshots, keyed by graph hash and layout options
//   - artifact: rendered bytes, keyed by position hash and render options
//
// [Cache] implementations store opaque bytes with a TTL. [FileCache]
// persists under a directory for CLI runs, [RedisCache] backs the server,
// and [NullCache] disables caching without branching at call sites.
//
// Keys come from a [Keyer] so every consumer derives them identically.
// [ScopedKeyer] prefixes keys for namespace isolation.
package cache

import (
	"context"
	"strings"
	"time"
)

// TTLs per cache level. Layout is deterministic for a given input and
// options, so entries stay fresh until the schema changes; rendered
// artifacts churn with themes and expire sooner.
const (
	TTLGraph    = 30 * 24 * time.Hour
	TTLLayout   = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache stores opaque bytes under string keys.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	// An expired or missing entry is a miss, not an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	// Set stores data under key. A non-positive ttl stores forever.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any underlying resources.
	Close() error
}

// Keyer derives cache keys for the three pipeline levels.
type Keyer interface {
	// GraphKey keys a parsed molecular graph by its notation text.
	GraphKey(source string) string
	// LayoutKey keys a layout snapshot by graph content and options.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys rendered bytes by drawing content and options.
	ArtifactKey(positionHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts feeds everything that changes a snapshot into the key.
type LayoutKeyOpts struct {
	// Options is the canonical JSON encoding of the layout options.
	Options string `json:"options"`
	// Version is the snapshot schema version.
	Version int `json:"version"`
}

// ArtifactKeyOpts feeds everything that changes rendered bytes into the
// key.
type ArtifactKeyOpts struct {
	// Format is the artifact kind: svg, png, json or dot.
	Format string `json:"format"`
	// Theme identifies the colour theme, usually by content hash.
	Theme string `json:"theme,omitempty"`
	// Scale is the SVG pixel scale or PNG maximum edge.
	Scale float64 `json:"scale,omitempty"`
	// Centers marks drawings with the ring-center debug overlay.
	Centers bool `json:"centers,omitempty"`
}

// DefaultKeyer derives keys as prefix:sha256(parts).
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey keys the notation text itself. Surrounding whitespace does
// not change the molecule, so it does not change the key.
func (k *DefaultKeyer) GraphKey(source string) string {
	return "graph:" + Hash([]byte(strings.TrimSpace(source)))
}

// LayoutKey combines the graph hash with the layout options.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey combines the drawing's position hash with the render
// options.
func (k *DefaultKeyer) ArtifactKey(positionHash string, opts ArtifactKeyOpts) string {
	return hashKey("art", positionHash, opts)
}

var _ Keyer = (*DefaultKeyer)(nil)
