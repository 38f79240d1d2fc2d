package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moldraw/moldraw/pkg/cache"
	"github.com/moldraw/moldraw/pkg/layout"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"json", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Source: "CCO"}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}

	// Check defaults were set
	if opts.Layout.BondLength != layout.DefaultBondLength {
		t.Errorf("BondLength should be %g, got %g", layout.DefaultBondLength, opts.Layout.BondLength)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Scale == 0 {
		t.Error("Scale should have a default")
	}
	if opts.MaxSize == 0 {
		t.Error("MaxSize should have a default")
	}
}

func TestOptionsValidateForLayout(t *testing.T) {
	// Missing source
	opts := Options{}
	if err := opts.ValidateForLayout(); err == nil {
		t.Error("Missing source should fail")
	}

	// Whitespace source
	opts = Options{Source: "   "}
	if err := opts.ValidateForLayout(); err == nil {
		t.Error("Blank source should fail")
	}

	// Broken layout options
	opts = Options{Source: "CCO"}
	opts.Layout = layout.DefaultOptions()
	opts.Layout.BondLength = -1
	if err := opts.ValidateForLayout(); err == nil {
		t.Error("Negative bond length should fail")
	}
}

func TestOptionsUnknownTheme(t *testing.T) {
	opts := Options{Source: "CCO", Theme: "neon"}
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("Unknown theme should fail")
	} else if !strings.Contains(err.Error(), "neon") {
		t.Errorf("error = %v, want theme name in message", err)
	}
}

func TestOptionsThemePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.toml")
	if err := os.WriteFile(path, []byte("background = \"#101010\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := Options{Source: "CCO", ThemePath: path}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("theme path should load: %v", err)
	}
	if got := opts.ResolvedTheme().Background; got != "#101010" {
		t.Errorf("Background = %q, want override from file", got)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Source: "CCO"}

	// First call
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalScale := opts.Scale
	originalFormats := len(opts.Formats)

	// Second call should be idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if opts.Scale != originalScale {
		t.Error("Scale changed on second call")
	}
	if len(opts.Formats) != originalFormats {
		t.Error("Formats changed on second call")
	}
}

func TestLayoutKeyOpts(t *testing.T) {
	a := Options{Source: "CCO"}
	b := Options{Source: "CCO"}
	if err := a.ValidateForLayout(); err != nil {
		t.Fatal(err)
	}
	if err := b.ValidateForLayout(); err != nil {
		t.Fatal(err)
	}

	if a.LayoutKeyOpts() != b.LayoutKeyOpts() {
		t.Error("identical options should produce identical key opts")
	}
	if got := a.LayoutKeyOpts().Version; got != layout.SnapshotVersion {
		t.Errorf("Version = %d, want %d", got, layout.SnapshotVersion)
	}

	b.Layout.BondLength = 30
	if a.LayoutKeyOpts() == b.LayoutKeyOpts() {
		t.Error("different bond lengths should produce different key opts")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Source: "CCO", Scale: 2, MaxSize: 512}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}

	svg := opts.ArtifactKeyOpts(FormatSVG)
	if svg.Theme == "" {
		t.Error("svg key should carry the theme fingerprint")
	}
	if svg.Scale != 2 {
		t.Errorf("svg Scale = %g, want 2", svg.Scale)
	}

	png := opts.ArtifactKeyOpts(FormatPNG)
	if png.Scale != 512 {
		t.Errorf("png Scale = %g, want max size 512", png.Scale)
	}

	// The JSON artifact ignores theme and scale.
	if j := opts.ArtifactKeyOpts(FormatJSON); j.Theme != "" || j.Scale != 0 {
		t.Errorf("json key opts = %+v, want format only", j)
	}
}

func TestRunnerExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		Source:  "CCO",
		Formats: []string{"svg", "json"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Snapshot == nil {
		t.Fatal("missing snapshot")
	}
	if result.Stats.Atoms != 3 {
		t.Errorf("Atoms = %d, want 3", result.Stats.Atoms)
	}
	if result.Stats.Rings != 0 {
		t.Errorf("Rings = %d, want 0", result.Stats.Rings)
	}
	if len(result.Artifacts["svg"]) == 0 {
		t.Error("missing svg artifact")
	}
	if len(result.Artifacts["json"]) == 0 {
		t.Error("missing json artifact")
	}
	if result.GraphHash == "" {
		t.Error("missing graph hash")
	}
	if result.CacheInfo.LayoutHit || result.CacheInfo.RenderHit {
		t.Error("null cache should never hit")
	}
}

func TestRunnerExecuteParseError(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	_, err := runner.Execute(context.Background(), Options{Source: "CC("})
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parse") {
		t.Errorf("error = %v, want parse stage tag", err)
	}
}

func TestRunnerCacheRoundTrip(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	opts := Options{Source: "c1ccccc1", Formats: []string{"svg", "json"}}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Error("first run should miss")
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit {
		t.Error("second run should hit the layout cache")
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the artifact cache")
	}
	if second.Stats.Atoms != 6 || second.Stats.Rings != 1 {
		t.Errorf("cached stats = %d atoms %d rings, want 6/1",
			second.Stats.Atoms, second.Stats.Rings)
	}

	for _, format := range opts.Formats {
		if !bytes.Equal(first.Artifacts[format], second.Artifacts[format]) {
			t.Errorf("%s artifact changed between cached and fresh runs", format)
		}
	}
}

func TestRunnerCacheOnOffSameBytes(t *testing.T) {
	opts := Options{Source: "CC(=O)O", Formats: []string{"svg", "json"}}

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cached := NewRunner(fc, nil, nil)
	defer cached.Close()
	uncached := NewRunner(nil, nil, nil)
	defer uncached.Close()

	if _, err := cached.Execute(context.Background(), opts); err != nil {
		t.Fatalf("warm-up Execute: %v", err)
	}
	fromCache, err := cached.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("cached Execute: %v", err)
	}
	fresh, err := uncached.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("uncached Execute: %v", err)
	}

	for _, format := range opts.Formats {
		if !bytes.Equal(fromCache.Artifacts[format], fresh.Artifacts[format]) {
			t.Errorf("%s bytes differ between cached and uncached runs", format)
		}
	}
}

func TestRunnerRefreshBypassesReads(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	opts := Options{Source: "CCO"}
	if _, err := runner.Execute(context.Background(), opts); err != nil {
		t.Fatalf("warm-up Execute: %v", err)
	}

	opts.Refresh = true
	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if result.CacheInfo.LayoutHit || result.CacheInfo.RenderHit {
		t.Error("refresh should bypass cache reads")
	}
}

func TestRunnerSnapshotRecordsSource(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	s, err := runner.Snapshot(context.Background(), Options{Source: "  CCO  "})
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if s.Meta.Source != "CCO" {
		t.Errorf("Meta.Source = %q, want trimmed source", s.Meta.Source)
	}
}

func TestMarshalSnapshotClearsID(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	s, err := runner.Snapshot(context.Background(), Options{Source: "CCO"})
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if s.ID == "" {
		t.Fatal("snapshot should carry an ID")
	}

	result, err := runner.Execute(context.Background(), Options{
		Source:  "CCO",
		Formats: []string{"json"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if bytes.Contains(result.Artifacts["json"], []byte(result.Snapshot.ID)) {
		t.Error("json artifact should not embed the run-specific snapshot ID")
	}
}
