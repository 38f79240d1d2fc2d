package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moldraw/moldraw/pkg/layout"
	"github.com/moldraw/moldraw/pkg/pipeline"
)

// drawOpts holds the command-line flags for the draw command.
type drawOpts struct {
	output    string // output file (single format) or base path (multiple)
	formats   string // comma-separated output formats
	theme     string // built-in theme name
	themeFile string // TOML theme file, overrides theme
	scale     float64
	maxSize   int
	centers   bool // ring-center debug overlay
	noStereo  bool // skip wedges and cis/trans correction
	noCompact bool // keep terminal heteroatom groups as single atoms
	noRotate  bool // keep the raw layout orientation
	refresh   bool // bypass cache reads
	noCache   bool // disable caching entirely
}

// drawCommand creates the draw command, the main entry point of the tool.
//
// Default settings:
//   - format: svg
//   - theme: default
//   - stereo wedges, compact terminal groups, and principal-axis rotation on
//   - results cached under ~/.cache/moldraw
func (c *CLI) drawCommand() *cobra.Command {
	var o drawOpts
	lay := layout.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "draw <smiles>",
		Short: "Draw a molecule from SMILES notation",
		Long: `Draw a molecule from SMILES notation.

The drawing pipeline parses the notation, perceives rings, computes a 2-D
layout, and renders it to SVG, PNG, or a JSON snapshot. Layouts and artifacts
are cached locally, so repeated draws of the same molecule are instant.

Examples:
  moldraw draw 'c1ccccc1' -o benzene.svg
  moldraw draw 'CC(=O)Oc1ccccc1C(=O)O' -f svg,png -o aspirin
  moldraw draw 'C[C@@H](N)C(=O)O' --theme dark
  moldraw draw 'CCO' -f json -o -        # snapshot JSON to stdout`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDraw(cmd.Context(), args[0], &o, lay)
		},
	}

	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().StringVarP(&o.formats, "format", "f", "", "output format(s): svg (default), png, json (comma-separated)")
	cmd.Flags().StringVar(&o.theme, "theme", "", "built-in theme: default, dark")
	cmd.Flags().StringVar(&o.themeFile, "theme-file", "", "TOML theme file (overrides --theme)")
	cmd.Flags().Float64Var(&o.scale, "scale", 0, "SVG pixel scale (default from theme)")
	cmd.Flags().IntVar(&o.maxSize, "max-size", 0, "PNG maximum edge in pixels")
	cmd.Flags().BoolVar(&o.centers, "centers", false, "draw ring centers (debug overlay, SVG only)")
	cmd.Flags().Float64Var(&lay.BondLength, "bond-length", lay.BondLength, "target bond length in drawing units")
	cmd.Flags().Float64Var(&lay.BondSpacing, "bond-spacing", lay.BondSpacing, "double-bond line gap")
	cmd.Flags().BoolVar(&o.noStereo, "no-stereo", false, "skip wedge and cis/trans assignment")
	cmd.Flags().BoolVar(&o.noCompact, "no-compact", false, "keep terminal heteroatom groups as separate atoms")
	cmd.Flags().BoolVar(&o.noRotate, "no-rotate", false, "keep the raw layout orientation")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runDraw executes the full pipeline and writes the requested artifacts.
func (c *CLI) runDraw(ctx context.Context, source string, o *drawOpts, lay layout.Options) error {
	formats := parseFormats(o.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}
	if o.output == "-" && len(formats) > 1 {
		return fmt.Errorf("stdout output supports a single format, got %d", len(formats))
	}

	if o.noStereo {
		lay.Isomeric = false
	}
	if o.noCompact {
		lay.CompactDrawing = false
	}
	if o.noRotate {
		lay.RotateDrawing = false
	}

	runner, err := c.newRunner(o.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{
		Source:      source,
		Layout:      lay,
		Formats:     formats,
		Theme:       o.theme,
		ThemePath:   o.themeFile,
		Scale:       o.scale,
		MaxSize:     o.maxSize,
		ShowCenters: o.centers,
		Refresh:     o.refresh,
		Logger:      c.Logger,
	}

	spinner := newSpinner(ctx, "Drawing molecule...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Drawing failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(result.Artifacts, formats, o.output, result.Snapshot.Meta.Formula)
	if err != nil {
		return err
	}

	if o.output == "-" {
		return nil
	}

	printSuccess("Drew %s", result.Snapshot.Meta.Formula)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	return nil
}

// writeArtifacts writes each rendered format to its own file and returns the
// paths written. With output "-" the single artifact goes to stdout. An empty
// output falls back to the molecular formula as base name.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, fallback string) ([]string, error) {
	if output == "-" {
		_, err := os.Stdout.Write(artifacts[formats[0]])
		return nil, err
	}

	var paths []string
	for _, format := range formats {
		path := outputPath(output, fallback, format, len(formats) > 1)
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// outputPath derives the file path for one format. A single format keeps an
// explicit output path untouched; multiple formats share a base path with the
// format appended as extension.
func outputPath(output, fallback, format string, multiple bool) string {
	if output == "" {
		return fallback + "." + format
	}
	if !multiple {
		return output
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		output = strings.TrimSuffix(output, ext)
	}
	return output + "." + format
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty or "-", it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
