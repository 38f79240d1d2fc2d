package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/moldraw/moldraw/pkg/layout"
	"github.com/moldraw/moldraw/pkg/render"
)

// Render generates output artifacts in the requested formats.
func Render(s *layout.Snapshot, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = render.RenderSVG(s, buildSVGOptions(opts)...)
		case FormatPNG:
			data, err = render.RenderPNG(s, buildPNGOptions(opts)...)
		case FormatJSON:
			data, err = MarshalSnapshot(s)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options from pipeline options.
func buildSVGOptions(opts Options) []render.SVGOption {
	svgOpts := []render.SVGOption{
		render.WithTheme(opts.ResolvedTheme()),
		render.WithScale(opts.Scale),
	}
	if opts.ShowCenters {
		svgOpts = append(svgOpts, render.WithCenters())
	}
	return svgOpts
}

// buildPNGOptions builds PNG rendering options from pipeline options.
func buildPNGOptions(opts Options) []render.PNGOption {
	return []render.PNGOption{
		render.WithPNGTheme(opts.ResolvedTheme()),
		render.WithMaxSize(opts.MaxSize),
	}
}

// MarshalSnapshot emits the identity-free JSON artifact. The snapshot ID is
// minted per run; clearing it keeps artifact bytes a pure function of the
// drawing, so cached and fresh runs agree.
func MarshalSnapshot(s *layout.Snapshot) ([]byte, error) {
	clone := *s
	clone.ID = ""
	return json.MarshalIndent(&clone, "", "  ")
}
