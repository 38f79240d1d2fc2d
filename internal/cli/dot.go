package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moldraw/moldraw/pkg/dot"
	"github.com/moldraw/moldraw/pkg/pipeline"
)

// dotOpts holds the command-line flags for the dot command.
type dotOpts struct {
	output    string
	render    string // "", "svg", or "png"
	detailed  bool
	positions bool
	noCache   bool
}

// dotCommand creates the dot command for layout debugging.
func (c *CLI) dotCommand() *cobra.Command {
	var o dotOpts

	cmd := &cobra.Command{
		Use:   "dot <smiles>",
		Short: "Emit a Graphviz view of the layout",
		Long: `Emit a Graphviz view of the layout.

The dot command runs the front half of the pipeline (parse, ring perception,
layout) and prints the result as Graphviz DOT: ring membership as fill
colours, bond order as parallel edges, wedges as edge styles. With
--positions the computed coordinates are pinned, so piping through
'neato -n2 -Tsvg' reproduces the drawing's geometry.

Use --render to rasterize in process instead of printing DOT source.

Examples:
  moldraw dot 'c1ccc2ccccc2c1'
  moldraw dot 'C1CC2CCC1C2' --positions | neato -n2 -Tsvg > norbornane.svg
  moldraw dot 'CC(=O)O' --render svg -o acetic.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDot(cmd.Context(), args[0], &o)
		},
	}

	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&o.render, "render", "", "rasterize the DOT source: svg, png")
	cmd.Flags().BoolVar(&o.detailed, "detailed", false, "show atom IDs, charges, isotopes, and ring membership")
	cmd.Flags().BoolVar(&o.positions, "positions", false, "pin computed coordinates (for neato -n2)")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runDot lays out the molecule and writes DOT source or a rendered image.
func (c *CLI) runDot(ctx context.Context, source string, o *dotOpts) error {
	runner, err := c.newRunner(o.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	snap, err := runner.Snapshot(ctx, pipeline.Options{Source: source, Logger: c.Logger})
	if err != nil {
		return err
	}

	src := dot.FromSnapshot(snap, dot.Options{Detailed: o.detailed, Positions: o.positions})
	data, err := dotBytes(src, o.render)
	if err != nil {
		return err
	}

	out, err := openOutput(o.output)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}
	if o.output != "" && o.output != "-" {
		printSuccess("Wrote %s", o.output)
	}
	return nil
}

// dotBytes returns the DOT source as-is or rendered to the requested format.
func dotBytes(src, render string) ([]byte, error) {
	switch render {
	case "":
		return []byte(src), nil
	case "svg":
		return dot.RenderSVG(src)
	case "png":
		return dot.RenderPNG(src)
	default:
		return nil, fmt.Errorf("invalid render format: %s (must be 'svg' or 'png')", render)
	}
}
