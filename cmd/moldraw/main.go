// Command moldraw renders 2-D molecule depictions from SMILES input.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moldraw/moldraw/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	wireVerbosity(c, root)

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // interrupted, shell convention
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// wireVerbosity adds --verbose and applies it once flags have been parsed,
// chaining any PersistentPreRunE the root already carries.
func wireVerbosity(c *cli.CLI, root *cobra.Command) {
	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	chained := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if chained != nil {
			return chained(cmd, args)
		}
		return nil
	}
}
