package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/moldraw/moldraw/pkg/regress"
)

// baselineFile is the default SQLite file name under the data directory.
const baselineFile = "baselines.db"

// regressOpts holds the command-line flags for the regress command.
type regressOpts struct {
	corpus    string
	baseline  string
	update    bool
	tags      []string
	tolerance float64
}

// regressCommand creates the regress command for geometry regression checks.
func (c *CLI) regressCommand() *cobra.Command {
	o := regressOpts{tolerance: regress.DefaultTolerance}

	cmd := &cobra.Command{
		Use:   "regress",
		Short: "Check drawing geometry against stored baselines",
		Long: `Check drawing geometry against stored baselines.

Each corpus case is laid out through the real pipeline (cache disabled) and
its position hash compared with the stored baseline. Changed or errored cases
fail the run; cases without a baseline are reported as new. Run with --update
after an intentional geometry change to rewrite the baselines.

Examples:
  moldraw regress
  moldraw regress --tags ring,stereo
  moldraw regress --corpus cases.yaml --baseline ci.db --update`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRegress(cmd.Context(), &o)
		},
	}

	cmd.Flags().StringVar(&o.corpus, "corpus", "", "YAML corpus file (built-in cases if empty)")
	cmd.Flags().StringVar(&o.baseline, "baseline", "", "SQLite baseline file (default: "+filepath.Join("<data dir>", baselineFile)+")")
	cmd.Flags().BoolVar(&o.update, "update", false, "rewrite baselines from the current run")
	cmd.Flags().StringSliceVar(&o.tags, "tags", nil, "run only cases carrying one of these tags")
	cmd.Flags().Float64Var(&o.tolerance, "tolerance", o.tolerance, "overlap increase treated as noise")

	return cmd
}

// runRegress loads the corpus, runs every case, and prints the result table.
func (c *CLI) runRegress(ctx context.Context, o *regressOpts) error {
	cases, err := loadCases(o.corpus)
	if err != nil {
		return err
	}

	path, err := resolveBaselinePath(o.baseline)
	if err != nil {
		return err
	}
	store, err := regress.OpenBaselines(path)
	if err != nil {
		return fmt.Errorf("open baselines %s: %w", path, err)
	}
	defer store.Close()

	harness := regress.NewHarness(store, c.Logger)
	prog := newProgress(c.Logger)
	sum, err := harness.Run(ctx, cases, regress.RunOptions{
		Update:    o.update,
		Tags:      o.tags,
		Tolerance: o.tolerance,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Checked %d cases", len(sum.Results)))

	printRegressTable(sum)
	printDetail("overlap mean %.2f · p90 %.2f · max %.2f", sum.MeanOverlap, sum.P90Overlap, sum.MaxOverlap)
	printNewline()

	if o.update {
		printSuccess("Baselines updated (%d cases)", len(sum.Results))
		printDetail("File: %s", path)
		printNextStep("Verify", "moldraw regress")
		return nil
	}

	if !sum.Clean() {
		return fmt.Errorf("geometry regression: %d changed, %d errored", sum.Changed, sum.Errors)
	}
	if sum.New > 0 {
		printWarning("%d new cases without baselines (run with --update to record them)", sum.New)
	}
	printSuccess("All %d baselined cases match", sum.OK)
	return nil
}

// loadCases reads the corpus file, falling back to the built-in cases.
func loadCases(path string) ([]regress.Case, error) {
	if path == "" {
		return regress.DefaultCases(), nil
	}
	return regress.LoadCorpus(path)
}

// resolveBaselinePath returns the baseline file path, creating the data
// directory for the default location.
func resolveBaselinePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	dir, err := dataDir()
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return filepath.Join(dir, baselineFile), nil
}

// printRegressTable renders one row per case with a coloured status column.
func printRegressTable(sum *regress.Summary) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(sum.Results))
	for _, r := range sum.Results {
		rows = append(rows, []string{r.Case.Name, string(r.Status), regressDetail(r)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Case", "Status", "Detail").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 1 && row < len(sum.Results) {
				return statusStyle(sum.Results[row].Status)
			}
			return lipgloss.NewStyle()
		})

	fmt.Println(t.Render())
}

// regressDetail renders the per-case third column: overlap plus its delta
// for changed cases, the error for failed ones.
func regressDetail(r regress.CaseResult) string {
	switch r.Status {
	case regress.StatusError:
		return r.Err.Error()
	case regress.StatusChanged:
		return fmt.Sprintf("overlap %.2f (%+.2f)", r.Overlap, r.OverlapDelta)
	default:
		return fmt.Sprintf("overlap %.2f", r.Overlap)
	}
}

// statusStyle maps a case status to its display colour.
func statusStyle(s regress.Status) lipgloss.Style {
	switch s {
	case regress.StatusOK:
		return StyleSuccess
	case regress.StatusChanged, regress.StatusError:
		return StyleError
	case regress.StatusNew:
		return StyleHighlight
	default:
		return StyleValue
	}
}
