package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/moldraw/moldraw/pkg/layout"
	"github.com/moldraw/moldraw/pkg/pipeline"
)

// paneStyle frames the live stats pane.
var paneStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(colorDim).
	Padding(0, 1)

// tuiCommand creates the interactive viewer command.
func (c *CLI) tuiCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Explore molecules interactively",
		Long: `Explore molecules interactively.

Type SMILES notation and press enter to draw. The stats pane shows the
formula, atom and ring counts, the overlap score, and the stereo summary of
the current molecule. Press ctrl+s to save the drawing as SVG.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cch, err := newCache(noCache)
			if err != nil {
				return fmt.Errorf("initialize cache: %w", err)
			}
			// The alternate screen owns the terminal; pipeline logs go nowhere.
			runner := pipeline.NewRunner(cch, nil, log.New(io.Discard))
			defer runner.Close()

			p := tea.NewProgram(newTUIModel(runner), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// =============================================================================
// Messages
// =============================================================================

// drawnMsg carries a finished (or failed) pipeline run back to the UI.
type drawnMsg struct {
	source string
	snap   *layout.Snapshot
	stats  pipeline.Stats
	svg    []byte
	err    error
}

// savedMsg reports the outcome of a ctrl+s save.
type savedMsg struct {
	path string
	err  error
}

// =============================================================================
// Model
// =============================================================================

// tuiModel is the bubbletea model for the interactive viewer.
type tuiModel struct {
	runner *pipeline.Runner
	input  textinput.Model
	spin   spinner.Model

	source string
	snap   *layout.Snapshot
	stats  pipeline.Stats
	svg    []byte
	busy   bool
	err    error
	saved  string
}

// newTUIModel creates the initial model around a shared pipeline runner.
func newTUIModel(runner *pipeline.Runner) tuiModel {
	ti := textinput.New()
	ti.Placeholder = "c1ccccc1"
	ti.Prompt = "SMILES> "
	ti.PromptStyle = StyleHighlight
	ti.CharLimit = 256
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleIconSpinner

	return tuiModel{runner: runner, input: ti, spin: sp}
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			source := strings.TrimSpace(m.input.Value())
			if source == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.err = nil
			m.saved = ""
			return m, drawMolecule(m.runner, source)
		case "ctrl+s":
			if m.snap == nil || m.busy {
				return m, nil
			}
			return m, saveDrawing(m.snap.Meta.Formula, m.svg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case drawnMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.source = msg.source
		m.snap = msg.snap
		m.stats = msg.stats
		m.svg = msg.svg
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.saved = msg.path
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m tuiModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("moldraw"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.busy:
		b.WriteString(m.spin.View() + StyleDim.Render("drawing..."))
	case m.err != nil:
		b.WriteString(StyleError.Render("error: " + m.err.Error()))
	case m.snap != nil:
		b.WriteString(m.statsView())
	default:
		b.WriteString(StyleDim.Render("Type SMILES notation and press enter."))
	}

	b.WriteString("\n\n")
	if m.saved != "" {
		b.WriteString(StyleSuccess.Render("saved " + m.saved))
		b.WriteString("\n")
	}
	b.WriteString(StyleDim.Render("enter draw · ctrl+s save svg · esc quit"))
	b.WriteString("\n")

	return b.String()
}

// statsView renders the stats pane for the current molecule.
func (m tuiModel) statsView() string {
	label := lipgloss.NewStyle().Foreground(colorGray).Width(10)

	var b strings.Builder
	b.WriteString(label.Render("Formula") + StyleValue.Render(m.snap.Meta.Formula) + "\n")
	b.WriteString(label.Render("Source") + StyleValue.Render(m.source) + "\n")
	b.WriteString(label.Render("Atoms") + StyleValue.Render(fmt.Sprintf("%d", m.stats.Atoms)) + "\n")
	b.WriteString(label.Render("Bonds") + StyleValue.Render(fmt.Sprintf("%d", m.stats.Bonds)) + "\n")
	b.WriteString(label.Render("Rings") + StyleValue.Render(fmt.Sprintf("%d", m.stats.Rings)) + "\n")
	b.WriteString(label.Render("Overlap") + StyleValue.Render(fmt.Sprintf("%.2f", m.stats.Overlap)) + "\n")
	b.WriteString(label.Render("Stereo") + StyleValue.Render(stereoSummary(m.snap)))

	return paneStyle.Render(b.String())
}

// stereoSummary counts wedge bonds and stereo hydrogens in the snapshot.
func stereoSummary(s *layout.Snapshot) string {
	var up, down int
	for _, e := range s.Edges {
		switch e.Wedge {
		case "up":
			up++
		case "down":
			down++
		}
	}
	for _, v := range s.Vertices {
		switch v.HydrogenWedge {
		case "up":
			up++
		case "down":
			down++
		}
	}
	if up+down == 0 {
		return "none"
	}
	return fmt.Sprintf("%d up, %d down", up, down)
}

// =============================================================================
// Commands
// =============================================================================

// drawMolecule runs the pipeline off the UI goroutine.
func drawMolecule(runner *pipeline.Runner, source string) tea.Cmd {
	return func() tea.Msg {
		res, err := runner.Execute(context.Background(), pipeline.Options{
			Source:  source,
			Formats: []string{pipeline.FormatSVG},
		})
		if err != nil {
			return drawnMsg{source: source, err: err}
		}
		return drawnMsg{
			source: source,
			snap:   res.Snapshot,
			stats:  res.Stats,
			svg:    res.Artifacts[pipeline.FormatSVG],
		}
	}
}

// saveDrawing writes the current SVG into the working directory, named
// after the molecular formula.
func saveDrawing(formula string, svg []byte) tea.Cmd {
	return func() tea.Msg {
		path := formula + ".svg"
		if err := os.WriteFile(path, svg, 0o644); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{path: path}
	}
}
