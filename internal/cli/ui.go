package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/moldraw/moldraw/pkg/pipeline"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary accent
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // command text
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // secondary text
	colorDim    = lipgloss.Color("240") // muted text
)

// =============================================================================
// Styles
// =============================================================================

// Exported styles are shared with the TUI.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
	StyleError     = lipgloss.NewStyle().Foreground(colorRed)
)

var (
	styleIconSuccess = StyleSuccess
	styleIconError   = StyleError
	styleIconWarning = StyleWarning
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = StyleHighlight

	styleCached   = StyleSuccess
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func statusLine(style lipgloss.Style, icon, format string, args ...any) {
	fmt.Println(style.Render(icon) + " " + fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) {
	statusLine(styleIconSuccess, iconSuccess, format, args...)
}

func printError(format string, args ...any) {
	statusLine(styleIconError, iconError, format, args...)
}

func printWarning(format string, args ...any) {
	statusLine(styleIconWarning, iconWarning, "%s", StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	statusLine(styleIconInfo, iconInfo, format, args...)
}

// printDetail prints an indented, muted detail line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints an output-file line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value with a fixed-width key column.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Molecule Stats
// =============================================================================

// printStats prints one muted line of molecule statistics, ending with
// whether the drawing came from the cache.
func printStats(st pipeline.Stats, cached bool) {
	parts := []string{
		fmt.Sprintf("%d atoms", st.Atoms),
		fmt.Sprintf("%d bonds", st.Bonds),
	}
	if st.Rings > 0 {
		parts = append(parts, fmt.Sprintf("%d rings", st.Rings))
	}
	parts = append(parts, fmt.Sprintf("overlap %.2f", st.Overlap))
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}

	if cached {
		parts = append(parts, styleCached.Render(iconCached))
	} else {
		parts = append(parts, styleComputed.Render(iconFresh))
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// =============================================================================
// Next Steps
// =============================================================================

// printNextStep prints a suggested follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}
