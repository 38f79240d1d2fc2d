package render

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/moldraw/moldraw/pkg/fonts"
)

const (
	// DefaultFontFraction sizes atom labels relative to the bond length.
	DefaultFontFraction = 0.56
	// DefaultStrokeFraction sizes bond strokes relative to the bond length.
	DefaultStrokeFraction = 0.06
	// DefaultPaddingFraction sizes the canvas margin relative to the bond
	// length.
	DefaultPaddingFraction = 1.1
)

// Theme holds the colours and proportions of a drawing. Themes load from
// TOML files, so every field carries a toml tag; absent fields inherit
// from [Default].
type Theme struct {
	// Name identifies the theme in logs and artifact metadata.
	Name string `toml:"name"`
	// Background is the canvas fill. Ignored when Transparent is set.
	Background string `toml:"background"`
	// Bond is the stroke colour for bond lines and wedges.
	Bond string `toml:"bond"`
	// Label is the text colour for atoms without an element colour.
	Label string `toml:"label"`
	// Elements maps element symbols to label colours.
	Elements map[string]string `toml:"elements"`
	// FontFamily is written into SVG text elements.
	FontFamily string `toml:"font_family"`
	// FontFraction, StrokeFraction and PaddingFraction are proportions of
	// the bond length.
	FontFraction    float64 `toml:"font_fraction"`
	StrokeFraction  float64 `toml:"stroke_fraction"`
	PaddingFraction float64 `toml:"padding_fraction"`
	// Transparent skips the background rectangle.
	Transparent bool `toml:"transparent"`
}

// Default returns the light theme used when no theme file is given.
func Default() Theme {
	return Theme{
		Name:       "default",
		Background: "#FFFFFF",
		Bond:       "#1A1A1A",
		Label:      "#1A1A1A",
		Elements: map[string]string{
			"H":  "#5F6368",
			"B":  "#E8590C",
			"N":  "#3050F8",
			"O":  "#E03131",
			"F":  "#12B886",
			"P":  "#F76707",
			"S":  "#B8860B",
			"Cl": "#2F9E44",
			"Br": "#A65229",
			"I":  "#862E9C",
		},
		FontFamily:      fonts.FallbackFamily,
		FontFraction:    DefaultFontFraction,
		StrokeFraction:  DefaultStrokeFraction,
		PaddingFraction: DefaultPaddingFraction,
	}
}

// Dark returns the built-in dark theme.
func Dark() Theme {
	t := Default()
	t.Name = "dark"
	t.Background = "#111417"
	t.Bond = "#E6E6E6"
	t.Label = "#E6E6E6"
	t.Elements = map[string]string{
		"H":  "#9AA0A6",
		"B":  "#FFA94D",
		"N":  "#748FFC",
		"O":  "#FF6B6B",
		"F":  "#63E6BE",
		"P":  "#FFA94D",
		"S":  "#FFD43B",
		"Cl": "#69DB7C",
		"Br": "#E8995C",
		"I":  "#DA77F2",
	}
	return t
}

// LoadTheme reads a TOML theme file. Fields the file leaves out keep
// their [Default] values, so a theme can override only colours.
func LoadTheme(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("read theme: %w", err)
	}
	t := Default()
	if err := toml.Unmarshal(data, &t); err != nil {
		return Theme{}, fmt.Errorf("parse theme %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return Theme{}, fmt.Errorf("theme %s: %w", path, err)
	}
	return t, nil
}

// Validate checks the theme for values the renderers cannot work with.
func (t Theme) Validate() error {
	if t.Background == "" && !t.Transparent {
		return fmt.Errorf("background must be set unless transparent")
	}
	if t.Bond == "" {
		return fmt.Errorf("bond colour must be set")
	}
	if t.Label == "" {
		return fmt.Errorf("label colour must be set")
	}
	if t.FontFraction <= 0 || t.FontFraction > 2 {
		return fmt.Errorf("font_fraction must be in (0, 2], got %v", t.FontFraction)
	}
	if t.StrokeFraction <= 0 || t.StrokeFraction > 0.5 {
		return fmt.Errorf("stroke_fraction must be in (0, 0.5], got %v", t.StrokeFraction)
	}
	if t.PaddingFraction < 0 || t.PaddingFraction > 10 {
		return fmt.Errorf("padding_fraction must be in [0, 10], got %v", t.PaddingFraction)
	}
	return nil
}

// ElementColor returns the label colour for an element symbol, falling
// back to the general label colour.
func (t Theme) ElementColor(symbol string) string {
	if c, ok := t.Elements[symbol]; ok {
		return c
	}
	return t.Label
}
