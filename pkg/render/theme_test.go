package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultThemeValid(t *testing.T) {
	th := Default()
	if err := th.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if th.Background != "#FFFFFF" {
		t.Errorf("Background = %q, want #FFFFFF", th.Background)
	}
	if th.FontFraction != DefaultFontFraction {
		t.Errorf("FontFraction = %v, want %v", th.FontFraction, DefaultFontFraction)
	}
}

func TestDarkThemeValid(t *testing.T) {
	th := Dark()
	if err := th.Validate(); err != nil {
		t.Fatalf("Dark().Validate() error = %v", err)
	}
	if th.Name != "dark" {
		t.Errorf("Name = %q, want dark", th.Name)
	}
	if th.Background == Default().Background {
		t.Error("dark background matches light background")
	}
}

func TestElementColor(t *testing.T) {
	th := Default()
	if got := th.ElementColor("O"); got != th.Elements["O"] {
		t.Errorf("ElementColor(O) = %q, want %q", got, th.Elements["O"])
	}
	if got := th.ElementColor("Xx"); got != th.Label {
		t.Errorf("ElementColor(Xx) = %q, want label colour %q", got, th.Label)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Theme)
		want   string
	}{
		{"no background", func(th *Theme) { th.Background = "" }, "background"},
		{"no bond colour", func(th *Theme) { th.Bond = "" }, "bond"},
		{"no label colour", func(th *Theme) { th.Label = "" }, "label"},
		{"zero font", func(th *Theme) { th.FontFraction = 0 }, "font_fraction"},
		{"huge font", func(th *Theme) { th.FontFraction = 3 }, "font_fraction"},
		{"zero stroke", func(th *Theme) { th.StrokeFraction = 0 }, "stroke_fraction"},
		{"negative padding", func(th *Theme) { th.PaddingFraction = -1 }, "padding_fraction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := Default()
			tt.mutate(&th)
			err := th.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestValidateTransparentNeedsNoBackground(t *testing.T) {
	th := Default()
	th.Background = ""
	th.Transparent = true
	if err := th.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil for transparent theme", err)
	}
}

func TestLoadTheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sepia.toml")
	data := `
name = "sepia"
background = "#FFF8E7"

[elements]
N = "#0000CC"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	th, err := LoadTheme(path)
	if err != nil {
		t.Fatalf("LoadTheme() error = %v", err)
	}
	if th.Name != "sepia" || th.Background != "#FFF8E7" {
		t.Errorf("loaded theme = %q/%q, want sepia/#FFF8E7", th.Name, th.Background)
	}
	if th.ElementColor("N") != "#0000CC" {
		t.Errorf("ElementColor(N) = %q, want override #0000CC", th.ElementColor("N"))
	}
	if th.FontFraction != DefaultFontFraction {
		t.Errorf("FontFraction = %v, want inherited default %v", th.FontFraction, DefaultFontFraction)
	}
	if th.Bond != Default().Bond {
		t.Errorf("Bond = %q, want inherited default", th.Bond)
	}
}

func TestLoadThemeMissingFile(t *testing.T) {
	if _, err := LoadTheme(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadTheme(missing) = nil, want error")
	}
}

func TestLoadThemeRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("font_fraction = 9.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadTheme(path)
	if err == nil || !strings.Contains(err.Error(), "font_fraction") {
		t.Errorf("LoadTheme(bad) error = %v, want font_fraction complaint", err)
	}
}

func TestLoadThemeRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("background = \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTheme(path); err == nil {
		t.Error("LoadTheme(broken) = nil, want parse error")
	}
}
