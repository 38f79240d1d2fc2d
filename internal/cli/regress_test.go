package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moldraw/moldraw/pkg/regress"
)

func TestLoadCasesDefault(t *testing.T) {
	cases, err := loadCases("")
	if err != nil {
		t.Fatalf("loadCases(\"\") error: %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("built-in corpus is empty")
	}
}

func TestLoadCasesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	corpus := "- name: benzene\n  smiles: c1ccccc1\n"
	if err := os.WriteFile(path, []byte(corpus), 0o644); err != nil {
		t.Fatal(err)
	}

	cases, err := loadCases(path)
	if err != nil {
		t.Fatalf("loadCases() error: %v", err)
	}
	if len(cases) != 1 || cases[0].Name != "benzene" {
		t.Errorf("cases = %+v", cases)
	}
}

func TestLoadCasesMissingFile(t *testing.T) {
	if _, err := loadCases(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("loadCases() with a missing file should fail")
	}
}

func TestResolveBaselinePathExplicit(t *testing.T) {
	path, err := resolveBaselinePath("/tmp/ci.db")
	if err != nil {
		t.Fatalf("resolveBaselinePath() error: %v", err)
	}
	if path != "/tmp/ci.db" {
		t.Errorf("path = %q, want /tmp/ci.db", path)
	}
}

func TestResolveBaselinePathDefault(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	path, err := resolveBaselinePath("")
	if err != nil {
		t.Fatalf("resolveBaselinePath() error: %v", err)
	}

	want := filepath.Join(dataHome, appName, baselineFile)
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	// The data directory must exist so OpenBaselines can create the file.
	if _, err := os.Stat(filepath.Join(dataHome, appName)); err != nil {
		t.Errorf("data dir not created: %v", err)
	}
}

func TestRegressDetail(t *testing.T) {
	tests := []struct {
		name string
		r    regress.CaseResult
		want string
	}{
		{
			"ok shows overlap",
			regress.CaseResult{Status: regress.StatusOK, Overlap: 1.5},
			"overlap 1.50",
		},
		{
			"changed shows delta",
			regress.CaseResult{Status: regress.StatusChanged, Overlap: 2.0, OverlapDelta: 0.5},
			"overlap 2.00 (+0.50)",
		},
		{
			"error shows message",
			regress.CaseResult{Status: regress.StatusError, Err: errors.New("parse: boom")},
			"parse: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := regressDetail(tt.r); got != tt.want {
				t.Errorf("regressDetail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusStyleKeepsText(t *testing.T) {
	statuses := []regress.Status{
		regress.StatusOK, regress.StatusChanged, regress.StatusNew, regress.StatusError,
	}
	for _, s := range statuses {
		if got := statusStyle(s).Render(string(s)); !strings.Contains(got, string(s)) {
			t.Errorf("statusStyle(%s) lost its text: %q", s, got)
		}
	}
}
