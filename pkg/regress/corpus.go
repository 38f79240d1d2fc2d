package regress

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Case is one corpus molecule.
type Case struct {
	// Name keys the baseline and must be unique within the corpus.
	Name   string   `yaml:"name"`
	SMILES string   `yaml:"smiles"`
	Tags   []string `yaml:"tags,omitempty"`
}

// LoadCorpus reads a YAML corpus file: a list of cases with name, smiles
// and optional tags.
func LoadCorpus(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	var cases []Case
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", path, err)
	}
	if err := ValidateCorpus(cases); err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", path, err)
	}
	return cases, nil
}

// ValidateCorpus rejects empty or duplicate case names and empty SMILES.
func ValidateCorpus(cases []Case) error {
	if len(cases) == 0 {
		return fmt.Errorf("corpus is empty")
	}

	seen := make(map[string]bool, len(cases))
	for i, c := range cases {
		if c.Name == "" {
			return fmt.Errorf("case %d: missing name", i)
		}
		if c.SMILES == "" {
			return fmt.Errorf("case %s: missing smiles", c.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("case %s: duplicate name", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// FilterCases keeps the cases carrying at least one of the given tags.
// Empty tags keep everything.
func FilterCases(cases []Case, tags []string) []Case {
	if len(tags) == 0 {
		return cases
	}

	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}

	var kept []Case
	for _, c := range cases {
		for _, t := range c.Tags {
			if want[t] {
				kept = append(kept, c)
				break
			}
		}
	}
	return kept
}

// DefaultCases is a built-in corpus spanning the tricky layout regimes:
// fused and bridged rings, stereo bonds, charges and isotopes.
func DefaultCases() []Case {
	return []Case{
		{Name: "methane", SMILES: "C", Tags: []string{"chain"}},
		{Name: "ethanol", SMILES: "CCO", Tags: []string{"chain"}},
		{Name: "isobutane", SMILES: "CC(C)C", Tags: []string{"chain", "branch"}},
		{Name: "benzene", SMILES: "c1ccccc1", Tags: []string{"ring", "aromatic"}},
		{Name: "cyclohexane", SMILES: "C1CCCCC1", Tags: []string{"ring"}},
		{Name: "naphthalene", SMILES: "c1ccc2ccccc2c1", Tags: []string{"ring", "fused"}},
		{Name: "aspirin", SMILES: "CC(=O)Oc1ccccc1C(=O)O", Tags: []string{"ring", "branch"}},
		{Name: "caffeine", SMILES: "Cn1cnc2c1c(=O)n(C)c(=O)n2C", Tags: []string{"ring", "fused", "aromatic"}},
		{Name: "alanine", SMILES: "C[C@@H](N)C(=O)O", Tags: []string{"stereo"}},
		{Name: "trans-butene", SMILES: "C/C=C/C", Tags: []string{"stereo"}},
		{Name: "norbornane", SMILES: "C1CC2CCC1C2", Tags: []string{"ring", "bridged"}},
		{Name: "cubane", SMILES: "C12C3C4C1C5C2C3C45", Tags: []string{"ring", "bridged"}},
		{Name: "tetramethylammonium", SMILES: "C[N+](C)(C)C", Tags: []string{"charge"}},
		{Name: "heavy-water", SMILES: "[2H]O[2H]", Tags: []string{"isotope"}},
	}
}
