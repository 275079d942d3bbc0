// Package features reads the genotype feature index that annotates reference genomes
// with lineage, resistance calls and genotype markers.
package features

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template names the index columns that make up each annotation
type Template struct {
	Name       string   `yaml:"name"`
	Lineage    string   `yaml:"lineage"`
	Resistance []string `yaml:"resistance"` // profile order, one character per column
	Binary     []string `yaml:"binary"`     // resistance columns holding presence calls
	Genotype   []string `yaml:"genotype"`
}

var mykrobeDrugs = []string{
	"clindamycin",
	"rifampicin",
	"ciprofloxacin",
	"vancomycin",
	"tetracycline",
	"mupirocin",
	"gentamicin",
	"trimethoprim",
	"penicillin",
	"methicillin",
	"erythromycin",
	"fusidicacid",
}

var kleborateClasses = []string{
	"agly",
	"col",
	"fcyn",
	"flq",
	"gly",
	"mls",
	"ntmdz",
	"phe",
	"rif",
	"sul",
	"tet",
	"tmt",
	"bla",
	"bla_carb",
	"bla_esbl",
	"bla_broad",
}

var templates = map[string]Template{
	"kpneumoniae": {
		Name:       "kpneumoniae",
		Lineage:    "st",
		Resistance: kleborateClasses,
		Binary:     kleborateClasses,
		Genotype:   []string{"virulence_score", "resistance_score", "yersiniabactin", "rmp", "k_locus", "o_locus"},
	},
	"saureus": {
		Name:       "saureus",
		Lineage:    "mlst",
		Resistance: mykrobeDrugs,
		Genotype:   []string{"meca", "pvl", "spa", "scc"},
	},
	"mtuberculosis": {
		Name:       "mtuberculosis",
		Lineage:    "lineage",
		Resistance: mykrobeDrugs,
	},
}

// Templates returns the names of the built-in templates
func Templates() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetTemplate returns a built-in template by name
func GetTemplate(name string) (Template, error) {
	t, ok := templates[strings.ToLower(name)]
	if !ok {
		return Template{}, fmt.Errorf("unknown template %q (available: %s)", name, strings.Join(Templates(), ", "))
	}
	return t.copy(), nil
}

// LoadTemplate reads a template from a YAML file
func LoadTemplate(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, err
	}
	t := Template{}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Template{}, fmt.Errorf("parsing template %s: %w", path, err)
	}
	t.normalise()
	if err := t.Validate(); err != nil {
		return Template{}, fmt.Errorf("template %s: %w", path, err)
	}
	return t, nil
}

// Validate checks the template names a lineage and at least one resistance column
func (t Template) Validate() error {
	if t.Lineage == "" {
		return fmt.Errorf("no lineage column")
	}
	if len(t.Resistance) == 0 {
		return fmt.Errorf("no resistance columns")
	}
	resistance := make(map[string]bool, len(t.Resistance))
	for _, col := range t.Resistance {
		if resistance[col] {
			return fmt.Errorf("duplicate resistance column %q", col)
		}
		resistance[col] = true
	}
	for _, col := range t.Binary {
		if !resistance[col] {
			return fmt.Errorf("binary column %q is not a resistance column", col)
		}
	}
	return nil
}

// index headers are lower-cased, so template columns are too
func (t *Template) normalise() {
	t.Lineage = strings.ToLower(strings.TrimSpace(t.Lineage))
	for _, cols := range [][]string{t.Resistance, t.Binary, t.Genotype} {
		for i := range cols {
			cols[i] = strings.ToLower(strings.TrimSpace(cols[i]))
		}
	}
}

func (t Template) copy() Template {
	c := t
	c.Resistance = append([]string(nil), t.Resistance...)
	c.Binary = append([]string(nil), t.Binary...)
	c.Genotype = append([]string(nil), t.Genotype...)
	return c
}
