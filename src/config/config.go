// Package config holds the sketchy configuration: defaults, an optional YAML file and
// environment overrides (a .env file in the working directory is loaded first).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all sketchy configuration.
type Config struct {
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Truth      TruthConfig      `yaml:"truth"`
	Report     ReportConfig     `yaml:"report"`
	Sketches   SketchConfig     `yaml:"sketches"`
}

// EvaluationConfig bounds an evaluation run.
type EvaluationConfig struct {
	Limit        int    `yaml:"limit"`      // evaluate up to and including this read index
	ShowRanks    int    `yaml:"show_ranks"` // rank positions scored into the timeline
	Top          int    `yaml:"top"`        // candidates retained per read
	Missing      string `yaml:"missing"`
	GenotypeRule string `yaml:"genotype_rule"` // subset or exact
}

// TruthConfig is the default ground truth of a sample.
type TruthConfig struct {
	Lineage    string `yaml:"lineage"`
	Resistance string `yaml:"resistance"`
	Genotype   string `yaml:"genotype"`
}

// ReportConfig configures rendered artifacts.
type ReportConfig struct {
	Palette   string   `yaml:"palette"` // red, orange, green or blue; empty uses primary/secondary
	Primary   string   `yaml:"primary"`
	Secondary string   `yaml:"secondary"`
	Formats   []string `yaml:"formats"`
}

// SketchConfig locates the reference sketch collections.
type SketchConfig struct {
	Path      string `yaml:"path"`
	BucketURL string `yaml:"bucket_url"`
	Full      bool   `yaml:"full"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Evaluation: EvaluationConfig{
			Limit:        1000,
			ShowRanks:    50,
			Top:          50,
			Missing:      "-",
			GenotypeRule: "subset",
		},
		Truth: TruthConfig{
			Lineage:    "9",
			Resistance: "SRSSSSSSRSSS",
			Genotype:   "",
		},
		Report: ReportConfig{
			Primary:   "#88419d",
			Secondary: "#8c96c6",
			Formats:   []string{"tsv", "png"},
		},
		Sketches: SketchConfig{
			Path:      defaultSketchPath(),
			BucketURL: "https://storage.googleapis.com/sketchy-sketch",
		},
	}
}

func defaultSketchPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sketchy"
	}
	return filepath.Join(home, ".sketchy")
}

// Load reads a YAML configuration on top of the defaults. An empty path or a missing
// file yields the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// a missing .env is not an error, a malformed one is
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// applyEnvOverrides lets SKETCHY_* variables replace configured values.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("SKETCHY_PATH"); v != "" {
		c.Sketches.Path = v
	}
	ints := []struct {
		name string
		dst  *int
	}{
		{"SKETCHY_LIMIT", &c.Evaluation.Limit},
		{"SKETCHY_SHOW_RANKS", &c.Evaluation.ShowRanks},
		{"SKETCHY_TOP", &c.Evaluation.Top},
	}
	for _, env := range ints {
		v := os.Getenv(env.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("bad value for %s: %w", env.name, err)
		}
		*env.dst = n
	}
	return nil
}

// Validate checks the configured bounds.
func (c *Config) Validate() error {
	if c.Evaluation.Limit < 0 {
		return fmt.Errorf("limit must be zero or positive, got %d", c.Evaluation.Limit)
	}
	if c.Evaluation.ShowRanks < 1 {
		return fmt.Errorf("show_ranks must be at least 1, got %d", c.Evaluation.ShowRanks)
	}
	if c.Evaluation.Top < 1 {
		return fmt.Errorf("top must be at least 1, got %d", c.Evaluation.Top)
	}
	if len(c.Evaluation.Missing) != 1 {
		return fmt.Errorf("missing marker must be a single character, got %q", c.Evaluation.Missing)
	}
	switch c.Evaluation.GenotypeRule {
	case "subset", "exact":
	default:
		return fmt.Errorf("unknown genotype rule %q (please choose subset/exact)", c.Evaluation.GenotypeRule)
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
