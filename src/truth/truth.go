// Package truth holds the known lineage, resistance profile and genotype of a sample and
// the rule used to decide how well a candidate genome agrees with them.
package truth

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/esteinig/sketchy/src/concordance"
	"github.com/esteinig/sketchy/src/feed"
)

// DefaultMissing is the resistance/genotype placeholder for an unknown call
const DefaultMissing = "-"

// calls allowed in a resistance profile besides the missing marker
const profileAlphabet = "SRU"

// ErrInvalidGroundTruth is the kind of every ground truth construction failure
var ErrInvalidGroundTruth = errors.New("invalid ground truth")

// TruthError describes why a ground truth was rejected
type TruthError struct {
	Msg string
}

func (e *TruthError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidGroundTruth, e.Msg)
}

func (e *TruthError) Unwrap() error { return ErrInvalidGroundTruth }

func invalidf(format string, args ...interface{}) error {
	return &TruthError{Msg: fmt.Sprintf(format, args...)}
}

// GenotypeRule decides how the truth genotype is compared with a candidate's markers
type GenotypeRule int

const (
	// SubsetRule requires every truth marker in the candidate; extra candidate markers are ignored
	SubsetRule GenotypeRule = iota
	// ExactRule additionally rejects candidates carrying markers the truth does not name
	ExactRule
)

func (r GenotypeRule) String() string {
	if r == ExactRule {
		return "exact"
	}
	return "subset"
}

// ParseGenotypeRule converts "subset" or "exact" to a GenotypeRule
func ParseGenotypeRule(s string) (GenotypeRule, error) {
	switch strings.ToLower(s) {
	case "", "subset":
		return SubsetRule, nil
	case "exact":
		return ExactRule, nil
	}
	return SubsetRule, fmt.Errorf("unknown genotype rule %q (please choose subset/exact)", s)
}

// GroundTruth is immutable once constructed
type GroundTruth struct {
	lineage    string
	resistance string
	genotype   feed.Genotype
	missing    string
	rule       GenotypeRule
}

// Option configures a GroundTruth
type Option func(*GroundTruth)

// WithMissing overrides the missing-value marker
func WithMissing(marker string) Option {
	return func(g *GroundTruth) { g.missing = marker }
}

// WithGenotypeRule selects the genotype comparison rule
func WithGenotypeRule(rule GenotypeRule) Option {
	return func(g *GroundTruth) { g.rule = rule }
}

// New validates and returns a ground truth
func New(lineage, resistance, genotype string, opts ...Option) (*GroundTruth, error) {
	g := &GroundTruth{
		lineage:    strings.TrimSpace(lineage),
		resistance: strings.TrimSpace(resistance),
		missing:    DefaultMissing,
	}
	for _, opt := range opts {
		opt(g)
	}
	if len(g.missing) != 1 {
		return nil, invalidf("missing marker must be a single character, got %q", g.missing)
	}
	if g.lineage == "" {
		return nil, invalidf("no lineage given")
	}
	if g.resistance == "" {
		return nil, invalidf("no resistance profile given")
	}
	for i, call := range g.resistance {
		if !strings.ContainsRune(profileAlphabet, call) && string(call) != g.missing {
			return nil, invalidf("resistance profile position %d holds %q (expected one of %s or %q)", i+1, call, profileAlphabet, g.missing)
		}
	}
	markers, err := ParseGenotype(genotype, g.missing)
	if err != nil {
		return nil, err
	}
	g.genotype = markers
	return g, nil
}

// ParseGenotype reads a genotype string: markers separated by commas, semicolons or
// whitespace, each either a bare name (presence) or name=value / name:value. Markers
// whose value is the missing marker are ignored.
func ParseGenotype(s, missing string) (feed.Genotype, error) {
	markers := make(feed.Genotype)
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	for _, token := range tokens {
		name, value := token, ""
		if i := strings.IndexAny(token, "=:"); i != -1 {
			name, value = token[:i], token[i+1:]
			if value == "" || strings.ContainsAny(value, "=:") {
				return nil, invalidf("unknown genotype marker format %q", token)
			}
		}
		name = strings.ToLower(name)
		if name == "" {
			return nil, invalidf("unknown genotype marker format %q", token)
		}
		if _, dup := markers[name]; dup {
			return nil, invalidf("genotype marker %q given twice", name)
		}
		if value == missing {
			continue
		}
		markers[name] = value
	}
	return markers, nil
}

// Lineage returns the true lineage
func (g *GroundTruth) Lineage() string { return g.lineage }

// Resistance returns the true resistance profile
func (g *GroundTruth) Resistance() string { return g.resistance }

// Missing returns the missing-value marker
func (g *GroundTruth) Missing() string { return g.missing }

// Rule returns the genotype comparison rule
func (g *GroundTruth) Rule() GenotypeRule { return g.rule }

// Genotype returns a copy of the true genotype markers
func (g *GroundTruth) Genotype() feed.Genotype {
	markers := make(feed.Genotype, len(g.genotype))
	for k, v := range g.genotype {
		markers[k] = v
	}
	return markers
}

// GenotypeString renders the markers in the grammar accepted by ParseGenotype, sorted by name
func (g *GroundTruth) GenotypeString() string {
	names := make([]string, 0, len(g.genotype))
	for name := range g.genotype {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		if v := g.genotype[name]; v != "" {
			names[i] = name + "=" + v
		}
	}
	return strings.Join(names, ",")
}

// CheckProfileLength rejects a truth whose profile length differs from the feed's
func (g *GroundTruth) CheckProfileLength(n int) error {
	if len(g.resistance) != n {
		return invalidf("resistance profile %q has length %d but the feed profiles have length %d", g.resistance, len(g.resistance), n)
	}
	return nil
}

// LineageMatch reports exact lineage equality
func (g *GroundTruth) LineageMatch(hit feed.CandidateHit) bool {
	return hit.Lineage == g.lineage
}

// ResistanceMatch compares profiles position by position; the missing marker on either side matches anything
func (g *GroundTruth) ResistanceMatch(hit feed.CandidateHit) bool {
	if len(hit.Resistance) != len(g.resistance) {
		return false
	}
	m := g.missing[0]
	for i := 0; i < len(g.resistance); i++ {
		want, got := g.resistance[i], hit.Resistance[i]
		if want == m || got == m {
			continue
		}
		if want != got {
			return false
		}
	}
	return true
}

// GenotypeMatch compares the truth markers with the candidate's under the configured rule
func (g *GroundTruth) GenotypeMatch(hit feed.CandidateHit) bool {
	for name, want := range g.genotype {
		got, ok := hit.Genotype[name]
		if !ok || got == g.missing {
			return false
		}
		if want != "" && got != want {
			return false
		}
	}
	if g.rule == ExactRule {
		for name, got := range hit.Genotype {
			if got == g.missing {
				continue
			}
			if _, ok := g.genotype[name]; !ok {
				return false
			}
		}
	}
	return true
}

// Matches classifies a candidate: Full when lineage, resistance and genotype all agree,
// LineageOnly when only the lineage agrees, None otherwise
func (g *GroundTruth) Matches(hit feed.CandidateHit) concordance.Level {
	if !g.LineageMatch(hit) {
		return concordance.None
	}
	if g.ResistanceMatch(hit) && g.GenotypeMatch(hit) {
		return concordance.Full
	}
	return concordance.LineageOnly
}
