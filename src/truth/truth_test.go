package truth

import (
	"errors"
	"testing"

	"github.com/esteinig/sketchy/src/concordance"
	"github.com/esteinig/sketchy/src/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(lineage, resistance string, genotype feed.Genotype) feed.CandidateHit {
	return feed.CandidateHit{GenomeID: "ERR001", SharedHashes: 10, Lineage: lineage, Resistance: resistance, Genotype: genotype}
}

func TestMatchesScenario(t *testing.T) {
	gt, err := New("9", "SRSSSSSSRSSS", "")
	require.NoError(t, err)
	assert.Equal(t, concordance.Full, gt.Matches(candidate("9", "SRSSSSSSRSSS", nil)))
	assert.Equal(t, concordance.None, gt.Matches(candidate("3", "SRSSSSSSRSSS", nil)))
	assert.Equal(t, concordance.LineageOnly, gt.Matches(candidate("9", "SSSSSSSSRSSS", nil)))
}

func TestMatchesProperties(t *testing.T) {
	gt, err := New("9", "SR-S", "meca=R,pvl")
	require.NoError(t, err)
	candidates := []feed.CandidateHit{
		candidate("9", "SRRS", feed.Genotype{"meca": "R", "pvl": "+"}),
		candidate("9", "SRSS", feed.Genotype{"meca": "S", "pvl": "+"}),
		candidate("9", "RRSS", feed.Genotype{"meca": "R", "pvl": "+"}),
		candidate("9", "SRSS", feed.Genotype{"meca": "R"}),
		candidate("4", "SRSS", feed.Genotype{"meca": "R", "pvl": "+"}),
		candidate("9", "SR", feed.Genotype{"meca": "R", "pvl": "+"}),
	}
	for _, c := range candidates {
		level := gt.Matches(c)
		lin, res, geno := gt.LineageMatch(c), gt.ResistanceMatch(c), gt.GenotypeMatch(c)
		switch level {
		case concordance.Full:
			assert.True(t, lin && res && geno)
		case concordance.LineageOnly:
			assert.True(t, lin)
			assert.False(t, res && geno)
		case concordance.None:
			assert.False(t, lin)
		}
	}
	assert.Equal(t, concordance.Full, gt.Matches(candidates[0]))
	assert.Equal(t, concordance.LineageOnly, gt.Matches(candidates[1]))
	assert.Equal(t, concordance.LineageOnly, gt.Matches(candidates[2]))
	assert.Equal(t, concordance.LineageOnly, gt.Matches(candidates[3]))
	assert.Equal(t, concordance.None, gt.Matches(candidates[4]))
	assert.Equal(t, concordance.LineageOnly, gt.Matches(candidates[5]))
}

func TestMissingWildcard(t *testing.T) {
	gt, err := New("9", "S-R", "")
	require.NoError(t, err)
	assert.True(t, gt.ResistanceMatch(candidate("9", "SRR", nil)))
	assert.True(t, gt.ResistanceMatch(candidate("9", "SSR", nil)))
	assert.True(t, gt.ResistanceMatch(candidate("9", "--R", nil)))
	assert.False(t, gt.ResistanceMatch(candidate("9", "RSR", nil)))

	custom, err := New("9", "S?R", "", WithMissing("?"))
	require.NoError(t, err)
	assert.True(t, custom.ResistanceMatch(candidate("9", "SUR", nil)))
	assert.True(t, custom.ResistanceMatch(candidate("9", "?S?", nil)))
	assert.False(t, custom.ResistanceMatch(candidate("9", "-SR", nil)))
}

func TestGenotypeRules(t *testing.T) {
	extra := candidate("9", "S", feed.Genotype{"meca": "R", "spa": "t008"})
	subset, err := New("9", "S", "meca:R")
	require.NoError(t, err)
	assert.True(t, subset.GenotypeMatch(extra))

	exact, err := New("9", "S", "meca:R", WithGenotypeRule(ExactRule))
	require.NoError(t, err)
	assert.False(t, exact.GenotypeMatch(extra))
	assert.True(t, exact.GenotypeMatch(candidate("9", "S", feed.Genotype{"meca": "R"})))

	empty, err := New("9", "S", "")
	require.NoError(t, err)
	assert.True(t, empty.GenotypeMatch(extra))
	assert.True(t, empty.GenotypeMatch(candidate("9", "S", nil)))

	rule, err := ParseGenotypeRule("EXACT")
	require.NoError(t, err)
	assert.Equal(t, ExactRule, rule)
	_, err = ParseGenotypeRule("superset")
	assert.Error(t, err)
}

func TestParseGenotype(t *testing.T) {
	markers, err := ParseGenotype("mecA=R; pvl, spa:t008 scc=-", "-")
	require.NoError(t, err)
	assert.Equal(t, feed.Genotype{"meca": "R", "pvl": "", "spa": "t008"}, markers)

	for _, bad := range []string{"=R", "meca=", "meca=R=S", "pvl,pvl", "meca:R:S"} {
		_, err := ParseGenotype(bad, "-")
		assert.True(t, errors.Is(err, ErrInvalidGroundTruth), bad)
	}
}

func TestInvalidGroundTruth(t *testing.T) {
	cases := []struct {
		lineage, resistance, genotype string
		opts                          []Option
	}{
		{"", "SR", "", nil},
		{"9", "", "", nil},
		{"9", "SX", "", nil},
		{"9", "SR", "meca=", nil},
		{"9", "SR", "", []Option{WithMissing("NA")}},
	}
	for _, c := range cases {
		_, err := New(c.lineage, c.resistance, c.genotype, c.opts...)
		assert.True(t, errors.Is(err, ErrInvalidGroundTruth), "%+v", c)
	}
}

func TestCheckProfileLength(t *testing.T) {
	gt, err := New("9", "SRSSSSSSRSSS", "")
	require.NoError(t, err)
	assert.NoError(t, gt.CheckProfileLength(12))
	err = gt.CheckProfileLength(13)
	assert.True(t, errors.Is(err, ErrInvalidGroundTruth))
}

func TestAccessors(t *testing.T) {
	gt, err := New("9", "SR", "pvl,meca=R")
	require.NoError(t, err)
	assert.Equal(t, "9", gt.Lineage())
	assert.Equal(t, "SR", gt.Resistance())
	assert.Equal(t, "-", gt.Missing())
	assert.Equal(t, SubsetRule, gt.Rule())
	assert.Equal(t, "meca=R,pvl", gt.GenotypeString())

	markers := gt.Genotype()
	markers["spa"] = "t008"
	assert.NotContains(t, gt.Genotype(), "spa")
}
