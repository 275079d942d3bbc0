package curve

import (
	"testing"

	"github.com/esteinig/sketchy/src/concordance"
	"github.com/esteinig/sketchy/src/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineageMatcher struct{}

func (lineageMatcher) Matches(hit feed.CandidateHit) concordance.Level {
	switch hit.Lineage {
	case "9":
		return concordance.Full
	case "9a":
		return concordance.LineageOnly
	}
	return concordance.None
}

// reads builds one read per top lineage, read indices starting at 1
func reads(tops ...string) []feed.ReadEvidence {
	evidence := make([]feed.ReadEvidence, len(tops))
	for i, top := range tops {
		evidence[i] = feed.ReadEvidence{ReadIndex: i + 1}
		if top != "" {
			evidence[i].Hits = []feed.CandidateHit{{GenomeID: "g", Lineage: top, Resistance: "S"}, {GenomeID: "h", Lineage: "9", Resistance: "S"}}
		}
	}
	return evidence
}

func TestDetectionBoundaryScenario(t *testing.T) {
	c := Build(reads("9", "3", "9", "9", "9", "9", "9", "9", "9", "9"), lineageMatcher{})
	require.Len(t, c.Points, 10)
	assert.Equal(t, concordance.Full, c.Points[0].Level)
	assert.Equal(t, concordance.None, c.Points[1].Level)
	assert.Equal(t, Boundary{ReadIndex: 3, Detected: true}, c.Boundary)
	assert.Equal(t, "3", c.Boundary.String())

	// every read at or after the boundary is Full
	for _, p := range c.Points {
		if p.ReadIndex >= c.Boundary.ReadIndex {
			assert.Equal(t, concordance.Full, p.Level)
		}
	}
}

func TestDetectionBoundaryEdges(t *testing.T) {
	empty := Build(nil, lineageMatcher{})
	assert.False(t, empty.Boundary.Detected)
	assert.Equal(t, "undetected", empty.Boundary.String())
	assert.Equal(t, 0.0, empty.Accuracy())

	all := Build(reads("9", "9", "9"), lineageMatcher{})
	assert.Equal(t, Boundary{ReadIndex: 1, Detected: true}, all.Boundary)
	assert.Equal(t, 1.0, all.Accuracy())

	lost := Build(reads("9", "9", "9a"), lineageMatcher{})
	assert.False(t, lost.Boundary.Detected)

	// a read without candidates counts as None at the top
	gap := Build(reads("9", "", "9"), lineageMatcher{})
	assert.Equal(t, concordance.None, gap.Points[1].Level)
	assert.Equal(t, 3, gap.Boundary.ReadIndex)
}

func TestFractions(t *testing.T) {
	c := Build(reads("9", "9a", "3", "9"), lineageMatcher{})
	assert.Equal(t, []concordance.Level{concordance.Full, concordance.LineageOnly, concordance.None, concordance.Full}, c.Levels())
	assert.InDelta(t, 1.0, c.Points[0].FullFraction, 1e-9)
	assert.InDelta(t, 0.5, c.Points[1].FullFraction, 1e-9)
	assert.InDelta(t, 1.0, c.Points[1].LineageFraction, 1e-9)
	assert.InDelta(t, 2.0/3.0, c.Points[2].LineageFraction, 1e-9)
	assert.InDelta(t, 0.5, c.Points[3].FullFraction, 1e-9)
	assert.InDelta(t, 0.5, c.Accuracy(), 1e-9)
}

func TestBuildIsDeterministic(t *testing.T) {
	evidence := reads("3", "9", "9a", "9", "9")
	assert.Equal(t, Build(evidence, lineageMatcher{}), Build(evidence, lineageMatcher{}))
}
