// Package concordance classifies candidate genomes against a sample's ground truth and
// scores the candidates of each read.
package concordance

import (
	"fmt"

	"github.com/esteinig/sketchy/src/feed"
)

// Level is the agreement of a candidate with the ground truth; Full > LineageOnly > None
type Level int

const (
	None Level = iota
	LineageOnly
	Full
)

// String returns the label used in tables
func (l Level) String() string {
	switch l {
	case None:
		return "none"
	case LineageOnly:
		return "lineage"
	case Full:
		return "full"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel is the inverse of String
func ParseLevel(s string) (Level, error) {
	switch s {
	case "none":
		return None, nil
	case "lineage":
		return LineageOnly, nil
	case "full":
		return Full, nil
	}
	return None, fmt.Errorf("unknown concordance level %q", s)
}

// Matcher classifies a single candidate; it must be a pure function of the candidate
type Matcher interface {
	Matches(hit feed.CandidateHit) Level
}

// ReadScore holds the levels of a read's candidates, Levels[i] is rank i+1
type ReadScore struct {
	ReadIndex int
	Levels    []Level
}

// Scorer applies a Matcher to the leading ranks of every read
type Scorer struct {
	matcher   Matcher
	showRanks int
}

// NewScorer returns a scorer that classifies ranks 1..showRanks
func NewScorer(m Matcher, showRanks int) *Scorer {
	if showRanks < 0 {
		showRanks = 0
	}
	return &Scorer{matcher: m, showRanks: showRanks}
}

// ScoreRead classifies the candidates of one read, ranks beyond the bound are not scored
func (s *Scorer) ScoreRead(ev feed.ReadEvidence) ReadScore {
	n := len(ev.Hits)
	if n > s.showRanks {
		n = s.showRanks
	}
	score := ReadScore{ReadIndex: ev.ReadIndex, Levels: make([]Level, n)}
	for i, hit := range ev.Hits[:n] {
		score.Levels[i] = s.matcher.Matches(hit)
	}
	return score
}

// Score classifies every read in feed order
func (s *Scorer) Score(evidence []feed.ReadEvidence) []ReadScore {
	scores := make([]ReadScore, len(evidence))
	for i, ev := range evidence {
		scores[i] = s.ScoreRead(ev)
	}
	return scores
}
