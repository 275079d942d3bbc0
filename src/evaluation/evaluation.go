// Package evaluation runs the concordance evaluation of one sample: scoring, timeline,
// race and curve are produced together, or not at all.
package evaluation

import (
	"fmt"

	"github.com/esteinig/sketchy/src/concordance"
	"github.com/esteinig/sketchy/src/curve"
	"github.com/esteinig/sketchy/src/feed"
	"github.com/esteinig/sketchy/src/race"
	"github.com/esteinig/sketchy/src/reads"
	"github.com/esteinig/sketchy/src/timeline"
	"github.com/esteinig/sketchy/src/truth"
	"github.com/esteinig/sketchy/src/version"
	"github.com/google/uuid"
)

// Params bound an evaluation run. A run touches at most Limit x ShowRanks timeline cells
// and scores at most Limit x Top candidates.
type Params struct {
	Limit     int `msgpack:"limit"`
	ShowRanks int `msgpack:"show_ranks"`
	Top       int `msgpack:"top"`
}

// DefaultParams returns the default read limit, displayed ranks and retained candidates
func DefaultParams() Params {
	return Params{Limit: 1000, ShowRanks: 50, Top: 50}
}

// Validate checks the bounds
func (p Params) Validate() error {
	if p.Limit < 0 {
		return fmt.Errorf("read limit must be zero or positive, got %d", p.Limit)
	}
	if p.ShowRanks < 1 {
		return fmt.Errorf("show_ranks must be at least 1, got %d", p.ShowRanks)
	}
	if p.Top < 1 {
		return fmt.Errorf("top must be at least 1, got %d", p.Top)
	}
	return nil
}

// CellBound is the largest number of timeline cells a run can produce. Long tables carry
// one line per cell; the xlsx timeline is written wide (Limit rows by ShowRanks columns)
// to stay inside a worksheet's row cap.
func (p Params) CellBound() int {
	return p.Limit * p.ShowRanks
}

// Truth records the ground truth a result was evaluated against
type Truth struct {
	Lineage    string `msgpack:"lineage"`
	Resistance string `msgpack:"resistance"`
	Genotype   string `msgpack:"genotype"`
	Missing    string `msgpack:"missing"`
	Rule       string `msgpack:"rule"`
}

// Result holds the three evaluation outputs of a sample
type Result struct {
	Version     string           `msgpack:"version"`
	RunID       string           `msgpack:"run_id"`
	Sample      string           `msgpack:"sample"`
	Params      Params           `msgpack:"params"`
	Truth       Truth            `msgpack:"truth"`
	Timeline    *timeline.Matrix `msgpack:"timeline"`
	Race        []race.Sample    `msgpack:"race"`
	RaceSummary race.Summary     `msgpack:"race_summary"`
	Curve       *curve.Curve     `msgpack:"curve"`
	Reads       *reads.Manifest  `msgpack:"reads"` // optional
}

// Evaluator evaluates samples against one ground truth; it holds no mutable state and
// can be shared between goroutines
type Evaluator struct {
	params Params
	truth  *truth.GroundTruth
}

// New returns an Evaluator for the given bounds and ground truth
func New(p Params, gt *truth.GroundTruth) (*Evaluator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if gt == nil {
		return nil, fmt.Errorf("no ground truth supplied")
	}
	return &Evaluator{params: p, truth: gt}, nil
}

// FeedOptions are the bounds applied when building evidence from a feed
func (e *Evaluator) FeedOptions() feed.Options {
	return feed.Options{Limit: e.params.Limit, Top: e.params.Top}
}

// Evaluate builds evidence from feed rows and runs the evaluation
func (e *Evaluator) Evaluate(sample string, rows []feed.Row) (*Result, error) {
	evidence, err := feed.Build(rows, e.FeedOptions())
	if err != nil {
		return nil, err
	}
	return e.Run(sample, evidence)
}

// Run evaluates evidence built with FeedOptions. Either all outputs are returned or an error.
func (e *Evaluator) Run(sample string, evidence []feed.ReadEvidence) (*Result, error) {
	if len(evidence) > e.params.Limit {
		return nil, fmt.Errorf("%d reads exceed the read limit of %d", len(evidence), e.params.Limit)
	}
	for _, ev := range evidence {
		if len(ev.Hits) > e.params.Top {
			return nil, fmt.Errorf("read %d holds %d candidates, more than top (%d)", ev.ReadIndex, len(ev.Hits), e.params.Top)
		}
	}
	if n, ok := feed.ProfileLength(evidence); ok {
		if err := e.truth.CheckProfileLength(n); err != nil {
			return nil, err
		}
	}

	scores := concordance.NewScorer(e.truth, e.params.ShowRanks).Score(evidence)
	samples := race.Track(evidence, e.truth)
	return &Result{
		Version: version.GetVersion(),
		RunID:   uuid.New().String(),
		Sample:  sample,
		Params:  e.params,
		Truth: Truth{
			Lineage:    e.truth.Lineage(),
			Resistance: e.truth.Resistance(),
			Genotype:   e.truth.GenotypeString(),
			Missing:    e.truth.Missing(),
			Rule:       e.truth.Rule().String(),
		},
		Timeline:    timeline.Build(scores, e.params.ShowRanks),
		Race:        samples,
		RaceSummary: race.Summarize(samples),
		Curve:       curve.Build(evidence, e.truth),
	}, nil
}

// AttachReads labels the result with a read manifest
func (r *Result) AttachReads(m *reads.Manifest) {
	r.Reads = m
}
