package evaluation

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/esteinig/sketchy/src/concordance"
	"github.com/esteinig/sketchy/src/feed"
	"github.com/esteinig/sketchy/src/reads"
	"github.com/esteinig/sketchy/src/truth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profile = "SRSSSSSSRSSS"

func hitRow(read, rank int, lineage, resistance string) feed.Row {
	return feed.Row{
		ReadIndex: read,
		Rank:      rank,
		Hit: feed.CandidateHit{
			GenomeID:     lineage + "-" + resistance,
			SharedHashes: uint64(1000 - rank),
			Lineage:      lineage,
			Resistance:   resistance,
		},
	}
}

// scenarioRows: read 1 top is Full, read 2 top is lineage 3, reads 3..10 top is Full
func scenarioRows() []feed.Row {
	rows := []feed.Row{
		hitRow(1, 1, "9", profile),
		hitRow(1, 2, "3", profile),
		hitRow(2, 1, "3", profile),
		hitRow(2, 2, "9", "SSSSSSSSSSSS"),
		hitRow(2, 3, "9", profile),
	}
	for read := 3; read <= 10; read++ {
		rows = append(rows, hitRow(read, 1, "9", profile), hitRow(read, 2, "3", profile))
	}
	return rows
}

func newEvaluator(t *testing.T, p Params) *Evaluator {
	gt, err := truth.New("9", profile, "")
	require.NoError(t, err)
	e, err := New(p, gt)
	require.NoError(t, err)
	return e
}

func TestEvaluateScenario(t *testing.T) {
	e := newEvaluator(t, Params{Limit: 1000, ShowRanks: 5, Top: 50})
	res, err := e.Evaluate("sample-1", scenarioRows())
	require.NoError(t, err)

	level, ok := res.Timeline.Cell(1, 1)
	require.True(t, ok)
	assert.Equal(t, concordance.Full, level)
	level, _ = res.Timeline.Cell(2, 1)
	assert.Equal(t, concordance.None, level)
	level, _ = res.Timeline.Cell(2, 2)
	assert.Equal(t, concordance.LineageOnly, level)
	level, ok = res.Timeline.Cell(2, 5)
	require.True(t, ok)
	assert.Equal(t, concordance.None, level)

	assert.Equal(t, 3, res.Race[1].Rank)
	assert.True(t, res.Race[1].Present)
	assert.Equal(t, 3, res.Curve.Boundary.ReadIndex)
	assert.True(t, res.Curve.Boundary.Detected)
	assert.Equal(t, "sample-1", res.Sample)
	assert.Equal(t, "9", res.Truth.Lineage)
	assert.Equal(t, "subset", res.Truth.Rule)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 10, res.RaceSummary.Present)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	e := newEvaluator(t, DefaultParams())
	first, err := e.Evaluate("s", scenarioRows())
	require.NoError(t, err)
	second, err := e.Evaluate("s", scenarioRows())
	require.NoError(t, err)
	assert.Equal(t, first.Timeline, second.Timeline)
	assert.Equal(t, first.Race, second.Race)
	assert.Equal(t, first.Curve, second.Curve)
}

func TestEvaluateEmptyFeed(t *testing.T) {
	e := newEvaluator(t, Params{Limit: 0, ShowRanks: 50, Top: 50})
	res, err := e.Evaluate("empty", scenarioRows())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Timeline.Rows())
	assert.Empty(t, res.Race)
	assert.False(t, res.Curve.Boundary.Detected)
}

func TestEvaluateFailuresReturnNothing(t *testing.T) {
	e := newEvaluator(t, DefaultParams())

	res, err := e.Evaluate("gap", []feed.Row{hitRow(1, 1, "9", profile), hitRow(3, 1, "9", profile)})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, feed.ErrMalformedFeed))

	res, err = e.Evaluate("short", []feed.Row{hitRow(1, 1, "9", "SR")})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, truth.ErrInvalidGroundTruth))

	small := newEvaluator(t, Params{Limit: 1, ShowRanks: 5, Top: 1})
	res, err = small.Run("direct", []feed.ReadEvidence{{ReadIndex: 1}, {ReadIndex: 2}})
	assert.Nil(t, res)
	assert.Error(t, err)
}

func TestNewValidates(t *testing.T) {
	gt, err := truth.New("9", profile, "")
	require.NoError(t, err)
	_, err = New(Params{Limit: 10, ShowRanks: 0, Top: 5}, gt)
	assert.Error(t, err)
	_, err = New(DefaultParams(), nil)
	assert.Error(t, err)
	assert.Equal(t, 50000, DefaultParams().CellBound())
}

func TestDumpLoad(t *testing.T) {
	e := newEvaluator(t, Params{Limit: 1000, ShowRanks: 3, Top: 50})
	res, err := e.Evaluate("sample-1", scenarioRows())
	require.NoError(t, err)
	res.AttachReads(&reads.Manifest{Reads: []reads.Read{{Index: 1, ID: "read-a", Length: 10, CumulativeBases: 10}}})

	path := filepath.Join(t.TempDir(), "result.msgpack")
	require.NoError(t, res.Dump(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, res.RunID, loaded.RunID)
	assert.Equal(t, res.Params, loaded.Params)
	assert.Equal(t, res.Truth, loaded.Truth)
	assert.Equal(t, res.Timeline, loaded.Timeline)
	assert.Equal(t, res.Race, loaded.Race)
	assert.Equal(t, res.Curve, loaded.Curve)
	assert.Equal(t, res.Reads, loaded.Reads)

	_, err = LoadFromBytes(nil)
	assert.Error(t, err)
}
