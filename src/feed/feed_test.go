package feed

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(read, rank int, lineage string) Row {
	return Row{
		ReadIndex: read,
		Rank:      rank,
		Hit: CandidateHit{
			GenomeID:     lineage + "-genome",
			SharedHashes: uint64(100 - rank),
			Lineage:      lineage,
			Resistance:   "SRSSSSSSRSSS",
		},
	}
}

func requireMalformed(t *testing.T, err error, readIndex int) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedFeed), "expected malformed feed, got %v", err)
	var fe *FeedError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, readIndex, fe.ReadIndex)
}

func TestBuildGroupsAndOrders(t *testing.T) {
	rows := []Row{row(2, 2, "3"), row(1, 1, "9"), row(2, 1, "9"), row(1, 2, "3")}
	evidence, err := Build(rows, Options{Limit: 1000, Top: 50})
	require.NoError(t, err)
	require.Len(t, evidence, 2)
	assert.Equal(t, 1, evidence[0].ReadIndex)
	assert.Equal(t, "9", evidence[0].Hits[0].Lineage)
	assert.Equal(t, "3", evidence[0].Hits[1].Lineage)
	assert.Equal(t, 2, evidence[1].ReadIndex)
	assert.Len(t, evidence[1].Hits, 2)
}

func TestBuildLimit(t *testing.T) {
	rows := []Row{row(1, 1, "9"), row(2, 1, "9"), row(3, 1, "9"), row(4, 1, "9")}
	evidence, err := Build(rows, Options{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, evidence, 2)

	// fewer reads than the limit uses all of them
	evidence, err = Build(rows, Options{Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, evidence, 4)

	evidence, err = Build(rows, Options{Limit: 0})
	require.NoError(t, err)
	assert.Empty(t, evidence)

	// a gap beyond the limit is never seen
	evidence, err = Build([]Row{row(1, 1, "9"), row(5, 1, "9")}, Options{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, evidence, 1)
}

func TestBuildTop(t *testing.T) {
	rows := []Row{row(1, 1, "9"), row(1, 2, "3"), row(1, 3, "4")}
	evidence, err := Build(rows, Options{Limit: 10, Top: 2})
	require.NoError(t, err)
	require.Len(t, evidence[0].Hits, 2)
	assert.Equal(t, "3", evidence[0].Hits[1].Lineage)
}

func TestBuildMissingReadIndex(t *testing.T) {
	rows := []Row{row(1, 1, "9"), row(3, 1, "9")}
	_, err := Build(rows, Options{Limit: 10})
	requireMalformed(t, err, 2)
}

func TestBuildNonContiguousRanks(t *testing.T) {
	_, err := Build([]Row{row(1, 1, "9"), row(1, 3, "3")}, Options{Limit: 10})
	requireMalformed(t, err, 1)

	_, err = Build([]Row{row(1, 2, "9")}, Options{Limit: 10})
	requireMalformed(t, err, 1)

	_, err = Build([]Row{row(1, 1, "9"), row(2, 1, "9"), row(2, 1, "3")}, Options{Limit: 10})
	requireMalformed(t, err, 2)
}

func TestBuildMissingAttributes(t *testing.T) {
	noLineage := row(2, 1, "")
	_, err := Build([]Row{row(1, 1, "9"), noLineage}, Options{Limit: 10})
	requireMalformed(t, err, 2)

	noProfile := row(1, 1, "9")
	noProfile.Hit.Resistance = ""
	_, err = Build([]Row{noProfile}, Options{Limit: 10})
	requireMalformed(t, err, 1)

	noID := row(1, 1, "9")
	noID.Hit.GenomeID = ""
	_, err = Build([]Row{noID}, Options{Limit: 10})
	requireMalformed(t, err, 1)
}

func TestBuildProfileLength(t *testing.T) {
	short := row(2, 1, "9")
	short.Hit.Resistance = "SR"
	_, err := Build([]Row{row(1, 1, "9"), short}, Options{Limit: 10})
	requireMalformed(t, err, 2)

	evidence, err := Build([]Row{row(1, 1, "9")}, Options{Limit: 10})
	require.NoError(t, err)
	n, ok := ProfileLength(evidence)
	assert.True(t, ok)
	assert.Equal(t, 12, n)
	_, ok = ProfileLength(nil)
	assert.False(t, ok)
}

func TestBuildBadReadIndex(t *testing.T) {
	_, err := Build([]Row{row(0, 1, "9")}, Options{Limit: 10})
	assert.True(t, errors.Is(err, ErrMalformedFeed))
}

const annotatedTable = `read_index	rank	genome_id	shared_hashes	lineage	resistance_profile	meca	pvl
1	1	ERR001	420	9	SRSSSSSSRSSS	R	-
1	2	ERR002	300	3	SSSSSSSSSSSS	-	present
2	1	ERR001	610	9	SRSSSSSSRSSS	R	-
`

func TestReadTable(t *testing.T) {
	rows, err := ReadTable(strings.NewReader(annotatedTable), TableOptions{Missing: "-"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, uint64(420), rows[0].Hit.SharedHashes)
	assert.Equal(t, Genotype{"meca": "R"}, rows[0].Hit.Genotype)
	assert.Equal(t, Genotype{"pvl": "present"}, rows[1].Hit.Genotype)
	assert.Equal(t, "SSSSSSSSSSSS", rows[1].Hit.Resistance)

	evidence, err := Build(rows, Options{Limit: 1000, Top: 50})
	require.NoError(t, err)
	assert.Len(t, evidence, 2)
}

func TestReadTableErrors(t *testing.T) {
	_, err := ReadTable(strings.NewReader("read_index\trank\tgenome_id\n"), TableOptions{})
	assert.True(t, errors.Is(err, ErrMalformedFeed))

	bad := "read\trank\tid\tshared\tlineage\tresistance\n1\tfirst\tERR001\t10\t9\tSR\n"
	_, err = ReadTable(strings.NewReader(bad), TableOptions{})
	var fe *FeedError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 2, fe.Line)
	assert.Equal(t, 1, fe.ReadIndex)

	// the read index is reported once it has parsed
	bad = "read\trank\tid\tshared\tlineage\tresistance\n1\t1\tERR001\t10\t9\tSR\n2\tx\tERR002\t5\t9\tSR\n"
	_, err = ReadTable(strings.NewReader(bad), TableOptions{})
	requireMalformed(t, err, 2)
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 3, fe.Line)
	assert.Contains(t, err.Error(), "read 2 (line 3)")

	bad = "read\trank\tid\tshared\tlineage\tresistance\n4\t1\tERR001\tmany\t9\tSR\n"
	_, err = ReadTable(strings.NewReader(bad), TableOptions{})
	requireMalformed(t, err, 4)

	bad = "read\trank\tid\tshared\tlineage\tresistance\nfirst\t1\tERR001\t10\t9\tSR\n"
	_, err = ReadTable(strings.NewReader(bad), TableOptions{})
	requireMalformed(t, err, 0)

	_, err = ReadTable(strings.NewReader(""), TableOptions{})
	assert.True(t, errors.Is(err, ErrMalformedFeed))

	// no annotation columns and nothing to annotate with
	_, err = ReadTable(strings.NewReader("read\trank\tid\tshared\n1\t1\tERR001\t10\n"), TableOptions{})
	assert.True(t, errors.Is(err, ErrMalformedFeed))
}

func TestReadTableCommentedHeader(t *testing.T) {
	raw := "# written by sketchy stream\n#read_index\trank\tgenome_id\tshared_hashes\tlineage\tresistance\n1\t1\tERR001\t10\t9\tSR\n# flushed\n2\t1\tERR002\t12\t3\tSS\n"
	rows, err := ReadTable(strings.NewReader(raw), TableOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].ReadIndex)
	assert.Equal(t, "ERR001", rows[0].Hit.GenomeID)
	assert.Equal(t, "3", rows[1].Hit.Lineage)
	assert.Equal(t, 5, rows[1].Line)

	// comments alone never make a header
	_, err = ReadTable(strings.NewReader("# nothing here\n#\n"), TableOptions{})
	assert.True(t, errors.Is(err, ErrMalformedFeed))
}

type mapAnnotator map[string]Annotation

func (m mapAnnotator) Annotate(id string) (Annotation, bool) {
	a, ok := m[id]
	return a, ok
}

func TestReadTableWithAnnotator(t *testing.T) {
	ann := mapAnnotator{
		"ERR001": {Lineage: "9", Resistance: "SR", Genotype: Genotype{"meca": "R"}},
	}
	raw := "read\trank\tid\tshared\n1\t1\tERR001\t10\n"
	rows, err := ReadTable(strings.NewReader(raw), TableOptions{Annotator: ann})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "9", rows[0].Hit.Lineage)
	assert.Equal(t, "SR", rows[0].Hit.Resistance)
	assert.Equal(t, Genotype{"meca": "R"}, rows[0].Hit.Genotype)

	raw = "read\trank\tid\tshared\n1\t1\tERR404\t10\n"
	_, err = ReadTable(strings.NewReader(raw), TableOptions{Annotator: ann})
	requireMalformed(t, err, 1)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.tsv")
	require.NoError(t, os.WriteFile(path, []byte(annotatedTable), 0644))
	rows, err := Load(path, TableOptions{Missing: "-"})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
