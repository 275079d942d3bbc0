package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/esteinig/sketchy/src/concordance"
	"github.com/esteinig/sketchy/src/evaluation"
	"github.com/esteinig/sketchy/src/reads"
)

// readColumns returns the read id and cumulative bases of a read when a manifest is attached
func readColumns(m *reads.Manifest, readIndex int) []string {
	if m == nil {
		return nil
	}
	r, ok := m.Lookup(readIndex)
	if !ok {
		return []string{"", ""}
	}
	return []string{r.ID, strconv.Itoa(r.CumulativeBases)}
}

func readHeader(m *reads.Manifest, cols ...string) []string {
	header := []string{"read_index"}
	if m != nil {
		header = append(header, "read_id", "bases")
	}
	return append(header, cols...)
}

// numericColumns are stored as numbers in the workbook; every other column stays text
var numericColumns = map[string]bool{
	"read_index":       true,
	"bases":            true,
	"rank":             true,
	"full_fraction":    true,
	"lineage_fraction": true,
}

// numericKeys are the summary values stored as numbers in the workbook
var numericKeys = map[string]bool{
	"limit":              true,
	"show_ranks":         true,
	"top":                true,
	"reads":              true,
	"detection_bases":    true,
	"accuracy":           true,
	"cells_full":         true,
	"cells_lineage":      true,
	"cells_none":         true,
	"race_present":       true,
	"race_absent":        true,
	"race_first_present": true,
	"race_best_rank":     true,
	"race_mean_rank":     true,
	"race_median_rank":   true,
}

// table is a header and its records, shared by the TSV and workbook writers
type table struct {
	name    string
	header  []string
	records [][]string
	keyed   bool // key/value records, numeric by key rather than by column
}

// numeric reports whether cell (row, col) holds a number
func (t table) numeric(row, col int) bool {
	if t.keyed {
		return col == 1 && numericKeys[t.records[row][0]]
	}
	return numericColumns[t.header[col]]
}

func timelineTable(res *evaluation.Result) table {
	t := table{name: "timeline", header: readHeader(res.Reads, "rank", "level")}
	m := res.Timeline
	for row := 0; row < m.Rows(); row++ {
		readIndex := m.ReadIndices[row]
		for rank := 1; rank <= m.Ranks; rank++ {
			rec := append([]string{strconv.Itoa(readIndex)}, readColumns(res.Reads, readIndex)...)
			rec = append(rec, strconv.Itoa(rank), m.At(row, rank).String())
			t.records = append(t.records, rec)
		}
	}
	return t
}

// timelineWideTable holds one row per read and one level column per rank
func timelineWideTable(res *evaluation.Result) table {
	m := res.Timeline
	ranks := make([]string, m.Ranks)
	for rank := 1; rank <= m.Ranks; rank++ {
		ranks[rank-1] = "rank_" + strconv.Itoa(rank)
	}
	t := table{name: "timeline", header: readHeader(res.Reads, ranks...)}
	for row := 0; row < m.Rows(); row++ {
		readIndex := m.ReadIndices[row]
		rec := append([]string{strconv.Itoa(readIndex)}, readColumns(res.Reads, readIndex)...)
		for rank := 1; rank <= m.Ranks; rank++ {
			rec = append(rec, m.At(row, rank).String())
		}
		t.records = append(t.records, rec)
	}
	return t
}

func raceTable(res *evaluation.Result) table {
	t := table{name: "race", header: readHeader(res.Reads, "present", "rank")}
	for _, s := range res.Race {
		rank := ""
		if s.Present {
			rank = strconv.Itoa(s.Rank)
		}
		rec := append([]string{strconv.Itoa(s.ReadIndex)}, readColumns(res.Reads, s.ReadIndex)...)
		t.records = append(t.records, append(rec, strconv.FormatBool(s.Present), rank))
	}
	return t
}

func concordanceTable(res *evaluation.Result) table {
	t := table{name: "concordance", header: readHeader(res.Reads, "level", "full_fraction", "lineage_fraction", "stable")}
	b := res.Curve.Boundary
	for _, p := range res.Curve.Points {
		stable := b.Detected && p.ReadIndex >= b.ReadIndex
		rec := append([]string{strconv.Itoa(p.ReadIndex)}, readColumns(res.Reads, p.ReadIndex)...)
		t.records = append(t.records, append(rec,
			p.Level.String(),
			strconv.FormatFloat(p.FullFraction, 'f', 4, 64),
			strconv.FormatFloat(p.LineageFraction, 'f', 4, 64),
			strconv.FormatBool(stable),
		))
	}
	return t
}

func summaryTable(res *evaluation.Result) table {
	rs := res.RaceSummary
	counts := res.Timeline.Counts()
	t := table{name: "summary", header: []string{"key", "value"}, keyed: true}
	add := func(key string, value interface{}) {
		t.records = append(t.records, []string{key, fmt.Sprint(value)})
	}
	add("sample", res.Sample)
	add("run_id", res.RunID)
	add("version", res.Version)
	add("lineage", res.Truth.Lineage)
	add("resistance", res.Truth.Resistance)
	add("genotype", res.Truth.Genotype)
	add("missing", res.Truth.Missing)
	add("genotype_rule", res.Truth.Rule)
	add("limit", res.Params.Limit)
	add("show_ranks", res.Params.ShowRanks)
	add("top", res.Params.Top)
	add("reads", len(res.Curve.Points))
	add("detection_boundary", res.Curve.Boundary)
	if res.Curve.Boundary.Detected {
		if r, ok := res.Reads.Lookup(res.Curve.Boundary.ReadIndex); ok {
			add("detection_bases", r.CumulativeBases)
		}
	}
	add("accuracy", strconv.FormatFloat(res.Curve.Accuracy(), 'f', 4, 64))
	add("cells_full", counts[concordance.Full])
	add("cells_lineage", counts[concordance.LineageOnly])
	add("cells_none", counts[concordance.None])
	add("race_present", rs.Present)
	add("race_absent", rs.Absent)
	add("race_first_present", rs.FirstPresent)
	add("race_best_rank", rs.BestRank)
	add("race_mean_rank", strconv.FormatFloat(rs.MeanRank, 'f', 2, 64))
	add("race_median_rank", strconv.FormatFloat(rs.MedianRank, 'f', 2, 64))
	return t
}

// tables returns every table of a result in output order
func tables(res *evaluation.Result) []table {
	return []table{timelineTable(res), raceTable(res), concordanceTable(res), summaryTable(res)}
}

func (t table) writeTSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(t.header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.records); err != nil {
		return err
	}
	return cw.Error()
}
