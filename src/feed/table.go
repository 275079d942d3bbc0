package feed

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/esteinig/sketchy/src/misc"
)

// maxLineSize caps a single feed line; genotype-rich tables can carry wide rows
const maxLineSize = 1024 * 1024

// Annotation is the phenotype information held for a reference genome
type Annotation struct {
	Lineage    string
	Resistance string
	Genotype   Genotype
}

// Annotator supplies annotations for feeds that only carry genome identifiers and scores
type Annotator interface {
	Annotate(genomeID string) (Annotation, bool)
}

// TableOptions control how a feed table is parsed
type TableOptions struct {
	Missing   string    // genotype values equal to this are treated as absent
	Annotator Annotator // required when the table has no lineage or resistance columns
}

// column aliases recognised in a feed header
var aliases = map[string]string{
	"read_index":         "read_index",
	"read":               "read_index",
	"rank":               "rank",
	"genome_id":          "genome_id",
	"id":                 "genome_id",
	"uuid":               "genome_id",
	"shared_hashes":      "shared_hashes",
	"shared":             "shared_hashes",
	"lineage":            "lineage",
	"resistance_profile": "resistance",
	"resistance":         "resistance",
}

// header is the resolved column layout of a feed table
type header struct {
	cols     map[string]int
	genotype map[string]int
}

func parseHeader(line string, ln int) (*header, error) {
	h := &header{cols: make(map[string]int), genotype: make(map[string]int)}
	for i, field := range strings.Split(line, "\t") {
		name := strings.ToLower(strings.TrimSpace(field))
		if name == "" {
			return nil, &FeedError{Line: ln, Msg: fmt.Sprintf("column %d has no name", i+1)}
		}
		key, known := aliases[name]
		if !known {
			h.genotype[name] = i
			continue
		}
		if _, dup := h.cols[key]; dup {
			return nil, &FeedError{Line: ln, Msg: fmt.Sprintf("duplicate column %q", name)}
		}
		h.cols[key] = i
	}
	for _, required := range []string{"read_index", "rank", "genome_id", "shared_hashes"} {
		if _, ok := h.cols[required]; !ok {
			return nil, &FeedError{Line: ln, Msg: fmt.Sprintf("missing required column %q", required)}
		}
	}
	return h, nil
}

// annotated reports whether the table carries its own annotation columns
func (h *header) annotated() bool {
	_, lin := h.cols["lineage"]
	_, res := h.cols["resistance"]
	return lin && res
}

// ReadTable parses a tab-separated rank feed with a header line.
func ReadTable(r io.Reader, opts TableOptions) ([]Row, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var h *header
	rows := []Row{}
	ln := 0
	for scanner.Scan() {
		ln++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if h == nil {
			// a commented line holding the required columns is the header, other comments are skipped
			var err error
			if line[0] == '#' {
				if h, err = parseHeader(strings.TrimLeft(line, "#"), ln); err != nil {
					h = nil
					continue
				}
			} else if h, err = parseHeader(line, ln); err != nil {
				return nil, err
			}
			if !h.annotated() && opts.Annotator == nil {
				return nil, &FeedError{Line: ln, Msg: "feed has no lineage/resistance columns and no feature index was supplied"}
			}
			continue
		}
		if line[0] == '#' {
			continue
		}
		row, err := h.parseRow(strings.Split(line, "\t"), ln, opts)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if h == nil {
		return nil, &FeedError{Msg: "feed has no header"}
	}
	return rows, nil
}

func (h *header) parseRow(fields []string, ln int, opts TableOptions) (Row, error) {
	row := Row{Line: ln}
	get := func(key string) (string, bool) {
		i, ok := h.cols[key]
		if !ok || i >= len(fields) {
			return "", false
		}
		return strings.TrimSpace(fields[i]), true
	}
	bad := func(format string, args ...interface{}) error {
		return &FeedError{ReadIndex: row.ReadIndex, Line: ln, Msg: fmt.Sprintf(format, args...)}
	}

	val, ok := get("read_index")
	readIndex, err := strconv.Atoi(val)
	if !ok || err != nil {
		return row, bad("bad read index %q", val)
	}
	row.ReadIndex = readIndex
	if val, ok = get("rank"); ok {
		row.Rank, err = strconv.Atoi(val)
	}
	if !ok || err != nil {
		return row, bad("bad rank %q", val)
	}
	row.Hit.GenomeID, _ = get("genome_id")
	if val, ok = get("shared_hashes"); ok {
		row.Hit.SharedHashes, err = strconv.ParseUint(val, 10, 64)
	}
	if !ok || err != nil {
		return row, bad("bad shared hash count %q", val)
	}

	if h.annotated() {
		row.Hit.Lineage, _ = get("lineage")
		row.Hit.Resistance, _ = get("resistance")
		row.Hit.Genotype = make(Genotype, len(h.genotype))
		for marker, i := range h.genotype {
			if i >= len(fields) {
				continue
			}
			value := strings.TrimSpace(fields[i])
			if value == "" || value == opts.Missing {
				continue
			}
			row.Hit.Genotype[marker] = value
		}
		return row, nil
	}

	ann, found := opts.Annotator.Annotate(row.Hit.GenomeID)
	if !found {
		return row, &FeedError{ReadIndex: row.ReadIndex, Line: ln, Msg: fmt.Sprintf("genome %q is not in the feature index", row.Hit.GenomeID)}
	}
	row.Hit.Lineage = ann.Lineage
	row.Hit.Resistance = ann.Resistance
	row.Hit.Genotype = make(Genotype, len(ann.Genotype))
	for marker, value := range ann.Genotype {
		row.Hit.Genotype[marker] = value
	}
	return row, nil
}

// Load opens a plain, gzip or BGZF compressed feed table ("-" for STDIN) and parses it
func Load(path string, opts TableOptions) ([]Row, error) {
	fh, err := misc.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	rows, err := ReadTable(fh, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
