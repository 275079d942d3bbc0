// Package feed loads the ranked candidate genome hits reported for each read into typed,
// validated evidence. A feed is validated once here so that scoring never looks up columns.
package feed

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMalformedFeed is the kind of every structural problem found in a rank feed
var ErrMalformedFeed = errors.New("malformed feed")

// FeedError reports a structural problem with the read (or table line) where it was found
type FeedError struct {
	ReadIndex int
	Line      int
	Msg       string
}

func (e *FeedError) Error() string {
	switch {
	case e.ReadIndex > 0 && e.Line > 0:
		return fmt.Sprintf("%v: read %d (line %d): %s", ErrMalformedFeed, e.ReadIndex, e.Line, e.Msg)
	case e.ReadIndex > 0:
		return fmt.Sprintf("%v: read %d: %s", ErrMalformedFeed, e.ReadIndex, e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("%v: line %d: %s", ErrMalformedFeed, e.Line, e.Msg)
	}
	return fmt.Sprintf("%v: %s", ErrMalformedFeed, e.Msg)
}

func (e *FeedError) Unwrap() error { return ErrMalformedFeed }

func malformed(readIndex int, format string, args ...interface{}) error {
	return &FeedError{ReadIndex: readIndex, Msg: fmt.Sprintf(format, args...)}
}

// Genotype maps a marker name to its value. An empty value records presence only.
type Genotype map[string]string

// CandidateHit is a single reference genome reported for a read
type CandidateHit struct {
	GenomeID     string
	SharedHashes uint64
	Lineage      string
	Genotype     Genotype
	Resistance   string // one call per drug
}

// ReadEvidence holds the candidates for one read, in rank order (rank = position + 1)
type ReadEvidence struct {
	ReadIndex int
	Hits      []CandidateHit
}

// Row is a single (read index, rank) entry of a rank feed
type Row struct {
	ReadIndex int
	Rank      int
	Line      int // source line, zero when not read from a table
	Hit       CandidateHit
}

// Options bound the evidence built from a feed
type Options struct {
	Limit int // read indices above Limit are discarded
	Top   int // candidates ranked above Top are dropped, zero keeps all
}

// Build groups feed rows into per-read evidence, validating read index and rank contiguity.
func Build(rows []Row, opts Options) ([]ReadEvidence, error) {
	if opts.Limit < 0 {
		return nil, fmt.Errorf("read limit must not be negative: %d", opts.Limit)
	}
	kept := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.ReadIndex < 1 {
			return nil, &FeedError{Line: row.Line, Msg: fmt.Sprintf("read index must be positive, got %d", row.ReadIndex)}
		}
		if row.ReadIndex > opts.Limit {
			continue
		}
		kept = append(kept, row)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].ReadIndex != kept[j].ReadIndex {
			return kept[i].ReadIndex < kept[j].ReadIndex
		}
		return kept[i].Rank < kept[j].Rank
	})

	evidence := []ReadEvidence{}
	profileLength := -1
	for start := 0; start < len(kept); {
		readIndex := kept[start].ReadIndex
		if expected := len(evidence) + 1; readIndex != expected {
			return nil, malformed(expected, "read index missing from feed (next read found is %d)", readIndex)
		}
		end := start
		for end < len(kept) && kept[end].ReadIndex == readIndex {
			end++
		}
		hits := make([]CandidateHit, 0, end-start)
		for i, row := range kept[start:end] {
			if row.Rank != i+1 {
				return nil, malformed(readIndex, "ranks are not a contiguous 1..k sequence (expected rank %d, found %d)", i+1, row.Rank)
			}
			if err := checkHit(readIndex, row); err != nil {
				return nil, err
			}
			if profileLength == -1 {
				profileLength = len(row.Hit.Resistance)
			} else if len(row.Hit.Resistance) != profileLength {
				return nil, malformed(readIndex, "resistance profile of %v has length %d, feed uses %d", row.Hit.GenomeID, len(row.Hit.Resistance), profileLength)
			}
			if opts.Top > 0 && row.Rank > opts.Top {
				continue
			}
			hits = append(hits, row.Hit)
		}
		evidence = append(evidence, ReadEvidence{ReadIndex: readIndex, Hits: hits})
		start = end
	}
	return evidence, nil
}

// checkHit makes sure the attributes needed for scoring are present
func checkHit(readIndex int, row Row) error {
	switch {
	case row.Hit.GenomeID == "":
		return malformed(readIndex, "rank %d has no genome identifier", row.Rank)
	case row.Hit.Lineage == "":
		return malformed(readIndex, "rank %d (%v) has no lineage", row.Rank, row.Hit.GenomeID)
	case row.Hit.Resistance == "":
		return malformed(readIndex, "rank %d (%v) has no resistance profile", row.Rank, row.Hit.GenomeID)
	}
	return nil
}

// ProfileLength returns the resistance profile length shared by the feed, false if it holds no candidates
func ProfileLength(evidence []ReadEvidence) (int, bool) {
	for _, ev := range evidence {
		if len(ev.Hits) != 0 {
			return len(ev.Hits[0].Resistance), true
		}
	}
	return 0, false
}
