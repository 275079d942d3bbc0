package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/esteinig/sketchy/src/misc"
)

// Sample is one feed to evaluate together with its ground truth
type Sample struct {
	Name       string
	Feed       string
	FastQ      string // optional, labels tables with read IDs and bases
	Lineage    string
	Resistance string
	Genotype   string
}

var sheetColumns = []string{"sample", "feed", "lineage", "resistance", "genotype", "fastq"}

// ReadSampleSheet parses a tab-separated sample sheet with a header naming the columns
// sample, feed, lineage, resistance, genotype and fastq. Only sample and feed are
// required; empty truth cells take the value of the defaults.
func ReadSampleSheet(r io.Reader, defaults Sample) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sample sheet is empty")
	}
	cols := make(map[string]int)
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range sheetColumns[:2] {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("sample sheet has no %q column", required)
		}
	}

	samples := []Sample{}
	seen := make(map[string]bool)
	for n, rec := range records[1:] {
		get := func(col, fallback string) string {
			i, ok := cols[col]
			if !ok || i >= len(rec) || strings.TrimSpace(rec[i]) == "" {
				return fallback
			}
			return strings.TrimSpace(rec[i])
		}
		s := Sample{
			Name:       get("sample", ""),
			Feed:       get("feed", ""),
			FastQ:      get("fastq", ""),
			Lineage:    get("lineage", defaults.Lineage),
			Resistance: get("resistance", defaults.Resistance),
			Genotype:   get("genotype", defaults.Genotype),
		}
		if s.Name == "" || s.Feed == "" {
			return nil, fmt.Errorf("sample sheet row %d needs a sample name and a feed", n+2)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("sample %q is listed twice", s.Name)
		}
		seen[s.Name] = true
		samples = append(samples, s)
	}
	return samples, nil
}

// LoadSampleSheet opens and parses a sample sheet
func LoadSampleSheet(path string, defaults Sample) ([]Sample, error) {
	fh, err := misc.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	samples, err := ReadSampleSheet(fh, defaults)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}
