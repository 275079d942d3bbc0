package features

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/esteinig/sketchy/src/feed"
	"github.com/esteinig/sketchy/src/misc"
)

// Index maps genome identifiers to their annotations
type Index struct {
	template    Template
	missing     string
	annotations map[string]feed.Annotation
}

// ReadIndex parses a tab-separated feature index. The first column holds the genome
// identifier, headers are matched case-insensitively against the template columns.
func ReadIndex(r io.Reader, t Template, missing string) (*Index, error) {
	t = t.copy()
	t.normalise()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if len(missing) != 1 {
		return nil, fmt.Errorf("missing marker must be a single character, got %q", missing)
	}
	binary := make(map[string]bool, len(t.Binary))
	for _, col := range t.Binary {
		binary[col] = true
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	var cols map[string]int
	idx := &Index{template: t, missing: missing, annotations: make(map[string]feed.Annotation)}
	ln := 0
	for scanner.Scan() {
		ln++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if cols == nil {
			var err error
			if cols, err = indexHeader(fields, t); err != nil {
				return nil, err
			}
			continue
		}
		id := strings.TrimSpace(fields[0])
		if id == "" {
			return nil, fmt.Errorf("line %d: no genome identifier", ln)
		}
		if _, dup := idx.annotations[id]; dup {
			return nil, fmt.Errorf("line %d: duplicate genome identifier %q", ln, id)
		}
		get := func(col string) string {
			i := cols[col]
			if i >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[i])
		}

		profile := make([]byte, len(t.Resistance))
		for i, col := range t.Resistance {
			if binary[col] {
				profile[i] = binaryCall(get(col), missing)
			} else {
				profile[i] = resistanceCall(get(col), missing)
			}
		}
		ann := feed.Annotation{
			Lineage:    get(t.Lineage),
			Resistance: string(profile),
			Genotype:   make(feed.Genotype, len(t.Genotype)),
		}
		for _, col := range t.Genotype {
			if value := get(col); value != "" && value != missing {
				ann.Genotype[col] = value
			}
		}
		idx.annotations[id] = ann
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if cols == nil {
		return nil, fmt.Errorf("feature index has no header")
	}
	return idx, nil
}

func indexHeader(fields []string, t Template) (map[string]int, error) {
	cols := make(map[string]int, len(fields))
	for i, field := range fields {
		cols[strings.ToLower(strings.TrimSpace(field))] = i
	}
	required := append([]string{t.Lineage}, t.Resistance...)
	required = append(required, t.Genotype...)
	for _, col := range required {
		if _, ok := cols[col]; !ok {
			return nil, fmt.Errorf("feature index is missing the %q column required by template %s", col, t.Name)
		}
	}
	return cols, nil
}

// LoadIndex opens a plain or compressed feature index and parses it
func LoadIndex(path string, t Template, missing string) (*Index, error) {
	fh, err := misc.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	idx, err := ReadIndex(fh, t, missing)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}

// Annotate returns the annotation of a genome
func (idx *Index) Annotate(genomeID string) (feed.Annotation, bool) {
	ann, ok := idx.annotations[genomeID]
	return ann, ok
}

// Len is the number of genomes in the index
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.annotations)
}

// Template returns the template the index was read with
func (idx *Index) Template() Template {
	return idx.template.copy()
}

// resistanceCall normalises a phenotype call to S, R, U or the missing marker
func resistanceCall(value, missing string) byte {
	if value == "" || value == missing {
		return missing[0]
	}
	switch strings.ToLower(value) {
	case "r", "resistant", "1", "true", "yes":
		return 'R'
	case "s", "susceptible", "sensitive", "0", "false", "no":
		return 'S'
	}
	return 'U'
}

// binaryCall turns a presence column into R (something detected) or S
func binaryCall(value, missing string) byte {
	if value == "" || value == missing {
		return 'S'
	}
	return 'R'
}
