// Package reads indexes the reads of a sequencing run so that evaluation tables can be
// labelled with read IDs and accumulated bases instead of bare read indices.
package reads

import (
	"fmt"
	"io"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
	"github.com/esteinig/sketchy/src/misc"
)

// Read describes a read by its 1-based position in the run
type Read struct {
	Index           int    `msgpack:"index"`
	ID              string `msgpack:"id"`
	Length          int    `msgpack:"length"`
	CumulativeBases int    `msgpack:"bases"`
}

// Manifest lists reads in sequencing order
type Manifest struct {
	Reads []Read `msgpack:"reads"`
}

// ReadManifest reads FASTQ records until limit reads have been seen (limit < 0 reads all)
func ReadManifest(r io.Reader, limit int) (*Manifest, error) {
	m := &Manifest{}
	if limit == 0 {
		return m, nil
	}
	template := linear.NewQSeq("", nil, alphabet.DNA, alphabet.Sanger)
	scanner := seqio.NewScanner(fastq.NewReader(r, template))
	total := 0
	for scanner.Next() {
		s := scanner.Seq()
		total += s.Len()
		m.Reads = append(m.Reads, Read{
			Index:           len(m.Reads) + 1,
			ID:              readID(s.Name()),
			Length:          s.Len(),
			CumulativeBases: total,
		})
		if limit > 0 && len(m.Reads) == limit {
			break
		}
	}
	if err := scanner.Error(); err != nil {
		return nil, fmt.Errorf("could not read fastq record %d: %w", len(m.Reads)+1, err)
	}
	return m, nil
}

// readID drops any description that follows the read identifier
func readID(name string) string {
	if fields := strings.Fields(name); len(fields) != 0 {
		return fields[0]
	}
	return name
}

// LoadManifest opens a plain or compressed FASTQ file and reads its manifest
func LoadManifest(path string, limit int) (*Manifest, error) {
	fh, err := misc.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return ReadManifest(fh, limit)
}

// Lookup returns the read at a 1-based read index
func (m *Manifest) Lookup(readIndex int) (Read, bool) {
	if m == nil || readIndex < 1 || readIndex > len(m.Reads) {
		return Read{}, false
	}
	return m.Reads[readIndex-1], true
}

// Len returns the number of reads in the manifest
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Reads)
}
