// Package curve follows the concordance of the top ranked candidate as reads accumulate
// and locates the detection boundary.
package curve

import (
	"strconv"

	"github.com/esteinig/sketchy/src/concordance"
	"github.com/esteinig/sketchy/src/feed"
	"github.com/montanaflynn/stats"
)

// Point is the state of the top prediction after a read
type Point struct {
	ReadIndex       int               `msgpack:"read"`
	Level           concordance.Level `msgpack:"level"`
	FullFraction    float64           `msgpack:"full_fraction"`    // reads up to here with a Full top hit
	LineageFraction float64           `msgpack:"lineage_fraction"` // reads up to here with at least a lineage match
}

// Boundary is the first read of the stable all-Full suffix
type Boundary struct {
	ReadIndex int  `msgpack:"read"`
	Detected  bool `msgpack:"detected"`
}

// String returns the read index or "undetected"
func (b Boundary) String() string {
	if !b.Detected {
		return "undetected"
	}
	return strconv.Itoa(b.ReadIndex)
}

// Curve is the accuracy-over-reads curve with its detection boundary
type Curve struct {
	Points   []Point  `msgpack:"points"`
	Boundary Boundary `msgpack:"boundary"`
}

// Build records the rank-1 level for every read in a forward pass, then finds the
// detection boundary in a separate backward pass
func Build(evidence []feed.ReadEvidence, m concordance.Matcher) *Curve {
	c := &Curve{Points: make([]Point, len(evidence))}
	full, lineage := 0, 0
	for i, ev := range evidence {
		level := concordance.None
		if len(ev.Hits) != 0 {
			level = m.Matches(ev.Hits[0])
		}
		if level == concordance.Full {
			full++
		}
		if level >= concordance.LineageOnly {
			lineage++
		}
		c.Points[i] = Point{
			ReadIndex:       ev.ReadIndex,
			Level:           level,
			FullFraction:    float64(full) / float64(i+1),
			LineageFraction: float64(lineage) / float64(i+1),
		}
	}
	c.Boundary = DetectionBoundary(c.Points)
	return c
}

// DetectionBoundary scans backwards for the longest suffix whose top levels are all Full.
// It is undetected when there are no points or the final point is not Full.
func DetectionBoundary(points []Point) Boundary {
	start := len(points)
	for start > 0 && points[start-1].Level == concordance.Full {
		start--
	}
	if start == len(points) {
		return Boundary{}
	}
	return Boundary{ReadIndex: points[start].ReadIndex, Detected: true}
}

// Levels returns the top-1 level sequence
func (c *Curve) Levels() []concordance.Level {
	levels := make([]concordance.Level, len(c.Points))
	for i, p := range c.Points {
		levels[i] = p.Level
	}
	return levels
}

// Accuracy is the fraction of reads whose top hit was Full, zero for an empty curve
func (c *Curve) Accuracy() float64 {
	hits := make(stats.Float64Data, len(c.Points))
	for i, p := range c.Points {
		if p.Level == concordance.Full {
			hits[i] = 1
		}
	}
	accuracy, err := hits.Mean()
	if err != nil {
		return 0
	}
	return accuracy
}
