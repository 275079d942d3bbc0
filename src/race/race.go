// Package race follows the rank of the first fully concordant candidate across reads.
package race

import (
	"github.com/esteinig/sketchy/src/concordance"
	"github.com/esteinig/sketchy/src/feed"
	"github.com/montanaflynn/stats"
)

// Sample is the race position at one read. When Present is false no candidate of the
// read was fully concordant and Rank is meaningless.
type Sample struct {
	ReadIndex int  `msgpack:"read"`
	Rank      int  `msgpack:"rank"`
	Present   bool `msgpack:"present"`
}

// Track scans each read's candidates from rank 1 upward, in the order given by the feed,
// and records the first Full rank
func Track(evidence []feed.ReadEvidence, m concordance.Matcher) []Sample {
	samples := make([]Sample, len(evidence))
	for i, ev := range evidence {
		samples[i] = Sample{ReadIndex: ev.ReadIndex}
		for j, hit := range ev.Hits {
			if m.Matches(hit) == concordance.Full {
				samples[i].Rank = j + 1
				samples[i].Present = true
				break
			}
		}
	}
	return samples
}

// Summary describes a race trajectory
type Summary struct {
	Present      int     `msgpack:"present"`
	Absent       int     `msgpack:"absent"`
	FirstPresent int     `msgpack:"first_present"` // read index, zero when never present
	BestRank     int     `msgpack:"best_rank"`     // zero when never present
	MeanRank     float64 `msgpack:"mean_rank"`
	MedianRank   float64 `msgpack:"median_rank"`
}

// Summarize collects the race statistics over the reads where a Full candidate was present
func Summarize(samples []Sample) Summary {
	summary := Summary{}
	ranks := stats.Float64Data{}
	for _, s := range samples {
		if !s.Present {
			summary.Absent++
			continue
		}
		summary.Present++
		if summary.FirstPresent == 0 {
			summary.FirstPresent = s.ReadIndex
		}
		ranks = append(ranks, float64(s.Rank))
	}
	if len(ranks) == 0 {
		return summary
	}
	best, _ := ranks.Min()
	summary.BestRank = int(best)
	summary.MeanRank, _ = ranks.Mean()
	summary.MedianRank, _ = ranks.Median()
	return summary
}
