// Package timeline aggregates scored reads into the read x rank matrix behind the hitmap.
package timeline

import "github.com/esteinig/sketchy/src/concordance"

// Matrix holds one row per read (in feed order) and one column per rank 1..Ranks.
// Cells without a candidate are None. Its size is bounded by reads x ranks.
type Matrix struct {
	ReadIndices []int                 `msgpack:"reads"`
	Ranks       int                   `msgpack:"ranks"`
	Levels      [][]concordance.Level `msgpack:"levels"`
}

// Build lays the read scores out over ranks columns, filling absent candidates with None
func Build(scores []concordance.ReadScore, ranks int) *Matrix {
	if ranks < 0 {
		ranks = 0
	}
	m := &Matrix{
		ReadIndices: make([]int, len(scores)),
		Ranks:       ranks,
		Levels:      make([][]concordance.Level, len(scores)),
	}
	for i, score := range scores {
		m.ReadIndices[i] = score.ReadIndex
		row := make([]concordance.Level, ranks)
		copy(row, score.Levels)
		m.Levels[i] = row
	}
	return m
}

// Rows returns the number of reads in the matrix
func (m *Matrix) Rows() int {
	return len(m.ReadIndices)
}

// At returns the level for a row (0-based) and rank (1-based)
func (m *Matrix) At(row, rank int) concordance.Level {
	return m.Levels[row][rank-1]
}

// Cell looks up a (read index, rank) pair, false if it lies outside the matrix
func (m *Matrix) Cell(readIndex, rank int) (concordance.Level, bool) {
	if rank < 1 || rank > m.Ranks {
		return concordance.None, false
	}
	for row, ri := range m.ReadIndices {
		if ri == readIndex {
			return m.At(row, rank), true
		}
	}
	return concordance.None, false
}

// Counts tallies the cells at each level
func (m *Matrix) Counts() map[concordance.Level]int {
	counts := map[concordance.Level]int{
		concordance.None:        0,
		concordance.LineageOnly: 0,
		concordance.Full:        0,
	}
	for _, row := range m.Levels {
		for _, level := range row {
			counts[level]++
		}
	}
	return counts
}
