package reporting

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/esteinig/sketchy/src/concordance"
	"github.com/esteinig/sketchy/src/curve"
	"github.com/esteinig/sketchy/src/race"
	"github.com/esteinig/sketchy/src/timeline"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNothingToPlot is returned for results without reads
var ErrNothingToPlot = errors.New("nothing to plot")

const (
	plotWidth  = 10 * vg.Inch
	plotHeight = 6 * vg.Inch
)

// levelGrid exposes a timeline as a heat map grid: columns are ranks, rows are reads
type levelGrid struct {
	z     *mat.Dense
	reads []int
}

func newLevelGrid(m *timeline.Matrix) *levelGrid {
	z := mat.NewDense(m.Rows(), m.Ranks, nil)
	for row := 0; row < m.Rows(); row++ {
		for rank := 1; rank <= m.Ranks; rank++ {
			z.Set(row, rank-1, float64(m.At(row, rank)))
		}
	}
	return &levelGrid{z: z, reads: m.ReadIndices}
}

func (g *levelGrid) Dims() (c, r int) {
	r, c = g.z.Dims()
	return c, r
}

func (g *levelGrid) Z(c, r int) float64 { return g.z.At(r, c) }

func (g *levelGrid) X(c int) float64 { return float64(c + 1) }

// the heat map asks for neighbours beyond the edges of single-row grids
func (g *levelGrid) Y(r int) float64 {
	if r < len(g.reads) {
		return float64(g.reads[r])
	}
	return float64(g.reads[len(g.reads)-1] + r - len(g.reads) + 1)
}

// HitmapPlot draws the read x rank timeline coloured by concordance level
func HitmapPlot(m *timeline.Matrix, pal Palette, title string) (*plot.Plot, error) {
	if m == nil || m.Rows() == 0 || m.Ranks == 0 {
		return nil, ErrNothingToPlot
	}
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = title
	p.X.Label.Text = "rank"
	p.Y.Label.Text = "read"

	hm := plotter.NewHeatMap(newLevelGrid(m), pal)
	hm.Min = float64(concordance.None)
	hm.Max = float64(concordance.Full)
	p.Add(hm)
	for _, level := range []concordance.Level{concordance.Full, concordance.LineageOnly} {
		p.Legend.Add(level.String(), legendBox(pal.LevelColor(level)))
	}
	p.Legend.Top = true
	return p, nil
}

func legendBox(c color.Color) plot.Thumbnailer {
	bar, _ := plotter.NewBarChart(plotter.Values{0}, vg.Points(8))
	bar.Color = c
	bar.LineStyle.Width = 0
	return bar
}

// RacePlot draws the rank of the first fully concordant candidate per read; reads
// without one are left out
func RacePlot(samples []race.Sample, pal Palette, title string) (*plot.Plot, error) {
	pts := plotter.XYs{}
	for _, s := range samples {
		if s.Present {
			pts = append(pts, plotter.XY{X: float64(s.ReadIndex), Y: float64(s.Rank)})
		}
	}
	if len(samples) == 0 {
		return nil, ErrNothingToPlot
	}
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = title
	p.X.Label.Text = "read"
	p.Y.Label.Text = "rank of first full match"
	p.X.Min = float64(samples[0].ReadIndex)
	p.X.Max = float64(samples[len(samples)-1].ReadIndex)
	p.Y.Min = 1
	if len(pts) == 0 {
		return p, nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = pal.Secondary
	line.LineStyle.Width = vg.Points(1)
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle.Color = pal.Primary
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(2)
	p.Add(line, scatter)
	return p, nil
}

// ConcordancePlot draws the cumulative full and lineage fractions of the top candidate,
// with a marker at the detection boundary
func ConcordancePlot(c *curve.Curve, pal Palette, title string) (*plot.Plot, error) {
	if c == nil || len(c.Points) == 0 {
		return nil, ErrNothingToPlot
	}
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = title
	p.X.Label.Text = "read"
	p.Y.Label.Text = "fraction of reads"
	p.Y.Min, p.Y.Max = 0, 1

	full := make(plotter.XYs, len(c.Points))
	lineage := make(plotter.XYs, len(c.Points))
	for i, pt := range c.Points {
		full[i] = plotter.XY{X: float64(pt.ReadIndex), Y: pt.FullFraction}
		lineage[i] = plotter.XY{X: float64(pt.ReadIndex), Y: pt.LineageFraction}
	}
	for _, series := range []struct {
		name string
		xys  plotter.XYs
		pal  color.Color
	}{
		{"full", full, pal.Primary},
		{"lineage", lineage, pal.Secondary},
	} {
		line, err := plotter.NewLine(series.xys)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = series.pal
		line.LineStyle.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(series.name, line)
	}
	if c.Boundary.Detected {
		x := float64(c.Boundary.ReadIndex)
		marker, err := plotter.NewLine(plotter.XYs{{X: x, Y: 0}, {X: x, Y: 1}})
		if err != nil {
			return nil, err
		}
		marker.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(marker)
		p.Legend.Add(fmt.Sprintf("boundary (read %d)", c.Boundary.ReadIndex), marker)
	}
	p.Legend.Top = true
	p.Legend.Left = false
	return p, nil
}

// SavePlot writes a plot, the image format follows the file extension
func SavePlot(p *plot.Plot, path string) error {
	return p.Save(plotWidth, plotHeight, path)
}
