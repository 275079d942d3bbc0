// Package reporting renders evaluation results: hitmap, race and concordance plots,
// tab-separated tables, an xlsx workbook and the msgpack dump.
package reporting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/esteinig/sketchy/src/evaluation"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
)

// writer produces the artifacts of one format in an output directory
type writer func(dir string, res *evaluation.Result, pal Palette) error

var writers = map[string]writer{
	"tsv":     writeTables,
	"xlsx":    writeWorkbook,
	"msgpack": writeDump,
	"png":     plotWriter("png"),
	"svg":     plotWriter("svg"),
	"pdf":     plotWriter("pdf"),
}

// Formats lists the supported output formats
func Formats() []string {
	formats := make([]string, 0, len(writers))
	for f := range writers {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// CheckFormats rejects unknown formats
func CheckFormats(formats []string) error {
	for _, f := range formats {
		if _, ok := writers[strings.ToLower(f)]; !ok {
			return fmt.Errorf("unsupported output format %q (supported: %s)", f, strings.Join(Formats(), ", "))
		}
	}
	return nil
}

// Write renders a result into dir in each of the requested formats
func Write(dir string, res *evaluation.Result, pal Palette, formats []string) error {
	if res == nil || res.Timeline == nil || res.Curve == nil {
		return fmt.Errorf("cannot report an incomplete evaluation result")
	}
	if err := CheckFormats(formats); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	done := make(map[string]bool, len(formats))
	for _, f := range formats {
		f = strings.ToLower(f)
		if done[f] {
			continue
		}
		done[f] = true
		if err := writers[f](dir, res, pal); err != nil {
			return fmt.Errorf("writing %s output: %w", f, err)
		}
	}
	return nil
}

func writeTables(dir string, res *evaluation.Result, _ Palette) error {
	for _, t := range tables(res) {
		fh, err := os.Create(filepath.Join(dir, t.name+".tsv"))
		if err != nil {
			return err
		}
		if err := t.writeTSV(fh); err != nil {
			fh.Close()
			return err
		}
		if err := fh.Close(); err != nil {
			return err
		}
	}
	return nil
}

func writeWorkbook(dir string, res *evaluation.Result, _ Palette) error {
	return WriteWorkbook(filepath.Join(dir, "evaluation.xlsx"), res)
}

func writeDump(dir string, res *evaluation.Result, _ Palette) error {
	return res.Dump(filepath.Join(dir, "evaluation.msgpack"))
}

func plotWriter(ext string) writer {
	return func(dir string, res *evaluation.Result, pal Palette) error {
		return WritePlots(dir, res, pal, ext)
	}
}

// WritePlots draws the hitmap, race and concordance plots. Plots without data are skipped.
func WritePlots(dir string, res *evaluation.Result, pal Palette, ext string) error {
	hitmap, err := HitmapPlot(res.Timeline, pal, fmt.Sprintf("%s: top %d ranks", res.Sample, res.Timeline.Ranks))
	if err := savePlot(hitmap, err, filepath.Join(dir, "hitmap."+ext)); err != nil {
		return err
	}
	racePlot, err := RacePlot(res.Race, pal, fmt.Sprintf("%s: race", res.Sample))
	if err := savePlot(racePlot, err, filepath.Join(dir, "race."+ext)); err != nil {
		return err
	}
	concordance, err := ConcordancePlot(res.Curve, pal, fmt.Sprintf("%s: detection boundary %s", res.Sample, res.Curve.Boundary))
	return savePlot(concordance, err, filepath.Join(dir, "concordance."+ext))
}

func savePlot(p *plot.Plot, err error, path string) error {
	if errors.Is(err, ErrNothingToPlot) {
		zap.S().Debugf("skipping %s: %v", filepath.Base(path), err)
		return nil
	}
	if err != nil {
		return err
	}
	return SavePlot(p, path)
}
