package pipeline

/*
 this part of the pipeline loads each sample's rank feed, evaluates it against the sample's ground truth and writes the reports
*/

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/esteinig/sketchy/src/evaluation"
	"github.com/esteinig/sketchy/src/feed"
	"github.com/esteinig/sketchy/src/reads"
	"github.com/esteinig/sketchy/src/reporting"
	"github.com/esteinig/sketchy/src/truth"
)

// sampleJob carries a sample through the pipeline; once err is set later processes pass it on untouched
type sampleJob struct {
	sample   Sample
	rows     []feed.Row
	manifest *reads.Manifest
	result   *evaluation.Result
	err      error
}

// Failure records a sample that produced no output
type Failure struct {
	Sample string
	Err    error
}

func (f Failure) Error() string {
	return fmt.Sprintf("sample %s: %v", f.Sample, f.Err)
}

// SampleStreamer is a pipeline process that streams the samples to evaluate
type SampleStreamer struct {
	info   *Info
	input  []Sample
	output chan *sampleJob
}

// NewSampleStreamer is the constructor
func NewSampleStreamer(info *Info) *SampleStreamer {
	return &SampleStreamer{info: info, output: make(chan *sampleJob, BUFFERSIZE)}
}

// Connect is the method to connect the SampleStreamer to some data source
func (proc *SampleStreamer) Connect(samples []Sample) {
	proc.input = samples
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *SampleStreamer) Run() {
	defer close(proc.output)
	for _, sample := range proc.input {
		job := &sampleJob{sample: sample}
		if err := checkSampleName(sample.Name); err != nil {
			job.err = err
		}
		proc.output <- job
	}
}

func checkSampleName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%q can't be used as an output directory name", name)
	}
	return nil
}

// FeedLoader is a pipeline process that reads each sample's rank feed and optional reads
type FeedLoader struct {
	info   *Info
	input  chan *sampleJob
	output chan *sampleJob
}

// NewFeedLoader is the constructor
func NewFeedLoader(info *Info) *FeedLoader {
	return &FeedLoader{info: info, output: make(chan *sampleJob, BUFFERSIZE)}
}

// Connect is the method to join the input of this process with the output of SampleStreamer
func (proc *FeedLoader) Connect(previous *SampleStreamer) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *FeedLoader) Run() {
	defer close(proc.output)
	opts := feed.TableOptions{Missing: proc.info.Evaluate.Missing, Annotator: proc.info.annotator}
	for job := range proc.input {
		if job.err == nil {
			job.rows, job.err = feed.Load(job.sample.Feed, opts)
		}
		if job.err == nil && job.sample.FastQ != "" {
			job.manifest, job.err = reads.LoadManifest(job.sample.FastQ, proc.info.Params.Limit)
		}
		if job.err == nil {
			proc.info.log().Debugf("loaded %d feed rows for %s", len(job.rows), job.sample.Name)
		}
		proc.output <- job
	}
}

// SampleEvaluator is a pipeline process that evaluates samples using NumProc minions
type SampleEvaluator struct {
	info   *Info
	input  chan *sampleJob
	output chan *sampleJob
}

// NewSampleEvaluator is the constructor
func NewSampleEvaluator(info *Info) *SampleEvaluator {
	return &SampleEvaluator{info: info, output: make(chan *sampleJob, BUFFERSIZE)}
}

// Connect is the method to join the input of this process with the output of FeedLoader
func (proc *SampleEvaluator) Connect(previous *FeedLoader) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *SampleEvaluator) Run() {
	numProc := proc.info.NumProc
	if numProc < 1 {
		numProc = 1
	}
	var wg sync.WaitGroup
	wg.Add(numProc)
	for i := 0; i < numProc; i++ {
		go func() {
			defer wg.Done()
			for job := range proc.input {
				if job.err == nil {
					job.result, job.err = proc.evaluate(job)
				}
				proc.output <- job
			}
		}()
	}
	wg.Wait()
	close(proc.output)
}

func (proc *SampleEvaluator) evaluate(job *sampleJob) (*evaluation.Result, error) {
	opts, err := proc.info.TruthOptions()
	if err != nil {
		return nil, err
	}
	gt, err := truth.New(job.sample.Lineage, job.sample.Resistance, job.sample.Genotype, opts...)
	if err != nil {
		return nil, err
	}
	evaluator, err := evaluation.New(proc.info.Params, gt)
	if err != nil {
		return nil, err
	}
	result, err := evaluator.Evaluate(job.sample.Name, job.rows)
	if err != nil {
		return nil, err
	}
	if job.manifest != nil {
		result.AttachReads(job.manifest)
	}
	return result, nil
}

// ReportWriter is a pipeline process that writes each evaluated sample to <OutDir>/<sample>.
// A sample's directory only appears once all of its artifacts were written.
type ReportWriter struct {
	info     *Info
	input    chan *sampleJob
	Results  []*evaluation.Result
	Failures []Failure
}

// NewReportWriter is the constructor
func NewReportWriter(info *Info) *ReportWriter {
	return &ReportWriter{info: info}
}

// Connect is the method to join the input of this process with the output of SampleEvaluator
func (proc *ReportWriter) Connect(previous *SampleEvaluator) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *ReportWriter) Run() {
	for job := range proc.input {
		if job.err == nil {
			job.err = proc.write(job.result)
		}
		if job.err != nil {
			proc.info.log().Warnf("no output for sample %s: %v", job.sample.Name, job.err)
			proc.Failures = append(proc.Failures, Failure{Sample: job.sample.Name, Err: job.err})
			continue
		}
		proc.info.log().Infof("sample %s: detection boundary %s (%d reads)", job.sample.Name, job.result.Curve.Boundary, len(job.result.Curve.Points))
		proc.Results = append(proc.Results, job.result)
	}
}

func (proc *ReportWriter) write(result *evaluation.Result) error {
	if err := os.MkdirAll(proc.info.OutDir, 0755); err != nil {
		return err
	}
	final := filepath.Join(proc.info.OutDir, result.Sample)
	if _, err := os.Stat(final); err == nil && !proc.info.Report.Overwrite {
		return fmt.Errorf("output directory %s already exists", final)
	}
	tmp, err := os.MkdirTemp(proc.info.OutDir, "."+result.Sample+"-")
	if err != nil {
		return err
	}
	if err := reporting.Write(tmp, result, proc.info.Palette(), proc.info.Report.Formats); err != nil {
		os.RemoveAll(tmp)
		return err
	}
	if err := os.RemoveAll(final); err != nil {
		os.RemoveAll(tmp)
		return err
	}
	if err := os.Rename(tmp, final); err != nil {
		os.RemoveAll(tmp)
		return err
	}
	return nil
}

// EvaluateSamples builds and runs the evaluation pipeline over samples, returning the written
// results and the samples that failed
func EvaluateSamples(info *Info, samples []Sample) ([]*evaluation.Result, []Failure) {
	streamer := NewSampleStreamer(info)
	loader := NewFeedLoader(info)
	evaluator := NewSampleEvaluator(info)
	writer := NewReportWriter(info)

	streamer.Connect(samples)
	loader.Connect(streamer)
	evaluator.Connect(loader)
	writer.Connect(evaluator)

	p := NewPipeline()
	p.AddProcesses(streamer, loader, evaluator, writer)
	p.Run()
	return writer.Results, writer.Failures
}
