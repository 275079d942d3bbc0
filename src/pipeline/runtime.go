package pipeline

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/esteinig/sketchy/src/evaluation"
	"github.com/esteinig/sketchy/src/feed"
	"github.com/esteinig/sketchy/src/reporting"
	"github.com/esteinig/sketchy/src/truth"
	"go.uber.org/zap"
)

// Info stores the runtime information
type Info struct {
	Version   string
	NumProc   int
	Profiling bool
	OutDir    string
	Params    evaluation.Params
	Evaluate  EvalCmd
	Report    ReportCmd

	// the following fields are not written to disk
	annotator feed.Annotator
	palette   reporting.Palette
	logger    *zap.Logger
}

// EvalCmd stores the runtime info for matching candidates against each sample's ground truth
type EvalCmd struct {
	Missing      string
	GenotypeRule string
	FeatureIndex string // path of the feature index, empty when feeds carry annotations
	Template     string
}

// ReportCmd stores the runtime info for the artifacts written per sample
type ReportCmd struct {
	Palette   string
	Primary   string
	Secondary string
	Formats   []string
	Overwrite bool
}

// AttachAnnotator is a method to attach a feature index to the runtime
func (Info *Info) AttachAnnotator(a feed.Annotator) {
	Info.annotator = a
}

// AttachPalette is a method to attach the hitmap palette to the runtime
func (Info *Info) AttachPalette(p reporting.Palette) {
	Info.palette = p
}

// AttachLogger is a method to attach a logger to the runtime
func (Info *Info) AttachLogger(l *zap.Logger) {
	Info.logger = l
}

// Palette returns the attached palette, or the default hitmap palette
func (Info *Info) Palette() reporting.Palette {
	if Info.palette.Primary == nil {
		return reporting.DefaultPalette()
	}
	return Info.palette
}

func (Info *Info) log() *zap.SugaredLogger {
	if Info.logger == nil {
		return zap.NewNop().Sugar()
	}
	return Info.logger.Sugar()
}

// TruthOptions returns the ground truth options shared by every sample
func (Info *Info) TruthOptions() ([]truth.Option, error) {
	rule, err := truth.ParseGenotypeRule(Info.Evaluate.GenotypeRule)
	if err != nil {
		return nil, err
	}
	missing := Info.Evaluate.Missing
	if missing == "" {
		missing = truth.DefaultMissing
	}
	return []truth.Option{truth.WithMissing(missing), truth.WithGenotypeRule(rule)}, nil
}

// Dump is a method to dump the pipeline info to file
func (Info *Info) Dump(path string) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	encoder := gob.NewEncoder(fh)
	return encoder.Encode(Info)
}

// Load is a method to load Info from file
func (Info *Info) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return Info.LoadFromBytes(data)
}

// LoadFromBytes is a method to load Info from bytes
func (Info *Info) LoadFromBytes(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("sketchy run info appears empty")
	}
	buf := bytes.NewBuffer(data)
	decoder := gob.NewDecoder(buf)
	return decoder.Decode(Info)
}
