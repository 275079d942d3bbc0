package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/esteinig/sketchy/src/evaluation"
	"github.com/esteinig/sketchy/src/features"
	"github.com/esteinig/sketchy/src/misc"
	"github.com/esteinig/sketchy/src/pipeline"
	"github.com/esteinig/sketchy/src/reporting"
	"github.com/esteinig/sketchy/src/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// the command line arguments
var (
	feedFile     *string   // rank feed of a single sample
	sampleSheet  *string   // sample sheet for evaluating many samples
	sampleName   *string   // name of the single sample
	featureFile  *string   // genotype feature index for feeds without annotation columns
	templateName *string   // feature template name or YAML file
	fastqFile    *string   // reads of the single sample
	outDir       *string   // output directory
	limit        *int      // evaluate up to and including this read
	colour       *string   // named palette
	lineage      *string   // true lineage
	resistance   *string   // true resistance profile
	genotype     *string   // true genotype
	missing      *string   // missing marker
	genotypeRule *string   // subset or exact
	primary      *string   // full concordance colour
	secondary    *string   // lineage only colour
	showRanks    *int      // ranks in the timeline hitmap
	top          *int      // candidates kept per read
	formats      *[]string // output formats
	overwrite    *bool     // replace existing sample output
)

// the evaluate command (used by cobra)
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate rank feeds against a known genotype for detection boundaries",
	Long: `Evaluate rank feeds against a known genotype for detection boundaries.

Either a single feed (--feed) or a sample sheet (--samples) is evaluated. Each sample
gets its own directory in --outdir holding the timeline, race and concordance tables
and plots; a sample that fails leaves no output behind.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEvaluate(cmd.Flags())
	},
}

/*
  A function to initialise the command line arguments
*/
func init() {
	RootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "ranks" {
			name = "show_ranks"
		}
		return pflag.NormalizedName(name)
	})
	feedFile = evaluateCmd.Flags().StringP("feed", "f", "", "rank feed of a single sample (tsv, may be gzipped, - for STDIN)")
	sampleSheet = evaluateCmd.Flags().StringP("samples", "s", "", "sample sheet with sample, feed, lineage, resistance, genotype and fastq columns")
	sampleName = evaluateCmd.Flags().StringP("name", "n", "", "name of the single sample (default: feed file name)")
	featureFile = evaluateCmd.Flags().StringP("features", "x", "", "genotype feature index for feeds without lineage and resistance columns")
	templateName = evaluateCmd.Flags().StringP("template", "t", "saureus", "feature index template: "+strings.Join(features.Templates(), ", ")+" or a YAML file")
	fastqFile = evaluateCmd.Flags().String("fastq", "", "reads of the single sample, labels tables with read IDs and bases")
	outDir = evaluateCmd.Flags().StringP("outdir", "o", "sample_evaluation", "output directory for evaluation data and plots")
	limit = evaluateCmd.Flags().IntP("limit", "l", 1000, "evaluate up to and including this number of reads")
	colour = evaluateCmd.Flags().StringP("color", "c", "", "color of hitmap output: red, orange, green, blue")
	lineage = evaluateCmd.Flags().String("lineage", "9", "true lineage to evaluate on")
	resistance = evaluateCmd.Flags().String("resistance", "SRSSSSSSRSSS", "true resistance profile to evaluate on")
	genotype = evaluateCmd.Flags().String("genotype", "", "true genotype to evaluate on (e.g. meca=R,pvl)")
	missing = evaluateCmd.Flags().String("missing", "-", "missing data character, matches any call")
	genotypeRule = evaluateCmd.Flags().String("genotype-rule", "subset", "genotype match rule: subset or exact")
	primary = evaluateCmd.Flags().String("primary", reporting.DefaultPrimary, "primary color for hitmap (joint lineage, genotype, susceptibility)")
	secondary = evaluateCmd.Flags().String("secondary", reporting.DefaultSecondary, "secondary color for hitmap (lineage correct only)")
	showRanks = evaluateCmd.Flags().Int("show_ranks", 50, "number of ranks shown in the timeline hitmap")
	top = evaluateCmd.Flags().Int("top", 50, "collect the top ranked genome hits by sum of shared hashes")
	formats = evaluateCmd.Flags().StringSlice("formats", []string{"tsv", "png"}, "output formats: "+strings.Join(reporting.Formats(), ", "))
	overwrite = evaluateCmd.Flags().Bool("overwrite", false, "replace the output of samples that were evaluated before")
}

// applyConfig fills every flag the user did not set from the loaded configuration
func applyConfig(flags *pflag.FlagSet) {
	set := func(name string, apply func()) {
		if !flags.Changed(name) {
			apply()
		}
	}
	set("limit", func() { *limit = cfg.Evaluation.Limit })
	set("show_ranks", func() { *showRanks = cfg.Evaluation.ShowRanks })
	set("top", func() { *top = cfg.Evaluation.Top })
	set("missing", func() { *missing = cfg.Evaluation.Missing })
	set("genotype-rule", func() { *genotypeRule = cfg.Evaluation.GenotypeRule })
	set("lineage", func() { *lineage = cfg.Truth.Lineage })
	set("resistance", func() { *resistance = cfg.Truth.Resistance })
	set("genotype", func() { *genotype = cfg.Truth.Genotype })
	set("color", func() { *colour = cfg.Report.Palette })
	set("primary", func() { *primary = cfg.Report.Primary })
	set("secondary", func() { *secondary = cfg.Report.Secondary })
	set("formats", func() { *formats = cfg.Report.Formats })
}

/*
  A function to check user supplied parameters
*/
func evaluateParamCheck() error {
	if (*feedFile == "") == (*sampleSheet == "") {
		return fmt.Errorf("please supply either a feed (--feed) or a sample sheet (--samples)")
	}
	if *sampleSheet != "" {
		if err := misc.CheckFile(*sampleSheet); err != nil {
			return err
		}
	}
	if *feedFile != "" && *feedFile != "-" {
		if err := misc.CheckFile(*feedFile); err != nil {
			return err
		}
	}
	if *fastqFile != "" {
		if *sampleSheet != "" {
			return fmt.Errorf("--fastq is for a single feed, use the fastq column of the sample sheet instead")
		}
		if err := misc.CheckExt(*fastqFile, []string{"fastq", "fq"}); err != nil {
			return err
		}
	}
	if *featureFile != "" {
		if err := misc.CheckFile(*featureFile); err != nil {
			return err
		}
	}
	if err := reporting.CheckFormats(*formats); err != nil {
		return err
	}
	if _, err := os.Stat(*outDir); os.IsNotExist(err) {
		if err := os.MkdirAll(*outDir, 0755); err != nil {
			return fmt.Errorf("can't create specified output directory: %v", *outDir)
		}
	}
	return nil
}

// loadTemplate accepts a built-in template name or a YAML file
func loadTemplate(name string) (features.Template, error) {
	if _, err := os.Stat(name); err == nil {
		return features.LoadTemplate(name)
	}
	return features.GetTemplate(name)
}

// defaultSampleName strips directories and feed extensions from a feed path
func defaultSampleName(feed string) string {
	if feed == "-" {
		return "stdin"
	}
	name := filepath.Base(feed)
	for _, ext := range []string{".gz", ".bgz", ".tsv", ".txt", ".feed"} {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

/*
  The main function for the evaluate sub-command
*/
func runEvaluate(flags *pflag.FlagSet) error {
	log := logger.Sugar()
	applyConfig(flags)
	if err := evaluateParamCheck(); err != nil {
		return err
	}
	palette, err := reporting.SelectPalette(*colour, *primary, *secondary)
	if err != nil {
		return err
	}

	info := &pipeline.Info{
		Version:   version.GetVersion(),
		NumProc:   *proc,
		Profiling: *profiling,
		OutDir:    *outDir,
		Params:    evaluation.Params{Limit: *limit, ShowRanks: *showRanks, Top: *top},
		Evaluate: pipeline.EvalCmd{
			Missing:      *missing,
			GenotypeRule: *genotypeRule,
			FeatureIndex: *featureFile,
			Template:     *templateName,
		},
		Report: pipeline.ReportCmd{
			Palette:   *colour,
			Primary:   *primary,
			Secondary: *secondary,
			Formats:   *formats,
			Overwrite: *overwrite,
		},
	}
	if err := info.Params.Validate(); err != nil {
		return err
	}
	for _, f := range info.Report.Formats {
		if strings.EqualFold(f, "xlsx") {
			if err := reporting.CheckWorkbook(info.Params); err != nil {
				return err
			}
		}
	}
	info.AttachLogger(logger)
	info.AttachPalette(palette)
	log.Infof("starting the evaluate command")
	log.Infof("\tprocessors: %d", info.NumProc)
	log.Infof("\tread limit: %d", info.Params.Limit)
	log.Infof("\tranks shown: %d", info.Params.ShowRanks)
	log.Infof("\tcandidates kept per read: %d", info.Params.Top)
	log.Infof("\tgenotype rule: %s", info.Evaluate.GenotypeRule)

	if *featureFile != "" {
		template, err := loadTemplate(*templateName)
		if err != nil {
			return err
		}
		idx, err := features.LoadIndex(*featureFile, template, *missing)
		if err != nil {
			return err
		}
		log.Infof("\tfeature index: %d genomes (%s template)", idx.Len(), template.Name)
		info.AttachAnnotator(idx)
	}

	defaults := pipeline.Sample{Lineage: *lineage, Resistance: *resistance, Genotype: *genotype}
	var samples []pipeline.Sample
	if *sampleSheet != "" {
		if samples, err = pipeline.LoadSampleSheet(*sampleSheet, defaults); err != nil {
			return err
		}
	} else {
		s := defaults
		s.Name = *sampleName
		if s.Name == "" {
			s.Name = defaultSampleName(*feedFile)
		}
		s.Feed = *feedFile
		s.FastQ = *fastqFile
		samples = []pipeline.Sample{s}
	}
	log.Infof("\tsamples: %d", len(samples))

	results, failures := pipeline.EvaluateSamples(info, samples)
	if err := info.Dump(filepath.Join(*outDir, "sketchy.info")); err != nil {
		return err
	}
	for _, res := range results {
		log.Infof("%s\tdetection boundary: %s\taccuracy: %.4f", res.Sample, res.Curve.Boundary, res.Curve.Accuracy())
	}
	log.Debugf("memory: %s", misc.PrintMemUsage())
	log.Infof("finished: %d evaluated, %d failed", len(results), len(failures))
	if len(failures) != 0 {
		return fmt.Errorf("%d of %d samples failed (first: %v)", len(failures), len(samples), failures[0])
	}
	return nil
}
