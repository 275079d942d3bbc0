// Copyright © 2017 Will Rowe <will.rowe@stfc.ac.uk>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/esteinig/sketchy/src/config"
	"github.com/esteinig/sketchy/src/misc"
	"github.com/esteinig/sketchy/src/version"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// the command line arguments
var (
	proc       *int    // number of processors to use
	profiling  *bool   // create profile for go pprof
	logFile    *string // log to this file instead of STDERR
	configFile *string // YAML configuration
	verbose    *bool   // debug logging
)

// set up by the persistent hooks, shared by the sub-commands
var (
	logger   *zap.Logger
	cfg      *config.Config
	profiler interface{ Stop() }
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "sketchy",
	Version: version.GetVersion(),
	Short:   "evaluate how early streaming genomic neighbour typing settles on the right genotype",
	Long: `
#####################################################################################
		SKETCHY: rank stability and concordance of streamed genotype calls
#####################################################################################

 Sketchy predicts lineage, resistance and genotype of a bacterial isolate from the
 first reads of a nanopore run by ranking reference genomes on shared hashes.

 The evaluate command scores each ranked candidate against a known ground truth,
 and reports the timeline hitmap, the race of the first fully concordant candidate
 and the concordance curve with its detection boundary: the read from which the
 top prediction stays correct.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if logger, err = misc.NewLogger(*logFile, *verbose); err != nil {
			return err
		}
		if cfg, err = config.Load(*configFile); err != nil {
			return err
		}
		if *proc <= 0 || *proc > runtime.NumCPU() {
			*proc = runtime.NumCPU()
		}
		runtime.GOMAXPROCS(*proc)
		if *profiling {
			profiler = profile.Start(profile.ProfilePath("./"))
		}
		return nil
	},
}

// shutdown stops the profiler and flushes the log; it runs after every command, failed ones included
func shutdown() {
	if profiler != nil {
		profiler.Stop()
		profiler = nil
	}
	if logger != nil {
		_ = logger.Sync()
	}
}

/*
  A function to add all child commands to the root command and sets flags appropriately
*/
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := RootCmd.Execute()
	shutdown()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

/*
  A function to initalise the command line arguments
*/
func init() {
	proc = RootCmd.PersistentFlags().IntP("processors", "p", 1, "number of processors to use")
	profiling = RootCmd.PersistentFlags().Bool("profiling", false, "create the files needed to profile sketchy using the go tool pprof")
	logFile = RootCmd.PersistentFlags().String("log", "", "write the log to this file instead of STDERR")
	configFile = RootCmd.PersistentFlags().String("config", "sketchy.yaml", "YAML configuration file (defaults are used when it does not exist)")
	verbose = RootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug messages")
}
