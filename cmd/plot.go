package cmd

import (
	"fmt"

	"github.com/esteinig/sketchy/src/evaluation"
	"github.com/esteinig/sketchy/src/misc"
	"github.com/esteinig/sketchy/src/reporting"
	"github.com/spf13/cobra"
)

// the command line arguments
var (
	resultFile  *string   // msgpack dump written by evaluate
	plotDir     *string   // directory for the redrawn plots
	plotFormats *[]string // image formats
	plotColour  *string
	plotPrimary *string
	plotSecond  *string
)

// the plot command (used by cobra)
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Redraw the plots and tables of an evaluated sample",
	Long:  `Redraw the plots and tables of an evaluated sample from its evaluation.msgpack, e.g. with another palette`,
	Run: func(cmd *cobra.Command, args []string) {
		misc.ErrorCheck(misc.CheckRequiredFlags(cmd.Flags()))
		misc.ErrorCheck(runPlot())
	},
}

func init() {
	RootCmd.AddCommand(plotCmd)
	resultFile = plotCmd.Flags().StringP("result", "r", "", "evaluation.msgpack written by sketchy evaluate --formats msgpack")
	plotDir = plotCmd.Flags().StringP("outdir", "o", ".", "directory to write to")
	plotFormats = plotCmd.Flags().StringSlice("formats", []string{"png"}, "output formats")
	plotColour = plotCmd.Flags().StringP("color", "c", "", "color of hitmap output: red, orange, green, blue")
	plotPrimary = plotCmd.Flags().String("primary", reporting.DefaultPrimary, "primary color for hitmap")
	plotSecond = plotCmd.Flags().String("secondary", reporting.DefaultSecondary, "secondary color for hitmap")
	plotCmd.MarkFlagRequired("result")
}

func runPlot() error {
	if err := misc.CheckFile(*resultFile); err != nil {
		return err
	}
	palette, err := reporting.SelectPalette(*plotColour, *plotPrimary, *plotSecond)
	if err != nil {
		return err
	}
	res, err := evaluation.Load(*resultFile)
	if err != nil {
		return fmt.Errorf("could not load %s: %w", *resultFile, err)
	}
	if err := reporting.Write(*plotDir, res, palette, *plotFormats); err != nil {
		return err
	}
	logger.Sugar().Infof("redrew %s (detection boundary %s) into %s", res.Sample, res.Curve.Boundary, *plotDir)
	return nil
}
