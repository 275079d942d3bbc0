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
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/esteinig/sketchy/src/sketchstore"
	"github.com/spf13/cobra"
)

// the command line arguments
var (
	collections *[]string // the collections to download
	sketchDir   *string   // the location to store the sketches
	fullSketch  *bool     // download the full instead of the minimal collections
	bucketURL   *string   // where the archives are hosted
	md5sums     *map[string]string
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Download the reference sketch collections",
	Long:  `Download the reference sketch collections into the local sketch directory`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("out") {
			*sketchDir = cfg.Sketches.Path
		}
		if !cmd.Flags().Changed("bucket") {
			*bucketURL = cfg.Sketches.BucketURL
		}
		if !cmd.Flags().Changed("full") {
			*fullSketch = cfg.Sketches.Full
		}
		return runGet()
	},
}

func init() {
	RootCmd.AddCommand(getCmd)
	collections = getCmd.Flags().StringSliceP("collection", "c", sketchstore.Collections, "collections to download")
	sketchDir = getCmd.Flags().StringP("out", "o", sketchstore.DefaultPath(), "directory to save the sketches to")
	fullSketch = getCmd.Flags().Bool("full", false, "download the full collections instead of the minimal ones")
	bucketURL = getCmd.Flags().String("bucket", sketchstore.DefaultBucket, "URL of the sketch bucket")
	md5sums = getCmd.Flags().StringToString("md5", nil, "verify archives against md5 sums (e.g. saureus.min.tar.gz=<md5>)")
}

/*
  A function to check user supplied parameters
*/
func getParamCheck() error {
	for _, name := range *collections {
		checkPass := false
		for _, avail := range sketchstore.Collections {
			if name == avail {
				checkPass = true
			}
		}
		if !checkPass {
			return fmt.Errorf("unrecognised collection: %v\n\nplease choose from: %v", name, sketchstore.Collections)
		}
	}
	if _, err := os.Stat(*sketchDir); os.IsNotExist(err) {
		if err := os.MkdirAll(*sketchDir, 0755); err != nil {
			return fmt.Errorf("directory creation failed: %v\n\ncan't create specified output directory for the sketches", *sketchDir)
		}
	}
	return nil
}

/*
  The main function for the get sub-command
*/
func runGet() error {
	log := logger.Sugar()
	if err := getParamCheck(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store := sketchstore.NewStore(*sketchDir)
	store.BucketURL = *bucketURL
	store.Full = *fullSketch
	store.Checksums = *md5sums
	log.Infof("downloading %v into %s...", *collections, *sketchDir)
	if err := store.Pull(ctx, *collections...); err != nil {
		return err
	}
	sketches, err := sketchstore.List(*sketchDir)
	if err != nil {
		return err
	}
	log.Infof("%d sketches available in %s", len(sketches), *sketchDir)
	log.Infof("set SKETCHY_PATH=%s to use them from anywhere, or run `sketchy list`", *sketchDir)
	return nil
}
