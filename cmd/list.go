package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/esteinig/sketchy/src/features"
	"github.com/esteinig/sketchy/src/misc"
	"github.com/esteinig/sketchy/src/sketchstore"
	"github.com/spf13/cobra"
)

var listDir *string // sketch directory to list

// the list command (used by cobra)
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the cached reference sketches and feature templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := *listDir
		if !cmd.Flags().Changed("dir") {
			dir = cfg.Sketches.Path
		}
		if err := misc.CheckDir(dir); err != nil {
			return fmt.Errorf("%v\n\nrun `sketchy get` to download the sketches", err)
		}
		sketches, err := sketchstore.List(dir)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "collection\tk-mer\tsize\tpath")
		for _, s := range sketches {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", s.Name, s.KmerSize, s.SketchSize, s.Path)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if len(sketches) == 0 {
			fmt.Printf("no sketches in %s, run `sketchy get` first\n", dir)
		}
		fmt.Printf("\nfeature templates: %v\n", features.Templates())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(listCmd)
	listDir = listCmd.Flags().StringP("dir", "d", sketchstore.DefaultPath(), "sketch directory (or set SKETCHY_PATH)")
}
