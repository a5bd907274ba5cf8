package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/peloton/internal/automation"
	"github.com/san-kum/peloton/internal/export"
)

var (
	svgWidth  int
	svgHeight int
	markEvery float64
)

func newScriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script [file]",
		Short: "play a tactics script: a race plus moves made during it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := automation.LoadScript(args[0])
			if err != nil {
				return err
			}
			res, applied, err := automation.Run(cmd.Context(), s)
			if err != nil {
				return err
			}
			printApplied(os.Stdout, applied)
			printResult(os.Stdout, res)
			return save(res)
		},
	}
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not archive the result")
	return cmd
}

func printApplied(out io.Writer, applied []automation.Applied) {
	if len(applied) == 0 {
		fmt.Fprintln(out, "no events fired")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tLEADER KM\tACTION\tRIDERS")
	for _, a := range applied {
		fmt.Fprintf(w, "%s\t%.2f\t%s\t%v\n", clock(a.Tick), a.Distance, a.Action, a.Riders)
	}
	w.Flush()
	fmt.Fprintln(out)
}

func clock(s int) string {
	return fmt.Sprintf("%d:%02d:%02d", s/3600, s/60%60, s%60)
}

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile [preset]",
		Short: "write a race's course profile as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRace(args)
			if err != nil {
				return err
			}
			c, err := cfg.BuildCourse()
			if err != nil {
				return err
			}
			svg := export.ProfileSVG(c, svgWidth, svgHeight, markEvery)
			return writeOut(svg, cfg.Name+"-profile.svg")
		},
	}
	cmd.Flags().StringVarP(&raceFile, "file", "f", "", "race file (yaml)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "file to write (default <race>-profile.svg, - for stdout)")
	cmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	cmd.Flags().IntVar(&svgHeight, "height", 240, "image height")
	cmd.Flags().Float64Var(&markEvery, "marks", 10, "km between distance marks, 0 for none")
	return cmd
}

// writeOut writes an SVG document to --out, stdout for "-", or fallback.
func writeOut(svg, fallback string) error {
	path := outFile
	if path == "" {
		path = fallback
	}
	if path == "-" {
		_, err := fmt.Println(svg)
		return err
	}
	if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
