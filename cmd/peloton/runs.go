package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/san-kum/peloton/internal/config"
	"github.com/san-kum/peloton/internal/export"
	"github.com/san-kum/peloton/internal/metrics"
	"github.com/san-kum/peloton/internal/storage"
	"github.com/san-kum/peloton/internal/store"
)

var (
	plotRider string
	plotField string
	withTrace bool
	outFile   string
	plotSVG   bool
)

var fields = map[string]func(metrics.Point) float64{
	"speed":    func(p metrics.Point) float64 { return p.SpeedKPH },
	"power":    func(p metrics.Point) float64 { return p.Power },
	"fuel":     func(p metrics.Point) float64 { return p.FuelPercent },
	"distance": func(p metrics.Point) float64 { return p.Distance },
}

var captions = map[string]string{
	"speed":    "speed (km/h)",
	"power":    "power (W)",
	"fuel":     "fuel (%)",
	"distance": "distance (km)",
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRACE\tTIME\tTICKS\tKM\tPASSED\tSUMMARY")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.1f\t%v\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Distance,
			run.Passed,
			run.Summary,
		)
	}
	return w.Flush()
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a rider's trace from a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	cmd.Flags().StringVar(&plotRider, "rider", "", "rider to plot (default every rider)")
	cmd.Flags().StringVar(&plotField, "field", "speed", "one of "+strings.Join(sortedKeys(fields), ", "))
	cmd.Flags().BoolVar(&plotSVG, "svg", false, "write every rider on one SVG chart instead")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "file for --svg (default <run_id>-<field>.svg, - for stdout)")
	return cmd
}

func plotRun(cmd *cobra.Command, args []string) error {
	field, ok := fields[plotField]
	if !ok {
		return fmt.Errorf("unknown field %q (available: %s)", plotField, strings.Join(sortedKeys(fields), ", "))
	}
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	points, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return fmt.Errorf("no data to plot")
	}

	riders := lo.Uniq(lo.Map(points, func(p metrics.Point, _ int) string { return p.Rider }))
	if plotRider != "" {
		if !lo.Contains(riders, plotRider) {
			return fmt.Errorf("no rider %q in run %s", plotRider, meta.ID)
		}
		riders = []string{plotRider}
	}

	if plotSVG {
		series := lo.SliceToMap(riders, func(name string) (string, []float64) {
			return name, metrics.Series(points, name, field)
		})
		svg := export.SeriesSVG(series, 900, 300, meta.Name+" "+captions[plotField])
		if svg == "" {
			return fmt.Errorf("no data to plot")
		}
		return writeOut(svg, meta.ID+"-"+plotField+".svg")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("race: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(points))
	for _, name := range riders {
		data := metrics.Series(points, name, field)
		if len(data) < 2 {
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" "+captions[plotField]),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := storage.New(dataDir).LoadResult(args[0])
			if err != nil {
				return err
			}
			if outFile != "" {
				return store.ExportJSON(outFile, res, withTrace)
			}
			return store.ExportJSONStdout(res, withTrace)
		},
	}
	cmd.Flags().BoolVar(&withTrace, "trace", false, "include the per-frame trace")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write to this file instead of stdout")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list preset races, riders and courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RACES\t"+strings.Join(config.ListPresets(), ", "))
			fmt.Fprintln(w, "RIDERS\t"+strings.Join(config.ListRiderPresets(), ", "))
			fmt.Fprintln(w, "COURSES\t"+strings.Join(config.ListCoursePresets(), ", "))
			return w.Flush()
		},
	}
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [preset]",
		Short: "write a preset race to a file to edit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRace(args)
			if err != nil {
				return err
			}
			path := outFile
			if path == "" {
				path = cfg.Name + ".yaml"
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "file to write (default <preset>.yaml)")
	return cmd
}
