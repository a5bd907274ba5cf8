package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/peloton/internal/config"
	"github.com/san-kum/peloton/internal/experiment"
	"github.com/san-kum/peloton/internal/log"
	"github.com/san-kum/peloton/internal/optim"
	"github.com/san-kum/peloton/internal/race"
	"github.com/san-kum/peloton/internal/storage"
	"github.com/san-kum/peloton/internal/tui"
	"github.com/san-kum/peloton/internal/viz"
)

var (
	stopAt     float64
	live       bool
	frameRate  int
	delay      time.Duration
	stride     int
	noSave     bool
	all        bool
	parallel   int
	riderName  string
	courseName string
	minWatts   float64
	maxWatts   float64
	stepWatts  float64
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a race to the finish and save the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRace,
	}
	cmd.Flags().StringVarP(&raceFile, "file", "f", "", "race file (yaml)")
	cmd.Flags().Float64Var(&stopAt, "to", 0, "stop once the leader reaches this km; negative counts back from the finish")
	cmd.Flags().BoolVar(&live, "live", false, "redraw the race in the terminal while it runs")
	cmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for --live")
	cmd.Flags().DurationVar(&delay, "delay", 0, "wall-clock time per tick for --live (default from the race file)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not archive the result")
	return cmd
}

func runRace(cmd *cobra.Command, args []string) error {
	cfg, err := loadRace(args)
	if err != nil {
		return err
	}
	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return err
	}

	var target race.Target
	if stopAt != 0 {
		target = race.Kilometers(stopAt)
	}

	fmt.Printf("running %s...\n", cfg.Name)
	start := time.Now()
	var res *experiment.Result
	if live {
		res, err = runLive(cmd, cfg, exp)
	} else {
		res, err = exp.Run(cmd.Context(), target)
	}
	if err != nil {
		return err
	}
	log.Default().Info("race done", log.String("race", cfg.Name), log.Duration("elapsed", time.Since(start)))

	fmt.Printf("completed in %v\n", time.Since(start).Round(time.Millisecond))
	printResult(os.Stdout, res)
	return save(res)
}

// runLive drives the race in real time, drawing it with the plain terminal
// renderer.
func runLive(cmd *cobra.Command, cfg *config.Config, exp *experiment.Experiment) (*experiment.Result, error) {
	d := cfg.Delay
	if cmd.Flags().Changed("delay") {
		d = delay
	}
	r := tui.NewLiveRenderer(os.Stdout, cfg.Name, frameRate)
	r.Start()
	defer r.Stop()
	if err := exp.Manager().Run(cmd.Context(), d, r); err != nil {
		return nil, err
	}
	return exp.Result(), nil
}

func save(res *experiment.Result) error {
	if noSave {
		return nil
	}
	runID, err := storage.New(dataDir).Save(res)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func printResult(out io.Writer, res *experiment.Result) {
	fmt.Fprintf(out, "%s: %s\n\n", res.Name, res.Summary)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tRIDER\tTIME\tKM\tGAP\tAVG W\tFUEL")
	for _, s := range res.Standings {
		t := "-"
		if s.Finished {
			t = fmt.Sprintf("%.1fs", s.Time)
		}
		gap := "-"
		if s.GapKnown {
			gap = fmt.Sprintf("+%.1fs", s.Gap)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\t%.0f\t%.0f%%\n", s.Rank, s.Name, t, s.Distance, gap, s.AveragePower, s.FuelPercent)
	}
	w.Flush()
	if len(res.Metrics) > 0 {
		fmt.Fprintln(out, "\nmetrics:")
		for _, name := range sortedKeys(res.Metrics) {
			fmt.Fprintf(out, "  %s: %.3f\n", name, res.Metrics[name])
		}
	}
}

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "watch and steer a race full screen",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRace(args)
			if err != nil {
				return err
			}
			opts := []viz.Option{viz.WithTheme(theme), viz.WithDelay(cfg.Delay), viz.WithStride(stride)}
			if cmd.Flags().Changed("delay") {
				opts = append(opts, viz.WithDelay(delay))
			}
			return viz.RunLive(func() (*race.Manager, error) { return config.Build(cfg) }, cfg.Name, opts...)
		},
	}
	cmd.Flags().StringVarP(&raceFile, "file", "f", "", "race file (yaml)")
	cmd.Flags().DurationVar(&delay, "delay", 0, "wall-clock time per frame (default from the race file)")
	cmd.Flags().IntVar(&stride, "stride", 0, "race ticks per frame (default the race frame interval)")
	return cmd
}

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario [name...]",
		Short: "run self-checking showcase scenarios",
		RunE:  runScenarios,
	}
	cmd.Flags().BoolVar(&all, "all", false, "run every scenario")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "scenarios run at once (default every CPU)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not archive the results")
	return cmd
}

func runScenarios(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	if !all && len(args) == 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SCENARIO\tDESCRIPTION")
		for _, name := range reg.List() {
			s, _ := reg.Get(name)
			fmt.Fprintf(w, "%s\t%s\n", s.Name, s.Description)
		}
		return w.Flush()
	}

	var results []*experiment.Result
	if all {
		res, err := reg.RunAll(cmd.Context(), parallel)
		if err != nil {
			return err
		}
		results = res
	} else {
		for _, name := range args {
			s, err := reg.Get(name)
			if err != nil {
				return err
			}
			res, err := s.Run(cmd.Context())
			if err != nil {
				return err
			}
			results = append(results, res)
		}
	}

	failed := 0
	for _, res := range results {
		status := "PASS"
		if !res.Passed {
			status = "FAIL"
			failed++
		}
		fmt.Printf("[%s] ", status)
		printResult(os.Stdout, res)
		if err := save(res); err != nil {
			return err
		}
		fmt.Println()
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
	}
	return nil
}

func newPaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pace",
		Short: "find the fastest constant wattage that keeps a rider out of the redzone",
		Args:  cobra.NoArgs,
		RunE:  runPace,
	}
	cmd.Flags().StringVar(&riderName, "rider", "tt", "rider preset")
	cmd.Flags().StringVar(&courseName, "course", config.DefaultCourse, "course preset")
	cmd.Flags().Float64Var(&minWatts, "min", 300, "lowest wattage")
	cmd.Flags().Float64Var(&maxWatts, "max", 600, "highest wattage")
	cmd.Flags().Float64Var(&stepWatts, "step", 10, "wattage step")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "races run at once (default every CPU)")
	return cmd
}

func runPace(cmd *cobra.Command, args []string) error {
	rc, err := config.RiderPreset(riderName, riderName)
	if err != nil {
		return err
	}
	crs, err := config.CoursePreset(courseName)
	if err != nil {
		return err
	}
	search := optim.PacingSearch{Course: crs, Rider: rc, Min: minWatts, Max: maxWatts, Step: stepWatts, Limit: parallel}
	best, cands, err := search.Search(cmd.Context())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WATTS\tFINISH\tMIN FUEL\tEXHAUSTED")
	for _, c := range cands {
		fmt.Fprintf(w, "%.0f\t%.1fs\t%.1f%%\t%v\n", c.Watts, c.FinishTime, c.MinFuelPercent, c.Exhausted)
	}
	w.Flush()
	if err != nil {
		return err
	}
	fmt.Printf("\nbest: %.0f W, %.1fs on %s\n", best.Watts, best.FinishTime, courseName)
	return nil
}
