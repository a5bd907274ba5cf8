package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/san-kum/peloton/internal/config"
	"github.com/san-kum/peloton/internal/log"
	"github.com/san-kum/peloton/internal/viz"
)

const envPrefix = "PELOTON"

var (
	cfgFile  string
	dataDir  string
	logLevel string
	theme    string
	// race file, used instead of a preset
	raceFile string
)

// main is the entry point for the peloton CLI. With no subcommand it opens
// the interactive race menu.
func main() {
	rootCmd := newRootCmd()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "peloton",
		Short:        "tick-based bike race simulator",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := log.New(logLevel)
			if err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			log.SetDefault(l)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(viz.WithTheme(theme))
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default is $HOME/.peloton.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".peloton", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", viz.ThemeClassic.Name, "live view theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	rootCmd.AddCommand(
		newRunCmd(),
		newLiveCmd(),
		newScenarioCmd(),
		newPaceCmd(),
		newScriptCmd(),
		newProfileCmd(),
		newListCmd(),
		newPlotCmd(),
		newExportCmd(),
		newPresetsCmd(),
		newInitCmd(),
	)

	cobra.OnInitialize(func() { initConfig(rootCmd) })
	return rootCmd
}

// initConfig reads in the settings file and PELOTON_* environment
// variables, and applies them to every flag not set on the command line.
func initConfig(rootCmd *cobra.Command) {
	v := viper.GetViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".peloton")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	}

	bindFlags(rootCmd, v)
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, v)
	}
}

// bindFlags binds each cobra flag to its settings key and environment
// variable, e.g. --log-level to PELOTON_LOG_LEVEL.
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if strings.Contains(f.Name, "-") {
			env := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, env)); err != nil {
				fmt.Fprintf(os.Stderr, "could not bind env var %s: %v\n", f.Name, err)
			}
		}
		if !f.Changed && v.IsSet(f.Name) {
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
				fmt.Fprintf(os.Stderr, "could not set flag value for %s: %v\n", f.Name, err)
			}
		}
	})
}

// loadRace resolves the race to run: the --file race file when given,
// otherwise the preset named by the first argument.
func loadRace(args []string) (*config.Config, error) {
	if raceFile != "" {
		return config.Load(raceFile)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("name a preset (%s) or pass --file", strings.Join(config.ListPresets(), ", "))
	}
	cfg := config.GetPreset(args[0])
	if cfg == nil {
		return nil, fmt.Errorf("%w: %s (available: %s)", config.ErrUnknownPreset, args[0], strings.Join(config.ListPresets(), ", "))
	}
	return cfg, nil
}
