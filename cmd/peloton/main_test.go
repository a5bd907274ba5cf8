package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/peloton/internal/automation"
	"github.com/san-kum/peloton/internal/config"
	"github.com/san-kum/peloton/internal/experiment"
	"github.com/san-kum/peloton/internal/race"
)

func TestLoadRace(t *testing.T) {
	raceFile = ""
	cfg, err := loadRace([]string{"flat-tt"})
	require.NoError(t, err)
	assert.Equal(t, "flat-tt", cfg.Name)

	_, err = loadRace([]string{"nope"})
	assert.ErrorIs(t, err, config.ErrUnknownPreset)

	_, err = loadRace(nil)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "race.yaml")
	require.NoError(t, config.Save(path, config.GetPreset("descent")))
	raceFile = path
	t.Cleanup(func() { raceFile = "" })
	cfg, err = loadRace([]string{"flat-tt"})
	require.NoError(t, err)
	assert.Equal(t, "descent", cfg.Name, "a race file wins over the preset argument")
}

func TestBindFlagsFromEnv(t *testing.T) {
	t.Setenv("PELOTON_LOG_LEVEL", "debug")
	t.Setenv("PELOTON_STRIDE", "40")

	var level string
	var n int
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().StringVar(&level, "log-level", "warn", "")
	cmd.Flags().IntVar(&n, "stride", 0, "")
	require.NoError(t, cmd.Flags().Parse([]string{"--stride", "5"}))

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	bindFlags(cmd, v)

	assert.Equal(t, "debug", level)
	assert.Equal(t, 5, n, "flags on the command line beat the environment")
}

func TestPrintResult(t *testing.T) {
	exp := experiment.New(config.GetPreset("flat-tt"))
	require.NoError(t, exp.Setup())
	res, err := exp.Run(t.Context(), race.Kilometers(2))
	require.NoError(t, err)

	var buf bytes.Buffer
	printResult(&buf, res)
	out := buf.String()
	assert.Contains(t, out, "flat-tt: ")
	assert.Contains(t, out, "RIDER")
	assert.Contains(t, out, "paced")
	assert.Contains(t, out, "full-gas")
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"run", "live", "scenario", "pace", "script", "profile", "list", "plot", "export", "presets", "init"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestPrintApplied(t *testing.T) {
	var buf bytes.Buffer
	printApplied(&buf, nil)
	assert.Equal(t, "no events fired\n", buf.String())

	buf.Reset()
	printApplied(&buf, []automation.Applied{{Tick: 3725, Distance: 12.5, Action: "drop", Riders: []string{"chase1"}}})
	assert.Contains(t, buf.String(), "1:02:05")
	assert.Contains(t, buf.String(), "12.50")
	assert.Contains(t, buf.String(), "[chase1]")
}

func TestProfileCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.svg")
	root := newRootCmd()
	root.SetArgs([]string{"profile", "hilly-paceline", "-o", path, "--marks", "5"})
	t.Cleanup(func() { outFile = "" })
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
	assert.Contains(t, string(data), "95.0 km")
}
