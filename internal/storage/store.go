// Package storage archives experiment results on disk, one directory per
// run, for listing and plotting later.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/peloton/internal/experiment"
	"github.com/san-kum/peloton/internal/metrics"
	"github.com/san-kum/peloton/internal/race"
)

const (
	metadataFile  = "metadata.json"
	standingsFile = "standings.csv"
	traceFile     = "trace.csv"
)

var traceHeader = []string{"tick", "rider", "distance_km", "speed_kph", "power_w", "fuel_pct", "group"}

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string                        `json:"id"`
	Name      string                        `json:"name"`
	Timestamp time.Time                     `json:"timestamp"`
	Summary   string                        `json:"summary"`
	Passed    bool                          `json:"passed"`
	Ticks     int                           `json:"ticks"`
	Distance  float64                       `json:"distance_km"`
	Metrics   map[string]float64            `json:"metrics"`
	Riders    map[string]map[string]float64 `json:"riders"`
	Standings []race.Standing               `json:"standings"`
}

// Save writes the result into a new run directory and returns its id.
func (s *Store) Save(res *experiment.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	ts := s.now()
	runID, runDir, err := s.mkRunDir(res.Name, ts)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      res.Name,
		Timestamp: ts,
		Summary:   res.Summary,
		Passed:    res.Passed,
		Ticks:     res.Ticks,
		Distance:  res.Distance,
		Metrics:   res.Metrics,
		Riders:    res.Riders,
		Standings: res.Standings,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, standingsFile), standingsRows(res.Standings)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, traceFile), traceRows(res.Trace)); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) mkRunDir(name string, ts time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%d", name, ts.Unix())
	for i := 0; ; i++ {
		id := base
		if i > 0 {
			id = fmt.Sprintf("%s-%d", base, i)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Sync()
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

func standingsRows(st []race.Standing) [][]string {
	rows := [][]string{{"rank", "rider", "finished", "time_s", "distance_km", "gap_s", "avg_power_w", "fuel_pct"}}
	for _, s := range st {
		gap := ""
		if s.GapKnown {
			gap = ftoa(s.Gap)
		}
		rows = append(rows, []string{
			strconv.Itoa(s.Rank), s.Name, strconv.FormatBool(s.Finished),
			ftoa(s.Time), ftoa(s.Distance), gap, ftoa(s.AveragePower), ftoa(s.FuelPercent),
		})
	}
	return rows
}

func traceRows(points []metrics.Point) [][]string {
	rows := [][]string{traceHeader}
	for _, p := range points {
		rows = append(rows, []string{
			strconv.Itoa(p.Tick), p.Rider, ftoa(p.Distance), ftoa(p.SpeedKPH),
			ftoa(p.Power), ftoa(p.FuelPercent), strconv.Itoa(p.Group),
		})
	}
	return rows
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadResult rebuilds a saved run as an experiment result, trace included.
func (s *Store) LoadResult(runID string) (*experiment.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	trace, err := s.LoadTrace(runID)
	if err != nil {
		return nil, err
	}
	return &experiment.Result{
		Name:      meta.Name,
		Summary:   meta.Summary,
		Metrics:   meta.Metrics,
		Passed:    meta.Passed,
		Ticks:     meta.Ticks,
		Distance:  meta.Distance,
		Standings: meta.Standings,
		Riders:    meta.Riders,
		Trace:     trace,
	}, nil
}

// LoadTrace reads a run's trace back. Malformed rows are skipped.
func (s *Store) LoadTrace(runID string) ([]metrics.Point, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []metrics.Point{}, nil
	}

	points := make([]metrics.Point, 0, len(records)-1)
	for _, rec := range records[1:] {
		p, ok := parsePoint(rec)
		if ok {
			points = append(points, p)
		}
	}
	return points, nil
}

func parsePoint(rec []string) (metrics.Point, bool) {
	if len(rec) != len(traceHeader) {
		return metrics.Point{}, false
	}
	tick, err1 := strconv.Atoi(rec[0])
	group, err2 := strconv.Atoi(rec[6])
	var vals [4]float64
	for i := range vals {
		v, err := strconv.ParseFloat(rec[2+i], 64)
		if err != nil {
			return metrics.Point{}, false
		}
		vals[i] = v
	}
	if err1 != nil || err2 != nil {
		return metrics.Point{}, false
	}
	return metrics.Point{
		Tick: tick, Rider: rec[1], Distance: vals[0], SpeedKPH: vals[1],
		Power: vals[2], FuelPercent: vals[3], Group: group,
	}, true
}
