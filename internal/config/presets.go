package config

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/san-kum/peloton/internal/course"
	"github.com/san-kum/peloton/internal/sim"
)

// AnchorDurations are the durations, in seconds, of the preset power curves.
var AnchorDurations = []float64{2, 5, 60, 300, 1200, 2700, 10800}

func presetCurve(powers ...float64) []sim.Anchor {
	return lo.Map(powers, func(p float64, i int) sim.Anchor {
		return sim.Anchor{Duration: AnchorDurations[i], Power: p}
	})
}

var Riders = map[string]sim.RiderConfig{
	"tt": {
		Weight: 70, FlatAbility: 0.88, ClimbingAbility: 0.2, DescendingAbility: 0.5,
		Acceleration: 40, Curve: presetCurve(1200, 1000, 630, 535, 460, 400, 330),
	},
	"sprinter": {
		Weight: 90, FlatAbility: 0.78, ClimbingAbility: 0.1, DescendingAbility: 0.7,
		Acceleration: 800, Curve: presetCurve(1600, 1440, 690, 456, 384, 320, 300),
	},
	"climber": {
		Weight: 60, FlatAbility: 0.72, ClimbingAbility: 1.6, DescendingAbility: 0.6,
		Acceleration: 30, Curve: presetCurve(1100, 900, 555, 455, 415, 390, 330),
	},
}

func hilly95() []course.Segment {
	segs := []course.Segment{{Length: 20}}
	for range 3 {
		segs = append(segs, course.Segment{Length: 5, Gradient: 0.08}, course.Segment{Length: 20})
	}
	return segs
}

var Courses = map[string][]course.Segment{
	"flat15":    {{Length: 15}},
	"hilly95":   hilly95(),
	"descent15": {{Length: 15, Gradient: -0.12}},
	"sprint20":  {{Length: 20}},
	"summit20":  {{Length: 17}, {Length: 2, Gradient: 0.02}, {Length: 1, Gradient: 0.04}},
}

// RiderPreset returns a copy of the named rider preset called name.
func RiderPreset(preset, name string) (sim.RiderConfig, error) {
	rc, ok := Riders[preset]
	if !ok {
		return sim.RiderConfig{}, fmt.Errorf("%w: rider %q", ErrUnknownPreset, preset)
	}
	rc.Name = name
	rc.Curve = append([]sim.Anchor(nil), rc.Curve...)
	return rc, nil
}

func CoursePreset(name string) (*course.Course, error) {
	segs, ok := Courses[name]
	if !ok {
		return nil, fmt.Errorf("%w: course %q", ErrUnknownPreset, name)
	}
	return course.New(segs)
}

// Races are complete race files, one per showcase scenario.
var Races = map[string]*Config{
	"flat-tt": {
		Name:   "flat-tt",
		Course: CourseConfig{Preset: "flat15"},
		Riders: []RiderEntry{
			{RiderConfig: sim.RiderConfig{Name: "paced"}, Preset: "tt", Watts: 470},
			{RiderConfig: sim.RiderConfig{Name: "full-gas", Effort: 1}, Preset: "tt"},
		},
	},
	"hilly-paceline": {
		Name:   "hilly-paceline",
		Course: CourseConfig{Preset: "hilly95"},
		Riders: append(
			entries("pace", "tt", 5, 0, false),
			entries("solo", "tt", 5, 420, true)...,
		),
		Groups: []GroupConfig{{Kind: "paceline", Effort: 420, Members: names("pace", 5)}},
	},
	"breakaway": {
		Name:   "breakaway",
		Course: CourseConfig{Preset: "hilly95"},
		Riders: append(
			[]RiderEntry{{RiderConfig: sim.RiderConfig{Name: "break"}, Preset: "tt", Watts: 340}},
			entries("chase", "tt", 4, 0, false)...,
		),
		Groups: []GroupConfig{{Kind: "paceline", Effort: 340, Members: names("chase", 4)}},
	},
	"descent": {
		Name:   "descent",
		Course: CourseConfig{Preset: "descent15"},
		Riders: []RiderEntry{{RiderConfig: sim.RiderConfig{Name: "coaster", Effort: 0.01}, Preset: "sprinter"}},
	},
	"bunch-sprint": {
		Name:    "bunch-sprint",
		Course:  CourseConfig{Preset: "sprint20"},
		Peloton: 320,
		Riders:  bunch(),
	},
	"summit-finish": {
		Name:    "summit-finish",
		Course:  CourseConfig{Preset: "summit20"},
		Peloton: 320,
		Riders:  bunch(),
	},
}

func bunch() []RiderEntry {
	return []RiderEntry{
		{RiderConfig: sim.RiderConfig{Name: "sprinter"}, Preset: "sprinter"},
		{RiderConfig: sim.RiderConfig{Name: "rouleur"}, Preset: "tt"},
		{RiderConfig: sim.RiderConfig{Name: "climber"}, Preset: "climber"},
		{RiderConfig: sim.RiderConfig{Name: "domestique", Passive: true}, Preset: "tt"},
	}
}

func names(prefix string, n int) []string {
	return lo.Times(n, func(i int) string { return fmt.Sprintf("%s%d", prefix, i+1) })
}

func entries(prefix, preset string, n int, watts float64, passive bool) []RiderEntry {
	return lo.Map(names(prefix, n), func(name string, _ int) RiderEntry {
		return RiderEntry{
			RiderConfig: sim.RiderConfig{Name: name, Passive: passive},
			Preset:      preset,
			Watts:       watts,
		}
	})
}

// GetPreset returns a copy of the named race with defaults filled in, or
// nil.
func GetPreset(name string) *Config {
	p, ok := Races[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Name = p.Name
	cfg.Course = p.Course
	cfg.Riders = append([]RiderEntry(nil), p.Riders...)
	cfg.Groups = append([]GroupConfig(nil), p.Groups...)
	cfg.Peloton = p.Peloton
	return cfg
}

func ListPresets() []string {
	out := lo.Keys(Races)
	sort.Strings(out)
	return out
}

func ListRiderPresets() []string {
	out := lo.Keys(Riders)
	sort.Strings(out)
	return out
}

func ListCoursePresets() []string {
	out := lo.Keys(Courses)
	sort.Strings(out)
	return out
}
