package experiment

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/san-kum/peloton/internal/config"
	"github.com/san-kum/peloton/internal/race"
	"github.com/san-kum/peloton/internal/sim"
)

// SprintRelease is how far from the line the bunch opens up in the sprint
// scenarios.
const SprintRelease = race.Meters(-200)

func builtin() []Scenario {
	return []Scenario{
		{
			Name:        "flat-tt",
			Description: "15 km flat time trial: 470 W paced effort against full gas",
			run:         flatTT,
		},
		{
			Name:        "hilly-paceline",
			Description: "95 km with three 8% climbs: five riders in a paceline against five alone at 420 W",
			run:         hillyPaceline,
		},
		{
			Name:        "breakaway",
			Description: "solo breakaway at 340 W against a four-rider chase, checked at 70 km",
			run:         breakaway,
		},
		{
			Name:        "descent",
			Description: "coasting down 15 km at -12% against 15 km flat at full gas",
			run:         descent,
		},
		{
			Name:        "sprint-finish",
			Description: "mixed bunch rides 20 flat km at 320 W and sprints the last 200 m",
			run:         func(ctx context.Context) (*Result, error) { return sprint(ctx, "bunch-sprint", "sprinter") },
		},
		{
			Name:        "summit-finish",
			Description: "the same bunch on a finish that kicks up to 4%",
			run:         func(ctx context.Context) (*Result, error) { return sprint(ctx, "summit-finish", "climber") },
		},
	}
}

func start(name string) (*Experiment, error) {
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("%w: race %q", config.ErrUnknownPreset, name)
	}
	e := New(cfg)
	if err := e.Setup(); err != nil {
		return nil, err
	}
	return e, nil
}

func riderNamed(m *race.Manager, name string) *sim.Rider {
	r, _ := m.Rider(name)
	return r
}

func riders(m *race.Manager, prefix string) []*sim.Rider {
	return lo.Filter(m.Riders(), func(r *sim.Rider, _ int) bool {
		return strings.HasPrefix(r.Name(), prefix)
	})
}

func meanFinish(rs []*sim.Rider) float64 {
	return lo.SumBy(rs, func(r *sim.Rider) float64 { return r.FinishTime() }) / float64(len(rs))
}

func flatTT(ctx context.Context) (*Result, error) {
	e, err := start("flat-tt")
	if err != nil {
		return nil, err
	}
	res, err := e.Run(ctx, nil)
	if err != nil {
		return nil, err
	}

	m := e.Manager()
	paced, gas := riderNamed(m, "paced"), riderNamed(m, "full-gas")
	res.Metrics["paced_s"] = paced.FinishTime()
	res.Metrics["full_gas_s"] = gas.FinishTime()
	res.Metrics["margin_s"] = gas.FinishTime() - paced.FinishTime()
	res.Metrics["full_gas_redzone_s"] = res.Riders["full-gas"]["redzone_s"]
	res.Passed = paced.FinishTime() < gas.FinishTime()
	res.Summary = fmt.Sprintf("paced %s, full gas %s", clock(paced.FinishTime()), clock(gas.FinishTime()))
	return res, nil
}

func hillyPaceline(ctx context.Context) (*Result, error) {
	e, err := start("hilly-paceline")
	if err != nil {
		return nil, err
	}
	res, err := e.Run(ctx, nil)
	if err != nil {
		return nil, err
	}

	m := e.Manager()
	group, solo := meanFinish(riders(m, "pace")), meanFinish(riders(m, "solo"))
	res.Metrics["paceline_mean_s"] = group
	res.Metrics["solo_mean_s"] = solo
	res.Metrics["saving_s"] = solo - group
	res.Passed = group < solo
	res.Summary = fmt.Sprintf("paceline %s, solo %s on average", clock(group), clock(solo))
	return res, nil
}

func breakaway(ctx context.Context) (*Result, error) {
	e, err := start("breakaway")
	if err != nil {
		return nil, err
	}
	res, err := e.Run(ctx, race.Kilometers(70))
	if err != nil {
		return nil, err
	}

	m := e.Manager()
	solo := riderNamed(m, "break")
	chase := riders(m, "chase")
	far := lo.MaxBy(chase, func(a, b *sim.Rider) bool { return a.Distance() > b.Distance() })
	near := lo.MinBy(chase, func(a, b *sim.Rider) bool { return a.Distance() < b.Distance() })
	spread := (far.Distance() - near.Distance()) * 1000
	lowest := lo.MinBy(chase, func(a, b *sim.Rider) bool { return a.FuelPercent() < b.FuelPercent() })

	res.Metrics["chase_spread_m"] = spread
	res.Metrics["chase_min_fuel_pct"] = lowest.FuelPercent()
	res.Metrics["break_fuel_pct"] = solo.FuelPercent()
	res.Metrics["gap_m"] = (solo.Distance() - far.Distance()) * 1000
	res.Passed = spread < 40 && lowest.FuelPercent() > solo.FuelPercent()
	res.Summary = fmt.Sprintf("at 70 km the chase spans %.1f m, break on %.1f%% fuel, chase on at least %.1f%%",
		spread, solo.FuelPercent(), lowest.FuelPercent())
	return res, nil
}

func descent(ctx context.Context) (*Result, error) {
	down, err := start("descent")
	if err != nil {
		return nil, err
	}
	res, err := down.Run(ctx, nil)
	if err != nil {
		return nil, err
	}

	flatCfg := config.GetPreset("descent")
	flatCfg.Name = "descent-reference"
	flatCfg.Course = config.CourseConfig{Preset: "flat15"}
	flatCfg.Riders[0].Effort = 1
	level := New(flatCfg)
	if err := level.Setup(); err != nil {
		return nil, err
	}
	if _, err := level.Run(ctx, nil); err != nil {
		return nil, err
	}

	coaster := riderNamed(down.Manager(), "coaster")
	flatOut := riderNamed(level.Manager(), "coaster")
	saved := (flatOut.FinishTime() - coaster.FinishTime()) / 60

	res.Metrics["descent_s"] = coaster.FinishTime()
	res.Metrics["flat_s"] = flatOut.FinishTime()
	res.Metrics["saved_min"] = saved
	res.Metrics["descent_avg_w"] = coaster.AveragePower()
	res.Metrics["flat_avg_w"] = flatOut.AveragePower()
	res.Passed = saved >= 8 && saved <= 14 &&
		coaster.AveragePower() < 20 &&
		flatOut.AveragePower() >= 250 && flatOut.AveragePower() <= 400
	res.Summary = fmt.Sprintf("descent %.1f min faster at %.0f W against %.0f W",
		saved, coaster.AveragePower(), flatOut.AveragePower())
	return res, nil
}

// sprint rides the bunch to SprintRelease, breaks up every group and sends
// every rider to the line at full effort.
func sprint(ctx context.Context, preset, favourite string) (*Result, error) {
	e, err := start(preset)
	if err != nil {
		return nil, err
	}
	if _, err := e.Run(ctx, SprintRelease); err != nil {
		return nil, err
	}

	m := e.Manager()
	together := len(m.Groups()) == 1 && m.Groups()[0].Size() == len(m.Riders())
	for _, g := range m.Groups() {
		m.DisbandGroup(g)
	}
	for _, r := range m.Riders() {
		r.SetCooperating(true)
		r.SetEffort(sim.Fraction(1))
	}

	res, err := e.Run(ctx, nil)
	if err != nil {
		return nil, err
	}
	winner, second := res.Standings[0], res.Standings[1]
	res.Metrics["winning_margin_s"] = second.Gap
	res.Metrics["bunch_together"] = lo.Ternary(together, 1.0, 0.0)
	res.Passed = together && winner.Name == favourite
	res.Summary = fmt.Sprintf("%s wins by %.2f s from %s", winner.Name, second.Gap, second.Name)
	return res, nil
}
