package metrics

import "math"

// AveragePower is the time-weighted mean power.
type AveragePower struct {
	name    string
	work    float64
	seconds float64
}

func NewAveragePower() *AveragePower {
	return &AveragePower{name: "avg_power"}
}

func (a *AveragePower) Name() string { return a.name }

func (a *AveragePower) Observe(s Sample) {
	a.work += s.Power * s.Interval
	a.seconds += s.Interval
}

func (a *AveragePower) Value() float64 {
	if a.seconds == 0 {
		return 0
	}
	return a.work / a.seconds
}

func (a *AveragePower) Reset() {
	a.work = 0
	a.seconds = 0
}

type PeakPower struct {
	name string
	peak float64
}

func NewPeakPower() *PeakPower {
	return &PeakPower{name: "peak_power"}
}

func (p *PeakPower) Name() string     { return p.name }
func (p *PeakPower) Observe(s Sample) { p.peak = math.Max(p.peak, s.Power) }
func (p *PeakPower) Value() float64   { return p.peak }
func (p *PeakPower) Reset()           { p.peak = 0 }
