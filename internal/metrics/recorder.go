package metrics

import (
	"github.com/samber/lo"

	"github.com/san-kum/peloton/internal/race"
)

// Point is one rider's state at one frame.
type Point struct {
	Tick        int     `json:"tick"`
	Rider       string  `json:"rider"`
	Distance    float64 `json:"distance_km"`
	SpeedKPH    float64 `json:"speed_kph"`
	Power       float64 `json:"power_w"`
	FuelPercent float64 `json:"fuel_pct"`
	Group       int     `json:"group"`
}

// Recorder is a race.Sink that keeps a trace of every rider at every frame.
type Recorder struct {
	points []Point
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Update(m *race.Manager) {
	for _, rd := range m.Riders() {
		p := Point{
			Tick:        m.Ticks(),
			Rider:       rd.Name(),
			Distance:    rd.Distance(),
			SpeedKPH:    rd.SpeedKPH(),
			Power:       rd.Power(),
			FuelPercent: rd.FuelPercent(),
		}
		if g := rd.Group(); g != nil {
			p.Group = g.ID()
		}
		r.points = append(r.points, p)
	}
}

func (r *Recorder) Points() []Point {
	return append([]Point(nil), r.points...)
}

func (r *Recorder) Reset() { r.points = nil }

// Series extracts one field of one rider's trace.
func Series(points []Point, rider string, field func(Point) float64) []float64 {
	return lo.FilterMap(points, func(p Point, _ int) (float64, bool) {
		return field(p), p.Rider == rider
	})
}
