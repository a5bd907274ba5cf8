package sim

import (
	"math"
	"sort"

	"github.com/san-kum/peloton/internal/course"
)

// PowerTable holds the one-tick distance for every integer watt from zero to
// the rider's maximum power at a fixed gradient. Distances are increasing in
// power, so the inverse lookup is a binary search.
type PowerTable struct {
	gradient float64
	dist     []float64
}

func newPowerTable(m *PowerModel, g float64) *PowerTable {
	n := int(math.Ceil(m.maxPower)) + 1
	t := &PowerTable{gradient: g, dist: make([]float64, n)}
	for w := 0; w < n; w++ {
		t.dist[w] = m.DistanceFromPower(float64(w), g)
	}
	return t
}

func (t *PowerTable) Gradient() float64 { return t.gradient }
func (t *PowerTable) Len() int          { return len(t.dist) }

// Distance returns the tabulated distance for an integer wattage, clamped to
// the table range.
func (t *PowerTable) Distance(watts int) float64 {
	if watts < 0 {
		watts = 0
	}
	if watts >= len(t.dist) {
		watts = len(t.dist) - 1
	}
	return t.dist[watts]
}

// Power returns the lowest integer wattage that covers at least d in one
// tick, or the table maximum when no wattage does.
func (t *PowerTable) Power(d float64) float64 {
	i := sort.SearchFloat64s(t.dist, d)
	if i >= len(t.dist) {
		i = len(t.dist) - 1
	}
	return float64(i)
}

// PowerForDistance is the inverse of DistanceFromPower through the table of
// the gradient's bucket.
func (m *PowerModel) PowerForDistance(d, g float64) (float64, error) {
	b := course.Bucket(g)
	t, ok := m.tables[b]
	if !ok {
		return 0, &LookupError{Bucket: b}
	}
	return t.Power(d), nil
}
