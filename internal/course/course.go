// Package course models the road a race is run on: an ordered list of
// (length, gradient) segments with distances in kilometres and gradients as
// rise over run.
package course

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrInvalidCourse = errors.New("course: invalid course")

// MaxGradient bounds a segment's absolute gradient.
const MaxGradient = 0.5

type Segment struct {
	Length   float64 `yaml:"length" json:"length"`
	Gradient float64 `yaml:"gradient" json:"gradient"`
}

// Course is immutable once built and safe to share between riders.
type Course struct {
	segments []Segment
	ends     []float64
	total    float64
}

func New(segments []Segment) (*Course, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: no segments", ErrInvalidCourse)
	}

	c := &Course{
		segments: make([]Segment, len(segments)),
		ends:     make([]float64, len(segments)),
	}
	for i, s := range segments {
		if !(s.Length > 0) || math.IsInf(s.Length, 0) {
			return nil, fmt.Errorf("%w: segment %d has length %v", ErrInvalidCourse, i, s.Length)
		}
		if math.IsNaN(s.Gradient) || math.Abs(s.Gradient) > MaxGradient {
			return nil, fmt.Errorf("%w: segment %d has gradient %v", ErrInvalidCourse, i, s.Gradient)
		}
		c.segments[i] = s
		c.total += s.Length
		c.ends[i] = c.total
	}
	return c, nil
}

// MustNew is New for literal courses known to be valid.
func MustNew(segments ...Segment) *Course {
	c, err := New(segments)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Course) TotalDistance() float64 { return c.total }

// GradientAt returns the gradient of the segment containing distance d.
// A distance on a boundary belongs to the segment it ends. Outside the
// course the road is flat.
func (c *Course) GradientAt(d float64) float64 {
	if d < 0 || d > c.total {
		return 0
	}
	i := sort.SearchFloat64s(c.ends, d)
	if i >= len(c.segments) {
		return 0
	}
	return c.segments[i].Gradient
}

func (c *Course) Segments() []Segment {
	out := make([]Segment, len(c.segments))
	copy(out, c.segments)
	return out
}

// Bucket maps a gradient onto its integer-percent table key.
func Bucket(gradient float64) int {
	return int(math.Round(gradient * 100))
}

// Buckets lists every gradient bucket the course can produce, including the
// flat bucket used past the finish, in ascending order.
func (c *Course) Buckets() []int {
	seen := map[int]bool{0: true}
	out := []int{0}
	for _, s := range c.segments {
		b := Bucket(s.Gradient)
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	sort.Ints(out)
	return out
}

// Elevation returns the height in metres gained from the start to d.
func (c *Course) Elevation(d float64) float64 {
	h, start := 0.0, 0.0
	for _, s := range c.segments {
		if d <= start {
			break
		}
		run := math.Min(s.Length, d-start)
		h += run * 1000 * s.Gradient
		start += s.Length
	}
	return h
}
