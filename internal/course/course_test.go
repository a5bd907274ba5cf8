package course

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hilly() *Course {
	return MustNew(
		Segment{20, 0}, Segment{5, 0.08},
		Segment{20, 0}, Segment{5, 0.08},
		Segment{20, 0}, Segment{5, 0.08},
		Segment{20, 0},
	)
}

func TestGradientAt(t *testing.T) {
	c := hilly()
	assert.InDelta(t, 95.0, c.TotalDistance(), 1e-9)

	tests := []struct {
		distance float64
		expected float64
	}{
		{0, 0},
		{10, 0},
		{20, 0},
		{20.001, 0.08},
		{25, 0.08},
		{25.5, 0},
		{72, 0.08},
		{95, 0},
		{120, 0},
		{-1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, c.GradientAt(tt.distance), "distance %.3f", tt.distance)
	}
}

func TestBuckets(t *testing.T) {
	c := MustNew(Segment{1, -0.12}, Segment{1, 0.034}, Segment{1, 0.031}, Segment{1, 0.08})
	assert.Equal(t, []int{-12, 0, 3, 8}, c.Buckets())
	assert.Equal(t, 3, Bucket(0.034))
	assert.Equal(t, -12, Bucket(-0.1249))
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
	}{
		{"empty", nil},
		{"zero length", []Segment{{0, 0}}},
		{"negative length", []Segment{{5, 0}, {-1, 0}}},
		{"nan gradient", []Segment{{1, math.NaN()}}},
		{"wall", []Segment{{1, 0.9}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.segments)
			assert.ErrorIs(t, err, ErrInvalidCourse)
		})
	}
}

func TestSegmentsIsCopy(t *testing.T) {
	c := hilly()
	segs := c.Segments()
	segs[1].Gradient = 0.5
	assert.Equal(t, 0.08, c.GradientAt(22))
}

func TestElevation(t *testing.T) {
	c := hilly()
	assert.InDelta(t, 0, c.Elevation(20), 1e-9)
	assert.InDelta(t, 400, c.Elevation(25), 1e-9)
	assert.InDelta(t, 1200, c.Elevation(95), 1e-9)
}

func TestFromElevation(t *testing.T) {
	c, err := FromElevation([]Point{{0, 0}, {1, 50}, {2, 50}}, 0.5)
	require.NoError(t, err)

	assert.Equal(t, []Segment{{1, 0.05}, {1, 0}}, c.Segments())
	assert.InDelta(t, 2.0, c.TotalDistance(), 1e-9)
	assert.InDelta(t, 50, c.Elevation(2), 1e-9)
}

func TestFromElevationInvalid(t *testing.T) {
	_, err := FromElevation([]Point{{0, 0}}, 0.5)
	assert.ErrorIs(t, err, ErrInvalidCourse)

	_, err = FromElevation([]Point{{0, 0}, {0, 10}}, 0.5)
	assert.ErrorIs(t, err, ErrInvalidCourse)

	_, err = FromElevation([]Point{{0, 0}, {1, 10}}, 0)
	assert.ErrorIs(t, err, ErrInvalidCourse)
}
