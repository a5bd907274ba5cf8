package course

import (
	"fmt"
	"math"
)

// Point is one sample of an elevation profile.
type Point struct {
	Distance  float64 `yaml:"distance" json:"distance"`   // km from the start
	Elevation float64 `yaml:"elevation" json:"elevation"` // metres
}

// FromElevation resamples a profile every step kilometres and converts it to
// segments. Adjacent samples with the same gradient are merged.
func FromElevation(points []Point, step float64) (*Course, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: elevation profile needs at least two points", ErrInvalidCourse)
	}
	if !(step > 0) {
		return nil, fmt.Errorf("%w: resample step %v", ErrInvalidCourse, step)
	}
	for i := 1; i < len(points); i++ {
		if points[i].Distance <= points[i-1].Distance {
			return nil, fmt.Errorf("%w: profile distance not increasing at point %d", ErrInvalidCourse, i)
		}
	}

	start, end := points[0].Distance, points[len(points)-1].Distance
	var segments []Segment
	prevD, prevH := start, points[0].Elevation
	j := 0
	for d := start + step; prevD < end; d += step {
		if d > end || end-d < step*1e-6 {
			d = end
		}
		for j < len(points)-2 && points[j+1].Distance < d {
			j++
		}
		h := interpolate(points[j], points[j+1], d)

		length := d - prevD
		grad := (h - prevH) / (length * 1000)
		grad = math.Round(grad*1e4) / 1e4
		if n := len(segments); n > 0 && segments[n-1].Gradient == grad {
			segments[n-1].Length += length
		} else {
			segments = append(segments, Segment{Length: length, Gradient: grad})
		}
		prevD, prevH = d, h
	}
	return New(segments)
}

func interpolate(a, b Point, d float64) float64 {
	if d <= a.Distance {
		return a.Elevation
	}
	if d >= b.Distance {
		return b.Elevation
	}
	t := (d - a.Distance) / (b.Distance - a.Distance)
	return a.Elevation + t*(b.Elevation-a.Elevation)
}
