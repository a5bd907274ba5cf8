package physics

import (
	"errors"
	"math"
	"sort"
)

var ErrInterpolation = errors.New("physics: interpolation needs at least two strictly increasing knots")

// Monotone is a piecewise cubic Hermite interpolant whose tangents are
// limited with the Fritsch-Carlson condition, so monotone data stays
// monotone between knots. Outside the knot range it clamps to the end values.
type Monotone struct {
	xs, ys, m []float64
}

func NewMonotone(xs, ys []float64) (*Monotone, error) {
	n := len(xs)
	if n < 2 || len(ys) != n {
		return nil, ErrInterpolation
	}
	for i := 1; i < n; i++ {
		if xs[i] <= xs[i-1] {
			return nil, ErrInterpolation
		}
	}

	d := make([]float64, n-1)
	for i := range d {
		d[i] = (ys[i+1] - ys[i]) / (xs[i+1] - xs[i])
	}

	m := make([]float64, n)
	m[0], m[n-1] = d[0], d[n-2]
	for i := 1; i < n-1; i++ {
		if d[i-1]*d[i] > 0 {
			m[i] = (d[i-1] + d[i]) / 2
		}
	}

	for i := 0; i < n-1; i++ {
		if d[i] == 0 {
			m[i], m[i+1] = 0, 0
			continue
		}
		a, b := m[i]/d[i], m[i+1]/d[i]
		if s := a*a + b*b; s > 9 {
			t := 3 / math.Sqrt(s)
			m[i] = t * a * d[i]
			m[i+1] = t * b * d[i]
		}
	}

	return &Monotone{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
		m:  m,
	}, nil
}

func (h *Monotone) At(x float64) float64 {
	n := len(h.xs)
	if x <= h.xs[0] {
		return h.ys[0]
	}
	if x >= h.xs[n-1] {
		return h.ys[n-1]
	}

	i := sort.SearchFloat64s(h.xs, x)
	if h.xs[i] == x {
		return h.ys[i]
	}
	i--

	w := h.xs[i+1] - h.xs[i]
	t := (x - h.xs[i]) / w
	t2, t3 := t*t, t*t*t

	return (2*t3-3*t2+1)*h.ys[i] +
		(t3-2*t2+t)*w*h.m[i] +
		(-2*t3+3*t2)*h.ys[i+1] +
		(t3-t2)*w*h.m[i+1]
}
