package physics

import "math"

// Epsilon is the tolerance below which a coefficient or discriminant is
// treated as zero.
const Epsilon = 1e-8

func cbrt(x float64) float64 {
	y := math.Pow(math.Abs(x), 1.0/3.0)
	if x < 0 {
		return -y
	}
	return y
}

// SolveCubic returns the real roots of a·x³ + b·x² + c·x + d = 0.
// When a vanishes the equation degrades to a quadratic, then a linear one;
// an identity or contradiction yields no roots.
func SolveCubic(a, b, c, d float64) []float64 {
	if math.Abs(a) < Epsilon {
		return solveQuadratic(b, c, d)
	}

	// depressed cubic t³ + p·t + q = 0 with x = t − b/3a
	p := (3*a*c - b*b) / (3 * a * a)
	q := (2*b*b*b - 9*a*b*c + 27*a*a*d) / (27 * a * a * a)

	var roots []float64
	switch {
	case math.Abs(p) < Epsilon:
		roots = []float64{cbrt(-q)}
	case math.Abs(q) < Epsilon:
		roots = []float64{0}
		if p < 0 {
			roots = append(roots, math.Sqrt(-p), -math.Sqrt(-p))
		}
	default:
		disc := q*q/4 + p*p*p/27
		switch {
		case math.Abs(disc) < Epsilon:
			roots = []float64{-1.5 * q / p, 3 * q / p}
		case disc > 0:
			u := cbrt(-q/2 - math.Sqrt(disc))
			roots = []float64{u - p/(3*u)}
		default:
			u := 2 * math.Sqrt(-p/3)
			t := math.Acos(3*q/p/u) / 3
			k := 2 * math.Pi / 3
			roots = []float64{u * math.Cos(t), u * math.Cos(t-k), u * math.Cos(t-2*k)}
		}
	}

	shift := b / (3 * a)
	for i := range roots {
		roots[i] -= shift
	}
	return roots
}

func solveQuadratic(a, b, c float64) []float64 {
	if math.Abs(a) < Epsilon {
		if math.Abs(b) < Epsilon {
			return nil
		}
		return []float64{-c / b}
	}
	disc := b*b - 4*a*c
	switch {
	case math.Abs(disc) < Epsilon:
		return []float64{-b / (2 * a)}
	case disc > 0:
		s := math.Sqrt(disc)
		return []float64{(-b + s) / (2 * a), (-b - s) / (2 * a)}
	}
	return nil
}

// Largest returns the greatest finite root. ok is false when there is none.
func Largest(roots []float64) (float64, bool) {
	best, ok := 0.0, false
	for _, r := range roots {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		if !ok || r > best {
			best, ok = r, true
		}
	}
	return best, ok
}
