// Package physics provides the numerical building blocks of the power model.
//
//   - [SolveCubic]: closed-form real roots of a·x³ + b·x² + c·x + d, with the
//     degenerate linear and quadratic cases, the zero-discriminant double
//     root, and the trigonometric three-real-root case kept as separate
//     branches so results are reproducible at known regression points.
//   - [Monotone]: a Fritsch-Carlson monotone cubic Hermite interpolant, used
//     to turn a rider's power-curve anchors into a smooth power → duration
//     mapping without overshoot between anchors.
//
// Largest picks the physically meaningful root out of a solver result:
//
//	roots := physics.SolveCubic(a, 0, c, -power)
//	s, ok := physics.Largest(roots)
package physics
