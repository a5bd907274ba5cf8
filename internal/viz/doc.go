// Package viz is the full-screen live view of a race, built on Bubble Tea.
//
//   - [Model]: steps a race.Manager every frame and draws the course
//     profile, standings with fuel gauges, groups and the selected rider's
//     power and gap charts
//   - [Canvas]: braille pixel canvas used for the course profile
//   - [RunInteractive]: menu of preset races
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart the race
//	+/-   - Double or halve ticks per frame
//	J/K   - Select a rider
//	A/E   - Raise or lower the selected rider's effort
//	C     - Toggle cooperation
//	D     - Drop the selected rider from its group
//	G     - Bridge to the rider ahead
//	T     - Cycle color themes
//	?     - Show help
package viz
