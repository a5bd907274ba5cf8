// Package race drives a stage: it owns the roster, the active groups and the
// course, advances every rider one tick at a time and answers the queries a
// view needs.
//
// A [Manager] is single-threaded. One [Manager.Tick] completes before the
// next begins, and sinks registered with [Manager.Subscribe] read state
// between ticks only. Independent races can be run in parallel with
// [Ensemble].
//
//	m, _ := race.New(course.MustNew(course.Segment{Length: 15}), riders)
//	_ = m.RunToFinish(ctx)
//	for _, s := range m.Standings() { ... }
package race
