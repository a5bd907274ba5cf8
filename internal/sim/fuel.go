package sim

import "math"

// updateFuel charges the tank for the power held over interval seconds and
// credits recovery, scaled down by the redzone penalty while in deficit. A
// drafting rider is charged the discounted power at the multiplier of the
// power it holds. The tank never fills beyond its maximum; it may go
// arbitrarily negative.
func (r *Rider) updateFuel(interval float64) {
	effective := r.power
	if r.IsDrafting() {
		effective *= r.draft
	}
	spend := effective * r.model.MultiplierForPower(r.power) * interval
	r.fuel -= spend
	r.spent += spend

	rec := r.model.recovery * interval
	if r.fuel < 0 {
		rec *= r.penalty(-r.fuel)
	}
	rec = math.Max(0, math.Min(rec, r.model.maxFuel-r.fuel))
	r.fuel += rec
	r.recovered += rec
}
