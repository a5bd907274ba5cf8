package sim

// Force-balance constants. Power is in watts, speed solved in m/s, distance
// reported in km per tick.
const (
	RollingResistance = 0.008 // coefficient times weight (kg)
	WindResistance    = 0.25
	FrontalArea       = 0.4 // m²
	AirDensity        = 1.0
	Gravity           = 9.8 // m/s²
	GradientAngle     = 8.0 // gradient to pseudo-angle (rad) for speed apportioning
	TickSeconds       = 1.0

	MinEffort       = 0.01 // floor for a non-positive effort fraction
	FinishTolerance = 1e-9 // km; closer than this to the line counts as finished
)

// Tunables are the empirically fitted constants of group behaviour. They are
// fixed for the lifetime of a group.
type Tunables struct {
	DraftFactor          float64 `yaml:"draft_factor" json:"draft_factor"`
	RingSpacing          float64 `yaml:"ring_spacing" json:"ring_spacing"`         // km per cooperating rider, halved for the ring radius
	NonCoopSpacing       float64 `yaml:"non_coop_spacing" json:"non_coop_spacing"` // km between passive riders behind the block
	DropDistance         float64 `yaml:"drop_distance" json:"drop_distance"`       // km gap that drops the last rider
	RotationBias         float64 `yaml:"rotation_bias" json:"rotation_bias"`       // phase offset added to n/4
	DefaultTimeInFront   int     `yaml:"time_in_front" json:"time_in_front"`       // ticks per turn
	PelotonSpacing       float64 `yaml:"peloton_spacing" json:"peloton_spacing"`   // km between ranks in a peloton
	DefaultPelotonEffort float64 `yaml:"peloton_effort" json:"peloton_effort"`     // watts
}

func DefaultTunables() Tunables {
	return Tunables{
		DraftFactor:          0.8,
		RingSpacing:          0.003,
		NonCoopSpacing:       0.003,
		DropDistance:         0.05,
		RotationBias:         0.5,
		DefaultTimeInFront:   10,
		PelotonSpacing:       0.003,
		DefaultPelotonEffort: 300,
	}
}

// withDefaults fills zero fields from DefaultTunables.
func (t Tunables) withDefaults() Tunables {
	d := DefaultTunables()
	if t.DraftFactor <= 0 || t.DraftFactor > 1 {
		t.DraftFactor = d.DraftFactor
	}
	if t.RingSpacing <= 0 {
		t.RingSpacing = d.RingSpacing
	}
	if t.NonCoopSpacing <= 0 {
		t.NonCoopSpacing = d.NonCoopSpacing
	}
	if t.DropDistance <= 0 {
		t.DropDistance = d.DropDistance
	}
	if t.DefaultTimeInFront <= 0 {
		t.DefaultTimeInFront = d.DefaultTimeInFront
	}
	if t.PelotonSpacing <= 0 {
		t.PelotonSpacing = d.PelotonSpacing
	}
	if t.DefaultPelotonEffort <= 0 {
		t.DefaultPelotonEffort = d.DefaultPelotonEffort
	}
	return t
}
