package metrics

// FrontTime counts seconds spent leading a group.
type FrontTime struct {
	name    string
	seconds float64
}

func NewFrontTime() *FrontTime {
	return &FrontTime{name: "front_s"}
}

func (f *FrontTime) Name() string { return f.name }

func (f *FrontTime) Observe(s Sample) {
	if s.Leading {
		f.seconds += s.Interval
	}
}

func (f *FrontTime) Value() float64 { return f.seconds }
func (f *FrontTime) Reset()         { f.seconds = 0 }

// DraftShare is the fraction of race time spent sheltered in a group.
type DraftShare struct {
	name     string
	drafting float64
	total    float64
}

func NewDraftShare() *DraftShare {
	return &DraftShare{name: "draft_share"}
}

func (d *DraftShare) Name() string { return d.name }

func (d *DraftShare) Observe(s Sample) {
	d.total += s.Interval
	if s.Drafting {
		d.drafting += s.Interval
	}
}

func (d *DraftShare) Value() float64 {
	if d.total == 0 {
		return 0
	}
	return d.drafting / d.total
}

func (d *DraftShare) Reset() {
	d.drafting = 0
	d.total = 0
}
