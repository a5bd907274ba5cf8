package race

// Sink receives the manager between ticks, every frame interval and once
// more when the race finishes. A sink reads state and never mutates it.
type Sink interface {
	Update(m *Manager)
}

type SinkFunc func(m *Manager)

func (f SinkFunc) Update(m *Manager) { f(m) }

// Observer is called after every tick. Observers with a Reset method are
// reset together with the race.
type Observer interface {
	OnTick(m *Manager)
}

func (m *Manager) Subscribe(s Sink) {
	if s != nil {
		m.sinks = append(m.sinks, s)
	}
}

func (m *Manager) Observe(o Observer) {
	if o != nil {
		m.observers = append(m.observers, o)
	}
}

func (m *Manager) FrameInterval() int { return m.frameInterval }

func (m *Manager) publish() {
	for _, s := range m.sinks {
		s.Update(m)
	}
}
