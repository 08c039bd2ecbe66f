package protocol

// LogicalClock holds the greatest priority a replica knows in a
// room. The value only moves forward.
type LogicalClock interface {
	// Tock the value present on the clock is retrieved.
	Tock() uint64

	// Leap moves the clock to the given value, if greater.
	Leap(to uint64)
}

// ProcessClock implements the LogicalClock interface. Only accessed
// by the goroutine feeding the engine.
type ProcessClock struct {
	index uint64
}

func (p *ProcessClock) Tock() uint64 {
	return p.index
}

func (p *ProcessClock) Leap(to uint64) {
	if to > p.index {
		p.index = to
	}
}

func NewClock() LogicalClock {
	return &ProcessClock{}
}
