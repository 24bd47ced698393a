package motionplan

import (
	"go.uber.org/atomic"
)

// Counters holds the diagnostic counters of one or more checkers. They never influence a decision.
// Counters may be shared between checkers running on different goroutines.
type Counters struct {
	Checks          atomic.Uint64
	OutOfBounds     atomic.Uint64
	SelfCollisions  atomic.Uint64
	WorldCollisions atomic.Uint64
}

// Stats is a point in time copy of Counters.
type Stats struct {
	Checks          uint64
	OutOfBounds     uint64
	SelfCollisions  uint64
	WorldCollisions uint64
}

// Stats returns the current counter values.
func (c *Counters) Stats() Stats {
	return Stats{
		Checks:          c.Checks.Load(),
		OutOfBounds:     c.OutOfBounds.Load(),
		SelfCollisions:  c.SelfCollisions.Load(),
		WorldCollisions: c.WorldCollisions.Load(),
	}
}

// Add returns the field-wise sum of two Stats.
func (s Stats) Add(other Stats) Stats {
	return Stats{
		Checks:          s.Checks + other.Checks,
		OutOfBounds:     s.OutOfBounds + other.OutOfBounds,
		SelfCollisions:  s.SelfCollisions + other.SelfCollisions,
		WorldCollisions: s.WorldCollisions + other.WorldCollisions,
	}
}

// Invalid returns the number of rejected states.
func (s Stats) Invalid() uint64 {
	return s.OutOfBounds + s.SelfCollisions + s.WorldCollisions
}
