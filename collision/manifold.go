package collision

import (
	"github.com/golang/geo/r3"
)

// ContactPoint is a single point of contact between two bodies. Distance is negative when the bodies interpenetrate.
// NormalOnB points from Body1 toward Body0.
type ContactPoint struct {
	Distance    float64
	PositionOnA r3.Vector
	PositionOnB r3.Vector
	NormalOnB   r3.Vector
}

// Manifold holds the contact points found for one pair of bodies during a detection pass.
type Manifold struct {
	Body0  *Body
	Body1  *Body
	Points []ContactPoint
}

// NumContacts returns the number of contact points currently held.
func (m *Manifold) NumContacts() int {
	return len(m.Points)
}

func (m *Manifold) clear() {
	m.Points = m.Points[:0]
}
