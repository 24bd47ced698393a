package spatialmath

import (
	"github.com/golang/geo/r3"

	"go.viam.com/motionvalidity/utils"
)

// ClosestPointSegmentPoint takes a line segment and a point, and returns the point on the segment closest to the point.
func ClosestPointSegmentPoint(segA, segB, pt r3.Vector) r3.Vector {
	ab := segB.Sub(segA)
	denom := ab.Norm2()
	if denom < 1e-12 {
		return segA
	}
	t := utils.Clamp(pt.Sub(segA).Dot(ab)/denom, 0, 1)
	return segA.Add(ab.Mul(t))
}

// DistToLineSegment takes a segment and a point and returns the distance from the point to the segment.
func DistToLineSegment(segA, segB, pt r3.Vector) float64 {
	return pt.Sub(ClosestPointSegmentPoint(segA, segB, pt)).Norm()
}

// ClosestPointsSegmentSegment returns the closest points between segments p1-q1 and p2-q2.
// Follows Ericson, Real-Time Collision Detection, 5.1.9.
func ClosestPointsSegmentSegment(p1, q1, p2, q2 r3.Vector) (r3.Vector, r3.Vector) {
	const eps = 1e-12
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Norm2()
	e := d2.Norm2()
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a <= eps && e <= eps:
		return p1, p2
	case a <= eps:
		t = utils.Clamp(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= eps {
			s = utils.Clamp(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom > eps {
				s = utils.Clamp((b*f-c*e)/denom, 0, 1)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = utils.Clamp(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = utils.Clamp((b-c)/a, 0, 1)
			}
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}
