package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// Contact describes the closest features of two geometries A and B.
// Distance is the signed separation, negative when the geometries interpenetrate.
// NormalOnB is a unit vector pointing from B toward A, so PointOnA = PointOnB + NormalOnB*Distance.
type Contact struct {
	Distance  float64
	PointOnA  r3.Vector
	PointOnB  r3.Vector
	NormalOnB r3.Vector
}

// flip swaps the roles of A and B.
func (c Contact) flip() Contact {
	return Contact{
		Distance:  c.Distance,
		PointOnA:  c.PointOnB,
		PointOnB:  c.PointOnA,
		NormalOnB: c.NormalOnB.Mul(-1),
	}
}

// ComputeContact returns the signed distance and closest points between two geometries.
func ComputeContact(a, b Geometry) (Contact, error) {
	switch ga := a.(type) {
	case *sphere:
		switch gb := b.(type) {
		case *sphere:
			return sphereSphereContact(ga.pose.Point(), ga.radius, gb.pose.Point(), gb.radius), nil
		case *box:
			return sphereBoxContact(ga.pose.Point(), ga.radius, gb), nil
		case *capsule:
			return capsuleSphereContact(gb, ga.pose.Point(), ga.radius).flip(), nil
		}
	case *box:
		switch gb := b.(type) {
		case *sphere:
			return sphereBoxContact(gb.pose.Point(), gb.radius, ga).flip(), nil
		case *box:
			return boxBoxContact(ga, gb), nil
		case *capsule:
			return capsuleBoxContact(gb, ga).flip(), nil
		}
	case *capsule:
		switch gb := b.(type) {
		case *sphere:
			return capsuleSphereContact(ga, gb.pose.Point(), gb.radius), nil
		case *box:
			return capsuleBoxContact(ga, gb), nil
		case *capsule:
			return capsuleCapsuleContact(ga, gb), nil
		}
	}
	return Contact{}, newCollisionTypeUnsupportedError(a, b)
}

func distanceFrom(a, b Geometry) (float64, error) {
	c, err := ComputeContact(a, b)
	if err != nil {
		return math.Inf(1), err
	}
	return c.Distance, nil
}

func collidesWith(a, b Geometry, buffer float64) (bool, error) {
	c, err := ComputeContact(a, b)
	if err != nil {
		return true, err
	}
	return c.Distance <= buffer, nil
}

func unitOr(v, fallback r3.Vector) r3.Vector {
	if n := v.Norm(); n > 1e-12 {
		return v.Mul(1 / n)
	}
	return fallback
}

func sphereSphereContact(ca r3.Vector, ra float64, cb r3.Vector, rb float64) Contact {
	diff := ca.Sub(cb)
	n := unitOr(diff, r3.Vector{Z: 1})
	return Contact{
		Distance:  diff.Norm() - ra - rb,
		PointOnA:  ca.Sub(n.Mul(ra)),
		PointOnB:  cb.Add(n.Mul(rb)),
		NormalOnB: n,
	}
}

func sphereBoxContact(center r3.Vector, radius float64, b *box) Contact {
	d, surface, n := b.pointSignedDistance(center)
	return Contact{
		Distance:  d - radius,
		PointOnA:  center.Sub(n.Mul(radius)),
		PointOnB:  surface,
		NormalOnB: n,
	}
}

func capsuleSphereContact(c *capsule, center r3.Vector, radius float64) Contact {
	p := ClosestPointSegmentPoint(c.segA, c.segB, center)
	return sphereSphereContact(p, c.radius, center, radius)
}

func capsuleCapsuleContact(a, b *capsule) Contact {
	p, q := ClosestPointsSegmentSegment(a.segA, a.segB, b.segA, b.segB)
	return sphereSphereContact(p, a.radius, q, b.radius)
}

// capsuleBoxContact minimizes the signed distance to the box along the capsule segment. The signed distance to a
// convex body is convex, so a golden section search over the segment parameter converges to the deepest point.
func capsuleBoxContact(c *capsule, b *box) Contact {
	seg := c.segB.Sub(c.segA)
	sd := func(t float64) float64 {
		d, _, _ := b.pointSignedDistance(c.segA.Add(seg.Mul(t)))
		return d
	}
	const invPhi = 0.6180339887498949
	lo, hi := 0., 1.
	x1 := hi - invPhi*(hi-lo)
	x2 := lo + invPhi*(hi-lo)
	f1, f2 := sd(x1), sd(x2)
	for i := 0; i < 60 && hi-lo > 1e-9; i++ {
		if f1 <= f2 {
			hi, x2, f2 = x2, x1, f1
			x1 = hi - invPhi*(hi-lo)
			f1 = sd(x1)
		} else {
			lo, x1, f1 = x1, x2, f2
			x2 = lo + invPhi*(hi-lo)
			f2 = sd(x2)
		}
	}
	best := (lo + hi) / 2
	// endpoints are checked explicitly since the minimum of a convex function on a segment often sits on one
	for _, t := range []float64{0, 1} {
		if sd(t) < sd(best) {
			best = t
		}
	}
	return sphereBoxContact(c.segA.Add(seg.Mul(best)), c.radius, b)
}

// boxBoxContact uses the separating axis test over the 15 candidate axes. Interpenetrating boxes report the minimum
// overlap as the penetration depth, separated boxes report the exact distance between their closest features.
func boxBoxContact(a, b *box) Contact {
	axes := make([]r3.Vector, 0, 15)
	for i := 0; i < 3; i++ {
		axes = append(axes, a.rotMatrix.Axis(i), b.rotMatrix.Axis(i))
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cross := a.rotMatrix.Axis(i).Cross(b.rotMatrix.Axis(j))
			if cross.Norm() > 1e-9 {
				axes = append(axes, cross.Normalize())
			}
		}
	}

	centers := a.pose.Point().Sub(b.pose.Point())
	minOverlap := math.Inf(1)
	var normal r3.Vector
	for _, axis := range axes {
		s := centers.Dot(axis)
		overlap := a.projectionRadius(axis) + b.projectionRadius(axis) - math.Abs(s)
		if overlap < 0 {
			return boxBoxSeparation(a, b)
		}
		if overlap < minOverlap {
			minOverlap = overlap
			normal = axis
			if s < 0 {
				normal = axis.Mul(-1)
			}
		}
	}
	pointOnA := a.supportPoint(normal.Mul(-1))
	return Contact{
		Distance:  -minOverlap,
		PointOnA:  pointOnA,
		PointOnB:  pointOnA.Add(normal.Mul(minOverlap)),
		NormalOnB: normal,
	}
}

// boxBoxSeparation computes the exact distance between two disjoint boxes from vertex-box and edge-edge candidates.
func boxBoxSeparation(a, b *box) Contact {
	best := Contact{Distance: math.Inf(1)}
	consider := func(onA, onB r3.Vector) {
		diff := onA.Sub(onB)
		if d := diff.Norm(); d < best.Distance {
			best = Contact{Distance: d, PointOnA: onA, PointOnB: onB, NormalOnB: unitOr(diff, r3.Vector{Z: 1})}
		}
	}
	vertsA := a.vertices()
	vertsB := b.vertices()
	for _, v := range vertsA {
		consider(v, b.closestPoint(v))
	}
	for _, v := range vertsB {
		consider(a.closestPoint(v), v)
	}
	edges := boxEdges()
	for _, ea := range edges {
		for _, eb := range edges {
			p, q := ClosestPointsSegmentSegment(vertsA[ea[0]], vertsA[ea[1]], vertsB[eb[0]], vertsB[eb[1]])
			consider(p, q)
		}
	}
	return best
}
