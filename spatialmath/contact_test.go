package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func mustBox(t *testing.T, pose Pose, dims r3.Vector) Geometry {
	t.Helper()
	g, err := NewBox(pose, dims, "")
	test.That(t, err, test.ShouldBeNil)
	return g
}

func checkContactConsistent(t *testing.T, c Contact) {
	t.Helper()
	test.That(t, c.NormalOnB.Norm(), test.ShouldAlmostEqual, 1)
	test.That(t, c.PointOnB.Add(c.NormalOnB.Mul(c.Distance)).Sub(c.PointOnA).Norm(), test.ShouldBeLessThan, 1e-6)
}

func TestSphereContacts(t *testing.T) {
	s1, err := NewSphere(NewZeroPose(), 1, "a")
	test.That(t, err, test.ShouldBeNil)
	s2, err := NewSphere(NewPoseFromPoint(r3.Vector{X: 3}), 1, "b")
	test.That(t, err, test.ShouldBeNil)

	c, err := ComputeContact(s1, s2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Distance, test.ShouldAlmostEqual, 1)
	test.That(t, c.NormalOnB.X, test.ShouldAlmostEqual, -1)
	checkContactConsistent(t, c)

	s3, err := NewSphere(NewPoseFromPoint(r3.Vector{X: 1.5}), 1, "c")
	test.That(t, err, test.ShouldBeNil)
	d, err := s1.DistanceFrom(s3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d, test.ShouldAlmostEqual, -0.5)

	_, err = NewSphere(NewZeroPose(), -1, "")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSphereBoxContact(t *testing.T) {
	b := mustBox(t, NewZeroPose(), r3.Vector{X: 2, Y: 2, Z: 2})

	outside, err := NewSphere(NewPoseFromPoint(r3.Vector{X: 3}), 1, "")
	test.That(t, err, test.ShouldBeNil)
	c, err := ComputeContact(outside, b)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Distance, test.ShouldAlmostEqual, 1)
	checkContactConsistent(t, c)

	inside, err := NewSphere(NewPoseFromPoint(r3.Vector{Z: 0.75}), 0.5, "")
	test.That(t, err, test.ShouldBeNil)
	c, err = ComputeContact(inside, b)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Distance, test.ShouldAlmostEqual, -0.75)
	test.That(t, c.NormalOnB.Z, test.ShouldAlmostEqual, 1)
	checkContactConsistent(t, c)

	// argument order only flips the normal
	flipped, err := ComputeContact(b, inside)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, flipped.Distance, test.ShouldAlmostEqual, c.Distance)
	test.That(t, flipped.NormalOnB.Z, test.ShouldAlmostEqual, -1)
}

func TestBoxBoxContact(t *testing.T) {
	dims := r3.Vector{X: 2, Y: 2, Z: 2}
	a := mustBox(t, NewZeroPose(), dims)

	cases := []struct {
		name     string
		pose     Pose
		expected float64
	}{
		{"face separated", NewPoseFromPoint(r3.Vector{X: 3}), 1},
		{"touching", NewPoseFromPoint(r3.Vector{Y: 2}), 0},
		{"overlap", NewPoseFromPoint(r3.Vector{Z: 1.5}), -0.5},
		{"coincident", NewZeroPose(), -2},
		{"edge separated", NewPoseFromPoint(r3.Vector{X: 3, Y: 3}), math.Sqrt2},
		{"rotated corner", NewPose(r3.Vector{X: 1 + math.Sqrt2 + 0.5}, &R4AA{Theta: math.Pi / 4, RZ: 1}), 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := mustBox(t, tc.pose, dims)
			c, err := ComputeContact(a, b)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, c.Distance, test.ShouldAlmostEqual, tc.expected, 1e-6)
			if tc.expected != -2 {
				checkContactConsistent(t, c)
			}
		})
	}
}

func TestCapsuleContacts(t *testing.T) {
	// capsule along z from -1.5 to 1.5 with radius 0.5
	capA, err := NewCapsule(NewZeroPose(), 0.5, 4, "")
	test.That(t, err, test.ShouldBeNil)

	capB, err := NewCapsule(NewPose(r3.Vector{X: 2}, &R4AA{Theta: math.Pi / 2, RX: 1}), 0.5, 4, "")
	test.That(t, err, test.ShouldBeNil)
	d, err := capA.DistanceFrom(capB)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d, test.ShouldAlmostEqual, 1, 1e-9)

	s, err := NewSphere(NewPoseFromPoint(r3.Vector{Z: 2.5}), 0.25, "")
	test.That(t, err, test.ShouldBeNil)
	d, err = capA.DistanceFrom(s)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d, test.ShouldAlmostEqual, 0.25, 1e-9)

	b := mustBox(t, NewPoseFromPoint(r3.Vector{X: 1.5, Z: 1}), r3.Vector{X: 1, Y: 1, Z: 1})
	c, err := ComputeContact(capA, b)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Distance, test.ShouldAlmostEqual, 0.5, 1e-6)
	checkContactConsistent(t, c)

	deep := mustBox(t, NewZeroPose(), r3.Vector{X: 1, Y: 1, Z: 1})
	d, err = capA.DistanceFrom(deep)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d, test.ShouldBeLessThan, -0.5)

	_, err = NewCapsule(NewZeroPose(), 1, 1, "")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestAABB(t *testing.T) {
	b := mustBox(t, NewPose(r3.Vector{X: 1}, &R4AA{Theta: math.Pi / 4, RZ: 1}), r3.Vector{X: 2, Y: 2, Z: 2})
	aabb := b.AABB()
	test.That(t, aabb.Max.X, test.ShouldAlmostEqual, 1+math.Sqrt2)
	test.That(t, aabb.Min.Z, test.ShouldAlmostEqual, -1)

	other := AABB{Min: r3.Vector{X: 3, Y: -1, Z: -1}, Max: r3.Vector{X: 4, Y: 1, Z: 1}}
	test.That(t, aabb.Overlaps(other), test.ShouldBeFalse)
	test.That(t, aabb.Expand(1).Overlaps(other), test.ShouldBeTrue)
}
