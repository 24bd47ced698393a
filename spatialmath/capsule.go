package spatialmath

import (
	"encoding/json"
	"math"

	"github.com/golang/geo/r3"
)

// capsule is a collision geometry that represents a capsule, it has a pose, a radius and a length that fully define it.
// The length is the full end-to-end length including both hemispherical caps, and the capsule is aligned to the
// local z axis.
type capsule struct {
	pose   Pose
	radius float64
	length float64
	label  string

	// cached world-frame endpoints of the inner segment
	segA r3.Vector
	segB r3.Vector
}

// NewCapsule instantiates a new capsule Geometry.
func NewCapsule(offset Pose, radius, length float64, label string) (Geometry, error) {
	if radius <= 0 || length < 2*radius {
		return nil, newBadGeometryDimensionsError(&capsule{})
	}
	return newCapsule(offset, radius, length, label), nil
}

func newCapsule(offset Pose, radius, length float64, label string) *capsule {
	half := r3.Vector{Z: length/2 - radius}
	return &capsule{
		pose:   offset,
		radius: radius,
		length: length,
		label:  label,
		segA:   TransformPoint(offset, half.Mul(-1)),
		segB:   TransformPoint(offset, half),
	}
}

func (c *capsule) Pose() Pose {
	return c.pose
}

func (c *capsule) Label() string {
	return c.label
}

func (c *capsule) SetLabel(label string) {
	c.label = label
}

// Segment returns the world-frame endpoints of the line segment at the core of the capsule.
func (c *capsule) Segment() (r3.Vector, r3.Vector) {
	return c.segA, c.segB
}

// Radius returns the radius of the capsule.
func (c *capsule) Radius() float64 {
	return c.radius
}

func (c *capsule) AABB() AABB {
	r := r3.Vector{X: c.radius, Y: c.radius, Z: c.radius}
	return AABB{
		Min: r3.Vector{X: math.Min(c.segA.X, c.segB.X), Y: math.Min(c.segA.Y, c.segB.Y), Z: math.Min(c.segA.Z, c.segB.Z)}.Sub(r),
		Max: r3.Vector{X: math.Max(c.segA.X, c.segB.X), Y: math.Max(c.segA.Y, c.segB.Y), Z: math.Max(c.segA.Z, c.segB.Z)}.Add(r),
	}
}

// Transform premultiplies the capsule pose with a transform, the capsule is returned as a new Geometry.
func (c *capsule) Transform(toPremultiply Pose) Geometry {
	return newCapsule(Compose(toPremultiply, c.pose), c.radius, c.length, c.label)
}

func (c *capsule) ToConfig() *GeometryConfig {
	return offsetConfig(&GeometryConfig{Type: CapsuleType, R: c.radius, L: c.length, Label: c.label}, c.pose)
}

func (c *capsule) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.ToConfig())
}

func (c *capsule) DistanceFrom(g Geometry) (float64, error) {
	return distanceFrom(c, g)
}

func (c *capsule) CollidesWith(g Geometry, buffer float64) (bool, error) {
	return collidesWith(c, g, buffer)
}
