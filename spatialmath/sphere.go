package spatialmath

import (
	"encoding/json"

	"github.com/golang/geo/r3"
)

// sphere is a collision geometry that represents a sphere, it has a pose and a radius that fully define it.
type sphere struct {
	pose   Pose
	radius float64
	label  string
}

// NewSphere instantiates a new sphere Geometry.
func NewSphere(offset Pose, radius float64, label string) (Geometry, error) {
	if radius < 0 {
		return nil, newBadGeometryDimensionsError(&sphere{})
	}
	return &sphere{pose: offset, radius: radius, label: label}, nil
}

func (s *sphere) Pose() Pose {
	return s.pose
}

func (s *sphere) Label() string {
	return s.label
}

func (s *sphere) SetLabel(label string) {
	s.label = label
}

// Radius returns the radius of the sphere.
func (s *sphere) Radius() float64 {
	return s.radius
}

func (s *sphere) AABB() AABB {
	c := s.pose.Point()
	r := r3.Vector{X: s.radius, Y: s.radius, Z: s.radius}
	return AABB{Min: c.Sub(r), Max: c.Add(r)}
}

// Transform premultiplies the sphere pose with a transform, the sphere is returned as a new Geometry.
func (s *sphere) Transform(toPremultiply Pose) Geometry {
	return &sphere{pose: Compose(toPremultiply, s.pose), radius: s.radius, label: s.label}
}

func (s *sphere) ToConfig() *GeometryConfig {
	return offsetConfig(&GeometryConfig{Type: SphereType, R: s.radius, Label: s.label}, s.pose)
}

func (s *sphere) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToConfig())
}

func (s *sphere) DistanceFrom(g Geometry) (float64, error) {
	return distanceFrom(s, g)
}

func (s *sphere) CollidesWith(g Geometry, buffer float64) (bool, error) {
	return collidesWith(s, g, buffer)
}
