package spatialmath

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestGeometryConfigRoundTrip(t *testing.T) {
	offset := NewPose(r3.Vector{X: 1, Y: 2, Z: 3}, &R4AA{Theta: math.Pi / 2, RY: 1})
	geoms := []Geometry{}
	b, err := NewBox(offset, r3.Vector{X: 1, Y: 2, Z: 3}, "box")
	test.That(t, err, test.ShouldBeNil)
	geoms = append(geoms, b)
	s, err := NewSphere(offset, 2, "sphere")
	test.That(t, err, test.ShouldBeNil)
	geoms = append(geoms, s)
	c, err := NewCapsule(offset, 1, 5, "capsule")
	test.That(t, err, test.ShouldBeNil)
	geoms = append(geoms, c)

	for _, g := range geoms {
		data, err := json.Marshal(g)
		test.That(t, err, test.ShouldBeNil)
		parsed, err := UnmarshalGeometryJSON(data)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed.Label(), test.ShouldEqual, g.Label())
		test.That(t, PoseAlmostEqualEps(parsed.Pose(), g.Pose(), 1e-9), test.ShouldBeTrue)
		test.That(t, parsed.ToConfig().Type, test.ShouldEqual, g.ToConfig().Type)
	}
}

func TestParseConfigInfersType(t *testing.T) {
	g, err := UnmarshalGeometryJSON([]byte(`{"r": 1, "l": 4}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.ToConfig().Type, test.ShouldEqual, CapsuleType)

	g, err = UnmarshalGeometryJSON([]byte(`{"x": 1, "y": 1, "z": 1, "translation": {"x": 5}}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.ToConfig().Type, test.ShouldEqual, BoxType)
	test.That(t, g.Pose().Point().X, test.ShouldEqual, 5)

	_, err = UnmarshalGeometryJSON([]byte(`{"type": "mesh"}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unsupported")
}

func TestTransformGeometry(t *testing.T) {
	s, err := NewSphere(NewPoseFromPoint(r3.Vector{X: 1}), 1, "s")
	test.That(t, err, test.ShouldBeNil)
	moved := s.Transform(NewPose(r3.Vector{Z: 2}, &R4AA{Theta: math.Pi / 2, RZ: 1}))
	test.That(t, moved.Pose().Point().Y, test.ShouldAlmostEqual, 1)
	test.That(t, moved.Pose().Point().Z, test.ShouldAlmostEqual, 2)
	test.That(t, moved.Label(), test.ShouldEqual, "s")

	collides, err := moved.CollidesWith(s, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, collides, test.ShouldBeFalse)
}
