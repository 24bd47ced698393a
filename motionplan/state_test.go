package motionplan

import (
	"math"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	spatial "go.viam.com/motionvalidity/spatialmath"
)

func TestBounds(t *testing.T) {
	b := NewBoundsFromGraph(newTestScene(t))
	test.That(t, b.NumContinuous, test.ShouldEqual, 0)
	test.That(t, len(b.Joints), test.ShouldEqual, 2)

	test.That(t, b.SatisfiesBounds(slideState(3, -3)), test.ShouldBeTrue)
	test.That(t, b.SatisfiesBounds(slideState(3.1, 0)), test.ShouldBeFalse)
	test.That(t, b.SatisfiesBounds(slideState(math.NaN(), 0)), test.ShouldBeFalse)
	test.That(t, b.SatisfiesBounds(nil), test.ShouldBeFalse)

	b.Base = &spatial.AABB{Min: r3.Vector{X: -1, Y: -1, Z: -1}, Max: r3.Vector{X: 1, Y: 1, Z: 1}}
	s := slideState(0, 0)
	s.Base = spatial.NewPoseFromPoint(r3.Vector{X: 2})
	test.That(t, b.SatisfiesBounds(s), test.ShouldBeFalse)
	s.Base = spatial.NewPoseFromPoint(r3.Vector{X: 1})
	test.That(t, b.SatisfiesBounds(s), test.ShouldBeTrue)

	s.Objects = map[string]spatial.Pose{"cup": spatial.NewPoseFromPoint(r3.Vector{Z: math.Inf(1)})}
	test.That(t, b.SatisfiesBounds(s), test.ShouldBeFalse)

	admitAll := BoundsFunc(func(*State) bool { return true })
	test.That(t, admitAll.SatisfiesBounds(nil), test.ShouldBeTrue)
}

func TestParseStatesJSON(t *testing.T) {
	states, err := ParseStatesJSON(strings.NewReader(`[
		{"joints": [0, 1]},
		{"joints": [0, 0], "base": {"translation": {"z": 2}}, "objects": {"cup": {"translation": {"y": 1}}}}
	]`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(states), test.ShouldEqual, 2)
	test.That(t, states[0].Joints[1].Value, test.ShouldEqual, 1)
	test.That(t, states[0].Base, test.ShouldBeNil)
	test.That(t, states[1].Base.Point().Z, test.ShouldEqual, 2)
	test.That(t, states[1].Objects["cup"].Point().Y, test.ShouldEqual, 1)

	_, err = ParseStatesJSON(strings.NewReader(`{}`))
	test.That(t, err, test.ShouldNotBeNil)
}
