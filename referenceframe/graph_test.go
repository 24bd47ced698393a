package referenceframe

import (
	"math"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.uber.org/multierr"
	"go.viam.com/test"

	spatial "go.viam.com/motionvalidity/spatialmath"
)

func sphereGeom(t *testing.T, r float64) spatial.Geometry {
	t.Helper()
	g, err := spatial.NewSphere(spatial.NewZeroPose(), r, "")
	test.That(t, err, test.ShouldBeNil)
	return g
}

// twoLinkArm builds base -> shoulder (revolute about z) -> elbow (prismatic along x), plus a cup and a table.
func twoLinkArm(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph("arm")
	shoulderJoint, err := NewJoint(RevoluteJoint, r3.Vector{Z: 1}, Limit{-math.Pi, math.Pi})
	test.That(t, err, test.ShouldBeNil)
	elbowJoint, err := NewJoint(PrismaticJoint, r3.Vector{X: 1}, Limit{0, 100})
	test.That(t, err, test.ShouldBeNil)
	wristJoint, err := NewJoint(ContinuousJoint, r3.Vector{X: 1}, Limit{})
	test.That(t, err, test.ShouldBeNil)

	test.That(t, g.AddNode(&Node{Name: "base", Geometry: sphereGeom(t, 1)}, World), test.ShouldBeNil)
	test.That(t, g.AddNode(&Node{
		Name:     "shoulder",
		Origin:   spatial.NewPoseFromPoint(r3.Vector{Z: 10}),
		Joint:    shoulderJoint,
		Geometry: sphereGeom(t, 1),
	}, "base"), test.ShouldBeNil)
	test.That(t, g.AddNode(&Node{
		Name:            "elbow",
		Origin:          spatial.NewPoseFromPoint(r3.Vector{X: 10}),
		Joint:           elbowJoint,
		Geometry:        sphereGeom(t, 1),
		CollisionOffset: spatial.NewPoseFromPoint(r3.Vector{Z: 1}),
	}, "shoulder"), test.ShouldBeNil)
	test.That(t, g.AddNode(&Node{Name: "wrist", Joint: wristJoint}, "elbow"), test.ShouldBeNil)
	test.That(t, g.AddNode(&Node{Name: "cup", IsObject: true, Geometry: sphereGeom(t, 1)}, World), test.ShouldBeNil)
	test.That(t, g.AddNode(&Node{Name: "table", IsObstacle: true, Geometry: sphereGeom(t, 1)}, World), test.ShouldBeNil)
	test.That(t, g.SetRobotBase("base"), test.ShouldBeNil)
	return g
}

func TestGraphStructure(t *testing.T) {
	g := twoLinkArm(t)

	test.That(t, g.AddNode(&Node{Name: "base"}, World), test.ShouldNotBeNil)
	test.That(t, g.AddNode(&Node{Name: World}, "base"), test.ShouldNotBeNil)
	test.That(t, g.AddNode(&Node{Name: "orphan"}, "nope"), test.ShouldNotBeNil)

	test.That(t, g.IsAncestor("base", "elbow"), test.ShouldBeTrue)
	test.That(t, g.IsAncestor("elbow", "base"), test.ShouldBeFalse)
	test.That(t, g.IsAncestor("elbow", "elbow"), test.ShouldBeFalse)
	test.That(t, g.IsAncestor("cup", "elbow"), test.ShouldBeFalse)
	test.That(t, g.IsAncestor("unknown", "elbow"), test.ShouldBeFalse)
	test.That(t, g.HasChild("shoulder", "wrist"), test.ShouldBeTrue)

	names := func(nodes []*Node) []string {
		out := []string{}
		for _, n := range nodes {
			out = append(out, n.Name)
		}
		return out
	}
	test.That(t, names(g.RobotLinks()), test.ShouldResemble, []string{"base", "shoulder", "elbow", "wrist"})
	test.That(t, names(g.Objects()), test.ShouldResemble, []string{"cup"})
	test.That(t, names(g.Obstacles()), test.ShouldResemble, []string{"table"})
	test.That(t, names(g.Joints()), test.ShouldResemble, []string{"shoulder", "elbow"})
	test.That(t, names(g.ContinuousJoints()), test.ShouldResemble, []string{"wrist"})
	test.That(t, g.DoF(), test.ShouldResemble, []Limit{{-math.Pi, math.Pi}, {0, 100}})
	test.That(t, g.Validate(), test.ShouldBeNil)
}

func TestUpdateTransforms(t *testing.T) {
	g := twoLinkArm(t)

	poses := map[string]spatial.Pose{}
	links := map[string]string{}
	cb := func(n, robotLink *Node, tf, collisionTf spatial.Pose) {
		poses[n.Name] = collisionTf
		if robotLink != nil {
			links[n.Name] = robotLink.Name
		}
	}

	err := g.UpdateTransforms(FloatsToInputs([]float64{0}), FloatsToInputs([]float64{math.Pi / 2, 5}), nil, cb)
	test.That(t, err, test.ShouldBeNil)
	// wrist has no geometry so it is never reported
	test.That(t, len(poses), test.ShouldEqual, 5)
	test.That(t, links["elbow"], test.ShouldEqual, "elbow")
	test.That(t, links["cup"], test.ShouldBeEmpty)

	elbow := poses["elbow"].Point()
	test.That(t, elbow.X, test.ShouldAlmostEqual, 0)
	test.That(t, elbow.Y, test.ShouldAlmostEqual, 15)
	test.That(t, elbow.Z, test.ShouldAlmostEqual, 11)

	base := spatial.NewPoseFromPoint(r3.Vector{X: 100})
	err = g.UpdateTransforms(FloatsToInputs([]float64{0}), FloatsToInputs([]float64{0, 0}), base, cb)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, poses["base"].Point().X, test.ShouldAlmostEqual, 100)
	test.That(t, poses["elbow"].Point().X, test.ShouldAlmostEqual, 110)
	test.That(t, poses["table"].Point().X, test.ShouldAlmostEqual, 0)

	err = g.UpdateTransforms(nil, FloatsToInputs([]float64{0, 0}), nil, cb)
	test.That(t, err, test.ShouldNotBeNil)
	err = g.UpdateTransforms(FloatsToInputs([]float64{0}), FloatsToInputs([]float64{0}), nil, cb)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPoseObjects(t *testing.T) {
	g := twoLinkArm(t)
	err := g.PoseObjects(map[string]spatial.Pose{"cup": spatial.NewPoseFromPoint(r3.Vector{Y: 7})})
	test.That(t, err, test.ShouldBeNil)

	var cupY float64
	err = g.UpdateTransforms(FloatsToInputs([]float64{0}), FloatsToInputs([]float64{0, 0}), nil,
		func(n, _ *Node, _, collisionTf spatial.Pose) {
			if n.Name == "cup" {
				cupY = collisionTf.Point().Y
			}
		})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cupY, test.ShouldAlmostEqual, 7)

	err = g.PoseObjects(map[string]spatial.Pose{"table": spatial.NewZeroPose()})
	test.That(t, err, test.ShouldNotBeNil)
	err = g.PoseObjects(map[string]spatial.Pose{"mug": spatial.NewZeroPose()})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestReparentAndClone(t *testing.T) {
	g := twoLinkArm(t)
	clone := g.Clone()

	test.That(t, g.Reparent("cup", "wrist", spatial.NewZeroPose()), test.ShouldBeNil)
	test.That(t, g.IsAncestor("elbow", "cup"), test.ShouldBeTrue)
	test.That(t, g.Find("cup").Parent().Name, test.ShouldEqual, "wrist")

	// the clone keeps its own structure
	test.That(t, clone.IsAncestor("elbow", "cup"), test.ShouldBeFalse)
	test.That(t, clone.Find("cup"), test.ShouldNotEqual, g.Find("cup"))
	test.That(t, clone.RobotBase(), test.ShouldEqual, "base")

	test.That(t, g.Reparent("base", "elbow", nil), test.ShouldEqual, ErrCircularReference)
	test.That(t, g.Reparent("nope", "base", nil), test.ShouldNotBeNil)
}

func TestValidate(t *testing.T) {
	g := NewGraph("bad")
	test.That(t, g.AddNode(&Node{Name: "link", RequiresGeometry: true}, World), test.ShouldBeNil)
	test.That(t, g.AddNode(&Node{Name: "both", IsObject: true, IsObstacle: true}, World), test.ShouldBeNil)
	inverted, err := NewJoint(PrismaticJoint, r3.Vector{X: 1}, Limit{Min: 2, Max: -2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.AddNode(&Node{Name: "slider", Joint: inverted}, World), test.ShouldBeNil)
	spinning, err := NewJoint(ContinuousJoint, r3.Vector{Z: 1}, Limit{})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.AddNode(&Node{Name: "turntable", IsObstacle: true, Joint: spinning}, World), test.ShouldBeNil)

	err = g.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	errs := multierr.Errors(err)
	test.That(t, len(errs), test.ShouldEqual, 4)
	test.That(t, errs[0].Error(), test.ShouldEqual, NewMissingGeometryError("link").Error())
	test.That(t, errs[1].Error(), test.ShouldEqual, NewObjectObstacleConflictError("both").Error())
	test.That(t, errs[2].Error(), test.ShouldEqual, NewInvertedLimitError("slider", Limit{Min: 2, Max: -2}).Error())
	test.That(t, errs[3].Error(), test.ShouldEqual, NewMovableObstacleError("turntable").Error())

	_, err = NewJoint(JointType("helical"), r3.Vector{Z: 1}, Limit{})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestGraphString(t *testing.T) {
	g, err := ParseSceneJSON(strings.NewReader(testScene))
	test.That(t, err, test.ShouldBeNil)
	out := g.String()
	test.That(t, out, test.ShouldContainSubstring, "forearm")
	test.That(t, out, test.ShouldContainSubstring, "capsule R:5.0, L:40.0")
	test.That(t, out, test.ShouldContainSubstring, "obstacle")
	test.That(t, out, test.ShouldContainSubstring, "revolute")
}
