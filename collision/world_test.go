package collision

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/motionvalidity/logging"
	spatial "go.viam.com/motionvalidity/spatialmath"
)

func unitSphere(t *testing.T) spatial.Geometry {
	t.Helper()
	g, err := spatial.NewSphere(spatial.NewZeroPose(), 1, "")
	test.That(t, err, test.ShouldBeNil)
	return g
}

func newBodyAt(t *testing.T, name string, x float64) *Body {
	t.Helper()
	b := NewBody(name, unitSphere(t), UnsetFilterIndex)
	b.SetTransform(spatial.NewPoseFromPoint(r3.Vector{X: x}))
	return b
}

func TestDetectionProducesManifolds(t *testing.T) {
	logger := logging.NewTestLogger(t)
	w := NewWorld(logger, WorldOptions{ContactMargin: 0.5})

	test.That(t, w.PerformDiscreteCollisionDetection(), test.ShouldEqual, ErrNoBodies)

	a := newBodyAt(t, "a", 0)
	b := newBodyAt(t, "b", 1.5)
	c := newBodyAt(t, "c", 2.3)
	far := newBodyAt(t, "far", 100)
	for _, body := range []*Body{c, a, b, far} {
		test.That(t, w.AddBody(body, GroupRobot, GroupAll), test.ShouldBeNil)
	}
	test.That(t, w.AddBody(newBodyAt(t, "a", 0), GroupRobot, GroupAll), test.ShouldNotBeNil)

	test.That(t, w.PerformDiscreteCollisionDetection(), test.ShouldBeNil)
	// a-b penetrate by 0.5, b-c penetrate by 1.2, a-c are 0.3 apart which is inside the margin
	test.That(t, w.NumManifolds(), test.ShouldEqual, 3)

	found := map[string]float64{}
	for i := 0; i < w.NumManifolds(); i++ {
		m := w.Manifold(i)
		test.That(t, m.NumContacts(), test.ShouldEqual, 1)
		found[m.Body0.Name+m.Body1.Name] = m.Points[0].Distance
		w.ClearManifold(m)
		test.That(t, m.NumContacts(), test.ShouldEqual, 0)
	}
	test.That(t, found["ca"], test.ShouldAlmostEqual, 0.3)
	test.That(t, found["ab"], test.ShouldAlmostEqual, -0.5)
	test.That(t, found["cb"], test.ShouldAlmostEqual, -1.2)

	// moving bodies apart drops the stale manifolds
	b.SetTransform(spatial.NewPoseFromPoint(r3.Vector{Y: 50}))
	c.SetTransform(spatial.NewPoseFromPoint(r3.Vector{Y: -50}))
	test.That(t, w.PerformDiscreteCollisionDetection(), test.ShouldBeNil)
	test.That(t, w.NumManifolds(), test.ShouldEqual, 0)

	test.That(t, w.RemoveBody("far"), test.ShouldBeNil)
	test.That(t, w.RemoveBody("far"), test.ShouldNotBeNil)
	test.That(t, len(w.Bodies()), test.ShouldEqual, 3)

	test.That(t, w.Close(), test.ShouldBeNil)
	test.That(t, w.PerformDiscreteCollisionDetection(), test.ShouldEqual, ErrWorldClosed)
}

func TestGroupMaskAndPairFilter(t *testing.T) {
	logger := logging.NewTestLogger(t)
	w := NewWorld(logger, WorldOptions{})

	robot := newBodyAt(t, "robot", 0)
	obstacle := newBodyAt(t, "obstacle", 0.5)
	otherObstacle := newBodyAt(t, "other", 1)
	test.That(t, w.AddBody(robot, GroupRobot, GroupAll), test.ShouldBeNil)
	test.That(t, w.AddBody(obstacle, GroupObstacle, GroupRobot), test.ShouldBeNil)
	test.That(t, w.AddBody(otherObstacle, GroupObstacle, GroupRobot), test.ShouldBeNil)

	test.That(t, GroupsCompatible(robot, obstacle), test.ShouldBeTrue)
	test.That(t, GroupsCompatible(obstacle, otherObstacle), test.ShouldBeFalse)

	test.That(t, w.PerformDiscreteCollisionDetection(), test.ShouldBeNil)
	test.That(t, w.NumManifolds(), test.ShouldEqual, 2)

	calls := 0
	w.SetPairFilter(PairFilterFunc(func(a, b *Body) bool {
		calls++
		return GroupsCompatible(a, b) && b.Name != "other"
	}))
	test.That(t, w.PerformDiscreteCollisionDetection(), test.ShouldBeNil)
	test.That(t, w.NumManifolds(), test.ShouldEqual, 1)
	test.That(t, w.Manifold(0).Body1.Name, test.ShouldEqual, "obstacle")
	test.That(t, calls, test.ShouldEqual, 3)

	w.SetPairFilter(nil)
	test.That(t, w.PerformDiscreteCollisionDetection(), test.ShouldBeNil)
	test.That(t, w.NumManifolds(), test.ShouldEqual, 2)
}

func TestBodyLazyRefresh(t *testing.T) {
	b := NewBody("s", unitSphere(t), 3)
	test.That(t, b.AABB().Max.X, test.ShouldAlmostEqual, 1)
	b.SetTransform(spatial.NewPoseFromPoint(r3.Vector{X: 4}))
	test.That(t, b.AABB().Max.X, test.ShouldAlmostEqual, 5)
	test.That(t, b.WorldGeometry().Pose().Point().X, test.ShouldAlmostEqual, 4)
	test.That(t, b.FilterIndex, test.ShouldEqual, 3)
}
