package motionplan

import (
	"io"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"go.viam.com/motionvalidity/collision"
	"go.viam.com/motionvalidity/logging"
	"go.viam.com/motionvalidity/referenceframe"
	spatial "go.viam.com/motionvalidity/spatialmath"
)

// CheckerOption customizes a Checker.
type CheckerOption func(*Checker)

// WithCounters makes the checker count into shared counters instead of its own.
func WithCounters(counters *Counters) CheckerOption {
	return func(c *Checker) {
		c.counters = counters
	}
}

// WithObserver registers an observer notified of disqualifying contacts.
func WithObserver(observer Observer) CheckerOption {
	return func(c *Checker) {
		c.observer = observer
	}
}

// WithName names the checker, and its sublogger.
func WithName(name string) CheckerOption {
	return func(c *Checker) {
		c.name = name
	}
}

// Checker decides whether a robot configuration is free of self collision and of collision with the world, ignoring
// blacklisted link pairs and pairs in an ancestor relationship. A Checker owns its collision world and must not be
// used from more than one goroutine; use one Checker per worker.
type Checker struct {
	name     string
	logger   logging.Logger
	cfg      CheckerConfig
	scene    SceneGraph
	bounds   BoundsChecker
	filter   *AdjacencyFilter
	world    *collision.World
	counters *Counters
	observer Observer

	// movable holds the bodies of robot links and objects, the only bodies pose synchronization writes.
	movable map[string]*collision.Body
	closed  bool
}

// NewChecker builds the collision world for the scene: one body per geometry-bearing robot link, movable object and
// obstacle. A nil bounds checker admits every state.
func NewChecker(
	logger logging.Logger,
	scene SceneGraph,
	bounds BoundsChecker,
	cfg CheckerConfig,
	opts ...CheckerOption,
) (*Checker, error) {
	if err := cfg.Validate("checker"); err != nil {
		return nil, err
	}
	c := &Checker{
		name:    "checker-" + uuid.NewString()[:8],
		cfg:     cfg.withDefaults(),
		scene:   scene,
		bounds:  bounds,
		movable: map[string]*collision.Body{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.counters == nil {
		c.counters = &Counters{}
	}
	c.logger = logger.Sublogger(c.name)
	if c.cfg.LogLevel != "" {
		level, err := logging.LevelFromString(c.cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		c.logger.SetLevel(level)
	}

	var links []*referenceframe.Node
	for _, link := range scene.RobotLinks() {
		if !link.HasGeometry() {
			if link.RequiresGeometry {
				return nil, referenceframe.NewMissingGeometryError(link.Name)
			}
			continue
		}
		links = append(links, link)
	}

	filter, err := NewAdjacencyFilter(c.cfg.BlacklistPath, len(links), scene)
	if err != nil {
		return nil, err
	}
	c.filter = filter
	for _, name := range filter.Names() {
		if node := scene.Find(name); node == nil || !node.IsRobotLink() {
			c.logger.Warnw("blacklist names a node that is not a robot link", "name", name)
		}
	}

	c.world = collision.NewWorld(c.logger, collision.WorldOptions{ContactMargin: c.cfg.ContactMargin})
	c.world.SetPairFilter(filter)

	robotMask, objectMask, obstacleMask := c.masks()
	for _, obstacle := range scene.Obstacles() {
		if !obstacle.HasGeometry() {
			continue
		}
		body := collision.NewBody(obstacle.Name, obstacle.Geometry, collision.UnsetFilterIndex)
		if err := c.world.AddBody(body, collision.GroupObstacle, obstacleMask); err != nil {
			return nil, err
		}
	}
	for _, object := range scene.Objects() {
		if !object.HasGeometry() {
			continue
		}
		body := collision.NewBody(object.Name, object.Geometry, collision.UnsetFilterIndex)
		if err := c.world.AddBody(body, collision.GroupObject, objectMask); err != nil {
			return nil, err
		}
		c.movable[object.Name] = body
	}
	for _, link := range links {
		body := collision.NewBody(link.Name, link.Geometry, filter.FilterIndex(link.Name))
		if err := c.world.AddBody(body, collision.GroupRobot, robotMask); err != nil {
			return nil, err
		}
		c.movable[link.Name] = body
	}

	// Place every body, obstacles included, at the zero configuration.
	zeros := func(n int) []referenceframe.Input { return make([]referenceframe.Input, n) }
	err = scene.UpdateTransforms(
		zeros(len(scene.ContinuousJoints())),
		zeros(len(scene.Joints())),
		nil,
		func(node, _ *referenceframe.Node, _, collisionTf spatial.Pose) {
			if body := c.world.Body(node.Name); body != nil {
				body.SetTransform(orthonormalize(collisionTf))
			}
		},
	)
	if err != nil {
		return nil, newSyncError(err)
	}

	c.logger.Infow("validity checker ready",
		"scene", scene.Name(),
		"links", len(links),
		"objects", len(c.movable)-len(links),
		"bodies", len(c.world.Bodies()),
		"blacklisted_links", len(filter.Names()),
		"penetration_epsilon", c.cfg.PenetrationEpsilon,
	)
	return c, nil
}

func (c *Checker) masks() (robot, object, obstacle collision.Group) {
	robot = collision.GroupRobot
	if *c.cfg.CheckObjects {
		robot |= collision.GroupObject
		object |= collision.GroupRobot | collision.GroupObject
	}
	if *c.cfg.CheckObstacles {
		robot |= collision.GroupObstacle
		obstacle |= collision.GroupRobot
	}
	if *c.cfg.CheckObjectObstacle {
		object |= collision.GroupObstacle
		obstacle |= collision.GroupObject
	}
	return robot, object, obstacle
}

// Name returns the name of the checker.
func (c *Checker) Name() string {
	return c.name
}

// Filter returns the adjacency filter installed in the collision world.
func (c *Checker) Filter() *AdjacencyFilter {
	return c.filter
}

// IsValid reports whether the state is admissible.
func (c *Checker) IsValid(state *State) bool {
	return c.Check(state).Valid
}

// Check decides a state: bounds first, then pose synchronization, then collision classification.
// It panics if the scene or the collision world violate their contracts, which are configuration errors.
func (c *Checker) Check(state *State) Result {
	if c.closed {
		panic(ErrCheckerClosed)
	}
	c.counters.Checks.Inc()

	if state == nil || (c.bounds != nil && !c.bounds.SatisfiesBounds(state)) {
		c.counters.OutOfBounds.Inc()
		return Result{Reason: ReasonOutOfBounds}
	}

	scene := c.scene
	if state.Scene != nil {
		scene = state.Scene
	}
	c.filter.SetScene(scene)

	if err := c.syncPoses(scene, state); err != nil {
		panic(newSyncError(err))
	}
	if err := c.world.PerformDiscreteCollisionDetection(); err != nil {
		panic(newDetectionError(err))
	}
	return c.classify(scene)
}

// syncPoses runs forward kinematics and copies each collision frame into the matching body. Object poses from the
// state only apply to this query; the configured origins are restored afterwards so no query sees another's objects.
func (c *Checker) syncPoses(scene SceneGraph, state *State) error {
	var configured map[string]spatial.Pose
	if len(state.Objects) > 0 {
		configured = make(map[string]spatial.Pose, len(state.Objects))
		for name := range state.Objects {
			if node := scene.Find(name); node != nil {
				configured[name] = node.Origin
			}
		}
		if err := scene.PoseObjects(state.Objects); err != nil {
			return err
		}
	}
	err := scene.UpdateTransforms(state.Continuous, state.Joints, state.Base,
		func(node, _ *referenceframe.Node, _, collisionTf spatial.Pose) {
			if node.IsObstacle {
				return
			}
			if body, ok := c.movable[node.Name]; ok {
				body.SetTransform(orthonormalize(collisionTf))
			}
		})
	if configured != nil {
		err = multierr.Combine(err, scene.PoseObjects(configured))
	}
	return err
}

// classify walks the manifolds of the last detection pass. The first contact at or below -epsilon decides the state.
func (c *Checker) classify(scene SceneGraph) Result {
	res := Result{Valid: true, Reason: ReasonNone}
	for i := 0; i < c.world.NumManifolds(); i++ {
		m := c.world.Manifold(i)
		for _, pt := range m.Points {
			if pt.Distance > -c.cfg.PenetrationEpsilon {
				continue
			}
			coll := Collision{
				Name1:       m.Body0.Name,
				Name2:       m.Body1.Name,
				Distance:    pt.Distance,
				PositionOnA: pt.PositionOnA,
				PositionOnB: pt.PositionOnB,
				NormalOnB:   pt.NormalOnB,
				Self:        isRobotLink(scene, m.Body0.Name) && isRobotLink(scene, m.Body1.Name),
			}
			if res.Valid {
				res.Valid = false
				if coll.Self {
					res.Reason = ReasonSelfCollision
					c.counters.SelfCollisions.Inc()
				} else {
					res.Reason = ReasonWorldCollision
					c.counters.WorldCollisions.Inc()
				}
				c.logger.Debugw("disqualifying contact", "reason", res.Reason, "collision", coll)
			}
			res.Collisions = append(res.Collisions, coll)
			if c.observer != nil {
				c.observer.CollisionDetected(coll)
			}
			if !c.cfg.ScanAllContacts {
				c.clearManifolds(i)
				return res
			}
		}
		c.world.ClearManifold(m)
	}
	return res
}

// clearManifolds clears every manifold from index from onward.
func (c *Checker) clearManifolds(from int) {
	for i := from; i < c.world.NumManifolds(); i++ {
		c.world.ClearManifold(c.world.Manifold(i))
	}
}

// isRobotLink resolves a body name. Names the scene cannot resolve are treated as not belonging to the robot.
func isRobotLink(scene SceneGraph, name string) bool {
	node := scene.Find(name)
	return node != nil && node.IsRobotLink()
}

// orthonormalize rebuilds a pose from its translation and renormalized rotation.
func orthonormalize(p spatial.Pose) spatial.Pose {
	q := p.Orientation().Quaternion()
	return spatial.NewPose(p.Point(), spatial.NewQuaternion(q.Real, q.Imag, q.Jmag, q.Kmag))
}

// Stats returns the counters this checker writes to.
func (c *Checker) Stats() Stats {
	return c.counters.Stats()
}

// Snapshot returns the current world transform of every body, sorted by name.
func (c *Checker) Snapshot() []BodyPose {
	return snapshotBodies(c.world.Bodies())
}

// WriteSnapshotJSON writes Snapshot as a JSON object keyed by body name.
func (c *Checker) WriteSnapshotJSON(w io.Writer) error {
	return writeSnapshotJSON(w, c.Snapshot())
}

// Close releases the collision world.
func (c *Checker) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.world.Close()
}
