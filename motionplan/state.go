package motionplan

import (
	"encoding/json"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/motionvalidity/referenceframe"
	spatial "go.viam.com/motionvalidity/spatialmath"
)

// SceneGraph is the view of the kinematic tree a checker needs. *referenceframe.Graph implements it.
type SceneGraph interface {
	Name() string
	Find(name string) *referenceframe.Node
	IsAncestor(ancestor, descendant string) bool
	PoseObjects(poses map[string]spatial.Pose) error
	UpdateTransforms(continuous, joints []referenceframe.Input, base spatial.Pose, fn referenceframe.PoseCallback) error
	RobotLinks() []*referenceframe.Node
	Objects() []*referenceframe.Node
	Obstacles() []*referenceframe.Node
	Joints() []*referenceframe.Node
	ContinuousJoints() []*referenceframe.Node
}

// State is a candidate configuration: joint values, the robot base pose and the poses of movable objects.
type State struct {
	Continuous []referenceframe.Input
	Joints     []referenceframe.Input
	// Base is the world pose of the robot base, nil keeps the configured origin.
	Base spatial.Pose
	// Objects poses movable objects relative to their parents for this query only. Objects left out stay at their
	// configured origins.
	Objects map[string]spatial.Pose
	// Scene optionally replaces the checker's scene graph for this query, e.g. after a grasp.
	Scene SceneGraph
}

// BoundsChecker is the planner's admissibility test that runs before any geometry is touched.
type BoundsChecker interface {
	SatisfiesBounds(state *State) bool
}

// BoundsFunc adapts a function to a BoundsChecker.
type BoundsFunc func(state *State) bool

// SatisfiesBounds calls f.
func (f BoundsFunc) SatisfiesBounds(state *State) bool {
	return f(state)
}

// Bounds checks joint limits and optional translation boxes for the base and movable objects.
type Bounds struct {
	NumContinuous int
	Joints        []referenceframe.Limit
	// Base and Objects bound translations when non-nil.
	Base    *spatial.AABB
	Objects *spatial.AABB
}

// NewBoundsFromGraph builds joint bounds from the limits in the scene graph.
func NewBoundsFromGraph(scene SceneGraph) *Bounds {
	return &Bounds{
		NumContinuous: len(scene.ContinuousJoints()),
		Joints: lo.Map(scene.Joints(), func(n *referenceframe.Node, _ int) referenceframe.Limit {
			return n.Joint.Limit
		}),
	}
}

// SatisfiesBounds implements BoundsChecker.
func (b *Bounds) SatisfiesBounds(state *State) bool {
	if state == nil || len(state.Continuous) != b.NumContinuous || len(state.Joints) != len(b.Joints) {
		return false
	}
	for _, in := range state.Continuous {
		if math.IsNaN(in.Value) || math.IsInf(in.Value, 0) {
			return false
		}
	}
	for i, in := range state.Joints {
		if !b.Joints[i].Within(in.Value) {
			return false
		}
	}
	if state.Base != nil && !poseWithin(state.Base, b.Base) {
		return false
	}
	for _, pose := range state.Objects {
		if pose == nil || !poseWithin(pose, b.Objects) {
			return false
		}
	}
	return true
}

func poseWithin(p spatial.Pose, box *spatial.AABB) bool {
	if !spatial.PoseIsFinite(p) {
		return false
	}
	if box == nil {
		return true
	}
	pt := p.Point()
	return box.Overlaps(spatial.AABB{Min: pt, Max: pt})
}

// StateConfig is the JSON form of a State.
type StateConfig struct {
	Continuous []float64                             `json:"continuous,omitempty"`
	Joints     []float64                             `json:"joints,omitempty"`
	Base       *referenceframe.PoseConfig            `json:"base,omitempty"`
	Objects    map[string]*referenceframe.PoseConfig `json:"objects,omitempty"`
}

// ToState converts the config into a State.
func (cfg *StateConfig) ToState() *State {
	state := &State{
		Continuous: referenceframe.FloatsToInputs(cfg.Continuous),
		Joints:     referenceframe.FloatsToInputs(cfg.Joints),
	}
	if cfg.Base != nil {
		state.Base = cfg.Base.ParseConfig()
	}
	if len(cfg.Objects) > 0 {
		state.Objects = lo.MapValues(cfg.Objects, func(p *referenceframe.PoseConfig, _ string) spatial.Pose {
			return p.ParseConfig()
		})
	}
	return state
}

// ParseStatesJSON reads a JSON list of states.
func ParseStatesJSON(r io.Reader) ([]*State, error) {
	var cfgs []StateConfig
	if err := json.NewDecoder(r).Decode(&cfgs); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal states json")
	}
	return lo.Map(cfgs, func(cfg StateConfig, _ int) *State { return cfg.ToState() }), nil
}
