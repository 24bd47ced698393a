package referenceframe

import (
	"math"

	"github.com/golang/geo/r3"

	spatial "go.viam.com/motionvalidity/spatialmath"
)

// JointType describes how a node moves relative to its parent.
type JointType string

// The set of supported joint types.
const (
	FixedJoint      = JointType("fixed")
	RevoluteJoint   = JointType("revolute")
	PrismaticJoint  = JointType("prismatic")
	ContinuousJoint = JointType("continuous")
)

// Joint is the single degree of freedom between a node and its parent. Continuous joints are unbounded
// rotations whose values are supplied separately from the other joints.
type Joint struct {
	Type  JointType
	Axis  r3.Vector
	Limit Limit
}

// NewJoint validates and constructs a joint. Continuous joints ignore the given limit.
func NewJoint(jointType JointType, axis r3.Vector, limit Limit) (*Joint, error) {
	switch jointType {
	case FixedJoint, RevoluteJoint, PrismaticJoint:
	case ContinuousJoint:
		limit = Limit{Min: math.Inf(-1), Max: math.Inf(1)}
	default:
		return nil, NewUnsupportedJointTypeError(string(jointType))
	}
	if jointType != FixedJoint && axis.Norm() == 0 {
		axis = r3.Vector{Z: 1}
	}
	return &Joint{Type: jointType, Axis: axis.Normalize(), Limit: limit}, nil
}

// Movable reports whether the joint consumes an input.
func (j *Joint) Movable() bool {
	return j != nil && j.Type != FixedJoint
}

// Transform returns the motion of the joint for the given value.
func (j *Joint) Transform(value float64) spatial.Pose {
	switch {
	case j == nil:
		return spatial.NewZeroPose()
	case j.Type == RevoluteJoint || j.Type == ContinuousJoint:
		return spatial.NewPoseFromOrientation(&spatial.R4AA{Theta: value, RX: j.Axis.X, RY: j.Axis.Y, RZ: j.Axis.Z})
	case j.Type == PrismaticJoint:
		return spatial.NewPoseFromPoint(j.Axis.Mul(value))
	default:
		return spatial.NewZeroPose()
	}
}
