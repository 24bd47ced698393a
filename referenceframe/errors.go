package referenceframe

import (
	"github.com/pkg/errors"
)

// ErrCircularReference is returned when an operation would introduce a cycle into the kinematic tree.
var ErrCircularReference = errors.New("infinite loop finding path from node to world")

// NewFrameMissingError returns an error indicating that the given node is missing from the graph.
func NewFrameMissingError(name string) error {
	return errors.Errorf("node with name %q not in scene graph", name)
}

// NewParentFrameMissingError returns an error indicating that the parent of a node is missing from the graph.
func NewParentFrameMissingError(name, parent string) error {
	return errors.Errorf("parent %q of node %q not in scene graph", parent, name)
}

// NewDuplicateNodeError returns an error indicating that a node name is already taken.
func NewDuplicateNodeError(name string) error {
	return errors.Errorf("node with name %q already exists in scene graph", name)
}

// NewReservedWordError is used when a node is given a reserved name.
func NewReservedWordError(configType, reservedWord string) error {
	return errors.Errorf("reserved word: cannot name a %s '%s'", configType, reservedWord)
}

// NewIncorrectDoFError returns an error indicating that the number of inputs does not match the joints of the graph.
func NewIncorrectDoFError(actual, expected int) error {
	return errors.Errorf("number of inputs does not match joints, have %d, need %d", actual, expected)
}

// NewMissingGeometryError returns an error indicating that a robot link which must carry geometry has none.
func NewMissingGeometryError(name string) error {
	return errors.Errorf("robot link %q requires collision geometry but has none", name)
}

// NewNotAnObjectError returns an error indicating that a pose was assigned to a node that is not a movable object.
func NewNotAnObjectError(name string) error {
	return errors.Errorf("node %q is not a movable object", name)
}

// NewUnsupportedJointTypeError is used when a joint type is not known.
func NewUnsupportedJointTypeError(jointType string) error {
	return errors.Errorf("unsupported joint type detected: %q", jointType)
}

// NewObjectObstacleConflictError returns an error indicating that a node is flagged both as a movable object and as
// a static obstacle.
func NewObjectObstacleConflictError(name string) error {
	return errors.Errorf("node %q cannot be both an object and an obstacle", name)
}

// NewInvertedLimitError returns an error indicating that a joint limit has its minimum above its maximum.
func NewInvertedLimitError(name string, limit Limit) error {
	return errors.Errorf("joint of node %q has min %f greater than max %f", name, limit.Min, limit.Max)
}

// NewMovableObstacleError returns an error indicating that a static obstacle hangs off a movable joint.
func NewMovableObstacleError(name string) error {
	return errors.Errorf("obstacle %q cannot have a movable joint", name)
}
