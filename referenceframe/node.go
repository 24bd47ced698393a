package referenceframe

import (
	spatial "go.viam.com/motionvalidity/spatialmath"
)

// World is the name of the root node of every scene graph.
const World = "world"

// Node is an element of the kinematic tree: a robot link, a movable object, or a static obstacle.
type Node struct {
	Name string

	// Geometry is expressed in the collision frame, which sits at CollisionOffset in the node frame.
	Geometry        spatial.Geometry
	CollisionOffset spatial.Pose

	// Origin is the fixed pose of the node frame in its parent frame, applied before the joint motion.
	Origin spatial.Pose
	Joint  *Joint

	IsObject         bool
	IsObstacle       bool
	RequiresGeometry bool

	parent   *Node
	children []*Node
}

// HasGeometry reports whether the node carries collision geometry.
func (n *Node) HasGeometry() bool {
	return n.Geometry != nil
}

// IsRobotLink reports whether the node is part of the robot, i.e. neither a movable object nor an obstacle.
func (n *Node) IsRobotLink() bool {
	return !n.IsObject && !n.IsObstacle && n.Name != World
}

// Parent returns the parent node, nil for the world root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the direct children of the node in insertion order.
func (n *Node) Children() []*Node {
	return n.children
}

func (n *Node) collisionOffset() spatial.Pose {
	if n.CollisionOffset == nil {
		return spatial.NewZeroPose()
	}
	return n.CollisionOffset
}

func (n *Node) origin() spatial.Pose {
	if n.Origin == nil {
		return spatial.NewZeroPose()
	}
	return n.Origin
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}
