package referenceframe

import (
	"go.uber.org/multierr"

	spatial "go.viam.com/motionvalidity/spatialmath"
)

// PoseCallback receives every geometry-bearing node during a transform update. robotLink is the closest robot link at
// or above the node, nil for nodes hanging directly off the world. tf is the world pose of the node frame and
// collisionTf the world pose of its collision frame.
type PoseCallback func(node, robotLink *Node, tf, collisionTf spatial.Pose)

// Graph is a kinematic tree rooted at the world node. It holds robot links, movable objects and static obstacles.
// A Graph is not safe for concurrent use; give each worker its own Clone.
type Graph struct {
	name      string
	world     *Node
	nodes     map[string]*Node
	robotBase string
}

// NewGraph returns an empty graph containing only the world node.
func NewGraph(name string) *Graph {
	world := &Node{Name: World}
	return &Graph{
		name:  name,
		world: world,
		nodes: map[string]*Node{World: world},
	}
}

// Name returns the name of the graph.
func (g *Graph) Name() string {
	return g.name
}

// World returns the root node.
func (g *Graph) World() *Node {
	return g.world
}

// AddNode attaches a node under the named parent. Names are unique across the whole graph.
func (g *Graph) AddNode(node *Node, parent string) error {
	if node == nil {
		return NewFrameMissingError("<nil>")
	}
	if node.Name == World {
		return NewReservedWordError("node", World)
	}
	if _, ok := g.nodes[node.Name]; ok {
		return NewDuplicateNodeError(node.Name)
	}
	p, ok := g.nodes[parent]
	if !ok {
		return NewParentFrameMissingError(node.Name, parent)
	}
	node.parent = p
	node.children = nil
	p.children = append(p.children, node)
	g.nodes[node.Name] = node
	return nil
}

// SetRobotBase names the node whose world pose is replaced by the base transform passed to UpdateTransforms.
func (g *Graph) SetRobotBase(name string) error {
	n, ok := g.nodes[name]
	if !ok || !n.IsRobotLink() {
		return NewFrameMissingError(name)
	}
	g.robotBase = name
	return nil
}

// RobotBase returns the name of the robot base node, empty if none was set.
func (g *Graph) RobotBase() string {
	return g.robotBase
}

// Find looks up a node by name. It returns nil when no such node exists.
func (g *Graph) Find(name string) *Node {
	return g.nodes[name]
}

// IsAncestor reports whether the node named ancestor is a strict ancestor of the node named descendant
// in the current tree. Unknown names are never ancestors.
func (g *Graph) IsAncestor(ancestor, descendant string) bool {
	a, ok := g.nodes[ancestor]
	if !ok {
		return false
	}
	d, ok := g.nodes[descendant]
	if !ok {
		return false
	}
	for p := d.parent; p != nil; p = p.parent {
		if p == a {
			return true
		}
	}
	return false
}

// HasChild reports whether b is somewhere below a in the tree.
func (g *Graph) HasChild(a, b string) bool {
	return g.IsAncestor(a, b)
}

// walk visits every node except the world in depth first order, children in insertion order.
func (g *Graph) walk(fn func(*Node)) {
	var visit func(*Node)
	visit = func(n *Node) {
		for _, c := range n.children {
			fn(c)
			visit(c)
		}
	}
	visit(g.world)
}

func (g *Graph) collect(keep func(*Node) bool) []*Node {
	var out []*Node
	g.walk(func(n *Node) {
		if keep(n) {
			out = append(out, n)
		}
	})
	return out
}

// Nodes returns every node except the world in depth first order.
func (g *Graph) Nodes() []*Node {
	return g.collect(func(*Node) bool { return true })
}

// RobotLinks returns every robot link in depth first order.
func (g *Graph) RobotLinks() []*Node {
	return g.collect((*Node).IsRobotLink)
}

// Objects returns every movable object in depth first order.
func (g *Graph) Objects() []*Node {
	return g.collect(func(n *Node) bool { return n.IsObject })
}

// Obstacles returns every static obstacle in depth first order.
func (g *Graph) Obstacles() []*Node {
	return g.collect(func(n *Node) bool { return n.IsObstacle })
}

// Joints returns the nodes with bounded movable joints, in the order their inputs are consumed.
func (g *Graph) Joints() []*Node {
	return g.collect(func(n *Node) bool { return n.Joint.Movable() && n.Joint.Type != ContinuousJoint })
}

// ContinuousJoints returns the nodes with continuous joints, in the order their inputs are consumed.
func (g *Graph) ContinuousJoints() []*Node {
	return g.collect(func(n *Node) bool { return n.Joint.Movable() && n.Joint.Type == ContinuousJoint })
}

// DoF returns the limits of the bounded joints, in input order.
func (g *Graph) DoF() []Limit {
	joints := g.Joints()
	limits := make([]Limit, 0, len(joints))
	for _, n := range joints {
		limits = append(limits, n.Joint.Limit)
	}
	return limits
}

// PoseObjects assigns poses, relative to their parents, to movable objects. Either every pose is applied or none.
func (g *Graph) PoseObjects(poses map[string]spatial.Pose) error {
	for name := range poses {
		n, ok := g.nodes[name]
		if !ok {
			return NewFrameMissingError(name)
		}
		if !n.IsObject {
			return NewNotAnObjectError(name)
		}
	}
	for name, pose := range poses {
		g.nodes[name].Origin = pose
	}
	return nil
}

// UpdateTransforms runs forward kinematics over the whole tree and calls fn once for each geometry-bearing node.
// A nil base leaves the robot base at its configured origin.
func (g *Graph) UpdateTransforms(continuous, joints []Input, base spatial.Pose, fn PoseCallback) error {
	if n := len(g.ContinuousJoints()); n != len(continuous) {
		return NewIncorrectDoFError(len(continuous), n)
	}
	if n := len(g.Joints()); n != len(joints) {
		return NewIncorrectDoFError(len(joints), n)
	}

	var contIdx, jointIdx int
	var visit func(n *Node, parentTf spatial.Pose, robotLink *Node)
	visit = func(n *Node, parentTf spatial.Pose, robotLink *Node) {
		var tf spatial.Pose
		if n.Name == g.robotBase && base != nil {
			tf = base
		} else {
			tf = spatial.Compose(parentTf, n.origin())
		}
		if n.Joint.Movable() {
			var value float64
			if n.Joint.Type == ContinuousJoint {
				value = continuous[contIdx].Value
				contIdx++
			} else {
				value = joints[jointIdx].Value
				jointIdx++
			}
			tf = spatial.Compose(tf, n.Joint.Transform(value))
		}
		if n.IsRobotLink() {
			robotLink = n
		}
		if n.HasGeometry() && fn != nil {
			fn(n, robotLink, tf, spatial.Compose(tf, n.collisionOffset()))
		}
		for _, c := range n.children {
			visit(c, tf, robotLink)
		}
	}
	for _, c := range g.world.children {
		visit(c, spatial.NewZeroPose(), nil)
	}
	return nil
}

// Reparent moves a node, with its subtree, under a new parent at the given origin. This models kinematic effects such
// as grasping or releasing an object, and changes ancestor queries immediately.
func (g *Graph) Reparent(name, newParent string, origin spatial.Pose) error {
	n, ok := g.nodes[name]
	if !ok || n == g.world {
		return NewFrameMissingError(name)
	}
	p, ok := g.nodes[newParent]
	if !ok {
		return NewParentFrameMissingError(name, newParent)
	}
	if p == n || g.IsAncestor(name, newParent) {
		return ErrCircularReference
	}
	n.parent.removeChild(n)
	n.parent = p
	n.Origin = origin
	p.children = append(p.children, n)
	return nil
}

// Clone returns a structural copy of the graph. Geometries are immutable and shared, everything else is copied.
func (g *Graph) Clone() *Graph {
	clone := NewGraph(g.name)
	clone.robotBase = g.robotBase
	var visit func(src, dstParent *Node)
	visit = func(src, dstParent *Node) {
		dst := &Node{
			Name:             src.Name,
			Geometry:         src.Geometry,
			CollisionOffset:  src.CollisionOffset,
			Origin:           src.Origin,
			IsObject:         src.IsObject,
			IsObstacle:       src.IsObstacle,
			RequiresGeometry: src.RequiresGeometry,
			parent:           dstParent,
		}
		if src.Joint != nil {
			j := *src.Joint
			dst.Joint = &j
		}
		dstParent.children = append(dstParent.children, dst)
		clone.nodes[dst.Name] = dst
		for _, c := range src.children {
			visit(c, dst)
		}
	}
	for _, c := range g.world.children {
		visit(c, clone.world)
	}
	return clone
}

// Validate checks the graph for configuration problems and reports all of them.
func (g *Graph) Validate() error {
	var errs error
	g.walk(func(n *Node) {
		if n.IsObject && n.IsObstacle {
			errs = multierr.Append(errs, NewObjectObstacleConflictError(n.Name))
		}
		if n.IsRobotLink() && n.RequiresGeometry && !n.HasGeometry() {
			errs = multierr.Append(errs, NewMissingGeometryError(n.Name))
		}
		if n.Joint.Movable() && n.Joint.Type != ContinuousJoint && n.Joint.Limit.Min > n.Joint.Limit.Max {
			errs = multierr.Append(errs, NewInvertedLimitError(n.Name, n.Joint.Limit))
		}
		if n.IsObstacle && n.Joint.Movable() {
			errs = multierr.Append(errs, NewMovableObstacleError(n.Name))
		}
	})
	if g.robotBase != "" {
		if _, ok := g.nodes[g.robotBase]; !ok {
			errs = multierr.Append(errs, NewFrameMissingError(g.robotBase))
		}
	}
	return errs
}
