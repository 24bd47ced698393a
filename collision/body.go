// Package collision implements a small discrete collision engine: bodies with broadphase group and mask bits, a
// pluggable pair filter, a sweep-and-prune broadphase and contact manifolds produced by spatialmath narrowphase.
package collision

import (
	spatial "go.viam.com/motionvalidity/spatialmath"
)

// Group is a bitmask used to select which categories of bodies may be tested against each other.
type Group uint32

// Broadphase groups.
const (
	GroupRobot Group = 1 << iota
	GroupObject
	GroupObstacle

	GroupAll = GroupRobot | GroupObject | GroupObstacle
)

// UnsetFilterIndex marks a body that does not take part in link-pair filtering.
const UnsetFilterIndex = -1

// Body is a collision object registered with a World. Its geometry is fixed, only its world transform changes.
type Body struct {
	Name        string
	Geometry    spatial.Geometry
	FilterIndex int

	id        int
	group     Group
	mask      Group
	transform spatial.Pose
	world     spatial.Geometry
	aabb      spatial.AABB
	dirty     bool
}

// NewBody returns a body at the identity transform. geometry is expressed in the body frame.
func NewBody(name string, geometry spatial.Geometry, filterIndex int) *Body {
	return &Body{
		Name:        name,
		Geometry:    geometry,
		FilterIndex: filterIndex,
		id:          -1,
		transform:   spatial.NewZeroPose(),
		dirty:       true,
	}
}

// SetTransform moves the body. The world geometry and bounding box are refreshed lazily.
func (b *Body) SetTransform(tf spatial.Pose) {
	b.transform = tf
	b.dirty = true
}

// Transform returns the current world transform of the body.
func (b *Body) Transform() spatial.Pose {
	return b.transform
}

// Group returns the broadphase group of the body.
func (b *Body) Group() Group {
	return b.group
}

// Mask returns the groups this body may collide with.
func (b *Body) Mask() Group {
	return b.mask
}

// WorldGeometry returns the geometry placed at the current transform.
func (b *Body) WorldGeometry() spatial.Geometry {
	b.refresh()
	return b.world
}

// AABB returns the world bounding box at the current transform.
func (b *Body) AABB() spatial.AABB {
	b.refresh()
	return b.aabb
}

func (b *Body) refresh() {
	if !b.dirty {
		return
	}
	b.world = b.Geometry.Transform(b.transform)
	b.aabb = b.world.AABB()
	b.dirty = false
}

// GroupsCompatible is the default broadphase admission test: each body's group must be in the other's mask.
func GroupsCompatible(a, b *Body) bool {
	return a.group&b.mask != 0 && b.group&a.mask != 0
}
