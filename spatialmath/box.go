package spatialmath

import (
	"encoding/json"
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/motionvalidity/utils"
)

// box is a collision geometry that represents a 3D rectangular prism, it has a pose and half size that fully define it.
type box struct {
	pose     Pose
	halfSize [3]float64
	label    string

	rotMatrix *RotationMatrix
}

// NewBox instantiates a new box Geometry. dims are the full side lengths.
func NewBox(pose Pose, dims r3.Vector, label string) (Geometry, error) {
	// Negative dimensions not allowed. Zero dimensions are allowed for bounding boxes, etc.
	if dims.X < 0 || dims.Y < 0 || dims.Z < 0 {
		return nil, newBadGeometryDimensionsError(&box{})
	}
	return newBox(pose, [3]float64{dims.X / 2, dims.Y / 2, dims.Z / 2}, label), nil
}

func newBox(pose Pose, halfSize [3]float64, label string) *box {
	return &box{
		pose:      pose,
		halfSize:  halfSize,
		label:     label,
		rotMatrix: pose.Orientation().RotationMatrix(),
	}
}

func (b *box) Pose() Pose {
	return b.pose
}

func (b *box) Label() string {
	return b.label
}

func (b *box) SetLabel(label string) {
	b.label = label
}

// Dims returns the full side lengths of the box.
func (b *box) Dims() r3.Vector {
	return r3.Vector{X: 2 * b.halfSize[0], Y: 2 * b.halfSize[1], Z: 2 * b.halfSize[2]}
}

func (b *box) AABB() AABB {
	c := b.pose.Point()
	var extent [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			extent[i] += math.Abs(b.rotMatrix.At(i, j)) * b.halfSize[j]
		}
	}
	e := r3.Vector{X: extent[0], Y: extent[1], Z: extent[2]}
	return AABB{Min: c.Sub(e), Max: c.Add(e)}
}

// Transform premultiplies the box pose with a transform, the box is returned as a new Geometry.
func (b *box) Transform(toPremultiply Pose) Geometry {
	return newBox(Compose(toPremultiply, b.pose), b.halfSize, b.label)
}

func (b *box) ToConfig() *GeometryConfig {
	dims := b.Dims()
	return offsetConfig(&GeometryConfig{Type: BoxType, X: dims.X, Y: dims.Y, Z: dims.Z, Label: b.label}, b.pose)
}

func (b *box) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.ToConfig())
}

func (b *box) DistanceFrom(g Geometry) (float64, error) {
	return distanceFrom(b, g)
}

func (b *box) CollidesWith(g Geometry, buffer float64) (bool, error) {
	return collidesWith(b, g, buffer)
}

// toLocal expresses a world point in the box frame.
func (b *box) toLocal(pt r3.Vector) r3.Vector {
	return b.rotMatrix.TransposeMul(pt.Sub(b.pose.Point()))
}

// closestPoint returns the closest point on or inside the box to the given point.
func (b *box) closestPoint(pt r3.Vector) r3.Vector {
	local := b.toLocal(pt)
	clamped := r3.Vector{
		X: utils.Clamp(local.X, -b.halfSize[0], b.halfSize[0]),
		Y: utils.Clamp(local.Y, -b.halfSize[1], b.halfSize[1]),
		Z: utils.Clamp(local.Z, -b.halfSize[2], b.halfSize[2]),
	}
	return b.rotMatrix.Mul(clamped).Add(b.pose.Point())
}

// pointSignedDistance returns the signed distance from a point to the box surface, the nearest surface point and the
// outward unit normal at that point. Inside points have negative distance and use the least penetrated face.
func (b *box) pointSignedDistance(pt r3.Vector) (float64, r3.Vector, r3.Vector) {
	closest := b.closestPoint(pt)
	diff := pt.Sub(closest)
	if d := diff.Norm(); d > 1e-12 {
		return d, closest, diff.Mul(1 / d)
	}
	local := b.toLocal(pt)
	coords := [3]float64{local.X, local.Y, local.Z}
	face := 0
	depth := math.Inf(1)
	for i := 0; i < 3; i++ {
		if d := b.halfSize[i] - math.Abs(coords[i]); d < depth {
			depth = d
			face = i
		}
	}
	normal := b.rotMatrix.Axis(face)
	if coords[face] < 0 {
		normal = normal.Mul(-1)
	}
	return -depth, pt.Add(normal.Mul(depth)), normal
}

// vertices returns the eight corners of the box in world coordinates.
func (b *box) vertices() [8]r3.Vector {
	var verts [8]r3.Vector
	c := b.pose.Point()
	for i := 0; i < 8; i++ {
		v := c
		for axis := 0; axis < 3; axis++ {
			sign := 1.
			if i&(1<<axis) != 0 {
				sign = -1.
			}
			v = v.Add(b.rotMatrix.Axis(axis).Mul(sign * b.halfSize[axis]))
		}
		verts[i] = v
	}
	return verts
}

// boxEdges returns the twelve edges of the box as pairs of vertex indices into vertices().
func boxEdges() [12][2]int {
	var edges [12][2]int
	n := 0
	for i := 0; i < 8; i++ {
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) == 0 {
				edges[n] = [2]int{i, i | (1 << axis)}
				n++
			}
		}
	}
	return edges
}

// supportPoint returns the vertex of the box furthest along dir.
func (b *box) supportPoint(dir r3.Vector) r3.Vector {
	pt := b.pose.Point()
	for axis := 0; axis < 3; axis++ {
		a := b.rotMatrix.Axis(axis)
		if a.Dot(dir) >= 0 {
			pt = pt.Add(a.Mul(b.halfSize[axis]))
		} else {
			pt = pt.Sub(a.Mul(b.halfSize[axis]))
		}
	}
	return pt
}

// projectionRadius returns half the length of the projection of the box onto a unit axis.
func (b *box) projectionRadius(axis r3.Vector) float64 {
	var r float64
	for i := 0; i < 3; i++ {
		r += b.halfSize[i] * math.Abs(b.rotMatrix.Axis(i).Dot(axis))
	}
	return r
}
