package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// AABB is an axis aligned bounding box in world coordinates.
type AABB struct {
	Min r3.Vector
	Max r3.Vector
}

// NewAABBFromPoints returns the smallest AABB containing all of the given points.
func NewAABBFromPoints(pts ...r3.Vector) AABB {
	box := AABB{
		Min: r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	for _, pt := range pts {
		box.Min = r3.Vector{X: math.Min(box.Min.X, pt.X), Y: math.Min(box.Min.Y, pt.Y), Z: math.Min(box.Min.Z, pt.Z)}
		box.Max = r3.Vector{X: math.Max(box.Max.X, pt.X), Y: math.Max(box.Max.Y, pt.Y), Z: math.Max(box.Max.Z, pt.Z)}
	}
	return box
}

// Expand returns a copy of the box grown by margin in every direction.
func (b AABB) Expand(margin float64) AABB {
	m := r3.Vector{X: margin, Y: margin, Z: margin}
	return AABB{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
}

// Overlaps reports whether two boxes intersect. Touching boxes overlap.
func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y &&
		b.Min.Z <= o.Max.Z && o.Min.Z <= b.Max.Z
}

// Center returns the midpoint of the box.
func (b AABB) Center() r3.Vector {
	return b.Min.Add(b.Max).Mul(0.5)
}
