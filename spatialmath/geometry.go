package spatialmath

import (
	"encoding/json"
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Geometry is an entry point with which to access all types of collision geometries.
type Geometry interface {
	Pose() Pose
	AABB() AABB
	Transform(Pose) Geometry
	Label() string
	SetLabel(string)
	ToConfig() *GeometryConfig
	DistanceFrom(Geometry) (float64, error)
	CollidesWith(Geometry, float64) (bool, error)
	json.Marshaler
}

// GeometryType defines what geometry creator representations are known.
type GeometryType string

// The set of allowed representations for collision geometry.
const (
	UnknownType = GeometryType("")
	BoxType     = GeometryType("box")
	SphereType  = GeometryType("sphere")
	CapsuleType = GeometryType("capsule")
)

// GeometryConfig specifies the format of geometries specified through JSON configuration files.
// Box dimensions and capsule length are full lengths, not half lengths.
type GeometryConfig struct {
	Type GeometryType `json:"type"`

	// parameters used for defining a box's rectangular cross-section
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
	Z float64 `json:"z,omitempty"`

	// parameters used for defining a sphere or capsule
	R float64 `json:"r,omitempty"`
	L float64 `json:"l,omitempty"`

	// define an offset to position the geometry
	TranslationOffset r3.Vector `json:"translation,omitempty"`
	OrientationOffset *R4AA     `json:"orientation,omitempty"`

	Label string `json:"label,omitempty"`
}

// NewGeometryConfig returns the config that describes g, with its pose as the offset.
func NewGeometryConfig(g Geometry) *GeometryConfig {
	return g.ToConfig()
}

// ParseConfig converts a GeometryConfig into the correct Geometry.
func (config *GeometryConfig) ParseConfig() (Geometry, error) {
	orientation := Orientation(NewZeroOrientation())
	if config.OrientationOffset != nil {
		aa := *config.OrientationOffset
		aa.Normalize()
		orientation = &aa
	}
	offset := NewPose(config.TranslationOffset, orientation)

	switch config.Type {
	case BoxType:
		return NewBox(offset, r3.Vector{X: config.X, Y: config.Y, Z: config.Z}, config.Label)
	case SphereType:
		return NewSphere(offset, config.R, config.Label)
	case CapsuleType:
		return NewCapsule(offset, config.R, config.L, config.Label)
	case UnknownType:
		// no type specified, iterate through supported types and try to infer intent
		if config.R > 0 && config.L > 0 {
			return NewCapsule(offset, config.R, config.L, config.Label)
		}
		if config.R > 0 {
			return NewSphere(offset, config.R, config.Label)
		}
		if config.X > 0 || config.Y > 0 || config.Z > 0 {
			return NewBox(offset, r3.Vector{X: config.X, Y: config.Y, Z: config.Z}, config.Label)
		}
	}
	return nil, errors.Wrapf(ErrGeometryTypeUnsupported, "%q", config.Type)
}

func offsetConfig(cfg *GeometryConfig, pose Pose) *GeometryConfig {
	cfg.TranslationOffset = pose.Point()
	aa := pose.Orientation().AxisAngles()
	if aa.Theta != 0 {
		cfg.OrientationOffset = aa
	}
	return cfg
}

// UnmarshalGeometryJSON parses a single geometry from its JSON config representation.
func UnmarshalGeometryJSON(data []byte) (Geometry, error) {
	var cfg GeometryConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal geometry config")
	}
	return cfg.ParseConfig()
}

// String renders the shape and its dimensions in mm.
func (config *GeometryConfig) String() string {
	switch config.Type {
	case BoxType:
		return fmt.Sprintf("box X:%.1f, Y:%.1f, Z:%.1f", config.X, config.Y, config.Z)
	case SphereType:
		return fmt.Sprintf("sphere R:%.1f", config.R)
	case CapsuleType:
		return fmt.Sprintf("capsule R:%.1f, L:%.1f", config.R, config.L)
	default:
		return string(config.Type)
	}
}
