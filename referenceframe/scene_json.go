package referenceframe

import (
	"encoding/json"
	"io"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	spatial "go.viam.com/motionvalidity/spatialmath"
	"go.viam.com/motionvalidity/utils"
)

// PoseConfig is the JSON form of a pose: a translation in mm and an axis angle orientation in radians.
type PoseConfig struct {
	Translation r3.Vector     `json:"translation"`
	Orientation *spatial.R4AA `json:"orientation,omitempty"`
}

// ParseConfig converts the config into a Pose. A nil config is the zero pose.
func (cfg *PoseConfig) ParseConfig() spatial.Pose {
	if cfg == nil {
		return spatial.NewZeroPose()
	}
	if cfg.Orientation == nil {
		return spatial.NewPoseFromPoint(cfg.Translation)
	}
	aa := *cfg.Orientation
	aa.Normalize()
	return spatial.NewPose(cfg.Translation, &aa)
}

// JointConfig describes the joint between a node and its parent. Limits are in degrees for rotational joints and mm
// for prismatic joints.
type JointConfig struct {
	Type string    `json:"type"`
	Axis r3.Vector `json:"axis"`
	Min  float64   `json:"min"`
	Max  float64   `json:"max"`
}

// ToJoint converts the config into a Joint.
func (cfg *JointConfig) ToJoint() (*Joint, error) {
	limit := Limit{Min: cfg.Min, Max: cfg.Max}
	if JointType(cfg.Type) == RevoluteJoint {
		limit = Limit{Min: utils.DegToRad(cfg.Min), Max: utils.DegToRad(cfg.Max)}
	}
	return NewJoint(JointType(cfg.Type), cfg.Axis, limit)
}

// NodeConfig is the JSON form of a single node.
type NodeConfig struct {
	ID               string                  `json:"id"`
	Parent           string                  `json:"parent"`
	Origin           *PoseConfig             `json:"origin,omitempty"`
	Joint            *JointConfig            `json:"joint,omitempty"`
	Geometry         *spatial.GeometryConfig `json:"geometry,omitempty"`
	CollisionOffset  *PoseConfig             `json:"collision_offset,omitempty"`
	RequiresGeometry bool                    `json:"requires_geometry,omitempty"`
}

// SceneConfigJSON represents all supported fields in a scene JSON file.
type SceneConfigJSON struct {
	Name      string       `json:"name"`
	RobotBase string       `json:"robot_base,omitempty"`
	Links     []NodeConfig `json:"links"`
	Objects   []NodeConfig `json:"objects,omitempty"`
	Obstacles []NodeConfig `json:"obstacles,omitempty"`
}

// ParseConfig builds a Graph from the scene config. Nodes may be listed in any order as long as every parent exists.
func (cfg *SceneConfigJSON) ParseConfig() (*Graph, error) {
	g := NewGraph(cfg.Name)

	type pending struct {
		node   *Node
		parent string
	}
	var todo []pending
	add := func(nc NodeConfig, object, obstacle bool) error {
		if nc.ID == "" {
			return errors.New("scene node is missing an id")
		}
		node := &Node{
			Name:             nc.ID,
			Origin:           nc.Origin.ParseConfig(),
			CollisionOffset:  nc.CollisionOffset.ParseConfig(),
			IsObject:         object,
			IsObstacle:       obstacle,
			RequiresGeometry: nc.RequiresGeometry,
		}
		if nc.Geometry != nil {
			geom, err := nc.Geometry.ParseConfig()
			if err != nil {
				return errors.Wrapf(err, "node %q", nc.ID)
			}
			if geom.Label() == "" {
				geom.SetLabel(nc.ID)
			}
			node.Geometry = geom
		}
		if nc.Joint != nil {
			joint, err := nc.Joint.ToJoint()
			if err != nil {
				return errors.Wrapf(err, "node %q", nc.ID)
			}
			node.Joint = joint
		}
		parent := nc.Parent
		if parent == "" {
			parent = World
		}
		todo = append(todo, pending{node, parent})
		return nil
	}
	for _, nc := range cfg.Links {
		if err := add(nc, false, false); err != nil {
			return nil, err
		}
	}
	for _, nc := range cfg.Objects {
		if err := add(nc, true, false); err != nil {
			return nil, err
		}
	}
	for _, nc := range cfg.Obstacles {
		if err := add(nc, false, true); err != nil {
			return nil, err
		}
	}

	// Attach in passes so that children may precede their parents in the file.
	for len(todo) > 0 {
		var next []pending
		for _, p := range todo {
			if g.Find(p.parent) == nil {
				next = append(next, p)
				continue
			}
			if err := g.AddNode(p.node, p.parent); err != nil {
				return nil, err
			}
		}
		if len(next) == len(todo) {
			return nil, NewParentFrameMissingError(next[0].node.Name, next[0].parent)
		}
		todo = next
	}

	base := cfg.RobotBase
	if base == "" {
		for _, c := range g.World().Children() {
			if c.IsRobotLink() {
				base = c.Name
				break
			}
		}
	}
	if base != "" {
		if err := g.SetRobotBase(base); err != nil {
			return nil, err
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// ParseSceneJSON reads a scene description and builds the Graph it describes.
func ParseSceneJSON(r io.Reader) (*Graph, error) {
	var cfg SceneConfigJSON
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal scene json")
	}
	return cfg.ParseConfig()
}

// ParseSceneJSONFile will read a given file and then parse the contained JSON data.
func ParseSceneJSONFile(filename string) (*Graph, error) {
	//nolint:gosec
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scene file")
	}
	defer func() {
		_ = f.Close()
	}()
	return ParseSceneJSON(f)
}
