package motionplan

import (
	"encoding/json"
	"io"
	"sort"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/montanaflynn/stats"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"go.viam.com/motionvalidity/collision"
)

// Reason explains a validity decision.
type Reason int

// The reasons a state can be decided.
const (
	ReasonNone Reason = iota
	ReasonOutOfBounds
	ReasonSelfCollision
	ReasonWorldCollision
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "valid"
	case ReasonOutOfBounds:
		return "out of bounds"
	case ReasonSelfCollision:
		return "self collision"
	case ReasonWorldCollision:
		return "world collision"
	default:
		return "unknown"
	}
}

// Collision is a disqualifying contact between two named bodies.
type Collision struct {
	Name1, Name2 string
	Distance     float64
	PositionOnA  r3.Vector
	PositionOnB  r3.Vector
	NormalOnB    r3.Vector
	Self         bool
}

// MarshalLogObject encodes the contact as a nested log field.
func (c Collision) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("body0", c.Name1)
	enc.AddString("body1", c.Name2)
	enc.AddFloat64("distance", c.Distance)
	enc.AddBool("self", c.Self)
	return multierr.Combine(
		enc.AddArray("position_on_a", vectorArray(c.PositionOnA)),
		enc.AddArray("position_on_b", vectorArray(c.PositionOnB)),
		enc.AddArray("normal_on_b", vectorArray(c.NormalOnB)),
	)
}

type vectorArray r3.Vector

func (v vectorArray) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	enc.AppendFloat64(v.X)
	enc.AppendFloat64(v.Y)
	enc.AppendFloat64(v.Z)
	return nil
}

// Result is the outcome of a validity query. Collisions holds the deciding contact, or every disqualifying contact
// when the checker scans all contacts.
type Result struct {
	Valid      bool
	Reason     Reason
	Collisions []Collision
}

// Observer is notified of every disqualifying contact a checker reports. Implementations must be fast, they run on
// the query path.
type Observer interface {
	CollisionDetected(Collision)
}

// ContactRecord is a serializable contact point, in the same shape a debug drawer emits.
type ContactRecord struct {
	Type     string     `json:"type"`
	Body0    string     `json:"body0"`
	Body1    string     `json:"body1"`
	Position [3]float64 `json:"position"`
	Normal   [3]float64 `json:"normal"`
	Distance float64    `json:"distance"`
}

// ContactRecorder is an Observer that keeps every reported contact for later export.
type ContactRecorder struct {
	mu      sync.Mutex
	records []ContactRecord
}

// CollisionDetected implements Observer.
func (r *ContactRecorder) CollisionDetected(c Collision) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, ContactRecord{
		Type:     "CollisionPoint",
		Body0:    c.Name1,
		Body1:    c.Name2,
		Position: vec3(c.PositionOnB),
		Normal:   vec3(c.NormalOnB),
		Distance: c.Distance,
	})
}

// Records returns a copy of the recorded contacts.
func (r *ContactRecorder) Records() []ContactRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ContactRecord(nil), r.records...)
}

// Reset drops every recorded contact.
func (r *ContactRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}

// WriteJSON writes the recorded contacts as a JSON array.
func (r *ContactRecorder) WriteJSON(w io.Writer) error {
	return json.NewEncoder(w).Encode(r.Records())
}

// ContactSummary describes the depth distribution of recorded contacts in mm. Negative distances are penetrations.
type ContactSummary struct {
	Count   int
	Deepest float64
	Mean    float64
	Median  float64
}

// Summary summarizes the recorded contact distances. It is all zero when nothing was recorded.
func (r *ContactRecorder) Summary() (ContactSummary, error) {
	records := r.Records()
	if len(records) == 0 {
		return ContactSummary{}, nil
	}
	data := stats.Float64Data(lo.Map(records, func(rec ContactRecord, _ int) float64 { return rec.Distance }))
	deepest, err := data.Min()
	if err != nil {
		return ContactSummary{}, err
	}
	mean, err := data.Mean()
	if err != nil {
		return ContactSummary{}, err
	}
	median, err := data.Median()
	if err != nil {
		return ContactSummary{}, err
	}
	return ContactSummary{Count: len(records), Deepest: deepest, Mean: mean, Median: median}, nil
}

// BodyPose is the world transform of one collision body. Rotation is a quaternion in x, y, z, w order.
type BodyPose struct {
	Name        string     `json:"-"`
	Translation [3]float64 `json:"translation"`
	Rotation    [4]float64 `json:"rotation"`
}

func snapshotBodies(bodies []*collision.Body) []BodyPose {
	poses := lo.Map(bodies, func(b *collision.Body, _ int) BodyPose {
		tf := b.Transform()
		q := tf.Orientation().Quaternion()
		return BodyPose{
			Name:        b.Name,
			Translation: vec3(tf.Point()),
			Rotation:    [4]float64{q.Imag, q.Jmag, q.Kmag, q.Real},
		}
	})
	sort.Slice(poses, func(i, j int) bool { return poses[i].Name < poses[j].Name })
	return poses
}

func writeSnapshotJSON(w io.Writer, poses []BodyPose) error {
	out := struct {
		Poses map[string]BodyPose `json:"poses"`
	}{
		Poses: lo.SliceToMap(poses, func(p BodyPose) (string, BodyPose) { return p.Name, p }),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func vec3(v r3.Vector) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
