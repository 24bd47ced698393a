package collision

import (
	"sort"

	"github.com/pkg/errors"

	"go.viam.com/motionvalidity/logging"
	spatial "go.viam.com/motionvalidity/spatialmath"
)

// ErrNoBodies is returned when detection runs before any body has been registered.
var ErrNoBodies = errors.New("collision detection requested on a world with no bodies")

// ErrWorldClosed is returned by every operation on a closed world.
var ErrWorldClosed = errors.New("collision world is closed")

// PairFilter decides whether a broadphase pair is passed on to the narrowphase.
type PairFilter interface {
	NeedBroadphaseCollision(a, b *Body) bool
}

// PairFilterFunc adapts a function to a PairFilter.
type PairFilterFunc func(a, b *Body) bool

// NeedBroadphaseCollision calls f.
func (f PairFilterFunc) NeedBroadphaseCollision(a, b *Body) bool {
	return f(a, b)
}

// WorldOptions configures a World.
type WorldOptions struct {
	// ContactMargin is the largest separation for which a contact point is still generated.
	ContactMargin float64
}

// World owns a set of bodies and produces contact manifolds for the pairs that are close enough.
// A World is not safe for concurrent use.
type World struct {
	logger logging.Logger
	opts   WorldOptions

	bodies []*Body
	byName map[string]*Body
	filter PairFilter

	// sorted holds the bodies ordered by the lower x bound of their AABBs. It is kept between passes so the
	// insertion sort runs in near linear time when bodies move little.
	sorted []*Body

	manifolds []*Manifold
	pool      []*Manifold
	nextID    int
	closed    bool
}

// NewWorld returns an empty world.
func NewWorld(logger logging.Logger, opts WorldOptions) *World {
	if opts.ContactMargin < 0 {
		opts.ContactMargin = 0
	}
	return &World{
		logger: logger,
		opts:   opts,
		byName: map[string]*Body{},
		filter: PairFilterFunc(GroupsCompatible),
	}
}

// AddBody registers a body with the given broadphase group and mask. Body names must be unique.
func (w *World) AddBody(b *Body, group, mask Group) error {
	if w.closed {
		return ErrWorldClosed
	}
	if b == nil || b.Geometry == nil {
		return errors.New("cannot add a body without geometry")
	}
	if _, ok := w.byName[b.Name]; ok {
		return errors.Errorf("body with name %q already registered", b.Name)
	}
	b.group = group
	b.mask = mask
	b.id = w.nextID
	w.nextID++
	w.bodies = append(w.bodies, b)
	w.sorted = append(w.sorted, b)
	w.byName[b.Name] = b
	w.logger.Debugw("registered collision body", "name", b.Name, "group", group, "mask", mask, "filter_index", b.FilterIndex)
	return nil
}

// RemoveBody unregisters the named body.
func (w *World) RemoveBody(name string) error {
	if w.closed {
		return ErrWorldClosed
	}
	b, ok := w.byName[name]
	if !ok {
		return errors.Errorf("no body with name %q", name)
	}
	delete(w.byName, name)
	w.bodies = removeBody(w.bodies, b)
	w.sorted = removeBody(w.sorted, b)
	w.recycleManifolds()
	return nil
}

func removeBody(bodies []*Body, b *Body) []*Body {
	for i, other := range bodies {
		if other == b {
			return append(bodies[:i], bodies[i+1:]...)
		}
	}
	return bodies
}

// Body returns the named body, or nil.
func (w *World) Body(name string) *Body {
	return w.byName[name]
}

// Bodies returns the registered bodies in registration order.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// SetPairFilter installs a custom broadphase filter. It replaces the default group and mask test, so custom filters
// are expected to apply that test themselves. A nil filter restores the default.
func (w *World) SetPairFilter(f PairFilter) {
	if f == nil {
		f = PairFilterFunc(GroupsCompatible)
	}
	w.filter = f
}

// UpdateAABBs refreshes the bounding boxes of every moved body and re-sorts the broadphase axis.
func (w *World) UpdateAABBs() {
	for _, b := range w.bodies {
		b.refresh()
	}
	// insertion sort: nearly sorted from the previous pass
	for i := 1; i < len(w.sorted); i++ {
		for j := i; j > 0 && w.sorted[j].aabb.Min.X < w.sorted[j-1].aabb.Min.X; j-- {
			w.sorted[j], w.sorted[j-1] = w.sorted[j-1], w.sorted[j]
		}
	}
}

// PerformDiscreteCollisionDetection runs the broadphase, the pair filter and the narrowphase, replacing the manifolds
// of the previous pass.
func (w *World) PerformDiscreteCollisionDetection() error {
	if w.closed {
		return ErrWorldClosed
	}
	if len(w.bodies) == 0 {
		return ErrNoBodies
	}
	w.UpdateAABBs()
	w.recycleManifolds()

	margin := w.opts.ContactMargin
	for i, a := range w.sorted {
		aBox := a.aabb.Expand(margin)
		for _, b := range w.sorted[i+1:] {
			if b.aabb.Min.X > aBox.Max.X {
				break
			}
			if !aBox.Overlaps(b.aabb) {
				continue
			}
			body0, body1 := a, b
			if body1.id < body0.id {
				body0, body1 = body1, body0
			}
			if !w.filter.NeedBroadphaseCollision(body0, body1) {
				continue
			}
			contact, err := spatial.ComputeContact(body0.world, body1.world)
			if err != nil {
				return errors.Wrapf(err, "narrowphase between %q and %q", body0.Name, body1.Name)
			}
			if contact.Distance > margin {
				continue
			}
			m := w.newManifold(body0, body1)
			m.Points = append(m.Points, ContactPoint{
				Distance:    contact.Distance,
				PositionOnA: contact.PointOnA,
				PositionOnB: contact.PointOnB,
				NormalOnB:   contact.NormalOnB,
			})
		}
	}
	// registration order keeps the output independent of the sweep order
	sort.Slice(w.manifolds, func(i, j int) bool {
		mi, mj := w.manifolds[i], w.manifolds[j]
		if mi.Body0.id != mj.Body0.id {
			return mi.Body0.id < mj.Body0.id
		}
		return mi.Body1.id < mj.Body1.id
	})
	return nil
}

func (w *World) recycleManifolds() {
	for _, m := range w.manifolds {
		m.clear()
		m.Body0, m.Body1 = nil, nil
		w.pool = append(w.pool, m)
	}
	w.manifolds = w.manifolds[:0]
}

func (w *World) newManifold(body0, body1 *Body) *Manifold {
	var m *Manifold
	if n := len(w.pool); n > 0 {
		m = w.pool[n-1]
		w.pool = w.pool[:n-1]
	} else {
		m = &Manifold{}
	}
	m.Body0, m.Body1 = body0, body1
	w.manifolds = append(w.manifolds, m)
	return m
}

// NumManifolds returns the number of manifolds produced by the last detection pass.
func (w *World) NumManifolds() int {
	return len(w.manifolds)
}

// Manifold returns the i-th manifold of the last detection pass.
func (w *World) Manifold(i int) *Manifold {
	return w.manifolds[i]
}

// ClearManifold drops the contact points of a processed manifold so no contact state outlives the query.
func (w *World) ClearManifold(m *Manifold) {
	m.clear()
}

// Close unregisters every body. The world cannot be used afterwards.
func (w *World) Close() error {
	if w.closed {
		return nil
	}
	w.recycleManifolds()
	w.pool = nil
	w.bodies = nil
	w.sorted = nil
	w.byName = map[string]*Body{}
	w.closed = true
	return nil
}
