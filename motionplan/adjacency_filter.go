package motionplan

import (
	"github.com/bits-and-blooms/bitset"

	"go.viam.com/motionvalidity/collision"
)

// AdjacencyFilter is the broadphase pair filter of a checker. It rejects pairs whose groups and masks disagree,
// pairs of blacklisted robot links, and pairs where one node is an ancestor of the other in the live scene graph.
type AdjacencyFilter struct {
	numLinks int
	indices  map[string]int
	names    []string
	// excluded[i] holds the indices blacklisted against index i.
	excluded []*bitset.BitSet
	scene    SceneGraph
}

// NewAdjacencyFilter builds a filter from an optional blacklist file. An empty path admits every link pair.
// numLinks is the number of robot links carrying geometry and bounds the number of distinct blacklisted names.
func NewAdjacencyFilter(blacklistPath string, numLinks int, scene SceneGraph) (*AdjacencyFilter, error) {
	var pairs []LinkPair
	if blacklistPath != "" {
		var err error
		pairs, err = ParseBlacklistFile(blacklistPath)
		if err != nil {
			return nil, err
		}
	}
	return newAdjacencyFilterFromPairs(pairs, numLinks, scene)
}

func newAdjacencyFilterFromPairs(pairs []LinkPair, numLinks int, scene SceneGraph) (*AdjacencyFilter, error) {
	f := &AdjacencyFilter{
		numLinks: numLinks,
		indices:  map[string]int{},
		scene:    scene,
	}
	index := func(name string) (int, error) {
		if idx, ok := f.indices[name]; ok {
			return idx, nil
		}
		idx := len(f.names)
		if idx >= numLinks {
			return 0, NewBlacklistOverflowError(name, numLinks)
		}
		f.indices[name] = idx
		f.names = append(f.names, name)
		f.excluded = append(f.excluded, bitset.New(uint(numLinks)))
		return idx, nil
	}
	for _, pair := range pairs {
		a, err := index(pair.A)
		if err != nil {
			return nil, err
		}
		b, err := index(pair.B)
		if err != nil {
			return nil, err
		}
		f.excluded[a].Set(uint(b))
		f.excluded[b].Set(uint(a))
	}
	return f, nil
}

// Index returns the filter index assigned to a link name.
func (f *AdjacencyFilter) Index(name string) (int, bool) {
	idx, ok := f.indices[name]
	return idx, ok
}

// FilterIndex returns the filter index for a body, or collision.UnsetFilterIndex for names the blacklist never saw.
func (f *AdjacencyFilter) FilterIndex(name string) int {
	if idx, ok := f.indices[name]; ok {
		return idx
	}
	return collision.UnsetFilterIndex
}

// Names returns the indexed link names in index order.
func (f *AdjacencyFilter) Names() []string {
	return f.names
}

// Excluded reports whether the pair of filter indices is blacklisted. Unset or unknown indices are never excluded.
func (f *AdjacencyFilter) Excluded(i, j int) bool {
	if i < 0 || j < 0 || i >= len(f.excluded) || j >= len(f.excluded) {
		return false
	}
	return f.excluded[i].Test(uint(j))
}

// SetScene points the ancestor test at a different live scene graph.
func (f *AdjacencyFilter) SetScene(scene SceneGraph) {
	f.scene = scene
}

// NeedBroadphaseCollision implements collision.PairFilter.
func (f *AdjacencyFilter) NeedBroadphaseCollision(a, b *collision.Body) bool {
	if !collision.GroupsCompatible(a, b) {
		return false
	}
	if f.Excluded(a.FilterIndex, b.FilterIndex) {
		return false
	}
	if f.scene != nil && (f.scene.IsAncestor(a.Name, b.Name) || f.scene.IsAncestor(b.Name, a.Name)) {
		return false
	}
	return true
}
