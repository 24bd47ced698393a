package motionplan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"go.viam.com/motionvalidity/collision"
)

func TestParseBlacklist(t *testing.T) {
	pairs, err := ParseBlacklist(strings.NewReader("a,b\n\n  # comment\n b , c \nc,a\n"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pairs, test.ShouldResemble, []LinkPair{{"a", "b"}, {"b", "c"}, {"c", "a"}})

	for _, bad := range []string{"a\n", "a,\n", ",b\n", "a,b,c\n"} {
		_, err := ParseBlacklist(strings.NewReader("x,y\n" + bad))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "line 2")
	}
}

func TestAdjacencyFilterIndices(t *testing.T) {
	f, err := newAdjacencyFilterFromPairs([]LinkPair{{"b", "a"}, {"a", "c"}}, 3, nil)
	test.That(t, err, test.ShouldBeNil)

	// dense first-seen order
	test.That(t, f.Names(), test.ShouldResemble, []string{"b", "a", "c"})
	idx, ok := f.Index("c")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, idx, test.ShouldEqual, 2)
	_, ok = f.Index("d")
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, f.FilterIndex("d"), test.ShouldEqual, collision.UnsetFilterIndex)

	// symmetric
	test.That(t, f.Excluded(0, 1), test.ShouldBeTrue)
	test.That(t, f.Excluded(1, 0), test.ShouldBeTrue)
	test.That(t, f.Excluded(1, 2), test.ShouldBeTrue)
	test.That(t, f.Excluded(2, 1), test.ShouldBeTrue)
	test.That(t, f.Excluded(0, 2), test.ShouldBeFalse)

	// unset indices are never excluded
	test.That(t, f.Excluded(collision.UnsetFilterIndex, 0), test.ShouldBeFalse)
	test.That(t, f.Excluded(1, collision.UnsetFilterIndex), test.ShouldBeFalse)

	_, err = newAdjacencyFilterFromPairs([]LinkPair{{"a", "b"}, {"c", "d"}}, 3, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "\"d\"")
}

func TestAdjacencyFilterPairs(t *testing.T) {
	g := newTestScene(t)
	f, err := newAdjacencyFilterFromPairs([]LinkPair{{"left", "right"}}, 4, g)
	test.That(t, err, test.ShouldBeNil)

	w := collision.NewWorld(testLogger(t), collision.WorldOptions{})
	add := func(name string, group, mask collision.Group) *collision.Body {
		b := collision.NewBody(name, g.Find(name).Geometry, f.FilterIndex(name))
		test.That(t, w.AddBody(b, group, mask), test.ShouldBeNil)
		return b
	}
	left := add("left", collision.GroupRobot, collision.GroupAll)
	right := add("right", collision.GroupRobot, collision.GroupAll)
	tip := add("tip", collision.GroupRobot, collision.GroupAll)
	floor := add("floor", collision.GroupObstacle, collision.GroupObject)

	test.That(t, f.NeedBroadphaseCollision(left, right), test.ShouldBeFalse)
	test.That(t, f.NeedBroadphaseCollision(right, left), test.ShouldBeFalse)
	test.That(t, f.NeedBroadphaseCollision(left, tip), test.ShouldBeFalse)
	test.That(t, f.NeedBroadphaseCollision(tip, left), test.ShouldBeFalse)
	test.That(t, f.NeedBroadphaseCollision(tip, right), test.ShouldBeTrue)
	test.That(t, f.NeedBroadphaseCollision(left, floor), test.ShouldBeFalse)
}

func TestNewAdjacencyFilterFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blacklist.csv")
	test.That(t, os.WriteFile(path, []byte("left,right\n"), 0o600), test.ShouldBeNil)

	f, err := NewAdjacencyFilter(path, 4, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, f.Excluded(0, 1), test.ShouldBeTrue)

	f, err = NewAdjacencyFilter("", 4, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(f.Names()), test.ShouldEqual, 0)

	_, err = NewAdjacencyFilter(filepath.Join(dir, "missing.csv"), 4, nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestAdjacencyFilterWideBlacklist(t *testing.T) {
	const numLinks = 130
	var pairs []LinkPair
	for i := 0; i < numLinks/2; i++ {
		pairs = append(pairs, LinkPair{fmt.Sprintf("link%d", i), fmt.Sprintf("link%d", numLinks-1-i)})
	}
	f, err := newAdjacencyFilterFromPairs(pairs, numLinks, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(f.Names()), test.ShouldEqual, numLinks)

	// indices are assigned in first seen order, so every pair is (2k, 2k+1)
	for k := 0; k < numLinks/2; k++ {
		test.That(t, f.Excluded(2*k, 2*k+1), test.ShouldBeTrue)
		test.That(t, f.Excluded(2*k+1, 2*k), test.ShouldBeTrue)
	}
	test.That(t, f.Excluded(0, 3), test.ShouldBeFalse)
	test.That(t, f.Excluded(63, 64), test.ShouldBeFalse)
	test.That(t, f.Excluded(64, 65), test.ShouldBeTrue)
	test.That(t, f.Excluded(128, 129), test.ShouldBeTrue)
	test.That(t, f.Excluded(129, numLinks), test.ShouldBeFalse)

	_, err = newAdjacencyFilterFromPairs(append(pairs, LinkPair{"extra", "link0"}), numLinks, nil)
	test.That(t, err, test.ShouldNotBeNil)
}
