package motionplan

import (
	"github.com/pkg/errors"
)

// ErrCheckerClosed is the fault raised when a closed checker is queried.
var ErrCheckerClosed = errors.New("validity checker is closed")

// NewMalformedBlacklistError is returned when a blacklist line does not name exactly two links.
func NewMalformedBlacklistError(line int, text string) error {
	return errors.Errorf("malformed blacklist entry on line %d: %q, expected linkA,linkB", line, text)
}

// NewBlacklistOverflowError is returned when a blacklist names more distinct links than the robot has.
func NewBlacklistOverflowError(name string, numLinks int) error {
	return errors.Errorf("blacklist link %q exceeds the %d indexed robot links", name, numLinks)
}

// NewSharedSceneError is returned when a pooled query carries its own scene graph, which workers cannot share.
func NewSharedSceneError(index int) error {
	return errors.Errorf("state %d carries a scene graph, pooled checkers only query their own graphs", index)
}

func newSyncError(err error) error {
	return errors.Wrap(err, "pose synchronization failed")
}

func newDetectionError(err error) error {
	return errors.Wrap(err, "collision detection failed")
}
