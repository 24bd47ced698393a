package spatialmath

import (
	"github.com/pkg/errors"
)

// ErrGeometryTypeUnsupported is returned when a geometry config names an unknown type.
var ErrGeometryTypeUnsupported = errors.New("unsupported Geometry type")

func newBadGeometryDimensionsError(g Geometry) error {
	return errors.Errorf("invalid dimension(s) for Geometry type %T", g)
}

func newCollisionTypeUnsupportedError(g1, g2 Geometry) error {
	return errors.Errorf("collisions between %T and %T are not supported", g1, g2)
}

func newRotationMatrixInputError(m []float64) error {
	return errors.Errorf("input slice has %d elements, need exactly 9", len(m))
}
