package referenceframe

import (
	"math"
)

// Input wraps the input to a mutable node, e.g. a joint angle or a linear joint position.
//   - revolute and continuous inputs should be in radians.
//   - prismatic inputs should be in mm.
type Input struct {
	Value float64
}

// FloatsToInputs wraps a slice of floats in Inputs.
func FloatsToInputs(floats []float64) []Input {
	inputs := make([]Input, len(floats))
	for i, f := range floats {
		inputs[i] = Input{f}
	}
	return inputs
}

// InputsToFloats unwraps Inputs to raw floats.
func InputsToFloats(inputs []Input) []float64 {
	floats := make([]float64, len(inputs))
	for i, f := range inputs {
		floats[i] = f.Value
	}
	return floats
}

// Limit represents the limits of motion for a joint.
type Limit struct {
	Min float64
	Max float64
}

// Within reports whether v lies inside the limit, inclusive at both ends.
func (l Limit) Within(v float64) bool {
	return v >= l.Min && v <= l.Max
}

// Unbounded reports whether either side of the limit is infinite.
func (l Limit) Unbounded() bool {
	return math.IsInf(l.Min, 0) || math.IsInf(l.Max, 0)
}
