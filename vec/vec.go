// Package vec provides float32 3-vector math for the simulation kernels.
package vec

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// V3 is a 3-component float32 vector.
type V3 struct {
	X, Y, Z float32
}

// Add returns v + o.
func (v V3) Add(o V3) V3 {
	return V3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v V3) Sub(o V3) V3 {
	return V3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s.
func (v V3) Scale(s float32) V3 {
	return V3{v.X * s, v.Y * s, v.Z * s}
}

// LengthSq returns the squared magnitude (avoids sqrt in hot paths).
func (v V3) LengthSq() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Length returns the magnitude of v.
func (v V3) Length() float32 {
	return float32(math.Sqrt(float64(v.LengthSq())))
}

// Normalized returns v scaled to unit length. The zero vector stays zero.
func (v V3) Normalized() V3 {
	l := v.Length()
	if l == 0 {
		return V3{}
	}
	return v.Scale(1 / l)
}

// ClampLength rescales v so its magnitude does not exceed max.
// Direction is preserved; components are never truncated independently.
func (v V3) ClampLength(max float32) V3 {
	l := v.Length()
	if l <= max || l == 0 {
		return v
	}
	return v.Scale(max / l)
}

// Lerp3 interpolates each axis of [lo, hi] independently with its own
// parameter. Used for uniform sampling inside an axis-aligned box.
func Lerp3(lo, hi V3, tx, ty, tz float32) V3 {
	return V3{
		X: lo.X + (hi.X-lo.X)*tx,
		Y: lo.Y + (hi.Y-lo.Y)*ty,
		Z: lo.Z + (hi.Z-lo.Z)*tz,
	}
}

// MarshalYAML encodes the vector as a [x, y, z] flow sequence.
func (v V3) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{}
	if err := node.Encode([]float32{v.X, v.Y, v.Z}); err != nil {
		return nil, err
	}
	node.Style = yaml.FlowStyle
	return node, nil
}

// UnmarshalYAML decodes a [x, y, z] sequence.
func (v *V3) UnmarshalYAML(node *yaml.Node) error {
	var parts []float32
	if err := node.Decode(&parts); err != nil {
		return fmt.Errorf("decoding vec3: %w", err)
	}
	if len(parts) != 3 {
		return fmt.Errorf("decoding vec3: want 3 components, got %d", len(parts))
	}
	v.X, v.Y, v.Z = parts[0], parts[1], parts[2]
	return nil
}
