package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// headingDeadZone is the squared speed below which heading is left unchanged.
const headingDeadZone = 1e-4

// clamp01 clamps a value to the [0, 1] range.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampMagnitude scales v down so its length does not exceed limit.
// Vectors already within the limit are returned unchanged.
func ClampMagnitude(v r2.Vec, limit float64) r2.Vec {
	if limit <= 0 {
		return r2.Vec{}
	}
	n2 := r2.Norm2(v)
	if n2 <= limit*limit {
		return v
	}
	return r2.Scale(limit/math.Sqrt(n2), v)
}

// NormalizeOrZero returns the unit vector of v, or the zero vector when v has
// no usable direction.
func NormalizeOrZero(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}

// BodyToWorld rotates a body-local offset by heading and translates it by pos.
func BodyToWorld(pos r2.Vec, heading float64, offset r2.Vec) r2.Vec {
	return r2.Add(pos, r2.Rotate(offset, heading, r2.Vec{}))
}
