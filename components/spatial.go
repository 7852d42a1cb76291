// Package components defines ECS components for the simulation.
package components

import "gonum.org/v1/gonum/spatial/r2"

// Position represents an ant's world position.
type Position struct {
	r2.Vec
}

// Velocity represents an ant's velocity in world units per second.
type Velocity struct {
	r2.Vec
}

// Acceleration accumulates steering forces for the current tick.
// Kinematics zeroes it after every integration step.
type Acceleration struct {
	r2.Vec
}

// Rotation represents an ant's heading.
type Rotation struct {
	Heading float64 // radians, tracks the last non-negligible velocity direction
}
