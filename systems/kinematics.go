package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/stigmergy/components"
)

// Integrate advances one ant by dt: velocity from acceleration, speed cap,
// position from velocity, heading from velocity, then clears acceleration.
// Zero or negative dt is accepted.
func Integrate(
	pos *components.Position,
	vel *components.Velocity,
	acc *components.Acceleration,
	rot *components.Rotation,
	caps components.Capabilities,
	dt float64,
) {
	vel.Vec = r2.Add(vel.Vec, r2.Scale(dt, acc.Vec))
	vel.Vec = ClampMagnitude(vel.Vec, caps.MaxSpeed)
	pos.Vec = r2.Add(pos.Vec, r2.Scale(dt, vel.Vec))

	// Dead zone: keep the old heading at near-zero speed to avoid jitter
	if r2.Norm2(vel.Vec) > headingDeadZone {
		rot.Heading = math.Atan2(vel.Y, vel.X)
	}

	acc.Vec = r2.Vec{}
}

// KinematicsSystem integrates ant motion.
type KinematicsSystem struct {
	filter *ecs.Filter5[
		components.Position,
		components.Velocity,
		components.Acceleration,
		components.Rotation,
		components.Capabilities,
	]
}

// NewKinematicsSystem creates a new kinematics system.
func NewKinematicsSystem(w *ecs.World) *KinematicsSystem {
	return &KinematicsSystem{
		filter: ecs.NewFilter5[
			components.Position,
			components.Velocity,
			components.Acceleration,
			components.Rotation,
			components.Capabilities,
		](w),
	}
}

// Update integrates every ant by dt seconds.
func (s *KinematicsSystem) Update(dt float64) {
	query := s.filter.Query()
	for query.Next() {
		pos, vel, acc, rot, caps := query.Get()
		Integrate(pos, vel, acc, rot, *caps, dt)
	}
}
