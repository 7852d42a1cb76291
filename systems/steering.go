package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/stigmergy/components"
)

// AntennaReading holds one tick's bilateral field samples for an ant.
type AntennaReading struct {
	LeftPoint  r2.Vec
	RightPoint r2.Vec
	Left       float64
	Right      float64
}

// ReadAntennae places both antennae using the ant's current heading and samples the field.
func ReadAntennae(field FieldSampler, pos r2.Vec, heading float64, sensors components.Sensors) AntennaReading {
	left := BodyToWorld(pos, heading, sensors.Left)
	right := BodyToWorld(pos, heading, sensors.Right)
	return AntennaReading{
		LeftPoint:  left,
		RightPoint: right,
		Left:       field.Sample(left),
		Right:      field.Sample(right),
	}
}

// Tropotaxis turns the left/right difference into a force along the world X
// axis, clamped to maxForce.
func Tropotaxis(r AntennaReading, maxForce float64) r2.Vec {
	return ClampMagnitude(r2.Vec{X: r.Right - r.Left}, maxForce)
}

// Seek returns the classic seek force toward target, clamped to maxForce.
func Seek(pos, vel, target r2.Vec, maxSpeed, maxForce float64) r2.Vec {
	desired := r2.Scale(maxSpeed, NormalizeOrZero(r2.Sub(target, pos)))
	return ClampMagnitude(r2.Sub(desired, vel), maxForce)
}

// ComputeSteering returns the acceleration contribution for one ant.
// Each term is clamped on its own; the sum is not.
func ComputeSteering(
	field FieldSampler,
	pos components.Position,
	vel components.Velocity,
	rot components.Rotation,
	caps components.Capabilities,
	sensors components.Sensors,
	target components.Target,
) r2.Vec {
	reading := ReadAntennae(field, pos.Vec, rot.Heading, sensors)
	force := Tropotaxis(reading, caps.MaxForce)

	if target.Active {
		force = r2.Add(force, Seek(pos.Vec, vel.Vec, target.Point, caps.MaxSpeed, caps.MaxForce))
	}
	return force
}

// steeringSnapshot captures read-only state for parallel processing.
type steeringSnapshot struct {
	Entity  ecs.Entity
	Pos     components.Position
	Vel     components.Velocity
	Rot     components.Rotation
	Caps    components.Capabilities
	Sensors components.Sensors
	Target  components.Target
}

// SteeringSystem writes each ant's steering force into its acceleration.
type SteeringSystem struct {
	filter *ecs.Filter7[
		components.Position,
		components.Velocity,
		components.Acceleration,
		components.Rotation,
		components.Capabilities,
		components.Sensors,
		components.Target,
	]
	accMap *ecs.Map[components.Acceleration]

	// Ant count at which computation fans out to the worker pool (0 = never)
	parallelThreshold int
	pool              *workerPool

	snapshots []steeringSnapshot
	forces    []r2.Vec
}

// NewSteeringSystem creates a new steering system.
func NewSteeringSystem(w *ecs.World, parallelThreshold int) *SteeringSystem {
	return &SteeringSystem{
		filter: ecs.NewFilter7[
			components.Position,
			components.Velocity,
			components.Acceleration,
			components.Rotation,
			components.Capabilities,
			components.Sensors,
			components.Target,
		](w),
		accMap:            ecs.NewMap[components.Acceleration](w),
		parallelThreshold: parallelThreshold,
		pool:              newWorkerPool(0),
		snapshots:         make([]steeringSnapshot, 0, 64),
		forces:            make([]r2.Vec, 0, 64),
	}
}

// Update runs the steering phase. The field must not change until it returns.
func (s *SteeringSystem) Update(field FieldSampler) {
	if s.parallelThreshold <= 0 {
		s.updateSerial(field)
		return
	}

	// Phase A: snapshot (single-threaded)
	s.snapshots = s.snapshots[:0]
	query := s.filter.Query()
	for query.Next() {
		pos, vel, _, rot, caps, sensors, target := query.Get()
		s.snapshots = append(s.snapshots, steeringSnapshot{
			Entity:  query.Entity(),
			Pos:     *pos,
			Vel:     *vel,
			Rot:     *rot,
			Caps:    *caps,
			Sensors: *sensors,
			Target:  *target,
		})
	}

	n := len(s.snapshots)
	if n == 0 {
		return
	}
	if cap(s.forces) < n {
		s.forces = make([]r2.Vec, n)
	}
	s.forces = s.forces[:n]

	// Phase B: compute
	if n < s.parallelThreshold {
		s.computeChunk(field, 0, n)
	} else {
		s.pool.run(n, func(start, end int) {
			s.computeChunk(field, start, end)
		})
	}

	// Phase C: apply (single-threaded, preserves determinism)
	for i := range s.snapshots {
		acc := s.accMap.Get(s.snapshots[i].Entity)
		acc.Vec = r2.Add(acc.Vec, s.forces[i])
	}
}

// updateSerial computes and applies steering inside a single query.
func (s *SteeringSystem) updateSerial(field FieldSampler) {
	query := s.filter.Query()
	for query.Next() {
		pos, vel, acc, rot, caps, sensors, target := query.Get()
		force := ComputeSteering(field, *pos, *vel, *rot, *caps, *sensors, *target)
		acc.Vec = r2.Add(acc.Vec, force)
	}
}

func (s *SteeringSystem) computeChunk(field FieldSampler, start, end int) {
	for i := start; i < end; i++ {
		snap := &s.snapshots[i]
		s.forces[i] = ComputeSteering(field, snap.Pos, snap.Vel, snap.Rot, snap.Caps, snap.Sensors, snap.Target)
	}
}

// Close stops the worker pool.
func (s *SteeringSystem) Close() {
	s.pool.stop()
}
