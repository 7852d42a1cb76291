package sim

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/stigmergy/components"
	"github.com/pthm-cable/stigmergy/systems"
	"github.com/pthm-cable/stigmergy/telemetry"
)

// AntView is a read-only snapshot of one ant for presentation.
type AntView struct {
	ID       uint32
	Position r2.Vec
	Velocity r2.Vec
	Heading  float64
	Size     float64

	// World positions of the antenna tips
	LeftAntenna  r2.Vec
	RightAntenna r2.Vec

	Target       r2.Vec
	TargetActive bool
}

// spawnInitialAnts creates cfg.Ants.Count ants scattered uniformly over a
// disc of spawn_radius around the spawn point.
func (s *Simulation) spawnInitialAnts() {
	center := r2.Vec{X: s.cfg.Ants.SpawnX, Y: s.cfg.Ants.SpawnY}
	for i := 0; i < s.cfg.Ants.Count; i++ {
		pos := center
		if r := s.cfg.Ants.SpawnRadius; r > 0 {
			angle := s.rng.Float64() * 2 * math.Pi
			dist := r * math.Sqrt(s.rng.Float64())
			pos = r2.Add(pos, r2.Vec{X: dist * math.Cos(angle), Y: dist * math.Sin(angle)})
		}
		s.SpawnAnt(pos, s.cfg.Ants.InitialVelocity.Vec())
	}
}

// SpawnAnt creates an ant with the configured limits and antennae and
// returns its ID. The initial target is the configured one, active only when
// ants.seek_target is set.
func (s *Simulation) SpawnAnt(pos, vel r2.Vec) uint32 {
	id := s.nextID
	s.nextID++

	p := components.Position{Vec: pos}
	v := components.Velocity{Vec: vel}
	acc := components.Acceleration{}
	rot := components.Rotation{}
	if r2.Norm2(vel) > 0 {
		rot.Heading = math.Atan2(vel.Y, vel.X)
	}
	caps := components.CapabilitiesFromConfig(s.cfg)
	sensors := components.SensorsFromConfig(s.cfg)
	target := components.Target{
		Point:  s.cfg.Ants.Target.Vec(),
		Active: s.cfg.Ants.SeekTarget,
	}

	entity := s.antMapper.NewEntity(&p, &v, &acc, &rot, &caps, &sensors, &target)
	s.antMap.Add(entity, &components.Ant{ID: id, Size: s.cfg.Ants.BodySize})
	s.entities[id] = entity

	s.record(telemetry.NewSpawnEvent(s.tick, id))
	return id
}

// DespawnAnt removes the ant with the given ID. Reports false if no such ant exists.
func (s *Simulation) DespawnAnt(id uint32) bool {
	entity, ok := s.entities[id]
	if !ok {
		return false
	}
	delete(s.entities, id)
	if s.world.Alive(entity) {
		s.world.RemoveEntity(entity)
	}
	s.record(telemetry.NewDespawnEvent(s.tick, id))
	return true
}

// AntCount returns the number of live ants.
func (s *Simulation) AntCount() int {
	return len(s.entities)
}

// Ants returns a snapshot of every ant ordered by ID.
func (s *Simulation) Ants() []AntView {
	return s.AppendAnts(make([]AntView, 0, len(s.entities)))
}

// AppendAnts appends a snapshot of every ant to dst, ordered by ID.
func (s *Simulation) AppendAnts(dst []AntView) []AntView {
	start := len(dst)
	query := s.antFilter.Query()
	for query.Next() {
		ant, pos, vel, rot, sensors, target := query.Get()
		dst = append(dst, AntView{
			ID:           ant.ID,
			Position:     pos.Vec,
			Velocity:     vel.Vec,
			Heading:      rot.Heading,
			Size:         ant.Size,
			LeftAntenna:  systems.BodyToWorld(pos.Vec, rot.Heading, sensors.Left),
			RightAntenna: systems.BodyToWorld(pos.Vec, rot.Heading, sensors.Right),
			Target:       target.Point,
			TargetActive: target.Active,
		})
	}
	slices.SortFunc(dst[start:], func(a, b AntView) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return dst
}

// SetTarget sets or clears the seek target of one ant.
func (s *Simulation) SetTarget(id uint32, p r2.Vec, active bool) bool {
	entity, ok := s.entities[id]
	if !ok {
		return false
	}
	target := s.targetMap.Get(entity)
	target.Point = p
	target.Active = active
	return true
}
