package components

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/stigmergy/config"
)

// Ant identifies an ant entity and holds its display size.
type Ant struct {
	ID   uint32
	Size float64 // body semi-major axis in world units
}

// Capabilities holds per-ant kinematic limits.
type Capabilities struct {
	MaxSpeed float64 // maximum velocity magnitude
	MaxForce float64 // maximum magnitude of each steering term
}

// Sensors holds body-local antenna offsets (x forward, y left).
type Sensors struct {
	Left  r2.Vec
	Right r2.Vec
}

// Target is an optional point the ant seeks.
type Target struct {
	Point  r2.Vec
	Active bool
}

// CapabilitiesFromConfig returns ant limits from the loaded config.
func CapabilitiesFromConfig(cfg *config.Config) Capabilities {
	return Capabilities{
		MaxSpeed: cfg.Ants.MaxSpeed,
		MaxForce: cfg.Ants.MaxForce,
	}
}

// SensorsFromConfig returns antenna offsets from the loaded config.
func SensorsFromConfig(cfg *config.Config) Sensors {
	return Sensors{
		Left:  cfg.Derived.LeftAntenna,
		Right: cfg.Derived.RightAntenna,
	}
}
