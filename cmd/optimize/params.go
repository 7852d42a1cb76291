package main

import (
	"github.com/pthm-cable/stigmergy/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Ants
			{Name: "max_speed", Path: "ants.max_speed", Min: 40, Max: 400, Default: 200},
			{Name: "max_force", Path: "ants.max_force", Min: 50, Max: 1000, Default: 400},
			// Antennae are mirrored: left (forward, spread), right (forward, -spread)
			{Name: "antenna_forward", Path: "ants.left_antenna.x", Min: 1, Max: 20, Default: 5},
			{Name: "antenna_spread", Path: "ants.left_antenna.y", Min: 0.5, Max: 10, Default: 2},
			// Field
			{Name: "diffusion_rate", Path: "field.diffusion_rate", Min: 0, Max: 0.2, Default: 0.01},
			{Name: "decay_rate", Path: "field.decay_rate", Min: 0, Max: 0.2, Default: 0.01},
			{Name: "deposit_amount", Path: "field.deposit_amount", Min: 0.5, Max: 50, Default: 5},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Names returns the parameter names in order.
func (pv *ParamVector) Names() []string {
	names := make([]string, len(pv.Specs))
	for i, spec := range pv.Specs {
		names[i] = spec.Name
	}
	return names
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	cfg.Ants.MaxSpeed = clamped[0]
	cfg.Ants.MaxForce = clamped[1]
	cfg.Ants.LeftAntenna = config.Vec2Config{X: clamped[2], Y: clamped[3]}
	cfg.Ants.RightAntenna = config.Vec2Config{X: clamped[2], Y: -clamped[3]}
	cfg.Field.DiffusionRate = clamped[4]
	cfg.Field.DecayRate = clamped[5]
	cfg.Field.DepositAmount = clamped[6]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Ants.MaxSpeed,
		cfg.Ants.MaxForce,
		cfg.Ants.LeftAntenna.X,
		cfg.Ants.LeftAntenna.Y,
		cfg.Field.DiffusionRate,
		cfg.Field.DecayRate,
		cfg.Field.DepositAmount,
	}
}
