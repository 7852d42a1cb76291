// Package stream serves simulation frames to websocket clients and feeds
// their cursor and pointer input back into the simulation.
package stream

import (
	"github.com/pthm-cable/stigmergy/sim"
	"github.com/pthm-cable/stigmergy/systems"
)

// Message types.
const (
	TypeConfig      = "config"
	TypeFrame       = "frame"
	TypeCursor      = "cursor"
	TypeClearCursor = "clear_cursor"
	TypePointer     = "pointer"
	TypeDeposit     = "deposit"
	TypeAck         = "ack"
	TypeError       = "error"
)

// FieldInfo describes the grid geometry so clients can place field frames.
type FieldInfo struct {
	Width    int     `json:"w"`
	Height   int     `json:"h"`
	CellSize float64 `json:"cell_size"`
	OriginX  float64 `json:"origin_x"`
	OriginY  float64 `json:"origin_y"`
	Mode     string  `json:"mode"`
}

// ConfigMessage is sent once when a client connects.
type ConfigMessage struct {
	Type  string    `json:"type"`
	Field FieldInfo `json:"field"`
	// Heatmap colour; alpha carries intensity in field frames
	Color [3]uint8 `json:"color"`
}

// AntState is one ant in a frame.
type AntState struct {
	ID      uint32  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
	Size    float64 `json:"size"`
}

// Frame is a broadcast snapshot of the simulation.
type Frame struct {
	Type    string     `json:"type"`
	Tick    int32      `json:"tick"`
	SimTime float64    `json:"sim_time"`
	Ants    []AntState `json:"ants"`
	// Row-major heatmap alpha per cell (y up, row 0 at the grid bottom),
	// base64 encoded by encoding/json. Omitted unless field frames are on.
	Field []byte `json:"field,omitempty"`
}

// InputMessage is any message a client sends.
type InputMessage struct {
	Type   string   `json:"type"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Button uint8    `json:"button"`
	Down   bool     `json:"down"`
	Amount *float64 `json:"amount,omitempty"` // deposit amount, defaults to field.deposit_amount
}

// Reply acknowledges or rejects an input message.
type Reply struct {
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`
}

// NewConfigMessage describes the field of s.
func NewConfigMessage(s *sim.Simulation) ConfigMessage {
	f := s.Field()
	origin := f.Origin()
	return ConfigMessage{
		Type: TypeConfig,
		Field: FieldInfo{
			Width:    f.W,
			Height:   f.H,
			CellSize: f.CellSize(),
			OriginX:  origin.X,
			OriginY:  origin.Y,
			Mode:     f.Policy().Name(),
		},
		Color: [3]uint8{systems.HeatmapColor.R, systems.HeatmapColor.G, systems.HeatmapColor.B},
	}
}

// FrameBuilder reuses buffers across frames.
type FrameBuilder struct {
	includeField bool
	ants         []sim.AntView
}

// NewFrameBuilder creates a builder; includeField adds heatmap alpha to every frame.
func NewFrameBuilder(includeField bool) *FrameBuilder {
	return &FrameBuilder{includeField: includeField}
}

// Build snapshots s. Must run on the simulation goroutine. The returned
// frame owns its slices.
func (b *FrameBuilder) Build(s *sim.Simulation) Frame {
	b.ants = s.AppendAnts(b.ants[:0])
	frame := Frame{
		Type:    TypeFrame,
		Tick:    s.Tick(),
		SimTime: s.SimTime(),
		Ants:    make([]AntState, len(b.ants)),
	}
	for i, a := range b.ants {
		frame.Ants[i] = AntState{
			ID:      a.ID,
			X:       a.Position.X,
			Y:       a.Position.Y,
			Heading: a.Heading,
			Size:    a.Size,
		}
	}
	if b.includeField {
		frame.Field = FieldAlpha(s.Field(), nil)
	}
	return frame
}

// FieldAlpha returns the heatmap alpha of every cell, reusing dst when large enough.
func FieldAlpha(f *systems.PheromoneField, dst []byte) []byte {
	values := f.Values()
	if cap(dst) < len(values) {
		dst = make([]byte, len(values))
	}
	dst = dst[:len(values)]
	for i, v := range values {
		dst[i] = systems.HeatmapAlpha(v)
	}
	return dst
}
