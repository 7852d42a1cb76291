// Package telemetry provides trail and swarm statistics, bookmarking, and perf timing.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventDeposit EventType = iota
	EventFieldUpdate
	EventSpawn
	EventDespawn
)

// Event represents a single telemetry event.
type Event struct {
	Type     EventType
	Tick     int32
	EntityID uint32

	// Pheromone written by a deposit event
	Amount float64
}

// NewDepositEvent creates a deposit event.
func NewDepositEvent(tick int32, amount float64) Event {
	return Event{
		Type:   EventDeposit,
		Tick:   tick,
		Amount: amount,
	}
}

// NewFieldUpdateEvent creates a field update event.
func NewFieldUpdateEvent(tick int32) Event {
	return Event{
		Type: EventFieldUpdate,
		Tick: tick,
	}
}

// NewSpawnEvent creates a spawn event.
func NewSpawnEvent(tick int32, antID uint32) Event {
	return Event{
		Type:     EventSpawn,
		Tick:     tick,
		EntityID: antID,
	}
}

// NewDespawnEvent creates a despawn event.
func NewDespawnEvent(tick int32, antID uint32) Event {
	return Event{
		Type:     EventDespawn,
		Tick:     tick,
		EntityID: antID,
	}
}
