package sim

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/stigmergy/telemetry"
)

// PointerButton identifies a pointer button.
type PointerButton uint8

const (
	// PointerPrimary deposits pheromone at the cursor while held.
	PointerPrimary PointerButton = iota
	// PointerSecondary retargets every ant to the cursor when pressed.
	PointerSecondary

	numPointerButtons
)

type inputKind uint8

const (
	inputCursor inputKind = iota
	inputClearCursor
	inputPointer
	inputDeposit
)

type inputEvent struct {
	kind   inputKind
	point  r2.Vec
	button PointerButton
	down   bool
	amount float64
}

// inputQueue buffers reports from any goroutine until the next tick drains them.
type inputQueue struct {
	mu      sync.Mutex
	pending []inputEvent
	spare   []inputEvent
}

// push appends ev. A cursor report directly after another replaces it, so a
// queue that is not drained (paused front end) stays bounded by the number of
// button and deposit events.
func (q *inputQueue) push(ev inputEvent) {
	q.mu.Lock()
	if n := len(q.pending); n > 0 && ev.kind == inputCursor && q.pending[n-1].kind == inputCursor {
		q.pending[n-1] = ev
	} else {
		q.pending = append(q.pending, ev)
	}
	q.mu.Unlock()
}

// take swaps out the pending events. The returned slice is valid until the next take.
func (q *inputQueue) take() []inputEvent {
	q.mu.Lock()
	events := q.pending
	q.pending = q.spare[:0]
	q.spare = events
	q.mu.Unlock()
	return events
}

// ReportCursorWorldPosition records the cursor in world coordinates.
// With ants.seek_cursor enabled the point also becomes every ant's target.
// Safe for concurrent use; applied at the start of the next Step.
func (s *Simulation) ReportCursorWorldPosition(p r2.Vec) {
	s.inputs.push(inputEvent{kind: inputCursor, point: p})
}

// ClearCursor records that the cursor left the world view.
func (s *Simulation) ClearCursor() {
	s.inputs.push(inputEvent{kind: inputClearCursor})
}

// ReportPointerPressed records a button press or release.
func (s *Simulation) ReportPointerPressed(button PointerButton, down bool) {
	if button >= numPointerButtons {
		return
	}
	s.inputs.push(inputEvent{kind: inputPointer, button: button, down: down})
}

// ReportDeposit queues a one-off deposit of amount at world point p.
func (s *Simulation) ReportDeposit(p r2.Vec, amount float64) {
	s.inputs.push(inputEvent{kind: inputDeposit, point: p, amount: amount})
}

// applyInputs drains queued reports, then deposits at the cursor while the
// primary pointer is held.
func (s *Simulation) applyInputs() {
	for _, ev := range s.inputs.take() {
		switch ev.kind {
		case inputCursor:
			s.cursor = ev.point
			s.cursorValid = true
			if s.cfg.Ants.SeekCursor {
				s.setAllTargets(ev.point)
			}
		case inputClearCursor:
			s.cursorValid = false
		case inputPointer:
			pressed := ev.down && !s.pointerDown[ev.button]
			s.pointerDown[ev.button] = ev.down
			if pressed && ev.button == PointerSecondary && s.cursorValid {
				s.setAllTargets(s.cursor)
			}
		case inputDeposit:
			s.deposit(ev.point, ev.amount)
		}
	}

	if s.pointerDown[PointerPrimary] && s.cursorValid {
		s.deposit(s.cursor, s.cfg.Field.DepositAmount)
	}
}

func (s *Simulation) deposit(p r2.Vec, amount float64) {
	if _, _, ok := s.field.CellAt(p); !ok {
		return
	}
	s.field.Deposit(p, amount)
	s.record(telemetry.NewDepositEvent(s.tick, amount))
}

// setAllTargets points every ant's seek target at p.
func (s *Simulation) setAllTargets(p r2.Vec) {
	query := s.targetFilter.Query()
	for query.Next() {
		target := query.Get()
		target.Point = p
		target.Active = true
	}
}

// CursorWorldPosition returns the last reported cursor, if any.
func (s *Simulation) CursorWorldPosition() (r2.Vec, bool) {
	return s.cursor, s.cursorValid
}
