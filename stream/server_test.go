package stream

import (
	"context"
	"net"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/stigmergy/config"
	"github.com/pthm-cable/stigmergy/sim"
)

func init() {
	config.MustInit("")
}

type call struct {
	kind   string
	p      r2.Vec
	button sim.PointerButton
	down   bool
	amount float64
}

type fakeSink struct {
	mu    sync.Mutex
	calls []call
}

func (f *fakeSink) add(c call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *fakeSink) ReportCursorWorldPosition(p r2.Vec) { f.add(call{kind: "cursor", p: p}) }
func (f *fakeSink) ClearCursor()                       { f.add(call{kind: "clear"}) }
func (f *fakeSink) ReportPointerPressed(b sim.PointerButton, down bool) {
	f.add(call{kind: "pointer", button: b, down: down})
}
func (f *fakeSink) ReportDeposit(p r2.Vec, amount float64) {
	f.add(call{kind: "deposit", p: p, amount: amount})
}

func (f *fakeSink) snapshot() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func testHello() ConfigMessage {
	return ConfigMessage{Type: TypeConfig, Field: FieldInfo{Width: 4, Height: 3, CellSize: 1, Mode: "coarse"}}
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestServerSendsConfigOnConnect(t *testing.T) {
	s := NewServer(&fakeSink{}, testHello(), 1)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	var hello ConfigMessage
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatal(err)
	}
	if hello.Type != TypeConfig || hello.Field.Width != 4 || hello.Field.Height != 3 {
		t.Errorf("unexpected hello %+v", hello)
	}
}

func TestServerDispatchesInput(t *testing.T) {
	sink := &fakeSink{}
	s := NewServer(sink, testHello(), 2.5)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	var hello ConfigMessage
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatal(err)
	}

	custom := 7.0
	msgs := []InputMessage{
		{Type: TypeCursor, X: 1, Y: 2},
		{Type: TypePointer, Button: uint8(sim.PointerSecondary), Down: true},
		{Type: TypeDeposit, X: 3, Y: 4},
		{Type: TypeDeposit, X: 5, Y: 6, Amount: &custom},
		{Type: TypeClearCursor},
	}
	for _, m := range msgs {
		if err := conn.WriteJSON(m); err != nil {
			t.Fatal(err)
		}
		var reply Reply
		if err := conn.ReadJSON(&reply); err != nil {
			t.Fatal(err)
		}
		if reply.Type != TypeAck {
			t.Fatalf("message %q: reply %+v", m.Type, reply)
		}
	}

	want := []call{
		{kind: "cursor", p: r2.Vec{X: 1, Y: 2}},
		{kind: "pointer", button: sim.PointerSecondary, down: true},
		{kind: "deposit", p: r2.Vec{X: 3, Y: 4}, amount: 2.5},
		{kind: "deposit", p: r2.Vec{X: 5, Y: 6}, amount: 7},
		{kind: "clear"},
	}
	got := sink.snapshot()
	if len(got) != len(want) {
		t.Fatalf("got %d calls, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestServerRejectsUnknownInput(t *testing.T) {
	sink := &fakeSink{}
	s := NewServer(sink, testHello(), 1)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	var hello ConfigMessage
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatal(err)
	}

	for _, m := range []InputMessage{{Type: "teleport"}, {Type: TypePointer, Button: 9}} {
		if err := conn.WriteJSON(m); err != nil {
			t.Fatal(err)
		}
		var reply Reply
		if err := conn.ReadJSON(&reply); err != nil {
			t.Fatal(err)
		}
		if reply.Type != TypeError || reply.Error == "" {
			t.Errorf("message %+v: expected error reply, got %+v", m, reply)
		}
	}
	if n := len(sink.snapshot()); n != 0 {
		t.Errorf("sink received %d calls", n)
	}
}

func TestServerBroadcast(t *testing.T) {
	s := NewServer(&fakeSink{}, testHello(), 1)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	for _, c := range []*websocket.Conn{a, b} {
		var hello ConfigMessage
		if err := c.ReadJSON(&hello); err != nil {
			t.Fatal(err)
		}
	}

	// Registration happens after the hello write; wait for both.
	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.ClientCount() != 2 {
		t.Fatalf("client count = %d", s.ClientCount())
	}

	s.Broadcast(Frame{Type: TypeFrame, Tick: 42, Ants: []AntState{{ID: 1, X: 1}}})

	for _, c := range []*websocket.Conn{a, b} {
		var f Frame
		if err := c.ReadJSON(&f); err != nil {
			t.Fatal(err)
		}
		if f.Tick != 42 || len(f.Ants) != 1 {
			t.Errorf("unexpected frame %+v", f)
		}
	}
}

func TestServerDropsClosedClients(t *testing.T) {
	s := NewServer(&fakeSink{}, testHello(), 1)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	var hello ConfigMessage
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatal(err)
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() > 0 && time.Now().Before(deadline) {
		s.Broadcast(Frame{Type: TypeFrame})
		time.Sleep(5 * time.Millisecond)
	}
	if s.ClientCount() != 0 {
		t.Errorf("closed client still registered")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	s := NewServer(&fakeSink{}, testHello(), 1)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}
}

func TestBuildFrameFromSimulation(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Ants.Count = 0
	s, err := sim.New(cfg, sim.Options{Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.SpawnAnt(r2.Vec{X: 1, Y: 2}, r2.Vec{X: 0, Y: 1})
	s.ReportDeposit(r2.Vec{X: 10, Y: 10}, 10)
	s.Step(0.01)

	frame := NewFrameBuilder(true).Build(s)
	if frame.Tick != 1 || len(frame.Ants) != 1 {
		t.Fatalf("unexpected frame %+v", frame)
	}
	if frame.Ants[0].X == 0 && frame.Ants[0].Y == 0 {
		t.Errorf("ant position not copied")
	}
	if len(frame.Field) != s.Field().W*s.Field().H {
		t.Errorf("field length %d", len(frame.Field))
	}
	var lit int
	for _, a := range frame.Field {
		if a > 0 {
			lit++
		}
	}
	if lit == 0 {
		t.Error("deposit not visible in field frame")
	}

	hello := NewConfigMessage(s)
	if hello.Field.Width != s.Field().W || hello.Field.Mode == "" {
		t.Errorf("unexpected config message %+v", hello)
	}
}
