package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/stigmergy/sim"
)

// InputSink receives client input. *sim.Simulation satisfies it.
type InputSink interface {
	ReportCursorWorldPosition(p r2.Vec)
	ClearCursor()
	ReportPointerPressed(button sim.PointerButton, down bool)
	ReportDeposit(p r2.Vec, amount float64)
}

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Client is one websocket connection. Writes are serialized.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Send writes v as JSON.
func (c *Client) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// Server broadcasts frames and forwards input messages to a sink.
type Server struct {
	sink          InputSink
	hello         ConfigMessage
	depositAmount float64

	clientsMu sync.Mutex
	clients   map[*Client]struct{}
}

// NewServer creates a server. hello is sent to every new client and
// depositAmount is used for deposits that omit an amount.
func NewServer(sink InputSink, hello ConfigMessage, depositAmount float64) *Server {
	return &Server{
		sink:          sink,
		hello:         hello,
		depositAmount: depositAmount,
		clients:       make(map[*Client]struct{}),
	}
}

// Handler returns the HTTP handler serving /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

// Broadcast sends v to every client, dropping clients whose send fails.
func (s *Server) Broadcast(v any) {
	s.clientsMu.Lock()
	list := make([]*Client, 0, len(s.clients))
	for c := range s.clients {
		list = append(list, c)
	}
	s.clientsMu.Unlock()

	for _, c := range list {
		if err := c.Send(v); err != nil {
			slog.Warn("dropping stream client", "error", err)
			s.remove(c)
		}
	}
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.closeAll()
	}()

	slog.Info("stream server listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("stream server: %w", err)
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	client := &Client{conn: conn}

	if err := client.Send(s.hello); err != nil {
		conn.Close()
		return
	}

	s.clientsMu.Lock()
	s.clients[client] = struct{}{}
	s.clientsMu.Unlock()
	slog.Info("stream client connected", "remote", r.RemoteAddr)

	for {
		var msg InputMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		reply := Reply{Type: TypeAck}
		if err := s.apply(msg); err != nil {
			reply = Reply{Type: TypeError, Error: err.Error()}
		}
		if err := client.Send(reply); err != nil {
			break
		}
	}

	s.remove(client)
	slog.Info("stream client disconnected", "remote", r.RemoteAddr)
}

// apply forwards one input message to the sink.
func (s *Server) apply(msg InputMessage) error {
	p := r2.Vec{X: msg.X, Y: msg.Y}
	switch msg.Type {
	case TypeCursor:
		s.sink.ReportCursorWorldPosition(p)
	case TypeClearCursor:
		s.sink.ClearCursor()
	case TypePointer:
		button := sim.PointerButton(msg.Button)
		if button > sim.PointerSecondary {
			return fmt.Errorf("unknown pointer button %d", msg.Button)
		}
		s.sink.ReportPointerPressed(button, msg.Down)
	case TypeDeposit:
		amount := s.depositAmount
		if msg.Amount != nil {
			amount = *msg.Amount
		}
		s.sink.ReportDeposit(p, amount)
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func (s *Server) remove(c *Client) {
	s.clientsMu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.clientsMu.Unlock()
	if ok {
		c.conn.Close()
	}
}

func (s *Server) closeAll() {
	s.clientsMu.Lock()
	list := make([]*Client, 0, len(s.clients))
	for c := range s.clients {
		list = append(list, c)
	}
	s.clientsMu.Unlock()
	for _, c := range list {
		s.remove(c)
	}
}
