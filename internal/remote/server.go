// Package remote exposes the animation controls over a websocket so the
// effect can be driven from a browser or script while it runs.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"fire-smoke/internal/animation"
	"fire-smoke/internal/compositor"

	"github.com/gorilla/websocket"
)

const writeTimeout = 100 * time.Millisecond

// Command is a client to server message, e.g. {"action":"faster"}.
type Command struct {
	Action string `json:"action"`
}

// Status is a server to client message describing playback.
type Status struct {
	Type   string  `json:"type"` // "status"
	Time   float64 `json:"time"`
	Speed  float64 `json:"speed"`
	Mode   string  `json:"mode"`
	Paused bool    `json:"paused"`
}

// NewStatus snapshots a frame for clients.
func NewStatus(f compositor.Frame, paused bool) Status {
	return Status{
		Type:   "status",
		Time:   float64(f.Time),
		Speed:  float64(f.Speed),
		Mode:   f.Mode.String(),
		Paused: paused,
	}
}

type errorReply struct {
	Type  string `json:"type"` // "error"
	Error string `json:"error"`
}

// Server queues client actions for the render loop and broadcasts status.
// The render loop stays the only writer of animation state: it drains
// queued actions once per frame.
type Server struct {
	upgrader websocket.Upgrader
	actions  chan animation.Action

	clientsMu sync.RWMutex
	clients   map[*client]struct{}

	statusMu sync.RWMutex
	status   Status

	httpServer *http.Server
}

// NewServer creates a server buffering up to queue pending actions.
func NewServer(queue int) *Server {
	if queue < 1 {
		queue = 64
	}
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local control surface
			},
		},
		actions: make(chan animation.Action, queue),
		clients: make(map[*client]struct{}),
		status:  Status{Type: "status", Speed: animation.DefaultSpeed, Mode: compositor.ModeClassic.String()},
	}
}

// Handler serves /ws (websocket) and /status (JSON snapshot).
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/status", s.handleStatus)
	return mux
}

// Start listens on addr and serves in the background. It returns the bound
// address, useful when addr has port 0.
func (s *Server) Start(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s.httpServer = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("remote server stopped", "error", err)
		}
	}()
	return ln.Addr(), nil
}

// Shutdown stops accepting connections and closes every client.
func (s *Server) Shutdown(ctx context.Context) error {
	s.clientsMu.Lock()
	for c := range s.clients {
		c.close()
	}
	s.clientsMu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Drain returns every queued action without blocking.
func (s *Server) Drain() []animation.Action {
	var out []animation.Action
	for {
		select {
		case a := <-s.actions:
			out = append(out, a)
		default:
			return out
		}
	}
}

// Publish records st as the current status and hands it to every client's
// writer. It never blocks on the network: a client still busy with an
// earlier status gets only the latest one. Clients whose write times out are
// dropped by their writer.
func (s *Server) Publish(st Status) {
	s.statusMu.Lock()
	s.status = st
	s.statusMu.Unlock()

	s.clientsMu.RLock()
	for c := range s.clients {
		c.offer(st)
	}
	s.clientsMu.RUnlock()
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func (s *Server) currentStatus() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.currentStatus()); err != nil {
		slog.Warn("remote status encode", "error", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	c := newClient(conn)
	s.clientsMu.Lock()
	s.clients[c] = struct{}{}
	s.clientsMu.Unlock()
	defer s.removeClient(c)
	defer c.close()

	slog.Info("remote client connected", "addr", conn.RemoteAddr().String())

	// Send initial status
	if err := c.write(s.currentStatus()); err != nil {
		return
	}
	go c.writeLoop()

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("websocket read", "error", err)
			}
			return
		}

		a, err := animation.ParseAction(cmd.Action)
		if err != nil {
			if werr := c.write(errorReply{Type: "error", Error: err.Error()}); werr != nil {
				return
			}
			continue
		}

		select {
		case s.actions <- a:
		default:
			slog.Warn("remote action dropped, queue full", "action", a.String())
		}
	}
}

func (s *Server) removeClient(c *client) {
	s.clientsMu.Lock()
	delete(s.clients, c)
	s.clientsMu.Unlock()
}

// client is one websocket connection. Status updates go out on its own
// writer goroutine; the reader only writes error replies. mu serializes the
// two.
type client struct {
	conn    *websocket.Conn
	mu      sync.Mutex
	updates chan Status // latest unsent status, at most one
	done    chan struct{}
	once    sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn:    conn,
		updates: make(chan Status, 1),
		done:    make(chan struct{}),
	}
}

// offer queues st, replacing a status the writer has not picked up yet.
func (c *client) offer(st Status) {
	for {
		select {
		case c.updates <- st:
			return
		default:
		}
		select {
		case <-c.updates:
		default:
		}
	}
}

func (c *client) writeLoop() {
	for {
		select {
		case st := <-c.updates:
			if err := c.write(st); err != nil {
				slog.Debug("remote client dropped", "addr", c.conn.RemoteAddr().String(), "error", err)
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *client) write(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

// close stops the writer and closes the connection, which also ends the
// reader. Safe to call more than once.
func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
