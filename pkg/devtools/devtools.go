package devtools

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/ducks/pkg/store"
)

// MessageType identifies a devtools message.
type MessageType string

const (
	TypeSnapshot MessageType = "snapshot"
	TypeAction   MessageType = "action"
	TypeDispatch MessageType = "dispatch"
	TypeError    MessageType = "error"
)

// Message is exchanged with devtools clients.
type Message struct {
	Type   MessageType            `json:"type"`
	Action *store.Action          `json:"action,omitempty"`
	State  map[string]store.State `json:"state,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

const (
	defaultWriteTimeout = 5 * time.Second
	defaultSendBuffer   = 64
)

// client owns one connection. Only its write loop writes to conn.
type client struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	closed sync.Once
}

// enqueue queues data without blocking. It reports false when the client's
// buffer is full or the client is closed.
func (c *client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.closed.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Server manages devtools WebSocket connections for one store.
type Server struct {
	clients  map[*client]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger

	writeTimeout time.Duration
	sendBuffer   int

	store *store.Store
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCheckOrigin replaces the origin check. The default accepts any origin.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// WithWriteTimeout bounds each write to a client. A client that cannot
// accept a message in time is disconnected.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// WithSendBuffer sets how many messages may queue for one client before it
// is disconnected as too slow.
func WithSendBuffer(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.sendBuffer = n
		}
	}
}

// New creates a devtools server.
func New(opts ...Option) *Server {
	s := &Server{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger:       slog.Default().With("component", "devtools"),
		writeTimeout: defaultWriteTimeout,
		sendBuffer:   defaultSendBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach subscribes to st and broadcasts every action it dispatches. The
// returned function detaches the server again. Broadcasting never blocks
// the store: messages are queued per client.
func (s *Server) Attach(st *store.Store) func() {
	s.mu.Lock()
	s.store = st
	s.mu.Unlock()

	unsubscribe := st.Subscribe(func(action store.Action, state map[string]store.State) {
		s.Broadcast(Message{Type: TypeAction, Action: &action, State: state})
	})

	return func() {
		unsubscribe()
		s.mu.Lock()
		if s.store == st {
			s.store = nil
		}
		s.mu.Unlock()
	}
}

// HandleWebSocket handles WebSocket upgrade and connection.
func (s *Server) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		s.logger.Debug("upgrade failed", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, s.sendBuffer),
		done: make(chan struct{}),
	}
	go s.writeLoop(c)

	// Queue the snapshot under s.mu so it precedes every broadcast to c.
	s.mu.Lock()
	if s.store != nil {
		s.send(c, Message{Type: TypeSnapshot, State: s.store.State()})
	}
	s.clients[c] = true
	s.mu.Unlock()

	s.logger.Debug("client connected", "remote", req.RemoteAddr)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		s.handleMessage(c, data)
	}

	s.remove(c)
	s.logger.Debug("client disconnected", "remote", req.RemoteAddr)
}

func (s *Server) handleMessage(c *client, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		s.send(c, Message{Type: TypeError, Error: "invalid message: " + err.Error()})
		return
	}

	switch msg.Type {
	case TypeDispatch:
		s.mu.RLock()
		st := s.store
		s.mu.RUnlock()

		switch {
		case st == nil:
			s.send(c, Message{Type: TypeError, Error: "no store attached"})
		case msg.Action == nil || msg.Action.Type == "":
			s.send(c, Message{Type: TypeError, Error: "dispatch requires an action type"})
		default:
			st.Dispatch(*msg.Action)
		}
	case TypeSnapshot:
		s.mu.RLock()
		st := s.store
		s.mu.RUnlock()
		if st != nil {
			s.send(c, Message{Type: TypeSnapshot, State: st.State()})
		}
	default:
		s.send(c, Message{Type: TypeError, Error: "unknown message type " + string(msg.Type)})
	}
}

// Broadcast sends a message to all connected clients.
func (s *Server) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Warn("encode message failed", "type", msg.Type, "error", err)
		return
	}

	s.mu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if !c.enqueue(data) {
			s.drop(c)
		}
	}
}

// send queues msg for c. It must not take s.mu.
func (s *Server) send(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Warn("encode message failed", "type", msg.Type, "error", err)
		return
	}
	if !c.enqueue(data) {
		go s.drop(c)
	}
}

// drop disconnects a client whose buffer overflowed.
func (s *Server) drop(c *client) {
	select {
	case <-c.done:
		return
	default:
	}
	s.logger.Warn("devtools client too slow, disconnecting", "remote", c.conn.RemoteAddr().String())
	s.remove(c)
}

func (s *Server) writeLoop(c *client) {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Debug("write failed", "remote", c.conn.RemoteAddr().String(), "error", err)
				s.remove(c)
				return
			}
		}
	}
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.close()
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close closes all client connections.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		c.close()
		delete(s.clients, c)
	}
}
