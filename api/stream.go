/*
stream.go - Websocket push of refreshed statistics

PURPOSE:
  Keeps connected clients' dashboards current without polling: after
  every record or target mutation the handler broadcasts the refreshed
  overall stats and target progress to all subscribers.

PROTOCOL:
  Server -> client only. Each frame is a JSON StreamUpdate. Client
  messages are read and discarded (the read loop only detects closes).

SEE ALSO:
  - handlers.go: Calls Broadcast after mutations
*/
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamUpdate is one pushed frame.
type StreamUpdate struct {
	Event    string      `json:"event"`
	Stats    StatsDTO    `json:"stats"`
	Progress ProgressDTO `json:"progress"`
	Target   float64     `json:"target"`
}

// Stream tracks websocket subscribers.
type Stream struct {
	log     *log.Logger
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewStream(logger *log.Logger) *Stream {
	return &Stream{log: logger, clients: make(map[*websocket.Conn]bool)}
}

// Handle upgrades the request and registers the client until it closes.
func (s *Stream) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", "err", err)
		return
	}

	s.add(conn)
	s.log.Info("stream client connected", "addr", conn.RemoteAddr())

	// Read loop exists only to notice the close.
	go func() {
		defer func() {
			s.remove(conn)
			conn.Close()
			s.log.Info("stream client disconnected", "addr", conn.RemoteAddr())
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast pushes an update to every subscriber, dropping clients
// whose writes fail.
func (s *Stream) Broadcast(update StreamUpdate) {
	update.Event = "stats"
	frame, err := json.Marshal(update)
	if err != nil {
		s.log.Error("marshal stream update", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			s.log.Error("stream write failed, dropping client", "err", err)
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

func (s *Stream) add(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[conn] = true
}

func (s *Stream) remove(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, conn)
}
