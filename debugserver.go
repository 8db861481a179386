package holokin

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// DebugServer streams the solved node pose table to websocket viewers,
// one JSON frame per tick. It lives entirely outside the solve loop: the
// host calls Broadcast after each tick with whatever cadence it likes.

type posePayload struct {
	Position [3]float32 `json:"pos"`
	Rotation [4]float32 `json:"rot"` // x y z w
}

type poseFrame struct {
	Tick  int                    `json:"tick"`
	Nodes map[string]posePayload `json:"nodes"`
}

type DebugServer struct {
	upgrader websocket.Upgrader
	log      Logger

	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

func NewDebugServer(log Logger) *DebugServer {
	if log == nil {
		log = NewNopLogger()
	}
	return &DebugServer{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Viewers are local tooling; no origin policy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log:     log,
		clients: make(map[string]*websocket.Conn),
	}
}

// ServeHTTP upgrades a viewer connection and keeps it registered until it
// drops. Viewers only receive; inbound messages are drained and discarded.
func (s *DebugServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("debug server: upgrade failed: %v", err)
		return
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.clients[id] = conn
	s.mu.Unlock()
	s.log.Infof("debug server: viewer %s connected from %s", id, r.RemoteAddr)

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.drop(id)
				return
			}
		}
	}()
}

func (s *DebugServer) drop(id string) {
	s.mu.Lock()
	conn, ok := s.clients[id]
	if ok {
		delete(s.clients, id)
	}
	s.mu.Unlock()
	if ok {
		conn.Close()
		s.log.Infof("debug server: viewer %s disconnected", id)
	}
}

// Broadcast sends the current node poses to every connected viewer.
func (s *DebugServer) Broadcast(tick int, state *IkState) {
	frame := poseFrame{Tick: tick, Nodes: make(map[string]posePayload, NodeCount)}
	for id := 0; id < NodeCount; id++ {
		p := state.Positions[id]
		q := state.Rotations[id]
		frame.Nodes[nodeNames[id]] = posePayload{
			Position: [3]float32{p.X(), p.Y(), p.Z()},
			Rotation: [4]float32{q.X(), q.Y(), q.Z(), q.W},
		}
	}

	s.mu.Lock()
	conns := make(map[string]*websocket.Conn, len(s.clients))
	for id, conn := range s.clients {
		conns[id] = conn
	}
	s.mu.Unlock()

	for id, conn := range conns {
		if err := conn.WriteJSON(&frame); err != nil {
			s.log.Debugf("debug server: write to %s failed: %v", id, err)
			s.drop(id)
		}
	}
}

// ClientCount reports the number of connected viewers.
func (s *DebugServer) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// ListenAndServe runs a standalone HTTP server with the pose stream
// mounted at /poses.
func (s *DebugServer) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/poses", s)
	s.log.Infof("debug server: listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
