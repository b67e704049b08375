package main

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/daniacca/orrery/internal/orrery"
	"github.com/gorilla/websocket"
)

// stateFrame is the message pushed to every websocket subscriber after a
// committed tick.
type stateFrame struct {
	Tick    uint64      `json:"tick"`
	Elapsed float64     `json:"elapsed"`
	Bodies  []bodyState `json:"bodies"`
}

// StateStream fans out post-tick body state to WebSocket subscribers. It
// implements orrery.TickRecorder so the simulation can feed it directly.
// A slow subscriber drops frames rather than stalling the tick loop.
type StateStream struct {
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	upgrader   websocket.Upgrader
	broadcast  chan stateFrame
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewStateStream creates the stream and starts its broadcaster goroutine.
func NewStateStream() *StateStream {
	s := &StateStream{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan stateFrame, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	s.wg.Add(1)
	go s.run()

	return s
}

// RegisterClient adds a new WebSocket subscriber.
func (s *StateStream) RegisterClient(conn *websocket.Conn) {
	select {
	case s.register <- conn:
	case <-s.done:
		// Stream is closing, ignore
	}
}

// UnregisterClient removes a WebSocket subscriber.
func (s *StateStream) UnregisterClient(conn *websocket.Conn) {
	select {
	case s.unregister <- conn:
	case <-s.done:
		// Stream is closing, ignore
	}
}

// RecordTick queues the committed tick for broadcast. It never blocks the
// ticking goroutine: when the queue is full the frame is dropped.
func (s *StateStream) RecordTick(tick uint64, elapsed float64, bodies []orrery.Body) error {
	frame := stateFrame{
		Tick:    tick,
		Elapsed: elapsed,
		Bodies:  toBodyStates(bodies),
	}
	select {
	case s.broadcast <- frame:
	default:
		// Subscribers are behind; skip this frame
	}
	return nil
}

// run handles subscriber registration and frame broadcasting
func (s *StateStream) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return

		case conn := <-s.register:
			if conn == nil {
				continue
			}
			s.mu.Lock()
			s.clients[conn] = true
			s.mu.Unlock()

		case conn := <-s.unregister:
			if conn == nil {
				continue
			}
			s.mu.Lock()
			if _, ok := s.clients[conn]; ok {
				delete(s.clients, conn)
				conn.Close()
			}
			s.mu.Unlock()

		case frame, ok := <-s.broadcast:
			if !ok {
				return
			}
			data, err := json.Marshal(frame)
			if err != nil {
				continue
			}

			// Collect connections first so the lock is not held during writes
			s.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(s.clients))
			for conn := range s.clients {
				conns = append(conns, conn)
			}
			s.mu.RUnlock()

			var toRemove []*websocket.Conn
			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					toRemove = append(toRemove, conn)
					conn.Close()
				}
			}

			if len(toRemove) > 0 {
				s.mu.Lock()
				for _, conn := range toRemove {
					delete(s.clients, conn)
				}
				s.mu.Unlock()
			}
		}
	}
}

// Close disconnects all subscribers and stops the broadcaster goroutine.
func (s *StateStream) Close() error {
	close(s.done)

	s.mu.Lock()
	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
	}
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}
