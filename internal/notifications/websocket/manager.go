package websocket

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message is one event pushed to dashboard clients.
type Message struct {
	Type      string      `json:"type"`
	CompanyID uuid.UUID   `json:"company_id"`
	Payload   interface{} `json:"payload,omitempty"`
	SentAt    time.Time   `json:"sent_at"`
}

// Connection represents a WebSocket client connection
type Connection struct {
	ID   string
	Conn *websocket.Conn
	Send chan Message
}

// Manager handles WebSocket connections and message fan-out to
// connected dashboard sessions.
type Manager struct {
	connections map[string]*Connection
	mu          sync.RWMutex
	broadcast   chan Message
	upgrader    websocket.Upgrader
}

// NewManager creates a new WebSocket manager and starts its fan-out loop.
func NewManager() *Manager {
	m := &Manager{
		connections: make(map[string]*Connection),
		broadcast:   make(chan Message, 256),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// In production, implement proper origin checking
				return true
			},
		},
	}
	go m.run()
	return m
}

func (m *Manager) run() {
	for msg := range m.broadcast {
		m.mu.RLock()
		for _, conn := range m.connections {
			select {
			case conn.Send <- msg:
			default:
				// Slow clients drop messages rather than blocking the loop.
			}
		}
		m.mu.RUnlock()
	}
}

// Broadcast queues a message for every connected client.
func (m *Manager) Broadcast(msg Message) {
	select {
	case m.broadcast <- msg:
	default:
		log.Printf("websocket broadcast queue full, dropping %s message", msg.Type)
	}
}

// HandleConnection upgrades the request and serves the client until it
// disconnects.
func (m *Manager) HandleConnection(c *gin.Context) {
	ws, err := m.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	conn := &Connection{
		ID:   uuid.NewString(),
		Conn: ws,
		Send: make(chan Message, 64),
	}

	m.mu.Lock()
	m.connections[conn.ID] = conn
	m.mu.Unlock()

	go m.writePump(conn)
	m.readPump(conn)
}

func (m *Manager) writePump(conn *Connection) {
	for msg := range conn.Send {
		if err := conn.Conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (m *Manager) readPump(conn *Connection) {
	defer m.remove(conn)
	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (m *Manager) remove(conn *Connection) {
	m.mu.Lock()
	if _, ok := m.connections[conn.ID]; ok {
		delete(m.connections, conn.ID)
		close(conn.Send)
	}
	m.mu.Unlock()
	conn.Conn.Close()
}
