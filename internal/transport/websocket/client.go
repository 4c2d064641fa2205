package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iamasit07/c4search/internal/domain"
)

const writeWait = 10 * time.Second

// ConnectionManager tracks open sockets by client ID. Client IDs are handed
// out per connection, there are no accounts.
type ConnectionManager struct {
	connections map[int64]*websocket.Conn
	names       map[int64]string

	// conn.WriteJSON must not be called concurrently on one socket
	writeMu map[int64]*sync.Mutex

	mu     sync.RWMutex
	nextID atomic.Int64
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[int64]*websocket.Conn),
		names:       make(map[int64]string),
		writeMu:     make(map[int64]*sync.Mutex),
	}
}

// AddConnection registers conn under a fresh client ID and returns it.
func (cm *ConnectionManager) AddConnection(conn *websocket.Conn, name string) int64 {
	id := cm.nextID.Add(1)

	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[id] = conn
	cm.names[id] = name
	cm.writeMu[id] = &sync.Mutex{}
	return id
}

// RemoveConnection closes and forgets the client's socket.
func (cm *ConnectionManager) RemoveConnection(clientID int64) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if conn, exists := cm.connections[clientID]; exists {
		conn.Close()
		delete(cm.connections, clientID)
		delete(cm.names, clientID)
		delete(cm.writeMu, clientID)
	}
}

// SendMessage writes message as JSON. A client that already left is ignored.
func (cm *ConnectionManager) SendMessage(clientID int64, message domain.ServerMessage) error {
	cm.mu.RLock()
	conn, exists := cm.connections[clientID]
	mu, muExists := cm.writeMu[clientID]
	cm.mu.RUnlock()

	if !exists || !muExists {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(message)
}

func (cm *ConnectionManager) GetName(clientID int64) (string, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	name, exists := cm.names[clientID]
	return name, exists
}

func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}
