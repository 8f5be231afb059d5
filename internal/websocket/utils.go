package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// SafeConn serializes writes to a WebSocket connection. The session stream
// writes from two goroutines (the read loop and the countdown ticker), and
// gorilla/websocket allows only one concurrent writer.
type SafeConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewSafeConn(conn *websocket.Conn) *SafeConn {
	return &SafeConn{conn: conn}
}

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func (c *SafeConn) WriteTyped(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func (c *SafeConn) WriteError(errMsg string) error {
	return c.WriteTyped(ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline. Reads stay single-goroutine, no locking needed.
func (c *SafeConn) ReadJSON(v interface{}) error {
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
	return c.conn.ReadJSON(v)
}

// Close closes the underlying connection.
func (c *SafeConn) Close() error {
	return c.conn.Close()
}
