package hub

import (
	"encoding/json"
	"sync"
	"time"
)

// writeWait is the per-message budget before a spectator is treated as
// stuck and dropped.
const writeWait = 250 * time.Millisecond

// Message type codes of the websocket framing layer.
const (
	textMessage   = 1
	binaryMessage = 2
)

// socket is the slice of the websocket connection the hub needs; the
// server layer adapts the real connection, tests use an in-memory one.
type socket interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// conn guards a spectator socket with a write mutex so messages go out
// in emission order.
type conn struct {
	ws socket
	mu sync.Mutex
}

func newConn(ws socket) *conn {
	return &conn{ws: ws}
}

func (c *conn) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(textMessage, data)
}

func (c *conn) writeBinary(data []byte) error {
	return c.write(binaryMessage, data)
}

func (c *conn) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, data)
}

func (c *conn) close() {
	_ = c.ws.Close()
}
