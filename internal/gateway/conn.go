package gateway

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pixelcamp/pixelcamp/internal/messaging"
)

// clientConn wraps a websocket connection with a write mutex so the read
// loop, NATS delivery, and eviction can all write safely.
type clientConn struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex

	// closed is closed when the read loop exits; goroutines watching for
	// session eviction select on it to avoid leaking.
	closed chan struct{}
}

func (c *clientConn) writeRaw(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *clientConn) writeEnvelope(msgType string, payload any) error {
	data, err := json.Marshal(messaging.Envelope{Type: msgType, Payload: payload})
	if err != nil {
		return err
	}
	return c.writeRaw(data)
}

// notify sends a private server notice.
func (c *clientConn) notify(text string) {
	if err := c.writeEnvelope(MsgServerMessage, serverMessagePayload{Text: text}); err != nil {
		c.close()
	}
}

func (c *clientConn) close() {
	c.conn.Close()
}
