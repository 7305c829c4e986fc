package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/pixelcamp/pixelcamp/internal/game"
)

// Envelope is one tagged server-to-client message.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// ConnSubject returns the NATS subject a connection's outbound messages are
// published on.
func ConnSubject(connId string) string {
	return fmt.Sprintf("conn.%s", connId)
}

// Publisher sends raw bytes to a subject.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// ConnLister enumerates live sessions for fan-out.
type ConnLister interface {
	ForEach(fn func(*game.PlayerSession))
}

// Broadcaster delivers envelopes to per-connection NATS subjects.
type Broadcaster struct {
	pub   Publisher
	conns ConnLister
}

// NewBroadcaster wraps a Publisher for per-connection envelope delivery.
func NewBroadcaster(pub Publisher, conns ConnLister) *Broadcaster {
	return &Broadcaster{pub: pub, conns: conns}
}

// ToConn sends one envelope to a single connection.
func (b *Broadcaster) ToConn(connId string, msgType string, payload any) error {
	data, err := json.Marshal(Envelope{Type: msgType, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshaling %s envelope: %w", msgType, err)
	}
	return b.pub.Publish(ConnSubject(connId), data)
}

// All sends one envelope to every live connection.
func (b *Broadcaster) All(msgType string, payload any) error {
	return b.AllExcept(nil, msgType, payload)
}

// AllExcept sends one envelope to every live connection not in exclude.
func (b *Broadcaster) AllExcept(exclude []string, msgType string, payload any) error {
	data, err := json.Marshal(Envelope{Type: msgType, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshaling %s envelope: %w", msgType, err)
	}

	excludeSet := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excludeSet[id] = true
	}
	var firstErr error
	b.conns.ForEach(func(ps *game.PlayerSession) {
		if excludeSet[ps.ConnId] {
			return
		}
		if err := b.pub.Publish(ConnSubject(ps.ConnId), data); err != nil && firstErr == nil {
			firstErr = err
		}
	})
	return firstErr
}
