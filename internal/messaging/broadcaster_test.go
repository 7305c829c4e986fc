package messaging

import (
	"encoding/json"
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/pixelcamp/pixelcamp/internal/game"
)

type fakePublisher struct {
	published map[string][][]byte
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	if f.published == nil {
		f.published = make(map[string][][]byte)
	}
	f.published[subject] = append(f.published[subject], data)
	return nil
}

type fakeConns []*game.PlayerSession

func (f fakeConns) ForEach(fn func(*game.PlayerSession)) {
	for _, ps := range f {
		fn(ps)
	}
}

func TestBroadcaster_ToConn(t *testing.T) {
	pub := &fakePublisher{}
	b := NewBroadcaster(pub, fakeConns{})

	err := b.ToConn("conn-1", "serverMessage", map[string]string{"text": "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := pub.published["conn.conn-1"]
	testutil.AssertEqual(t, "message count", len(msgs), 1)

	var env struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(msgs[0], &env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "type", env.Type, "serverMessage")
}

func TestBroadcaster_AllExcept(t *testing.T) {
	tests := map[string]struct {
		exclude  []string
		expConns []string
		expSkip  []string
	}{
		"no exclusions":  {expConns: []string{"conn-1", "conn-2", "conn-3"}},
		"exclude sender": {exclude: []string{"conn-2"}, expConns: []string{"conn-1", "conn-3"}, expSkip: []string{"conn-2"}},
		"exclude all":    {exclude: []string{"conn-1", "conn-2", "conn-3"}, expSkip: []string{"conn-1", "conn-2", "conn-3"}},
	}

	conns := fakeConns{
		{ConnId: "conn-1"},
		{ConnId: "conn-2"},
		{ConnId: "conn-3"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			pub := &fakePublisher{}
			b := NewBroadcaster(pub, conns)

			err := b.AllExcept(tt.exclude, "playerMoved", map[string]int{"x": 1})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			for _, id := range tt.expConns {
				testutil.AssertEqual(t, "messages to "+id, len(pub.published[ConnSubject(id)]), 1)
			}
			for _, id := range tt.expSkip {
				testutil.AssertEqual(t, "messages to "+id, len(pub.published[ConnSubject(id)]), 0)
			}
		})
	}
}
