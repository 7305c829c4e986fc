package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pixelcamp/pixelcamp/internal/catalog"
	"github.com/pixelcamp/pixelcamp/internal/chat"
	"github.com/pixelcamp/pixelcamp/internal/game"
	"github.com/pixelcamp/pixelcamp/internal/messaging"
	"github.com/pixelcamp/pixelcamp/internal/storage"
)

const persistTimeout = 5 * time.Second

// Subscriber provides the ability to subscribe to message subjects.
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (unsubscribe func(), err error)
}

// Persister is the write surface for best-effort gameplay persistence.
type Persister interface {
	SavePosition(ctx context.Context, playerId uuid.UUID, x, y int) error
	SaveLife(ctx context.Context, playerId uuid.UUID, life int) error
	SaveVitals(ctx context.Context, playerId uuid.UUID, x, y, life int) error
	SaveEquipped(ctx context.Context, playerId uuid.UUID, itemId storage.Identifier) error
	ReplaceInventory(ctx context.Context, playerId uuid.UUID, inv []*game.ItemStack) error
}

// Gateway is the websocket endpoint. It owns the connection lifecycle and
// routes client intents into the game layer.
type Gateway struct {
	registry   *game.Registry
	resolver   *game.Resolver
	chat       *chat.Processor
	catalog    *catalog.Catalog
	broadcast  *messaging.Broadcaster
	subscriber Subscriber
	persist    Persister
	upgrader   websocket.Upgrader
}

// New creates a Gateway.
func New(reg *game.Registry, resolver *game.Resolver, chatProc *chat.Processor, cat *catalog.Catalog, broadcast *messaging.Broadcaster, sub Subscriber, persist Persister) *Gateway {
	return &Gateway{
		registry:   reg,
		resolver:   resolver,
		chat:       chatProc,
		catalog:    cat,
		broadcast:  broadcast,
		subscriber: sub,
		persist:    persist,
		upgrader: websocket.Upgrader{
			// The browser client is served from arbitrary hosts in development.
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := &clientConn{
		id:     uuid.NewString(),
		conn:   ws,
		closed: make(chan struct{}),
	}
	defer func() {
		close(c.closed)
		c.close()
	}()

	// Outbound events arrive on the connection's NATS subject already
	// encoded; they pass straight through to the socket.
	unsubscribe, err := g.subscriber.Subscribe(messaging.ConnSubject(c.id), func(data []byte) {
		if err := c.writeRaw(data); err != nil {
			slog.Warn("writing to client", "connId", c.id, "error", err)
		}
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "subscribing connection", "connId", c.id, "error", err)
		return
	}
	defer unsubscribe()

	// Reference data first so the client can render everything that follows.
	if err := c.writeEnvelope(MsgGlobalItemDefinitions, g.catalog.Items()); err != nil {
		return
	}
	if err := c.writeEnvelope(MsgGlobalWeaponStats, g.catalog.Weapons()); err != nil {
		return
	}

	slog.Info("client connected", "connId", c.id, "remote", ws.RemoteAddr())

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var env clientEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.notify("Malformed message.")
			continue
		}
		g.dispatch(r.Context(), c, &env)
	}

	g.handleDisconnect(c)
}

func (g *Gateway) handleDisconnect(c *clientConn) {
	ps := g.registry.Remove(c.id)
	if ps == nil {
		slog.Info("client disconnected", "connId", c.id)
		return
	}
	slog.Info("client disconnected", "connId", c.id, "player", ps.Name)

	if err := g.broadcast.AllExcept([]string{c.id}, MsgPlayerDisconnected, disconnectedPayload{Id: ps.PlayerId}); err != nil {
		slog.Warn("broadcasting disconnect", "connId", c.id, "error", err)
	}

	// Final best-effort save. The session is unregistered, so its fields are
	// no longer shared.
	playerId, x, y, life := ps.PlayerId, ps.X, ps.Y, ps.Life
	inventory := ps.Inventory
	equipped := ps.EquippedItem
	g.persistAsync("final vitals", func(ctx context.Context) error {
		return g.persist.SaveVitals(ctx, playerId, x, y, life)
	})
	g.persistAsync("final inventory", func(ctx context.Context) error {
		return g.persist.ReplaceInventory(ctx, playerId, inventory)
	})
	g.persistAsync("final equipped", func(ctx context.Context) error {
		return g.persist.SaveEquipped(ctx, playerId, equipped)
	})
}

// persistAsync runs a persistence write without blocking gameplay. Failures
// are logged and never surfaced to the player.
func (g *Gateway) persistAsync(what string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			slog.Error("persistence failure", "op", what, "error", err)
		}
	}()
}
