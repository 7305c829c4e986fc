package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/pixelcamp/pixelcamp/internal/game"
	"github.com/pixelcamp/pixelcamp/internal/store"
)

// dispatch routes one client envelope to its handler. Every gameplay
// rejection comes back as an error and turns into a private server notice;
// the connection stays open.
func (g *Gateway) dispatch(ctx context.Context, c *clientConn, env *clientEnvelope) {
	var err error
	switch env.Type {
	case MsgPlayerLoggedIn:
		err = g.handleLogin(ctx, c, env.Payload)
	case MsgPlayerMovement:
		err = g.handleMovement(c, env.Payload)
	case MsgEquipItem:
		err = g.handleEquip(c, env.Payload)
	case MsgMoveItem:
		err = g.handleMoveItem(c, env.Payload)
	case MsgPlayerAttack:
		err = g.handleAttack(c, env.Payload)
	case MsgChatMessage:
		err = g.handleChat(c, env.Payload)
	case MsgChatCommand:
		err = g.handleCommand(c, env.Payload)
	default:
		err = game.NewUserError(fmt.Sprintf("Unknown message type %q.", env.Type))
	}
	if err != nil {
		g.notifyError(c, err)
	}
}

func (g *Gateway) notifyError(c *clientConn, err error) {
	var userErr *game.UserError
	switch {
	case errors.As(err, &userErr):
		c.notify(userErr.Message)
	case errors.Is(err, game.ErrNotAuthenticated):
		c.notify("You are not logged in.")
	case errors.Is(err, store.ErrProfileNotFound):
		c.notify("No player profile found. Log in again.")
	default:
		slog.Error("handling client message", "connId", c.id, "error", err)
		c.notify("Something went wrong.")
	}
}

func (g *Gateway) handleLogin(ctx context.Context, c *clientConn, data json.RawMessage) error {
	var p loggedInPayload
	if err := json.Unmarshal(data, &p); err != nil || p.PlayerId == uuid.Nil {
		return game.NewUserError("Invalid login payload.")
	}

	ps, evicted, err := g.registry.Associate(ctx, c.id, p.PlayerId)
	if err != nil {
		return err
	}
	if evicted != nil {
		slog.Info("evicted duplicate session", "player", ps.Name, "oldConn", evicted.ConnId, "newConn", c.id)
	}

	// A later login for the same player closes this connection.
	go func() {
		select {
		case <-ps.Done():
			c.notify("Another connection has taken over your session.")
			c.close()
		case <-c.closed:
		}
	}()

	if err := c.writeEnvelope(MsgPlayerStateUpdate, privateView(ps)); err != nil {
		return nil
	}

	views := make([]playerPublic, 0)
	g.registry.ForEach(func(o *game.PlayerSession) {
		if o.ConnId != c.id {
			views = append(views, publicView(o))
		}
	})
	if err := c.writeEnvelope(MsgCurrentPlayers, views); err != nil {
		return nil
	}

	return g.broadcast.AllExcept([]string{c.id}, MsgPlayerConnected, publicView(ps))
}

func privateView(ps *game.PlayerSession) playerPrivate {
	return playerPrivate{
		playerPublic: publicView(ps),
		Money:        ps.Money,
		Inventory:    ps.Inventory,
		SelectedSlot: ps.SelectedHotbarSlot,
	}
}

func (g *Gateway) handleMovement(c *clientConn, data json.RawMessage) error {
	var p movementPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return game.NewUserError("Invalid movement payload.")
	}

	flags := game.MoveFlags{Up: p.Up, Down: p.Down, Left: p.Left, Right: p.Right}

	var res *game.MoveResult
	var err error
	switch {
	case flags.Any():
		res, err = g.registry.MoveDirection(c.id, flags)
	case p.X != nil && p.Y != nil:
		res, err = g.registry.MoveTo(c.id, *p.X, *p.Y)
	default:
		return game.NewUserError("Invalid movement payload.")
	}
	if err != nil {
		return err
	}
	if !res.Moved {
		return nil
	}

	if err := g.broadcast.AllExcept([]string{c.id}, MsgPlayerMoved, playerMovedPayload{Id: res.PlayerId, X: res.X, Y: res.Y}); err != nil {
		slog.Warn("broadcasting move", "connId", c.id, "error", err)
	}
	g.persistAsync("position", func(ctx context.Context) error {
		return g.persist.SavePosition(ctx, res.PlayerId, res.X, res.Y)
	})
	return nil
}

func (g *Gateway) handleEquip(c *clientConn, data json.RawMessage) error {
	var p equipItemPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return game.NewUserError("Invalid equip payload.")
	}

	res, err := g.registry.EquipSlot(c.id, p.Slot)
	if err != nil {
		return err
	}

	update := equippedUpdatePayload{Id: res.PlayerId, EquippedItemId: string(res.EquippedItem)}
	if err := c.writeEnvelope(MsgEquippedItemUpdate, update); err != nil {
		return nil
	}
	if err := g.broadcast.AllExcept([]string{c.id}, MsgEquippedItemUpdate, update); err != nil {
		slog.Warn("broadcasting equip", "connId", c.id, "error", err)
	}
	g.persistAsync("equipped", func(ctx context.Context) error {
		return g.persist.SaveEquipped(ctx, res.PlayerId, res.EquippedItem)
	})
	return nil
}

func (g *Gateway) handleMoveItem(c *clientConn, data json.RawMessage) error {
	var p moveItemPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return game.NewUserError("Invalid move item payload.")
	}

	res, err := g.registry.MoveItem(c.id, p.From, p.To)
	if err != nil {
		return err
	}

	g.sendInventoryUpdate(c, res)
	return nil
}

// sendInventoryUpdate pushes an inventory change to its owner, announces the
// re-derived equipped item, and persists both.
func (g *Gateway) sendInventoryUpdate(c *clientConn, res *game.InventoryResult) {
	if err := c.writeEnvelope(MsgPlayerInventoryUpdate, inventoryUpdatePayload{
		Inventory:      res.Inventory,
		EquippedItemId: string(res.EquippedItem),
	}); err != nil {
		return
	}
	if err := g.broadcast.AllExcept([]string{c.id}, MsgEquippedItemUpdate, equippedUpdatePayload{
		Id:             res.PlayerId,
		EquippedItemId: string(res.EquippedItem),
	}); err != nil {
		slog.Warn("broadcasting equipped item", "connId", c.id, "error", err)
	}

	g.persistAsync("inventory", func(ctx context.Context) error {
		return g.persist.ReplaceInventory(ctx, res.PlayerId, res.Inventory)
	})
	g.persistAsync("equipped", func(ctx context.Context) error {
		return g.persist.SaveEquipped(ctx, res.PlayerId, res.EquippedItem)
	})
}

func (g *Gateway) handleAttack(c *clientConn, data json.RawMessage) error {
	var p attackPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return game.NewUserError("Invalid attack payload.")
	}

	res, err := g.resolver.Attack(c.id, p.TargetId)
	if err != nil {
		return err
	}

	if err := g.broadcast.All(MsgPlayerHealthUpdate, healthUpdatePayload{Id: res.TargetId, Life: res.TargetLife}); err != nil {
		slog.Warn("broadcasting health", "connId", c.id, "error", err)
	}

	if !res.Died {
		g.persistAsync("life", func(ctx context.Context) error {
			return g.persist.SaveLife(ctx, res.TargetId, res.TargetLife)
		})
		return nil
	}

	if err := g.broadcast.All(MsgPlayerDied, playerDiedPayload{Id: res.TargetId, Username: res.TargetName, KillerId: res.AttackerId}); err != nil {
		slog.Warn("broadcasting death", "connId", c.id, "error", err)
	}
	if err := g.broadcast.ToConn(res.TargetConnId, MsgPlayerInventoryUpdate, inventoryUpdatePayload{
		Inventory: make([]*game.ItemStack, game.HotbarSize),
	}); err != nil {
		slog.Warn("sending death inventory", "connId", c.id, "error", err)
	}
	if err := g.broadcast.ToConn(res.TargetConnId, MsgPlayerRespawn, respawnPayload{
		X:       res.RespawnX,
		Y:       res.RespawnY,
		Life:    res.RespawnLife,
		LifeMax: res.TargetLifeMax,
	}); err != nil {
		slog.Warn("sending respawn", "connId", c.id, "error", err)
	}
	if err := g.broadcast.AllExcept([]string{res.TargetConnId}, MsgPlayerMoved, playerMovedPayload{
		Id: res.TargetId,
		X:  res.RespawnX,
		Y:  res.RespawnY,
	}); err != nil {
		slog.Warn("broadcasting respawn move", "connId", c.id, "error", err)
	}

	g.persistAsync("respawn vitals", func(ctx context.Context) error {
		return g.persist.SaveVitals(ctx, res.TargetId, res.RespawnX, res.RespawnY, res.RespawnLife)
	})
	g.persistAsync("respawn inventory", func(ctx context.Context) error {
		return g.persist.ReplaceInventory(ctx, res.TargetId, make([]*game.ItemStack, game.HotbarSize))
	})
	g.persistAsync("respawn equipped", func(ctx context.Context) error {
		return g.persist.SaveEquipped(ctx, res.TargetId, "")
	})
	return nil
}

func (g *Gateway) handleChat(c *clientConn, data json.RawMessage) error {
	var p chatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return game.NewUserError("Invalid chat payload.")
	}

	text := strings.TrimSpace(p.Text)
	if text == "" {
		return nil
	}
	if strings.HasPrefix(text, "/") {
		return g.runCommand(c, text)
	}

	msg, err := g.chat.Relay(c.id, text)
	if err != nil {
		return err
	}
	return g.broadcast.All(MsgChatMessage, msg)
}

func (g *Gateway) handleCommand(c *clientConn, data json.RawMessage) error {
	var p chatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return game.NewUserError("Invalid command payload.")
	}
	return g.runCommand(c, strings.TrimSpace(p.Text))
}

func (g *Gateway) runCommand(c *clientConn, line string) error {
	res, err := g.chat.Command(c.id, line)
	if err != nil {
		return err
	}

	c.notify(res.Notice)
	if res.Inventory != nil {
		g.sendInventoryUpdate(c, res.Inventory)
	}
	return nil
}
