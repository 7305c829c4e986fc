package gateway

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pixelcamp/pixelcamp/internal/game"
)

// Message types accepted from clients.
const (
	MsgPlayerLoggedIn = "playerLoggedIn"
	MsgPlayerMovement = "playerMovement"
	MsgEquipItem      = "equipItem"
	MsgMoveItem       = "moveItem"
	MsgPlayerAttack   = "playerAttack"
	MsgChatMessage    = "chatMessage"
	MsgChatCommand    = "chatCommand"
)

// Message types sent to clients.
const (
	MsgGlobalItemDefinitions = "globalItemDefinitions"
	MsgGlobalWeaponStats     = "globalWeaponStats"
	MsgPlayerStateUpdate     = "playerStateUpdate"
	MsgCurrentPlayers        = "currentPlayers"
	MsgPlayerConnected       = "playerConnected"
	MsgPlayerDisconnected    = "playerDisconnected"
	MsgPlayerMoved           = "playerMoved"
	MsgPlayerHealthUpdate    = "playerHealthUpdate"
	MsgPlayerDied            = "playerDied"
	MsgPlayerRespawn         = "playerRespawn"
	MsgPlayerInventoryUpdate = "playerInventoryUpdate"
	MsgEquippedItemUpdate    = "equippedItemUpdate"
	MsgServerMessage         = "serverMessage"
)

// clientEnvelope is one tagged client-to-server message. Payloads are decoded
// by the dispatch switch once the type is known.
type clientEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type loggedInPayload struct {
	PlayerId uuid.UUID `json:"player_id"`
}

type movementPayload struct {
	X     *int `json:"x,omitempty"`
	Y     *int `json:"y,omitempty"`
	Up    bool `json:"up,omitempty"`
	Down  bool `json:"down,omitempty"`
	Left  bool `json:"left,omitempty"`
	Right bool `json:"right,omitempty"`
}

type equipItemPayload struct {
	Slot int `json:"slot"`
}

type moveItemPayload struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type attackPayload struct {
	TargetId uuid.UUID `json:"target_id"`
}

type chatPayload struct {
	Text string `json:"text"`
}

// playerPublic is the view of a player every client may see. The equipped
// item is public so other clients can render the held weapon.
type playerPublic struct {
	Id             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	X              int       `json:"x_pos"`
	Y              int       `json:"y_pos"`
	Life           int       `json:"life"`
	LifeMax        int       `json:"life_max"`
	EquippedItemId string    `json:"equipped_item_id,omitempty"`
}

// playerPrivate is the full state sync a player receives for themselves.
type playerPrivate struct {
	playerPublic
	Money        int               `json:"money"`
	Inventory    []*game.ItemStack `json:"inventory"`
	SelectedSlot int               `json:"selected_slot"`
}

type playerMovedPayload struct {
	Id uuid.UUID `json:"id"`
	X  int       `json:"x_pos"`
	Y  int       `json:"y_pos"`
}

type healthUpdatePayload struct {
	Id   uuid.UUID `json:"id"`
	Life int       `json:"life"`
}

type playerDiedPayload struct {
	Id       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	KillerId uuid.UUID `json:"killer_id"`
}

type respawnPayload struct {
	X       int `json:"x_pos"`
	Y       int `json:"y_pos"`
	Life    int `json:"life"`
	LifeMax int `json:"life_max"`
}

type inventoryUpdatePayload struct {
	Inventory      []*game.ItemStack `json:"inventory"`
	EquippedItemId string            `json:"equipped_item_id,omitempty"`
}

type equippedUpdatePayload struct {
	Id             uuid.UUID `json:"id"`
	EquippedItemId string    `json:"equipped_item_id,omitempty"`
}

type disconnectedPayload struct {
	Id uuid.UUID `json:"id"`
}

type serverMessagePayload struct {
	Text string `json:"text"`
}

func publicView(ps *game.PlayerSession) playerPublic {
	return playerPublic{
		Id:             ps.PlayerId,
		Username:       ps.Name,
		X:              ps.X,
		Y:              ps.Y,
		Life:           ps.Life,
		LifeMax:        ps.LifeMax,
		EquippedItemId: string(ps.EquippedItem),
	}
}
