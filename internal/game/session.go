package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/pixelcamp/pixelcamp/internal/storage"
)

// Grid and session constants the browser client renders against.
const (
	MapWidth       = 10
	MapHeight      = 10
	HotbarSize     = 5
	AttackCooldown = time.Second
	DefaultLifeMax = 100
)

// ItemStack is one occupied inventory slot.
type ItemStack struct {
	ItemId   storage.Identifier `json:"item_id"`
	Quantity int                `json:"quantity"`
}

// Profile is the persisted player state a session is hydrated from.
type Profile struct {
	Id           uuid.UUID
	Username     string
	X            int
	Y            int
	Life         int
	LifeMax      int
	Money        int
	EquippedItem storage.Identifier
}

// PlayerSession holds all mutable state for one connected player.
// All access must go through the Registry's methods to ensure thread-safety.
type PlayerSession struct {
	ConnId   string
	PlayerId uuid.UUID
	Name     string

	X    int
	Y    int
	Life int
	// LifeMax is the respawn health.
	LifeMax int
	Money   int

	// Inventory always has HotbarSize slots; nil entries are empty.
	Inventory []*ItemStack

	// SelectedHotbarSlot is the slot the last equip intent named. The
	// equipped item is re-derived from it whenever the inventory changes.
	SelectedHotbarSlot int
	EquippedItem       storage.Identifier // "" when nothing is equipped

	LastAttack time.Time

	// Connection management: closed to signal the active connection to exit.
	done chan struct{}
}

func newSession(connId string, profile *Profile, inv []*ItemStack) *PlayerSession {
	slots := make([]*ItemStack, HotbarSize)
	for i := 0; i < len(inv) && i < HotbarSize; i++ {
		slots[i] = inv[i]
	}
	return &PlayerSession{
		ConnId:       connId,
		PlayerId:     profile.Id,
		Name:         profile.Username,
		X:            profile.X,
		Y:            profile.Y,
		Life:         profile.Life,
		LifeMax:      profile.LifeMax,
		Money:        profile.Money,
		Inventory:    slots,
		EquippedItem: profile.EquippedItem,
		done:         make(chan struct{}),
	}
}

// Done returns the channel that is closed when this session is evicted by a
// newer login for the same player.
func (p *PlayerSession) Done() <-chan struct{} {
	return p.done
}

// Kick closes the done channel. It is safe to call multiple times; subsequent
// calls are no-ops.
func (p *PlayerSession) Kick() {
	select {
	case <-p.done:
		// already closed
	default:
		close(p.done)
	}
}

// inventorySnapshot returns a deep copy safe to read after the registry lock
// is released.
func (p *PlayerSession) inventorySnapshot() []*ItemStack {
	out := make([]*ItemStack, len(p.Inventory))
	for i, s := range p.Inventory {
		if s != nil {
			out[i] = &ItemStack{ItemId: s.ItemId, Quantity: s.Quantity}
		}
	}
	return out
}
