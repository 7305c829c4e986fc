package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pixelcamp/pixelcamp/internal/storage"
)

// EquipResult carries the state to broadcast after an equip change.
type EquipResult struct {
	PlayerId     uuid.UUID
	Slot         int
	EquippedItem storage.Identifier // "" when nothing is equipped
}

// InventoryResult carries the state to broadcast after an inventory change.
type InventoryResult struct {
	PlayerId     uuid.UUID
	Inventory    []*ItemStack
	EquippedItem storage.Identifier
	// Added is how much of an AddItem request actually fit; the rest was
	// dropped.
	Added int
}

// EquipSlot selects a hotbar slot. An out-of-range slot or an empty one
// clears the equipped item rather than failing.
func (r *Registry) EquipSlot(connId string, slot int) (*EquipResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ps := r.byConn[connId]
	if ps == nil {
		return nil, ErrNotAuthenticated
	}

	ps.SelectedHotbarSlot = slot
	ps.EquippedItem = equippedAt(ps)

	return &EquipResult{
		PlayerId:     ps.PlayerId,
		Slot:         slot,
		EquippedItem: ps.EquippedItem,
	}, nil
}

// AddItem grants qty of an item. It fills the first existing stack of the
// same item that has room, or starts a new stack in the first empty slot.
// One call never spans two slots: whatever does not fit is dropped.
func (r *Registry) AddItem(connId string, itemId storage.Identifier, qty int) (*InventoryResult, error) {
	def := r.catalog.Item(itemId)
	if def == nil {
		return nil, NewUserError(fmt.Sprintf("No such item %q.", string(itemId)))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ps := r.byConn[connId]
	if ps == nil {
		return nil, ErrNotAuthenticated
	}

	added := 0
	if qty > 0 {
		for _, s := range ps.Inventory {
			if s != nil && s.ItemId == itemId && s.Quantity < def.MaxStack {
				added = min(qty, def.MaxStack-s.Quantity)
				s.Quantity += added
				break
			}
		}
		if added == 0 {
			for i, s := range ps.Inventory {
				if s == nil {
					added = min(qty, def.MaxStack)
					ps.Inventory[i] = &ItemStack{ItemId: itemId, Quantity: added}
					break
				}
			}
		}
	}

	ps.EquippedItem = equippedAt(ps)

	return &InventoryResult{
		PlayerId:     ps.PlayerId,
		Inventory:    ps.inventorySnapshot(),
		EquippedItem: ps.EquippedItem,
		Added:        added,
	}, nil
}

// MoveItem moves the contents of one slot onto another. Same-item stacks
// merge, leaving any remainder in the source slot; anything else swaps. The
// equipped item is re-derived from the selected hotbar slot afterwards.
func (r *Registry) MoveItem(connId string, from, to int) (*InventoryResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ps := r.byConn[connId]
	if ps == nil {
		return nil, ErrNotAuthenticated
	}

	if from < 0 || from >= HotbarSize || to < 0 || to >= HotbarSize || from == to {
		return nil, NewUserError("Invalid inventory slot.")
	}

	src, dst := ps.Inventory[from], ps.Inventory[to]
	merged := false
	if src != nil && dst != nil && src.ItemId == dst.ItemId {
		if def := r.catalog.Item(src.ItemId); def != nil {
			moved := min(src.Quantity, def.MaxStack-dst.Quantity)
			dst.Quantity += moved
			src.Quantity -= moved
			if src.Quantity == 0 {
				ps.Inventory[from] = nil
			}
			merged = true
		}
	}
	if !merged {
		ps.Inventory[from], ps.Inventory[to] = dst, src
	}

	ps.EquippedItem = equippedAt(ps)

	return &InventoryResult{
		PlayerId:     ps.PlayerId,
		Inventory:    ps.inventorySnapshot(),
		EquippedItem: ps.EquippedItem,
	}, nil
}

// equippedAt returns the item id in the session's selected hotbar slot, or ""
// when the slot is out of range or empty. Callers must hold the registry lock.
func equippedAt(ps *PlayerSession) storage.Identifier {
	slot := ps.SelectedHotbarSlot
	if slot < 0 || slot >= HotbarSize {
		return ""
	}
	if s := ps.Inventory[slot]; s != nil {
		return s.ItemId
	}
	return ""
}
