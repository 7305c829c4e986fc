package game

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pixil98/go-testutil"
	"github.com/pixelcamp/pixelcamp/internal/storage"
)

func invTestRegistry(t *testing.T, inv []*ItemStack) (*Registry, string) {
	t.Helper()

	playerId := uuid.New()
	profiles := &fakeProfiles{
		profiles:  map[uuid.UUID]*Profile{playerId: testProfile(playerId, "ada")},
		inventory: map[uuid.UUID][]*ItemStack{playerId: inv},
	}
	reg := NewRegistry(profiles, testCatalog())
	_, _, err := reg.Associate(context.Background(), "conn-1", playerId)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return reg, "conn-1"
}

func TestRegistry_EquipSlot(t *testing.T) {
	inv := []*ItemStack{
		{ItemId: "sword", Quantity: 1},
		nil,
		{ItemId: "berry", Quantity: 5},
	}

	tests := map[string]struct {
		slot        int
		expEquipped storage.Identifier
	}{
		"weapon slot":    {slot: 0, expEquipped: "sword"},
		"empty slot":     {slot: 1, expEquipped: ""},
		"non-weapon":     {slot: 2, expEquipped: "berry"},
		"negative slot":  {slot: -1, expEquipped: ""},
		"past last slot": {slot: HotbarSize, expEquipped: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			reg, connId := invTestRegistry(t, inv)

			res, err := reg.EquipSlot(connId, tt.slot)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "slot", res.Slot, tt.slot)
			testutil.AssertEqual(t, "equipped", res.EquippedItem, tt.expEquipped)
			testutil.AssertEqual(t, "session equipped", reg.Get(connId).EquippedItem, tt.expEquipped)
		})
	}
}

func TestRegistry_AddItem(t *testing.T) {
	tests := map[string]struct {
		inv      []*ItemStack
		itemId   storage.Identifier
		qty      int
		expAdded int
		expInv   func(t *testing.T, inv []*ItemStack)
	}{
		"new stack in first empty slot": {
			inv:      []*ItemStack{{ItemId: "sword", Quantity: 1}},
			itemId:   "berry",
			qty:      5,
			expAdded: 5,
			expInv: func(t *testing.T, inv []*ItemStack) {
				testutil.AssertEqual(t, "slot 1 item", inv[1].ItemId, storage.Identifier("berry"))
				testutil.AssertEqual(t, "slot 1 qty", inv[1].Quantity, 5)
			},
		},
		"prefers existing stack with room": {
			inv:      []*ItemStack{nil, {ItemId: "berry", Quantity: 5}},
			itemId:   "berry",
			qty:      3,
			expAdded: 3,
			expInv: func(t *testing.T, inv []*ItemStack) {
				if inv[0] != nil {
					t.Error("expected slot 0 to stay empty")
				}
				testutil.AssertEqual(t, "slot 1 qty", inv[1].Quantity, 8)
			},
		},
		"overflow dropped, never split": {
			inv:      []*ItemStack{{ItemId: "berry", Quantity: 18}, nil},
			itemId:   "berry",
			qty:      5,
			expAdded: 2,
			expInv: func(t *testing.T, inv []*ItemStack) {
				testutil.AssertEqual(t, "slot 0 qty", inv[0].Quantity, 20)
				if inv[1] != nil {
					t.Error("expected overflow to be dropped, not spilled to slot 1")
				}
			},
		},
		"full stack skipped": {
			inv:      []*ItemStack{{ItemId: "berry", Quantity: 20}, nil},
			itemId:   "berry",
			qty:      4,
			expAdded: 4,
			expInv: func(t *testing.T, inv []*ItemStack) {
				testutil.AssertEqual(t, "slot 1 item", inv[1].ItemId, storage.Identifier("berry"))
				testutil.AssertEqual(t, "slot 1 qty", inv[1].Quantity, 4)
			},
		},
		"new stack capped at max": {
			inv:      []*ItemStack{},
			itemId:   "rock",
			qty:      25,
			expAdded: 10,
			expInv: func(t *testing.T, inv []*ItemStack) {
				testutil.AssertEqual(t, "slot 0 qty", inv[0].Quantity, 10)
			},
		},
		"inventory full": {
			inv: []*ItemStack{
				{ItemId: "sword", Quantity: 1},
				{ItemId: "spear", Quantity: 1},
				{ItemId: "club", Quantity: 1},
				{ItemId: "rock", Quantity: 10},
				{ItemId: "berry", Quantity: 20},
			},
			itemId:   "berry",
			qty:      5,
			expAdded: 0,
			expInv:   func(t *testing.T, inv []*ItemStack) {},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			reg, connId := invTestRegistry(t, tt.inv)

			res, err := reg.AddItem(connId, tt.itemId, tt.qty)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "added", res.Added, tt.expAdded)
			tt.expInv(t, res.Inventory)
		})
	}
}

func TestRegistry_AddItemUnknown(t *testing.T) {
	reg, connId := invTestRegistry(t, nil)

	_, err := reg.AddItem(connId, "phlogiston", 1)
	var userErr *UserError
	if !errors.As(err, &userErr) {
		t.Fatalf("expected user error, got %v", err)
	}
}

func TestRegistry_MoveItem(t *testing.T) {
	tests := map[string]struct {
		inv      []*ItemStack
		selected int
		from, to int
		expErr   bool
		expInv   func(t *testing.T, inv []*ItemStack)
		expEquip storage.Identifier
	}{
		"swap distinct items": {
			inv:      []*ItemStack{{ItemId: "sword", Quantity: 1}, {ItemId: "berry", Quantity: 5}},
			selected: 0,
			from:     0,
			to:       1,
			expInv: func(t *testing.T, inv []*ItemStack) {
				testutil.AssertEqual(t, "slot 0", inv[0].ItemId, storage.Identifier("berry"))
				testutil.AssertEqual(t, "slot 1", inv[1].ItemId, storage.Identifier("sword"))
			},
			expEquip: "berry",
		},
		"move into empty slot": {
			inv:      []*ItemStack{{ItemId: "sword", Quantity: 1}, nil},
			selected: 0,
			from:     0,
			to:       3,
			expInv: func(t *testing.T, inv []*ItemStack) {
				if inv[0] != nil {
					t.Error("expected source slot emptied")
				}
				testutil.AssertEqual(t, "slot 3", inv[3].ItemId, storage.Identifier("sword"))
			},
			expEquip: "",
		},
		"merge leaves remainder in source": {
			inv:      []*ItemStack{{ItemId: "berry", Quantity: 15}, {ItemId: "berry", Quantity: 12}},
			selected: 1,
			from:     0,
			to:       1,
			expInv: func(t *testing.T, inv []*ItemStack) {
				testutil.AssertEqual(t, "source qty", inv[0].Quantity, 7)
				testutil.AssertEqual(t, "dest qty", inv[1].Quantity, 20)
			},
			expEquip: "berry",
		},
		"merge empties source": {
			inv:      []*ItemStack{{ItemId: "berry", Quantity: 3}, {ItemId: "berry", Quantity: 12}},
			selected: 0,
			from:     0,
			to:       1,
			expInv: func(t *testing.T, inv []*ItemStack) {
				if inv[0] != nil {
					t.Error("expected source slot emptied")
				}
				testutil.AssertEqual(t, "dest qty", inv[1].Quantity, 15)
			},
			expEquip: "",
		},
		"out of range": {
			inv:    []*ItemStack{{ItemId: "sword", Quantity: 1}},
			from:   0,
			to:     HotbarSize,
			expErr: true,
		},
		"same slot": {
			inv:    []*ItemStack{{ItemId: "sword", Quantity: 1}},
			from:   0,
			to:     0,
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			reg, connId := invTestRegistry(t, tt.inv)
			if _, err := reg.EquipSlot(connId, tt.selected); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			res, err := reg.MoveItem(connId, tt.from, tt.to)
			if tt.expErr {
				var userErr *UserError
				if !errors.As(err, &userErr) {
					t.Fatalf("expected user error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.expInv(t, res.Inventory)
			testutil.AssertEqual(t, "equipped", res.EquippedItem, tt.expEquip)
		})
	}
}
