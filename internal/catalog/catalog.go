package catalog

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-errors"
	"github.com/pixelcamp/pixelcamp/internal/storage"
)

// Category classifies an item definition.
type Category string

const (
	CategoryWeapon    Category = "weapon"
	CategoryThrowable Category = "throwable"
	CategoryGeneric   Category = "generic"
)

// ItemDefinition describes one item type loaded from the asset files.
type ItemDefinition struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	MaxStack int      `json:"max_stack"`
	Image    string   `json:"image,omitempty"`
}

func (d *ItemDefinition) Validate() error {
	el := errors.NewErrorList()

	if d.Name == "" {
		el.Add(fmt.Errorf("name must be set"))
	}

	switch d.Category {
	case CategoryWeapon, CategoryThrowable, CategoryGeneric:
	default:
		el.Add(fmt.Errorf("unknown category: %s", d.Category))
	}

	if d.MaxStack < 1 {
		el.Add(fmt.Errorf("max_stack must be at least 1"))
	}

	return el.Err()
}

// WeaponStats holds the combat numbers for a weapon, keyed by the weapon's
// display name. An item of category weapon without a matching stats entry is
// simply unusable offensively; that is checked at attack time, not here.
type WeaponStats struct {
	Name   string  `json:"name"`
	Damage int     `json:"damage"`
	Range  float64 `json:"range"`
}

func (w *WeaponStats) Validate() error {
	el := errors.NewErrorList()

	if w.Name == "" {
		el.Add(fmt.Errorf("name must be set"))
	}
	if w.Damage < 0 {
		el.Add(fmt.Errorf("damage must not be negative"))
	}
	if w.Range < 0 {
		el.Add(fmt.Errorf("range must not be negative"))
	}

	return el.Err()
}

// Catalog is the read-only item and weapon reference data. It is built once
// at startup from the asset stores and never mutated afterwards.
type Catalog struct {
	items   map[storage.Identifier]*ItemDefinition
	byName  map[string]storage.Identifier
	weapons map[string]*WeaponStats
}

// New builds a catalog from the given stores, snapshotting their contents.
func New(items storage.Storer[*ItemDefinition], weapons storage.Storer[*WeaponStats]) *Catalog {
	c := &Catalog{
		items:   map[storage.Identifier]*ItemDefinition{},
		byName:  map[string]storage.Identifier{},
		weapons: map[string]*WeaponStats{},
	}

	for id, def := range items.GetAll() {
		c.items[id] = def
		c.byName[strings.ToLower(def.Name)] = id
	}
	for _, stats := range weapons.GetAll() {
		c.weapons[strings.ToLower(stats.Name)] = stats
	}

	return c
}

// Item returns the definition for an item id, or nil if unknown.
func (c *Catalog) Item(id storage.Identifier) *ItemDefinition {
	return c.items[id]
}

// ItemByName finds an item by display name, case-insensitively.
func (c *Catalog) ItemByName(name string) (storage.Identifier, *ItemDefinition) {
	id, ok := c.byName[strings.ToLower(name)]
	if !ok {
		return "", nil
	}
	return id, c.items[id]
}

// WeaponStats returns the combat stats for a weapon name, or nil if the name
// has no entry.
func (c *Catalog) WeaponStats(name string) *WeaponStats {
	return c.weapons[strings.ToLower(name)]
}

// Items returns the full definition map for the client handshake.
func (c *Catalog) Items() map[storage.Identifier]*ItemDefinition {
	return c.items
}

// Weapons returns the full weapon stats map for the client handshake.
func (c *Catalog) Weapons() map[string]*WeaponStats {
	return c.weapons
}
