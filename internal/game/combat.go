package game

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/pixelcamp/pixelcamp/internal/catalog"
)

// AttackResult describes one resolved attack. When Died is set the target has
// already been respawned: inventory cleared, moved to the respawn cell, and
// health reset.
type AttackResult struct {
	AttackerId   uuid.UUID
	AttackerName string
	TargetId     uuid.UUID
	TargetConnId string
	TargetName   string
	Damage       int
	// TargetLife is the target's health after the hit, before any respawn.
	TargetLife    int
	TargetLifeMax int
	Died          bool
	RespawnX      int
	RespawnY      int
	RespawnLife   int
}

// Resolver applies melee attacks against registry state.
type Resolver struct {
	registry *Registry
	catalog  *catalog.Catalog
	now      func() time.Time
	randInt  func(n int) int
}

type ResolverOption func(*Resolver)

// WithClock overrides the resolver's time source.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithRespawnRand overrides the respawn cell picker.
func WithRespawnRand(f func(n int) int) ResolverOption {
	return func(r *Resolver) {
		r.randInt = f
	}
}

// NewResolver creates a combat Resolver.
func NewResolver(reg *Registry, cat *catalog.Catalog, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		registry: reg,
		catalog:  cat,
		now:      time.Now,
		randInt:  rand.Intn,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Attack resolves one melee attack from the attacker's connection against the
// target player. Validation failures that the attacker should see come back
// as UserErrors. The whole resolution, including death handling, runs under
// the registry lock so concurrent attacks on the same target serialize.
func (rs *Resolver) Attack(connId string, targetId uuid.UUID) (*AttackResult, error) {
	reg := rs.registry
	reg.mu.Lock()
	defer reg.mu.Unlock()

	attacker := reg.byConn[connId]
	if attacker == nil {
		return nil, ErrNotAuthenticated
	}

	now := rs.now()
	if now.Sub(attacker.LastAttack) < AttackCooldown {
		return nil, NewUserError("You can't attack again yet.")
	}

	if attacker.PlayerId == targetId {
		return nil, NewUserError("You can't attack yourself.")
	}
	target := reg.byPlayer[targetId]
	if target == nil {
		return nil, NewUserError("That player isn't here.")
	}
	if target.Life <= 0 {
		return nil, NewUserError("They are already down.")
	}

	if attacker.EquippedItem == "" {
		return nil, NewUserError("You don't have a weapon equipped.")
	}
	def := rs.catalog.Item(attacker.EquippedItem)
	if def == nil || def.Category != catalog.CategoryWeapon {
		return nil, NewUserError("That item can't be used as a weapon.")
	}
	stats := rs.catalog.WeaponStats(def.Name)
	if stats == nil {
		return nil, NewUserError("That item can't be used as a weapon.")
	}

	dx := float64(attacker.X - target.X)
	dy := float64(attacker.Y - target.Y)
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist > stats.Range {
		return nil, NewUserError(fmt.Sprintf("Target is out of range (%.1f away).", dist))
	}

	attacker.LastAttack = now

	damage := stats.Damage
	if damage < 0 {
		damage = 0
	}
	target.Life -= damage
	if target.Life < 0 {
		target.Life = 0
	}

	res := &AttackResult{
		AttackerId:    attacker.PlayerId,
		AttackerName:  attacker.Name,
		TargetId:      target.PlayerId,
		TargetConnId:  target.ConnId,
		TargetName:    target.Name,
		Damage:        damage,
		TargetLife:    target.Life,
		TargetLifeMax: target.LifeMax,
	}

	if target.Life == 0 {
		for i := range target.Inventory {
			target.Inventory[i] = nil
		}
		target.EquippedItem = ""
		target.X = rs.randInt(MapWidth)
		target.Y = rs.randInt(MapHeight)
		target.Life = target.LifeMax

		res.Died = true
		res.RespawnX = target.X
		res.RespawnY = target.Y
		res.RespawnLife = target.Life
	}

	return res, nil
}
