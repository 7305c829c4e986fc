package game

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pixelcamp/pixelcamp/internal/catalog"
)

// ProfileStore loads persisted player state for session association.
type ProfileStore interface {
	LoadProfile(ctx context.Context, playerId uuid.UUID) (*Profile, error)
	LoadInventory(ctx context.Context, playerId uuid.UUID) ([]*ItemStack, error)
}

// Registry is the single source of truth for connected players. All access
// must go through its methods to ensure thread-safety.
type Registry struct {
	mu       sync.Mutex
	profiles ProfileStore
	catalog  *catalog.Catalog
	byConn   map[string]*PlayerSession
	byPlayer map[uuid.UUID]*PlayerSession
}

// NewRegistry creates an empty Registry.
func NewRegistry(profiles ProfileStore, cat *catalog.Catalog) *Registry {
	return &Registry{
		profiles: profiles,
		catalog:  cat,
		byConn:   make(map[string]*PlayerSession),
		byPlayer: make(map[uuid.UUID]*PlayerSession),
	}
}

// Associate hydrates a session from the player's persisted profile and binds
// it to the connection. If the player already has a live session on another
// connection, that session is evicted and returned so the caller can close
// its connection.
func (r *Registry) Associate(ctx context.Context, connId string, playerId uuid.UUID) (*PlayerSession, *PlayerSession, error) {
	profile, err := r.profiles.LoadProfile(ctx, playerId)
	if err != nil {
		return nil, nil, fmt.Errorf("loading profile: %w", err)
	}
	inv, err := r.profiles.LoadInventory(ctx, playerId)
	if err != nil {
		return nil, nil, fmt.Errorf("loading inventory: %w", err)
	}

	ps := newSession(connId, profile, inv)

	r.mu.Lock()
	evicted := r.byPlayer[playerId]
	if evicted != nil {
		delete(r.byConn, evicted.ConnId)
	}
	r.byConn[connId] = ps
	r.byPlayer[playerId] = ps
	r.mu.Unlock()

	if evicted != nil {
		evicted.Kick()
	}
	return ps, evicted, nil
}

// Get returns the session bound to the connection. Returns nil if not found.
func (r *Registry) Get(connId string) *PlayerSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.byConn[connId]
}

// GetByPlayer returns the live session for the player id, or nil.
func (r *Registry) GetByPlayer(playerId uuid.UUID) *PlayerSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.byPlayer[playerId]
}

// Remove unbinds and returns the session for the connection. A session that
// was already replaced by a newer login is not present anymore, so Remove
// returns nil for its old connection.
func (r *Registry) Remove(connId string) *PlayerSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	ps := r.byConn[connId]
	if ps == nil {
		return nil
	}
	delete(r.byConn, connId)
	if cur := r.byPlayer[ps.PlayerId]; cur == ps {
		delete(r.byPlayer, ps.PlayerId)
	}
	return ps
}

// ListExcept returns every session except the one bound to connId.
func (r *Registry) ListExcept(connId string) []*PlayerSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*PlayerSession, 0, len(r.byConn))
	for id, ps := range r.byConn {
		if id == connId {
			continue
		}
		out = append(out, ps)
	}
	return out
}

// ForEach calls fn for each session while holding the lock.
func (r *Registry) ForEach(fn func(*PlayerSession)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ps := range r.byConn {
		fn(ps)
	}
}
