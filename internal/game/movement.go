package game

import (
	"github.com/google/uuid"
)

// MoveFlags is a directional movement intent built from the keys the client
// currently holds. Flags combine: up+left is a diagonal step, and opposing
// flags cancel out.
type MoveFlags struct {
	Up    bool
	Down  bool
	Left  bool
	Right bool
}

// Any reports whether at least one direction is set.
func (f MoveFlags) Any() bool {
	return f.Up || f.Down || f.Left || f.Right
}

func (f MoveFlags) offset() (int, int) {
	var dx, dy int
	if f.Up {
		dy--
	}
	if f.Down {
		dy++
	}
	if f.Left {
		dx--
	}
	if f.Right {
		dx++
	}
	return dx, dy
}

// MoveResult describes the outcome of a movement intent. Moved is false when
// the clamped destination equals the current position.
type MoveResult struct {
	PlayerId uuid.UUID
	X        int
	Y        int
	Moved    bool
}

// MoveTo applies an absolute movement intent, clamping each axis to the map
// bounds independently.
func (r *Registry) MoveTo(connId string, x, y int) (*MoveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ps := r.byConn[connId]
	if ps == nil {
		return nil, ErrNotAuthenticated
	}
	return moveLocked(ps, x, y), nil
}

// MoveDirection applies a single-cell step per the given flags, clamped to
// the map bounds.
func (r *Registry) MoveDirection(connId string, flags MoveFlags) (*MoveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ps := r.byConn[connId]
	if ps == nil {
		return nil, ErrNotAuthenticated
	}

	if !flags.Any() {
		return nil, NewUserError("No movement direction set.")
	}

	dx, dy := flags.offset()
	return moveLocked(ps, ps.X+dx, ps.Y+dy), nil
}

func moveLocked(ps *PlayerSession, x, y int) *MoveResult {
	x = clamp(x, 0, MapWidth-1)
	y = clamp(y, 0, MapHeight-1)

	res := &MoveResult{PlayerId: ps.PlayerId, X: x, Y: y}
	if x == ps.X && y == ps.Y {
		return res
	}
	ps.X, ps.Y = x, y
	res.Moved = true
	return res
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
