package game

import "errors"

// ErrNotAuthenticated is returned when a connection issues a gameplay intent
// before a successful login association.
var ErrNotAuthenticated = errors.New("connection has no associated player")

// UserError is an error whose message is safe to show to the player.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// NewUserError creates a user-facing error.
func NewUserError(msg string) *UserError {
	return &UserError{Message: msg}
}
