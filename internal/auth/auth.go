package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pixelcamp/pixelcamp/internal/game"
	"github.com/pixelcamp/pixelcamp/internal/store"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidCredentials is returned for any login failure so callers can't
// probe which emails exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore is the persistence surface the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, email, username, passwordHash string) (*store.User, error)
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
	EnsureProfile(ctx context.Context, playerId uuid.UUID, username string) (*game.Profile, error)
}

// Service implements signup and login against a UserStore.
type Service struct {
	store UserStore
	cost  int
}

type Option func(*Service)

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.cost = cost
	}
}

// NewService creates an auth Service.
func NewService(st UserStore, opts ...Option) *Service {
	s := &Service{
		store: st,
		cost:  bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup creates a user and their player profile. Returns
// store.ErrUserExists when the email or username is taken.
func (s *Service) Signup(ctx context.Context, email, password, username string) (*store.User, *game.Profile, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = norm.NFC.String(strings.TrimSpace(username))
	if email == "" || password == "" || username == "" {
		return nil, nil, fmt.Errorf("email, password, and username are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, email, username, string(hash))
	if err != nil {
		return nil, nil, err
	}

	profile, err := s.store.EnsureProfile(ctx, user.Id, user.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("creating player profile: %w", err)
	}
	return user, profile, nil
}

// Login verifies credentials and returns the user's profile, creating the
// profile row on the fly for accounts that predate it.
func (s *Service) Login(ctx context.Context, email, password string) (*store.User, *game.Profile, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	profile, err := s.store.EnsureProfile(ctx, user.Id, user.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("loading player profile: %w", err)
	}
	return user, profile, nil
}
