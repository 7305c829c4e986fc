package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pixelcamp/pixelcamp/internal/game"
	"github.com/pixelcamp/pixelcamp/internal/storage"
)

var (
	ErrProfileNotFound = errors.New("player profile not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
)

// pgUniqueViolation is the Postgres error code for unique constraint violations.
const pgUniqueViolation = "23505"

// User is one row of the users table.
type User struct {
	Id           uuid.UUID
	Email        string
	Username     string
	PasswordHash string
}

// pool is the subset of pgxpool.Pool the store uses. Keeping it an interface
// lets tests substitute a mock pool.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Store persists users, player profiles, and inventories in Postgres.
type Store struct {
	pool pool
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, connString string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	slog.InfoContext(ctx, "connected to database", "host", cfg.ConnConfig.Host, "database", cfg.ConnConfig.Database)
	return &Store{pool: p}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// ApplySchema creates any missing tables.
func (s *Store) ApplySchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// CreateUser inserts a new user row. Returns ErrUserExists when the email or
// username is already taken.
func (s *Store) CreateUser(ctx context.Context, email, username, passwordHash string) (*User, error) {
	u := &User{Email: email, Username: username, PasswordHash: passwordHash}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, username, password_hash) VALUES ($1, $2, $3) RETURNING id`,
		email, username, passwordHash,
	).Scan(&u.Id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns the user with the given email, or ErrUserNotFound.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, username, password_hash FROM users WHERE email = $1`,
		email,
	).Scan(&u.Id, &u.Email, &u.Username, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting user: %w", err)
	}
	return u, nil
}

// EnsureProfile creates the player profile row for a user if it does not
// exist yet, then loads it.
func (s *Store) EnsureProfile(ctx context.Context, playerId uuid.UUID, username string) (*game.Profile, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO players (id, username, life, life_max) VALUES ($1, $2, $3, $3) ON CONFLICT (id) DO NOTHING`,
		playerId, username, game.DefaultLifeMax,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting player: %w", err)
	}
	return s.LoadProfile(ctx, playerId)
}

// LoadProfile returns the persisted profile for a player, or
// ErrProfileNotFound.
func (s *Store) LoadProfile(ctx context.Context, playerId uuid.UUID) (*game.Profile, error) {
	p := &game.Profile{}
	var equipped *string
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, x_pos, y_pos, life, life_max, money, equipped_item_id FROM players WHERE id = $1`,
		playerId,
	).Scan(&p.Id, &p.Username, &p.X, &p.Y, &p.Life, &p.LifeMax, &p.Money, &equipped)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting player: %w", err)
	}
	if equipped != nil {
		p.EquippedItem = storage.Identifier(*equipped)
	}
	return p, nil
}

// LoadInventory returns the player's slot-ordered inventory, padded to
// HotbarSize entries with nil for empty slots.
func (s *Store) LoadInventory(ctx context.Context, playerId uuid.UUID) ([]*game.ItemStack, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT slot, item_id, quantity FROM player_inventory WHERE player_id = $1 ORDER BY slot`,
		playerId,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting inventory: %w", err)
	}
	defer rows.Close()

	inv := make([]*game.ItemStack, game.HotbarSize)
	for rows.Next() {
		var slot, quantity int
		var itemId string
		if err := rows.Scan(&slot, &itemId, &quantity); err != nil {
			return nil, fmt.Errorf("scanning inventory row: %w", err)
		}
		if slot < 0 || slot >= game.HotbarSize {
			continue
		}
		inv[slot] = &game.ItemStack{ItemId: storage.Identifier(itemId), Quantity: quantity}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading inventory rows: %w", err)
	}
	return inv, nil
}

// SavePosition updates the player's position.
func (s *Store) SavePosition(ctx context.Context, playerId uuid.UUID, x, y int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE players SET x_pos = $2, y_pos = $3 WHERE id = $1`,
		playerId, x, y,
	)
	if err != nil {
		return fmt.Errorf("updating position: %w", err)
	}
	return nil
}

// SaveLife updates the player's health.
func (s *Store) SaveLife(ctx context.Context, playerId uuid.UUID, life int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE players SET life = $2 WHERE id = $1`,
		playerId, life,
	)
	if err != nil {
		return fmt.Errorf("updating life: %w", err)
	}
	return nil
}

// SaveVitals updates position and health in one statement so a respawn is
// never persisted half-applied.
func (s *Store) SaveVitals(ctx context.Context, playerId uuid.UUID, x, y, life int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE players SET x_pos = $2, y_pos = $3, life = $4 WHERE id = $1`,
		playerId, x, y, life,
	)
	if err != nil {
		return fmt.Errorf("updating vitals: %w", err)
	}
	return nil
}

// SaveEquipped updates the player's equipped item; "" stores NULL.
func (s *Store) SaveEquipped(ctx context.Context, playerId uuid.UUID, itemId storage.Identifier) error {
	var equipped *string
	if itemId != "" {
		str := string(itemId)
		equipped = &str
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE players SET equipped_item_id = $2 WHERE id = $1`,
		playerId, equipped,
	)
	if err != nil {
		return fmt.Errorf("updating equipped item: %w", err)
	}
	return nil
}

// ReplaceInventory rewrites the player's inventory rows in one transaction.
func (s *Store) ReplaceInventory(ctx context.Context, playerId uuid.UUID, inv []*game.ItemStack) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM player_inventory WHERE player_id = $1`, playerId); err != nil {
		return fmt.Errorf("clearing inventory: %w", err)
	}
	for slot, stack := range inv {
		if stack == nil {
			continue
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO player_inventory (player_id, slot, item_id, quantity) VALUES ($1, $2, $3, $4)`,
			playerId, slot, string(stack.ItemId), stack.Quantity,
		)
		if err != nil {
			return fmt.Errorf("inserting inventory row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing inventory: %w", err)
	}
	return nil
}
