package store

// schemaSQL contains the full database schema initialization script
const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email VARCHAR(255) UNIQUE NOT NULL,
    username VARCHAR(50) UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS players (
    id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    username VARCHAR(50) NOT NULL,
    x_pos INTEGER NOT NULL DEFAULT 0,
    y_pos INTEGER NOT NULL DEFAULT 0,
    life INTEGER NOT NULL DEFAULT 100,
    life_max INTEGER NOT NULL DEFAULT 100,
    money INTEGER NOT NULL DEFAULT 0,
    equipped_item_id VARCHAR(100)
);

CREATE TABLE IF NOT EXISTS player_inventory (
    player_id UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
    slot INTEGER NOT NULL,
    item_id VARCHAR(100) NOT NULL,
    quantity INTEGER NOT NULL,
    PRIMARY KEY (player_id, slot)
);
`
