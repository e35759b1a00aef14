package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campusmeal/backend/internal/config"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		role          TEXT NOT NULL,
		status        TEXT NOT NULL DEFAULT 'active',
		balance       NUMERIC(12,2),
		card_number   TEXT UNIQUE,
		account_id    TEXT,
		password_hash TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS balances (
		user_id      TEXT PRIMARY KEY,
		balance      NUMERIC(12,2) NOT NULL,
		last_updated TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id            BIGINT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		type          TEXT NOT NULL,
		amount        NUMERIC(12,2) NOT NULL,
		description   TEXT NOT NULL,
		location      TEXT NOT NULL,
		occurred_at   TIMESTAMPTZ NOT NULL,
		balance_after NUMERIC(12,2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions (user_id, occurred_at DESC)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		role          TEXT NOT NULL,
		status        TEXT NOT NULL DEFAULT 'active',
		balance       TEXT,
		card_number   TEXT UNIQUE,
		account_id    TEXT,
		password_hash TEXT NOT NULL DEFAULT '',
		created_at    DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS balances (
		user_id      TEXT PRIMARY KEY,
		balance      TEXT NOT NULL,
		last_updated DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id            INTEGER PRIMARY KEY,
		user_id       TEXT NOT NULL,
		type          TEXT NOT NULL,
		amount        TEXT NOT NULL,
		description   TEXT NOT NULL,
		location      TEXT NOT NULL,
		occurred_at   DATETIME NOT NULL,
		balance_after TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions (user_id, occurred_at DESC)`,
}

// Migrate creates the tables used by the SQL stores. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var stmts []string
	switch driver {
	case config.DriverPostgres:
		stmts = postgresSchema
	case config.DriverSQLite:
		stmts = sqliteSchema
	default:
		return fmt.Errorf("migrate: unsupported driver %q", driver)
	}

	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
