package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/campusmeal/backend/internal/config"
)

// dialect papers over the placeholder and locking differences between
// postgres and sqlite. Queries are written with "?" and rebound.
type dialect struct {
	name string
}

func newDialect(driver string) (dialect, error) {
	switch driver {
	case config.DriverPostgres, config.DriverSQLite:
		return dialect{name: driver}, nil
	}
	return dialect{}, fmt.Errorf("store: unsupported sql driver %q", driver)
}

func (d dialect) postgres() bool { return d.name == config.DriverPostgres }

// rebind rewrites "?" placeholders to "$n" for postgres.
func (d dialect) rebind(query string) string {
	if !d.postgres() {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// forUpdate is appended to row reads made inside a write transaction.
func (d dialect) forUpdate() string {
	if d.postgres() {
		return " FOR UPDATE"
	}
	return ""
}

// writeLockKey serialises store writers across postgres connections.
const writeLockKey = 7_340_001

// withTx begins a transaction, takes the dialect's writer lock and commits
// when fn succeeds.
func withTx(ctx context.Context, db *sql.DB, d dialect, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if d.postgres() {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", writeLockKey); err != nil {
			return fmt.Errorf("write lock: %w", err)
		}
	}

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
