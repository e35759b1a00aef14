package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/campusmeal/backend/internal/config"
	"github.com/campusmeal/backend/internal/database"
)

// Backend bundles the ledger and directory stores of one storage driver.
type Backend struct {
	Driver string
	Ledger LedgerStore
	Users  UserStore
	db     *sql.DB
}

// Open connects the configured driver and migrates SQL schemas.
func Open(ctx context.Context, storage config.StorageConfig, dbCfg config.DBConfig, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		db  *sql.DB
		err error
	)
	switch storage.Driver {
	case config.DriverMemory, "":
		return &Backend{Driver: config.DriverMemory, Ledger: NewMemoryLedger(), Users: NewMemoryUsers()}, nil
	case config.DriverSQLite:
		db, err = database.InitSQLite(ctx, storage.SQLitePath, logger)
	case config.DriverPostgres:
		db, err = database.InitDB(ctx, dbCfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", storage.Driver)
	}
	if err != nil {
		return nil, err
	}

	b, err := openSQL(ctx, db, storage.Driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

func openSQL(ctx context.Context, db *sql.DB, driver string) (*Backend, error) {
	if err := database.Migrate(ctx, db, driver); err != nil {
		return nil, err
	}
	ledger, err := NewSQLLedger(db, driver)
	if err != nil {
		return nil, err
	}
	users, err := NewSQLUsers(db, driver)
	if err != nil {
		return nil, err
	}
	return &Backend{Driver: driver, Ledger: ledger, Users: users, db: db}, nil
}

// Persistent reports whether data outlives the process.
func (b *Backend) Persistent() bool { return b.db != nil }

func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}
