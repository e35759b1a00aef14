package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/campusmeal/backend/internal/config"
)

// InitSQLite opens a single-writer sqlite database. Use ":memory:" for a
// throwaway store.
func InitSQLite(ctx context.Context, path string, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite: %w", err)
	}
	// sqlite serialises writers; one connection keeps ":memory:" shared too.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("error configuring sqlite: %w", err)
	}

	logger.Info("database connection established",
		zap.String("driver", config.DriverSQLite),
		zap.String("path", path),
	)
	return db, nil
}
