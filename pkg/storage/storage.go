// Package storage opens the bun handle behind the directory repositories.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const (
	ProviderMemory   = "memory"
	ProviderSQLite   = "sqlite"
	ProviderPostgres = "postgres"
)

var (
	ErrProviderUnknown = errors.New("storage: unknown provider")
	ErrDSNRequired     = errors.New("storage: dsn required")
	// ErrNoDatabase is returned by Open for the memory provider.
	ErrNoDatabase = errors.New("storage: provider has no database")
)

// Config selects a provider and its connection string.
type Config struct {
	Provider string
	DSN      string
	// MaxOpenConns is applied when positive. SQLite in-memory databases
	// need a single connection to share state.
	MaxOpenConns int
}

// Open connects to the configured database and pings it.
func Open(ctx context.Context, cfg Config) (*bun.DB, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == ProviderMemory || provider == "" {
		return nil, ErrNoDatabase
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, ErrDSNRequired
	}

	var (
		sqlDB *sql.DB
		db    *bun.DB
		err   error
	)
	switch provider {
	case ProviderSQLite:
		if sqlDB, err = sql.Open("sqlite3", cfg.DSN); err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		db = bun.NewDB(sqlDB, sqlitedialect.New())
	case ProviderPostgres:
		if sqlDB, err = sql.Open("pgx", cfg.DSN); err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db = bun.NewDB(sqlDB, pgdialect.New())
	default:
		return nil, fmt.Errorf("%w: %q", ErrProviderUnknown, cfg.Provider)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", provider, err)
	}
	return db, nil
}
