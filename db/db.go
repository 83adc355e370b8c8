// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/ballotbox/cliparse"
)

//go:embed migrations
var migrations embed.FS

// sqlitePragmas enables cascades, waits on locks instead of failing, and
// stores timestamps in a lexically ordered format
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

// Open connects to the configured database and verifies the connection
func Open(ctx context.Context, dbType, url string) (*sql.DB, error) {
	driver := dbType
	dsn := url
	if dbType == cliparse.DatabaseSQLite {
		if strings.Contains(dsn, "?") {
			dsn += "&" + sqlitePragmas
		} else {
			dsn += "?" + sqlitePragmas
		}
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dbType, err)
	}

	// SQLite serializes writers anyway; one connection also keeps an
	// in-memory database alive and shared
	if dbType == cliparse.DatabaseSQLite {
		conn.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dbType, err)
	}

	return conn, nil
}

// Migrate applies the embedded migrations for dbType.
// Safe to call multiple times - already applied versions are skipped.
func Migrate(ctx context.Context, conn *sql.DB, dbType string) error {
	src, err := iofs.New(migrations, "migrations/"+dbType)
	if err != nil {
		return fmt.Errorf("failed to load %s migrations: %w", dbType, err)
	}

	var drv database.Driver
	switch dbType {
	case cliparse.DatabasePostgres:
		// Pin one connection so the advisory lock and the migrations share it;
		// closing it hands it back to the pool without closing conn
		c, err := conn.Conn(ctx)
		if err != nil {
			return fmt.Errorf("failed to reserve connection: %w", err)
		}
		defer c.Close()
		drv, err = postgres.WithConnection(ctx, c, &postgres.Config{})
		if err != nil {
			return fmt.Errorf("failed to init postgres migrations: %w", err)
		}
	case cliparse.DatabaseSQLite:
		drv, err = sqlite.WithInstance(conn, &sqlite.Config{})
		if err != nil {
			return fmt.Errorf("failed to init sqlite migrations: %w", err)
		}
	default:
		return fmt.Errorf("unsupported database type %q", dbType)
	}

	m, err := migrate.NewWithInstance("iofs", src, dbType, drv)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	// m.Close is not called: the database drivers would close conn with it

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}
