// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

//go:build integration

// Package pgtest starts a migrated PostgreSQL container for integration tests.
package pgtest

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/osg-htc/institutions/internal/platform/migration"
	"github.com/osg-htc/institutions/internal/platform/postgres"
)

// Database is a running, fully migrated PostgreSQL instance.
type Database struct {
	Container testcontainers.Container
	DSN       string
	Pool      *pgxpool.Pool
}

// MigrationsPath returns the absolute path of data/migrations in this module.
func MigrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "data", "migrations")
}

// New starts PostgreSQL, applies every migration and opens a pool.
// The container and pool are released when the test finishes.
func New(t *testing.T) *Database {
	t.Helper()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("institutions"),
		tcpostgres.WithUsername("institutions"),
		tcpostgres.WithPassword("institutions"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	if err := migration.RunUp(dsn, MigrationsPath(), logger); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dsn, logger)
	if err != nil {
		t.Fatalf("failed to open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return &Database{Container: container, DSN: dsn, Pool: pool}
}

// Truncate empties the institution tables between tests. Seeded identifier types are kept.
func (db *Database) Truncate(t *testing.T) {
	t.Helper()

	if _, err := db.Pool.Exec(context.Background(), "TRUNCATE institution CASCADE"); err != nil {
		t.Fatalf("failed to truncate: %v", err)
	}
}
