// Copyright (c) 2026 GalleManga. All rights reserved.

// Package pgtest opens a migrated scratch database for store integration tests.
//
// Tests using it are skipped unless GALLE_TEST_DATABASE_URL is set. Because
// every package truncates the same tables, run them with `go test -p 1`.
package pgtest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/gallemanga/gallemanga/internal/platform/migration"
)

// EnvDatabaseURL names the variable that enables integration tests.
const EnvDatabaseURL = "GALLE_TEST_DATABASE_URL"

// Open returns a pool on a freshly truncated, fully migrated database.
func Open(t testing.TB) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(EnvDatabaseURL)
	if dsn == "" {
		t.Skipf("%s not set", EnvDatabaseURL)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, migration.RunUp(dsn, migrationsPath(), logger))

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(context.Background(), `
		TRUNCATE users.account, core.category, core.manga, core.chapter,
		         wallet.coinpackage, wallet.checkoutsession, wallet.coinpurchase,
		         wallet.chapterpurchase, library.entry, library.favorite, social.review
		CASCADE`)
	require.NoError(t, err)

	return pool
}

// MustExec runs a fixture statement.
func MustExec(t testing.TB, pool *pgxpool.Pool, sql string, arguments ...any) {
	t.Helper()
	_, err := pool.Exec(context.Background(), sql, arguments...)
	require.NoError(t, err)
}

func migrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "data", "migrations")
}
