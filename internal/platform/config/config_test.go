// Copyright (c) 2026 GalleManga. All rights reserved.

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallemanga/gallemanga/internal/platform/config"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/galle")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SESSION_SECRET", "a-very-long-test-secret")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
}

/*
TestLoad_Defaults verifies default values when only required variables are set.
*/
func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 168*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, int64(50<<20), cfg.UploadMaxBytes)
	assert.Equal(t, "@every 5m", cfg.ReconcileSchedule)
	assert.Equal(t, 10*time.Minute, cfg.ReconcileMinAge)
	assert.Equal(t, "usd", cfg.CheckoutCurrency)
	assert.True(t, cfg.IsDevelopment())
}

/*
TestLoad_DotEnv verifies that values from an env file are picked up.
*/
func TestLoad_DotEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("PUBLIC_BASE_URL", "")
	require.NoError(t, os.Unsetenv("PUBLIC_BASE_URL"))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PUBLIC_BASE_URL=https://galle.example/\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("PUBLIC_BASE_URL") })

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://galle.example", cfg.PublicBaseURL)
}

/*
TestLoad_MissingRequired verifies that startup fails without a database URL.
*/
func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
