// Copyright (c) 2026 GalleManga. All rights reserved.

package redis_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallemanga/gallemanga/internal/platform/redis"
)

/*
TestNewClient verifies connection and ping against an in-process Redis.
*/
func TestNewClient(t *testing.T) {
	server := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := redis.NewClient(context.Background(), "redis://"+server.Addr()+"/0", logger)
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, redis.Ping(context.Background(), client))

	server.Close()
	assert.Error(t, redis.Ping(context.Background(), client))
}

/*
TestNewClient_InvalidURL verifies that a malformed URL fails fast.
*/
func TestNewClient_InvalidURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := redis.NewClient(context.Background(), "not a url", logger)
	assert.Error(t, err)
}
