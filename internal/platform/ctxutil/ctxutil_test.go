// Copyright (c) 2026 GalleManga. All rights reserved.

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gallemanga/gallemanga/internal/platform/ctxutil"
	"github.com/gallemanga/gallemanga/internal/platform/sec"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_Principal verifies that the resolved caller round-trips through context.
*/
func TestContext_Principal(t *testing.T) {
	ctx := context.Background()

	// 1. Anonymous by default
	_, ok := ctxutil.GetPrincipal(ctx)
	assert.False(t, ok)

	// 2. Inject and retrieve
	ctx = ctxutil.WithPrincipal(ctx, sec.Principal{UserID: "user-123", Username: "reader", Role: sec.RoleAdmin})
	principal, ok := ctxutil.GetPrincipal(ctx)

	assert.True(t, ok)
	assert.Equal(t, "user-123", principal.UserID)
	assert.True(t, principal.IsAdmin())
}
