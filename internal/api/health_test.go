// Copyright (c) 2026 GalleManga. All rights reserved.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readinessBody struct {
	Success bool `json:"success"`
	Data    struct {
		Status string        `json:"status"`
		Checks []checkResult `json:"checks"`
	} `json:"data"`
}

func probe(name string, err error) HealthCheck {
	return HealthCheck{Name: name, Check: func(context.Context) error { return err }}
}

func TestLiveness(t *testing.T) {
	liveness, _ := NewHealthHandlers(slog.New(slog.NewTextHandler(io.Discard, nil)), probe("postgres", errors.New("down")))

	recorder := httptest.NewRecorder()
	liveness(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"ok"`)
}

func TestReadiness(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("all dependencies up", func(t *testing.T) {
		_, readiness := NewHealthHandlers(logger, probe("postgres", nil), probe("redis", nil))

		recorder := httptest.NewRecorder()
		readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

		var body readinessBody
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, body.Success)
		assert.Equal(t, "ready", body.Data.Status)
		assert.Len(t, body.Data.Checks, 2)
	})

	t.Run("one dependency down", func(t *testing.T) {
		_, readiness := NewHealthHandlers(logger, probe("postgres", nil), probe("redis", errors.New("connection refused")))

		recorder := httptest.NewRecorder()
		readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

		var body readinessBody
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
		assert.False(t, body.Success)
		assert.Equal(t, "degraded", body.Data.Status)
		require.Len(t, body.Data.Checks, 2)
		assert.True(t, body.Data.Checks[0].IsOK)
		assert.False(t, body.Data.Checks[1].IsOK)
		assert.Equal(t, "connection refused", body.Data.Checks[1].Error)
	})
}
