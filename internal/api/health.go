// Copyright (c) 2026 GalleManga. All rights reserved.

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gallemanga/gallemanga/internal/platform/constants"
	"github.com/gallemanga/gallemanga/internal/platform/respond"
)

// readinessTimeout bounds each dependency probe.
const readinessTimeout = 2 * time.Second

// HealthCheck probes one dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthHandler struct {
	checks []HealthCheck
	logger *slog.Logger
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewHealthHandlers creates the /health and /ready handlers.
func NewHealthHandlers(logger *slog.Logger, checks ...HealthCheck) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{checks: checks, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health. It never touches a dependency.
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{
		constants.FieldStatus:  "ok",
		constants.FieldApp:     constants.AppName,
		constants.FieldVersion: constants.AppVersion,
	})
}

/*
readiness handles GET /ready.

Response:
  - 200: Every dependency answered
  - 503: At least one dependency failed; the body lists each result
*/
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	results := make([]checkResult, 0, len(handler.checks))
	isReady := true

	for _, check := range handler.checks {
		ctx, cancel := context.WithTimeout(request.Context(), readinessTimeout)
		err := check.Check(ctx)
		cancel()

		result := checkResult{Name: check.Name, IsOK: err == nil}
		if err != nil {
			result.Error = err.Error()
			isReady = false
			handler.logger.ErrorContext(request.Context(), "readiness_check_failed",
				slog.String("dependency", check.Name),
				slog.Any("error", err),
			)
		}
		results = append(results, result)
	}

	status, httpStatus := "ready", http.StatusOK
	if !isReady {
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	}

	respond.JSON(writer, httpStatus, respond.SuccessEnvelope{
		Success: isReady,
		Data: map[string]any{
			constants.FieldStatus: status,
			constants.FieldChecks: results,
		},
	})
}
