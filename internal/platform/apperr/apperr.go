// Copyright (c) 2026 GalleManga. All rights reserved.

/*
Package apperr defines the centralized error handling framework for GalleManga.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Redirect: Authentication failures carry a hint for the browser client.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// LoginPath is the client route suggested when a request needs a (new) login.
const LoginPath = "/login"

// Error codes shared by handlers and tests.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeSessionExpired    = "SESSION_EXPIRED"
	CodeForbidden         = "FORBIDDEN"
	CodeConflict          = "CONFLICT"
	CodeValidation        = "VALIDATION_ERROR"
	CodeRateLimited       = "RATE_LIMITED"
	CodeUnprocessable     = "UNPROCESSABLE"
	CodePaymentRequired   = "PAYMENT_REQUIRED"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeChapterLocked     = "CHAPTER_LOCKED"
	CodeInternal          = "INTERNAL_ERROR"
	CodeUnavailable       = "SERVICE_UNAVAILABLE"
)

// AppError is the canonical error type for the GalleManga API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
	// Redirect is a client-side route hint for 401/403 responses.
	Redirect string `json:"redirect,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// Is matches two AppErrors by code so sentinel values work with [errors.Is].
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithCause attaches the underlying error. The cause is logged, never sent.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Manga") // Returns "Manga not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError] that points the client to the login page.
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
		Redirect:   LoginPath,
	}
}

// SessionExpired creates a 401 [AppError] for a token that no longer maps to an
// active session.
func SessionExpired() *AppError {
	return &AppError{
		Code:       CodeSessionExpired,
		Message:    "Session expired, please log in again",
		HTTPStatus: http.StatusUnauthorized,
		Redirect:   LoginPath,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
		Redirect:   "/",
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// Unprocessable creates a 422 [AppError] for semantically invalid input.
func Unprocessable(msg string) *AppError {
	return &AppError{
		Code:       CodeUnprocessable,
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// # Payment Errors (402)

// PaymentRequired creates a 402 [AppError] for checkouts the provider has not settled.
func PaymentRequired(msg string) *AppError {
	return &AppError{
		Code:       CodePaymentRequired,
		Message:    msg,
		HTTPStatus: http.StatusPaymentRequired,
	}
}

// InsufficientFunds creates a 402 [AppError] for a wallet that cannot cover a price.
func InsufficientFunds() *AppError {
	return &AppError{
		Code:       CodeInsufficientFunds,
		Message:    "Insufficient GalleCoins",
		HTTPStatus: http.StatusPaymentRequired,
	}
}

// ChapterLocked creates a 402 [AppError] for content the caller is not entitled to.
func ChapterLocked() *AppError {
	return &AppError{
		Code:       CodeChapterLocked,
		Message:    "Chapter must be purchased first",
		HTTPStatus: http.StatusPaymentRequired,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError] for maintenance mode.
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
