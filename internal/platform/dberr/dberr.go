// Copyright (c) 2026 GalleManga. All rights reserved.

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gallemanga/gallemanga/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// The resource name is used in the client-facing message (e.g. "Chapter not found").
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// Already classified further down the stack
	if apperr.IsAppError(err) {
		return err
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		if resource == "" {
			return ErrNotFound
		}
		return apperr.NotFound(resource)
	}

	// 2. Constraint violations carry a SQLSTATE
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			conflict := apperr.Conflict(resource + " already exists")
			conflict.Cause = err
			return conflict
		case pgerrcode.InvalidTextRepresentation:
			// A malformed UUID in a lookup can never match a row
			return apperr.NotFound(resource)
		case pgerrcode.CheckViolation, pgerrcode.ForeignKeyViolation:
			unprocessable := apperr.Unprocessable(resource + " violates a data constraint")
			unprocessable.Cause = err
			return unprocessable
		}
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

// IsUniqueViolation reports whether err is a unique-constraint violation,
// optionally restricted to the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
