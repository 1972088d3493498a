// Copyright (c) 2026 GalleManga. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const selectUser = `
	SELECT id, username, email, passwordhash, role, gallecoins, activesession, createdat, updatedat
	FROM users.account`

/*
Create persists a new user record into the users.account table.

Description: Both unique indexes are case-insensitive, so a concurrent
registration racing past the service-level checks still fails here and is
reported with the same conflict message.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicate email or username
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, passwordhash, role, gallecoins, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.GalleCoins,
		user.CreatedAt,
		user.UpdatedAt,
	)

	switch {
	case err == nil:
		return nil
	case dberr.IsUniqueViolation(err, constraintEmail):
		return apperr.Conflict(MsgEmailTaken)
	case dberr.IsUniqueViolation(err, constraintUsername):
		return apperr.Conflict(MsgUsernameTaken)
	default:
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}
}

// FindByID retrieves a user record by primary key.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	user, err := repository.findOne(context, selectUser+` WHERE id = $1`, id)
	if err != nil {
		return nil, wrapFind(err, "postgres_user_repo_find_by_id_failed")
	}
	return user, nil
}

// FindByEmail retrieves a user record by email, ignoring case.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	user, err := repository.findOne(context, selectUser+` WHERE LOWER(email) = LOWER($1)`, email)
	if err != nil {
		return nil, wrapFind(err, "postgres_user_repo_find_by_email_failed")
	}
	return user, nil
}

// FindByUsername retrieves a user record by username, ignoring case.
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	user, err := repository.findOne(context, selectUser+` WHERE LOWER(username) = LOWER($1)`, username)
	if err != nil {
		return nil, wrapFind(err, "postgres_user_repo_find_by_username_failed")
	}
	return user, nil
}

/*
FindByLogin resolves the login identifier used by the sign-in form.

Description: The identifier may be a username or an email address. An exact
username match is preferred when both would match different rows.
*/
func (repository *PostgresUserRepository) FindByLogin(context context.Context, login string) (*User, error) {
	query := selectUser + `
		WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($1)
		ORDER BY (LOWER(username) = LOWER($1)) DESC
		LIMIT 1`

	user, err := repository.findOne(context, query, login)
	if err != nil {
		return nil, wrapFind(err, "postgres_user_repo_find_by_login_failed")
	}
	return user, nil
}

// FindBySessionToken retrieves the account currently holding an active token.
func (repository *PostgresUserRepository) FindBySessionToken(context context.Context, token string) (*User, error) {
	query := selectUser + ` WHERE sessiontoken = $1 AND activesession`

	user, err := repository.findOne(context, query, token)
	if err != nil {
		return nil, wrapFind(err, "postgres_user_repo_find_by_session_failed")
	}
	return user, nil
}

/*
StartSession replaces the stored session token of a user.

Parameters:
  - context: context.Context
  - userID: string
  - token: string (signed session token)

Returns:
  - error: apperr.NotFound if the user vanished
*/
func (repository *PostgresUserRepository) StartSession(context context.Context, userID, token string) error {
	const query = `
		UPDATE users.account
		SET sessiontoken = $2, activesession = TRUE, updatedat = $3
		WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, userID, token, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_start_session_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// EndSession clears the token and active flag of whichever row holds token.
func (repository *PostgresUserRepository) EndSession(context context.Context, token string) error {
	const query = `
		UPDATE users.account
		SET sessiontoken = NULL, activesession = FALSE, updatedat = $2
		WHERE sessiontoken = $1`

	if _, err := repository.pool.Exec(context, query, token, time.Now()); err != nil {
		return fmt.Errorf("postgres_user_repo_end_session_failed: %w", err)
	}
	return nil
}

// # Helpers

func (repository *PostgresUserRepository) findOne(context context.Context, query string, argument any) (*User, error) {
	user := &User{}
	err := repository.pool.QueryRow(context, query, argument).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.GalleCoins,
		&user.ActiveSession,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func wrapFind(err error, operation string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("User")
	}
	return fmt.Errorf("%s: %w", operation, err)
}
