// Copyright (c) 2026 GalleManga. All rights reserved.

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		Create persists a brand-new account.

		Returns:
		  - error: apperr.Conflict naming the duplicated field, or storage errors
	*/
	Create(context context.Context, user *User) error

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or storage errors
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByLogin returns the account whose username or email matches login,
		compared case-insensitively.
	*/
	FindByLogin(context context.Context, login string) (*User, error)

	/*
		FindByEmail reports the account registered with email (case-insensitive).
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername reports the account registered with username (case-insensitive).
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		FindBySessionToken returns the account that currently holds token
		with an active session.

		Returns:
		  - error: apperr.NotFound if no active account holds the token
	*/
	FindBySessionToken(context context.Context, token string) (*User, error)

	/*
		StartSession stores token as the account's only session token and marks
		the session active. A previous token stops resolving immediately.
	*/
	StartSession(context context.Context, userID, token string) error

	/*
		EndSession clears the session of whichever account holds token.
		Ending an unknown token is not an error.
	*/
	EndSession(context context.Context, token string) error
}

// # Volatile Data Access

// SessionStore maps opaque cookie values to session tokens.
type SessionStore interface {

	/*
		Put stores the token under sessionID for ttl.
	*/
	Put(context context.Context, sessionID, token string, ttl time.Duration) error

	/*
		Get returns the token stored under sessionID.

		Returns:
		  - error: apperr.NotFound if the session is absent or expired
	*/
	Get(context context.Context, sessionID string) (string, error)

	/*
		Delete removes a session. Deleting a missing session is not an error.
	*/
	Delete(context context.Context, sessionID string) error
}
