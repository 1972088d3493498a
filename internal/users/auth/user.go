// Copyright (c) 2026 GalleManga. All rights reserved.

/*
Package auth implements user accounts and the cookie session layer.

It defines the account entity, its GalleCoin balance as seen by the reader,
and the rules that turn a session cookie or Bearer token into a principal.

# Source of Truth

A session is valid only while the token it carries is the one persisted on an
active account row. The Redis copy exists to map an opaque cookie value to that
token; losing it logs the browser out but never grants access by itself.
*/
package auth

import (
	"time"

	"github.com/gallemanga/gallemanga/internal/platform/sec"
)

// # Domain Entities

// User represents a registered reader or administrator.
type User struct {
	ID            string       `json:"id"`
	Username      string       `json:"username"`
	Email         string       `json:"email"`
	PasswordHash  string       `json:"-"`
	Role          sec.UserRole `json:"role"`
	GalleCoins    int64        `json:"gallecoins"`
	ActiveSession bool         `json:"-"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Principal returns the immutable request identity for the user.
func (user *User) Principal() sec.Principal {
	return sec.Principal{UserID: user.ID, Username: user.Username, Role: user.Role}
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	// Token is the signed session token, usable as a Bearer credential.
	Token string
	// SessionID is the opaque value stored in the session cookie.
	SessionID string
	User      *User
}

// # Field Identifiers

const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldLogin    = "login"
	FieldToken    = "token"
	FieldUser     = "user"
	FieldMessage  = "message"
)

// # Constraints

const (
	// SessionIDLength is the byte length of the random cookie value.
	SessionIDLength = 32

	// MinUsernameLength and MinPasswordLength bound registration input.
	MinUsernameLength = 3
	MinPasswordLength = 8
	MaxUsernameLength = 32
)

// Unique index names on users.account, used to tell duplicate emails from usernames.
const (
	constraintEmail    = "account_email_key"
	constraintUsername = "account_username_key"
)


// # Messages

const (
	MsgEmailTaken         = "Email is already registered"
	MsgUsernameTaken      = "Username is already taken"
	MsgInvalidCredentials = "Invalid username or password"
)
