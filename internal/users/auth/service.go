// Copyright (c) 2026 GalleManga. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/sec"
	"github.com/gallemanga/gallemanga/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for minting and checking session tokens.
type TokenProvider interface {
	// IssueSessionToken creates a signed token for the given user.
	IssueSessionToken(userID string, role sec.UserRole, timeToLive time.Duration) (string, error)

	// ParseSessionToken verifies the signature and returns the embedded claims.
	ParseSessionToken(token string) (*sec.SessionClaims, error)
}

// Service implements account and session use cases.
//
// # Review Process
//
// This service is critical for security. Any change to hashing, login or
// session resolution must keep the database as the session source of truth.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionStore
	tokenProvider     TokenProvider
	sessionTTL        time.Duration
	logger            *slog.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionStore,
	tokenProv TokenProvider,
	sessionTTL time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		tokenProvider:     tokenProv,
		sessionTTL:        sessionTTL,
		logger:            logger,
	}
}

// # Registration Flow

// RegisterInput carries the validated sign-up form.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

/*
Register creates a new reader account with an empty wallet.

Description: Rejects duplicate emails and usernames, compared without regard
to case. No row is written when either check fails.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: The persisted account
  - error: apperr.Conflict, or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	email := strings.TrimSpace(input.Email)
	username := strings.TrimSpace(input.Username)

	// 1. Identity conflicts
	if _, err := service.userRepository.FindByEmail(context, email); err == nil {
		return nil, apperr.Conflict(MsgEmailTaken)
	} else if !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, err
	}

	if _, err := service.userRepository.FindByUsername(context, username); err == nil {
		return nil, apperr.Conflict(MsgUsernameTaken)
	} else if !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, err
	}

	// 2. Hash and persist
	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_register_hash_failed: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         sec.RoleUser,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "user_registered", slog.String("user_id", user.ID))
	return user, nil
}

// # Session Flow

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// equalizeTiming spends one bcrypt comparison so unknown logins cost the same
// as a wrong password.
func equalizeTiming(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = sec.HashPassword("gallemanga-timing-placeholder")
	})
	sec.CheckPasswordHash(password, dummyHash)
}

/*
Login verifies credentials and opens a new session.

Description: Issues a fresh token, stores it on the account row (replacing
any previous one) and mirrors it into the session store under a random
cookie value.

Parameters:
  - context: context.Context
  - login: string (username or email)
  - password: string

Returns:
  - *LoginResult: Token, cookie value and account
  - error: apperr.Unauthorized on bad credentials
*/
func (service *Service) Login(context context.Context, login, password string) (*LoginResult, error) {

	// 1. Credential check
	user, err := service.userRepository.FindByLogin(context, strings.TrimSpace(login))
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			equalizeTiming(password)
			return nil, apperr.Unauthorized(MsgInvalidCredentials)
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	// 2. Token issue and persistence
	token, err := service.tokenProvider.IssueSessionToken(user.ID, user.Role, service.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_login_issue_failed: %w", err)
	}

	if err := service.userRepository.StartSession(context, user.ID, token); err != nil {
		return nil, err
	}
	user.ActiveSession = true

	// 3. Cookie session
	sessionID, err := sec.GenerateSecureToken(SessionIDLength)
	if err != nil {
		return nil, fmt.Errorf("auth_login_session_id_failed: %w", err)
	}

	if err := service.sessionRepository.Put(context, sessionID, token, service.sessionTTL); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "user_logged_in", slog.String("user_id", user.ID))
	return &LoginResult{Token: token, SessionID: sessionID, User: user}, nil
}

/*
Logout ends the session referenced by the cookie value or Bearer token.

Description: Idempotent. Unknown or already-ended sessions are not errors.
*/
func (service *Service) Logout(context context.Context, sessionID, bearerToken string) error {
	token := bearerToken

	if sessionID != "" {
		stored, err := service.sessionRepository.Get(context, sessionID)
		switch {
		case err == nil:
			token = stored
		case !apperr.HasCode(err, apperr.CodeNotFound):
			return err
		}

		if err := service.sessionRepository.Delete(context, sessionID); err != nil {
			return err
		}
	}

	if token == "" {
		return nil
	}
	return service.userRepository.EndSession(context, token)
}

/*
ResolveSession maps request credentials to the principal owning them.

Description: The cookie session wins over a Bearer token. A token is accepted
only when its signature verifies and an active account row holds exactly that
token. Otherwise the cookie session is destroyed and SESSION_EXPIRED is returned.

Returns:
  - sec.Principal: Identity whose role is read from the account row
  - error: apperr.SessionExpired, or storage errors
*/
func (service *Service) ResolveSession(context context.Context, sessionID, bearerToken string) (sec.Principal, error) {

	// 1. Locate the token
	token := ""
	if sessionID != "" {
		stored, err := service.sessionRepository.Get(context, sessionID)
		switch {
		case err == nil:
			token = stored
		case !apperr.HasCode(err, apperr.CodeNotFound):
			return sec.Principal{}, err
		}
	}
	if token == "" {
		token = bearerToken
	}
	if token == "" {
		return sec.Principal{}, apperr.SessionExpired()
	}

	// 2. Cheap signature check
	claims, err := service.tokenProvider.ParseSessionToken(token)
	if err != nil {
		return sec.Principal{}, service.expire(context, sessionID)
	}

	// 3. Database check
	user, err := service.userRepository.FindBySessionToken(context, token)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return sec.Principal{}, service.expire(context, sessionID)
		}
		return sec.Principal{}, err
	}
	if user.ID != claims.UserID {
		return sec.Principal{}, service.expire(context, sessionID)
	}

	return user.Principal(), nil
}

func (service *Service) expire(context context.Context, sessionID string) error {
	if sessionID != "" {
		if err := service.sessionRepository.Delete(context, sessionID); err != nil {
			service.logger.WarnContext(context, "session_delete_failed", slog.String("error", err.Error()))
		}
	}
	return apperr.SessionExpired()
}

// Me returns the current account, including its wallet balance.
func (service *Service) Me(context context.Context, userID string) (*User, error) {
	return service.userRepository.FindByID(context, userID)
}
