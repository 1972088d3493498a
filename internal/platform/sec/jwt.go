// Copyright (c) 2026 GalleManga. All rights reserved.

// Package sec provides cryptographic primitives and session token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, Token Signing) from
// the domain logic. The auth service mints tokens through [TokenService] and
// the middleware only needs the [Principal] type defined here.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail signature or claim checks.
var ErrInvalidToken = errors.New("auth: invalid token")

// SessionClaims represents the payload embedded inside a session token.
//
// A valid signature is only a cheap pre-check. The token must also be the one
// persisted on an active user row before a request is treated as authenticated.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the payload small.
	UserID string   `json:"uid"`
	Role   UserRole `json:"rol"`
}

// TokenService signs and parses session tokens using HS256.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a new TokenService from a shared secret.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("auth: session secret must be at least 16 bytes")
	}
	return &TokenService{secret: []byte(secret), issuer: issuer}, nil
}

// IssueSessionToken creates a new signed session token for a user.
// Every call embeds a fresh random jti so two logins never share a token.
func (service *TokenService) IssueSessionToken(userID string, role UserRole, timeToLive time.Duration) (string, error) {
	tokenID, err := GenerateSecureToken(16)
	if err != nil {
		return "", err
	}

	currentTime := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID: userID,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// ParseSessionToken checks the signature and validity of a session token.
func (service *TokenService) ParseSessionToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	}, jwt.WithIssuer(service.issuer))

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
