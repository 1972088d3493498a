// Copyright (c) 2026 GalleManga. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/constants"
)

// # Session Repository

// RedisSessionStore implements SessionStore using Redis string keys with a TTL.
type RedisSessionStore struct {
	client redis.UniversalClient
}

// NewSessionStore creates a new Redis implementation of the SessionStore.
func NewSessionStore(client redis.UniversalClient) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(sessionID string) string {
	return constants.RedisPrefixSession + sessionID
}

/*
Put stores the session token under its cookie value.

Parameters:
  - context: context.Context
  - sessionID: string (cookie value)
  - token: string
  - ttl: time.Duration (mirrors the cookie max-age)

Returns:
  - error: Storage failures
*/
func (repository *RedisSessionStore) Put(context context.Context, sessionID, token string, ttl time.Duration) error {
	if err := repository.client.Set(context, sessionKey(sessionID), token, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_put_failed: %w", err)
	}
	return nil
}

/*
Get retrieves the token referenced by a cookie value.

Returns:
  - string: Session token
  - error: apperr.NotFound if the key is absent or expired
*/
func (repository *RedisSessionStore) Get(context context.Context, sessionID string) (string, error) {
	token, err := repository.client.Get(context, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Session")
		}
		return "", fmt.Errorf("redis_session_get_failed: %w", err)
	}
	return token, nil
}

// Delete removes a session key.
func (repository *RedisSessionStore) Delete(context context.Context, sessionID string) error {
	if err := repository.client.Del(context, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}
