// Copyright (c) 2026 GalleManga. All rights reserved.

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/sec"
	"github.com/gallemanga/gallemanga/internal/users/auth"
)

// memoryUsers is an in-memory UserRepository with the same uniqueness rules as the table.
type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*auth.User
	token map[string]string
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[string]*auth.User{}, token: map[string]string{}}
}

func (store *memoryUsers) Create(_ context.Context, user *auth.User) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, existing := range store.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return apperr.Conflict(auth.MsgEmailTaken)
		}
		if strings.EqualFold(existing.Username, user.Username) {
			return apperr.Conflict(auth.MsgUsernameTaken)
		}
	}
	clone := *user
	store.users[user.ID] = &clone
	return nil
}

func (store *memoryUsers) find(match func(*auth.User) bool) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, user := range store.users {
		if match(user) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (store *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	return store.find(func(user *auth.User) bool { return user.ID == id })
}

func (store *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	return store.find(func(user *auth.User) bool { return strings.EqualFold(user.Email, email) })
}

func (store *memoryUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	return store.find(func(user *auth.User) bool { return strings.EqualFold(user.Username, username) })
}

func (store *memoryUsers) FindByLogin(_ context.Context, login string) (*auth.User, error) {
	return store.find(func(user *auth.User) bool {
		return strings.EqualFold(user.Username, login) || strings.EqualFold(user.Email, login)
	})
}

func (store *memoryUsers) FindBySessionToken(_ context.Context, token string) (*auth.User, error) {
	store.mu.Lock()
	userID, ok := store.token[token]
	store.mu.Unlock()
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return store.find(func(user *auth.User) bool { return user.ID == userID && user.ActiveSession })
}

func (store *memoryUsers) StartSession(_ context.Context, userID, token string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	user, ok := store.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	for existing, owner := range store.token {
		if owner == userID {
			delete(store.token, existing)
		}
	}
	store.token[token] = userID
	user.ActiveSession = true
	return nil
}

func (store *memoryUsers) EndSession(_ context.Context, token string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if userID, ok := store.token[token]; ok {
		delete(store.token, token)
		store.users[userID].ActiveSession = false
	}
	return nil
}

// setRole promotes a stored user, as an operator would in the database.
func (store *memoryUsers) setRole(userID string, role sec.UserRole) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.users[userID].Role = role
}

type fixture struct {
	users    *memoryUsers
	sessions *auth.RedisSessionStore
	redis    *miniredis.Miniredis
	tokens   *sec.TokenService
	service  *auth.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tokens, err := sec.NewTokenService("test-session-secret-0123456789", "gallemanga.test")
	require.NoError(t, err)

	users := newMemoryUsers()
	sessions := auth.NewSessionStore(client)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		users:    users,
		sessions: sessions,
		redis:    server,
		tokens:   tokens,
		service:  auth.NewService(users, sessions, tokens, time.Hour, logger),
	}
}

func (f *fixture) register(t *testing.T, username, email, password string) *auth.User {
	t.Helper()
	user, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: username, Email: email, Password: password,
	})
	require.NoError(t, err)
	return user
}
