// Copyright (c) 2026 GalleManga. All rights reserved.

package library_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallemanga/gallemanga/internal/library"
	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/ctxutil"
	"github.com/gallemanga/gallemanga/internal/platform/sec"
)

const (
	userID  = "0190a000-0000-7000-8000-0000000000aa"
	mangaID = "0190a000-0000-7000-8000-000000000001"
)

type memoryRepository struct {
	mu        sync.Mutex
	entries   []*library.Entry
	owned     map[string]bool
	favorites map[string]bool
	mangas    map[string]bool
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{owned: map[string]bool{}, favorites: map[string]bool{}, mangas: map[string]bool{mangaID: true}}
}

func (repo *memoryRepository) Entries(context.Context, string) ([]*library.Entry, error) {
	return repo.entries, nil
}

func (repo *memoryRepository) Owns(_ context.Context, userID, chapterID string) (bool, error) {
	return repo.owned[userID+"/"+chapterID], nil
}

func (repo *memoryRepository) ToggleFavorite(_ context.Context, userID, mangaID string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if !repo.mangas[mangaID] {
		return false, apperr.NotFound("Manga")
	}
	key := userID + "/" + mangaID
	repo.favorites[key] = !repo.favorites[key]
	return repo.favorites[key], nil
}

func (repo *memoryRepository) Favorites(_ context.Context, userID string) ([]*library.Favorite, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	out := []*library.Favorite{}
	if repo.favorites[userID+"/"+mangaID] {
		out = append(out, &library.Favorite{MangaID: mangaID, Title: "Night Ferry"})
	}
	return out, nil
}

func newService(repo library.Repository) *library.Service {
	return library.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestOwns_AnonymousOwnsNothing(t *testing.T) {
	repo := newMemoryRepository()
	repo.owned["/chapter"] = true
	service := newService(repo)

	owned, err := service.Owns(context.Background(), "", "chapter")
	require.NoError(t, err)
	assert.False(t, owned)
}

func TestToggleFavorite(t *testing.T) {
	service := newService(newMemoryRepository())

	on, err := service.ToggleFavorite(context.Background(), userID, mangaID)
	require.NoError(t, err)
	assert.True(t, on)

	off, err := service.ToggleFavorite(context.Background(), userID, mangaID)
	require.NoError(t, err)
	assert.False(t, off)

	_, err = service.ToggleFavorite(context.Background(), userID, "not-a-uuid")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.ToggleFavorite(context.Background(), userID, "0190a000-0000-7000-8000-00000000ffff")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestHTTP_FavoritesAndLibrary(t *testing.T) {
	repo := newMemoryRepository()
	repo.entries = []*library.Entry{{ID: "e1", MangaID: mangaID, ChapterNumber: 3, FileURL: "/uploads/chapter/a.pdf"}}
	handler := library.NewHandler(newService(repo))

	build := func(principal *sec.Principal) http.Handler {
		router := chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				if principal != nil {
					request = request.WithContext(ctxutil.WithPrincipal(request.Context(), *principal))
				}
				next.ServeHTTP(writer, request)
			})
		})
		router.Route("/api/library", handler.RegisterRoutes)
		router.Route("/api/favorites", handler.RegisterFavoriteRoutes)
		return router
	}
	signedIn := build(&sec.Principal{UserID: userID, Role: sec.RoleUser})
	anonymous := build(nil)

	recorder := httptest.NewRecorder()
	anonymous.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/library/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = httptest.NewRecorder()
	signedIn.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/library/", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "/uploads/chapter/a.pdf")

	recorder = httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/favorites/toggle", strings.NewReader(`{"mangaId":"`+mangaID+`"}`))
	request.Header.Set("Content-Type", "application/json")
	signedIn.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	var toggled struct {
		Data map[string]bool `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &toggled))
	assert.True(t, toggled.Data["isFavorite"])

	recorder = httptest.NewRecorder()
	signedIn.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/favorites/", nil))
	assert.Contains(t, recorder.Body.String(), "Night Ferry")
}
