// Copyright (c) 2026 GalleManga. All rights reserved.

package review_test

import (
	"context"
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

	"github.com/gallemanga/gallemanga/internal/core/review"
	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/ctxutil"
	"github.com/gallemanga/gallemanga/internal/platform/sec"
)

const mangaID = "0190a000-0000-7000-8000-000000000001"

type memoryRepository struct {
	mu   sync.Mutex
	rows map[string]*review.Review
}

func (repo *memoryRepository) ListByManga(_ context.Context, mangaID string) ([]*review.Review, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	out := []*review.Review{}
	for _, r := range repo.rows {
		if r.MangaID == mangaID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (repo *memoryRepository) FindByID(_ context.Context, id string) (*review.Review, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if r, ok := repo.rows[id]; ok {
		return r, nil
	}
	return nil, apperr.NotFound("Review")
}

func (repo *memoryRepository) Create(_ context.Context, r *review.Review) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, existing := range repo.rows {
		if existing.UserID == r.UserID && existing.MangaID == r.MangaID {
			return apperr.Conflict(review.MsgAlreadyReviewed)
		}
	}
	repo.rows[r.ID] = r
	return nil
}

func (repo *memoryRepository) Delete(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	delete(repo.rows, id)
	return nil
}

var (
	alice = sec.Principal{UserID: "alice", Username: "alice", Role: sec.RoleUser}
	bob   = sec.Principal{UserID: "bob", Username: "bob", Role: sec.RoleUser}
	admin = sec.Principal{UserID: "root", Username: "root", Role: sec.RoleAdmin}
)

func newService() (*review.Service, *memoryRepository) {
	repo := &memoryRepository{rows: map[string]*review.Review{}}
	return review.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

func TestCreate_OnePerUser(t *testing.T) {
	service, repo := newService()

	created, err := service.Create(context.Background(), alice, mangaID, review.Input{Rating: 5, Comment: "  Great pacing "})
	require.NoError(t, err)
	assert.Equal(t, "Great pacing", created.Comment)
	assert.Equal(t, "alice", created.Username)

	_, err = service.Create(context.Background(), alice, mangaID, review.Input{Rating: 3, Comment: "Changed my mind"})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
	assert.Len(t, repo.rows, 1)
}

func TestCreate_Validation(t *testing.T) {
	service, _ := newService()

	tests := []struct {
		name  string
		input review.Input
	}{
		{"rating too low", review.Input{Rating: 0, Comment: "ok"}},
		{"rating too high", review.Input{Rating: 6, Comment: "ok"}},
		{"blank comment", review.Input{Rating: 3, Comment: "   "}},
		{"long comment", review.Input{Rating: 3, Comment: strings.Repeat("a", review.MaxCommentLength+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), alice, mangaID, tt.input)
			assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
		})
	}

	_, err := service.Create(context.Background(), alice, "moon-blade", review.Input{Rating: 3, Comment: "ok"})
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestDelete_AuthorOrAdmin(t *testing.T) {
	service, repo := newService()
	first, err := service.Create(context.Background(), alice, mangaID, review.Input{Rating: 4, Comment: "Nice"})
	require.NoError(t, err)

	err = service.Delete(context.Background(), bob, first.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	require.NoError(t, service.Delete(context.Background(), alice, first.ID))
	assert.Empty(t, repo.rows)

	second, err := service.Create(context.Background(), bob, mangaID, review.Input{Rating: 1, Comment: "Spam"})
	require.NoError(t, err)
	require.NoError(t, service.Delete(context.Background(), admin, second.ID))
}

func TestHTTP_Reviews(t *testing.T) {
	service, _ := newService()
	handler := review.NewHandler(service)

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
		router.Route("/api/mangas/{id}/reviews", handler.RegisterMangaRoutes)
		router.Route("/api/reviews", handler.RegisterRoutes)
		return router
	}

	post := func(router http.Handler, body string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodPost, "/api/mangas/"+mangaID+"/reviews/", strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		return recorder
	}

	assert.Equal(t, http.StatusUnauthorized, post(build(nil), `{"rating":5,"comment":"hi"}`).Code)
	assert.Equal(t, http.StatusCreated, post(build(&alice), `{"rating":5,"comment":"hi"}`).Code)
	assert.Equal(t, http.StatusConflict, post(build(&alice), `{"rating":4,"comment":"again"}`).Code)

	recorder := httptest.NewRecorder()
	build(nil).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/mangas/"+mangaID+"/reviews/", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"rating":5`)
}
