// Copyright (c) 2026 GalleManga. All rights reserved.

package category_test

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

	"github.com/gallemanga/gallemanga/internal/core/category"
	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/ctxutil"
	"github.com/gallemanga/gallemanga/internal/platform/sec"
)

type memoryRepository struct {
	mu   sync.Mutex
	rows map[string]*category.Category
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{rows: map[string]*category.Category{}}
}

func (repo *memoryRepository) List(context.Context) ([]*category.Category, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	out := make([]*category.Category, 0, len(repo.rows))
	for _, row := range repo.rows {
		out = append(out, row)
	}
	return out, nil
}

func (repo *memoryRepository) GetByID(_ context.Context, id string) (*category.Category, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if row, ok := repo.rows[id]; ok {
		return row, nil
	}
	return nil, apperr.NotFound("Category")
}

func (repo *memoryRepository) duplicate(c *category.Category) bool {
	for _, row := range repo.rows {
		if row.ID != c.ID && strings.EqualFold(row.Name, c.Name) {
			return true
		}
	}
	return false
}

func (repo *memoryRepository) Create(_ context.Context, c *category.Category) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.duplicate(c) {
		return apperr.Conflict(category.MsgDuplicateName)
	}
	repo.rows[c.ID] = c
	return nil
}

func (repo *memoryRepository) Update(_ context.Context, c *category.Category) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.rows[c.ID]; !ok {
		return apperr.NotFound("Category")
	}
	if repo.duplicate(c) {
		return apperr.Conflict(category.MsgDuplicateName)
	}
	repo.rows[c.ID] = c
	return nil
}

func (repo *memoryRepository) Delete(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.rows[id]; !ok {
		return apperr.NotFound("Category")
	}
	delete(repo.rows, id)
	return nil
}

func newService() (*category.Service, *memoryRepository) {
	repo := newMemoryRepository()
	return category.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

/*
TestCreate_RequiresNameAndDescription verifies both fields are mandatory.
*/
func TestCreate_RequiresNameAndDescription(t *testing.T) {
	service, repo := newService()

	_, err := service.Create(context.Background(), category.Input{Name: "  "})

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeValidation, appError.Code)
	assert.Len(t, appError.Details, 2)
	assert.Empty(t, repo.rows)
}

/*
TestCreate_DuplicateName verifies case-insensitive name uniqueness.
*/
func TestCreate_DuplicateName(t *testing.T) {
	service, repo := newService()

	_, err := service.Create(context.Background(), category.Input{Name: "Action", Description: "Fights"})
	require.NoError(t, err)

	_, err = service.Create(context.Background(), category.Input{Name: "action", Description: "Again"})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
	assert.Len(t, repo.rows, 1)
}

/*
TestUpdate_Missing verifies editing an unknown category is a 404.
*/
func TestUpdate_Missing(t *testing.T) {
	service, _ := newService()

	_, err := service.Update(context.Background(), "missing", category.Input{Name: "Drama", Description: "Tears"})
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func asPrincipal(principal *sec.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if principal != nil {
				request = request.WithContext(ctxutil.WithPrincipal(request.Context(), *principal))
			}
			next.ServeHTTP(writer, request)
		})
	}
}

/*
TestHTTP_AdminRoutes verifies that only admins may write categories while
reads stay public.
*/
func TestHTTP_AdminRoutes(t *testing.T) {
	service, _ := newService()
	handler := category.NewHandler(service)

	cases := []struct {
		name      string
		principal *sec.Principal
		want      int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"reader", &sec.Principal{UserID: "u1", Role: sec.RoleUser}, http.StatusForbidden},
		{"admin", &sec.Principal{UserID: "a1", Role: sec.RoleAdmin}, http.StatusCreated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := chi.NewRouter()
			router.Use(asPrincipal(tc.principal))
			router.Route("/api/categories", handler.RegisterRoutes)

			body := `{"name":"Romance ` + tc.name + `","description":"Hearts"}`
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/categories/", strings.NewReader(body)))
			assert.Equal(t, tc.want, recorder.Code)

			list := httptest.NewRecorder()
			router.ServeHTTP(list, httptest.NewRequest(http.MethodGet, "/api/categories/", nil))
			assert.Equal(t, http.StatusOK, list.Code)
		})
	}
}
