// Copyright (c) 2026 GalleManga. All rights reserved.

package manga_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallemanga/gallemanga/internal/core/manga"
	"github.com/gallemanga/gallemanga/internal/platform/ctxutil"
	"github.com/gallemanga/gallemanga/internal/platform/sec"
)

func newRouter(f *fixture, principal *sec.Principal) http.Handler {
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if principal != nil {
				request = request.WithContext(ctxutil.WithPrincipal(request.Context(), *principal))
			}
			next.ServeHTTP(writer, request)
		})
	})
	router.Route("/api/mangas", manga.NewHandler(f.service).RegisterRoutes)
	return router
}

func multipartBody(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "cover.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

/*
TestHTTP_CreateAndBrowse verifies the admin multipart form and the public
discovery endpoints.
*/
func TestHTTP_CreateAndBrowse(t *testing.T) {
	f := newFixture(t)
	admin := newRouter(f, &sec.Principal{UserID: "admin", Role: sec.RoleAdmin})
	public := newRouter(f, nil)

	body, contentType := multipartBody(t, map[string]string{
		"title":       "Moon Blade",
		"description": "A sword story",
		"author":      "Aoi",
		"categories":  "Action,Fantasy",
	}, pngHeader)

	request := httptest.NewRequest(http.MethodPost, "/api/mangas/", body)
	request.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	admin.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var created struct {
		Data manga.Manga `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	assert.NotEmpty(t, created.Data.ImageURL)

	for _, path := range []string{
		"/api/mangas/",
		"/api/mangas/moon-blade",
		"/api/mangas/" + created.Data.ID,
		"/api/mangas/search?q=sword",
		"/api/mangas/byCategory/fantasy",
	} {
		recorder := httptest.NewRecorder()
		public.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, recorder.Code, path)
		assert.Contains(t, recorder.Body.String(), "Moon Blade", path)
	}

	missing := httptest.NewRecorder()
	public.ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/api/mangas/search?q=", nil))
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

/*
TestHTTP_ReaderCannotDelete verifies mutations are admin-only.
*/
func TestHTTP_ReaderCannotDelete(t *testing.T) {
	f := newFixture(t)
	created, err := f.service.Create(t.Context(), validInput("Blade"), nil)
	require.NoError(t, err)

	reader := newRouter(f, &sec.Principal{UserID: "reader", Role: sec.RoleUser})
	recorder := httptest.NewRecorder()
	reader.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/api/mangas/"+created.ID, nil))

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Len(t, f.repo.rows, 1)
}
