// Copyright (c) 2026 GalleManga. All rights reserved.

package chapter_test

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

	"github.com/gallemanga/gallemanga/internal/core/chapter"
	"github.com/gallemanga/gallemanga/internal/platform/ctxutil"
	"github.com/gallemanga/gallemanga/internal/platform/sec"
)

func newRouter(f *fixture, principal *sec.Principal) http.Handler {
	handler := chapter.NewHandler(f.service)
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if principal != nil {
				request = request.WithContext(ctxutil.WithPrincipal(request.Context(), *principal))
			}
			next.ServeHTTP(writer, request)
		})
	})
	router.Route("/api/mangas/{id}/chapters", handler.RegisterMangaRoutes)
	router.Route("/api/chapters", handler.RegisterRoutes)
	return router
}

func chapterForm(t *testing.T, fields map[string]string, pdf []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	if pdf != nil {
		part, err := writer.CreateFormFile(chapter.FieldFile, "chapter.pdf")
		require.NoError(t, err)
		_, err = part.Write(pdf)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func serve(router http.Handler, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	var request *http.Request
	if body == nil {
		request = httptest.NewRequest(method, path, nil)
	} else {
		request = httptest.NewRequest(method, path, body)
		request.Header.Set("Content-Type", contentType)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

/*
TestHTTP_UploadAndRead verifies the admin upload, the hidden file URL in
metadata and the locked content endpoint.
*/
func TestHTTP_UploadAndRead(t *testing.T) {
	f := newFixture(t)
	admin := newRouter(f, &sec.Principal{UserID: "admin", Role: sec.RoleAdmin})
	reader := newRouter(f, &sec.Principal{UserID: "reader", Role: sec.RoleUser})
	anonymous := newRouter(f, nil)

	body, contentType := chapterForm(t, map[string]string{
		chapter.FieldChapterNumber: "1",
		chapter.FieldTitle:         "Arrival",
		chapter.FieldPrice:         "25",
		chapter.FieldPublished:     "true",
	}, twoPagePDF)
	recorder := serve(admin, http.MethodPost, "/api/mangas/"+mangaID+"/chapters/", body, contentType)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	assert.NotContains(t, recorder.Body.String(), "/uploads/")

	var created struct {
		Data chapter.Chapter `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	assert.Equal(t, 2, created.Data.PageCount)

	recorder = serve(anonymous, http.MethodGet, "/api/mangas/"+mangaID+"/chapters/", nil, "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Arrival")

	recorder = serve(anonymous, http.MethodGet, "/api/chapters/"+created.Data.ID+"/content", nil, "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = serve(reader, http.MethodGet, "/api/chapters/"+created.Data.ID+"/content", nil, "")
	assert.Equal(t, http.StatusPaymentRequired, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "CHAPTER_LOCKED")

	f.owned["reader/"+created.Data.ID] = true
	recorder = serve(reader, http.MethodGet, "/api/chapters/"+created.Data.ID+"/content", nil, "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "/uploads/")
}

/*
TestHTTP_FormErrors verifies malformed numbers, missing files and non-PDF uploads.
*/
func TestHTTP_FormErrors(t *testing.T) {
	f := newFixture(t)
	admin := newRouter(f, &sec.Principal{UserID: "admin", Role: sec.RoleAdmin})

	body, contentType := chapterForm(t, map[string]string{chapter.FieldChapterNumber: "one"}, twoPagePDF)
	recorder := serve(admin, http.MethodPost, "/api/mangas/"+mangaID+"/chapters/", body, contentType)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	body, contentType = chapterForm(t, map[string]string{chapter.FieldChapterNumber: "1"}, nil)
	recorder = serve(admin, http.MethodPost, "/api/mangas/"+mangaID+"/chapters/", body, contentType)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	body, contentType = chapterForm(t, map[string]string{chapter.FieldChapterNumber: "1"}, []byte("plain text, not a pdf"))
	recorder = serve(admin, http.MethodPost, "/api/mangas/"+mangaID+"/chapters/", body, contentType)
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	body, contentType = chapterForm(t, map[string]string{chapter.FieldChapterNumber: "1"}, emptyPDF)
	recorder = serve(admin, http.MethodPost, "/api/mangas/"+mangaID+"/chapters/", body, contentType)
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	assert.Zero(t, f.pdfCount(t))
}

/*
TestHTTP_AdminOnlyMutations verifies readers cannot upload, edit or delete.
*/
func TestHTTP_AdminOnlyMutations(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, 1, 0)
	reader := newRouter(f, &sec.Principal{UserID: "reader", Role: sec.RoleUser})

	body, contentType := chapterForm(t, map[string]string{chapter.FieldChapterNumber: "2"}, twoPagePDF)
	recorder := serve(reader, http.MethodPost, "/api/mangas/"+mangaID+"/chapters/", body, contentType)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = serve(reader, http.MethodDelete, "/api/chapters/"+created.ID, nil, "")
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Len(t, f.repo.rows, 1)
}
