// Copyright (c) 2026 GalleManga. All rights reserved.

package manga

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gallemanga/gallemanga/internal/platform/middleware"
	requestutil "github.com/gallemanga/gallemanga/internal/platform/request"
	"github.com/gallemanga/gallemanga/internal/platform/respond"
	"github.com/gallemanga/gallemanga/internal/platform/sec"
	"github.com/gallemanga/gallemanga/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for catalogue discovery and management.
type Handler struct {
	service *Service
}

// NewHandler constructs a new manga [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the manga endpoints on router.
//
// # Routing Strategy
//
//   - Discovery (Public): Listing, search, category browse and detail.
//   - Management (Restricted): Requires [sec.RoleAdmin] for mutations.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listMangas)
	router.Get("/search", handler.searchMangas)
	router.Get("/byCategory/{name}", handler.listByCategory)
	router.Get("/{identifier}", handler.getManga)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Post("/", handler.createManga)
		admin.Put("/{identifier}", handler.updateManga)
		admin.Delete("/{identifier}", handler.deleteManga)
	})
}

// # Discovery Endpoints

/*
GET /api/mangas.

Request:
  - limit: int
  - page: int

Response:
  - 200: []Manga: Paginated list, newest first
*/
func (handler *Handler) listMangas(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	mangas, total, err := handler.service.List(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, mangas, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/mangas/{identifier}.

Description: Accepts either the UUID or the slug of a manga.

Response:
  - 200: Manga
  - 404: Manga not found
*/
func (handler *Handler) getManga(writer http.ResponseWriter, request *http.Request) {
	manga, err := handler.service.Get(request.Context(), requestutil.Param(request, "identifier"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, manga)
}

/*
GET /api/mangas/search?q=.

Response:
  - 200: []Manga: Matches with their chapter counts
  - 400: Empty query
*/
func (handler *Handler) searchMangas(writer http.ResponseWriter, request *http.Request) {
	mangas, err := handler.service.Search(request.Context(), request.URL.Query().Get(FieldQuery))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, mangas)
}

// GET /api/mangas/byCategory/{name}.
func (handler *Handler) listByCategory(writer http.ResponseWriter, request *http.Request) {
	mangas, err := handler.service.ByCategory(request.Context(), requestutil.Param(request, "name"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, mangas)
}

// # Mutation Endpoints

/*
POST /api/mangas.

Request:
  - Multipart fields: title, description, author, genre, status, categories
  - Multipart file: image (optional cover)

Response:
  - 201: Manga
  - 400: Validation failure
  - 409: Duplicate title
  - 422: Cover is not an image or too large
*/
func (handler *Handler) createManga(writer http.ResponseWriter, request *http.Request) {
	input, cover, err := handler.readForm(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if cover != nil {
		defer cover.Close()
	}

	manga, err := handler.service.Create(request.Context(), input, readerOrNil(cover))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, manga)
}

/*
PUT /api/mangas/{identifier}.

Description: Fields omitted from the form are left unchanged. A new image
replaces the previous cover.
*/
func (handler *Handler) updateManga(writer http.ResponseWriter, request *http.Request) {
	input, cover, err := handler.readForm(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if cover != nil {
		defer cover.Close()
	}

	manga, err := handler.service.Update(request.Context(), requestutil.Param(request, "identifier"), input, readerOrNil(cover))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, manga)
}

/*
DELETE /api/mangas/{identifier}.

Description: Removes the manga with all its chapters, its cover and the
chapter PDFs.
*/
func (handler *Handler) deleteManga(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Param(request, "identifier")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Form Handling

func (handler *Handler) readForm(writer http.ResponseWriter, request *http.Request) (Input, io.ReadCloser, error) {
	if err := requestutil.ParseMultipart(writer, request, handler.service.MaxUploadBytes()); err != nil {
		return Input{}, nil, err
	}

	file, _, err := requestutil.FormFile(request, FieldImage)
	if err != nil {
		return Input{}, nil, err
	}

	input := Input{
		Title:       formField(request, FieldTitle),
		Description: formField(request, FieldDescription),
		Author:      formField(request, FieldAuthor),
		Genre:       formField(request, FieldGenre),
		Status:      formField(request, FieldStatus),
		Categories:  formField(request, FieldCategories),
	}

	if file == nil {
		return input, nil, nil
	}
	return input, file, nil
}

func formField(request *http.Request, name string) *string {
	if value, ok := requestutil.FormValue(request, name); ok {
		return &value
	}
	return nil
}

// readerOrNil keeps a nil ReadCloser from becoming a non-nil io.Reader.
func readerOrNil(file io.ReadCloser) io.Reader {
	if file == nil {
		return nil
	}
	return file
}
