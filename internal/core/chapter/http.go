// Copyright (c) 2026 GalleManga. All rights reserved.

package chapter

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gallemanga/gallemanga/internal/platform/middleware"
	requestutil "github.com/gallemanga/gallemanga/internal/platform/request"
	"github.com/gallemanga/gallemanga/internal/platform/respond"
	"github.com/gallemanga/gallemanga/internal/platform/sec"
	"github.com/gallemanga/gallemanga/internal/platform/validate"
	"github.com/gallemanga/gallemanga/pkg/convert"
)

// # Handler

// Handler implements the chapter HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterMangaRoutes mounts the endpoints nested under /api/mangas/{id}/chapters.
func (handler *Handler) RegisterMangaRoutes(router chi.Router) {
	router.Get("/", handler.ListChapters)

	router.With(middleware.RequireRole(sec.RoleAdmin)).Post("/", handler.CreateChapter)
}

// RegisterRoutes mounts the endpoints under /api/chapters.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/{chapterID}", handler.GetChapter)
	router.With(middleware.RequireAuth).Get("/{chapterID}/content", handler.GetContent)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Put("/{chapterID}", handler.UpdateChapter)
		admin.Delete("/{chapterID}", handler.DeleteChapter)
	})
}

/*
ListChapters returns the chapters of a manga in reading order.

GET /api/mangas/{id}/chapters

Response:
  - 200: []Chapter (admins also see drafts)
*/
func (handler *Handler) ListChapters(writer http.ResponseWriter, request *http.Request) {
	chapters, err := handler.service.ListChapters(request.Context(), requestutil.Param(request, "id"), viewer(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapters)
}

/*
CreateChapter uploads a new chapter PDF.

POST /api/mangas/{id}/chapters

Request:
  - Multipart fields: chapterNumber, title, price, published
  - Multipart file: file (PDF)

Response:
  - 201: Chapter
  - 404: Unknown manga
  - 409: Duplicate chapter number
  - 422: Not a PDF, too large, or unreadable
*/
func (handler *Handler) CreateChapter(writer http.ResponseWriter, request *http.Request) {
	input, file, err := handler.readForm(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	chapter, err := handler.service.CreateChapter(request.Context(), requestutil.Param(request, "id"), input, readerOrNil(file))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, chapter)
}

// GetChapter handles GET /api/chapters/{chapterID}.
func (handler *Handler) GetChapter(writer http.ResponseWriter, request *http.Request) {
	chapter, err := handler.service.GetChapter(request.Context(), requestutil.Param(request, "chapterID"), viewer(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapter)
}

/*
GetContent releases the PDF URL to an entitled reader.

GET /api/chapters/{chapterID}/content

Response:
  - 200: Content
  - 402: CHAPTER_LOCKED
*/
func (handler *Handler) GetContent(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	content, err := handler.service.Content(request.Context(), requestutil.Param(request, "chapterID"), principal)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, content)
}

// UpdateChapter handles PUT /api/chapters/{chapterID}. The file part is optional.
func (handler *Handler) UpdateChapter(writer http.ResponseWriter, request *http.Request) {
	input, file, err := handler.readForm(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	chapter, err := handler.service.UpdateChapter(request.Context(), requestutil.Param(request, "chapterID"), input, readerOrNil(file))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapter)
}

// DeleteChapter handles DELETE /api/chapters/{chapterID}.
func (handler *Handler) DeleteChapter(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteChapter(request.Context(), requestutil.Param(request, "chapterID")); err != nil {
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

	var input Input
	validator := &validate.Validator{}

	if raw, ok := requestutil.FormValue(request, FieldChapterNumber); ok {
		number, valid := convert.ToInt64(raw)
		validator.Custom(FieldChapterNumber, !valid, "Must be a whole number")
		value := int(number)
		input.ChapterNumber = &value
	}
	if raw, ok := requestutil.FormValue(request, FieldPrice); ok && raw != "" {
		price, valid := convert.ToInt64(raw)
		validator.Custom(FieldPrice, !valid, "Must be a whole number of GalleCoins")
		input.Price = &price
	}
	if raw, ok := requestutil.FormValue(request, FieldTitle); ok {
		input.Title = &raw
	}
	if raw, ok := requestutil.FormValue(request, FieldPublished); ok {
		published := convert.ToBool(raw)
		input.Published = &published
	}

	if err := validator.Err(); err != nil {
		return Input{}, nil, err
	}

	file, _, err := requestutil.FormFile(request, FieldFile)
	if err != nil {
		return Input{}, nil, err
	}
	if file == nil {
		return input, nil, nil
	}
	return input, file, nil
}

func viewer(request *http.Request) *sec.Principal {
	if principal, ok := requestutil.Principal(request); ok {
		return &principal
	}
	return nil
}

func readerOrNil(file io.ReadCloser) io.Reader {
	if file == nil {
		return nil
	}
	return file
}
