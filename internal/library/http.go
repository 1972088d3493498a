// Copyright (c) 2026 GalleManga. All rights reserved.

package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gallemanga/gallemanga/internal/platform/middleware"
	requestutil "github.com/gallemanga/gallemanga/internal/platform/request"
	"github.com/gallemanga/gallemanga/internal/platform/respond"
)

// Handler exposes the library and favorites endpoints. Every route requires a session.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts GET / under /api/library.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.With(middleware.RequireAuth).Get("/", handler.library)
}

// RegisterFavoriteRoutes mounts GET / and POST /toggle under /api/favorites.
func (handler *Handler) RegisterFavoriteRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", handler.favorites)
		r.Post("/toggle", handler.toggle)
	})
}

type toggleRequest struct {
	MangaID string `json:"mangaId"`
}

func (handler *Handler) library(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries, err := handler.service.Library(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entries)
}

func (handler *Handler) favorites(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	favorites, err := handler.service.Favorites(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, favorites)
}

/*
toggle adds or removes a favorite.

POST /api/favorites/toggle

Request:
  - Body: toggleRequest (MangaID)

Response:
  - 200: {"isFavorite": bool}
  - 404: Unknown manga
*/
func (handler *Handler) toggle(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input toggleRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	isFavorite, err := handler.service.ToggleFavorite(request.Context(), userID, input.MangaID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]bool{FieldIsFavorite: isFavorite})
}
