// Copyright (c) 2026 GalleManga. All rights reserved.

package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gallemanga/gallemanga/internal/platform/middleware"
	requestutil "github.com/gallemanga/gallemanga/internal/platform/request"
	"github.com/gallemanga/gallemanga/internal/platform/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterMangaRoutes mounts the endpoints nested under /api/mangas/{id}/reviews.
func (handler *Handler) RegisterMangaRoutes(router chi.Router) {
	router.Get("/", handler.listReviews)
	router.With(middleware.RequireAuth).Post("/", handler.createReview)
}

// RegisterRoutes mounts DELETE /{reviewID} under /api/reviews.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.With(middleware.RequireAuth).Delete("/{reviewID}", handler.deleteReview)
}

func (handler *Handler) listReviews(writer http.ResponseWriter, request *http.Request) {
	reviews, err := handler.service.List(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, reviews)
}

func (handler *Handler) createReview(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Input
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	review, err := handler.service.Create(request.Context(), principal, requestutil.Param(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, review)
}

func (handler *Handler) deleteReview(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), principal, requestutil.Param(request, "reviewID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
