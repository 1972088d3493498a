// Copyright (c) 2026 GalleManga. All rights reserved.

package category

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gallemanga/gallemanga/internal/platform/middleware"
	requestutil "github.com/gallemanga/gallemanga/internal/platform/request"
	"github.com/gallemanga/gallemanga/internal/platform/respond"
	"github.com/gallemanga/gallemanga/internal/platform/sec"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listCategories)
	router.Get("/{id}", handler.getCategory)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Post("/", handler.createCategory)
		admin.Put("/{id}", handler.updateCategory)
		admin.Delete("/{id}", handler.deleteCategory)
	})
}

func (handler *Handler) listCategories(writer http.ResponseWriter, request *http.Request) {
	categories, err := handler.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, categories)
}

func (handler *Handler) getCategory(writer http.ResponseWriter, request *http.Request) {
	category, err := handler.service.Get(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, category)
}

func (handler *Handler) createCategory(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, category)
}

func (handler *Handler) updateCategory(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.Update(request.Context(), requestutil.Param(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, category)
}

func (handler *Handler) deleteCategory(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
