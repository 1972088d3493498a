// Copyright (c) 2026 GalleManga. All rights reserved.

package wallet

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gallemanga/gallemanga/internal/platform/middleware"
	requestutil "github.com/gallemanga/gallemanga/internal/platform/request"
	"github.com/gallemanga/gallemanga/internal/platform/respond"
	"github.com/gallemanga/gallemanga/internal/platform/sec"
)

// # Definitions & Constructors

// Handler exposes the GalleCoin and chapter checkout endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the endpoints under /api/gallecoins.
//
// # Endpoints
//   - GET    /packages      : Packages on sale (alias GET /get).
//   - POST   /packages      : Admin, create a package.
//   - DELETE /packages/{id} : Admin, take a package off sale.
//   - POST   /checkout      : Start a hosted top-up checkout.
//   - GET    /success       : Provider redirect after payment.
//   - GET    /cancel        : Provider redirect after cancellation.
//   - GET    /balance       : Current balance.
//   - GET    /history       : Top-ups and chapter purchases.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/packages", handler.listPackages)
	router.Get("/get", handler.listPackages)
	router.Get("/success", handler.success)
	router.Get("/cancel", handler.cancel)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/checkout", handler.checkout)
		r.Get("/balance", handler.balance)
		r.Get("/history", handler.history)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Post("/packages", handler.createPackage)
		admin.Delete("/packages/{id}", handler.deactivatePackage)
	})
}

// RegisterChapterRoutes mounts POST /checkout under /api/chapters.
func (handler *Handler) RegisterChapterRoutes(router chi.Router) {
	router.With(middleware.RequireAuth).Post("/checkout", handler.chapterCheckout)
}

// # Request Payloads

type checkoutRequest struct {
	PackageID string `json:"packageId"`
}

type chapterCheckoutRequest struct {
	ChapterID string `json:"chapterId"`
}

// # Packages

func (handler *Handler) listPackages(writer http.ResponseWriter, request *http.Request) {
	packages, err := handler.service.Packages(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, packages)
}

func (handler *Handler) createPackage(writer http.ResponseWriter, request *http.Request) {
	var input PackageInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pkg, err := handler.service.CreatePackage(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, pkg)
}

func (handler *Handler) deactivatePackage(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeactivatePackage(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Top-up

/*
checkout starts a hosted top-up.

POST /api/gallecoins/checkout

Request:
  - Body: checkoutRequest (PackageID)

Response:
  - 200: CheckoutLink
  - 404: Unknown or inactive package
*/
func (handler *Handler) checkout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input checkoutRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	link, err := handler.service.StartCheckout(request.Context(), userID, input.PackageID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, link)
}

/*
success confirms a top-up after the provider redirect.

GET /api/gallecoins/success?session_id=

Response:
  - 200: CreditResult
  - 402: Payment not completed
*/
func (handler *Handler) success(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.ConfirmCheckout(request.Context(), request.URL.Query().Get(FieldSessionID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func (handler *Handler) cancel(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.CancelCheckout(request.Context(), request.URL.Query().Get(FieldSessionID)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]string{"message": MsgCheckoutCancelled})
}

func (handler *Handler) balance(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	balance, err := handler.service.Balance(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]int64{"gallecoins": balance})
}

func (handler *Handler) history(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	history, err := handler.service.History(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, history)
}

// # Chapter Purchase

/*
chapterCheckout buys a chapter with GalleCoins.

POST /api/chapters/checkout

Request:
  - Body: chapterCheckoutRequest (ChapterID)

Response:
  - 200: PurchaseResult
  - 400: Free chapter
  - 402: INSUFFICIENT_FUNDS
  - 404: Unknown chapter
*/
func (handler *Handler) chapterCheckout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input chapterCheckoutRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.PurchaseChapter(request.Context(), userID, input.ChapterID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}
