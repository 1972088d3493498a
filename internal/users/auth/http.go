// Copyright (c) 2026 GalleManga. All rights reserved.

package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gallemanga/gallemanga/internal/platform/constants"
	"github.com/gallemanga/gallemanga/internal/platform/middleware"
	requestutil "github.com/gallemanga/gallemanga/internal/platform/request"
	"github.com/gallemanga/gallemanga/internal/platform/respond"
	"github.com/gallemanga/gallemanga/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService  *Service
	cookieMaxAge time.Duration
	cookieSecure bool
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service, cookieMaxAge time.Duration, cookieSecure bool) *Handler {
	return &Handler{authService: service, cookieMaxAge: cookieMaxAge, cookieSecure: cookieSecure}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register : Creates a new account.
//   - POST /login    : Opens a cookie session and returns the token.
//   - POST /logout   : Ends the current session.
//   - GET  /me       : Current account and balance.
//   - GET  /refresh  : Alias of /me.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
		r.Get("/refresh", handler.me)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

/*
Register handles the creation of a new user account.

POST /api/auth/register

Request:
  - Body: registerRequest (Username, Email, Password)

Response:
  - 201: User: Created account
  - 400: Validation failure
  - 409: Email or username already in use
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, strings.TrimSpace(input.Username), MinUsernameLength).
		MaxLen(FieldUsername, input.Username, MaxUsernameLength).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
Login authenticates a user and establishes a session.

POST /api/auth/login

Request:
  - Body: loginRequest (Login, Password)

Response:
  - 200: Token and account, plus the HttpOnly session cookie
  - 401: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldLogin, input.Login)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), input.Login, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	middleware.SetSessionCookie(writer, result.SessionID, handler.cookieMaxAge, handler.cookieSecure)

	respond.OK(writer, map[string]any{
		FieldToken: result.Token,
		FieldUser:  result.User,
	})
}

/*
Logout ends the caller's session.

POST /api/auth/logout

Response:
  - 200: Always, including for callers without a session
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	sessionID := ""
	if cookie, err := request.Cookie(constants.SessionCookieName); err == nil {
		sessionID = cookie.Value
	}

	bearerToken := ""
	if parts := strings.Fields(request.Header.Get(constants.HeaderAuthorization)); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		bearerToken = parts[1]
	}

	if err := handler.authService.Logout(request.Context(), sessionID, bearerToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	middleware.ClearSessionCookie(writer)
	respond.OK(writer, map[string]string{FieldMessage: "Logged out"})
}

/*
Me returns the authenticated account.

GET /api/auth/me (alias GET /api/auth/refresh)

Response:
  - 200: User, including the GalleCoin balance
  - 401: Not authenticated or session expired
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Me(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}
