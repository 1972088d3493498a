// Copyright (c) 2026 GalleManga. All rights reserved.

package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/constants"
	"github.com/gallemanga/gallemanga/internal/platform/ctxutil"
	"github.com/gallemanga/gallemanga/internal/platform/respond"
	"github.com/gallemanga/gallemanga/internal/platform/sec"
)

// SessionResolver turns request credentials into a principal.
//
// # Why an interface?
//
// Defining SessionResolver here decouples the middleware from the auth service
// implementation, allowing us to inject fakes during unit testing.
type SessionResolver interface {
	// ResolveSession returns the principal owning the credentials.
	// It returns an [apperr.AppError] with code SESSION_EXPIRED when the credentials
	// no longer map to an active session, after destroying any server-side state.
	ResolveSession(ctx context.Context, sessionID, bearerToken string) (sec.Principal, error)
}

type sessionExpiredKey struct{}

// Authenticate resolves the caller from the session cookie or a Bearer token.
//
// # Flow
//  1. Read the 'galle_sid' cookie, else 'Authorization: Bearer <token>'.
//     Headers with another scheme are ignored; a malformed Bearer header is a 401.
//  2. If both are absent, the request proceeds as anonymous.
//  3. Otherwise resolve through [SessionResolver].
//  4. A stale session clears the cookie and continues anonymously; protected
//     routes then answer SESSION_EXPIRED instead of a plain 401.
//  5. Inject the immutable [sec.Principal] into the request context.
func Authenticate(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Credential Extraction ──────────────────────────────────────
			sessionID := ""
			if cookie, err := request.Cookie(constants.SessionCookieName); err == nil {
				sessionID = cookie.Value
			}

			bearerToken := ""
			if authHeader := request.Header.Get(constants.HeaderAuthorization); authHeader != "" {
				// Only the Bearer scheme carries a session token.
				parts := strings.Fields(authHeader)
				if len(parts) > 0 && strings.EqualFold(parts[0], "bearer") {
					if len(parts) != 2 {
						respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
						return
					}
					bearerToken = parts[1]
				}
			}

			// ── 2. Anonymous Access ───────────────────────────────────────────
			if sessionID == "" && bearerToken == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Resolution ─────────────────────────────────────────────────
			principal, err := resolver.ResolveSession(request.Context(), sessionID, bearerToken)
			if err != nil {
				if !apperr.HasCode(err, apperr.CodeSessionExpired) {
					respond.Error(writer, request, err)
					return
				}

				// ── 4. Stale Session ──────────────────────────────────────────
				if sessionID != "" {
					ClearSessionCookie(writer)
				}
				ctx := context.WithValue(request.Context(), sessionExpiredKey{}, true)
				next.ServeHTTP(writer, request.WithContext(ctx))
				return
			}

			// ── 5. Context Injection ──────────────────────────────────────────
			notePrincipal(request.Context(), principal.UserID)
			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if _, ok := ctxutil.GetPrincipal(request.Context()); !ok {
			respond.Error(writer, request, unauthenticated(request.Context()))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests if the authenticated user doesn't have the required role.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It implies [RequireAuth].
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal, ok := ctxutil.GetPrincipal(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if !ok {
				respond.Error(writer, request, unauthenticated(request.Context()))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !principal.Role.AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

func unauthenticated(ctx context.Context) *apperr.AppError {
	if expired, _ := ctx.Value(sessionExpiredKey{}).(bool); expired {
		return apperr.SessionExpired()
	}
	return apperr.Unauthorized("Authentication required")
}

// # Session Cookie

// SetSessionCookie writes the HttpOnly cookie that references a server-side session.
func SetSessionCookie(writer http.ResponseWriter, sessionID string, maxAge time.Duration, secure bool) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    sessionID,
		Path:     constants.SessionCookiePath,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
