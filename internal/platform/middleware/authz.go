// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kanrihq/kanri/internal/platform/apperr"
	"github.com/kanrihq/kanri/internal/platform/constants"
	"github.com/kanrihq/kanri/internal/platform/ctxutil"
	"github.com/kanrihq/kanri/internal/platform/respond"
	"github.com/kanrihq/kanri/internal/platform/sec"
)

// SessionVerifier defines the interface needed to authorize session tokens.
//
// # Why an interface?
//
// Defining SessionVerifier here decouples the middleware from the auth
// service implementation, allowing us to easily inject mocks during unit
// testing. The implementation is expected to fence the token's embedded
// version against the account's current version, not just check signatures.
type SessionVerifier interface {
	VerifyToken(ctx context.Context, token string) (*sec.Identity, error)
}

// clientError is matched against verification failures to recover the
// client-safe status envelope without importing the auth package.
type clientError interface {
	AppError() *apperr.AppError
}

// Authenticate extracts and verifies the session token cookie.
//
// # Flow
//  1. Read the session cookie. If absent, the request proceeds as anonymous
//     (protected routes are enforced by [RequireAuth]).
//  2. If present, authorize it via [SessionVerifier] — signature, expiry,
//     version fencing, and account status.
//  3. On failure, halt the pipeline with 401. The specific reason is logged
//     server-side but collapsed for the client.
//  4. On success, attach the [*sec.Identity] to the request context.
func Authenticate(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Anonymous Access ───────────────────────────────────────────
			cookie, err := request.Cookie(constants.SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token Authorization ────────────────────────────────────────
			identity, err := verifier.VerifyToken(request.Context(), cookie.Value)
			if err != nil {
				// Preserve the distinguishing reason for the audit trail.
				ctxutil.GetLogger(request.Context()).WarnContext(request.Context(),
					"session_rejected", slog.String("reason", err.Error()))

				var ce clientError
				if errors.As(err, &ce) {
					respond.Error(writer, request, ce.AppError())
					return
				}
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired session"))
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithIdentity(request.Context(), identity)
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
		identity := ctxutil.GetIdentity(request.Context())
		if identity == nil {
			respond.Error(writer, request, apperr.Unauthorized("Missing authentication token"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests whose identity doesn't meet the required role.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It automatically
// implies [RequireAuth] so you don't need to mount both.
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity := ctxutil.GetIdentity(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if identity == nil {
				respond.Error(writer, request, apperr.Unauthorized("Missing authentication token"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !identity.Role.AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
