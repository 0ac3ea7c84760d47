// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package middleware

import (
	"net/http"

	"github.com/kanrihq/kanri/internal/platform/apperr"
	"github.com/kanrihq/kanri/internal/platform/constants"
	"github.com/kanrihq/kanri/internal/platform/respond"
	"github.com/kanrihq/kanri/internal/platform/sec"
)

// # CSRF Double-Submit Gate

// CSRF enforces the double-submit-cookie defense on state-changing requests.
//
// # Flow
//  1. Safe methods (GET, HEAD, OPTIONS) pass through untouched.
//  2. The CSRF secret cookie must be present — it is set lazily by the
//     csrf-token endpoint, so its absence means the client never asked for a
//     token in this browser session.
//  3. The X-Csrf-Token header must be present.
//  4. The header token must verify against the secret cookie.
//
// The stage mutates nothing: it is purely a gate with early-return 403s.
func CSRF() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Safe Methods ───────────────────────────────────────────────
			switch request.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Secret Cookie ──────────────────────────────────────────────
			cookie, err := request.Cookie(constants.CSRFSecretCookieName)
			if err != nil || cookie.Value == "" {
				respond.Error(writer, request, apperr.Forbidden("CSRF secret not found"))
				return
			}

			// ── 3. Token Header ───────────────────────────────────────────────
			token := request.Header.Get(constants.HeaderCSRFToken)
			if token == "" {
				respond.Error(writer, request, apperr.Forbidden("CSRF token missing"))
				return
			}

			// ── 4. Verification ───────────────────────────────────────────────
			if !sec.VerifyCSRFToken(token, cookie.Value) {
				respond.Error(writer, request, apperr.Forbidden("Invalid CSRF token"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
