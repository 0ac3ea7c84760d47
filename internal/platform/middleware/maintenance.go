// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kanrihq/kanri/internal/platform/apperr"
	"github.com/kanrihq/kanri/internal/platform/constants"
	"github.com/kanrihq/kanri/internal/platform/ctxutil"
	"github.com/kanrihq/kanri/internal/platform/sec"
)

// MaintenanceStatusProvider reports whether the platform is in maintenance
// mode. Implementations are expected to cache the underlying settings lookup
// (the settings service uses a 30s TTL) so this can run on every request.
type MaintenanceStatusProvider interface {
	MaintenanceStatus(ctx context.Context) (enabled bool, message string, err error)
}

// TokenDecoder checks a session token's signature and expiry only. The
// maintenance gate deliberately skips version fencing: it needs a cheap,
// tolerant role probe, not full authorization.
type TokenDecoder interface {
	Verify(token string) (*sec.SessionClaims, error)
}

// Maintenance blocks non-admin traffic while maintenance mode is enabled.
//
// Exempt path prefixes (auth and maintenance-status endpoints) always pass,
// so admins can still log in and turn maintenance off again. A provider
// failure fails OPEN: blocking all traffic on a settings-store outage is
// worse than briefly not enforcing maintenance mode. When active, any
// session cookie present is decoded tolerantly — an absent or invalid token
// simply means "not admin", never an error. Admins pass; everyone else
// receives 503 with the configured maintenance message.
func Maintenance(provider MaintenanceStatusProvider, decoder TokenDecoder, exemptPrefixes []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			for _, prefix := range exemptPrefixes {
				if strings.HasPrefix(request.URL.Path, prefix) {
					next.ServeHTTP(writer, request)
					return
				}
			}

			enabled, message, err := provider.MaintenanceStatus(request.Context())
			if err != nil {
				ctxutil.GetLogger(request.Context()).WarnContext(request.Context(),
					"maintenance_check_degraded", slog.Any("error", err))
				next.ServeHTTP(writer, request)
				return
			}
			if !enabled {
				next.ServeHTTP(writer, request)
				return
			}

			if cookie, cerr := request.Cookie(constants.SessionCookieName); cerr == nil && cookie.Value != "" {
				if claims, derr := decoder.Verify(cookie.Value); derr == nil {
					if sec.UserRole(claims.Role).AtLeast(sec.RoleAdmin) {
						next.ServeHTTP(writer, request)
						return
					}
				}
			}

			if message == "" {
				message = "The system is under maintenance. Please try again later."
			}
			blocked := apperr.ServiceUnavailable(message)
			writeError(writer, blocked.HTTPStatus, blocked.Code, blocked.Message)
		})
	}
}
