// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanrihq/kanri/internal/platform/apperr"
	"github.com/kanrihq/kanri/internal/platform/constants"
	"github.com/kanrihq/kanri/internal/platform/ctxutil"
	"github.com/kanrihq/kanri/internal/platform/middleware"
	"github.com/kanrihq/kanri/internal/platform/sec"
)

type stubVerifier struct {
	identity *sec.Identity
	err      error
}

func (v *stubVerifier) VerifyToken(context.Context, string) (*sec.Identity, error) {
	return v.identity, v.err
}

// taggedError mimics the auth service's client-safe error envelope.
type taggedError struct{ app *apperr.AppError }

func (e *taggedError) Error() string              { return e.app.Message }
func (e *taggedError) AppError() *apperr.AppError { return e.app }

func identityCapture(captured **sec.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = ctxutil.GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

/*
TestAuthenticate_AnonymousPassesThrough verifies that a request without a
session cookie proceeds unauthenticated rather than being rejected.
*/
func TestAuthenticate_AnonymousPassesThrough(t *testing.T) {
	var captured *sec.Identity
	handler := middleware.Authenticate(&stubVerifier{})(identityCapture(&captured))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/system/settings/maintenance/status", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Nil(t, captured)
}

/*
TestAuthenticate_ValidTokenAttachesIdentity verifies that a verified token's
identity is reachable from downstream handlers.
*/
func TestAuthenticate_ValidTokenAttachesIdentity(t *testing.T) {
	verifier := &stubVerifier{identity: &sec.Identity{UserID: 7, Username: "tanaka", Role: sec.RoleUser}}

	var captured *sec.Identity
	handler := middleware.Authenticate(verifier)(identityCapture(&captured))

	request := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "signed-token"})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, captured)
	assert.Equal(t, int64(7), captured.UserID)
	assert.Equal(t, sec.RoleUser, captured.Role)
}

/*
TestAuthenticate_RejectedTokenHaltsPipeline verifies that a failed
verification stops the chain with 401 and preserves the client-safe envelope
when the error carries one.
*/
func TestAuthenticate_RejectedTokenHaltsPipeline(t *testing.T) {
	tests := map[string]struct {
		err         error
		wantMessage string
	}{
		"tagged error keeps its message": {
			err:         &taggedError{app: apperr.Unauthorized("Session was replaced by a newer login")},
			wantMessage: "Session was replaced by a newer login",
		},
		"plain error collapses to generic message": {
			err:         errors.New("pg: connection refused"),
			wantMessage: "Invalid or expired session",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var captured *sec.Identity
			handler := middleware.Authenticate(&stubVerifier{err: test.err})(identityCapture(&captured))

			request := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "stale-token"})

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Contains(t, recorder.Body.String(), test.wantMessage)
			assert.Nil(t, captured)
		})
	}
}

/*
TestStructuredLogger_AuthenticatedRequest verifies the finished-request log
line carries the response status and the numeric user_id of an authenticated
principal.
*/
func TestStructuredLogger_AuthenticatedRequest(t *testing.T) {
	var logOutput bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logOutput, nil))

	handler := middleware.StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	request := httptest.NewRequest(http.MethodPost, "/api/v1/users", nil)
	ctx := ctxutil.WithIdentity(request.Context(), &sec.Identity{UserID: 7, Username: "tanaka", Role: sec.RoleAdmin})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request.WithContext(ctx))

	logLine := logOutput.String()
	assert.Contains(t, logLine, "http_request_finished")
	assert.Contains(t, logLine, `"status":201`)
	assert.Contains(t, logLine, `"user_id":7`)
	assert.Contains(t, logLine, `"path":"/api/v1/users"`)
}

/*
TestRequireAuth verifies the authenticated-only gate.
*/
func TestRequireAuth(t *testing.T) {
	handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Missing authentication token")

	request := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	ctx := ctxutil.WithIdentity(request.Context(), &sec.Identity{UserID: 7, Role: sec.RoleUser})
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request.WithContext(ctx))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestRequireRole verifies role gating above the authentication floor: no
identity is 401, a role below the requirement is 403, at-or-above passes.
*/
func TestRequireRole(t *testing.T) {
	handler := middleware.RequireRole(sec.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	request := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	ctx := ctxutil.WithIdentity(request.Context(), &sec.Identity{UserID: 7, Role: sec.RoleUser})
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request.WithContext(ctx))
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Insufficient permissions")

	request = httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	ctx = ctxutil.WithIdentity(request.Context(), &sec.Identity{UserID: 1, Role: sec.RoleAdmin})
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request.WithContext(ctx))
	assert.Equal(t, http.StatusOK, recorder.Code)
}
