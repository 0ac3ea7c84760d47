// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanrihq/kanri/internal/platform/constants"
	"github.com/kanrihq/kanri/internal/platform/middleware"
	"github.com/kanrihq/kanri/internal/platform/sec"
)

type stubStatusProvider struct {
	enabled bool
	message string
	err     error
}

func (p *stubStatusProvider) MaintenanceStatus(context.Context) (bool, string, error) {
	return p.enabled, p.message, p.err
}

func maintenanceGate(t *testing.T, provider *stubStatusProvider) (http.Handler, *sec.SessionCodec) {
	t.Helper()

	codec, err := sec.NewSessionCodec("0123456789abcdef0123456789abcdef", "kanri.test", time.Hour)
	require.NoError(t, err)

	gate := middleware.Maintenance(provider, codec, []string{"/api/v1/auth", "/api/v1/system/settings"})
	handler := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	return handler, codec
}

/*
TestMaintenance_DisabledPassesThrough verifies that the gate is transparent
while maintenance mode is off.
*/
func TestMaintenance_DisabledPassesThrough(t *testing.T) {
	handler, _ := maintenanceGate(t, &stubStatusProvider{enabled: false})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestMaintenance_BlocksAnonymousTraffic verifies that an active maintenance
window returns 503 with the configured message for requests without a session.
*/
func TestMaintenance_BlocksAnonymousTraffic(t *testing.T) {
	handler, _ := maintenanceGate(t, &stubStatusProvider{
		enabled: true,
		message: "Back at 09:00 JST.",
	})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Back at 09:00 JST.")
}

/*
TestMaintenance_DefaultMessage verifies that a blank configured message falls
back to the stock maintenance notice.
*/
func TestMaintenance_DefaultMessage(t *testing.T) {
	handler, _ := maintenanceGate(t, &stubStatusProvider{enabled: true})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "The system is under maintenance")
}

/*
TestMaintenance_ExemptPrefixesPass verifies that auth and status endpoints
stay reachable during maintenance, so admins can log in and turn it off.
*/
func TestMaintenance_ExemptPrefixesPass(t *testing.T) {
	handler, _ := maintenanceGate(t, &stubStatusProvider{enabled: true})

	for _, path := range []string{"/api/v1/auth/login", "/api/v1/system/settings/maintenance/status"} {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, path, strings.NewReader("{}")))
		assert.Equal(t, http.StatusOK, recorder.Code, path)
	}
}

/*
TestMaintenance_AdminBypasses verifies that a request carrying a valid admin
session token passes while maintenance is active, and that a regular user's
token does not.
*/
func TestMaintenance_AdminBypasses(t *testing.T) {
	handler, codec := maintenanceGate(t, &stubStatusProvider{enabled: true})

	adminToken, err := codec.Sign(sec.Identity{UserID: 1, Username: "admin", Role: sec.RoleAdmin})
	require.NoError(t, err)
	userToken, err := codec.Sign(sec.Identity{UserID: 2, Username: "suzuki", Role: sec.RoleUser})
	require.NoError(t, err)

	adminRequest := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	adminRequest.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: adminToken})
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, adminRequest)
	assert.Equal(t, http.StatusOK, recorder.Code)

	userRequest := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	userRequest.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: userToken})
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, userRequest)
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

/*
TestMaintenance_InvalidTokenTreatedAsAnonymous verifies the tolerant probe: a
garbage session cookie means "not admin", so the request is blocked like any
other, never rejected as a token error.
*/
func TestMaintenance_InvalidTokenTreatedAsAnonymous(t *testing.T) {
	handler, _ := maintenanceGate(t, &stubStatusProvider{enabled: true})

	request := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "not.a.token"})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

/*
TestMaintenance_ProviderFailureFailsOpen verifies that a settings-store outage
does not take the whole API down with it.
*/
func TestMaintenance_ProviderFailureFailsOpen(t *testing.T) {
	handler, _ := maintenanceGate(t, &stubStatusProvider{err: errors.New("store offline")})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
}
