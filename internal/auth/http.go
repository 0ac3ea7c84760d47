// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kanrihq/kanri/internal/platform/config"
	"github.com/kanrihq/kanri/internal/platform/constants"
	"github.com/kanrihq/kanri/internal/platform/middleware"
	"github.com/kanrihq/kanri/internal/platform/request"
	"github.com/kanrihq/kanri/internal/platform/respond"
	"github.com/kanrihq/kanri/internal/platform/sec"
	"github.com/kanrihq/kanri/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
//
// # Scope
//
// This handler manages the session lifecycle entry points: CSRF token
// issuance, login, logout, and the current-identity probe. It owns the
// session and CSRF cookies; no other handler sets security cookies.
type Handler struct {
	authService *Service
	cfg         *config.Config
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, cfg *config.Config) *Handler {
	return &Handler{authService: service, cfg: cfg}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - GET  /csrf-token : Issues a CSRF token, lazily setting the secret cookie.
//   - POST /login      : Authenticates and sets the session cookie.
//   - POST /logout     : Bumps the token version and clears the session cookie.
//   - GET  /me         : Returns the authenticated account's profile.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Get("/csrf-token", handler.csrfToken)
	router.Post("/login", handler.login)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Get("/me", handler.me)
	})

	return router
}

// # Request Payloads

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

/*
csrfToken issues a CSRF token bound to the caller's secret cookie.

GET /api/v1/auth/csrf-token

Description: Lazily sets the CSRF secret cookie (httpOnly, SameSite=Strict,
24h) if the browser does not carry one yet, then derives a token from it.
The token must be echoed back in the X-Csrf-Token header on every
state-changing request.

Response:
  - 200: {csrf_token}
*/
func (handler *Handler) csrfToken(writer http.ResponseWriter, httpRequest *http.Request) {
	secret := ""

	if cookie, err := httpRequest.Cookie(constants.CSRFSecretCookieName); err == nil && cookie.Value != "" {
		secret = cookie.Value
	} else {
		fresh, err := sec.GenerateCSRFSecret()
		if err != nil {
			respond.Error(writer, httpRequest, err)
			return
		}
		secret = fresh

		http.SetCookie(writer, &http.Cookie{
			Name:     constants.CSRFSecretCookieName,
			Value:    secret,
			Path:     "/",
			MaxAge:   int(constants.CSRFSecretTTL.Seconds()),
			Secure:   handler.cfg.CookieSecure(),
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}

	token, err := sec.GenerateCSRFToken(secret)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.OK(writer, map[string]string{"csrf_token": token})
}

/*
login authenticates an account and establishes its single active session.

POST /api/v1/auth/login

Description: Verifies credentials, advances the account's token version
(invalidating any previously issued session token), and sets the signed
session cookie. CSRF-protected and rate-limited per client address.

Request:
  - Body: loginRequest (Username, Password)

Response:
  - 200: {user, previous_session_terminated}
  - 401: Invalid credentials or inactive account
  - 429: Too many failed attempts from this address
*/
func (handler *Handler) login(writer http.ResponseWriter, httpRequest *http.Request) {
	var input loginRequest

	if err := request.DecodeJSON(httpRequest, &input); err != nil {
		respond.Error(writer, httpRequest, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("username", input.Username)
	validator.Required("password", input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	result, err := handler.authService.Login(httpRequest.Context(), LoginInput{
		Username: input.Username,
		Password: input.Password,
		ClientIP: middleware.RealIP(httpRequest),
	})
	if err != nil {
		// Auth failures collapse to a uniform 401; the reason stays server-side.
		if authErr := AsError(err); authErr != nil {
			respond.Error(writer, httpRequest, authErr.AppError())
			return
		}
		respond.Error(writer, httpRequest, err)
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(constants.SessionTokenTTL.Seconds()),
		Secure:   handler.cfg.CookieSecure(),
		HttpOnly: true,
		SameSite: handler.cfg.CookieSameSite(),
	})

	respond.OK(writer, map[string]any{
		"user":                        result.User,
		"previous_session_terminated": result.PreviousSessionTerminated,
	})
}

/*
logout terminates the account's active session.

POST /api/v1/auth/logout

Description: Advances the token version so the presented token (and any other
outstanding token) immediately stops verifying, then clears the session
cookie. Idempotent: repeating the call only advances the fence further.

Response:
  - 200: {message}
*/
func (handler *Handler) logout(writer http.ResponseWriter, httpRequest *http.Request) {
	identity, err := request.RequiredIdentity(httpRequest)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	if err := handler.authService.Logout(httpRequest.Context(), identity.UserID, middleware.RealIP(httpRequest)); err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   handler.cfg.CookieSecure(),
		HttpOnly: true,
		SameSite: handler.cfg.CookieSameSite(),
	})

	respond.OK(writer, map[string]string{"message": "Logged out"})
}

/*
me returns the authenticated account's current profile.

GET /api/v1/auth/me

Response:
  - 200: User
  - 401: Not authenticated
*/
func (handler *Handler) me(writer http.ResponseWriter, httpRequest *http.Request) {
	identity, err := request.RequiredIdentity(httpRequest)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	user, err := handler.authService.Profile(httpRequest.Context(), identity.UserID)
	if err != nil {
		respond.Error(writer, httpRequest, err)
		return
	}

	respond.OK(writer, user)
}
