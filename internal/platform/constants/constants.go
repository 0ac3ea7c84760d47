// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and login-attempt budgets.
  - Security: Cookie names, CSRF headers, and session lifetimes.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "kanri-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute

	// MaxLoginAttempts is the number of failed logins allowed per client
	// address within [LoginAttemptWindow].
	MaxLoginAttempts = 5

	// LoginAttemptWindow is the fixed window over which failed logins are counted.
	LoginAttemptWindow = 15 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in session tokens.
	AuthIssuer = "kanri.app"

	// SessionTokenTTL is the lifetime of a signed session token. Tokens
	// self-expire at this age regardless of version fencing.
	SessionTokenTTL = 24 * time.Hour

	// SessionCookieName is the name of the HTTP-only cookie carrying the
	// signed session token.
	SessionCookieName = "kanri_session"

	// CSRFSecretCookieName is the name of the HTTP-only cookie carrying the
	// per-browser CSRF secret.
	CSRFSecretCookieName = "kanri_csrf"

	// CSRFSecretTTL is the lifetime of the CSRF secret cookie. Derived tokens
	// are valid for as long as the secret cookie lives.
	CSRFSecretTTL = 24 * time.Hour

	// HeaderCSRFToken is the request header that must echo a token derived
	// from the CSRF secret cookie on every state-changing request.
	HeaderCSRFToken = "X-Csrf-Token"
)

// # System Settings

const (
	// SettingMaintenanceMode is the system.setting key toggling maintenance mode.
	SettingMaintenanceMode = "maintenance_mode"

	// SettingMaintenanceMessage is the system.setting key holding the banner
	// message returned to blocked clients during maintenance.
	SettingMaintenanceMessage = "maintenance_message"

	// SettingsCacheTTL bounds how stale a cached setting may be. An admin
	// toggling maintenance mode may take up to this long to take full effect.
	SettingsCacheTTL = 30 * time.Second
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-Id"
	HeaderXRealIP       = "X-Real-Ip"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
)

// # Database Schemas

const (
	SchemaUsers  = "users"
	SchemaOrg    = "org"
	SchemaSystem = "system"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixLoginAttempts = "auth:login_attempts:"
)
