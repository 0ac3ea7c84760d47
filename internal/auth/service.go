// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/kanrihq/kanri/internal/platform/apperr"
	"github.com/kanrihq/kanri/internal/platform/constants"
	"github.com/kanrihq/kanri/internal/platform/dberr"
	"github.com/kanrihq/kanri/internal/platform/sec"
	"github.com/kanrihq/kanri/internal/system/audit"
)

// TokenCodec defines the contract for signing and verifying session tokens.
//
// # Why an interface?
//
// Decoupling the service from [sec.SessionCodec] lets tests inject codecs
// with controlled secrets and TTLs.
type TokenCodec interface {
	Sign(identity sec.Identity) (string, error)
	Verify(token string) (*sec.SessionClaims, error)
}

// AttemptLimiter defines the login throttling contract.
type AttemptLimiter interface {
	Check(ctx context.Context, clientIP string) (bool, error)
	RecordFailure(ctx context.Context, clientIP string) error
	Reset(ctx context.Context, clientIP string) error
}

// previousSessionWindow is the age threshold under which a prior login is
// assumed to still hold a live session. It matches the session token TTL:
// a token older than this has expired on its own.
const previousSessionWindow = 24 * time.Hour

// Service implements the authentication lifecycle.
//
// # Single-Active-Session Policy
//
// Every successful login advances the account's token version, which
// invalidates all previously issued session tokens for that account. There is
// no way to hold two simultaneously valid sessions for one account.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, fencing,
// or login logic must be reviewed by the security team.
type Service struct {
	store   CredentialStore
	codec   TokenCodec
	limiter AttemptLimiter
	auditor audit.Recorder
	logger  *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	store CredentialStore,
	codec TokenCodec,
	limiter AttemptLimiter,
	auditor audit.Recorder,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:   store,
		codec:   codec,
		limiter: limiter,
		auditor: auditor,
		logger:  logger,
	}
}

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Username string
	Password string
	ClientIP string
}

// LoginResult represents a successfully established session.
type LoginResult struct {
	Token string
	User  *User

	// PreviousSessionTerminated signals that a prior session was likely still
	// live and has just been invalidated by this login. It is a time-window
	// heuristic (lastloginat younger than the token TTL), advisory only.
	PreviousSessionTerminated bool
}

// Login validates credentials and establishes the account's single active session.
//
// # Flow
//  1. Throttle by client address (5 failures / 15 minutes).
//  2. Lookup by username — a miss reports the same error as a wrong password.
//  3. Reject inactive accounts with a distinct message.
//  4. Verify the password hash (bcrypt, constant-time).
//  5. Compute the previous-session heuristic from lastloginat.
//  6. Atomically advance the token version and stamp lastloginat.
//  7. Mint a session token embedding the new version.
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	// ── 1. Attempt Throttling ─────────────────────────────────────────────

	allowed, err := service.limiter.Check(ctx, input.ClientIP)
	if err != nil {
		// Degraded limiter: allow the attempt, keep a trace.
		service.logger.WarnContext(ctx, "login_limiter_degraded", slog.Any("error", err))
	}
	if !allowed {
		return nil, apperr.RateLimited(int(constants.LoginAttemptWindow.Seconds()))
	}

	// ── 2. Credential Lookup ──────────────────────────────────────────────

	user, err := service.store.FindByUsername(ctx, input.Username)
	if err != nil {
		// A store outage is not a credential failure: it must not charge the
		// client's attempt budget or reach the audit trail.
		if !errors.Is(err, dberr.ErrNotFound) {
			return nil, fmt.Errorf("auth_service_lookup_failed: %w", err)
		}
		// Unknown username reports the same reason as a wrong password to
		// prevent enumeration.
		service.recordFailedLogin(ctx, input, ReasonInvalidCredentials)
		return nil, failure(ReasonInvalidCredentials, err)
	}

	// ── 3. Account Status ─────────────────────────────────────────────────

	if !user.IsActive {
		service.recordFailedLogin(ctx, input, ReasonAccountInactive)
		return nil, failure(ReasonAccountInactive, nil)
	}

	// ── 4. Password Verification ──────────────────────────────────────────

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		service.recordFailedLogin(ctx, input, ReasonInvalidCredentials)
		return nil, failure(ReasonInvalidCredentials, nil)
	}

	// ── 5. Previous Session Heuristic ─────────────────────────────────────

	previousSessionTerminated := user.LastLoginAt != nil &&
		time.Since(*user.LastLoginAt) < previousSessionWindow

	// ── 6. Version Fencing ────────────────────────────────────────────────

	// The atomic increment both serializes concurrent logins for the account
	// and invalidates every previously issued token.
	newVersion, err := service.store.AdvanceVersionForLogin(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_version_advance_failed: %w", err)
	}
	user.TokenVersion = newVersion

	// ── 7. Token Issuance ─────────────────────────────────────────────────

	token, err := service.codec.Sign(user.Identity())
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_sign_failed: %w", err)
	}

	if err := service.limiter.Reset(ctx, input.ClientIP); err != nil {
		service.logger.WarnContext(ctx, "login_limiter_reset_failed", slog.Any("error", err))
	}

	service.auditor.Record(ctx, audit.Entry{
		ActorID:    &user.ID,
		Action:     audit.ActionLoginSuccess,
		EntityType: audit.EntitySession,
		EntityID:   strconv.FormatInt(user.ID, 10),
		IPAddress:  input.ClientIP,
	})

	return &LoginResult{
		Token:                     token,
		User:                      user,
		PreviousSessionTerminated: previousSessionTerminated,
	}, nil
}

// VerifyToken authorizes a presented session token.
//
// Signature and expiry checks alone are not sufficient: the embedded token
// version is fenced against the account's current version, and the account's
// status is re-validated, on every call.
func (service *Service) VerifyToken(ctx context.Context, token string) (*sec.Identity, error) {
	// ── 1. Signature & Expiry ─────────────────────────────────────────────

	claims, err := service.codec.Verify(token)
	if err != nil {
		return nil, failure(ReasonInvalidToken, err)
	}

	// ── 2. Version Fencing & Status ───────────────────────────────────────

	user, err := service.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, dberr.ErrNotFound) {
			return nil, fmt.Errorf("auth_service_account_lookup_failed: %w", err)
		}
		return nil, failure(ReasonAccountDeleted, err)
	}

	// Status precedes the version comparison so a deactivated account reports
	// consistently even when its version also mismatches.
	if !user.IsActive {
		return nil, failure(ReasonAccountInactive, nil)
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, failure(ReasonSessionReplaced, nil)
	}

	identity := claims.Identity()
	return &identity, nil
}

// Logout invalidates the account's outstanding session tokens by advancing
// the token version.
//
// It is idempotent from the caller's perspective: logging out an already
// logged-out account just advances the fence further, with no error.
func (service *Service) Logout(ctx context.Context, userID int64, clientIP string) error {
	if _, err := service.store.AdvanceVersion(ctx, userID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	service.auditor.Record(ctx, audit.Entry{
		ActorID:    &userID,
		Action:     audit.ActionLogout,
		EntityType: audit.EntitySession,
		EntityID:   strconv.FormatInt(userID, 10),
		IPAddress:  clientIP,
	})

	return nil
}

// Profile returns the current account projection for an authenticated identity.
func (service *Service) Profile(ctx context.Context, userID int64) (*User, error) {
	user, err := service.store.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_profile_failed: %w", err)
	}
	return user, nil
}

// recordFailedLogin writes a failed attempt to the audit trail and charges it
// against the client's limiter budget.
func (service *Service) recordFailedLogin(ctx context.Context, input LoginInput, reason Reason) {
	if err := service.limiter.RecordFailure(ctx, input.ClientIP); err != nil {
		service.logger.WarnContext(ctx, "login_limiter_record_failed", slog.Any("error", err))
	}

	detail, _ := json.Marshal(map[string]string{
		"username": input.Username,
		"reason":   reason.String(),
	})

	service.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionLoginFailed,
		EntityType: audit.EntitySession,
		After:      detail,
		IPAddress:  input.ClientIP,
	})
}
