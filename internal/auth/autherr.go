// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package auth

import (
	"errors"
	"net/http"

	"github.com/kanrihq/kanri/internal/platform/apperr"
)

// Reason classifies why an authentication operation failed.
//
// # Design
//
// Every failure path surfaces to the client as the same class of error
// (401 Unauthorized), but the distinguishing reason is preserved so the
// request gatekeeper can log and audit it. The gatekeeper matches on Reason
// exhaustively rather than probing error types.
type Reason int

const (
	// ReasonInvalidCredentials covers both unknown-username and wrong-password
	// failures. The two are deliberately indistinguishable to the client to
	// prevent username enumeration.
	ReasonInvalidCredentials Reason = iota

	// ReasonAccountInactive means the account exists but has been deactivated.
	ReasonAccountInactive

	// ReasonSessionReplaced means the token's embedded version no longer
	// matches the account's current version: a newer login, a logout, or an
	// admin deactivation has fenced it out.
	ReasonSessionReplaced

	// ReasonAccountDeleted means the account behind the token no longer exists.
	ReasonAccountDeleted

	// ReasonInvalidToken covers malformed, tampered, and expired tokens.
	ReasonInvalidToken
)

// String returns the machine-readable label used in logs and audit entries.
func (r Reason) String() string {
	switch r {
	case ReasonInvalidCredentials:
		return "invalid_credentials"
	case ReasonAccountInactive:
		return "account_inactive"
	case ReasonSessionReplaced:
		return "session_replaced"
	case ReasonAccountDeleted:
		return "account_deleted"
	case ReasonInvalidToken:
		return "invalid_token"
	default:
		return "unknown"
	}
}

// Error is the tagged failure type returned by the authentication service.
type Error struct {
	Reason Reason
	// Cause holds the underlying error (e.g. a codec failure), for logs only.
	Cause error
}

// Error implements the error interface with a client-safe message.
func (e *Error) Error() string {
	switch e.Reason {
	case ReasonInvalidCredentials:
		return "Invalid credentials"
	case ReasonAccountInactive:
		return "Account is inactive"
	case ReasonSessionReplaced:
		return "Session has been replaced by a newer login"
	case ReasonAccountDeleted:
		return "Account no longer exists"
	default:
		return "Invalid or expired session token"
	}
}

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *Error) Unwrap() error { return e.Cause }

// AppError translates the failure into the uniform 401 envelope served to
// clients. The reason-specific message is kept: inactive-account wording does
// not aid enumeration the way a not-found/wrong-password split would.
func (e *Error) AppError() *apperr.AppError {
	return &apperr.AppError{
		Code:       "UNAUTHORIZED",
		Message:    e.Error(),
		HTTPStatus: http.StatusUnauthorized,
		Cause:      e.Cause,
	}
}

// AsError extracts an auth [*Error] from err's chain, or nil.
func AsError(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// failure constructs a tagged authentication error.
func failure(reason Reason, cause error) *Error {
	return &Error{Reason: reason, Cause: cause}
}
