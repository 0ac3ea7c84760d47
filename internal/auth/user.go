// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

// Package auth implements the authentication and session lifecycle for Kanri.
//
// # Architecture
//
// The package owns the credential records, the single-active-session policy,
// and the login/verify/logout state machine. It exposes the [Service] to the
// HTTP layer and the request gatekeeper middleware, and talks to PostgreSQL
// through the [CredentialStore] interface.
package auth

import (
	"time"

	"github.com/kanrihq/kanri/internal/platform/sec"
)

// User represents a registered account of the Kanri admin platform.
//
// # Rules
//   - Username is unique.
//   - PasswordHash is generated via Bcrypt exclusively by the service layer.
//   - TokenVersion is monotonically non-decreasing and is the sole mechanism
//     for invalidating outstanding session tokens: a token is valid only while
//     its embedded version equals the row's current version.
type User struct {
	ID           int64        `json:"id"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName  string       `json:"display_name"`
	Role         sec.UserRole `json:"role"`
	IsActive     bool         `json:"is_active"`
	TokenVersion int          `json:"-"` // Fencing counter, never exposed to clients.
	LastLoginAt  *time.Time   `json:"last_login_at,omitempty"`
	DepartmentID *int64       `json:"department_id,omitempty"`
	SectionID    *int64       `json:"section_id,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Identity returns the principal projection embedded into session tokens.
func (u *User) Identity() sec.Identity {
	return sec.Identity{
		UserID:       u.ID,
		Username:     u.Username,
		Role:         u.Role,
		TokenVersion: u.TokenVersion,
	}
}
