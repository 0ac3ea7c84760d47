// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

/*
Package users implements administrative account management.

It provides the admin-facing CRUD surface over the accounts owned by the
auth package: listing with filters, provisioning, profile and role updates,
activation toggling, and password resets.

# Architecture

  - Entities: reuses [auth.User]; this package adds no account type of its own.
  - Security: every mutation that affects a user's authorization (role change,
    deactivation, password reset, deletion) advances the account's token
    version so outstanding sessions die immediately.
  - Auditing: all mutations are recorded through the audit trail.
*/
package users

import (
	"time"

	"github.com/kanrihq/kanri/internal/auth"
	"github.com/kanrihq/kanri/internal/platform/sec"
)

// Filter narrows an account listing.
type Filter struct {
	// Search matches username or display name, case-insensitively.
	Search string

	// Role filters to a single role when set.
	Role sec.UserRole

	// IsActive filters by activation state when non-nil.
	IsActive *bool

	// DepartmentID filters to members of one department when non-nil.
	DepartmentID *int64
}

// CreateInput carries the fields for provisioning a new account.
type CreateInput struct {
	Username     string       `json:"username"`
	Password     string       `json:"password"`
	DisplayName  string       `json:"display_name"`
	Role         sec.UserRole `json:"role"`
	DepartmentID *int64       `json:"department_id"`
	SectionID    *int64       `json:"section_id"`
}

// Summary is the compact account projection returned by list endpoints.
// Detail endpoints return the full [auth.User].
type Summary struct {
	ID           int64        `json:"id"`
	Username     string       `json:"username"`
	DisplayName  string       `json:"display_name"`
	Role         sec.UserRole `json:"role"`
	IsActive     bool         `json:"is_active"`
	DepartmentID *int64       `json:"department_id,omitempty"`
	SectionID    *int64       `json:"section_id,omitempty"`
	LastLoginAt  *time.Time   `json:"last_login_at,omitempty"`
}

func toSummary(user *auth.User) Summary {
	return Summary{
		ID:           user.ID,
		Username:     user.Username,
		DisplayName:  user.DisplayName,
		Role:         user.Role,
		IsActive:     user.IsActive,
		DepartmentID: user.DepartmentID,
		SectionID:    user.SectionID,
		LastLoginAt:  user.LastLoginAt,
	}
}

// UpdateInput carries the mutable profile fields. Nil pointers mean
// "leave unchanged".
type UpdateInput struct {
	DisplayName  *string       `json:"display_name"`
	Role         *sec.UserRole `json:"role"`
	DepartmentID *int64        `json:"department_id"`
	SectionID    *int64        `json:"section_id"`
}
