// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package users

import (
	"context"

	"github.com/kanrihq/kanri/internal/auth"
	"github.com/kanrihq/kanri/pkg/pagination"
)

// Store defines the persistence contract for administrative account
// management. Soft-deleted accounts are invisible to every method.
type Store interface {
	// List returns a page of accounts matching the filter, ordered by
	// username, with the total match count.
	List(ctx context.Context, filter Filter, params pagination.Params) ([]*auth.User, int, error)

	// FindByID retrieves an account by ID, or a NotFound error.
	FindByID(ctx context.Context, id int64) (*auth.User, error)

	// Create inserts a new account. The user's ID, CreatedAt and UpdatedAt
	// are assigned by the database. A duplicate username yields a Conflict.
	Create(ctx context.Context, user *auth.User) error

	// Update persists the mutable profile fields (display name, role,
	// department, section) and returns the updated row.
	Update(ctx context.Context, user *auth.User) (*auth.User, error)

	// SetActive toggles activation and advances the token version in the
	// same statement, so deactivation kills live sessions atomically.
	SetActive(ctx context.Context, id int64, active bool) (*auth.User, error)

	// SetPasswordHash replaces the password hash and advances the token
	// version.
	SetPasswordHash(ctx context.Context, id int64, hash string) error

	// SoftDelete flags the account deleted and advances the token version.
	SoftDelete(ctx context.Context, id int64) error

	// BumpTokenVersion advances the token version alone. Used when a role
	// change must invalidate outstanding sessions.
	BumpTokenVersion(ctx context.Context, id int64) error
}
