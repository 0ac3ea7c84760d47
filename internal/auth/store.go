// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package auth

import (
	"context"
)

// CredentialStore defines the data access contract for credential records.
//
// # Review Process
//
// This interface is placed in a separate file from user.go so entity changes
// and storage-contract changes can be reviewed independently by the team.
//
// # Implementations
//
// The canonical implementation for Kanri is PostgreSQL ([PostgresStore]).
type CredentialStore interface {
	// FindByUsername returns the account with the given username.
	//
	// Returns [apperr.NotFound] if the account does not exist or is
	// soft-deleted.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByID returns the account with the given ID.
	//
	// Returns [apperr.NotFound] if the account does not exist or is
	// soft-deleted.
	FindByID(ctx context.Context, id int64) (*User, error)

	// AdvanceVersionForLogin atomically increments the account's token version
	// and stamps lastloginat, returning the new version.
	//
	// The increment and the read happen in a single UPDATE ... RETURNING
	// statement, so two concurrent logins for the same account can never both
	// observe the same pre-increment version.
	AdvanceVersionForLogin(ctx context.Context, id int64) (int, error)

	// AdvanceVersion atomically increments the account's token version
	// without touching lastloginat, returning the new version. Used by logout
	// and by admin-forced invalidation (deactivation, password reset).
	AdvanceVersion(ctx context.Context, id int64) (int, error)
}
