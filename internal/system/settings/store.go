// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package settings

import "context"

// Store defines the data access contract for system settings.
type Store interface {
	// Get returns the setting for the given key, or a NotFound error.
	Get(ctx context.Context, key string) (*Setting, error)

	// List returns all settings ordered by key.
	List(ctx context.Context) ([]*Setting, error)

	// Update overwrites the value of an existing key and returns the updated
	// row. Unknown keys yield a NotFound error; keys are never created here.
	Update(ctx context.Context, key, value string) (*Setting, error)
}
