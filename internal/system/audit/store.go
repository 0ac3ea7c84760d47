// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package audit

import (
	"context"

	"github.com/kanrihq/kanri/pkg/pagination"
)

// Store defines the data access contract for audit entries.
type Store interface {
	// Insert persists a new audit entry. The entry's ID and CreatedAt are
	// assigned by the database.
	Insert(ctx context.Context, entry *Entry) error

	// List returns entries ordered newest-first, with the total count for
	// pagination metadata. An empty filter matches everything.
	List(ctx context.Context, filter Filter, params pagination.Params) ([]*Entry, int, error)
}

// Filter narrows an audit listing.
type Filter struct {
	ActorID *int64

	// Actions matches any of the listed action names.
	Actions []string

	EntityType string
}
