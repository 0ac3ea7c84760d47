// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

/*
Package department manages the top level of the organizational hierarchy.

Departments group sections, and accounts reference both. Deleting a
department that still has sections or members fails with a conflict rather
than cascading.
*/
package department

import (
	"context"
	"time"

	"github.com/kanrihq/kanri/pkg/pagination"
)

// Department represents a top-level organizational unit.
type Department struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store defines the persistence contract for departments.
type Store interface {
	// List returns a page of departments ordered by name, with the total count.
	List(ctx context.Context, search string, params pagination.Params) ([]*Department, int, error)

	// FindByID retrieves a department, or a NotFound error.
	FindByID(ctx context.Context, id int64) (*Department, error)

	// Create inserts a new department. ID and timestamps are assigned by the
	// database; a duplicate name or slug yields a Conflict.
	Create(ctx context.Context, dept *Department) error

	// Update persists name, slug and description changes.
	Update(ctx context.Context, dept *Department) (*Department, error)

	// Delete removes a department. Rows still referenced by sections or
	// accounts yield a Conflict from the foreign key constraint.
	Delete(ctx context.Context, id int64) error
}
