// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

// Package section manages the second level of the organizational hierarchy.
// Every section belongs to exactly one department.
package section

import (
	"context"
	"time"

	"github.com/kanrihq/kanri/pkg/pagination"
)

// Section represents an organizational unit below a department.
type Section struct {
	ID           int64     `json:"id"`
	DepartmentID int64     `json:"department_id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store defines the persistence contract for sections.
type Store interface {
	// List returns a page of sections ordered by name. A non-nil departmentID
	// filters to one department.
	List(ctx context.Context, departmentID *int64, params pagination.Params) ([]*Section, int, error)

	// FindByID retrieves a section, or a NotFound error.
	FindByID(ctx context.Context, id int64) (*Section, error)

	// Create inserts a new section. An unknown department or a duplicate
	// slug within the department yields a Conflict.
	Create(ctx context.Context, sect *Section) error

	// Update persists name and slug changes. The parent department is fixed
	// at creation time.
	Update(ctx context.Context, sect *Section) (*Section, error)

	// Delete removes a section. Rows still referenced by accounts yield a
	// Conflict from the foreign key constraint.
	Delete(ctx context.Context, id int64) error
}
