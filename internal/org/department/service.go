// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package department

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/kanrihq/kanri/internal/system/audit"
	"github.com/kanrihq/kanri/pkg/pagination"
	"github.com/kanrihq/kanri/pkg/slug"
)

// Service implements department management.
type Service struct {
	store   Store
	auditor audit.Recorder
	logger  *slog.Logger
}

// NewService constructs a new [Service].
func NewService(store Store, auditor audit.Recorder, logger *slog.Logger) *Service {
	return &Service{store: store, auditor: auditor, logger: logger}
}

// List returns a page of departments, optionally filtered by a name search.
func (service *Service) List(ctx context.Context, search string, params pagination.Params) ([]*Department, int, error) {
	return service.store.List(ctx, search, params)
}

// Get retrieves a single department.
func (service *Service) Get(ctx context.Context, id int64) (*Department, error) {
	return service.store.FindByID(ctx, id)
}

// Create adds a department, deriving its slug from the name.
func (service *Service) Create(ctx context.Context, actorID int64, name, description, clientIP string) (*Department, error) {
	dept := &Department{
		Name:        name,
		Slug:        slug.From(name),
		Description: description,
	}
	if err := service.store.Create(ctx, dept); err != nil {
		return nil, err
	}

	service.record(ctx, actorID, audit.ActionCreate, dept.ID, nil, dept, clientIP)
	return dept, nil
}

// Update renames a department. The slug follows the new name.
func (service *Service) Update(ctx context.Context, actorID int64, id int64, name, description, clientIP string) (*Department, error) {
	current, err := service.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	snapshot := *current

	current.Name = name
	current.Slug = slug.From(name)
	current.Description = description

	updated, err := service.store.Update(ctx, current)
	if err != nil {
		return nil, err
	}

	service.record(ctx, actorID, audit.ActionUpdate, id, &snapshot, updated, clientIP)
	return updated, nil
}

// Delete removes a department. Referenced departments yield a Conflict.
func (service *Service) Delete(ctx context.Context, actorID int64, id int64, clientIP string) error {
	snapshot, err := service.store.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := service.store.Delete(ctx, id); err != nil {
		return err
	}

	service.record(ctx, actorID, audit.ActionDelete, id, snapshot, nil, clientIP)
	return nil
}

func (service *Service) record(ctx context.Context, actorID int64, action string, deptID int64, before, after *Department, clientIP string) {
	var beforeJSON, afterJSON json.RawMessage
	if before != nil {
		beforeJSON, _ = json.Marshal(before)
	}
	if after != nil {
		afterJSON, _ = json.Marshal(after)
	}

	service.auditor.Record(ctx, audit.Entry{
		ActorID:    &actorID,
		Action:     action,
		EntityType: audit.EntityDepartment,
		EntityID:   strconv.FormatInt(deptID, 10),
		Before:     beforeJSON,
		After:      afterJSON,
		IPAddress:  clientIP,
	})
}
