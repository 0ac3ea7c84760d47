// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package section

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/kanrihq/kanri/internal/system/audit"
	"github.com/kanrihq/kanri/pkg/pagination"
	"github.com/kanrihq/kanri/pkg/slug"
)

// Service implements section management.
type Service struct {
	store   Store
	auditor audit.Recorder
	logger  *slog.Logger
}

// NewService constructs a new [Service].
func NewService(store Store, auditor audit.Recorder, logger *slog.Logger) *Service {
	return &Service{store: store, auditor: auditor, logger: logger}
}

// List returns a page of sections, optionally scoped to one department.
func (service *Service) List(ctx context.Context, departmentID *int64, params pagination.Params) ([]*Section, int, error) {
	return service.store.List(ctx, departmentID, params)
}

// Get retrieves a single section.
func (service *Service) Get(ctx context.Context, id int64) (*Section, error) {
	return service.store.FindByID(ctx, id)
}

// Create adds a section under a department, deriving its slug from the name.
func (service *Service) Create(ctx context.Context, actorID int64, departmentID int64, name, clientIP string) (*Section, error) {
	sect := &Section{
		DepartmentID: departmentID,
		Name:         name,
		Slug:         slug.From(name),
	}
	if err := service.store.Create(ctx, sect); err != nil {
		return nil, err
	}

	service.record(ctx, actorID, audit.ActionCreate, sect.ID, nil, sect, clientIP)
	return sect, nil
}

// Update renames a section. The slug follows the new name.
func (service *Service) Update(ctx context.Context, actorID int64, id int64, name, clientIP string) (*Section, error) {
	current, err := service.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	snapshot := *current

	current.Name = name
	current.Slug = slug.From(name)

	updated, err := service.store.Update(ctx, current)
	if err != nil {
		return nil, err
	}

	service.record(ctx, actorID, audit.ActionUpdate, id, &snapshot, updated, clientIP)
	return updated, nil
}

// Delete removes a section. Sections with members yield a Conflict.
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

func (service *Service) record(ctx context.Context, actorID int64, action string, sectionID int64, before, after *Section, clientIP string) {
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
		EntityType: audit.EntitySection,
		EntityID:   strconv.FormatInt(sectionID, 10),
		Before:     beforeJSON,
		After:      afterJSON,
		IPAddress:  clientIP,
	})
}
