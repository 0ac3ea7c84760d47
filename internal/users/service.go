// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package users

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/kanrihq/kanri/internal/auth"
	"github.com/kanrihq/kanri/internal/platform/apperr"
	"github.com/kanrihq/kanri/internal/platform/sec"
	"github.com/kanrihq/kanri/internal/system/audit"
	"github.com/kanrihq/kanri/pkg/pagination"
)

// Service implements administrative account management.
type Service struct {
	store   Store
	auditor audit.Recorder
	logger  *slog.Logger
}

// NewService constructs a new [Service].
func NewService(store Store, auditor audit.Recorder, logger *slog.Logger) *Service {
	return &Service{store: store, auditor: auditor, logger: logger}
}

// List returns a page of accounts matching the filter.
func (service *Service) List(ctx context.Context, filter Filter, params pagination.Params) ([]*auth.User, int, error) {
	return service.store.List(ctx, filter, params)
}

// Get retrieves a single account.
func (service *Service) Get(ctx context.Context, id int64) (*auth.User, error) {
	return service.store.FindByID(ctx, id)
}

// Create provisions a new account with a bcrypt-hashed password.
func (service *Service) Create(ctx context.Context, actorID int64, input CreateInput, clientIP string) (*auth.User, error) {
	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &auth.User{
		Username:     input.Username,
		PasswordHash: passwordHash,
		DisplayName:  input.DisplayName,
		Role:         input.Role,
		IsActive:     true,
		DepartmentID: input.DepartmentID,
		SectionID:    input.SectionID,
	}
	if err := service.store.Create(ctx, user); err != nil {
		return nil, err
	}

	service.record(ctx, actorID, audit.ActionCreate, user.ID, nil, user, clientIP)
	return user, nil
}

// Update applies the non-nil fields of input to an account.
//
// A role change advances the account's token version: sessions issued under
// the old role must not keep their old authority.
func (service *Service) Update(ctx context.Context, actorID int64, id int64, input UpdateInput, clientIP string) (*auth.User, error) {
	current, err := service.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	snapshot := *current

	roleChanged := false
	if input.DisplayName != nil {
		current.DisplayName = *input.DisplayName
	}
	if input.Role != nil && *input.Role != current.Role {
		if actorID == id {
			return nil, apperr.Forbidden("You cannot change your own role")
		}
		current.Role = *input.Role
		roleChanged = true
	}
	if input.DepartmentID != nil {
		current.DepartmentID = input.DepartmentID
	}
	if input.SectionID != nil {
		current.SectionID = input.SectionID
	}

	updated, err := service.store.Update(ctx, current)
	if err != nil {
		return nil, err
	}

	if roleChanged {
		if err := service.store.BumpTokenVersion(ctx, id); err != nil {
			return nil, err
		}
	}

	service.record(ctx, actorID, audit.ActionUpdate, id, &snapshot, updated, clientIP)
	return updated, nil
}

// SetActive activates or deactivates an account.
//
// Deactivation advances the token version, so the user's live session dies
// on its next request. Admins cannot deactivate themselves: that would strand
// the platform with no one able to undo it.
func (service *Service) SetActive(ctx context.Context, actorID int64, id int64, active bool, clientIP string) (*auth.User, error) {
	if !active && actorID == id {
		return nil, apperr.Forbidden("You cannot deactivate your own account")
	}

	snapshot, err := service.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := service.store.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}

	action := audit.ActionActivate
	if !active {
		action = audit.ActionDeactivate
	}
	service.record(ctx, actorID, action, id, snapshot, updated, clientIP)
	return updated, nil
}

// ResetPassword replaces an account's password with an admin-chosen one and
// invalidates the account's outstanding sessions.
func (service *Service) ResetPassword(ctx context.Context, actorID int64, id int64, newPassword string, clientIP string) error {
	if _, err := service.store.FindByID(ctx, id); err != nil {
		return err
	}

	passwordHash, err := sec.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}

	if err := service.store.SetPasswordHash(ctx, id, passwordHash); err != nil {
		return err
	}

	// Deliberately no before/after payload: password material never enters
	// the audit trail.
	service.record(ctx, actorID, audit.ActionPasswordSet, id, nil, nil, clientIP)
	return nil
}

// Delete soft-deletes an account. Self-deletion is forbidden for the same
// reason self-deactivation is.
func (service *Service) Delete(ctx context.Context, actorID int64, id int64, clientIP string) error {
	if actorID == id {
		return apperr.Forbidden("You cannot delete your own account")
	}

	snapshot, err := service.store.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := service.store.SoftDelete(ctx, id); err != nil {
		return err
	}

	service.record(ctx, actorID, audit.ActionDelete, id, snapshot, nil, clientIP)
	return nil
}

// record writes an audit entry for a user mutation. Snapshots marshal through
// auth.User's JSON tags, which already omit the password hash.
func (service *Service) record(ctx context.Context, actorID int64, action string, userID int64, before, after *auth.User, clientIP string) {
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
		EntityType: audit.EntityUser,
		EntityID:   strconv.FormatInt(userID, 10),
		Before:     beforeJSON,
		After:      afterJSON,
		IPAddress:  clientIP,
	})
}
