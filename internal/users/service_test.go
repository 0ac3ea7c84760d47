// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package users_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanrihq/kanri/internal/auth"
	"github.com/kanrihq/kanri/internal/platform/apperr"
	"github.com/kanrihq/kanri/internal/platform/sec"
	"github.com/kanrihq/kanri/internal/system/audit"
	"github.com/kanrihq/kanri/internal/users"
	"github.com/kanrihq/kanri/pkg/pagination"
)

type fakeStore struct {
	accounts map[int64]*auth.User
	nextID   int64
}

func newFakeStore(seed ...*auth.User) *fakeStore {
	store := &fakeStore{accounts: make(map[int64]*auth.User), nextID: 1}
	for _, user := range seed {
		clone := *user
		store.accounts[user.ID] = &clone
		if user.ID >= store.nextID {
			store.nextID = user.ID + 1
		}
	}
	return store
}

func (s *fakeStore) List(_ context.Context, _ users.Filter, _ pagination.Params) ([]*auth.User, int, error) {
	listed := make([]*auth.User, 0, len(s.accounts))
	for _, user := range s.accounts {
		clone := *user
		listed = append(listed, &clone)
	}
	return listed, len(listed), nil
}

func (s *fakeStore) FindByID(_ context.Context, id int64) (*auth.User, error) {
	user, ok := s.accounts[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	clone := *user
	return &clone, nil
}

func (s *fakeStore) Create(_ context.Context, user *auth.User) error {
	for _, existing := range s.accounts {
		if existing.Username == user.Username {
			return apperr.Conflict("Username already exists")
		}
	}
	user.ID = s.nextID
	s.nextID++
	clone := *user
	s.accounts[user.ID] = &clone
	return nil
}

func (s *fakeStore) Update(_ context.Context, user *auth.User) (*auth.User, error) {
	stored, ok := s.accounts[user.ID]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	stored.DisplayName = user.DisplayName
	stored.Role = user.Role
	stored.DepartmentID = user.DepartmentID
	stored.SectionID = user.SectionID
	clone := *stored
	return &clone, nil
}

func (s *fakeStore) SetActive(_ context.Context, id int64, active bool) (*auth.User, error) {
	stored, ok := s.accounts[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	stored.IsActive = active
	stored.TokenVersion++
	clone := *stored
	return &clone, nil
}

func (s *fakeStore) SetPasswordHash(_ context.Context, id int64, hash string) error {
	stored, ok := s.accounts[id]
	if !ok {
		return apperr.NotFound("User not found")
	}
	stored.PasswordHash = hash
	stored.TokenVersion++
	return nil
}

func (s *fakeStore) SoftDelete(_ context.Context, id int64) error {
	stored, ok := s.accounts[id]
	if !ok {
		return apperr.NotFound("User not found")
	}
	stored.TokenVersion++
	delete(s.accounts, id)
	return nil
}

func (s *fakeStore) BumpTokenVersion(_ context.Context, id int64) error {
	stored, ok := s.accounts[id]
	if !ok {
		return apperr.NotFound("User not found")
	}
	stored.TokenVersion++
	return nil
}

type fakeRecorder struct {
	entries []audit.Entry
}

func (r *fakeRecorder) Record(_ context.Context, entry audit.Entry) {
	r.entries = append(r.entries, entry)
}

func (r *fakeRecorder) actions() []string {
	actions := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

func seedAdmin() *auth.User {
	return &auth.User{ID: 1, Username: "admin", Role: sec.RoleAdmin, IsActive: true, TokenVersion: 2}
}

func seedMember() *auth.User {
	return &auth.User{ID: 2, Username: "suzuki", DisplayName: "Suzuki", Role: sec.RoleUser, IsActive: true, TokenVersion: 5}
}

func newTestService(store *fakeStore, recorder *fakeRecorder) *users.Service {
	return users.NewService(store, recorder, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

/*
TestCreate hashes the password, activates the account and records the action.
*/
func TestCreate(t *testing.T) {
	store := newFakeStore(seedAdmin())
	recorder := &fakeRecorder{}
	service := newTestService(store, recorder)

	created, err := service.Create(context.Background(), 1, users.CreateInput{
		Username:    "tanaka",
		Password:    "initial-password",
		DisplayName: "Tanaka",
		Role:        sec.RoleUser,
	}, "10.0.0.1")
	require.NoError(t, err)

	assert.True(t, created.IsActive)
	assert.NotEqual(t, "initial-password", created.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("initial-password", created.PasswordHash))
	assert.Equal(t, []string{audit.ActionCreate}, recorder.actions())
}

/*
TestUpdate_RoleChangeBumpsTokenVersion verifies that granting or revoking a
role kills the subject's outstanding sessions, while a plain profile edit does
not.
*/
func TestUpdate_RoleChangeBumpsTokenVersion(t *testing.T) {
	store := newFakeStore(seedAdmin(), seedMember())
	service := newTestService(store, &fakeRecorder{})
	ctx := context.Background()

	// 1. A display-name change leaves the version alone.
	displayName := "Suzuki Ichiro"
	_, err := service.Update(ctx, 1, 2, users.UpdateInput{DisplayName: &displayName}, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 5, store.accounts[2].TokenVersion)

	// 2. A role change advances it.
	role := sec.RoleAdmin
	_, err = service.Update(ctx, 1, 2, users.UpdateInput{Role: &role}, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, store.accounts[2].Role)
	assert.Equal(t, 6, store.accounts[2].TokenVersion)
}

/*
TestUpdate_OwnRoleForbidden verifies that admins cannot change their own role.
*/
func TestUpdate_OwnRoleForbidden(t *testing.T) {
	store := newFakeStore(seedAdmin())
	service := newTestService(store, &fakeRecorder{})

	role := sec.RoleUser
	_, err := service.Update(context.Background(), 1, 1, users.UpdateInput{Role: &role}, "10.0.0.1")

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.HTTPStatus)
	assert.Equal(t, sec.RoleAdmin, store.accounts[1].Role)
}

/*
TestSetActive_SelfDeactivationForbidden verifies that admins cannot strand the
platform by deactivating themselves, while deactivating others works and
advances the token version.
*/
func TestSetActive_SelfDeactivationForbidden(t *testing.T) {
	store := newFakeStore(seedAdmin(), seedMember())
	recorder := &fakeRecorder{}
	service := newTestService(store, recorder)
	ctx := context.Background()

	_, err := service.SetActive(ctx, 1, 1, false, "10.0.0.1")
	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.HTTPStatus)

	updated, err := service.SetActive(ctx, 1, 2, false, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 6, store.accounts[2].TokenVersion)
	assert.Equal(t, []string{audit.ActionDeactivate}, recorder.actions())

	// Reactivating oneself is never the stranding case, only deactivation is
	// guarded.
	_, err = service.SetActive(ctx, 1, 1, true, "10.0.0.1")
	require.NoError(t, err)
}

/*
TestResetPassword verifies the hash is replaced, sessions are fenced out, and
no password material reaches the audit trail.
*/
func TestResetPassword(t *testing.T) {
	store := newFakeStore(seedAdmin(), seedMember())
	recorder := &fakeRecorder{}
	service := newTestService(store, recorder)

	require.NoError(t, service.ResetPassword(context.Background(), 1, 2, "fresh-password", "10.0.0.1"))

	assert.True(t, sec.CheckPasswordHash("fresh-password", store.accounts[2].PasswordHash))
	assert.Equal(t, 6, store.accounts[2].TokenVersion)

	require.Len(t, recorder.entries, 1)
	assert.Equal(t, audit.ActionPasswordSet, recorder.entries[0].Action)
	assert.Empty(t, recorder.entries[0].Before)
	assert.Empty(t, recorder.entries[0].After)
}

/*
TestDelete verifies soft deletion and the self-deletion guard.
*/
func TestDelete(t *testing.T) {
	store := newFakeStore(seedAdmin(), seedMember())
	recorder := &fakeRecorder{}
	service := newTestService(store, recorder)
	ctx := context.Background()

	err := service.Delete(ctx, 1, 1, "10.0.0.1")
	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.HTTPStatus)

	require.NoError(t, service.Delete(ctx, 1, 2, "10.0.0.1"))
	_, err = service.Get(ctx, 2)
	require.Error(t, err)
	assert.Equal(t, []string{audit.ActionDelete}, recorder.actions())
}
