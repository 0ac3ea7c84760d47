// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

// In-package so the tests can pin the service clock.
package settings

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanrihq/kanri/internal/platform/apperr"
	"github.com/kanrihq/kanri/internal/platform/constants"
	"github.com/kanrihq/kanri/internal/system/audit"
)

type fakeStore struct {
	values map[string]string
	gets   int
}

func (s *fakeStore) Get(_ context.Context, key string) (*Setting, error) {
	s.gets++
	value, ok := s.values[key]
	if !ok {
		return nil, apperr.NotFound("Setting not found")
	}
	return &Setting{Key: key, Value: value}, nil
}

func (s *fakeStore) List(context.Context) ([]*Setting, error) {
	settings := make([]*Setting, 0, len(s.values))
	for key, value := range s.values {
		settings = append(settings, &Setting{Key: key, Value: value})
	}
	return settings, nil
}

func (s *fakeStore) Update(_ context.Context, key, value string) (*Setting, error) {
	if _, ok := s.values[key]; !ok {
		return nil, apperr.NotFound("Setting not found")
	}
	s.values[key] = value
	return &Setting{Key: key, Value: value}, nil
}

type fakeRecorder struct {
	entries []audit.Entry
}

func (r *fakeRecorder) Record(_ context.Context, entry audit.Entry) {
	r.entries = append(r.entries, entry)
}

func newTestService(store *fakeStore, recorder *fakeRecorder) (*Service, *time.Time) {
	service := NewService(store, recorder, slog.New(slog.NewTextHandler(io.Discard, nil)))

	clock := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return clock }
	return service, &clock
}

/*
TestMaintenanceStatus_CachesWithinTTL verifies the read-through cache: the
second read inside the TTL never touches the store, and advancing the clock
past the TTL forces a fresh read.
*/
func TestMaintenanceStatus_CachesWithinTTL(t *testing.T) {
	store := &fakeStore{values: map[string]string{
		constants.SettingMaintenanceMode:    "false",
		constants.SettingMaintenanceMessage: "",
	}}
	service, clock := newTestService(store, &fakeRecorder{})
	ctx := context.Background()

	// 1. First read goes to the store.
	enabled, _, err := service.MaintenanceStatus(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.Equal(t, 1, store.gets)

	// 2. A second read within the TTL is served from cache, so the store does
	// not yet see the flipped value.
	store.values[constants.SettingMaintenanceMode] = "true"
	enabled, _, err = service.MaintenanceStatus(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.Equal(t, 1, store.gets)

	// 3. Past the TTL the entry is stale and the store is consulted again.
	*clock = clock.Add(constants.SettingsCacheTTL + time.Second)
	enabled, message, err := service.MaintenanceStatus(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.Empty(t, message)
}

/*
TestMaintenanceStatus_MalformedFlagCountsAsDisabled verifies that a stored
value that doesn't parse as a boolean disables maintenance rather than
erroring.
*/
func TestMaintenanceStatus_MalformedFlagCountsAsDisabled(t *testing.T) {
	store := &fakeStore{values: map[string]string{
		constants.SettingMaintenanceMode: "banana",
	}}
	service, _ := newTestService(store, &fakeRecorder{})

	enabled, _, err := service.MaintenanceStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, enabled)
}

/*
TestMaintenanceStatus_MissingMessageIsCosmetic verifies that the gate still
engages when the banner message row is unreadable.
*/
func TestMaintenanceStatus_MissingMessageIsCosmetic(t *testing.T) {
	store := &fakeStore{values: map[string]string{
		constants.SettingMaintenanceMode: "true",
	}}
	service, _ := newTestService(store, &fakeRecorder{})

	enabled, message, err := service.MaintenanceStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.Empty(t, message)
}

/*
TestSetMaintenance_InvalidatesCacheImmediately verifies write-through
invalidation: an admin toggling maintenance sees the new state on the very
next read, without waiting out the TTL.
*/
func TestSetMaintenance_InvalidatesCacheImmediately(t *testing.T) {
	store := &fakeStore{values: map[string]string{
		constants.SettingMaintenanceMode:    "false",
		constants.SettingMaintenanceMessage: "",
	}}
	recorder := &fakeRecorder{}
	service, _ := newTestService(store, recorder)
	ctx := context.Background()

	// Warm the cache with the disabled state.
	enabled, _, err := service.MaintenanceStatus(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	message := "Scheduled database upgrade."
	require.NoError(t, service.SetMaintenance(ctx, 1, true, &message, "10.0.0.1"))

	enabled, gotMessage, err := service.MaintenanceStatus(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.Equal(t, "Scheduled database upgrade.", gotMessage)

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	assert.Equal(t, audit.ActionSettingWrite, entry.Action)
	assert.Equal(t, constants.SettingMaintenanceMode, entry.EntityID)
	assert.JSONEq(t, `{"maintenance_mode":"false"}`, string(entry.Before))
	assert.JSONEq(t, `{"maintenance_mode":"true"}`, string(entry.After))
}

/*
TestUpdate_UnknownKey verifies that updates never create settings rows.
*/
func TestUpdate_UnknownKey(t *testing.T) {
	store := &fakeStore{values: map[string]string{}}
	service, _ := newTestService(store, &fakeRecorder{})

	_, err := service.Update(context.Background(), 1, "no_such_key", "1", "10.0.0.1")
	require.Error(t, err)
}
