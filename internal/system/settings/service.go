// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package settings

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/kanrihq/kanri/internal/platform/constants"
	"github.com/kanrihq/kanri/internal/system/audit"
)

// cachedValue is a setting value with its staleness deadline.
type cachedValue struct {
	value     string
	expiresAt time.Time
}

// Service reads and writes system settings with a per-key read-through cache.
//
// # Caching
//
// The maintenance flag is consulted on every request, so reads go through a
// small in-process cache with a fixed TTL ([constants.SettingsCacheTTL]).
// Writes through this service invalidate the local cache immediately; other
// instances converge within one TTL. The clock is injectable for tests.
type Service struct {
	store   Store
	auditor audit.Recorder
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]cachedValue
	now   func() time.Time
}

// NewService constructs a new [Service].
func NewService(store Store, auditor audit.Recorder, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		auditor: auditor,
		logger:  logger,
		cache:   make(map[string]cachedValue),
		now:     time.Now,
	}
}

// cachedGet returns the value for key, reading through the cache.
func (service *Service) cachedGet(ctx context.Context, key string) (string, error) {
	service.mu.Lock()
	if entry, ok := service.cache[key]; ok && service.now().Before(entry.expiresAt) {
		service.mu.Unlock()
		return entry.value, nil
	}
	service.mu.Unlock()

	setting, err := service.store.Get(ctx, key)
	if err != nil {
		return "", err
	}

	service.mu.Lock()
	service.cache[key] = cachedValue{value: setting.Value, expiresAt: service.now().Add(constants.SettingsCacheTTL)}
	service.mu.Unlock()

	return setting.Value, nil
}

// invalidate drops a key from the cache after a write.
func (service *Service) invalidate(key string) {
	service.mu.Lock()
	delete(service.cache, key)
	service.mu.Unlock()
}

// MaintenanceStatus reports whether maintenance mode is enabled, and the
// banner message to show when it is.
//
// Any non-"true" stored value (including a malformed one) counts as disabled.
// A store failure is returned to the caller; the request gate treats it as
// "not in maintenance" rather than blocking traffic on a settings outage.
func (service *Service) MaintenanceStatus(ctx context.Context) (bool, string, error) {
	rawFlag, err := service.cachedGet(ctx, constants.SettingMaintenanceMode)
	if err != nil {
		return false, "", err
	}

	enabled, _ := strconv.ParseBool(rawFlag)
	if !enabled {
		return false, "", nil
	}

	message, err := service.cachedGet(ctx, constants.SettingMaintenanceMessage)
	if err != nil {
		// The flag alone is enough to gate; a missing message is cosmetic.
		service.logger.WarnContext(ctx, "maintenance_message_unavailable", slog.Any("error", err))
		message = ""
	}

	return true, message, nil
}

// SetMaintenance enables or disables maintenance mode, optionally updating
// the banner message, and records the change in the audit trail.
func (service *Service) SetMaintenance(ctx context.Context, actorID int64, enabled bool, message *string, clientIP string) error {
	previous, err := service.store.Get(ctx, constants.SettingMaintenanceMode)
	if err != nil {
		return err
	}

	updated, err := service.store.Update(ctx, constants.SettingMaintenanceMode, strconv.FormatBool(enabled))
	if err != nil {
		return err
	}
	service.invalidate(constants.SettingMaintenanceMode)

	if message != nil {
		if _, err := service.store.Update(ctx, constants.SettingMaintenanceMessage, *message); err != nil {
			return err
		}
		service.invalidate(constants.SettingMaintenanceMessage)
	}

	before, _ := json.Marshal(map[string]string{constants.SettingMaintenanceMode: previous.Value})
	after, _ := json.Marshal(map[string]string{constants.SettingMaintenanceMode: updated.Value})
	service.auditor.Record(ctx, audit.Entry{
		ActorID:    &actorID,
		Action:     audit.ActionSettingWrite,
		EntityType: audit.EntitySetting,
		EntityID:   constants.SettingMaintenanceMode,
		Before:     before,
		After:      after,
		IPAddress:  clientIP,
	})

	return nil
}

// List returns all settings. Admin-only.
func (service *Service) List(ctx context.Context) ([]*Setting, error) {
	return service.store.List(ctx)
}

// Update overwrites a single setting value and records the change.
func (service *Service) Update(ctx context.Context, actorID int64, key, value, clientIP string) (*Setting, error) {
	previous, err := service.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	updated, err := service.store.Update(ctx, key, value)
	if err != nil {
		return nil, err
	}
	service.invalidate(key)

	before, _ := json.Marshal(map[string]string{key: previous.Value})
	after, _ := json.Marshal(map[string]string{key: updated.Value})
	service.auditor.Record(ctx, audit.Entry{
		ActorID:    &actorID,
		Action:     audit.ActionSettingWrite,
		EntityType: audit.EntitySetting,
		EntityID:   key,
		Before:     before,
		After:      after,
		IPAddress:  clientIP,
	})

	return updated, nil
}
