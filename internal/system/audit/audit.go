// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

// Package audit provides the append-only activity trail for the Kanri platform.
//
// # Architecture
//
// Every security-relevant operation (logins, logouts, CRUD mutations) is
// recorded as an [Entry]. Recording is best-effort: a failed write is logged
// server-side but never fails the originating request.
package audit

import (
	"encoding/json"
	"time"
)

// Entry represents a single audit trail record.
type Entry struct {
	ID         int64           `json:"id"`
	ActorID    *int64          `json:"actor_id,omitempty"` // nil for anonymous actions (e.g. failed logins)
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id,omitempty"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	IPAddress  string          `json:"ip_address,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// # Well-known Actions

const (
	ActionLoginSuccess = "login_success"
	ActionLoginFailed  = "login_failed"
	ActionLogout       = "logout"
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
	ActionActivate     = "activate"
	ActionDeactivate   = "deactivate"
	ActionPasswordSet  = "password_reset"
	ActionSettingWrite = "setting_write"
)

// # Entity Types

const (
	EntityUser       = "user"
	EntityDepartment = "department"
	EntitySection    = "section"
	EntitySetting    = "setting"
	EntitySession    = "session"
)
