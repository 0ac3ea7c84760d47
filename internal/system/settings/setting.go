// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

// Package settings manages runtime configuration stored in the database,
// most importantly the maintenance-mode switch.
package settings

import "time"

// Setting is a single key/value row from system.setting.
//
// Values are stored as strings; typed accessors live on the service. Keys
// are fixed at migration time — the API can update values but never create
// or delete keys.
type Setting struct {
	ID          int64     `json:"id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
