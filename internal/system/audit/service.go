// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package audit

import (
	"context"
	"log/slog"

	"github.com/kanrihq/kanri/pkg/pagination"
)

// Recorder is the write-side contract consumed by other services.
//
// # Why an interface?
//
// Domain services (auth, users, org) only ever append; defining the narrow
// contract here lets them take a Recorder without depending on the full
// service, and lets tests substitute a no-op or capturing fake.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// Service implements audit recording and admin-facing listing.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService constructs a new [Service].
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Record appends an entry to the audit trail.
//
// Recording is best-effort: failures are logged and swallowed so that an
// audit-store outage never fails the originating request.
func (service *Service) Record(ctx context.Context, entry Entry) {
	if err := service.store.Insert(ctx, &entry); err != nil {
		service.logger.ErrorContext(ctx, "audit_record_failed",
			slog.String("action", entry.Action),
			slog.String("entity_type", entry.EntityType),
			slog.Any("error", err),
		)
	}
}

// List returns a page of audit entries, newest first.
func (service *Service) List(ctx context.Context, filter Filter, params pagination.Params) ([]*Entry, int, error) {
	return service.store.List(ctx, filter, params)
}
