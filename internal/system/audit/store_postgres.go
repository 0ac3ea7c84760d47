// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kanrihq/kanri/internal/platform/database/schema"
	"github.com/kanrihq/kanri/internal/platform/dberr"
	"github.com/kanrihq/kanri/pkg/pagination"
)

// PostgresStore implements [Store] on the system.auditlog table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a [PostgresStore].
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (store *PostgresStore) Insert(ctx context.Context, entry *Entry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s, %s
	`,
		schema.SystemAuditLog.Table,
		schema.SystemAuditLog.ActorID, schema.SystemAuditLog.Action,
		schema.SystemAuditLog.EntityType, schema.SystemAuditLog.EntityID,
		schema.SystemAuditLog.Before, schema.SystemAuditLog.After,
		schema.SystemAuditLog.IPAddress,
		schema.SystemAuditLog.ID, schema.SystemAuditLog.CreatedAt,
	)

	err := store.db.QueryRow(ctx, query,
		entry.ActorID, entry.Action, entry.EntityType, entry.EntityID,
		entry.Before, entry.After, entry.IPAddress,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "insert_audit_entry")
	}

	return nil
}

func (store *PostgresStore) List(ctx context.Context, filter Filter, params pagination.Params) ([]*Entry, int, error) {
	// Build the WHERE clause from the optional filter fields.
	where := "WHERE 1=1"
	args := []any{}

	if filter.ActorID != nil {
		args = append(args, *filter.ActorID)
		where += fmt.Sprintf(" AND %s = $%d", schema.SystemAuditLog.ActorID, len(args))
	}
	if len(filter.Actions) > 0 {
		args = append(args, filter.Actions)
		where += fmt.Sprintf(" AND %s = ANY($%d)", schema.SystemAuditLog.Action, len(args))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		where += fmt.Sprintf(" AND %s = $%d", schema.SystemAuditLog.EntityType, len(args))
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, schema.SystemAuditLog.Table, where)

	total := 0
	if err := store.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_audit_entries")
	}

	args = append(args, params.Limit, params.Offset())
	listQuery := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s %s
		ORDER BY %s DESC
		LIMIT $%d OFFSET $%d
	`,
		schema.SystemAuditLog.ID, schema.SystemAuditLog.ActorID,
		schema.SystemAuditLog.Action, schema.SystemAuditLog.EntityType,
		schema.SystemAuditLog.EntityID, schema.SystemAuditLog.Before,
		schema.SystemAuditLog.After, schema.SystemAuditLog.IPAddress,
		schema.SystemAuditLog.CreatedAt,
		schema.SystemAuditLog.Table, where,
		schema.SystemAuditLog.CreatedAt,
		len(args)-1, len(args),
	)

	rows, err := store.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_audit_entries")
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		entry := &Entry{}
		if err := rows.Scan(
			&entry.ID, &entry.ActorID, &entry.Action, &entry.EntityType,
			&entry.EntityID, &entry.Before, &entry.After, &entry.IPAddress,
			&entry.CreatedAt,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_audit_entry")
		}
		entries = append(entries, entry)
	}

	return entries, total, nil
}
