// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package settings

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kanrihq/kanri/internal/platform/database/schema"
	"github.com/kanrihq/kanri/internal/platform/dberr"
)

// PostgresStore implements [Store] on the system.setting table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a [PostgresStore].
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func settingColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s",
		schema.SystemSetting.ID, schema.SystemSetting.Key,
		schema.SystemSetting.Value, schema.SystemSetting.Description,
		schema.SystemSetting.UpdatedAt,
	)
}

func scanSetting(row interface{ Scan(...any) error }) (*Setting, error) {
	var setting Setting
	err := row.Scan(&setting.ID, &setting.Key, &setting.Value, &setting.Description, &setting.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (store *PostgresStore) Get(ctx context.Context, key string) (*Setting, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1
	`, settingColumns(), schema.SystemSetting.Table, schema.SystemSetting.Key)

	setting, err := scanSetting(store.db.QueryRow(ctx, query, key))
	if err != nil {
		return nil, dberr.Wrap(err, "get_setting")
	}

	return setting, nil
}

func (store *PostgresStore) List(ctx context.Context) ([]*Setting, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s ORDER BY %s
	`, settingColumns(), schema.SystemSetting.Table, schema.SystemSetting.Key)

	rows, err := store.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_settings")
	}
	defer rows.Close()

	var settings []*Setting
	for rows.Next() {
		setting, err := scanSetting(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_setting")
		}
		settings = append(settings, setting)
	}

	return settings, rows.Err()
}

func (store *PostgresStore) Update(ctx context.Context, key, value string) (*Setting, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.SystemSetting.Table,
		schema.SystemSetting.Value, schema.SystemSetting.UpdatedAt,
		schema.SystemSetting.Key,
		settingColumns(),
	)

	setting, err := scanSetting(store.db.QueryRow(ctx, query, key, value))
	if err != nil {
		return nil, dberr.Wrap(err, "update_setting")
	}

	return setting, nil
}
