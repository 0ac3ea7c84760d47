// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package section

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kanrihq/kanri/internal/platform/database/schema"
	"github.com/kanrihq/kanri/internal/platform/dberr"
	"github.com/kanrihq/kanri/pkg/pagination"
)

// PostgresStore implements [Store] on the org.section table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a [PostgresStore].
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func sectionColumns() string {
	t := schema.OrgSection
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s",
		t.ID, t.DepartmentID, t.Name, t.Slug, t.CreatedAt, t.UpdatedAt)
}

func scanSection(row interface{ Scan(...any) error }) (*Section, error) {
	var sect Section
	err := row.Scan(&sect.ID, &sect.DepartmentID, &sect.Name, &sect.Slug, &sect.CreatedAt, &sect.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sect, nil
}

func (store *PostgresStore) List(ctx context.Context, departmentID *int64, params pagination.Params) ([]*Section, int, error) {
	t := schema.OrgSection

	where := ""
	args := []any{}
	if departmentID != nil {
		args = append(args, *departmentID)
		where = fmt.Sprintf("WHERE %s = $1", t.DepartmentID)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", t.Table, where)
	if err := store.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_sections")
	}

	args = append(args, params.Limit, params.Offset())
	listQuery := fmt.Sprintf(`
		SELECT %s FROM %s %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, sectionColumns(), t.Table, where, t.Name, len(args)-1, len(args))

	rows, err := store.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_sections")
	}
	defer rows.Close()

	var sections []*Section
	for rows.Next() {
		sect, err := scanSection(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_section")
		}
		sections = append(sections, sect)
	}

	return sections, total, rows.Err()
}

func (store *PostgresStore) FindByID(ctx context.Context, id int64) (*Section, error) {
	t := schema.OrgSection
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, sectionColumns(), t.Table, t.ID)

	sect, err := scanSection(store.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_section")
	}

	return sect, nil
}

func (store *PostgresStore) Create(ctx context.Context, sect *Section) error {
	t := schema.OrgSection
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		RETURNING %s, %s, %s
	`,
		t.Table, t.DepartmentID, t.Name, t.Slug,
		t.ID, t.CreatedAt, t.UpdatedAt,
	)

	err := store.db.QueryRow(ctx, query, sect.DepartmentID, sect.Name, sect.Slug).
		Scan(&sect.ID, &sect.CreatedAt, &sect.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_section")
	}

	return nil
}

func (store *PostgresStore) Update(ctx context.Context, sect *Section) (*Section, error) {
	t := schema.OrgSection
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		t.Table, t.Name, t.Slug, t.UpdatedAt,
		t.ID,
		sectionColumns(),
	)

	updated, err := scanSection(store.db.QueryRow(ctx, query, sect.ID, sect.Name, sect.Slug))
	if err != nil {
		return nil, dberr.Wrap(err, "update_section")
	}

	return updated, nil
}

func (store *PostgresStore) Delete(ctx context.Context, id int64) error {
	t := schema.OrgSection
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.Table, t.ID)

	tag, err := store.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_section")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}
