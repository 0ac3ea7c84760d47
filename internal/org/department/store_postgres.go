// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package department

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kanrihq/kanri/internal/platform/database/schema"
	"github.com/kanrihq/kanri/internal/platform/dberr"
	"github.com/kanrihq/kanri/pkg/pagination"
)

// PostgresStore implements [Store] on the org.department table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a [PostgresStore].
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func departmentColumns() string {
	t := schema.OrgDepartment
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s",
		t.ID, t.Name, t.Slug, t.Description, t.CreatedAt, t.UpdatedAt)
}

func scanDepartment(row interface{ Scan(...any) error }) (*Department, error) {
	var dept Department
	err := row.Scan(&dept.ID, &dept.Name, &dept.Slug, &dept.Description, &dept.CreatedAt, &dept.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (store *PostgresStore) List(ctx context.Context, search string, params pagination.Params) ([]*Department, int, error) {
	t := schema.OrgDepartment

	where := ""
	args := []any{}
	if search != "" {
		args = append(args, "%"+search+"%")
		where = fmt.Sprintf("WHERE %s ILIKE $1", t.Name)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", t.Table, where)
	if err := store.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_departments")
	}

	args = append(args, params.Limit, params.Offset())
	listQuery := fmt.Sprintf(`
		SELECT %s FROM %s %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, departmentColumns(), t.Table, where, t.Name, len(args)-1, len(args))

	rows, err := store.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_departments")
	}
	defer rows.Close()

	var departments []*Department
	for rows.Next() {
		dept, err := scanDepartment(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_department")
		}
		departments = append(departments, dept)
	}

	return departments, total, rows.Err()
}

func (store *PostgresStore) FindByID(ctx context.Context, id int64) (*Department, error) {
	t := schema.OrgDepartment
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, departmentColumns(), t.Table, t.ID)

	dept, err := scanDepartment(store.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_department")
	}

	return dept, nil
}

func (store *PostgresStore) Create(ctx context.Context, dept *Department) error {
	t := schema.OrgDepartment
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		RETURNING %s, %s, %s
	`,
		t.Table, t.Name, t.Slug, t.Description,
		t.ID, t.CreatedAt, t.UpdatedAt,
	)

	err := store.db.QueryRow(ctx, query, dept.Name, dept.Slug, dept.Description).
		Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_department")
	}

	return nil
}

func (store *PostgresStore) Update(ctx context.Context, dept *Department) (*Department, error) {
	t := schema.OrgDepartment
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		t.Table, t.Name, t.Slug, t.Description, t.UpdatedAt,
		t.ID,
		departmentColumns(),
	)

	updated, err := scanDepartment(store.db.QueryRow(ctx, query, dept.ID, dept.Name, dept.Slug, dept.Description))
	if err != nil {
		return nil, dberr.Wrap(err, "update_department")
	}

	return updated, nil
}

func (store *PostgresStore) Delete(ctx context.Context, id int64) error {
	t := schema.OrgDepartment
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.Table, t.ID)

	tag, err := store.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_department")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}
