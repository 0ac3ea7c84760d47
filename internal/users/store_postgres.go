// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package users

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kanrihq/kanri/internal/auth"
	"github.com/kanrihq/kanri/internal/platform/database/schema"
	"github.com/kanrihq/kanri/internal/platform/dberr"
	"github.com/kanrihq/kanri/pkg/pagination"
)

// PostgresStore implements [Store] on the users.account table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a [PostgresStore].
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// accountColumns is the SELECT list shared by the account queries.
func accountColumns() string {
	t := schema.UserAccount
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.Username, t.Password, t.DisplayName, t.Role, t.IsActive,
		t.TokenVersion, t.LastLoginAt, t.DepartmentID, t.SectionID,
		t.CreatedAt, t.UpdatedAt,
	)
}

func scanAccount(row interface{ Scan(...any) error }) (*auth.User, error) {
	user := &auth.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.DisplayName,
		&user.Role, &user.IsActive, &user.TokenVersion, &user.LastLoginAt,
		&user.DepartmentID, &user.SectionID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (store *PostgresStore) List(ctx context.Context, filter Filter, params pagination.Params) ([]*auth.User, int, error) {
	t := schema.UserAccount

	where := fmt.Sprintf("WHERE %s IS NULL", t.DeletedAt)
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (%s ILIKE $%d OR %s ILIKE $%d)", t.Username, len(args), t.DisplayName, len(args))
	}
	if filter.Role != "" {
		args = append(args, string(filter.Role))
		where += fmt.Sprintf(" AND %s = $%d", t.Role, len(args))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		where += fmt.Sprintf(" AND %s = $%d", t.IsActive, len(args))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		where += fmt.Sprintf(" AND %s = $%d", t.DepartmentID, len(args))
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", t.Table, where)
	if err := store.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_accounts")
	}

	args = append(args, params.Limit, params.Offset())
	listQuery := fmt.Sprintf(`
		SELECT %s FROM %s %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, accountColumns(), t.Table, where, t.Username, len(args)-1, len(args))

	rows, err := store.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_accounts")
	}
	defer rows.Close()

	var accounts []*auth.User
	for rows.Next() {
		user, err := scanAccount(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_account")
		}
		accounts = append(accounts, user)
	}

	return accounts, total, rows.Err()
}

func (store *PostgresStore) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	t := schema.UserAccount
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		accountColumns(), t.Table, t.ID, t.DeletedAt)

	user, err := scanAccount(store.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_account_by_id")
	}

	return user, nil
}

func (store *PostgresStore) Create(ctx context.Context, user *auth.User) error {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s, %s, %s
	`,
		t.Table,
		t.Username, t.Password, t.DisplayName, t.Role, t.IsActive,
		t.DepartmentID, t.SectionID,
		t.ID, t.CreatedAt, t.UpdatedAt,
	)

	err := store.db.QueryRow(ctx, query,
		user.Username, user.PasswordHash, user.DisplayName, user.Role,
		user.IsActive, user.DepartmentID, user.SectionID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_account")
	}

	return nil
}

func (store *PostgresStore) Update(ctx context.Context, user *auth.User) (*auth.User, error) {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
		RETURNING %s
	`,
		t.Table,
		t.DisplayName, t.Role, t.DepartmentID, t.SectionID, t.UpdatedAt,
		t.ID, t.DeletedAt,
		accountColumns(),
	)

	updated, err := scanAccount(store.db.QueryRow(ctx, query,
		user.ID, user.DisplayName, user.Role, user.DepartmentID, user.SectionID,
	))
	if err != nil {
		return nil, dberr.Wrap(err, "update_account")
	}

	return updated, nil
}

func (store *PostgresStore) SetActive(ctx context.Context, id int64, active bool) (*auth.User, error) {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = %s + 1, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
		RETURNING %s
	`,
		t.Table,
		t.IsActive, t.TokenVersion, t.TokenVersion, t.UpdatedAt,
		t.ID, t.DeletedAt,
		accountColumns(),
	)

	updated, err := scanAccount(store.db.QueryRow(ctx, query, id, active))
	if err != nil {
		return nil, dberr.Wrap(err, "set_account_active")
	}

	return updated, nil
}

func (store *PostgresStore) SetPasswordHash(ctx context.Context, id int64, hash string) error {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = %s + 1, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
	`,
		t.Table,
		t.Password, t.TokenVersion, t.TokenVersion, t.UpdatedAt,
		t.ID, t.DeletedAt,
	)

	tag, err := store.db.Exec(ctx, query, id, hash)
	if err != nil {
		return dberr.Wrap(err, "set_account_password")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "set_account_password")
	}

	return nil
}

func (store *PostgresStore) SoftDelete(ctx context.Context, id int64) error {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = NOW(), %s = %s + 1, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
	`,
		t.Table,
		t.DeletedAt, t.TokenVersion, t.TokenVersion, t.UpdatedAt,
		t.ID, t.DeletedAt,
	)

	tag, err := store.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "soft_delete_account")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "soft_delete_account")
	}

	return nil
}

func (store *PostgresStore) BumpTokenVersion(ctx context.Context, id int64) error {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		UPDATE %s SET %s = %s + 1, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
	`,
		t.Table,
		t.TokenVersion, t.TokenVersion, t.UpdatedAt,
		t.ID, t.DeletedAt,
	)

	tag, err := store.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "bump_token_version")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "bump_token_version")
	}

	return nil
}
