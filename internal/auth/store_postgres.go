// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kanrihq/kanri/internal/platform/database/schema"
	"github.com/kanrihq/kanri/internal/platform/dberr"
)

// PostgresStore implements [CredentialStore] on the users.account table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a [PostgresStore].
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// accountColumns is the SELECT list shared by the account lookups.
func accountColumns() string {
	t := schema.UserAccount
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.Username, t.Password, t.DisplayName, t.Role, t.IsActive,
		t.TokenVersion, t.LastLoginAt, t.DepartmentID, t.SectionID,
		t.CreatedAt, t.UpdatedAt,
	)
}

// scanAccount hydrates a [User] from an account row.
func scanAccount(row interface{ Scan(...any) error }) (*User, error) {
	user := &User{}
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

func (store *PostgresStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		accountColumns(), schema.UserAccount.Table,
		schema.UserAccount.Username, schema.UserAccount.DeletedAt,
	)

	user, err := scanAccount(store.db.QueryRow(ctx, query, username))
	if err != nil {
		return nil, dberr.Wrap(err, "find_account_by_username")
	}

	return user, nil
}

func (store *PostgresStore) FindByID(ctx context.Context, id int64) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		accountColumns(), schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt,
	)

	user, err := scanAccount(store.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_account_by_id")
	}

	return user, nil
}

func (store *PostgresStore) AdvanceVersionForLogin(ctx context.Context, id int64) (int, error) {
	// Single UPDATE ... RETURNING keeps the increment and read atomic: the
	// row lock serializes concurrent logins for the same account, so no two
	// callers can observe the same pre-increment version.
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + 1, %s = NOW(), %s = NOW()
		WHERE %s = $1 AND %s IS NULL
		RETURNING %s
	`,
		schema.UserAccount.Table,
		schema.UserAccount.TokenVersion, schema.UserAccount.TokenVersion,
		schema.UserAccount.LastLoginAt, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt,
		schema.UserAccount.TokenVersion,
	)

	version := 0
	if err := store.db.QueryRow(ctx, query, id).Scan(&version); err != nil {
		return 0, dberr.Wrap(err, "advance_token_version_for_login")
	}

	return version, nil
}

func (store *PostgresStore) AdvanceVersion(ctx context.Context, id int64) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + 1, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
		RETURNING %s
	`,
		schema.UserAccount.Table,
		schema.UserAccount.TokenVersion, schema.UserAccount.TokenVersion,
		schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt,
		schema.UserAccount.TokenVersion,
	)

	version := 0
	if err := store.db.QueryRow(ctx, query, id).Scan(&version); err != nil {
		return 0, dberr.Wrap(err, "advance_token_version")
	}

	return version, nil
}
