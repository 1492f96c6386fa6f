// Package accessdb contains user-client grant CRUD functionality.
package accessdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lyracrm/lyra/business/domain/accessbus"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/business/types/role"
	"github.com/lyracrm/lyra/foundation/logger"
)

// Store manages the set of APIs for grant database access.
type Store struct {
	log *logger.Logger
	db  sqlx.ExtContext
}

// NewStore constructs the api for data access.
func NewStore(log *logger.Logger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

// NewWithTx constructs a new Store value replacing the sqlx DB
// value with a sqlx DB value that is currently inside a transaction.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (accessbus.Storer, error) {
	ec, err := sqldb.GetExtContext(tx)
	if err != nil {
		return nil, err
	}

	store := Store{
		log: s.log,
		db:  ec,
	}

	return &store, nil
}

// Create inserts a new grant into the database.
func (s *Store) Create(ctx context.Context, uc accessbus.UserClient) (accessbus.UserClient, error) {
	const q = `
	INSERT INTO user_clients
		(user_id, client_id, permissions, assigned_at)
	VALUES
		(:user_id, :client_id, :permissions, :assigned_at)
	RETURNING user_client_id`

	var id struct {
		ID int64 `db:"user_client_id"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, toDBUserClient(uc), &id); err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) {
			return accessbus.UserClient{}, fmt.Errorf("namedquerystruct: %w", accessbus.ErrUniqueGrant)
		}
		return accessbus.UserClient{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	uc.ID = id.ID

	return uc, nil
}

// Update replaces the permissions on an existing grant.
func (s *Store) Update(ctx context.Context, uc accessbus.UserClient) error {
	const q = `
	UPDATE
		user_clients
	SET
		permissions = :permissions
	WHERE
		user_client_id = :user_client_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBUserClient(uc)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Delete removes a grant from the database.
func (s *Store) Delete(ctx context.Context, uc accessbus.UserClient) error {
	const q = `
	DELETE FROM
		user_clients
	WHERE
		user_client_id = :user_client_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBUserClient(uc)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByUser retrieves the grants held by the specified user.
func (s *Store) QueryByUser(ctx context.Context, userID int64) ([]accessbus.UserClient, error) {
	data := struct {
		UserID int64 `db:"user_id"`
	}{
		UserID: userID,
	}

	const q = `
	SELECT
		uc.user_client_id, uc.user_id, uc.client_id, uc.permissions, uc.assigned_at
	FROM
		user_clients AS uc
	WHERE
		uc.user_id = :user_id
	ORDER BY
		uc.assigned_at`

	var dbUCs []userClientDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbUCs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusUserClients(dbUCs), nil
}

// QueryByClient retrieves the grants issued for the specified client.
func (s *Store) QueryByClient(ctx context.Context, clientID int64) ([]accessbus.UserClient, error) {
	data := struct {
		ClientID int64 `db:"client_id"`
	}{
		ClientID: clientID,
	}

	const q = `
	SELECT
		uc.user_client_id, uc.user_id, uc.client_id, uc.permissions, uc.assigned_at
	FROM
		user_clients AS uc
	WHERE
		uc.client_id = :client_id
	ORDER BY
		uc.assigned_at`

	var dbUCs []userClientDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbUCs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusUserClients(dbUCs), nil
}

// QueryGrant retrieves the grant for the specified user and client pair.
func (s *Store) QueryGrant(ctx context.Context, userID int64, clientID int64) (accessbus.UserClient, error) {
	data := struct {
		UserID   int64 `db:"user_id"`
		ClientID int64 `db:"client_id"`
	}{
		UserID:   userID,
		ClientID: clientID,
	}

	const q = `
	SELECT
		uc.user_client_id, uc.user_id, uc.client_id, uc.permissions, uc.assigned_at
	FROM
		user_clients AS uc
	WHERE
		uc.user_id = :user_id AND uc.client_id = :client_id`

	var dbUC userClientDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbUC); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return accessbus.UserClient{}, fmt.Errorf("namedquerystruct: %w", accessbus.ErrNotFound)
		}
		return accessbus.UserClient{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return toBusUserClient(dbUC), nil
}

// QueryAll retrieves every grant in the system. Used to warm the access
// cache at startup.
func (s *Store) QueryAll(ctx context.Context) ([]accessbus.UserClient, error) {
	const q = `
	SELECT
		uc.user_client_id, uc.user_id, uc.client_id, uc.permissions, uc.assigned_at
	FROM
		user_clients AS uc`

	var dbUCs []userClientDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, struct{}{}, &dbUCs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusUserClients(dbUCs), nil
}

// QueryAllUserRoles retrieves a map of user id to role for all users. Used
// to warm the access cache at startup.
func (s *Store) QueryAllUserRoles(ctx context.Context) (map[int64]role.Role, error) {
	const q = `
	SELECT
		u.user_id,
		u.role
	FROM
		users AS u`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query user roles: %w", err)
	}
	defer rows.Close()

	userRoles := make(map[int64]role.Role)

	for rows.Next() {
		var uid int64
		var roleName string

		if err := rows.Scan(&uid, &roleName); err != nil {
			return nil, fmt.Errorf("scan user role: %w", err)
		}

		r, err := role.Parse(roleName)
		if err != nil {
			return nil, fmt.Errorf("parse role %q: %w", roleName, err)
		}

		userRoles[uid] = r
	}

	return userRoles, nil
}

// ValidateAccess checks the grant table directly. Admin users bypass the
// tenant gate.
func (s *Store) ValidateAccess(ctx context.Context, userID int64, clientID int64) error {
	const q = `
	SELECT
		count(1) AS count
	FROM
		users AS u
	LEFT JOIN
		user_clients AS uc ON uc.user_id = u.user_id AND uc.client_id = :client_id
	WHERE
		u.user_id = :user_id
		AND (u.role = 'ADMIN' OR uc.user_client_id IS NOT NULL)`

	data := struct {
		UserID   int64 `db:"user_id"`
		ClientID int64 `db:"client_id"`
	}{
		UserID:   userID,
		ClientID: clientID,
	}

	var count struct {
		Count int `db:"count"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &count); err != nil {
		return fmt.Errorf("namedquerystruct: %w", err)
	}

	if count.Count > 0 {
		return nil
	}

	return accessbus.ErrAccessDenied
}

// SyncUserRole is a no-op for the database store. The role is persisted by
// the user store and the validation query joins the users table directly.
func (s *Store) SyncUserRole(ctx context.Context, userID int64, r role.Role) error {
	return nil
}

// PurgeUser removes every grant held by the user. Idempotent backstop for
// the ON DELETE CASCADE on the users table.
func (s *Store) PurgeUser(ctx context.Context, userID int64) error {
	data := struct {
		UserID int64 `db:"user_id"`
	}{
		UserID: userID,
	}

	const q = `
	DELETE FROM
		user_clients
	WHERE
		user_id = :user_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// PurgeClient removes every grant issued for the client. Idempotent
// backstop for the ON DELETE CASCADE on the clients table.
func (s *Store) PurgeClient(ctx context.Context, clientID int64) error {
	data := struct {
		ClientID int64 `db:"client_id"`
	}{
		ClientID: clientID,
	}

	const q = `
	DELETE FROM
		user_clients
	WHERE
		client_id = :client_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}
