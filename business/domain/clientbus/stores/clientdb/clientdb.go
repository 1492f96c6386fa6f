// Package clientdb contains client related CRUD functionality.
package clientdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lyracrm/lyra/business/domain/clientbus"
	"github.com/lyracrm/lyra/business/sdk/order"
	"github.com/lyracrm/lyra/business/sdk/page"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/foundation/logger"
)

// Store manages the set of APIs for client database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (clientbus.Storer, error) {
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

// Create inserts a new client into the database.
func (s *Store) Create(ctx context.Context, clt clientbus.Client) (clientbus.Client, error) {
	const q = `
	INSERT INTO clients
		(name, industry, status, created_at, updated_at)
	VALUES
		(:name, :industry, :status, :created_at, :updated_at)
	RETURNING client_id`

	var id struct {
		ID int64 `db:"client_id"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, toDBClient(clt), &id); err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) {
			return clientbus.Client{}, fmt.Errorf("namedquerystruct: %w", clientbus.ErrUniqueName)
		}
		return clientbus.Client{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	clt.ID = id.ID

	return clt, nil
}

// Update replaces a client record in the database.
func (s *Store) Update(ctx context.Context, clt clientbus.Client) error {
	const q = `
	UPDATE
		clients
	SET
		name = :name,
		industry = :industry,
		status = :status,
		updated_at = :updated_at
	WHERE
		client_id = :client_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBClient(clt)); err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) {
			return fmt.Errorf("namedexeccontext: %w", clientbus.ErrUniqueName)
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Delete removes a client from the database. Dependent rows are removed by
// ON DELETE CASCADE.
func (s *Store) Delete(ctx context.Context, clt clientbus.Client) error {
	const q = `
	DELETE FROM
		clients
	WHERE
		client_id = :client_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBClient(clt)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Query retrieves a list of existing clients from the database.
func (s *Store) Query(ctx context.Context, filter clientbus.QueryFilter, orderBy order.By, page page.Page) ([]clientbus.Client, error) {
	data := map[string]any{
		"offset":        (page.Number() - 1) * page.RowsPerPage(),
		"rows_per_page": page.RowsPerPage(),
	}

	const q = `
	SELECT
		c.client_id, c.name, c.industry, c.status, c.created_at, c.updated_at
	FROM
		clients AS c`

	buf := bytes.NewBufferString(q)
	applyFilter(filter, data, buf)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbClts []clientDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbClts); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusClients(dbClts)
}

// Count returns the total number of clients in the DB.
func (s *Store) Count(ctx context.Context, filter clientbus.QueryFilter) (int, error) {
	data := map[string]any{}

	const q = `
	SELECT
		count(1) AS count
	FROM
		clients AS c`

	buf := bytes.NewBufferString(q)
	applyFilter(filter, data, buf)

	var count struct {
		Count int `db:"count"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, buf.String(), data, &count); err != nil {
		return 0, fmt.Errorf("namedquerystruct: %w", err)
	}

	return count.Count, nil
}

// QueryByID gets the specified client from the database.
func (s *Store) QueryByID(ctx context.Context, clientID int64) (clientbus.Client, error) {
	data := struct {
		ID int64 `db:"client_id"`
	}{
		ID: clientID,
	}

	const q = `
	SELECT
		c.client_id, c.name, c.industry, c.status, c.created_at, c.updated_at
	FROM
		clients AS c
	WHERE
		c.client_id = :client_id`

	var dbClt clientDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbClt); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return clientbus.Client{}, fmt.Errorf("namedquerystruct: %w", clientbus.ErrNotFound)
		}
		return clientbus.Client{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return toBusClient(dbClt)
}

// QueryByName gets the client with the specified name from the database.
func (s *Store) QueryByName(ctx context.Context, nme name.Name) (clientbus.Client, error) {
	data := struct {
		Name string `db:"name"`
	}{
		Name: nme.String(),
	}

	const q = `
	SELECT
		c.client_id, c.name, c.industry, c.status, c.created_at, c.updated_at
	FROM
		clients AS c
	WHERE
		c.name = :name`

	var dbClt clientDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbClt); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return clientbus.Client{}, fmt.Errorf("namedquerystruct: %w", clientbus.ErrNotFound)
		}
		return clientbus.Client{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return toBusClient(dbClt)
}
