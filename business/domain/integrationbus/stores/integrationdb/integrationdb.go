// Package integrationdb contains integration related CRUD functionality.
package integrationdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lyracrm/lyra/business/domain/integrationbus"
	"github.com/lyracrm/lyra/business/sdk/order"
	"github.com/lyracrm/lyra/business/sdk/page"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/foundation/logger"
)

// Store manages the set of APIs for integration database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (integrationbus.Storer, error) {
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

// Create inserts a new integration into the database.
func (s *Store) Create(ctx context.Context, itg integrationbus.Integration) (integrationbus.Integration, error) {
	const q = `
	INSERT INTO integrations
		(client_id, integration_type, credentials, webhook_url, status, created_at, updated_at)
	VALUES
		(:client_id, :integration_type, :credentials, :webhook_url, :status, :created_at, :updated_at)
	RETURNING integration_id`

	dbItg, err := toDBIntegration(itg)
	if err != nil {
		return integrationbus.Integration{}, err
	}

	var id struct {
		ID int64 `db:"integration_id"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, dbItg, &id); err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) {
			return integrationbus.Integration{}, fmt.Errorf("namedquerystruct: %w", integrationbus.ErrUniqueClientType)
		}
		return integrationbus.Integration{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	itg.ID = id.ID

	return itg, nil
}

// Update replaces an integration record in the database.
func (s *Store) Update(ctx context.Context, itg integrationbus.Integration) error {
	const q = `
	UPDATE
		integrations
	SET
		integration_type = :integration_type,
		credentials = :credentials,
		webhook_url = :webhook_url,
		status = :status,
		updated_at = :updated_at
	WHERE
		integration_id = :integration_id`

	dbItg, err := toDBIntegration(itg)
	if err != nil {
		return err
	}

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, dbItg); err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) {
			return fmt.Errorf("namedexeccontext: %w", integrationbus.ErrUniqueClientType)
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Delete removes an integration from the database.
func (s *Store) Delete(ctx context.Context, itg integrationbus.Integration) error {
	const q = `
	DELETE FROM
		integrations
	WHERE
		integration_id = :integration_id`

	data := struct {
		ID int64 `db:"integration_id"`
	}{
		ID: itg.ID,
	}

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Query retrieves a list of existing integrations from the database.
func (s *Store) Query(ctx context.Context, filter integrationbus.QueryFilter, orderBy order.By, page page.Page) ([]integrationbus.Integration, error) {
	data := map[string]any{
		"offset":        (page.Number() - 1) * page.RowsPerPage(),
		"rows_per_page": page.RowsPerPage(),
	}

	const q = `
	SELECT
		i.integration_id, i.client_id, i.integration_type, i.credentials, i.webhook_url, i.status, i.created_at, i.updated_at
	FROM
		integrations AS i`

	buf := bytes.NewBufferString(q)
	applyFilter(filter, data, buf)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbItgs []integrationDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbItgs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusIntegrations(dbItgs)
}

// Count returns the total number of integrations in the DB.
func (s *Store) Count(ctx context.Context, filter integrationbus.QueryFilter) (int, error) {
	data := map[string]any{}

	const q = `
	SELECT
		count(1) AS count
	FROM
		integrations AS i`

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

// QueryByID gets the specified integration from the database.
func (s *Store) QueryByID(ctx context.Context, integrationID int64) (integrationbus.Integration, error) {
	data := struct {
		ID int64 `db:"integration_id"`
	}{
		ID: integrationID,
	}

	const q = `
	SELECT
		i.integration_id, i.client_id, i.integration_type, i.credentials, i.webhook_url, i.status, i.created_at, i.updated_at
	FROM
		integrations AS i
	WHERE
		i.integration_id = :integration_id`

	var dbItg integrationDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbItg); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return integrationbus.Integration{}, fmt.Errorf("namedquerystruct: %w", integrationbus.ErrNotFound)
		}
		return integrationbus.Integration{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return toBusIntegration(dbItg)
}

// QueryByClientAndType gets the integration of the given type owned by the
// specified client.
func (s *Store) QueryByClientAndType(ctx context.Context, clientID int64, integrationType string) (integrationbus.Integration, error) {
	data := struct {
		ClientID int64  `db:"client_id"`
		Type     string `db:"integration_type"`
	}{
		ClientID: clientID,
		Type:     integrationType,
	}

	const q = `
	SELECT
		i.integration_id, i.client_id, i.integration_type, i.credentials, i.webhook_url, i.status, i.created_at, i.updated_at
	FROM
		integrations AS i
	WHERE
		i.client_id = :client_id AND i.integration_type = :integration_type`

	var dbItg integrationDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbItg); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return integrationbus.Integration{}, fmt.Errorf("namedquerystruct: %w", integrationbus.ErrNotFound)
		}
		return integrationbus.Integration{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return toBusIntegration(dbItg)
}
