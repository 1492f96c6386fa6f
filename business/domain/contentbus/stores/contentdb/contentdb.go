// Package contentdb contains content related CRUD functionality.
package contentdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lyracrm/lyra/business/domain/contentbus"
	"github.com/lyracrm/lyra/business/sdk/order"
	"github.com/lyracrm/lyra/business/sdk/page"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/foundation/logger"
)

// Store manages the set of APIs for content database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (contentbus.Storer, error) {
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

// Create inserts a new content job into the database.
func (s *Store) Create(ctx context.Context, cnt contentbus.Content) (contentbus.Content, error) {
	const q = `
	INSERT INTO content
		(client_id, assistant_id, content_type, parameters, status, requested_at, started_at, completed_at)
	VALUES
		(:client_id, :assistant_id, :content_type, :parameters, :status, :requested_at, :started_at, :completed_at)
	RETURNING content_id`

	dbCnt, err := toDBContent(cnt)
	if err != nil {
		return contentbus.Content{}, err
	}

	var id struct {
		ID int64 `db:"content_id"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, dbCnt, &id); err != nil {
		return contentbus.Content{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	cnt.ID = id.ID

	return cnt, nil
}

// Update replaces a content record in the database.
func (s *Store) Update(ctx context.Context, cnt contentbus.Content) error {
	const q = `
	UPDATE
		content
	SET
		client_id = :client_id,
		assistant_id = :assistant_id,
		content_type = :content_type,
		parameters = :parameters,
		status = :status,
		started_at = :started_at,
		completed_at = :completed_at
	WHERE
		content_id = :content_id`

	dbCnt, err := toDBContent(cnt)
	if err != nil {
		return err
	}

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, dbCnt); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Delete removes a content job from the database.
func (s *Store) Delete(ctx context.Context, cnt contentbus.Content) error {
	const q = `
	DELETE FROM
		content
	WHERE
		content_id = :content_id`

	data := struct {
		ID int64 `db:"content_id"`
	}{
		ID: cnt.ID,
	}

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Query retrieves a list of existing content jobs from the database.
func (s *Store) Query(ctx context.Context, filter contentbus.QueryFilter, orderBy order.By, page page.Page) ([]contentbus.Content, error) {
	data := map[string]any{
		"offset":        (page.Number() - 1) * page.RowsPerPage(),
		"rows_per_page": page.RowsPerPage(),
	}

	const q = `
	SELECT
		ct.content_id, ct.client_id, ct.assistant_id, ct.content_type, ct.parameters, ct.status, ct.requested_at, ct.started_at, ct.completed_at
	FROM
		content AS ct`

	buf := bytes.NewBufferString(q)
	applyFilter(filter, data, buf)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbCnts []contentDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbCnts); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusContents(dbCnts)
}

// Count returns the total number of content jobs in the DB.
func (s *Store) Count(ctx context.Context, filter contentbus.QueryFilter) (int, error) {
	data := map[string]any{}

	const q = `
	SELECT
		count(1) AS count
	FROM
		content AS ct`

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

// QueryByID gets the specified content job from the database.
func (s *Store) QueryByID(ctx context.Context, contentID int64) (contentbus.Content, error) {
	data := struct {
		ID int64 `db:"content_id"`
	}{
		ID: contentID,
	}

	const q = `
	SELECT
		ct.content_id, ct.client_id, ct.assistant_id, ct.content_type, ct.parameters, ct.status, ct.requested_at, ct.started_at, ct.completed_at
	FROM
		content AS ct
	WHERE
		ct.content_id = :content_id`

	var dbCnt contentDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbCnt); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return contentbus.Content{}, fmt.Errorf("namedquerystruct: %w", contentbus.ErrNotFound)
		}
		return contentbus.Content{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return toBusContent(dbCnt)
}
