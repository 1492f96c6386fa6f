// Package assistantdb contains assistant related CRUD functionality.
package assistantdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lyracrm/lyra/business/domain/assistantbus"
	"github.com/lyracrm/lyra/business/sdk/order"
	"github.com/lyracrm/lyra/business/sdk/page"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/foundation/logger"
)

// Store manages the set of APIs for assistant database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (assistantbus.Storer, error) {
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

// Create inserts a new assistant into the database.
func (s *Store) Create(ctx context.Context, ast assistantbus.Assistant) (assistantbus.Assistant, error) {
	const q = `
	INSERT INTO assistants
		(client_id, name, openai_assistant_id, model, temperature, instructions, status, created_at, updated_at)
	VALUES
		(:client_id, :name, :openai_assistant_id, :model, :temperature, :instructions, :status, :created_at, :updated_at)
	RETURNING assistant_id`

	var id struct {
		ID int64 `db:"assistant_id"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, toDBAssistant(ast), &id); err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) {
			return assistantbus.Assistant{}, fmt.Errorf("namedquerystruct: %w", assistantbus.ErrUniqueOpenAIID)
		}
		return assistantbus.Assistant{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	ast.ID = id.ID

	return ast, nil
}

// Update replaces an assistant record in the database.
func (s *Store) Update(ctx context.Context, ast assistantbus.Assistant) error {
	const q = `
	UPDATE
		assistants
	SET
		client_id = :client_id,
		name = :name,
		openai_assistant_id = :openai_assistant_id,
		model = :model,
		temperature = :temperature,
		instructions = :instructions,
		status = :status,
		updated_at = :updated_at
	WHERE
		assistant_id = :assistant_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBAssistant(ast)); err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) {
			return fmt.Errorf("namedexeccontext: %w", assistantbus.ErrUniqueOpenAIID)
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Delete removes an assistant from the database.
func (s *Store) Delete(ctx context.Context, ast assistantbus.Assistant) error {
	const q = `
	DELETE FROM
		assistants
	WHERE
		assistant_id = :assistant_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBAssistant(ast)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Query retrieves a list of existing assistants from the database.
func (s *Store) Query(ctx context.Context, filter assistantbus.QueryFilter, orderBy order.By, page page.Page) ([]assistantbus.Assistant, error) {
	data := map[string]any{
		"offset":        (page.Number() - 1) * page.RowsPerPage(),
		"rows_per_page": page.RowsPerPage(),
	}

	const q = `
	SELECT
		a.assistant_id, a.client_id, a.name, a.openai_assistant_id, a.model, a.temperature, a.instructions, a.status, a.created_at, a.updated_at
	FROM
		assistants AS a`

	buf := bytes.NewBufferString(q)
	applyFilter(filter, data, buf)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbAsts []assistantDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbAsts); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusAssistants(dbAsts)
}

// Count returns the total number of assistants in the DB.
func (s *Store) Count(ctx context.Context, filter assistantbus.QueryFilter) (int, error) {
	data := map[string]any{}

	const q = `
	SELECT
		count(1) AS count
	FROM
		assistants AS a`

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

// QueryByID gets the specified assistant from the database.
func (s *Store) QueryByID(ctx context.Context, assistantID int64) (assistantbus.Assistant, error) {
	data := struct {
		ID int64 `db:"assistant_id"`
	}{
		ID: assistantID,
	}

	const q = `
	SELECT
		a.assistant_id, a.client_id, a.name, a.openai_assistant_id, a.model, a.temperature, a.instructions, a.status, a.created_at, a.updated_at
	FROM
		assistants AS a
	WHERE
		a.assistant_id = :assistant_id`

	var dbAst assistantDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbAst); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return assistantbus.Assistant{}, fmt.Errorf("namedquerystruct: %w", assistantbus.ErrNotFound)
		}
		return assistantbus.Assistant{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return toBusAssistant(dbAst)
}

// QueryByClient retrieves the assistants owned by the specified client.
func (s *Store) QueryByClient(ctx context.Context, clientID int64) ([]assistantbus.Assistant, error) {
	data := struct {
		ClientID int64 `db:"client_id"`
	}{
		ClientID: clientID,
	}

	const q = `
	SELECT
		a.assistant_id, a.client_id, a.name, a.openai_assistant_id, a.model, a.temperature, a.instructions, a.status, a.created_at, a.updated_at
	FROM
		assistants AS a
	WHERE
		a.client_id = :client_id
	ORDER BY
		a.assistant_id`

	var dbAsts []assistantDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbAsts); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusAssistants(dbAsts)
}

// QueryByOpenAIID gets the assistant with the specified openai assistant id.
func (s *Store) QueryByOpenAIID(ctx context.Context, openaiAssistantID string) (assistantbus.Assistant, error) {
	data := struct {
		OpenAIAssistantID string `db:"openai_assistant_id"`
	}{
		OpenAIAssistantID: openaiAssistantID,
	}

	const q = `
	SELECT
		a.assistant_id, a.client_id, a.name, a.openai_assistant_id, a.model, a.temperature, a.instructions, a.status, a.created_at, a.updated_at
	FROM
		assistants AS a
	WHERE
		a.openai_assistant_id = :openai_assistant_id`

	var dbAst assistantDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbAst); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return assistantbus.Assistant{}, fmt.Errorf("namedquerystruct: %w", assistantbus.ErrNotFound)
		}
		return assistantbus.Assistant{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return toBusAssistant(dbAst)
}
