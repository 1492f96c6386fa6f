// Package assistantbus provides business access to the assistant domain.
package assistantbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lyracrm/lyra/business/domain/clientbus"
	"github.com/lyracrm/lyra/business/sdk/order"
	"github.com/lyracrm/lyra/business/sdk/page"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/business/types/status"
	"github.com/lyracrm/lyra/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound       = errors.New("assistant not found")
	ErrUniqueOpenAIID = errors.New("openai assistant id is not unique")
	ErrClientNotFound = errors.New("client does not exist")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, ast Assistant) (Assistant, error)
	Update(ctx context.Context, ast Assistant) error
	Delete(ctx context.Context, ast Assistant) error
	Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Assistant, error)
	Count(ctx context.Context, filter QueryFilter) (int, error)
	QueryByID(ctx context.Context, assistantID int64) (Assistant, error)
	QueryByOpenAIID(ctx context.Context, openaiAssistantID string) (Assistant, error)
	QueryByClient(ctx context.Context, clientID int64) ([]Assistant, error)
}

// Core manages the set of APIs for assistant access.
type Core struct {
	storer    Storer
	clientBus *clientbus.Core
}

// NewCore constructs a core for assistant api access.
func NewCore(storer Storer, clientBus *clientbus.Core) *Core {
	return &Core{
		storer:    storer,
		clientBus: clientBus,
	}
}

// NewWithTx constructs a new Core value replacing the Storer
// value with a Storer value that is currently inside a transaction.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	clientBus, err := c.clientBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return NewCore(storer, clientBus), nil
}

// Create adds a new assistant to the system. The referenced client must
// exist and the openai assistant id must be globally unique.
func (c *Core) Create(ctx context.Context, na NewAssistant) (Assistant, error) {
	ctx, span := otel.AddSpan(ctx, "business.assistantbus.create")
	defer span.End()

	if _, err := c.clientBus.QueryByID(ctx, na.ClientID); err != nil {
		return Assistant{}, fmt.Errorf("query client: %w", ErrClientNotFound)
	}

	if _, err := c.storer.QueryByOpenAIID(ctx, na.OpenAIAssistantID); err == nil {
		return Assistant{}, ErrUniqueOpenAIID
	}

	now := time.Now()

	ast := Assistant{
		ClientID:          na.ClientID,
		Name:              na.Name,
		OpenAIAssistantID: na.OpenAIAssistantID,
		Model:             na.Model,
		Temperature:       na.Temperature,
		Instructions:      na.Instructions,
		Status:            status.Active,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	ast, err := c.storer.Create(ctx, ast)
	if err != nil {
		return Assistant{}, fmt.Errorf("create: %w", err)
	}

	return ast, nil
}

// Update modifies information about an assistant.
func (c *Core) Update(ctx context.Context, ast Assistant, ua UpdateAssistant) (Assistant, error) {
	ctx, span := otel.AddSpan(ctx, "business.assistantbus.update")
	defer span.End()

	if ua.ClientID != nil && *ua.ClientID != ast.ClientID {
		if _, err := c.clientBus.QueryByID(ctx, *ua.ClientID); err != nil {
			return Assistant{}, fmt.Errorf("query client: %w", ErrClientNotFound)
		}
		ast.ClientID = *ua.ClientID
	}

	if ua.OpenAIAssistantID != nil && *ua.OpenAIAssistantID != ast.OpenAIAssistantID {
		if _, err := c.storer.QueryByOpenAIID(ctx, *ua.OpenAIAssistantID); err == nil {
			return Assistant{}, ErrUniqueOpenAIID
		}
		ast.OpenAIAssistantID = *ua.OpenAIAssistantID
	}

	if ua.Name != nil {
		ast.Name = *ua.Name
	}

	if ua.Model != nil {
		ast.Model = *ua.Model
	}

	if ua.Temperature != nil {
		ast.Temperature = *ua.Temperature
	}

	if ua.Instructions != nil {
		ast.Instructions = *ua.Instructions
	}

	if ua.Status != nil {
		ast.Status = *ua.Status
	}

	ast.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, ast); err != nil {
		return Assistant{}, fmt.Errorf("update: %w", err)
	}

	return ast, nil
}

// Delete removes the specified assistant. Dependent content rows are
// removed by the database cascade.
func (c *Core) Delete(ctx context.Context, ast Assistant) error {
	ctx, span := otel.AddSpan(ctx, "business.assistantbus.delete")
	defer span.End()

	if err := c.storer.Delete(ctx, ast); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// Query retrieves a list of existing assistants.
func (c *Core) Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Assistant, error) {
	ctx, span := otel.AddSpan(ctx, "business.assistantbus.query")
	defer span.End()

	asts, err := c.storer.Query(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return asts, nil
}

// Count returns the total number of assistants.
func (c *Core) Count(ctx context.Context, filter QueryFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.assistantbus.count")
	defer span.End()

	return c.storer.Count(ctx, filter)
}

// QueryByID finds the assistant by the specified ID.
func (c *Core) QueryByID(ctx context.Context, assistantID int64) (Assistant, error) {
	ctx, span := otel.AddSpan(ctx, "business.assistantbus.queryByID")
	defer span.End()

	ast, err := c.storer.QueryByID(ctx, assistantID)
	if err != nil {
		return Assistant{}, fmt.Errorf("query: assistantID[%d]: %w", assistantID, err)
	}

	return ast, nil
}

// QueryByClient retrieves the assistants owned by the specified client.
func (c *Core) QueryByClient(ctx context.Context, clientID int64) ([]Assistant, error) {
	ctx, span := otel.AddSpan(ctx, "business.assistantbus.queryByClient")
	defer span.End()

	asts, err := c.storer.QueryByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("query: clientID[%d]: %w", clientID, err)
	}

	return asts, nil
}
