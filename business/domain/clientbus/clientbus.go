// Package clientbus provides business access to client (tenant) domain.
package clientbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lyracrm/lyra/business/sdk/order"
	"github.com/lyracrm/lyra/business/sdk/page"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/status"
	"github.com/lyracrm/lyra/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound   = errors.New("client not found")
	ErrUniqueName = errors.New("client name is not unique")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, clt Client) (Client, error)
	Update(ctx context.Context, clt Client) error
	Delete(ctx context.Context, clt Client) error
	Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Client, error)
	Count(ctx context.Context, filter QueryFilter) (int, error)
	QueryByID(ctx context.Context, clientID int64) (Client, error)
	QueryByName(ctx context.Context, name name.Name) (Client, error)
}

// Core manages the set of APIs for client access.
type Core struct {
	storer Storer
}

// NewCore constructs a core for client api access.
func NewCore(storer Storer) *Core {
	return &Core{
		storer: storer,
	}
}

// NewWithTx constructs a new Core value replacing the Storer
// value with a Storer value that is currently inside a transaction.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return NewCore(storer), nil
}

// Create adds a new client to the system.
func (c *Core) Create(ctx context.Context, nc NewClient) (Client, error) {
	ctx, span := otel.AddSpan(ctx, "business.clientbus.create")
	defer span.End()

	if _, err := c.storer.QueryByName(ctx, nc.Name); err == nil {
		return Client{}, ErrUniqueName
	}

	now := time.Now()

	clt := Client{
		Name:      nc.Name,
		Industry:  nc.Industry,
		Status:    status.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	clt, err := c.storer.Create(ctx, clt)
	if err != nil {
		return Client{}, fmt.Errorf("create: %w", err)
	}

	return clt, nil
}

// Update modifies information about a client. A name change to the client's
// own current name does not conflict.
func (c *Core) Update(ctx context.Context, clt Client, uc UpdateClient) (Client, error) {
	ctx, span := otel.AddSpan(ctx, "business.clientbus.update")
	defer span.End()

	if uc.Name != nil && !uc.Name.Equal(clt.Name) {
		if _, err := c.storer.QueryByName(ctx, *uc.Name); err == nil {
			return Client{}, ErrUniqueName
		}
		clt.Name = *uc.Name
	}

	if uc.Industry != nil {
		clt.Industry = *uc.Industry
	}

	if uc.Status != nil {
		clt.Status = *uc.Status
	}

	clt.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, clt); err != nil {
		return Client{}, fmt.Errorf("update: %w", err)
	}

	return clt, nil
}

// Delete removes the specified client. Dependent assistants, content,
// integrations and grants are removed by the database cascade.
func (c *Core) Delete(ctx context.Context, clt Client) error {
	ctx, span := otel.AddSpan(ctx, "business.clientbus.delete")
	defer span.End()

	if err := c.storer.Delete(ctx, clt); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// Query retrieves a list of existing clients.
func (c *Core) Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Client, error) {
	ctx, span := otel.AddSpan(ctx, "business.clientbus.query")
	defer span.End()

	clts, err := c.storer.Query(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return clts, nil
}

// Count returns the total number of clients.
func (c *Core) Count(ctx context.Context, filter QueryFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.clientbus.count")
	defer span.End()

	return c.storer.Count(ctx, filter)
}

// QueryByID finds the client by the specified ID.
func (c *Core) QueryByID(ctx context.Context, clientID int64) (Client, error) {
	ctx, span := otel.AddSpan(ctx, "business.clientbus.queryByID")
	defer span.End()

	clt, err := c.storer.QueryByID(ctx, clientID)
	if err != nil {
		return Client{}, fmt.Errorf("query: clientID[%d]: %w", clientID, err)
	}

	return clt, nil
}
