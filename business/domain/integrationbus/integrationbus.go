// Package integrationbus provides business access to the integration
// domain.
package integrationbus

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
	ErrNotFound         = errors.New("integration not found")
	ErrUniqueClientType = errors.New("client already has an integration of this type")
	ErrClientNotFound   = errors.New("client does not exist")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, itg Integration) (Integration, error)
	Update(ctx context.Context, itg Integration) error
	Delete(ctx context.Context, itg Integration) error
	Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Integration, error)
	Count(ctx context.Context, filter QueryFilter) (int, error)
	QueryByID(ctx context.Context, integrationID int64) (Integration, error)
	QueryByClientAndType(ctx context.Context, clientID int64, integrationType string) (Integration, error)
}

// Core manages the set of APIs for integration access.
type Core struct {
	storer    Storer
	clientBus *clientbus.Core
}

// NewCore constructs a core for integration api access.
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

// Create adds a new integration to the system. The referenced client must
// exist and may hold at most one integration of the given type.
func (c *Core) Create(ctx context.Context, ni NewIntegration) (Integration, error) {
	ctx, span := otel.AddSpan(ctx, "business.integrationbus.create")
	defer span.End()

	if _, err := c.clientBus.QueryByID(ctx, ni.ClientID); err != nil {
		return Integration{}, fmt.Errorf("query client: %w", ErrClientNotFound)
	}

	if _, err := c.storer.QueryByClientAndType(ctx, ni.ClientID, ni.Type); err == nil {
		return Integration{}, ErrUniqueClientType
	}

	now := time.Now()

	itg := Integration{
		ClientID:    ni.ClientID,
		Type:        ni.Type,
		Credentials: ni.Credentials,
		WebhookURL:  ni.WebhookURL,
		Status:      status.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	itg, err := c.storer.Create(ctx, itg)
	if err != nil {
		return Integration{}, fmt.Errorf("create: %w", err)
	}

	return itg, nil
}

// Update modifies information about an integration. A type change must not
// collide with another integration of the same client.
func (c *Core) Update(ctx context.Context, itg Integration, ui UpdateIntegration) (Integration, error) {
	ctx, span := otel.AddSpan(ctx, "business.integrationbus.update")
	defer span.End()

	if ui.Type != nil && *ui.Type != itg.Type {
		if _, err := c.storer.QueryByClientAndType(ctx, itg.ClientID, *ui.Type); err == nil {
			return Integration{}, ErrUniqueClientType
		}
		itg.Type = *ui.Type
	}

	if ui.Credentials != nil {
		itg.Credentials = ui.Credentials
	}

	if ui.WebhookURL != nil {
		itg.WebhookURL = *ui.WebhookURL
	}

	if ui.Status != nil {
		itg.Status = *ui.Status
	}

	itg.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, itg); err != nil {
		return Integration{}, fmt.Errorf("update: %w", err)
	}

	return itg, nil
}

// Delete removes the specified integration.
func (c *Core) Delete(ctx context.Context, itg Integration) error {
	ctx, span := otel.AddSpan(ctx, "business.integrationbus.delete")
	defer span.End()

	if err := c.storer.Delete(ctx, itg); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// Query retrieves a list of existing integrations.
func (c *Core) Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Integration, error) {
	ctx, span := otel.AddSpan(ctx, "business.integrationbus.query")
	defer span.End()

	itgs, err := c.storer.Query(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return itgs, nil
}

// Count returns the total number of integrations.
func (c *Core) Count(ctx context.Context, filter QueryFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.integrationbus.count")
	defer span.End()

	return c.storer.Count(ctx, filter)
}

// QueryByID finds the integration by the specified ID.
func (c *Core) QueryByID(ctx context.Context, integrationID int64) (Integration, error) {
	ctx, span := otel.AddSpan(ctx, "business.integrationbus.queryByID")
	defer span.End()

	itg, err := c.storer.QueryByID(ctx, integrationID)
	if err != nil {
		return Integration{}, fmt.Errorf("query: integrationID[%d]: %w", integrationID, err)
	}

	return itg, nil
}
