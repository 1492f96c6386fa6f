// Package contentbus provides business access to the content job domain
// and owns the job lifecycle: PENDING -> IN_PROGRESS -> COMPLETED/FAILED.
package contentbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lyracrm/lyra/business/domain/assistantbus"
	"github.com/lyracrm/lyra/business/domain/clientbus"
	"github.com/lyracrm/lyra/business/sdk/order"
	"github.com/lyracrm/lyra/business/sdk/page"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/business/types/contentstatus"
	"github.com/lyracrm/lyra/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound          = errors.New("content not found")
	ErrClientNotFound    = errors.New("client does not exist")
	ErrAssistantMismatch = errors.New("assistant does not belong to client")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, cnt Content) (Content, error)
	Update(ctx context.Context, cnt Content) error
	Delete(ctx context.Context, cnt Content) error
	Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Content, error)
	Count(ctx context.Context, filter QueryFilter) (int, error)
	QueryByID(ctx context.Context, contentID int64) (Content, error)
}

// Core manages the set of APIs for content access.
type Core struct {
	storer       Storer
	clientBus    *clientbus.Core
	assistantBus *assistantbus.Core
}

// NewCore constructs a core for content api access.
func NewCore(storer Storer, clientBus *clientbus.Core, assistantBus *assistantbus.Core) *Core {
	return &Core{
		storer:       storer,
		clientBus:    clientBus,
		assistantBus: assistantBus,
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

	assistantBus, err := c.assistantBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return NewCore(storer, clientBus, assistantBus), nil
}

// requireAssistantBelongsToClient loads the assistant and verifies it is
// owned by the specified client.
func (c *Core) requireAssistantBelongsToClient(ctx context.Context, assistantID int64, clientID int64) error {
	ast, err := c.assistantBus.QueryByID(ctx, assistantID)
	if err != nil {
		return fmt.Errorf("query assistant: %w", ErrAssistantMismatch)
	}

	if ast.ClientID != clientID {
		return ErrAssistantMismatch
	}

	return nil
}

// Create adds a new content job in the PENDING state. The referenced
// client must exist and the assistant must belong to it.
func (c *Core) Create(ctx context.Context, nc NewContent) (Content, error) {
	ctx, span := otel.AddSpan(ctx, "business.contentbus.create")
	defer span.End()

	if _, err := c.clientBus.QueryByID(ctx, nc.ClientID); err != nil {
		return Content{}, fmt.Errorf("query client: %w", ErrClientNotFound)
	}

	if err := c.requireAssistantBelongsToClient(ctx, nc.AssistantID, nc.ClientID); err != nil {
		return Content{}, err
	}

	cnt := Content{
		ClientID:    nc.ClientID,
		AssistantID: nc.AssistantID,
		Type:        nc.Type,
		Parameters:  nc.Parameters,
		Status:      contentstatus.Pending,
		RequestedAt: time.Now(),
	}

	cnt, err := c.storer.Create(ctx, cnt)
	if err != nil {
		return Content{}, fmt.Errorf("create: %w", err)
	}

	return cnt, nil
}

// Update modifies a content job. When either the client or the assistant
// changes, the pairing is re-validated against the effective values, never
// a stale combination. A status change stamps the matching timestamp only
// when it is still unset, so repeated updates to the same status leave the
// first timestamp in place.
func (c *Core) Update(ctx context.Context, cnt Content, uc UpdateContent) (Content, error) {
	ctx, span := otel.AddSpan(ctx, "business.contentbus.update")
	defer span.End()

	clientID := cnt.ClientID
	if uc.ClientID != nil {
		clientID = *uc.ClientID
	}

	assistantID := cnt.AssistantID
	if uc.AssistantID != nil {
		assistantID = *uc.AssistantID
	}

	if uc.ClientID != nil || uc.AssistantID != nil {
		if uc.ClientID != nil && *uc.ClientID != cnt.ClientID {
			if _, err := c.clientBus.QueryByID(ctx, clientID); err != nil {
				return Content{}, fmt.Errorf("query client: %w", ErrClientNotFound)
			}
		}

		if err := c.requireAssistantBelongsToClient(ctx, assistantID, clientID); err != nil {
			return Content{}, err
		}

		cnt.ClientID = clientID
		cnt.AssistantID = assistantID
	}

	if uc.Type != nil {
		cnt.Type = *uc.Type
	}

	if uc.Parameters != nil {
		cnt.Parameters = uc.Parameters
	}

	if uc.Status != nil && !uc.Status.Equal(cnt.Status) {
		now := time.Now()

		switch {
		case uc.Status.Equal(contentstatus.InProgress):
			if cnt.StartedAt == nil {
				cnt.StartedAt = &now
			}

		case uc.Status.Equal(contentstatus.Completed) || uc.Status.Equal(contentstatus.Failed):
			if cnt.CompletedAt == nil {
				cnt.CompletedAt = &now
			}
		}

		cnt.Status = *uc.Status
	}

	if err := c.storer.Update(ctx, cnt); err != nil {
		return Content{}, fmt.Errorf("update: %w", err)
	}

	return cnt, nil
}

// Start moves the job to IN_PROGRESS and overwrites startedAt
// unconditionally, even when the job already ran.
func (c *Core) Start(ctx context.Context, cnt Content) (Content, error) {
	ctx, span := otel.AddSpan(ctx, "business.contentbus.start")
	defer span.End()

	now := time.Now()
	cnt.Status = contentstatus.InProgress
	cnt.StartedAt = &now

	if err := c.storer.Update(ctx, cnt); err != nil {
		return Content{}, fmt.Errorf("update: %w", err)
	}

	return cnt, nil
}

// Complete moves the job to COMPLETED and overwrites completedAt
// unconditionally.
func (c *Core) Complete(ctx context.Context, cnt Content) (Content, error) {
	ctx, span := otel.AddSpan(ctx, "business.contentbus.complete")
	defer span.End()

	now := time.Now()
	cnt.Status = contentstatus.Completed
	cnt.CompletedAt = &now

	if err := c.storer.Update(ctx, cnt); err != nil {
		return Content{}, fmt.Errorf("update: %w", err)
	}

	return cnt, nil
}

// Fail moves the job to FAILED and overwrites completedAt unconditionally.
func (c *Core) Fail(ctx context.Context, cnt Content) (Content, error) {
	ctx, span := otel.AddSpan(ctx, "business.contentbus.fail")
	defer span.End()

	now := time.Now()
	cnt.Status = contentstatus.Failed
	cnt.CompletedAt = &now

	if err := c.storer.Update(ctx, cnt); err != nil {
		return Content{}, fmt.Errorf("update: %w", err)
	}

	return cnt, nil
}

// Delete removes the specified content job.
func (c *Core) Delete(ctx context.Context, cnt Content) error {
	ctx, span := otel.AddSpan(ctx, "business.contentbus.delete")
	defer span.End()

	if err := c.storer.Delete(ctx, cnt); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// Query retrieves a list of existing content jobs.
func (c *Core) Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Content, error) {
	ctx, span := otel.AddSpan(ctx, "business.contentbus.query")
	defer span.End()

	cnts, err := c.storer.Query(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return cnts, nil
}

// Count returns the total number of content jobs.
func (c *Core) Count(ctx context.Context, filter QueryFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.contentbus.count")
	defer span.End()

	return c.storer.Count(ctx, filter)
}

// QueryByID finds the content job by the specified ID.
func (c *Core) QueryByID(ctx context.Context, contentID int64) (Content, error) {
	ctx, span := otel.AddSpan(ctx, "business.contentbus.queryByID")
	defer span.End()

	cnt, err := c.storer.QueryByID(ctx, contentID)
	if err != nil {
		return Content{}, fmt.Errorf("query: contentID[%d]: %w", contentID, err)
	}

	return cnt, nil
}
