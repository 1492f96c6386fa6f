package integrationbus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lyracrm/lyra/business/domain/clientbus"
	"github.com/lyracrm/lyra/business/domain/integrationbus"
	"github.com/lyracrm/lyra/business/sdk/order"
	"github.com/lyracrm/lyra/business/sdk/page"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/status"
)

type clientStore struct {
	clients map[int64]clientbus.Client
}

func (s *clientStore) NewWithTx(tx sqldb.CommitRollbacker) (clientbus.Storer, error) {
	return s, nil
}

func (s *clientStore) Create(ctx context.Context, clt clientbus.Client) (clientbus.Client, error) {
	s.clients[clt.ID] = clt
	return clt, nil
}

func (s *clientStore) Update(ctx context.Context, clt clientbus.Client) error {
	s.clients[clt.ID] = clt
	return nil
}

func (s *clientStore) Delete(ctx context.Context, clt clientbus.Client) error {
	delete(s.clients, clt.ID)
	return nil
}

func (s *clientStore) Query(ctx context.Context, filter clientbus.QueryFilter, orderBy order.By, page page.Page) ([]clientbus.Client, error) {
	return nil, nil
}

func (s *clientStore) Count(ctx context.Context, filter clientbus.QueryFilter) (int, error) {
	return len(s.clients), nil
}

func (s *clientStore) QueryByID(ctx context.Context, clientID int64) (clientbus.Client, error) {
	clt, ok := s.clients[clientID]
	if !ok {
		return clientbus.Client{}, clientbus.ErrNotFound
	}
	return clt, nil
}

func (s *clientStore) QueryByName(ctx context.Context, n name.Name) (clientbus.Client, error) {
	for _, clt := range s.clients {
		if clt.Name.Equal(n) {
			return clt, nil
		}
	}
	return clientbus.Client{}, clientbus.ErrNotFound
}

type integrationStore struct {
	integrations map[int64]integrationbus.Integration
	nextID       int64
}

func (s *integrationStore) NewWithTx(tx sqldb.CommitRollbacker) (integrationbus.Storer, error) {
	return s, nil
}

func (s *integrationStore) Create(ctx context.Context, itg integrationbus.Integration) (integrationbus.Integration, error) {
	s.nextID++
	itg.ID = s.nextID
	s.integrations[itg.ID] = itg
	return itg, nil
}

func (s *integrationStore) Update(ctx context.Context, itg integrationbus.Integration) error {
	s.integrations[itg.ID] = itg
	return nil
}

func (s *integrationStore) Delete(ctx context.Context, itg integrationbus.Integration) error {
	delete(s.integrations, itg.ID)
	return nil
}

func (s *integrationStore) Query(ctx context.Context, filter integrationbus.QueryFilter, orderBy order.By, page page.Page) ([]integrationbus.Integration, error) {
	return nil, nil
}

func (s *integrationStore) Count(ctx context.Context, filter integrationbus.QueryFilter) (int, error) {
	return len(s.integrations), nil
}

func (s *integrationStore) QueryByID(ctx context.Context, integrationID int64) (integrationbus.Integration, error) {
	itg, ok := s.integrations[integrationID]
	if !ok {
		return integrationbus.Integration{}, integrationbus.ErrNotFound
	}
	return itg, nil
}

func (s *integrationStore) QueryByClientAndType(ctx context.Context, clientID int64, integrationType string) (integrationbus.Integration, error) {
	for _, itg := range s.integrations {
		if itg.ClientID == clientID && itg.Type == integrationType {
			return itg, nil
		}
	}
	return integrationbus.Integration{}, integrationbus.ErrNotFound
}

// =============================================================================

func newTestCore() *integrationbus.Core {
	now := time.Now()

	clientBus := clientbus.NewCore(&clientStore{
		clients: map[int64]clientbus.Client{
			1: {ID: 1, Name: name.MustParse("Acme Retail"), Status: status.Active, CreatedAt: now, UpdatedAt: now},
			2: {ID: 2, Name: name.MustParse("Globex Finance"), Status: status.Active, CreatedAt: now, UpdatedAt: now},
		},
	})

	return integrationbus.NewCore(&integrationStore{integrations: map[int64]integrationbus.Integration{}}, clientBus)
}

func Test_Create(t *testing.T) {
	ctx := context.Background()
	bus := newTestCore()

	itg, err := bus.Create(ctx, integrationbus.NewIntegration{
		ClientID:    1,
		Type:        "kommo",
		Credentials: map[string]any{"channel_secret": "s3cret"},
		WebhookURL:  "https://acme.example.com/hooks/kommo",
	})
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	if !itg.Status.Equal(status.Active) {
		t.Errorf("status: got %s, exp %s", itg.Status, status.Active)
	}

	// One integration per (client, type).
	if _, err := bus.Create(ctx, integrationbus.NewIntegration{ClientID: 1, Type: "kommo"}); !errors.Is(err, integrationbus.ErrUniqueClientType) {
		t.Fatalf("duplicate type: got %v, exp %v", err, integrationbus.ErrUniqueClientType)
	}

	// The same type under another client is fine.
	if _, err := bus.Create(ctx, integrationbus.NewIntegration{ClientID: 2, Type: "kommo"}); err != nil {
		t.Fatalf("same type, other client: %s", err)
	}

	if _, err := bus.Create(ctx, integrationbus.NewIntegration{ClientID: 99, Type: "kommo"}); !errors.Is(err, integrationbus.ErrClientNotFound) {
		t.Fatalf("unknown client: got %v, exp %v", err, integrationbus.ErrClientNotFound)
	}
}

func Test_Update_TypeCollision(t *testing.T) {
	ctx := context.Background()
	bus := newTestCore()

	if _, err := bus.Create(ctx, integrationbus.NewIntegration{ClientID: 1, Type: "kommo"}); err != nil {
		t.Fatalf("create kommo: %s", err)
	}

	email, err := bus.Create(ctx, integrationbus.NewIntegration{ClientID: 1, Type: "email"})
	if err != nil {
		t.Fatalf("create email: %s", err)
	}

	// Changing type onto the client's other integration collides.
	taken := "kommo"
	if _, err := bus.Update(ctx, email, integrationbus.UpdateIntegration{Type: &taken}); !errors.Is(err, integrationbus.ErrUniqueClientType) {
		t.Fatalf("taken type: got %v, exp %v", err, integrationbus.ErrUniqueClientType)
	}

	// Re-submitting the current type does not.
	own := email.Type
	webhook := "https://acme.example.com/hooks/email"
	itg, err := bus.Update(ctx, email, integrationbus.UpdateIntegration{Type: &own, WebhookURL: &webhook})
	if err != nil {
		t.Fatalf("own type: %s", err)
	}
	if itg.WebhookURL != webhook {
		t.Errorf("webhookUrl: got %q, exp %q", itg.WebhookURL, webhook)
	}
}
