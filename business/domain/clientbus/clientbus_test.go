package clientbus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lyracrm/lyra/business/domain/clientbus"
	"github.com/lyracrm/lyra/business/sdk/order"
	"github.com/lyracrm/lyra/business/sdk/page"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/status"
)

type clientStore struct {
	clients map[int64]clientbus.Client
	nextID  int64
}

func (s *clientStore) NewWithTx(tx sqldb.CommitRollbacker) (clientbus.Storer, error) {
	return s, nil
}

func (s *clientStore) Create(ctx context.Context, clt clientbus.Client) (clientbus.Client, error) {
	s.nextID++
	clt.ID = s.nextID
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

// =============================================================================

func Test_Create(t *testing.T) {
	ctx := context.Background()
	bus := clientbus.NewCore(&clientStore{clients: map[int64]clientbus.Client{}})

	clt, err := bus.Create(ctx, clientbus.NewClient{Name: name.MustParse("Acme Retail"), Industry: "retail"})
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	if !clt.Status.Equal(status.Active) {
		t.Errorf("status: got %s, exp %s", clt.Status, status.Active)
	}
	if clt.CreatedAt.IsZero() || clt.UpdatedAt.IsZero() {
		t.Error("dates: expected to be set")
	}

	if _, err := bus.Create(ctx, clientbus.NewClient{Name: name.MustParse("Acme Retail")}); !errors.Is(err, clientbus.ErrUniqueName) {
		t.Fatalf("duplicate name: got %v, exp %v", err, clientbus.ErrUniqueName)
	}
}

func Test_Update_NameConflict(t *testing.T) {
	ctx := context.Background()
	bus := clientbus.NewCore(&clientStore{clients: map[int64]clientbus.Client{}})

	acme, err := bus.Create(ctx, clientbus.NewClient{Name: name.MustParse("Acme Retail")})
	if err != nil {
		t.Fatalf("create acme: %s", err)
	}

	if _, err := bus.Create(ctx, clientbus.NewClient{Name: name.MustParse("Globex Finance")}); err != nil {
		t.Fatalf("create globex: %s", err)
	}

	// Renaming onto another client's name conflicts.
	taken := name.MustParse("Globex Finance")
	if _, err := bus.Update(ctx, acme, clientbus.UpdateClient{Name: &taken}); !errors.Is(err, clientbus.ErrUniqueName) {
		t.Fatalf("taken name: got %v, exp %v", err, clientbus.ErrUniqueName)
	}

	// Renaming onto the client's own current name does not.
	own := acme.Name
	industry := "ecommerce"
	clt, err := bus.Update(ctx, acme, clientbus.UpdateClient{Name: &own, Industry: &industry})
	if err != nil {
		t.Fatalf("own name: %s", err)
	}
	if clt.Industry != "ecommerce" {
		t.Errorf("industry: got %q, exp %q", clt.Industry, "ecommerce")
	}
}
