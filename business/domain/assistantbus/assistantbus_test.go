package assistantbus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lyracrm/lyra/business/domain/assistantbus"
	"github.com/lyracrm/lyra/business/domain/clientbus"
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

type assistantStore struct {
	assistants map[int64]assistantbus.Assistant
	nextID     int64
}

func (s *assistantStore) NewWithTx(tx sqldb.CommitRollbacker) (assistantbus.Storer, error) {
	return s, nil
}

func (s *assistantStore) Create(ctx context.Context, ast assistantbus.Assistant) (assistantbus.Assistant, error) {
	s.nextID++
	ast.ID = s.nextID
	s.assistants[ast.ID] = ast
	return ast, nil
}

func (s *assistantStore) Update(ctx context.Context, ast assistantbus.Assistant) error {
	s.assistants[ast.ID] = ast
	return nil
}

func (s *assistantStore) Delete(ctx context.Context, ast assistantbus.Assistant) error {
	delete(s.assistants, ast.ID)
	return nil
}

func (s *assistantStore) Query(ctx context.Context, filter assistantbus.QueryFilter, orderBy order.By, page page.Page) ([]assistantbus.Assistant, error) {
	return nil, nil
}

func (s *assistantStore) Count(ctx context.Context, filter assistantbus.QueryFilter) (int, error) {
	return len(s.assistants), nil
}

func (s *assistantStore) QueryByID(ctx context.Context, assistantID int64) (assistantbus.Assistant, error) {
	ast, ok := s.assistants[assistantID]
	if !ok {
		return assistantbus.Assistant{}, assistantbus.ErrNotFound
	}
	return ast, nil
}

func (s *assistantStore) QueryByOpenAIID(ctx context.Context, openaiAssistantID string) (assistantbus.Assistant, error) {
	for _, ast := range s.assistants {
		if ast.OpenAIAssistantID == openaiAssistantID {
			return ast, nil
		}
	}
	return assistantbus.Assistant{}, assistantbus.ErrNotFound
}

func (s *assistantStore) QueryByClient(ctx context.Context, clientID int64) ([]assistantbus.Assistant, error) {
	var asts []assistantbus.Assistant
	for _, ast := range s.assistants {
		if ast.ClientID == clientID {
			asts = append(asts, ast)
		}
	}
	return asts, nil
}

// =============================================================================

func newTestCore() *assistantbus.Core {
	now := time.Now()

	clientBus := clientbus.NewCore(&clientStore{
		clients: map[int64]clientbus.Client{
			1: {ID: 1, Name: name.MustParse("Acme Retail"), Status: status.Active, CreatedAt: now, UpdatedAt: now},
			2: {ID: 2, Name: name.MustParse("Globex Finance"), Status: status.Active, CreatedAt: now, UpdatedAt: now},
		},
	})

	return assistantbus.NewCore(&assistantStore{assistants: map[int64]assistantbus.Assistant{}}, clientBus)
}

func Test_Create(t *testing.T) {
	ctx := context.Background()
	bus := newTestCore()

	ast, err := bus.Create(ctx, assistantbus.NewAssistant{
		ClientID:          1,
		Name:              name.MustParse("Acme Bot"),
		OpenAIAssistantID: "asst_abc123",
		Model:             "gpt-4o",
		Temperature:       0.7,
	})
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	if !ast.Status.Equal(status.Active) {
		t.Errorf("status: got %s, exp %s", ast.Status, status.Active)
	}
	if ast.ClientID != 1 {
		t.Errorf("clientID: got %d, exp 1", ast.ClientID)
	}
}

func Test_Create_Validation(t *testing.T) {
	ctx := context.Background()
	bus := newTestCore()

	// Client existence is checked before the openai id.
	_, err := bus.Create(ctx, assistantbus.NewAssistant{ClientID: 99, Name: name.MustParse("Bot"), OpenAIAssistantID: "asst_abc123"})
	if !errors.Is(err, assistantbus.ErrClientNotFound) {
		t.Fatalf("unknown client: got %v, exp %v", err, assistantbus.ErrClientNotFound)
	}

	if _, err := bus.Create(ctx, assistantbus.NewAssistant{ClientID: 1, Name: name.MustParse("Bot"), OpenAIAssistantID: "asst_abc123"}); err != nil {
		t.Fatalf("create: %s", err)
	}

	// Same openai id under a different client is still a conflict.
	_, err = bus.Create(ctx, assistantbus.NewAssistant{ClientID: 2, Name: name.MustParse("Other Bot"), OpenAIAssistantID: "asst_abc123"})
	if !errors.Is(err, assistantbus.ErrUniqueOpenAIID) {
		t.Fatalf("duplicate openai id: got %v, exp %v", err, assistantbus.ErrUniqueOpenAIID)
	}
}

func Test_Update(t *testing.T) {
	ctx := context.Background()
	bus := newTestCore()

	first, err := bus.Create(ctx, assistantbus.NewAssistant{ClientID: 1, Name: name.MustParse("Acme Bot"), OpenAIAssistantID: "asst_abc123", Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("create first: %s", err)
	}

	if _, err := bus.Create(ctx, assistantbus.NewAssistant{ClientID: 2, Name: name.MustParse("Globex Bot"), OpenAIAssistantID: "asst_def456", Model: "gpt-4o"}); err != nil {
		t.Fatalf("create second: %s", err)
	}

	// Taking another assistant's openai id conflicts.
	taken := "asst_def456"
	if _, err := bus.Update(ctx, first, assistantbus.UpdateAssistant{OpenAIAssistantID: &taken}); !errors.Is(err, assistantbus.ErrUniqueOpenAIID) {
		t.Fatalf("taken openai id: got %v, exp %v", err, assistantbus.ErrUniqueOpenAIID)
	}

	// Re-submitting the current openai id does not.
	own := first.OpenAIAssistantID
	model := "gpt-4o-mini"
	ast, err := bus.Update(ctx, first, assistantbus.UpdateAssistant{OpenAIAssistantID: &own, Model: &model})
	if err != nil {
		t.Fatalf("own openai id: %s", err)
	}
	if ast.Model != "gpt-4o-mini" {
		t.Errorf("model: got %q, exp %q", ast.Model, "gpt-4o-mini")
	}

	unknownClient := int64(99)
	if _, err := bus.Update(ctx, first, assistantbus.UpdateAssistant{ClientID: &unknownClient}); !errors.Is(err, assistantbus.ErrClientNotFound) {
		t.Fatalf("unknown client: got %v, exp %v", err, assistantbus.ErrClientNotFound)
	}
}
