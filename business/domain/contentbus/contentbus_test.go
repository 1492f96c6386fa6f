package contentbus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/lyracrm/lyra/business/domain/assistantbus"
	"github.com/lyracrm/lyra/business/domain/clientbus"
	"github.com/lyracrm/lyra/business/domain/contentbus"
	"github.com/lyracrm/lyra/business/sdk/order"
	"github.com/lyracrm/lyra/business/sdk/page"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/business/types/contentstatus"
	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/status"
)

// =============================================================================
// In-memory stores

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
}

func (s *assistantStore) NewWithTx(tx sqldb.CommitRollbacker) (assistantbus.Storer, error) {
	return s, nil
}

func (s *assistantStore) Create(ctx context.Context, ast assistantbus.Assistant) (assistantbus.Assistant, error) {
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

type contentStore struct {
	content map[int64]contentbus.Content
	nextID  int64
}

func (s *contentStore) NewWithTx(tx sqldb.CommitRollbacker) (contentbus.Storer, error) {
	return s, nil
}

func (s *contentStore) Create(ctx context.Context, cnt contentbus.Content) (contentbus.Content, error) {
	s.nextID++
	cnt.ID = s.nextID
	s.content[cnt.ID] = cnt
	return cnt, nil
}

func (s *contentStore) Update(ctx context.Context, cnt contentbus.Content) error {
	s.content[cnt.ID] = cnt
	return nil
}

func (s *contentStore) Delete(ctx context.Context, cnt contentbus.Content) error {
	delete(s.content, cnt.ID)
	return nil
}

func (s *contentStore) Query(ctx context.Context, filter contentbus.QueryFilter, orderBy order.By, page page.Page) ([]contentbus.Content, error) {
	return nil, nil
}

func (s *contentStore) Count(ctx context.Context, filter contentbus.QueryFilter) (int, error) {
	return len(s.content), nil
}

func (s *contentStore) QueryByID(ctx context.Context, contentID int64) (contentbus.Content, error) {
	cnt, ok := s.content[contentID]
	if !ok {
		return contentbus.Content{}, contentbus.ErrNotFound
	}
	return cnt, nil
}

// =============================================================================

func newTestCore() *contentbus.Core {
	now := time.Now()

	clientBus := clientbus.NewCore(&clientStore{
		clients: map[int64]clientbus.Client{
			1: {ID: 1, Name: name.MustParse("Acme Retail"), Status: status.Active, CreatedAt: now, UpdatedAt: now},
			2: {ID: 2, Name: name.MustParse("Globex Finance"), Status: status.Active, CreatedAt: now, UpdatedAt: now},
		},
	})

	assistantBus := assistantbus.NewCore(&assistantStore{
		assistants: map[int64]assistantbus.Assistant{
			10: {ID: 10, ClientID: 1, Name: name.MustParse("Acme Bot"), OpenAIAssistantID: "asst_acme", Model: "gpt-4o", Temperature: 1, Status: status.Active},
			20: {ID: 20, ClientID: 2, Name: name.MustParse("Globex Bot"), OpenAIAssistantID: "asst_globex", Model: "gpt-4o", Temperature: 1, Status: status.Active},
		},
	}, clientBus)

	return contentbus.NewCore(&contentStore{content: map[int64]contentbus.Content{}}, clientBus, assistantBus)
}

func Test_Create(t *testing.T) {
	ctx := context.Background()
	bus := newTestCore()

	cnt, err := bus.Create(ctx, contentbus.NewContent{
		ClientID:    1,
		AssistantID: 10,
		Type:        "social_post",
		Parameters:  map[string]any{"topic": "sale"},
	})
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	if !cnt.Status.Equal(contentstatus.Pending) {
		t.Errorf("status: got %s, exp %s", cnt.Status, contentstatus.Pending)
	}
	if cnt.RequestedAt.IsZero() {
		t.Error("requestedAt: expected to be set")
	}
	if cnt.StartedAt != nil {
		t.Error("startedAt: expected nil on a new job")
	}
	if cnt.CompletedAt != nil {
		t.Error("completedAt: expected nil on a new job")
	}

	stored, err := bus.QueryByID(ctx, cnt.ID)
	if err != nil {
		t.Fatalf("query: %s", err)
	}
	if diff := cmp.Diff(cnt, stored); diff != "" {
		t.Errorf("stored job mismatch (-created +stored):\n%s", diff)
	}
}

func Test_Create_UnknownClient(t *testing.T) {
	ctx := context.Background()
	bus := newTestCore()

	_, err := bus.Create(ctx, contentbus.NewContent{ClientID: 99, AssistantID: 10, Type: "social_post"})
	if !errors.Is(err, contentbus.ErrClientNotFound) {
		t.Fatalf("error: got %v, exp %v", err, contentbus.ErrClientNotFound)
	}
}

func Test_Create_AssistantMismatch(t *testing.T) {
	ctx := context.Background()
	bus := newTestCore()

	// Assistant 20 belongs to client 2.
	_, err := bus.Create(ctx, contentbus.NewContent{ClientID: 1, AssistantID: 20, Type: "social_post"})
	if !errors.Is(err, contentbus.ErrAssistantMismatch) {
		t.Fatalf("error: got %v, exp %v", err, contentbus.ErrAssistantMismatch)
	}

	_, err = bus.Create(ctx, contentbus.NewContent{ClientID: 1, AssistantID: 99, Type: "social_post"})
	if !errors.Is(err, contentbus.ErrAssistantMismatch) {
		t.Fatalf("unknown assistant: got %v, exp %v", err, contentbus.ErrAssistantMismatch)
	}
}

func Test_Transitions_OverwriteTimestamps(t *testing.T) {
	ctx := context.Background()
	bus := newTestCore()

	cnt, err := bus.Create(ctx, contentbus.NewContent{ClientID: 1, AssistantID: 10, Type: "social_post"})
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	cnt, err = bus.Start(ctx, cnt)
	if err != nil {
		t.Fatalf("start: %s", err)
	}
	if !cnt.Status.Equal(contentstatus.InProgress) {
		t.Fatalf("status after start: got %s, exp %s", cnt.Status, contentstatus.InProgress)
	}
	if cnt.StartedAt == nil {
		t.Fatal("startedAt: expected to be stamped by start")
	}
	firstStart := *cnt.StartedAt

	cnt, err = bus.Complete(ctx, cnt)
	if err != nil {
		t.Fatalf("complete: %s", err)
	}
	if !cnt.Status.Equal(contentstatus.Completed) {
		t.Fatalf("status after complete: got %s, exp %s", cnt.Status, contentstatus.Completed)
	}
	if cnt.CompletedAt == nil {
		t.Fatal("completedAt: expected to be stamped by complete")
	}

	// Re-running the job overwrites the previous start time.
	time.Sleep(5 * time.Millisecond)

	cnt, err = bus.Start(ctx, cnt)
	if err != nil {
		t.Fatalf("restart: %s", err)
	}
	if !cnt.StartedAt.After(firstStart) {
		t.Errorf("startedAt: expected restart to overwrite, got %v, first %v", cnt.StartedAt, firstStart)
	}
}

func Test_Fail_StampsCompletedAt(t *testing.T) {
	ctx := context.Background()
	bus := newTestCore()

	cnt, err := bus.Create(ctx, contentbus.NewContent{ClientID: 1, AssistantID: 10, Type: "social_post"})
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	cnt, err = bus.Fail(ctx, cnt)
	if err != nil {
		t.Fatalf("fail: %s", err)
	}
	if !cnt.Status.Equal(contentstatus.Failed) {
		t.Errorf("status: got %s, exp %s", cnt.Status, contentstatus.Failed)
	}
	if cnt.CompletedAt == nil {
		t.Error("completedAt: expected to be stamped by fail")
	}
}

func Test_Update_StatusStampsOnce(t *testing.T) {
	ctx := context.Background()
	bus := newTestCore()

	cnt, err := bus.Create(ctx, contentbus.NewContent{ClientID: 1, AssistantID: 10, Type: "social_post"})
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	inProgress := contentstatus.InProgress
	cnt, err = bus.Update(ctx, cnt, contentbus.UpdateContent{Status: &inProgress})
	if err != nil {
		t.Fatalf("update to in_progress: %s", err)
	}
	if cnt.StartedAt == nil {
		t.Fatal("startedAt: expected update to stamp it")
	}
	firstStart := *cnt.StartedAt

	completed := contentstatus.Completed
	cnt, err = bus.Update(ctx, cnt, contentbus.UpdateContent{Status: &completed})
	if err != nil {
		t.Fatalf("update to completed: %s", err)
	}
	if cnt.CompletedAt == nil {
		t.Fatal("completedAt: expected update to stamp it")
	}
	firstComplete := *cnt.CompletedAt

	// A status update keeps existing timestamps, unlike the explicit
	// transitions which overwrite.
	time.Sleep(5 * time.Millisecond)

	cnt, err = bus.Update(ctx, cnt, contentbus.UpdateContent{Status: &inProgress})
	if err != nil {
		t.Fatalf("update back to in_progress: %s", err)
	}
	if !cnt.StartedAt.Equal(firstStart) {
		t.Errorf("startedAt: expected unchanged, got %v, first %v", cnt.StartedAt, firstStart)
	}

	failed := contentstatus.Failed
	cnt, err = bus.Update(ctx, cnt, contentbus.UpdateContent{Status: &failed})
	if err != nil {
		t.Fatalf("update to failed: %s", err)
	}
	if !cnt.CompletedAt.Equal(firstComplete) {
		t.Errorf("completedAt: expected unchanged, got %v, first %v", cnt.CompletedAt, firstComplete)
	}
}

func Test_Update_RevalidatesPairing(t *testing.T) {
	ctx := context.Background()
	bus := newTestCore()

	cnt, err := bus.Create(ctx, contentbus.NewContent{ClientID: 1, AssistantID: 10, Type: "social_post"})
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	// Moving only the assistant to one owned by another client must fail.
	otherAssistant := int64(20)
	if _, err := bus.Update(ctx, cnt, contentbus.UpdateContent{AssistantID: &otherAssistant}); !errors.Is(err, contentbus.ErrAssistantMismatch) {
		t.Fatalf("assistant only: got %v, exp %v", err, contentbus.ErrAssistantMismatch)
	}

	// Moving only the client leaves the old assistant orphaned.
	otherClient := int64(2)
	if _, err := bus.Update(ctx, cnt, contentbus.UpdateContent{ClientID: &otherClient}); !errors.Is(err, contentbus.ErrAssistantMismatch) {
		t.Fatalf("client only: got %v, exp %v", err, contentbus.ErrAssistantMismatch)
	}

	unknownClient := int64(99)
	if _, err := bus.Update(ctx, cnt, contentbus.UpdateContent{ClientID: &unknownClient}); !errors.Is(err, contentbus.ErrClientNotFound) {
		t.Fatalf("unknown client: got %v, exp %v", err, contentbus.ErrClientNotFound)
	}

	// Moving both together to a consistent pair succeeds.
	cnt, err = bus.Update(ctx, cnt, contentbus.UpdateContent{ClientID: &otherClient, AssistantID: &otherAssistant})
	if err != nil {
		t.Fatalf("move pair: %s", err)
	}
	if cnt.ClientID != 2 || cnt.AssistantID != 20 {
		t.Errorf("pair: got (%d,%d), exp (2,20)", cnt.ClientID, cnt.AssistantID)
	}
}
