package accesscache_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/lyracrm/lyra/business/domain/accessbus"
	"github.com/lyracrm/lyra/business/domain/accessbus/stores/accesscache"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/business/types/role"
	"github.com/lyracrm/lyra/foundation/logger"
)

// denyStore persists grants but always denies ValidateAccess, standing in
// for a database whose rows the delete cascade already removed. Anything
// the cached store still allows comes from memory alone.
type denyStore struct {
	grants map[int64]accessbus.UserClient
	nextID int64
}

func newDenyStore() *denyStore {
	return &denyStore{grants: map[int64]accessbus.UserClient{}}
}

func (s *denyStore) NewWithTx(tx sqldb.CommitRollbacker) (accessbus.Storer, error) {
	return s, nil
}

func (s *denyStore) Create(ctx context.Context, uc accessbus.UserClient) (accessbus.UserClient, error) {
	s.nextID++
	uc.ID = s.nextID
	s.grants[uc.ID] = uc
	return uc, nil
}

func (s *denyStore) Update(ctx context.Context, uc accessbus.UserClient) error {
	s.grants[uc.ID] = uc
	return nil
}

func (s *denyStore) Delete(ctx context.Context, uc accessbus.UserClient) error {
	delete(s.grants, uc.ID)
	return nil
}

func (s *denyStore) QueryByUser(ctx context.Context, userID int64) ([]accessbus.UserClient, error) {
	return nil, nil
}

func (s *denyStore) QueryByClient(ctx context.Context, clientID int64) ([]accessbus.UserClient, error) {
	return nil, nil
}

func (s *denyStore) QueryGrant(ctx context.Context, userID int64, clientID int64) (accessbus.UserClient, error) {
	return accessbus.UserClient{}, accessbus.ErrNotFound
}

func (s *denyStore) QueryAll(ctx context.Context) ([]accessbus.UserClient, error) {
	var ucs []accessbus.UserClient
	for _, uc := range s.grants {
		ucs = append(ucs, uc)
	}
	return ucs, nil
}

func (s *denyStore) QueryAllUserRoles(ctx context.Context) (map[int64]role.Role, error) {
	return nil, nil
}

func (s *denyStore) ValidateAccess(ctx context.Context, userID int64, clientID int64) error {
	return accessbus.ErrAccessDenied
}

func (s *denyStore) SyncUserRole(ctx context.Context, userID int64, r role.Role) error {
	return nil
}

func (s *denyStore) PurgeUser(ctx context.Context, userID int64) error {
	for id, uc := range s.grants {
		if uc.UserID == userID {
			delete(s.grants, id)
		}
	}
	return nil
}

func (s *denyStore) PurgeClient(ctx context.Context, clientID int64) error {
	for id, uc := range s.grants {
		if uc.ClientID == clientID {
			delete(s.grants, id)
		}
	}
	return nil
}

// =============================================================================

func newTestStore(t *testing.T) *accesscache.Store {
	t.Helper()

	log := logger.New(os.Stdout, logger.LevelError, "TEST", nil)

	store, err := accesscache.NewStore(log, newDenyStore())
	if err != nil {
		t.Fatalf("building store: %s", err)
	}

	return store
}

func Test_PurgeUser_ClearsCache(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Create(ctx, accessbus.UserClient{UserID: 1, ClientID: 1}); err != nil {
		t.Fatalf("create: %s", err)
	}

	// The pair is served from memory even though the database denies.
	if err := store.ValidateAccess(ctx, 1, 1); err != nil {
		t.Fatalf("cached pair: %s", err)
	}

	if err := store.PurgeUser(ctx, 1); err != nil {
		t.Fatalf("purge user: %s", err)
	}

	if err := store.ValidateAccess(ctx, 1, 1); !errors.Is(err, accessbus.ErrAccessDenied) {
		t.Fatalf("after purge: got %v, exp %v", err, accessbus.ErrAccessDenied)
	}
}

func Test_PurgeClient_ClearsCache(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Create(ctx, accessbus.UserClient{UserID: 1, ClientID: 1}); err != nil {
		t.Fatalf("create first: %s", err)
	}
	if _, err := store.Create(ctx, accessbus.UserClient{UserID: 2, ClientID: 1}); err != nil {
		t.Fatalf("create second: %s", err)
	}
	if _, err := store.Create(ctx, accessbus.UserClient{UserID: 1, ClientID: 2}); err != nil {
		t.Fatalf("create third: %s", err)
	}

	if err := store.PurgeClient(ctx, 1); err != nil {
		t.Fatalf("purge client: %s", err)
	}

	if err := store.ValidateAccess(ctx, 1, 1); !errors.Is(err, accessbus.ErrAccessDenied) {
		t.Errorf("user 1 client 1: got %v, exp %v", err, accessbus.ErrAccessDenied)
	}
	if err := store.ValidateAccess(ctx, 2, 1); !errors.Is(err, accessbus.ErrAccessDenied) {
		t.Errorf("user 2 client 1: got %v, exp %v", err, accessbus.ErrAccessDenied)
	}

	// Grants on other clients survive.
	if err := store.ValidateAccess(ctx, 1, 2); err != nil {
		t.Errorf("user 1 client 2: %s", err)
	}
}

func Test_PurgeUser_DropsRoleGroup(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// An admin role group admits any client without a grant.
	if err := store.SyncUserRole(ctx, 7, role.Admin); err != nil {
		t.Fatalf("sync role: %s", err)
	}
	if err := store.ValidateAccess(ctx, 7, 42); err != nil {
		t.Fatalf("admin bypass: %s", err)
	}

	if err := store.PurgeUser(ctx, 7); err != nil {
		t.Fatalf("purge user: %s", err)
	}

	if err := store.ValidateAccess(ctx, 7, 42); !errors.Is(err, accessbus.ErrAccessDenied) {
		t.Fatalf("after purge: got %v, exp %v", err, accessbus.ErrAccessDenied)
	}
}
