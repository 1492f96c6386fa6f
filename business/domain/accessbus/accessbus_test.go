package accessbus_test

import (
	"context"
	"errors"
	"net/mail"
	"testing"
	"time"

	"github.com/lyracrm/lyra/business/domain/accessbus"
	"github.com/lyracrm/lyra/business/domain/clientbus"
	"github.com/lyracrm/lyra/business/domain/userbus"
	"github.com/lyracrm/lyra/business/sdk/order"
	"github.com/lyracrm/lyra/business/sdk/page"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/role"
	"github.com/lyracrm/lyra/business/types/status"
)

// =============================================================================
// In-memory stores

type userStore struct {
	users map[int64]userbus.User
}

func (s *userStore) NewWithTx(tx sqldb.CommitRollbacker) (userbus.Storer, error) {
	return s, nil
}

func (s *userStore) Create(ctx context.Context, usr userbus.User) (userbus.User, error) {
	s.users[usr.ID] = usr
	return usr, nil
}

func (s *userStore) Update(ctx context.Context, usr userbus.User) error {
	s.users[usr.ID] = usr
	return nil
}

func (s *userStore) Delete(ctx context.Context, usr userbus.User) error {
	delete(s.users, usr.ID)
	return nil
}

func (s *userStore) Query(ctx context.Context, filter userbus.QueryFilter, orderBy order.By, page page.Page) ([]userbus.User, error) {
	return nil, nil
}

func (s *userStore) Count(ctx context.Context, filter userbus.QueryFilter) (int, error) {
	return len(s.users), nil
}

func (s *userStore) QueryByID(ctx context.Context, userID int64) (userbus.User, error) {
	usr, ok := s.users[userID]
	if !ok {
		return userbus.User{}, userbus.ErrNotFound
	}
	return usr, nil
}

func (s *userStore) QueryByEmail(ctx context.Context, email mail.Address) (userbus.User, error) {
	for _, usr := range s.users {
		if usr.Email.Address == email.Address {
			return usr, nil
		}
	}
	return userbus.User{}, userbus.ErrNotFound
}

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

type grantKey struct {
	userID   int64
	clientID int64
}

type accessStore struct {
	grants map[grantKey]accessbus.UserClient
	nextID int64
}

func (s *accessStore) NewWithTx(tx sqldb.CommitRollbacker) (accessbus.Storer, error) {
	return s, nil
}

func (s *accessStore) Create(ctx context.Context, uc accessbus.UserClient) (accessbus.UserClient, error) {
	s.nextID++
	uc.ID = s.nextID
	s.grants[grantKey{uc.UserID, uc.ClientID}] = uc
	return uc, nil
}

func (s *accessStore) Update(ctx context.Context, uc accessbus.UserClient) error {
	s.grants[grantKey{uc.UserID, uc.ClientID}] = uc
	return nil
}

func (s *accessStore) Delete(ctx context.Context, uc accessbus.UserClient) error {
	delete(s.grants, grantKey{uc.UserID, uc.ClientID})
	return nil
}

func (s *accessStore) QueryByUser(ctx context.Context, userID int64) ([]accessbus.UserClient, error) {
	var ucs []accessbus.UserClient
	for _, uc := range s.grants {
		if uc.UserID == userID {
			ucs = append(ucs, uc)
		}
	}
	return ucs, nil
}

func (s *accessStore) QueryByClient(ctx context.Context, clientID int64) ([]accessbus.UserClient, error) {
	var ucs []accessbus.UserClient
	for _, uc := range s.grants {
		if uc.ClientID == clientID {
			ucs = append(ucs, uc)
		}
	}
	return ucs, nil
}

func (s *accessStore) QueryGrant(ctx context.Context, userID int64, clientID int64) (accessbus.UserClient, error) {
	uc, ok := s.grants[grantKey{userID, clientID}]
	if !ok {
		return accessbus.UserClient{}, accessbus.ErrNotFound
	}
	return uc, nil
}

func (s *accessStore) QueryAll(ctx context.Context) ([]accessbus.UserClient, error) {
	var ucs []accessbus.UserClient
	for _, uc := range s.grants {
		ucs = append(ucs, uc)
	}
	return ucs, nil
}

func (s *accessStore) QueryAllUserRoles(ctx context.Context) (map[int64]role.Role, error) {
	return nil, nil
}

func (s *accessStore) ValidateAccess(ctx context.Context, userID int64, clientID int64) error {
	if _, ok := s.grants[grantKey{userID, clientID}]; !ok {
		return accessbus.ErrAccessDenied
	}
	return nil
}

func (s *accessStore) SyncUserRole(ctx context.Context, userID int64, r role.Role) error {
	return nil
}

func (s *accessStore) PurgeUser(ctx context.Context, userID int64) error {
	for k := range s.grants {
		if k.userID == userID {
			delete(s.grants, k)
		}
	}
	return nil
}

func (s *accessStore) PurgeClient(ctx context.Context, clientID int64) error {
	for k := range s.grants {
		if k.clientID == clientID {
			delete(s.grants, k)
		}
	}
	return nil
}

// =============================================================================

func newTestCore() *accessbus.Core {
	now := time.Now()

	userBus := userbus.NewCore(&userStore{
		users: map[int64]userbus.User{
			1: {ID: 1, Name: name.MustParse("Operator Gopher"), Email: mail.Address{Address: "operator@example.com"}, Role: role.Operator, CreatedAt: now, UpdatedAt: now},
		},
	})

	clientBus := clientbus.NewCore(&clientStore{
		clients: map[int64]clientbus.Client{
			1: {ID: 1, Name: name.MustParse("Acme Retail"), Status: status.Active, CreatedAt: now, UpdatedAt: now},
		},
	})

	return accessbus.NewCore(&accessStore{grants: map[grantKey]accessbus.UserClient{}}, userBus, clientBus)
}

func Test_Grant(t *testing.T) {
	ctx := context.Background()
	bus := newTestCore()

	uc, err := bus.Grant(ctx, accessbus.NewUserClient{UserID: 1, ClientID: 1, Permissions: "read,write"})
	if err != nil {
		t.Fatalf("grant: %s", err)
	}

	if uc.ID == 0 {
		t.Error("id: expected to be assigned")
	}
	if uc.AssignedAt.IsZero() {
		t.Error("assignedAt: expected to be set")
	}
	if uc.Permissions != "read,write" {
		t.Errorf("permissions: got %q, exp %q", uc.Permissions, "read,write")
	}

	// A second grant for the same pair must be rejected.
	if _, err := bus.Grant(ctx, accessbus.NewUserClient{UserID: 1, ClientID: 1}); !errors.Is(err, accessbus.ErrUniqueGrant) {
		t.Fatalf("duplicate: got %v, exp %v", err, accessbus.ErrUniqueGrant)
	}
}

func Test_Grant_ReferencesChecked(t *testing.T) {
	ctx := context.Background()
	bus := newTestCore()

	if _, err := bus.Grant(ctx, accessbus.NewUserClient{UserID: 99, ClientID: 1}); !errors.Is(err, accessbus.ErrUserNotFound) {
		t.Fatalf("unknown user: got %v, exp %v", err, accessbus.ErrUserNotFound)
	}

	if _, err := bus.Grant(ctx, accessbus.NewUserClient{UserID: 1, ClientID: 99}); !errors.Is(err, accessbus.ErrClientNotFound) {
		t.Fatalf("unknown client: got %v, exp %v", err, accessbus.ErrClientNotFound)
	}
}

func Test_HasAccess_Toggles(t *testing.T) {
	ctx := context.Background()
	bus := newTestCore()

	if err := bus.HasAccess(ctx, 1, 1); !errors.Is(err, accessbus.ErrAccessDenied) {
		t.Fatalf("before grant: got %v, exp %v", err, accessbus.ErrAccessDenied)
	}

	if _, err := bus.Grant(ctx, accessbus.NewUserClient{UserID: 1, ClientID: 1}); err != nil {
		t.Fatalf("grant: %s", err)
	}

	if err := bus.HasAccess(ctx, 1, 1); err != nil {
		t.Fatalf("after grant: %s", err)
	}

	if err := bus.Revoke(ctx, 1, 1); err != nil {
		t.Fatalf("revoke: %s", err)
	}

	if err := bus.HasAccess(ctx, 1, 1); !errors.Is(err, accessbus.ErrAccessDenied) {
		t.Fatalf("after revoke: got %v, exp %v", err, accessbus.ErrAccessDenied)
	}
}

func Test_Purge(t *testing.T) {
	ctx := context.Background()
	bus := newTestCore()

	if _, err := bus.Grant(ctx, accessbus.NewUserClient{UserID: 1, ClientID: 1}); err != nil {
		t.Fatalf("grant: %s", err)
	}

	if err := bus.PurgeUser(ctx, 1); err != nil {
		t.Fatalf("purge user: %s", err)
	}
	if err := bus.HasAccess(ctx, 1, 1); !errors.Is(err, accessbus.ErrAccessDenied) {
		t.Fatalf("after user purge: got %v, exp %v", err, accessbus.ErrAccessDenied)
	}

	if _, err := bus.Grant(ctx, accessbus.NewUserClient{UserID: 1, ClientID: 1}); err != nil {
		t.Fatalf("re-grant: %s", err)
	}

	if err := bus.PurgeClient(ctx, 1); err != nil {
		t.Fatalf("purge client: %s", err)
	}
	if err := bus.HasAccess(ctx, 1, 1); !errors.Is(err, accessbus.ErrAccessDenied) {
		t.Fatalf("after client purge: got %v, exp %v", err, accessbus.ErrAccessDenied)
	}
}

func Test_Revoke_Unknown(t *testing.T) {
	ctx := context.Background()
	bus := newTestCore()

	if err := bus.Revoke(ctx, 1, 1); !errors.Is(err, accessbus.ErrNotFound) {
		t.Fatalf("error: got %v, exp %v", err, accessbus.ErrNotFound)
	}
}

func Test_UpdatePermissions(t *testing.T) {
	ctx := context.Background()
	bus := newTestCore()

	if _, err := bus.Grant(ctx, accessbus.NewUserClient{UserID: 1, ClientID: 1, Permissions: "read"}); err != nil {
		t.Fatalf("grant: %s", err)
	}

	uc, err := bus.UpdatePermissions(ctx, 1, 1, "read,write")
	if err != nil {
		t.Fatalf("update permissions: %s", err)
	}
	if uc.Permissions != "read,write" {
		t.Errorf("permissions: got %q, exp %q", uc.Permissions, "read,write")
	}

	perms, err := bus.Permissions(ctx, 1, 1)
	if err != nil {
		t.Fatalf("permissions: %s", err)
	}
	if perms != "read,write" {
		t.Errorf("stored permissions: got %q, exp %q", perms, "read,write")
	}

	if _, err := bus.UpdatePermissions(ctx, 1, 99, "read"); !errors.Is(err, accessbus.ErrNotFound) {
		t.Fatalf("unknown grant: got %v, exp %v", err, accessbus.ErrNotFound)
	}
}
