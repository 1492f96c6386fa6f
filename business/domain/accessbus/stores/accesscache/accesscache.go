// Package accesscache implements the accessbus.Storer interface with a
// write-through in-memory policy cache in front of the database store.
package accesscache

import (
	"context"
	"fmt"

	"github.com/lyracrm/lyra/business/domain/accessbus"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/business/types/role"
	"github.com/lyracrm/lyra/foundation/logger"
)

// Store implements the accessbus.Storer interface with a write-through
// cache strategy. Reads are served from memory first and fall back to the
// database, repairing the cache on a hit.
type Store struct {
	log    *logger.Logger
	storer accessbus.Storer
	cache  *memoryCache
}

// NewStore constructs the cached store and warms it from the database.
func NewStore(log *logger.Logger, storer accessbus.Storer) (*Store, error) {
	mem, err := newMemoryCache(log)
	if err != nil {
		return nil, err
	}

	s := &Store{
		log:    log,
		storer: storer,
		cache:  mem,
	}

	// Warm-up runs at startup, outside any request.
	if err := s.syncCache(context.Background()); err != nil {
		return nil, fmt.Errorf("sync cache: %w", err)
	}

	return s, nil
}

// NewWithTx constructs a new Store value replacing the inner storer with
// one that is currently inside a transaction. The cache is shared.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (accessbus.Storer, error) {
	newStorer, err := s.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return &Store{
		log:    s.log,
		storer: newStorer,
		cache:  s.cache,
	}, nil
}

// Create inserts a grant and mirrors it into memory.
func (s *Store) Create(ctx context.Context, uc accessbus.UserClient) (accessbus.UserClient, error) {
	uc, err := s.storer.Create(ctx, uc)
	if err != nil {
		return accessbus.UserClient{}, err
	}

	s.cache.add(ctx, uc.UserID, uc.ClientID)

	return uc, nil
}

// Update replaces the permissions on an existing grant. The pair itself is
// unchanged so the policy cache needs no write.
func (s *Store) Update(ctx context.Context, uc accessbus.UserClient) error {
	return s.storer.Update(ctx, uc)
}

// Delete removes a grant and clears it from memory.
func (s *Store) Delete(ctx context.Context, uc accessbus.UserClient) error {
	if err := s.storer.Delete(ctx, uc); err != nil {
		return err
	}

	s.cache.remove(ctx, uc.UserID, uc.ClientID)

	return nil
}

// QueryByUser retrieves the grants held by the specified user.
func (s *Store) QueryByUser(ctx context.Context, userID int64) ([]accessbus.UserClient, error) {
	return s.storer.QueryByUser(ctx, userID)
}

// QueryByClient retrieves the grants issued for the specified client.
func (s *Store) QueryByClient(ctx context.Context, clientID int64) ([]accessbus.UserClient, error) {
	return s.storer.QueryByClient(ctx, clientID)
}

// QueryGrant retrieves the grant for the specified user and client pair.
func (s *Store) QueryGrant(ctx context.Context, userID int64, clientID int64) (accessbus.UserClient, error) {
	return s.storer.QueryGrant(ctx, userID, clientID)
}

// QueryAll retrieves every grant in the system.
func (s *Store) QueryAll(ctx context.Context) ([]accessbus.UserClient, error) {
	return s.storer.QueryAll(ctx)
}

// QueryAllUserRoles retrieves a map of user id to role for all users.
func (s *Store) QueryAllUserRoles(ctx context.Context) (map[int64]role.Role, error) {
	return s.storer.QueryAllUserRoles(ctx)
}

// ValidateAccess checks memory first and falls back to the database,
// repairing the cache when the database allows the pair.
func (s *Store) ValidateAccess(ctx context.Context, userID int64, clientID int64) error {
	if err := s.cache.check(ctx, userID, clientID); err == nil {
		return nil
	}

	if err := s.storer.ValidateAccess(ctx, userID, clientID); err != nil {
		return err
	}

	s.log.Info(ctx, "accesscache: cache miss repaired", "user_id", userID, "client_id", clientID)
	s.cache.add(ctx, userID, clientID)

	return nil
}

// SyncUserRole updates the in-memory role group so role changes take effect
// without a restart.
func (s *Store) SyncUserRole(ctx context.Context, userID int64, r role.Role) error {
	if err := s.storer.SyncUserRole(ctx, userID, r); err != nil {
		return err
	}

	s.cache.setUserRole(ctx, userID, r)

	return nil
}

// PurgeUser drops the user's grant policies and role group from memory so
// a still-valid token stops passing the tenant gate the moment the user is
// deleted.
func (s *Store) PurgeUser(ctx context.Context, userID int64) error {
	if err := s.storer.PurgeUser(ctx, userID); err != nil {
		return err
	}

	s.cache.clearUser(ctx, userID)

	return nil
}

// PurgeClient drops every grant policy issued for the client from memory.
func (s *Store) PurgeClient(ctx context.Context, clientID int64) error {
	if err := s.storer.PurgeClient(ctx, clientID); err != nil {
		return err
	}

	s.cache.clearClient(ctx, clientID)

	return nil
}

func (s *Store) syncCache(ctx context.Context) error {
	userRoles, err := s.storer.QueryAllUserRoles(ctx)
	if err != nil {
		return fmt.Errorf("fetch user roles: %w", err)
	}

	s.cache.loadRoles(ctx, userRoles)

	grants, err := s.storer.QueryAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch grants: %w", err)
	}

	for _, uc := range grants {
		s.cache.add(ctx, uc.UserID, uc.ClientID)
	}

	return nil
}
