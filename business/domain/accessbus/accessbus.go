// Package accessbus provides business access to the user-client grant
// domain. It is the tenant gate: a user may act on a client's resources
// only when a grant exists for the pair.
package accessbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lyracrm/lyra/business/domain/clientbus"
	"github.com/lyracrm/lyra/business/domain/userbus"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/business/types/role"
	"github.com/lyracrm/lyra/foundation/otel"
)

// Set of error variables for grant operations.
var (
	ErrNotFound       = errors.New("grant not found")
	ErrUniqueGrant    = errors.New("grant already exists for user and client")
	ErrUserNotFound   = errors.New("user does not exist")
	ErrClientNotFound = errors.New("client does not exist")
	ErrAccessDenied   = errors.New("access denied")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, uc UserClient) (UserClient, error)
	Update(ctx context.Context, uc UserClient) error
	Delete(ctx context.Context, uc UserClient) error
	QueryByUser(ctx context.Context, userID int64) ([]UserClient, error)
	QueryByClient(ctx context.Context, clientID int64) ([]UserClient, error)
	QueryGrant(ctx context.Context, userID int64, clientID int64) (UserClient, error)
	QueryAll(ctx context.Context) ([]UserClient, error)
	QueryAllUserRoles(ctx context.Context) (map[int64]role.Role, error)
	ValidateAccess(ctx context.Context, userID int64, clientID int64) error
	SyncUserRole(ctx context.Context, userID int64, r role.Role) error
	PurgeUser(ctx context.Context, userID int64) error
	PurgeClient(ctx context.Context, clientID int64) error
}

// Core manages the set of APIs for grant access.
type Core struct {
	storer    Storer
	userBus   *userbus.Core
	clientBus *clientbus.Core
}

// NewCore constructs a core for grant api access.
func NewCore(storer Storer, userBus *userbus.Core, clientBus *clientbus.Core) *Core {
	return &Core{
		storer:    storer,
		userBus:   userBus,
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

	userBus, err := c.userBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	clientBus, err := c.clientBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return NewCore(storer, userBus, clientBus), nil
}

// Grant assigns a client to a user. Checks run existence before uniqueness
// so error messages stay deterministic.
func (c *Core) Grant(ctx context.Context, ng NewUserClient) (UserClient, error) {
	ctx, span := otel.AddSpan(ctx, "business.accessbus.grant")
	defer span.End()

	if _, err := c.userBus.QueryByID(ctx, ng.UserID); err != nil {
		return UserClient{}, fmt.Errorf("query user: %w", ErrUserNotFound)
	}

	if _, err := c.clientBus.QueryByID(ctx, ng.ClientID); err != nil {
		return UserClient{}, fmt.Errorf("query client: %w", ErrClientNotFound)
	}

	if _, err := c.storer.QueryGrant(ctx, ng.UserID, ng.ClientID); err == nil {
		return UserClient{}, ErrUniqueGrant
	}

	uc := UserClient{
		UserID:      ng.UserID,
		ClientID:    ng.ClientID,
		Permissions: ng.Permissions,
		AssignedAt:  time.Now(),
	}

	uc, err := c.storer.Create(ctx, uc)
	if err != nil {
		return UserClient{}, fmt.Errorf("create: %w", err)
	}

	return uc, nil
}

// Revoke removes the grant for the specified user and client pair.
func (c *Core) Revoke(ctx context.Context, userID int64, clientID int64) error {
	ctx, span := otel.AddSpan(ctx, "business.accessbus.revoke")
	defer span.End()

	uc, err := c.storer.QueryGrant(ctx, userID, clientID)
	if err != nil {
		return fmt.Errorf("query grant: %w", err)
	}

	if err := c.storer.Delete(ctx, uc); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// UpdatePermissions replaces the permissions string on an existing grant.
func (c *Core) UpdatePermissions(ctx context.Context, userID int64, clientID int64, permissions string) (UserClient, error) {
	ctx, span := otel.AddSpan(ctx, "business.accessbus.updatePermissions")
	defer span.End()

	uc, err := c.storer.QueryGrant(ctx, userID, clientID)
	if err != nil {
		return UserClient{}, fmt.Errorf("query grant: %w", err)
	}

	uc.Permissions = permissions

	if err := c.storer.Update(ctx, uc); err != nil {
		return UserClient{}, fmt.Errorf("update: %w", err)
	}

	return uc, nil
}

// QueryByUser returns the grants held by the specified user.
func (c *Core) QueryByUser(ctx context.Context, userID int64) ([]UserClient, error) {
	ctx, span := otel.AddSpan(ctx, "business.accessbus.queryByUser")
	defer span.End()

	ucs, err := c.storer.QueryByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("query: userID[%d]: %w", userID, err)
	}

	return ucs, nil
}

// QueryByClient returns the grants issued for the specified client.
func (c *Core) QueryByClient(ctx context.Context, clientID int64) ([]UserClient, error) {
	ctx, span := otel.AddSpan(ctx, "business.accessbus.queryByClient")
	defer span.End()

	ucs, err := c.storer.QueryByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("query: clientID[%d]: %w", clientID, err)
	}

	return ucs, nil
}

// QueryGrant returns the grant for the specified user and client pair.
func (c *Core) QueryGrant(ctx context.Context, userID int64, clientID int64) (UserClient, error) {
	ctx, span := otel.AddSpan(ctx, "business.accessbus.queryGrant")
	defer span.End()

	uc, err := c.storer.QueryGrant(ctx, userID, clientID)
	if err != nil {
		return UserClient{}, fmt.Errorf("query grant: %w", err)
	}

	return uc, nil
}

// HasAccess reports whether the user may act on the client's resources.
// Returns nil when allowed, ErrAccessDenied when not.
func (c *Core) HasAccess(ctx context.Context, userID int64, clientID int64) error {
	ctx, span := otel.AddSpan(ctx, "business.accessbus.hasAccess")
	defer span.End()

	if err := c.storer.ValidateAccess(ctx, userID, clientID); err != nil {
		return fmt.Errorf("validateAccess: %w", err)
	}

	return nil
}

// Permissions returns the permissions string of the grant for the pair.
func (c *Core) Permissions(ctx context.Context, userID int64, clientID int64) (string, error) {
	ctx, span := otel.AddSpan(ctx, "business.accessbus.permissions")
	defer span.End()

	uc, err := c.storer.QueryGrant(ctx, userID, clientID)
	if err != nil {
		return "", fmt.Errorf("query grant: %w", err)
	}

	return uc.Permissions, nil
}

// PurgeUser drops every grant held by the user from the access evaluator.
// Runs on user delete: the rows go with the database cascade, but a live
// token must stop passing the tenant gate immediately.
func (c *Core) PurgeUser(ctx context.Context, userID int64) error {
	ctx, span := otel.AddSpan(ctx, "business.accessbus.purgeUser")
	defer span.End()

	if err := c.storer.PurgeUser(ctx, userID); err != nil {
		return fmt.Errorf("purgeUser: %w", err)
	}

	return nil
}

// PurgeClient drops every grant issued for the client from the access
// evaluator. Runs on client delete.
func (c *Core) PurgeClient(ctx context.Context, clientID int64) error {
	ctx, span := otel.AddSpan(ctx, "business.accessbus.purgeClient")
	defer span.End()

	if err := c.storer.PurgeClient(ctx, clientID); err != nil {
		return fmt.Errorf("purgeClient: %w", err)
	}

	return nil
}

// SyncUserRole propagates a role change so the access evaluator sees it
// immediately.
func (c *Core) SyncUserRole(ctx context.Context, userID int64, r role.Role) error {
	ctx, span := otel.AddSpan(ctx, "business.accessbus.syncUserRole")
	defer span.End()

	if err := c.storer.SyncUserRole(ctx, userID, r); err != nil {
		return fmt.Errorf("syncUserRole: %w", err)
	}

	return nil
}
