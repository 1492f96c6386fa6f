package accesscache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/lyracrm/lyra/business/types/role"
	"github.com/lyracrm/lyra/foundation/logger"
)

// The matcher grants every request to subjects holding the ADMIN role
// group. Everyone else needs an explicit grant policy for the client.
const casbinModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, "ROLE:ADMIN") || (g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act)
`

const actAccess = "access"

type memoryCache struct {
	log      *logger.Logger
	enforcer *casbin.Enforcer
}

func newMemoryCache(log *logger.Logger) (*memoryCache, error) {
	m, err := model.NewModelFromString(casbinModel)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	return &memoryCache{
		log:      log,
		enforcer: e,
	}, nil
}

// add inserts a grant policy. Failures are logged with the provided context.
func (c *memoryCache) add(ctx context.Context, userID int64, clientID int64) {
	sub := strconv.FormatInt(userID, 10)
	obj := strconv.FormatInt(clientID, 10)

	if _, err := c.enforcer.AddPolicy(sub, obj, actAccess); err != nil {
		c.log.Error(ctx, "accesscache: casbin add policy failed", "sub", sub, "obj", obj, "err", err)
	}
}

// remove clears the grant policy for the pair. Failures are logged.
func (c *memoryCache) remove(ctx context.Context, userID int64, clientID int64) {
	sub := strconv.FormatInt(userID, 10)
	obj := strconv.FormatInt(clientID, 10)

	if _, err := c.enforcer.RemoveFilteredPolicy(0, sub, obj); err != nil {
		c.log.Error(ctx, "accesscache: casbin remove policy failed", "sub", sub, "obj", obj, "err", err)
	}
}

// check validates the pair against the in-memory policy set.
func (c *memoryCache) check(ctx context.Context, userID int64, clientID int64) error {
	sub := strconv.FormatInt(userID, 10)
	obj := strconv.FormatInt(clientID, 10)

	ok, err := c.enforcer.Enforce(sub, obj, actAccess)
	if err != nil {
		return fmt.Errorf("enforce: %w", err)
	}
	if ok {
		return nil
	}

	return fmt.Errorf("denied in cache")
}

// loadRoles populates the role groups for all users.
func (c *memoryCache) loadRoles(ctx context.Context, userRoles map[int64]role.Role) {
	for uid, r := range userRoles {
		c.setUserRole(ctx, uid, r)
	}
}

// setUserRole replaces the role group of the user.
func (c *memoryCache) setUserRole(ctx context.Context, userID int64, r role.Role) {
	sub := strconv.FormatInt(userID, 10)
	roleName := "ROLE:" + r.String()

	if _, err := c.enforcer.RemoveFilteredGroupingPolicy(0, sub); err != nil {
		c.log.Error(ctx, "accesscache: casbin failed to remove old role", "sub", sub, "err", err)
	}

	if _, err := c.enforcer.AddGroupingPolicy(sub, roleName); err != nil {
		c.log.Error(ctx, "accesscache: casbin failed to set new role", "sub", sub, "role", roleName, "err", err)
	}
}

// clearClient removes every grant policy issued for the client.
func (c *memoryCache) clearClient(ctx context.Context, clientID int64) {
	obj := strconv.FormatInt(clientID, 10)

	if _, err := c.enforcer.RemoveFilteredPolicy(1, obj); err != nil {
		c.log.Error(ctx, "accesscache: casbin clear client policies failed", "obj", obj, "err", err)
	}
}

// clearUser removes every policy and group entry for the user.
func (c *memoryCache) clearUser(ctx context.Context, userID int64) {
	sub := strconv.FormatInt(userID, 10)

	if _, err := c.enforcer.RemoveFilteredPolicy(0, sub); err != nil {
		c.log.Error(ctx, "accesscache: casbin clear user policies failed", "sub", sub, "err", err)
	}

	if _, err := c.enforcer.RemoveFilteredGroupingPolicy(0, sub); err != nil {
		c.log.Error(ctx, "accesscache: casbin clear user groups failed", "sub", sub, "err", err)
	}
}
