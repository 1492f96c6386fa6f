// Package userapp maintains the app layer api for the user domain.
package userapp

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/lyracrm/lyra/app/sdk/errs"
	"github.com/lyracrm/lyra/app/sdk/mid"
	"github.com/lyracrm/lyra/app/sdk/query"
	"github.com/lyracrm/lyra/business/domain/accessbus"
	"github.com/lyracrm/lyra/business/domain/userbus"
	"github.com/lyracrm/lyra/business/sdk/order"
	"github.com/lyracrm/lyra/business/sdk/page"
	"github.com/lyracrm/lyra/business/sdk/web"
	"github.com/lyracrm/lyra/business/types/role"
)

// app manages the set of app layer api functions for the user domain.
type app struct {
	userBus   *userbus.Core
	accessBus *accessbus.Core
}

// newApp constructs a user app API for use.
func newApp(userBus *userbus.Core, accessBus *accessbus.Core) *app {
	return &app{
		userBus:   userBus,
		accessBus: accessBus,
	}
}

// newWithTx constructs a new app value using a store transaction that was
// created via middleware.
func (a *app) newWithTx(ctx context.Context) (*app, error) {
	tx, err := mid.GetTran(ctx)
	if err != nil {
		return nil, err
	}

	userBus, err := a.userBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	accessBus, err := a.accessBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return newApp(userBus, accessBus), nil
}

// query returns a list of users with paging.
func (a *app) query(ctx context.Context, r *http.Request) web.Encoder {
	qp := parseQueryParams(r)

	page, err := page.Parse(qp.Page, qp.Rows)
	if err != nil {
		return errs.NewFieldErrors("page", err)
	}

	filter, err := parseFilter(qp)
	if err != nil {
		if v, ok := err.(*errs.Error); ok {
			return v
		}
		return errs.NewFieldErrors("filter", err)
	}

	orderBy, err := order.Parse(orderByFields, qp.OrderBy, userbus.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors("order", err)
	}

	usrs, err := a.userBus.Query(ctx, filter, orderBy, page)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	total, err := a.userBus.Count(ctx, filter)
	if err != nil {
		return errs.Errorf(errs.Internal, "count: %s", err)
	}

	return query.NewResult(toAppUsers(usrs), total, page)
}

// queryMe returns the authenticated user.
func (a *app) queryMe(ctx context.Context, _ *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	usr, err := a.userBus.QueryByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userbus.ErrNotFound) {
			return errs.New(errs.NotFound, err)
		}
		return errs.Errorf(errs.InternalOnlyLog, "querybyid: userID[%d]: %s", userID, err)
	}

	return toAppUser(usr)
}

// queryByID returns a user by its ID.
func (a *app) queryByID(ctx context.Context, _ *http.Request) web.Encoder {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	return toAppUser(usr)
}

// update updates an existing user.
func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	var app UpdateUser
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	uu, err := toBusUpdateUser(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	// Only admins may change a user's role.
	if uu.Role != nil {
		claims := mid.GetClaims(ctx)
		if claims.Role != role.Admin.String() {
			return errs.Errorf(errs.PermissionDenied, "changing roles requires role %s", role.Admin)
		}
	}

	roleChanged := uu.Role != nil && !usr.Role.Equal(*uu.Role)

	updUsr, err := a.userBus.Update(ctx, usr, uu)
	if err != nil {
		if errors.Is(err, userbus.ErrUniqueEmail) {
			return errs.New(errs.Aborted, userbus.ErrUniqueEmail)
		}
		return errs.Errorf(errs.InternalOnlyLog, "update: userID[%d] uu[%+v]: %s", usr.ID, uu, err)
	}

	if roleChanged {
		if err := a.accessBus.SyncUserRole(ctx, usr.ID, *uu.Role); err != nil {
			return errs.Errorf(errs.InternalOnlyLog, "syncuserrole: userID[%d]: %s", usr.ID, err)
		}
	}

	return toAppUser(updUsr)
}

// delete removes a user from the system.
func (a *app) delete(ctx context.Context, _ *http.Request) web.Encoder {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	if err := a.userBus.Delete(ctx, usr); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "delete: userID[%d]: %s", usr.ID, err)
	}

	// The database cascade removes the grant rows; the access evaluator
	// must drop them too or a still-valid token keeps its grants.
	if err := a.accessBus.PurgeUser(ctx, usr.ID); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "purge grants: userID[%d]: %s", usr.ID, err)
	}

	return nil
}

// createGrant assigns a client to a user inside a transaction.
func (a *app) createGrant(ctx context.Context, r *http.Request) web.Encoder {
	var app NewGrant
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	a, err := a.newWithTx(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	uc, err := a.accessBus.Grant(ctx, toBusNewGrant(app))
	if err != nil {
		switch {
		case errors.Is(err, accessbus.ErrUserNotFound), errors.Is(err, accessbus.ErrClientNotFound):
			return errs.New(errs.FailedPrecondition, err)
		case errors.Is(err, accessbus.ErrUniqueGrant):
			return errs.New(errs.Aborted, accessbus.ErrUniqueGrant)
		default:
			return errs.Errorf(errs.InternalOnlyLog, "grant: userID[%d] clientID[%d]: %s", app.UserID, app.ClientID, err)
		}
	}

	return toAppGrant(uc)
}

// queryClientsByUser returns the grants held by the user in the path.
func (a *app) queryClientsByUser(ctx context.Context, _ *http.Request) web.Encoder {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	ucs, err := a.accessBus.QueryByUser(ctx, usr.ID)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "querybyuser: userID[%d]: %s", usr.ID, err)
	}

	return Grants(toAppGrants(ucs))
}

// queryUsersByClient returns the grants issued for the client in the path.
func (a *app) queryUsersByClient(ctx context.Context, r *http.Request) web.Encoder {
	clientID, err := strconv.ParseInt(web.Param(r, "client_id"), 10, 64)
	if err != nil {
		return errs.NewFieldErrors("client_id", err)
	}

	ucs, err := a.accessBus.QueryByClient(ctx, clientID)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "querybyclient: clientID[%d]: %s", clientID, err)
	}

	return Grants(toAppGrants(ucs))
}

// updatePermissions replaces the permissions on an existing grant.
func (a *app) updatePermissions(ctx context.Context, r *http.Request) web.Encoder {
	var app UpdatePermissions
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	userID, err := strconv.ParseInt(web.Param(r, "user_id"), 10, 64)
	if err != nil {
		return errs.NewFieldErrors("user_id", err)
	}

	clientID, err := strconv.ParseInt(web.Param(r, "client_id"), 10, 64)
	if err != nil {
		return errs.NewFieldErrors("client_id", err)
	}

	uc, err := a.accessBus.UpdatePermissions(ctx, userID, clientID, app.Permissions)
	if err != nil {
		if errors.Is(err, accessbus.ErrNotFound) {
			return errs.New(errs.NotFound, err)
		}
		return errs.Errorf(errs.InternalOnlyLog, "updatepermissions: userID[%d] clientID[%d]: %s", userID, clientID, err)
	}

	return toAppGrant(uc)
}

// revoke removes the grant for the user and client pair in the path.
func (a *app) revoke(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := strconv.ParseInt(web.Param(r, "user_id"), 10, 64)
	if err != nil {
		return errs.NewFieldErrors("user_id", err)
	}

	clientID, err := strconv.ParseInt(web.Param(r, "client_id"), 10, 64)
	if err != nil {
		return errs.NewFieldErrors("client_id", err)
	}

	if err := a.accessBus.Revoke(ctx, userID, clientID); err != nil {
		if errors.Is(err, accessbus.ErrNotFound) {
			return errs.New(errs.NotFound, err)
		}
		return errs.Errorf(errs.InternalOnlyLog, "revoke: userID[%d] clientID[%d]: %s", userID, clientID, err)
	}

	return nil
}
