// Package clientapp maintains the app layer api for the client domain.
package clientapp

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/lyracrm/lyra/app/sdk/errs"
	"github.com/lyracrm/lyra/app/sdk/query"
	"github.com/lyracrm/lyra/business/domain/accessbus"
	"github.com/lyracrm/lyra/business/domain/clientbus"
	"github.com/lyracrm/lyra/business/sdk/order"
	"github.com/lyracrm/lyra/business/sdk/page"
	"github.com/lyracrm/lyra/business/sdk/web"
)

// app manages the set of app layer api functions for the client domain.
type app struct {
	clientBus *clientbus.Core
	accessBus *accessbus.Core
}

// newApp constructs a client app API for use.
func newApp(clientBus *clientbus.Core, accessBus *accessbus.Core) *app {
	return &app{
		clientBus: clientBus,
		accessBus: accessBus,
	}
}

// create adds a new client to the system.
func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var app NewClient
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	nc, err := toBusNewClient(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	clt, err := a.clientBus.Create(ctx, nc)
	if err != nil {
		if errors.Is(err, clientbus.ErrUniqueName) {
			return errs.New(errs.Aborted, clientbus.ErrUniqueName)
		}
		return errs.Errorf(errs.InternalOnlyLog, "create: clt[%+v]: %s", app, err)
	}

	return toAppClient(clt)
}

// update updates an existing client.
func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	var app UpdateClient
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	clt, errResp := a.queryByIDParam(ctx, r)
	if errResp != nil {
		return errResp
	}

	uc, err := toBusUpdateClient(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	updClt, err := a.clientBus.Update(ctx, clt, uc)
	if err != nil {
		if errors.Is(err, clientbus.ErrUniqueName) {
			return errs.New(errs.Aborted, clientbus.ErrUniqueName)
		}
		return errs.Errorf(errs.InternalOnlyLog, "update: clientID[%d] uc[%+v]: %s", clt.ID, uc, err)
	}

	return toAppClient(updClt)
}

// delete removes a client and everything scoped to it.
func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	clt, errResp := a.queryByIDParam(ctx, r)
	if errResp != nil {
		return errResp
	}

	if err := a.clientBus.Delete(ctx, clt); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "delete: clientID[%d]: %s", clt.ID, err)
	}

	// The database cascade removes the grant rows; the access evaluator
	// must drop them too or cached grants keep passing the tenant gate.
	if err := a.accessBus.PurgeClient(ctx, clt.ID); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "purge grants: clientID[%d]: %s", clt.ID, err)
	}

	return nil
}

// query returns a list of clients with paging.
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

	orderBy, err := order.Parse(orderByFields, qp.OrderBy, clientbus.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors("order", err)
	}

	clts, err := a.clientBus.Query(ctx, filter, orderBy, page)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	total, err := a.clientBus.Count(ctx, filter)
	if err != nil {
		return errs.Errorf(errs.Internal, "count: %s", err)
	}

	return query.NewResult(toAppClients(clts), total, page)
}

// queryByID returns a client by its ID.
func (a *app) queryByID(ctx context.Context, r *http.Request) web.Encoder {
	clt, errResp := a.queryByIDParam(ctx, r)
	if errResp != nil {
		return errResp
	}

	return toAppClient(clt)
}

func (a *app) queryByIDParam(ctx context.Context, r *http.Request) (clientbus.Client, *errs.Error) {
	id, err := strconv.ParseInt(web.Param(r, "client_id"), 10, 64)
	if err != nil {
		return clientbus.Client{}, errs.NewFieldErrors("client_id", err)
	}

	clt, err := a.clientBus.QueryByID(ctx, id)
	if err != nil {
		if errors.Is(err, clientbus.ErrNotFound) {
			return clientbus.Client{}, errs.New(errs.NotFound, err)
		}
		return clientbus.Client{}, errs.Errorf(errs.InternalOnlyLog, "querybyid: clientID[%d]: %s", id, err)
	}

	return clt, nil
}
