// Package integrationapp maintains the app layer api for the integration
// domain.
package integrationapp

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/lyracrm/lyra/app/sdk/errs"
	"github.com/lyracrm/lyra/app/sdk/mid"
	"github.com/lyracrm/lyra/app/sdk/query"
	"github.com/lyracrm/lyra/business/domain/accessbus"
	"github.com/lyracrm/lyra/business/domain/integrationbus"
	"github.com/lyracrm/lyra/business/sdk/order"
	"github.com/lyracrm/lyra/business/sdk/page"
	"github.com/lyracrm/lyra/business/sdk/web"
	"github.com/lyracrm/lyra/business/types/role"
)

// app manages the set of app layer api functions for the integration
// domain.
type app struct {
	integrationBus *integrationbus.Core
	accessBus      *accessbus.Core
}

// newApp constructs an integration app API for use.
func newApp(integrationBus *integrationbus.Core, accessBus *accessbus.Core) *app {
	return &app{
		integrationBus: integrationBus,
		accessBus:      accessBus,
	}
}

// create adds a new integration to the system.
func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var app NewIntegration
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	itg, err := a.integrationBus.Create(ctx, toBusNewIntegration(app))
	if err != nil {
		switch {
		case errors.Is(err, integrationbus.ErrClientNotFound):
			return errs.New(errs.FailedPrecondition, err)
		case errors.Is(err, integrationbus.ErrUniqueClientType):
			return errs.New(errs.Aborted, integrationbus.ErrUniqueClientType)
		default:
			return errs.Errorf(errs.InternalOnlyLog, "create: clientID[%d] type[%s]: %s", app.ClientID, app.Type, err)
		}
	}

	return toAppIntegration(itg)
}

// update updates an existing integration.
func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	var app UpdateIntegration
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	itg, errResp := a.queryByIDParam(ctx, r)
	if errResp != nil {
		return errResp
	}

	ui, err := toBusUpdateIntegration(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	updItg, err := a.integrationBus.Update(ctx, itg, ui)
	if err != nil {
		if errors.Is(err, integrationbus.ErrUniqueClientType) {
			return errs.New(errs.Aborted, integrationbus.ErrUniqueClientType)
		}
		return errs.Errorf(errs.InternalOnlyLog, "update: integrationID[%d] ui[%+v]: %s", itg.ID, ui, err)
	}

	return toAppIntegration(updItg)
}

// delete removes an integration from the system.
func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	itg, errResp := a.queryByIDParam(ctx, r)
	if errResp != nil {
		return errResp
	}

	if err := a.integrationBus.Delete(ctx, itg); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "delete: integrationID[%d]: %s", itg.ID, err)
	}

	return nil
}

// query returns a list of integrations with paging.
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

	orderBy, err := order.Parse(orderByFields, qp.OrderBy, integrationbus.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors("order", err)
	}

	// Listing scoped to a client runs the tenant gate. An unscoped list
	// crosses tenants and is admin only.
	if filter.ClientID != nil {
		if errResp := a.checkAccess(ctx, *filter.ClientID); errResp != nil {
			return errResp
		}
	} else {
		claims := mid.GetClaims(ctx)
		if claims.Role != role.Admin.String() {
			return errs.Errorf(errs.PermissionDenied, "listing across clients requires role %s", role.Admin)
		}
	}

	itgs, err := a.integrationBus.Query(ctx, filter, orderBy, page)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	total, err := a.integrationBus.Count(ctx, filter)
	if err != nil {
		return errs.Errorf(errs.Internal, "count: %s", err)
	}

	return query.NewResult(toAppIntegrations(itgs), total, page)
}

// queryByID returns an integration by its ID. Access runs the tenant gate
// against the integration's owning client.
func (a *app) queryByID(ctx context.Context, r *http.Request) web.Encoder {
	itg, errResp := a.queryByIDParam(ctx, r)
	if errResp != nil {
		return errResp
	}

	if errResp := a.checkAccess(ctx, itg.ClientID); errResp != nil {
		return errResp
	}

	return toAppIntegration(itg)
}

func (a *app) queryByIDParam(ctx context.Context, r *http.Request) (integrationbus.Integration, *errs.Error) {
	id, err := strconv.ParseInt(web.Param(r, "integration_id"), 10, 64)
	if err != nil {
		return integrationbus.Integration{}, errs.NewFieldErrors("integration_id", err)
	}

	itg, err := a.integrationBus.QueryByID(ctx, id)
	if err != nil {
		if errors.Is(err, integrationbus.ErrNotFound) {
			return integrationbus.Integration{}, errs.New(errs.NotFound, err)
		}
		return integrationbus.Integration{}, errs.Errorf(errs.InternalOnlyLog, "querybyid: integrationID[%d]: %s", id, err)
	}

	return itg, nil
}

func (a *app) checkAccess(ctx context.Context, clientID int64) *errs.Error {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	if err := a.accessBus.HasAccess(ctx, userID, clientID); err != nil {
		if errors.Is(err, accessbus.ErrAccessDenied) {
			return errs.New(errs.PermissionDenied, accessbus.ErrAccessDenied)
		}
		return errs.New(errs.Internal, err)
	}

	return nil
}
