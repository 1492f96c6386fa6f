// Package contentapp maintains the app layer api for the content domain.
package contentapp

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/lyracrm/lyra/app/sdk/errs"
	"github.com/lyracrm/lyra/app/sdk/mid"
	"github.com/lyracrm/lyra/app/sdk/query"
	"github.com/lyracrm/lyra/business/domain/accessbus"
	"github.com/lyracrm/lyra/business/domain/contentbus"
	"github.com/lyracrm/lyra/business/sdk/order"
	"github.com/lyracrm/lyra/business/sdk/page"
	"github.com/lyracrm/lyra/business/sdk/web"
	"github.com/lyracrm/lyra/business/types/role"
)

// app manages the set of app layer api functions for the content domain.
type app struct {
	contentBus *contentbus.Core
	accessBus  *accessbus.Core
}

// newApp constructs a content app API for use.
func newApp(contentBus *contentbus.Core, accessBus *accessbus.Core) *app {
	return &app{
		contentBus: contentBus,
		accessBus:  accessBus,
	}
}

// newWithTx constructs a new app value using a store transaction that was
// created via middleware.
func (a *app) newWithTx(ctx context.Context) (*app, error) {
	tx, err := mid.GetTran(ctx)
	if err != nil {
		return nil, err
	}

	contentBus, err := a.contentBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	accessBus, err := a.accessBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return newApp(contentBus, accessBus), nil
}

// create requests a new content job.
func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var app NewContent
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	if errResp := a.checkAccess(ctx, app.ClientID); errResp != nil {
		return errResp
	}

	a, err := a.newWithTx(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	cnt, err := a.contentBus.Create(ctx, toBusNewContent(app))
	if err != nil {
		switch {
		case errors.Is(err, contentbus.ErrClientNotFound), errors.Is(err, contentbus.ErrAssistantMismatch):
			return errs.New(errs.FailedPrecondition, err)
		default:
			return errs.Errorf(errs.InternalOnlyLog, "create: cnt[%+v]: %s", app, err)
		}
	}

	return toAppContent(cnt)
}

// update patches a content job. Status changes stamp the lifecycle
// timestamps only when they are still unset.
func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	var app UpdateContent
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	cnt, errResp := a.queryByIDParam(ctx, r)
	if errResp != nil {
		return errResp
	}

	if errResp := a.checkAccess(ctx, cnt.ClientID); errResp != nil {
		return errResp
	}

	uc, err := toBusUpdateContent(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	updCnt, err := a.contentBus.Update(ctx, cnt, uc)
	if err != nil {
		switch {
		case errors.Is(err, contentbus.ErrClientNotFound), errors.Is(err, contentbus.ErrAssistantMismatch):
			return errs.New(errs.FailedPrecondition, err)
		default:
			return errs.Errorf(errs.InternalOnlyLog, "update: contentID[%d] uc[%+v]: %s", cnt.ID, uc, err)
		}
	}

	return toAppContent(updCnt)
}

// delete removes a content job.
func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	cnt, errResp := a.queryByIDParam(ctx, r)
	if errResp != nil {
		return errResp
	}

	if errResp := a.checkAccess(ctx, cnt.ClientID); errResp != nil {
		return errResp
	}

	if err := a.contentBus.Delete(ctx, cnt); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "delete: contentID[%d]: %s", cnt.ID, err)
	}

	return nil
}

// query returns a list of content jobs with paging. Newest requests come
// first unless the caller orders otherwise.
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

	orderBy, err := order.Parse(orderByFields, qp.OrderBy, contentbus.DefaultOrderBy)
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

	cnts, err := a.contentBus.Query(ctx, filter, orderBy, page)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	total, err := a.contentBus.Count(ctx, filter)
	if err != nil {
		return errs.Errorf(errs.Internal, "count: %s", err)
	}

	return query.NewResult(toAppContents(cnts), total, page)
}

// queryByID returns a content job by its ID.
func (a *app) queryByID(ctx context.Context, r *http.Request) web.Encoder {
	cnt, errResp := a.queryByIDParam(ctx, r)
	if errResp != nil {
		return errResp
	}

	if errResp := a.checkAccess(ctx, cnt.ClientID); errResp != nil {
		return errResp
	}

	return toAppContent(cnt)
}

// start marks a content job in progress. Re-entry overwrites the started
// timestamp.
func (a *app) start(ctx context.Context, r *http.Request) web.Encoder {
	return a.transition(ctx, r, a.contentBus.Start)
}

// complete marks a content job completed. Re-entry overwrites the
// completed timestamp.
func (a *app) complete(ctx context.Context, r *http.Request) web.Encoder {
	return a.transition(ctx, r, a.contentBus.Complete)
}

// fail marks a content job failed. Re-entry overwrites the completed
// timestamp.
func (a *app) fail(ctx context.Context, r *http.Request) web.Encoder {
	return a.transition(ctx, r, a.contentBus.Fail)
}

func (a *app) transition(ctx context.Context, r *http.Request, op func(context.Context, contentbus.Content) (contentbus.Content, error)) web.Encoder {
	cnt, errResp := a.queryByIDParam(ctx, r)
	if errResp != nil {
		return errResp
	}

	if errResp := a.checkAccess(ctx, cnt.ClientID); errResp != nil {
		return errResp
	}

	updCnt, err := op(ctx, cnt)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "transition: contentID[%d]: %s", cnt.ID, err)
	}

	return toAppContent(updCnt)
}

func (a *app) queryByIDParam(ctx context.Context, r *http.Request) (contentbus.Content, *errs.Error) {
	id, err := strconv.ParseInt(web.Param(r, "content_id"), 10, 64)
	if err != nil {
		return contentbus.Content{}, errs.NewFieldErrors("content_id", err)
	}

	cnt, err := a.contentBus.QueryByID(ctx, id)
	if err != nil {
		if errors.Is(err, contentbus.ErrNotFound) {
			return contentbus.Content{}, errs.New(errs.NotFound, err)
		}
		return contentbus.Content{}, errs.Errorf(errs.InternalOnlyLog, "querybyid: contentID[%d]: %s", id, err)
	}

	return cnt, nil
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
