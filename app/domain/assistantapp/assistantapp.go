// Package assistantapp maintains the app layer api for the assistant
// domain.
package assistantapp

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/lyracrm/lyra/app/sdk/errs"
	"github.com/lyracrm/lyra/app/sdk/mid"
	"github.com/lyracrm/lyra/app/sdk/query"
	"github.com/lyracrm/lyra/business/domain/accessbus"
	"github.com/lyracrm/lyra/business/domain/assistantbus"
	"github.com/lyracrm/lyra/business/sdk/order"
	"github.com/lyracrm/lyra/business/sdk/page"
	"github.com/lyracrm/lyra/business/sdk/web"
)

// app manages the set of app layer api functions for the assistant domain.
type app struct {
	assistantBus *assistantbus.Core
	accessBus    *accessbus.Core
}

// newApp constructs an assistant app API for use.
func newApp(assistantBus *assistantbus.Core, accessBus *accessbus.Core) *app {
	return &app{
		assistantBus: assistantBus,
		accessBus:    accessBus,
	}
}

// create adds a new assistant to the system.
func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var app NewAssistant
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	na, err := toBusNewAssistant(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	ast, err := a.assistantBus.Create(ctx, na)
	if err != nil {
		switch {
		case errors.Is(err, assistantbus.ErrClientNotFound):
			return errs.New(errs.FailedPrecondition, err)
		case errors.Is(err, assistantbus.ErrUniqueOpenAIID):
			return errs.New(errs.Aborted, assistantbus.ErrUniqueOpenAIID)
		default:
			return errs.Errorf(errs.InternalOnlyLog, "create: ast[%+v]: %s", app, err)
		}
	}

	return toAppAssistant(ast)
}

// update updates an existing assistant.
func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	var app UpdateAssistant
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	ast, errResp := a.queryByIDParam(ctx, r)
	if errResp != nil {
		return errResp
	}

	ua, err := toBusUpdateAssistant(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	updAst, err := a.assistantBus.Update(ctx, ast, ua)
	if err != nil {
		switch {
		case errors.Is(err, assistantbus.ErrClientNotFound):
			return errs.New(errs.FailedPrecondition, err)
		case errors.Is(err, assistantbus.ErrUniqueOpenAIID):
			return errs.New(errs.Aborted, assistantbus.ErrUniqueOpenAIID)
		default:
			return errs.Errorf(errs.InternalOnlyLog, "update: assistantID[%d] ua[%+v]: %s", ast.ID, ua, err)
		}
	}

	return toAppAssistant(updAst)
}

// delete removes an assistant from the system.
func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	ast, errResp := a.queryByIDParam(ctx, r)
	if errResp != nil {
		return errResp
	}

	if err := a.assistantBus.Delete(ctx, ast); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "delete: assistantID[%d]: %s", ast.ID, err)
	}

	return nil
}

// query returns a list of assistants with paging.
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

	orderBy, err := order.Parse(orderByFields, qp.OrderBy, assistantbus.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors("order", err)
	}

	asts, err := a.assistantBus.Query(ctx, filter, orderBy, page)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	total, err := a.assistantBus.Count(ctx, filter)
	if err != nil {
		return errs.Errorf(errs.Internal, "count: %s", err)
	}

	return query.NewResult(toAppAssistants(asts), total, page)
}

// queryByID returns an assistant by its ID. Access runs the tenant gate
// against the assistant's owning client.
func (a *app) queryByID(ctx context.Context, r *http.Request) web.Encoder {
	ast, errResp := a.queryByIDParam(ctx, r)
	if errResp != nil {
		return errResp
	}

	if errResp := a.checkAccess(ctx, ast.ClientID); errResp != nil {
		return errResp
	}

	return toAppAssistant(ast)
}

// queryByClient returns the assistants owned by the client in the path.
func (a *app) queryByClient(ctx context.Context, r *http.Request) web.Encoder {
	clientID, err := strconv.ParseInt(web.Param(r, "client_id"), 10, 64)
	if err != nil {
		return errs.NewFieldErrors("client_id", err)
	}

	asts, err := a.assistantBus.QueryByClient(ctx, clientID)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "querybyclient: clientID[%d]: %s", clientID, err)
	}

	return Assistants(toAppAssistants(asts))
}

func (a *app) queryByIDParam(ctx context.Context, r *http.Request) (assistantbus.Assistant, *errs.Error) {
	id, err := strconv.ParseInt(web.Param(r, "assistant_id"), 10, 64)
	if err != nil {
		return assistantbus.Assistant{}, errs.NewFieldErrors("assistant_id", err)
	}

	ast, err := a.assistantBus.QueryByID(ctx, id)
	if err != nil {
		if errors.Is(err, assistantbus.ErrNotFound) {
			return assistantbus.Assistant{}, errs.New(errs.NotFound, err)
		}
		return assistantbus.Assistant{}, errs.Errorf(errs.InternalOnlyLog, "querybyid: assistantID[%d]: %s", id, err)
	}

	return ast, nil
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
