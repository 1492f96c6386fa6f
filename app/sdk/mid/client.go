package mid

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/lyracrm/lyra/app/sdk/errs"
	"github.com/lyracrm/lyra/business/domain/accessbus"
	"github.com/lyracrm/lyra/business/sdk/web"
)

// AuthorizeClient runs the tenant gate for routes carrying a client_id
// path parameter. Admin users pass without a grant; everyone else needs a
// user-client grant for the pair.
func AuthorizeClient(accessBus *accessbus.Core) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			id := web.Param(r, "client_id")

			clientID, err := strconv.ParseInt(id, 10, 64)
			if err != nil {
				return errs.New(errs.InvalidArgument, errs.FieldErrors{{Field: "client_id", Err: "invalid id"}})
			}

			userID, err := GetUserID(ctx)
			if err != nil {
				return errs.New(errs.Unauthenticated, err)
			}

			if err := accessBus.HasAccess(ctx, userID, clientID); err != nil {
				if errors.Is(err, accessbus.ErrAccessDenied) {
					return errs.New(errs.PermissionDenied, accessbus.ErrAccessDenied)
				}
				return errs.New(errs.Internal, err)
			}

			return next(ctx, r)
		}

		return h
	}

	return m
}
