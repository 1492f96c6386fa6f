package mid

import (
	"context"
	"net/http"
	"strconv"

	"github.com/lyracrm/lyra/app/sdk/auth"
	"github.com/lyracrm/lyra/app/sdk/errs"
	"github.com/lyracrm/lyra/business/domain/userbus"
	"github.com/lyracrm/lyra/business/sdk/web"
	"github.com/lyracrm/lyra/business/types/role"
)

// AuthorizeUser loads the user referenced by the user_id path parameter
// into the context. A user may act on themselves; acting on another user
// requires the ADMIN role.
func AuthorizeUser(ath *auth.Auth, userBus *userbus.Core) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			id := web.Param(r, "user_id")

			userID, err := strconv.ParseInt(id, 10, 64)
			if err != nil {
				return errs.New(errs.InvalidArgument, errs.FieldErrors{{Field: "user_id", Err: "invalid id"}})
			}

			usr, err := userBus.QueryByID(ctx, userID)
			if err != nil {
				return errs.New(errs.NotFound, err)
			}

			subjectID, err := GetUserID(ctx)
			if err != nil {
				return errs.New(errs.Unauthenticated, err)
			}

			if subjectID != usr.ID {
				claims := GetClaims(ctx)
				if err := ath.Authorize(ctx, claims, role.Admin); err != nil {
					return errs.New(errs.PermissionDenied, err)
				}
			}

			ctx = setUser(ctx, usr)

			return next(ctx, r)
		}

		return h
	}

	return m
}
