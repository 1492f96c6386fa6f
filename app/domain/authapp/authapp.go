// Package authapp maintains the app layer api for account signup and
// login.
package authapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/lyracrm/lyra/app/sdk/auth"
	"github.com/lyracrm/lyra/app/sdk/errs"
	"github.com/lyracrm/lyra/business/domain/userbus"
	"github.com/lyracrm/lyra/business/sdk/web"
	"github.com/lyracrm/lyra/business/types/password"
)

type app struct {
	auth    *auth.Auth
	userBus *userbus.Core
}

// newApp constructs an auth app API for use.
func newApp(ath *auth.Auth, userBus *userbus.Core) *app {
	return &app{
		auth:    ath,
		userBus: userBus,
	}
}

func (a *app) signup(ctx context.Context, r *http.Request) web.Encoder {
	var app Signup
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	nu, err := toBusNewUser(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := a.userBus.Create(ctx, nu)
	if err != nil {
		if errors.Is(err, userbus.ErrUniqueEmail) {
			return errs.New(errs.Aborted, userbus.ErrUniqueEmail)
		}
		return errs.Errorf(errs.InternalOnlyLog, "signup: email[%s]: %s", nu.Email.Address, err)
	}

	tokenStr, err := a.auth.GenerateToken(usr)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	return Session{
		User:        toAppUser(usr),
		AccessToken: tokenStr,
	}
}

func (a *app) login(ctx context.Context, r *http.Request) web.Encoder {
	var req Login
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	addr, err := mail.ParseAddress(req.Email)
	if err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("parsing email: %w", err))
	}

	pass, err := password.Parse(req.Password)
	if err != nil {
		return errs.New(errs.Unauthenticated, userbus.ErrAuthenticationFailure)
	}

	usr, err := a.auth.Login(ctx, *addr, pass)
	if err != nil {
		return errs.New(errs.Unauthenticated, userbus.ErrAuthenticationFailure)
	}

	tokenStr, err := a.auth.GenerateToken(usr)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	return Session{
		User:        toAppUser(usr),
		AccessToken: tokenStr,
	}
}
