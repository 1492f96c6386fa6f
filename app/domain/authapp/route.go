package authapp

import (
	"net/http"

	"github.com/lyracrm/lyra/app/sdk/auth"
	"github.com/lyracrm/lyra/business/domain/userbus"
	"github.com/lyracrm/lyra/business/sdk/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth    *auth.Auth
	UserBus *userbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	api := newApp(cfg.Auth, cfg.UserBus)

	app.HandlerFunc(http.MethodPost, version, "/auth/signup", api.signup)
	app.HandlerFunc(http.MethodPost, version, "/auth/login", api.login)
}
