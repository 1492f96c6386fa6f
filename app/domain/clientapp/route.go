package clientapp

import (
	"net/http"

	"github.com/lyracrm/lyra/app/sdk/auth"
	"github.com/lyracrm/lyra/app/sdk/mid"
	"github.com/lyracrm/lyra/business/domain/accessbus"
	"github.com/lyracrm/lyra/business/domain/clientbus"
	"github.com/lyracrm/lyra/business/sdk/web"
	"github.com/lyracrm/lyra/business/types/role"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth      *auth.Auth
	ClientBus *clientbus.Core
	AccessBus *accessbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	ruleAdmin := mid.Authorize(cfg.Auth, role.Admin)

	api := newApp(cfg.ClientBus, cfg.AccessBus)

	app.HandlerFunc(http.MethodGet, version, "/clients", api.query, authen)
	app.HandlerFunc(http.MethodGet, version, "/clients/{client_id}", api.queryByID, authen)
	app.HandlerFunc(http.MethodPost, version, "/clients", api.create, authen, ruleAdmin)
	app.HandlerFunc(http.MethodPut, version, "/clients/{client_id}", api.update, authen, ruleAdmin)
	app.HandlerFunc(http.MethodDelete, version, "/clients/{client_id}", api.delete, authen, ruleAdmin)
}
