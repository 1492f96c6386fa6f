package integrationapp

import (
	"net/http"

	"github.com/lyracrm/lyra/app/sdk/auth"
	"github.com/lyracrm/lyra/app/sdk/mid"
	"github.com/lyracrm/lyra/business/domain/accessbus"
	"github.com/lyracrm/lyra/business/domain/integrationbus"
	"github.com/lyracrm/lyra/business/sdk/web"
	"github.com/lyracrm/lyra/business/types/role"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth           *auth.Auth
	IntegrationBus *integrationbus.Core
	AccessBus      *accessbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	ruleAdmin := mid.Authorize(cfg.Auth, role.Admin)

	api := newApp(cfg.IntegrationBus, cfg.AccessBus)

	app.HandlerFunc(http.MethodGet, version, "/integrations", api.query, authen)
	app.HandlerFunc(http.MethodGet, version, "/integrations/{integration_id}", api.queryByID, authen)
	app.HandlerFunc(http.MethodPost, version, "/integrations", api.create, authen, ruleAdmin)
	app.HandlerFunc(http.MethodPut, version, "/integrations/{integration_id}", api.update, authen, ruleAdmin)
	app.HandlerFunc(http.MethodDelete, version, "/integrations/{integration_id}", api.delete, authen, ruleAdmin)
}
