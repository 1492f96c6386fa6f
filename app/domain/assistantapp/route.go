package assistantapp

import (
	"net/http"

	"github.com/lyracrm/lyra/app/sdk/auth"
	"github.com/lyracrm/lyra/app/sdk/mid"
	"github.com/lyracrm/lyra/business/domain/accessbus"
	"github.com/lyracrm/lyra/business/domain/assistantbus"
	"github.com/lyracrm/lyra/business/sdk/web"
	"github.com/lyracrm/lyra/business/types/role"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth         *auth.Auth
	AssistantBus *assistantbus.Core
	AccessBus    *accessbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	ruleAdmin := mid.Authorize(cfg.Auth, role.Admin)
	ruleAuthorizeClient := mid.AuthorizeClient(cfg.AccessBus)

	api := newApp(cfg.AssistantBus, cfg.AccessBus)

	app.HandlerFunc(http.MethodGet, version, "/assistants", api.query, authen, ruleAdmin)
	app.HandlerFunc(http.MethodGet, version, "/assistants/{assistant_id}", api.queryByID, authen)
	app.HandlerFunc(http.MethodGet, version, "/assistants/clients/{client_id}", api.queryByClient, authen, ruleAuthorizeClient)
	app.HandlerFunc(http.MethodPost, version, "/assistants", api.create, authen, ruleAdmin)
	app.HandlerFunc(http.MethodPut, version, "/assistants/{assistant_id}", api.update, authen, ruleAdmin)
	app.HandlerFunc(http.MethodDelete, version, "/assistants/{assistant_id}", api.delete, authen, ruleAdmin)
}
