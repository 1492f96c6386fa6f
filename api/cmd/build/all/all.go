// Package all binds all the routes into the specified app.
package all

import (
	"github.com/lyracrm/lyra/app/domain/assistantapp"
	"github.com/lyracrm/lyra/app/domain/authapp"
	"github.com/lyracrm/lyra/app/domain/checkapp"
	"github.com/lyracrm/lyra/app/domain/clientapp"
	"github.com/lyracrm/lyra/app/domain/contentapp"
	"github.com/lyracrm/lyra/app/domain/integrationapp"
	"github.com/lyracrm/lyra/app/domain/kommoapp"
	"github.com/lyracrm/lyra/app/domain/userapp"
	"github.com/lyracrm/lyra/app/sdk/mux"
	"github.com/lyracrm/lyra/business/sdk/web"
)

// Routes constructs the add value which provides the implementation of
// of RouteAdder for specifying what routes to bind to this instance.
func Routes() add {
	return add{}
}

type add struct{}

func (add) Add(app *web.App, cfg mux.Config) {
	checkapp.Routes(app, checkapp.Config{
		Build: cfg.Build,
		Log:   cfg.Log,
		DB:    cfg.DB,
	})

	authapp.Routes(app, authapp.Config{
		Auth:    cfg.AuthConfig.Auth,
		UserBus: cfg.BusConfig.UserBus,
	})

	userapp.Routes(app, userapp.Config{
		Log:       cfg.Log,
		DB:        cfg.DB,
		Auth:      cfg.AuthConfig.Auth,
		UserBus:   cfg.BusConfig.UserBus,
		AccessBus: cfg.BusConfig.AccessBus,
	})

	clientapp.Routes(app, clientapp.Config{
		Auth:      cfg.AuthConfig.Auth,
		ClientBus: cfg.BusConfig.ClientBus,
		AccessBus: cfg.BusConfig.AccessBus,
	})

	assistantapp.Routes(app, assistantapp.Config{
		Auth:         cfg.AuthConfig.Auth,
		AssistantBus: cfg.BusConfig.AssistantBus,
		AccessBus:    cfg.BusConfig.AccessBus,
	})

	contentapp.Routes(app, contentapp.Config{
		Log:        cfg.Log,
		DB:         cfg.DB,
		Auth:       cfg.AuthConfig.Auth,
		ContentBus: cfg.BusConfig.ContentBus,
		AccessBus:  cfg.BusConfig.AccessBus,
	})

	integrationapp.Routes(app, integrationapp.Config{
		Auth:           cfg.AuthConfig.Auth,
		IntegrationBus: cfg.BusConfig.IntegrationBus,
		AccessBus:      cfg.BusConfig.AccessBus,
	})

	kommoapp.Routes(app, kommoapp.Config{
		Log:    cfg.Log,
		Client: cfg.KommoConfig.Client,
	})
}
