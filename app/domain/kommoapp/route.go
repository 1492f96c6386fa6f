package kommoapp

import (
	"net/http"

	"github.com/lyracrm/lyra/business/sdk/web"
	"github.com/lyracrm/lyra/foundation/kommo"
	"github.com/lyracrm/lyra/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log    *logger.Logger
	Client *kommo.Client
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	api := newApp(cfg.Log, cfg.Client)

	app.HandlerFunc(http.MethodPost, version, "/kommo/webhook", api.webhook)
}
