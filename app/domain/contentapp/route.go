package contentapp

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/lyracrm/lyra/app/sdk/auth"
	"github.com/lyracrm/lyra/app/sdk/mid"
	"github.com/lyracrm/lyra/business/domain/accessbus"
	"github.com/lyracrm/lyra/business/domain/contentbus"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/business/sdk/web"
	"github.com/lyracrm/lyra/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log        *logger.Logger
	DB         *sqlx.DB
	Auth       *auth.Auth
	ContentBus *contentbus.Core
	AccessBus  *accessbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	transaction := mid.BeginCommitRollback(cfg.Log, sqldb.NewBeginner(cfg.DB))

	api := newApp(cfg.ContentBus, cfg.AccessBus)

	app.HandlerFunc(http.MethodGet, version, "/content", api.query, authen)
	app.HandlerFunc(http.MethodGet, version, "/content/{content_id}", api.queryByID, authen)
	app.HandlerFunc(http.MethodPost, version, "/content", api.create, authen, transaction)
	app.HandlerFunc(http.MethodPut, version, "/content/{content_id}", api.update, authen)
	app.HandlerFunc(http.MethodDelete, version, "/content/{content_id}", api.delete, authen)

	app.HandlerFunc(http.MethodPost, version, "/content/{content_id}/start", api.start, authen)
	app.HandlerFunc(http.MethodPost, version, "/content/{content_id}/complete", api.complete, authen)
	app.HandlerFunc(http.MethodPost, version, "/content/{content_id}/fail", api.fail, authen)
}
