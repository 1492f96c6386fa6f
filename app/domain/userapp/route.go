package userapp

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/lyracrm/lyra/app/sdk/auth"
	"github.com/lyracrm/lyra/app/sdk/mid"
	"github.com/lyracrm/lyra/business/domain/accessbus"
	"github.com/lyracrm/lyra/business/domain/userbus"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/business/sdk/web"
	"github.com/lyracrm/lyra/business/types/role"
	"github.com/lyracrm/lyra/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log       *logger.Logger
	DB        *sqlx.DB
	Auth      *auth.Auth
	UserBus   *userbus.Core
	AccessBus *accessbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	ruleAdmin := mid.Authorize(cfg.Auth, role.Admin)
	ruleAuthorizeUser := mid.AuthorizeUser(cfg.Auth, cfg.UserBus)
	ruleAuthorizeClient := mid.AuthorizeClient(cfg.AccessBus)
	transaction := mid.BeginCommitRollback(cfg.Log, sqldb.NewBeginner(cfg.DB))

	api := newApp(cfg.UserBus, cfg.AccessBus)

	app.HandlerFunc(http.MethodGet, version, "/users", api.query, authen, ruleAdmin)
	app.HandlerFunc(http.MethodGet, version, "/users/me", api.queryMe, authen)
	app.HandlerFunc(http.MethodGet, version, "/users/{user_id}", api.queryByID, authen, ruleAuthorizeUser)
	app.HandlerFunc(http.MethodPut, version, "/users/{user_id}", api.update, authen, ruleAuthorizeUser)
	app.HandlerFunc(http.MethodDelete, version, "/users/{user_id}", api.delete, authen, ruleAuthorizeUser)

	app.HandlerFunc(http.MethodPost, version, "/users/grants", api.createGrant, authen, ruleAdmin, transaction)
	app.HandlerFunc(http.MethodGet, version, "/users/{user_id}/clients", api.queryClientsByUser, authen, ruleAuthorizeUser)
	app.HandlerFunc(http.MethodGet, version, "/users/clients/{client_id}", api.queryUsersByClient, authen, ruleAuthorizeClient)
	app.HandlerFunc(http.MethodPut, version, "/users/{user_id}/clients/{client_id}/permissions", api.updatePermissions, authen, ruleAdmin)
	app.HandlerFunc(http.MethodDelete, version, "/users/{user_id}/clients/{client_id}", api.revoke, authen, ruleAdmin)
}
