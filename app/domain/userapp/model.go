package userapp

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"time"

	"github.com/lyracrm/lyra/app/sdk/errs"
	"github.com/lyracrm/lyra/business/domain/accessbus"
	"github.com/lyracrm/lyra/business/domain/userbus"
	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/password"
	"github.com/lyracrm/lyra/business/types/role"
)

// User represents information about an individual user. The password hash
// never leaves the business layer.
type User struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	DateCreated string `json:"dateCreated"`
	DateUpdated string `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (u User) Encode() ([]byte, string, error) {
	data, err := json.Marshal(u)
	return data, "application/json", err
}

func toAppUser(bus userbus.User) User {
	return User{
		ID:          bus.ID,
		Name:        bus.Name.String(),
		Email:       bus.Email.Address,
		Role:        bus.Role.String(),
		DateCreated: bus.CreatedAt.Format(time.RFC3339),
		DateUpdated: bus.UpdatedAt.Format(time.RFC3339),
	}
}

func toAppUsers(users []userbus.User) []User {
	app := make([]User, len(users))
	for i, usr := range users {
		app[i] = toAppUser(usr)
	}
	return app
}

// =============================================================================

// UpdateUser defines the data needed to update a user.
type UpdateUser struct {
	Name            *string `json:"name"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Role            *string `json:"role"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"passwordConfirm" validate:"omitempty,eqfield=Password"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateUser) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateUser) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateUser(app UpdateUser) (userbus.UpdateUser, error) {
	var addr *mail.Address
	if app.Email != nil {
		var err error
		addr, err = mail.ParseAddress(*app.Email)
		if err != nil {
			return userbus.UpdateUser{}, fmt.Errorf("parse email: %w", err)
		}
	}

	var nme *name.Name
	if app.Name != nil {
		nm, err := name.Parse(*app.Name)
		if err != nil {
			return userbus.UpdateUser{}, fmt.Errorf("parse name: %w", err)
		}
		nme = &nm
	}

	var rle *role.Role
	if app.Role != nil {
		r, err := role.Parse(*app.Role)
		if err != nil {
			return userbus.UpdateUser{}, fmt.Errorf("parse role: %w", err)
		}
		rle = &r
	}

	var pass *password.Password
	if app.Password != nil {
		p, err := password.Parse(*app.Password)
		if err != nil {
			return userbus.UpdateUser{}, fmt.Errorf("parse password: %w", err)
		}
		pass = &p
	}

	bus := userbus.UpdateUser{
		Name:     nme,
		Email:    addr,
		Role:     rle,
		Password: pass,
	}

	return bus, nil
}

// =============================================================================

// Grant represents a user-client access grant.
type Grant struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userId"`
	ClientID    int64  `json:"clientId"`
	Permissions string `json:"permissions"`
	AssignedAt  string `json:"assignedAt"`
}

// Encode implements the web.Encoder interface.
func (g Grant) Encode() ([]byte, string, error) {
	data, err := json.Marshal(g)
	return data, "application/json", err
}

func toAppGrant(bus accessbus.UserClient) Grant {
	return Grant{
		ID:          bus.ID,
		UserID:      bus.UserID,
		ClientID:    bus.ClientID,
		Permissions: bus.Permissions,
		AssignedAt:  bus.AssignedAt.Format(time.RFC3339),
	}
}

func toAppGrants(grants []accessbus.UserClient) []Grant {
	app := make([]Grant, len(grants))
	for i, uc := range grants {
		app[i] = toAppGrant(uc)
	}
	return app
}

// Grants is the collection shape returned by the grant list endpoints.
type Grants []Grant

// Encode implements the web.Encoder interface.
func (g Grants) Encode() ([]byte, string, error) {
	data, err := json.Marshal(g)
	return data, "application/json", err
}

// =============================================================================

// NewGrant defines the data needed to assign a client to a user.
type NewGrant struct {
	UserID      int64  `json:"userId" validate:"required"`
	ClientID    int64  `json:"clientId" validate:"required"`
	Permissions string `json:"permissions"`
}

// Decode implements the web.Decoder interface.
func (app *NewGrant) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewGrant) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewGrant(app NewGrant) accessbus.NewUserClient {
	return accessbus.NewUserClient{
		UserID:      app.UserID,
		ClientID:    app.ClientID,
		Permissions: app.Permissions,
	}
}

// =============================================================================

// UpdatePermissions defines the data needed to replace the permissions on
// an existing grant.
type UpdatePermissions struct {
	Permissions string `json:"permissions" validate:"required"`
}

// Decode implements the web.Decoder interface.
func (app *UpdatePermissions) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdatePermissions) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}
