package authapp

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"time"

	"github.com/lyracrm/lyra/app/sdk/errs"
	"github.com/lyracrm/lyra/business/domain/userbus"
	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/password"
	"github.com/lyracrm/lyra/business/types/role"
)

// User is the public shape of an account returned by signup and login.
type User struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	DateCreated string `json:"dateCreated"`
}

func toAppUser(bus userbus.User) User {
	return User{
		ID:          bus.ID,
		Name:        bus.Name.String(),
		Email:       bus.Email.Address,
		Role:        bus.Role.String(),
		DateCreated: bus.CreatedAt.Format(time.RFC3339),
	}
}

// Session carries the authenticated user and the bearer token issued for
// them.
type Session struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
}

// Encode implements the web.Encoder interface.
func (s Session) Encode() ([]byte, string, error) {
	data, err := json.Marshal(s)
	return data, "application/json", err
}

// =============================================================================

// Signup defines the data needed to register a new account. The role is
// optional and defaults to VIEWER; elevated roles are assigned by admins
// after the fact.
type Signup struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Role            string `json:"role" validate:"omitempty,oneof=OPERATOR VIEWER"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"eqfield=Password"`
}

// Decode implements the web.Decoder interface.
func (app *Signup) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app Signup) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewUser(app Signup) (userbus.NewUser, error) {
	addr, err := mail.ParseAddress(app.Email)
	if err != nil {
		return userbus.NewUser{}, fmt.Errorf("parse email: %w", err)
	}

	nme, err := name.Parse(app.Name)
	if err != nil {
		return userbus.NewUser{}, fmt.Errorf("parse name: %w", err)
	}

	rle := role.Viewer
	if app.Role != "" {
		rle, err = role.Parse(app.Role)
		if err != nil {
			return userbus.NewUser{}, fmt.Errorf("parse role: %w", err)
		}
	}

	pass, err := password.Parse(app.Password)
	if err != nil {
		return userbus.NewUser{}, fmt.Errorf("parse password: %w", err)
	}

	bus := userbus.NewUser{
		Name:     nme,
		Email:    *addr,
		Role:     rle,
		Password: pass,
	}

	return bus, nil
}

// =============================================================================

// Login defines the data needed to authenticate an account.
type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Decode implements the web.Decoder interface.
func (app *Login) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app Login) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}
