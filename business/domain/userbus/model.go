package userbus

import (
	"net/mail"
	"time"

	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/password"
	"github.com/lyracrm/lyra/business/types/role"
)

// User represents information about an individual user.
type User struct {
	ID           int64
	Name         name.Name
	Email        mail.Address
	Role         role.Role
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser contains information needed to create a new user.
type NewUser struct {
	Name     name.Name
	Email    mail.Address
	Role     role.Role
	Password password.Password
}

// UpdateUser contains information needed to update a user.
type UpdateUser struct {
	Name     *name.Name
	Email    *mail.Address
	Role     *role.Role
	Password *password.Password
}
