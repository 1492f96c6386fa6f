package userbus

import (
	"net/mail"
	"time"

	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/role"
)

// QueryFilter holds the available fields a query can be filtered on.
type QueryFilter struct {
	ID             *int64
	Name           *name.Name
	Email          *mail.Address
	Role           *role.Role
	StartCreatedAt *time.Time
	EndCreatedAt   *time.Time
}
