package userapp

import (
	"github.com/lyracrm/lyra/business/domain/userbus"
)

var orderByFields = map[string]string{
	"user_id":      userbus.OrderByID,
	"name":         userbus.OrderByName,
	"email":        userbus.OrderByEmail,
	"role":         userbus.OrderByRole,
	"created_date": userbus.OrderByCreatedAt,
}
