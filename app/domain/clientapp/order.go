package clientapp

import (
	"github.com/lyracrm/lyra/business/domain/clientbus"
)

var orderByFields = map[string]string{
	"client_id":    clientbus.OrderByID,
	"name":         clientbus.OrderByName,
	"created_date": clientbus.OrderByCreatedAt,
}
