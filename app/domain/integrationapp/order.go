package integrationapp

import (
	"github.com/lyracrm/lyra/business/domain/integrationbus"
)

var orderByFields = map[string]string{
	"integration_id": integrationbus.OrderByID,
	"client_id":      integrationbus.OrderByClientID,
	"type":           integrationbus.OrderByType,
	"created_date":   integrationbus.OrderByCreatedAt,
}
