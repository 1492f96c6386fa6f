package assistantapp

import (
	"github.com/lyracrm/lyra/business/domain/assistantbus"
)

var orderByFields = map[string]string{
	"assistant_id": assistantbus.OrderByID,
	"client_id":    assistantbus.OrderByClientID,
	"name":         assistantbus.OrderByName,
	"created_date": assistantbus.OrderByCreatedAt,
}
