package contentapp

import (
	"github.com/lyracrm/lyra/business/domain/contentbus"
)

var orderByFields = map[string]string{
	"content_id":     contentbus.OrderByID,
	"client_id":      contentbus.OrderByClientID,
	"status":         contentbus.OrderByStatus,
	"requested_date": contentbus.OrderByRequestedAt,
}
