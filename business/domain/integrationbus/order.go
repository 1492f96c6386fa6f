package integrationbus

import "github.com/lyracrm/lyra/business/sdk/order"

// DefaultOrderBy represents the default way we sort.
var DefaultOrderBy = order.NewBy(OrderByID, order.ASC)

// The set of fields that the results can be ordered by.
const (
	OrderByID        = "integration_id"
	OrderByClientID  = "client_id"
	OrderByType      = "integration_type"
	OrderByCreatedAt = "created_at"
)
