package assistantbus

import "github.com/lyracrm/lyra/business/sdk/order"

// DefaultOrderBy represents the default way we sort.
var DefaultOrderBy = order.NewBy(OrderByID, order.ASC)

// The set of fields that the results can be ordered by.
const (
	OrderByID        = "assistant_id"
	OrderByClientID  = "client_id"
	OrderByName      = "name"
	OrderByCreatedAt = "created_at"
)
