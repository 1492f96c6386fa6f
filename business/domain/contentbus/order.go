package contentbus

import "github.com/lyracrm/lyra/business/sdk/order"

// DefaultOrderBy represents the default way we sort. Newest requests come
// first.
var DefaultOrderBy = order.NewBy(OrderByRequestedAt, order.DESC)

// The set of fields that the results can be ordered by.
const (
	OrderByID          = "content_id"
	OrderByClientID    = "client_id"
	OrderByStatus      = "status"
	OrderByRequestedAt = "requested_at"
)
