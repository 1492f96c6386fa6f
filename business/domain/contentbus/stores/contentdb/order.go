package contentdb

import (
	"fmt"

	"github.com/lyracrm/lyra/business/domain/contentbus"
	"github.com/lyracrm/lyra/business/sdk/order"
)

var orderByFields = map[string]string{
	contentbus.OrderByID:          "ct.content_id",
	contentbus.OrderByClientID:    "ct.client_id",
	contentbus.OrderByStatus:      "ct.status",
	contentbus.OrderByRequestedAt: "ct.requested_at",
}

func orderByClause(orderBy order.By) (string, error) {
	by, exists := orderByFields[orderBy.Field]
	if !exists {
		return "", fmt.Errorf("field %q does not exist", orderBy.Field)
	}

	return " ORDER BY " + by + " " + orderBy.Direction, nil
}
