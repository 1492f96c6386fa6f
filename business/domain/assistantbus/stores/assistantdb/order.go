package assistantdb

import (
	"fmt"

	"github.com/lyracrm/lyra/business/domain/assistantbus"
	"github.com/lyracrm/lyra/business/sdk/order"
)

var orderByFields = map[string]string{
	assistantbus.OrderByID:        "a.assistant_id",
	assistantbus.OrderByClientID:  "a.client_id",
	assistantbus.OrderByName:      "a.name",
	assistantbus.OrderByCreatedAt: "a.created_at",
}

func orderByClause(orderBy order.By) (string, error) {
	by, exists := orderByFields[orderBy.Field]
	if !exists {
		return "", fmt.Errorf("field %q does not exist", orderBy.Field)
	}

	return " ORDER BY " + by + " " + orderBy.Direction, nil
}
