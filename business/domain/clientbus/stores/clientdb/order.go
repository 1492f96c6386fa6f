package clientdb

import (
	"fmt"

	"github.com/lyracrm/lyra/business/domain/clientbus"
	"github.com/lyracrm/lyra/business/sdk/order"
)

var orderByFields = map[string]string{
	clientbus.OrderByID:        "c.client_id",
	clientbus.OrderByName:      "c.name",
	clientbus.OrderByCreatedAt: "c.created_at",
}

func orderByClause(orderBy order.By) (string, error) {
	by, exists := orderByFields[orderBy.Field]
	if !exists {
		return "", fmt.Errorf("field %q does not exist", orderBy.Field)
	}

	return " ORDER BY " + by + " " + orderBy.Direction, nil
}
