package integrationdb

import (
	"fmt"

	"github.com/lyracrm/lyra/business/domain/integrationbus"
	"github.com/lyracrm/lyra/business/sdk/order"
)

var orderByFields = map[string]string{
	integrationbus.OrderByID:        "i.integration_id",
	integrationbus.OrderByClientID:  "i.client_id",
	integrationbus.OrderByType:      "i.integration_type",
	integrationbus.OrderByCreatedAt: "i.created_at",
}

func orderByClause(orderBy order.By) (string, error) {
	by, exists := orderByFields[orderBy.Field]
	if !exists {
		return "", fmt.Errorf("field %q does not exist", orderBy.Field)
	}

	return " ORDER BY " + by + " " + orderBy.Direction, nil
}
