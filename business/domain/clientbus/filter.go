package clientbus

import (
	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/status"
)

// QueryFilter holds the available fields a query can be filtered on.
type QueryFilter struct {
	ID       *int64
	Name     *name.Name
	Industry *string
	Status   *status.Status
}
