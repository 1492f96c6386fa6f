package integrationbus

import "github.com/lyracrm/lyra/business/types/status"

// QueryFilter holds the available fields a query can be filtered on.
type QueryFilter struct {
	ID       *int64
	ClientID *int64
	Type     *string
	Status   *status.Status
}
