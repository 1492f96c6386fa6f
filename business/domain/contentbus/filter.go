package contentbus

import "github.com/lyracrm/lyra/business/types/contentstatus"

// QueryFilter holds the available fields a query can be filtered on.
type QueryFilter struct {
	ID          *int64
	ClientID    *int64
	AssistantID *int64
	Type        *string
	Status      *contentstatus.Status
}
