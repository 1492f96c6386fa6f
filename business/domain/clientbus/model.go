package clientbus

import (
	"time"

	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/status"
)

// Client represents a tenant in the system. Assistants, content and
// integrations are scoped by client.
type Client struct {
	ID        int64
	Name      name.Name
	Industry  string
	Status    status.Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewClient contains information needed to create a new client.
type NewClient struct {
	Name     name.Name
	Industry string
}

// UpdateClient contains information needed to update a client.
type UpdateClient struct {
	Name     *name.Name
	Industry *string
	Status   *status.Status
}
