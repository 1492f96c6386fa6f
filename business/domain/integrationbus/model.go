package integrationbus

import (
	"time"

	"github.com/lyracrm/lyra/business/types/status"
)

// Integration represents a third-party integration configured for a
// client. A client holds at most one integration per type.
type Integration struct {
	ID          int64
	ClientID    int64
	Type        string
	Credentials map[string]any
	WebhookURL  string
	Status      status.Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewIntegration contains information needed to create a new integration.
type NewIntegration struct {
	ClientID    int64
	Type        string
	Credentials map[string]any
	WebhookURL  string
}

// UpdateIntegration contains information needed to update an integration.
type UpdateIntegration struct {
	Type        *string
	Credentials map[string]any
	WebhookURL  *string
	Status      *status.Status
}
