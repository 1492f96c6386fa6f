package assistantbus

import (
	"time"

	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/status"
)

// Assistant represents an AI assistant owned by a client.
type Assistant struct {
	ID                int64
	ClientID          int64
	Name              name.Name
	OpenAIAssistantID string
	Model             string
	Temperature       float64
	Instructions      string
	Status            status.Status
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewAssistant contains information needed to create a new assistant.
type NewAssistant struct {
	ClientID          int64
	Name              name.Name
	OpenAIAssistantID string
	Model             string
	Temperature       float64
	Instructions      string
}

// UpdateAssistant contains information needed to update an assistant.
type UpdateAssistant struct {
	ClientID          *int64
	Name              *name.Name
	OpenAIAssistantID *string
	Model             *string
	Temperature       *float64
	Instructions      *string
	Status            *status.Status
}
