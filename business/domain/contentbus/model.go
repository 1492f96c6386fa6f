package contentbus

import (
	"time"

	"github.com/lyracrm/lyra/business/types/contentstatus"
)

// Content represents a content generation job requested for a client and
// handled by one of the client's assistants.
type Content struct {
	ID          int64
	ClientID    int64
	AssistantID int64
	Type        string
	Parameters  map[string]any
	Status      contentstatus.Status
	RequestedAt time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// NewContent contains information needed to create a new content job.
type NewContent struct {
	ClientID    int64
	AssistantID int64
	Type        string
	Parameters  map[string]any
}

// UpdateContent contains information needed to update a content job.
type UpdateContent struct {
	ClientID    *int64
	AssistantID *int64
	Type        *string
	Parameters  map[string]any
	Status      *contentstatus.Status
}
