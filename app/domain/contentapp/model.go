package contentapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lyracrm/lyra/app/sdk/errs"
	"github.com/lyracrm/lyra/business/domain/contentbus"
	"github.com/lyracrm/lyra/business/types/contentstatus"
)

// Content represents a content generation job.
type Content struct {
	ID          int64          `json:"id"`
	ClientID    int64          `json:"clientId"`
	AssistantID int64          `json:"assistantId"`
	Type        string         `json:"type"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Status      string         `json:"status"`
	RequestedAt string         `json:"requestedAt"`
	StartedAt   string         `json:"startedAt,omitempty"`
	CompletedAt string         `json:"completedAt,omitempty"`
}

// Encode implements the web.Encoder interface.
func (c Content) Encode() ([]byte, string, error) {
	data, err := json.Marshal(c)
	return data, "application/json", err
}

func toAppContent(bus contentbus.Content) Content {
	app := Content{
		ID:          bus.ID,
		ClientID:    bus.ClientID,
		AssistantID: bus.AssistantID,
		Type:        bus.Type,
		Parameters:  bus.Parameters,
		Status:      bus.Status.String(),
		RequestedAt: bus.RequestedAt.Format(time.RFC3339),
	}

	if bus.StartedAt != nil {
		app.StartedAt = bus.StartedAt.Format(time.RFC3339)
	}

	if bus.CompletedAt != nil {
		app.CompletedAt = bus.CompletedAt.Format(time.RFC3339)
	}

	return app
}

func toAppContents(contents []contentbus.Content) []Content {
	app := make([]Content, len(contents))
	for i, cnt := range contents {
		app[i] = toAppContent(cnt)
	}
	return app
}

// =============================================================================

// NewContent defines the data needed to request a new content job.
type NewContent struct {
	ClientID    int64          `json:"clientId" validate:"required"`
	AssistantID int64          `json:"assistantId" validate:"required"`
	Type        string         `json:"type" validate:"required"`
	Parameters  map[string]any `json:"parameters"`
}

// Decode implements the web.Decoder interface.
func (app *NewContent) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewContent) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewContent(app NewContent) contentbus.NewContent {
	return contentbus.NewContent{
		ClientID:    app.ClientID,
		AssistantID: app.AssistantID,
		Type:        app.Type,
		Parameters:  app.Parameters,
	}
}

// =============================================================================

// UpdateContent defines the data needed to update a content job.
type UpdateContent struct {
	ClientID    *int64         `json:"clientId"`
	AssistantID *int64         `json:"assistantId"`
	Type        *string        `json:"type"`
	Parameters  map[string]any `json:"parameters"`
	Status      *string        `json:"status"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateContent) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateContent) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateContent(app UpdateContent) (contentbus.UpdateContent, error) {
	var sts *contentstatus.Status
	if app.Status != nil {
		st, err := contentstatus.Parse(*app.Status)
		if err != nil {
			return contentbus.UpdateContent{}, fmt.Errorf("parse status: %w", err)
		}
		sts = &st
	}

	bus := contentbus.UpdateContent{
		ClientID:    app.ClientID,
		AssistantID: app.AssistantID,
		Type:        app.Type,
		Parameters:  app.Parameters,
		Status:      sts,
	}

	return bus, nil
}
