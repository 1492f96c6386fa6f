package assistantapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lyracrm/lyra/app/sdk/errs"
	"github.com/lyracrm/lyra/business/domain/assistantbus"
	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/status"
)

// Assistant represents an AI assistant owned by a client.
type Assistant struct {
	ID                int64   `json:"id"`
	ClientID          int64   `json:"clientId"`
	Name              string  `json:"name"`
	OpenAIAssistantID string  `json:"openaiAssistantId"`
	Model             string  `json:"model"`
	Temperature       float64 `json:"temperature"`
	Instructions      string  `json:"instructions,omitempty"`
	Status            string  `json:"status"`
	DateCreated       string  `json:"dateCreated"`
	DateUpdated       string  `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (a Assistant) Encode() ([]byte, string, error) {
	data, err := json.Marshal(a)
	return data, "application/json", err
}

func toAppAssistant(bus assistantbus.Assistant) Assistant {
	return Assistant{
		ID:                bus.ID,
		ClientID:          bus.ClientID,
		Name:              bus.Name.String(),
		OpenAIAssistantID: bus.OpenAIAssistantID,
		Model:             bus.Model,
		Temperature:       bus.Temperature,
		Instructions:      bus.Instructions,
		Status:            bus.Status.String(),
		DateCreated:       bus.CreatedAt.Format(time.RFC3339),
		DateUpdated:       bus.UpdatedAt.Format(time.RFC3339),
	}
}

func toAppAssistants(assistants []assistantbus.Assistant) []Assistant {
	app := make([]Assistant, len(assistants))
	for i, ast := range assistants {
		app[i] = toAppAssistant(ast)
	}
	return app
}

// Assistants is the collection shape returned by the per-client list.
type Assistants []Assistant

// Encode implements the web.Encoder interface.
func (a Assistants) Encode() ([]byte, string, error) {
	data, err := json.Marshal(a)
	return data, "application/json", err
}

// =============================================================================

// NewAssistant defines the data needed to add a new assistant.
type NewAssistant struct {
	ClientID          int64    `json:"clientId" validate:"required"`
	Name              string   `json:"name" validate:"required"`
	OpenAIAssistantID string   `json:"openaiAssistantId" validate:"required"`
	Model             string   `json:"model" validate:"required"`
	Temperature       *float64 `json:"temperature" validate:"omitempty,gte=0,lte=2"`
	Instructions      string   `json:"instructions"`
}

// Decode implements the web.Decoder interface.
func (app *NewAssistant) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewAssistant) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewAssistant(app NewAssistant) (assistantbus.NewAssistant, error) {
	nme, err := name.Parse(app.Name)
	if err != nil {
		return assistantbus.NewAssistant{}, fmt.Errorf("parse name: %w", err)
	}

	temperature := 1.0
	if app.Temperature != nil {
		temperature = *app.Temperature
	}

	bus := assistantbus.NewAssistant{
		ClientID:          app.ClientID,
		Name:              nme,
		OpenAIAssistantID: app.OpenAIAssistantID,
		Model:             app.Model,
		Temperature:       temperature,
		Instructions:      app.Instructions,
	}

	return bus, nil
}

// =============================================================================

// UpdateAssistant defines the data needed to update an assistant.
type UpdateAssistant struct {
	ClientID          *int64   `json:"clientId"`
	Name              *string  `json:"name"`
	OpenAIAssistantID *string  `json:"openaiAssistantId"`
	Model             *string  `json:"model"`
	Temperature       *float64 `json:"temperature" validate:"omitempty,gte=0,lte=2"`
	Instructions      *string  `json:"instructions"`
	Status            *string  `json:"status"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateAssistant) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateAssistant) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateAssistant(app UpdateAssistant) (assistantbus.UpdateAssistant, error) {
	var nme *name.Name
	if app.Name != nil {
		nm, err := name.Parse(*app.Name)
		if err != nil {
			return assistantbus.UpdateAssistant{}, fmt.Errorf("parse name: %w", err)
		}
		nme = &nm
	}

	var sts *status.Status
	if app.Status != nil {
		st, err := status.Parse(*app.Status)
		if err != nil {
			return assistantbus.UpdateAssistant{}, fmt.Errorf("parse status: %w", err)
		}
		sts = &st
	}

	bus := assistantbus.UpdateAssistant{
		ClientID:          app.ClientID,
		Name:              nme,
		OpenAIAssistantID: app.OpenAIAssistantID,
		Model:             app.Model,
		Temperature:       app.Temperature,
		Instructions:      app.Instructions,
		Status:            sts,
	}

	return bus, nil
}
